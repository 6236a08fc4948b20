package inventorycheck

import (
	"math"
	"sort"
	"strings"
	"time"
)

const timestampLayout = time.RFC3339

// formatReport partitions flagged items into recalls and everything
// else, orders each partition by urgency, and computes the summary.
func (c *Checker) formatReport(items []FlaggedItem, totalChecked int) Report {
	report := Report{
		Status:      "success",
		Timestamp:   c.cfg.Clock().UTC().Format(timestampLayout),
		Recalls:     []FormattedItem{},
		OtherAlerts: []FormattedItem{},
	}
	report.Summary.AlertBreakdown = map[AlertLevel]int{}
	report.Summary.TotalItemsChecked = totalChecked
	report.Summary.ItemsRequiringAttention = len(items)
	if len(items) == 0 {
		return report
	}

	var recalls, others []FlaggedItem
	for _, item := range items {
		if strings.Contains(string(item.FlagStatus), "Recalled") {
			recalls = append(recalls, item)
		} else {
			others = append(others, item)
		}
	}
	c.sortByUrgency(recalls)
	c.sortByUrgency(others)

	report.Recalls = formatItems(recalls)
	report.OtherAlerts = formatItems(others)
	report.Summary.RecallItems = len(recalls)

	for _, item := range others {
		switch {
		case strings.Contains(string(item.FlagStatus), "Shortage"):
			report.Summary.ShortageItems++
		case strings.Contains(string(item.FlagStatus), "Discontinuation"):
			report.Summary.DiscontinuationItems++
		case strings.Contains(string(item.FlagStatus), "Low Stock"):
			report.Summary.LowStockItems++
		}
	}

	finiteSum := 0.0
	finiteCount := 0
	for _, item := range items {
		report.Summary.AlertBreakdown[item.AlertLevel]++
		if RequiresImmediateAction(item.AlertLevel) {
			report.Summary.CriticalItems++
		}
		if !math.IsInf(item.DaysOfSupply, 1) {
			finiteSum += item.DaysOfSupply
			finiteCount++
		}
	}
	if finiteCount > 0 {
		report.Summary.AvgDaysSupply = round1(finiteSum / float64(finiteCount))
	}
	return report
}

// sortByUrgency orders by alert priority descending, then least supply
// first among equal tiers. The sort is stable so equal items keep their
// evaluation order.
func (c *Checker) sortByUrgency(items []FlaggedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		pi := c.cfg.alertPriority(items[i].AlertLevel)
		pj := c.cfg.alertPriority(items[j].AlertLevel)
		if pi != pj {
			return pi > pj
		}
		return items[i].DaysOfSupply < items[j].DaysOfSupply
	})
}

func formatItems(items []FlaggedItem) []FormattedItem {
	out := make([]FormattedItem, 0, len(items))
	for i, item := range items {
		formatted := FormattedItem{
			ID:                      i + 1,
			DrugName:                item.DrugName,
			AlertLevel:              item.AlertLevel,
			CurrentStock:            item.CurrentStock,
			AverageDailyDispense:    item.AverageDailyDispense,
			FDAStatus:               item.FlagStatus,
			FDAMatchedName:          item.MatchedName,
			RequiresImmediateAction: item.RequiresImmediateAction,
			HasFDAIssue:             item.HasFDAIssue,
		}
		if !math.IsInf(item.DaysOfSupply, 1) {
			v := round1(item.DaysOfSupply)
			formatted.DaysOfSupply = &v
		}
		if item.MatchConfidence > 0 {
			v := round1(float64(item.MatchConfidence))
			formatted.MatchConfidence = &v
		}
		if item.RecallClassification != "" {
			v := string(item.RecallClassification)
			formatted.RecallClassification = &v
		}
		if item.RecallReason != "" {
			v := item.RecallReason
			formatted.RecallReason = &v
		}
		out = append(out, formatted)
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
