package reportdoc

import (
	"fmt"
	"strings"

	"github.com/arnavjainpro/HackRice/internal/advisor"
	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

// BuildMarkdown renders a check report, plus any per-item
// recommendations, as a printable markdown document.
func BuildMarkdown(rep inventorycheck.Report, recs []advisor.Recommendation) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Pharmacy Inventory Risk Report\n\n")
	fmt.Fprintf(&b, "- Generated: %s\n", rep.Timestamp)
	fmt.Fprintf(&b, "- Status: %s\n\n", rep.Status)

	if rep.Status != "success" {
		fmt.Fprintf(&b, "> %s\n", sanitize(rep.Message))
		return b.String()
	}

	// --- Summary ---
	fmt.Fprintf(&b, "## Summary\n\n")
	fmt.Fprintf(&b, "| Metric | Value |\n|--------|-------|\n")
	fmt.Fprintf(&b, "| Items checked | %d |\n", rep.Summary.TotalItemsChecked)
	fmt.Fprintf(&b, "| Items requiring attention | %d |\n", rep.Summary.ItemsRequiringAttention)
	fmt.Fprintf(&b, "| Recalls | %d |\n", rep.Summary.RecallItems)
	fmt.Fprintf(&b, "| Shortages | %d |\n", rep.Summary.ShortageItems)
	fmt.Fprintf(&b, "| Discontinuations | %d |\n", rep.Summary.DiscontinuationItems)
	fmt.Fprintf(&b, "| Low stock only | %d |\n", rep.Summary.LowStockItems)
	fmt.Fprintf(&b, "| Critical items | %d |\n", rep.Summary.CriticalItems)
	fmt.Fprintf(&b, "| Average days of supply | %.1f |\n\n", rep.Summary.AvgDaysSupply)

	if len(rep.Summary.AlertBreakdown) > 0 {
		fmt.Fprintf(&b, "### Alert Breakdown\n\n")
		fmt.Fprintf(&b, "| Level | Count |\n|-------|-------|\n")
		for _, level := range []inventorycheck.AlertLevel{
			inventorycheck.AlertRed,
			inventorycheck.AlertPurple,
			inventorycheck.AlertYellow,
			inventorycheck.AlertBlue,
		} {
			if n, ok := rep.Summary.AlertBreakdown[level]; ok {
				fmt.Fprintf(&b, "| %s | %d |\n", level, n)
			}
		}
		fmt.Fprintf(&b, "\n")
	}

	// --- Recalls ---
	fmt.Fprintf(&b, "## Recalled Medications\n\n")
	if len(rep.Recalls) == 0 {
		fmt.Fprintf(&b, "No recalled medications found in inventory.\n\n")
	} else {
		writeItemTable(&b, rep.Recalls, true)
	}

	// --- Other alerts ---
	fmt.Fprintf(&b, "## Shortages and Stock Alerts\n\n")
	if len(rep.OtherAlerts) == 0 {
		fmt.Fprintf(&b, "No shortage or stock alerts.\n\n")
	} else {
		writeItemTable(&b, rep.OtherAlerts, false)
	}

	// --- Recommendations ---
	if len(recs) > 0 {
		fmt.Fprintf(&b, "---\n\n## Recommended Actions\n\n")
		for _, rec := range recs {
			fmt.Fprintf(&b, "### %s (%s)\n\n", sanitize(rec.DrugName), rec.AlertLevel)
			fmt.Fprintf(&b, "%s\n\n", sanitize(rec.RiskAssessment))
			fmt.Fprintf(&b, "- Priority score: %d/10\n", rec.PriorityScore)
			fmt.Fprintf(&b, "- Timeline: %s\n\n", sanitize(rec.Timeline))
			if len(rec.ImmediateActions) > 0 {
				fmt.Fprintf(&b, "Immediate actions:\n\n")
				for _, a := range rec.ImmediateActions {
					fmt.Fprintf(&b, "1. %s\n", sanitize(a))
				}
				fmt.Fprintf(&b, "\n")
			}
			if len(rec.Alternatives) > 0 {
				fmt.Fprintf(&b, "Alternatives:\n\n")
				for _, a := range rec.Alternatives {
					fmt.Fprintf(&b, "- %s\n", sanitize(a))
				}
				fmt.Fprintf(&b, "\n")
			}
		}
	}
	return b.String()
}

func writeItemTable(b *strings.Builder, items []inventorycheck.FormattedItem, withRecall bool) {
	if withRecall {
		fmt.Fprintf(b, "| # | Drug | Alert | Days Supply | Stock | Status | Class | Reason |\n")
		fmt.Fprintf(b, "|---|------|-------|-------------|-------|--------|-------|--------|\n")
	} else {
		fmt.Fprintf(b, "| # | Drug | Alert | Days Supply | Stock | Status | Match |\n")
		fmt.Fprintf(b, "|---|------|-------|-------------|-------|--------|-------|\n")
	}
	for _, it := range items {
		days := "n/a"
		if it.DaysOfSupply != nil {
			days = fmt.Sprintf("%.1f", *it.DaysOfSupply)
		}
		if withRecall {
			class := "—"
			if it.RecallClassification != nil {
				class = sanitizeCell(*it.RecallClassification)
			}
			reason := "—"
			if it.RecallReason != nil {
				reason = sanitizeCell(*it.RecallReason)
			}
			fmt.Fprintf(b, "| %d | %s | %s | %s | %d | %s | %s | %s |\n",
				it.ID, sanitizeCell(it.DrugName), it.AlertLevel, days, it.CurrentStock, it.FDAStatus, class, reason)
		} else {
			match := "—"
			if it.MatchConfidence != nil {
				match = fmt.Sprintf("%s (%.0f%%)", sanitizeCell(it.FDAMatchedName), *it.MatchConfidence)
			}
			fmt.Fprintf(b, "| %d | %s | %s | %s | %d | %s | %s |\n",
				it.ID, sanitizeCell(it.DrugName), it.AlertLevel, days, it.CurrentStock, it.FDAStatus, match)
		}
	}
	fmt.Fprintf(b, "\n")
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\n", " "))
}

func sanitizeCell(s string) string {
	s = sanitize(s)
	return strings.ReplaceAll(s, "|", "\\|")
}
