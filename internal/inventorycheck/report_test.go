package inventorycheck

import (
	"math"
	"testing"
)

func TestFormatReportEmpty(t *testing.T) {
	c := NewChecker(testConfig())
	report := c.formatReport(nil, 0)
	if report.Status != "success" {
		t.Fatalf("got status %q, want success", report.Status)
	}
	if len(report.Recalls) != 0 || len(report.OtherAlerts) != 0 {
		t.Fatal("expected empty partitions")
	}
	if report.Summary.ItemsRequiringAttention != 0 || report.Summary.AvgDaysSupply != 0 {
		t.Fatalf("expected zeroed summary: %+v", report.Summary)
	}
	if report.Recalls == nil || report.OtherAlerts == nil {
		t.Fatal("partitions must serialize as empty arrays, not null")
	}
}

func TestFormatReportPartition(t *testing.T) {
	c := NewChecker(testConfig())
	items := []FlaggedItem{
		{DrugName: "a", FlagStatus: StatusRecalled, AlertLevel: AlertYellow, DaysOfSupply: 90, HasFDAIssue: true},
		{DrugName: "b", FlagStatus: StatusInShortage, AlertLevel: AlertRed, DaysOfSupply: 2, HasFDAIssue: true},
		{DrugName: "c", FlagStatus: StatusLowStockOnly, AlertLevel: AlertBlue, DaysOfSupply: 5},
	}
	report := c.formatReport(items, 3)
	if len(report.Recalls) != 1 || report.Recalls[0].DrugName != "a" {
		t.Fatalf("recall partition wrong: %+v", report.Recalls)
	}
	if len(report.OtherAlerts) != 2 {
		t.Fatalf("other partition wrong: %+v", report.OtherAlerts)
	}
	if report.Summary.RecallItems != 1 || report.Summary.ShortageItems != 1 || report.Summary.LowStockItems != 1 {
		t.Fatalf("unexpected summary: %+v", report.Summary)
	}
}

func TestFormatReportSortOrder(t *testing.T) {
	c := NewChecker(testConfig())
	items := []FlaggedItem{
		{DrugName: "yellow", FlagStatus: StatusInShortage, AlertLevel: AlertYellow, DaysOfSupply: 70},
		{DrugName: "red-slow", FlagStatus: StatusInShortage, AlertLevel: AlertRed, DaysOfSupply: 5},
		{DrugName: "red-fast", FlagStatus: StatusInShortage, AlertLevel: AlertRed, DaysOfSupply: 2},
		{DrugName: "purple", FlagStatus: StatusInShortage, AlertLevel: AlertPurple, DaysOfSupply: 20},
	}
	report := c.formatReport(items, 4)
	got := []string{}
	for _, item := range report.OtherAlerts {
		got = append(got, item.DrugName)
	}
	want := []string{"red-fast", "red-slow", "purple", "yellow"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order %v, want %v", got, want)
		}
	}
}

func TestFormatReportIDsRestartPerPartition(t *testing.T) {
	c := NewChecker(testConfig())
	items := []FlaggedItem{
		{DrugName: "r1", FlagStatus: StatusRecalled, AlertLevel: AlertRed, DaysOfSupply: 1},
		{DrugName: "r2", FlagStatus: StatusRecalled, AlertLevel: AlertRed, DaysOfSupply: 2},
		{DrugName: "o1", FlagStatus: StatusInShortage, AlertLevel: AlertRed, DaysOfSupply: 3},
	}
	report := c.formatReport(items, 3)
	if report.Recalls[0].ID != 1 || report.Recalls[1].ID != 2 {
		t.Fatalf("recall ids: %d, %d", report.Recalls[0].ID, report.Recalls[1].ID)
	}
	if report.OtherAlerts[0].ID != 1 {
		t.Fatalf("other ids must restart at 1, got %d", report.OtherAlerts[0].ID)
	}
}

func TestFormatReportSummaryBreakdownAndAverage(t *testing.T) {
	c := NewChecker(testConfig())
	items := []FlaggedItem{
		{DrugName: "a", FlagStatus: StatusRecalled, AlertLevel: AlertRed, DaysOfSupply: 4},
		{DrugName: "b", FlagStatus: StatusInShortage, AlertLevel: AlertPurple, DaysOfSupply: 20},
		{DrugName: "c", FlagStatus: StatusDiscontinuation, AlertLevel: AlertYellow, DaysOfSupply: 90},
		{DrugName: "d", FlagStatus: StatusLowStockOnly, AlertLevel: AlertBlue, DaysOfSupply: math.Inf(1)},
	}
	report := c.formatReport(items, 10)
	s := report.Summary
	if s.TotalItemsChecked != 10 || s.ItemsRequiringAttention != 4 {
		t.Fatalf("counts: %+v", s)
	}
	if s.AlertBreakdown[AlertRed] != 1 || s.AlertBreakdown[AlertPurple] != 1 || s.AlertBreakdown[AlertYellow] != 1 || s.AlertBreakdown[AlertBlue] != 1 {
		t.Fatalf("breakdown: %+v", s.AlertBreakdown)
	}
	if s.CriticalItems != 2 {
		t.Fatalf("critical: %d, want 2 (RED+PURPLE)", s.CriticalItems)
	}
	if s.DiscontinuationItems != 1 {
		t.Fatalf("discontinuation: %d", s.DiscontinuationItems)
	}
	// (4 + 20 + 90) / 3; the infinite item is excluded.
	if s.AvgDaysSupply != 38 {
		t.Fatalf("avg: %v, want 38", s.AvgDaysSupply)
	}
}

func TestFormatReportRounding(t *testing.T) {
	c := NewChecker(testConfig())
	items := []FlaggedItem{
		{DrugName: "a", FlagStatus: StatusInShortage, AlertLevel: AlertRed, DaysOfSupply: 10.0 / 3.0, MatchConfidence: 87},
	}
	report := c.formatReport(items, 1)
	item := report.OtherAlerts[0]
	if item.DaysOfSupply == nil || *item.DaysOfSupply != 3.3 {
		t.Fatalf("days of supply: %v, want 3.3", item.DaysOfSupply)
	}
	if item.MatchConfidence == nil || *item.MatchConfidence != 87 {
		t.Fatalf("confidence: %v, want 87", item.MatchConfidence)
	}
}
