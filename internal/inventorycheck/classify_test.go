package inventorycheck

import (
	"math"
	"testing"
)

func TestClassifySeverityRecalled(t *testing.T) {
	cases := []struct {
		class RecallClass
		want  Severity
	}{
		{class: RecallClassI, want: SeverityCritical},
		{class: RecallClassII, want: SeverityHigh},
		{class: RecallClassIII, want: SeverityMedium},
		{class: "", want: SeverityMedium},
	}
	for _, tc := range cases {
		if got := ClassifySeverity(StatusRecalled, tc.class, 100); got != tc.want {
			t.Fatalf("recalled %q: got %v, want %v", tc.class, got, tc.want)
		}
	}
}

func TestClassifySeverityShortage(t *testing.T) {
	cases := []struct {
		days float64
		want Severity
	}{
		{days: 0, want: SeverityCritical},
		{days: 3, want: SeverityCritical},
		{days: 3.1, want: SeverityHigh},
		{days: 7, want: SeverityHigh},
		{days: 14, want: SeverityMedium},
		{days: 14.1, want: SeverityLow},
		{days: math.Inf(1), want: SeverityLow},
	}
	for _, tc := range cases {
		if got := ClassifySeverity(StatusInShortage, "", tc.days); got != tc.want {
			t.Fatalf("shortage %v days: got %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestClassifySeverityDiscontinuation(t *testing.T) {
	cases := []struct {
		days float64
		want Severity
	}{
		{days: 7, want: SeverityHigh},
		{days: 7.5, want: SeverityMedium},
		{days: 30, want: SeverityMedium},
		{days: 31, want: SeverityLow},
	}
	for _, tc := range cases {
		if got := ClassifySeverity(StatusDiscontinuation, "", tc.days); got != tc.want {
			t.Fatalf("discontinuation %v days: got %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestClassifySeverityDefault(t *testing.T) {
	if got := ClassifySeverity(StatusResolved, "", 1); got != SeverityLow {
		t.Fatalf("resolved: got %v, want Low", got)
	}
	if got := ClassifySeverity("Some Future Status", "", 1); got != SeverityLow {
		t.Fatalf("unknown status: got %v, want Low", got)
	}
}

func TestClassifyAlertLevelFlagged(t *testing.T) {
	cases := []struct {
		days float64
		want AlertLevel
	}{
		{days: 0, want: AlertRed},
		{days: 13.9, want: AlertRed},
		{days: 14, want: AlertPurple}, // exactly 2 weeks
		{days: 60, want: AlertPurple}, // 60-day boundary is inclusive
		{days: 61, want: AlertYellow},
		{days: math.Inf(1), want: AlertYellow},
	}
	for _, tc := range cases {
		if got := ClassifyAlertLevel(tc.days, true); got != tc.want {
			t.Fatalf("flagged %v days: got %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestClassifyAlertLevelUnflagged(t *testing.T) {
	cases := []struct {
		days float64
		want AlertLevel
	}{
		{days: 13.9, want: AlertBlue},
		{days: 14, want: AlertNone},
		{days: 200, want: AlertNone},
		{days: math.Inf(1), want: AlertNone},
	}
	for _, tc := range cases {
		if got := ClassifyAlertLevel(tc.days, false); got != tc.want {
			t.Fatalf("unflagged %v days: got %v, want %v", tc.days, got, tc.want)
		}
	}
}

func TestRequiresImmediateAction(t *testing.T) {
	if !RequiresImmediateAction(AlertRed) || !RequiresImmediateAction(AlertPurple) {
		t.Fatal("RED and PURPLE require immediate action")
	}
	if RequiresImmediateAction(AlertYellow) || RequiresImmediateAction(AlertBlue) || RequiresImmediateAction(AlertNone) {
		t.Fatal("YELLOW, BLUE, and none do not require immediate action")
	}
}

func TestPriorityScore(t *testing.T) {
	cfg := DefaultConfig()
	cases := []struct {
		status   Status
		hasIssue bool
		want     int
	}{
		{status: StatusRecalled, hasIssue: true, want: 3},
		{status: StatusInShortage, hasIssue: true, want: 2},
		{status: StatusDiscontinuation, hasIssue: true, want: 1},
		{status: StatusResolved, hasIssue: true, want: 0},
		{status: "Unknown", hasIssue: true, want: 0},
		{status: StatusRecalled, hasIssue: false, want: 0},
	}
	for _, tc := range cases {
		if got := cfg.priorityScore(tc.status, tc.hasIssue); got != tc.want {
			t.Fatalf("priorityScore(%q, %v) = %d, want %d", tc.status, tc.hasIssue, got, tc.want)
		}
	}
}
