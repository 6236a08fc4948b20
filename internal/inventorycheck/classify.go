package inventorycheck

// ClassifySeverity maps regulatory status, recall class, and remaining
// supply onto a severity label. Total: unrecognized inputs fall through
// to Low.
func ClassifySeverity(status Status, recallClass RecallClass, daysOfSupply float64) Severity {
	switch status {
	case StatusRecalled:
		switch recallClass {
		case RecallClassI:
			return SeverityCritical
		case RecallClassII:
			return SeverityHigh
		default:
			return SeverityMedium
		}
	case StatusInShortage:
		switch {
		case daysOfSupply <= 3:
			return SeverityCritical
		case daysOfSupply <= 7:
			return SeverityHigh
		case daysOfSupply <= 14:
			return SeverityMedium
		default:
			return SeverityLow
		}
	case StatusDiscontinuation:
		switch {
		case daysOfSupply <= 7:
			return SeverityHigh
		case daysOfSupply <= 30:
			return SeverityMedium
		default:
			return SeverityLow
		}
	}
	return SeverityLow
}

// ClassifyAlertLevel computes the dashboard tier. hasIssue marks items
// with a regulatory match; without one, only low stock earns a BLUE
// alert and everything else is excluded (AlertNone).
func ClassifyAlertLevel(daysOfSupply float64, hasIssue bool) AlertLevel {
	weeks := daysOfSupply / 7
	if hasIssue {
		switch {
		case weeks < 2:
			return AlertRed
		case weeks <= 60.0/7.0: // two weeks to 60 days, boundary inclusive
			return AlertPurple
		default:
			return AlertYellow
		}
	}
	if weeks < 2 {
		return AlertBlue
	}
	return AlertNone
}

// RequiresImmediateAction reports whether the tier demands same-day
// pharmacist intervention.
func RequiresImmediateAction(level AlertLevel) bool {
	return level == AlertRed || level == AlertPurple
}

func (c Config) priorityScore(status Status, hasIssue bool) int {
	if !hasIssue {
		return 0
	}
	return c.statusPriority(status)
}
