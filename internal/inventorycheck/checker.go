package inventorycheck

// Checker is the matching-and-classification engine. One Evaluate call
// consumes two immutable input tables and produces one report; Checkers
// hold no per-call state and are safe for concurrent use.
type Checker struct {
	cfg     Config
	matcher *Matcher
}

func NewChecker(cfg Config) *Checker {
	cfg = cfg.withDefaults()
	return &Checker{cfg: cfg, matcher: NewMatcher(cfg)}
}

// Evaluate cross-references inventory against regulatory status records
// and returns the alert report. An empty inventory is the only
// precondition failure and yields an error-status report; everything
// else degrades to narrower alerts.
func (c *Checker) Evaluate(inventory []InventoryRecord, regulatory []RegulatoryRecord) Report {
	if len(inventory) == 0 {
		return Report{
			Status:    "error",
			Message:   "no inventory data available",
			Timestamp: c.cfg.Clock().UTC().Format(timestampLayout),
		}
	}

	names := make([]string, 0, len(regulatory))
	seen := map[string]struct{}{}
	byName := map[string]RegulatoryRecord{}
	for _, rec := range regulatory {
		if _, dup := seen[rec.DrugName]; dup {
			continue
		}
		seen[rec.DrugName] = struct{}{}
		names = append(names, rec.DrugName)
		byName[rec.DrugName] = rec
	}

	var flagged []FlaggedItem
	for _, inv := range inventory {
		days := inv.DaysOfSupply()

		match := MatchResult{Type: MatchNone}
		var reg *RegulatoryRecord
		if len(names) > 0 {
			match = c.matcher.Match(inv.DrugName, names)
			if match.MatchedName != "" && match.Confidence >= c.cfg.FuzzyMatchThreshold {
				if rec, ok := byName[match.MatchedName]; ok {
					reg = &rec
				}
			}
		}

		hasIssue := reg != nil
		level := ClassifyAlertLevel(days, hasIssue)
		if level == AlertNone {
			continue
		}

		item := FlaggedItem{
			DrugName:             inv.DrugName,
			CurrentStock:         inv.Stock,
			AverageDailyDispense: inv.AverageDailyDispense,
			DaysOfSupply:         days,
			MatchType:            MatchNone,
			FlagStatus:           StatusLowStockOnly,
			FlagSource:           SourceInventoryAnalysis,
			Severity:             SeverityLow,
			AlertLevel:           level,
		}
		item.RequiresImmediateAction = RequiresImmediateAction(level)
		if hasIssue {
			item.MatchedName = match.MatchedName
			item.MatchConfidence = match.Confidence
			item.MatchType = match.Type
			item.FlagStatus = reg.Status
			item.FlagSource = reg.Source
			item.RecallClassification = reg.RecallClassification
			item.RecallReason = reg.RecallReason
			item.Severity = ClassifySeverity(reg.Status, reg.RecallClassification, days)
			item.PriorityScore = c.cfg.priorityScore(reg.Status, true)
			item.HasFDAIssue = true
		}
		flagged = append(flagged, item)
	}

	return c.formatReport(flagged, len(inventory))
}
