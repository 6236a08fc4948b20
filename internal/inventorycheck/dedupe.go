package inventorycheck

import "sort"

// MergeRegulatory combines the shortage feed and the recall feed into a
// single table with at most one record per drug name, keeping the
// highest-priority status. Ties retain the first record in input order.
func (c *Checker) MergeRegulatory(shortages []ShortageRow, recalls []RecallRow) []RegulatoryRecord {
	combined := make([]RegulatoryRecord, 0, len(shortages)+len(recalls))
	for _, row := range shortages {
		combined = append(combined, RegulatoryRecord{
			DrugName: row.GenericName,
			Status:   Status(row.Status),
			Source:   SourceShortageFeed,
		})
	}
	for _, row := range recalls {
		combined = append(combined, RegulatoryRecord{
			DrugName:             row.DrugName,
			Status:               StatusRecalled,
			Source:               SourceRecallFeed,
			RecallClassification: RecallClass(row.Classification),
			RecallReason:         row.Reason,
		})
	}
	if len(combined) == 0 {
		return nil
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return c.cfg.statusPriority(combined[i].Status) > c.cfg.statusPriority(combined[j].Status)
	})

	seen := map[string]struct{}{}
	out := combined[:0]
	for _, rec := range combined {
		if _, dup := seen[rec.DrugName]; dup {
			continue
		}
		seen[rec.DrugName] = struct{}{}
		out = append(out, rec)
	}
	return out
}
