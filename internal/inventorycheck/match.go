package inventorycheck

import "strings"

// Matcher resolves the best regulatory-record name for an inventory
// drug name using a staged exact-then-fuzzy comparison.
type Matcher struct {
	cfg Config
}

func NewMatcher(cfg Config) *Matcher {
	return &Matcher{cfg: cfg.withDefaults()}
}

// Match returns the best candidate for name, or a no_match result when
// nothing clears the fuzzy threshold. For a fixed candidate list the
// result is deterministic; ties go to the first candidate in input
// order.
func (m *Matcher) Match(name string, candidates []string) MatchResult {
	if strings.TrimSpace(name) == "" || len(candidates) == 0 {
		return MatchResult{Type: MatchNone}
	}

	target := NormalizeName(name)
	for _, cand := range candidates {
		if NormalizeName(cand) == target {
			return MatchResult{MatchedName: cand, Confidence: 100, Type: MatchExact}
		}
	}

	// Fuzzy stage scores the normalized query against raw candidate
	// text; candidates keep their source formatting.
	bestIdx := -1
	bestScore := 0
	for i, cand := range candidates {
		score := TokenSetRatio(target, cand)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestScore >= m.cfg.FuzzyMatchThreshold {
		return MatchResult{MatchedName: candidates[bestIdx], Confidence: bestScore, Type: MatchFuzzy}
	}
	return MatchResult{Type: MatchNone}
}
