package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

// minAlternativeSupplyDays is the floor for suggesting an in-stock
// drug as a substitute.
const minAlternativeSupplyDays = 14.0

// Advisor layers LLM-suggested therapeutic alternatives on top of the
// rule-based engine. Suggestions are only surfaced when they validate
// against the pharmacy's own inventory, and any LLM failure falls back
// to the engine's output.
type Advisor struct {
	engine  *Engine
	caller  LLMCaller
	matcher *inventorycheck.Matcher
}

// NewAdvisor accepts a nil caller, in which case recommendations are
// purely rule based.
func NewAdvisor(caller LLMCaller) *Advisor {
	return &Advisor{
		engine:  NewEngine(),
		caller:  caller,
		matcher: inventorycheck.NewMatcher(inventorycheck.DefaultConfig()),
	}
}

func (a *Advisor) Recommend(ctx context.Context, item inventorycheck.FormattedItem, inventory []inventorycheck.InventoryRecord) Recommendation {
	rec := a.engine.Recommend(item)
	if a.caller == nil || item.AlertLevel == inventorycheck.AlertBlue {
		return rec
	}

	names, err := a.suggestAlternatives(ctx, item)
	if err != nil {
		log.Printf("advisor: alternative suggestion for %s failed, using rule-based fallback: %v", item.DrugName, err)
		return rec
	}
	validated := a.validateAlternatives(names, inventory)
	if len(validated) > 0 {
		rec.Alternatives = validated
	}
	return rec
}

type alternativesResponse struct {
	Alternatives []string `json:"alternatives"`
}

func (a *Advisor) suggestAlternatives(ctx context.Context, item inventorycheck.FormattedItem) ([]string, error) {
	prompt := fmt.Sprintf(`A pharmacy has flagged %q (status: %s). List up to 8 therapeutic alternative medications a pharmacist could substitute. Use generic names.

Respond with only valid JSON matching: {"alternatives": ["name", ...]}`, item.DrugName, item.FDAStatus)

	feedback := ""
	for attempt := 1; attempt <= 3; attempt++ {
		full := prompt
		if feedback != "" {
			full += "\n\n" + feedback
		}
		raw, err := a.caller.GenerateJSON(ctx, full)
		if err != nil {
			return nil, err
		}
		var parsed alternativesResponse
		if jsonErr := json.Unmarshal([]byte(stripCodeFences(raw)), &parsed); jsonErr != nil {
			if attempt < 3 {
				feedback = "Your previous response was not valid JSON. Respond with only valid JSON."
				continue
			}
			return nil, fmt.Errorf("parse alternatives: %w", jsonErr)
		}
		if len(parsed.Alternatives) == 0 {
			if attempt < 3 {
				feedback = "Your previous response listed no alternatives. List at least one."
				continue
			}
			return nil, fmt.Errorf("no alternatives returned")
		}
		return parsed.Alternatives, nil
	}
	return nil, fmt.Errorf("alternative suggestion failed after retries")
}

// validateAlternatives keeps only suggestions that match an in-stock
// inventory record with enough supply to absorb new prescriptions.
// Inventory names are normalized before matching so an LLM's generic
// name lines up with the pharmacy's labeled one.
func (a *Advisor) validateAlternatives(names []string, inventory []inventorycheck.InventoryRecord) []string {
	byNorm := make(map[string]inventorycheck.InventoryRecord, len(inventory))
	candidates := make([]string, 0, len(inventory))
	for _, rec := range inventory {
		norm := inventorycheck.NormalizeName(rec.DrugName)
		if norm == "" {
			continue
		}
		if _, ok := byNorm[norm]; ok {
			continue
		}
		byNorm[norm] = rec
		candidates = append(candidates, norm)
	}

	var out []string
	seen := map[string]struct{}{}
	for _, name := range names {
		if strings.TrimSpace(name) == "" {
			continue
		}
		match := a.matcher.Match(name, candidates)
		if match.Type == inventorycheck.MatchNone {
			continue
		}
		rec := byNorm[match.MatchedName]
		days := rec.DaysOfSupply()
		if days < minAlternativeSupplyDays || rec.Stock <= 0 {
			continue
		}
		if _, dup := seen[match.MatchedName]; dup {
			continue
		}
		seen[match.MatchedName] = struct{}{}
		if math.IsInf(days, 1) {
			out = append(out, fmt.Sprintf("%s (in stock: %d units)", rec.DrugName, rec.Stock))
		} else {
			out = append(out, fmt.Sprintf("%s (in stock: %d units, %.1f days supply)", rec.DrugName, rec.Stock, days))
		}
		if len(out) == 4 {
			break
		}
	}
	return out
}
