package advisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

type stubCaller struct {
	responses []string
	err       error
	calls     int
	prompts   []string
}

func (s *stubCaller) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	idx := s.calls - 1
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	return s.responses[idx], nil
}

func testInventory() []inventorycheck.InventoryRecord {
	return []inventorycheck.InventoryRecord{
		{DrugName: "Losartan Potassium 50mg", Stock: 500, AverageDailyDispense: 10},
		{DrugName: "Irbesartan 150mg", Stock: 30, AverageDailyDispense: 10},
		{DrugName: "Candesartan 8mg", Stock: 0, AverageDailyDispense: 0},
	}
}

func TestRecommendValidatesAlternativesAgainstInventory(t *testing.T) {
	caller := &stubCaller{responses: []string{
		`{"alternatives": ["Losartan Potassium", "Irbesartan", "Telmisartan"]}`,
	}}
	a := NewAdvisor(caller)

	rec := a.Recommend(context.Background(), redRecallItem(), testInventory())

	// Losartan has 50 days of supply and validates. Irbesartan has
	// only 3 days and Telmisartan is not stocked at all.
	if len(rec.Alternatives) != 1 {
		t.Fatalf("expected 1 validated alternative, got %v", rec.Alternatives)
	}
	if !strings.Contains(rec.Alternatives[0], "Losartan Potassium 50mg") {
		t.Errorf("unexpected alternative: %q", rec.Alternatives[0])
	}
	if !strings.Contains(rec.Alternatives[0], "50.0 days supply") {
		t.Errorf("expected supply annotation, got %q", rec.Alternatives[0])
	}
	if caller.calls != 1 {
		t.Errorf("expected 1 LLM call, got %d", caller.calls)
	}
}

func TestRecommendFallsBackWhenNoSuggestionValidates(t *testing.T) {
	caller := &stubCaller{responses: []string{
		`{"alternatives": ["Telmisartan", "Olmesartan"]}`,
	}}
	a := NewAdvisor(caller)

	rec := a.Recommend(context.Background(), redRecallItem(), testInventory())
	base := NewEngine().Recommend(redRecallItem())
	if len(rec.Alternatives) != len(base.Alternatives) {
		t.Errorf("expected rule-based alternatives, got %v", rec.Alternatives)
	}
}

func TestRecommendFallsBackOnLLMError(t *testing.T) {
	caller := &stubCaller{err: errors.New("api unavailable")}
	a := NewAdvisor(caller)

	rec := a.Recommend(context.Background(), redRecallItem(), testInventory())
	if len(rec.Alternatives) == 0 {
		t.Fatal("expected rule-based fallback alternatives")
	}
	if rec.PriorityScore != 10 {
		t.Errorf("fallback should keep engine scoring, got %d", rec.PriorityScore)
	}
}

func TestRecommendRetriesInvalidJSON(t *testing.T) {
	caller := &stubCaller{responses: []string{
		"not json at all",
		"```json\n{\"alternatives\": [\"Losartan Potassium\"]}\n```",
	}}
	a := NewAdvisor(caller)

	rec := a.Recommend(context.Background(), redRecallItem(), testInventory())
	if caller.calls != 2 {
		t.Fatalf("expected 2 LLM calls, got %d", caller.calls)
	}
	if !strings.Contains(caller.prompts[1], "not valid JSON") {
		t.Errorf("retry prompt should carry feedback, got %q", caller.prompts[1])
	}
	if len(rec.Alternatives) != 1 || !strings.Contains(rec.Alternatives[0], "Losartan") {
		t.Errorf("unexpected alternatives: %v", rec.Alternatives)
	}
}

func TestRecommendNilCallerIsRuleBased(t *testing.T) {
	a := NewAdvisor(nil)
	rec := a.Recommend(context.Background(), redRecallItem(), testInventory())
	base := NewEngine().Recommend(redRecallItem())
	if rec.RiskAssessment != base.RiskAssessment {
		t.Errorf("expected engine output, got %q", rec.RiskAssessment)
	}
}

func TestRecommendSkipsLLMForMonitoringAlerts(t *testing.T) {
	caller := &stubCaller{responses: []string{`{"alternatives": ["anything"]}`}}
	a := NewAdvisor(caller)

	item := inventorycheck.FormattedItem{
		DrugName:     "Metformin",
		AlertLevel:   inventorycheck.AlertBlue,
		DaysOfSupply: floatPtr(10),
		FDAStatus:    inventorycheck.StatusLowStockOnly,
	}
	a.Recommend(context.Background(), item, testInventory())
	if caller.calls != 0 {
		t.Errorf("monitoring alerts should not call the LLM, got %d calls", caller.calls)
	}
}

func TestValidateAlternativesDedupes(t *testing.T) {
	a := NewAdvisor(nil)
	out := a.validateAlternatives(
		[]string{"Losartan Potassium", "losartan potassium 50mg", ""},
		testInventory(),
	)
	if len(out) != 1 {
		t.Fatalf("expected 1 deduplicated alternative, got %v", out)
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
	}
	for _, c := range cases {
		if got := stripCodeFences(c.in); got != c.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
