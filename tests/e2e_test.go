//go:build integration

package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/arnavjainpro/HackRice/internal/advisor"
	"github.com/arnavjainpro/HackRice/internal/fdasource"
	"github.com/arnavjainpro/HackRice/internal/httpapi"
	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
	"github.com/arnavjainpro/HackRice/internal/inventorystore"
	"github.com/arnavjainpro/HackRice/internal/pipeline"
)

// stubShortages stands in for the headless-Chromium scraper, which is
// not available in CI.
type stubShortages struct {
	rows []inventorycheck.ShortageRow
}

func (s *stubShortages) Scrape(context.Context) ([]inventorycheck.ShortageRow, error) {
	return s.rows, nil
}

// startStack boots the full service against a temp SQLite store and a
// fake FDA enforcement API.
func startStack(t *testing.T) (base string, client *http.Client) {
	t.Helper()

	fda := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"product_description":"Valsartan, 160 mg tablets","reason_for_recall":"NDMA impurity","classification":"Class I","event_id":"81234"}
		]}`))
	}))
	t.Cleanup(fda.Close)

	store, err := inventorystore.Open(filepath.Join(t.TempDir(), "rxbridge.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	recalls := fdasource.NewRecallClient(fdasource.RecallConfig{
		BaseURL:            fda.URL,
		HTTPClient:         fda.Client(),
		RateLimitPerMinute: 60000,
	})
	shortages := &stubShortages{rows: []inventorycheck.ShortageRow{
		{GenericName: "Amoxicillin Oral Suspension", Status: "Currently in Shortage"},
	}}
	runner := pipeline.NewRunner(store, shortages, recalls, pipeline.Config{
		Clock: func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) },
	})

	srv := httptest.NewServer(httpapi.NewServer(store, runner, advisor.NewAdvisor(nil), nil))
	t.Cleanup(srv.Close)
	return srv.URL, srv.Client()
}

func TestEndToEndInventoryRun(t *testing.T) {
	base, client := startStack(t)

	// Seed inventory over the API: one recalled drug, one shortage
	// drug, one healthy drug.
	csv := "drug_name,stock,average_daily_dispense\n" +
		"Valsartan,30,10\n" +
		"Amoxicillin Oral Suspension,85,10\n" +
		"Metformin 500mg,9000,10\n"
	req, err := http.NewRequest(http.MethodPut, base+"/v1/inventory", strings.NewReader(csv))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "text/csv")
	res, err := client.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("csv import status = %d", res.StatusCode)
	}

	// Run the check.
	res, err = client.Post(base+"/v1/inventory/run", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("run status = %d", res.StatusCode)
	}
	var report inventorycheck.Report
	if err := json.NewDecoder(res.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}

	if report.Status != "success" {
		t.Fatalf("report status = %q: %s", report.Status, report.Message)
	}
	if report.Summary.TotalItemsChecked != 3 {
		t.Errorf("total checked = %d, want 3", report.Summary.TotalItemsChecked)
	}
	if len(report.Recalls) != 1 || report.Recalls[0].DrugName != "Valsartan" {
		t.Fatalf("expected Valsartan recall, got %+v", report.Recalls)
	}
	if report.Recalls[0].AlertLevel != inventorycheck.AlertRed {
		t.Errorf("recall alert = %s, want RED", report.Recalls[0].AlertLevel)
	}
	if len(report.OtherAlerts) != 1 || report.OtherAlerts[0].DrugName != "Amoxicillin Oral Suspension" {
		t.Fatalf("expected Amoxicillin shortage alert, got %+v", report.OtherAlerts)
	}
	if report.Timestamp != "2026-03-02T09:30:00Z" {
		t.Errorf("timestamp = %q", report.Timestamp)
	}
}

func TestEndToEndRecommendations(t *testing.T) {
	base, client := startStack(t)

	body := `{"item":{"drug_name":"Valsartan 160mg","alert_level":"RED","fda_status":"Recalled","days_of_supply":3,"recall_classification":"Class I"}}`
	res, err := client.Post(base+"/v1/alerts/recommendations", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var parsed struct {
		OK             bool                   `json:"ok"`
		Recommendation advisor.Recommendation `json:"recommendation"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		t.Fatal(err)
	}
	if !parsed.OK || parsed.Recommendation.PriorityScore != 10 {
		t.Errorf("unexpected recommendation: %+v", parsed.Recommendation)
	}
	if !strings.HasPrefix(parsed.Recommendation.RiskAssessment, "CRITICAL RISK") {
		t.Errorf("risk assessment = %q", parsed.Recommendation.RiskAssessment)
	}
}

func TestEndToEndHealth(t *testing.T) {
	base, client := startStack(t)

	res, err := client.Get(base + "/v1/health")
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if res.StatusCode != 200 {
		t.Fatalf("status = %d", res.StatusCode)
	}
	var body struct {
		OK             bool `json:"ok"`
		InventoryItems int  `json:"inventory_items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.OK {
		t.Error("expected ok health")
	}
}
