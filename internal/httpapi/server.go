package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/arnavjainpro/HackRice/internal/advisor"
	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
	"github.com/arnavjainpro/HackRice/internal/reportdoc"
)

const (
	CodeValidation  = "validation_error"
	CodeNotFound    = "not_found"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal_error"
)

// Error is the typed API error surfaced to clients as JSON.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Status    int    `json:"-"`
	Transient bool   `json:"transient"`
}

func (e *Error) Error() string { return e.Message }

func NewValidationError(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg, Status: 400}
}

func NewValidationJSONError(err error) *Error {
	return &Error{Code: CodeValidation, Message: "invalid JSON: " + err.Error(), Status: 400}
}

type Store interface {
	List() ([]inventorycheck.InventoryRecord, error)
	Upsert(records []inventorycheck.InventoryRecord) error
	ImportCSV(r io.Reader) (int, error)
	Count() (int, error)
}

type Checker interface {
	Run(ctx context.Context) (inventorycheck.Report, error)
	Evaluate(ctx context.Context, inventory []inventorycheck.InventoryRecord) (inventorycheck.Report, error)
	InvalidateCache()
}

type Recommender interface {
	Recommend(ctx context.Context, item inventorycheck.FormattedItem, inventory []inventorycheck.InventoryRecord) advisor.Recommendation
}

type PDFRenderer interface {
	Render(ctx context.Context, markdown string) ([]byte, error)
}

type Server struct {
	store       Store
	checker     Checker
	recommender Recommender
	renderer    PDFRenderer
}

// NewServer wires the API routes. The renderer may be nil, in which
// case PDF export answers 503.
func NewServer(store Store, checker Checker, recommender Recommender, renderer PDFRenderer) http.Handler {
	s := &Server{
		store:       store,
		checker:     checker,
		recommender: recommender,
		renderer:    renderer,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/inventory/run", s.handleRun)
	mux.HandleFunc("/v1/inventory/evaluate", s.handleEvaluate)
	mux.HandleFunc("/v1/inventory", s.handleInventory)
	mux.HandleFunc("/v1/alerts/recommendations", s.handleRecommendations)
	mux.HandleFunc("/v1/reports/pdf", s.handleReportPDF)
	mux.HandleFunc("/v1/health", s.handleHealth)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeAPIError(w http.ResponseWriter, err error) {
	var ae *Error
	if errors.As(err, &ae) {
		writeJSON(w, ae.Status, map[string]any{
			"ok": false,
			"error": map[string]any{
				"code":      ae.Code,
				"message":   ae.Message,
				"transient": ae.Transient,
			},
		})
		return
	}
	writeJSON(w, 500, map[string]any{
		"ok": false,
		"error": map[string]any{
			"code":      CodeInternal,
			"message":   err.Error(),
			"transient": true,
		},
	})
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return []byte("{}"), nil
	}
	blob, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(blob) == 0 {
		blob = []byte("{}")
	}
	return blob, nil
}

func methodOnly(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	if refresh := strings.TrimSpace(r.URL.Query().Get("refresh")); refresh == "1" || refresh == "true" {
		s.checker.InvalidateCache()
	}
	report, err := s.checker.Run(r.Context())
	if err != nil {
		writeAPIError(w, &Error{Code: CodeUnavailable, Message: err.Error(), Status: 503, Transient: true})
		return
	}
	writeJSON(w, 200, report)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeAPIError(w, NewValidationJSONError(err))
		return
	}
	var req struct {
		Inventory []inventorycheck.InventoryRecord `json:"inventory"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeAPIError(w, NewValidationJSONError(err))
		return
	}
	if len(req.Inventory) == 0 {
		writeAPIError(w, NewValidationError("inventory is required"))
		return
	}
	report, err := s.checker.Evaluate(r.Context(), req.Inventory)
	if err != nil {
		writeAPIError(w, &Error{Code: CodeUnavailable, Message: err.Error(), Status: 503, Transient: true})
		return
	}
	writeJSON(w, 200, report)
}

func (s *Server) handleInventory(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		records, err := s.store.List()
		if err != nil {
			writeAPIError(w, err)
			return
		}
		writeJSON(w, 200, map[string]any{"inventory": records, "count": len(records)})
	case http.MethodPut:
		s.handleInventoryUpload(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleInventoryUpload(w http.ResponseWriter, r *http.Request) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "text/csv") {
		n, err := s.store.ImportCSV(r.Body)
		if err != nil {
			writeAPIError(w, NewValidationError(fmt.Sprintf("csv import: %v", err)))
			return
		}
		writeJSON(w, 200, map[string]any{"ok": true, "imported": n})
		return
	}

	blob, err := readBody(r)
	if err != nil {
		writeAPIError(w, NewValidationJSONError(err))
		return
	}
	var req struct {
		Records []inventorycheck.InventoryRecord `json:"records"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeAPIError(w, NewValidationJSONError(err))
		return
	}
	if len(req.Records) == 0 {
		writeAPIError(w, NewValidationError("records is required"))
		return
	}
	if err := s.store.Upsert(req.Records); err != nil {
		writeAPIError(w, err)
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "imported": len(req.Records)})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodPost) {
		return
	}
	blob, err := readBody(r)
	if err != nil {
		writeAPIError(w, NewValidationJSONError(err))
		return
	}
	var req struct {
		Item inventorycheck.FormattedItem `json:"item"`
	}
	if err := json.Unmarshal(blob, &req); err != nil {
		writeAPIError(w, NewValidationJSONError(err))
		return
	}
	if strings.TrimSpace(req.Item.DrugName) == "" {
		writeAPIError(w, NewValidationError("item.drug_name is required"))
		return
	}

	inventory, err := s.store.List()
	if err != nil {
		writeAPIError(w, err)
		return
	}
	rec := s.recommender.Recommend(r.Context(), req.Item, inventory)
	writeJSON(w, 200, map[string]any{"ok": true, "recommendation": rec})
}

func (s *Server) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	if s.renderer == nil {
		writeAPIError(w, &Error{Code: CodeUnavailable, Message: "pdf rendering not configured", Status: 503})
		return
	}
	report, err := s.checker.Run(r.Context())
	if err != nil {
		writeAPIError(w, &Error{Code: CodeUnavailable, Message: err.Error(), Status: 503, Transient: true})
		return
	}

	var recs []advisor.Recommendation
	if s.recommender != nil {
		inventory, invErr := s.store.List()
		if invErr == nil {
			for _, item := range report.Recalls {
				recs = append(recs, s.recommender.Recommend(r.Context(), item, inventory))
			}
			for _, item := range report.OtherAlerts {
				if item.AlertLevel == inventorycheck.AlertRed || item.AlertLevel == inventorycheck.AlertPurple {
					recs = append(recs, s.recommender.Recommend(r.Context(), item, inventory))
				}
			}
		}
	}

	markdown := reportdoc.BuildMarkdown(report, recs)
	pdf, err := s.renderer.Render(r.Context(), markdown)
	if err != nil {
		writeAPIError(w, &Error{Code: CodeInternal, Message: "pdf render: " + err.Error(), Status: 500, Transient: true})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory-risk-report.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !methodOnly(w, r, http.MethodGet) {
		return
	}
	count, err := s.store.Count()
	if err != nil {
		writeJSON(w, 200, map[string]any{"ok": false, "error": err.Error()})
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "inventory_items": count})
}
