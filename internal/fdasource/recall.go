package fdasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

const (
	DefaultRecallBaseURL      = "https://api.fda.gov/drug/enforcement.json"
	DefaultRecallLimit        = 500
	DefaultRateLimitPerMinute = 120
)

type RecallConfig struct {
	// APIKey raises FDA rate limits; the API works without one.
	APIKey             string
	BaseURL            string
	Limit              int
	RateLimitPerMinute int
	HTTPClient         *http.Client
}

// RecallClient fetches drug recall records from the FDA enforcement
// API. Class I recalls are fetched first; if none come back, a broader
// drug search is used as fallback.
type RecallClient struct {
	cfg     RecallConfig
	limiter <-chan time.Time
}

func NewRecallClient(cfg RecallConfig) *RecallClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultRecallBaseURL
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultRecallLimit
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	ticker := time.NewTicker(time.Minute / time.Duration(cfg.RateLimitPerMinute))
	return &RecallClient{cfg: cfg, limiter: ticker.C}
}

type enforcementResult struct {
	ProductDescription string `json:"product_description"`
	ReasonForRecall    string `json:"reason_for_recall"`
	Classification     string `json:"classification"`
	Status             string `json:"status"`
	RecallInitiation   string `json:"recall_initiation_date"`
	EventID            string `json:"event_id"`
}

type enforcementResponse struct {
	Results []enforcementResult `json:"results"`
}

// FetchRecalls returns deduplicated recall rows for the inventory
// check, most specific search first.
func (c *RecallClient) FetchRecalls(ctx context.Context) ([]inventorycheck.RecallRow, error) {
	limit := c.cfg.Limit
	if limit > 500 {
		limit = 500
	}
	results, err := c.query(ctx, `product_type:"Drugs" AND classification:"Class I"`, limit)
	if err != nil || len(results) == 0 {
		fallbackLimit := c.cfg.Limit
		if fallbackLimit > 200 {
			fallbackLimit = 200
		}
		results, err = c.query(ctx, `product_type:"Drugs"`, fallbackLimit)
		if err != nil {
			return nil, fmt.Errorf("fetch recalls: %w", err)
		}
	}

	type key struct{ name, event string }
	seen := map[key]struct{}{}
	rows := make([]inventorycheck.RecallRow, 0, len(results))
	for _, res := range results {
		name := ExtractDrugName(res.ProductDescription)
		if name == "" {
			continue
		}
		k := key{name: name, event: res.EventID}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		rows = append(rows, inventorycheck.RecallRow{
			DrugName:       name,
			Classification: strings.TrimSpace(res.Classification),
			Reason:         strings.TrimSpace(res.ReasonForRecall),
		})
	}
	return rows, nil
}

func (c *RecallClient) query(ctx context.Context, search string, limit int) ([]enforcementResult, error) {
	if err := c.waitRateLimit(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		results, code, retryAfter, err := c.queryOnce(ctx, search, limit)
		if err == nil {
			return results, nil
		}
		lastErr = err

		// openFDA answers 404 for an empty result set.
		if code == http.StatusNotFound {
			return nil, nil
		}
		if code == http.StatusBadRequest || code == http.StatusForbidden {
			return nil, err
		}
		if attempt == 3 {
			break
		}
		sleep := retryAfter
		if sleep <= 0 {
			sleep = time.Duration(attempt) * time.Second
		}
		if err := sleepCtx(ctx, sleep); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *RecallClient) queryOnce(ctx context.Context, search string, limit int) ([]enforcementResult, int, time.Duration, error) {
	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", strconv.Itoa(limit))
	if c.cfg.APIKey != "" {
		params.Set("api_key", c.cfg.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, 0, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "rxbridge/1.0")

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer res.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(res.Body, 8<<20))

	retryAfter := parseRetryAfter(res.Header.Get("Retry-After"))
	if res.StatusCode >= 400 {
		return nil, res.StatusCode, retryAfter, fmt.Errorf("status code: %d", res.StatusCode)
	}

	var parsed enforcementResponse
	if err := json.Unmarshal(b, &parsed); err != nil {
		return nil, res.StatusCode, retryAfter, fmt.Errorf("decode response: %w", err)
	}
	return parsed.Results, res.StatusCode, retryAfter, nil
}

func (c *RecallClient) waitRateLimit(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.limiter:
		return nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func parseRetryAfter(v string) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

var descriptionSeparators = []string{",", "(", " - ", " tablet", " capsule", " injection"}

// ExtractDrugName pulls a bare drug name out of an enforcement-report
// product description, which typically reads like
// "Drug Name, 10 mg tablets, 100 count bottle (NDC ...)".
func ExtractDrugName(description string) string {
	name := strings.TrimSpace(description)
	if name == "" {
		return ""
	}
	for _, sep := range descriptionSeparators {
		if idx := strings.Index(name, sep); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
			break
		}
	}
	if len(name) > 100 {
		name = strings.TrimSpace(name[:100])
	}
	return titleCase(name)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		if len(r) > 0 {
			words[i] = strings.ToUpper(string(r[0])) + string(r[1:])
		}
	}
	return strings.Join(words, " ")
}
