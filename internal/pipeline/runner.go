package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

type InventorySource interface {
	List() ([]inventorycheck.InventoryRecord, error)
}

type ShortageSource interface {
	Scrape(ctx context.Context) ([]inventorycheck.ShortageRow, error)
}

type RecallSource interface {
	FetchRecalls(ctx context.Context) ([]inventorycheck.RecallRow, error)
}

const DefaultCacheTTL = 15 * time.Minute

type Config struct {
	// CacheTTL bounds how long fetched regulatory data is reused
	// between runs.
	CacheTTL time.Duration
	Clock    func() time.Time
	Check    inventorycheck.Config
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

// Runner drives a full inventory check: load stock, fetch the two FDA
// feeds, merge, and evaluate. Regulatory fetches are cached so
// repeated runs inside the TTL window do not hammer the FDA endpoints,
// and a failed refresh falls back to the last good fetch when one
// exists.
type Runner struct {
	inventory InventorySource
	shortages ShortageSource
	recalls   RecallSource
	checker   *inventorycheck.Checker
	cfg       Config
	tracer    trace.Tracer

	mu              sync.Mutex
	cachedShortages []inventorycheck.ShortageRow
	cachedRecalls   []inventorycheck.RecallRow
	fetchedAt       time.Time
}

func NewRunner(inventory InventorySource, shortages ShortageSource, recalls RecallSource, cfg Config) *Runner {
	cfg = cfg.withDefaults()
	return &Runner{
		inventory: inventory,
		shortages: shortages,
		recalls:   recalls,
		checker:   inventorycheck.NewChecker(cfg.Check),
		cfg:       cfg,
		tracer:    otel.Tracer("rxbridge/pipeline"),
	}
}

// Run executes the whole check and returns the formatted report.
func (r *Runner) Run(ctx context.Context) (inventorycheck.Report, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	inventory, err := r.loadInventory(ctx)
	if err != nil {
		return inventorycheck.Report{}, err
	}

	shortages, recalls, err := r.regulatory(ctx)
	if err != nil {
		return inventorycheck.Report{}, err
	}

	_, evalSpan := r.tracer.Start(ctx, "pipeline.evaluate")
	regulatory := r.checker.MergeRegulatory(shortages, recalls)
	report := r.checker.Evaluate(inventory, regulatory)
	evalSpan.SetAttributes(
		attribute.Int("inventory.items", len(inventory)),
		attribute.Int("regulatory.records", len(regulatory)),
		attribute.Int("report.flagged", report.Summary.ItemsRequiringAttention),
	)
	evalSpan.End()
	return report, nil
}

// Evaluate runs the check against caller-supplied inventory instead of
// the store, reusing the cached regulatory data.
func (r *Runner) Evaluate(ctx context.Context, inventory []inventorycheck.InventoryRecord) (inventorycheck.Report, error) {
	ctx, span := r.tracer.Start(ctx, "pipeline.evaluate_adhoc")
	defer span.End()

	shortages, recalls, err := r.regulatory(ctx)
	if err != nil {
		return inventorycheck.Report{}, err
	}
	regulatory := r.checker.MergeRegulatory(shortages, recalls)
	return r.checker.Evaluate(inventory, regulatory), nil
}

func (r *Runner) loadInventory(ctx context.Context) ([]inventorycheck.InventoryRecord, error) {
	_, span := r.tracer.Start(ctx, "pipeline.load_inventory")
	defer span.End()

	inventory, err := r.inventory.List()
	if err != nil {
		return nil, fmt.Errorf("load inventory: %w", err)
	}
	span.SetAttributes(attribute.Int("inventory.items", len(inventory)))
	return inventory, nil
}

func (r *Runner) regulatory(ctx context.Context) ([]inventorycheck.ShortageRow, []inventorycheck.RecallRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.cfg.Clock()
	if !r.fetchedAt.IsZero() && now.Sub(r.fetchedAt) < r.cfg.CacheTTL {
		return r.cachedShortages, r.cachedRecalls, nil
	}

	fetchCtx, span := r.tracer.Start(ctx, "pipeline.fetch_regulatory")
	defer span.End()

	shortages, shortageErr := r.shortages.Scrape(fetchCtx)
	recalls, recallErr := r.recalls.FetchRecalls(fetchCtx)

	if shortageErr != nil || recallErr != nil {
		if r.fetchedAt.IsZero() {
			if shortageErr != nil {
				return nil, nil, fmt.Errorf("fetch shortages: %w", shortageErr)
			}
			return nil, nil, fmt.Errorf("fetch recalls: %w", recallErr)
		}
		// Keep serving the stale snapshot until a refresh succeeds.
		log.Printf("pipeline: regulatory refresh failed, reusing snapshot from %s (shortage err: %v, recall err: %v)",
			r.fetchedAt.Format(time.RFC3339), shortageErr, recallErr)
		return r.cachedShortages, r.cachedRecalls, nil
	}

	r.cachedShortages = shortages
	r.cachedRecalls = recalls
	r.fetchedAt = now
	span.SetAttributes(
		attribute.Int("shortages.rows", len(shortages)),
		attribute.Int("recalls.rows", len(recalls)),
	)
	return shortages, recalls, nil
}

// InvalidateCache forces the next run to refetch both feeds.
func (r *Runner) InvalidateCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchedAt = time.Time{}
}
