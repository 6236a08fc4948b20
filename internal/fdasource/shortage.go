package fdasource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"github.com/arnavjainpro/HackRice/internal/inventorycheck"
)

const DefaultShortageURL = "https://dps.fda.gov/drugshortages"

type ScraperConfig struct {
	BaseURL string
	Timeout time.Duration
	// ChromePath overrides binary autodetection.
	ChromePath string
}

// ShortageScraper extracts the FDA drug shortage table with a headless
// Chromium instance. The shortage site renders its table client side,
// so a plain HTTP fetch returns an empty shell.
type ShortageScraper struct {
	cfg ScraperConfig
}

func NewShortageScraper(cfg ScraperConfig) *ShortageScraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultShortageURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	if cfg.ChromePath == "" {
		cfg.ChromePath = detectChromePath()
	}
	return &ShortageScraper{cfg: cfg}
}

// extractRowsJS walks every status tab on the shortage page and
// collects [name, status] pairs from the visible table body, paging
// through each tab until the next button disables.
const extractRowsJS = `(async () => {
	const sleep = (ms) => new Promise((res) => setTimeout(res, ms));
	const rows = [];
	const collect = () => {
		for (const tr of document.querySelectorAll("table tbody tr")) {
			const cells = [...tr.querySelectorAll("td")].map((td) => td.innerText.trim());
			if (cells.length >= 2) rows.push([cells[0], cells[1]]);
		}
	};
	const pageThrough = async () => {
		for (let guard = 0; guard < 200; guard++) {
			collect();
			const next = document.querySelector("button[aria-label='Next Page'], a[aria-label='Next']");
			if (!next || next.disabled || next.getAttribute("aria-disabled") === "true") return;
			next.click();
			await sleep(400);
		}
	};
	const tabs = [...document.querySelectorAll("[role='tab'], .nav-tabs a")];
	if (tabs.length === 0) {
		await pageThrough();
		return rows;
	}
	for (const tab of tabs) {
		tab.click();
		await sleep(600);
		await pageThrough();
	}
	return rows;
})()`

// Scrape returns deduplicated shortage rows across every status tab.
func (s *ShortageScraper) Scrape(ctx context.Context) ([]inventorycheck.ShortageRow, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
	}
	if s.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.cfg.ChromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(timeoutCtx, append(chromedp.DefaultExecAllocatorOptions[:], opts...)...)
	defer allocCancel()

	taskCtx, taskCancel := chromedp.NewContext(allocCtx)
	defer taskCancel()

	var raw [][]string
	if err := chromedp.Run(taskCtx,
		chromedp.Navigate(s.cfg.BaseURL),
		chromedp.WaitReady("table", chromedp.ByQuery),
		chromedp.Evaluate(extractRowsJS, &raw, func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
			return p.WithAwaitPromise(true)
		}),
	); err != nil {
		return nil, fmt.Errorf("scrape shortages: %w", err)
	}

	rows := ParseShortageRows(raw)
	if len(rows) == 0 {
		return nil, fmt.Errorf("scrape shortages: no rows extracted from %s", s.cfg.BaseURL)
	}
	return rows, nil
}

// ParseShortageRows turns raw [name, status] cell pairs into shortage
// rows, skipping blanks and keeping the first status seen per name.
func ParseShortageRows(raw [][]string) []inventorycheck.ShortageRow {
	seen := map[string]struct{}{}
	rows := make([]inventorycheck.ShortageRow, 0, len(raw))
	for _, cells := range raw {
		if len(cells) < 2 {
			continue
		}
		name := strings.Join(strings.Fields(cells[0]), " ")
		status := strings.Join(strings.Fields(cells[1]), " ")
		if name == "" || status == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		rows = append(rows, inventorycheck.ShortageRow{
			GenericName: name,
			Status:      status,
		})
	}
	return rows
}

func detectChromePath() string {
	candidates := []string{
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/usr/bin/google-chrome",
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
