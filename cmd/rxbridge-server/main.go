package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/arnavjainpro/HackRice/internal/advisor"
	"github.com/arnavjainpro/HackRice/internal/fdasource"
	"github.com/arnavjainpro/HackRice/internal/httpapi"
	"github.com/arnavjainpro/HackRice/internal/inventorystore"
	"github.com/arnavjainpro/HackRice/internal/pipeline"
	"github.com/arnavjainpro/HackRice/internal/reportdoc"
	"github.com/arnavjainpro/HackRice/internal/telemetry"
)

func main() {
	var (
		dbFlag      = flag.String("db", "", "path to SQLite database file (overrides DB_PATH env var)")
		addrFlag    = flag.String("addr", "", "listen address (overrides PORT env var)")
		shortageURL = flag.String("shortage-url", fdasource.DefaultShortageURL, "FDA drug shortage page URL")
		recallURL   = flag.String("recall-url", fdasource.DefaultRecallBaseURL, "FDA enforcement API base URL")
		recallLimit = flag.Int("recall-limit", fdasource.DefaultRecallLimit, "max recall records to fetch")
		cacheTTL    = flag.Duration("cache-ttl", pipeline.DefaultCacheTTL, "how long fetched FDA data is reused")
	)
	flag.Parse()

	addr := *addrFlag
	if addr == "" {
		addr = ":8080"
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		}
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("DB_PATH")
	}
	if dbPath == "" {
		dbPath = "./data/rxbridge.db"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	shutdownTraces, err := telemetry.Setup(ctx, "rxbridge-server", strings.TrimSpace(os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")))
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		if err := shutdownTraces(shutdownCtx); err != nil {
			log.Printf("trace shutdown: %v", err)
		}
	}()

	store, err := inventorystore.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open inventory store (%s): %v", dbPath, err)
	}
	defer store.Close()
	log.Printf("using inventory store at %s", dbPath)

	scraper := fdasource.NewShortageScraper(fdasource.ScraperConfig{BaseURL: *shortageURL})
	recalls := fdasource.NewRecallClient(fdasource.RecallConfig{
		APIKey:  strings.TrimSpace(os.Getenv("FDA_API_KEY")),
		BaseURL: *recallURL,
		Limit:   *recallLimit,
	})
	runner := pipeline.NewRunner(store, scraper, recalls, pipeline.Config{CacheTTL: *cacheTTL})

	var caller advisor.LLMCaller
	if c, err := advisor.NewAnthropicCallerFromEnv(); err != nil {
		log.Printf("warning: %v (recommendations will be rule-based only)", err)
	} else {
		caller = c
	}

	handler := httpapi.NewServer(store, runner, advisor.NewAdvisor(caller), reportdoc.NewChromiumPDFRenderer())

	log.Printf("rxbridge-server listening on %s", addr)
	srv := &http.Server{Addr: addr, Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
