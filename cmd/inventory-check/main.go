package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/arnavjainpro/HackRice/internal/fdasource"
	"github.com/arnavjainpro/HackRice/internal/inventorystore"
	"github.com/arnavjainpro/HackRice/internal/pipeline"
	"github.com/arnavjainpro/HackRice/internal/reportdoc"
)

// One-shot inventory check against the live FDA feeds. Prints the
// report to stdout and optionally renders a PDF.
func main() {
	var (
		dbPath      = flag.String("db", "./data/rxbridge.db", "path to SQLite database file")
		csvPath     = flag.String("csv", "", "CSV file to import into the store before checking")
		format      = flag.String("format", "json", "output format: json or markdown")
		pdfPath     = flag.String("pdf", "", "also render the report to this PDF file")
		recallLimit = flag.Int("recall-limit", fdasource.DefaultRecallLimit, "max recall records to fetch")
		timeout     = flag.Duration("timeout", 5*time.Minute, "overall run timeout")
	)
	flag.Parse()

	if *format != "json" && *format != "markdown" {
		log.Fatalf("unknown format %q", *format)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, *timeout)
	defer timeoutCancel()

	store, err := inventorystore.Open(*dbPath)
	if err != nil {
		log.Fatalf("failed to open inventory store (%s): %v", *dbPath, err)
	}
	defer store.Close()

	if *csvPath != "" {
		f, err := os.Open(*csvPath)
		if err != nil {
			log.Fatalf("open csv: %v", err)
		}
		n, err := store.ImportCSV(f)
		f.Close()
		if err != nil {
			log.Fatalf("import csv: %v", err)
		}
		log.Printf("imported %d inventory records from %s", n, *csvPath)
	}

	scraper := fdasource.NewShortageScraper(fdasource.ScraperConfig{})
	recalls := fdasource.NewRecallClient(fdasource.RecallConfig{
		APIKey: os.Getenv("FDA_API_KEY"),
		Limit:  *recallLimit,
	})
	runner := pipeline.NewRunner(store, scraper, recalls, pipeline.Config{})

	report, err := runner.Run(ctx)
	if err != nil {
		log.Fatalf("inventory check failed: %v", err)
	}

	switch *format {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatal(err)
		}
	case "markdown":
		os.Stdout.WriteString(reportdoc.BuildMarkdown(report, nil))
	}

	if *pdfPath != "" {
		markdown := reportdoc.BuildMarkdown(report, nil)
		pdf, err := reportdoc.NewChromiumPDFRenderer().Render(ctx, markdown)
		if err != nil {
			log.Fatalf("render pdf: %v", err)
		}
		if err := os.WriteFile(*pdfPath, pdf, 0o644); err != nil {
			log.Fatalf("write pdf: %v", err)
		}
		log.Printf("wrote %s (%d bytes)", *pdfPath, len(pdf))
	}
}
