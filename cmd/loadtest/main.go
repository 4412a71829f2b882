// Command loadtest soaks an ingestion service with generated 850 and 856
// documents, optionally replaying every returned run, and reports
// per-call latency and outcome counts.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8000] [-concurrency 10] [-duration 30s] [-replay]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/client"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/document"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/errors"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Items       int
	Replay      bool
}

func main() {
	baseURL := flag.String("url", "http://localhost:8000", "base URL of the ingestion service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	items := flag.Int("items", 5, "line items per 856")
	replayRuns := flag.Bool("replay", false, "replay every returned run id")
	flag.Parse()

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		Items:       *items,
		Replay:      *replayRuns,
	}

	fmt.Println("=== Ingestion Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("856 items:   %d\n", cfg.Items)
	fmt.Printf("Replay:      %v\n", cfg.Replay)
	fmt.Println()

	stats := runLoadTest(cfg)
	stats.Report(os.Stdout, cfg.Duration)
	if stats.Total() == 0 {
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func newClient(cfg Config) *client.Client {
	hc := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	return client.New(config.BackendConfig{
		BaseURL:        cfg.BaseURL,
		RequestTimeout: 10 * time.Second,
		Paths: config.BackendPaths{
			Ingest850: "/ingest/850",
			Ingest856: "/ingest/856",
			Replay:    "/replay/",
			Chat:      "/chat/map",
			Health:    "/",
		},
	}, client.WithHTTPClient(hc))
}

// documentFor builds the n-th generated document. Even n is an 850, odd an 856.
func documentFor(n int64, items int) (document.Kind, string) {
	po := fmt.Sprintf("PO-LT-%d-%d", time.Now().Unix(), n)
	if n%2 == 0 {
		return document.KindPurchaseOrder, document.Build(document.KindPurchaseOrder, "", document.GuidedForm{PONumber: po}, document.Options{})
	}
	form := document.GuidedForm{PONumber: po, ShipmentID: fmt.Sprintf("SH-LT-%d", n)}
	for i := 0; i < items; i++ {
		form.AddItem(fmt.Sprintf("SKU-%03d", i+1), fmt.Sprintf("%d", i+1))
	}
	return document.KindShipNotice, document.Build(document.KindShipNotice, "", form, document.Options{})
}

// outcomeOf labels a call result, keeping the HTTP status of service errors.
func outcomeOf(err error) string {
	var ie *client.IngestionError
	if errors.As(err, &ie) && ie.Status != 0 {
		return fmt.Sprintf("http_%d", ie.Status)
	}
	return apperrors.Outcome(err)
}

func runLoadTest(cfg Config) *Stats {
	stats := NewStats()
	c := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var (
		wg  sync.WaitGroup
		seq atomic.Int64
	)
	fmt.Print("Running")

	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				kind, doc := documentFor(seq.Add(1), cfg.Items)

				start := time.Now()
				res, err := c.Submit(ctx, kind, doc)
				if ctx.Err() != nil {
					return
				}
				stats.Record("submit "+kind.String(), time.Since(start), outcomeOf(err))

				if err != nil || !cfg.Replay || res.RunID == "" {
					continue
				}
				start = time.Now()
				_, err = c.FetchRun(ctx, res.RunID)
				if ctx.Err() != nil {
					return
				}
				stats.Record("replay", time.Since(start), outcomeOf(err))
			}
		}()
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	wg.Wait()
	fmt.Println(" done!")
	fmt.Println()
	return stats
}
