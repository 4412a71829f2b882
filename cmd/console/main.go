// Command console is the operator console for EDI 850/856 documents.
//
// It builds a purchase order or ship notice from guided fields (or takes a
// raw pasted document), submits it to the ingestion service, and shows the
// canonical form, downstream payload and run id of the result. Stored runs
// can be replayed by id, and a mapping assistant answers free-text questions.
//
// Usage:
//
//	go run ./cmd/console [-config configs/console.yaml]
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/activity"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/assistant"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/client"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/document"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/render"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/console/session"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/journal"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/internal/prefs"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/database"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/EDI-Operator-Console/pkg/tracing"
)

// main loads configuration, opens the optional local stores, wires the
// session and runs the interactive loop until quit, EOF or SIGINT/SIGTERM.
// Pending submissions and chat replies are waited for before exit.
func main() {
	configPath := flag.String("config", "configs/console.yaml", "path to config file")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})
	cfg, err := config.Load(*configPath, explicit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logCloser, err := logger.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	tracing.Enable(cfg.Tracing.Enabled)

	if err := run(cfg); err != nil {
		slog.Error("console exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	backend := client.New(cfg.Backend, client.WithMetrics(m))
	slog.Info("starting operator console", "backend", cfg.Backend.BaseURL)

	checker := health.NewChecker()
	checker.Register("backend", health.PingCheck(backend.Ping, false))

	store, closePrefs, err := prefs.Open(cfg.Prefs, cfg.Redis)
	if err != nil {
		return err
	}
	defer closePrefs()
	if pinger, ok := store.(interface{ Ping(context.Context) error }); ok {
		checker.Register("prefs", health.PingCheck(pinger.Ping, true))
	}

	opts := session.Options{
		Builder:         document.Options{EscapeValues: cfg.Builder.EscapeValues},
		SeedSampleItems: cfg.Console.SeedSampleItems,
		HistoryLimit:    cfg.Journal.RecentLimit,
		Clipboard:       render.NewTerminalClipboard(os.Stderr),
		Metrics:         m,
		Health:          checker,
	}

	if cfg.Journal.Enabled {
		db, err := database.New(cfg.Journal, cfg.Postgres)
		if err != nil {
			slog.Warn("run journal unavailable", "driver", cfg.Journal.Driver, "error", err)
		} else {
			defer db.Close()
			j := journal.New(db)
			if err := j.Migrate(ctx); err != nil {
				return err
			}
			opts.Journal = j
			checker.Register("journal", health.PingCheck(j.Ping, true))
			slog.Info("run journal ready", "driver", db.Dialect)
		}
	}

	if cfg.Activity.Enabled {
		var sink activity.Sink = activity.LogSink{Logger: logger.WithComponent("activity")}
		if cfg.Kafka.Enabled {
			producer := kafka.NewProducer(cfg.Kafka)
			defer producer.Close()
			sink = producer
			slog.Info("activity feed publishing to kafka", "topic", cfg.Kafka.Topic)
		}
		collector := activity.NewCollector(sink, cfg.Activity.BufferSize, m)
		collector.Start(ctx)
		defer collector.Close()
		opts.Activity = collector
	}

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, map[string]http.Handler{
			"/healthz": checker.ReadyHandler(),
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				slog.Error("metrics server shutdown error", "error", err)
			}
		}()
	}

	panel := assistant.NewPanel(ctx, backend, store, assistant.WithPrefKey(cfg.Prefs.Key), assistant.WithMetrics(m))
	sess := session.New(ctx, backend, panel, os.Stdout, opts)

	fmt.Fprintln(os.Stdout, "EDI operator console. Type help for commands.")
	replErr := newREPL(sess, os.Stdin, os.Stdout, cfg.Console.Prompt).Run(ctx)

	slog.Debug("waiting for pending work")
	sess.Wait()
	slog.Info("operator console stopped")
	return replErr
}
