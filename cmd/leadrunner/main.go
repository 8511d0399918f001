// Command leadrunner runs one processing pass over every configured
// business and exits. It is the cron-friendly alternative to the
// scheduler daemon: each run drains pending inbox events, rescoring
// leads and generating follow-ups as the guardrails allow.
//
// The exit code is non-zero only when the run itself cannot start
// (configuration, database, or business enumeration failures). A
// failure on an individual lead or business is logged and counted but
// never aborts the rest of the pass.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"leadflow_backend/internal/bizconfig"
	"leadflow_backend/internal/escalation"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/leads/generator"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/platform/ai/anthropic"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
)

const businessConcurrency = 4

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("processing run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	if !cfg.IsGenerationEnabled() {
		return errors.New("ANTHROPIC_API_KEY is required to generate follow-ups")
	}

	if err := withRetry(ctx, log, "run migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		return err
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "connect database", 5, 2*time.Second, func() error {
		var poolErr error
		pool, poolErr = db.NewPool(ctx, cfg)
		return poolErr
	}); err != nil {
		return err
	}
	defer pool.Close()

	repo := repository.New(pool)
	bizReader := bizconfig.NewReader(cfg.GetBusinessesDir())
	eventBus := events.NewInMemoryBus(log)
	escalation.NewModule(log).RegisterHandlers(eventBus)

	gen := generator.NewService(anthropic.NewClient(cfg.GetAnthropicAPIKey()), log, generator.Options{
		Model:         cfg.GetGenerationModel(),
		MaxTokens:     cfg.GetGenerationMaxTokens(),
		RatePerMinute: cfg.GetGenerationRatePerMinute(),
		PlaybookPath:  cfg.GetPlaybookPath(),
	})

	processor := leads.NewProcessor(repo, gen, eventBus, log)

	businesses, err := bizReader.ListBusinesses()
	if err != nil {
		return fmt.Errorf("list businesses: %w", err)
	}
	if len(businesses) == 0 {
		log.Warn("no businesses configured, nothing to do", "dir", cfg.GetBusinessesDir())
		return nil
	}

	var (
		mu    sync.Mutex
		total leads.Summary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(businessConcurrency)

	for _, slug := range businesses {
		g.Go(func() error {
			blog := log.WithBusiness(slug)

			biz, err := bizReader.LoadBusiness(slug)
			if err != nil {
				blog.Error("could not load business config", "error", err)
				return nil
			}
			if !biz.IsConfigured() {
				blog.Warn("business config not filled in, skipping")
				return nil
			}

			summary, err := processor.ProcessBusiness(gctx, biz)
			if err != nil {
				blog.Error("business run failed", "error", err)
			}

			mu.Lock()
			total.Processed += summary.Processed
			total.Messages += summary.Messages
			total.HotLeads += summary.HotLeads
			total.Archived += summary.Archived
			total.Deferred += summary.Deferred
			total.Failures += summary.Failures
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	log.Info("processing run finished",
		"businesses", len(businesses),
		"processed", total.Processed,
		"messages", total.Messages,
		"hot_leads", total.HotLeads,
		"archived", total.Archived,
		"deferred", total.Deferred,
		"failures", total.Failures,
	)
	return nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
