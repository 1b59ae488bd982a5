// Package app assembles the ledger components from configuration. Both the
// HTTP server and the CLI start from here.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/extraction"
	"github.com/dvloznov/finance-ledger/internal/infra"
	"github.com/dvloznov/finance-ledger/internal/ledger"
	"github.com/dvloznov/finance-ledger/internal/pipeline"
	"github.com/dvloznov/finance-ledger/internal/statements"
)

// App holds the wired components. Close releases them.
type App struct {
	Config    *config.Config
	Store     ledger.Store
	Directory *accounts.Directory
	Extractor extraction.Extractor
	Ingest    *pipeline.Service
	Reports   *statements.Service
}

// Options tweak how the application is assembled.
type Options struct {
	// Extractor replaces the configured provider when set.
	Extractor extraction.Extractor
	// RequireExtractor fails startup when no provider can be built.
	RequireExtractor bool
}

// New opens the ledger store, seeds the chart of accounts, builds the account
// directory and wires the ingestion and report services. Without provider
// credentials text ingestion stays disabled unless RequireExtractor is set.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts Options) (*App, error) {
	chart, err := accounts.LoadChart(cfg.ChartPath)
	if err != nil {
		return nil, fmt.Errorf("app.New: %w", err)
	}

	store, err := infra.OpenStore(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, fmt.Errorf("app.New: open store: %w", err)
	}

	a := &App{Config: cfg, Store: ledger.WithTimeout(store, cfg.StoreTimeout)}
	if err := a.init(ctx, chart, log, opts); err != nil {
		store.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context, chart *accounts.Chart, log zerolog.Logger, opts Options) error {
	cfg := a.Config

	if err := a.Store.SeedAccounts(ctx, chart.Accounts); err != nil {
		return fmt.Errorf("app.New: seed accounts: %w", err)
	}

	dir, err := accounts.Load(ctx, a.Store, chart.Categories)
	if err != nil {
		return fmt.Errorf("app.New: %w", err)
	}
	a.Directory = dir

	a.Extractor = opts.Extractor
	if a.Extractor == nil {
		a.Extractor, err = a.buildExtractor(ctx, log)
		if err != nil {
			if opts.RequireExtractor {
				return fmt.Errorf("app.New: %w", err)
			}
			log.Warn().Err(err).Msg("Text ingestion disabled")
		}
	}

	a.Ingest = pipeline.NewService(a.Extractor, accounts.NewResolver(dir), a.Store, pipeline.Options{
		ExtractionTimeout: cfg.Extraction.Timeout,
		StoreTimeout:      cfg.StoreTimeout,
	}, log.With().Str("component", "ingest").Logger())

	a.Reports, err = statements.NewService(a.Store, dir, cfg.ReportCacheEntries,
		log.With().Str("component", "reports").Logger())
	if err != nil {
		return fmt.Errorf("app.New: %w", err)
	}
	return nil
}

func (a *App) buildExtractor(ctx context.Context, log zerolog.Logger) (extraction.Extractor, error) {
	if err := a.Config.ValidateExtraction(); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(a.Directory.All()))
	for _, acct := range a.Directory.All() {
		names = append(names, acct.Name)
	}
	return extraction.New(ctx, a.Config.ExtractorConfig(names), log.With().Str("component", "extraction").Logger())
}

// Close releases the report cache and the ledger store.
func (a *App) Close() error {
	if a.Reports != nil {
		a.Reports.Close()
	}
	return a.Store.Close()
}
