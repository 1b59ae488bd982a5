package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-ledger/internal/app"
	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	envFile  string
	database string
	chart    string
	logLevel string
}

func newRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger ingestion and financial statements",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&g.envFile, "env", "", "path to a .env file (default: ./.env if present)")
	rootCmd.PersistentFlags().StringVar(&g.database, "db", "", "ledger database (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&g.chart, "chart", "", "chart of accounts YAML file (overrides CHART_PATH)")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	rootCmd.AddCommand(
		newSeedCommand(g),
		newAccountsCommand(g),
		newIngestCommand(g),
		newAddCommand(g),
		newReportCommand(g),
		newFetchReportCommand(g),
		newExportCommand(g),
	)
	return rootCmd
}

// load reads configuration and applies flag overrides. Logs go to stderr so
// command output stays parseable.
func (g *globalFlags) load() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(g.envFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if g.database != "" {
		cfg.DatabaseURL = g.database
	}
	if g.chart != "" {
		cfg.ChartPath = g.chart
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, logger.NewTo(os.Stderr, cfg.LogLevel, cfg.LogFormat), nil
}

// open wires the application for one command.
func (g *globalFlags) open(ctx context.Context, opts app.Options) (*app.App, zerolog.Logger, error) {
	cfg, log, err := g.load()
	if err != nil {
		return nil, log, err
	}
	a, err := app.New(ctx, cfg, log, opts)
	if err != nil {
		return nil, log, err
	}
	return a, log, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
