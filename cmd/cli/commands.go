package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dvloznov/finance-ledger/internal/app"
	"github.com/dvloznov/finance-ledger/internal/gcsuploader"
	"github.com/dvloznov/finance-ledger/internal/infra/bigquery"
	"github.com/dvloznov/finance-ledger/internal/pipeline"
	"github.com/dvloznov/finance-ledger/internal/statements"
)

func newSeedCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the ledger schema and seed the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d accounts into %s\n", len(a.Directory.All()), a.Config.DatabaseURL)
			return nil
		},
	}
}

func newAccountsCommand(g *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List the chart of accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			if asJSON {
				return printJSON(cmd.OutOrStdout(), a.Directory.All())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCODE\tNAME\tTYPE")
			for _, acct := range a.Directory.All() {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", acct.ID, acct.Code, acct.Name, acct.Type)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newIngestCommand(g *globalFlags) *cobra.Command {
	var text string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract a posting from free text and commit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := g.open(cmd.Context(), app.Options{RequireExtractor: true})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Ingest.IngestText(cmd.Context(), text)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "transaction description (required)")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}

func newAddCommand(g *globalFlags) *cobra.Command {
	var in pipeline.ManualInput
	var accountID int64

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Commit a posting entered by hand",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("account-id") {
				in.AccountID = &accountID
			}

			a, _, err := g.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.Ingest.IngestManual(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&in.Type, "type", "", "posting type, e.g. income or expense")
	cmd.Flags().StringVar(&in.Amount, "amount", "", "signed amount, positive is a debit (required)")
	cmd.Flags().StringVar(&in.Date, "date", "", "posting date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVar(&in.Category, "category", "", "category")
	cmd.Flags().StringVar(&in.Description, "description", "", "description")
	cmd.Flags().Int64Var(&accountID, "account-id", 0, "account id")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func newReportCommand(g *globalFlags) *cobra.Command {
	var from, to string
	var archive bool

	cmd := &cobra.Command{
		Use:       "report <trial-balance|income-statement|balance-sheet>",
		Short:     "Print a financial statement as JSON",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(statements.KindTrialBalance), string(statements.KindIncomeStatement), string(statements.KindBalanceSheet)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := statements.ParseKind(args[0])
			if err != nil {
				return err
			}
			period, err := statements.ParsePeriod(from, to)
			if err != nil {
				return err
			}

			a, log, err := g.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.Reports.Report(cmd.Context(), kind, period)
			if err != nil {
				return err
			}
			payload, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(payload))

			if !archive {
				return nil
			}
			if a.Config.GCSBucket == "" {
				return errors.New("--archive requires GCS_BUCKET")
			}
			arch, err := gcsuploader.NewReportArchive(cmd.Context(), a.Config.GCSBucket, log)
			if err != nil {
				return err
			}
			defer arch.Close()

			uri, err := arch.UploadReport(cmd.Context(), string(kind), time.Now(), payload)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Archived to %s\n", uri)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date included, YYYY-MM-DD")
	cmd.Flags().StringVar(&to, "to", "", "last date included, YYYY-MM-DD")
	cmd.Flags().BoolVar(&archive, "archive", false, "upload the report to GCS_BUCKET")
	return cmd
}

func newFetchReportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch-report <gs://bucket/object>",
		Short: "Print an archived report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, _, err := gcsuploader.ParseURI(args[0])
			if err != nil {
				return err
			}
			_, log, err := g.load()
			if err != nil {
				return err
			}

			arch, err := gcsuploader.NewReportArchive(cmd.Context(), bucket, log)
			if err != nil {
				return err
			}
			defer arch.Close()

			data, err := arch.FetchReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newExportCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Mirror accounts and new postings into BigQuery",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, log, err := g.open(cmd.Context(), app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			if a.Config.BigQuery.ProjectID == "" {
				return errors.New("export requires BIGQUERY_PROJECT")
			}
			exporter, err := bigquery.NewExporter(cmd.Context(), a.Config.BigQuery.ProjectID, a.Config.BigQuery.Dataset, log)
			if err != nil {
				return err
			}
			defer exporter.Close()

			txs, err := a.Store.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			res, err := exporter.Export(cmd.Context(), a.Directory.All(), txs)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}
