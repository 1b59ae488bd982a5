// Package bigquery mirrors the ledger into BigQuery for analytics.
package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

const (
	transactionsTable = "transactions"
	accountsTable     = "accounts"

	// insertBatchSize bounds one streaming insert request.
	insertBatchSize = 500
)

// Exporter writes ledger postings and accounts into a BigQuery dataset. It holds
// a shared client; call Close when done.
type Exporter struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	log       zerolog.Logger
	now       func() time.Time
}

// ExportResult summarizes one Export run.
type ExportResult struct {
	Accounts int `json:"accounts"`
	Exported int `json:"exported"`
	Skipped  int `json:"skipped"`
}

// NewExporter creates an exporter for projectID.datasetID.
func NewExporter(ctx context.Context, projectID, datasetID string, log zerolog.Logger, opts ...option.ClientOption) (*Exporter, error) {
	if projectID == "" {
		return nil, errors.New("NewExporter: project id is required")
	}
	if datasetID == "" {
		return nil, errors.New("NewExporter: dataset id is required")
	}
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: creating client: %w", err)
	}
	return &Exporter{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		log:       log.With().Str("component", "bigquery_exporter").Logger(),
		now:       time.Now,
	}, nil
}

// Close closes the BigQuery client connection.
func (e *Exporter) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

func (e *Exporter) table(name string) string {
	return fmt.Sprintf("`%s.%s.%s`", e.projectID, e.datasetID, name)
}

// EnsureTables creates the accounts and transactions tables when missing. Their
// schemas are inferred from AccountRow and TransactionRow.
func (e *Exporter) EnsureTables(ctx context.Context) error {
	tables := []struct {
		name string
		row  any
	}{
		{accountsTable, AccountRow{}},
		{transactionsTable, TransactionRow{}},
	}

	ds := e.client.DatasetInProject(e.projectID, e.datasetID)
	for _, t := range tables {
		schema, err := bigquery.InferSchema(t.row)
		if err != nil {
			return fmt.Errorf("EnsureTables: inferring %s schema: %w", t.name, err)
		}
		table := ds.Table(t.name)
		if _, err := table.Metadata(ctx); err == nil {
			continue
		} else if !isNotFound(err) {
			return fmt.Errorf("EnsureTables: reading %s metadata: %w", t.name, err)
		}
		if err := table.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
			return fmt.Errorf("EnsureTables: creating %s: %w", t.name, err)
		}
		e.log.Info().Str("table", t.name).Msg("BigQuery table created")
	}
	return nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

// ExportedIDs returns the ids of postings already present in the export table.
func (e *Exporter) ExportedIDs(ctx context.Context) (map[int64]struct{}, error) {
	q := e.client.Query("SELECT transaction_id FROM " + e.table(transactionsTable))
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ExportedIDs: reading query: %w", err)
	}

	ids := make(map[int64]struct{})
	for {
		var row struct {
			TransactionID int64 `bigquery:"transaction_id"`
		}
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ExportedIDs: iterating: %w", err)
		}
		ids[row.TransactionID] = struct{}{}
	}
	return ids, nil
}

// InsertTransactions streams rows into the transactions table in batches.
func (e *Exporter) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}
	inserter := e.client.DatasetInProject(e.projectID, e.datasetID).Table(transactionsTable).Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		if err := inserter.Put(ctx, rows[start:end]); err != nil {
			return fmt.Errorf("InsertTransactions: inserting rows %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

// UpsertAccount inserts the account unless a row with the same id exists.
func (e *Exporter) UpsertAccount(ctx context.Context, row *AccountRow) error {
	q := e.client.Query(`
		MERGE ` + e.table(accountsTable) + ` t
		USING (SELECT @account_id AS account_id) s
		ON t.account_id = s.account_id
		WHEN MATCHED THEN
		  UPDATE SET code = @code, account_name = @account_name, account_type = @account_type
		WHEN NOT MATCHED THEN
		  INSERT (account_id, code, account_name, account_type)
		  VALUES (@account_id, @code, @account_name, @account_type)
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "account_id", Value: row.AccountID},
		{Name: "code", Value: row.Code},
		{Name: "account_name", Value: row.AccountName},
		{Name: "account_type", Value: row.AccountType},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("UpsertAccount: running merge query: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("UpsertAccount: waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("UpsertAccount: job error: %w", err)
	}
	return nil
}

// Export creates missing tables, then mirrors the chart of accounts and every
// posting not yet exported.
func (e *Exporter) Export(ctx context.Context, accounts []domain.Account, txs []domain.Transaction) (ExportResult, error) {
	var res ExportResult
	if err := e.EnsureTables(ctx); err != nil {
		return res, fmt.Errorf("Export: %w", err)
	}
	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
		if err := e.UpsertAccount(ctx, NewAccountRow(a)); err != nil {
			return res, fmt.Errorf("Export: account %d: %w", a.ID, err)
		}
		res.Accounts++
	}

	exported, err := e.ExportedIDs(ctx)
	if err != nil {
		return res, fmt.Errorf("Export: %w", err)
	}
	rows := PendingRows(txs, exported, names, e.now())
	if err := e.InsertTransactions(ctx, rows); err != nil {
		return res, fmt.Errorf("Export: %w", err)
	}
	res.Exported = len(rows)
	res.Skipped = len(txs) - len(rows)

	e.log.Info().
		Int("accounts", res.Accounts).
		Int("exported", res.Exported).
		Int("skipped", res.Skipped).
		Msg("ledger exported")
	return res, nil
}
