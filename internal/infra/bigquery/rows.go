package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// TransactionRow mirrors one ledger posting in the ledger.transactions table.
type TransactionRow struct {
	TransactionID int64 `bigquery:"transaction_id"` // REQUIRED

	Type        string              `bigquery:"type"`        // REQUIRED STRING
	Amount      *big.Rat            `bigquery:"amount"`      // REQUIRED NUMERIC
	Description string              `bigquery:"description"` // REQUIRED STRING
	Category    bigquery.NullString `bigquery:"category"`    // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	AccountID   bigquery.NullInt64  `bigquery:"account_id"`   // NULLABLE
	AccountName bigquery.NullString `bigquery:"account_name"` // NULLABLE

	CreatedTS  time.Time `bigquery:"created_ts"`  // REQUIRED
	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED
}

// AccountRow mirrors one chart-of-accounts entry in the ledger.accounts table.
type AccountRow struct {
	AccountID   int64  `bigquery:"account_id"`   // REQUIRED
	Code        string `bigquery:"code"`         // NULLABLE
	AccountName string `bigquery:"account_name"` // REQUIRED
	AccountType string `bigquery:"account_type"` // REQUIRED
}

// NewTransactionRow converts a committed posting. names maps account ids to
// account names; a posting without an account keeps both columns NULL.
func NewTransactionRow(tx domain.Transaction, names map[int64]string, exportedAt time.Time) *TransactionRow {
	row := &TransactionRow{
		TransactionID:   tx.ID,
		Type:            tx.Type,
		Amount:          tx.Amount.Rat(),
		Description:     tx.Description,
		Category:        bigquery.NullString{StringVal: tx.Category, Valid: tx.Category != ""},
		TransactionDate: tx.Date,
		CreatedTS:       tx.CreatedAt.UTC(),
		ExportedTS:      exportedAt.UTC(),
	}
	if tx.AccountID != nil {
		row.AccountID = bigquery.NullInt64{Int64: *tx.AccountID, Valid: true}
		if name, ok := names[*tx.AccountID]; ok {
			row.AccountName = bigquery.NullString{StringVal: name, Valid: true}
		}
	}
	return row
}

// NewAccountRow converts an account.
func NewAccountRow(a domain.Account) *AccountRow {
	return &AccountRow{
		AccountID:   a.ID,
		Code:        a.Code,
		AccountName: a.Name,
		AccountType: string(a.Type),
	}
}

// PendingRows returns rows for postings whose ids are not in exported, in ledger order.
func PendingRows(txs []domain.Transaction, exported map[int64]struct{}, names map[int64]string, exportedAt time.Time) []*TransactionRow {
	var rows []*TransactionRow
	for _, tx := range txs {
		if _, ok := exported[tx.ID]; ok {
			continue
		}
		rows = append(rows, NewTransactionRow(tx, names, exportedAt))
	}
	return rows
}
