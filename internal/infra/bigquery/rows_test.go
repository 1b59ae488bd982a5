package bigquery

import (
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

func posting(id int64, amount string, accountID *int64) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Type:        "expense",
		Amount:      domain.NewMoney(decimal.RequireFromString(amount)),
		Description: "office rent",
		Date:        civil.Date{Year: 2024, Month: time.March, Day: 1},
		Category:    "rent",
		AccountID:   accountID,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestNewTransactionRow(t *testing.T) {
	accountID := int64(5)
	exportedAt := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	row := NewTransactionRow(posting(7, "-1200.50", &accountID), map[int64]string{5: "Rent Expense"}, exportedAt)

	assert.Equal(t, int64(7), row.TransactionID)
	assert.Equal(t, "-2401/2", row.Amount.String())
	assert.True(t, row.Category.Valid)
	assert.Equal(t, "rent", row.Category.StringVal)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.March, Day: 1}, row.TransactionDate)
	require.True(t, row.AccountID.Valid)
	assert.Equal(t, int64(5), row.AccountID.Int64)
	assert.Equal(t, "Rent Expense", row.AccountName.StringVal)
	assert.Equal(t, exportedAt, row.ExportedTS)
}

func TestNewTransactionRowWithoutAccount(t *testing.T) {
	tx := posting(8, "10", nil)
	tx.Category = ""

	row := NewTransactionRow(tx, nil, time.Now())

	assert.False(t, row.AccountID.Valid)
	assert.False(t, row.AccountName.Valid)
	assert.False(t, row.Category.Valid)
}

func TestPendingRowsSkipsExported(t *testing.T) {
	txs := []domain.Transaction{posting(1, "1", nil), posting(2, "2", nil), posting(3, "3", nil)}
	exported := map[int64]struct{}{2: {}}

	rows := PendingRows(txs, exported, nil, time.Now())

	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0].TransactionID)
	assert.Equal(t, int64(3), rows[1].TransactionID)
}

func TestNewAccountRow(t *testing.T) {
	row := NewAccountRow(domain.Account{ID: 2, Code: "1010", Name: "Bank Account", Type: domain.AccountTypeAsset})

	assert.Equal(t, &AccountRow{AccountID: 2, Code: "1010", AccountName: "Bank Account", AccountType: "asset"}, row)
}

func TestRowSchemasInfer(t *testing.T) {
	for _, row := range []any{TransactionRow{}, AccountRow{}} {
		schema, err := bigquery.InferSchema(row)
		require.NoError(t, err)
		assert.NotEmpty(t, schema)
	}
}
