package domain

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Transaction is one posting in the ledger. Postings are append-only: they are
// created through ingestion and never updated or deleted.
type Transaction struct {
	ID          int64      `json:"id"`
	Type        string     `json:"type"` // free-form, e.g. "expense"
	Amount      Money      `json:"amount"`
	Description string     `json:"description"`
	Date        civil.Date `json:"date"`
	Category    string     `json:"category"`
	AccountID   *int64     `json:"account_id"` // nil for manual postings without an account
	CreatedAt   time.Time  `json:"created_at"`
}

// Candidate is the loosely-typed record an extraction provider produced from free text.
// Every field except Description may be absent; Amount keeps the provider's literal text.
type Candidate struct {
	Type        *string
	Amount      *string
	Category    *string
	Date        *string
	AccountName *string
	Description string
}

// ValidatedTransaction is a candidate whose fields passed validation and defaulting.
// It is what the ledger store accepts for insertion.
type ValidatedTransaction struct {
	Type        string
	Amount      decimal.Decimal
	Description string
	Date        civil.Date
	Category    string
	AccountName string // empty for manual postings
}
