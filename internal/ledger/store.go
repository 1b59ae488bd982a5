// Package ledger defines the ledger store contract shared by the storage backends.
package ledger

import (
	"context"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// Store persists the chart of accounts and the append-only list of postings.
// Implementations must be safe for concurrent use.
type Store interface {
	// SeedAccounts creates the schema if needed and inserts any account not yet present.
	SeedAccounts(ctx context.Context, accts []domain.Account) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	// Insert appends one posting atomically and returns it with its assigned id and
	// created_at. A nil accountID stores the posting without an account. An unknown
	// account id yields *domain.AccountNotFoundError.
	Insert(ctx context.Context, v domain.ValidatedTransaction, accountID *int64) (domain.Transaction, error)
	// Snapshot returns every posting ordered by id as of a single point in time.
	Snapshot(ctx context.Context) ([]domain.Transaction, error)
	Version(ctx context.Context) (Version, error)
	Ping(ctx context.Context) error
	Close() error
}

// Version identifies a state of the append-only ledger. Any insert changes it.
type Version struct {
	Count int64
	MaxID int64
}
