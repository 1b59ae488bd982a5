package ledger

import (
	"context"
	"time"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// WithTimeout bounds every store call except SeedAccounts and Close by d.
// SeedAccounts creates the schema at startup and runs on the caller's context.
// A non-positive d returns s unchanged.
func WithTimeout(s Store, d time.Duration) Store {
	if d <= 0 {
		return s
	}
	return &timeoutStore{Store: s, timeout: d}
}

type timeoutStore struct {
	Store
	timeout time.Duration
}

func (s *timeoutStore) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.ListAccounts(ctx)
}

func (s *timeoutStore) Insert(ctx context.Context, v domain.ValidatedTransaction, accountID *int64) (domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Insert(ctx, v, accountID)
}

func (s *timeoutStore) Snapshot(ctx context.Context) ([]domain.Transaction, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Snapshot(ctx)
}

func (s *timeoutStore) Version(ctx context.Context) (Version, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Version(ctx)
}

func (s *timeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.Store.Ping(ctx)
}
