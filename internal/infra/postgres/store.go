// Package postgres implements the ledger store on PostgreSQL.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

const foreignKeyViolation = "23503"

var _ ledger.Store = (*Store)(nil)

// Store is a ledger store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects to the database at url and applies the schema.
func Open(ctx context.Context, url string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres.Open: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.Open: ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.Open: apply schema: %w", err)
	}

	log.Debug().Str("host", pool.Config().ConnConfig.Host).Msg("PostgreSQL ledger opened")
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// SeedAccounts inserts accounts whose id is not present yet.
func (s *Store) SeedAccounts(ctx context.Context, accts []domain.Account) error {
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		for _, a := range accts {
			_, err := tx.Exec(ctx,
				`INSERT INTO accounts (id, code, name, type) VALUES ($1, $2, $3, $4) ON CONFLICT (id) DO NOTHING`,
				a.ID, a.Code, a.Name, string(a.Type))
			if err != nil {
				return fmt.Errorf("account %d: %w", a.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return &domain.StoreError{Op: "seed accounts", Err: err}
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, code, name, type FROM accounts ORDER BY id`)
	if err != nil {
		return nil, &domain.StoreError{Op: "list accounts", Err: err}
	}
	defer rows.Close()

	var out []domain.Account
	for rows.Next() {
		var a domain.Account
		var typ string
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &typ); err != nil {
			return nil, &domain.StoreError{Op: "list accounts", Err: err}
		}
		a.Type = domain.AccountType(typ)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "list accounts", Err: err}
	}
	return out, nil
}

// Insert implements ledger.Store.
func (s *Store) Insert(ctx context.Context, v domain.ValidatedTransaction, accountID *int64) (domain.Transaction, error) {
	t := domain.Transaction{
		Type:        v.Type,
		Amount:      domain.NewMoney(v.Amount),
		Description: v.Description,
		Date:        v.Date,
		Category:    v.Category,
		AccountID:   accountID,
	}

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO transactions (type, amount, description, date, category, account_id)
			VALUES ($1, $2::numeric, $3, $4::date, $5, $6)
			RETURNING id, created_at`,
			v.Type, v.Amount.StringFixed(domain.MoneyPlaces), v.Description, v.Date.String(), v.Category, accountID,
		).Scan(&t.ID, &t.CreatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			nf := &domain.AccountNotFoundError{}
			if accountID != nil {
				nf.ID = *accountID
			}
			return domain.Transaction{}, nf
		}
		return domain.Transaction{}, &domain.StoreError{Op: "insert", Err: err}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// Snapshot reads every posting in one REPEATABLE READ, READ ONLY transaction.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Transaction, error) {
	var out []domain.Transaction
	opts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}

	err := pgx.BeginTxFunc(ctx, s.pool, opts, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, `
			SELECT id, type, amount::text, description, date, category, account_id, created_at
			FROM transactions ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				t      domain.Transaction
				amount string
				date   time.Time
			)
			if err := rows.Scan(&t.ID, &t.Type, &amount, &t.Description, &date, &t.Category, &t.AccountID, &t.CreatedAt); err != nil {
				return err
			}
			d, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("transaction %d: amount %q: %w", t.ID, amount, err)
			}
			t.Amount = domain.NewMoney(d)
			t.Date = civil.DateOf(date)
			t.CreatedAt = t.CreatedAt.UTC()
			out = append(out, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, &domain.StoreError{Op: "snapshot", Err: err}
	}
	return out, nil
}

// Version implements ledger.Store.
func (s *Store) Version(ctx context.Context) (ledger.Version, error) {
	var v ledger.Version
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*), COALESCE(MAX(id), 0) FROM transactions`).Scan(&v.Count, &v.MaxID)
	if err != nil {
		return ledger.Version{}, &domain.StoreError{Op: "version", Err: err}
	}
	return v, nil
}
