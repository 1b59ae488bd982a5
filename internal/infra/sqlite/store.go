// Package sqlite implements the ledger store on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

//go:embed schema.sql
var schemaSQL string

var _ ledger.Store = (*Store)(nil)

// Store is a ledger store backed by a single SQLite database file.
// One connection serializes writers; WAL keeps readers of other processes unblocked.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open creates or opens the database at path and applies the schema.
// path may be a plain file path, a "file:" URI, a "sqlite://" URL or ":memory:".
func Open(ctx context.Context, path string, log zerolog.Logger) (*Store, error) {
	dsn, err := buildDSN(path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite.Open: open database: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.Open: apply schema: %w", err)
	}

	log.Debug().Str("dsn", dsn).Msg("SQLite ledger opened")
	return &Store{db: db, log: log}, nil
}

func buildDSN(path string) (string, error) {
	path = strings.TrimPrefix(strings.TrimPrefix(path, "sqlite3://"), "sqlite://")
	if path == "" {
		path = "ledger.db"
	}

	file := strings.TrimPrefix(path, "file:")
	if i := strings.Index(file, "?"); i != -1 {
		file = file[:i]
	}
	if file != ":memory:" && !strings.Contains(path, "mode=memory") {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return "", fmt.Errorf("sqlite.Open: create database directory: %w", err)
		}
	}

	dsn := path
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

// SeedAccounts inserts accounts whose id is not present yet. Existing rows are left untouched.
func (s *Store) SeedAccounts(ctx context.Context, accts []domain.Account) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &domain.StoreError{Op: "seed accounts", Err: err}
	}
	defer tx.Rollback()

	for _, a := range accts {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO accounts (id, code, name, type) VALUES (?, ?, ?, ?) ON CONFLICT(id) DO NOTHING`,
			a.ID, a.Code, a.Name, string(a.Type))
		if err != nil {
			return &domain.StoreError{Op: "seed accounts", Err: fmt.Errorf("account %d: %w", a.ID, err)}
		}
	}
	if err := tx.Commit(); err != nil {
		return &domain.StoreError{Op: "seed accounts", Err: err}
	}
	return nil
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name, type FROM accounts ORDER BY id`)
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
	createdAt := time.Now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Transaction{}, &domain.StoreError{Op: "insert", Err: err}
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO transactions (type, amount, description, date, category, account_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.Type, v.Amount.StringFixed(domain.MoneyPlaces), v.Description, v.Date.String(),
		v.Category, nullableID(accountID), createdAt.Format(time.RFC3339Nano))
	if err != nil {
		return domain.Transaction{}, mapInsertError(err, accountID)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Transaction{}, &domain.StoreError{Op: "insert", Err: err}
	}
	if err := tx.Commit(); err != nil {
		return domain.Transaction{}, mapInsertError(err, accountID)
	}

	return domain.Transaction{
		ID:          id,
		Type:        v.Type,
		Amount:      domain.NewMoney(v.Amount),
		Description: v.Description,
		Date:        v.Date,
		Category:    v.Category,
		AccountID:   accountID,
		CreatedAt:   createdAt,
	}, nil
}

func mapInsertError(err error, accountID *int64) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
		nf := &domain.AccountNotFoundError{}
		if accountID != nil {
			nf.ID = *accountID
		}
		return nf
	}
	return &domain.StoreError{Op: "insert", Err: err}
}

// Snapshot reads every posting inside one read transaction.
func (s *Store) Snapshot(ctx context.Context) ([]domain.Transaction, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, &domain.StoreError{Op: "snapshot", Err: err}
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, type, amount, description, date, category, account_id, created_at
		FROM transactions ORDER BY id`)
	if err != nil {
		return nil, &domain.StoreError{Op: "snapshot", Err: err}
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, &domain.StoreError{Op: "snapshot", Err: err}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, &domain.StoreError{Op: "snapshot", Err: err}
	}
	return out, nil
}

func scanTransaction(rows *sql.Rows) (domain.Transaction, error) {
	var (
		t                       domain.Transaction
		amount, date, createdAt string
		accountID               sql.NullInt64
	)
	if err := rows.Scan(&t.ID, &t.Type, &amount, &t.Description, &date, &t.Category, &accountID, &createdAt); err != nil {
		return t, err
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return t, fmt.Errorf("transaction %d: amount %q: %w", t.ID, amount, err)
	}
	t.Amount = domain.NewMoney(d)

	if t.Date, err = civil.ParseDate(date); err != nil {
		return t, fmt.Errorf("transaction %d: date %q: %w", t.ID, date, err)
	}
	if t.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return t, fmt.Errorf("transaction %d: created_at %q: %w", t.ID, createdAt, err)
	}
	if accountID.Valid {
		id := accountID.Int64
		t.AccountID = &id
	}
	return t, nil
}

// Version implements ledger.Store.
func (s *Store) Version(ctx context.Context) (ledger.Version, error) {
	var v ledger.Version
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(MAX(id), 0) FROM transactions`).Scan(&v.Count, &v.MaxID)
	if err != nil {
		return ledger.Version{}, &domain.StoreError{Op: "version", Err: err}
	}
	return v, nil
}

func nullableID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
