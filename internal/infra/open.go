// Package infra selects a ledger store backend.
package infra

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/infra/postgres"
	"github.com/dvloznov/finance-ledger/internal/infra/sqlite"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

// OpenStore opens the ledger store named by dsn: postgres:// and postgresql:// URLs
// use PostgreSQL, anything else is treated as a SQLite path. The caller owns the
// returned store and must Close it.
func OpenStore(ctx context.Context, dsn string, log zerolog.Logger) (ledger.Store, error) {
	if IsPostgres(dsn) {
		return postgres.Open(ctx, dsn, log.With().Str("backend", "postgres").Logger())
	}
	return sqlite.Open(ctx, dsn, log.With().Str("backend", "sqlite").Logger())
}

// IsPostgres reports whether dsn names a PostgreSQL database.
func IsPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}
