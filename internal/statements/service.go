package statements

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/ledger"
)

// Kind names a report.
type Kind string

const (
	KindTrialBalance    Kind = "trial-balance"
	KindIncomeStatement Kind = "income-statement"
	KindBalanceSheet    Kind = "balance-sheet"
)

// Kinds lists every report kind.
var Kinds = []Kind{KindTrialBalance, KindIncomeStatement, KindBalanceSheet}

// ParseKind validates a report name.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "report", Value: s}
}

// Source is the read side of the ledger store.
type Source interface {
	Snapshot(ctx context.Context) ([]domain.Transaction, error)
	Version(ctx context.Context) (ledger.Version, error)
}

// Service computes reports from ledger snapshots. Reports are cached per ledger
// version, so a report requested after an insert always includes it.
type Service struct {
	src   Source
	dir   *accounts.Directory
	cache *ristretto.Cache
	log   zerolog.Logger
}

// NewService creates a report service. cacheEntries bounds the number of cached
// reports; zero disables caching.
func NewService(src Source, dir *accounts.Directory, cacheEntries int64, log zerolog.Logger) (*Service, error) {
	s := &Service{src: src, dir: dir, log: log}
	if cacheEntries <= 0 {
		return s, nil
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cacheEntries * 10, // number of keys to track frequency of
		MaxCost:     cacheEntries,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("statements.NewService: create cache: %w", err)
	}
	s.cache = cache
	return s, nil
}

// Close releases the cache.
func (s *Service) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

func (s *Service) TrialBalance(ctx context.Context, p Period) (TrialBalance, error) {
	v, err := s.Report(ctx, KindTrialBalance, p)
	if err != nil {
		return TrialBalance{}, err
	}
	return v.(TrialBalance), nil
}

func (s *Service) IncomeStatement(ctx context.Context, p Period) (IncomeStatement, error) {
	v, err := s.Report(ctx, KindIncomeStatement, p)
	if err != nil {
		return IncomeStatement{}, err
	}
	return v.(IncomeStatement), nil
}

func (s *Service) BalanceSheet(ctx context.Context, p Period) (BalanceSheet, error) {
	v, err := s.Report(ctx, KindBalanceSheet, p)
	if err != nil {
		return BalanceSheet{}, err
	}
	return v.(BalanceSheet), nil
}

// Report computes the named report, consulting the cache first.
func (s *Service) Report(ctx context.Context, kind Kind, p Period) (any, error) {
	var key string
	if s.cache != nil {
		ver, err := s.src.Version(ctx)
		if err != nil {
			return nil, fmt.Errorf("statements.Report: ledger version: %w", err)
		}
		key = fmt.Sprintf("%s|%s|%d|%d", kind, p.key(), ver.Count, ver.MaxID)
		if v, ok := s.cache.Get(key); ok {
			s.log.Debug().Str("report", string(kind)).Str("key", key).Msg("Report served from cache")
			return v, nil
		}
	}

	txs, err := s.src.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("statements.Report: snapshot: %w", err)
	}
	txs = p.Filter(txs)

	var report any
	switch kind {
	case KindTrialBalance:
		report = TrialBalanceOf(txs, s.dir.Names())
	case KindIncomeStatement:
		report = IncomeStatementOf(txs, s.dir)
	case KindBalanceSheet:
		report = BalanceSheetOf(txs, s.dir)
	default:
		return nil, &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "report", Value: string(kind)}
	}

	if s.cache != nil {
		s.cache.Set(key, report, 1)
	}
	s.log.Debug().Str("report", string(kind)).Int("postings", len(txs)).Msg("Report computed")
	return report, nil
}
