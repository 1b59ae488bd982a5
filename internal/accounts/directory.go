package accounts

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// Lister is the part of the ledger store the directory is loaded from.
type Lister interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

// Directory is the read-only chart of accounts plus the category classification
// used by the statement engine. It is immutable after construction and safe for
// concurrent use.
type Directory struct {
	accounts  []domain.Account
	byID      map[int64]domain.Account
	byName    map[string]domain.Account
	overrides map[string]domain.StatementBucket
}

// NewDirectory indexes accts. When several accounts share a name under case folding,
// the one with the lowest id wins.
func NewDirectory(accts []domain.Account, overrides map[string]domain.StatementBucket) *Directory {
	sorted := make([]domain.Account, len(accts))
	copy(sorted, accts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	d := &Directory{
		accounts:  sorted,
		byID:      make(map[int64]domain.Account, len(sorted)),
		byName:    make(map[string]domain.Account, len(sorted)),
		overrides: make(map[string]domain.StatementBucket, len(overrides)),
	}
	for _, a := range sorted {
		d.byID[a.ID] = a
		key := domain.FoldName(a.Name)
		if _, ok := d.byName[key]; !ok {
			d.byName[key] = a
		}
	}
	for category, bucket := range overrides {
		if b, ok := domain.ParseBucket(string(bucket)); ok {
			d.overrides[category] = b
		}
	}
	return d
}

// Load builds a Directory from the accounts held by the store.
func Load(ctx context.Context, lister Lister, overrides map[string]domain.StatementBucket) (*Directory, error) {
	accts, err := lister.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("accounts.Load: list accounts: %w", err)
	}
	return NewDirectory(accts, overrides), nil
}

// All returns every account ordered by id.
func (d *Directory) All() []domain.Account {
	out := make([]domain.Account, len(d.accounts))
	copy(out, d.accounts)
	return out
}

func (d *Directory) Get(id int64) (domain.Account, bool) {
	a, ok := d.byID[id]
	return a, ok
}

func (d *Directory) Exists(id int64) bool {
	_, ok := d.byID[id]
	return ok
}

// ByType returns the accounts of type t ordered by id.
func (d *Directory) ByType(t domain.AccountType) []domain.Account {
	var out []domain.Account
	for _, a := range d.accounts {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

// Names maps account id to account name.
func (d *Directory) Names() map[int64]string {
	out := make(map[int64]string, len(d.byID))
	for id, a := range d.byID {
		out[id] = a.Name
	}
	return out
}

func (d *Directory) lookup(name string) (domain.Account, bool) {
	a, ok := d.byName[domain.FoldName(name)]
	return a, ok
}

// Bucket maps a posting category to the statement bucket it rolls up into.
// Resolution order: explicit overrides, then a category naming an account
// (bucket of that account's type), then the legacy keyword rules. Categories
// matching nothing return BucketNone and are left out of statements.
func (d *Directory) Bucket(category string) domain.StatementBucket {
	if b, ok := d.overrides[category]; ok {
		return b
	}
	if a, ok := d.lookup(category); ok {
		return a.Type.Bucket()
	}
	return legacyBucket(category)
}

// legacyBucket applies the keyword rules: balance-sheet buckets match exactly,
// revenue and expense match by substring.
func legacyBucket(category string) domain.StatementBucket {
	switch category {
	case "Asset":
		return domain.BucketAsset
	case "Liability":
		return domain.BucketLiability
	case "Equity":
		return domain.BucketEquity
	}
	switch {
	case strings.Contains(category, "Revenue"):
		return domain.BucketRevenue
	case strings.Contains(category, "Expense"):
		return domain.BucketExpense
	}
	return domain.BucketNone
}
