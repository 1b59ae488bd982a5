package accounts

import (
	"strings"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// Resolver maps account names from extracted candidates to account ids.
type Resolver struct {
	dir *Directory
}

func NewResolver(dir *Directory) *Resolver {
	return &Resolver{dir: dir}
}

// Resolve returns the id of the account whose name equals name after trimming
// and case folding. There is no fuzzy matching.
func (r *Resolver) Resolve(name string) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, &domain.AccountNotFoundError{Name: name}
	}
	a, ok := r.dir.lookup(name)
	if !ok {
		return 0, &domain.AccountNotFoundError{Name: strings.TrimSpace(name)}
	}
	return a.ID, nil
}

// CheckID reports AccountNotFound when id is not part of the chart.
func (r *Resolver) CheckID(id int64) error {
	if !r.dir.Exists(id) {
		return &domain.AccountNotFoundError{ID: id}
	}
	return nil
}
