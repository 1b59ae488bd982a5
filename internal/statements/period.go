package statements

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// Period restricts a report to postings dated within [From, To]. A zero bound is open.
type Period struct {
	From civil.Date
	To   civil.Date
}

// ParsePeriod parses optional YYYY-MM-DD bounds.
func ParsePeriod(from, to string) (Period, error) {
	var p Period
	var err error
	if from != "" {
		if p.From, err = civil.ParseDate(from); err != nil {
			return Period{}, &domain.ValidationError{Kind: domain.ErrInvalidDate, Field: "from", Value: from}
		}
	}
	if to != "" {
		if p.To, err = civil.ParseDate(to); err != nil {
			return Period{}, &domain.ValidationError{Kind: domain.ErrInvalidDate, Field: "to", Value: to}
		}
	}
	if !p.From.IsZero() && !p.To.IsZero() && p.To.Before(p.From) {
		return Period{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "to", Value: to}
	}
	return p, nil
}

func (p Period) Contains(d civil.Date) bool {
	if !p.From.IsZero() && d.Before(p.From) {
		return false
	}
	if !p.To.IsZero() && d.After(p.To) {
		return false
	}
	return true
}

// Filter returns the postings inside the period, preserving order.
func (p Period) Filter(txs []domain.Transaction) []domain.Transaction {
	if p.From.IsZero() && p.To.IsZero() {
		return txs
	}
	out := make([]domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if p.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

func (p Period) key() string {
	return fmt.Sprintf("%s..%s", dateKey(p.From), dateKey(p.To))
}

func dateKey(d civil.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}
