// Package extraction turns free-text transaction descriptions into candidate
// records using a hosted language model.
package extraction

import (
	"context"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// Extractor sends a description to a model provider and returns what it understood.
// A reply that is not a JSON object is not an error: it comes back as an
// unstructured Result carrying the raw text.
type Extractor interface {
	Extract(ctx context.Context, description string) (Result, error)
	Name() string
}

// Result is the outcome of one extraction call.
type Result struct {
	Candidate *domain.Candidate
	Raw       string
}

// Structured reports whether the provider reply parsed into a candidate.
func (r Result) Structured() bool {
	return r.Candidate != nil
}
