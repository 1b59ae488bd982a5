package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/extraction"
)

// Step is a single stage of ingestion. Steps only touch the shared state; the
// insert step is the only one that writes.
type Step interface {
	Name() string
	Execute(ctx context.Context, state *IngestState) error
}

// IngestState holds the shared state across all pipeline steps.
type IngestState struct {
	Description string
	Manual      *ManualInput

	Extraction extraction.Result
	Validated  domain.ValidatedTransaction
	AccountID  *int64
	Committed  domain.Transaction

	ExtractLatency time.Duration
}

// Inserter is the write side of the ledger store.
type Inserter interface {
	Insert(ctx context.Context, v domain.ValidatedTransaction, accountID *int64) (domain.Transaction, error)
}

// ExtractStep calls the extraction provider. An unstructured reply stops the
// pipeline with *domain.UnstructuredError.
type ExtractStep struct {
	Extractor extraction.Extractor
	Timeout   time.Duration
}

func (s *ExtractStep) Name() string { return "extract" }

func (s *ExtractStep) Execute(ctx context.Context, state *IngestState) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	start := time.Now()
	res, err := s.Extractor.Extract(ctx, state.Description)
	state.ExtractLatency = time.Since(start)
	if err != nil {
		return err
	}
	state.Extraction = res
	if !res.Structured() {
		return &domain.UnstructuredError{Raw: res.Raw}
	}
	return nil
}

// ValidateStep validates the extracted candidate, or the manual input when present.
type ValidateStep struct {
	Validator *Validator
}

func (s *ValidateStep) Name() string { return "validate" }

func (s *ValidateStep) Execute(_ context.Context, state *IngestState) error {
	var (
		v   domain.ValidatedTransaction
		err error
	)
	if state.Manual != nil {
		v, err = s.Validator.ValidateManual(*state.Manual)
		state.AccountID = state.Manual.AccountID
	} else {
		v, err = s.Validator.Validate(*state.Extraction.Candidate)
		if err == nil && v.Description == "" {
			v.Description = state.Description
		}
	}
	if err != nil {
		return err
	}
	state.Validated = v
	return nil
}

// ResolveStep maps the account name to an id, or checks a manually supplied id.
type ResolveStep struct {
	Resolver *accounts.Resolver
}

func (s *ResolveStep) Name() string { return "resolve" }

func (s *ResolveStep) Execute(_ context.Context, state *IngestState) error {
	if state.Validated.AccountName != "" {
		id, err := s.Resolver.Resolve(state.Validated.AccountName)
		if err != nil {
			return err
		}
		state.AccountID = &id
		return nil
	}
	if state.AccountID != nil {
		return s.Resolver.CheckID(*state.AccountID)
	}
	return nil
}

// InsertStep appends the posting to the ledger.
type InsertStep struct {
	Store   Inserter
	Timeout time.Duration
}

func (s *InsertStep) Name() string { return "insert" }

func (s *InsertStep) Execute(ctx context.Context, state *IngestState) error {
	ctx, cancel := withTimeout(ctx, s.Timeout)
	defer cancel()

	tx, err := s.Store.Insert(ctx, state.Validated, state.AccountID)
	if err != nil {
		return err
	}
	state.Committed = tx
	return nil
}

// Pipeline executes a sequence of steps in order, stopping at the first failure.
type Pipeline struct {
	steps []Step
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps sequentially. Errors keep their type through wrapping.
func (p *Pipeline) Execute(ctx context.Context, state *IngestState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d (%s): %w", i+1, step.Name(), err)
		}
	}
	return nil
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
