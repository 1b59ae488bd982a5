// Package pipeline validates and commits ledger postings, from free text through an
// extraction provider or from manual input.
package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/extraction"
)

// Options tune the ingestion service.
type Options struct {
	ExtractionTimeout time.Duration
	StoreTimeout      time.Duration
	Now               func() time.Time
}

// IngestResult is the committed posting.
type IngestResult struct {
	TransactionID int64              `json:"transaction_id"`
	Transaction   domain.Transaction `json:"transaction"`
}

// Service runs the ingestion pipelines.
type Service struct {
	text   *Pipeline
	manual *Pipeline
	name   string
	log    zerolog.Logger
}

// NewService wires the text and manual pipelines. Zero timeouts fall back to the defaults.
func NewService(ex extraction.Extractor, resolver *accounts.Resolver, store Inserter, opts Options, log zerolog.Logger) *Service {
	if opts.ExtractionTimeout <= 0 {
		opts.ExtractionTimeout = DefaultExtractionTimeout
	}
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = DefaultStoreTimeout
	}
	validator := NewValidator()
	if opts.Now != nil {
		validator.Now = opts.Now
	}

	validate := &ValidateStep{Validator: validator}
	resolve := &ResolveStep{Resolver: resolver}
	insert := &InsertStep{Store: store, Timeout: opts.StoreTimeout}

	s := &Service{
		manual: NewPipeline(validate, resolve, insert),
		log:    log,
	}
	if ex != nil {
		s.name = ex.Name()
		s.text = NewPipeline(&ExtractStep{Extractor: ex, Timeout: opts.ExtractionTimeout}, validate, resolve, insert)
	}
	return s
}

// IngestText extracts a posting from a free-text description and commits it.
// Nothing is written unless every step succeeds.
func (s *Service) IngestText(ctx context.Context, description string) (IngestResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return IngestResult{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "description"}
	}
	if s.text == nil {
		return IngestResult{}, &domain.ProviderError{Provider: "none", Err: errNoExtractor}
	}

	state := &IngestState{Description: description}
	err := s.text.Execute(ctx, state)
	s.logOutcome(state, err, "text")
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{TransactionID: state.Committed.ID, Transaction: state.Committed}, nil
}

// IngestManual validates manual input, checks its account id if any and commits it.
func (s *Service) IngestManual(ctx context.Context, in ManualInput) (IngestResult, error) {
	state := &IngestState{Manual: &in}
	err := s.manual.Execute(ctx, state)
	s.logOutcome(state, err, "manual")
	if err != nil {
		return IngestResult{}, err
	}
	return IngestResult{TransactionID: state.Committed.ID, Transaction: state.Committed}, nil
}

func (s *Service) logOutcome(state *IngestState, err error, source string) {
	ev := s.log.Info()
	if err != nil {
		ev = s.log.Warn().Err(err)
	}
	if source == "text" {
		ev = ev.Str("provider", s.name).Dur("extract_latency", state.ExtractLatency)
	}
	ev.Str("source", source).
		Str("outcome", outcomeOf(err)).
		Int64("transaction_id", state.Committed.ID).
		Msg("Ingestion finished")
}

func outcomeOf(err error) string {
	if err == nil {
		return "committed"
	}
	return string(domain.KindOf(err))
}
