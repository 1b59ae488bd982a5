package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of *genai.Models the extractor calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiExtractor extracts candidates with Google Gemini.
type GeminiExtractor struct {
	models   contentGenerator
	model    string
	accounts []string
	log      zerolog.Logger
}

// NewGeminiExtractor creates a Gemini client authenticated with apiKey.
func NewGeminiExtractor(ctx context.Context, apiKey, model string, accounts []string, log zerolog.Logger) (*GeminiExtractor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiExtractor: create genai client: %w", err)
	}
	return newGeminiExtractor(client.Models, model, accounts, log), nil
}

func newGeminiExtractor(models contentGenerator, model string, accounts []string, log zerolog.Logger) *GeminiExtractor {
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiExtractor{
		models:   models,
		model:    model,
		accounts: accounts,
		log:      log.With().Str("provider", ProviderGemini).Logger(),
	}
}

func (g *GeminiExtractor) Name() string { return ProviderGemini }

// Extract implements Extractor.
func (g *GeminiExtractor) Extract(ctx context.Context, description string) (Result, error) {
	start := time.Now()

	cfg := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(description, g.accounts)), cfg)
	if err != nil {
		return Result{}, g.providerError(ctx, err)
	}

	raw := resp.Text()
	g.log.Debug().
		Dur("latency", time.Since(start)).
		Int("reply_bytes", len(raw)).
		Msg("Gemini reply received")

	if raw == "" {
		return Result{Raw: raw}, nil
	}
	return ParseReply(raw, description), nil
}

func (g *GeminiExtractor) providerError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return &domain.ProviderError{Provider: ProviderGemini, Err: ctxErr}
	}
	pe := &domain.ProviderError{Provider: ProviderGemini, Err: err}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		pe.StatusCode = apiErr.Code
	}
	return pe
}
