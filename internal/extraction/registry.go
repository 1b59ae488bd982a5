package extraction

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// Provider names accepted in configuration.
const (
	ProviderGemini      = "gemini"
	ProviderHuggingFace = "huggingface"
)

// Config selects and configures an extraction provider.
type Config struct {
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	HuggingFaceURL string
	HuggingFaceKey string
	Accounts       []string // account names offered to the model
	HTTPClient     *http.Client
}

// Factory builds one provider.
type Factory func(ctx context.Context, cfg Config, log zerolog.Logger) (Extractor, error)

// Registry maps provider names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry with the built-in providers registered.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register(ProviderGemini, func(ctx context.Context, cfg Config, log zerolog.Logger) (Extractor, error) {
		g, err := NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.Accounts, log)
		if err != nil {
			return nil, err
		}
		return g, nil
	})
	r.Register(ProviderHuggingFace, func(_ context.Context, cfg Config, log zerolog.Logger) (Extractor, error) {
		return NewHuggingFaceExtractor(cfg.HuggingFaceURL, cfg.HuggingFaceKey, cfg.Accounts, cfg.HTTPClient, log), nil
	})
	return r
}

func (r *Registry) Register(name string, f Factory) {
	r.factories[strings.ToLower(name)] = f
}

// Names lists registered providers in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the provider named by cfg.Provider.
func (r *Registry) Build(ctx context.Context, cfg Config, log zerolog.Logger) (Extractor, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("extraction: unknown provider %q (known: %s)", cfg.Provider, strings.Join(r.Names(), ", "))
	}
	ex, err := f(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("extraction: build %s: %w", name, err)
	}
	return ex, nil
}

// New builds the configured provider from the default registry.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (Extractor, error) {
	return NewRegistry().Build(ctx, cfg, log)
}
