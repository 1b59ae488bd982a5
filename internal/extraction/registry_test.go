package extraction

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuild(t *testing.T) {
	ex, err := New(context.Background(), Config{Provider: " HuggingFace "}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, ProviderHuggingFace, ex.Name())
}

func TestRegistryUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "openai"}, zerolog.Nop())
	require.Error(t, err)
	assert.ErrorContains(t, err, `unknown provider "openai"`)
	assert.ErrorContains(t, err, "gemini, huggingface")
}

type namedExtractor struct{ name string }

func (n namedExtractor) Extract(context.Context, string) (Result, error) { return Result{}, nil }
func (n namedExtractor) Name() string                                    { return n.name }

func TestRegistryCustomProvider(t *testing.T) {
	r := NewRegistry()
	r.Register("static", func(context.Context, Config, zerolog.Logger) (Extractor, error) {
		return namedExtractor{name: "static"}, nil
	})

	ex, err := r.Build(context.Background(), Config{Provider: "static"}, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, "static", ex.Name())
	assert.Equal(t, []string{"gemini", "huggingface", "static"}, r.Names())
}
