package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "CHART_PATH", "EXTRACTION_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
	"HF_API_URL", "HF_API_KEY", "EXTRACTION_TIMEOUT", "STORE_TIMEOUT", "REPORT_CACHE_ENTRIES",
	"JOB_QUEUE_SIZE", "JOB_WORKERS", "BIGQUERY_PROJECT", "BIGQUERY_DATASET", "GCS_BUCKET",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv unsets every config variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func emptyEnvFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, nil, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(emptyEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "file:ledger.db", cfg.DatabaseURL)
	assert.Equal(t, "gemini", cfg.Extraction.Provider)
	assert.Equal(t, "gemini-2.5-flash", cfg.Extraction.GeminiModel)
	assert.Equal(t, 20*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, 5*time.Second, cfg.StoreTimeout)
	assert.Equal(t, int64(1000), cfg.ReportCacheEntries)
	assert.Equal(t, 4, cfg.JobWorkers)
	assert.Equal(t, "ledger", cfg.BigQuery.Dataset)
	assert.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateExtraction())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(
		"EXTRACTION_PROVIDER=HuggingFace\nHF_API_KEY=hf-secret\nEXTRACTION_TIMEOUT=3s\nJOB_WORKERS=2\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "huggingface", cfg.Extraction.Provider)
	assert.Equal(t, 3*time.Second, cfg.Extraction.Timeout)
	assert.Equal(t, 2, cfg.JobWorkers)
	assert.NoError(t, cfg.ValidateExtraction())

	ec := cfg.ExtractorConfig([]string{"Cash"})
	assert.Equal(t, "hf-secret", ec.HuggingFaceKey)
	assert.Equal(t, []string{"Cash"}, ec.Accounts)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_TIMEOUT", "soon")
	t.Setenv("JOB_WORKERS", "many")

	_, err := Load(emptyEnvFile(t))
	require.Error(t, err)
	assert.ErrorContains(t, err, "invalid STORE_TIMEOUT")
	assert.ErrorContains(t, err, "invalid JOB_WORKERS")
}

func TestValidateReportsEverything(t *testing.T) {
	cfg := &Config{
		Extraction: ExtractionConfig{Provider: "openai"},
		JobWorkers: 0,
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "DATABASE_URL is required")
	assert.ErrorContains(t, err, "EXTRACTION_TIMEOUT must be positive")
	assert.ErrorContains(t, err, "STORE_TIMEOUT must be positive")
	assert.ErrorContains(t, err, "JOB_WORKERS must be positive")
	assert.ErrorContains(t, err, `EXTRACTION_PROVIDER "openai"`)
}

func TestLoadMissingEnvFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
