// Package config loads ledger configuration from environment variables and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dvloznov/finance-ledger/internal/extraction"
)

// Config represents the application configuration.
type Config struct {
	Port        string
	DatabaseURL string
	ChartPath   string

	Extraction ExtractionConfig

	StoreTimeout       time.Duration
	ReportCacheEntries int64

	JobQueueSize int
	JobWorkers   int

	BigQuery  BigQueryConfig
	GCSBucket string

	LogLevel  string
	LogFormat string
}

// ExtractionConfig selects the extraction provider.
type ExtractionConfig struct {
	Provider       string
	GeminiAPIKey   string
	GeminiModel    string
	HuggingFaceURL string
	HuggingFaceKey string
	Timeout        time.Duration
}

// BigQueryConfig names the export target.
type BigQueryConfig struct {
	ProjectID string
	Dataset   string
}

// Load reads configuration from the environment. It first loads envPath, or .env
// in the working directory when no path is given; a missing default .env is ignored.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	var errs []error
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: getEnv("DATABASE_URL", "file:ledger.db"),
		ChartPath:   os.Getenv("CHART_PATH"),
		Extraction: ExtractionConfig{
			Provider:       strings.ToLower(getEnv("EXTRACTION_PROVIDER", extraction.ProviderGemini)),
			GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
			GeminiModel:    getEnv("GEMINI_MODEL", extraction.DefaultGeminiModel),
			HuggingFaceURL: getEnv("HF_API_URL", extraction.DefaultHuggingFaceURL),
			HuggingFaceKey: os.Getenv("HF_API_KEY"),
			Timeout:        getDuration("EXTRACTION_TIMEOUT", 20*time.Second, &errs),
		},
		StoreTimeout:       getDuration("STORE_TIMEOUT", 5*time.Second, &errs),
		ReportCacheEntries: int64(getInt("REPORT_CACHE_ENTRIES", 1000, &errs)),
		JobQueueSize:       getInt("JOB_QUEUE_SIZE", 100, &errs),
		JobWorkers:         getInt("JOB_WORKERS", 4, &errs),
		BigQuery: BigQueryConfig{
			ProjectID: os.Getenv("BIGQUERY_PROJECT"),
			Dataset:   getEnv("BIGQUERY_DATASET", "ledger"),
		},
		GCSBucket: os.Getenv("GCS_BUCKET"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.Extraction.Timeout <= 0 {
		errs = append(errs, errors.New("EXTRACTION_TIMEOUT must be positive"))
	}
	if c.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if c.ReportCacheEntries < 0 {
		errs = append(errs, errors.New("REPORT_CACHE_ENTRIES must not be negative"))
	}
	if c.JobQueueSize < 0 {
		errs = append(errs, errors.New("JOB_QUEUE_SIZE must not be negative"))
	}
	if c.JobWorkers <= 0 {
		errs = append(errs, errors.New("JOB_WORKERS must be positive"))
	}
	switch c.Extraction.Provider {
	case extraction.ProviderGemini, extraction.ProviderHuggingFace:
	default:
		errs = append(errs, fmt.Errorf("EXTRACTION_PROVIDER %q is not one of %s, %s",
			c.Extraction.Provider, extraction.ProviderGemini, extraction.ProviderHuggingFace))
	}
	return errors.Join(errs...)
}

// ValidateExtraction checks the credentials of the selected provider.
func (c *Config) ValidateExtraction() error {
	switch c.Extraction.Provider {
	case extraction.ProviderGemini:
		if c.Extraction.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY is required for the gemini provider")
		}
	case extraction.ProviderHuggingFace:
		if c.Extraction.HuggingFaceURL == "" {
			return errors.New("HF_API_URL is required for the huggingface provider")
		}
	}
	return nil
}

// ExtractorConfig converts the settings into an extraction.Config.
func (c *Config) ExtractorConfig(accountNames []string) extraction.Config {
	return extraction.Config{
		Provider:       c.Extraction.Provider,
		GeminiAPIKey:   c.Extraction.GeminiAPIKey,
		GeminiModel:    c.Extraction.GeminiModel,
		HuggingFaceURL: c.Extraction.HuggingFaceURL,
		HuggingFaceKey: c.Extraction.HuggingFaceKey,
		Accounts:       accountNames,
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return d
}

func getInt(key string, fallback int, errs *[]error) int {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return fallback
	}
	return n
}
