package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// DefaultHuggingFaceURL is the hosted text2text model the ledger was first built against.
const DefaultHuggingFaceURL = "https://api-inference.huggingface.co/models/google/flan-t5-base"

const maxReplyBytes = 1 << 20

// HuggingFaceExtractor extracts candidates with the Hugging Face inference API.
type HuggingFaceExtractor struct {
	url        string
	apiKey     string
	accounts   []string
	httpClient *http.Client
	log        zerolog.Logger
}

func NewHuggingFaceExtractor(url, apiKey string, accounts []string, httpClient *http.Client, log zerolog.Logger) *HuggingFaceExtractor {
	if url == "" {
		url = DefaultHuggingFaceURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HuggingFaceExtractor{
		url:        url,
		apiKey:     apiKey,
		accounts:   accounts,
		httpClient: httpClient,
		log:        log.With().Str("provider", ProviderHuggingFace).Logger(),
	}
}

func (h *HuggingFaceExtractor) Name() string { return ProviderHuggingFace }

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type generation struct {
	GeneratedText *string `json:"generated_text"`
}

// Extract implements Extractor.
func (h *HuggingFaceExtractor) Extract(ctx context.Context, description string) (Result, error) {
	start := time.Now()

	body, err := json.Marshal(inferenceRequest{Inputs: BuildPrompt(description, h.accounts)})
	if err != nil {
		return Result{}, fmt.Errorf("HuggingFaceExtractor.Extract: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("HuggingFaceExtractor.Extract: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return Result{}, h.providerError(ctx, 0, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return Result{}, h.providerError(ctx, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	h.log.Debug().
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Int("reply_bytes", len(respBody)).
		Msg("Hugging Face reply received")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, h.providerError(ctx, resp.StatusCode, fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(respBody))))
	}

	text, ok := generatedText(respBody)
	if !ok {
		return Result{Raw: string(respBody)}, nil
	}
	return ParseReply(text, description), nil
}

// generatedText unwraps [{"generated_text": ...}] or the single-object form.
func generatedText(body []byte) (string, bool) {
	var list []generation
	if err := json.Unmarshal(body, &list); err == nil {
		if len(list) == 0 || list[0].GeneratedText == nil {
			return "", false
		}
		return *list[0].GeneratedText, true
	}

	var single generation
	if err := json.Unmarshal(body, &single); err == nil && single.GeneratedText != nil {
		return *single.GeneratedText, true
	}
	return "", false
}

func (h *HuggingFaceExtractor) providerError(ctx context.Context, status int, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	return &domain.ProviderError{Provider: ProviderHuggingFace, StatusCode: status, Err: err}
}
