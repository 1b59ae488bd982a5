package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/jobs"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/dvloznov/finance-ledger/internal/pipeline"
	"github.com/dvloznov/finance-ledger/internal/statements"
)

// Ingestor commits postings from free text or manual input.
type Ingestor interface {
	IngestText(ctx context.Context, description string) (pipeline.IngestResult, error)
	IngestManual(ctx context.Context, in pipeline.ManualInput) (pipeline.IngestResult, error)
}

// Snapshotter reads the whole ledger.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]domain.Transaction, error)
}

// TransactionsHandler handles transaction-related endpoints.
type TransactionsHandler struct {
	ingestor  Ingestor
	ledger    Snapshotter
	publisher jobs.Publisher
}

// NewTransactionsHandler creates a new transactions handler. publisher may be nil,
// in which case asynchronous ingestion is unavailable.
func NewTransactionsHandler(ingestor Ingestor, ledger Snapshotter, publisher jobs.Publisher) *TransactionsHandler {
	return &TransactionsHandler{ingestor: ingestor, ledger: ledger, publisher: publisher}
}

type processTextRequest struct {
	Description string `json:"description"`
}

type manualRequest struct {
	Type        string          `json:"type"`
	Amount      json.RawMessage `json:"amount"`
	Description string          `json:"description"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	AccountID   *int64          `json:"account_id"`
}

// ProcessText handles POST /api/transactions/process-text
func (h *TransactionsHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req processTextRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.ingestor.IngestText(r.Context(), req.Description)
	if err != nil {
		writeDomainError(w, log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":        "Transaction added",
		"transaction_id": res.TransactionID,
		"transaction":    res.Transaction,
	})
}

// ProcessTextAsync handles POST /api/transactions/process-text/async
func (h *TransactionsHandler) ProcessTextAsync(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if h.publisher == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Asynchronous ingestion is disabled")
		return
	}

	var req processTextRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Description) == "" {
		writeDomainError(w, log, &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "description"})
		return
	}

	job := &jobs.IngestTextJob{Description: req.Description}
	if err := h.publisher.PublishIngestText(r.Context(), job); err != nil {
		log.Error().Err(err).Msg("Failed to enqueue ingestion job")
		middleware.WriteError(w, http.StatusServiceUnavailable, "Failed to enqueue ingestion job")
		return
	}

	log.Info().Str("job_id", job.JobID).Msg("Ingestion job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// AddManual handles POST /api/transactions/manual
func (h *TransactionsHandler) AddManual(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	var req manualRequest
	if !decodeBody(w, r, &req) {
		return
	}

	res, err := h.ingestor.IngestManual(r.Context(), pipeline.ManualInput{
		Type:        req.Type,
		Amount:      amountText(req.Amount),
		Description: req.Description,
		Date:        req.Date,
		Category:    req.Category,
		AccountID:   req.AccountID,
	})
	if err != nil {
		writeDomainError(w, log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"id":             res.TransactionID,
		"transaction_id": res.TransactionID,
		"message":        "Transaction added successfully",
		"transaction":    res.Transaction,
	})
}

// amountText accepts the amount as a JSON number or string and returns its text.
func amountText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

// maxBodyBytes caps a JSON request body.
const maxBodyBytes = 64 << 10

// decodeBody decodes a JSON request body into v and writes the error response on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
	return false
}

// ListTransactions handles GET /api/transactions
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	period, err := statements.ParsePeriod(r.URL.Query().Get("from"), r.URL.Query().Get("to"))
	if err != nil {
		writeDomainError(w, log, err)
		return
	}

	txs, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		writeDomainError(w, log, err)
		return
	}
	txs = period.Filter(txs)

	if txs == nil {
		txs = []domain.Transaction{}
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": txs,
		"count":        len(txs),
	})
}
