package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/dvloznov/finance-ledger/internal/statements"
)

// Reporter computes financial statements.
type Reporter interface {
	Report(ctx context.Context, kind statements.Kind, p statements.Period) (any, error)
}

// ReportsHandler serves the trial balance, income statement and balance sheet.
type ReportsHandler struct {
	reports Reporter
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(reports Reporter) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// GetReport handles GET /api/reports/{kind}?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	kind, err := statements.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Unknown report")
		return
	}

	query := r.URL.Query()
	period, err := statements.ParsePeriod(query.Get("from"), query.Get("to"))
	if err != nil {
		writeDomainError(w, log, err)
		return
	}

	report, err := h.reports.Report(r.Context(), kind, period)
	if err != nil {
		writeDomainError(w, log, err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, report)
}
