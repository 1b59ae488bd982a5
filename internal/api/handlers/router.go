// Package handlers implements the HTTP API over the ingestion pipeline, the
// ledger and the statement engine.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/jobs"
)

// Ledger is the read side of the ledger store used by the API.
type Ledger interface {
	Snapshotter
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the router. Publisher and Jobs may be nil to
// disable asynchronous ingestion.
type Deps struct {
	Ingestor  Ingestor
	Ledger    Ledger
	Accounts  *accounts.Directory
	Reports   Reporter
	Publisher jobs.Publisher
	Jobs      jobs.JobStore
	Log       zerolog.Logger
}

// NewRouter builds the API routes and middleware chain.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID(d.Log))
	r.Use(middleware.Logger(d.Log))
	r.Use(middleware.Recovery(d.Log))
	r.Use(middleware.CORS)

	transactions := NewTransactionsHandler(d.Ingestor, d.Ledger, d.Publisher)
	accountsHandler := NewAccountsHandler(d.Accounts)
	reports := NewReportsHandler(d.Reports)

	r.Get("/health", health(d.Ledger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/transactions/process-text", transactions.ProcessText)
		r.Post("/transactions/process-text/async", transactions.ProcessTextAsync)
		r.Post("/transactions/manual", transactions.AddManual)
		r.Get("/transactions", transactions.ListTransactions)

		r.Get("/accounts", accountsHandler.ListAccounts)

		r.Get("/reports/{kind}", reports.GetReport)

		if d.Jobs != nil {
			jobsHandler := NewJobsHandler(d.Jobs)
			r.Get("/jobs", jobsHandler.ListJobs)
			r.Get("/jobs/{id}", jobsHandler.GetJob)
		}
	})

	return r
}

// health reports whether the ledger store answers.
func health(ledger Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := ledger.Ping(ctx); err != nil {
			middleware.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}
