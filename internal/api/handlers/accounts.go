package handlers

import (
	"net/http"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/api/middleware"
)

// AccountsHandler serves the chart of accounts.
type AccountsHandler struct {
	dir *accounts.Directory
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(dir *accounts.Directory) *AccountsHandler {
	return &AccountsHandler{dir: dir}
}

// ListAccounts handles GET /api/accounts
func (h *AccountsHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	all := h.dir.All()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"accounts": all,
		"count":    len(all),
	})
}
