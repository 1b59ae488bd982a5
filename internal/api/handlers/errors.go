package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/finance-ledger/internal/api/middleware"
	"github.com/dvloznov/finance-ledger/internal/domain"
)

// errorResponse is the JSON body of every failed request.
type errorResponse struct {
	Error       string `json:"error"`
	Kind        string `json:"kind,omitempty"`
	Account     string `json:"account,omitempty"`
	RawResponse string `json:"raw_response,omitempty"`
	Retryable   bool   `json:"retryable,omitempty"`
}

// statusFor maps an error kind to the HTTP status reported to the client.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindClient:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnstructured:
		return http.StatusUnprocessableEntity
	case domain.KindProvider:
		return http.StatusBadGateway
	case domain.KindInfrastructure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError classifies err and writes the matching response. Internal
// errors are logged and hidden from the client.
func writeDomainError(w http.ResponseWriter, log zerolog.Logger, err error) {
	kind := domain.KindOf(err)
	status := statusFor(kind)
	resp := errorResponse{Error: err.Error(), Kind: string(kind)}

	switch kind {
	case domain.KindNotFound:
		var nf *domain.AccountNotFoundError
		if errors.As(err, &nf) {
			resp.Account = nf.Name
		}
	case domain.KindUnstructured:
		var ue *domain.UnstructuredError
		if errors.As(err, &ue) {
			resp.RawResponse = ue.Raw
		}
	case domain.KindProvider:
		resp.Retryable = true
	case domain.KindInfrastructure:
		resp.Error = "ledger store unavailable"
	case domain.KindInternal:
		resp.Error = "Internal server error"
	}

	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("kind", string(kind)).Int("status", status).Msg("Request failed")
	} else {
		log.Info().Err(err).Str("kind", string(kind)).Int("status", status).Msg("Request rejected")
	}
	middleware.WriteJSON(w, status, resp)
}
