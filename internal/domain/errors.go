package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Sentinel errors. Typed errors below match these with errors.Is.
var (
	ErrAccountNotFound        = errors.New("account not found")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidDate            = errors.New("invalid date")
	ErrMissingAccount         = errors.New("missing account")
	ErrInvalidInput           = errors.New("invalid input")
	ErrProvider               = errors.New("extraction provider error")
	ErrExtractionUnstructured = errors.New("extraction reply is not structured")
	ErrStoreUnavailable       = errors.New("ledger store unavailable")
)

// AccountNotFoundError reports an account name or id that does not exist in the chart.
type AccountNotFoundError struct {
	Name string
	ID   int64
}

func (e *AccountNotFoundError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("account not found: %q", e.Name)
	case e.ID == 0:
		return ErrAccountNotFound.Error()
	}
	return "account not found: id " + strconv.FormatInt(e.ID, 10)
}

func (e *AccountNotFoundError) Is(target error) bool { return target == ErrAccountNotFound }

// ValidationError reports a candidate field that failed validation.
// Kind is one of ErrInvalidAmount, ErrInvalidDate, ErrMissingAccount or ErrInvalidInput.
type ValidationError struct {
	Kind  error
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: field %s", e.Kind, e.Field)
	}
	return fmt.Sprintf("%s: field %s: %q", e.Kind, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

// ProviderError reports a failure of the extraction provider itself: transport errors,
// non-success HTTP statuses, timeouts. It is distinct from an unstructured reply.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s provider: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s provider: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// UnstructuredError carries a provider reply that could not be parsed into a candidate.
type UnstructuredError struct {
	Raw string
}

func (e *UnstructuredError) Error() string {
	return ErrExtractionUnstructured.Error()
}

func (e *UnstructuredError) Is(target error) bool { return target == ErrExtractionUnstructured }

// StoreError wraps an infrastructure failure of the ledger store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("ledger store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

// ErrorKind groups errors by who is responsible for them.
type ErrorKind string

const (
	KindNone           ErrorKind = ""
	KindClient         ErrorKind = "client"
	KindNotFound       ErrorKind = "not_found"
	KindProvider       ErrorKind = "provider"
	KindUnstructured   ErrorKind = "unstructured"
	KindInfrastructure ErrorKind = "infrastructure"
	KindInternal       ErrorKind = "internal"
)

// KindOf classifies err. A nil error has KindNone.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrAccountNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrMissingAccount), errors.Is(err, ErrInvalidInput):
		return KindClient
	case errors.Is(err, ErrExtractionUnstructured):
		return KindUnstructured
	case errors.Is(err, ErrProvider):
		return KindProvider
	case errors.Is(err, ErrStoreUnavailable):
		return KindInfrastructure
	}
	return KindInternal
}
