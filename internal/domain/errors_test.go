package domain

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"account by name", &AccountNotFoundError{Name: "Petty Cash"}, KindNotFound},
		{"wrapped account", fmt.Errorf("resolve: %w", &AccountNotFoundError{ID: 9}), KindNotFound},
		{"invalid amount", &ValidationError{Kind: ErrInvalidAmount, Field: "amount"}, KindClient},
		{"missing account", &ValidationError{Kind: ErrMissingAccount, Field: "account_name"}, KindClient},
		{"provider", &ProviderError{Provider: "gemini", Err: context.DeadlineExceeded}, KindProvider},
		{"unstructured", &UnstructuredError{Raw: "sure! here you go"}, KindUnstructured},
		{"store", &StoreError{Op: "insert", Err: errors.New("connection refused")}, KindInfrastructure},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestProviderErrorUnwrapsCause(t *testing.T) {
	err := fmt.Errorf("extract: %w", &ProviderError{Provider: "huggingface", Err: context.DeadlineExceeded})

	assert.ErrorIs(t, err, ErrProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	var pe *ProviderError
	assert.True(t, errors.As(err, &pe))
	assert.Equal(t, "huggingface", pe.Provider)
}

func TestAccountNotFoundErrorMessage(t *testing.T) {
	assert.Equal(t, `account not found: "Petty Cash"`, (&AccountNotFoundError{Name: "Petty Cash"}).Error())
	assert.Equal(t, "account not found: id 42", (&AccountNotFoundError{ID: 42}).Error())
}
