package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-ledger/internal/accounts"
	"github.com/dvloznov/finance-ledger/internal/domain"
	"github.com/dvloznov/finance-ledger/internal/extraction"
)

// MockExtractor is a mock implementation of extraction.Extractor for testing.
type MockExtractor struct {
	ExtractFunc func(ctx context.Context, description string) (extraction.Result, error)
}

func (m *MockExtractor) Extract(ctx context.Context, description string) (extraction.Result, error) {
	return m.ExtractFunc(ctx, description)
}

func (m *MockExtractor) Name() string { return "mock" }

func replying(raw string) *MockExtractor {
	return &MockExtractor{ExtractFunc: func(_ context.Context, description string) (extraction.Result, error) {
		return extraction.ParseReply(raw, description), nil
	}}
}

// memoryStore records inserts in memory.
type memoryStore struct {
	mu   sync.Mutex
	txs  []domain.Transaction
	err  error
	next int64
}

func (s *memoryStore) Insert(_ context.Context, v domain.ValidatedTransaction, accountID *int64) (domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return domain.Transaction{}, s.err
	}
	s.next++
	tx := domain.Transaction{
		ID:          s.next,
		Type:        v.Type,
		Amount:      domain.NewMoney(v.Amount),
		Description: v.Description,
		Date:        v.Date,
		Category:    v.Category,
		AccountID:   accountID,
		CreatedAt:   time.Now().UTC(),
	}
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *memoryStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.txs)
}

func newService(ex extraction.Extractor, store Inserter, opts Options) *Service {
	resolver := accounts.NewResolver(accounts.NewDirectory(accounts.DefaultChart(), nil))
	return NewService(ex, resolver, store, opts, zerolog.Nop())
}

func TestIngestText_Commits(t *testing.T) {
	store := &memoryStore{}
	svc := newService(replying(`{"type":"expense","amount":500,"category":"Rent Expense","account_name":"bank account"}`), store, Options{})

	res, err := svc.IngestText(context.Background(), "Paid rent of 500 from bank account")
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.TransactionID)
	require.NotNil(t, res.Transaction.AccountID)
	assert.Equal(t, int64(2), *res.Transaction.AccountID)
	assert.Equal(t, "500.00", res.Transaction.Amount.String())
	assert.Equal(t, "Rent Expense", res.Transaction.Category)
	assert.Equal(t, "Paid rent of 500 from bank account", res.Transaction.Description)
	assert.Equal(t, 1, store.count())
}

func TestIngestText_FailuresDoNotWrite(t *testing.T) {
	tests := []struct {
		name     string
		ex       *MockExtractor
		wantKind domain.ErrorKind
		wantIs   error
	}{
		{
			name:     "unknown account",
			ex:       replying(`{"amount":10,"account_name":"Petty Cash"}`),
			wantKind: domain.KindNotFound,
			wantIs:   domain.ErrAccountNotFound,
		},
		{
			name:     "missing account",
			ex:       replying(`{"amount":10}`),
			wantKind: domain.KindClient,
			wantIs:   domain.ErrMissingAccount,
		},
		{
			name:     "missing amount",
			ex:       replying(`{"account_name":"Cash"}`),
			wantKind: domain.KindClient,
			wantIs:   domain.ErrInvalidAmount,
		},
		{
			name:     "python literal reply",
			ex:       replying(`{'amount': 10, 'account': 'Cash'}`),
			wantKind: domain.KindUnstructured,
			wantIs:   domain.ErrExtractionUnstructured,
		},
		{
			name: "provider failure",
			ex: &MockExtractor{ExtractFunc: func(context.Context, string) (extraction.Result, error) {
				return extraction.Result{}, &domain.ProviderError{Provider: "mock", StatusCode: 500, Err: errors.New("boom")}
			}},
			wantKind: domain.KindProvider,
			wantIs:   domain.ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			svc := newService(tt.ex, store, Options{})

			_, err := svc.IngestText(context.Background(), "some text")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantIs)
			assert.Equal(t, tt.wantKind, domain.KindOf(err))
			assert.Zero(t, store.count())
		})
	}
}

func TestIngestText_UnstructuredCarriesRaw(t *testing.T) {
	svc := newService(replying("I think it was about 500 dollars"), &memoryStore{}, Options{})

	_, err := svc.IngestText(context.Background(), "paid something")

	var ue *domain.UnstructuredError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "I think it was about 500 dollars", ue.Raw)
}

func TestIngestText_ExtractionTimeout(t *testing.T) {
	store := &memoryStore{}
	slow := &MockExtractor{ExtractFunc: func(ctx context.Context, _ string) (extraction.Result, error) {
		<-ctx.Done()
		return extraction.Result{}, &domain.ProviderError{Provider: "mock", Err: ctx.Err()}
	}}
	svc := newService(slow, store, Options{ExtractionTimeout: 20 * time.Millisecond})

	_, err := svc.IngestText(context.Background(), "paid rent")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Zero(t, store.count())
}

func TestIngestText_BlankDescription(t *testing.T) {
	called := false
	ex := &MockExtractor{ExtractFunc: func(context.Context, string) (extraction.Result, error) {
		called = true
		return extraction.Result{}, nil
	}}
	svc := newService(ex, &memoryStore{}, Options{})

	_, err := svc.IngestText(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, called)
}

func TestIngestText_StoreFailure(t *testing.T) {
	store := &memoryStore{err: &domain.StoreError{Op: "insert", Err: errors.New("disk full")}}
	svc := newService(replying(`{"amount":1,"account_name":"Cash"}`), store, Options{})

	_, err := svc.IngestText(context.Background(), "x")
	assert.Equal(t, domain.KindInfrastructure, domain.KindOf(err))
}

func TestIngestText_NoExtractorConfigured(t *testing.T) {
	svc := newService(nil, &memoryStore{}, Options{})

	_, err := svc.IngestText(context.Background(), "paid rent")
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestIngestManual(t *testing.T) {
	store := &memoryStore{}
	svc := newService(nil, store, Options{})
	id := int64(4)

	res, err := svc.IngestManual(context.Background(), ManualInput{
		Type: "income", Amount: "-1500", Date: "2024-04-01", Category: "Sales Revenue", AccountID: &id,
	})
	require.NoError(t, err)
	assert.Equal(t, "-1500.00", res.Transaction.Amount.String())

	res, err = svc.IngestManual(context.Background(), ManualInput{Type: "expense", Amount: "20"})
	require.NoError(t, err)
	assert.Nil(t, res.Transaction.AccountID)

	missing := int64(99)
	_, err = svc.IngestManual(context.Background(), ManualInput{Type: "expense", Amount: "20", AccountID: &missing})
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
	assert.Equal(t, 2, store.count())
}

func TestIngestText_Concurrent(t *testing.T) {
	store := &memoryStore{}
	svc := newService(replying(`{"amount":1,"account_name":"Cash"}`), store, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.IngestText(context.Background(), "coffee")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, store.count())
}
