package pipeline

import (
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

func strPtr(s string) *string { return &s }

func fixedValidator() *Validator {
	return &Validator{Now: func() time.Time {
		return time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	}}
}

func TestValidator_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cand     domain.Candidate
		wantErr  error
		wantAmt  string
		wantDate civil.Date
		wantCat  string
		wantType string
	}{
		{
			name: "all fields present",
			cand: domain.Candidate{
				Type: strPtr("Income"), Amount: strPtr("1200.5"), Category: strPtr("Sales Revenue"),
				Date: strPtr("2024-03-01"), AccountName: strPtr("Bank Account"),
			},
			wantAmt:  "1200.5",
			wantDate: civil.Date{Year: 2024, Month: time.March, Day: 1},
			wantCat:  "Sales Revenue",
			wantType: "income",
		},
		{
			name:     "defaults applied",
			cand:     domain.Candidate{Amount: strPtr("500"), AccountName: strPtr("Cash")},
			wantAmt:  "500",
			wantDate: civil.Date{Year: 2026, Month: time.October, Day: 18},
			wantCat:  DefaultCategory,
			wantType: DefaultType,
		},
		{
			name:     "today keyword",
			cand:     domain.Candidate{Amount: strPtr("5"), Date: strPtr("today"), AccountName: strPtr("Cash")},
			wantAmt:  "5",
			wantDate: civil.Date{Year: 2026, Month: time.October, Day: 18},
			wantCat:  DefaultCategory,
			wantType: DefaultType,
		},
		{
			name:     "currency sign and separators",
			cand:     domain.Candidate{Amount: strPtr(" -$1,250.75 "), AccountName: strPtr("Cash")},
			wantAmt:  "-1250.75",
			wantDate: civil.Date{Year: 2026, Month: time.October, Day: 18},
			wantCat:  DefaultCategory,
			wantType: DefaultType,
		},
		{
			name:     "trailing zeros beyond two places",
			cand:     domain.Candidate{Amount: strPtr("12.500"), AccountName: strPtr("Cash")},
			wantAmt:  "12.5",
			wantDate: civil.Date{Year: 2026, Month: time.October, Day: 18},
			wantCat:  DefaultCategory,
			wantType: DefaultType,
		},
		{
			name:    "missing account checked first",
			cand:    domain.Candidate{Amount: strPtr("abc")},
			wantErr: domain.ErrMissingAccount,
		},
		{
			name:    "blank account",
			cand:    domain.Candidate{Amount: strPtr("10"), AccountName: strPtr("  ")},
			wantErr: domain.ErrMissingAccount,
		},
		{
			name:    "missing amount has no default",
			cand:    domain.Candidate{AccountName: strPtr("Cash")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "non numeric amount",
			cand:    domain.Candidate{Amount: strPtr("five hundred"), AccountName: strPtr("Cash")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "too many decimals",
			cand:    domain.Candidate{Amount: strPtr("1.005"), AccountName: strPtr("Cash")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "too large",
			cand:    domain.Candidate{Amount: strPtr("10000000000"), AccountName: strPtr("Cash")},
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "bad date",
			cand:    domain.Candidate{Amount: strPtr("1"), Date: strPtr("03/01/2024"), AccountName: strPtr("Cash")},
			wantErr: domain.ErrInvalidDate,
		},
		{
			name:    "impossible date",
			cand:    domain.Candidate{Amount: strPtr("1"), Date: strPtr("2024-02-30"), AccountName: strPtr("Cash")},
			wantErr: domain.ErrInvalidDate,
		},
	}

	v := fixedValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Validate(tt.cand)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.KindClient, domain.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAmt, got.Amount.String())
			assert.Equal(t, tt.wantDate, got.Date)
			assert.Equal(t, tt.wantCat, got.Category)
			assert.Equal(t, tt.wantType, got.Type)
		})
	}
}

func TestValidator_ValidateManual(t *testing.T) {
	v := fixedValidator()
	id := int64(2)

	got, err := v.ValidateManual(ManualInput{
		Type:        "asset",
		Amount:      "750.00",
		Description: " Owner deposit ",
		Date:        "2024-05-10",
		Category:    "Asset",
		AccountID:   &id,
	})
	require.NoError(t, err)
	assert.Equal(t, "asset", got.Type)
	assert.Equal(t, "750", got.Amount.String())
	assert.Equal(t, "Owner deposit", got.Description)
	assert.Empty(t, got.AccountName)

	_, err = v.ValidateManual(ManualInput{Type: "expense", Amount: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestParseAmountRejectsExponentNotation(t *testing.T) {
	for _, raw := range []string{"1e100000000", "1E10000000", "5e-3", "-2.5e2", "1e2", "0x10", "1.2.3", strings.Repeat("9", 40)} {
		t.Run(raw[:min(len(raw), 16)], func(t *testing.T) {
			done := make(chan error, 1)
			go func() {
				_, err := parseAmount(&raw)
				done <- err
			}()
			select {
			case err := <-done:
				assert.ErrorIs(t, err, domain.ErrInvalidAmount)
			case <-time.After(time.Second):
				t.Fatalf("parseAmount(%q) did not return within a second", raw)
			}
		})
	}

	d, err := parseAmount(strPtr(".5"))
	require.NoError(t, err)
	assert.Equal(t, "0.5", d.String())
}

func TestValidatorEnforcesColumnLengths(t *testing.T) {
	v := fixedValidator()

	tests := []struct {
		name    string
		in      ManualInput
		wantErr error
		wantFld string
	}{
		{name: "category at limit", in: ManualInput{Amount: "1", Category: strings.Repeat("c", maxCategoryLen)}},
		{name: "category over limit", in: ManualInput{Amount: "1", Category: strings.Repeat("c", maxCategoryLen+1)}, wantErr: domain.ErrInvalidInput, wantFld: "category"},
		{name: "multibyte category at limit", in: ManualInput{Amount: "1", Category: strings.Repeat("é", maxCategoryLen)}},
		{name: "type at limit", in: ManualInput{Amount: "1", Type: strings.Repeat("t", maxTypeLen)}},
		{name: "type over limit", in: ManualInput{Amount: "1", Type: strings.Repeat("t", maxTypeLen+1)}, wantErr: domain.ErrInvalidInput, wantFld: "type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ValidateManual(tt.in)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, domain.KindClient, domain.KindOf(err))
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantFld, verr.Field)
		})
	}

	long := strings.Repeat("x", maxCategoryLen+1)
	_, err := v.Validate(domain.Candidate{Amount: strPtr("1"), Category: &long, AccountName: strPtr("Cash")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
