package pipeline

import (
	"strings"
	"time"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// ManualInput is a posting entered directly, without extraction.
type ManualInput struct {
	Type        string
	Amount      string
	Description string
	Date        string
	Category    string
	AccountID   *int64
}

// Validator checks candidate fields and fills in defaults.
type Validator struct {
	Now func() time.Time
}

func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

// Validate turns an extracted candidate into a transaction ready for resolution.
// The account name is checked first; a candidate without one is rejected before
// any other field is looked at.
func (v *Validator) Validate(c domain.Candidate) (domain.ValidatedTransaction, error) {
	if c.AccountName == nil || strings.TrimSpace(*c.AccountName) == "" {
		return domain.ValidatedTransaction{}, &domain.ValidationError{Kind: domain.ErrMissingAccount, Field: "account_name"}
	}

	out, err := v.validateFields(deref(c.Type), c.Amount, deref(c.Date), deref(c.Category))
	if err != nil {
		return domain.ValidatedTransaction{}, err
	}
	out.AccountName = strings.TrimSpace(*c.AccountName)
	out.Description = strings.TrimSpace(c.Description)
	return out, nil
}

// ValidateManual applies the same amount, date, category and type rules to manual input.
func (v *Validator) ValidateManual(in ManualInput) (domain.ValidatedTransaction, error) {
	out, err := v.validateFields(in.Type, &in.Amount, in.Date, in.Category)
	if err != nil {
		return domain.ValidatedTransaction{}, err
	}
	out.Description = strings.TrimSpace(in.Description)
	return out, nil
}

func (v *Validator) validateFields(typ string, amount *string, date, category string) (domain.ValidatedTransaction, error) {
	amt, err := parseAmount(amount)
	if err != nil {
		return domain.ValidatedTransaction{}, err
	}

	d, err := v.parseDate(date)
	if err != nil {
		return domain.ValidatedTransaction{}, err
	}

	category = strings.TrimSpace(category)
	if category == "" {
		category = DefaultCategory
	}
	if utf8.RuneCountInString(category) > maxCategoryLen {
		return domain.ValidatedTransaction{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "category"}
	}

	typ = strings.ToLower(strings.TrimSpace(typ))
	if typ == "" {
		typ = DefaultType
	}
	if utf8.RuneCountInString(typ) > maxTypeLen {
		return domain.ValidatedTransaction{}, &domain.ValidationError{Kind: domain.ErrInvalidInput, Field: "type"}
	}

	return domain.ValidatedTransaction{
		Type:     typ,
		Amount:   amt,
		Date:     d,
		Category: category,
	}, nil
}

// parseAmount accepts plain decimals, optionally with a leading "$" and thousands
// separators. More than two significant fractional digits is rejected rather than rounded.
func parseAmount(raw *string) (decimal.Decimal, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return decimal.Decimal{}, &domain.ValidationError{Kind: domain.ErrInvalidAmount, Field: "amount"}
	}

	s := strings.TrimSpace(*raw)
	if len(s) > maxAmountLen {
		return decimal.Decimal{}, &domain.ValidationError{Kind: domain.ErrInvalidAmount, Field: "amount"}
	}
	sign := ""
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		sign, s = s[:1], strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return decimal.Decimal{}, &domain.ValidationError{Kind: domain.ErrInvalidAmount, Field: "amount", Value: *raw}
	}

	d, err := domain.ParseAmount(sign + s)
	if err != nil || d.Abs().GreaterThanOrEqual(decimal.RequireFromString(maxAmount)) {
		return decimal.Decimal{}, &domain.ValidationError{Kind: domain.ErrInvalidAmount, Field: "amount", Value: *raw}
	}
	return d, nil
}

func (v *Validator) parseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "today") {
		return civil.DateOf(v.now()), nil
	}
	d, err := civil.ParseDate(s)
	if err != nil || !d.IsValid() {
		return civil.Date{}, &domain.ValidationError{Kind: domain.ErrInvalidDate, Field: "date", Value: s}
	}
	return d, nil
}

func (v *Validator) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
