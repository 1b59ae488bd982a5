package domain

import (
	"bytes"
	"regexp"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fractional digits stored and rendered for amounts.
const MoneyPlaces = 2

// maxAmountText bounds the length of amount text accepted by ParseAmount.
const maxAmountText = 32

// amountText allows an optional sign and plain digits. Exponent notation is
// rejected before any decimal arithmetic is done.
var amountText = regexp.MustCompile(`^[-+]?([0-9]+(\.[0-9]+)?|\.[0-9]+)$`)

// Money is a fixed-point amount. It marshals to JSON as an unquoted number with
// exactly MoneyPlaces fractional digits.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d, rounding to the stored precision.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d.Round(MoneyPlaces)}
}

// ParseAmount parses plain decimal text with at most MoneyPlaces significant
// fractional digits. Trailing zeros are allowed, so "12.500" is 12.5.
func ParseAmount(s string) (decimal.Decimal, error) {
	if len(s) > maxAmountText || !amountText.MatchString(s) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.Equal(d.Round(MoneyPlaces)) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return d.Round(MoneyPlaces), nil
}

// String renders the amount with fixed precision, e.g. "500.00".
func (m Money) String() string {
	return m.Decimal.StringFixed(MoneyPlaces)
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or numeric string under the ParseAmount rules.
func (m *Money) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	d, err := ParseAmount(string(raw))
	if err != nil {
		return &ValidationError{Kind: ErrInvalidAmount, Field: "amount", Value: truncate(string(raw), maxAmountText)}
	}
	m.Decimal = d
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
