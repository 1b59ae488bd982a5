package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"500", "500.00"},
		{"-45.5", "-45.50"},
		{"0", "0.00"},
		{"1234567.89", "1234567.89"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			b, err := json.Marshal(NewMoney(decimal.RequireFromString(tt.in)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestMoneyUnmarshalJSONAcceptsNumberAndString(t *testing.T) {
	var v struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 12.5, "b": "7.25"}`), &v))
	assert.Equal(t, "12.50", v.A.String())
	assert.Equal(t, "7.25", v.B.String())

	assert.Error(t, json.Unmarshal([]byte(`{"a": "twelve"}`), &v))
}

func TestMoneyUnmarshalJSONRejectsSubCentAndExponents(t *testing.T) {
	for _, in := range []string{`12.345`, `"0.001"`, `1e3`, `"5e-3"`, `1e100000000`, `null`, `""`} {
		t.Run(in, func(t *testing.T) {
			var m Money
			err := json.Unmarshal([]byte(in), &m)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidAmount)
			assert.True(t, m.IsZero())
		})
	}

	var m Money
	require.NoError(t, json.Unmarshal([]byte(`"12.500"`), &m))
	assert.Equal(t, "12.50", m.String())
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "500", want: "500"},
		{in: "-45.5", want: "-45.5"},
		{in: "+.25", want: "0.25"},
		{in: "12.500", want: "12.5"},
		{in: "1.005", wantErr: true},
		{in: "1e2", wantErr: true},
		{in: "5e-3", wantErr: true},
		{in: "1e100000000", wantErr: true},
		{in: "1,000", wantErr: true},
		{in: "", wantErr: true},
		{in: "9999999999999999999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
