package extraction

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// ParseReply strictly decodes a provider reply into a candidate. The reply must be
// a single JSON object, optionally wrapped in Markdown fences or in a one-element
// array. Anything else, including Python-style literals, yields an unstructured
// Result; the reply text is never evaluated.
func ParseReply(raw, description string) Result {
	obj, ok := decodeObject(cleanModelJSON(raw))
	if !ok {
		return Result{Raw: raw}
	}

	c := &domain.Candidate{
		Type:        stringField(obj, "type"),
		Amount:      stringField(obj, "amount"),
		Category:    stringField(obj, "category"),
		Date:        stringField(obj, "date"),
		AccountName: stringField(obj, "account_name"),
		Description: description,
	}
	if c.AccountName == nil {
		c.AccountName = stringField(obj, "account")
	}
	if d := stringField(obj, "description"); d != nil && strings.TrimSpace(*d) != "" {
		c.Description = strings.TrimSpace(*d)
	}
	return Result{Candidate: c, Raw: raw}
}

// cleanModelJSON strips Markdown fences and any prose around the outermost JSON value.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		idx := strings.Index(s, "\n")
		if idx == -1 {
			return s
		}
		s = strings.TrimSpace(s[idx+1:])
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	open, closing := "{", "}"
	if strings.HasPrefix(s, "[") {
		open, closing = "[", "]"
	}
	if start := strings.Index(s, open); start != -1 {
		if end := strings.LastIndex(s, closing); end > start {
			s = s[start : end+1]
		}
	}
	return s
}

func decodeObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}

	switch t := v.(type) {
	case map[string]any:
		return t, true
	case []any:
		if len(t) != 1 {
			return nil, false
		}
		obj, ok := t[0].(map[string]any)
		return obj, ok
	}
	return nil, false
}

// stringField returns the field as text. JSON numbers keep their literal form so
// amounts are not rounded through float64. Nulls, objects and arrays are absent.
func stringField(obj map[string]any, key string) *string {
	var s string
	switch v := obj[key].(type) {
	case string:
		s = v
	case json.Number:
		s = v.String()
	case bool:
		if v {
			s = "true"
		} else {
			s = "false"
		}
	default:
		return nil
	}
	return &s
}
