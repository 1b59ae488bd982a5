package accounts

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// Chart is the on-disk chart of accounts.
type Chart struct {
	Accounts   []domain.Account                  `yaml:"accounts"`
	Categories map[string]domain.StatementBucket `yaml:"categories"`
}

// LoadChart reads a YAML chart file. An empty path yields the default chart with no overrides.
func LoadChart(path string) (*Chart, error) {
	if path == "" {
		return &Chart{Accounts: DefaultChart()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadChart: read %s: %w", path, err)
	}
	return ParseChart(data)
}

// ParseChart decodes and validates a YAML chart.
func ParseChart(data []byte) (*Chart, error) {
	var c Chart
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("ParseChart: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("ParseChart: %w", err)
	}
	return &c, nil
}

// Validate checks ids are positive and unique, names are present and types are known.
// Every problem is reported at once.
func (c *Chart) Validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("chart has no accounts")
	}

	var errs []error
	seen := make(map[int64]bool, len(c.Accounts))
	for i, a := range c.Accounts {
		if a.ID <= 0 {
			errs = append(errs, fmt.Errorf("account #%d: id must be positive", i))
		} else if seen[a.ID] {
			errs = append(errs, fmt.Errorf("account #%d: duplicate id %d", i, a.ID))
		}
		seen[a.ID] = true
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, fmt.Errorf("account #%d: name is required", i))
		}
		if !a.Type.Valid() {
			errs = append(errs, fmt.Errorf("account #%d: unknown type %q", i, a.Type))
		}
	}
	for category, bucket := range c.Categories {
		if _, ok := domain.ParseBucket(string(bucket)); !ok {
			errs = append(errs, fmt.Errorf("category %q: unknown bucket %q", category, bucket))
		}
	}
	return errors.Join(errs...)
}
