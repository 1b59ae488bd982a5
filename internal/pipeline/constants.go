package pipeline

import "time"

// Defaults applied to candidate fields the provider left out.
const (
	// DefaultCategory is stored when no category was extracted.
	DefaultCategory = "uncategorized"

	// DefaultType is stored when no transaction type was extracted.
	DefaultType = "expense"

	// DefaultExtractionTimeout bounds one call to the extraction provider.
	DefaultExtractionTimeout = 20 * time.Second

	// DefaultStoreTimeout bounds one ledger store call.
	DefaultStoreTimeout = 5 * time.Second
)

// maxAmount is the first magnitude that no longer fits NUMERIC(12,2).
const maxAmount = "10000000000"

// Column limits of the PostgreSQL schema and a bound on amount input.
const (
	maxTypeLen     = 50
	maxCategoryLen = 100
	maxAmountLen   = 32
)
