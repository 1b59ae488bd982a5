package domain

import "strings"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// Bucket returns the statement bucket postings against an account of this type land in.
func (t AccountType) Bucket() StatementBucket {
	switch t {
	case AccountTypeAsset:
		return BucketAsset
	case AccountTypeLiability:
		return BucketLiability
	case AccountTypeEquity:
		return BucketEquity
	case AccountTypeIncome:
		return BucketRevenue
	case AccountTypeExpense:
		return BucketExpense
	}
	return BucketNone
}

// Account is one entry of the chart of accounts. Accounts are seeded and never mutated.
type Account struct {
	ID   int64       `json:"id" yaml:"id"`
	Code string      `json:"code" yaml:"code"`
	Name string      `json:"name" yaml:"name"`
	Type AccountType `json:"type" yaml:"type"`
}

// StatementBucket is the section of a financial statement a category rolls up into.
type StatementBucket string

const (
	BucketNone      StatementBucket = ""
	BucketRevenue   StatementBucket = "revenue"
	BucketExpense   StatementBucket = "expense"
	BucketAsset     StatementBucket = "asset"
	BucketLiability StatementBucket = "liability"
	BucketEquity    StatementBucket = "equity"
)

// ParseBucket converts a configured bucket name into a StatementBucket.
func ParseBucket(s string) (StatementBucket, bool) {
	switch b := StatementBucket(strings.ToLower(strings.TrimSpace(s))); b {
	case BucketRevenue, BucketExpense, BucketAsset, BucketLiability, BucketEquity:
		return b, true
	}
	return BucketNone, false
}

// FoldName normalizes an account name for case-insensitive, whitespace-tolerant comparison.
func FoldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
