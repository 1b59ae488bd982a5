// Package statements derives financial statements from ledger postings.
package statements

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-ledger/internal/domain"
)

// UnassignedAccount labels trial balance rows for postings stored without an account.
const UnassignedAccount = "Unassigned"

// Classifier maps a category to the statement bucket it belongs to.
type Classifier interface {
	Bucket(category string) domain.StatementBucket
}

// TrialBalanceRow is the net position of one (account, type) group.
type TrialBalanceRow struct {
	AccountID *int64       `json:"account_id"`
	Account   string       `json:"account"`
	Type      string       `json:"type"`
	Debit     domain.Money `json:"debit"`
	Credit    domain.Money `json:"credit"`
}

type TrialBalance struct {
	Rows        []TrialBalanceRow `json:"trial_balance"`
	TotalDebit  domain.Money      `json:"total_debit"`
	TotalCredit domain.Money      `json:"total_credit"`
}

// StatementLine is one category total.
type StatementLine struct {
	Item   string                 `json:"item"`
	Bucket domain.StatementBucket `json:"bucket,omitempty"`
	Amount domain.Money           `json:"amount"`
}

type IncomeStatement struct {
	Revenue   domain.Money    `json:"revenue"`
	Expenses  domain.Money    `json:"expenses"`
	NetIncome domain.Money    `json:"net_income"`
	Lines     []StatementLine `json:"lines"`
}

type BalanceSheet struct {
	Assets      []StatementLine `json:"assets"`
	Liabilities []StatementLine `json:"liabilities"`
	Equity      []StatementLine `json:"equity"`
}

type groupKey struct {
	accountID int64
	assigned  bool
	typ       string
}

// TrialBalanceOf groups postings by (account, type). Positive sums are debits,
// negative sums are credits, so debit - credit always equals the signed sum.
// names maps account ids to display names.
func TrialBalanceOf(txs []domain.Transaction, names map[int64]string) TrialBalance {
	sums := make(map[groupKey]decimal.Decimal)
	for _, t := range txs {
		k := groupKey{typ: t.Type}
		if t.AccountID != nil {
			k.accountID, k.assigned = *t.AccountID, true
		}
		sums[k] = sums[k].Add(t.Amount.Decimal)
	}

	keys := make([]groupKey, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.assigned != b.assigned {
			return a.assigned
		}
		if a.accountID != b.accountID {
			return a.accountID < b.accountID
		}
		return a.typ < b.typ
	})

	tb := TrialBalance{Rows: make([]TrialBalanceRow, 0, len(keys))}
	var totalDebit, totalCredit decimal.Decimal
	for _, k := range keys {
		sum := sums[k]
		row := TrialBalanceRow{Account: UnassignedAccount, Type: k.typ}
		if k.assigned {
			id := k.accountID
			row.AccountID = &id
			row.Account = accountName(names, id)
		}
		switch {
		case sum.IsPositive():
			row.Debit = domain.NewMoney(sum)
			totalDebit = totalDebit.Add(sum)
		case sum.IsNegative():
			row.Credit = domain.NewMoney(sum.Neg())
			totalCredit = totalCredit.Add(sum.Neg())
		}
		tb.Rows = append(tb.Rows, row)
	}
	tb.TotalDebit = domain.NewMoney(totalDebit)
	tb.TotalCredit = domain.NewMoney(totalCredit)
	return tb
}

func accountName(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return fmt.Sprintf("Account #%d", id)
}

// IncomeStatementOf sums income and expense postings per category. Revenue and
// expenses are reported as magnitudes; net income is revenue minus expenses.
func IncomeStatementOf(txs []domain.Transaction, c Classifier) IncomeStatement {
	sums := categorySums(txs, "income", "expense")

	var revenue, expenses decimal.Decimal
	lines := make([]StatementLine, 0, len(sums))
	for _, category := range sortedKeys(sums) {
		bucket := c.Bucket(category)
		switch bucket {
		case domain.BucketRevenue:
			revenue = revenue.Add(sums[category])
		case domain.BucketExpense:
			expenses = expenses.Add(sums[category])
		default:
			bucket = domain.BucketNone
		}
		lines = append(lines, StatementLine{Item: category, Bucket: bucket, Amount: domain.NewMoney(sums[category])})
	}

	revenue, expenses = revenue.Abs(), expenses.Abs()
	return IncomeStatement{
		Revenue:   domain.NewMoney(revenue),
		Expenses:  domain.NewMoney(expenses),
		NetIncome: domain.NewMoney(revenue.Sub(expenses)),
		Lines:     lines,
	}
}

// BalanceSheetOf sums asset, liability and equity postings per category and
// places each category in the section its bucket names. Other categories are left out.
func BalanceSheetOf(txs []domain.Transaction, c Classifier) BalanceSheet {
	sums := categorySums(txs, "asset", "liability", "equity")

	bs := BalanceSheet{
		Assets:      []StatementLine{},
		Liabilities: []StatementLine{},
		Equity:      []StatementLine{},
	}
	for _, category := range sortedKeys(sums) {
		line := StatementLine{Item: category, Amount: domain.NewMoney(sums[category])}
		switch c.Bucket(category) {
		case domain.BucketAsset:
			bs.Assets = append(bs.Assets, line)
		case domain.BucketLiability:
			bs.Liabilities = append(bs.Liabilities, line)
		case domain.BucketEquity:
			bs.Equity = append(bs.Equity, line)
		}
	}
	return bs
}

func categorySums(txs []domain.Transaction, types ...string) map[string]decimal.Decimal {
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	sums := make(map[string]decimal.Decimal)
	for _, t := range txs {
		if want[t.Type] {
			sums[t.Category] = sums[t.Category].Add(t.Amount.Decimal)
		}
	}
	return sums
}

func sortedKeys(m map[string]decimal.Decimal) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
