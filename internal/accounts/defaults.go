package accounts

import "github.com/dvloznov/finance-ledger/internal/domain"

// DefaultChart returns the chart of accounts seeded when no chart file is configured.
func DefaultChart() []domain.Account {
	return []domain.Account{
		{ID: 1, Code: "1000", Name: "Cash", Type: domain.AccountTypeAsset},
		{ID: 2, Code: "1010", Name: "Bank Account", Type: domain.AccountTypeAsset},
		{ID: 3, Code: "2000", Name: "Accounts Payable", Type: domain.AccountTypeLiability},
		{ID: 4, Code: "4000", Name: "Sales Revenue", Type: domain.AccountTypeIncome},
		{ID: 5, Code: "5000", Name: "Rent Expense", Type: domain.AccountTypeExpense},
	}
}
