package trialbalance

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

var typeOrder = []accounts.AccountType{
	accounts.AccountTypeAsset,
	accounts.AccountTypeLiability,
	accounts.AccountTypeEquity,
	accounts.AccountTypeIncome,
	accounts.AccountTypeExpense,
}

// Row represents an account line inside a trial balance group.
type Row struct {
	AccountID     int64           `json:"accountId"`
	Code          string          `json:"code"`
	Name          string          `json:"name"`
	Opening       decimal.Decimal `json:"opening"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	ClosingDebit  decimal.Decimal `json:"closingDebit"`
	ClosingCredit decimal.Decimal `json:"closingCredit"`
}

// Group aggregates the rows of one account type.
type Group struct {
	Type          accounts.AccountType `json:"type"`
	Rows          []Row                `json:"rows"`
	Debit         decimal.Decimal      `json:"debit"`
	Credit        decimal.Decimal      `json:"credit"`
	ClosingDebit  decimal.Decimal      `json:"closingDebit"`
	ClosingCredit decimal.Decimal      `json:"closingCredit"`
}

// TrialBalance is the grouped report returned by Compute.
type TrialBalance struct {
	CompanyID          int64           `json:"companyId"`
	AsOf               string          `json:"asOf"`
	Version            int64           `json:"version"`
	Groups             []Group         `json:"groups"`
	TotalDebit         decimal.Decimal `json:"totalDebit"`
	TotalCredit        decimal.Decimal `json:"totalCredit"`
	TotalClosingDebit  decimal.Decimal `json:"totalClosingDebit"`
	TotalClosingCredit decimal.Decimal `json:"totalClosingCredit"`
	Balanced           bool            `json:"balanced"`
}

// Build converts account balances into a trial balance grouped by account type.
// Accounts without opening or movement are omitted.
func Build(balances []AccountBalance) TrialBalance {
	groups := make(map[accounts.AccountType]*Group)
	for _, bal := range balances {
		if bal.Opening.IsZero() && bal.Debit.IsZero() && bal.Credit.IsZero() {
			continue
		}
		grp, ok := groups[bal.Type]
		if !ok {
			grp = &Group{Type: bal.Type}
			groups[bal.Type] = grp
		}
		row := Row{
			AccountID: bal.AccountID,
			Code:      bal.Code,
			Name:      bal.Name,
			Opening:   bal.Opening,
			Debit:     bal.Debit,
			Credit:    bal.Credit,
		}
		if closing := bal.Closing(); closing.IsNegative() {
			row.ClosingCredit = closing.Neg()
		} else {
			row.ClosingDebit = closing
		}
		grp.Rows = append(grp.Rows, row)
		grp.Debit = grp.Debit.Add(row.Debit)
		grp.Credit = grp.Credit.Add(row.Credit)
		grp.ClosingDebit = grp.ClosingDebit.Add(row.ClosingDebit)
		grp.ClosingCredit = grp.ClosingCredit.Add(row.ClosingCredit)
	}

	result := TrialBalance{}
	for _, t := range typeOrder {
		grp, ok := groups[t]
		if !ok {
			continue
		}
		sort.Slice(grp.Rows, func(i, j int) bool { return grp.Rows[i].Code < grp.Rows[j].Code })
		result.Groups = append(result.Groups, *grp)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
		result.TotalClosingDebit = result.TotalClosingDebit.Add(grp.ClosingDebit)
		result.TotalClosingCredit = result.TotalClosingCredit.Add(grp.ClosingCredit)
	}
	result.Balanced = shared.WithinTolerance(result.TotalClosingDebit, result.TotalClosingCredit)
	return result
}
