package accounts

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// Valid reports whether the type is one of the five account categories.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// DebitNormal reports whether balances of this type grow with debits.
func (t AccountType) DebitNormal() bool {
	return t == AccountTypeAsset || t == AccountTypeExpense
}

// OnBalanceSheet reports whether the type belongs to the balance sheet.
func (t AccountType) OnBalanceSheet() bool {
	return t == AccountTypeAsset || t == AccountTypeLiability || t == AccountTypeEquity
}

// BalanceSide is the natural side of an opening balance.
type BalanceSide string

const (
	SideDebit  BalanceSide = "debit"
	SideCredit BalanceSide = "credit"
)

// CashFlowClass buckets balance sheet accounts for the indirect cash flow.
type CashFlowClass string

const (
	CashFlowCash                    CashFlowClass = "cash"
	CashFlowReceivable              CashFlowClass = "receivable"
	CashFlowInventory               CashFlowClass = "inventory"
	CashFlowOtherCurrentAsset       CashFlowClass = "other_current_asset"
	CashFlowFixedAsset              CashFlowClass = "fixed_asset"
	CashFlowAccumulatedDepreciation CashFlowClass = "accumulated_depreciation"
	CashFlowInvestment              CashFlowClass = "investment"
	CashFlowPayable                 CashFlowClass = "payable"
	CashFlowOtherCurrentLiability   CashFlowClass = "other_current_liability"
	CashFlowBorrowing               CashFlowClass = "borrowing"
	CashFlowEquity                  CashFlowClass = "equity"
	CashFlowNone                    CashFlowClass = "none"
)

var classesByType = map[AccountType][]CashFlowClass{
	AccountTypeAsset: {
		CashFlowCash, CashFlowReceivable, CashFlowInventory, CashFlowOtherCurrentAsset,
		CashFlowFixedAsset, CashFlowAccumulatedDepreciation, CashFlowInvestment,
	},
	AccountTypeLiability: {CashFlowPayable, CashFlowOtherCurrentLiability, CashFlowBorrowing},
	AccountTypeEquity:    {CashFlowEquity},
	AccountTypeIncome:    {CashFlowNone},
	AccountTypeExpense:   {CashFlowNone},
}

// DefaultCashFlowClass returns the class assumed when none is supplied.
func DefaultCashFlowClass(t AccountType) CashFlowClass {
	switch t {
	case AccountTypeAsset:
		return CashFlowOtherCurrentAsset
	case AccountTypeLiability:
		return CashFlowOtherCurrentLiability
	case AccountTypeEquity:
		return CashFlowEquity
	}
	return CashFlowNone
}

// AllowsCashFlowClass reports whether the class fits the account type.
// Group accounts may always carry none.
func AllowsCashFlowClass(t AccountType, class CashFlowClass, isGroup bool) bool {
	if isGroup && class == CashFlowNone {
		return true
	}
	for _, allowed := range classesByType[t] {
		if allowed == class {
			return true
		}
	}
	return false
}

// Account models a chart of accounts node.
type Account struct {
	ID                 int64           `json:"id"`
	CompanyID          int64           `json:"companyId"`
	Code               string          `json:"code"`
	Name               string          `json:"name"`
	Type               AccountType     `json:"type"`
	ParentID           *int64          `json:"parentId,omitempty"`
	IsGroup            bool            `json:"isGroup"`
	Level              int             `json:"level"`
	MappingCode        string          `json:"mappingCode"`
	CashFlowClass      CashFlowClass   `json:"cashFlowClass"`
	OpeningBalance     decimal.Decimal `json:"openingBalance"`
	OpeningBalanceSide BalanceSide     `json:"openingBalanceSide"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// SignedOpening returns the opening balance as debit-positive.
func (a Account) SignedOpening() decimal.Decimal {
	if a.OpeningBalanceSide == SideCredit {
		return a.OpeningBalance.Neg()
	}
	return a.OpeningBalance
}

// AffectsBalances reports whether moving from a to next changes what the
// trial balance or the statements read for the account.
func (a Account) AffectsBalances(next Account) bool {
	return !a.OpeningBalance.Equal(next.OpeningBalance) ||
		a.OpeningBalanceSide != next.OpeningBalanceSide ||
		a.MappingCode != next.MappingCode ||
		a.CashFlowClass != next.CashFlowClass ||
		a.IsActive != next.IsActive
}

// Postable reports whether journal lines may reference the account.
func (a Account) Postable() bool {
	return !a.IsGroup && a.IsActive
}
