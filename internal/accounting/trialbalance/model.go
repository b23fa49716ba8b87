package trialbalance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// Filter narrows the posted lines that feed an aggregation. Nil bounds are open.
type Filter struct {
	From           *time.Time
	To             *time.Time
	IncludeOpening bool
}

// AccountBalance models a ledger account with aggregated posted movement.
type AccountBalance struct {
	AccountID     int64                  `json:"accountId"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Type          accounts.AccountType   `json:"type"`
	ParentID      *int64                 `json:"parentId,omitempty"`
	MappingCode   string                 `json:"mappingCode"`
	CashFlowClass accounts.CashFlowClass `json:"cashFlowClass"`
	Opening       decimal.Decimal        `json:"opening"`
	Debit         decimal.Decimal        `json:"debit"`
	Credit        decimal.Decimal        `json:"credit"`
}

// Closing computes the debit-positive closing balance.
func (a AccountBalance) Closing() decimal.Decimal {
	return a.Opening.Add(a.Debit).Sub(a.Credit)
}

// Natural returns the closing balance signed by the account's normal side, so
// a healthy liability or income balance is positive.
func (a AccountBalance) Natural() decimal.Decimal {
	if a.Type.DebitNormal() {
		return a.Closing()
	}
	return a.Closing().Neg()
}

// Staleness mirrors the trial_balance_cache row of a company.
type Staleness struct {
	CompanyID      int64      `json:"companyId"`
	IsStale        bool       `json:"isStale"`
	Version        int64      `json:"version"`
	LastComputedAt *time.Time `json:"lastComputedAt,omitempty"`
}
