package accounts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// CreateAccountInput describes a new chart of accounts node.
type CreateAccountInput struct {
	Code               string          `json:"code" validate:"required,max=32"`
	Name               string          `json:"name" validate:"required,max=200"`
	Type               AccountType     `json:"type" validate:"required"`
	ParentID           *int64          `json:"parentId"`
	IsGroup            bool            `json:"isGroup"`
	MappingCode        string          `json:"mappingCode"`
	CashFlowClass      CashFlowClass   `json:"cashFlowClass"`
	OpeningBalance     decimal.Decimal `json:"openingBalance"`
	OpeningBalanceSide BalanceSide     `json:"openingBalanceSide"`
}

// Normalize trims text fields and fills defaults.
func (in *CreateAccountInput) Normalize() {
	in.Code = strings.TrimSpace(in.Code)
	in.Name = strings.TrimSpace(in.Name)
	in.MappingCode = strings.TrimSpace(in.MappingCode)
	in.Type = AccountType(strings.ToLower(string(in.Type)))
	if in.CashFlowClass == "" {
		if in.IsGroup {
			in.CashFlowClass = CashFlowNone
		} else {
			in.CashFlowClass = DefaultCashFlowClass(in.Type)
		}
	}
	if in.OpeningBalanceSide == "" {
		if in.Type.DebitNormal() {
			in.OpeningBalanceSide = SideDebit
		} else {
			in.OpeningBalanceSide = SideCredit
		}
	}
}

// Validate ensures the input meets minimum criteria.
func (in CreateAccountInput) Validate() error {
	if in.Code == "" {
		return errors.New("accounting: account code required")
	}
	if in.Name == "" {
		return errors.New("accounting: account name required")
	}
	if !in.Type.Valid() {
		return fmt.Errorf("accounting: unknown account type %q", in.Type)
	}
	if !AllowsCashFlowClass(in.Type, in.CashFlowClass, in.IsGroup) {
		return fmt.Errorf("%w: %s on %s account", shared.ErrInvalidCashFlowClass, in.CashFlowClass, in.Type)
	}
	if in.IsGroup && !in.OpeningBalance.IsZero() {
		return fmt.Errorf("%w: %s", shared.ErrGroupOpening, in.Code)
	}
	return validateOpening(in.OpeningBalance, in.OpeningBalanceSide)
}

// UpdateAccountInput carries the mutable account attributes. The parent is fixed
// once created so the hierarchy cannot form a cycle.
type UpdateAccountInput struct {
	Name               *string          `json:"name"`
	MappingCode        *string          `json:"mappingCode"`
	CashFlowClass      *CashFlowClass   `json:"cashFlowClass"`
	OpeningBalance     *decimal.Decimal `json:"openingBalance"`
	OpeningBalanceSide *BalanceSide     `json:"openingBalanceSide"`
	IsActive           *bool            `json:"isActive"`
}

// Apply copies set fields onto the account and validates the result.
func (in UpdateAccountInput) Apply(acc Account) (Account, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return Account{}, errors.New("accounting: account name required")
		}
		acc.Name = name
	}
	if in.MappingCode != nil {
		acc.MappingCode = strings.TrimSpace(*in.MappingCode)
	}
	if in.CashFlowClass != nil {
		acc.CashFlowClass = *in.CashFlowClass
	}
	if in.OpeningBalance != nil {
		acc.OpeningBalance = *in.OpeningBalance
	}
	if in.OpeningBalanceSide != nil {
		acc.OpeningBalanceSide = *in.OpeningBalanceSide
	}
	if in.IsActive != nil {
		acc.IsActive = *in.IsActive
	}
	if !AllowsCashFlowClass(acc.Type, acc.CashFlowClass, acc.IsGroup) {
		return Account{}, fmt.Errorf("%w: %s on %s account", shared.ErrInvalidCashFlowClass, acc.CashFlowClass, acc.Type)
	}
	if acc.IsGroup && !acc.OpeningBalance.IsZero() {
		return Account{}, fmt.Errorf("%w: %s", shared.ErrGroupOpening, acc.Code)
	}
	if err := validateOpening(acc.OpeningBalance, acc.OpeningBalanceSide); err != nil {
		return Account{}, err
	}
	return acc, nil
}

func validateOpening(amount decimal.Decimal, side BalanceSide) error {
	if amount.IsNegative() {
		return errors.New("accounting: opening balance cannot be negative")
	}
	if side != SideDebit && side != SideCredit {
		return fmt.Errorf("accounting: unknown balance side %q", side)
	}
	return nil
}
