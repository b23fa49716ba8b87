package statements

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
)

// Line is one rendered statement line with its rolled-up children.
type Line struct {
	Code           string          `json:"code"`
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	IndentLevel    int             `json:"indentLevel"`
	IsBold         bool            `json:"isBold"`
	IsTotal        bool            `json:"isTotal"`
	HasSubSchedule bool            `json:"hasSubSchedule"`
	Missing        bool            `json:"missing"`
	Children       []Line          `json:"children,omitempty"`
}

// Summary keys.
const (
	SummaryTotalAssets            = "totalAssets"
	SummaryTotalEquityLiabilities = "totalEquityAndLiabilities"
	SummaryDifference             = "difference"
	SummaryNetProfit              = "netProfit"
	SummaryTotalIncome            = "totalIncome"
	SummaryTotalExpenses          = "totalExpenses"
	SummaryOperating              = "netCashFromOperating"
	SummaryInvesting              = "netCashFromInvesting"
	SummaryFinancing              = "netCashFromFinancing"
	SummaryNetIncrease            = "netIncrease"
	SummaryOpeningCash            = "openingCash"
	SummaryClosingCash            = "closingCash"
	SummaryObservedClosingCash    = "observedClosingCash"
)

// Statement is the output of a builder before it is persisted.
type Statement struct {
	Type        schedule.StatementType     `json:"statementType"`
	Standard    string                     `json:"standard"`
	PeriodStart *time.Time                 `json:"periodStart,omitempty"`
	PeriodEnd   time.Time                  `json:"periodEnd"`
	Lines       []Line                     `json:"statement"`
	NetProfit   decimal.Decimal            `json:"netProfit"`
	Summary     map[string]decimal.Decimal `json:"summary"`
	Warnings    []string                   `json:"warnings"`
}

// Run is an immutable, persisted statement generation.
type Run struct {
	ID           int64     `json:"runId"`
	CompanyID    int64     `json:"companyId"`
	FiscalYearID *int64    `json:"fiscalYearId,omitempty"`
	GeneratedBy  *int64    `json:"generatedBy,omitempty"`
	GeneratedAt  time.Time `json:"generatedAt"`
	Statement
}

// BalanceSheetRequest selects the as-of date directly or via a fiscal year end.
type BalanceSheetRequest struct {
	FiscalYearID int64      `json:"fiscalYearId"`
	AsOf         *time.Time `json:"asOf"`
}

// PeriodRequest selects a [From, To] range directly or via a fiscal year.
type PeriodRequest struct {
	FiscalYearID int64      `json:"fiscalYearId"`
	From         *time.Time `json:"from"`
	To           *time.Time `json:"to"`
}

// RunFilter narrows run history.
type RunFilter struct {
	Type         schedule.StatementType
	FiscalYearID *int64
	Limit        int
}

// Options tunes builders.
type Options struct {
	Standard string
	Strict   bool
}
