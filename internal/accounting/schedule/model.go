package schedule

// StatementType names the statement a mapping row belongs to.
type StatementType string

const (
	BalanceSheet StatementType = "balance_sheet"
	ProfitLoss   StatementType = "profit_loss"
	CashFlow     StatementType = "cash_flow"
)

// Valid reports whether the statement type is known.
func (t StatementType) Valid() bool {
	return t == BalanceSheet || t == ProfitLoss || t == CashFlow
}

// Role marks catalog lines the statement builders address directly.
type Role string

const (
	RoleRetainedEarnings       Role = "retained_earnings"
	RoleTotalAssets            Role = "total_assets"
	RoleTotalEquityLiabilities Role = "total_equity_liabilities"
	RoleNetProfit              Role = "net_profit"

	RoleDepreciation          Role = "depreciation"
	RoleReceivables           Role = "receivable"
	RoleInventory             Role = "inventory"
	RoleOtherCurrentAssets    Role = "other_current_asset"
	RolePayables              Role = "payable"
	RoleOtherCurrentLiability Role = "other_current_liability"
	RoleFixedAssets           Role = "fixed_asset"
	RoleInvestments           Role = "investment"
	RoleBorrowings            Role = "borrowing"
	RoleEquity                Role = "equity"
	RoleOperating             Role = "operating"
	RoleInvesting             Role = "investing"
	RoleFinancing             Role = "financing"
	RoleNetIncrease           Role = "net_increase"
	RoleOpeningCash           Role = "opening_cash"
	RoleClosingCash           Role = "closing_cash"
)

// DefaultStandard is the catalog used when none is configured.
const DefaultStandard = "SCHEDULE_III"

// Mapping is one line item of a statement catalog. A non-empty RollupParent
// adds RollupSign times this line's amount into the parent line.
type Mapping struct {
	Standard       string        `json:"standard"`
	StatementType  StatementType `json:"statementType"`
	LineItemCode   string        `json:"lineItemCode"`
	LineItemName   string        `json:"lineItemName"`
	DisplayOrder   int           `json:"displayOrder"`
	IndentLevel    int           `json:"indentLevel"`
	IsBold         bool          `json:"isBold"`
	IsTotal        bool          `json:"isTotal"`
	HasSubSchedule bool          `json:"hasSubSchedule"`
	RollupParent   string        `json:"rollupParent,omitempty"`
	RollupSign     int           `json:"rollupSign"`
	Role           Role          `json:"role,omitempty"`
}
