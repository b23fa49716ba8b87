package schedule

type row struct {
	code   string
	name   string
	parent string
	sign   int
	total  bool
	sub    bool
	role   Role
}

func expand(standard string, statementType StatementType, rows []row) []Mapping {
	depth := make(map[string]int, len(rows))
	out := make([]Mapping, 0, len(rows))
	for idx, r := range rows {
		indent := 0
		if r.parent != "" {
			indent = depth[r.parent] + 1
		}
		depth[r.code] = indent
		sign := r.sign
		if sign == 0 {
			sign = 1
		}
		out = append(out, Mapping{
			Standard:       standard,
			StatementType:  statementType,
			LineItemCode:   r.code,
			LineItemName:   r.name,
			DisplayOrder:   (idx + 1) * 10,
			IndentLevel:    indent,
			IsBold:         r.total,
			IsTotal:        r.total,
			HasSubSchedule: r.sub,
			RollupParent:   r.parent,
			RollupSign:     sign,
			Role:           r.role,
		})
	}
	return out
}

var scheduleIIIBalanceSheet = []row{
	{code: "BS_EQUITY_LIABILITIES", name: "EQUITY AND LIABILITIES", total: true, role: RoleTotalEquityLiabilities},
	{code: "BS_EQ_SHAREHOLDERS_FUNDS", name: "Shareholders' Funds", parent: "BS_EQUITY_LIABILITIES", total: true},
	{code: "BS_EQ_SHARE_CAPITAL", name: "Share Capital", parent: "BS_EQ_SHAREHOLDERS_FUNDS", sub: true},
	{code: "BS_EQ_RESERVES_SURPLUS", name: "Reserves and Surplus", parent: "BS_EQ_SHAREHOLDERS_FUNDS", sub: true, role: RoleRetainedEarnings},
	{code: "BS_LIAB_NCL", name: "Non-Current Liabilities", parent: "BS_EQUITY_LIABILITIES", total: true},
	{code: "BS_LIAB_NCL_BORROWINGS", name: "Long-term Borrowings", parent: "BS_LIAB_NCL", sub: true},
	{code: "BS_LIAB_NCL_DEFERRED_TAX", name: "Deferred Tax Liabilities (Net)", parent: "BS_LIAB_NCL"},
	{code: "BS_LIAB_NCL_PROVISIONS", name: "Long-term Provisions", parent: "BS_LIAB_NCL"},
	{code: "BS_LIAB_CL", name: "Current Liabilities", parent: "BS_EQUITY_LIABILITIES", total: true},
	{code: "BS_LIAB_CL_BORROWINGS", name: "Short-term Borrowings", parent: "BS_LIAB_CL"},
	{code: "BS_LIAB_CL_TRADE_PAYABLES", name: "Trade Payables", parent: "BS_LIAB_CL", sub: true},
	{code: "BS_LIAB_CL_OTHER", name: "Other Current Liabilities", parent: "BS_LIAB_CL"},
	{code: "BS_LIAB_CL_PROVISIONS", name: "Short-term Provisions", parent: "BS_LIAB_CL"},
	{code: "BS_ASSETS", name: "ASSETS", total: true, role: RoleTotalAssets},
	{code: "BS_ASSET_NCA", name: "Non-Current Assets", parent: "BS_ASSETS", total: true},
	{code: "BS_ASSET_NCA_PPE", name: "Property, Plant and Equipment", parent: "BS_ASSET_NCA", sub: true},
	{code: "BS_ASSET_NCA_INTANGIBLES", name: "Intangible Assets", parent: "BS_ASSET_NCA"},
	{code: "BS_ASSET_NCA_INVESTMENTS", name: "Non-current Investments", parent: "BS_ASSET_NCA"},
	{code: "BS_ASSET_NCA_LOANS", name: "Long-term Loans and Advances", parent: "BS_ASSET_NCA"},
	{code: "BS_ASSET_CA", name: "Current Assets", parent: "BS_ASSETS", total: true},
	{code: "BS_ASSET_CA_INVESTMENTS", name: "Current Investments", parent: "BS_ASSET_CA"},
	{code: "BS_ASSET_CA_INVENTORIES", name: "Inventories", parent: "BS_ASSET_CA"},
	{code: "BS_ASSET_CA_RECEIVABLES", name: "Trade Receivables", parent: "BS_ASSET_CA", sub: true},
	{code: "BS_ASSET_CA_CASH", name: "Cash and Cash Equivalents", parent: "BS_ASSET_CA"},
	{code: "BS_ASSET_CA_LOANS", name: "Short-term Loans and Advances", parent: "BS_ASSET_CA"},
	{code: "BS_ASSET_CA_OTHER", name: "Other Current Assets", parent: "BS_ASSET_CA"},
}

var scheduleIIIProfitLoss = []row{
	{code: "PL_PROFIT_FOR_PERIOD", name: "Profit for the Period", total: true, role: RoleNetProfit},
	{code: "PL_PROFIT_BEFORE_TAX", name: "Profit before Tax", parent: "PL_PROFIT_FOR_PERIOD", total: true},
	{code: "PL_TOTAL_INCOME", name: "Total Income", parent: "PL_PROFIT_BEFORE_TAX", total: true},
	{code: "PL_REVENUE_OPERATIONS", name: "Revenue from Operations", parent: "PL_TOTAL_INCOME", sub: true},
	{code: "PL_OTHER_INCOME", name: "Other Income", parent: "PL_TOTAL_INCOME"},
	{code: "PL_TOTAL_EXPENSES", name: "Total Expenses", parent: "PL_PROFIT_BEFORE_TAX", sign: -1, total: true},
	{code: "PL_EXP_MATERIALS", name: "Cost of Materials Consumed", parent: "PL_TOTAL_EXPENSES"},
	{code: "PL_EXP_PURCHASES", name: "Purchases of Stock-in-Trade", parent: "PL_TOTAL_EXPENSES"},
	{code: "PL_EXP_INVENTORY_CHANGE", name: "Changes in Inventories", parent: "PL_TOTAL_EXPENSES"},
	{code: "PL_EXP_EMPLOYEE", name: "Employee Benefits Expense", parent: "PL_TOTAL_EXPENSES"},
	{code: "PL_EXP_FINANCE", name: "Finance Costs", parent: "PL_TOTAL_EXPENSES"},
	{code: "PL_EXP_DEPRECIATION", name: "Depreciation and Amortisation Expense", parent: "PL_TOTAL_EXPENSES"},
	{code: "PL_EXP_OTHER", name: "Other Expenses", parent: "PL_TOTAL_EXPENSES", sub: true},
	{code: "PL_TAX_EXPENSE", name: "Tax Expense", parent: "PL_PROFIT_FOR_PERIOD", sign: -1},
}

var scheduleIIICashFlow = []row{
	{code: "CF_CLOSING_CASH", name: "Cash and Cash Equivalents at End of Period", total: true, role: RoleClosingCash},
	{code: "CF_NET_INCREASE", name: "Net Increase in Cash and Cash Equivalents", parent: "CF_CLOSING_CASH", total: true, role: RoleNetIncrease},
	{code: "CF_OPERATING", name: "Net Cash from Operating Activities", parent: "CF_NET_INCREASE", total: true, role: RoleOperating},
	{code: "CF_OP_NET_PROFIT", name: "Net Profit", parent: "CF_OPERATING", role: RoleNetProfit},
	{code: "CF_OP_DEPRECIATION", name: "Add: Depreciation", parent: "CF_OPERATING", role: RoleDepreciation},
	{code: "CF_OP_RECEIVABLES", name: "(Increase)/Decrease in Trade Receivables", parent: "CF_OPERATING", role: RoleReceivables},
	{code: "CF_OP_INVENTORY", name: "(Increase)/Decrease in Inventories", parent: "CF_OPERATING", role: RoleInventory},
	{code: "CF_OP_OTHER_CA", name: "(Increase)/Decrease in Other Current Assets", parent: "CF_OPERATING", role: RoleOtherCurrentAssets},
	{code: "CF_OP_PAYABLES", name: "Increase/(Decrease) in Trade Payables", parent: "CF_OPERATING", role: RolePayables},
	{code: "CF_OP_OTHER_CL", name: "Increase/(Decrease) in Other Current Liabilities", parent: "CF_OPERATING", role: RoleOtherCurrentLiability},
	{code: "CF_INVESTING", name: "Net Cash from Investing Activities", parent: "CF_NET_INCREASE", total: true, role: RoleInvesting},
	{code: "CF_INV_FIXED_ASSETS", name: "Purchase of Fixed Assets", parent: "CF_INVESTING", role: RoleFixedAssets},
	{code: "CF_INV_INVESTMENTS", name: "Purchase of Investments", parent: "CF_INVESTING", role: RoleInvestments},
	{code: "CF_FINANCING", name: "Net Cash from Financing Activities", parent: "CF_NET_INCREASE", total: true, role: RoleFinancing},
	{code: "CF_FIN_BORROWINGS", name: "Proceeds from/(Repayment of) Borrowings", parent: "CF_FINANCING", role: RoleBorrowings},
	{code: "CF_FIN_EQUITY", name: "Proceeds from Issue of Share Capital", parent: "CF_FINANCING", role: RoleEquity},
	{code: "CF_OPENING_CASH", name: "Cash and Cash Equivalents at Beginning of Period", parent: "CF_CLOSING_CASH", role: RoleOpeningCash},
}

// Builtin returns the packaged catalog for a standard, if one ships with the binary.
func Builtin(standard string, statementType StatementType) ([]Mapping, bool) {
	if standard != DefaultStandard {
		return nil, false
	}
	switch statementType {
	case BalanceSheet:
		return expand(standard, statementType, scheduleIIIBalanceSheet), true
	case ProfitLoss:
		return expand(standard, statementType, scheduleIIIProfitLoss), true
	case CashFlow:
		return expand(standard, statementType, scheduleIIICashFlow), true
	}
	return nil, false
}

// BuiltinStandards lists the standards with packaged catalogs.
func BuiltinStandards() []string {
	return []string{DefaultStandard}
}
