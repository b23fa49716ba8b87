package statements

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
)

// collector accumulates leaf amounts and the reasons a statement is incomplete.
type collector struct {
	leaves     map[string]decimal.Decimal
	warnings   []string
	incomplete bool
}

func newCollector() *collector {
	return &collector{leaves: make(map[string]decimal.Decimal)}
}

func (c *collector) warn(incomplete bool, format string, args ...any) {
	c.warnings = append(c.warnings, fmt.Sprintf(format, args...))
	if incomplete {
		c.incomplete = true
	}
}

func (c *collector) add(code string, amount decimal.Decimal) {
	c.leaves[code] = c.leaves[code].Add(amount)
}

// mapAccounts groups natural balances by mapping code. Accounts that cannot be
// placed are reported; zero balances without a mapping are ignored.
func (c *collector) mapAccounts(catalog schedule.Catalog, balances []trialbalance.AccountBalance, include func(accounts.AccountType) bool) {
	for _, bal := range balances {
		if !include(bal.Type) {
			continue
		}
		amount := bal.Natural()
		switch {
		case bal.MappingCode == "":
			if !amount.IsZero() {
				c.warn(true, "account %s has no mapping code; %s excluded", bal.Code, amount.StringFixed(2))
			}
		case catalog.IsComputed(bal.MappingCode):
			c.warn(true, "account %s maps to computed line %s; %s excluded", bal.Code, bal.MappingCode, amount.StringFixed(2))
		default:
			if _, ok := catalog.Lookup(bal.MappingCode); !ok {
				c.warn(true, "account %s maps to unknown line %s; %s excluded", bal.Code, bal.MappingCode, amount.StringFixed(2))
				continue
			}
			c.add(bal.MappingCode, amount)
		}
	}
}

func (c *collector) finish(st Statement, catalog schedule.Catalog, opts Options) (Statement, error) {
	st.Warnings = append(st.Warnings, c.warnings...)
	if opts.Strict && c.incomplete {
		return Statement{}, fmt.Errorf("%w: %s", shared.ErrIncompleteMapping, strings.Join(c.warnings, "; "))
	}
	if st.Warnings == nil {
		st.Warnings = []string{}
	}
	return st, nil
}

func onBalanceSheet(t accounts.AccountType) bool { return t.OnBalanceSheet() }

func onProfitLoss(t accounts.AccountType) bool { return !t.OnBalanceSheet() }

// netProfit is income less expense over natural balances.
func netProfit(balances []trialbalance.AccountBalance) decimal.Decimal {
	total := decimal.Zero
	for _, bal := range balances {
		switch bal.Type {
		case accounts.AccountTypeIncome:
			total = total.Add(bal.Natural())
		case accounts.AccountTypeExpense:
			total = total.Sub(bal.Natural())
		}
	}
	return total
}

func renderLines(catalog schedule.Catalog, ev schedule.Evaluation) []Line {
	var build func(codes []string) []Line
	build = func(codes []string) []Line {
		lines := make([]Line, 0, len(codes))
		for _, code := range codes {
			m, _ := catalog.Lookup(code)
			lines = append(lines, Line{
				Code:           m.LineItemCode,
				Name:           m.LineItemName,
				Amount:         shared.Round2(ev.Amounts[code]),
				IndentLevel:    m.IndentLevel,
				IsBold:         m.IsBold,
				IsTotal:        m.IsTotal,
				HasSubSchedule: m.HasSubSchedule,
				Missing:        ev.Missing[code],
				Children:       build(catalog.Children(code)),
			})
		}
		return lines
	}
	roots := catalog.Roots()
	codes := make([]string, 0, len(roots))
	for _, m := range roots {
		codes = append(codes, m.LineItemCode)
	}
	return build(codes)
}

func roleAmount(catalog schedule.Catalog, ev schedule.Evaluation, role schedule.Role) (decimal.Decimal, bool) {
	m, ok := catalog.ByRole(role)
	if !ok {
		return decimal.Zero, false
	}
	return ev.Amounts[m.LineItemCode], true
}

// BuildBalanceSheet places asset, liability and equity balances on the catalog
// and injects the cumulative unclosed profit into the retained earnings line.
// Balances must be cumulative to the as-of date including openings.
func BuildBalanceSheet(catalog schedule.Catalog, balances []trialbalance.AccountBalance, opts Options) (Statement, error) {
	c := newCollector()
	c.mapAccounts(catalog, balances, onBalanceSheet)
	profit := netProfit(balances)
	if re, ok := catalog.ByRole(schedule.RoleRetainedEarnings); ok && !catalog.IsComputed(re.LineItemCode) {
		c.add(re.LineItemCode, profit)
	} else {
		c.warn(true, "catalog has no retained earnings line; net profit %s not shown", profit.StringFixed(2))
	}
	ev := catalog.Evaluate(c.leaves)
	st := Statement{
		Type:      schedule.BalanceSheet,
		Standard:  catalog.Standard,
		Lines:     renderLines(catalog, ev),
		NetProfit: shared.Round2(profit),
		Summary:   map[string]decimal.Decimal{SummaryNetProfit: shared.Round2(profit)},
	}
	assets, okA := roleAmount(catalog, ev, schedule.RoleTotalAssets)
	equityLiab, okL := roleAmount(catalog, ev, schedule.RoleTotalEquityLiabilities)
	if okA && okL {
		diff := assets.Sub(equityLiab)
		st.Summary[SummaryTotalAssets] = shared.Round2(assets)
		st.Summary[SummaryTotalEquityLiabilities] = shared.Round2(equityLiab)
		st.Summary[SummaryDifference] = shared.Round2(diff)
		if !shared.WithinTolerance(assets, equityLiab) {
			c.warn(false, "total assets %s differ from equity and liabilities %s by %s",
				assets.StringFixed(2), equityLiab.StringFixed(2), diff.StringFixed(2))
		}
	} else {
		c.warn(false, "catalog lacks total assets or total equity and liabilities roles")
	}
	return c.finish(st, catalog, opts)
}

// BuildProfitLoss places income and expense movement for the period on the catalog.
func BuildProfitLoss(catalog schedule.Catalog, balances []trialbalance.AccountBalance, opts Options) (Statement, error) {
	c := newCollector()
	c.mapAccounts(catalog, balances, onProfitLoss)
	ev := catalog.Evaluate(c.leaves)
	profit := netProfit(balances)
	income, expenses := decimal.Zero, decimal.Zero
	for _, bal := range balances {
		switch bal.Type {
		case accounts.AccountTypeIncome:
			income = income.Add(bal.Natural())
		case accounts.AccountTypeExpense:
			expenses = expenses.Add(bal.Natural())
		}
	}
	st := Statement{
		Type:      schedule.ProfitLoss,
		Standard:  catalog.Standard,
		Lines:     renderLines(catalog, ev),
		NetProfit: shared.Round2(profit),
		Summary: map[string]decimal.Decimal{
			SummaryNetProfit:     shared.Round2(profit),
			SummaryTotalIncome:   shared.Round2(income),
			SummaryTotalExpenses: shared.Round2(expenses),
		},
	}
	if line, ok := roleAmount(catalog, ev, schedule.RoleNetProfit); ok && !shared.WithinTolerance(line, profit) {
		c.warn(false, "statement profit %s differs from ledger profit %s", line.StringFixed(2), profit.StringFixed(2))
	}
	return c.finish(st, catalog, opts)
}

var bucketRoles = map[accounts.CashFlowClass]schedule.Role{
	accounts.CashFlowReceivable:              schedule.RoleReceivables,
	accounts.CashFlowInventory:               schedule.RoleInventory,
	accounts.CashFlowOtherCurrentAsset:       schedule.RoleOtherCurrentAssets,
	accounts.CashFlowAccumulatedDepreciation: schedule.RoleDepreciation,
	accounts.CashFlowFixedAsset:              schedule.RoleFixedAssets,
	accounts.CashFlowInvestment:              schedule.RoleInvestments,
	accounts.CashFlowPayable:                 schedule.RolePayables,
	accounts.CashFlowOtherCurrentLiability:   schedule.RoleOtherCurrentLiability,
	accounts.CashFlowBorrowing:               schedule.RoleBorrowings,
	accounts.CashFlowEquity:                  schedule.RoleEquity,
}

var (
	operatingRoles = []schedule.Role{
		schedule.RoleNetProfit, schedule.RoleDepreciation, schedule.RoleReceivables, schedule.RoleInventory,
		schedule.RoleOtherCurrentAssets, schedule.RolePayables, schedule.RoleOtherCurrentLiability,
	}
	investingRoles = []schedule.Role{schedule.RoleFixedAssets, schedule.RoleInvestments}
	financingRoles = []schedule.Role{schedule.RoleBorrowings, schedule.RoleEquity}
)

// BuildCashFlow reconstructs the indirect cash flow from balance deltas.
// opening holds balances before the period including account openings;
// movement holds posted movement inside the period only. Every non-cash
// balance sheet delta is a cash effect of the opposite sign, so the computed
// closing cash matches the cash accounts whenever all entries balance.
func BuildCashFlow(catalog schedule.Catalog, opening, movement []trialbalance.AccountBalance, opts Options) (Statement, error) {
	c := newCollector()
	buckets := make(map[schedule.Role]decimal.Decimal)
	openingCash, cashDelta := decimal.Zero, decimal.Zero
	for _, bal := range opening {
		if bal.CashFlowClass == accounts.CashFlowCash {
			openingCash = openingCash.Add(bal.Closing())
		}
	}
	for _, bal := range movement {
		if !bal.Type.OnBalanceSheet() {
			continue
		}
		delta := bal.Debit.Sub(bal.Credit)
		class := bal.CashFlowClass
		if class == accounts.CashFlowCash {
			cashDelta = cashDelta.Add(delta)
			continue
		}
		role, ok := bucketRoles[class]
		if !ok || !accounts.AllowsCashFlowClass(bal.Type, class, false) {
			fallback := accounts.DefaultCashFlowClass(bal.Type)
			if !delta.IsZero() {
				c.warn(false, "account %s has cash flow class %q; treated as %s", bal.Code, class, fallback)
			}
			role = bucketRoles[fallback]
		}
		buckets[role] = buckets[role].Sub(delta)
	}
	profit := netProfit(movement)
	buckets[schedule.RoleNetProfit] = profit

	sum := func(roles []schedule.Role) decimal.Decimal {
		total := decimal.Zero
		for _, role := range roles {
			total = total.Add(buckets[role])
		}
		return total
	}
	operating := sum(operatingRoles)
	investing := sum(investingRoles)
	financing := sum(financingRoles)
	netIncrease := operating.Add(investing).Add(financing)
	closingCash := openingCash.Add(netIncrease)
	observed := openingCash.Add(cashDelta)

	allRoles := append(append(append([]schedule.Role{}, operatingRoles...), investingRoles...), financingRoles...)
	for _, role := range append(allRoles, schedule.RoleOpeningCash) {
		amount := buckets[role]
		if role == schedule.RoleOpeningCash {
			amount = openingCash
		}
		m, ok := catalog.ByRole(role)
		if !ok || catalog.IsComputed(m.LineItemCode) {
			if !amount.IsZero() {
				c.warn(true, "catalog has no %s line; %s not shown", role, amount.StringFixed(2))
			}
			continue
		}
		c.add(m.LineItemCode, amount)
	}
	ev := catalog.Evaluate(c.leaves)

	if !shared.WithinTolerance(closingCash, observed) {
		c.warn(false, "computed closing cash %s differs from cash accounts %s by %s",
			closingCash.StringFixed(2), observed.StringFixed(2), observed.Sub(closingCash).StringFixed(2))
	}
	if line, ok := roleAmount(catalog, ev, schedule.RoleClosingCash); ok && !shared.WithinTolerance(line, closingCash) {
		c.warn(false, "catalog closing cash %s differs from computed %s", line.StringFixed(2), closingCash.StringFixed(2))
	}

	st := Statement{
		Type:      schedule.CashFlow,
		Standard:  catalog.Standard,
		Lines:     renderLines(catalog, ev),
		NetProfit: shared.Round2(profit),
		Summary: map[string]decimal.Decimal{
			SummaryNetProfit:           shared.Round2(profit),
			SummaryOperating:           shared.Round2(operating),
			SummaryInvesting:           shared.Round2(investing),
			SummaryFinancing:           shared.Round2(financing),
			SummaryNetIncrease:         shared.Round2(netIncrease),
			SummaryOpeningCash:         shared.Round2(openingCash),
			SummaryClosingCash:         shared.Round2(closingCash),
			SummaryObservedClosingCash: shared.Round2(observed),
		},
	}
	return c.finish(st, catalog, opts)
}
