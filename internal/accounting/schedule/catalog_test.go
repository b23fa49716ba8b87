package schedule

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

func TestBuiltinCatalogsAreValid(t *testing.T) {
	for _, st := range []StatementType{BalanceSheet, ProfitLoss, CashFlow} {
		items, ok := Builtin(DefaultStandard, st)
		require.True(t, ok)
		c, err := NewCatalog(DefaultStandard, st, items)
		require.NoError(t, err, st)
		require.NotEmpty(t, c.Roots())
	}
	_, ok := Builtin("IFRS", BalanceSheet)
	require.False(t, ok)
}

func TestBuiltinBalanceSheetRoles(t *testing.T) {
	items, _ := Builtin(DefaultStandard, BalanceSheet)
	c, err := NewCatalog(DefaultStandard, BalanceSheet, items)
	require.NoError(t, err)
	re, ok := c.ByRole(RoleRetainedEarnings)
	require.True(t, ok)
	require.Equal(t, "BS_EQ_RESERVES_SURPLUS", re.LineItemCode)
	require.Equal(t, 2, re.IndentLevel)
	cash, ok := c.Lookup("BS_ASSET_CA_CASH")
	require.True(t, ok)
	require.Equal(t, "BS_ASSET_CA", cash.RollupParent)
	require.True(t, c.IsComputed("BS_ASSET_CA"))
}

func TestNewCatalogRejectsBadGraphs(t *testing.T) {
	base := func() []Mapping {
		return []Mapping{
			{StatementType: ProfitLoss, LineItemCode: "A", RollupSign: 1, DisplayOrder: 1},
			{StatementType: ProfitLoss, LineItemCode: "B", RollupParent: "A", RollupSign: 1, DisplayOrder: 2},
		}
	}
	_, err := NewCatalog("X", ProfitLoss, base())
	require.NoError(t, err)

	unknown := base()
	unknown[1].RollupParent = "Z"
	_, err = NewCatalog("X", ProfitLoss, unknown)
	require.ErrorIs(t, err, shared.ErrInvalidCatalog)

	cycle := base()
	cycle[0].RollupParent = "B"
	_, err = NewCatalog("X", ProfitLoss, cycle)
	require.ErrorIs(t, err, shared.ErrInvalidCatalog)

	dup := append(base(), Mapping{StatementType: ProfitLoss, LineItemCode: "B", RollupSign: 1})
	_, err = NewCatalog("X", ProfitLoss, dup)
	require.ErrorIs(t, err, shared.ErrInvalidCatalog)

	sign := base()
	sign[1].RollupSign = 0
	_, err = NewCatalog("X", ProfitLoss, sign)
	require.ErrorIs(t, err, shared.ErrInvalidCatalog)
}

func TestEvaluateRollsUpWithSigns(t *testing.T) {
	items, _ := Builtin(DefaultStandard, ProfitLoss)
	c, err := NewCatalog(DefaultStandard, ProfitLoss, items)
	require.NoError(t, err)

	ev := c.Evaluate(map[string]decimal.Decimal{
		"PL_REVENUE_OPERATIONS": decimal.NewFromInt(1000),
		"PL_OTHER_INCOME":       decimal.NewFromInt(50),
		"PL_EXP_EMPLOYEE":       decimal.NewFromInt(300),
		"PL_EXP_OTHER":          decimal.NewFromInt(150),
		"PL_TAX_EXPENSE":        decimal.NewFromInt(100),
	})
	require.Equal(t, "1050", ev.Amounts["PL_TOTAL_INCOME"].String())
	require.Equal(t, "450", ev.Amounts["PL_TOTAL_EXPENSES"].String())
	require.Equal(t, "600", ev.Amounts["PL_PROFIT_BEFORE_TAX"].String())
	require.Equal(t, "500", ev.Amounts["PL_PROFIT_FOR_PERIOD"].String())
	require.True(t, ev.Missing["PL_EXP_FINANCE"])
	require.False(t, ev.Missing["PL_TOTAL_INCOME"])
}

type memoryRepo struct {
	stored map[StatementType][]Mapping
}

func (m *memoryRepo) Load(ctx context.Context, standard string, st StatementType) ([]Mapping, error) {
	return m.stored[st], nil
}

func (m *memoryRepo) Replace(ctx context.Context, standard string, st StatementType, items []Mapping) error {
	m.stored[st] = items
	return nil
}

func TestServiceFallsBackToBuiltinAndSeeds(t *testing.T) {
	repo := &memoryRepo{stored: make(map[StatementType][]Mapping)}
	svc := NewService(repo, nil)

	c, err := svc.Catalog(context.Background(), "", CashFlow)
	require.NoError(t, err)
	_, ok := c.ByRole(RoleClosingCash)
	require.True(t, ok)

	n, err := svc.Seed(context.Background(), DefaultStandard)
	require.NoError(t, err)
	require.Equal(t, len(repo.stored[BalanceSheet])+len(repo.stored[ProfitLoss])+len(repo.stored[CashFlow]), n)

	_, err = svc.Catalog(context.Background(), "IFRS", BalanceSheet)
	require.ErrorIs(t, err, shared.ErrInvalidCatalog)
}
