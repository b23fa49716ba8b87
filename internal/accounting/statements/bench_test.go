package statements

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
)

// scaled repeats the sample chart copies times under distinct codes, keeping
// every copy balanced.
func scaled(balances []trialbalance.AccountBalance, copies int) []trialbalance.AccountBalance {
	out := make([]trialbalance.AccountBalance, 0, len(balances)*copies)
	for c := 0; c < copies; c++ {
		for _, bal := range balances {
			bal.AccountID = int64(c*len(balances)) + bal.AccountID
			bal.Code = bal.Code + "-" + strconv.Itoa(c)
			out = append(out, bal)
		}
	}
	return out
}

func BenchmarkBuildBalanceSheet(b *testing.B) {
	catalog := builtinCatalog(b, schedule.BalanceSheet)
	balances := scaled(balancesFor(true, periodPostings), 250)
	st, err := BuildBalanceSheet(catalog, balances, Options{})
	require.NoError(b, err)
	require.Empty(b, st.Warnings)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildBalanceSheet(catalog, balances, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkBuildCashFlow(b *testing.B) {
	catalog := builtinCatalog(b, schedule.CashFlow)
	opening := scaled(balancesFor(true, nil), 250)
	movement := scaled(balancesFor(false, periodPostings), 250)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := BuildCashFlow(catalog, opening, movement, Options{}); err != nil {
			b.Fatal(err)
		}
	}
}
