package journals

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCheckTotalsFlagsBrokenEntries(t *testing.T) {
	hundred := decimal.NewFromInt(100)
	rows := []EntryTotals{
		{EntryID: 1, EntryNumber: "JV/2024-25/0001", Sequence: 1, StoredDebit: hundred, StoredCredit: hundred, LineDebit: hundred, LineCredit: hundred, LineCount: 2},
		{EntryID: 2, EntryNumber: "JV/2024-25/0002", Sequence: 2, StoredDebit: hundred, StoredCredit: hundred, LineDebit: hundred, LineCredit: decimal.NewFromInt(90), LineCount: 3},
		{EntryID: 3, EntryNumber: "JV/2024-25/0003", Sequence: 3, StoredDebit: hundred, StoredCredit: hundred, LineDebit: hundred, LineCredit: hundred, LineCount: 1},
	}
	issues := CheckTotals(rows)
	require.Len(t, issues, 3)
	require.Equal(t, int64(2), issues[0].EntryID)
	require.Contains(t, issues[0].Reason, "differ from lines")
	require.Contains(t, issues[1].Reason, "do not balance")
	require.Equal(t, int64(3), issues[2].EntryID)
	require.Contains(t, issues[2].Reason, "1 lines")
}

func TestCheckTotalsFlagsRenumberedEntries(t *testing.T) {
	ten := decimal.NewFromInt(10)
	balanced := EntryTotals{StoredDebit: ten, StoredCredit: ten, LineDebit: ten, LineCredit: ten, LineCount: 2}

	drifted := balanced
	drifted.EntryID, drifted.EntryNumber, drifted.Sequence = 7, "JV/2024-25/0009", 7
	garbled := balanced
	garbled.EntryID, garbled.EntryNumber, garbled.Sequence = 8, "JV/2024-25/", 8

	issues := CheckTotals([]EntryTotals{drifted, garbled})
	require.Len(t, issues, 2)
	require.Contains(t, issues[0].Reason, "suffix 9 differs from sequence 7")
	require.Equal(t, int64(8), issues[1].EntryID)
	require.Contains(t, issues[1].Reason, "malformed entry number")
}
