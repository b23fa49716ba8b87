package statements

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
)

func TestXLSXExportWritesStatementSummaryAndWarnings(t *testing.T) {
	st, err := BuildProfitLoss(builtinCatalog(t, schedule.ProfitLoss), balancesFor(false, periodPostings), Options{})
	require.NoError(t, err)
	st.PeriodEnd = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	st.Warnings = []string{"account 9999 has no mapping code; 10.00 excluded"}
	run := Run{ID: 12, CompanyID: 1, Statement: st}

	payload, err := XLSXExporter{}.Export(run)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	require.NoError(t, err)
	defer f.Close()
	require.Equal(t, []string{"Profit and Loss", "Summary", "Warnings"}, f.GetSheetList())

	rows, err := f.GetRows("Profit and Loss", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Equal(t, "Code", rows[3][0])
	// computed lines follow their children; the statement root is last
	last := rows[len(rows)-1]
	require.Equal(t, "PL_PROFIT_FOR_PERIOD", last[0])
	require.Equal(t, "330", last[2])

	warning, err := f.GetCellValue("Warnings", "A1")
	require.NoError(t, err)
	require.Contains(t, warning, "9999")
	require.Equal(t, "profit_loss_12_20250331.xlsx", ExportFilename(run))
}

func TestFlattenPlacesTotalsAfterChildren(t *testing.T) {
	lines := []Line{{
		Code:   "T",
		Amount: decimal.NewFromInt(3),
		Children: []Line{
			{Code: "A", Amount: decimal.NewFromInt(1)},
			{Code: "B", Amount: decimal.NewFromInt(2), Missing: true},
		},
	}}
	rows := flatten(lines)
	require.Len(t, rows, 3)
	require.Equal(t, "A", rows[0].code)
	require.True(t, rows[1].missing)
	require.Equal(t, "T", rows[2].code)
	require.True(t, rows[2].bold)
	require.True(t, decimal.NewFromInt(3).Equal(*rows[2].amount))
}
