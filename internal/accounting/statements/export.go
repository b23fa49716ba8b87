package statements

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// XLSXContentType is the MIME type of exported runs.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXExporter renders runs as a workbook with a statement sheet and, when
// present, a summary and warnings sheet.
type XLSXExporter struct{}

// Export writes the run into an xlsx workbook.
func (XLSXExporter) Export(run Run) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetTitle(run)
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}, NumFmt: 4})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})
	missingStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4, Font: &excelize.Font{Italic: true, Color: "#9C0006"}})

	period := run.PeriodEnd.Format(shared.DateLayout)
	if run.PeriodStart != nil {
		period = run.PeriodStart.Format(shared.DateLayout) + " to " + period
	}
	_ = f.SetCellValue(sheet, "A1", fmt.Sprintf("%s (%s)", sheet, run.Standard))
	_ = f.SetCellValue(sheet, "A2", period)
	for col, header := range []string{"Code", "Particulars", "Amount"} {
		cell, _ := excelize.CoordinatesToCellName(col+1, 4)
		_ = f.SetCellValue(sheet, cell, header)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 5
	for _, r := range flatten(run.Lines) {
		codeCell, nameCell, amountCell := fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), fmt.Sprintf("C%d", row)
		_ = f.SetCellValue(sheet, codeCell, r.code)
		_ = f.SetCellValue(sheet, nameCell, r.name)
		if r.amount != nil {
			amount, _ := r.amount.Float64()
			_ = f.SetCellValue(sheet, amountCell, amount)
		}
		switch {
		case r.bold:
			_ = f.SetCellStyle(sheet, codeCell, amountCell, boldStyle)
		case r.missing:
			_ = f.SetCellStyle(sheet, amountCell, amountCell, missingStyle)
		default:
			_ = f.SetCellStyle(sheet, amountCell, amountCell, amountStyle)
		}
		if r.indent > 0 {
			indentStyle, _ := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{Indent: r.indent}, Font: &excelize.Font{Bold: r.bold}})
			_ = f.SetCellStyle(sheet, nameCell, nameCell, indentStyle)
		}
		row++
	}
	_ = f.SetColWidth(sheet, "A", "A", 28)
	_ = f.SetColWidth(sheet, "B", "B", 52)
	_ = f.SetColWidth(sheet, "C", "C", 18)

	if len(run.Summary) > 0 {
		const summarySheet = "Summary"
		if _, err := f.NewSheet(summarySheet); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(run.Summary))
		for key := range run.Summary {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for i, key := range keys {
			amount, _ := run.Summary[key].Float64()
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", i+1), key)
			_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", i+1), amount)
			_ = f.SetCellStyle(summarySheet, fmt.Sprintf("B%d", i+1), fmt.Sprintf("B%d", i+1), amountStyle)
		}
		_ = f.SetColWidth(summarySheet, "A", "A", 32)
		_ = f.SetColWidth(summarySheet, "B", "B", 18)
	}
	if len(run.Warnings) > 0 {
		const warningSheet = "Warnings"
		if _, err := f.NewSheet(warningSheet); err != nil {
			return nil, err
		}
		for i, warning := range run.Warnings {
			_ = f.SetCellValue(warningSheet, fmt.Sprintf("A%d", i+1), warning)
		}
		_ = f.SetColWidth(warningSheet, "A", "A", 100)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type exportRow struct {
	code    string
	name    string
	amount  *decimal.Decimal
	indent  int
	bold    bool
	missing bool
}

// flatten lists lines depth first with computed lines after their children.
func flatten(lines []Line) []exportRow {
	var out []exportRow
	for _, line := range lines {
		amount := line.Amount
		if len(line.Children) == 0 {
			out = append(out, exportRow{code: line.Code, name: line.Name, amount: &amount, indent: line.IndentLevel, bold: line.IsBold, missing: line.Missing})
			continue
		}
		out = append(out, flatten(line.Children)...)
		out = append(out, exportRow{code: line.Code, name: line.Name, amount: &amount, indent: line.IndentLevel, bold: true})
	}
	return out
}

func sheetTitle(run Run) string {
	switch run.Type {
	case schedule.BalanceSheet:
		return "Balance Sheet"
	case schedule.ProfitLoss:
		return "Profit and Loss"
	case schedule.CashFlow:
		return "Cash Flow"
	}
	return "Statement"
}

// ExportFilename names the downloaded workbook.
func ExportFilename(run Run) string {
	return fmt.Sprintf("%s_%d_%s.xlsx", run.Type, run.ID, run.PeriodEnd.Format("20060102"))
}
