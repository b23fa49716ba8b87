package journals

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// EntryTotals pairs an entry's stored header totals with the sums of its lines.
type EntryTotals struct {
	CompanyID    int64
	EntryID      int64
	EntryNumber  string
	Sequence     int64
	Status       Status
	StoredDebit  decimal.Decimal
	StoredCredit decimal.Decimal
	LineDebit    decimal.Decimal
	LineCredit   decimal.Decimal
	LineCount    int
}

// IntegrityIssue reports an entry whose stored state breaks double entry.
type IntegrityIssue struct {
	CompanyID   int64  `json:"companyId"`
	EntryID     int64  `json:"entryId"`
	EntryNumber string `json:"entryNumber"`
	Reason      string `json:"reason"`
}

// CheckTotals returns one issue per broken rule per entry.
func CheckTotals(rows []EntryTotals) []IntegrityIssue {
	var issues []IntegrityIssue
	for _, row := range rows {
		report := func(format string, args ...any) {
			issues = append(issues, IntegrityIssue{
				CompanyID:   row.CompanyID,
				EntryID:     row.EntryID,
				EntryNumber: row.EntryNumber,
				Reason:      fmt.Sprintf(format, args...),
			})
		}
		if row.LineCount < 2 {
			report("entry has %d lines", row.LineCount)
		}
		if !row.StoredDebit.Equal(row.LineDebit) || !row.StoredCredit.Equal(row.LineCredit) {
			report("stored totals %s/%s differ from lines %s/%s",
				row.StoredDebit.StringFixed(2), row.StoredCredit.StringFixed(2),
				row.LineDebit.StringFixed(2), row.LineCredit.StringFixed(2))
		}
		if !shared.WithinTolerance(row.LineDebit, row.LineCredit) {
			report("lines do not balance: debit %s credit %s", row.LineDebit.StringFixed(2), row.LineCredit.StringFixed(2))
		}
		if seq, err := ParseEntrySequence(row.EntryNumber); err != nil {
			report("%v", err)
		} else if seq != row.Sequence {
			report("number suffix %d differs from sequence %d", seq, row.Sequence)
		}
	}
	return issues
}

// IntegrityReader loads entry totals for verification.
type IntegrityReader struct {
	db *pgxpool.Pool
}

func NewIntegrityReader(db *pgxpool.Pool) *IntegrityReader {
	return &IntegrityReader{db: db}
}

// EntryTotals lists every entry of a company, or of all companies when companyID is zero.
func (r *IntegrityReader) EntryTotals(ctx context.Context, companyID int64) ([]EntryTotals, error) {
	rows, err := r.db.Query(ctx, `SELECT e.company_id, e.id, e.entry_number, e.sequence, e.status, e.total_debit, e.total_credit,
	COALESCE(SUM(l.debit_amount), 0), COALESCE(SUM(l.credit_amount), 0), COUNT(l.id)
FROM journal_entries e
LEFT JOIN journal_entry_lines l ON l.journal_entry_id = e.id
WHERE $1 = 0 OR e.company_id = $1
GROUP BY e.id
ORDER BY e.company_id, e.id`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []EntryTotals
	for rows.Next() {
		var t EntryTotals
		if err := rows.Scan(&t.CompanyID, &t.EntryID, &t.EntryNumber, &t.Sequence, &t.Status, &t.StoredDebit, &t.StoredCredit,
			&t.LineDebit, &t.LineCredit, &t.LineCount); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Verify loads and checks entry totals.
func (r *IntegrityReader) Verify(ctx context.Context, companyID int64) ([]IntegrityIssue, int, error) {
	rows, err := r.EntryTotals(ctx, companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("journals: load entry totals: %w", err)
	}
	return CheckTotals(rows), len(rows), nil
}
