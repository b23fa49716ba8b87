package journals

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
)

const entryColumns = `id, company_id, fiscal_year_id, entry_number, sequence, entry_date, posting_date, status, narration, total_debit, total_credit,
is_reversed, reversed_entry_id, reversal_of_id, source_type, source_id, created_by, created_at, updated_at`

const lineColumns = `id, journal_entry_id, account_id, debit_amount, credit_amount, party_id, party_type, cost_center_id, narration, sort_order`

// Repository encapsulates DB operations for journals.
type Repository interface {
	Get(ctx context.Context, companyID, id int64) (JournalEntry, error)
	List(ctx context.Context, companyID int64, filter ListFilter) ([]JournalEntry, int, error)
	FindBySource(ctx context.Context, companyID int64, sourceType string, sourceID uuid.UUID) (JournalEntry, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction. Fiscal year
// and account reads happen here so the checks and the writes share a snapshot.
type TxRepository interface {
	GetFiscalYear(ctx context.Context, companyID, id int64) (fiscalyears.FiscalYear, error)
	FindFiscalYearByDate(ctx context.Context, companyID int64, date time.Time) (fiscalyears.FiscalYear, error)
	GetAccounts(ctx context.Context, companyID int64, ids []int64) (map[int64]accounts.Account, error)
	NextSequence(ctx context.Context, companyID, fiscalYearID int64) (int64, error)
	GetEntryForUpdate(ctx context.Context, companyID, id int64) (JournalEntry, error)
	InsertEntry(ctx context.Context, entry JournalEntry) (JournalEntry, error)
	InsertLines(ctx context.Context, entryID int64, lines []JournalLine) ([]JournalLine, error)
	DeleteLines(ctx context.Context, entryID int64) error
	UpdateEntry(ctx context.Context, entry JournalEntry) error
	MarkReversed(ctx context.Context, entryID, reversalID int64) error
	DeleteEntry(ctx context.Context, entryID int64) error
	MarkTrialBalanceStale(ctx context.Context, companyID int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func scanEntry(row rowScanner) (JournalEntry, error) {
	var e JournalEntry
	err := row.Scan(&e.ID, &e.CompanyID, &e.FiscalYearID, &e.EntryNumber, &e.Sequence, &e.EntryDate, &e.PostingDate, &e.Status, &e.Narration,
		&e.TotalDebit, &e.TotalCredit, &e.IsReversed, &e.ReversedEntryID, &e.ReversalOfID, &e.SourceType, &e.SourceID, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, shared.ErrEntryNotFound
		}
		return JournalEntry{}, err
	}
	return e, nil
}

func loadLines(ctx context.Context, q querier, entryID int64) ([]JournalLine, error) {
	rows, err := q.Query(ctx, `SELECT `+lineColumns+` FROM journal_entry_lines WHERE journal_entry_id=$1 ORDER BY sort_order, id`, entryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var lines []JournalLine
	for rows.Next() {
		var l JournalLine
		if err := rows.Scan(&l.ID, &l.JournalEntryID, &l.AccountID, &l.DebitAmount, &l.CreditAmount, &l.PartyID, &l.PartyType, &l.CostCenterID, &l.Narration, &l.SortOrder); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 AND id=$2`, companyID, id))
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines, err = loadLines(ctx, r.db, entry.ID)
	return entry, err
}

func (r *repository) FindBySource(ctx context.Context, companyID int64, sourceType string, sourceID uuid.UUID) (JournalEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries
WHERE company_id=$1 AND source_type=$2 AND source_id=$3 AND reversal_of_id IS NULL`, companyID, sourceType, sourceID))
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines, err = loadLines(ctx, r.db, entry.ID)
	return entry, err
}

func (r *repository) List(ctx context.Context, companyID int64, filter ListFilter) ([]JournalEntry, int, error) {
	where := []string{"company_id=$1"}
	args := []any{companyID}
	add := func(clause string, value any) {
		args = append(args, value)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if filter.FiscalYearID != nil {
		add("fiscal_year_id=$%d", *filter.FiscalYearID)
	}
	if filter.Status != "" {
		add("status=$%d", filter.Status)
	}
	if filter.From != nil {
		add("entry_date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("entry_date <= $%d", *filter.To)
	}
	if filter.SourceType != "" {
		add("source_type=$%d", filter.SourceType)
	}
	clause := strings.Join(where, " AND ")
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM journal_entries WHERE `+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM journal_entries WHERE %s ORDER BY entry_date DESC, sequence DESC LIMIT $%d OFFSET $%d`,
		entryColumns, clause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetFiscalYear(ctx context.Context, companyID, id int64) (fiscalyears.FiscalYear, error) {
	fy, err := fiscalyears.ScanFiscalYear(r.tx.QueryRow(ctx, `SELECT `+fiscalyears.Columns()+` FROM fiscal_years WHERE company_id=$1 AND id=$2 FOR SHARE`, companyID, id))
	if errors.Is(err, shared.ErrFiscalYearNotFound) {
		return fiscalyears.FiscalYear{}, shared.ErrInvalidFiscalYear
	}
	return fy, err
}

func (r *txRepository) FindFiscalYearByDate(ctx context.Context, companyID int64, date time.Time) (fiscalyears.FiscalYear, error) {
	fy, err := fiscalyears.ScanFiscalYear(r.tx.QueryRow(ctx, `SELECT `+fiscalyears.Columns()+` FROM fiscal_years
WHERE company_id=$1 AND $2::date BETWEEN start_date AND end_date LIMIT 1 FOR SHARE`, companyID, date))
	if errors.Is(err, shared.ErrFiscalYearNotFound) {
		return fiscalyears.FiscalYear{}, fmt.Errorf("%w: no fiscal year covers %s", shared.ErrDateOutOfRange, date.Format(shared.DateLayout))
	}
	return fy, err
}

func (r *txRepository) GetAccounts(ctx context.Context, companyID int64, ids []int64) (map[int64]accounts.Account, error) {
	rows, err := r.tx.Query(ctx, `SELECT id, company_id, code, name, type, parent_id, is_group, level, mapping_code, cash_flow_class,
opening_balance, opening_balance_side, is_active, created_at, updated_at FROM accounts WHERE company_id=$1 AND id = ANY($2)`, companyID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[int64]accounts.Account, len(ids))
	for rows.Next() {
		var a accounts.Account
		if err := rows.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.ParentID, &a.IsGroup, &a.Level, &a.MappingCode, &a.CashFlowClass,
			&a.OpeningBalance, &a.OpeningBalanceSide, &a.IsActive, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out[a.ID] = a
	}
	return out, rows.Err()
}

// NextSequence bumps the per company and fiscal year counter. The row lock
// held by the upsert serialises concurrent creators until commit.
func (r *txRepository) NextSequence(ctx context.Context, companyID, fiscalYearID int64) (int64, error) {
	var next int64
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_sequences (company_id, fiscal_year_id, last_value)
VALUES ($1, $2, COALESCE((SELECT MAX(sequence) FROM journal_entries WHERE company_id=$1 AND fiscal_year_id=$2), 0) + 1)
ON CONFLICT (company_id, fiscal_year_id) DO UPDATE SET last_value = journal_sequences.last_value + 1
RETURNING last_value`, companyID, fiscalYearID).Scan(&next)
	return next, err
}

func (r *txRepository) GetEntryForUpdate(ctx context.Context, companyID, id int64) (JournalEntry, error) {
	entry, err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, id))
	if err != nil {
		return JournalEntry{}, err
	}
	entry.Lines, err = loadLines(ctx, r.tx, entry.ID)
	return entry, err
}

func (r *txRepository) InsertEntry(ctx context.Context, e JournalEntry) (JournalEntry, error) {
	row := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (company_id, fiscal_year_id, entry_number, sequence, entry_date, posting_date, status, narration,
total_debit, total_credit, reversal_of_id, source_type, source_id, created_by)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14) RETURNING `+entryColumns,
		e.CompanyID, e.FiscalYearID, e.EntryNumber, e.Sequence, e.EntryDate, e.PostingDate, e.Status, e.Narration,
		e.TotalDebit, e.TotalCredit, e.ReversalOfID, e.SourceType, e.SourceID, e.CreatedBy)
	inserted, err := scanEntry(row)
	if err != nil {
		if db.IsUniqueViolation(err, "uq_journal_entries_source") {
			return JournalEntry{}, shared.ErrSourceAlreadyLinked
		}
		return JournalEntry{}, err
	}
	return inserted, nil
}

func (r *txRepository) InsertLines(ctx context.Context, entryID int64, lines []JournalLine) ([]JournalLine, error) {
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		line.JournalEntryID = entryID
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_entry_lines (journal_entry_id, account_id, debit_amount, credit_amount, party_id, party_type, cost_center_id, narration, sort_order)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`, entryID, line.AccountID, line.DebitAmount, line.CreditAmount, line.PartyID, line.PartyType,
			line.CostCenterID, line.Narration, line.SortOrder).Scan(&line.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

func (r *txRepository) DeleteLines(ctx context.Context, entryID int64) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM journal_entry_lines WHERE journal_entry_id=$1`, entryID)
	return err
}

func (r *txRepository) UpdateEntry(ctx context.Context, e JournalEntry) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET entry_date=$2, posting_date=$3, status=$4, narration=$5, total_debit=$6, total_credit=$7, updated_at=NOW()
WHERE id=$1`, e.ID, e.EntryDate, e.PostingDate, e.Status, e.Narration, e.TotalDebit, e.TotalCredit)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) MarkReversed(ctx context.Context, entryID, reversalID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE journal_entries SET is_reversed=TRUE, reversed_entry_id=$2, updated_at=NOW() WHERE id=$1`, entryID, reversalID)
	return err
}

func (r *txRepository) DeleteEntry(ctx context.Context, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE id=$1`, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

func (r *txRepository) MarkTrialBalanceStale(ctx context.Context, companyID int64) error {
	return shared.MarkTrialBalanceStale(ctx, r.tx, companyID)
}
