package fiscalyears

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
)

const fiscalYearColumns = `id, company_id, name, start_date, end_date, is_current, is_locked, locked_by, locked_at, created_at, updated_at`

// Repository encapsulates DB operations for fiscal years.
type Repository interface {
	Get(ctx context.Context, companyID, id int64) (FiscalYear, error)
	List(ctx context.Context, companyID int64) ([]FiscalYear, error)
	Current(ctx context.Context, companyID int64) (FiscalYear, error)
	FindByDate(ctx context.Context, companyID int64, date time.Time) (FiscalYear, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes methods available within a transaction.
type TxRepository interface {
	GetForUpdate(ctx context.Context, companyID, id int64) (FiscalYear, error)
	HasOverlap(ctx context.Context, companyID int64, start, end time.Time) (bool, error)
	Insert(ctx context.Context, fy FiscalYear) (FiscalYear, error)
	ClearCurrent(ctx context.Context, companyID int64) error
	MarkCurrent(ctx context.Context, id int64) error
	SetLock(ctx context.Context, id int64, locked bool, by *int64, at *time.Time) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository returns the Postgres-backed fiscal year repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

// ScanFiscalYear reads a row selected with the fiscal year column list.
func ScanFiscalYear(row rowScanner) (FiscalYear, error) {
	var fy FiscalYear
	err := row.Scan(&fy.ID, &fy.CompanyID, &fy.Name, &fy.StartDate, &fy.EndDate, &fy.IsCurrent, &fy.IsLocked, &fy.LockedBy, &fy.LockedAt, &fy.CreatedAt, &fy.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return FiscalYear{}, shared.ErrFiscalYearNotFound
		}
		return FiscalYear{}, err
	}
	return fy, nil
}

// Columns lists the fiscal year columns in ScanFiscalYear order.
func Columns() string {
	return fiscalYearColumns
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (FiscalYear, error) {
	return ScanFiscalYear(r.db.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE company_id=$1 AND id=$2`, companyID, id))
}

func (r *repository) Current(ctx context.Context, companyID int64) (FiscalYear, error) {
	return ScanFiscalYear(r.db.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE company_id=$1 AND is_current`, companyID))
}

func (r *repository) FindByDate(ctx context.Context, companyID int64, date time.Time) (FiscalYear, error) {
	return ScanFiscalYear(r.db.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years
WHERE company_id=$1 AND $2::date BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, companyID, date))
}

func (r *repository) List(ctx context.Context, companyID int64) ([]FiscalYear, error) {
	rows, err := r.db.Query(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE company_id=$1 ORDER BY start_date DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var years []FiscalYear
	for rows.Next() {
		fy, err := ScanFiscalYear(rows)
		if err != nil {
			return nil, err
		}
		years = append(years, fy)
	}
	return years, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetForUpdate(ctx context.Context, companyID, id int64) (FiscalYear, error) {
	return ScanFiscalYear(r.tx.QueryRow(ctx, `SELECT `+fiscalYearColumns+` FROM fiscal_years WHERE company_id=$1 AND id=$2 FOR UPDATE`, companyID, id))
}

// overlapLockSpace namespaces the per-company advisory lock taken before the
// overlap check.
const overlapLockSpace = 0x6679

func (r *txRepository) HasOverlap(ctx context.Context, companyID int64, start, end time.Time) (bool, error) {
	if _, err := r.tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1::int, $2::int)`, overlapLockSpace, int32(companyID)); err != nil {
		return false, err
	}
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM fiscal_years WHERE company_id=$1 AND start_date <= $3::date AND end_date >= $2::date)`, companyID, start, end).Scan(&exists)
	return exists, err
}

func (r *txRepository) Insert(ctx context.Context, fy FiscalYear) (FiscalYear, error) {
	inserted, err := ScanFiscalYear(r.tx.QueryRow(ctx, `INSERT INTO fiscal_years (company_id, name, start_date, end_date, is_current)
VALUES ($1,$2,$3,$4,$5) RETURNING `+fiscalYearColumns, fy.CompanyID, fy.Name, fy.StartDate, fy.EndDate, fy.IsCurrent))
	if db.IsExclusionViolation(err, "ex_fiscal_years_overlap") {
		return FiscalYear{}, fmt.Errorf("%w: %s", shared.ErrFiscalYearOverlap, fy.Name)
	}
	return inserted, err
}

func (r *txRepository) ClearCurrent(ctx context.Context, companyID int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE fiscal_years SET is_current=FALSE, updated_at=NOW() WHERE company_id=$1 AND is_current`, companyID)
	return err
}

func (r *txRepository) MarkCurrent(ctx context.Context, id int64) error {
	_, err := r.tx.Exec(ctx, `UPDATE fiscal_years SET is_current=TRUE, updated_at=NOW() WHERE id=$1`, id)
	return err
}

func (r *txRepository) SetLock(ctx context.Context, id int64, locked bool, by *int64, at *time.Time) error {
	_, err := r.tx.Exec(ctx, `UPDATE fiscal_years SET is_locked=$2, locked_by=$3, locked_at=$4, updated_at=NOW() WHERE id=$1`, id, locked, by, at)
	return err
}
