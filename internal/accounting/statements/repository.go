package statements

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// Repository persists statement runs. Runs are never updated.
type Repository interface {
	Insert(ctx context.Context, run Run) (Run, error)
	Get(ctx context.Context, companyID, id int64) (Run, error)
	List(ctx context.Context, companyID int64, filter RunFilter) ([]Run, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const runColumns = `id, company_id, fiscal_year_id, statement_type, gaap_standard, period_start, period_end, run_data, summary, net_profit,
warnings, generated_by, generated_at`

func (r *repository) Insert(ctx context.Context, run Run) (Run, error) {
	lines, err := json.Marshal(run.Lines)
	if err != nil {
		return Run{}, fmt.Errorf("statements: encode lines: %w", err)
	}
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return Run{}, fmt.Errorf("statements: encode summary: %w", err)
	}
	warnings, err := json.Marshal(run.Warnings)
	if err != nil {
		return Run{}, fmt.Errorf("statements: encode warnings: %w", err)
	}
	err = r.db.QueryRow(ctx, `INSERT INTO statement_runs (company_id, fiscal_year_id, statement_type, gaap_standard, period_start, period_end,
run_data, summary, net_profit, warnings, generated_by, generated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12) RETURNING id`,
		run.CompanyID, run.FiscalYearID, run.Type, run.Standard, run.PeriodStart, run.PeriodEnd,
		lines, summary, run.NetProfit, warnings, run.GeneratedBy, run.GeneratedAt).Scan(&run.ID)
	if err != nil {
		return Run{}, err
	}
	return run, nil
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Run, error) {
	run, err := scanRun(r.db.QueryRow(ctx, `SELECT `+runColumns+` FROM statement_runs WHERE company_id=$1 AND id=$2`, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Run{}, shared.ErrRunNotFound
	}
	return run, err
}

func (r *repository) List(ctx context.Context, companyID int64, filter RunFilter) ([]Run, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.db.Query(ctx, `SELECT `+runColumns+` FROM statement_runs
WHERE company_id=$1 AND ($2 = '' OR statement_type=$2) AND ($3::bigint IS NULL OR fiscal_year_id=$3)
ORDER BY generated_at DESC, id DESC LIMIT $4`, companyID, string(filter.Type), filter.FiscalYearID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (Run, error) {
	var (
		run                      Run
		lines, summary, warnings []byte
		profit                   decimal.NullDecimal
	)
	if err := row.Scan(&run.ID, &run.CompanyID, &run.FiscalYearID, &run.Type, &run.Standard, &run.PeriodStart, &run.PeriodEnd,
		&lines, &summary, &profit, &warnings, &run.GeneratedBy, &run.GeneratedAt); err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal(lines, &run.Lines); err != nil {
		return Run{}, fmt.Errorf("statements: decode lines: %w", err)
	}
	if err := json.Unmarshal(summary, &run.Summary); err != nil {
		return Run{}, fmt.Errorf("statements: decode summary: %w", err)
	}
	if err := json.Unmarshal(warnings, &run.Warnings); err != nil {
		return Run{}, fmt.Errorf("statements: decode warnings: %w", err)
	}
	if profit.Valid {
		run.NetProfit = profit.Decimal
	}
	return run, nil
}
