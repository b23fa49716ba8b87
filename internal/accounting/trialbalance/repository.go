package trialbalance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
)

// Repository reads aggregated ledger balances and the staleness row.
type Repository interface {
	AccountBalances(ctx context.Context, companyID int64, filter Filter) ([]AccountBalance, error)
	Status(ctx context.Context, companyID int64) (Staleness, error)
	ClearStale(ctx context.Context, companyID, version int64, computedAt time.Time) (bool, error)
	StaleCompanies(ctx context.Context, limit int) ([]int64, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// AccountBalances sums posted lines per leaf account inside the filter window.
func (r *repository) AccountBalances(ctx context.Context, companyID int64, filter Filter) ([]AccountBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT a.id, a.code, a.name, a.type, a.parent_id, a.mapping_code, a.cash_flow_class,
a.opening_balance, a.opening_balance_side, COALESCE(m.debit, 0), COALESCE(m.credit, 0)
FROM accounts a
LEFT JOIN (
    SELECT l.account_id, SUM(l.debit_amount) AS debit, SUM(l.credit_amount) AS credit
    FROM journal_entry_lines l
    JOIN journal_entries e ON e.id = l.journal_entry_id
    WHERE e.company_id=$1 AND e.status='posted'
      AND ($2::date IS NULL OR e.entry_date >= $2::date)
      AND ($3::date IS NULL OR e.entry_date <= $3::date)
    GROUP BY l.account_id
) m ON m.account_id = a.id
WHERE a.company_id=$1 AND a.is_group = FALSE
ORDER BY a.code`, companyID, filter.From, filter.To)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountBalance
	for rows.Next() {
		var (
			bal     AccountBalance
			opening decimal.Decimal
			side    accounts.BalanceSide
		)
		if err := rows.Scan(&bal.AccountID, &bal.Code, &bal.Name, &bal.Type, &bal.ParentID, &bal.MappingCode, &bal.CashFlowClass,
			&opening, &side, &bal.Debit, &bal.Credit); err != nil {
			return nil, err
		}
		if filter.IncludeOpening {
			bal.Opening = accounts.Account{OpeningBalance: opening, OpeningBalanceSide: side}.SignedOpening()
		}
		out = append(out, bal)
	}
	return out, rows.Err()
}

// Status returns the staleness row. Companies that never posted are stale at version 0.
func (r *repository) Status(ctx context.Context, companyID int64) (Staleness, error) {
	st := Staleness{CompanyID: companyID}
	err := r.db.QueryRow(ctx, `SELECT is_stale, version, last_computed_at FROM trial_balance_cache WHERE company_id=$1`, companyID).
		Scan(&st.IsStale, &st.Version, &st.LastComputedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		st.IsStale = true
		return st, nil
	}
	return st, err
}

// ClearStale clears the flag only when no mutation bumped the version since it was read.
func (r *repository) ClearStale(ctx context.Context, companyID, version int64, computedAt time.Time) (bool, error) {
	cmd, err := r.db.Exec(ctx, `INSERT INTO trial_balance_cache (company_id, is_stale, version, last_computed_at, updated_at)
VALUES ($1, FALSE, $2, $3, NOW())
ON CONFLICT (company_id) DO UPDATE SET is_stale=FALSE, last_computed_at=EXCLUDED.last_computed_at, updated_at=NOW()
WHERE trial_balance_cache.version = EXCLUDED.version`, companyID, version, computedAt)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *repository) StaleCompanies(ctx context.Context, limit int) ([]int64, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(ctx, `SELECT company_id FROM trial_balance_cache WHERE is_stale ORDER BY updated_at LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
