package shared

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer is satisfied by pgx pools, connections and transactions.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// MarkTrialBalanceStale flags the company trial balance as stale and bumps its
// version. Writers of anything the trial balance reads call it with their open
// transaction.
func MarkTrialBalanceStale(ctx context.Context, db Execer, companyID int64) error {
	_, err := db.Exec(ctx, `INSERT INTO trial_balance_cache (company_id, is_stale, version, updated_at)
VALUES ($1, TRUE, 1, NOW())
ON CONFLICT (company_id) DO UPDATE SET is_stale=TRUE, version=trial_balance_cache.version+1, updated_at=NOW()`, companyID)
	return err
}
