package trialbalance

import (
	"context"
	"log/slog"
)

// RefreshEnqueuer schedules an asynchronous recompute for a company.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context, companyID int64) error
}

// Notifier fans out committed ledger changes to Redis and, optionally, the job queue.
type Notifier struct {
	cache    *Cache
	enqueuer RefreshEnqueuer
	logger   *slog.Logger
}

func NewNotifier(cache *Cache, enqueuer RefreshEnqueuer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{cache: cache, enqueuer: enqueuer, logger: logger}
}

// LedgerChanged publishes the change. Enqueue failures are logged only.
func (n *Notifier) LedgerChanged(ctx context.Context, companyID int64) error {
	if _, err := n.cache.Bump(ctx, companyID); err != nil {
		return err
	}
	if n.enqueuer != nil {
		if err := n.enqueuer.EnqueueRefresh(ctx, companyID); err != nil {
			n.logger.Warn("enqueue trial balance refresh", slog.Int64("company_id", companyID), slog.Any("error", err))
		}
	}
	return nil
}
