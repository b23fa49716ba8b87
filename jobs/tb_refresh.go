package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

const defaultRefreshLimit = 100

// TrialBalanceRefresher recomputes trial balances and clears staleness.
type TrialBalanceRefresher interface {
	Refresh(ctx context.Context, tenant platformshared.Tenant, asOf time.Time) (trialbalance.TrialBalance, bool, error)
	RefreshStale(ctx context.Context, limit int) (int, error)
}

// TrialBalanceRefreshJob handles TaskTrialBalanceRefresh.
type TrialBalanceRefreshJob struct {
	Service TrialBalanceRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewTrialBalanceRefreshJob constructs the job handler.
func NewTrialBalanceRefreshJob(service TrialBalanceRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *TrialBalanceRefreshJob {
	return &TrialBalanceRefreshJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle refreshes one company or sweeps the stale ones.
func (j *TrialBalanceRefreshJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("tb refresh: dependencies not configured")
	}
	var payload TrialBalanceRefreshPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskTrialBalanceRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	if payload.CompanyID > 0 {
		_, cleared, err := j.Service.Refresh(ctx, platformshared.Tenant{CompanyID: payload.CompanyID}, time.Time{})
		if err != nil {
			resultErr = err
			j.log().Error("refresh trial balance", slog.Int64("company_id", payload.CompanyID), slog.Any("error", err))
			return resultErr
		}
		if cleared {
			j.metrics().AddRefreshed(1)
		} else {
			j.log().Info("trial balance changed during refresh; left stale", slog.Int64("company_id", payload.CompanyID))
		}
		return resultErr
	}

	limit := payload.Limit
	if limit <= 0 {
		limit = defaultRefreshLimit
	}
	refreshed, err := j.Service.RefreshStale(ctx, limit)
	j.metrics().AddRefreshed(refreshed)
	if err != nil {
		resultErr = err
		j.log().Error("refresh stale trial balances", slog.Int("refreshed", refreshed), slog.Any("error", err))
		return resultErr
	}
	j.log().Info("refreshed stale trial balances", slog.Int("refreshed", refreshed))
	return resultErr
}

func (j *TrialBalanceRefreshJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *TrialBalanceRefreshJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskTrialBalanceRefresh))
	}
	return slog.Default().With(slog.String("job", TaskTrialBalanceRefresh))
}
