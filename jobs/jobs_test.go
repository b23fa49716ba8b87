package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeRefresher struct {
	refreshed []int64
	swept     int
	cleared   bool
	err       error
}

func (f *fakeRefresher) Refresh(ctx context.Context, tenant platformshared.Tenant, asOf time.Time) (trialbalance.TrialBalance, bool, error) {
	f.refreshed = append(f.refreshed, tenant.CompanyID)
	return trialbalance.TrialBalance{CompanyID: tenant.CompanyID}, f.cleared, f.err
}

func (f *fakeRefresher) RefreshStale(ctx context.Context, limit int) (int, error) {
	f.swept = limit
	return 2, f.err
}

func TestTrialBalanceRefreshTaskPayload(t *testing.T) {
	task, err := NewTrialBalanceRefreshTask(42)
	require.NoError(t, err)
	require.Equal(t, TaskTrialBalanceRefresh, task.Type())
	var payload TrialBalanceRefreshPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	require.Equal(t, int64(42), payload.CompanyID)
}

func TestTrialBalanceRefreshJobScopes(t *testing.T) {
	refresher := &fakeRefresher{cleared: true}
	job := NewTrialBalanceRefreshJob(refresher, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewTrialBalanceRefreshTask(42)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, []int64{42}, refresher.refreshed)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskTrialBalanceRefresh, []byte(`{}`))))
	require.Equal(t, defaultRefreshLimit, refresher.swept)

	err = job.Handle(context.Background(), asynq.NewTask(TaskTrialBalanceRefresh, []byte(`not json`)))
	require.ErrorIs(t, err, asynq.SkipRetry)

	refresher.err = errors.New("db down")
	require.Error(t, job.Handle(context.Background(), task))
}

type fakeVerifier struct {
	issues []journals.IntegrityIssue
	err    error
	scope  int64
}

func (f *fakeVerifier) Verify(ctx context.Context, companyID int64) ([]journals.IntegrityIssue, int, error) {
	f.scope = companyID
	return f.issues, 10, f.err
}

func TestGLIntegrityJobReportsViolationsWithoutFailing(t *testing.T) {
	verifier := &fakeVerifier{issues: []journals.IntegrityIssue{
		{CompanyID: 1, EntryID: 5, EntryNumber: "JV/2024-25/0005", Reason: "lines do not balance"},
	}}
	job := NewGLIntegrityJob(verifier, discard, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewGLIntegrityTask(1)
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	require.Equal(t, int64(1), verifier.scope)

	issues, err := job.Run(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, issues, 1)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskGLIntegrity, nil)))
	require.Zero(t, verifier.scope)

	verifier.err = errors.New("timeout")
	require.Error(t, job.Handle(context.Background(), task))
}
