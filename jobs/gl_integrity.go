package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
)

// IntegrityVerifier checks journal entries against their lines.
type IntegrityVerifier interface {
	Verify(ctx context.Context, companyID int64) ([]journals.IntegrityIssue, int, error)
}

// GLIntegrityJob handles TaskGLIntegrity. Violations are logged and counted;
// the job itself only fails when the check cannot run.
type GLIntegrityJob struct {
	Verifier IntegrityVerifier
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
}

// NewGLIntegrityJob constructs the job handler.
func NewGLIntegrityJob(verifier IntegrityVerifier, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{Verifier: verifier, Logger: logger, Metrics: metrics}
}

// Handle runs the integrity check.
func (j *GLIntegrityJob) Handle(ctx context.Context, task *asynq.Task) error {
	if j == nil || j.Verifier == nil {
		return errors.New("gl integrity: dependencies not configured")
	}
	var payload GLIntegrityPayload
	if len(task.Payload()) > 0 {
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}
	_, err := j.Run(ctx, payload.CompanyID)
	return err
}

// Run verifies entries and reports the issues found.
func (j *GLIntegrityJob) Run(ctx context.Context, companyID int64) ([]journals.IntegrityIssue, error) {
	tracker := j.metrics().Track(TaskGLIntegrity)
	issues, checked, err := j.Verifier.Verify(ctx, companyID)
	if err != nil {
		j.log().Error("gl integrity check", slog.Any("error", err))
		return nil, tracker.End(err)
	}
	perCompany := make(map[int64]int)
	for _, issue := range issues {
		perCompany[issue.CompanyID]++
		j.log().Warn("ledger integrity violation",
			slog.Int64("company_id", issue.CompanyID),
			slog.Int64("entry_id", issue.EntryID),
			slog.String("entry_number", issue.EntryNumber),
			slog.String("reason", issue.Reason),
		)
	}
	for company, count := range perCompany {
		j.metrics().AddViolations(company, count)
	}
	j.log().Info("gl integrity check executed", slog.Int("entries", checked), slog.Int("violations", len(issues)))
	return issues, tracker.End(nil)
}

func (j *GLIntegrityJob) metrics() *jobmetrics.Metrics {
	if j != nil && j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *GLIntegrityJob) log() *slog.Logger {
	if j != nil && j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskGLIntegrity))
	}
	return slog.Default().With(slog.String("job", TaskGLIntegrity))
}
