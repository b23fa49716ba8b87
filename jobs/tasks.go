package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/odyssey-books/internal/jobs"
	"github.com/odyssey-erp/odyssey-books/internal/platform/cache"
)

const (
	// QueueDefault carries refreshes triggered by posting.
	QueueDefault = "default"
	// QueueMaintenance carries scheduled sweeps and integrity checks.
	QueueMaintenance = "maintenance"
	// TaskTrialBalanceRefresh recomputes stale trial balances.
	TaskTrialBalanceRefresh = "ledger:tb_refresh"
	// TaskGLIntegrity verifies stored journal totals against their lines.
	TaskGLIntegrity = "ledger:gl_integrity"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// TrialBalanceRefreshPayload scopes a refresh. A zero company sweeps every stale company.
type TrialBalanceRefreshPayload struct {
	CompanyID int64 `json:"company_id"`
	Limit     int   `json:"limit,omitempty"`
}

// NewTrialBalanceRefreshTask builds a refresh task. Bursts of ledger writes for
// one company collapse into a single queued task.
func NewTrialBalanceRefreshTask(companyID int64) (*asynq.Task, error) {
	body, err := json.Marshal(TrialBalanceRefreshPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTrialBalanceRefresh, body, asynq.Queue(QueueDefault), asynq.Unique(30*time.Second)), nil
}

// GLIntegrityPayload scopes an integrity check. A zero company checks all companies.
type GLIntegrityPayload struct {
	CompanyID int64 `json:"company_id"`
}

// NewGLIntegrityTask builds an integrity check task.
func NewGLIntegrityTask(companyID int64) (*asynq.Task, error) {
	body, err := json.Marshal(GLIntegrityPayload{CompanyID: companyID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGLIntegrity, body, asynq.Queue(QueueMaintenance)), nil
}

// Queues lists every queue the worker consumes.
func Queues() []string {
	return []string{QueueDefault, QueueMaintenance}
}

// RedisOpt converts cache connection settings into Asynq's form.
func RedisOpt(opts cache.Options) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: opts.Addr, Password: opts.Password, DB: opts.DB}
}
