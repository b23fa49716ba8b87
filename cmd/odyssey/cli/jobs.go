package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-books/internal/app"
	"github.com/odyssey-erp/odyssey-books/jobs"
)

// JobsCLI wraps manual management helpers for Asynq jobs.
type JobsCLI struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

// NewJobsCLI initialises the CLI helpers against the job broker.
func NewJobsCLI(redisOpts asynq.RedisClientOpt) (*JobsCLI, error) {
	client := asynq.NewClient(redisOpts)
	inspector := asynq.NewInspector(redisOpts)
	return &JobsCLI{client: client, inspector: inspector}, nil
}

// Close releases underlying resources.
func (c *JobsCLI) Close() error {
	var err error
	if c.inspector != nil {
		if closeErr := c.inspector.Close(); closeErr != nil {
			err = closeErr
		}
	}
	if c.client != nil {
		if closeErr := c.client.Close(); closeErr != nil {
			err = closeErr
		}
	}
	return err
}

// BuildTask resolves a job name into a task. A zero company id targets every company.
func BuildTask(name string, companyID int64) (*asynq.Task, error) {
	switch name {
	case jobs.TaskTrialBalanceRefresh:
		return jobs.NewTrialBalanceRefreshTask(companyID)
	case jobs.TaskGLIntegrity:
		return jobs.NewGLIntegrityTask(companyID)
	default:
		return nil, fmt.Errorf("jobs cli: unsupported job %s", name)
	}
}

// Trigger enqueues a supported job by name.
func (c *JobsCLI) Trigger(ctx context.Context, name string, companyID int64) (*asynq.TaskInfo, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("jobs cli: client not configured")
	}
	task, err := BuildTask(name, companyID)
	if err != nil {
		return nil, err
	}
	return c.client.EnqueueContext(ctx, task, asynq.MaxRetry(3))
}

// QueueStats summarises the current queue state.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
}

// InspectQueue reports the counters of one queue.
func (c *JobsCLI) InspectQueue(ctx context.Context, queue string) (QueueStats, error) {
	if c == nil || c.inspector == nil {
		return QueueStats{}, errors.New("jobs cli: inspector not configured")
	}
	info, err := c.inspector.GetQueueInfo(queue)
	if errors.Is(err, asynq.ErrQueueNotFound) {
		return QueueStats{Queue: queue}, nil
	}
	if err != nil {
		return QueueStats{}, err
	}
	stats := QueueStats{Queue: queue}
	if info != nil {
		stats.Pending = int(info.Pending)
		stats.Active = int(info.Active)
		stats.Scheduled = int(info.Scheduled)
		stats.Retry = int(info.Retry)
	}
	return stats, nil
}

func newJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and trigger background jobs",
	}
	cmd.AddCommand(newJobsTriggerCommand(), newJobsQueueCommand())
	return cmd
}

func newJobsTriggerCommand() *cobra.Command {
	var companyID int64

	cmd := &cobra.Command{
		Use:       "trigger <" + jobs.TaskTrialBalanceRefresh + "|" + jobs.TaskGLIntegrity + ">",
		Short:     "Enqueue a ledger job",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{jobs.TaskTrialBalanceRefresh, jobs.TaskGLIntegrity},
		RunE: func(cmd *cobra.Command, args []string) error {
			if companyID < 0 {
				return fmt.Errorf("--company must not be negative, got %d", companyID)
			}
			if _, err := BuildTask(args[0], companyID); err != nil {
				return err
			}
			return withJobsCLI(func(c *JobsCLI) error {
				info, err := c.Trigger(cmd.Context(), args[0], companyID)
				if errors.Is(err, asynq.ErrDuplicateTask) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s already queued\n", args[0])
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&companyID, "company", 0, "company id (0 targets every company)")

	return cmd
}

func newJobsQueueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queue",
		Short: "Show ledger queue counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withJobsCLI(func(c *JobsCLI) error {
				for _, queue := range jobs.Queues() {
					stats, err := c.InspectQueue(cmd.Context(), queue)
					if err != nil {
						return fmt.Errorf("queue %s: %w", queue, err)
					}
					fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
						stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
				}
				return nil
			})
		},
	}
}

func withJobsCLI(fn func(*JobsCLI) error) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c, err := NewJobsCLI(jobs.RedisOpt(cfg.Redis()))
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}
