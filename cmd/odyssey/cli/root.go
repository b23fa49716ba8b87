package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/app"
	"github.com/odyssey-erp/odyssey-books/internal/platform/cache"
	"github.com/odyssey-erp/odyssey-books/internal/platform/db"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "odyssey",
		Short:   "Multi-tenant double-entry ledger and financial statements",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCatalogCommand(),
		newFiscalYearCommand(),
		newTrialBalanceCommand(),
		newGLCommand(),
		newJobsCommand(),
	)

	return rootCmd
}

// environment holds the infrastructure a command runs against.
type environment struct {
	cfg    *app.Config
	logger *slog.Logger
	pool   *pgxpool.Pool
	redis  *redis.Client
}

// openEnvironment loads configuration and connects to Postgres. Redis is
// optional: when unreachable, commands run with trial balance caching disabled.
func openEnvironment(ctx context.Context) (*environment, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.Pool("cli"))
	if err != nil {
		return nil, err
	}

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Warn("redis unavailable, trial balance cache disabled", slog.Any("error", err))
	}

	return &environment{cfg: cfg, logger: logger, pool: pool, redis: redisClient}, nil
}

func (e *environment) services() *app.Services {
	return app.NewServices(app.ServiceDeps{
		Config: e.cfg,
		Logger: e.logger,
		Pool:   e.pool,
		Redis:  e.redis,
	})
}

func (e *environment) Close() {
	if e.redis != nil {
		if err := e.redis.Close(); err != nil {
			e.logger.Warn("redis close", slog.Any("error", err))
		}
	}
	e.pool.Close()
}

// tenantFlags registers the company and user flags shared by tenant-scoped commands.
func tenantFlags(cmd *cobra.Command, tenant *platformshared.Tenant) {
	cmd.Flags().Int64Var(&tenant.CompanyID, "company", 0, "company id (required)")
	cmd.Flags().Int64Var(&tenant.UserID, "user", 0, "acting user id")
	_ = cmd.MarkFlagRequired("company")
}

func requireTenant(tenant platformshared.Tenant) error {
	if !tenant.Valid() {
		return fmt.Errorf("--company must be positive, got %d", tenant.CompanyID)
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(shared.DateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
	}
	return parsed, nil
}
