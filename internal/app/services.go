package app

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/statements"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
	"github.com/odyssey-erp/odyssey-books/internal/integration"
	"github.com/odyssey-erp/odyssey-books/internal/observability"
)

// Services holds the ledger services shared by the API, the CLI and the worker.
type Services struct {
	Accounts     *accounts.Service
	FiscalYears  *fiscalyears.Service
	Journals     *journals.Service
	Integrity    *journals.IntegrityReader
	TrialBalance *trialbalance.Service
	Schedule     *schedule.Service
	Statements   *statements.Service
	Hooks        *integration.Hooks
}

// ServiceDeps are the infrastructure handles services are built on. Enqueuer
// may be nil, in which case ledger changes only mark the trial balance stale.
type ServiceDeps struct {
	Config   *Config
	Logger   *slog.Logger
	Pool     *pgxpool.Pool
	Redis    *redis.Client
	Metrics  *observability.Metrics
	Enqueuer trialbalance.RefreshEnqueuer
}

// NewServices wires repositories into services.
func NewServices(deps ServiceDeps) *Services {
	cfg := deps.Config
	logger := deps.Logger

	accountService := accounts.NewService(accounts.NewRepository(deps.Pool), logger)
	fiscalYearService := fiscalyears.NewService(fiscalyears.NewRepository(deps.Pool), logger)
	scheduleService := schedule.NewService(schedule.NewRepository(deps.Pool), logger)

	tbCache := trialbalance.NewCache(deps.Redis, cfg.TBCacheTTL)
	tbService := trialbalance.NewService(trialbalance.NewRepository(deps.Pool), tbCache, logger)

	journalService := journals.NewService(journals.NewRepository(deps.Pool), journals.Config{EntryPrefix: cfg.EntryPrefix}, logger)
	var enqueuer trialbalance.RefreshEnqueuer
	if cfg.TBAutoRefresh {
		enqueuer = deps.Enqueuer
	}
	notifier := trialbalance.NewNotifier(tbCache, enqueuer, logger)
	journalService.WithNotifier(notifier)
	accountService.WithNotifier(notifier)

	statementService := statements.NewService(
		statements.NewRepository(deps.Pool),
		tbService,
		fiscalYearService,
		scheduleService,
		statements.Options{Standard: cfg.GAAPStandard, Strict: cfg.StatementStrict},
		logger,
	)
	if deps.Metrics != nil {
		journalService.WithRecorder(deps.Metrics)
		statementService.WithRecorder(deps.Metrics)
	}

	return &Services{
		Accounts:     accountService,
		FiscalYears:  fiscalYearService,
		Journals:     journalService,
		Integrity:    journals.NewIntegrityReader(deps.Pool),
		TrialBalance: tbService,
		Schedule:     scheduleService,
		Statements:   statementService,
		Hooks:        integration.NewHooks(journalService, accountService, fiscalYearService, cfg.SystemAccounts, logger),
	}
}
