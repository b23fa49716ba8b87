package statements

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/trialbalance"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// BalanceReader aggregates posted ledger movement per account.
type BalanceReader interface {
	AccountBalances(ctx context.Context, companyID int64, filter trialbalance.Filter) ([]trialbalance.AccountBalance, error)
}

// FiscalYearReader resolves fiscal years for default statement periods.
type FiscalYearReader interface {
	Get(ctx context.Context, tenant platformshared.Tenant, id int64) (fiscalyears.FiscalYear, error)
}

// CatalogProvider supplies validated mapping catalogs.
type CatalogProvider interface {
	Catalog(ctx context.Context, standard string, statementType schedule.StatementType) (schedule.Catalog, error)
}

// Exporter renders a run into a downloadable document.
type Exporter interface {
	Export(run Run) ([]byte, error)
}

// RunRecorder counts generated statements.
type RunRecorder interface {
	RecordStatementRun(statementType string, warnings int)
}

// Service generates, persists and exports financial statements.
type Service struct {
	repo        Repository
	balances    BalanceReader
	fiscalYears FiscalYearReader
	catalogs    CatalogProvider
	exporter    Exporter
	recorder    RunRecorder
	opts        Options
	logger      *slog.Logger
	now         func() time.Time
}

func NewService(repo Repository, balances BalanceReader, fiscalYears FiscalYearReader, catalogs CatalogProvider, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Standard == "" {
		opts.Standard = schedule.DefaultStandard
	}
	return &Service{
		repo:        repo,
		balances:    balances,
		fiscalYears: fiscalYears,
		catalogs:    catalogs,
		exporter:    XLSXExporter{},
		opts:        opts,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithExporter replaces the xlsx exporter.
func (s *Service) WithExporter(exporter Exporter) {
	if exporter != nil {
		s.exporter = exporter
	}
}

// WithRecorder registers a metrics recorder.
func (s *Service) WithRecorder(recorder RunRecorder) {
	s.recorder = recorder
}

// Catalog returns the configured catalog for a statement type.
func (s *Service) Catalog(ctx context.Context, statementType schedule.StatementType) (schedule.Catalog, error) {
	return s.catalogs.Catalog(ctx, s.opts.Standard, statementType)
}

// GenerateBalanceSheet builds the balance sheet as of a date, defaulting to the fiscal year end.
func (s *Service) GenerateBalanceSheet(ctx context.Context, tenant platformshared.Tenant, req BalanceSheetRequest) (Run, error) {
	if !tenant.Valid() {
		return Run{}, platformshared.ErrTenantRequired
	}
	var asOf time.Time
	var fyID *int64
	if req.FiscalYearID > 0 {
		fy, err := s.fiscalYears.Get(ctx, tenant, req.FiscalYearID)
		if err != nil {
			return Run{}, err
		}
		fyID = &fy.ID
		asOf = fy.EndDate
	}
	if req.AsOf != nil {
		asOf = *req.AsOf
	}
	if asOf.IsZero() {
		return Run{}, fmt.Errorf("%w: as-of date or fiscal year required", shared.ErrInvalidRange)
	}
	asOf = dateOnly(asOf)
	catalog, err := s.Catalog(ctx, schedule.BalanceSheet)
	if err != nil {
		return Run{}, err
	}
	balances, err := s.balances.AccountBalances(ctx, tenant.CompanyID, trialbalance.Filter{To: &asOf, IncludeOpening: true})
	if err != nil {
		return Run{}, err
	}
	st, err := BuildBalanceSheet(catalog, balances, s.opts)
	if err != nil {
		return Run{}, err
	}
	st.PeriodEnd = asOf
	return s.persist(ctx, tenant, fyID, st)
}

// GenerateProfitLoss builds the profit and loss statement for a period.
func (s *Service) GenerateProfitLoss(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (Run, error) {
	if !tenant.Valid() {
		return Run{}, platformshared.ErrTenantRequired
	}
	from, to, fyID, err := s.period(ctx, tenant, req)
	if err != nil {
		return Run{}, err
	}
	catalog, err := s.Catalog(ctx, schedule.ProfitLoss)
	if err != nil {
		return Run{}, err
	}
	balances, err := s.balances.AccountBalances(ctx, tenant.CompanyID, trialbalance.Filter{From: &from, To: &to})
	if err != nil {
		return Run{}, err
	}
	st, err := BuildProfitLoss(catalog, balances, s.opts)
	if err != nil {
		return Run{}, err
	}
	st.PeriodStart, st.PeriodEnd = &from, to
	return s.persist(ctx, tenant, fyID, st)
}

// GenerateCashFlow builds the indirect cash flow for a period. Opening and
// period balances load concurrently.
func (s *Service) GenerateCashFlow(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (Run, error) {
	if !tenant.Valid() {
		return Run{}, platformshared.ErrTenantRequired
	}
	from, to, fyID, err := s.period(ctx, tenant, req)
	if err != nil {
		return Run{}, err
	}
	catalog, err := s.Catalog(ctx, schedule.CashFlow)
	if err != nil {
		return Run{}, err
	}
	beforeStart := from.AddDate(0, 0, -1)
	var opening, movement []trialbalance.AccountBalance
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		opening, err = s.balances.AccountBalances(gctx, tenant.CompanyID, trialbalance.Filter{To: &beforeStart, IncludeOpening: true})
		return err
	})
	g.Go(func() error {
		var err error
		movement, err = s.balances.AccountBalances(gctx, tenant.CompanyID, trialbalance.Filter{From: &from, To: &to})
		return err
	})
	if err := g.Wait(); err != nil {
		return Run{}, err
	}
	st, err := BuildCashFlow(catalog, opening, movement, s.opts)
	if err != nil {
		return Run{}, err
	}
	st.PeriodStart, st.PeriodEnd = &from, to
	return s.persist(ctx, tenant, fyID, st)
}

func (s *Service) GetRun(ctx context.Context, tenant platformshared.Tenant, id int64) (Run, error) {
	if !tenant.Valid() {
		return Run{}, platformshared.ErrTenantRequired
	}
	return s.repo.Get(ctx, tenant.CompanyID, id)
}

func (s *Service) ListRuns(ctx context.Context, tenant platformshared.Tenant, filter RunFilter) ([]Run, error) {
	if !tenant.Valid() {
		return nil, platformshared.ErrTenantRequired
	}
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, fmt.Errorf("%w: statement type %q", shared.ErrInvalidCatalog, filter.Type)
	}
	return s.repo.List(ctx, tenant.CompanyID, filter)
}

// ExportRun renders a stored run with the configured exporter.
func (s *Service) ExportRun(ctx context.Context, tenant platformshared.Tenant, id int64) ([]byte, Run, error) {
	run, err := s.GetRun(ctx, tenant, id)
	if err != nil {
		return nil, Run{}, err
	}
	payload, err := s.exporter.Export(run)
	if err != nil {
		return nil, Run{}, fmt.Errorf("statements: export run %d: %w", id, err)
	}
	return payload, run, nil
}

func (s *Service) period(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (time.Time, time.Time, *int64, error) {
	var from, to time.Time
	var fyID *int64
	if req.FiscalYearID > 0 {
		fy, err := s.fiscalYears.Get(ctx, tenant, req.FiscalYearID)
		if err != nil {
			return from, to, nil, err
		}
		fyID = &fy.ID
		from, to = fy.StartDate, fy.EndDate
	}
	if req.From != nil {
		from = *req.From
	}
	if req.To != nil {
		to = *req.To
	}
	if from.IsZero() || to.IsZero() {
		return from, to, nil, fmt.Errorf("%w: period or fiscal year required", shared.ErrInvalidRange)
	}
	from, to = dateOnly(from), dateOnly(to)
	if from.After(to) {
		return from, to, nil, fmt.Errorf("%w: %s after %s", shared.ErrInvalidRange, from.Format(shared.DateLayout), to.Format(shared.DateLayout))
	}
	return from, to, fyID, nil
}

func (s *Service) persist(ctx context.Context, tenant platformshared.Tenant, fyID *int64, st Statement) (Run, error) {
	run := Run{
		CompanyID:    tenant.CompanyID,
		FiscalYearID: fyID,
		GeneratedAt:  s.now().UTC(),
		Statement:    st,
	}
	if tenant.UserID > 0 {
		user := tenant.UserID
		run.GeneratedBy = &user
	}
	stored, err := s.repo.Insert(ctx, run)
	if err != nil {
		return Run{}, err
	}
	if s.recorder != nil {
		s.recorder.RecordStatementRun(string(st.Type), len(st.Warnings))
	}
	s.logger.Info("statement generated",
		slog.Int64("company_id", tenant.CompanyID),
		slog.Int64("run_id", stored.ID),
		slog.String("type", string(st.Type)),
		slog.String("period_end", st.PeriodEnd.Format(shared.DateLayout)),
		slog.Int("warnings", len(st.Warnings)),
	)
	return stored, nil
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
