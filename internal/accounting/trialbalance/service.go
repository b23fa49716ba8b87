package trialbalance

import (
	"context"
	"log/slog"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Service computes trial balances and maintains the staleness flag.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// AccountBalances returns posted movement per leaf account.
func (s *Service) AccountBalances(ctx context.Context, companyID int64, filter Filter) ([]AccountBalance, error) {
	if companyID <= 0 {
		return nil, platformshared.ErrTenantRequired
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, shared.ErrInvalidRange
	}
	return s.repo.AccountBalances(ctx, companyID, filter)
}

// Status reports whether the cached trial balance is stale.
func (s *Service) Status(ctx context.Context, tenant platformshared.Tenant) (Staleness, error) {
	if !tenant.Valid() {
		return Staleness{}, platformshared.ErrTenantRequired
	}
	return s.repo.Status(ctx, tenant.CompanyID)
}

// Compute returns the trial balance as of a date, recomputing from posted lines
// unless a result for the current ledger version is cached.
func (s *Service) Compute(ctx context.Context, tenant platformshared.Tenant, asOf time.Time) (TrialBalance, error) {
	if !tenant.Valid() {
		return TrialBalance{}, platformshared.ErrTenantRequired
	}
	asOf = s.asOf(asOf)
	st, err := s.repo.Status(ctx, tenant.CompanyID)
	if err != nil {
		return TrialBalance{}, err
	}
	var tb TrialBalance
	key := s.cache.Key(tenant.CompanyID, st.Version, asOf.Format(shared.DateLayout))
	err = s.cache.FetchJSON(ctx, key, &tb, func(ctx context.Context) (any, error) {
		return s.compute(ctx, tenant.CompanyID, st.Version, asOf)
	})
	return tb, err
}

// Refresh recomputes the trial balance and clears the stale flag when no
// ledger mutation landed during the computation.
func (s *Service) Refresh(ctx context.Context, tenant platformshared.Tenant, asOf time.Time) (TrialBalance, bool, error) {
	if !tenant.Valid() {
		return TrialBalance{}, false, platformshared.ErrTenantRequired
	}
	asOf = s.asOf(asOf)
	st, err := s.repo.Status(ctx, tenant.CompanyID)
	if err != nil {
		return TrialBalance{}, false, err
	}
	tb, err := s.compute(ctx, tenant.CompanyID, st.Version, asOf)
	if err != nil {
		return TrialBalance{}, false, err
	}
	key := s.cache.Key(tenant.CompanyID, st.Version, asOf.Format(shared.DateLayout))
	if err := s.cache.Store(ctx, key, tb); err != nil {
		s.logger.Warn("cache trial balance", slog.Int64("company_id", tenant.CompanyID), slog.Any("error", err))
	}
	cleared, err := s.repo.ClearStale(ctx, tenant.CompanyID, st.Version, s.now().UTC())
	if err != nil {
		return TrialBalance{}, false, err
	}
	s.logger.Info("trial balance refreshed",
		slog.Int64("company_id", tenant.CompanyID),
		slog.Int64("version", st.Version),
		slog.Bool("cleared", cleared),
		slog.Bool("balanced", tb.Balanced),
	)
	return tb, cleared, nil
}

// RefreshStale refreshes up to limit stale companies and returns how many were cleared.
func (s *Service) RefreshStale(ctx context.Context, limit int) (int, error) {
	ids, err := s.repo.StaleCompanies(ctx, limit)
	if err != nil {
		return 0, err
	}
	cleared := 0
	for _, id := range ids {
		_, ok, err := s.Refresh(ctx, platformshared.Tenant{CompanyID: id}, time.Time{})
		if err != nil {
			return cleared, err
		}
		if ok {
			cleared++
		}
	}
	return cleared, nil
}

func (s *Service) compute(ctx context.Context, companyID, version int64, asOf time.Time) (TrialBalance, error) {
	balances, err := s.repo.AccountBalances(ctx, companyID, Filter{To: &asOf, IncludeOpening: true})
	if err != nil {
		return TrialBalance{}, err
	}
	tb := Build(balances)
	tb.CompanyID = companyID
	tb.AsOf = asOf.Format(shared.DateLayout)
	tb.Version = version
	return tb, nil
}

func (s *Service) asOf(asOf time.Time) time.Time {
	if asOf.IsZero() {
		asOf = s.now()
	}
	y, m, d := asOf.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
