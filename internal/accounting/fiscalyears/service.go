package fiscalyears

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Service manages fiscal years and their lock state.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *Service) Get(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error) {
	if !tenant.Valid() {
		return FiscalYear{}, platformshared.ErrTenantRequired
	}
	return s.repo.Get(ctx, tenant.CompanyID, id)
}

func (s *Service) List(ctx context.Context, tenant platformshared.Tenant) ([]FiscalYear, error) {
	if !tenant.Valid() {
		return nil, platformshared.ErrTenantRequired
	}
	return s.repo.List(ctx, tenant.CompanyID)
}

func (s *Service) Current(ctx context.Context, tenant platformshared.Tenant) (FiscalYear, error) {
	if !tenant.Valid() {
		return FiscalYear{}, platformshared.ErrTenantRequired
	}
	return s.repo.Current(ctx, tenant.CompanyID)
}

func (s *Service) FindByDate(ctx context.Context, tenant platformshared.Tenant, date time.Time) (FiscalYear, error) {
	if !tenant.Valid() {
		return FiscalYear{}, platformshared.ErrTenantRequired
	}
	return s.repo.FindByDate(ctx, tenant.CompanyID, date)
}

// Create registers a fiscal year that does not overlap existing ones.
func (s *Service) Create(ctx context.Context, tenant platformshared.Tenant, input CreateInput) (FiscalYear, error) {
	if !tenant.Valid() {
		return FiscalYear{}, platformshared.ErrTenantRequired
	}
	if err := input.Validate(); err != nil {
		return FiscalYear{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = DeriveName(input.StartDate, input.EndDate)
	}
	var created FiscalYear
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		overlap, err := tx.HasOverlap(ctx, tenant.CompanyID, input.StartDate, input.EndDate)
		if err != nil {
			return err
		}
		if overlap {
			return fmt.Errorf("%w: %s", shared.ErrFiscalYearOverlap, name)
		}
		if input.MakeCurrent {
			if err := tx.ClearCurrent(ctx, tenant.CompanyID); err != nil {
				return err
			}
		}
		inserted, err := tx.Insert(ctx, FiscalYear{
			CompanyID: tenant.CompanyID,
			Name:      name,
			StartDate: truncateDay(input.StartDate),
			EndDate:   truncateDay(input.EndDate),
			IsCurrent: input.MakeCurrent,
		})
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.logger.Info("fiscal year created", slog.Int64("company_id", tenant.CompanyID), slog.String("name", created.Name))
	return created, nil
}

// SetCurrent makes id the single current fiscal year of the company.
func (s *Service) SetCurrent(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error) {
	if !tenant.Valid() {
		return FiscalYear{}, platformshared.ErrTenantRequired
	}
	var current FiscalYear
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.GetForUpdate(ctx, tenant.CompanyID, id)
		if err != nil {
			return err
		}
		if err := tx.ClearCurrent(ctx, tenant.CompanyID); err != nil {
			return err
		}
		if err := tx.MarkCurrent(ctx, fy.ID); err != nil {
			return err
		}
		fy.IsCurrent = true
		current = fy
		return nil
	})
	return current, err
}

// Lock freezes the fiscal year against ledger mutations.
func (s *Service) Lock(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error) {
	return s.setLock(ctx, tenant, id, true)
}

// Unlock reopens a locked fiscal year.
func (s *Service) Unlock(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error) {
	return s.setLock(ctx, tenant, id, false)
}

func (s *Service) setLock(ctx context.Context, tenant platformshared.Tenant, id int64, locked bool) (FiscalYear, error) {
	if !tenant.Valid() {
		return FiscalYear{}, platformshared.ErrTenantRequired
	}
	var out FiscalYear
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.GetForUpdate(ctx, tenant.CompanyID, id)
		if err != nil {
			return err
		}
		var by *int64
		var at *time.Time
		if locked {
			ts := s.now().UTC()
			by, at = lockedBy(tenant), &ts
		}
		if err := tx.SetLock(ctx, fy.ID, locked, by, at); err != nil {
			return err
		}
		fy.IsLocked, fy.LockedBy, fy.LockedAt = locked, by, at
		out = fy
		return nil
	})
	if err != nil {
		return FiscalYear{}, err
	}
	s.logger.Info("fiscal year lock changed", slog.Int64("company_id", tenant.CompanyID), slog.String("name", out.Name), slog.Bool("locked", locked))
	return out, nil
}

// lockedBy leaves locked_by NULL for system callers.
func lockedBy(tenant platformshared.Tenant) *int64 {
	if tenant.UserID == 0 {
		return nil
	}
	id := tenant.UserID
	return &id
}
