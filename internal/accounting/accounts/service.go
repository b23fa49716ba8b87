package accounts

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// ChangeNotifier learns about committed changes to balances the trial
// balance reads.
type ChangeNotifier interface {
	LedgerChanged(ctx context.Context, companyID int64) error
}

// Service manages the chart of accounts of each company.
type Service struct {
	repo     Repository
	logger   *slog.Logger
	notifier ChangeNotifier
}

// NewService constructs the account service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// WithNotifier registers a post-commit change listener.
func (s *Service) WithNotifier(n ChangeNotifier) {
	s.notifier = n
}

func (s *Service) Get(ctx context.Context, tenant platformshared.Tenant, id int64) (Account, error) {
	if !tenant.Valid() {
		return Account{}, platformshared.ErrTenantRequired
	}
	return s.repo.Get(ctx, tenant.CompanyID, id)
}

func (s *Service) List(ctx context.Context, tenant platformshared.Tenant) ([]Account, error) {
	if !tenant.Valid() {
		return nil, platformshared.ErrTenantRequired
	}
	return s.repo.List(ctx, tenant.CompanyID)
}

func (s *Service) FindByCode(ctx context.Context, tenant platformshared.Tenant, code string) (Account, error) {
	if !tenant.Valid() {
		return Account{}, platformshared.ErrTenantRequired
	}
	return s.repo.FindByCode(ctx, tenant.CompanyID, code)
}

// Tree returns the hierarchy below parentID, or the whole chart when nil.
func (s *Service) Tree(ctx context.Context, tenant platformshared.Tenant, parentID *int64) ([]Node, error) {
	accounts, err := s.List(ctx, tenant)
	if err != nil {
		return nil, err
	}
	return BuildTree(accounts, parentID), nil
}

// CreateAccount inserts an account, promoting its parent to a group node.
func (s *Service) CreateAccount(ctx context.Context, tenant platformshared.Tenant, input CreateAccountInput) (Account, error) {
	if !tenant.Valid() {
		return Account{}, platformshared.ErrTenantRequired
	}
	input.Normalize()
	if err := input.Validate(); err != nil {
		return Account{}, err
	}
	var created Account
	stale := !input.OpeningBalance.IsZero()
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.CodeExists(ctx, tenant.CompanyID, input.Code)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", shared.ErrDuplicateCode, input.Code)
		}
		acc := Account{
			CompanyID:          tenant.CompanyID,
			Code:               input.Code,
			Name:               input.Name,
			Type:               input.Type,
			IsGroup:            input.IsGroup,
			Level:              1,
			MappingCode:        input.MappingCode,
			CashFlowClass:      input.CashFlowClass,
			OpeningBalance:     input.OpeningBalance,
			OpeningBalanceSide: input.OpeningBalanceSide,
			IsActive:           true,
		}
		if input.ParentID != nil {
			parent, err := tx.GetForUpdate(ctx, tenant.CompanyID, *input.ParentID)
			if err != nil {
				return err
			}
			if !parent.IsGroup {
				posted, err := tx.HasPostings(ctx, parent.ID)
				if err != nil {
					return err
				}
				if posted {
					return fmt.Errorf("%w: %s", shared.ErrParentHasPostings, parent.Code)
				}
				if !parent.OpeningBalance.IsZero() {
					return fmt.Errorf("%w: %s", shared.ErrParentHasOpening, parent.Code)
				}
				if err := tx.SetGroup(ctx, parent.ID, true); err != nil {
					return err
				}
			}
			parentID := parent.ID
			acc.ParentID = &parentID
			acc.Level = parent.Level + 1
		}
		inserted, err := tx.Insert(ctx, acc)
		if err != nil {
			return err
		}
		created = inserted
		if stale {
			return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	if stale {
		s.afterCommit(ctx, tenant)
	}
	s.logger.Info("account created", slog.Int64("company_id", tenant.CompanyID), slog.String("code", created.Code), slog.Int("level", created.Level))
	return created, nil
}

// UpdateAccount changes the mutable attributes of an account.
func (s *Service) UpdateAccount(ctx context.Context, tenant platformshared.Tenant, id int64, input UpdateAccountInput) (Account, error) {
	if !tenant.Valid() {
		return Account{}, platformshared.ErrTenantRequired
	}
	var updated Account
	stale := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, tenant.CompanyID, id)
		if err != nil {
			return err
		}
		next, err := input.Apply(current)
		if err != nil {
			return err
		}
		if err := tx.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		stale = current.AffectsBalances(next)
		if stale {
			return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
		}
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	if stale {
		s.afterCommit(ctx, tenant)
	}
	return updated, nil
}

// DeleteAccount removes a leaf without postings. The parent reverts to a leaf
// when its last child goes.
func (s *Service) DeleteAccount(ctx context.Context, tenant platformshared.Tenant, id int64) error {
	if !tenant.Valid() {
		return platformshared.ErrTenantRequired
	}
	stale := false
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		acc, err := tx.GetForUpdate(ctx, tenant.CompanyID, id)
		if err != nil {
			return err
		}
		children, err := tx.CountChildren(ctx, acc.ID)
		if err != nil {
			return err
		}
		if children > 0 {
			return fmt.Errorf("%w: %s", shared.ErrHasChildren, acc.Code)
		}
		posted, err := tx.HasPostings(ctx, acc.ID)
		if err != nil {
			return err
		}
		if posted {
			return fmt.Errorf("%w: %s", shared.ErrAccountInUse, acc.Code)
		}
		if err := tx.Delete(ctx, acc.ID); err != nil {
			return err
		}
		if !acc.OpeningBalance.IsZero() {
			stale = true
			if err := tx.MarkTrialBalanceStale(ctx, tenant.CompanyID); err != nil {
				return err
			}
		}
		if acc.ParentID == nil {
			return nil
		}
		siblings, err := tx.CountChildren(ctx, *acc.ParentID)
		if err != nil {
			return err
		}
		if siblings == 0 {
			return tx.SetGroup(ctx, *acc.ParentID, false)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if stale {
		s.afterCommit(ctx, tenant)
	}
	s.logger.Info("account deleted", slog.Int64("company_id", tenant.CompanyID), slog.Int64("account_id", id))
	return nil
}

func (s *Service) afterCommit(ctx context.Context, tenant platformshared.Tenant) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.LedgerChanged(ctx, tenant.CompanyID); err != nil {
		s.logger.Warn("account change notify", slog.Int64("company_id", tenant.CompanyID), slog.Any("error", err))
	}
}
