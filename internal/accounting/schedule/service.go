package schedule

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// Service resolves catalogs, preferring stored rows over the packaged ones.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Catalog returns the validated catalog for a standard and statement type.
func (s *Service) Catalog(ctx context.Context, standard string, statementType StatementType) (Catalog, error) {
	if standard == "" {
		standard = DefaultStandard
	}
	var items []Mapping
	if s.repo != nil {
		stored, err := s.repo.Load(ctx, standard, statementType)
		if err != nil {
			return Catalog{}, err
		}
		items = stored
	}
	if len(items) == 0 {
		builtin, ok := Builtin(standard, statementType)
		if !ok {
			return Catalog{}, fmt.Errorf("%w: no %s catalog for %s", shared.ErrInvalidCatalog, statementType, standard)
		}
		items = builtin
	}
	return NewCatalog(standard, statementType, items)
}

// Seed stores the packaged catalogs for standard and returns the rows written.
func (s *Service) Seed(ctx context.Context, standard string) (int, error) {
	if standard == "" {
		standard = DefaultStandard
	}
	written := 0
	for _, statementType := range []StatementType{BalanceSheet, ProfitLoss, CashFlow} {
		items, ok := Builtin(standard, statementType)
		if !ok {
			return written, fmt.Errorf("%w: no packaged %s catalog for %s", shared.ErrInvalidCatalog, statementType, standard)
		}
		if _, err := NewCatalog(standard, statementType, items); err != nil {
			return written, err
		}
		if err := s.repo.Replace(ctx, standard, statementType, items); err != nil {
			return written, err
		}
		written += len(items)
		s.logger.Info("schedule catalog seeded", slog.String("standard", standard), slog.String("statement", string(statementType)), slog.Int("rows", len(items)))
	}
	return written, nil
}
