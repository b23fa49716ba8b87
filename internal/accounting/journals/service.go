package journals

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// ChangeNotifier learns about committed ledger mutations.
type ChangeNotifier interface {
	LedgerChanged(ctx context.Context, companyID int64) error
}

// ActionRecorder counts ledger mutations by action.
type ActionRecorder interface {
	RecordLedgerAction(action string)
}

// Config tunes entry numbering.
type Config struct {
	EntryPrefix string
}

type Service struct {
	repo     Repository
	cfg      Config
	logger   *slog.Logger
	notifier ChangeNotifier
	recorder ActionRecorder
	now      func() time.Time
}

func NewService(repo Repository, cfg Config, logger *slog.Logger) *Service {
	if cfg.EntryPrefix == "" {
		cfg.EntryPrefix = DefaultEntryPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cfg: cfg, logger: logger, now: time.Now}
}

func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// WithNotifier registers a post-commit change listener.
func (s *Service) WithNotifier(n ChangeNotifier) {
	s.notifier = n
}

// WithRecorder registers a metrics recorder.
func (s *Service) WithRecorder(r ActionRecorder) {
	s.recorder = r
}

func (s *Service) GetEntry(ctx context.Context, tenant platformshared.Tenant, id int64) (JournalEntry, error) {
	if !tenant.Valid() {
		return JournalEntry{}, platformshared.ErrTenantRequired
	}
	return s.repo.Get(ctx, tenant.CompanyID, id)
}

func (s *Service) ListEntries(ctx context.Context, tenant platformshared.Tenant, filter ListFilter) ([]JournalEntry, int, error) {
	if !tenant.Valid() {
		return nil, 0, platformshared.ErrTenantRequired
	}
	return s.repo.List(ctx, tenant.CompanyID, filter)
}

func (s *Service) FindBySource(ctx context.Context, tenant platformshared.Tenant, sourceType string, sourceID uuid.UUID) (JournalEntry, error) {
	if !tenant.Valid() {
		return JournalEntry{}, platformshared.ErrTenantRequired
	}
	return s.repo.FindBySource(ctx, tenant.CompanyID, sourceType, sourceID)
}

// CreateEntry validates and stores a balanced entry, numbering it within its
// fiscal year. Header, lines and the trial balance flag commit together.
func (s *Service) CreateEntry(ctx context.Context, tenant platformshared.Tenant, input CreateEntryInput) (JournalEntry, error) {
	if !tenant.Valid() {
		return JournalEntry{}, platformshared.ErrTenantRequired
	}
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	status := input.Status
	if status == "" {
		status = StatusDraft
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		fy, err := tx.GetFiscalYear(ctx, tenant.CompanyID, input.FiscalYearID)
		if err != nil {
			return err
		}
		if err := checkWritable(fy, input.EntryDate); err != nil {
			return err
		}
		debit, credit, err := lineTotals(input.Lines)
		if err != nil {
			return err
		}
		if err := checkAccounts(ctx, tx, tenant.CompanyID, input.Lines); err != nil {
			return err
		}
		seq, err := tx.NextSequence(ctx, tenant.CompanyID, fy.ID)
		if err != nil {
			return err
		}
		header := JournalEntry{
			CompanyID:    tenant.CompanyID,
			FiscalYearID: fy.ID,
			EntryNumber:  FormatEntryNumber(s.cfg.EntryPrefix, fy.Name, seq),
			Sequence:     seq,
			EntryDate:    dateOnly(input.EntryDate),
			Status:       status,
			Narration:    input.Narration,
			TotalDebit:   debit,
			TotalCredit:  credit,
			SourceType:   input.SourceType,
			SourceID:     input.SourceID,
			CreatedBy:    actor(tenant),
		}
		if status == StatusPosted {
			posting := header.EntryDate
			header.PostingDate = &posting
		}
		inserted, err := tx.InsertEntry(ctx, header)
		if err != nil {
			return err
		}
		inserted.Lines, err = tx.InsertLines(ctx, inserted.ID, toJournalLines(input.Lines))
		if err != nil {
			return err
		}
		entry = inserted
		return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterCommit(ctx, tenant, "create", entry)
	return entry, nil
}

// PostEntry moves a draft to posted, dating the posting at the entry date.
func (s *Service) PostEntry(ctx context.Context, tenant platformshared.Tenant, id int64) (JournalEntry, error) {
	if !tenant.Valid() {
		return JournalEntry{}, platformshared.ErrTenantRequired
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, tenant.CompanyID, id)
		if err != nil {
			return err
		}
		if current.Status == StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyPosted, current.EntryNumber)
		}
		fy, err := tx.GetFiscalYear(ctx, tenant.CompanyID, current.FiscalYearID)
		if err != nil {
			return err
		}
		if fy.IsLocked {
			return fmt.Errorf("%w: %s", shared.ErrFiscalYearLocked, fy.Name)
		}
		posting := current.EntryDate
		current.Status = StatusPosted
		current.PostingDate = &posting
		if err := tx.UpdateEntry(ctx, current); err != nil {
			return err
		}
		entry = current
		return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterCommit(ctx, tenant, "post", entry)
	return entry, nil
}

// ReverseEntry books a posted mirror of a posted entry and links the pair.
func (s *Service) ReverseEntry(ctx context.Context, tenant platformshared.Tenant, input ReverseInput) (JournalEntry, error) {
	if !tenant.Valid() {
		return JournalEntry{}, platformshared.ErrTenantRequired
	}
	if input.EntryID == 0 {
		return JournalEntry{}, errors.New("accounting: entry id required")
	}
	var reversal JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		original, err := tx.GetEntryForUpdate(ctx, tenant.CompanyID, input.EntryID)
		if err != nil {
			return err
		}
		if original.Status != StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrNotPosted, original.EntryNumber)
		}
		if original.IsReversed {
			return fmt.Errorf("%w: %s", shared.ErrAlreadyReversed, original.EntryNumber)
		}
		date := original.EntryDate
		var fy fiscalyears.FiscalYear
		if input.ReversalDate != nil {
			date = dateOnly(*input.ReversalDate)
			fy, err = tx.FindFiscalYearByDate(ctx, tenant.CompanyID, date)
		} else {
			fy, err = tx.GetFiscalYear(ctx, tenant.CompanyID, original.FiscalYearID)
		}
		if err != nil {
			return err
		}
		if err := checkWritable(fy, date); err != nil {
			return err
		}
		seq, err := tx.NextSequence(ctx, tenant.CompanyID, fy.ID)
		if err != nil {
			return err
		}
		originalID := original.ID
		posting := date
		header := JournalEntry{
			CompanyID:    tenant.CompanyID,
			FiscalYearID: fy.ID,
			EntryNumber:  FormatEntryNumber(s.cfg.EntryPrefix, fy.Name, seq),
			Sequence:     seq,
			EntryDate:    date,
			PostingDate:  &posting,
			Status:       StatusPosted,
			Narration:    defaultReversalNarration(input.Narration, original.EntryNumber),
			TotalDebit:   original.TotalCredit,
			TotalCredit:  original.TotalDebit,
			ReversalOfID: &originalID,
			SourceType:   original.SourceType,
			SourceID:     original.SourceID,
			CreatedBy:    actor(tenant),
		}
		inserted, err := tx.InsertEntry(ctx, header)
		if err != nil {
			return err
		}
		inserted.Lines, err = tx.InsertLines(ctx, inserted.ID, reverseLines(original.Lines))
		if err != nil {
			return err
		}
		if err := tx.MarkReversed(ctx, original.ID, inserted.ID); err != nil {
			return err
		}
		reversal = inserted
		return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterCommit(ctx, tenant, "reverse", reversal)
	return reversal, nil
}

// UpdateEntry edits a draft. A supplied line set replaces the stored one and
// is validated like a new entry.
func (s *Service) UpdateEntry(ctx context.Context, tenant platformshared.Tenant, input UpdateEntryInput) (JournalEntry, error) {
	if !tenant.Valid() {
		return JournalEntry{}, platformshared.ErrTenantRequired
	}
	if input.Status != nil && *input.Status != StatusDraft && *input.Status != StatusPosted {
		return JournalEntry{}, fmt.Errorf("accounting: unknown status %q", *input.Status)
	}
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, tenant.CompanyID, input.EntryID)
		if err != nil {
			return err
		}
		fy, err := tx.GetFiscalYear(ctx, tenant.CompanyID, current.FiscalYearID)
		if err != nil {
			return err
		}
		if fy.IsLocked {
			return fmt.Errorf("%w: %s", shared.ErrFiscalYearLocked, fy.Name)
		}
		if current.Status == StatusPosted {
			return fmt.Errorf("%w: %s", shared.ErrCannotEditPosted, current.EntryNumber)
		}
		if input.EntryDate != nil {
			current.EntryDate = dateOnly(*input.EntryDate)
		}
		if err := checkWritable(fy, current.EntryDate); err != nil {
			return err
		}
		if input.Narration != nil {
			current.Narration = *input.Narration
		}
		if input.Lines != nil {
			debit, credit, err := lineTotals(input.Lines)
			if err != nil {
				return err
			}
			if err := checkAccounts(ctx, tx, tenant.CompanyID, input.Lines); err != nil {
				return err
			}
			if err := tx.DeleteLines(ctx, current.ID); err != nil {
				return err
			}
			current.Lines, err = tx.InsertLines(ctx, current.ID, toJournalLines(input.Lines))
			if err != nil {
				return err
			}
			current.TotalDebit, current.TotalCredit = debit, credit
		}
		if input.Status != nil && *input.Status == StatusPosted {
			posting := current.EntryDate
			current.Status = StatusPosted
			current.PostingDate = &posting
		}
		if err := tx.UpdateEntry(ctx, current); err != nil {
			return err
		}
		entry = current
		return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
	})
	if err != nil {
		return JournalEntry{}, err
	}
	s.afterCommit(ctx, tenant, "update", entry)
	return entry, nil
}

// DeleteEntry removes a draft and its lines.
func (s *Service) DeleteEntry(ctx context.Context, tenant platformshared.Tenant, id int64) error {
	if !tenant.Valid() {
		return platformshared.ErrTenantRequired
	}
	var deleted JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetEntryForUpdate(ctx, tenant.CompanyID, id)
		if err != nil {
			return err
		}
		fy, err := tx.GetFiscalYear(ctx, tenant.CompanyID, current.FiscalYearID)
		if err != nil {
			return err
		}
		if fy.IsLocked {
			return fmt.Errorf("%w: %s", shared.ErrFiscalYearLocked, fy.Name)
		}
		if current.Status != StatusDraft {
			return fmt.Errorf("%w: %s", shared.ErrCannotDeletePosted, current.EntryNumber)
		}
		if err := tx.DeleteEntry(ctx, current.ID); err != nil {
			return err
		}
		deleted = current
		return tx.MarkTrialBalanceStale(ctx, tenant.CompanyID)
	})
	if err != nil {
		return err
	}
	s.afterCommit(ctx, tenant, "delete", deleted)
	return nil
}

func (s *Service) afterCommit(ctx context.Context, tenant platformshared.Tenant, action string, entry JournalEntry) {
	if s.recorder != nil {
		s.recorder.RecordLedgerAction(action)
	}
	if s.notifier != nil {
		if err := s.notifier.LedgerChanged(ctx, tenant.CompanyID); err != nil {
			s.logger.Warn("ledger change notify", slog.Int64("company_id", tenant.CompanyID), slog.Any("error", err))
		}
	}
	s.logger.Info("journal "+action,
		slog.Int64("company_id", tenant.CompanyID),
		slog.Int64("entry_id", entry.ID),
		slog.String("number", entry.EntryNumber),
		slog.String("status", string(entry.Status)),
	)
}

func checkWritable(fy fiscalyears.FiscalYear, date time.Time) error {
	if fy.IsLocked {
		return fmt.Errorf("%w: %s", shared.ErrFiscalYearLocked, fy.Name)
	}
	if !fy.Contains(date) {
		return fmt.Errorf("%w: %s not in %s", shared.ErrDateOutOfRange, date.Format(shared.DateLayout), fy.Name)
	}
	return nil
}

func checkAccounts(ctx context.Context, tx TxRepository, companyID int64, lines []LineInput) error {
	ids := make([]int64, 0, len(lines))
	seen := make(map[int64]bool, len(lines))
	for _, line := range lines {
		if !seen[line.AccountID] {
			seen[line.AccountID] = true
			ids = append(ids, line.AccountID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	found, err := tx.GetAccounts(ctx, companyID, ids)
	if err != nil {
		return err
	}
	for _, id := range ids {
		acc, ok := found[id]
		if !ok {
			return fmt.Errorf("%w: id %d", shared.ErrAccountNotFound, id)
		}
		if err := postable(acc); err != nil {
			return err
		}
	}
	return nil
}

func postable(acc accounts.Account) error {
	if acc.Postable() {
		return nil
	}
	if acc.IsGroup {
		return fmt.Errorf("%w: %s", shared.ErrAccountIsGroup, acc.Code)
	}
	return fmt.Errorf("%w: %s", shared.ErrAccountInactive, acc.Code)
}

func actor(tenant platformshared.Tenant) *int64 {
	if tenant.UserID == 0 {
		return nil
	}
	id := tenant.UserID
	return &id
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
