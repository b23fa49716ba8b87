package journals

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// LineInput describes a journal line for posting request.
type LineInput struct {
	AccountID    int64           `json:"accountId" validate:"required,gt=0"`
	Debit        decimal.Decimal `json:"debit"`
	Credit       decimal.Decimal `json:"credit"`
	PartyID      *int64          `json:"partyId"`
	PartyType    *PartyType      `json:"partyType"`
	CostCenterID *int64          `json:"costCenterId"`
	Narration    string          `json:"narration"`
}

// CreateEntryInput groups fields required to create a journal entry.
type CreateEntryInput struct {
	FiscalYearID int64
	EntryDate    time.Time
	Narration    string
	Status       Status
	SourceType   string
	SourceID     *uuid.UUID
	Lines        []LineInput
}

// Validate checks the fields that do not depend on stored state.
func (in CreateEntryInput) Validate() error {
	if in.EntryDate.IsZero() {
		return errors.New("accounting: entry date required")
	}
	if in.Status != "" && in.Status != StatusDraft && in.Status != StatusPosted {
		return fmt.Errorf("accounting: unknown status %q", in.Status)
	}
	if in.SourceID != nil && in.SourceType == "" {
		return errors.New("accounting: source type required with source id")
	}
	return nil
}

// UpdateEntryInput carries draft edits. Nil Lines keeps the current set.
type UpdateEntryInput struct {
	EntryID   int64
	EntryDate *time.Time
	Narration *string
	Status    *Status
	Lines     []LineInput
}

// ReverseInput wraps parameters for reversal.
type ReverseInput struct {
	EntryID      int64
	ReversalDate *time.Time
	Narration    string
}

// lineTotals validates the structural rules of a line set and returns its totals.
func lineTotals(lines []LineInput) (decimal.Decimal, decimal.Decimal, error) {
	if len(lines) < 2 {
		return decimal.Zero, decimal.Zero, shared.ErrInsufficientLines
	}
	debit, credit := decimal.Zero, decimal.Zero
	for idx, line := range lines {
		if line.AccountID == 0 {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d missing account", shared.ErrInvalidLine, idx+1)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d negative amount", shared.ErrInvalidLine, idx+1)
		}
		if line.Debit.IsPositive() == line.Credit.IsPositive() {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d needs exactly one of debit or credit", shared.ErrInvalidLine, idx+1)
		}
		if line.PartyType != nil && *line.PartyType != PartyCustomer && *line.PartyType != PartyVendor {
			return decimal.Zero, decimal.Zero, fmt.Errorf("%w: line %d unknown party type", shared.ErrInvalidLine, idx+1)
		}
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	if !shared.WithinTolerance(debit, credit) {
		return decimal.Zero, decimal.Zero, fmt.Errorf("%w: debit %s credit %s", shared.ErrUnbalancedEntry, debit.StringFixed(2), credit.StringFixed(2))
	}
	return shared.Round2(debit), shared.Round2(credit), nil
}

func toJournalLines(lines []LineInput) []JournalLine {
	out := make([]JournalLine, 0, len(lines))
	for idx, line := range lines {
		out = append(out, JournalLine{
			AccountID:    line.AccountID,
			DebitAmount:  shared.Round2(line.Debit),
			CreditAmount: shared.Round2(line.Credit),
			PartyID:      line.PartyID,
			PartyType:    line.PartyType,
			CostCenterID: line.CostCenterID,
			Narration:    line.Narration,
			SortOrder:    idx + 1,
		})
	}
	return out
}

func reverseLines(lines []JournalLine) []JournalLine {
	out := make([]JournalLine, 0, len(lines))
	for idx, line := range lines {
		out = append(out, JournalLine{
			AccountID:    line.AccountID,
			DebitAmount:  line.CreditAmount,
			CreditAmount: line.DebitAmount,
			PartyID:      line.PartyID,
			PartyType:    line.PartyType,
			CostCenterID: line.CostCenterID,
			Narration:    line.Narration,
			SortOrder:    idx + 1,
		})
	}
	return out
}

func defaultReversalNarration(narration, number string) string {
	if narration != "" {
		return narration
	}
	return fmt.Sprintf("Reversal of %s", number)
}
