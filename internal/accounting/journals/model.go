package journals

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status enumerates journal lifecycle values.
type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

// PartyType names the sub-ledger a line is tagged with.
type PartyType string

const (
	PartyCustomer PartyType = "customer"
	PartyVendor   PartyType = "vendor"
)

// JournalEntry captures posting metadata.
type JournalEntry struct {
	ID              int64           `json:"id"`
	CompanyID       int64           `json:"companyId"`
	FiscalYearID    int64           `json:"fiscalYearId"`
	EntryNumber     string          `json:"entryNumber"`
	Sequence        int64           `json:"sequence"`
	EntryDate       time.Time       `json:"entryDate"`
	PostingDate     *time.Time      `json:"postingDate,omitempty"`
	Status          Status          `json:"status"`
	Narration       string          `json:"narration"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
	IsReversed      bool            `json:"isReversed"`
	ReversedEntryID *int64          `json:"reversedEntryId,omitempty"`
	ReversalOfID    *int64          `json:"reversalOfId,omitempty"`
	SourceType      string          `json:"sourceType,omitempty"`
	SourceID        *uuid.UUID      `json:"sourceId,omitempty"`
	CreatedBy       *int64          `json:"createdBy,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
	Lines           []JournalLine   `json:"lines,omitempty"`
}

// JournalLine stores debit or credit amount for an account.
type JournalLine struct {
	ID             int64           `json:"id"`
	JournalEntryID int64           `json:"journalEntryId"`
	AccountID      int64           `json:"accountId"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	PartyID        *int64          `json:"partyId,omitempty"`
	PartyType      *PartyType      `json:"partyType,omitempty"`
	CostCenterID   *int64          `json:"costCenterId,omitempty"`
	Narration      string          `json:"narration,omitempty"`
	SortOrder      int             `json:"sortOrder"`
}

// ListFilter narrows journal listings.
type ListFilter struct {
	FiscalYearID *int64
	Status       Status
	From         *time.Time
	To           *time.Time
	SourceType   string
	Limit        int
	Offset       int
}
