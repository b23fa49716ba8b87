package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

// Ledger exposes the journal operations producers rely on.
type Ledger interface {
	CreateEntry(ctx context.Context, tenant platformshared.Tenant, input journals.CreateEntryInput) (journals.JournalEntry, error)
	ReverseEntry(ctx context.Context, tenant platformshared.Tenant, input journals.ReverseInput) (journals.JournalEntry, error)
	FindBySource(ctx context.Context, tenant platformshared.Tenant, sourceType string, sourceID uuid.UUID) (journals.JournalEntry, error)
}

// AccountLookup resolves system accounts by code.
type AccountLookup interface {
	FindByCode(ctx context.Context, tenant platformshared.Tenant, code string) (accounts.Account, error)
}

// FiscalYearLookup resolves the fiscal year covering a document date.
type FiscalYearLookup interface {
	FindByDate(ctx context.Context, tenant platformshared.Tenant, date time.Time) (fiscalyears.FiscalYear, error)
}

// SystemAccounts holds the account codes producer entries post against.
type SystemAccounts struct {
	Receivable string `envconfig:"RECEIVABLE" default:"1200"`
	Payable    string `envconfig:"PAYABLE" default:"2100"`
	Sales      string `envconfig:"SALES" default:"4000"`
	Purchases  string `envconfig:"PURCHASES" default:"5000"`
	OutputTax  string `envconfig:"OUTPUT_TAX" default:"2200"`
	InputTax   string `envconfig:"INPUT_TAX" default:"1300"`
	Bank       string `envconfig:"BANK" default:"1100"`
}

// SalesInvoicePosted is raised when an invoice is issued to a customer.
type SalesInvoicePosted struct {
	ID         int64
	Number     string
	CustomerID int64
	Date       time.Time
	Subtotal   decimal.Decimal
	Tax        decimal.Decimal
}

// PurchaseBillPosted is raised when a vendor bill is accepted.
type PurchaseBillPosted struct {
	ID       int64
	Number   string
	VendorID int64
	Date     time.Time
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
}

// PaymentPosted is raised for money received from a customer or paid to a vendor.
type PaymentPosted struct {
	ID      int64
	Number  string
	PartyID int64
	Date    time.Time
	Amount  decimal.Decimal
}

// DocumentCancelled is raised when a producer voids a document already in the ledger.
type DocumentCancelled struct {
	SourceType string
	DocumentID int64
	Date       time.Time
	Reason     string
}

// Hooks turns producer documents into posted ledger entries.
type Hooks struct {
	ledger      Ledger
	accounts    AccountLookup
	fiscalYears FiscalYearLookup
	system      SystemAccounts
	logger      *slog.Logger
}

// NewHooks constructs integration hooks.
func NewHooks(ledger Ledger, accountLookup AccountLookup, fiscalYears FiscalYearLookup, system SystemAccounts, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{ledger: ledger, accounts: accountLookup, fiscalYears: fiscalYears, system: system, logger: logger}
}

func (h *Hooks) resolveAccount(ctx context.Context, tenant platformshared.Tenant, role, code string) (int64, error) {
	if code == "" {
		return 0, fmt.Errorf("%w: no %s account configured", shared.ErrMissingSystemAccount, role)
	}
	acc, err := h.accounts.FindByCode(ctx, tenant, code)
	if errors.Is(err, shared.ErrAccountNotFound) {
		return 0, fmt.Errorf("%w: %s account %q", shared.ErrMissingSystemAccount, role, code)
	}
	if err != nil {
		return 0, err
	}
	return acc.ID, nil
}

func (h *Hooks) post(ctx context.Context, tenant platformshared.Tenant, input journals.CreateEntryInput) (journals.JournalEntry, error) {
	if input.EntryDate.IsZero() {
		return journals.JournalEntry{}, fmt.Errorf("integration: %s date required", input.SourceType)
	}
	fy, err := h.fiscalYears.FindByDate(ctx, tenant, input.EntryDate)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	input.FiscalYearID = fy.ID
	entry, err := h.ledger.CreateEntry(ctx, tenant, input)
	if errors.Is(err, shared.ErrSourceAlreadyLinked) {
		return h.ledger.FindBySource(ctx, tenant, input.SourceType, *input.SourceID)
	}
	if err != nil {
		return journals.JournalEntry{}, err
	}
	h.logger.Info("producer entry posted",
		slog.Int64("company_id", tenant.CompanyID),
		slog.String("source_type", input.SourceType),
		slog.String("entry_number", entry.EntryNumber),
	)
	return entry, nil
}

// HandleSalesInvoice debits receivables with the gross amount and credits
// sales and output tax.
func (h *Hooks) HandleSalesInvoice(ctx context.Context, tenant platformshared.Tenant, evt SalesInvoicePosted) (journals.JournalEntry, error) {
	subtotal, tax := money(evt.Subtotal), money(evt.Tax)
	total := subtotal.Add(tax)
	if !total.IsPositive() {
		return journals.JournalEntry{}, nil
	}
	receivable, err := h.resolveAccount(ctx, tenant, "receivable", h.system.Receivable)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	narration := fmt.Sprintf("Sales Invoice %s", evt.Number)
	lines := []journals.LineInput{
		withParty(debit(receivable, total, narration), journals.PartyCustomer, evt.CustomerID),
	}
	if !subtotal.IsZero() {
		sales, err := h.resolveAccount(ctx, tenant, "sales", h.system.Sales)
		if err != nil {
			return journals.JournalEntry{}, err
		}
		lines = append(lines, credit(sales, subtotal, narration))
	}
	if tax.IsPositive() {
		outputTax, err := h.resolveAccount(ctx, tenant, "output tax", h.system.OutputTax)
		if err != nil {
			return journals.JournalEntry{}, err
		}
		lines = append(lines, credit(outputTax, tax, narration))
	}
	return h.post(ctx, tenant, posted(0, evt.Date, narration, SourceSalesInvoice, evt.ID, lines))
}

// HandlePurchaseBill debits purchases and input tax and credits payables.
func (h *Hooks) HandlePurchaseBill(ctx context.Context, tenant platformshared.Tenant, evt PurchaseBillPosted) (journals.JournalEntry, error) {
	subtotal, tax := money(evt.Subtotal), money(evt.Tax)
	total := subtotal.Add(tax)
	if !total.IsPositive() {
		return journals.JournalEntry{}, nil
	}
	payable, err := h.resolveAccount(ctx, tenant, "payable", h.system.Payable)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	narration := fmt.Sprintf("Purchase Bill %s", evt.Number)
	var lines []journals.LineInput
	if !subtotal.IsZero() {
		purchases, err := h.resolveAccount(ctx, tenant, "purchases", h.system.Purchases)
		if err != nil {
			return journals.JournalEntry{}, err
		}
		lines = append(lines, debit(purchases, subtotal, narration))
	}
	if tax.IsPositive() {
		inputTax, err := h.resolveAccount(ctx, tenant, "input tax", h.system.InputTax)
		if err != nil {
			return journals.JournalEntry{}, err
		}
		lines = append(lines, debit(inputTax, tax, narration))
	}
	lines = append(lines, withParty(credit(payable, total, narration), journals.PartyVendor, evt.VendorID))
	return h.post(ctx, tenant, posted(0, evt.Date, narration, SourcePurchaseBill, evt.ID, lines))
}

// HandlePaymentReceived debits the bank and settles the customer's receivable.
func (h *Hooks) HandlePaymentReceived(ctx context.Context, tenant platformshared.Tenant, evt PaymentPosted) (journals.JournalEntry, error) {
	amount := money(evt.Amount)
	if !amount.IsPositive() {
		return journals.JournalEntry{}, nil
	}
	bank, err := h.resolveAccount(ctx, tenant, "bank", h.system.Bank)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	receivable, err := h.resolveAccount(ctx, tenant, "receivable", h.system.Receivable)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	narration := fmt.Sprintf("Payment Received %s", evt.Number)
	lines := []journals.LineInput{
		debit(bank, amount, narration),
		withParty(credit(receivable, amount, narration), journals.PartyCustomer, evt.PartyID),
	}
	return h.post(ctx, tenant, posted(0, evt.Date, narration, SourcePaymentReceived, evt.ID, lines))
}

// HandlePaymentMade settles the vendor's payable from the bank.
func (h *Hooks) HandlePaymentMade(ctx context.Context, tenant platformshared.Tenant, evt PaymentPosted) (journals.JournalEntry, error) {
	amount := money(evt.Amount)
	if !amount.IsPositive() {
		return journals.JournalEntry{}, nil
	}
	payable, err := h.resolveAccount(ctx, tenant, "payable", h.system.Payable)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	bank, err := h.resolveAccount(ctx, tenant, "bank", h.system.Bank)
	if err != nil {
		return journals.JournalEntry{}, err
	}
	narration := fmt.Sprintf("Payment Made %s", evt.Number)
	lines := []journals.LineInput{
		withParty(debit(payable, amount, narration), journals.PartyVendor, evt.PartyID),
		credit(bank, amount, narration),
	}
	return h.post(ctx, tenant, posted(0, evt.Date, narration, SourcePaymentMade, evt.ID, lines))
}

// ReverseDocument reverses the entry a cancelled document produced. Documents
// that never reached the ledger or are already reversed are left alone.
func (h *Hooks) ReverseDocument(ctx context.Context, tenant platformshared.Tenant, evt DocumentCancelled) (journals.JournalEntry, error) {
	entry, err := h.ledger.FindBySource(ctx, tenant, evt.SourceType, SourceID(evt.SourceType, evt.DocumentID))
	if errors.Is(err, shared.ErrEntryNotFound) {
		return journals.JournalEntry{}, nil
	}
	if err != nil {
		return journals.JournalEntry{}, err
	}
	if entry.IsReversed {
		return journals.JournalEntry{}, nil
	}
	input := journals.ReverseInput{EntryID: entry.ID}
	if !evt.Date.IsZero() {
		date := evt.Date
		input.ReversalDate = &date
	}
	if evt.Reason != "" {
		input.Narration = fmt.Sprintf("Cancelled %s: %s", entry.EntryNumber, evt.Reason)
	}
	reversal, err := h.ledger.ReverseEntry(ctx, tenant, input)
	if errors.Is(err, shared.ErrAlreadyReversed) {
		return journals.JournalEntry{}, nil
	}
	return reversal, err
}
