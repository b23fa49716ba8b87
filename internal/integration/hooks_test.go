package integration

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/accounts"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/fiscalyears"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
	_ "github.com/odyssey-erp/odyssey-books/testing"
)

var tenant = platformshared.Tenant{CompanyID: 1, UserID: 3}

// fakeLedger enforces source uniqueness the way the journal store does.
type fakeLedger struct {
	entries  []journals.JournalEntry
	reversed []journals.ReverseInput
}

func (l *fakeLedger) CreateEntry(ctx context.Context, tenant platformshared.Tenant, input journals.CreateEntryInput) (journals.JournalEntry, error) {
	for _, e := range l.entries {
		if e.SourceID != nil && *e.SourceID == *input.SourceID && e.SourceType == input.SourceType {
			return journals.JournalEntry{}, shared.ErrSourceAlreadyLinked
		}
	}
	entry := journals.JournalEntry{
		ID:           int64(len(l.entries) + 1),
		CompanyID:    tenant.CompanyID,
		FiscalYearID: input.FiscalYearID,
		EntryNumber:  journals.FormatEntryNumber("JV", "2024-25", int64(len(l.entries)+1)),
		EntryDate:    input.EntryDate,
		Status:       input.Status,
		SourceType:   input.SourceType,
		SourceID:     input.SourceID,
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
	}
	for _, line := range input.Lines {
		entry.TotalDebit = entry.TotalDebit.Add(line.Debit)
		entry.TotalCredit = entry.TotalCredit.Add(line.Credit)
		entry.Lines = append(entry.Lines, journals.JournalLine{
			AccountID:    line.AccountID,
			DebitAmount:  line.Debit,
			CreditAmount: line.Credit,
			PartyID:      line.PartyID,
			PartyType:    line.PartyType,
		})
	}
	l.entries = append(l.entries, entry)
	return entry, nil
}

func (l *fakeLedger) ReverseEntry(ctx context.Context, tenant platformshared.Tenant, input journals.ReverseInput) (journals.JournalEntry, error) {
	l.reversed = append(l.reversed, input)
	for i := range l.entries {
		if l.entries[i].ID == input.EntryID {
			l.entries[i].IsReversed = true
		}
	}
	return journals.JournalEntry{ID: 100 + input.EntryID}, nil
}

func (l *fakeLedger) FindBySource(ctx context.Context, tenant platformshared.Tenant, sourceType string, sourceID uuid.UUID) (journals.JournalEntry, error) {
	for _, e := range l.entries {
		if e.SourceType == sourceType && e.SourceID != nil && *e.SourceID == sourceID {
			return e, nil
		}
	}
	return journals.JournalEntry{}, shared.ErrEntryNotFound
}

type fakeAccounts map[string]int64

func (f fakeAccounts) FindByCode(ctx context.Context, tenant platformshared.Tenant, code string) (accounts.Account, error) {
	id, ok := f[code]
	if !ok {
		return accounts.Account{}, shared.ErrAccountNotFound
	}
	return accounts.Account{ID: id, CompanyID: tenant.CompanyID, Code: code}, nil
}

type fakeFiscalYears struct{}

func (fakeFiscalYears) FindByDate(ctx context.Context, tenant platformshared.Tenant, date time.Time) (fiscalyears.FiscalYear, error) {
	fy := fiscalyears.FiscalYear{
		ID:        9,
		Name:      "2024-25",
		StartDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
	}
	if !fy.Contains(date) {
		return fiscalyears.FiscalYear{}, shared.ErrFiscalYearNotFound
	}
	return fy, nil
}

var system = SystemAccounts{
	Receivable: "1200",
	Payable:    "2100",
	Sales:      "4000",
	Purchases:  "5000",
	OutputTax:  "2200",
	InputTax:   "1300",
	Bank:       "1100",
}

func newHooks(chart fakeAccounts) (*Hooks, *fakeLedger) {
	ledger := &fakeLedger{}
	return NewHooks(ledger, chart, fakeFiscalYears{}, system, slog.New(slog.NewTextHandler(io.Discard, nil))), ledger
}

func fullChart() fakeAccounts {
	return fakeAccounts{"1100": 11, "1200": 12, "1300": 13, "2100": 21, "2200": 22, "4000": 40, "5000": 50}
}

var invoiceDate = time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC)

func TestSalesInvoicePostsGrossReceivable(t *testing.T) {
	hooks, _ := newHooks(fullChart())
	entry, err := hooks.HandleSalesInvoice(context.Background(), tenant, SalesInvoicePosted{
		ID: 7, Number: "INV-007", CustomerID: 55, Date: invoiceDate,
		Subtotal: decimal.RequireFromString("1000"), Tax: decimal.RequireFromString("180"),
	})
	require.NoError(t, err)
	require.Equal(t, journals.StatusPosted, entry.Status)
	require.Equal(t, int64(9), entry.FiscalYearID)
	require.Equal(t, SourceSalesInvoice, entry.SourceType)
	require.Equal(t, SourceID(SourceSalesInvoice, 7), *entry.SourceID)
	require.True(t, entry.TotalDebit.Equal(entry.TotalCredit))
	require.Len(t, entry.Lines, 3)
	require.Equal(t, int64(12), entry.Lines[0].AccountID)
	require.True(t, decimal.RequireFromString("1180").Equal(entry.Lines[0].DebitAmount))
	require.Equal(t, journals.PartyCustomer, *entry.Lines[0].PartyType)
	require.Equal(t, int64(55), *entry.Lines[0].PartyID)
	require.Equal(t, int64(22), entry.Lines[2].AccountID)
}

func TestProducerReplayReturnsExistingEntry(t *testing.T) {
	hooks, ledger := newHooks(fullChart())
	evt := PurchaseBillPosted{ID: 4, Number: "BILL-4", VendorID: 8, Date: invoiceDate, Subtotal: decimal.RequireFromString("200")}
	first, err := hooks.HandlePurchaseBill(context.Background(), tenant, evt)
	require.NoError(t, err)
	second, err := hooks.HandlePurchaseBill(context.Background(), tenant, evt)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, ledger.entries, 1)
	require.Len(t, first.Lines, 2)
	require.Equal(t, journals.PartyVendor, *first.Lines[1].PartyType)
}

func TestMissingSystemAccountFailsLoudly(t *testing.T) {
	chart := fullChart()
	delete(chart, "2200")
	hooks, ledger := newHooks(chart)
	_, err := hooks.HandleSalesInvoice(context.Background(), tenant, SalesInvoicePosted{
		ID: 1, Date: invoiceDate, Subtotal: decimal.NewFromInt(100), Tax: decimal.NewFromInt(18),
	})
	require.ErrorIs(t, err, shared.ErrMissingSystemAccount)
	require.Empty(t, ledger.entries)

	// untaxed invoices never need the tax account
	_, err = hooks.HandleSalesInvoice(context.Background(), tenant, SalesInvoicePosted{
		ID: 2, Date: invoiceDate, Subtotal: decimal.NewFromInt(100),
	})
	require.NoError(t, err)
}

func TestPaymentsSettleThroughBank(t *testing.T) {
	hooks, ledger := newHooks(fullChart())
	ctx := context.Background()
	_, err := hooks.HandlePaymentReceived(ctx, tenant, PaymentPosted{ID: 1, Number: "RCPT-1", PartyID: 55, Date: invoiceDate, Amount: decimal.NewFromInt(300)})
	require.NoError(t, err)
	_, err = hooks.HandlePaymentMade(ctx, tenant, PaymentPosted{ID: 1, Number: "PAY-1", PartyID: 8, Date: invoiceDate, Amount: decimal.NewFromInt(120)})
	require.NoError(t, err)
	require.Len(t, ledger.entries, 2)
	require.Equal(t, int64(11), ledger.entries[0].Lines[0].AccountID)
	require.Equal(t, int64(11), ledger.entries[1].Lines[1].AccountID)
	require.NotEqual(t, *ledger.entries[0].SourceID, *ledger.entries[1].SourceID)

	entry, err := hooks.HandlePaymentMade(ctx, tenant, PaymentPosted{ID: 2, Date: invoiceDate, Amount: decimal.Zero})
	require.NoError(t, err)
	require.Zero(t, entry.ID)
}

func TestProducerDateOutsideFiscalYears(t *testing.T) {
	hooks, _ := newHooks(fullChart())
	_, err := hooks.HandlePaymentReceived(context.Background(), tenant, PaymentPosted{ID: 1, Date: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC), Amount: decimal.NewFromInt(5)})
	require.ErrorIs(t, err, shared.ErrFiscalYearNotFound)
}

func TestReverseDocumentIsIdempotent(t *testing.T) {
	hooks, ledger := newHooks(fullChart())
	ctx := context.Background()
	entry, err := hooks.HandleSalesInvoice(ctx, tenant, SalesInvoicePosted{ID: 3, Date: invoiceDate, Subtotal: decimal.NewFromInt(50)})
	require.NoError(t, err)

	cancel := DocumentCancelled{SourceType: SourceSalesInvoice, DocumentID: 3, Date: invoiceDate.AddDate(0, 0, 5), Reason: "customer returned goods"}
	reversal, err := hooks.ReverseDocument(ctx, tenant, cancel)
	require.NoError(t, err)
	require.Equal(t, 100+entry.ID, reversal.ID)
	require.Len(t, ledger.reversed, 1)
	require.Contains(t, ledger.reversed[0].Narration, "customer returned goods")

	again, err := hooks.ReverseDocument(ctx, tenant, cancel)
	require.NoError(t, err)
	require.Zero(t, again.ID)
	require.Len(t, ledger.reversed, 1)

	none, err := hooks.ReverseDocument(ctx, tenant, DocumentCancelled{SourceType: SourceSalesInvoice, DocumentID: 99})
	require.NoError(t, err)
	require.Zero(t, none.ID)
}

func TestTaxOnlyDocumentsSkipTheSubtotalLine(t *testing.T) {
	chart := fullChart()
	delete(chart, "4000")
	delete(chart, "5000")
	hooks, _ := newHooks(chart)
	ctx := context.Background()

	invoice, err := hooks.HandleSalesInvoice(ctx, tenant, SalesInvoicePosted{
		ID: 21, Number: "INV-021", CustomerID: 55, Date: invoiceDate,
		Subtotal: decimal.Zero, Tax: decimal.RequireFromString("18"),
	})
	require.NoError(t, err)
	require.Len(t, invoice.Lines, 2)
	require.Equal(t, int64(12), invoice.Lines[0].AccountID)
	require.Equal(t, int64(22), invoice.Lines[1].AccountID)
	require.True(t, invoice.TotalDebit.Equal(decimal.RequireFromString("18")))

	bill, err := hooks.HandlePurchaseBill(ctx, tenant, PurchaseBillPosted{
		ID: 22, Number: "BILL-022", VendorID: 8, Date: invoiceDate,
		Subtotal: decimal.Zero, Tax: decimal.RequireFromString("36"),
	})
	require.NoError(t, err)
	require.Len(t, bill.Lines, 2)
	require.Equal(t, int64(13), bill.Lines[0].AccountID)
	require.True(t, bill.Lines[0].DebitAmount.Equal(decimal.RequireFromString("36")))
	require.Equal(t, int64(21), bill.Lines[1].AccountID)
}
