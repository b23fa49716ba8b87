package integration

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
)

// Source types stamped on producer entries.
const (
	SourceSalesInvoice    = "sales_invoice"
	SourcePurchaseBill    = "purchase_bill"
	SourcePaymentReceived = "payment_received"
	SourcePaymentMade     = "payment_made"
)

// SourceID derives the stable ledger source id of a producer document, so a
// replayed event maps onto the entry it already created.
func SourceID(sourceType string, documentID int64) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("%s:%d", sourceType, documentID)))
}

func debit(accountID int64, amount decimal.Decimal, narration string) journals.LineInput {
	return journals.LineInput{AccountID: accountID, Debit: amount, Credit: decimal.Zero, Narration: narration}
}

func credit(accountID int64, amount decimal.Decimal, narration string) journals.LineInput {
	return journals.LineInput{AccountID: accountID, Debit: decimal.Zero, Credit: amount, Narration: narration}
}

func withParty(line journals.LineInput, partyType journals.PartyType, partyID int64) journals.LineInput {
	if partyID > 0 {
		pt := partyType
		id := partyID
		line.PartyType = &pt
		line.PartyID = &id
	}
	return line
}

func posted(fiscalYearID int64, date time.Time, narration, sourceType string, documentID int64, lines []journals.LineInput) journals.CreateEntryInput {
	id := SourceID(sourceType, documentID)
	return journals.CreateEntryInput{
		FiscalYearID: fiscalYearID,
		EntryDate:    date,
		Narration:    narration,
		Status:       journals.StatusPosted,
		SourceType:   sourceType,
		SourceID:     &id,
		Lines:        lines,
	}
}

func money(amount decimal.Decimal) decimal.Decimal {
	return shared.Round2(amount)
}
