package integration

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/journals"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type producerHooks interface {
	HandleSalesInvoice(ctx context.Context, tenant platformshared.Tenant, evt SalesInvoicePosted) (journals.JournalEntry, error)
	HandlePurchaseBill(ctx context.Context, tenant platformshared.Tenant, evt PurchaseBillPosted) (journals.JournalEntry, error)
	HandlePaymentReceived(ctx context.Context, tenant platformshared.Tenant, evt PaymentPosted) (journals.JournalEntry, error)
	HandlePaymentMade(ctx context.Context, tenant platformshared.Tenant, evt PaymentPosted) (journals.JournalEntry, error)
	ReverseDocument(ctx context.Context, tenant platformshared.Tenant, evt DocumentCancelled) (journals.JournalEntry, error)
}

// Handler accepts producer events over HTTP for collaborators running out of process.
type Handler struct {
	hooks  producerHooks
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger, hooks producerHooks) *Handler {
	return &Handler{logger: logger, hooks: hooks}
}

// MountRoutes registers producer event routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales-invoices", h.salesInvoice)
	r.Post("/purchase-bills", h.purchaseBill)
	r.Post("/payments-received", h.paymentReceived)
	r.Post("/payments-made", h.paymentMade)
	r.Post("/cancellations", h.cancellation)
}

type invoiceRequest struct {
	ID       int64           `json:"id" validate:"required,gt=0"`
	Number   string          `json:"number" validate:"required,max=64"`
	PartyID  int64           `json:"partyId" validate:"gte=0"`
	Date     string          `json:"date" validate:"required,datetime=2006-01-02"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
}

type paymentRequest struct {
	ID      int64           `json:"id" validate:"required,gt=0"`
	Number  string          `json:"number" validate:"required,max=64"`
	PartyID int64           `json:"partyId" validate:"gte=0"`
	Date    string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount  decimal.Decimal `json:"amount"`
}

type cancellationRequest struct {
	SourceType string `json:"sourceType" validate:"required,oneof=sales_invoice purchase_bill payment_received payment_made"`
	DocumentID int64  `json:"documentId" validate:"required,gt=0"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Reason     string `json:"reason" validate:"max=255"`
}

func (h *Handler) salesInvoice(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.hooks.HandleSalesInvoice(r.Context(), tenant, SalesInvoicePosted{
		ID: req.ID, Number: req.Number, CustomerID: req.PartyID, Date: wireDate(req.Date), Subtotal: req.Subtotal, Tax: req.Tax,
	})
	h.respond(w, SourceSalesInvoice, entry, err)
}

func (h *Handler) purchaseBill(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req invoiceRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.hooks.HandlePurchaseBill(r.Context(), tenant, PurchaseBillPosted{
		ID: req.ID, Number: req.Number, VendorID: req.PartyID, Date: wireDate(req.Date), Subtotal: req.Subtotal, Tax: req.Tax,
	})
	h.respond(w, SourcePurchaseBill, entry, err)
}

func (h *Handler) paymentReceived(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.hooks.HandlePaymentReceived(r.Context(), tenant, req.event())
	h.respond(w, SourcePaymentReceived, entry, err)
}

func (h *Handler) paymentMade(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req paymentRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.hooks.HandlePaymentMade(r.Context(), tenant, req.event())
	h.respond(w, SourcePaymentMade, entry, err)
}

func (h *Handler) cancellation(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req cancellationRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.hooks.ReverseDocument(r.Context(), tenant, DocumentCancelled{
		SourceType: req.SourceType, DocumentID: req.DocumentID, Date: wireDate(req.Date), Reason: req.Reason,
	})
	h.respond(w, req.SourceType+" cancellation", entry, err)
}

func (p paymentRequest) event() PaymentPosted {
	return PaymentPosted{ID: p.ID, Number: p.Number, PartyID: p.PartyID, Date: wireDate(p.Date), Amount: p.Amount}
}

// respond answers 204 when the event produced no entry (zero amount or nothing to reverse).
func (h *Handler) respond(w http.ResponseWriter, source string, entry journals.JournalEntry, err error) {
	if err != nil {
		h.logger.Warn("producer event", slog.String("source", source), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	if entry.ID == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

// wireDate parses a date already checked by the validator.
func wireDate(raw string) time.Time {
	parsed, _ := time.Parse(shared.DateLayout, raw)
	return parsed
}
