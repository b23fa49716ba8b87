package journals

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type journalService interface {
	GetEntry(ctx context.Context, tenant platformshared.Tenant, id int64) (JournalEntry, error)
	ListEntries(ctx context.Context, tenant platformshared.Tenant, filter ListFilter) ([]JournalEntry, int, error)
	CreateEntry(ctx context.Context, tenant platformshared.Tenant, input CreateEntryInput) (JournalEntry, error)
	PostEntry(ctx context.Context, tenant platformshared.Tenant, id int64) (JournalEntry, error)
	ReverseEntry(ctx context.Context, tenant platformshared.Tenant, input ReverseInput) (JournalEntry, error)
	UpdateEntry(ctx context.Context, tenant platformshared.Tenant, input UpdateEntryInput) (JournalEntry, error)
	DeleteEntry(ctx context.Context, tenant platformshared.Tenant, id int64) error
}

// Handler exposes journal endpoints.
type Handler struct {
	service journalService
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service journalService) *Handler {
	return &Handler{logger: logger, service: service}
}

type createRequest struct {
	FiscalYearID int64       `json:"fiscalYearId" validate:"required,gt=0"`
	EntryDate    string      `json:"entryDate" validate:"required,datetime=2006-01-02"`
	Narration    string      `json:"narration" validate:"max=500"`
	Status       Status      `json:"status" validate:"omitempty,oneof=draft posted"`
	SourceType   string      `json:"sourceType" validate:"max=64"`
	SourceID     *uuid.UUID  `json:"sourceId"`
	Lines        []LineInput `json:"lines" validate:"required,dive"`
}

type updateRequest struct {
	EntryDate *string     `json:"entryDate" validate:"omitempty,datetime=2006-01-02"`
	Narration *string     `json:"narration" validate:"omitempty,max=500"`
	Status    *Status     `json:"status" validate:"omitempty,oneof=draft posted"`
	Lines     []LineInput `json:"lines" validate:"omitempty,dive"`
}

type reverseRequest struct {
	ReversalDate *string `json:"reversalDate" validate:"omitempty,datetime=2006-01-02"`
	Narration    string  `json:"narration" validate:"max=500"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	filter, page, err := parseListFilter(r)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	entries, total, err := h.service.ListEntries(r.Context(), tenant, filter)
	if err != nil {
		h.fail(w, "list journals", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": platformshared.NewPagination(page.Page, page.PerPage, total),
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.service.GetEntry(r.Context(), tenant, id)
	if err != nil {
		h.fail(w, "get journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req createRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	date, _ := time.Parse(shared.DateLayout, req.EntryDate)
	entry, err := h.service.CreateEntry(r.Context(), tenant, CreateEntryInput{
		FiscalYearID: req.FiscalYearID,
		EntryDate:    date,
		Narration:    req.Narration,
		Status:       req.Status,
		SourceType:   req.SourceType,
		SourceID:     req.SourceID,
		Lines:        req.Lines,
	})
	if err != nil {
		h.fail(w, "create journal", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	var req updateRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	input := UpdateEntryInput{EntryID: id, Narration: req.Narration, Status: req.Status, Lines: req.Lines}
	if req.EntryDate != nil {
		date, _ := time.Parse(shared.DateLayout, *req.EntryDate)
		input.EntryDate = &date
	}
	entry, err := h.service.UpdateEntry(r.Context(), tenant, input)
	if err != nil {
		h.fail(w, "update journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) post(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	entry, err := h.service.PostEntry(r.Context(), tenant, id)
	if err != nil {
		h.fail(w, "post journal", err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) reverse(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	var req reverseRequest
	if r.ContentLength != 0 {
		if err := httpx.DecodeAndValidate(r, &req); err != nil {
			shared.RespondError(w, err)
			return
		}
	}
	input := ReverseInput{EntryID: id, Narration: req.Narration}
	if req.ReversalDate != nil {
		date, _ := time.Parse(shared.DateLayout, *req.ReversalDate)
		input.ReversalDate = &date
	}
	entry, err := h.service.ReverseEntry(r.Context(), tenant, input)
	if err != nil {
		h.fail(w, "reverse journal", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	if err := h.service.DeleteEntry(r.Context(), tenant, id); err != nil {
		h.fail(w, "delete journal", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	shared.RespondError(w, err)
}

// parseListFilter reads journal list filters and page/per_page paging.
func parseListFilter(r *http.Request) (ListFilter, platformshared.Pagination, error) {
	var filter ListFilter
	var err error
	if filter.FiscalYearID, err = shared.QueryID(r, "fiscal_year_id"); err != nil {
		return filter, platformshared.Pagination{}, err
	}
	if filter.From, err = shared.QueryDate(r, "from"); err != nil {
		return filter, platformshared.Pagination{}, err
	}
	if filter.To, err = shared.QueryDate(r, "to"); err != nil {
		return filter, platformshared.Pagination{}, err
	}
	q := r.URL.Query()
	switch status := Status(q.Get("status")); status {
	case "", StatusDraft, StatusPosted:
		filter.Status = status
	default:
		return filter, platformshared.Pagination{}, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, status)
	}
	filter.SourceType = q.Get("source_type")
	page, perPage := 1, 50
	if raw := q.Get("page"); raw != "" {
		if page, err = strconv.Atoi(raw); err != nil || page <= 0 {
			return filter, platformshared.Pagination{}, fmt.Errorf("%w: invalid page", httpx.ErrValidation)
		}
	}
	if raw := q.Get("per_page"); raw != "" {
		if perPage, err = strconv.Atoi(raw); err != nil || perPage <= 0 || perPage > 500 {
			return filter, platformshared.Pagination{}, fmt.Errorf("%w: per_page must be 1-500", httpx.ErrValidation)
		}
	}
	paging := platformshared.NewPagination(page, perPage, 0)
	filter.Limit = paging.PerPage
	filter.Offset = paging.Offset()
	return filter, paging, nil
}
