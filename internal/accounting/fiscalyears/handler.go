package fiscalyears

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type fiscalYearService interface {
	Get(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error)
	List(ctx context.Context, tenant platformshared.Tenant) ([]FiscalYear, error)
	Current(ctx context.Context, tenant platformshared.Tenant) (FiscalYear, error)
	Create(ctx context.Context, tenant platformshared.Tenant, input CreateInput) (FiscalYear, error)
	SetCurrent(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error)
	Lock(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error)
	Unlock(ctx context.Context, tenant platformshared.Tenant, id int64) (FiscalYear, error)
}

// Handler serves the fiscal year API.
type Handler struct {
	service fiscalYearService
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service fiscalYearService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers fiscal year routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/current", h.current)
	r.Get("/{id}", h.get)
	r.Post("/{id}/current", h.transition(h.service.SetCurrent))
	r.Post("/{id}/lock", h.transition(h.service.Lock))
	r.Post("/{id}/unlock", h.transition(h.service.Unlock))
}

type createRequest struct {
	Name        string `json:"name" validate:"max=32"`
	StartDate   string `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string `json:"endDate" validate:"required,datetime=2006-01-02"`
	MakeCurrent bool   `json:"makeCurrent"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	years, err := h.service.List(r.Context(), tenant)
	if err != nil {
		h.fail(w, "list fiscal years", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"fiscalYears": years})
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	fy, err := h.service.Current(r.Context(), tenant)
	if err != nil {
		h.fail(w, "current fiscal year", err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
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
	fy, err := h.service.Get(r.Context(), tenant, id)
	if err != nil {
		h.fail(w, "get fiscal year", err)
		return
	}
	httpx.JSON(w, http.StatusOK, fy)
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
	start, _ := time.Parse(shared.DateLayout, req.StartDate)
	end, _ := time.Parse(shared.DateLayout, req.EndDate)
	fy, err := h.service.Create(r.Context(), tenant, CreateInput{Name: req.Name, StartDate: start, EndDate: end, MakeCurrent: req.MakeCurrent})
	if err != nil {
		h.fail(w, "create fiscal year", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, fy)
}

func (h *Handler) transition(fn func(context.Context, platformshared.Tenant, int64) (FiscalYear, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant, ok := shared.RequireTenant(w, r)
		if !ok {
			return
		}
		id, err := shared.URLID(r, "id")
		if err != nil {
			shared.RespondError(w, err)
			return
		}
		fy, err := fn(r.Context(), tenant, id)
		if err != nil {
			h.fail(w, "fiscal year transition", err)
			return
		}
		httpx.JSON(w, http.StatusOK, fy)
	}
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	shared.RespondError(w, err)
}
