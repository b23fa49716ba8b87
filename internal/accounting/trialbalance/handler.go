package trialbalance

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

type trialBalanceService interface {
	Compute(ctx context.Context, tenant platformshared.Tenant, asOf time.Time) (TrialBalance, error)
	Status(ctx context.Context, tenant platformshared.Tenant) (Staleness, error)
	Refresh(ctx context.Context, tenant platformshared.Tenant, asOf time.Time) (TrialBalance, bool, error)
}

// Handler serves the trial balance API.
type Handler struct {
	service trialBalanceService
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service trialBalanceService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers trial balance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.compute)
	r.Get("/status", h.status)
	r.Post("/refresh", h.refresh)
}

func (h *Handler) compute(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	asOf, err := shared.QueryDate(r, "as_of")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	tb, err := h.service.Compute(r.Context(), tenant, deref(asOf))
	if err != nil {
		h.logger.Warn("compute trial balance", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) status(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	st, err := h.service.Status(r.Context(), tenant)
	if err != nil {
		h.logger.Warn("trial balance status", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, st)
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	asOf, err := shared.QueryDate(r, "as_of")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	tb, cleared, err := h.service.Refresh(r.Context(), tenant, deref(asOf))
	if err != nil {
		h.logger.Warn("refresh trial balance", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"trialBalance": tb, "cleared": cleared})
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
