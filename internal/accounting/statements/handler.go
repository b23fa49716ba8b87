package statements

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type statementService interface {
	GenerateBalanceSheet(ctx context.Context, tenant platformshared.Tenant, req BalanceSheetRequest) (Run, error)
	GenerateProfitLoss(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (Run, error)
	GenerateCashFlow(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (Run, error)
	GetRun(ctx context.Context, tenant platformshared.Tenant, id int64) (Run, error)
	ListRuns(ctx context.Context, tenant platformshared.Tenant, filter RunFilter) ([]Run, error)
	ExportRun(ctx context.Context, tenant platformshared.Tenant, id int64) ([]byte, Run, error)
	Catalog(ctx context.Context, statementType schedule.StatementType) (schedule.Catalog, error)
}

// Handler serves the statement API.
type Handler struct {
	service statementService
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service statementService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers statement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/balance-sheet", h.balanceSheet)
	r.Post("/profit-loss", h.profitLoss)
	r.Post("/cash-flow", h.cashFlow)
	r.Get("/runs", h.listRuns)
	r.Get("/runs/{id}", h.getRun)
	r.Get("/runs/{id}/export", h.exportRun)
	r.Get("/catalog/{type}", h.catalog)
}

type balanceSheetRequest struct {
	FiscalYearID int64  `json:"fiscalYearId" validate:"gte=0"`
	AsOf         string `json:"asOf" validate:"omitempty,datetime=2006-01-02"`
}

type periodRequest struct {
	FiscalYearID int64  `json:"fiscalYearId" validate:"gte=0"`
	From         string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To           string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (p periodRequest) toRequest() PeriodRequest {
	return PeriodRequest{FiscalYearID: p.FiscalYearID, From: parseDate(p.From), To: parseDate(p.To)}
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req balanceSheetRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	run, err := h.service.GenerateBalanceSheet(r.Context(), tenant, BalanceSheetRequest{FiscalYearID: req.FiscalYearID, AsOf: parseDate(req.AsOf)})
	h.respondRun(w, "balance sheet", run, err)
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req periodRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	run, err := h.service.GenerateProfitLoss(r.Context(), tenant, req.toRequest())
	h.respondRun(w, "profit and loss", run, err)
}

func (h *Handler) cashFlow(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var req periodRequest
	if err := httpx.DecodeAndValidate(r, &req); err != nil {
		shared.RespondError(w, err)
		return
	}
	run, err := h.service.GenerateCashFlow(r.Context(), tenant, req.toRequest())
	h.respondRun(w, "cash flow", run, err)
}

func (h *Handler) respondRun(w http.ResponseWriter, op string, run Run, err error) {
	if err != nil {
		h.logger.Warn("generate "+op, slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, run)
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	filter := RunFilter{Type: schedule.StatementType(r.URL.Query().Get("type"))}
	fyID, err := shared.QueryID(r, "fiscal_year_id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	filter.FiscalYearID = fyID
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			shared.RespondError(w, fmt.Errorf("%w: invalid limit", httpx.ErrValidation))
			return
		}
		filter.Limit = limit
	}
	runs, err := h.service.ListRuns(r.Context(), tenant, filter)
	if err != nil {
		h.logger.Warn("list statement runs", slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	run, err := h.service.GetRun(r.Context(), tenant, id)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, run)
}

func (h *Handler) exportRun(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	payload, run, err := h.service.ExportRun(r.Context(), tenant, id)
	if err != nil {
		h.logger.Warn("export statement run", slog.Int64("run_id", id), slog.Any("error", err))
		shared.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", XLSXContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, ExportFilename(run)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (h *Handler) catalog(w http.ResponseWriter, r *http.Request) {
	statementType := schedule.StatementType(chi.URLParam(r, "type"))
	if !statementType.Valid() {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "unknown statement type")
		return
	}
	catalog, err := h.service.Catalog(r.Context(), statementType)
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"standard": catalog.Standard, "items": catalog.Items()})
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(shared.DateLayout, raw)
	if err != nil {
		return nil
	}
	return &parsed
}
