package accounts

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	"github.com/odyssey-erp/odyssey-books/internal/platform/httpx"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type accountService interface {
	Get(ctx context.Context, tenant platformshared.Tenant, id int64) (Account, error)
	List(ctx context.Context, tenant platformshared.Tenant) ([]Account, error)
	Tree(ctx context.Context, tenant platformshared.Tenant, parentID *int64) ([]Node, error)
	CreateAccount(ctx context.Context, tenant platformshared.Tenant, input CreateAccountInput) (Account, error)
	UpdateAccount(ctx context.Context, tenant platformshared.Tenant, id int64, input UpdateAccountInput) (Account, error)
	DeleteAccount(ctx context.Context, tenant platformshared.Tenant, id int64) error
}

// Handler serves the chart of accounts API.
type Handler struct {
	service accountService
	logger  *slog.Logger
}

func NewHandler(logger *slog.Logger, service accountService) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	accounts, err := h.service.List(r.Context(), tenant)
	if err != nil {
		h.fail(w, "list accounts", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *Handler) Tree(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	parentID, err := shared.QueryID(r, "parent_id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	nodes, err := h.service.Tree(r.Context(), tenant, parentID)
	if err != nil {
		h.fail(w, "account tree", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tree": nodes})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	acc, err := h.service.Get(r.Context(), tenant, id)
	if err != nil {
		h.fail(w, "get account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	var input CreateAccountInput
	if err := httpx.DecodeAndValidate(r, &input); err != nil {
		shared.RespondError(w, err)
		return
	}
	acc, err := h.service.CreateAccount(r.Context(), tenant, input)
	if err != nil {
		h.fail(w, "create account", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acc)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	var input UpdateAccountInput
	if err := httpx.DecodeAndValidate(r, &input); err != nil {
		shared.RespondError(w, err)
		return
	}
	acc, err := h.service.UpdateAccount(r.Context(), tenant, id, input)
	if err != nil {
		h.fail(w, "update account", err)
		return
	}
	httpx.JSON(w, http.StatusOK, acc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	tenant, ok := shared.RequireTenant(w, r)
	if !ok {
		return
	}
	id, err := shared.URLID(r, "id")
	if err != nil {
		shared.RespondError(w, err)
		return
	}
	if err := h.service.DeleteAccount(r.Context(), tenant, id); err != nil {
		h.fail(w, "delete account", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Warn(op, slog.Any("error", err))
	shared.RespondError(w, err)
}
