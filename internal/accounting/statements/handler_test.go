package statements

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/odyssey-books/internal/accounting/schedule"
	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type stubStatementService struct {
	period PeriodRequest
	asOf   BalanceSheetRequest
	err    error
}

func (s *stubStatementService) GenerateBalanceSheet(ctx context.Context, tenant platformshared.Tenant, req BalanceSheetRequest) (Run, error) {
	s.asOf = req
	return Run{ID: 1, Statement: Statement{Type: schedule.BalanceSheet}}, s.err
}

func (s *stubStatementService) GenerateProfitLoss(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (Run, error) {
	s.period = req
	return Run{ID: 2, Statement: Statement{Type: schedule.ProfitLoss}}, s.err
}

func (s *stubStatementService) GenerateCashFlow(ctx context.Context, tenant platformshared.Tenant, req PeriodRequest) (Run, error) {
	s.period = req
	return Run{ID: 3, Statement: Statement{Type: schedule.CashFlow}}, s.err
}

func (s *stubStatementService) GetRun(ctx context.Context, tenant platformshared.Tenant, id int64) (Run, error) {
	return Run{ID: id}, s.err
}

func (s *stubStatementService) ListRuns(ctx context.Context, tenant platformshared.Tenant, filter RunFilter) ([]Run, error) {
	return []Run{{ID: 1}}, s.err
}

func (s *stubStatementService) ExportRun(ctx context.Context, tenant platformshared.Tenant, id int64) ([]byte, Run, error) {
	return []byte("xlsx"), Run{ID: id, Statement: Statement{Type: schedule.BalanceSheet}}, s.err
}

func (s *stubStatementService) Catalog(ctx context.Context, statementType schedule.StatementType) (schedule.Catalog, error) {
	items, _ := schedule.Builtin(schedule.DefaultStandard, statementType)
	return schedule.NewCatalog(schedule.DefaultStandard, statementType, items)
}

func newTestRouter(svc statementService) http.Handler {
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if req.Header.Get("X-Company-ID") == "1" {
				req = req.WithContext(platformshared.ContextWithTenant(req.Context(), tenant))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Route("/statements", h.MountRoutes)
	return r
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Company-ID", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGeneratesStatements(t *testing.T) {
	svc := &stubStatementService{}
	router := newTestRouter(svc)

	rec := doRequest(router, http.MethodPost, "/statements/profit-loss", `{"fiscalYearId":3,"from":"2024-07-01"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, int64(3), svc.period.FiscalYearID)
	require.Equal(t, "2024-07-01", svc.period.From.Format(shared.DateLayout))
	require.Nil(t, svc.period.To)

	rec = doRequest(router, http.MethodPost, "/statements/balance-sheet", `{"asOf":"2025-03-31"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "balance_sheet", body["statementType"])
	require.Equal(t, "2025-03-31", svc.asOf.AsOf.Format(shared.DateLayout))

	rec = doRequest(router, http.MethodPost, "/statements/cash-flow", `{"from":"31-03-2025"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerMapsStatementErrors(t *testing.T) {
	svc := &stubStatementService{err: shared.ErrIncompleteMapping}
	router := newTestRouter(svc)
	rec := doRequest(router, http.MethodPost, "/statements/balance-sheet", `{"fiscalYearId":3}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	svc.err = shared.ErrRunNotFound
	rec = doRequest(router, http.MethodGet, "/statements/runs/4", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/statements/runs", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerExportsWorkbook(t *testing.T) {
	router := newTestRouter(&stubStatementService{})
	rec := doRequest(router, http.MethodGet, "/statements/runs/4/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, XLSXContentType, rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "balance_sheet_4_")
	require.Equal(t, "xlsx", rec.Body.String())
}

func TestHandlerServesCatalog(t *testing.T) {
	router := newTestRouter(&stubStatementService{})
	rec := doRequest(router, http.MethodGet, "/statements/catalog/cash_flow", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "CF_CLOSING_CASH")

	rec = doRequest(router, http.MethodGet, "/statements/catalog/ledger", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
