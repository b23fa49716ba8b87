package journals

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

	"github.com/odyssey-erp/odyssey-books/internal/accounting/shared"
	platformshared "github.com/odyssey-erp/odyssey-books/internal/shared"
)

type stubJournalService struct {
	created  CreateEntryInput
	reversed ReverseInput
	listed   ListFilter
	err      error
}

func (s *stubJournalService) GetEntry(ctx context.Context, tenant platformshared.Tenant, id int64) (JournalEntry, error) {
	return JournalEntry{ID: id, CompanyID: tenant.CompanyID}, s.err
}

func (s *stubJournalService) ListEntries(ctx context.Context, tenant platformshared.Tenant, filter ListFilter) ([]JournalEntry, int, error) {
	s.listed = filter
	return []JournalEntry{{ID: 1}}, 120, s.err
}

func (s *stubJournalService) CreateEntry(ctx context.Context, tenant platformshared.Tenant, input CreateEntryInput) (JournalEntry, error) {
	s.created = input
	if s.err != nil {
		return JournalEntry{}, s.err
	}
	return JournalEntry{ID: 5, EntryNumber: "JV/2024-25/0001"}, nil
}

func (s *stubJournalService) PostEntry(ctx context.Context, tenant platformshared.Tenant, id int64) (JournalEntry, error) {
	return JournalEntry{ID: id, Status: StatusPosted}, s.err
}

func (s *stubJournalService) ReverseEntry(ctx context.Context, tenant platformshared.Tenant, input ReverseInput) (JournalEntry, error) {
	s.reversed = input
	return JournalEntry{ID: 6}, s.err
}

func (s *stubJournalService) UpdateEntry(ctx context.Context, tenant platformshared.Tenant, input UpdateEntryInput) (JournalEntry, error) {
	return JournalEntry{ID: input.EntryID}, s.err
}

func (s *stubJournalService) DeleteEntry(ctx context.Context, tenant platformshared.Tenant, id int64) error {
	return s.err
}

func newTestRouter(svc journalService) http.Handler {
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
	r.Route("/journals", h.MountRoutes)
	return r
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("X-Company-ID", "1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateJournalHandler(t *testing.T) {
	svc := &stubJournalService{}
	router := newTestRouter(svc)
	body := `{"fiscalYearId":1,"entryDate":"2024-05-01","narration":"rent","lines":[{"accountId":10,"debit":"100.50"},{"accountId":20,"credit":100.5}]}`

	rec := doRequest(router, http.MethodPost, "/journals/", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, date(2024, 5, 1), svc.created.EntryDate)
	require.Len(t, svc.created.Lines, 2)
	require.Equal(t, "100.5", svc.created.Lines[0].Debit.String())
	require.True(t, svc.created.Lines[1].Credit.Equal(svc.created.Lines[0].Debit))

	var out JournalEntry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Equal(t, "JV/2024-25/0001", out.EntryNumber)
}

func TestCreateJournalHandlerValidation(t *testing.T) {
	router := newTestRouter(&stubJournalService{})
	rec := doRequest(router, http.MethodPost, "/journals/", `{"fiscalYearId":1,"entryDate":"01/05/2024","lines":[]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestJournalHandlerMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{shared.ErrUnbalancedEntry, http.StatusUnprocessableEntity},
		{shared.ErrFiscalYearLocked, http.StatusConflict},
		{shared.ErrEntryNotFound, http.StatusNotFound},
	}
	for _, tc := range cases {
		router := newTestRouter(&stubJournalService{err: tc.err})
		rec := doRequest(router, http.MethodPost, "/journals/3/post", "")
		require.Equal(t, tc.code, rec.Code, tc.err.Error())
	}
}

func TestReverseJournalHandler(t *testing.T) {
	svc := &stubJournalService{}
	router := newTestRouter(svc)

	rec := doRequest(router, http.MethodPost, "/journals/4/reverse", `{"reversalDate":"2025-04-02"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, int64(4), svc.reversed.EntryID)
	require.NotNil(t, svc.reversed.ReversalDate)
	require.Equal(t, date(2025, 4, 2), *svc.reversed.ReversalDate)

	rec = doRequest(router, http.MethodPost, "/journals/4/reverse", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Nil(t, svc.reversed.ReversalDate)
}

func TestJournalHandlerRequiresTenant(t *testing.T) {
	router := newTestRouter(&stubJournalService{})
	req := httptest.NewRequest(http.MethodGet, "/journals/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListJournalHandlerRejectsBadStatus(t *testing.T) {
	router := newTestRouter(&stubJournalService{})
	rec := doRequest(router, http.MethodGet, "/journals/?status=void", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = doRequest(router, http.MethodGet, "/journals/?status=posted&from=2024-04-01", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/journals/?per_page=0", "")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestListJournalHandlerPaginates(t *testing.T) {
	svc := &stubJournalService{}
	router := newTestRouter(svc)

	rec := doRequest(router, http.MethodGet, "/journals/?page=3&per_page=25", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 25, svc.listed.Limit)
	require.Equal(t, 50, svc.listed.Offset)

	var body struct {
		Entries    []JournalEntry `json:"entries"`
		Pagination struct {
			Page       int `json:"page"`
			PerPage    int `json:"perPage"`
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	require.Equal(t, 3, body.Pagination.Page)
	require.Equal(t, 120, body.Pagination.Total)
	require.Equal(t, 5, body.Pagination.TotalPages)
}
