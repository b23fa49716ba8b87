package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"gte=1"`
}

func TestDecodeAndValidate(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"cash","count":2}`))
	var body sampleRequest
	require.NoError(t, DecodeAndValidate(req, &body))
	require.Equal(t, "cash", body.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":0}`))
	err := DecodeAndValidate(req, &body)
	require.ErrorIs(t, err, ErrValidation)
	require.Contains(t, err.Error(), "Name(required)")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	require.ErrorIs(t, DecodeAndValidate(req, &body), ErrValidation)
}

func TestRespondErrorProblem(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("hidden"))
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	require.NotContains(t, rr.Body.String(), "hidden")
}

func TestRespondErrorClasses(t *testing.T) {
	errLocked := errors.New("period locked")
	locked := ErrorClass{Status: http.StatusConflict, Title: "Locked", Errors: []error{errLocked}}

	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("post: %w", errLocked), locked)
	require.Equal(t, http.StatusConflict, rr.Code)
	require.Contains(t, rr.Body.String(), `"title":"Locked"`)

	rr = httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("%w: amount", ErrValidation), locked)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	rr = httptest.NewRecorder()
	RespondError(rr, ErrNotFound)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
