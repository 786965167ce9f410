package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyMapsEachKindToDistinctStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("product: %w", ErrNotFound), http.StatusNotFound, CodeNotFound},
		{fmt.Errorf("supplier missing: %w", ErrInvalidReference), http.StatusUnprocessableEntity, CodeInvalidReference},
		{fmt.Errorf("%w: bad id", ErrValidation), http.StatusBadRequest, CodeValidation},
		{fmt.Errorf("fk: %w", ErrConflict), http.StatusConflict, CodeConflict},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		status, code := Classify(tc.err)
		require.Equal(t, tc.status, status, tc.err.Error())
		require.Equal(t, tc.code, code, tc.err.Error())
	}
}

func TestRespondErrorHidesInternalDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, errors.New("pq: connection refused"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Empty(t, body.Detail)
	require.Equal(t, CodeInternal, body.Code)
}

func TestRespondErrorIncludesDomainDetail(t *testing.T) {
	rr := httptest.NewRecorder()
	RespondError(rr, fmt.Errorf("product: %w", ErrNotFound))

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	require.Equal(t, "product: resource not found", body.Detail)
	require.Equal(t, CodeNotFound, body.Code)
}
