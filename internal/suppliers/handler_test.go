package suppliers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/smart-inventory/smart-inventory/internal/platform/httpx"
)

func newTestRouter(t *testing.T) (http.Handler, *fixture) {
	t.Helper()
	f := newFixture(t)
	r := chi.NewRouter()
	r.Route("/supplier", NewHandler(discardLogger(), f.svc).MountRoutes)
	return r, f
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCreateAndShowSupplier(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/supplier/create", `{"name":"Acme","mobile":"0800","email":"a@acme.test","company":"Acme Ltd"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created Supplier
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.Equal(t, int64(1), created.ID)
	require.Equal(t, "Acme Ltd", created.Company)

	rr = do(t, h, http.MethodGet, "/supplier/id/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"id":1,"name":"Acme","mobile":"0800","email":"a@acme.test","company":"Acme Ltd"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/supplier/view", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var list []Supplier
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list, 1)
}

func TestShowUnknownSupplierIs404(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := do(t, h, http.MethodGet, "/supplier/id/42", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
	var problem httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
	require.Equal(t, httpx.CodeNotFound, problem.Code)
}

func TestNonNumericIDIs400(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := do(t, h, http.MethodDelete, "/supplier/delete/abc", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMalformedBodyIs400(t *testing.T) {
	h, _ := newTestRouter(t)
	rr := do(t, h, http.MethodPost, "/supplier/create", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateAndDeleteSupplier(t *testing.T) {
	h, f := newTestRouter(t)
	do(t, h, http.MethodPost, "/supplier/create", `{"name":"Acme"}`)
	f.products.links[10] = ptr(1)

	rr := do(t, h, http.MethodPut, "/supplier/update/1", `{"name":"Acme 2","email":"new@acme.test"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"name":"Acme 2"`)

	rr = do(t, h, http.MethodDelete, "/supplier/delete/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"Supplier Deleted Successfully"}`, rr.Body.String())
	require.Nil(t, f.products.links[10])

	rr = do(t, h, http.MethodDelete, "/supplier/delete/1", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteAllSuppliers(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/supplier/create", `{"name":"A"}`)
	do(t, h, http.MethodPost, "/supplier/create", `{"name":"B"}`)

	rr := do(t, h, http.MethodDelete, "/supplier/deleteAll", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"message":"All Suppliers Deleted Successfully"}`, rr.Body.String())

	rr = do(t, h, http.MethodGet, "/supplier/view", "")
	require.JSONEq(t, `[]`, rr.Body.String())
}
