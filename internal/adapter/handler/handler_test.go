package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type fakeCatalog struct {
	products map[string]domain.Product
	order    []string
	err      error
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]domain.Product{}}
}

func (f *fakeCatalog) Create(_ context.Context, name string, price decimal.Decimal, quantity int) (domain.Product, error) {
	if f.err != nil {
		return domain.Product{}, f.err
	}
	p, err := domain.NewProduct(name, price, quantity, time.Now())
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = "p-" + string(rune('a'+len(f.order)))
	f.products[p.ID] = p
	f.order = append(f.order, p.ID)
	return p, nil
}

func (f *fakeCatalog) List(context.Context) ([]domain.Product, error) {
	if f.err != nil {
		return nil, f.err
	}
	list := make([]domain.Product, 0, len(f.order))
	for _, id := range f.order {
		if p, ok := f.products[id]; ok {
			list = append(list, p)
		}
	}
	return list, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, domain.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Delete(_ context.Context, id string) error {
	if _, ok := f.products[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.products, id)
	return nil
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) ProblemDetail {
	t.Helper()
	assert.Equal(t, ContentTypeProblemJSON, rr.Header().Get("Content-Type"))
	var p ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

func TestCatalogHealth(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	rr := doJSON(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var body HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.Status)
	assert.Equal(t, "product-api", body.Service)
}

func TestCatalogHealth_StoreDown(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{err: domain.ErrStore}, discard)

	rr := doJSON(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Equal(t, http.StatusServiceUnavailable, decodeProblem(t, rr).Status)
}

func TestCreateProduct_ThenGet(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	rr := doJSON(t, router, http.MethodPost, "/products", `{"name":"Laptop","price":999.99,"quantity":10}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	var created ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Laptop", created.Name)
	assert.Equal(t, "999.99", created.Price.String())
	assert.Contains(t, rr.Body.String(), `"price":999.99`)
	assert.Equal(t, 10, created.Quantity)

	rr = doJSON(t, router, http.MethodGet, "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var got ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, created, got)
}

func TestCreateProduct_Validation(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	cases := map[string]string{
		"negative price":    `{"name":"Laptop","price":-1,"quantity":1}`,
		"negative quantity": `{"name":"Laptop","price":1,"quantity":-1}`,
		"blank name":        `{"name":"  ","price":1,"quantity":1}`,
		"missing price":     `{"name":"Laptop","quantity":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rr := doJSON(t, router, http.MethodPost, "/products", body)
			require.Equal(t, http.StatusBadRequest, rr.Code)
			p := decodeProblem(t, rr)
			assert.Equal(t, TypeValidation, p.Type)
			assert.Contains(t, p.Extensions, "fields")
		})
	}
}

func TestCreateProduct_MalformedBody(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	rr := doJSON(t, router, http.MethodPost, "/products", `{"name":`)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, TypeBadRequest, decodeProblem(t, rr).Type)
}

func TestCreateProduct_StoreError(t *testing.T) {
	catalog := newFakeCatalog()
	catalog.err = domain.ErrStore
	router := NewCatalogRouter(catalog, stubPinger{}, discard)

	rr := doJSON(t, router, http.MethodPost, "/products", `{"name":"Laptop","price":1,"quantity":1}`)
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "internal error", decodeProblem(t, rr).Detail)
}

func TestDeleteProduct(t *testing.T) {
	catalog := newFakeCatalog()
	router := NewCatalogRouter(catalog, stubPinger{}, discard)
	p, err := catalog.Create(context.Background(), "Mouse", decimal.NewFromInt(20), 1)
	require.NoError(t, err)

	rr := doJSON(t, router, http.MethodDelete, "/products/"+p.ID, nil)
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.Bytes())

	rr = doJSON(t, router, http.MethodGet, "/products/"+p.ID, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = doJSON(t, router, http.MethodDelete, "/products/"+p.ID, nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	problem := decodeProblem(t, rr)
	assert.Equal(t, "/products/"+p.ID, problem.Instance)
	assert.Equal(t, "product "+p.ID+" not found", problem.Detail)
}

func TestListProducts(t *testing.T) {
	catalog := newFakeCatalog()
	router := NewCatalogRouter(catalog, stubPinger{}, discard)

	rr := doJSON(t, router, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())

	for _, name := range []string{"a", "b"} {
		_, err := catalog.Create(context.Background(), name, decimal.NewFromInt(1), 1)
		require.NoError(t, err)
	}
	first := doJSON(t, router, http.MethodGet, "/products", nil)
	second := doJSON(t, router, http.MethodGet, "/products", nil)
	var list []ProductResponse
	require.NoError(t, json.Unmarshal(first.Body.Bytes(), &list))
	assert.Len(t, list, 2)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestCORSPreflight(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	req := httptest.NewRequest(http.MethodOptions, "/products", nil)
	req.Header.Set("Origin", "http://client.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_CrossOriginRequest(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	req := httptest.NewRequest(http.MethodGet, "/products", nil)
	req.Header.Set("Origin", "http://client.test")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestProductPrice_KeepsEveryDigit(t *testing.T) {
	router := NewCatalogRouter(newFakeCatalog(), stubPinger{}, discard)

	rr := doJSON(t, router, http.MethodPost, "/products", `{"name":"Yacht","price":12345678901234567.89,"quantity":1}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"price":12345678901234567.89`)

	var created ProductResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = doJSON(t, router, http.MethodGet, "/products/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"price":12345678901234567.89`)
}
