package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sternrassler/lenta-assistant/internal/assistant"
	"github.com/Sternrassler/lenta-assistant/internal/storage"
	"github.com/Sternrassler/lenta-assistant/internal/testutil"
	"github.com/Sternrassler/lenta-assistant/pkg/client"
	"github.com/Sternrassler/lenta-assistant/pkg/lenta"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testEnv struct {
	router *gin.Engine
	mock   *testutil.MockLenta
	repo   *storage.Repository
}

type fakePinger struct{ err error }

func (p fakePinger) Ping() error { return p.err }

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mock := testutil.NewMockLenta()
	t.Cleanup(mock.Close)

	cfg := client.DefaultConfig(nil)
	cfg.BaseURL = mock.URL()
	lc, err := lenta.NewWithConfig(cfg)
	require.NoError(t, err)

	db, err := storage.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	repo := storage.NewRepository(db.DB)

	router := NewRouter(NewHandler(assistant.New(lc, repo), db))
	return &testEnv{router: router, mock: mock, repo: repo}
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp Response
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func dataAs[T any](t *testing.T, resp Response) T {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	h := NewRouter(NewHandler(nil, fakePinger{err: errors.New("down")}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("/api/v1/cities", testutil.NewJSONResponse("[]"))
	env.do(t, http.MethodGet, "/api/cities", "")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "lenta_requests_total")
}

func TestCities(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("/api/v1/cities", testutil.NewJSONResponse(testutil.MustJSON([]any{
		testutil.CityFixture("spb", "Санкт-Петербург", 59.93, 30.31),
		testutil.CityFixture("msk", "Москва", 55.75, 37.61),
	})))

	w, resp := env.do(t, http.MethodGet, "/api/cities", "")
	require.Equal(t, http.StatusOK, w.Code)

	cities := dataAs[[]cityResponse](t, resp)
	require.Len(t, cities, 2)
	assert.Equal(t, "msk", cities[0].ID)
}

func TestStoreRoutes(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("/api/v1/stores/0007", testutil.NewJSONResponse(testutil.MustJSON(
		testutil.StoreFixture("0007", "Лента Пулково", "spb", 59.8, 30.3),
	)))
	env.mock.SetResponse("/api/v1/cities/spb/stores", testutil.NewJSONResponse(testutil.MustJSON([]any{
		testutil.StoreFixture("0007", "Лента Пулково", "spb", 59.8, 30.3),
	})))
	env.mock.SetResponse("/api/v1/cities", testutil.NewJSONResponse(testutil.MustJSON([]any{
		testutil.CityFixture("spb", "Санкт-Петербург", 59.93, 30.31),
	})))

	w, resp := env.do(t, http.MethodGet, "/api/stores/0007", "")
	require.Equal(t, http.StatusOK, w.Code)
	store := dataAs[storeResponse](t, resp)
	assert.Equal(t, "Лента Пулково", store.Name)
	assert.Contains(t, store.Info, "08:00-23:00")

	w, resp = env.do(t, http.MethodGet, "/api/cities/spb/stores", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataAs[[]storeResponse](t, resp), 1)

	w, resp = env.do(t, http.MethodGet, "/api/stores/nearest?lat=59.9&long=30.3", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0007", dataAs[storeResponse](t, resp).ID)

	w, _ = env.do(t, http.MethodGet, "/api/stores/nearest?lat=100&long=30.3", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/stores/nearest", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpstreamErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		response testutil.MockResponse
		status   int
		code     string
	}{
		{"not found", testutil.NewNotFoundResponse("Store not found"), http.StatusNotFound, CodeNotFound},
		{"server error", testutil.NewServerErrorResponse(), http.StatusBadGateway, CodeUpstreamFailure},
		{"invalid record", testutil.NewJSONResponse(`[{"id": "x"}]`), http.StatusBadGateway, CodeUpstreamInvalid},
		{
			"bad request",
			testutil.MockResponse{StatusCode: http.StatusBadRequest, Body: `{"message": "bad city"}`},
			http.StatusBadRequest,
			CodeUpstreamRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.mock.SetResponse("/api/v1/cities/spb/stores", tt.response)

			w, resp := env.do(t, http.MethodGet, "/api/cities/spb/stores", "")
			assert.Equal(t, tt.status, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
			assert.False(t, resp.Success)
		})
	}
}

func TestCatalog(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("/api/v2/stores/0007/catalog", testutil.NewJSONResponse(testutil.MustJSON(testutil.CatalogFixture())))

	w, resp := env.do(t, http.MethodGet, "/api/stores/0007/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)
	groups := dataAs[[]categoryResponse](t, resp)
	require.Len(t, groups, 2)
	assert.Equal(t, "c-milk", groups[0].Children[0].Code)
	assert.Len(t, groups[0].Children[0].Children, 2)

	w, resp = env.do(t, http.MethodGet, "/api/stores/0007/catalog?group=g-bakery", "")
	require.Equal(t, http.StatusOK, w.Code)
	categories := dataAs[[]categoryResponse](t, resp)
	require.Len(t, categories, 1)
	assert.Equal(t, "c-bread", categories[0].Code)

	w, resp = env.do(t, http.MethodGet, "/api/stores/0007/catalog?category=c-milk", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataAs[[]categoryResponse](t, resp), 2)

	w, resp = env.do(t, http.MethodGet, "/api/stores/0007/catalog?category=unknown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataAs[[]categoryResponse](t, resp))
}

func TestSearchSkus(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("POST /api/v1/stores/0007/skus", testutil.NewJSONResponse(testutil.MustJSON(map[string]any{
		"skus": []any{testutil.PromoSkuFixture("100", "Молоко", 99.99, 79.99)},
	})))

	w, resp := env.do(t, http.MethodGet, "/api/stores/0007/skus?q=milk&limit=5&offset=10&only_discounts=true&node=c-milk&max_price=200", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"searchValue": "milk", "limit": 5, "offset": 10, "onlyDiscounts": true, "nodeCode": "c-milk", "maxPrice": 200}`,
		string(env.mock.LastBody()))

	skus := dataAs[[]skuResponse](t, resp)
	require.Len(t, skus, 1)
	assert.Equal(t, "99.99", skus[0].RegularPrice)
	require.NotNil(t, skus[0].DiscountPrice)
	assert.Equal(t, "79.99", *skus[0].DiscountPrice)
	require.NotNil(t, skus[0].Discount)
	assert.Equal(t, "20.00", *skus[0].Discount)
	assert.True(t, skus[0].HasPromotion)
	assert.Equal(t, "Товара достаточно", skus[0].StockText)

	w, _ = env.do(t, http.MethodGet, "/api/stores/0007/skus?limit=500", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/stores/0007/skus?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSkuAndBarcode(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("/api/v1/stores/0007/skus/100", testutil.NewJSONResponse(testutil.MustJSON(
		testutil.SkuFixture("100", "Молоко", 89.99),
	)))
	cheese := testutil.SkuFixture("300", "Сыр", 1000)
	cheese["isWeightProduct"] = true
	env.mock.SetResponse("GET /api/v1/stores/0007/skus", testutil.NewJSONResponse(testutil.MustJSON(cheese)))

	w, resp := env.do(t, http.MethodGet, "/api/stores/0007/skus/100", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Молоко", dataAs[skuResponse](t, resp).Title)

	w, _ = env.do(t, http.MethodGet, "/api/stores/0007/skus/999", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/stores/0007/barcode/2400300002503", "")
	require.Equal(t, http.StatusOK, w.Code)
	lookup := dataAs[barcodeResponse](t, resp)
	require.NotNil(t, lookup.Weight)
	assert.InDelta(t, 0.25, *lookup.Weight, 1e-9)
	require.NotNil(t, lookup.WeightPrice)
	assert.Equal(t, "250.00", *lookup.WeightPrice)
	assert.Contains(t, lookup.Info, "🎹 Штрих-код: 2400300002503")
}

func TestUserFlow(t *testing.T) {
	env := newTestEnv(t)
	env.mock.SetResponse("/api/v1/stores/0007", testutil.NewJSONResponse(testutil.MustJSON(
		testutil.StoreFixture("0007", "Лента Пулково", "spb", 59.8, 30.3),
	)))
	env.mock.SetResponse("/api/v1/stores/0007/skus/100", testutil.NewJSONResponse(testutil.MustJSON(
		testutil.SkuFixture("100", "Молоко", 89.99),
	)))
	env.mock.SetResponse("POST /api/v1/stores/0007/skusList", testutil.NewJSONResponse(testutil.MustJSON([]any{
		testutil.SkuFixture("100", "Молоко", 89.99),
	})))

	w, _ := env.do(t, http.MethodPost, "/api/users", `{"id": 42, "first_name": "Ivan"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp := env.do(t, http.MethodGet, "/api/users/42/skus", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNoStore, resp.Error.Code)

	w, _ = env.do(t, http.MethodPost, "/api/users/42/store", `{"store_id": "9999"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.do(t, http.MethodPost, "/api/users/42/store", `{"store_id": "0007"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0007", dataAs[storeResponse](t, resp).ID)

	w, resp = env.do(t, http.MethodGet, "/api/users/42/store", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "0007", dataAs[storeResponse](t, resp).ID)

	w, _ = env.do(t, http.MethodPost, "/api/users/42/skus", `{"code": "100"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/users/42/skus", "")
	require.Equal(t, http.StatusOK, w.Code)
	skus := dataAs[[]skuResponse](t, resp)
	require.Len(t, skus, 1)
	assert.Equal(t, "100", skus[0].Code)

	w, _ = env.do(t, http.MethodDelete, "/api/users/42/skus/100", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w, _ = env.do(t, http.MethodDelete, "/api/users/42/skus/100", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	ids, err := env.repo.UserSkuIDs(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestBadInput(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodPost, "/api/users", `{"first_name": "Ivan"}`},
		{http.MethodPost, "/api/users", `not json`},
		{http.MethodGet, "/api/users/abc/skus", ""},
		{http.MethodGet, "/api/users/-1/store", ""},
		{http.MethodPost, "/api/users/42/store", `{}`},
		{http.MethodPost, "/api/users/42/skus", `{"code": ""}`},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s %s", tt.method, tt.path), func(t *testing.T) {
			w, resp := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
		})
	}

	assert.Equal(t, 0, env.mock.RequestCount())
}

func TestNoRoute(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeNotFound, resp.Error.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"no store", assistant.ErrNoStore, http.StatusConflict, CodeNoStore},
		{"wrapped store not found", fmt.Errorf("%w: %w", assistant.ErrStoreNotFound, &client.ClientError{StatusCode: 400}), http.StatusNotFound, CodeNotFound},
		{"client 404", &client.ClientError{StatusCode: 404}, http.StatusNotFound, CodeNotFound},
		{"client 422", &client.ClientError{StatusCode: 422}, http.StatusUnprocessableEntity, CodeUpstreamRejected},
		{"server", &client.ServerError{StatusCode: 503}, http.StatusBadGateway, CodeUpstreamFailure},
		{"transport", &client.TransportError{URL: "x", Err: context.DeadlineExceeded}, http.StatusBadGateway, CodeUpstreamFailure},
		{"parse", &lenta.ParseError{Entity: lenta.EntitySku, Reason: "bad"}, http.StatusBadGateway, CodeUpstreamInvalid},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
