package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/order-service/internal/adapter/cache"
	"github.com/example/order-service/internal/adapter/repo"
	"github.com/example/order-service/internal/domain"
	"github.com/example/order-service/internal/usecase"
)

const baseURL = "http://localhost:8080"

func newTestServer(orders domain.OrderRepository) *Server {
	c := cache.NewMemoryOrderCache()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewServer(UseCases{
		Create: usecase.CreateOrder{Repo: orders, Cache: c, BaseURL: baseURL},
		Get:    usecase.GetOrder{Repo: orders, Cache: c},
		List:   usecase.ListOrders{Repo: orders, BaseURL: baseURL},
		Update: usecase.UpdateOrder{Repo: orders, Cache: c},
		Delete: usecase.DeleteOrder{Repo: orders, Cache: c},
	}, log)
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)
	return w
}

const createBody = `{
  "order_number": "v1000001",
  "declared_total": 50,
  "created_at": "2023-07-19T12:24:11.5299601+00:00",
  "items": [{"item_id": "5", "quantity": 5, "unit_price": 10}]
}`

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func TestCreateOrderHandler(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodPost, "/order", createBody)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var res usecase.CreateResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "v1000001", res.OrderID)
	require.Len(t, res.Links, 1)
	assert.Equal(t, baseURL+"/order/v1000001", res.Links[0].Href)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestCreateOrderHandlerTotalMismatch(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())
	body := `{
	  "order_number": "v1000001",
	  "declared_total": 100,
	  "created_at": "2023-07-19T12:24:11.5299601+00:00",
	  "items": [{"item_id": "1", "quantity": 1, "unit_price": 50}]
	}`

	w := doRequest(s, http.MethodPost, "/order", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusBadRequest, env.StatusCode)
	assert.Equal(t, "Bad Request", env.Error)
	assert.Contains(t, env.Message, "100")
	assert.Contains(t, env.Message, "50")
}

func TestCreateOrderHandlerValidation(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodPost, "/order", `{"declared_total": -5}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Message, "order_number is required")
	assert.Contains(t, env.Message, "declared_total must not be negative")
}

func TestCreateOrderHandlerDuplicate(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodPost, "/order", createBody)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doRequest(s, http.MethodPost, "/order", createBody)

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Message, "v1000001")
	assert.Contains(t, env.Message, "already exists")
}

func TestGetOrderHandler(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())
	doRequest(s, http.MethodPost, "/order", createBody)

	w := doRequest(s, http.MethodGet, "/order/v1000001", "")

	require.Equal(t, http.StatusOK, w.Code)
	var view usecase.OrderView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, "v1000001", view.OrderNumber)
	assert.Equal(t, int64(50), view.DeclaredTotal)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "5", view.Items[0].ItemID)
}

func TestGetOrderHandlerNotFound(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodGet, "/order/unknown", "")

	require.Equal(t, http.StatusNotFound, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
	assert.Equal(t, "Not Found", env.Error)
}

func TestListOrdersHandler(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())
	doRequest(s, http.MethodPost, "/order", createBody)

	w := doRequest(s, http.MethodGet, "/order/list/all", "")

	require.Equal(t, http.StatusOK, w.Code)
	var entries []usecase.ListEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "v1000001", entries[0].OrderID)
	assert.Equal(t, int64(50), entries[0].Value)
}

func TestListOrdersHandlerFilters(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())
	doRequest(s, http.MethodPost, "/order", createBody)

	w := doRequest(s, http.MethodGet, "/order/list/all?min_value=60", "")

	require.Equal(t, http.StatusOK, w.Code)
	var entries []usecase.ListEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Empty(t, entries)
}

func TestListOrdersHandlerBadFilter(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodGet, "/order/list/all?min_value=abc&start_date=yesterday", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Contains(t, env.Message, "min_value must be an integer")
	assert.Contains(t, env.Message, "start_date must be an RFC3339 timestamp")
}

func TestUpdateOrderHandler(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())
	doRequest(s, http.MethodPost, "/order", createBody)

	w := doRequest(s, http.MethodPut, "/order/v1000001",
		`{"declared_total": 30, "items": [{"item_id": "9", "quantity": 3, "unit_price": 10}]}`)

	require.Equal(t, http.StatusOK, w.Code)
	var view usecase.OrderView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, int64(30), view.DeclaredTotal)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "9", view.Items[0].ItemID)
}

func TestUpdateOrderHandlerNotFound(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodPut, "/order/unknown",
		`{"declared_total": 30, "items": [{"item_id": "9", "quantity": 3, "unit_price": 10}]}`)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrderHandler(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())
	doRequest(s, http.MethodPost, "/order", createBody)

	w := doRequest(s, http.MethodDelete, "/order/v1000001", "")

	require.Equal(t, http.StatusOK, w.Code)
	var res usecase.DeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "order deleted", res.Message)

	w = doRequest(s, http.MethodGet, "/order/v1000001", "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteOrderHandlerNotFound(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	w := doRequest(s, http.MethodDelete, "/order/unknown", "")

	require.Equal(t, http.StatusNotFound, w.Code)
}

// failingRepo симулирует непредвиденный сбой хранилища.
type failingRepo struct{}

var errStorage = errors.New("connection reset by peer")

func (failingRepo) Create(context.Context, domain.Order) error { return errStorage }
func (failingRepo) FindByID(context.Context, string) (domain.Order, error) {
	return domain.Order{}, errStorage
}
func (failingRepo) List(context.Context, domain.ListFilters) ([]domain.Order, error) {
	return nil, errStorage
}
func (failingRepo) Update(context.Context, domain.Order) error { return errStorage }
func (failingRepo) Delete(context.Context, string) error       { return errStorage }

func TestUnexpectedErrorIsMasked(t *testing.T) {
	s := newTestServer(failingRepo{})

	w := doRequest(s, http.MethodGet, "/order/list/all", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, http.StatusInternalServerError, env.StatusCode)
	assert.Equal(t, "Internal Server Error", env.Error)
	// деталь сбоя не утекает к клиенту
	assert.Equal(t, "unexpected error", env.Message)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestRequestIDEcho(t *testing.T) {
	s := newTestServer(repo.NewMemoryOrderRepo())

	req := httptest.NewRequest(http.MethodGet, "/order/list/all", nil)
	req.Header.Set("X-Request-Id", "req-42")
	w := httptest.NewRecorder()
	s.Router.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-Id"))
}
