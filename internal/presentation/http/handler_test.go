package httppresentation

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appOrder "github.com/Zhima-Mochi/minishop-checkout/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-checkout/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/memory"
	infraobs "github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-checkout/internal/infrastructure/payment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type testServer struct {
	router  http.Handler
	gateway *payment.FakeGateway
	reg     *prometheus.Registry
	logs    *observer.ObservedLogs
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	reg := prometheus.NewRegistry()
	counters, histograms := prometrics.Standard(prometrics.New(reg, "", ""))
	core, logs := observer.New(zapcore.InfoLevel)
	tel := infraobs.New(nil, zaplogger.Wrap(zap.New(core)), counters, histograms)

	repo := memory.NewOrderRepository()
	gateway := payment.NewFakeGateway(false)
	h := NewHandler(
		appOrder.NewService(repo, id.NewUUIDGenerator(), tel),
		appPayment.NewPayOrderUseCase(repo, gateway, tel),
		tel,
	)
	return &testServer{router: h.Router(), gateway: gateway, reg: reg, logs: logs}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func (s *testServer) createOrder(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/orders", `{"customer_id":"customer-1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[orderResponse](t, rec).ID
}

func (s *testServer) addLine(t *testing.T, orderID, productID string) {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/orders/"+orderID+"/lines",
		`{"product_id":"`+productID+`","product_name":"Widget","unit_price":"100","currency":"USD","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestCreateAddLinePay(t *testing.T) {
	s := newTestServer(t)
	orderID := s.createOrder(t)
	s.addLine(t, orderID, "p-1")

	rec := s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decode[paymentResponse](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, orderID, res.OrderID)
	assert.Equal(t, moneyResponse{Amount: "200", Currency: "USD"}, res.Amount)
	assert.Equal(t, "Order paid successfully", res.Message)

	rec = s.do(t, http.MethodGet, "/orders/"+orderID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	o := decode[orderResponse](t, rec)
	assert.Equal(t, "PAID", string(o.Status))
	require.Len(t, o.Lines, 1)
	assert.Equal(t, moneyResponse{Amount: "200", Currency: "USD"}, o.Lines[0].Total)
}

func TestPayTwiceConflicts(t *testing.T) {
	s := newTestServer(t)
	orderID := s.createOrder(t)
	s.addLine(t, orderID, "p-1")

	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "").Code)

	rec := s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	res := decode[paymentResponse](t, rec)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "already paid")
}

func TestPayErrors(t *testing.T) {
	t.Run("unknown order", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/orders/missing/pay", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decode[paymentResponse](t, rec).Message, "not found")
	})

	t.Run("empty order", func(t *testing.T) {
		s := newTestServer(t)
		orderID := s.createOrder(t)
		rec := s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("declined", func(t *testing.T) {
		s := newTestServer(t)
		orderID := s.createOrder(t)
		s.addLine(t, orderID, "p-1")
		s.gateway.SetShouldFail(true)

		rec := s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)

		rec = s.do(t, http.MethodGet, "/orders/"+orderID, "")
		assert.Equal(t, "CREATED", string(decode[orderResponse](t, rec).Status))
	})

	t.Run("cancelled", func(t *testing.T) {
		s := newTestServer(t)
		orderID := s.createOrder(t)
		s.addLine(t, orderID, "p-1")
		require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/orders/"+orderID+"/cancel", "").Code)

		rec := s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestOrderEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/orders", `{"customer_id":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/orders", `{"customer":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown fields are rejected")

	orderID := s.createOrder(t)
	s.addLine(t, orderID, "p-1")

	rec = s.do(t, http.MethodPost, "/orders/"+orderID+"/lines",
		`{"product_id":"p-2","product_name":"Gadget","unit_price":"5","currency":"USD","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/orders/"+orderID+"/lines/p-9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodDelete, "/orders/"+orderID+"/lines/p-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	o := decode[orderResponse](t, rec)
	assert.Empty(t, o.Lines)
	assert.Equal(t, moneyResponse{Amount: "0", Currency: "USD"}, o.Total)

	rec = s.do(t, http.MethodGet, "/orders/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/orders", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(headerRequestID, "req-42")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "req-42", rec.Header().Get(headerRequestID))

	rec = s.do(t, http.MethodGet, "/health", "")
	assert.NotEmpty(t, rec.Header().Get(headerRequestID), "generated when absent")

	access := s.logs.FilterMessage("http_access").All()
	require.Len(t, access, 2)
	fields := access[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "GET /health", fields["route"])
	assert.Equal(t, int64(http.StatusOK), fields["status"])
}

func TestHTTPMetrics(t *testing.T) {
	s := newTestServer(t)
	orderID := s.createOrder(t)
	s.addLine(t, orderID, "p-1")
	require.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/orders/"+orderID+"/pay", "").Code)

	expected := `
# HELP usecase_requests_total Total number of use case invocations.
# TYPE usecase_requests_total counter
usecase_requests_total{outcome="success",use_case="order.add_line"} 1
usecase_requests_total{outcome="success",use_case="order.create"} 1
usecase_requests_total{outcome="success",use_case="payment.pay_order"} 1
`
	require.NoError(t, testutil.GatherAndCompare(s.reg, strings.NewReader(expected), "usecase_requests_total"))

	n, err := testutil.GatherAndCount(s.reg, "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 3, n, "one series per route and status")
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForError(appPayment.ErrOrderIDRequired))
	assert.Equal(t, http.StatusPaymentRequired, statusForError(appPayment.ErrChargeFailed))
	assert.Equal(t, http.StatusInternalServerError, statusForError(assert.AnError))
}
