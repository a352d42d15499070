package httppresentation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	appOrder "github.com/Zhima-Mochi/minishop-checkout/internal/application/order"
	appPayment "github.com/Zhima-Mochi/minishop-checkout/internal/application/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
	domainOrder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	orders *appOrder.Service
	pay    *appPayment.PayOrderUseCase
	log    observability.Logger

	reqCounter   observability.Counter   // http_requests_total{method,route,status}
	durHistogram observability.Histogram // http_request_duration_seconds{method,route,status}
}

const (
	componentHTTPHandler = "http_server"
	headerRequestID      = "X-Request-ID"
	tracerName           = "minishop.http"
)

func NewHandler(orders *appOrder.Service, pay *appPayment.PayOrderUseCase, tel observability.Observability) *Handler {
	if tel == nil {
		tel = observability.Nop()
	}
	return &Handler{
		orders:       orders,
		pay:          pay,
		log:          tel.Logger().With(observability.F("component", componentHTTPHandler)),
		reqCounter:   tel.Metrics().Counter(observability.MHTTPRequests),
		durHistogram: tel.Metrics().Histogram(observability.MHTTPRequestDuration),
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	h.muxHandle(mux, "POST /orders", h.handleCreateOrder)
	h.muxHandle(mux, "GET /orders/{id}", h.handleGetOrder)
	h.muxHandle(mux, "POST /orders/{id}/lines", h.handleAddLine)
	h.muxHandle(mux, "DELETE /orders/{id}/lines/{product_id}", h.handleRemoveLine)
	h.muxHandle(mux, "POST /orders/{id}/cancel", h.handleCancelOrder)
	h.muxHandle(mux, "POST /orders/{id}/pay", h.handlePayOrder)
	h.muxHandle(mux, "GET /health", h.handleHealth)

	return mux
}

// muxHandle wraps a route with Trace → Request Logger → Metrics → Access Log.
func (h *Handler) muxHandle(mux *http.ServeMux, route string, handler http.HandlerFunc) {
	wrapped := h.withTrace(
		ObservabilityMiddleware(h.log, func(r *http.Request) string {
			return r.Header.Get(headerRequestID)
		})(
			h.withHTTPMetrics(
				h.withAccessLog(handler),
			),
		),
	)
	mux.Handle(route, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// stable route template keeps metric labels low-cardinality
		wrapped.ServeHTTP(w, r.WithContext(contextWithRoute(r.Context(), route)))
	}))
}

type createOrderRequest struct {
	CustomerID string `json:"customer_id"`
}

type addLineRequest struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Currency    string          `json:"currency"`
	Quantity    int             `json:"quantity"`
}

type moneyResponse struct {
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
}

type lineResponse struct {
	ProductID   string        `json:"product_id"`
	ProductName string        `json:"product_name"`
	UnitPrice   moneyResponse `json:"unit_price"`
	Quantity    int           `json:"quantity"`
	Total       moneyResponse `json:"total"`
}

type orderResponse struct {
	ID         string             `json:"id"`
	CustomerID string             `json:"customer_id"`
	Status     domainOrder.Status `json:"status"`
	Lines      []lineResponse     `json:"lines"`
	Total      moneyResponse      `json:"total"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

type paymentResponse struct {
	Success bool          `json:"success"`
	OrderID string        `json:"order_id"`
	Amount  moneyResponse `json:"amount"`
	Message string        `json:"message"`
}

func toMoneyResponse(m money.Money) moneyResponse {
	return moneyResponse{Amount: m.Amount().String(), Currency: m.Currency()}
}

func toOrderResponse(o *domainOrder.Order) orderResponse {
	lines := make([]lineResponse, 0, len(o.Lines()))
	for _, l := range o.Lines() {
		lines = append(lines, lineResponse{
			ProductID:   l.ProductID(),
			ProductName: l.ProductName(),
			UnitPrice:   toMoneyResponse(l.UnitPrice()),
			Quantity:    l.Quantity(),
			Total:       toMoneyResponse(l.Total()),
		})
	}
	return orderResponse{
		ID:         o.ID(),
		CustomerID: o.CustomerID(),
		Status:     o.Status(),
		Lines:      lines,
		Total:      toMoneyResponse(o.TotalAmount()),
		CreatedAt:  o.CreatedAt(),
		UpdatedAt:  o.UpdatedAt(),
	}
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, err := h.orders.CreateOrder(r.Context(), req.CustomerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleAddLine(w http.ResponseWriter, r *http.Request) {
	var req addLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	o, err := h.orders.AddLine(r.Context(), appOrder.AddLineInput{
		OrderID:     r.PathValue("id"),
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		UnitPrice:   req.UnitPrice,
		Currency:    req.Currency,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleRemoveLine(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.RemoveLine(r.Context(), r.PathValue("id"), r.PathValue("product_id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handleCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Cancel(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) handlePayOrder(w http.ResponseWriter, r *http.Request) {
	result := h.pay.Execute(r.Context(), appPayment.PayOrderInput{OrderID: r.PathValue("id")})

	status := http.StatusOK
	if !result.Success {
		status = statusForError(result.Err)
	}
	writeJSON(w, status, paymentResponse{
		Success: result.Success,
		OrderID: result.OrderID,
		Amount:  toMoneyResponse(result.Amount),
		Message: result.Message,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// withAccessLog writes a single access log after the handler completes.
// It relies on the request-scoped logger already injected by ObservabilityMiddleware.
func (h *Handler) withAccessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		logctx.FromOr(r.Context(), h.log).Info("http_access",
			observability.F("method", r.Method),
			observability.F("route", routeFromContext(r.Context())),
			observability.F("path", r.URL.Path),
			observability.F("status", lrw.status),
			observability.F("latency_ms", time.Since(start).Milliseconds()),
		)
	})
}

// withTrace creates a server span for the request using OTel and W3C propagation.
func (h *Handler) withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parentCtx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		route := routeFromContext(parentCtx)
		ctxWithSpan, span := otel.Tracer(tracerName).Start(parentCtx,
			route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", r.URL.Path),
				attribute.String("http.user_agent", r.UserAgent()),
			),
		)
		defer span.End()

		next.ServeHTTP(w, r.WithContext(ctxWithSpan))
	})
}

// withHTTPMetrics records RED-ish HTTP metrics using injected vectors.
func (h *Handler) withHTTPMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(lrw, r)

		labels := []observability.Label{
			observability.L("method", r.Method),
			observability.L("route", routeFromContext(r.Context())),
			observability.L("status", strconv.Itoa(lrw.status)),
		}
		h.reqCounter.Add(1, labels...)
		h.durHistogram.Observe(time.Since(start).Seconds(), labels...)
	})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domainOrder.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appPayment.ErrOrderIDRequired),
		errors.Is(err, domainOrder.ErrValidation),
		errors.Is(err, money.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainOrder.ErrAlreadyPaid),
		errors.Is(err, domainOrder.ErrCannotBeModified):
		return http.StatusConflict
	case errors.Is(err, domainOrder.ErrEmptyOrder):
		return http.StatusUnprocessableEntity
	case errors.Is(err, appPayment.ErrChargeFailed):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

type routeKey struct{}

func contextWithRoute(ctx context.Context, route string) context.Context {
	if route == "" {
		return ctx
	}
	return context.WithValue(ctx, routeKey{}, route)
}

func routeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if route, ok := ctx.Value(routeKey{}).(string); ok && route != "" {
		return route
	}
	return "unknown"
}
