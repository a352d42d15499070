package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
	domorder "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	dompay "github.com/Zhima-Mochi/minishop-checkout/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	paymentService    = "payment-service"
	useCasePayOrder   = "payment.pay_order"
	payOrderSpanName  = "PayOrder"
	spanPrefix        = "UC."
	gatewayPeer       = "payment-gateway"
	gatewayEndpoint   = "charge"
	messagePaid       = "Order paid successfully"
	defaultChargeWait = 5 * time.Second
)

var (
	ErrOrderIDRequired = errors.New("payment: order id is required")
	ErrChargeFailed    = errors.New("payment: gateway charge failed")
)

type PayOrderInput struct {
	OrderID string
}

// PaymentResult reports the outcome of a payment attempt. Err keeps the typed
// cause for errors.Is checks; Message carries its text.
type PaymentResult struct {
	Success bool
	OrderID string
	Amount  money.Money
	Message string
	Err     error
}

// PayOrderUseCase loads an order, marks it paid, charges the gateway and saves
// the order. Save only happens after a successful charge.
//
// The sequence is not atomic: two concurrent executions for one order can both
// reach the gateway before either saves.
type PayOrderUseCase struct {
	repo          domorder.Repository
	gateway       dompay.Gateway
	chargeTimeout time.Duration

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

type Option func(*PayOrderUseCase)

// WithChargeTimeout bounds the gateway call. Zero or negative disables the bound.
func WithChargeTimeout(d time.Duration) Option {
	return func(uc *PayOrderUseCase) { uc.chargeTimeout = d }
}

func NewPayOrderUseCase(repo domorder.Repository, gateway dompay.Gateway, tel observability.Observability, opts ...Option) *PayOrderUseCase {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()

	uc := &PayOrderUseCase{
		repo:          repo,
		gateway:       gateway,
		chargeTimeout: defaultChargeWait,
		log:           tel.Logger().With(observability.F("service", paymentService)),
		tracer:        tel.Tracer(),
		reqCounter:    metrics.Counter(observability.MUsecaseRequests),
		durHistogram:  metrics.Histogram(observability.MUsecaseDuration),
		extCounter:    metrics.Counter(observability.MExternalRequests),
		extHistogram:  metrics.Histogram(observability.MExternalRequestDuration),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute never returns an error: every failure is reported in the result.
func (uc *PayOrderUseCase) Execute(ctx context.Context, cmd PayOrderInput) (result PaymentResult) {
	orderID := strings.TrimSpace(cmd.OrderID)
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCasePayOrder),
		observability.F("order_id", orderID),
	)

	ctx, span := uc.tracer.Start(ctx, spanPrefix+payOrderSpanName,
		attribute.String("use_case", useCasePayOrder),
		attribute.String("order.id", orderID),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	result = PaymentResult{OrderID: orderID, Amount: zeroAmount()}

	defer func() {
		if span != nil {
			span.SetAttributes(
				attribute.Bool("payment.success", result.Success),
				attribute.String("payment.amount", result.Amount.String()),
			)
			if result.Err != nil {
				span.RecordError(result.Err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		latency := time.Since(start).Seconds()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCasePayOrder),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency,
			observability.L("use_case", useCasePayOrder),
		)

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
			observability.F("amount", result.Amount.String()),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if result.Err != nil {
			fields = append(fields, observability.F("error", result.Err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	fail := func(status string, err error) PaymentResult {
		outcome, statusText = "error", status
		result.Success = false
		result.Err = err
		result.Message = err.Error()
		return result
	}

	if orderID == "" {
		return fail("ORDER_ID_REQUIRED", ErrOrderIDRequired)
	}

	order, err := uc.repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, domorder.ErrNotFound) {
			return fail("ORDER_NOT_FOUND", err)
		}
		return fail("ORDER_LOOKUP_FAILED", fmt.Errorf("payment: load order: %w", err))
	}
	result.Amount = order.TotalAmount()

	if err := order.Pay(); err != nil {
		switch {
		case errors.Is(err, domorder.ErrEmptyOrder):
			return fail("ORDER_EMPTY", err)
		case errors.Is(err, domorder.ErrAlreadyPaid):
			return fail("ORDER_ALREADY_PAID", err)
		default:
			return fail("ORDER_NOT_PAYABLE", err)
		}
	}
	span.AddEvent("order.marked_paid")

	amount := order.TotalAmount()
	result.Amount = amount

	approved, chargeErr := uc.charge(ctx, orderID, amount)
	if chargeErr != nil {
		return fail("CHARGE_FAILED", fmt.Errorf("%w: %w", ErrChargeFailed, chargeErr))
	}
	if !approved {
		return fail("CHARGE_DECLINED", ErrChargeFailed)
	}

	if err := uc.repo.Save(ctx, order); err != nil {
		return fail("ORDER_SAVE_FAILED", fmt.Errorf("payment: save order: %w", err))
	}

	span.AddEvent("order.paid",
		trace.WithAttributes(attribute.String("order.id", orderID)),
	)
	result.Success = true
	result.Message = messagePaid
	return result
}

func (uc *PayOrderUseCase) charge(ctx context.Context, orderID string, amount money.Money) (bool, error) {
	chargeCtx := ctx
	cancel := func() {}
	if uc.chargeTimeout > 0 {
		chargeCtx, cancel = context.WithTimeout(ctx, uc.chargeTimeout)
	}
	defer cancel()

	start := time.Now()
	approved, err := uc.gateway.Charge(chargeCtx, orderID, amount)
	outcome := "success"
	switch {
	case err != nil:
		outcome = "error"
	case !approved:
		outcome = "declined"
	}

	uc.extCounter.Add(1,
		observability.L("peer", gatewayPeer),
		observability.L("endpoint", gatewayEndpoint),
		observability.L("outcome", outcome),
	)
	uc.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", gatewayPeer),
		observability.L("endpoint", gatewayEndpoint),
	)
	return approved, err
}

func zeroAmount() money.Money {
	z, _ := money.Zero(money.DefaultCurrency)
	return z
}
