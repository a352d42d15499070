package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-checkout/internal/domain/money"
	domain "github.com/Zhima-Mochi/minishop-checkout/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability"
	"github.com/Zhima-Mochi/minishop-checkout/internal/observability/logctx"
	"github.com/shopspring/decimal"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService = "order-service"
	spanPrefix   = "UC."

	useCaseCreate     = "order.create"
	useCaseAddLine    = "order.add_line"
	useCaseRemoveLine = "order.remove_line"
	useCaseCancel     = "order.cancel"
	useCaseGet        = "order.get"
)

var ErrIDGeneratorRequired = errors.New("order: id generator is required")

// Service runs the order lifecycle operations other than payment. Every
// mutation is load, mutate, save against the repository.
type Service struct {
	repo domain.Repository
	ids  IDGenerator

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}
}

func NewService(repo domain.Repository, ids IDGenerator, tel observability.Observability) *Service {
	if tel == nil {
		tel = observability.Nop()
	}
	metrics := tel.Metrics()
	return &Service{
		repo:         repo,
		ids:          ids,
		log:          tel.Logger().With(observability.F("service", orderService)),
		tracer:       tel.Tracer(),
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

type AddLineInput struct {
	OrderID     string
	ProductID   string
	ProductName string
	UnitPrice   decimal.Decimal
	// Currency defaults to money.DefaultCurrency when blank.
	Currency string
	Quantity int
}

func (s *Service) CreateOrder(ctx context.Context, customerID string) (_ *domain.Order, err error) {
	ctx, done := s.begin(ctx, useCaseCreate, "CreateOrder",
		attribute.String("order.customer_id", customerID),
	)
	defer func() { done(err) }()

	if s.ids == nil {
		return nil, ErrIDGeneratorRequired
	}
	o, err := domain.New(s.ids.NewID(), customerID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("order: save: %w", err)
	}
	trace.SpanFromContext(ctx).AddEvent("order.created",
		trace.WithAttributes(attribute.String("order.id", o.ID())),
	)
	return o, nil
}

func (s *Service) AddLine(ctx context.Context, in AddLineInput) (_ *domain.Order, err error) {
	ctx, done := s.begin(ctx, useCaseAddLine, "AddLine",
		attribute.String("order.id", in.OrderID),
		attribute.String("order.product_id", in.ProductID),
	)
	defer func() { done(err) }()

	currency := strings.TrimSpace(in.Currency)
	if currency == "" {
		currency = money.DefaultCurrency
	}
	price, err := money.New(in.UnitPrice, currency)
	if err != nil {
		return nil, fmt.Errorf("%w: unit price: %w", domain.ErrValidation, err)
	}
	line, err := domain.NewLine(in.ProductID, in.ProductName, price, in.Quantity)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, in.OrderID, func(o *domain.Order) error {
		return o.AddLine(line)
	})
}

func (s *Service) RemoveLine(ctx context.Context, orderID, productID string) (_ *domain.Order, err error) {
	ctx, done := s.begin(ctx, useCaseRemoveLine, "RemoveLine",
		attribute.String("order.id", orderID),
		attribute.String("order.product_id", productID),
	)
	defer func() { done(err) }()

	return s.mutate(ctx, orderID, func(o *domain.Order) error {
		return o.RemoveLine(productID)
	})
}

func (s *Service) Cancel(ctx context.Context, orderID string) (_ *domain.Order, err error) {
	ctx, done := s.begin(ctx, useCaseCancel, "Cancel",
		attribute.String("order.id", orderID),
	)
	defer func() { done(err) }()

	return s.mutate(ctx, orderID, (*domain.Order).Cancel)
}

func (s *Service) Get(ctx context.Context, orderID string) (_ *domain.Order, err error) {
	ctx, done := s.begin(ctx, useCaseGet, "GetOrder",
		attribute.String("order.id", orderID),
	)
	defer func() { done(err) }()

	return s.load(ctx, orderID)
}

func (s *Service) load(ctx context.Context, orderID string) (*domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, domain.ErrInvalidID
	}
	o, err := s.repo.Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("order: load %s: %w", orderID, err)
	}
	return o, nil
}

func (s *Service) mutate(ctx context.Context, orderID string, fn func(*domain.Order) error) (*domain.Order, error) {
	o, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("order: save %s: %w", o.ID(), err)
	}
	return o, nil
}

// begin opens the span and returns a finisher that records RED metrics and
// the use_case_done log line.
func (s *Service) begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCase))
	ctx, span := s.tracer.Start(ctx, spanPrefix+spanName,
		append([]attribute.KeyValue{attribute.String("use_case", useCase)}, attrs...)...,
	)
	start := time.Now()

	return ctx, func(err error) {
		lat := time.Since(start).Seconds()
		outcome, statusText := "success", "OK"
		if err != nil {
			outcome, statusText = "error", statusFor(err)
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		s.reqCounter.Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
		s.durHistogram.Observe(lat, observability.L("use_case", useCase))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}
}

func statusFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrLineNotFound):
		return "LINE_NOT_FOUND"
	case errors.Is(err, domain.ErrNotFound):
		return "ORDER_NOT_FOUND"
	case errors.Is(err, domain.ErrInvalidID):
		return "ORDER_ID_REQUIRED"
	case errors.Is(err, domain.ErrDuplicateProduct):
		return "DUPLICATE_PRODUCT"
	case errors.Is(err, domain.ErrCurrencyMismatch):
		return "CURRENCY_MISMATCH"
	case errors.Is(err, domain.ErrValidation):
		return "VALIDATION_FAILED"
	case errors.Is(err, domain.ErrOrderCancelled):
		return "ORDER_CANCELLED"
	case errors.Is(err, domain.ErrCannotBeModified):
		return "ORDER_NOT_MODIFIABLE"
	case errors.Is(err, ErrIDGeneratorRequired):
		return "MISCONFIGURED"
	default:
		return "REPOSITORY_FAILED"
	}
}
