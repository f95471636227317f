package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Scheduler accepts deferred completion jobs. CompletionQueue implements it.
type Scheduler interface {
	Schedule(job CompletionJob) error
}

type OrderService struct {
	orders  port.OrderRepository
	events  port.EventReader
	catalog port.CatalogClient
	queue   Scheduler
	delay   time.Duration
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics orderMetrics
	now     func() time.Time
	newID   func() string
}

// OrderStore is the persistence the workflow needs: order records plus the
// event stream they publish to.
type OrderStore interface {
	port.OrderRepository
	port.EventReader
}

// NewOrderService wires the workflow. delay is how long after creation an
// order becomes due for completion.
func NewOrderService(store OrderStore, catalog port.CatalogClient, queue Scheduler, delay time.Duration, opts ...Option) *OrderService {
	o := buildOptions(opts)
	return &OrderService{
		orders:  store,
		events:  store,
		catalog: catalog,
		queue:   queue,
		delay:   delay,
		logger:  o.logger,
		tracer:  o.tracer,
		metrics: newOrderMetrics(o.meter),
		now:     o.now,
		newID:   o.newID,
	}
}

// CreateOrder prices the order from the catalog, stores it as pending and
// schedules its completion. It returns without waiting for the completion.
func (s *OrderService) CreateOrder(ctx context.Context, productID string, quantity int) (domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "OrderService.CreateOrder",
		trace.WithAttributes(attribute.String("product.id", productID), attribute.Int("order.quantity", quantity)))
	defer span.End()

	if err := domain.ValidateOrderRequest(productID, quantity); err != nil {
		return domain.Order{}, s.fail(ctx, span, err, "invalid order request", slog.String("product.id", productID))
	}

	product, err := s.catalog.FetchProduct(ctx, productID)
	if err != nil {
		return domain.Order{}, s.fail(ctx, span, fmt.Errorf("fetch product %s: %w", productID, err),
			"failed to fetch product", slog.String("product.id", productID))
	}

	order, err := domain.NewOrder(s.newID(), product, quantity, s.now())
	if err != nil {
		return domain.Order{}, s.fail(ctx, span, err, "invalid order", slog.String("product.id", productID))
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return domain.Order{}, s.fail(ctx, span, fmt.Errorf("create order: %w", err),
			"failed to persist order", slog.String("order.id", order.ID))
	}
	s.metrics.recordCreated(ctx)
	span.SetAttributes(attribute.String("order.id", order.ID))
	s.logger.InfoContext(ctx, "order created",
		slog.String("order.id", order.ID),
		slog.String("product.id", order.ProductID),
		slog.String("total", order.Total.String()))

	s.schedule(ctx, order)
	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	order, err := s.orders.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("get order %s: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list orders", slog.String("error", err.Error()))
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// OrderEvents returns the stream entries of one order, oldest first.
func (s *OrderService) OrderEvents(ctx context.Context, id string) ([]domain.OrderEvent, error) {
	if _, err := s.orders.GetOrder(ctx, id); err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	events, err := s.events.OrderEvents(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read events for order %s: %w", id, err)
	}
	return events, nil
}

// ResumePending schedules completion for every order still pending in the
// store, e.g. ones left behind by a previous process. It returns how many
// were scheduled.
func (s *OrderService) ResumePending(ctx context.Context) (int, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return 0, fmt.Errorf("list orders: %w", err)
	}
	scheduled := 0
	for _, order := range orders {
		if order.Status != domain.OrderStatusPending {
			continue
		}
		if s.schedule(ctx, order) {
			scheduled++
		}
	}
	return scheduled, nil
}

// schedule never fails the caller: the order is already stored, so a full
// queue only leaves it pending until the next ResumePending.
func (s *OrderService) schedule(ctx context.Context, order domain.Order) bool {
	job := CompletionJob{OrderID: order.ID, DueAt: order.CreatedAt.Add(s.delay)}
	if err := s.queue.Schedule(job); err != nil {
		s.logger.ErrorContext(ctx, "failed to schedule order completion",
			slog.String("order.id", order.ID), slog.String("error", err.Error()))
		return false
	}
	return true
}

func (s *OrderService) fail(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}
