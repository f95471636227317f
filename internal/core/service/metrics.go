package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rl1809/storefront/internal/core/domain"
)

type orderMetrics struct {
	created   metric.Int64Counter
	finalized metric.Int64Counter
	abandoned metric.Int64Counter
}

func newOrderMetrics(m metric.Meter) orderMetrics {
	if m == nil {
		return orderMetrics{}
	}
	created, _ := m.Int64Counter("orders.created", metric.WithDescription("Number of orders accepted as pending"))
	finalized, _ := m.Int64Counter("orders.finalized", metric.WithDescription("Number of orders moved to a terminal status"))
	abandoned, _ := m.Int64Counter("orders.completion_abandoned", metric.WithDescription("Completion jobs dropped at shutdown"))
	return orderMetrics{created: created, finalized: finalized, abandoned: abandoned}
}

func (m orderMetrics) recordCreated(ctx context.Context) {
	if m.created != nil {
		m.created.Add(ctx, 1)
	}
}

func (m orderMetrics) recordFinalized(ctx context.Context, status domain.OrderStatus) {
	if m.finalized != nil {
		m.finalized.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(status))))
	}
}

func (m orderMetrics) recordAbandoned(ctx context.Context, n int) {
	if m.abandoned != nil && n > 0 {
		m.abandoned.Add(ctx, int64(n))
	}
}
