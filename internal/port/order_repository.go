package port

import (
	"context"

	"github.com/rl1809/storefront/internal/core/domain"
)

type OrderRepository interface {
	// CreateOrder persists a pending order and appends its order-created event atomically
	CreateOrder(ctx context.Context, order domain.Order) error

	// GetOrder returns domain.ErrNotFound when the id is unknown
	GetOrder(ctx context.Context, id string) (domain.Order, error)

	// ListOrders returns every order, oldest first
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// TransitionOrder moves a pending order to a terminal status and appends the
	// matching event in one step. Returns domain.ErrInvalidTransition if the
	// order is no longer pending.
	TransitionOrder(ctx context.Context, id string, to domain.OrderStatus) (domain.Order, error)
}

// EventReader reads back the order event stream.
type EventReader interface {
	OrderEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error)
}
