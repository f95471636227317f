package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventOrderCreated   EventType = "order-created"
	EventOrderCompleted EventType = "order-completed"
	EventOrderFailed    EventType = "order-failed"
)

// OrderEvent is one entry on the order event stream. Entries are write-once.
type OrderEvent struct {
	ID        string
	Type      EventType
	OrderID   string
	ProductID string
	Status    OrderStatus
	Total     decimal.Decimal
	Timestamp time.Time
}

// EventTypeFor maps a status to the event announcing it.
func EventTypeFor(status OrderStatus) EventType {
	switch status {
	case OrderStatusCompleted:
		return EventOrderCompleted
	case OrderStatusFailed:
		return EventOrderFailed
	default:
		return EventOrderCreated
	}
}

func NewOrderEvent(order Order, at time.Time) OrderEvent {
	return OrderEvent{
		Type:      EventTypeFor(order.Status),
		OrderID:   order.ID,
		ProductID: order.ProductID,
		Status:    order.Status,
		Total:     order.Total,
		Timestamp: at.UTC(),
	}
}
