package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusFailed:
		return true
	default:
		return false
	}
}

func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// CanTransition reports whether an order may move from s to next. Pending is
// the only state that can change, and only into a terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	return s == OrderStatusPending && next.Terminal()
}

type Order struct {
	ID        string
	ProductID string
	Quantity  int
	Price     decimal.Decimal
	Total     decimal.Decimal
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateOrderRequest checks the caller-supplied part of an order before the
// catalog is consulted.
func ValidateOrderRequest(productID string, quantity int) error {
	if strings.TrimSpace(productID) == "" {
		return invalid("id", "product id is required")
	}
	if quantity <= 0 {
		return invalid("quantity", "must be a positive integer")
	}
	return nil
}

// NewOrder snapshots the product price and derives the total. The result is
// always pending.
func NewOrder(id string, product Product, quantity int, now time.Time) (Order, error) {
	if err := ValidateOrderRequest(product.ID, quantity); err != nil {
		return Order{}, err
	}
	now = now.UTC()
	return Order{
		ID:        id,
		ProductID: product.ID,
		Quantity:  quantity,
		Price:     product.Price,
		Total:     product.Price.Mul(decimal.NewFromInt(int64(quantity))),
		Status:    OrderStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
