package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_TotalIsPriceTimesQuantity(t *testing.T) {
	product := Product{ID: "p-1", Name: "Laptop", Price: decimal.RequireFromString("999.99"), Quantity: 10}

	order, err := NewOrder("o-1", product, 2, time.Now())
	require.NoError(t, err)

	assert.Equal(t, "1999.98", order.Total.String())
	assert.True(t, order.Price.Equal(product.Price))
	assert.Equal(t, OrderStatusPending, order.Status)
	assert.Equal(t, "p-1", order.ProductID)
	assert.Equal(t, order.CreatedAt, order.UpdatedAt)
}

func TestValidateOrderRequest(t *testing.T) {
	require.NoError(t, ValidateOrderRequest("p-1", 1))
	require.ErrorIs(t, ValidateOrderRequest("p-1", 0), ErrValidation)
	require.ErrorIs(t, ValidateOrderRequest("p-1", -3), ErrValidation)
	require.ErrorIs(t, ValidateOrderRequest(" ", 1), ErrValidation)
}

func TestOrderStatus_CanTransition(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusCompleted))
	assert.True(t, OrderStatusPending.CanTransition(OrderStatusFailed))
	assert.False(t, OrderStatusPending.CanTransition(OrderStatusPending))
	assert.False(t, OrderStatusCompleted.CanTransition(OrderStatusFailed))
	assert.False(t, OrderStatusFailed.CanTransition(OrderStatusCompleted))
	assert.False(t, OrderStatus("shipped").Valid())
}

func TestNewOrderEvent(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	order := Order{ID: "o-1", ProductID: "p-1", Status: OrderStatusCompleted, Total: decimal.NewFromInt(5)}

	ev := NewOrderEvent(order, at)
	assert.Equal(t, EventOrderCompleted, ev.Type)
	assert.Equal(t, "o-1", ev.OrderID)
	assert.Equal(t, OrderStatusCompleted, ev.Status)
	assert.Equal(t, at, ev.Timestamp)
	assert.Equal(t, EventOrderFailed, EventTypeFor(OrderStatusFailed))
	assert.Equal(t, EventOrderCreated, EventTypeFor(OrderStatusPending))
}
