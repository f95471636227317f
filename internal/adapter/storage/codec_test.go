package storage

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/storefront/internal/core/domain"
)

func stringify(m map[string]any) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			out[k] = val
		case int:
			out[k] = decimal.NewFromInt(int64(val)).String()
		}
	}
	return out
}

func TestDecodeOrder_RoundTripsHashFields(t *testing.T) {
	created := time.Date(2025, 3, 4, 5, 6, 7, 891, time.UTC)
	order := domain.Order{
		ID:        "o-1",
		ProductID: "p-1",
		Quantity:  3,
		Price:     decimal.RequireFromString("0.10"),
		Total:     decimal.RequireFromString("0.30"),
		Status:    domain.OrderStatusFailed,
		CreatedAt: created,
		UpdatedAt: created.Add(time.Second),
	}

	got, err := decodeOrder("o-1", stringify(encodeOrder(order)))
	require.NoError(t, err)
	assert.Equal(t, order.ProductID, got.ProductID)
	assert.Equal(t, order.Quantity, got.Quantity)
	assert.True(t, order.Total.Equal(got.Total))
	assert.Equal(t, order.Status, got.Status)
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, order.UpdatedAt.Equal(got.UpdatedAt))
}

func TestDecodeOrder_RejectsCorruptHash(t *testing.T) {
	fields := map[string]string{
		"quantity": "2", "price": "1", "total": "2", "status": "shipped",
		"created_at": time.Now().Format(time.RFC3339Nano), "updated_at": time.Now().Format(time.RFC3339Nano),
	}
	_, err := decodeOrder("o-1", fields)
	require.ErrorIs(t, err, domain.ErrStore)

	fields["status"] = "pending"
	fields["total"] = "abc"
	_, err = decodeOrder("o-1", fields)
	require.ErrorIs(t, err, domain.ErrStore)
}

func TestDecodeEvent(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	msg := redis.XMessage{ID: "1-0", Values: map[string]interface{}{
		"type": "order-completed", "order_id": "o-1", "product_id": "p-1",
		"status": "completed", "total": "10.5", "timestamp": ts.Format(time.RFC3339Nano),
	}}

	ev, err := decodeEvent(msg)
	require.NoError(t, err)
	assert.Equal(t, "1-0", ev.ID)
	assert.Equal(t, domain.EventOrderCompleted, ev.Type)
	assert.Equal(t, domain.OrderStatusCompleted, ev.Status)
	assert.Equal(t, "10.5", ev.Total.String())
	assert.True(t, ts.Equal(ev.Timestamp))
}
