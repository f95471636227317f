package storage

import (
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/core/domain"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// indexScore is exact in a float64 for any realistic date.
func indexScore(t time.Time) float64 {
	return float64(t.UnixMicro())
}

func encodeProduct(p domain.Product) map[string]any {
	return map[string]any{
		"id":         p.ID,
		"name":       p.Name,
		"price":      p.Price.String(),
		"quantity":   p.Quantity,
		"created_at": formatTime(p.CreatedAt),
	}
}

func decodeProduct(id string, fields map[string]string) (domain.Product, error) {
	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return domain.Product{}, corrupt("product", id, "price", err)
	}
	quantity, err := strconv.Atoi(fields["quantity"])
	if err != nil {
		return domain.Product{}, corrupt("product", id, "quantity", err)
	}
	createdAt, err := parseTime(fields["created_at"])
	if err != nil {
		return domain.Product{}, corrupt("product", id, "created_at", err)
	}
	return domain.Product{
		ID:        id,
		Name:      fields["name"],
		Price:     price,
		Quantity:  quantity,
		CreatedAt: createdAt,
	}, nil
}

func encodeOrder(o domain.Order) map[string]any {
	return map[string]any{
		"id":         o.ID,
		"product_id": o.ProductID,
		"quantity":   o.Quantity,
		"price":      o.Price.String(),
		"total":      o.Total.String(),
		"status":     string(o.Status),
		"created_at": formatTime(o.CreatedAt),
		"updated_at": formatTime(o.UpdatedAt),
	}
}

func decodeOrder(id string, fields map[string]string) (domain.Order, error) {
	quantity, err := strconv.Atoi(fields["quantity"])
	if err != nil {
		return domain.Order{}, corrupt("order", id, "quantity", err)
	}
	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return domain.Order{}, corrupt("order", id, "price", err)
	}
	total, err := decimal.NewFromString(fields["total"])
	if err != nil {
		return domain.Order{}, corrupt("order", id, "total", err)
	}
	status := domain.OrderStatus(fields["status"])
	if !status.Valid() {
		return domain.Order{}, corrupt("order", id, "status", fmt.Errorf("unknown status %q", status))
	}
	createdAt, err := parseTime(fields["created_at"])
	if err != nil {
		return domain.Order{}, corrupt("order", id, "created_at", err)
	}
	updatedAt, err := parseTime(fields["updated_at"])
	if err != nil {
		return domain.Order{}, corrupt("order", id, "updated_at", err)
	}
	return domain.Order{
		ID:        id,
		ProductID: fields["product_id"],
		Quantity:  quantity,
		Price:     price,
		Total:     total,
		Status:    status,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func encodeEvent(ev domain.OrderEvent) map[string]any {
	return map[string]any{
		"type":       string(ev.Type),
		"order_id":   ev.OrderID,
		"product_id": ev.ProductID,
		"status":     string(ev.Status),
		"total":      ev.Total.String(),
		"timestamp":  formatTime(ev.Timestamp),
	}
}

func decodeEvent(msg redis.XMessage) (domain.OrderEvent, error) {
	field := func(name string) string {
		v, ok := msg.Values[name]
		if !ok {
			return ""
		}
		return fmt.Sprint(v)
	}
	total, err := decimal.NewFromString(field("total"))
	if err != nil {
		return domain.OrderEvent{}, corrupt("event", msg.ID, "total", err)
	}
	ts, err := parseTime(field("timestamp"))
	if err != nil {
		return domain.OrderEvent{}, corrupt("event", msg.ID, "timestamp", err)
	}
	return domain.OrderEvent{
		ID:        msg.ID,
		Type:      domain.EventType(field("type")),
		OrderID:   field("order_id"),
		ProductID: field("product_id"),
		Status:    domain.OrderStatus(field("status")),
		Total:     total,
		Timestamp: ts,
	}, nil
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func corrupt(kind, id, field string, err error) error {
	return fmt.Errorf("%w: %s %s has invalid %s: %w", domain.ErrStore, kind, id, field, err)
}
