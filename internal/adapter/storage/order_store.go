package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

// KEYS[1] order hash, KEYS[2] event stream.
// ARGV: target status, updated_at, event type, stream maxlen, order id, pending status.
// Returns 0 when the order is missing, -1 when it is not pending, otherwise the
// id of the appended event.
var transitionOrderScript = redis.NewScript(`
local fields = redis.call('HMGET', KEYS[1], 'status', 'product_id', 'total')
local status = fields[1]
if not status then
	return 0
end
if status ~= ARGV[6] then
	return -1
end

redis.call('HSET', KEYS[1], 'status', ARGV[1], 'updated_at', ARGV[2])

local args = {KEYS[2]}
local maxlen = tonumber(ARGV[4])
if maxlen > 0 then
	table.insert(args, 'MAXLEN')
	table.insert(args, '~')
	table.insert(args, maxlen)
end
table.insert(args, '*')
local values = {
	'type', ARGV[3],
	'order_id', ARGV[5],
	'product_id', fields[2] or '',
	'status', ARGV[1],
	'total', fields[3] or '0',
	'timestamp', ARGV[2],
}
for _, v in ipairs(values) do
	table.insert(args, v)
end
return redis.call('XADD', unpack(args))
`)

func (r *RedisAdapter) CreateOrder(ctx context.Context, order domain.Order) error {
	event := domain.NewOrderEvent(order, order.CreatedAt)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, orderKey(order.ID), encodeOrder(order))
		pipe.ZAdd(ctx, orderIndexKey, redis.Z{Score: indexScore(order.CreatedAt), Member: order.ID})
		pipe.XAdd(ctx, r.eventArgs(event))
		return nil
	})
	if err != nil {
		return storeErr("create order", err)
	}
	return nil
}

func (r *RedisAdapter) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	fields, err := r.client.HGetAll(ctx, orderKey(id)).Result()
	if err != nil {
		return domain.Order{}, storeErr("get order", err)
	}
	if len(fields) == 0 {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
	}
	return decodeOrder(id, fields)
}

func (r *RedisAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	hashes, err := r.loadIndexed(ctx, orderIndexKey, orderKey)
	if err != nil {
		return nil, storeErr("list orders", err)
	}
	orders := make([]domain.Order, 0, len(hashes))
	for _, h := range hashes {
		o, err := decodeOrder(h.id, h.fields)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (r *RedisAdapter) TransitionOrder(ctx context.Context, id string, to domain.OrderStatus) (domain.Order, error) {
	if !domain.OrderStatusPending.CanTransition(to) {
		return domain.Order{}, fmt.Errorf("order %s to %s: %w", id, to, domain.ErrInvalidTransition)
	}

	now := formatTime(time.Now())
	res, err := transitionOrderScript.Run(ctx, r.client,
		[]string{orderKey(id), r.stream},
		string(to), now, string(domain.EventTypeFor(to)), r.streamMaxLen, id, string(domain.OrderStatusPending),
	).Result()
	if err != nil {
		return domain.Order{}, storeErr("transition order", err)
	}

	if code, ok := res.(int64); ok {
		if code == 0 {
			return domain.Order{}, fmt.Errorf("order %s: %w", id, domain.ErrNotFound)
		}
		return domain.Order{}, fmt.Errorf("order %s is not pending: %w", id, domain.ErrInvalidTransition)
	}
	return r.GetOrder(ctx, id)
}

// OrderEvents scans the stream for entries of one order, oldest first.
func (r *RedisAdapter) OrderEvents(ctx context.Context, orderID string) ([]domain.OrderEvent, error) {
	msgs, err := r.client.XRange(ctx, r.stream, "-", "+").Result()
	if err != nil {
		return nil, storeErr("read events", err)
	}
	events := make([]domain.OrderEvent, 0)
	for _, msg := range msgs {
		if fmt.Sprint(msg.Values["order_id"]) != orderID {
			continue
		}
		ev, err := decodeEvent(msg)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (r *RedisAdapter) eventArgs(event domain.OrderEvent) *redis.XAddArgs {
	args := &redis.XAddArgs{
		Stream: r.stream,
		Values: encodeEvent(event),
	}
	if r.streamMaxLen > 0 {
		args.MaxLen = r.streamMaxLen
		args.Approx = true
	}
	return args
}
