package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

const (
	productKeyPrefix = "product:"
	productIndexKey  = "products:index"
	orderKeyPrefix   = "order:"
	orderIndexKey    = "orders:index"

	DefaultEventStream = "order-events"
)

// RedisAdapter persists products and orders as hashes, each indexed by a
// sorted set scored on creation time, and appends order events to a stream.
type RedisAdapter struct {
	client       *redis.Client
	stream       string
	streamMaxLen int64
}

// NewRedisAdapter uses stream for order events. A positive maxLen trims the
// stream approximately to that many entries.
func NewRedisAdapter(client *redis.Client, stream string, maxLen int64) *RedisAdapter {
	if stream == "" {
		stream = DefaultEventStream
	}
	return &RedisAdapter{client: client, stream: stream, streamMaxLen: maxLen}
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return storeErr("ping", err)
	}
	return nil
}

func (r *RedisAdapter) Stream() string {
	return r.stream
}

func productKey(id string) string { return productKeyPrefix + id }

func orderKey(id string) string { return orderKeyPrefix + id }

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStore, op, err)
}
