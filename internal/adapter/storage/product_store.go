package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

func (r *RedisAdapter) SaveProduct(ctx context.Context, product domain.Product) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, productKey(product.ID), encodeProduct(product))
		pipe.ZAdd(ctx, productIndexKey, redis.Z{Score: indexScore(product.CreatedAt), Member: product.ID})
		return nil
	})
	if err != nil {
		return storeErr("save product", err)
	}
	return nil
}

func (r *RedisAdapter) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	fields, err := r.client.HGetAll(ctx, productKey(id)).Result()
	if err != nil {
		return domain.Product{}, storeErr("get product", err)
	}
	if len(fields) == 0 {
		return domain.Product{}, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return decodeProduct(id, fields)
}

func (r *RedisAdapter) ListProducts(ctx context.Context) ([]domain.Product, error) {
	hashes, err := r.loadIndexed(ctx, productIndexKey, productKey)
	if err != nil {
		return nil, storeErr("list products", err)
	}
	products := make([]domain.Product, 0, len(hashes))
	for _, h := range hashes {
		p, err := decodeProduct(h.id, h.fields)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (r *RedisAdapter) DeleteProduct(ctx context.Context, id string) error {
	var deleted *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, productKey(id))
		pipe.ZRem(ctx, productIndexKey, id)
		return nil
	})
	if err != nil {
		return storeErr("delete product", err)
	}
	if deleted.Val() == 0 {
		return fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

type indexedHash struct {
	id     string
	fields map[string]string
}

// loadIndexed reads every hash referenced by a sorted-set index in one
// pipeline. Members whose hash is gone are skipped.
func (r *RedisAdapter) loadIndexed(ctx context.Context, indexKey string, keyFn func(string) string) ([]indexedHash, error) {
	ids, err := r.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, keyFn(id))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	hashes := make([]indexedHash, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		hashes = append(hashes, indexedHash{id: ids[i], fields: fields})
	}
	return hashes, nil
}
