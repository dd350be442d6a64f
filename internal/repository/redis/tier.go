package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dtroode/inkdesk/internal/model"
)

var _ model.Tier = (*Tier)(nil)

// Tier is a session-scoped tier backed by Redis. Every write refreshes the
// TTL of the keys, so an idle session expires on its own.
type Tier struct {
	rdb       redis.Cmdable
	prefix    string
	namespace string
	ttl       time.Duration
}

func NewTier(rdb redis.Cmdable, prefix, namespace string, ttl time.Duration) *Tier {
	return &Tier{
		rdb:       rdb,
		prefix:    prefix,
		namespace: namespace,
		ttl:       ttl,
	}
}

func (t *Tier) Name() string {
	return "redis:" + t.namespace
}

func (t *Tier) key(k string) string {
	return t.prefix + ":" + t.namespace + ":" + k
}

func (t *Tier) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := t.rdb.Get(ctx, t.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

// SetAll writes the values in a MULTI/EXEC block.
func (t *Tier) SetAll(ctx context.Context, values map[string]string) error {
	_, err := t.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for k, v := range values {
			pipe.Set(ctx, t.key(k), v, t.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set values: %w", err)
	}
	return nil
}

func (t *Tier) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, t.key(k))
	}
	if err := t.rdb.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("failed to delete values: %w", err)
	}
	return nil
}
