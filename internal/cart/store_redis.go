package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"FreshBasket/pkg/apperr"
)

// RedisStore keeps each cart in a hash "cart:{sid}" of product id -> quantity,
// expiring ttl after the last write.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(sid string) string {
	return fmt.Sprintf("cart:%s", sid)
}

func (s *RedisStore) Load(ctx context.Context, sid string) (Cart, error) {
	fields, err := s.client.HGetAll(ctx, s.key(sid)).Result()
	if err == redis.Nil {
		return Cart{}, nil
	}
	if err != nil {
		return nil, apperr.Unavailable("cart load", err)
	}

	c := make(Cart, len(fields))
	for id, raw := range fields {
		q, err := decimal.NewFromString(raw)
		if err != nil || !q.IsPositive() {
			continue
		}
		c[id] = q
	}
	return c, nil
}

// Save replaces the whole hash in one MULTI/EXEC.
func (s *RedisStore) Save(ctx context.Context, sid string, c Cart) error {
	key := s.key(sid)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(c) == 0 {
			return nil
		}
		values := make(map[string]any, len(c))
		for id, q := range c {
			values[id] = q.String()
		}
		pipe.HSet(ctx, key, values)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return apperr.Unavailable("cart save", err)
}

func (s *RedisStore) Clear(ctx context.Context, sid string) error {
	return apperr.Unavailable("cart clear", s.client.Del(ctx, s.key(sid)).Err())
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return apperr.Unavailable("cart ping", s.client.Ping(ctx).Err())
}
