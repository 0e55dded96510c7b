package redislivestore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// jsonStore keeps JSON encoded values of type T under a common key prefix.
// A zero ttl keeps values until deleted.
type jsonStore[T any] struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func newJSONStore[T any](rdb *redis.Client, prefix string, ttl time.Duration) *jsonStore[T] {
	return &jsonStore[T]{rdb, prefix, ttl}
}

func (s *jsonStore[T]) key(id string) string {
	return s.prefix + id
}

// get returns nil, without error, if nothing is stored for id.
func (s *jsonStore[T]) get(ctx context.Context, id string) (*T, error) {
	buf, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	value := new(T)
	if err := json.Unmarshal(buf, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (s *jsonStore[T]) put(ctx context.Context, id string, value T) error {
	buf, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(id), buf, s.ttl).Err()
}

func (s *jsonStore[T]) delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
