package redislivestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const recordReservationsPrefix = "htlc:reserved:"

type recordReservationsStore struct {
	rdb          *redis.Client
	numOfRetries int
}

func NewRecordReservationsStore(rdb *redis.Client, numOfRetries int) ports.RecordReservationsStore {
	if numOfRetries <= 0 {
		numOfRetries = 1
	}
	return &recordReservationsStore{rdb, numOfRetries}
}

func (s *recordReservationsStore) Reserve(
	ctx context.Context, recordId, transitionId string, ttl time.Duration,
) (string, error) {
	key := recordReservationsPrefix + recordId
	holder := transitionId

	err := s.withRetries(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil && current != transitionId {
			holder = current
			return nil
		}
		holder = transitionId
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, transitionId, ttl)
			return nil
		})
		return err
	}, key)
	if err != nil {
		return "", err
	}
	return holder, nil
}

func (s *recordReservationsStore) Release(ctx context.Context, recordId, transitionId string) {
	key := recordReservationsPrefix + recordId

	if err := s.withRetries(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if current != transitionId {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key); err != nil {
		log.WithError(err).Warnf("failed to release reservation of htlc %s", recordId)
	}
}

func (s *recordReservationsStore) withRetries(
	ctx context.Context, fn func(tx *redis.Tx) error, keys ...string,
) error {
	for attempt := 0; attempt < s.numOfRetries; attempt++ {
		err := s.rdb.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("reservation update failed after %d retries", s.numOfRetries)
}
