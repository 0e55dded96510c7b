package redislivestore

import (
	"github.com/redis/go-redis/v9"

	"github.com/ark-network/htlc/internal/core/ports"
)

func NewLiveStore(rdb *redis.Client, numOfRetries int) ports.LiveStore {
	return &redisLiveStore{
		signingSessionsStore:    NewSigningSessionsStore(rdb, numOfRetries),
		signedTransitionsStore:  NewSignedTransitionsStore(rdb),
		recordReservationsStore: NewRecordReservationsStore(rdb, numOfRetries),
	}
}

func (s *redisLiveStore) SigningSessions() ports.SigningSessionsStore {
	return s.signingSessionsStore
}
func (s *redisLiveStore) SignedTransitions() ports.SignedTransitionsStore {
	return s.signedTransitionsStore
}
func (s *redisLiveStore) RecordReservations() ports.RecordReservationsStore {
	return s.recordReservationsStore
}

type redisLiveStore struct {
	signingSessionsStore    ports.SigningSessionsStore
	signedTransitionsStore  ports.SignedTransitionsStore
	recordReservationsStore ports.RecordReservationsStore
}
