package inmemorylivestore

import (
	"context"
	"sync"
	"time"

	"github.com/ark-network/htlc/internal/core/ports"
)

type reservation struct {
	transitionId string
	expiresAt    time.Time
}

type recordReservationsStore struct {
	lock         sync.Mutex
	reservations map[string]reservation
}

func NewRecordReservationsStore() ports.RecordReservationsStore {
	return &recordReservationsStore{
		reservations: make(map[string]reservation),
	}
}

func (s *recordReservationsStore) Reserve(
	_ context.Context, recordId, transitionId string, ttl time.Duration,
) (string, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	now := time.Now()
	if r, ok := s.reservations[recordId]; ok && now.Before(r.expiresAt) {
		if r.transitionId != transitionId {
			return r.transitionId, nil
		}
	}
	s.reservations[recordId] = reservation{transitionId, now.Add(ttl)}
	return transitionId, nil
}

func (s *recordReservationsStore) Release(_ context.Context, recordId, transitionId string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if r, ok := s.reservations[recordId]; ok && r.transitionId == transitionId {
		delete(s.reservations, recordId)
	}
}
