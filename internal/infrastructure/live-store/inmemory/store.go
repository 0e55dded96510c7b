package inmemorylivestore

import (
	"github.com/ark-network/htlc/internal/core/ports"
)

func NewLiveStore() ports.LiveStore {
	return &inMemoryLiveStore{
		signingSessionsStore:    NewSigningSessionsStore(),
		signedTransitionsStore:  NewSignedTransitionsStore(),
		recordReservationsStore: NewRecordReservationsStore(),
	}
}

func (s *inMemoryLiveStore) SigningSessions() ports.SigningSessionsStore {
	return s.signingSessionsStore
}
func (s *inMemoryLiveStore) SignedTransitions() ports.SignedTransitionsStore {
	return s.signedTransitionsStore
}
func (s *inMemoryLiveStore) RecordReservations() ports.RecordReservationsStore {
	return s.recordReservationsStore
}

type inMemoryLiveStore struct {
	signingSessionsStore    ports.SigningSessionsStore
	signedTransitionsStore  ports.SignedTransitionsStore
	recordReservationsStore ports.RecordReservationsStore
}
