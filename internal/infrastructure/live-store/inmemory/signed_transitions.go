package inmemorylivestore

import (
	"context"
	"sync"

	"github.com/ark-network/htlc/internal/core/ports"
)

type signedTransitionsStore struct {
	lock       sync.RWMutex
	signatures map[string][]byte
}

func NewSignedTransitionsStore() ports.SignedTransitionsStore {
	return &signedTransitionsStore{
		signatures: make(map[string][]byte),
	}
}

func (s *signedTransitionsStore) Add(_ context.Context, transitionId string, signature []byte) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.signatures[transitionId] = append([]byte{}, signature...)
	return nil
}

func (s *signedTransitionsStore) Get(_ context.Context, transitionId string) ([]byte, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	sig, ok := s.signatures[transitionId]
	if !ok {
		return nil, false
	}
	return append([]byte{}, sig...), true
}

func (s *signedTransitionsStore) Delete(_ context.Context, transitionId string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.signatures, transitionId)
}
