package inmemorylivestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/ark-network/htlc/internal/core/ports"
)

type signingSessionsStore struct {
	lock     sync.RWMutex
	sessions map[string]*ports.SigningSession
	doneChs  map[string]chan struct{}
}

func NewSigningSessionsStore() ports.SigningSessionsStore {
	return &signingSessionsStore{
		sessions: make(map[string]*ports.SigningSession),
		doneChs:  make(map[string]chan struct{}),
	}
}

func (s *signingSessionsStore) New(
	_ context.Context, sessionId string, payload []byte, signers []string,
) (*ports.SigningSession, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if _, ok := s.sessions[sessionId]; ok {
		return nil, fmt.Errorf("signing session %s already exists", sessionId)
	}

	session := &ports.SigningSession{
		Id:         sessionId,
		Payload:    append([]byte{}, payload...),
		Signers:    append([]string{}, signers...),
		Signatures: make(map[string][]byte),
	}
	s.sessions[sessionId] = session
	s.doneChs[sessionId] = make(chan struct{})
	return copySession(session), nil
}

func (s *signingSessionsStore) Get(_ context.Context, sessionId string) (*ports.SigningSession, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	session, ok := s.sessions[sessionId]
	if !ok {
		return nil, false
	}
	return copySession(session), true
}

func (s *signingSessionsStore) AddSignature(
	_ context.Context, sessionId, party string, signature []byte,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	session, ok := s.sessions[sessionId]
	if !ok {
		return fmt.Errorf("signing session %s not found", sessionId)
	}
	if !session.IsSigner(party) {
		return fmt.Errorf("%s is not a signer of session %s", party, sessionId)
	}
	if session.IsDone() {
		return nil
	}

	session.Signatures[party] = append([]byte{}, signature...)
	s.closeIfDone(session)
	return nil
}

func (s *signingSessionsStore) AddRejection(
	_ context.Context, sessionId string, rejection ports.Rejection,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	session, ok := s.sessions[sessionId]
	if !ok {
		return fmt.Errorf("signing session %s not found", sessionId)
	}
	if session.IsDone() {
		return nil
	}

	session.Rejection = &rejection
	s.closeIfDone(session)
	return nil
}

func (s *signingSessionsStore) Done(sessionId string) <-chan struct{} {
	s.lock.RLock()
	defer s.lock.RUnlock()

	ch, ok := s.doneChs[sessionId]
	if !ok {
		// Unknown sessions never complete.
		return make(chan struct{})
	}
	return ch
}

func (s *signingSessionsStore) Delete(_ context.Context, sessionId string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	delete(s.sessions, sessionId)
	delete(s.doneChs, sessionId)
}

// closeIfDone must be called with the lock held.
func (s *signingSessionsStore) closeIfDone(session *ports.SigningSession) {
	if !session.IsDone() {
		return
	}
	ch, ok := s.doneChs[session.Id]
	if !ok {
		return
	}
	select {
	case <-ch:
	default:
		close(ch)
	}
}

func copySession(session *ports.SigningSession) *ports.SigningSession {
	signatures := make(map[string][]byte, len(session.Signatures))
	for party, sig := range session.Signatures {
		signatures[party] = append([]byte{}, sig...)
	}
	var rejection *ports.Rejection
	if session.Rejection != nil {
		r := *session.Rejection
		rejection = &r
	}
	return &ports.SigningSession{
		Id:         session.Id,
		Payload:    append([]byte{}, session.Payload...),
		Signers:    append([]string{}, session.Signers...),
		Signatures: signatures,
		Rejection:  rejection,
	}
}
