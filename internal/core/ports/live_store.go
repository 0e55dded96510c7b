package ports

import (
	"context"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
)

type LiveStore interface {
	SigningSessions() SigningSessionsStore
	SignedTransitions() SignedTransitionsStore
	RecordReservations() RecordReservationsStore
}

// SigningSessionsStore keeps the state of the signing sessions coordinated by
// the local party.
type SigningSessionsStore interface {
	New(
		ctx context.Context, sessionId string, payload []byte, signers []string,
	) (*SigningSession, error)
	Get(ctx context.Context, sessionId string) (*SigningSession, bool)
	AddSignature(ctx context.Context, sessionId, party string, signature []byte) error
	AddRejection(ctx context.Context, sessionId string, rejection Rejection) error
	// Done is closed once every signer signed or any signer rejected.
	Done(sessionId string) <-chan struct{}
	Delete(ctx context.Context, sessionId string)
}

// SignedTransitionsStore remembers the transitions the local party signed as
// acceptor, so that a duplicated proposal gets the same answer.
type SignedTransitionsStore interface {
	Add(ctx context.Context, transitionId string, signature []byte) error
	Get(ctx context.Context, transitionId string) ([]byte, bool)
	Delete(ctx context.Context, transitionId string)
}

// RecordReservationsStore holds, for every record, the one transition the
// local party signed or submitted and that is neither finalized nor aborted.
type RecordReservationsStore interface {
	// Reserve holds recordId for transitionId until released or until ttl
	// elapses. It returns the transition holding the record, which is not
	// transitionId if the record is already reserved by another transition.
	Reserve(ctx context.Context, recordId, transitionId string, ttl time.Duration) (string, error)
	// Release frees recordId if it is held by transitionId.
	Release(ctx context.Context, recordId, transitionId string)
}

type Rejection struct {
	Party  string
	Kind   domain.ErrorKind
	Reason string
}

type SigningSession struct {
	Id         string
	Payload    []byte
	Signers    []string
	Signatures map[string][]byte
	Rejection  *Rejection
}

func (s *SigningSession) AllSigned() bool {
	for _, signer := range s.Signers {
		if _, ok := s.Signatures[signer]; !ok {
			return false
		}
	}
	return true
}

func (s *SigningSession) IsSigner(party string) bool {
	for _, signer := range s.Signers {
		if signer == party {
			return true
		}
	}
	return false
}

func (s *SigningSession) IsDone() bool {
	return s.Rejection != nil || s.AllSigned()
}
