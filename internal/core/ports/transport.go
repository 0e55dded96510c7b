package ports

import (
	"context"

	"github.com/ark-network/htlc/internal/core/domain"
)

const (
	MessageUndefined MessageType = iota
	MessageProposal
	MessageSignature
	MessageRejection
	MessageFinalized
	MessageAbort
)

type MessageType int

func (t MessageType) String() string {
	switch t {
	case MessageProposal:
		return "PROPOSAL"
	case MessageSignature:
		return "SIGNATURE"
	case MessageRejection:
		return "REJECTION"
	case MessageFinalized:
		return "FINALIZED"
	case MessageAbort:
		return "ABORT"
	default:
		return "UNDEFINED"
	}
}

// Message is the envelope exchanged between parties during a signing session.
// Proposals carry the transition and the role the receiver is asked to play.
// Finalization notices also carry the signatures of every required signer.
type Message struct {
	Type       MessageType
	SessionId  string
	From       string
	To         string
	Role       domain.Role
	Transition *domain.Transition
	Signature  []byte
	Signatures map[string][]byte
	Kind       domain.ErrorKind
	Reason     string
}

// Transport delivers messages between parties. Messages from one sender to
// one receiver are delivered in order.
type Transport interface {
	Send(ctx context.Context, msg Message) error
	// Receive returns the inbox of the local party. The channel is closed
	// when the transport is closed.
	Receive(ctx context.Context) (<-chan Message, error)
	Close()
}
