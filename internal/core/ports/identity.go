package ports

import "context"

// IdentityService authenticates the local party and verifies the signatures
// of the other known parties.
type IdentityService interface {
	PartyId() string
	Sign(ctx context.Context, payload []byte) ([]byte, error)
	Verify(ctx context.Context, party string, payload, signature []byte) error
}
