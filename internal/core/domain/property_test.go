package domain_test

import (
	"testing"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestHTLCWindowsAreExclusive checks that at any instant at most one of claim
// and unlock can succeed on the same locked record.
func TestHTLCWindowsAreExclusive(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("claim and unlock windows never overlap", prop.ForAll(
		func(offsetNanos int64) bool {
			at := expiry.Add(time.Duration(offsetNanos))

			claimable := lockedHTLCOrNil()
			unlockable := lockedHTLCOrNil()
			if claimable == nil || unlockable == nil {
				return false
			}

			_, claimErr := claimable.Claim(secret, "bob", txRef, at)
			_, unlockErr := unlockable.Unlock("alice", txRef, at)

			return (claimErr == nil) != (unlockErr == nil)
		},
		gen.Int64Range(-int64(time.Hour), int64(time.Hour)),
	))

	properties.Property("terminal records reject every operation", prop.ForAll(
		func(claimFirst bool, offsetNanos int64) bool {
			h := lockedHTLCOrNil()
			if h == nil {
				return false
			}
			if claimFirst {
				if _, err := h.Claim(secret, "bob", txRef, now); err != nil {
					return false
				}
			} else {
				if _, err := h.Unlock("alice", txRef, expiry.Add(time.Second)); err != nil {
					return false
				}
			}

			at := now.Add(time.Duration(offsetNanos))
			_, claimErr := h.Claim(secret, "bob", txRef, at)
			_, unlockErr := h.Unlock("alice", txRef, at)

			// Claims of a reclaimed record are reported as expired.
			expectedClaimKind := domain.ErrorKindAlreadyTerminal
			if !claimFirst {
				expectedClaimKind = domain.ErrorKindExpired
			}
			return domain.KindOf(claimErr) == expectedClaimKind &&
				domain.KindOf(unlockErr) == domain.ErrorKindAlreadyTerminal &&
				h.IsTerminal()
		},
		gen.Bool(),
		gen.Int64Range(0, int64(time.Hour)),
	))

	properties.Property("only the preimage verifies against its hash", prop.ForAll(
		func(preimage, other string) bool {
			_, encoded := domain.GenerateHash([]byte(preimage))
			h, err := domain.HashFromBase64(encoded)
			if err != nil {
				return false
			}
			if !domain.VerifyHash([]byte(preimage), h) {
				return false
			}
			return preimage == other || !domain.VerifyHash([]byte(other), h)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func lockedHTLCOrNil() *domain.HTLC {
	h := domain.NewHTLC()
	if _, err := h.Lock(
		recordId, hash, expiry, lockers, recipients, issuer, observers, assetRef, txRef, now,
	); err != nil {
		return nil
	}
	return h
}
