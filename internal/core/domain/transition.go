package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"
)

const (
	TransitionUndefined TransitionKind = iota
	TransitionLock
	TransitionClaim
	TransitionUnlock
)

type TransitionKind int

func (k TransitionKind) String() string {
	switch k {
	case TransitionLock:
		return "LOCK"
	case TransitionClaim:
		return "CLAIM"
	case TransitionUnlock:
		return "UNLOCK"
	default:
		return "UNDEFINED"
	}
}

// Transition is the proposal every required signer authorizes: the record as
// seen by the submitter before the change (or the record to create, for
// locks), the asset state it applies to, the resulting owners and the parties
// whose signature makes it durable.
type Transition struct {
	Kind       TransitionKind
	Record     HTLC
	Asset      Asset
	NewOwners  []string
	Preimage   []byte
	Signers    []string
	Submitter  string
	ProposedAt int64
}

// ProposalTime is the instant the time window rules are checked against when
// the transition is applied.
func (t Transition) ProposalTime() time.Time {
	return time.UnixMilli(t.ProposedAt).UTC()
}

func (t Transition) FromStatus() HTLCStatus {
	if t.Kind == TransitionLock {
		return HTLCUndefinedStatus
	}
	return t.Record.Status
}

func (t Transition) ToStatus() HTLCStatus {
	switch t.Kind {
	case TransitionLock:
		return HTLCLockedStatus
	case TransitionClaim:
		return HTLCClaimedStatus
	case TransitionUnlock:
		return HTLCReclaimedStatus
	default:
		return HTLCUndefinedStatus
	}
}

// Payload returns the canonical JSON (RFC 8785) serialization of the
// transition, the bytes every signer signs.
func (t Transition) Payload() ([]byte, error) {
	buf, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize transition: %s", err)
	}
	canonical, err := jcs.Transform(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to canonicalize transition: %s", err)
	}
	return canonical, nil
}

// Id is the deterministic identifier of the transition, used as tx ref of the
// resulting record change.
func (t Transition) Id() (string, error) {
	payload, err := t.Payload()
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(payload)
	return hex.EncodeToString(digest[:]), nil
}

func (t Transition) Validate() error {
	if t.Kind == TransitionUndefined {
		return NewError(ErrorKindInvalidArgument, "undefined transition kind")
	}
	if t.Submitter == "" {
		return NewError(ErrorKindInvalidArgument, "missing submitter")
	}
	if _, err := ParseRecordId(t.Record.Id); err != nil {
		return err
	}
	// A partial fungible lock refers to the holding it is split from.
	sameAsset := t.Asset.Key() == t.Record.Asset.Key()
	if t.Kind == TransitionLock && t.Asset.Fungible {
		sameAsset = t.Asset.Type == t.Record.Asset.Type
	}
	if !sameAsset {
		return NewError(
			ErrorKindInvalidArgument, "asset %s does not match htlc asset %s",
			t.Asset.Key(), t.Record.Asset.Key(),
		)
	}
	if len(t.NewOwners) == 0 {
		return NewError(ErrorKindInvalidArgument, "missing new owners")
	}
	if !NewPartySet(t.Signers...).Contains(t.Submitter) {
		return NewError(ErrorKindNotAuthorized, "submitter %s is not a signer", t.Submitter)
	}
	if t.Kind == TransitionClaim && len(t.Preimage) == 0 {
		return NewError(ErrorKindInvalidArgument, "missing preimage")
	}
	return nil
}
