package domain

import (
	"time"
)

const (
	HTLCUndefinedStatus HTLCStatus = iota
	HTLCLockedStatus
	HTLCClaimedStatus
	HTLCReclaimedStatus
)

type HTLCStatus int

func (s HTLCStatus) String() string {
	switch s {
	case HTLCLockedStatus:
		return "LOCKED"
	case HTLCClaimedStatus:
		return "CLAIMED"
	case HTLCReclaimedStatus:
		return "RECLAIMED"
	default:
		return "UNDEFINED"
	}
}

func (s HTLCStatus) IsTerminal() bool {
	return s == HTLCClaimedStatus || s == HTLCReclaimedStatus
}

func ParseHTLCStatus(s string) HTLCStatus {
	switch s {
	case "LOCKED":
		return HTLCLockedStatus
	case "CLAIMED":
		return HTLCClaimedStatus
	case "RECLAIMED":
		return HTLCReclaimedStatus
	default:
		return HTLCUndefinedStatus
	}
}

// HTLC is the record binding an asset to a hash lock and a deadline.
// The asset itself is never copied here, only referenced.
type HTLC struct {
	Id          string
	Hash        []byte
	Expiry      time.Time
	Lockers     []string
	Recipients  []string
	Issuer      string
	Observers   []string
	Asset       AssetRef
	Status      HTLCStatus
	LockTxRef   string
	ClaimTxRef  string
	UnlockTxRef string
	Preimage    []byte
	CreatedAt   int64
	UpdatedAt   int64
	Version     uint
	changes     []Event
}

func NewHTLC() *HTLC {
	return &HTLC{
		changes: make([]Event, 0),
	}
}

func NewHTLCFromEvents(events []Event) *HTLC {
	h := &HTLC{}

	for _, event := range events {
		h.on(event, true)
	}

	h.changes = append([]Event{}, events...)

	return h
}

func (h *HTLC) Lock(
	id string, hash []byte, expiry time.Time, lockers, recipients PartySet,
	issuer string, observers PartySet, asset AssetRef, txRef string, now time.Time,
) (Event, error) {
	if h.Status != HTLCUndefinedStatus {
		return nil, NewError(ErrorKindInvalidArgument, "not in a valid status to lock htlc")
	}
	if _, err := ParseRecordId(id); err != nil {
		return nil, err
	}
	if len(hash) != HashSize {
		return nil, NewError(
			ErrorKindEncodingError, "invalid hash length, expected %d got %d", HashSize, len(hash),
		)
	}
	window, err := NewTimeWindow(expiry, now)
	if err != nil {
		return nil, err
	}
	if lockers.IsEmpty() {
		return nil, NewError(ErrorKindInvalidArgument, "missing lockers")
	}
	if recipients.IsEmpty() {
		return nil, NewError(ErrorKindInvalidArgument, "missing recipients")
	}
	if issuer == "" {
		return nil, NewError(ErrorKindInvalidArgument, "missing issuer")
	}
	if asset.Type == "" || asset.Id == "" {
		return nil, NewError(ErrorKindInvalidArgument, "missing asset")
	}
	if txRef == "" {
		return nil, NewError(ErrorKindInvalidArgument, "missing lock tx ref")
	}

	event := HTLCLocked{
		HTLCEvent:  HTLCEvent{Id: id, Type: EventTypeHTLCLocked},
		Hash:       append([]byte{}, hash...),
		Expiry:     window.Expiry.UnixNano(),
		Lockers:    lockers.Members(),
		Recipients: recipients.Members(),
		Issuer:     issuer,
		Observers:  observers.Members(),
		Asset:      asset,
		TxRef:      txRef,
		Timestamp:  now.Unix(),
	}
	h.raise(event)
	return event, nil
}

func (h *HTLC) Claim(
	preimage []byte, claimant, txRef string, now time.Time,
) (Event, error) {
	if err := h.ValidateClaim(preimage, claimant, now); err != nil {
		return nil, err
	}
	if txRef == "" {
		return nil, NewError(ErrorKindInvalidArgument, "missing claim tx ref")
	}

	event := HTLCClaimed{
		HTLCEvent: HTLCEvent{Id: h.Id, Type: EventTypeHTLCClaimed},
		Claimant:  claimant,
		Preimage:  append([]byte{}, preimage...),
		TxRef:     txRef,
		Timestamp: now.Unix(),
	}
	h.raise(event)
	return event, nil
}

// ValidateClaim checks the claim preconditions in order: status, claimant,
// time window and hash. A reclaimed htlc is reported as expired, since it can
// only be reclaimed once its claim window closed.
func (h *HTLC) ValidateClaim(preimage []byte, claimant string, now time.Time) error {
	if h.IsReclaimed() {
		return NewError(
			ErrorKindExpired, "htlc %s expired at %s and was reclaimed",
			h.Id, h.Expiry.Format(time.RFC3339Nano),
		)
	}
	if err := h.checkNotTerminal(); err != nil {
		return err
	}
	if !h.IsLocked() {
		return NewError(ErrorKindInvalidArgument, "not in a valid status to claim htlc")
	}
	if !h.RecipientSet().Contains(claimant) {
		return NewError(
			ErrorKindNotAuthorized, "%s is not a recipient of htlc %s", claimant, h.Id,
		)
	}
	if !h.Window().IsBeforeExpiry(now) {
		return NewError(
			ErrorKindExpired, "htlc %s expired at %s", h.Id, h.Expiry.Format(time.RFC3339Nano),
		)
	}
	if !VerifyHash(preimage, h.Hash) {
		return NewError(ErrorKindHashMismatch, "preimage does not match hash of htlc %s", h.Id)
	}
	return nil
}

func (h *HTLC) Unlock(reclaimant, txRef string, now time.Time) (Event, error) {
	if err := h.ValidateUnlock(reclaimant, now); err != nil {
		return nil, err
	}
	if txRef == "" {
		return nil, NewError(ErrorKindInvalidArgument, "missing unlock tx ref")
	}

	event := HTLCReclaimed{
		HTLCEvent:  HTLCEvent{Id: h.Id, Type: EventTypeHTLCReclaimed},
		Reclaimant: reclaimant,
		TxRef:      txRef,
		Timestamp:  now.Unix(),
	}
	h.raise(event)
	return event, nil
}

func (h *HTLC) ValidateUnlock(reclaimant string, now time.Time) error {
	if err := h.checkNotTerminal(); err != nil {
		return err
	}
	if !h.IsLocked() {
		return NewError(ErrorKindInvalidArgument, "not in a valid status to unlock htlc")
	}
	if !h.LockerSet().Contains(reclaimant) {
		return NewError(
			ErrorKindNotAuthorized, "%s is not a locker of htlc %s", reclaimant, h.Id,
		)
	}
	if !h.Window().IsAfterExpiry(now) {
		return NewError(
			ErrorKindNotExpired, "htlc %s does not expire before %s",
			h.Id, h.Expiry.Format(time.RFC3339Nano),
		)
	}
	return nil
}

func (h *HTLC) Events() []Event {
	return h.changes
}

func (h *HTLC) Window() TimeWindow {
	return TimeWindow{h.Expiry}
}

func (h *HTLC) LockerSet() PartySet {
	return NewPartySet(h.Lockers...)
}

func (h *HTLC) RecipientSet() PartySet {
	return NewPartySet(h.Recipients...)
}

func (h *HTLC) ObserverSet() PartySet {
	return NewPartySet(h.Observers...)
}

func (h *HTLC) IsLocked() bool {
	return h.Status == HTLCLockedStatus
}

func (h *HTLC) IsClaimed() bool {
	return h.Status == HTLCClaimedStatus
}

func (h *HTLC) IsReclaimed() bool {
	return h.Status == HTLCReclaimedStatus
}

func (h *HTLC) IsTerminal() bool {
	return h.Status.IsTerminal()
}

// IsActive tells whether the asset is still locked and claimable at t.
func (h *HTLC) IsActive(t time.Time) bool {
	return h.IsLocked() && h.Window().IsBeforeExpiry(t)
}

func (h *HTLC) checkNotTerminal() error {
	if h.IsTerminal() {
		return NewError(
			ErrorKindAlreadyTerminal, "htlc %s is already %s", h.Id, h.Status,
		)
	}
	return nil
}

func (h *HTLC) on(event Event, replayed bool) {
	switch e := event.(type) {
	case HTLCLocked:
		h.Status = HTLCLockedStatus
		h.Id = e.Id
		h.Hash = e.Hash
		h.Expiry = e.ExpiryTime()
		h.Lockers = e.Lockers
		h.Recipients = e.Recipients
		h.Issuer = e.Issuer
		h.Observers = e.Observers
		h.Asset = e.Asset
		h.LockTxRef = e.TxRef
		h.CreatedAt = e.Timestamp
		h.UpdatedAt = e.Timestamp
	case HTLCClaimed:
		h.Status = HTLCClaimedStatus
		h.Preimage = e.Preimage
		h.ClaimTxRef = e.TxRef
		h.UpdatedAt = e.Timestamp
	case HTLCReclaimed:
		h.Status = HTLCReclaimedStatus
		h.UnlockTxRef = e.TxRef
		h.UpdatedAt = e.Timestamp
	}

	if replayed {
		h.Version++
	}
}

func (h *HTLC) raise(event Event) {
	if h.changes == nil {
		h.changes = make([]Event, 0)
	}
	h.changes = append(h.changes, event)
	h.on(event, false)
}
