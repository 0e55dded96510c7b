package application

import (
	"context"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

func (s *service) handleProposal(ctx context.Context, msg ports.Message) {
	self := s.identity.PartyId()
	reply := ports.Message{
		SessionId: msg.SessionId,
		From:      self,
		To:        msg.From,
		Role:      msg.Role,
	}

	reject := func(err error) {
		kind := domain.KindOf(err)
		if kind == domain.ErrorKindUndefined {
			kind = domain.ErrorKindConsensusFailed
		}
		log.WithError(err).Warnf(
			"session %s: rejecting proposal from %s as %s", msg.SessionId, msg.From, msg.Role,
		)
		reply.Type = ports.MessageRejection
		reply.Kind = kind
		reply.Reason = domain.ReasonOf(err)
		s.reply(ctx, reply)
	}

	if msg.Transition == nil {
		reject(domain.NewError(domain.ErrorKindInvalidArgument, "missing transition"))
		return
	}
	tr := *msg.Transition
	if msg.From != tr.Submitter {
		reject(domain.NewError(
			domain.ErrorKindNotAuthorized, "proposal sent by %s on behalf of %s",
			msg.From, tr.Submitter,
		))
		return
	}
	if !s.limiter.Allow() {
		reject(domain.NewError(domain.ErrorKindConsensusFailed, "too many proposals"))
		return
	}

	payload, err := tr.Payload()
	if err != nil {
		reject(domain.WrapError(domain.ErrorKindEncodingError, err, "invalid transition"))
		return
	}
	txId, err := tr.Id()
	if err != nil {
		reject(domain.WrapError(domain.ErrorKindEncodingError, err, "invalid transition"))
		return
	}

	// Redelivered proposal, answer the same way.
	if signature, ok := s.liveStore.SignedTransitions().Get(ctx, txId); ok {
		log.Debugf("session %s: transition %s already signed", msg.SessionId, txId)
		reply.Type = ports.MessageSignature
		reply.Signature = signature
		s.reply(ctx, reply)
		s.waitForFinalization(msg.SessionId, tr.Record.Id, txId)
		return
	}

	if err := s.validateProposal(ctx, tr, msg.Role); err != nil {
		reject(err)
		return
	}

	// At most one signed transition per record until it is finalized or
	// aborted.
	if err := s.reserveRecord(ctx, tr, txId); err != nil {
		reject(err)
		return
	}

	signature, err := s.identity.Sign(ctx, payload)
	if err != nil {
		s.liveStore.RecordReservations().Release(ctx, tr.Record.Id, txId)
		reject(domain.WrapError(domain.ErrorKindConsensusFailed, err, "failed to sign"))
		return
	}
	if err := s.liveStore.SignedTransitions().Add(ctx, txId, signature); err != nil {
		log.WithError(err).Warnf("session %s: failed to cache signed transition", msg.SessionId)
	}

	log.Debugf(
		"session %s: signed %s of htlc %s as %s",
		msg.SessionId, tr.Kind, tr.Record.Id, msg.Role,
	)
	reply.Type = ports.MessageSignature
	reply.Signature = signature
	s.reply(ctx, reply)
	s.waitForFinalization(msg.SessionId, tr.Record.Id, txId)
}

// reserveRecord holds the record of the transition for txId, failing if
// another transition of the same record is pending.
func (s *service) reserveRecord(ctx context.Context, tr domain.Transition, txId string) error {
	holder, err := s.liveStore.RecordReservations().Reserve(
		ctx, tr.Record.Id, txId, s.sessionTimeout,
	)
	if err != nil {
		return domain.WrapError(
			domain.ErrorKindConsensusFailed, err, "failed to reserve htlc %s", tr.Record.Id,
		)
	}
	if holder != txId {
		return domain.NewError(
			domain.ErrorKindConsensusFailed, "htlc %s has pending transition %s",
			tr.Record.Id, holder,
		)
	}
	return nil
}

// validateProposal re-validates the transition against the local view of the
// record and of the asset, for the given role.
func (s *service) validateProposal(
	ctx context.Context, tr domain.Transition, role domain.Role,
) error {
	self := s.identity.PartyId()
	now := s.clock.Now()
	record := tr.Record

	if err := tr.Validate(); err != nil {
		return err
	}
	if !domain.NewPartySet(tr.Signers...).Equals(s.requiredSigners(tr)) {
		return domain.NewError(
			domain.ErrorKindConsensusFailed, "signers %v do not match required signers %s",
			tr.Signers, s.requiredSigners(tr),
		)
	}

	switch role {
	case domain.RoleLocker:
		if !record.LockerSet().Contains(self) {
			return domain.NewError(
				domain.ErrorKindNotAuthorized, "%s is not a locker of htlc %s", self, record.Id,
			)
		}
	case domain.RoleRecipient:
		if !record.RecipientSet().Contains(self) {
			return domain.NewError(
				domain.ErrorKindNotAuthorized, "%s is not a recipient of htlc %s", self, record.Id,
			)
		}
	case domain.RoleIssuer:
		if record.Issuer != self {
			return domain.NewError(
				domain.ErrorKindNotAuthorized, "%s is not the issuer of htlc %s", self, record.Id,
			)
		}
	default:
		return domain.NewError(
			domain.ErrorKindNotAuthorized, "%s parties never sign transitions", role,
		)
	}

	switch tr.Kind {
	case domain.TransitionLock:
		return s.validateLockProposal(ctx, tr, role, now)
	case domain.TransitionClaim:
		return s.validateClaimProposal(ctx, tr, role, now)
	case domain.TransitionUnlock:
		return s.validateUnlockProposal(ctx, tr, role, now)
	default:
		return domain.NewError(domain.ErrorKindInvalidArgument, "unknown transition %s", tr.Kind)
	}
}

func (s *service) validateLockProposal(
	ctx context.Context, tr domain.Transition, role domain.Role, now time.Time,
) error {
	record := tr.Record

	// Structural checks against the proposal time.
	replica := domain.NewHTLC()
	if _, err := replica.Lock(
		record.Id, record.Hash, record.Expiry, record.LockerSet(), record.RecipientSet(),
		record.Issuer, record.ObserverSet(), record.Asset, tr.Submitter, tr.ProposalTime(),
	); err != nil {
		return err
	}
	if !domain.NewPartySet(tr.NewOwners...).Equals(record.LockerSet()) {
		return domain.NewError(
			domain.ErrorKindInvalidArgument, "locked asset must stay owned by lockers",
		)
	}
	if err := s.registry.CheckTransferable(
		lockedAssetState(tr.Asset, record.Asset), record.Id,
		record.RecipientSet(), record.LockerSet(),
	); err != nil {
		return err
	}

	if _, err := s.repoManager.HTLCs().GetHTLC(ctx, record.Id); err == nil {
		return domain.ErrHTLCAlreadyExists(record.Id)
	} else if !domain.IsNotFound(err) {
		return err
	}

	if role == domain.RoleRecipient {
		if _, err := domain.NewTimeWindow(record.Expiry, now); err != nil {
			return err
		}
	}

	local, err := s.repoManager.Assets().GetAsset(ctx, tr.Asset.Type, tr.Asset.Id)
	if err != nil {
		// Only lockers are required to know the asset they lock.
		if domain.IsNotFound(err) && role != domain.RoleLocker {
			return nil
		}
		return err
	}
	if !sameAssetState(*local, tr.Asset) {
		return domain.NewError(
			domain.ErrorKindConsensusFailed, "local state of asset %s differs from proposal",
			local.Key(),
		)
	}
	if role == domain.RoleLocker {
		if local.IsLocked() {
			return domain.NewError(
				domain.ErrorKindNotAuthorized, "asset %s is already locked by %s",
				local.Key(), local.LockedBy,
			)
		}
		if !local.IsOwnedExclusivelyBy(record.LockerSet()) {
			return domain.NewError(
				domain.ErrorKindNotAuthorized, "asset %s is not owned by lockers %s",
				local.Key(), record.LockerSet(),
			)
		}
	}
	return nil
}

func (s *service) validateClaimProposal(
	ctx context.Context, tr domain.Transition, role domain.Role, now time.Time,
) error {
	local, err := s.localRecordView(ctx, tr)
	if err != nil {
		return err
	}
	if !domain.NewPartySet(tr.NewOwners...).Equals(local.RecipientSet()) {
		return domain.NewError(
			domain.ErrorKindInvalidArgument, "claimed asset must be owned by recipients",
		)
	}

	switch role {
	case domain.RoleRecipient:
		return local.ValidateClaim(tr.Preimage, tr.Submitter, now)
	case domain.RoleLocker:
		if !local.IsLocked() {
			return domain.NewError(
				domain.ErrorKindAlreadyTerminal, "htlc %s is %s", local.Id, local.Status,
			)
		}
		return local.ValidateClaim(tr.Preimage, tr.Submitter, tr.ProposalTime())
	default:
		return local.ValidateClaim(tr.Preimage, tr.Submitter, tr.ProposalTime())
	}
}

func (s *service) validateUnlockProposal(
	ctx context.Context, tr domain.Transition, role domain.Role, now time.Time,
) error {
	local, err := s.localRecordView(ctx, tr)
	if err != nil {
		return err
	}
	if !domain.NewPartySet(tr.NewOwners...).Equals(local.LockerSet()) {
		return domain.NewError(
			domain.ErrorKindInvalidArgument, "reclaimed asset must be owned by lockers",
		)
	}

	if role == domain.RoleLocker {
		return local.ValidateUnlock(tr.Submitter, now)
	}
	return local.ValidateUnlock(tr.Submitter, tr.ProposalTime())
}

// localRecordView loads the local copy of the record the transition applies
// to and makes sure it agrees with the submitter's one.
func (s *service) localRecordView(
	ctx context.Context, tr domain.Transition,
) (*domain.HTLC, error) {
	local, err := s.repoManager.HTLCs().GetHTLC(ctx, tr.Record.Id)
	if err != nil {
		return nil, err
	}
	if !sameRecordView(*local, tr.Record) {
		return nil, domain.NewError(
			domain.ErrorKindConsensusFailed, "local view of htlc %s differs from proposal",
			local.Id,
		)
	}

	asset, err := s.repoManager.Assets().GetAsset(ctx, tr.Asset.Type, tr.Asset.Id)
	if err != nil && !domain.IsNotFound(err) {
		return nil, err
	}
	if asset != nil && !sameAssetState(*asset, tr.Asset) {
		return nil, domain.NewError(
			domain.ErrorKindConsensusFailed, "local state of asset %s differs from proposal",
			asset.Key(),
		)
	}
	return local, nil
}

func (s *service) handleSignature(ctx context.Context, msg ports.Message) {
	sessions := s.liveStore.SigningSessions()

	session, ok := sessions.Get(ctx, msg.SessionId)
	if !ok {
		log.Debugf("session %s: dropping signature of %s, session not found", msg.SessionId, msg.From)
		return
	}
	if !session.IsSigner(msg.From) {
		log.Warnf("session %s: dropping signature of non signer %s", msg.SessionId, msg.From)
		return
	}

	if err := s.identity.Verify(ctx, msg.From, session.Payload, msg.Signature); err != nil {
		if err := sessions.AddRejection(ctx, msg.SessionId, ports.Rejection{
			Party:  msg.From,
			Kind:   domain.ErrorKindConsensusFailed,
			Reason: "invalid signature: " + err.Error(),
		}); err != nil {
			log.WithError(err).Warnf("session %s: failed to add rejection", msg.SessionId)
		}
		return
	}

	if err := sessions.AddSignature(ctx, msg.SessionId, msg.From, msg.Signature); err != nil {
		log.WithError(err).Warnf("session %s: failed to add signature of %s", msg.SessionId, msg.From)
	}
}

func (s *service) handleRejection(ctx context.Context, msg ports.Message) {
	sessions := s.liveStore.SigningSessions()

	session, ok := sessions.Get(ctx, msg.SessionId)
	if !ok || !session.IsSigner(msg.From) {
		log.Debugf("session %s: dropping rejection of %s", msg.SessionId, msg.From)
		return
	}

	if err := sessions.AddRejection(ctx, msg.SessionId, ports.Rejection{
		Party:  msg.From,
		Kind:   msg.Kind,
		Reason: msg.Reason,
	}); err != nil {
		log.WithError(err).Warnf("session %s: failed to add rejection", msg.SessionId)
	}
}

func (s *service) handleFinalized(ctx context.Context, msg ports.Message) {
	s.stopWaitingForFinalization(msg.SessionId)

	if msg.Transition == nil {
		log.Warnf("session %s: dropping finalization without transition", msg.SessionId)
		return
	}
	tr := *msg.Transition

	payload, err := tr.Payload()
	if err != nil {
		log.WithError(err).Warnf("session %s: dropping invalid finalization", msg.SessionId)
		return
	}
	txId, err := tr.Id()
	if err != nil {
		log.WithError(err).Warnf("session %s: dropping invalid finalization", msg.SessionId)
		return
	}

	required := s.requiredSigners(tr)
	if !domain.NewPartySet(tr.Signers...).Equals(required) {
		log.Warnf(
			"session %s: dropping finalization signed by %v, expected %s",
			msg.SessionId, tr.Signers, required,
		)
		return
	}
	for _, signer := range required.Members() {
		signature, ok := msg.Signatures[signer]
		if !ok {
			log.Warnf("session %s: dropping finalization missing signature of %s", msg.SessionId, signer)
			return
		}
		if err := s.identity.Verify(ctx, signer, payload, signature); err != nil {
			log.WithError(err).Warnf(
				"session %s: dropping finalization with invalid signature of %s",
				msg.SessionId, signer,
			)
			return
		}
	}

	defer s.liveStore.RecordReservations().Release(ctx, tr.Record.Id, txId)

	if err := s.applyTransition(ctx, tr, txId); err != nil {
		log.WithError(err).Warnf(
			"session %s: failed to apply finalized %s of htlc %s",
			msg.SessionId, tr.Kind, tr.Record.Id,
		)
		return
	}
	log.Debugf(
		"session %s: applied finalized %s of htlc %s as %s",
		msg.SessionId, tr.Kind, tr.Record.Id, msg.Role,
	)
}

func (s *service) handleAbort(ctx context.Context, msg ports.Message) {
	s.stopWaitingForFinalization(msg.SessionId)

	if tr := msg.Transition; tr != nil && tr.Submitter == msg.From {
		if txId, err := tr.Id(); err == nil {
			s.liveStore.SignedTransitions().Delete(ctx, txId)
			s.liveStore.RecordReservations().Release(ctx, tr.Record.Id, txId)
		}
	}
	log.Debugf("session %s: aborted by %s", msg.SessionId, msg.From)
}

func (s *service) reply(ctx context.Context, msg ports.Message) {
	ctx, cancel := context.WithTimeout(ctx, notificationTimeout)
	defer cancel()

	if err := s.transport.Send(ctx, msg); err != nil {
		log.WithError(err).Warnf(
			"session %s: failed to send %s to %s", msg.SessionId, msg.Type, msg.To,
		)
	}
}

func (s *service) waitForFinalization(sessionId, recordId, txId string) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	if _, ok := s.pending[sessionId]; ok {
		return
	}
	s.pending[sessionId] = time.AfterFunc(s.sessionTimeout, func() {
		s.pendingLock.Lock()
		_, ok := s.pending[sessionId]
		delete(s.pending, sessionId)
		s.pendingLock.Unlock()

		if !ok {
			return
		}
		s.liveStore.RecordReservations().Release(context.Background(), recordId, txId)
		log.Warnf("session %s: not finalized within %s", sessionId, s.sessionTimeout)
	})
}

func (s *service) stopWaitingForFinalization(sessionId string) {
	s.pendingLock.Lock()
	defer s.pendingLock.Unlock()

	if timer, ok := s.pending[sessionId]; ok {
		timer.Stop()
		delete(s.pending, sessionId)
	}
}
