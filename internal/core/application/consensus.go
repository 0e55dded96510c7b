package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const notificationTimeout = 5 * time.Second

// runConsensus collects the signature of every required signer of the
// transition, then commits it and notifies signers and observers. Nothing is
// committed unless all signatures are collected within the session timeout.
func (s *service) runConsensus(ctx context.Context, tr domain.Transition) (string, error) {
	self := s.identity.PartyId()

	if !primarySigners(tr).Contains(self) {
		return "", domain.NewError(
			domain.ErrorKindNotAuthorized, "%s is not allowed to submit %s of htlc %s",
			self, tr.Kind, tr.Record.Id,
		)
	}

	signers := s.requiredSigners(tr)
	tr.Signers = signers.Sorted()
	if err := tr.Validate(); err != nil {
		return "", err
	}

	payload, err := tr.Payload()
	if err != nil {
		return "", domain.WrapError(domain.ErrorKindEncodingError, err, "invalid transition")
	}
	txId, err := tr.Id()
	if err != nil {
		return "", domain.WrapError(domain.ErrorKindEncodingError, err, "invalid transition")
	}

	if err := s.reserveRecord(ctx, tr, txId); err != nil {
		return "", err
	}
	defer s.liveStore.RecordReservations().Release(context.Background(), tr.Record.Id, txId)

	sessionCtx, cancel := context.WithTimeout(ctx, s.sessionTimeout)
	defer cancel()

	sessionId := uuid.New().String()
	sessions := s.liveStore.SigningSessions()
	if _, err := sessions.New(sessionCtx, sessionId, payload, tr.Signers); err != nil {
		return "", fmt.Errorf("failed to create signing session: %s", err)
	}
	defer sessions.Delete(context.Background(), sessionId)

	signature, err := s.identity.Sign(sessionCtx, payload)
	if err != nil {
		return "", fmt.Errorf("failed to sign transition: %s", err)
	}
	if err := sessions.AddSignature(sessionCtx, sessionId, self, signature); err != nil {
		return "", fmt.Errorf("failed to add signature: %s", err)
	}

	counterparties := signers.Without(self)
	log.Debugf(
		"session %s: proposing %s of htlc %s to %s",
		sessionId, tr.Kind, tr.Record.Id, counterparties,
	)

	g, gctx := errgroup.WithContext(sessionCtx)
	for _, party := range counterparties.Members() {
		msg := ports.Message{
			Type:       ports.MessageProposal,
			SessionId:  sessionId,
			From:       self,
			To:         party,
			Role:       s.roleOf(tr, party),
			Transition: &tr,
		}
		g.Go(func() error {
			if err := s.transport.Send(gctx, msg); err != nil {
				return domain.WrapError(
					domain.ErrorKindConsensusFailed, err, "signer %s is unreachable", msg.To,
				)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.abort(sessionId, tr, counterparties)
		if sessionCtx.Err() != nil {
			return "", sessionEndedError(ctx, sessionId, tr)
		}
		return "", err
	}

	select {
	case <-sessions.Done(sessionId):
	case <-sessionCtx.Done():
		s.abort(sessionId, tr, counterparties)
		return "", sessionEndedError(ctx, sessionId, tr)
	}

	session, ok := sessions.Get(sessionCtx, sessionId)
	if !ok {
		s.abort(sessionId, tr, counterparties)
		return "", domain.NewError(
			domain.ErrorKindConsensusFailed, "signing session %s not found", sessionId,
		)
	}
	if rejection := session.Rejection; rejection != nil {
		s.abort(sessionId, tr, counterparties)
		return "", domain.NewError(
			domain.ErrorKindConsensusFailed, "%s rejected %s of htlc %s: %s: %s",
			rejection.Party, tr.Kind, tr.Record.Id, rejection.Kind, rejection.Reason,
		)
	}

	if err := s.applyTransition(ctx, tr, txId); err != nil {
		s.abort(sessionId, tr, counterparties)
		return "", err
	}

	s.finalize(sessionId, tr, session.Signatures)
	return txId, nil
}

func (s *service) abort(sessionId string, tr domain.Transition, parties domain.PartySet) {
	log.Debugf("session %s: aborting %s of htlc %s", sessionId, tr.Kind, tr.Record.Id)
	s.notify(parties, func(party string) ports.Message {
		return ports.Message{
			Type:       ports.MessageAbort,
			SessionId:  sessionId,
			From:       s.identity.PartyId(),
			To:         party,
			Transition: &tr,
		}
	})
}

func (s *service) finalize(
	sessionId string, tr domain.Transition, signatures map[string][]byte,
) {
	self := s.identity.PartyId()
	parties := s.requiredSigners(tr).Union(s.observersOf(tr)).Without(self)

	log.Debugf(
		"session %s: finalized %s of htlc %s, notifying %s",
		sessionId, tr.Kind, tr.Record.Id, parties,
	)
	s.notify(parties, func(party string) ports.Message {
		return ports.Message{
			Type:       ports.MessageFinalized,
			SessionId:  sessionId,
			From:       self,
			To:         party,
			Role:       s.roleOf(tr, party),
			Transition: &tr,
			Signatures: signatures,
		}
	})
}

// notify sends a message to every party on a best-effort basis.
func (s *service) notify(parties domain.PartySet, newMsg func(party string) ports.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
	defer cancel()

	g := &errgroup.Group{}
	for _, party := range parties.Members() {
		msg := newMsg(party)
		g.Go(func() error {
			if err := s.transport.Send(ctx, msg); err != nil {
				log.WithError(err).Warnf(
					"session %s: failed to send %s to %s", msg.SessionId, msg.Type, msg.To,
				)
			}
			return nil
		})
	}
	// nolint:errcheck
	g.Wait()
}

// requiredSigners returns the parties whose signature makes the transition
// durable.
func (s *service) requiredSigners(tr domain.Transition) domain.PartySet {
	record := tr.Record
	issuer := domain.NewPartySet(record.Issuer)

	switch tr.Kind {
	case domain.TransitionLock:
		return record.LockerSet().Union(record.RecipientSet()).Union(issuer)
	case domain.TransitionClaim:
		signers := record.RecipientSet().Union(issuer)
		if s.lockersCosignClaim {
			signers = signers.Union(record.LockerSet())
		}
		return signers
	case domain.TransitionUnlock:
		return record.LockerSet().Union(issuer)
	default:
		return domain.NewPartySet()
	}
}

// observersOf returns the parties notified of the finalized transition
// without signing it.
func (s *service) observersOf(tr domain.Transition) domain.PartySet {
	record := tr.Record
	observers := record.ObserverSet()

	switch tr.Kind {
	case domain.TransitionClaim:
		observers = observers.Union(record.LockerSet())
	case domain.TransitionUnlock:
		observers = observers.Union(record.RecipientSet())
	}
	return observers.Without(s.requiredSigners(tr).Members()...)
}

// roleOf returns the role party plays in the given transition. The set whose
// authorization is primary for the transition takes precedence.
func (s *service) roleOf(tr domain.Transition, party string) domain.Role {
	record := tr.Record
	isLocker := record.LockerSet().Contains(party)
	isRecipient := record.RecipientSet().Contains(party)
	isIssuer := record.Issuer == party

	switch tr.Kind {
	case domain.TransitionLock:
		if isLocker {
			return domain.RoleLocker
		}
		if isRecipient {
			return domain.RoleRecipient
		}
	case domain.TransitionClaim:
		if isRecipient {
			return domain.RoleRecipient
		}
		if isLocker && s.lockersCosignClaim {
			return domain.RoleLocker
		}
	case domain.TransitionUnlock:
		if isLocker {
			return domain.RoleLocker
		}
	}
	if isIssuer {
		return domain.RoleIssuer
	}
	// Notified, not signing.
	if isLocker {
		return domain.RoleLocker
	}
	if isRecipient {
		return domain.RoleRecipient
	}
	return domain.RoleObserver
}

func primarySigners(tr domain.Transition) domain.PartySet {
	if tr.Kind == domain.TransitionClaim {
		return tr.Record.RecipientSet()
	}
	return tr.Record.LockerSet()
}

// sessionEndedError tells a session abandoned by the caller, through ctx,
// from one that timed out.
func sessionEndedError(ctx context.Context, sessionId string, tr domain.Transition) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return domain.WrapError(
			domain.ErrorKindConsensusFailed, ctx.Err(),
			"signing session %s for %s of htlc %s was abandoned",
			sessionId, tr.Kind, tr.Record.Id,
		)
	}
	return domain.NewError(
		domain.ErrorKindTimeout, "signing session %s for %s of htlc %s timed out",
		sessionId, tr.Kind, tr.Record.Id,
	)
}
