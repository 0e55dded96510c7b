package application

import (
	"context"

	"github.com/ark-network/htlc/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// applyTransition commits the record change and the asset ownership change of
// a fully signed transition to the local stores, atomically. Applying the same
// transition twice is a no-op.
func (s *service) applyTransition(ctx context.Context, tr domain.Transition, txId string) error {
	var (
		record *domain.HTLC
		events []domain.Event
	)

	if err := s.repoManager.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		switch tr.Kind {
		case domain.TransitionLock:
			record, events, err = s.applyLock(ctx, tr, txId)
		case domain.TransitionClaim:
			record, events, err = s.applyClaim(ctx, tr, txId)
		case domain.TransitionUnlock:
			record, events, err = s.applyUnlock(ctx, tr, txId)
		default:
			err = domain.NewError(domain.ErrorKindInvalidArgument, "unknown transition %s", tr.Kind)
		}
		return err
	}); err != nil {
		return err
	}

	if len(events) <= 0 {
		log.Debugf("%s of htlc %s already applied", tr.Kind, tr.Record.Id)
		return nil
	}

	if err := s.saveEvents(ctx, record.Id, events); err != nil {
		log.WithError(err).Warnf("failed to save events of htlc %s", record.Id)
	}

	if tr.Kind == domain.TransitionClaim {
		s.runPostClaimHooks(ctx, record, txId)
	}
	return nil
}

func (s *service) applyLock(
	ctx context.Context, tr domain.Transition, txId string,
) (*domain.HTLC, []domain.Event, error) {
	existing, err := s.repoManager.HTLCs().GetHTLC(ctx, tr.Record.Id)
	if err == nil {
		if existing.LockTxRef == txId {
			return existing, nil, nil
		}
		return nil, nil, domain.ErrHTLCAlreadyExists(tr.Record.Id)
	}
	if !domain.IsNotFound(err) {
		return nil, nil, err
	}

	proposed := tr.Record
	now := tr.ProposalTime()

	record := domain.NewHTLC()
	if _, err := record.Lock(
		proposed.Id, proposed.Hash, proposed.Expiry, proposed.LockerSet(),
		proposed.RecipientSet(), proposed.Issuer, proposed.ObserverSet(),
		proposed.Asset, txId, now,
	); err != nil {
		return nil, nil, err
	}

	asset, err := s.baseAsset(ctx, tr.Asset)
	if err != nil {
		return nil, nil, err
	}
	if !asset.IsOwnedExclusivelyBy(record.LockerSet()) {
		return nil, nil, domain.NewError(
			domain.ErrorKindNotAuthorized, "asset %s is not owned by lockers %s",
			asset.Key(), record.LockerSet(),
		)
	}

	locked := asset
	if record.Asset.Id != asset.Id {
		part, err := asset.Split(record.Asset.Quantity, record.Asset.Id, now.Unix())
		if err != nil {
			return nil, nil, err
		}
		if err := s.repoManager.Assets().AddOrUpdateAsset(ctx, *asset); err != nil {
			return nil, nil, err
		}
		locked = part
	}
	if err := locked.Lock(record.Id, now.Unix()); err != nil {
		return nil, nil, err
	}
	if err := s.repoManager.Assets().AddOrUpdateAsset(ctx, *locked); err != nil {
		return nil, nil, err
	}

	if err := s.repoManager.HTLCs().AddHTLC(ctx, *record); err != nil {
		return nil, nil, err
	}
	return record, record.Events(), nil
}

func (s *service) applyClaim(
	ctx context.Context, tr domain.Transition, txId string,
) (*domain.HTLC, []domain.Event, error) {
	record, err := s.repoManager.HTLCs().GetHTLC(ctx, tr.Record.Id)
	if err != nil {
		return nil, nil, err
	}
	if record.IsClaimed() && record.ClaimTxRef == txId {
		return record, nil, nil
	}

	now := tr.ProposalTime()
	if _, err := record.Claim(tr.Preimage, tr.Submitter, txId, now); err != nil {
		return nil, nil, err
	}
	if err := s.transferOwnership(ctx, tr, record.Id, now.Unix()); err != nil {
		return nil, nil, err
	}
	if err := s.repoManager.HTLCs().UpdateHTLC(
		ctx, *record, domain.HTLCLockedStatus,
	); err != nil {
		return nil, nil, err
	}
	return record, record.Events(), nil
}

func (s *service) applyUnlock(
	ctx context.Context, tr domain.Transition, txId string,
) (*domain.HTLC, []domain.Event, error) {
	record, err := s.repoManager.HTLCs().GetHTLC(ctx, tr.Record.Id)
	if err != nil {
		return nil, nil, err
	}
	if record.IsReclaimed() && record.UnlockTxRef == txId {
		return record, nil, nil
	}

	now := tr.ProposalTime()
	if _, err := record.Unlock(tr.Submitter, txId, now); err != nil {
		return nil, nil, err
	}
	if err := s.transferOwnership(ctx, tr, record.Id, now.Unix()); err != nil {
		return nil, nil, err
	}
	if err := s.repoManager.HTLCs().UpdateHTLC(
		ctx, *record, domain.HTLCLockedStatus,
	); err != nil {
		return nil, nil, err
	}
	return record, record.Events(), nil
}

func (s *service) transferOwnership(
	ctx context.Context, tr domain.Transition, recordId string, now int64,
) error {
	asset, err := s.baseAsset(ctx, tr.Asset)
	if err != nil {
		return err
	}
	handler, err := s.registry.ForAsset(*asset)
	if err != nil {
		return err
	}
	updated, err := handler(*asset, recordId, domain.NewPartySet(tr.NewOwners...), now)
	if err != nil {
		return err
	}
	return s.repoManager.Assets().AddOrUpdateAsset(ctx, *updated)
}

// baseAsset returns the local state of the asset the transition applies to,
// or the proposed one for parties not tracking it yet.
func (s *service) baseAsset(ctx context.Context, proposed domain.Asset) (*domain.Asset, error) {
	local, err := s.repoManager.Assets().GetAsset(ctx, proposed.Type, proposed.Id)
	if err != nil {
		if domain.IsNotFound(err) {
			asset := proposed
			asset.Owners = proposed.OwnerSet().Members()
			return &asset, nil
		}
		return nil, err
	}
	if !sameAssetState(*local, proposed) {
		return nil, domain.NewError(
			domain.ErrorKindConsensusFailed, "asset %s changed since the proposal", local.Key(),
		)
	}
	return local, nil
}

func (s *service) runPostClaimHooks(ctx context.Context, record *domain.HTLC, txId string) {
	self := s.identity.PartyId()
	if !record.LockerSet().Contains(self) {
		return
	}

	receipt := domain.ClaimReceipt{
		TxId:      txId,
		RecordId:  record.Id,
		Party:     self,
		Preimage:  record.Preimage,
		CreatedAt: s.clock.Now().Unix(),
	}
	for _, hook := range s.hooks {
		if err := hook(ctx, receipt); err != nil {
			log.WithError(err).Warnf("post-claim hook failed for htlc %s", record.Id)
		}
	}
}
