package application

import (
	"context"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// Unlock gives the asset locked in the given expired htlc back to its
// lockers. The local party is the reclaimant.
func (s *service) Unlock(ctx context.Context, recordId string) (string, error) {
	now := s.clock.Now()
	self := s.identity.PartyId()

	record, err := s.getHTLC(ctx, recordId)
	if err != nil {
		return "", err
	}
	if err := record.ValidateUnlock(self, now); err != nil {
		return "", err
	}

	asset, err := s.resolveLockedAsset(ctx, record)
	if err != nil {
		return "", err
	}
	if _, err := s.registry.ForAsset(*asset); err != nil {
		return "", err
	}

	// Proposal times have millisecond precision, round up to stay in the
	// reclaim window.
	proposedAt := now.UnixMilli()
	if !record.Window().IsAfterExpiry(time.UnixMilli(proposedAt)) {
		proposedAt++
	}

	transition := domain.Transition{
		Kind:       domain.TransitionUnlock,
		Record:     *record,
		Asset:      *asset,
		NewOwners:  record.LockerSet().Members(),
		Submitter:  self,
		ProposedAt: proposedAt,
	}

	txId, err := s.runConsensus(ctx, transition)
	if err != nil {
		return "", err
	}

	log.Infof("reclaimed asset %s of htlc %s (tx %s)", record.Asset, record.Id, txId)
	return txId, nil
}
