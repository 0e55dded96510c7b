package application

import (
	"context"

	"github.com/ark-network/htlc/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

// Claim hands the asset locked in the given htlc over to its recipients.
// The local party is the claimant.
func (s *service) Claim(
	ctx context.Context, recordId string, preimage []byte,
) (*domain.ClaimReceipt, error) {
	now := s.clock.Now()
	self := s.identity.PartyId()

	record, err := s.getHTLC(ctx, recordId)
	if err != nil {
		return nil, err
	}
	if err := record.ValidateClaim(preimage, self, now); err != nil {
		return nil, err
	}

	asset, err := s.resolveLockedAsset(ctx, record)
	if err != nil {
		return nil, err
	}
	// Fail before running consensus if the asset type has no handler.
	if _, err := s.registry.ForAsset(*asset); err != nil {
		return nil, err
	}

	transition := domain.Transition{
		Kind:       domain.TransitionClaim,
		Record:     *record,
		Asset:      *asset,
		NewOwners:  record.RecipientSet().Members(),
		Preimage:   append([]byte{}, preimage...),
		Submitter:  self,
		ProposedAt: now.UnixMilli(),
	}

	txId, err := s.runConsensus(ctx, transition)
	if err != nil {
		return nil, err
	}

	log.Infof("claimed asset %s of htlc %s (tx %s)", record.Asset, record.Id, txId)
	return &domain.ClaimReceipt{
		TxId:      txId,
		RecordId:  record.Id,
		Party:     self,
		Preimage:  transition.Preimage,
		CreatedAt: now.Unix(),
	}, nil
}

func (s *service) resolveLockedAsset(
	ctx context.Context, record *domain.HTLC,
) (*domain.Asset, error) {
	asset, err := s.repoManager.Assets().GetAsset(ctx, record.Asset.Type, record.Asset.Id)
	if err != nil {
		return nil, err
	}
	if asset.LockedBy != record.Id {
		return nil, domain.NewError(
			domain.ErrorKindNotAuthorized, "asset %s is not locked by htlc %s",
			asset.Key(), record.Id,
		)
	}
	return asset, nil
}
