package application

import (
	"context"
	"fmt"

	"github.com/ark-network/htlc/internal/core/domain"
	log "github.com/sirupsen/logrus"
)

func (s *service) Lock(ctx context.Context, req LockRequest) (string, error) {
	now := s.clock.Now()
	self := s.identity.PartyId()

	lockers := domain.NewPartySet(req.Lockers...)
	recipients := domain.NewPartySet(req.Recipients...)
	observers := domain.NewPartySet(req.Observers...)
	coOwners := domain.NewPartySet(req.CoOwners...)

	if _, err := domain.NewTimeWindow(req.Expiry, now); err != nil {
		return "", err
	}
	if len(req.Hash) != domain.HashSize {
		return "", domain.NewError(
			domain.ErrorKindEncodingError, "invalid hash length, expected %d got %d",
			domain.HashSize, len(req.Hash),
		)
	}
	if lockers.IsEmpty() {
		return "", domain.NewError(domain.ErrorKindInvalidArgument, "missing lockers")
	}
	if recipients.IsEmpty() {
		return "", domain.NewError(domain.ErrorKindInvalidArgument, "missing recipients")
	}
	if req.Issuer == "" {
		return "", domain.NewError(domain.ErrorKindInvalidArgument, "missing issuer")
	}
	if req.Tag != "" {
		if err := domain.ValidateRecordTag(req.Tag); err != nil {
			return "", err
		}
	}
	if !coOwners.IsEmpty() && !coOwners.Contains(self) {
		return "", domain.NewError(
			domain.ErrorKindNotAuthorized, "%s is not a co-owner of asset %s", self, req.Asset.Key(),
		)
	}

	asset, err := s.repoManager.Assets().GetAsset(ctx, req.Asset.Type, req.Asset.Id)
	if err != nil {
		return "", err
	}
	if asset.IsLocked() {
		return "", domain.NewError(
			domain.ErrorKindNotAuthorized, "asset %s is already locked by %s",
			asset.Key(), asset.LockedBy,
		)
	}
	if !asset.IsOwnedExclusivelyBy(lockers) {
		return "", domain.NewError(
			domain.ErrorKindNotAuthorized, "asset %s is owned by %s, not by lockers %s",
			asset.Key(), asset.OwnerSet(), lockers,
		)
	}
	if !coOwners.IsEmpty() && !coOwners.Equals(asset.OwnerSet()) {
		return "", domain.NewError(
			domain.ErrorKindNotAuthorized, "co-owners %s do not match owners %s of asset %s",
			coOwners, asset.OwnerSet(), asset.Key(),
		)
	}

	recordId := domain.NewRecordIdFromHash(req.Hash)
	if req.Tag != "" {
		recordId = domain.NewRecordId(req.Tag)
	}

	lockedAsset, err := lockedAssetRef(*asset, req.Asset.Quantity, recordId)
	if err != nil {
		return "", err
	}
	// An asset whose ownership cannot move at claim or unlock time would stay
	// locked forever.
	if err := s.registry.CheckTransferable(
		lockedAssetState(*asset, lockedAsset), recordId.String(), recipients, lockers,
	); err != nil {
		return "", err
	}

	record := domain.HTLC{
		Id:         recordId.String(),
		Hash:       append([]byte{}, req.Hash...),
		Expiry:     req.Expiry.UTC(),
		Lockers:    lockers.Members(),
		Recipients: recipients.Members(),
		Issuer:     req.Issuer,
		Observers:  observers.Members(),
		Asset:      lockedAsset,
	}

	transition := domain.Transition{
		Kind:       domain.TransitionLock,
		Record:     record,
		Asset:      *asset,
		NewOwners:  lockers.Members(),
		Submitter:  self,
		ProposedAt: now.UnixMilli(),
	}

	txId, err := s.runConsensus(ctx, transition)
	if err != nil {
		return "", err
	}

	log.Infof("locked asset %s in htlc %s (tx %s)", lockedAsset, record.Id, txId)
	return record.Id, nil
}

// lockedAssetRef returns the reference to the asset to be locked. Locking
// part of a fungible holding refers to the holding split off at commit time.
func lockedAssetRef(
	asset domain.Asset, quantity uint64, recordId domain.RecordId,
) (domain.AssetRef, error) {
	ref := asset.Ref()
	if quantity == 0 || (asset.Fungible && quantity == asset.Quantity) {
		return ref, nil
	}
	if !asset.Fungible {
		return domain.AssetRef{}, domain.NewError(
			domain.ErrorKindInvalidArgument, "asset %s is not fungible, cannot lock a quantity",
			asset.Key(),
		)
	}
	if quantity > asset.Quantity {
		return domain.AssetRef{}, domain.NewError(
			domain.ErrorKindInvalidArgument, "cannot lock %d units of asset %s holding %d",
			quantity, asset.Key(), asset.Quantity,
		)
	}
	return domain.AssetRef{
		Type:     asset.Type,
		Id:       splitAssetId(asset.Id, recordId),
		Quantity: quantity,
	}, nil
}

// lockedAssetState returns the state of the asset referred to by ref once
// locked, before the lock itself is set.
func lockedAssetState(asset domain.Asset, ref domain.AssetRef) domain.Asset {
	asset.Id = ref.Id
	if ref.Quantity > 0 {
		asset.Quantity = ref.Quantity
	}
	return asset
}

func splitAssetId(holdingId string, recordId domain.RecordId) string {
	return fmt.Sprintf("%s-%s", holdingId, recordId.UUID.String()[:8])
}
