package handlers

import (
	"github.com/ark-network/htlc/internal/core/application"
	"github.com/ark-network/htlc/internal/core/domain"
	htlcv1 "github.com/ark-network/htlc/internal/interface/grpc/api/htlcv1"
)

func parseRecordId(id string) (string, error) {
	if id == "" {
		return "", domain.NewError(domain.ErrorKindInvalidIdentifier, "missing record id")
	}
	if _, err := domain.ParseRecordId(id); err != nil {
		return "", err
	}
	return id, nil
}

func parsePreimage(preimage string) ([]byte, error) {
	if preimage == "" {
		return nil, domain.NewError(domain.ErrorKindInvalidArgument, "missing preimage")
	}
	return domain.PreimageFromBase64(preimage)
}

func parseSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, nil
	}
	buf, err := domain.PreimageFromBase64(secret)
	if err != nil {
		return nil, err
	}
	if len(buf) < domain.MinimumPreimageSize {
		return nil, domain.NewError(
			domain.ErrorKindInvalidArgument, "secret must be at least %d bytes",
			domain.MinimumPreimageSize,
		)
	}
	return buf, nil
}

func parseLockRequest(req *htlcv1.LockRequest) (*application.LockRequest, error) {
	if len(req.Lockers) <= 0 {
		return nil, domain.NewError(domain.ErrorKindInvalidArgument, "missing lockers")
	}
	if len(req.Recipients) <= 0 {
		return nil, domain.NewError(domain.ErrorKindInvalidArgument, "missing recipients")
	}
	if req.Issuer == "" {
		return nil, domain.NewError(domain.ErrorKindInvalidArgument, "missing issuer")
	}
	if req.Hash == "" {
		return nil, domain.NewError(domain.ErrorKindInvalidArgument, "missing hash")
	}
	if req.Expiry.IsZero() {
		return nil, domain.NewError(domain.ErrorKindInvalidTimeout, "missing expiry")
	}

	asset, err := domain.ParseAssetRef(req.Asset, req.Quantity)
	if err != nil {
		return nil, err
	}
	hash, err := domain.HashFromBase64(req.Hash)
	if err != nil {
		return nil, err
	}

	return &application.LockRequest{
		Lockers:    req.Lockers,
		Recipients: req.Recipients,
		Issuer:     req.Issuer,
		Observers:  req.Observers,
		Asset:      asset,
		Hash:       hash,
		Expiry:     req.Expiry,
		CoOwners:   req.CoOwners,
		Tag:        req.Tag,
	}, nil
}

func parseAsset(asset *htlcv1.Asset) (*domain.Asset, error) {
	if asset == nil {
		return nil, domain.NewError(domain.ErrorKindInvalidArgument, "missing asset")
	}
	return &domain.Asset{
		Type:     asset.Type,
		Id:       asset.Id,
		Fungible: asset.Fungible,
		Quantity: asset.Quantity,
		Owners:   asset.Owners,
		LockedBy: asset.LockedBy,
	}, nil
}

func toHTLC(h domain.HTLC) *htlcv1.HTLC {
	htlc := &htlcv1.HTLC{
		Id:          h.Id,
		Hash:        domain.HashToBase64(h.Hash),
		Expiry:      h.Expiry,
		Lockers:     h.Lockers,
		Recipients:  h.Recipients,
		Issuer:      h.Issuer,
		Observers:   h.Observers,
		Asset:       h.Asset.Key(),
		Quantity:    h.Asset.Quantity,
		Status:      h.Status.String(),
		LockTxRef:   h.LockTxRef,
		ClaimTxRef:  h.ClaimTxRef,
		UnlockTxRef: h.UnlockTxRef,
		CreatedAt:   h.CreatedAt,
		UpdatedAt:   h.UpdatedAt,
	}
	if len(h.Preimage) > 0 {
		htlc.Preimage = domain.HashToBase64(h.Preimage)
	}
	return htlc
}

func toAsset(a domain.Asset) *htlcv1.Asset {
	return &htlcv1.Asset{
		Type:      a.Type,
		Id:        a.Id,
		Fungible:  a.Fungible,
		Quantity:  a.Quantity,
		Owners:    a.Owners,
		LockedBy:  a.LockedBy,
		UpdatedAt: a.UpdatedAt,
	}
}

func toClaimReceipt(r domain.ClaimReceipt) *htlcv1.ClaimReceipt {
	return &htlcv1.ClaimReceipt{
		TxId:      r.TxId,
		RecordId:  r.RecordId,
		Party:     r.Party,
		Preimage:  domain.HashToBase64(r.Preimage),
		CreatedAt: r.CreatedAt,
	}
}
