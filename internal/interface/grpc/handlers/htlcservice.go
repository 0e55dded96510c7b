package handlers

import (
	"context"

	"github.com/ark-network/htlc/internal/core/application"
	"github.com/ark-network/htlc/internal/core/domain"
	htlcv1 "github.com/ark-network/htlc/internal/interface/grpc/api/htlcv1"
	log "github.com/sirupsen/logrus"
)

type handler struct {
	version string
	svc     application.Service
}

func NewHandler(version string, svc application.Service) htlcv1.HTLCServiceServer {
	return &handler{version, svc}
}

func (h *handler) Lock(
	ctx context.Context, req *htlcv1.LockRequest,
) (*htlcv1.LockResponse, error) {
	lockReq, err := parseLockRequest(req)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	recordId, err := h.svc.Lock(ctx, *lockReq)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	log.Infof("locked asset %s with htlc %s", lockReq.Asset, recordId)

	return &htlcv1.LockResponse{RecordId: recordId}, nil
}

func (h *handler) Claim(
	ctx context.Context, req *htlcv1.ClaimRequest,
) (*htlcv1.ClaimResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	preimage, err := parsePreimage(req.Preimage)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	receipt, err := h.svc.Claim(ctx, recordId, preimage)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	log.Infof("claimed htlc %s", recordId)

	return &htlcv1.ClaimResponse{Receipt: toClaimReceipt(*receipt)}, nil
}

func (h *handler) Unlock(
	ctx context.Context, req *htlcv1.UnlockRequest,
) (*htlcv1.UnlockResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	txId, err := h.svc.Unlock(ctx, recordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	log.Infof("unlocked htlc %s", recordId)

	return &htlcv1.UnlockResponse{TxId: txId}, nil
}

func (h *handler) IsAssetLocked(
	ctx context.Context, req *htlcv1.IsAssetLockedRequest,
) (*htlcv1.IsAssetLockedResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	locked, err := h.svc.IsAssetLocked(ctx, recordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	return &htlcv1.IsAssetLockedResponse{Locked: locked}, nil
}

func (h *handler) GetHTLC(
	ctx context.Context, req *htlcv1.GetHTLCRequest,
) (*htlcv1.GetHTLCResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	record, err := h.svc.GetHTLC(ctx, recordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	return &htlcv1.GetHTLCResponse{Htlc: toHTLC(*record)}, nil
}

func (h *handler) GetHTLCHash(
	ctx context.Context, req *htlcv1.GetHTLCHashRequest,
) (*htlcv1.GetHTLCHashResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	hash, err := h.svc.GetHTLCHash(ctx, recordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	return &htlcv1.GetHTLCHashResponse{Hash: hash}, nil
}

func (h *handler) GetHTLCPreimage(
	ctx context.Context, req *htlcv1.GetHTLCPreimageRequest,
) (*htlcv1.GetHTLCPreimageResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	preimage, err := h.svc.GetHTLCPreimage(ctx, recordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	return &htlcv1.GetHTLCPreimageResponse{Preimage: preimage}, nil
}

func (h *handler) GetClaimReceipts(
	ctx context.Context, req *htlcv1.GetClaimReceiptsRequest,
) (*htlcv1.GetClaimReceiptsResponse, error) {
	recordId, err := parseRecordId(req.RecordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	receipts, err := h.svc.GetClaimReceipts(ctx, recordId)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	list := make([]*htlcv1.ClaimReceipt, 0, len(receipts))
	for _, r := range receipts {
		list = append(list, toClaimReceipt(r))
	}
	return &htlcv1.GetClaimReceiptsResponse{Receipts: list}, nil
}

func (h *handler) RegisterAsset(
	ctx context.Context, req *htlcv1.RegisterAssetRequest,
) (*htlcv1.RegisterAssetResponse, error) {
	asset, err := parseAsset(req.Asset)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	if err := h.svc.RegisterAsset(ctx, *asset); err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	log.Infof("registered asset %s", asset.Key())

	return &htlcv1.RegisterAssetResponse{}, nil
}

func (h *handler) GetAsset(
	ctx context.Context, req *htlcv1.GetAssetRequest,
) (*htlcv1.GetAssetResponse, error) {
	if req.Type == "" || req.Id == "" {
		return nil, htlcv1.ToStatus(
			domain.NewError(domain.ErrorKindInvalidArgument, "missing asset type or id"),
		)
	}

	asset, err := h.svc.GetAsset(ctx, req.Type, req.Id)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}
	return &htlcv1.GetAssetResponse{Asset: toAsset(*asset)}, nil
}

func (h *handler) GenerateHash(
	_ context.Context, req *htlcv1.GenerateHashRequest,
) (*htlcv1.GenerateHashResponse, error) {
	secret, err := parseSecret(req.Secret)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	preimage, hash := domain.GenerateHash(secret)
	return &htlcv1.GenerateHashResponse{Preimage: preimage, Hash: hash}, nil
}

func (h *handler) GetInfo(
	ctx context.Context, _ *htlcv1.GetInfoRequest,
) (*htlcv1.GetInfoResponse, error) {
	info, err := h.svc.GetInfo(ctx)
	if err != nil {
		return nil, htlcv1.ToStatus(err)
	}

	return &htlcv1.GetInfoResponse{
		Version:            h.version,
		PartyId:            info.PartyId,
		SessionTimeout:     info.SessionTimeout.String(),
		LockersCosignClaim: info.LockersCosignClaim,
		ClaimReceipts:      info.ClaimReceipts,
		AutoUnlock:         info.AutoUnlock,
		OwnershipHandlers:  info.OwnershipHandlers,
	}, nil
}
