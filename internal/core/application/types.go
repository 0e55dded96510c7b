package application

import (
	"context"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
)

type Service interface {
	Start() error
	Stop()
	Lock(ctx context.Context, req LockRequest) (string, error)
	Claim(ctx context.Context, recordId string, preimage []byte) (*domain.ClaimReceipt, error)
	Unlock(ctx context.Context, recordId string) (string, error)
	IsAssetLocked(ctx context.Context, recordId string) (bool, error)
	GetHTLC(ctx context.Context, recordId string) (*domain.HTLC, error)
	GetHTLCHash(ctx context.Context, recordId string) (string, error)
	GetHTLCPreimage(ctx context.Context, recordId string) (string, error)
	GetClaimReceipts(ctx context.Context, recordId string) ([]domain.ClaimReceipt, error)
	RegisterAsset(ctx context.Context, asset domain.Asset) error
	GetAsset(ctx context.Context, assetType, assetId string) (*domain.Asset, error)
	GetInfo(ctx context.Context) (*ServiceInfo, error)
}

type LockRequest struct {
	Lockers    []string
	Recipients []string
	Issuer     string
	Observers  []string
	// Asset.Quantity, when set on a fungible holding, locks only part of it.
	Asset  domain.AssetRef
	Hash   []byte
	Expiry time.Time
	// CoOwners, when supplied, must match the owner set of a shared asset.
	CoOwners []string
	Tag      string
}

type Config struct {
	SessionTimeout     time.Duration
	LockersCosignClaim bool
	ClaimReceipts      bool
	AutoUnlock         bool
	// ProposalRateLimit is the max number of proposals per second accepted
	// from counterparties, 0 disables the limit.
	ProposalRateLimit float64
}

type ServiceInfo struct {
	PartyId            string
	SessionTimeout     time.Duration
	LockersCosignClaim bool
	ClaimReceipts      bool
	AutoUnlock         bool
	OwnershipHandlers  []string
}
