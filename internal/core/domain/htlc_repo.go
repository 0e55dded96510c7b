package domain

import "context"

type HTLCRepository interface {
	AddHTLC(ctx context.Context, htlc HTLC) error
	// UpdateHTLC replaces the stored record only if its status still equals
	// expectedStatus.
	UpdateHTLC(ctx context.Context, htlc HTLC, expectedStatus HTLCStatus) error
	GetHTLC(ctx context.Context, id string) (*HTLC, error)
	GetHTLCsWithStatus(ctx context.Context, status HTLCStatus) ([]HTLC, error)
	Close()
}

type AssetRepository interface {
	AddOrUpdateAsset(ctx context.Context, asset Asset) error
	GetAsset(ctx context.Context, assetType, id string) (*Asset, error)
	Close()
}

type ClaimReceiptRepository interface {
	// AddClaimReceipt is a no-op if the receipt is already stored.
	AddClaimReceipt(ctx context.Context, receipt ClaimReceipt) error
	GetClaimReceipts(ctx context.Context, recordId string) ([]ClaimReceipt, error)
	Close()
}

func ErrHTLCNotFound(id string) error {
	return NewError(ErrorKindNotFound, "htlc %s not found", id)
}

func ErrAssetNotFound(key string) error {
	return NewError(ErrorKindNotFound, "asset %s not found", key)
}

func ErrHTLCAlreadyExists(id string) error {
	return NewError(ErrorKindInvalidArgument, "htlc %s already exists", id)
}

func ErrHTLCStatusChanged(id string, expected, got HTLCStatus) error {
	return NewError(
		ErrorKindAlreadyTerminal, "htlc %s status changed, expected %s got %s", id, expected, got,
	)
}
