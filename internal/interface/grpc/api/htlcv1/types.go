package htlcv1

import "time"

type LockRequest struct {
	Lockers    []string `json:"lockers"`
	Recipients []string `json:"recipients"`
	Issuer     string   `json:"issuer"`
	Observers  []string `json:"observers,omitempty"`
	// Asset is in the form <type>:<id>.
	Asset    string `json:"asset"`
	Quantity uint64 `json:"quantity,omitempty"`
	// Hash is base64 encoded.
	Hash     string    `json:"hash"`
	Expiry   time.Time `json:"expiry"`
	CoOwners []string  `json:"coOwners,omitempty"`
	Tag      string    `json:"tag,omitempty"`
}

type LockResponse struct {
	RecordId string `json:"recordId"`
}

type ClaimRequest struct {
	RecordId string `json:"recordId"`
	// Preimage is base64 encoded.
	Preimage string `json:"preimage"`
}

type ClaimResponse struct {
	Receipt *ClaimReceipt `json:"receipt"`
}

type UnlockRequest struct {
	RecordId string `json:"recordId"`
}

type UnlockResponse struct {
	TxId string `json:"txId"`
}

type IsAssetLockedRequest struct {
	RecordId string `json:"recordId"`
}

type IsAssetLockedResponse struct {
	Locked bool `json:"locked"`
}

type GetHTLCRequest struct {
	RecordId string `json:"recordId"`
}

type GetHTLCResponse struct {
	Htlc *HTLC `json:"htlc"`
}

type GetHTLCHashRequest struct {
	RecordId string `json:"recordId"`
}

type GetHTLCHashResponse struct {
	Hash string `json:"hash"`
}

type GetHTLCPreimageRequest struct {
	RecordId string `json:"recordId"`
}

type GetHTLCPreimageResponse struct {
	Preimage string `json:"preimage"`
}

type GetClaimReceiptsRequest struct {
	RecordId string `json:"recordId"`
}

type GetClaimReceiptsResponse struct {
	Receipts []*ClaimReceipt `json:"receipts"`
}

type RegisterAssetRequest struct {
	Asset *Asset `json:"asset"`
}

type RegisterAssetResponse struct{}

type GetAssetRequest struct {
	Type string `json:"type"`
	Id   string `json:"id"`
}

type GetAssetResponse struct {
	Asset *Asset `json:"asset"`
}

type GenerateHashRequest struct {
	// Secret is base64 encoded, a random one is generated if empty.
	Secret string `json:"secret,omitempty"`
}

type GenerateHashResponse struct {
	Preimage string `json:"preimage"`
	Hash     string `json:"hash"`
}

type GetInfoRequest struct{}

type GetInfoResponse struct {
	Version            string   `json:"version"`
	PartyId            string   `json:"partyId"`
	SessionTimeout     string   `json:"sessionTimeout"`
	LockersCosignClaim bool     `json:"lockersCosignClaim"`
	ClaimReceipts      bool     `json:"claimReceipts"`
	AutoUnlock         bool     `json:"autoUnlock"`
	OwnershipHandlers  []string `json:"ownershipHandlers"`
}

type HTLC struct {
	Id          string    `json:"id"`
	Hash        string    `json:"hash"`
	Expiry      time.Time `json:"expiry"`
	Lockers     []string  `json:"lockers"`
	Recipients  []string  `json:"recipients"`
	Issuer      string    `json:"issuer"`
	Observers   []string  `json:"observers,omitempty"`
	Asset       string    `json:"asset"`
	Quantity    uint64    `json:"quantity,omitempty"`
	Status      string    `json:"status"`
	LockTxRef   string    `json:"lockTxRef"`
	ClaimTxRef  string    `json:"claimTxRef,omitempty"`
	UnlockTxRef string    `json:"unlockTxRef,omitempty"`
	Preimage    string    `json:"preimage,omitempty"`
	CreatedAt   int64     `json:"createdAt"`
	UpdatedAt   int64     `json:"updatedAt"`
}

type Asset struct {
	Type      string   `json:"type"`
	Id        string   `json:"id"`
	Fungible  bool     `json:"fungible"`
	Quantity  uint64   `json:"quantity,omitempty"`
	Owners    []string `json:"owners"`
	LockedBy  string   `json:"lockedBy,omitempty"`
	UpdatedAt int64    `json:"updatedAt,omitempty"`
}

type ClaimReceipt struct {
	TxId      string `json:"txId"`
	RecordId  string `json:"recordId"`
	Party     string `json:"party"`
	Preimage  string `json:"preimage"`
	CreatedAt int64  `json:"createdAt"`
}
