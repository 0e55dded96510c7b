package application

import (
	"bytes"

	"github.com/ark-network/htlc/internal/core/domain"
)

func sameAssetState(a, b domain.Asset) bool {
	return a.Type == b.Type &&
		a.Id == b.Id &&
		a.Fungible == b.Fungible &&
		a.Quantity == b.Quantity &&
		a.LockedBy == b.LockedBy &&
		a.OwnerSet().Equals(b.OwnerSet())
}

func sameRecordView(a, b domain.HTLC) bool {
	return a.Id == b.Id &&
		bytes.Equal(a.Hash, b.Hash) &&
		a.Expiry.Equal(b.Expiry) &&
		a.Issuer == b.Issuer &&
		a.Asset == b.Asset &&
		a.Status == b.Status &&
		a.LockerSet().Equals(b.LockerSet()) &&
		a.RecipientSet().Equals(b.RecipientSet())
}
