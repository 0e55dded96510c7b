package domain

import (
	"fmt"
	"strings"
)

const assetKeySeparator = ":"

// AssetRef points to the live state of an asset held in the asset store.
// Quantity is set only for fungible assets.
type AssetRef struct {
	Type     string
	Id       string
	Quantity uint64
}

func ParseAssetRef(key string, quantity uint64) (AssetRef, error) {
	parts := strings.SplitN(key, assetKeySeparator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return AssetRef{}, NewError(
			ErrorKindInvalidArgument, "invalid asset %q, expected <type>:<id>", key,
		)
	}
	return AssetRef{parts[0], parts[1], quantity}, nil
}

func (r AssetRef) Key() string {
	return r.Type + assetKeySeparator + r.Id
}

func (r AssetRef) IsFungible() bool {
	return r.Quantity > 0
}

func (r AssetRef) String() string {
	if r.IsFungible() {
		return fmt.Sprintf("%s(%d)", r.Key(), r.Quantity)
	}
	return r.Key()
}

// Asset is the state of an asset as seen by the asset store.
// A fungible asset is a holding of Quantity units of Type.
type Asset struct {
	Type      string
	Id        string
	Fungible  bool
	Quantity  uint64
	Owners    []string
	LockedBy  string
	UpdatedAt int64
}

func (a Asset) Key() string {
	return a.Type + assetKeySeparator + a.Id
}

func (a Asset) Ref() AssetRef {
	ref := AssetRef{Type: a.Type, Id: a.Id}
	if a.Fungible {
		ref.Quantity = a.Quantity
	}
	return ref
}

func (a Asset) OwnerSet() PartySet {
	return NewPartySet(a.Owners...)
}

func (a Asset) IsLocked() bool {
	return a.LockedBy != ""
}

func (a Asset) IsOwnedExclusivelyBy(parties PartySet) bool {
	return a.OwnerSet().Equals(parties)
}

func (a Asset) Validate() error {
	if a.Type == "" || a.Id == "" {
		return NewError(ErrorKindInvalidArgument, "missing asset type or id")
	}
	if strings.Contains(a.Type, assetKeySeparator) {
		return NewError(ErrorKindInvalidArgument, "asset type must not contain %q", assetKeySeparator)
	}
	if a.OwnerSet().IsEmpty() {
		return NewError(ErrorKindInvalidArgument, "asset %s has no owners", a.Key())
	}
	if a.Fungible && a.Quantity == 0 {
		return NewError(ErrorKindInvalidArgument, "fungible asset %s has zero quantity", a.Key())
	}
	return nil
}

// Lock moves the asset out of the owners' free pool.
func (a *Asset) Lock(recordId string, now int64) error {
	if a.IsLocked() {
		return NewError(
			ErrorKindNotAuthorized, "asset %s is already locked by %s", a.Key(), a.LockedBy,
		)
	}
	a.LockedBy = recordId
	a.UpdatedAt = now
	return nil
}

// TransferOwnership hands the asset locked by recordId over to owners and
// releases the lock.
func (a *Asset) TransferOwnership(recordId string, owners PartySet, now int64) error {
	if a.LockedBy != recordId {
		return NewError(
			ErrorKindNotAuthorized, "asset %s is not locked by %s", a.Key(), recordId,
		)
	}
	if owners.IsEmpty() {
		return NewError(ErrorKindInvalidArgument, "missing new owners for asset %s", a.Key())
	}
	a.Owners = owners.Members()
	a.LockedBy = ""
	a.UpdatedAt = now
	return nil
}

// Split detaches quantity units from a fungible holding into a new holding
// with the same owners.
func (a *Asset) Split(quantity uint64, newId string, now int64) (*Asset, error) {
	if !a.Fungible {
		return nil, NewError(ErrorKindInvalidArgument, "asset %s is not fungible", a.Key())
	}
	if a.IsLocked() {
		return nil, NewError(ErrorKindNotAuthorized, "asset %s is locked", a.Key())
	}
	if quantity == 0 || quantity >= a.Quantity {
		return nil, NewError(
			ErrorKindInvalidArgument, "invalid split quantity %d for holding of %d",
			quantity, a.Quantity,
		)
	}
	a.Quantity -= quantity
	a.UpdatedAt = now
	return &Asset{
		Type:      a.Type,
		Id:        newId,
		Fungible:  true,
		Quantity:  quantity,
		Owners:    append([]string{}, a.Owners...),
		UpdatedAt: now,
	}, nil
}
