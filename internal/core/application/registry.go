package application

import (
	"sort"
	"sync"

	"github.com/ark-network/htlc/internal/core/domain"
)

const (
	BondHandlerKey            = "bond"
	TokenHandlerKey           = "token"
	DefaultHandlerKey         = "default"
	DefaultFungibleHandlerKey = "default-fungible"
)

// OwnershipUpdateHandler returns the state of an asset locked by recordId
// once handed over to newOwners.
type OwnershipUpdateHandler func(
	asset domain.Asset, recordId string, newOwners domain.PartySet, now int64,
) (*domain.Asset, error)

// OwnershipHandlerRegistry maps asset types to the handler updating their
// ownership at claim or unlock time.
type OwnershipHandlerRegistry struct {
	lock     *sync.RWMutex
	handlers map[string]OwnershipUpdateHandler
}

func NewOwnershipHandlerRegistry() *OwnershipHandlerRegistry {
	r := &OwnershipHandlerRegistry{
		lock:     &sync.RWMutex{},
		handlers: make(map[string]OwnershipUpdateHandler),
	}
	// nolint:errcheck
	r.Register(BondHandlerKey, uniqueAssetHandler)
	// nolint:errcheck
	r.Register(TokenHandlerKey, fungibleAssetHandler)
	// nolint:errcheck
	r.Register(DefaultHandlerKey, uniqueAssetHandler)
	// nolint:errcheck
	r.Register(DefaultFungibleHandlerKey, fungibleAssetHandler)
	return r
}

func (r *OwnershipHandlerRegistry) Register(key string, handler OwnershipUpdateHandler) error {
	if key == "" {
		return domain.NewError(domain.ErrorKindInvalidArgument, "missing handler key")
	}
	if handler == nil {
		return domain.NewError(domain.ErrorKindInvalidArgument, "missing handler for %s", key)
	}

	r.lock.Lock()
	defer r.lock.Unlock()
	r.handlers[key] = handler
	return nil
}

func (r *OwnershipHandlerRegistry) Handler(key string) (OwnershipUpdateHandler, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	handler, ok := r.handlers[key]
	if !ok {
		return nil, domain.NewError(
			domain.ErrorKindInvalidArgument, "no ownership handler registered for %s", key,
		)
	}
	return handler, nil
}

// ForAsset resolves the handler of the asset type. Types without a handler of
// their own fall back to the default handler matching the asset fungibility.
func (r *OwnershipHandlerRegistry) ForAsset(asset domain.Asset) (OwnershipUpdateHandler, error) {
	handler, err := r.Handler(asset.Type)
	if err == nil {
		return handler, nil
	}
	fallbackKey := DefaultHandlerKey
	if asset.Fungible {
		fallbackKey = DefaultFungibleHandlerKey
	}
	if fallback, ferr := r.Handler(fallbackKey); ferr == nil {
		return fallback, nil
	}
	return nil, err
}

// CheckTransferable makes sure the asset, once locked by recordId, can be
// handed over to both recipients and lockers. It never modifies asset.
func (r *OwnershipHandlerRegistry) CheckTransferable(
	asset domain.Asset, recordId string, recipients, lockers domain.PartySet,
) error {
	handler, err := r.ForAsset(asset)
	if err != nil {
		return err
	}
	asset.Owners = append([]string{}, asset.Owners...)
	asset.LockedBy = recordId
	for _, owners := range []domain.PartySet{recipients, lockers} {
		if _, err := handler(asset, recordId, owners, asset.UpdatedAt); err != nil {
			return domain.WrapError(
				domain.ErrorKindInvalidArgument, err,
				"ownership of asset %s cannot be transferred", asset.Key(),
			)
		}
	}
	return nil
}

func (r *OwnershipHandlerRegistry) Keys() []string {
	r.lock.RLock()
	defer r.lock.RUnlock()

	keys := make([]string, 0, len(r.handlers))
	for key := range r.handlers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func uniqueAssetHandler(
	asset domain.Asset, recordId string, newOwners domain.PartySet, now int64,
) (*domain.Asset, error) {
	if asset.Fungible {
		return nil, domain.NewError(
			domain.ErrorKindInvalidArgument, "asset %s is fungible", asset.Key(),
		)
	}
	if err := asset.TransferOwnership(recordId, newOwners, now); err != nil {
		return nil, err
	}
	return &asset, nil
}

func fungibleAssetHandler(
	asset domain.Asset, recordId string, newOwners domain.PartySet, now int64,
) (*domain.Asset, error) {
	if !asset.Fungible || asset.Quantity == 0 {
		return nil, domain.NewError(
			domain.ErrorKindInvalidArgument, "asset %s is not a fungible holding", asset.Key(),
		)
	}
	if err := asset.TransferOwnership(recordId, newOwners, now); err != nil {
		return nil, err
	}
	return &asset, nil
}
