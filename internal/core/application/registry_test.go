package application_test

import (
	"testing"

	"github.com/ark-network/htlc/internal/core/application"
	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestOwnershipHandlerRegistry(t *testing.T) {
	newOwners := domain.NewPartySet(bob)

	t.Run("built-in handlers", func(t *testing.T) {
		registry := application.NewOwnershipHandlerRegistry()

		fixtures := []struct {
			name        string
			asset       domain.Asset
			expectedErr bool
		}{
			{
				name:  "unique asset",
				asset: domain.Asset{Type: "bond", Id: "b1", Owners: []string{alice}, LockedBy: "r1"},
			},
			{
				name: "fungible holding",
				asset: domain.Asset{
					Type: "token", Id: "usd", Fungible: true, Quantity: 10,
					Owners: []string{alice}, LockedBy: "r1",
				},
			},
			{
				name: "unknown type falls back to default",
				asset: domain.Asset{
					Type: "painting", Id: "p1", Owners: []string{alice}, LockedBy: "r1",
				},
			},
			{
				name: "unknown fungible type falls back to default fungible",
				asset: domain.Asset{
					Type: "gold", Id: "g1", Fungible: true, Quantity: 5,
					Owners: []string{alice}, LockedBy: "r1",
				},
			},
			{
				name: "fungible asset of unique type",
				asset: domain.Asset{
					Type: "bond", Id: "b2", Fungible: true, Quantity: 1,
					Owners: []string{alice}, LockedBy: "r1",
				},
				expectedErr: true,
			},
			{
				name:        "token without quantity",
				asset:       domain.Asset{Type: "token", Id: "eur", Owners: []string{alice}, LockedBy: "r1"},
				expectedErr: true,
			},
			{
				name:        "locked by another record",
				asset:       domain.Asset{Type: "bond", Id: "b3", Owners: []string{alice}, LockedBy: "r2"},
				expectedErr: true,
			},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				handler, err := registry.ForAsset(f.asset)
				require.NoError(t, err)

				updated, err := handler(f.asset, "r1", newOwners, 100)
				if f.expectedErr {
					require.Error(t, err)
					require.Nil(t, updated)
					return
				}
				require.NoError(t, err)
				require.Equal(t, []string{bob}, updated.Owners)
				require.False(t, updated.IsLocked())
				require.Equal(t, int64(100), updated.UpdatedAt)
				// The input is left untouched.
				require.Equal(t, []string{alice}, f.asset.Owners)
			})
		}
	})

	t.Run("transferable", func(t *testing.T) {
		registry := application.NewOwnershipHandlerRegistry()
		lockers := domain.NewPartySet(alice)

		fixtures := []struct {
			name        string
			asset       domain.Asset
			expectedErr bool
		}{
			{
				name:  "unique asset",
				asset: domain.Asset{Type: "bond", Id: "b1", Owners: []string{alice}},
			},
			{
				name: "fungible asset of unknown type",
				asset: domain.Asset{
					Type: "gold", Id: "g1", Fungible: true, Quantity: 5, Owners: []string{alice},
				},
			},
			{
				name: "fungible asset of unique type",
				asset: domain.Asset{
					Type: "bond", Id: "b2", Fungible: true, Quantity: 1, Owners: []string{alice},
				},
				expectedErr: true,
			},
			{
				name:        "unique asset of fungible type",
				asset:       domain.Asset{Type: "token", Id: "eur", Owners: []string{alice}},
				expectedErr: true,
			},
		}
		for _, f := range fixtures {
			t.Run(f.name, func(t *testing.T) {
				err := registry.CheckTransferable(f.asset, "r1", newOwners, lockers)
				if f.expectedErr {
					require.Error(t, err)
					require.Equal(t, domain.ErrorKindInvalidArgument, domain.KindOf(err))
					return
				}
				require.NoError(t, err)
				require.False(t, f.asset.IsLocked())
				require.Equal(t, []string{alice}, f.asset.Owners)
			})
		}
	})

	t.Run("register", func(t *testing.T) {
		registry := application.NewOwnershipHandlerRegistry()

		called := false
		err := registry.Register("painting", func(
			asset domain.Asset, recordId string, owners domain.PartySet, now int64,
		) (*domain.Asset, error) {
			called = true
			return &asset, nil
		})
		require.NoError(t, err)

		handler, err := registry.ForAsset(domain.Asset{Type: "painting"})
		require.NoError(t, err)
		_, err = handler(domain.Asset{}, "r1", newOwners, 0)
		require.NoError(t, err)
		require.True(t, called)
		require.Contains(t, registry.Keys(), "painting")

		err = registry.Register("", nil)
		require.Error(t, err)
		err = registry.Register("car", nil)
		require.Error(t, err)

		_, err = registry.Handler("car")
		require.Error(t, err)
		require.Equal(t, domain.ErrorKindInvalidArgument, domain.KindOf(err))
	})
}
