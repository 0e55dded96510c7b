package main

import (
	"fmt"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	schnorridentity "github.com/ark-network/htlc/internal/infrastructure/identity/schnorr"
	htlcv1 "github.com/ark-network/htlc/internal/interface/grpc/api/htlcv1"
	grpcclient "github.com/ark-network/htlc/internal/interface/grpc/client"
	"github.com/urfave/cli/v2"
)

// flags
var (
	recordIdFlag = &cli.StringFlag{
		Name:     "record-id",
		Usage:    "id of the htlc record, in the form <tag>_<uuid>",
		Required: true,
	}
	lockersFlag = &cli.StringSliceFlag{
		Name:     "locker",
		Usage:    "party locking the asset, repeat for co-owned assets",
		Required: true,
	}
	recipientsFlag = &cli.StringSliceFlag{
		Name:     "recipient",
		Usage:    "party allowed to claim the asset, repeat for many",
		Required: true,
	}
	observersFlag = &cli.StringSliceFlag{
		Name:  "observer",
		Usage: "optional party notified of every transition",
	}
	coOwnersFlag = &cli.StringSliceFlag{
		Name:  "co-owner",
		Usage: "optional, expected owners of a shared asset",
	}
	issuerFlag = &cli.StringFlag{
		Name:     "issuer",
		Usage:    "issuer of the asset",
		Required: true,
	}
	assetFlag = &cli.StringFlag{
		Name:     "asset",
		Usage:    "asset to lock, in the form <type>:<id>",
		Required: true,
	}
	quantityFlag = &cli.Uint64Flag{
		Name:  "quantity",
		Usage: "units of a fungible asset to lock, all of them if not set",
	}
	hashFlag = &cli.StringFlag{
		Name:     "hash",
		Usage:    "base64 encoded sha256 hash of the preimage",
		Required: true,
	}
	timeoutFlag = &cli.DurationFlag{
		Name:  "timeout",
		Usage: "lock duration, ignored if --expiry is set",
		Value: time.Hour,
	}
	expiryFlag = &cli.TimestampFlag{
		Name:   "expiry",
		Usage:  "absolute expiry of the lock in RFC3339 format",
		Layout: time.RFC3339,
	}
	tagFlag = &cli.StringFlag{
		Name:  "tag",
		Usage: "optional tag of the record id, derived from the hash if not set",
	}
	preimageFlag = &cli.StringFlag{
		Name:     "preimage",
		Usage:    "base64 encoded preimage of the lock hash",
		Required: true,
	}
	secretFlag = &cli.StringFlag{
		Name:  "secret",
		Usage: "optional base64 encoded secret, a random one is generated if not set",
	}
	assetTypeFlag = &cli.StringFlag{
		Name:     "type",
		Usage:    "asset type, for example bond or token",
		Required: true,
	}
	assetIdFlag = &cli.StringFlag{
		Name:     "id",
		Usage:    "asset id",
		Required: true,
	}
	fungibleFlag = &cli.BoolFlag{
		Name:  "fungible",
		Usage: "whether the asset is a fungible holding",
	}
	ownersFlag = &cli.StringSliceFlag{
		Name:     "owner",
		Usage:    "owner of the asset, repeat for shared assets",
		Required: true,
	}
)

// commands
var (
	lockAssetCommand = &cli.Command{
		Name:  "lock-asset",
		Usage: "Lock an asset with a hash and a time lock",
		Flags: []cli.Flag{
			lockersFlag, recipientsFlag, issuerFlag, observersFlag, coOwnersFlag,
			assetFlag, quantityFlag, hashFlag, timeoutFlag, expiryFlag, tagFlag,
		},
		Action: lockAssetAction,
	}
	claimAssetCommand = &cli.Command{
		Name:   "claim-asset",
		Usage:  "Claim a locked asset by revealing the preimage",
		Flags:  []cli.Flag{recordIdFlag, preimageFlag},
		Action: claimAssetAction,
	}
	unlockAssetCommand = &cli.Command{
		Name:   "unlock-asset",
		Usage:  "Reclaim an expired locked asset",
		Flags:  []cli.Flag{recordIdFlag},
		Action: unlockAssetAction,
	}
	isAssetLockedCommand = &cli.Command{
		Name:   "is-asset-locked",
		Usage:  "Tell whether the asset of an htlc is locked and claimable",
		Flags:  []cli.Flag{recordIdFlag},
		Action: isAssetLockedAction,
	}
	getHTLCCommand = &cli.Command{
		Name:   "get-htlc",
		Usage:  "Get an htlc record",
		Flags:  []cli.Flag{recordIdFlag},
		Action: getHTLCAction,
	}
	getHTLCHashCommand = &cli.Command{
		Name:   "get-htlc-hash",
		Usage:  "Get the lock hash of an htlc",
		Flags:  []cli.Flag{recordIdFlag},
		Action: getHTLCHashAction,
	}
	getHTLCPreimageCommand = &cli.Command{
		Name:   "get-htlc-preimage",
		Usage:  "Get the preimage revealed by the claim of an htlc",
		Flags:  []cli.Flag{recordIdFlag},
		Action: getHTLCPreimageAction,
	}
	getClaimReceiptsCommand = &cli.Command{
		Name:   "get-claim-receipts",
		Usage:  "Get the receipts recorded for the claim of an htlc",
		Flags:  []cli.Flag{recordIdFlag},
		Action: getClaimReceiptsAction,
	}
	assetCommand = &cli.Command{
		Name:  "asset",
		Usage: "Manage the local asset store",
		Subcommands: append(
			cli.Commands{},
			assetRegisterCommand,
			assetGetCommand,
		),
	}
	assetRegisterCommand = &cli.Command{
		Name:   "register",
		Usage:  "Issue an asset in the local asset store",
		Flags:  []cli.Flag{assetTypeFlag, assetIdFlag, fungibleFlag, quantityFlag, ownersFlag},
		Action: assetRegisterAction,
	}
	assetGetCommand = &cli.Command{
		Name:   "get",
		Usage:  "Get the state of an asset",
		Flags:  []cli.Flag{assetTypeFlag, assetIdFlag},
		Action: assetGetAction,
	}
	hashCommand = &cli.Command{
		Name:   "generate-hash",
		Usage:  "Generate a preimage and its hash",
		Flags:  []cli.Flag{secretFlag},
		Action: generateHashAction,
	}
	keysCommand = &cli.Command{
		Name:   "generate-keys",
		Usage:  "Generate a key pair for a party, locally",
		Action: generateKeysAction,
	}
	infoCommand = &cli.Command{
		Name:   "info",
		Usage:  "Get info about the daemon",
		Action: infoAction,
	}
)

func lockAssetAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	expiry := grpcclient.ExpiryIn(ctx.Duration(timeoutFlag.Name))
	if t := ctx.Timestamp(expiryFlag.Name); t != nil {
		expiry = t.UTC()
	}

	recordId, err := client.Lock(ctx.Context, &htlcv1.LockRequest{
		Lockers:    ctx.StringSlice(lockersFlag.Name),
		Recipients: ctx.StringSlice(recipientsFlag.Name),
		Issuer:     ctx.String(issuerFlag.Name),
		Observers:  ctx.StringSlice(observersFlag.Name),
		Asset:      ctx.String(assetFlag.Name),
		Quantity:   ctx.Uint64(quantityFlag.Name),
		Hash:       ctx.String(hashFlag.Name),
		Expiry:     expiry,
		CoOwners:   ctx.StringSlice(coOwnersFlag.Name),
		Tag:        ctx.String(tagFlag.Name),
	})
	if err != nil {
		return err
	}

	return printJSON(map[string]interface{}{
		"recordId": recordId,
		"expiry":   expiry.Format(time.RFC3339),
	})
}

func claimAssetAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	receipt, err := client.Claim(
		ctx.Context, ctx.String(recordIdFlag.Name), ctx.String(preimageFlag.Name),
	)
	if err != nil {
		return err
	}
	return printJSON(receipt)
}

func unlockAssetAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	txId, err := client.Unlock(ctx.Context, ctx.String(recordIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"txId": txId})
}

func isAssetLockedAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	locked, err := client.IsAssetLocked(ctx.Context, ctx.String(recordIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]bool{"locked": locked})
}

func getHTLCAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	htlc, err := client.GetHTLC(ctx.Context, ctx.String(recordIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(htlc)
}

func getHTLCHashAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	hash, err := client.GetHTLCHash(ctx.Context, ctx.String(recordIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"hash": hash})
}

func getHTLCPreimageAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	preimage, err := client.GetHTLCPreimage(ctx.Context, ctx.String(recordIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"preimage": preimage})
}

func getClaimReceiptsAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	receipts, err := client.GetClaimReceipts(ctx.Context, ctx.String(recordIdFlag.Name))
	if err != nil {
		return err
	}
	return printJSON(receipts)
}

func assetRegisterAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	asset := &htlcv1.Asset{
		Type:     ctx.String(assetTypeFlag.Name),
		Id:       ctx.String(assetIdFlag.Name),
		Fungible: ctx.Bool(fungibleFlag.Name),
		Quantity: ctx.Uint64(quantityFlag.Name),
		Owners:   ctx.StringSlice(ownersFlag.Name),
	}
	if asset.Fungible && asset.Quantity == 0 {
		return domain.NewError(
			domain.ErrorKindInvalidArgument, "missing quantity of fungible asset",
		)
	}
	if err := client.RegisterAsset(ctx.Context, asset); err != nil {
		return err
	}
	return printJSON(asset)
}

func assetGetAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	asset, err := client.GetAsset(
		ctx.Context, ctx.String(assetTypeFlag.Name), ctx.String(assetIdFlag.Name),
	)
	if err != nil {
		return err
	}
	return printJSON(asset)
}

func generateHashAction(ctx *cli.Context) error {
	secret := ctx.String(secretFlag.Name)

	// Without a secret there's no need to reach the daemon.
	if secret == "" {
		preimage, hash := domain.GenerateHash(nil)
		return printJSON(map[string]string{"preimage": preimage, "hash": hash})
	}

	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	preimage, hash, err := client.GenerateHash(ctx.Context, secret)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"preimage": preimage, "hash": hash})
}

func generateKeysAction(_ *cli.Context) error {
	privkey, pubkey, err := schnorridentity.GenerateKeyPair()
	if err != nil {
		return fmt.Errorf("failed to generate key pair: %s", err)
	}
	return printJSON(map[string]string{"privateKey": privkey, "publicKey": pubkey})
}

func infoAction(ctx *cli.Context) error {
	client, err := getClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	info, err := client.GetInfo(ctx.Context)
	if err != nil {
		return err
	}
	return printJSON(info)
}
