package ports

import (
	"context"

	"github.com/ark-network/htlc/internal/core/domain"
)

type RepoManager interface {
	Events() domain.EventRepository
	HTLCs() domain.HTLCRepository
	Assets() domain.AssetRepository
	ClaimReceipts() domain.ClaimReceiptRepository
	// RunInTx runs fn in a single data store transaction. Repository calls
	// made with the ctx passed to fn join the transaction, which is rolled
	// back if fn returns an error.
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	Close()
}
