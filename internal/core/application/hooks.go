package application

import (
	"context"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
)

// PostClaimHook runs on every locker-side party once a claim is applied to
// its local store.
type PostClaimHook func(ctx context.Context, receipt domain.ClaimReceipt) error

func claimReceiptHook(repoManager ports.RepoManager) PostClaimHook {
	return func(ctx context.Context, receipt domain.ClaimReceipt) error {
		return repoManager.ClaimReceipts().AddClaimReceipt(ctx, receipt)
	}
}
