package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/ark-network/htlc/internal/core/application"
	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	schnorridentity "github.com/ark-network/htlc/internal/infrastructure/identity/schnorr"
	"github.com/stretchr/testify/require"
)

func TestPendingTransitionReservesRecord(t *testing.T) {
	ctx := context.Background()
	n := newTestNetwork(t, alice, bob, issuer)
	n.join(alice, application.Config{}, nil)
	n.join(issuer, application.Config{}, nil)
	rawBob := n.joinRaw(bob)
	registerAliceAssets(t, n.svc(alice))

	expiry := startTime.Add(time.Minute)
	recordId := lockWithRawRecipient(t, n, rawBob, expiry)
	requireEventuallyStatus(t, n.svc(issuer), recordId, domain.HTLCLockedStatus)

	// Bob gets the issuer's signature on a claim proposed right at expiry
	// and holds back the finalization.
	claim := rawBob.claimTransition(t, n.svc(issuer), recordId, expiry)
	rawBob.send(t, ports.Message{
		Type:       ports.MessageProposal,
		SessionId:  "claim-session",
		To:         issuer,
		Role:       domain.RoleIssuer,
		Transition: &claim,
	})
	issuerSig := rawBob.next(t, ports.MessageSignature).Signature

	n.clock.SetTime(expiry.Add(time.Second))

	t.Run("conflicting unlock is rejected", func(t *testing.T) {
		_, err := n.svc(alice).Unlock(ctx, recordId)
		require.Error(t, err)
		require.Equal(t, domain.ErrorKindConsensusFailed, domain.KindOf(err))
		require.ErrorContains(t, err, "pending transition")

		asset, err := n.svc(alice).GetAsset(ctx, "bond", "b1")
		require.NoError(t, err)
		require.Equal(t, recordId, asset.LockedBy)
	})

	t.Run("pending claim completes", func(t *testing.T) {
		rawBob.finalize(t, claim, issuerSig, alice, issuer)

		requireEventuallyStatus(t, n.svc(alice), recordId, domain.HTLCClaimedStatus)
		requireEventuallyStatus(t, n.svc(issuer), recordId, domain.HTLCClaimedStatus)

		asset, err := n.svc(alice).GetAsset(ctx, "bond", "b1")
		require.NoError(t, err)
		require.False(t, asset.IsLocked())
		require.Equal(t, []string{bob}, asset.Owners)

		_, err = n.svc(alice).Unlock(ctx, recordId)
		require.Error(t, err)
		require.Equal(t, domain.ErrorKindAlreadyTerminal, domain.KindOf(err))
	})
}

func TestPendingTransitionReleasedOnAbort(t *testing.T) {
	ctx := context.Background()
	n := newTestNetwork(t, alice, bob, issuer)
	n.join(alice, application.Config{}, nil)
	n.join(issuer, application.Config{}, nil)
	rawBob := n.joinRaw(bob)
	registerAliceAssets(t, n.svc(alice))

	expiry := startTime.Add(time.Minute)
	recordId := lockWithRawRecipient(t, n, rawBob, expiry)
	requireEventuallyStatus(t, n.svc(issuer), recordId, domain.HTLCLockedStatus)

	claim := rawBob.claimTransition(t, n.svc(issuer), recordId, expiry)
	rawBob.send(t, ports.Message{
		Type:       ports.MessageProposal,
		SessionId:  "claim-session",
		To:         issuer,
		Role:       domain.RoleIssuer,
		Transition: &claim,
	})
	rawBob.next(t, ports.MessageSignature)

	rawBob.send(t, ports.Message{
		Type:       ports.MessageAbort,
		SessionId:  "claim-session",
		To:         issuer,
		Transition: &claim,
	})

	n.clock.SetTime(expiry.Add(time.Second))
	_, err := n.svc(alice).Unlock(ctx, recordId)
	require.NoError(t, err)
	requireEventuallyStatus(t, n.svc(issuer), recordId, domain.HTLCReclaimedStatus)
}

func TestRedeliveredMessages(t *testing.T) {
	ctx := context.Background()
	n := newTestNetwork(t, alice, bob, issuer)
	n.join(alice, application.Config{ClaimReceipts: true}, nil)
	n.join(issuer, application.Config{}, nil)
	rawBob := n.joinRaw(bob)
	registerAliceAssets(t, n.svc(alice))

	recordId := lockWithRawRecipient(t, n, rawBob, startTime.Add(time.Hour))
	requireEventuallyStatus(t, n.svc(issuer), recordId, domain.HTLCLockedStatus)

	claim := rawBob.claimTransition(t, n.svc(issuer), recordId, startTime)
	txId, err := claim.Id()
	require.NoError(t, err)
	proposal := ports.Message{
		Type:       ports.MessageProposal,
		SessionId:  "claim-session",
		To:         issuer,
		Role:       domain.RoleIssuer,
		Transition: &claim,
	}

	rawBob.send(t, proposal)
	issuerSig := rawBob.next(t, ports.MessageSignature).Signature
	rawBob.send(t, proposal)
	require.Equal(t, issuerSig, rawBob.next(t, ports.MessageSignature).Signature)

	rawBob.finalize(t, claim, issuerSig, alice, issuer)
	rawBob.finalize(t, claim, issuerSig, alice, issuer)

	// Both parties answer in order, so the replies below come after every
	// finalization was handled.
	rawBob.send(t, proposal)
	require.Equal(t, issuerSig, rawBob.next(t, ports.MessageSignature).Signature)

	toAlice := proposal
	toAlice.To = alice
	toAlice.Role = domain.RoleLocker
	rawBob.send(t, toAlice)
	rejection := rawBob.next(t, ports.MessageRejection)
	require.Equal(t, domain.ErrorKindConsensusFailed, rejection.Kind)

	for _, svc := range []application.Service{n.svc(alice), n.svc(issuer)} {
		record, err := svc.GetHTLC(ctx, recordId)
		require.NoError(t, err)
		require.True(t, record.IsClaimed())
		require.Equal(t, txId, record.ClaimTxRef)

		asset, err := svc.GetAsset(ctx, "bond", "b1")
		require.NoError(t, err)
		require.False(t, asset.IsLocked())
		require.Equal(t, []string{bob}, asset.Owners)
	}

	receipts, err := n.svc(alice).GetClaimReceipts(ctx, recordId)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	require.Equal(t, txId, receipts[0].TxId)
}

// rawParty is a member of the network driven by hand.
type rawParty struct {
	id        string
	identity  ports.IdentityService
	transport ports.Transport
	inbox     <-chan ports.Message
}

func (n *testNetwork) joinRaw(id string) *rawParty {
	t := n.t

	identity, err := schnorridentity.NewService(id, n.keys[id], n.pubkeys)
	require.NoError(t, err)
	transport, err := n.network.Join(id)
	require.NoError(t, err)
	t.Cleanup(transport.Close)
	inbox, err := transport.Receive(context.Background())
	require.NoError(t, err)

	return &rawParty{id, identity, transport, inbox}
}

func (p *rawParty) send(t *testing.T, msg ports.Message) {
	t.Helper()
	msg.From = p.id
	require.NoError(t, p.transport.Send(context.Background(), msg))
}

func (p *rawParty) next(t *testing.T, msgType ports.MessageType) ports.Message {
	t.Helper()
	select {
	case msg, ok := <-p.inbox:
		require.True(t, ok)
		require.Equal(t, msgType, msg.Type, "%s: %s", msg.Kind, msg.Reason)
		return msg
	case <-time.After(waitFor):
		require.FailNow(t, "no message received", "expected %s", msgType)
		return ports.Message{}
	}
}

func (p *rawParty) sign(t *testing.T, tr domain.Transition) []byte {
	t.Helper()
	payload, err := tr.Payload()
	require.NoError(t, err)
	signature, err := p.identity.Sign(context.Background(), payload)
	require.NoError(t, err)
	return signature
}

// claimTransition builds the claim of the given record, as seen by svc.
func (p *rawParty) claimTransition(
	t *testing.T, svc application.Service, recordId string, proposedAt time.Time,
) domain.Transition {
	t.Helper()
	ctx := context.Background()

	record, err := svc.GetHTLC(ctx, recordId)
	require.NoError(t, err)
	asset, err := svc.GetAsset(ctx, record.Asset.Type, record.Asset.Id)
	require.NoError(t, err)

	return domain.Transition{
		Kind:       domain.TransitionClaim,
		Record:     *record,
		Asset:      *asset,
		NewOwners:  record.RecipientSet().Members(),
		Preimage:   preimage,
		Submitter:  p.id,
		ProposedAt: proposedAt.UnixMilli(),
		Signers:    domain.NewPartySet(p.id, record.Issuer).Sorted(),
	}
}

func (p *rawParty) finalize(
	t *testing.T, tr domain.Transition, issuerSig []byte, parties ...string,
) {
	t.Helper()
	signatures := map[string][]byte{
		p.id:             p.sign(t, tr),
		tr.Record.Issuer: issuerSig,
	}
	for _, party := range parties {
		p.send(t, ports.Message{
			Type:       ports.MessageFinalized,
			SessionId:  "claim-session",
			To:         party,
			Transition: &tr,
			Signatures: signatures,
		})
	}
}

// lockWithRawRecipient locks alice's bond for the raw bob, who signs the
// proposal by hand.
func lockWithRawRecipient(
	t *testing.T, n *testNetwork, rawBob *rawParty, expiry time.Time,
) string {
	t.Helper()

	type result struct {
		recordId string
		err      error
	}
	done := make(chan result, 1)
	go func() {
		req := lockRequest(expiry)
		req.Observers = nil
		recordId, err := n.svc(alice).Lock(context.Background(), req)
		done <- result{recordId, err}
	}()

	proposal := rawBob.next(t, ports.MessageProposal)
	require.Equal(t, domain.RoleRecipient, proposal.Role)
	rawBob.send(t, ports.Message{
		Type:      ports.MessageSignature,
		SessionId: proposal.SessionId,
		To:        proposal.From,
		Role:      proposal.Role,
		Signature: rawBob.sign(t, *proposal.Transition),
	})
	rawBob.next(t, ports.MessageFinalized)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		return res.recordId
	case <-time.After(waitFor):
		require.FailNow(t, "lock not completed")
		return ""
	}
}
