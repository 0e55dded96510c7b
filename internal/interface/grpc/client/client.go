// Package grpcclient is the client of the htlcd gRPC service. Every error
// returned is restored to the domain error the daemon responded with.
package grpcclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"time"

	htlcv1 "github.com/ark-network/htlc/internal/interface/grpc/api/htlcv1"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

type Client struct {
	conn *grpc.ClientConn
	svc  htlcv1.HTLCServiceClient
}

// NewClient dials the daemon at addr. An empty tlsCertPath means plaintext.
func NewClient(addr, tlsCertPath string) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing daemon address")
	}

	creds := insecure.NewCredentials()
	if tlsCertPath != "" {
		cert, err := os.ReadFile(tlsCertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read tls cert: %s", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(cert) {
			return nil, fmt.Errorf("invalid tls cert %s", tlsCertPath)
		}
		creds = credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
			RootCAs:    pool,
		})
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		return nil, err
	}
	return NewClientFromConn(conn), nil
}

func NewClientFromConn(conn *grpc.ClientConn) *Client {
	return &Client{conn, htlcv1.NewHTLCServiceClient(conn)}
}

func (c *Client) Close() {
	// nolint:errcheck
	c.conn.Close()
}

func (c *Client) Lock(ctx context.Context, req *htlcv1.LockRequest) (string, error) {
	resp, err := c.svc.Lock(ctx, req)
	if err != nil {
		return "", htlcv1.FromStatus(err)
	}
	return resp.RecordId, nil
}

func (c *Client) Claim(
	ctx context.Context, recordId, preimage string,
) (*htlcv1.ClaimReceipt, error) {
	resp, err := c.svc.Claim(ctx, &htlcv1.ClaimRequest{
		RecordId: recordId,
		Preimage: preimage,
	})
	if err != nil {
		return nil, htlcv1.FromStatus(err)
	}
	return resp.Receipt, nil
}

func (c *Client) Unlock(ctx context.Context, recordId string) (string, error) {
	resp, err := c.svc.Unlock(ctx, &htlcv1.UnlockRequest{RecordId: recordId})
	if err != nil {
		return "", htlcv1.FromStatus(err)
	}
	return resp.TxId, nil
}

func (c *Client) IsAssetLocked(ctx context.Context, recordId string) (bool, error) {
	resp, err := c.svc.IsAssetLocked(ctx, &htlcv1.IsAssetLockedRequest{RecordId: recordId})
	if err != nil {
		return false, htlcv1.FromStatus(err)
	}
	return resp.Locked, nil
}

func (c *Client) GetHTLC(ctx context.Context, recordId string) (*htlcv1.HTLC, error) {
	resp, err := c.svc.GetHTLC(ctx, &htlcv1.GetHTLCRequest{RecordId: recordId})
	if err != nil {
		return nil, htlcv1.FromStatus(err)
	}
	return resp.Htlc, nil
}

func (c *Client) GetHTLCHash(ctx context.Context, recordId string) (string, error) {
	resp, err := c.svc.GetHTLCHash(ctx, &htlcv1.GetHTLCHashRequest{RecordId: recordId})
	if err != nil {
		return "", htlcv1.FromStatus(err)
	}
	return resp.Hash, nil
}

func (c *Client) GetHTLCPreimage(ctx context.Context, recordId string) (string, error) {
	resp, err := c.svc.GetHTLCPreimage(ctx, &htlcv1.GetHTLCPreimageRequest{RecordId: recordId})
	if err != nil {
		return "", htlcv1.FromStatus(err)
	}
	return resp.Preimage, nil
}

func (c *Client) GetClaimReceipts(
	ctx context.Context, recordId string,
) ([]*htlcv1.ClaimReceipt, error) {
	resp, err := c.svc.GetClaimReceipts(ctx, &htlcv1.GetClaimReceiptsRequest{RecordId: recordId})
	if err != nil {
		return nil, htlcv1.FromStatus(err)
	}
	return resp.Receipts, nil
}

func (c *Client) RegisterAsset(ctx context.Context, asset *htlcv1.Asset) error {
	if _, err := c.svc.RegisterAsset(ctx, &htlcv1.RegisterAssetRequest{Asset: asset}); err != nil {
		return htlcv1.FromStatus(err)
	}
	return nil
}

func (c *Client) GetAsset(ctx context.Context, assetType, assetId string) (*htlcv1.Asset, error) {
	resp, err := c.svc.GetAsset(ctx, &htlcv1.GetAssetRequest{Type: assetType, Id: assetId})
	if err != nil {
		return nil, htlcv1.FromStatus(err)
	}
	return resp.Asset, nil
}

func (c *Client) GenerateHash(ctx context.Context, secret string) (string, string, error) {
	resp, err := c.svc.GenerateHash(ctx, &htlcv1.GenerateHashRequest{Secret: secret})
	if err != nil {
		return "", "", htlcv1.FromStatus(err)
	}
	return resp.Preimage, resp.Hash, nil
}

func (c *Client) GetInfo(ctx context.Context) (*htlcv1.GetInfoResponse, error) {
	resp, err := c.svc.GetInfo(ctx, &htlcv1.GetInfoRequest{})
	if err != nil {
		return nil, htlcv1.FromStatus(err)
	}
	return resp, nil
}

// ExpiryIn is a helper returning the absolute expiry of a lock lasting d.
func ExpiryIn(d time.Duration) time.Time {
	return time.Now().Add(d).UTC()
}
