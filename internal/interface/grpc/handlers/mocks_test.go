package handlers_test

import (
	"context"

	"github.com/ark-network/htlc/internal/core/application"
	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockedAppService struct {
	mock.Mock
}

func (m *mockedAppService) Start() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockedAppService) Stop() {
	m.Called()
}

func (m *mockedAppService) Lock(ctx context.Context, req application.LockRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockedAppService) Claim(
	ctx context.Context, recordId string, preimage []byte,
) (*domain.ClaimReceipt, error) {
	args := m.Called(ctx, recordId, preimage)
	var res *domain.ClaimReceipt
	if a := args.Get(0); a != nil {
		res = a.(*domain.ClaimReceipt)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) Unlock(ctx context.Context, recordId string) (string, error) {
	args := m.Called(ctx, recordId)
	return args.String(0), args.Error(1)
}

func (m *mockedAppService) IsAssetLocked(ctx context.Context, recordId string) (bool, error) {
	args := m.Called(ctx, recordId)
	return args.Bool(0), args.Error(1)
}

func (m *mockedAppService) GetHTLC(ctx context.Context, recordId string) (*domain.HTLC, error) {
	args := m.Called(ctx, recordId)
	var res *domain.HTLC
	if a := args.Get(0); a != nil {
		res = a.(*domain.HTLC)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) GetHTLCHash(ctx context.Context, recordId string) (string, error) {
	args := m.Called(ctx, recordId)
	return args.String(0), args.Error(1)
}

func (m *mockedAppService) GetHTLCPreimage(ctx context.Context, recordId string) (string, error) {
	args := m.Called(ctx, recordId)
	return args.String(0), args.Error(1)
}

func (m *mockedAppService) GetClaimReceipts(
	ctx context.Context, recordId string,
) ([]domain.ClaimReceipt, error) {
	args := m.Called(ctx, recordId)
	var res []domain.ClaimReceipt
	if a := args.Get(0); a != nil {
		res = a.([]domain.ClaimReceipt)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) RegisterAsset(ctx context.Context, asset domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}

func (m *mockedAppService) GetAsset(
	ctx context.Context, assetType, assetId string,
) (*domain.Asset, error) {
	args := m.Called(ctx, assetType, assetId)
	var res *domain.Asset
	if a := args.Get(0); a != nil {
		res = a.(*domain.Asset)
	}
	return res, args.Error(1)
}

func (m *mockedAppService) GetInfo(ctx context.Context) (*application.ServiceInfo, error) {
	args := m.Called(ctx)
	var res *application.ServiceInfo
	if a := args.Get(0); a != nil {
		res = a.(*application.ServiceInfo)
	}
	return res, args.Error(1)
}
