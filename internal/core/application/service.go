package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const defaultSessionTimeout = 30 * time.Second

type service struct {
	// services
	identity    ports.IdentityService
	transport   ports.Transport
	repoManager ports.RepoManager
	liveStore   ports.LiveStore
	registry    *OwnershipHandlerRegistry
	watcher     *expiryWatcher
	clock       clock.Clock

	// config
	sessionTimeout     time.Duration
	lockersCosignClaim bool
	claimReceipts      bool
	autoUnlock         bool

	hooks   []PostClaimHook
	limiter *rate.Limiter

	// acceptor sessions waiting for finalization
	pendingLock *sync.Mutex
	pending     map[string]*time.Timer

	stopCh chan struct{}
	wg     *sync.WaitGroup
}

func NewService(
	cfg Config,
	identity ports.IdentityService, transport ports.Transport,
	repoManager ports.RepoManager, liveStore ports.LiveStore,
	scheduler ports.SchedulerService, registry *OwnershipHandlerRegistry,
	clk clock.Clock,
) (Service, error) {
	if identity == nil {
		return nil, fmt.Errorf("missing identity service")
	}
	if transport == nil {
		return nil, fmt.Errorf("missing transport")
	}
	if repoManager == nil {
		return nil, fmt.Errorf("missing repo manager")
	}
	if liveStore == nil {
		return nil, fmt.Errorf("missing live store")
	}
	if registry == nil {
		registry = NewOwnershipHandlerRegistry()
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	sessionTimeout := cfg.SessionTimeout
	if sessionTimeout <= 0 {
		sessionTimeout = defaultSessionTimeout
	}

	limit := rate.Inf
	burst := 0
	if cfg.ProposalRateLimit > 0 {
		limit = rate.Limit(cfg.ProposalRateLimit)
		burst = int(cfg.ProposalRateLimit) + 1
	}

	svc := &service{
		identity:           identity,
		transport:          transport,
		repoManager:        repoManager,
		liveStore:          liveStore,
		registry:           registry,
		clock:              clk,
		sessionTimeout:     sessionTimeout,
		lockersCosignClaim: cfg.LockersCosignClaim,
		claimReceipts:      cfg.ClaimReceipts,
		autoUnlock:         cfg.AutoUnlock,
		limiter:            rate.NewLimiter(limit, burst),
		pendingLock:        &sync.Mutex{},
		pending:            make(map[string]*time.Timer),
		stopCh:             make(chan struct{}),
		wg:                 &sync.WaitGroup{},
	}
	if cfg.ClaimReceipts {
		svc.hooks = append(svc.hooks, claimReceiptHook(repoManager))
	}
	if scheduler != nil {
		svc.watcher = newExpiryWatcher(svc, scheduler)
	}

	return svc, nil
}

// AddPostClaimHook registers a hook run after the built-in ones.
func (s *service) AddPostClaimHook(hook PostClaimHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *service) Start() error {
	inbox, err := s.transport.Receive(context.Background())
	if err != nil {
		return fmt.Errorf("failed to listen to transport: %s", err)
	}

	if s.watcher != nil {
		log.Debug("starting expiry watcher...")
		if err := s.watcher.start(); err != nil {
			return err
		}
	}

	log.Debugf("starting app service for party %s...", s.identity.PartyId())
	s.wg.Add(1)
	go s.listen(inbox)
	return nil
}

func (s *service) Stop() {
	close(s.stopCh)

	if s.watcher != nil {
		s.watcher.stop()
	}

	s.pendingLock.Lock()
	for id, timer := range s.pending {
		timer.Stop()
		delete(s.pending, id)
	}
	s.pendingLock.Unlock()

	s.transport.Close()
	log.Debug("closed transport")
	s.wg.Wait()
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

func (s *service) IsAssetLocked(ctx context.Context, recordId string) (bool, error) {
	record, err := s.getHTLC(ctx, recordId)
	if err != nil {
		return false, err
	}
	return record.IsActive(s.clock.Now()), nil
}

func (s *service) GetHTLC(ctx context.Context, recordId string) (*domain.HTLC, error) {
	return s.getHTLC(ctx, recordId)
}

func (s *service) GetHTLCHash(ctx context.Context, recordId string) (string, error) {
	record, err := s.getHTLC(ctx, recordId)
	if err != nil {
		return "", err
	}
	return domain.HashToBase64(record.Hash), nil
}

func (s *service) GetHTLCPreimage(ctx context.Context, recordId string) (string, error) {
	record, err := s.getHTLC(ctx, recordId)
	if err != nil {
		return "", err
	}
	if !record.IsClaimed() || len(record.Preimage) == 0 {
		return "", domain.NewError(
			domain.ErrorKindNotFound, "preimage of htlc %s not revealed, status is %s",
			recordId, record.Status,
		)
	}
	return domain.HashToBase64(record.Preimage), nil
}

func (s *service) GetClaimReceipts(
	ctx context.Context, recordId string,
) ([]domain.ClaimReceipt, error) {
	if _, err := domain.ParseRecordId(recordId); err != nil {
		return nil, err
	}
	return s.repoManager.ClaimReceipts().GetClaimReceipts(ctx, recordId)
}

// RegisterAsset issues an asset in the local asset store.
func (s *service) RegisterAsset(ctx context.Context, asset domain.Asset) error {
	if err := asset.Validate(); err != nil {
		return err
	}
	if asset.IsLocked() {
		return domain.NewError(
			domain.ErrorKindInvalidArgument, "cannot register locked asset %s", asset.Key(),
		)
	}
	existing, err := s.repoManager.Assets().GetAsset(ctx, asset.Type, asset.Id)
	if err != nil && !domain.IsNotFound(err) {
		return err
	}
	if existing != nil && existing.IsLocked() {
		return domain.NewError(
			domain.ErrorKindNotAuthorized, "asset %s is locked by %s", asset.Key(), existing.LockedBy,
		)
	}
	asset.Owners = asset.OwnerSet().Members()
	asset.UpdatedAt = s.clock.Now().Unix()
	return s.repoManager.Assets().AddOrUpdateAsset(ctx, asset)
}

func (s *service) GetAsset(
	ctx context.Context, assetType, assetId string,
) (*domain.Asset, error) {
	return s.repoManager.Assets().GetAsset(ctx, assetType, assetId)
}

func (s *service) GetInfo(ctx context.Context) (*ServiceInfo, error) {
	return &ServiceInfo{
		PartyId:            s.identity.PartyId(),
		SessionTimeout:     s.sessionTimeout,
		LockersCosignClaim: s.lockersCosignClaim,
		ClaimReceipts:      s.claimReceipts,
		AutoUnlock:         s.autoUnlock,
		OwnershipHandlers:  s.registry.Keys(),
	}, nil
}

// listen dispatches the messages of the local inbox one at a time, so that
// messages from the same counterparty are handled in the order they were sent.
func (s *service) listen(inbox <-chan ports.Message) {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopCh:
			return
		case msg, ok := <-inbox:
			if !ok {
				return
			}
			s.dispatch(msg)
		}
	}
}

func (s *service) dispatch(msg ports.Message) {
	ctx := context.Background()

	switch msg.Type {
	case ports.MessageProposal:
		s.handleProposal(ctx, msg)
	case ports.MessageSignature:
		s.handleSignature(ctx, msg)
	case ports.MessageRejection:
		s.handleRejection(ctx, msg)
	case ports.MessageFinalized:
		s.handleFinalized(ctx, msg)
	case ports.MessageAbort:
		s.handleAbort(ctx, msg)
	default:
		log.Warnf("dropping message of unknown type %d from %s", msg.Type, msg.From)
	}
}

func (s *service) getHTLC(ctx context.Context, recordId string) (*domain.HTLC, error) {
	if _, err := domain.ParseRecordId(recordId); err != nil {
		return nil, err
	}
	return s.repoManager.HTLCs().GetHTLC(ctx, recordId)
}

func (s *service) saveEvents(ctx context.Context, id string, events []domain.Event) error {
	if len(events) <= 0 {
		return nil
	}
	return s.repoManager.Events().Save(ctx, domain.HTLCTopic, id, events)
}
