package application

import (
	"context"
	"sync"

	"github.com/ark-network/htlc/internal/core/domain"
	"github.com/ark-network/htlc/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// expiryWatcher is an unexported service running while the main application
// service is started. It schedules a task at the instant every locked htlc
// becomes reclaimable and, if enabled, reclaims the ones the local party
// locked.
type expiryWatcher struct {
	svc       *service
	scheduler ports.SchedulerService

	// cache of scheduled tasks, avoid scheduling the same htlc multiple times
	locker         sync.Locker
	scheduledTasks map[string]struct{}
}

func newExpiryWatcher(svc *service, scheduler ports.SchedulerService) *expiryWatcher {
	return &expiryWatcher{
		svc,
		scheduler,
		&sync.Mutex{},
		make(map[string]struct{}),
	}
}

func (w *expiryWatcher) start() error {
	w.scheduler.Start()

	w.svc.repoManager.Events().RegisterEventsHandler(domain.HTLCTopic, w.onEvents)

	ctx := context.Background()
	locked, err := w.svc.repoManager.HTLCs().GetHTLCsWithStatus(ctx, domain.HTLCLockedStatus)
	if err != nil {
		return err
	}
	for _, htlc := range locked {
		if err := w.schedule(htlc.Id, htlc.Window()); err != nil {
			return err
		}
	}
	if len(locked) > 0 {
		log.Debugf("watching %d locked htlcs", len(locked))
	}
	return nil
}

func (w *expiryWatcher) stop() {
	w.svc.repoManager.Events().ClearRegisteredHandlers(domain.HTLCTopic)
	w.scheduler.Stop()
}

func (w *expiryWatcher) onEvents(events []domain.Event) {
	for _, event := range events {
		e, ok := event.(domain.HTLCLocked)
		if !ok {
			continue
		}
		window := domain.TimeWindow{Expiry: e.ExpiryTime()}
		if err := w.schedule(e.Id, window); err != nil {
			log.WithError(err).Warnf("failed to schedule expiry of htlc %s", e.Id)
		}
	}
}

func (w *expiryWatcher) schedule(recordId string, window domain.TimeWindow) error {
	w.locker.Lock()
	defer w.locker.Unlock()

	if _, ok := w.scheduledTasks[recordId]; ok {
		return nil
	}
	if err := w.scheduler.ScheduleTaskOnce(
		window.ReclaimableAt(), w.createTask(recordId),
	); err != nil {
		return err
	}
	w.scheduledTasks[recordId] = struct{}{}
	return nil
}

func (w *expiryWatcher) removeTask(recordId string) {
	w.locker.Lock()
	defer w.locker.Unlock()
	delete(w.scheduledTasks, recordId)
}

func (w *expiryWatcher) createTask(recordId string) func() {
	return func() {
		defer w.removeTask(recordId)

		ctx := context.Background()
		htlc, err := w.svc.repoManager.HTLCs().GetHTLC(ctx, recordId)
		if err != nil {
			log.WithError(err).Warnf("failed to load expired htlc %s", recordId)
			return
		}
		if !htlc.IsLocked() {
			return
		}

		log.Infof("htlc %s expired, asset %s is reclaimable", htlc.Id, htlc.Asset)

		if !w.svc.autoUnlock {
			return
		}
		// Only one of the lockers submits the reclaim.
		if htlc.LockerSet().Sorted()[0] != w.svc.identity.PartyId() {
			return
		}
		if _, err := w.svc.Unlock(ctx, htlc.Id); err != nil {
			log.WithError(err).Warnf("failed to reclaim expired htlc %s", htlc.Id)
		}
	}
}
