package timescheduler

import (
	"time"

	"github.com/ark-network/htlc/internal/core/ports"
	"github.com/go-co-op/gocron"
	"github.com/lightningnetwork/lnd/clock"
)

type service struct {
	scheduler *gocron.Scheduler
	clock     clock.Clock
}

func NewScheduler(clk clock.Clock) ports.SchedulerService {
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	svc := gocron.NewScheduler(time.UTC)
	return &service{svc, clk}
}

func (s *service) Start() {
	s.scheduler.StartAsync()
}

func (s *service) Stop() {
	s.scheduler.Stop()
}

func (s *service) ScheduleTaskOnce(at time.Time, task func()) error {
	delay := at.Sub(s.clock.Now())
	if delay <= 0 {
		go task()
		return nil
	}

	_, err := s.scheduler.Every(delay).WaitForSchedule().LimitRunsTo(1).Do(task)
	return err
}
