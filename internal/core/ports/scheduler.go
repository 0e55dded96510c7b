package ports

import "time"

type SchedulerService interface {
	Start()
	Stop()

	// ScheduleTaskOnce runs task once at the given instant, or right away if
	// the instant is already in the past.
	ScheduleTaskOnce(at time.Time, task func()) error
}
