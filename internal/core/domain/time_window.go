package domain

import "time"

// TimeWindow splits time after a lock into two disjoint windows: claims are
// allowed up to and including Expiry, reclaims strictly after it.
type TimeWindow struct {
	Expiry time.Time
}

func NewTimeWindow(expiry, now time.Time) (TimeWindow, error) {
	if expiry.IsZero() {
		return TimeWindow{}, NewError(ErrorKindInvalidTimeout, "missing expiry time")
	}
	if !expiry.After(now) {
		return TimeWindow{}, NewError(
			ErrorKindInvalidTimeout, "expiry time %s must be after current time %s",
			expiry.UTC().Format(time.RFC3339Nano), now.UTC().Format(time.RFC3339Nano),
		)
	}
	return TimeWindow{expiry.UTC()}, nil
}

func (w TimeWindow) IsBeforeExpiry(t time.Time) bool {
	return !t.After(w.Expiry)
}

func (w TimeWindow) IsAfterExpiry(t time.Time) bool {
	return t.After(w.Expiry)
}

// ReclaimableAt is the first representable instant of the reclaim window.
func (w TimeWindow) ReclaimableAt() time.Time {
	return w.Expiry.Add(time.Nanosecond)
}
