package utils

import "time"

// DeltaTimer measures the time between consecutive frames. The first call
// to Next returns 0.
type DeltaTimer struct {
	last time.Time

	// Clock replaces time.Now when set.
	Clock func() time.Time
}

func (d *DeltaTimer) Next() time.Duration {
	// one timestamp per call, so rounding doesn't accumulate
	now := d.now()

	defer func() { d.last = now }()
	if d.last.IsZero() {
		return 0
	}
	return now.Sub(d.last)
}

func (d *DeltaTimer) now() time.Time {
	if d.Clock != nil {
		return d.Clock()
	}
	return time.Now()
}
