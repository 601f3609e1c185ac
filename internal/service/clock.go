package service

import (
	"sync"
	"time"
)

// Clock returns the current time. Services take one so tests can move time.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// monotonicClock hands out strictly increasing timestamps at microsecond
// resolution. Columns fed from it must keep microseconds (gorm
// precision:6); mysql defaults datetime to milliseconds.
type monotonicClock struct {
	mu   sync.Mutex
	now  Clock
	last time.Time
}

func newMonotonicClock(now Clock) *monotonicClock {
	return &monotonicClock{now: now}
}

func (c *monotonicClock) Next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.now().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}
