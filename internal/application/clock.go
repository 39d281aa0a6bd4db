package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by time.Now.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ElapsedMS returns the milliseconds between start and c.Now().
func ElapsedMS(c Clock, start time.Time) int64 {
	return c.Now().Sub(start).Milliseconds()
}
