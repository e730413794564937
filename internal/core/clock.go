package core

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock returns the current simulated time in seconds. Readings never decrease.
type Clock interface {
	Now() float64
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() float64

// Now calls f().
func (f ClockFunc) Now() float64 { return f() }

// WallClock reads simulated seconds as the time elapsed since epoch on a
// clock.Clock, so a clock.Mock can stand in for the simulator's clock.
type WallClock struct {
	clock clock.Clock
	epoch time.Time
}

// NewWallClock creates a clock measuring seconds since epoch on c.
func NewWallClock(c clock.Clock, epoch time.Time) *WallClock {
	return &WallClock{clock: c, epoch: epoch}
}

// Now returns the seconds elapsed since epoch.
func (w *WallClock) Now() float64 {
	return w.clock.Now().Sub(w.epoch).Seconds()
}

// At returns the instant that is seconds after epoch.
func (w *WallClock) At(seconds float64) time.Time {
	return w.epoch.Add(time.Duration(seconds * float64(time.Second)))
}
