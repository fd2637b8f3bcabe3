// Package clock abstracts time so that tick-driven loops can be tested
// against virtual time instead of real timers.
package clock

import "time"

// Clock provides the current time and periodic tickers.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// NewTicker returns a ticker firing every d.
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks on a channel until stopped.
type Ticker interface {
	// C returns the tick channel.
	C() <-chan time.Time

	// Stop shuts down the ticker. It is safe to call Stop multiple times.
	Stop()
}

// New returns a Clock backed by the system clock.
func New() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) NewTicker(d time.Duration) Ticker {
	return &realTicker{t: time.NewTicker(d)}
}

type realTicker struct {
	t       *time.Ticker
	stopped bool
}

func (r *realTicker) C() <-chan time.Time { return r.t.C }

func (r *realTicker) Stop() {
	if !r.stopped {
		r.t.Stop()
		r.stopped = true
	}
}
