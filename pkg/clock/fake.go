package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a manual Clock for tests. Time only moves when Advance is
// called, and due tickers fire in chronological order during the advance.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake returns a Fake clock starting at the given time.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// NewTicker returns a ticker driven by Advance.
func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &fakeTicker{
		clock:    f,
		interval: d,
		next:     f.now.Add(d),
		ch:       make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, t)
	return t
}

// Advance moves the clock forward by d, delivering every tick that
// falls due along the way. Like a real ticker, a tick is dropped when
// the receiver has not consumed the previous one.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	target := f.now.Add(d)
	f.mu.Unlock()

	for {
		f.mu.Lock()
		var due *fakeTicker
		for _, t := range f.tickers {
			if t.stopped || t.next.After(target) {
				continue
			}
			if due == nil || t.next.Before(due.next) {
				due = t
			}
		}
		if due == nil {
			f.now = target
			f.mu.Unlock()
			return
		}
		f.now = due.next
		at := due.next
		due.next = due.next.Add(due.interval)
		ch := due.ch
		f.mu.Unlock()

		select {
		case ch <- at:
		default:
		}
		// Give the consumer goroutine a chance to run before the
		// next tick fires.
		time.Sleep(time.Millisecond)
	}
}

// Tickers returns the intervals of all live tickers, sorted. Useful for
// asserting that a loop registered the timers it should have.
func (f *Fake) Tickers() []time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []time.Duration
	for _, t := range f.tickers {
		if !t.stopped {
			out = append(out, t.interval)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type fakeTicker struct {
	clock    *Fake
	interval time.Duration
	next     time.Time
	ch       chan time.Time
	stopped  bool
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	t.stopped = true
}
