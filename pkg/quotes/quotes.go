// Package quotes serves the rotating motivational quotes shown on the
// landing page and during a focus session.
package quotes

import (
	"sync"
	"time"

	"github.com/lukereid/focusbuddy/pkg/clock"
)

// Quote is one motivational quote.
type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Catalog is the built-in rotation.
var Catalog = []Quote{
	{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain"},
	{Text: "It does not matter how slowly you go as long as you do not stop.", Author: "Confucius"},
	{Text: "Education is the most powerful weapon which you can use to change the world.", Author: "Nelson Mandela"},
	{Text: "An investment in knowledge pays the best interest.", Author: "Benjamin Franklin"},
	{Text: "The more that you read, the more things you will know.", Author: "Dr. Seuss"},
	{Text: "Focused, hard work is the real key to success.", Author: "John Carmack"},
	{Text: "You don't have to be great to start, but you have to start to be great.", Author: "Zig Ziglar"},
	{Text: "Deep work is the ability to focus without distraction on a cognitively demanding task.", Author: "Cal Newport"},
	{Text: "The mind is not a vessel to be filled, but a fire to be kindled.", Author: "Plutarch"},
}

// Rotator cycles through the catalog on a fixed cadence, notifying an
// optional callback on each rotation.
type Rotator struct {
	clock  clock.Clock
	quotes []Quote

	mu     sync.Mutex
	idx    int
	stopCh chan struct{}
	doneCh chan struct{}

	// OnRotate, when set, is invoked with each new current quote.
	OnRotate func(q Quote)
}

// NewRotator creates a rotator over the built-in catalog.
func NewRotator(clk clock.Clock) *Rotator {
	return &Rotator{
		clock:  clk,
		quotes: Catalog,
	}
}

// Current returns the quote currently showing.
func (r *Rotator) Current() Quote {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quotes[r.idx%len(r.quotes)]
}

// Start begins rotating every interval. Safe to call once.
func (r *Rotator) Start(interval time.Duration) {
	r.mu.Lock()
	if r.stopCh != nil {
		r.mu.Unlock()
		return
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	stopCh, doneCh := r.stopCh, r.doneCh
	r.mu.Unlock()

	go func() {
		defer close(doneCh)
		ticker := r.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C():
				r.mu.Lock()
				r.idx = (r.idx + 1) % len(r.quotes)
				q := r.quotes[r.idx]
				cb := r.OnRotate
				r.mu.Unlock()

				if cb != nil {
					cb(q)
				}
			}
		}
	}()
}

// Stop halts rotation and waits for the loop to exit.
func (r *Rotator) Stop() {
	r.mu.Lock()
	stopCh, doneCh := r.stopCh, r.doneCh
	r.stopCh, r.doneCh = nil, nil
	r.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
}
