package audioio

import (
	"context"
	"sync"
)

// DefaultWindowSize is the rolling waveform window, matching a 2048-point
// time-domain analyser.
const DefaultWindowSize = 2048

// Waveform keeps a fixed-size rolling window of the most recent samples
// from a Source. Snapshot returns the window synchronously, which is what
// the noise probe reads each scoring tick. The ring never grows, so the
// probe can run at tick cadence indefinitely.
type Waveform struct {
	mu     sync.Mutex
	ring   []float64
	pos    int
	filled bool

	cancel context.CancelFunc
	done   chan struct{}
}

// NewWaveform creates a rolling window of the given size.
func NewWaveform(size int) *Waveform {
	if size <= 0 {
		size = DefaultWindowSize
	}
	return &Waveform{ring: make([]float64, size)}
}

// Attach starts consuming the source's stream into the window.
// It returns immediately; consumption stops when the stream closes or
// Detach is called.
func (w *Waveform) Attach(src Source) {
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.cancel = cancel
	w.done = make(chan struct{})
	done := w.done
	w.mu.Unlock()

	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-src.Stream():
				if !ok {
					return
				}
				w.push(chunk)
			}
		}
	}()
}

// Detach stops consuming the source and waits for the reader to exit.
func (w *Waveform) Detach() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// push folds a PCM16 chunk into the ring as [-1,1] amplitudes.
func (w *Waveform) push(chunk AudioChunk) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, s := range chunk.Samples {
		w.ring[w.pos] = float64(s) / 32768.0
		w.pos++
		if w.pos == len(w.ring) {
			w.pos = 0
			w.filled = true
		}
	}
}

// Push folds a chunk in directly, bypassing any attached source.
// Used by tests and by sources that deliver synchronously.
func (w *Waveform) Push(chunk AudioChunk) {
	w.push(chunk)
}

// Snapshot returns a copy of the current window. Before any audio has
// arrived it returns nil, which the noise probe treats as "no source
// attached yet".
func (w *Waveform) Snapshot() []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.filled && w.pos == 0 {
		return nil
	}

	n := len(w.ring)
	if !w.filled {
		n = w.pos
	}
	out := make([]float64, n)
	if !w.filled {
		copy(out, w.ring[:w.pos])
		return out
	}
	// Oldest-first ordering; RMS does not care, but it keeps the
	// window a genuine waveform for anyone plotting it.
	copy(out, w.ring[w.pos:])
	copy(out[len(w.ring)-w.pos:], w.ring[:w.pos])
	return out
}
