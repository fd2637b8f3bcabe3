package sampler

import (
	"log/slog"
	"sync"

	"github.com/lukereid/focusbuddy/pkg/capture"
	"github.com/lukereid/focusbuddy/pkg/detection"
)

// FrameSink receives annotated camera frames for presentation.
type FrameSink func(jpeg []byte)

// People counts persons in frame. Detection runs asynchronously: each
// Sample returns the last known count immediately and, when no
// detection call is already in flight, kicks off a new one. A detection
// still pending when the next tick fires is therefore never doubled up,
// and the overlay is only ever written by one goroutine at a time.
type People struct {
	video    capture.VideoSource
	detector detection.Detector
	sink     FrameSink
	logger   *slog.Logger

	mu        sync.Mutex
	inFlight  bool
	lastCount int
}

// NewPeople creates a person-count probe. A nil detector degrades the
// probe to a constant 0 (scoring continues without person penalties).
// The sink may be nil when no presentation surface is attached.
func NewPeople(video capture.VideoSource, detector detection.Detector, sink FrameSink, logger *slog.Logger) *People {
	if logger == nil {
		logger = slog.Default()
	}
	return &People{
		video:    video,
		detector: detector,
		sink:     sink,
		logger:   logger,
	}
}

// Sample returns the current person count. The returned value is the
// result of the most recently completed detection call.
func (p *People) Sample() Reading {
	if p.detector == nil || p.video == nil {
		return Ok(0)
	}

	p.mu.Lock()
	count := p.lastCount
	if !p.inFlight {
		p.inFlight = true
		go p.detectOnce()
	}
	p.mu.Unlock()

	return Ok(count)
}

// detectOnce runs one capture+detect cycle and stores the result.
func (p *People) detectOnce() {
	defer func() {
		p.mu.Lock()
		p.inFlight = false
		p.mu.Unlock()
	}()

	frame, err := p.video.CaptureJPEG()
	if err != nil {
		// No frame yet; keep the last known count.
		return
	}

	objs, err := p.detector.Detect(frame)
	if err != nil {
		p.logger.Debug("person detection failed", "err", err)
		p.setCount(0)
		return
	}

	people := detection.People(objs)
	p.setCount(len(people))

	if p.sink != nil {
		annotated, err := detection.DrawOverlay(frame, people)
		if err != nil {
			p.logger.Debug("overlay render failed", "err", err)
			return
		}
		p.sink(annotated)
	}
}

func (p *People) setCount(n int) {
	p.mu.Lock()
	p.lastCount = n
	p.mu.Unlock()
}

// LastCount returns the most recent detection result without
// triggering a new call.
func (p *People) LastCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastCount
}
