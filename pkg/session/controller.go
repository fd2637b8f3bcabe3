// Package session owns the focus-session lifecycle: acquiring media,
// driving the elapsed-time and scoring timers, and persisting exactly
// one record per completed session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lukereid/focusbuddy/pkg/audioio"
	"github.com/lukereid/focusbuddy/pkg/capture"
	"github.com/lukereid/focusbuddy/pkg/clock"
	"github.com/lukereid/focusbuddy/pkg/detection"
	"github.com/lukereid/focusbuddy/pkg/focus"
	"github.com/lukereid/focusbuddy/pkg/sampler"
	"github.com/lukereid/focusbuddy/pkg/store"
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle     State = "idle"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateEnding   State = "ending"
)

// ElapsedInterval is the cadence of the session timer.
const ElapsedInterval = 1 * time.Second

// Sentinel errors.
var (
	// ErrSessionActive is returned when starting while a session runs.
	ErrSessionActive = errors.New("session: a session is already active")

	// ErrNoSession is returned when ending with no active session.
	ErrNoSession = errors.New("session: no active session")
)

// Sink consumes the engine's output: per-tick updates, the elapsed
// counter, and the finalized record on session end.
type Sink interface {
	ScoreUpdate(u focus.Update)
	Elapsed(seconds int)
	SessionEnded(rec store.SessionRecord)
}

// Deps are the capabilities a controller needs. Factories are injected
// so tests can swap hardware for mocks.
type Deps struct {
	// AcquireMedia opens the camera/microphone pair.
	AcquireMedia func() (*capture.Stream, error)

	// LoadDetector loads the person-detection model. Failure is
	// non-fatal: the session runs with person detection degraded.
	LoadDetector func() (detection.Detector, error)

	// Sessions receives the completed record.
	Sessions *store.SessionStore

	// Clock drives both timers.
	Clock clock.Clock

	// Sink receives engine output. Required.
	Sink Sink

	// FrameSink receives annotated camera frames. Optional.
	FrameSink sampler.FrameSink

	// Config holds the scoring tunables.
	Config focus.Config

	Logger *slog.Logger
}

// Controller runs at most one focus session at a time.
type Controller struct {
	deps   Deps
	logger *slog.Logger

	mu        sync.Mutex
	state     State
	user      string
	stream    *capture.Stream
	detector  detection.Detector
	waveform  *audioio.Waveform
	engine    *focus.Engine
	noise     *sampler.Noise
	light     *sampler.Light
	people    *sampler.People
	elapsed   int
	lastScore int
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewController creates an idle controller.
func NewController(deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		deps:   deps,
		logger: logger,
		state:  StateIdle,
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the state, current score, and elapsed seconds.
func (c *Controller) Snapshot() (State, int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.lastScore, c.elapsed
}

// Start acquires capabilities and begins a session for the given user.
// On acquisition failure the controller returns to Idle, the error is
// categorized (capture.ErrPermissionDenied, capture.ErrDeviceNotFound,
// or other), and nothing is persisted.
//
// The lock is not held while the camera and model warm up: the
// StateStarting guard keeps Start/End exclusive, and status reads stay
// responsive during acquisition.
func (c *Controller) Start(user string) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	c.state = StateStarting
	c.mu.Unlock()

	stream, err := c.deps.AcquireMedia()
	if err != nil {
		c.mu.Lock()
		c.state = StateIdle
		c.mu.Unlock()
		return fmt.Errorf("session: acquire media: %w", err)
	}

	// Detector load failure degrades person counting to zero for the
	// whole session; scoring keeps running.
	var det detection.Detector
	if c.deps.LoadDetector != nil {
		det, err = c.deps.LoadDetector()
		if err != nil {
			c.logger.Warn("detection model unavailable, person counting disabled", "err", err)
			det = nil
		}
	}

	// Wire the audio path: source -> rolling waveform -> noise probe.
	var waveform *audioio.Waveform
	if stream.Audio != nil {
		if err := stream.Audio.Start(context.Background()); err != nil {
			c.logger.Warn("audio capture failed to start, noise reads 0", "err", err)
		} else {
			waveform = audioio.NewWaveform(audioio.DefaultWindowSize)
			waveform.Attach(stream.Audio)
		}
	}

	c.mu.Lock()
	c.stream = stream
	c.detector = det
	c.waveform = waveform
	c.noise = sampler.NewNoise(waveform)
	c.light = sampler.NewLight(stream.Video)
	c.people = sampler.NewPeople(stream.Video, det, c.deps.FrameSink, c.logger)

	c.engine = focus.NewEngine(c.deps.Config)
	c.user = user
	c.elapsed = 0
	c.lastScore = c.engine.Score()
	c.stopCh = make(chan struct{})
	c.doneCh = make(chan struct{})
	c.state = StateActive

	go c.run(c.stopCh, c.doneCh)
	c.mu.Unlock()

	c.logger.Info("session started", "user", user)
	return nil
}

// run drives both timers from a single goroutine, so the elapsed
// counter and the scoring step never interleave mid-tick.
func (c *Controller) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	elapsedTicker := c.deps.Clock.NewTicker(ElapsedInterval)
	defer elapsedTicker.Stop()
	scoreTicker := c.deps.Clock.NewTicker(c.deps.Config.TickInterval)
	defer scoreTicker.Stop()

	for {
		select {
		case <-stopCh:
			return

		case <-elapsedTicker.C():
			c.mu.Lock()
			c.elapsed++
			seconds := c.elapsed
			c.mu.Unlock()
			c.deps.Sink.Elapsed(seconds)

		case <-scoreTicker.C():
			readings := focus.Readings{
				Noise:  c.noise.Sample(),
				Light:  c.light.Sample(),
				People: c.people.Sample(),
			}
			update := c.engine.Tick(readings, c.deps.Clock.Now())

			c.mu.Lock()
			c.lastScore = update.Score
			c.mu.Unlock()

			c.deps.Sink.ScoreUpdate(update)
		}
	}
}

// End stops both timers, releases capture resources, and persists the
// completed record. The timers are fully stopped before any resource
// is torn down, so no tick can fire against a released stream.
func (c *Controller) End() (*store.SessionRecord, error) {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return nil, ErrNoSession
	}
	c.state = StateEnding
	stopCh := c.stopCh
	doneCh := c.doneCh
	c.mu.Unlock()

	// Stop the tick loop and wait for it to drain.
	close(stopCh)
	<-doneCh

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.waveform != nil {
		c.waveform.Detach()
		c.waveform = nil
	}
	if c.detector != nil {
		c.detector.Close()
		c.detector = nil
	}
	c.stream.Release()
	c.stream = nil

	rec := store.SessionRecord{
		User:            c.user,
		Score:           c.engine.Score(),
		DurationSeconds: c.elapsed,
		Timestamp:       c.deps.Clock.Now(),
	}
	saved, err := c.deps.Sessions.Append(rec)
	if err != nil {
		c.state = StateIdle
		return nil, fmt.Errorf("session: persist record: %w", err)
	}

	c.deps.Sink.SessionEnded(*saved)
	c.state = StateIdle

	c.logger.Info("session ended",
		"user", c.user,
		"score", saved.Score,
		"duration_s", saved.DurationSeconds,
	)
	return saved, nil
}
