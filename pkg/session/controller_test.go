package session

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lukereid/focusbuddy/pkg/audioio"
	"github.com/lukereid/focusbuddy/pkg/capture"
	"github.com/lukereid/focusbuddy/pkg/clock"
	"github.com/lukereid/focusbuddy/pkg/detection"
	"github.com/lukereid/focusbuddy/pkg/focus"
	"github.com/lukereid/focusbuddy/pkg/store"
)

var testStart = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// recordingSink captures everything the controller emits.
type recordingSink struct {
	mu      sync.Mutex
	updates []focus.Update
	elapsed []int
	ended   []store.SessionRecord
}

func (s *recordingSink) ScoreUpdate(u focus.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
}

func (s *recordingSink) Elapsed(seconds int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elapsed = append(s.elapsed, seconds)
}

func (s *recordingSink) SessionEnded(rec store.SessionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ended = append(s.ended, rec)
}

func (s *recordingSink) counts() (updates, elapsed, ended int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates), len(s.elapsed), len(s.ended)
}

func (s *recordingSink) lastElapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.elapsed) == 0 {
		return 0
	}
	return s.elapsed[len(s.elapsed)-1]
}

type fixture struct {
	controller *Controller
	clk        *clock.Fake
	sink       *recordingSink
	sessions   *store.SessionStore
	video      *capture.MockVideo
	audio      *audioio.MockSource
	detector   *detection.MockDetector
	acquireErr error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	sessions, err := store.OpenSessions(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("OpenSessions: %v", err)
	}

	f := &fixture{
		clk:      clock.NewFake(testStart),
		sink:     &recordingSink{},
		sessions: sessions,
		video:    capture.NewMockVideo([]byte{0xFF, 0xD8}),
		audio:    audioio.NewMockSource(audioio.DefaultConfig(), nil),
		detector: detection.NewMockDetector(),
	}

	f.controller = NewController(Deps{
		AcquireMedia: func() (*capture.Stream, error) {
			if f.acquireErr != nil {
				return nil, f.acquireErr
			}
			return capture.NewStream(f.video, f.audio, nil), nil
		},
		LoadDetector: func() (detection.Detector, error) {
			return f.detector, nil
		},
		Sessions: sessions,
		Clock:    f.clk,
		Sink:     f.sink,
		Config:   focus.DefaultConfig(),
	})
	return f
}

// waitForTickers blocks until the run loop has registered both timers.
func (f *fixture) waitForTickers(t *testing.T) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(f.clk.Tickers()) == 2 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("run loop registered %d tickers, want 2", len(f.clk.Tickers()))
}

func TestStartTransitionsToActive(t *testing.T) {
	f := newFixture(t)

	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.controller.End()

	if got := f.controller.State(); got != StateActive {
		t.Fatalf("State = %q, want %q", got, StateActive)
	}

	state, score, elapsed := f.controller.Snapshot()
	if state != StateActive || score != 100 || elapsed != 0 {
		t.Errorf("Snapshot = (%q, %d, %d), want (active, 100, 0)", state, score, elapsed)
	}

	f.waitForTickers(t)
	intervals := f.clk.Tickers()
	if intervals[0] != ElapsedInterval || intervals[1] != focus.DefaultConfig().TickInterval {
		t.Errorf("timer intervals = %v, want [1s 2s]", intervals)
	}
}

func TestStartWhileActiveIsRejected(t *testing.T) {
	f := newFixture(t)

	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.controller.End()

	if err := f.controller.Start("other@example.com"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("second Start err = %v, want ErrSessionActive", err)
	}
}

func TestStartFailureReturnsToIdle(t *testing.T) {
	f := newFixture(t)
	f.acquireErr = fmt.Errorf("%w: /dev/video0", capture.ErrDeviceNotFound)

	err := f.controller.Start("luke@example.com")
	if !errors.Is(err, capture.ErrDeviceNotFound) {
		t.Fatalf("Start err = %v, want ErrDeviceNotFound", err)
	}
	if got := f.controller.State(); got != StateIdle {
		t.Fatalf("State after failed start = %q, want %q", got, StateIdle)
	}
	if f.sessions.Count() != 0 {
		t.Errorf("failed start persisted %d records, want 0", f.sessions.Count())
	}

	// The controller recovered: a later start succeeds.
	f.acquireErr = nil
	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("retry Start: %v", err)
	}
	f.controller.End()
}

func TestElapsedCountsWholeSeconds(t *testing.T) {
	f := newFixture(t)
	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.controller.End()
	f.waitForTickers(t)

	f.clk.Advance(3 * time.Second)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && f.sink.lastElapsed() < 3 {
		time.Sleep(5 * time.Millisecond)
	}
	if got := f.sink.lastElapsed(); got != 3 {
		t.Fatalf("last elapsed = %d, want 3", got)
	}
}

func TestScoringTicksSampleAllProbes(t *testing.T) {
	f := newFixture(t)
	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer f.controller.End()
	f.waitForTickers(t)

	f.clk.Advance(4 * time.Second) // two scoring ticks

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if u, _, _ := f.sink.counts(); u >= 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	updates, _, _ := f.sink.counts()
	if updates < 2 {
		t.Fatalf("got %d score updates after 4s, want >= 2", updates)
	}

	f.sink.mu.Lock()
	u := f.sink.updates[0]
	f.sink.mu.Unlock()
	// Quiet mock audio, one mock frame, no detections: everything good.
	if u.Score != 100 || u.NoiseLevel != 0 || u.PersonCount != 0 {
		t.Errorf("first update = %+v, want calm-room baseline", u)
	}
}

func TestEndPersistsExactlyOneRecord(t *testing.T) {
	f := newFixture(t)
	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.waitForTickers(t)

	f.clk.Advance(5 * time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && f.sink.lastElapsed() < 5 {
		time.Sleep(5 * time.Millisecond)
	}

	rec, err := f.controller.End()
	if err != nil {
		t.Fatalf("End: %v", err)
	}

	if rec.User != "luke@example.com" {
		t.Errorf("record user = %q", rec.User)
	}
	if rec.DurationSeconds != 5 {
		t.Errorf("record duration = %d, want 5", rec.DurationSeconds)
	}
	if rec.Score < 0 || rec.Score > 100 {
		t.Errorf("record score = %d, outside [0,100]", rec.Score)
	}
	if f.sessions.Count() != 1 {
		t.Fatalf("store holds %d records, want exactly 1", f.sessions.Count())
	}
	if _, _, ended := f.sink.counts(); ended != 1 {
		t.Errorf("SessionEnded fired %d times, want 1", ended)
	}
	if got := f.controller.State(); got != StateIdle {
		t.Errorf("State after End = %q, want %q", got, StateIdle)
	}
}

func TestEndWithoutSession(t *testing.T) {
	f := newFixture(t)
	if _, err := f.controller.End(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("End err = %v, want ErrNoSession", err)
	}

	// Double end after a full cycle.
	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if _, err := f.controller.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if _, err := f.controller.End(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("second End err = %v, want ErrNoSession", err)
	}
}

func TestEndStopsTimersBeforeRelease(t *testing.T) {
	f := newFixture(t)
	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start: %v", err)
	}
	f.waitForTickers(t)

	if _, err := f.controller.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	if live := f.clk.Tickers(); len(live) != 0 {
		t.Errorf("tickers still live after End: %v", live)
	}

	// No late ticks reach the sink once End returns.
	u1, e1, _ := f.sink.counts()
	f.clk.Advance(10 * time.Second)
	time.Sleep(50 * time.Millisecond)
	u2, e2, _ := f.sink.counts()
	if u1 != u2 || e1 != e2 {
		t.Errorf("sink saw activity after End: updates %d->%d elapsed %d->%d", u1, u2, e1, e2)
	}
}

func TestBackToBackSessions(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 2; i++ {
		if err := f.controller.Start("luke@example.com"); err != nil {
			t.Fatalf("Start %d: %v", i, err)
		}
		f.waitForTickers(t)
		f.clk.Advance(2 * time.Second)
		if _, err := f.controller.End(); err != nil {
			t.Fatalf("End %d: %v", i, err)
		}
	}

	if f.sessions.Count() != 2 {
		t.Fatalf("store holds %d records after 2 sessions, want 2", f.sessions.Count())
	}
}

func TestStatusStaysResponsiveDuringAcquisition(t *testing.T) {
	f := newFixture(t)
	release := make(chan struct{})
	f.controller.deps.AcquireMedia = func() (*capture.Stream, error) {
		<-release // camera warming up
		return capture.NewStream(f.video, f.audio, nil), nil
	}

	startDone := make(chan error, 1)
	go func() { startDone <- f.controller.Start("luke@example.com") }()

	// While acquisition is stuck, state reads must not block behind it.
	stateCh := make(chan State, 1)
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if s := f.controller.State(); s == StateStarting {
				stateCh <- s
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
		stateCh <- f.controller.State()
	}()
	select {
	case s := <-stateCh:
		if s != StateStarting {
			t.Fatalf("State during acquisition = %q, want %q", s, StateStarting)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("State() blocked during media acquisition")
	}

	// A competing start is rejected without waiting either.
	if err := f.controller.Start("other@example.com"); !errors.Is(err, ErrSessionActive) {
		t.Fatalf("competing Start err = %v, want ErrSessionActive", err)
	}

	close(release)
	if err := <-startDone; err != nil {
		t.Fatalf("Start: %v", err)
	}
	if got := f.controller.State(); got != StateActive {
		t.Fatalf("State after acquisition = %q, want %q", got, StateActive)
	}
	if _, err := f.controller.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
}

func TestDetectorLoadFailureDegradesGracefully(t *testing.T) {
	f := newFixture(t)
	loadErr := errors.New("model file missing")
	f.controller.deps.LoadDetector = func() (detection.Detector, error) {
		return nil, loadErr
	}

	if err := f.controller.Start("luke@example.com"); err != nil {
		t.Fatalf("Start with broken detector: %v", err)
	}
	f.waitForTickers(t)

	f.clk.Advance(2 * time.Second)
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if u, _, _ := f.sink.counts(); u >= 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	f.sink.mu.Lock()
	defer f.sink.mu.Unlock()
	if len(f.sink.updates) == 0 {
		t.Fatal("no score update with detector disabled")
	}
	if f.sink.updates[0].PersonCount != 0 {
		t.Errorf("PersonCount = %d, want 0 with no detector", f.sink.updates[0].PersonCount)
	}
}
