package audioio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
)

// ArecordSource captures audio by spawning the ALSA `arecord` tool and
// reading raw PCM16 from its stdout. This keeps the daemon cgo-free.
type ArecordSource struct {
	cfg    Config
	logger *slog.Logger

	mu       sync.Mutex
	running  bool
	closed   bool
	cmd      *exec.Cmd
	stdout   io.ReadCloser
	streamCh chan AudioChunk
	stopCh   chan struct{}

	// Stats
	chunksRead  atomic.Int64
	samplesRead atomic.Int64
	overruns    atomic.Int64
}

// newArecordSource creates a new arecord-backed audio source.
func newArecordSource(cfg Config, logger *slog.Logger) (*ArecordSource, error) {
	if _, err := exec.LookPath("arecord"); err != nil {
		return nil, fmt.Errorf("audioio: arecord not found: %w", err)
	}

	device := cfg.Device
	if device == "" {
		device = "default"
	}
	cfg.Device = device

	logger.Info("arecord source created",
		"device", device,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels,
	)

	return &ArecordSource{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Start spawns arecord and begins delivering chunks.
func (s *ArecordSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return io.ErrClosedPipe
	}
	if s.running {
		return nil
	}

	cmd := exec.Command("arecord",
		"-D", s.cfg.Device,
		"-f", "S16_LE",
		"-r", fmt.Sprintf("%d", s.cfg.SampleRate),
		"-c", fmt.Sprintf("%d", s.cfg.Channels),
		"-t", "raw",
		"-q",
	)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("audioio: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("audioio: start arecord: %w", err)
	}

	s.cmd = cmd
	s.stdout = stdout
	s.running = true
	s.stopCh = make(chan struct{})
	s.streamCh = make(chan AudioChunk, 10)

	go s.captureLoop(ctx, stdout, s.stopCh, s.streamCh)

	s.logger.Info("arecord audio source started", "device", s.cfg.Device)
	return nil
}

// captureLoop owns streamCh: only this goroutine sends on it, and it
// closes the channel on exit. Stop never touches the channel, so a stop
// racing a send cannot panic.
func (s *ArecordSource) captureLoop(ctx context.Context, stdout io.Reader, stopCh <-chan struct{}, streamCh chan AudioChunk) {
	defer close(streamCh)

	buf := make([]byte, s.cfg.BufferBytes())
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-stopCh:
			return
		default:
		}

		if _, err := io.ReadFull(stdout, buf); err != nil {
			// arecord exited or the pipe was closed by Stop
			s.logger.Debug("arecord read ended", "err", err)
			s.Stop()
			return
		}

		var chunk AudioChunk
		chunk.FromBytes(buf, s.cfg.SampleRate, s.cfg.Channels)

		select {
		case streamCh <- chunk:
			s.chunksRead.Add(1)
			s.samplesRead.Add(int64(len(chunk.Samples)))
		default:
			s.overruns.Add(1)
			s.logger.Debug("arecord source: buffer full, dropping chunk")
		}
	}
}

// Stop halts audio capture. It is safe to call multiple times. Killing
// arecord unblocks the capture loop's read; the loop then closes the
// stream channel itself.
func (s *ArecordSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	close(s.stopCh)

	if s.cmd != nil && s.cmd.Process != nil {
		s.cmd.Process.Kill()
		s.cmd.Wait()
	}
	s.stdout = nil
	s.cmd = nil

	s.logger.Info("arecord audio source stopped")
	return nil
}

// Stream returns the audio chunk channel.
func (s *ArecordSource) Stream() <-chan AudioChunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streamCh
}

// Config returns the audio configuration.
func (s *ArecordSource) Config() Config {
	return s.cfg
}

// Name returns "arecord".
func (s *ArecordSource) Name() string {
	return "arecord"
}

// Close releases resources.
func (s *ArecordSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.Stop()
}

var _ Source = (*ArecordSource)(nil)
