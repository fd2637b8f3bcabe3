// Package capture acquires and releases the camera/microphone pair a
// focus session needs. Acquisition failures are categorized so the UI
// can tell the user what actually went wrong.
package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/lukereid/focusbuddy/pkg/audioio"
)

// Sentinel errors for acquisition failure categories.
var (
	// ErrPermissionDenied is returned when the OS refuses device access.
	ErrPermissionDenied = errors.New("capture: permission denied")

	// ErrDeviceNotFound is returned when no camera or microphone exists.
	ErrDeviceNotFound = errors.New("capture: device not found")
)

// VideoSource provides JPEG frames from a camera.
type VideoSource interface {
	// CaptureJPEG grabs the current frame as JPEG bytes.
	// Returns ErrFrameNotReady while the device has no decodable frame.
	CaptureJPEG() ([]byte, error)

	// Close releases the camera.
	Close() error
}

// ErrFrameNotReady is returned by CaptureJPEG before the camera
// delivers its first decodable frame. Callers treat it as "try again
// next tick", not as a failure.
var ErrFrameNotReady = errors.New("capture: frame not ready")

// Config holds capture configuration.
type Config struct {
	CameraDevice int
	Audio        audioio.Config
}

// Stream bundles the acquired video and audio tracks of one session.
// Release stops both; it is idempotent.
type Stream struct {
	Video VideoSource
	Audio audioio.Source

	logger   *slog.Logger
	mu       sync.Mutex
	released bool
}

// Acquire opens the requested tracks. On any failure it releases
// whatever it opened and returns a categorized error; no half-acquired
// stream ever escapes.
func Acquire(cfg Config, video, audio bool, logger *slog.Logger) (*Stream, error) {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Stream{logger: logger}

	if video {
		cam, err := openWebcam(cfg.CameraDevice)
		if err != nil {
			return nil, fmt.Errorf("capture: open camera %d: %w", cfg.CameraDevice, categorize(err))
		}
		s.Video = cam
	}

	if audio {
		src, err := audioio.NewSource(cfg.Audio, logger)
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("capture: open microphone: %w", categorize(err))
		}
		s.Audio = src
	}

	logger.Info("media acquired", "video", video, "audio", audio)
	return s, nil
}

// NewStream wraps already-open tracks. Acquire is the normal path;
// this exists for wiring pre-built sources such as mocks.
func NewStream(video VideoSource, audio audioio.Source, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{Video: video, Audio: audio, logger: logger}
}

// Release stops all tracks. Safe to call more than once.
func (s *Stream) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return
	}
	s.released = true

	if s.Video != nil {
		if err := s.Video.Close(); err != nil {
			s.logger.Warn("closing camera", "err", err)
		}
	}
	if s.Audio != nil {
		s.Audio.Stop()
		if err := s.Audio.Close(); err != nil {
			s.logger.Warn("closing audio source", "err", err)
		}
	}
	s.logger.Info("media released")
}

// categorize maps OS-level failures onto the acquisition taxonomy.
func categorize(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "permission denied"), strings.Contains(msg, "operation not permitted"):
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	case strings.Contains(msg, "no such file"), strings.Contains(msg, "not found"), strings.Contains(msg, "no such device"):
		return fmt.Errorf("%w: %v", ErrDeviceNotFound, err)
	default:
		return err
	}
}
