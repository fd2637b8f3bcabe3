package capture

import "sync"

// MockVideo is a VideoSource for tests. It serves canned JPEG frames and
// can simulate the not-ready window before a camera warms up.
type MockVideo struct {
	mu     sync.Mutex
	frame  []byte
	ready  bool
	closed bool

	// Captures counts CaptureJPEG calls.
	Captures int
}

// NewMockVideo creates a mock camera. A nil frame means "not ready".
func NewMockVideo(frame []byte) *MockVideo {
	return &MockVideo{frame: frame, ready: frame != nil}
}

// SetFrame installs the frame returned by subsequent captures and marks
// the camera ready.
func (m *MockVideo) SetFrame(frame []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frame = frame
	m.ready = frame != nil
}

// CaptureJPEG returns the canned frame, or ErrFrameNotReady.
func (m *MockVideo) CaptureJPEG() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Captures++
	if m.closed || !m.ready {
		return nil, ErrFrameNotReady
	}
	out := make([]byte, len(m.frame))
	copy(out, m.frame)
	return out, nil
}

// Close marks the camera closed.
func (m *MockVideo) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

var _ VideoSource = (*MockVideo)(nil)
