package detection

import "sync"

// MockDetector is a Detector for tests. It returns a configurable set
// of objects, or an error, and counts calls.
type MockDetector struct {
	mu      sync.Mutex
	objects []Object
	err     error

	// Calls counts Detect invocations.
	Calls int
}

// NewMockDetector creates a mock returning the given objects.
func NewMockDetector(objects ...Object) *MockDetector {
	return &MockDetector{objects: objects}
}

// SetObjects replaces the returned detections.
func (m *MockDetector) SetObjects(objects ...Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects = objects
	m.err = nil
}

// SetError makes subsequent Detect calls fail.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the configured objects or error.
func (m *MockDetector) Detect(jpeg []byte) ([]Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	if m.err != nil {
		return nil, m.err
	}
	out := make([]Object, len(m.objects))
	copy(out, m.objects)
	return out, nil
}

// Close is a no-op.
func (m *MockDetector) Close() error { return nil }

var _ Detector = (*MockDetector)(nil)
