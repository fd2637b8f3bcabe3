package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// Webcam is a gocv-backed VideoSource reading from a local camera.
type Webcam struct {
	mu     sync.Mutex
	cap    *gocv.VideoCapture
	frame  gocv.Mat
	closed bool
}

// openWebcam opens the camera at the given device index.
func openWebcam(device int) (*Webcam, error) {
	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, err
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, fmt.Errorf("%w: video device %d", ErrDeviceNotFound, device)
	}
	return &Webcam{
		cap:   cap,
		frame: gocv.NewMat(),
	}, nil
}

// CaptureJPEG grabs the current frame and encodes it as JPEG.
// The same Mat is reused across calls so tick-cadence sampling does not
// leak native memory.
func (w *Webcam) CaptureJPEG() ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil, ErrFrameNotReady
	}
	if ok := w.cap.Read(&w.frame); !ok || w.frame.Empty() {
		return nil, ErrFrameNotReady
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, w.frame)
	if err != nil {
		return nil, fmt.Errorf("capture: encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

// Close releases the camera and the reused frame buffer.
func (w *Webcam) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	w.frame.Close()
	return w.cap.Close()
}

var _ VideoSource = (*Webcam)(nil)
