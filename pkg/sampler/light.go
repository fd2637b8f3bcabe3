package sampler

import (
	"errors"
	"image"
	"math"

	"gocv.io/x/gocv"

	"github.com/lukereid/focusbuddy/pkg/capture"
)

// Light probe tuning. The frame is downsampled hard before averaging;
// a 64x48 thumbnail is plenty for a room-level illuminance estimate.
const (
	lightSampleWidth  = 64
	lightSampleHeight = 48
	lightMaxLux       = 800
)

// Light estimates ambient illuminance from camera frames, rescaling
// mean luma [0,255] to an approximate lux proxy [0,800].
type Light struct {
	video capture.VideoSource
}

// NewLight creates a light probe over the given video source.
func NewLight(video capture.VideoSource) *Light {
	return &Light{video: video}
}

// Sample grabs a frame, downsamples it, and averages luma. Returns
// Unavailable until the camera delivers decodable frames; the signal
// re-enables itself automatically once frames arrive.
func (l *Light) Sample() Reading {
	if l.video == nil {
		return Unavailable()
	}

	frame, err := l.video.CaptureJPEG()
	if err != nil {
		if errors.Is(err, capture.ErrFrameNotReady) {
			return Unavailable()
		}
		return Failed(err)
	}

	lux, err := estimateLux(frame)
	if err != nil {
		return Unavailable()
	}
	return Ok(lux)
}

// estimateLux converts a JPEG frame to the 0-800 illuminance proxy.
// BGR2GRAY applies the standard 0.299/0.587/0.114 luma weights.
func estimateLux(jpeg []byte) (int, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return 0, err
	}
	defer img.Close()

	if img.Empty() {
		return 0, errors.New("sampler: empty frame")
	}

	small := gocv.NewMat()
	defer small.Close()
	gocv.Resize(img, &small, image.Pt(lightSampleWidth, lightSampleHeight), 0, 0, gocv.InterpolationArea)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(small, &gray, gocv.ColorBGRToGray)

	mean := gray.Mean()
	return int(math.Round(mean.Val1 / 255.0 * lightMaxLux)), nil
}
