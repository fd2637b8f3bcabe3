// Package detection provides object detection for the person probe.
// Backed by YOLOv8 through gocv; callers treat load or inference
// failure as "no detections" so a missing model never kills a session.
package detection

import (
	"image"
)

// Object is one detected object in pixel coordinates.
type Object struct {
	Label      string          // COCO class name
	Box        image.Rectangle // Bounding box in frame pixels
	Confidence float64         // Detection confidence (0-1)
}

// Detector finds objects in JPEG frames.
type Detector interface {
	// Detect finds objects in the image.
	Detect(jpeg []byte) ([]Object, error)

	// Close releases resources.
	Close() error
}

// People filters detections down to persons.
func People(objs []Object) []Object {
	var out []Object
	for _, o := range objs {
		if o.Label == "person" {
			out = append(out, o)
		}
	}
	return out
}

// Config holds detector configuration.
type Config struct {
	ModelPath        string  // Path to ONNX model
	ConfidenceThresh float32 // Minimum confidence
	NMSThresh        float32 // Non-maximum suppression threshold
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YOLOv8n.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/yolov8n.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.45,
		InputWidth:       640,
		InputHeight:      640,
	}
}
