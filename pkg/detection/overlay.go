package detection

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Overlay styling for detected people.
var (
	overlayColor = color.RGBA{R: 124, G: 106, B: 255, A: 255}
	tagWidth     = 60
	tagHeight    = 18
)

// DrawOverlay renders bounding boxes and "Person" tags onto the frame
// and returns the annotated JPEG. Only the given objects are drawn, so
// pass the person-filtered set.
func DrawOverlay(jpeg []byte, objs []Object) ([]byte, error) {
	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("detection: decode frame for overlay: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, fmt.Errorf("detection: empty frame")
	}

	for _, o := range objs {
		gocv.Rectangle(&img, o.Box, overlayColor, 2)

		tag := image.Rect(o.Box.Min.X, o.Box.Min.Y-tagHeight, o.Box.Min.X+tagWidth, o.Box.Min.Y)
		gocv.Rectangle(&img, tag, overlayColor, -1) // filled label background
		gocv.PutText(&img, "Person",
			image.Pt(o.Box.Min.X+4, o.Box.Min.Y-4),
			gocv.FontHersheySimplex, 0.4, color.RGBA{R: 255, G: 255, B: 255, A: 255}, 1)
	}

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, img)
	if err != nil {
		return nil, fmt.Errorf("detection: encode overlay: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}
