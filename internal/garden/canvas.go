package garden

import "image/color"

// Canvas is a 2D drawing surface. After Resize every call takes logical
// (unscaled) coordinates; the implementation applies the pixel ratio.
type Canvas interface {
	// Resize reallocates the backing buffer to floor(width*dpr) x
	// floor(height*dpr) and installs the dpr scale.
	Resize(width, height int, dpr float64)
	// Clear makes the whole surface transparent.
	Clear()
	// FillVerticalGradient paints the full surface with a top-to-bottom gradient.
	FillVerticalGradient(stops []ColorStop)
	// StrokeQuad strokes a quadratic curve from (x0, y0) to (x1, y1) with
	// control point (cx, cy).
	StrokeQuad(x0, y0, cx, cy, x1, y1, width float64, c color.NRGBA)
	// FillCircle fills a circle of radius r centred on (x, y).
	FillCircle(x, y, r float64, c color.NRGBA)
}

// BackingSize returns the pixel dimensions of a buffer for a logical size.
func BackingSize(width, height int, dpr float64) (int, int) {
	w := int(float64(width) * dpr)
	h := int(float64(height) * dpr)
	return max(w, 1), max(h, 1)
}
