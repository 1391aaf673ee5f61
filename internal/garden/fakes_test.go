package garden

import (
	"errors"
	"image/color"
)

type quadCall struct {
	x0, y0, cx, cy, x1, y1, width float64
	c                             color.NRGBA
}

type circleCall struct {
	x, y, r float64
	c       color.NRGBA
}

// recordingCanvas counts and keeps the draw calls of the latest frame.
type recordingCanvas struct {
	width, height int
	dpr           float64
	resizes       int

	clears    int
	gradients [][]ColorStop
	quads     []quadCall
	circles   []circleCall
}

func (r *recordingCanvas) Resize(width, height int, dpr float64) {
	r.width, r.height, r.dpr = width, height, dpr
	r.resizes++
}

func (r *recordingCanvas) Clear() {
	r.clears++
	r.gradients = nil
	r.quads = nil
	r.circles = nil
}

func (r *recordingCanvas) FillVerticalGradient(stops []ColorStop) {
	r.gradients = append(r.gradients, append([]ColorStop(nil), stops...))
}

func (r *recordingCanvas) StrokeQuad(x0, y0, cx, cy, x1, y1, width float64, c color.NRGBA) {
	r.quads = append(r.quads, quadCall{x0, y0, cx, cy, x1, y1, width, c})
}

func (r *recordingCanvas) FillCircle(x, y, r2 float64, c color.NRGBA) {
	r.circles = append(r.circles, circleCall{x, y, r2, c})
}

// fakeSurface is a Surface whose size, ratio and events are driven by tests.
type fakeSurface struct {
	canvas  *recordingCanvas
	err     error
	w, h    float64
	ratio   float64
	resize  Listeners[func()]
	move    Listeners[func(x, y float64)]
	leave   Listeners[func()]
	context int
}

func newFakeSurface(w, h, ratio float64) *fakeSurface {
	return &fakeSurface{canvas: &recordingCanvas{}, w: w, h: h, ratio: ratio}
}

func (s *fakeSurface) Context2D() (Canvas, error) {
	s.context++
	if s.err != nil {
		return nil, s.err
	}
	return s.canvas, nil
}

func (s *fakeSurface) Rect() (float64, float64)  { return s.w, s.h }
func (s *fakeSurface) DevicePixelRatio() float64 { return s.ratio }

func (s *fakeSurface) OnResize(fn func()) Subscription { return s.resize.Add(fn) }
func (s *fakeSurface) OnPointerMove(fn func(x, y float64)) Subscription {
	return s.move.Add(fn)
}
func (s *fakeSurface) OnPointerLeave(fn func()) Subscription { return s.leave.Add(fn) }

func (s *fakeSurface) setSize(w, h float64) {
	s.w, s.h = w, h
	s.resize.Each(func(fn func()) { fn() })
}

func (s *fakeSurface) pointerMove(x, y float64) {
	s.move.Each(func(fn func(x, y float64)) { fn(x, y) })
}

func (s *fakeSurface) pointerLeave() {
	s.leave.Each(func(fn func()) { fn() })
}

func (s *fakeSurface) listeners() int {
	return s.resize.Len() + s.move.Len() + s.leave.Len()
}

var errNoGPU = errors.New("no 2d context")
