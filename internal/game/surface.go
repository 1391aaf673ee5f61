package game

import (
	"github.com/iburimskiy/ambient-garden/internal/garden"
)

// windowSurface exposes the ebiten window to the garden: its logical size,
// display scale and pointer events, all dispatched from the game goroutine.
type windowSurface struct {
	canvas        garden.Canvas
	width, height float64
	ratio         float64

	events surfaceEvents
	inside bool
	px, py float64
}

type surfaceEvents struct {
	resize garden.Listeners[func()]
	move   garden.Listeners[func(x, y float64)]
	leave  garden.Listeners[func()]
}

func newWindowSurface(canvas garden.Canvas, width, height float64) *windowSurface {
	return &windowSurface{canvas: canvas, width: width, height: height, ratio: 1}
}

func (s *windowSurface) Context2D() (garden.Canvas, error) { return s.canvas, nil }

func (s *windowSurface) Rect() (float64, float64) { return s.width, s.height }

func (s *windowSurface) DevicePixelRatio() float64 { return s.ratio }

func (s *windowSurface) OnResize(fn func()) garden.Subscription { return s.events.resize.Add(fn) }

func (s *windowSurface) OnPointerMove(fn func(x, y float64)) garden.Subscription {
	return s.events.move.Add(fn)
}

func (s *windowSurface) OnPointerLeave(fn func()) garden.Subscription {
	return s.events.leave.Add(fn)
}

// setLayout records a new window size and scale and reports whether it
// differed from the previous one. Listeners fire only on change.
func (s *windowSurface) setLayout(width, height, ratio float64) bool {
	if width == s.width && height == s.height && ratio == s.ratio {
		return false
	}
	s.width, s.height, s.ratio = width, height, ratio
	s.events.resize.Each(func(fn func()) { fn() })
	return true
}

// pointerAt dispatches a move when the position changed or the pointer
// just entered.
func (s *windowSurface) pointerAt(x, y float64) {
	if s.inside && x == s.px && y == s.py {
		return
	}
	s.inside = true
	s.px, s.py = x, y
	s.events.move.Each(func(fn func(x, y float64)) { fn(x, y) })
}

// pointerGone dispatches a leave once per exit.
func (s *windowSurface) pointerGone() {
	if !s.inside {
		return
	}
	s.inside = false
	s.events.leave.Each(func(fn func()) { fn() })
}
