package backend

import (
	"errors"

	"github.com/iburimskiy/ambient-garden/internal/garden"
)

// ErrNotSized is returned when a canvas is read before its first Resize.
var ErrNotSized = errors.New("backend: canvas has no size yet")

// StaticSurface is a fixed-size Surface with no events, used for snapshots.
type StaticSurface struct {
	Canvas garden.Canvas
	Width  float64
	Height float64
	Ratio  float64
}

func (s *StaticSurface) Context2D() (garden.Canvas, error) {
	if s.Canvas == nil {
		return nil, errors.New("backend: static surface has no canvas")
	}
	return s.Canvas, nil
}

func (s *StaticSurface) Rect() (float64, float64) { return s.Width, s.Height }

func (s *StaticSurface) DevicePixelRatio() float64 { return s.Ratio }

func (s *StaticSurface) OnResize(func()) garden.Subscription { return noSubscription{} }

func (s *StaticSurface) OnPointerMove(func(x, y float64)) garden.Subscription {
	return noSubscription{}
}

func (s *StaticSurface) OnPointerLeave(func()) garden.Subscription { return noSubscription{} }

type noSubscription struct{}

func (noSubscription) Unsubscribe() {}
