package garden

import (
	"math"
	"time"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

// Frame is everything one repaint needs.
type Frame struct {
	Canvas       Canvas
	Scene        *Scene
	Pointer      PointerState
	Palette      Palette
	ReduceMotion bool
	Now          time.Duration
}

// Draw paints one frame: background wash, blades, then drifting motes.
// It only touches the canvas.
func Draw(f Frame) {
	if f.Canvas == nil || f.Scene == nil {
		return
	}

	width := float64(f.Scene.Width)
	height := float64(f.Scene.Height)

	f.Canvas.Clear()
	f.Canvas.FillVerticalGradient(f.Palette.Gradient)

	t := seconds(f.Now)
	baseY := height * config.BaseLineRatio

	for _, b := range f.Scene.Blades {
		sway := BladeSway(b, t) + f.Pointer.Push(b.X, width)
		h := BladeHeight(b, t)

		tipX := b.X + sway
		tipY := baseY - h
		ctrlX := b.X + sway*0.25
		ctrlY := baseY - h*0.55

		f.Canvas.StrokeQuad(b.X, baseY, ctrlX, ctrlY, tipX, tipY, b.Thickness, f.Palette.strokeFor(b.Thickness))
	}

	if f.ReduceMotion {
		return
	}
	for i := 0; i < config.MoteCount; i++ {
		x, y := MotePosition(i, t, width, height)
		f.Canvas.FillCircle(x, y, config.MoteRadius, f.Palette.Mote)
	}
}

// BladeSway is the pointer-free sway of a blade at time t (seconds): two
// oscillators at unrelated rates, one keyed on phase and one on position.
func BladeSway(b Blade, t float64) float64 {
	return math.Sin(t*0.85+b.Phase)*10 + math.Sin(t*0.35+b.X*0.008)*12
}

// BladeHeight breathes the blade length by ±30% around 70% of its height.
func BladeHeight(b Blade, t float64) float64 {
	return b.Height * (0.7 + 0.3*math.Sin(t*0.2+b.Phase))
}

// MotePosition places mote i in the top band of the surface.
func MotePosition(i int, t, width, height float64) (float64, float64) {
	fi := float64(i)
	x := (math.Sin(t*0.3+fi*9.1)*0.5 + 0.5) * width
	y := (math.Sin(t*0.4+fi*3.7)*0.5 + 0.5) * (height * config.MoteBandRatio)
	return x, y
}

func seconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond) * 0.001
}
