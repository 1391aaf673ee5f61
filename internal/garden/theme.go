package garden

import (
	"image/color"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

// Theme selects the gradient and stroke tones.
type Theme int

const (
	ThemeLight Theme = iota
	ThemeDark
)

// ParseTheme maps "dark" to ThemeDark and everything else to ThemeLight.
func ParseTheme(s string) Theme {
	if s == "dark" {
		return ThemeDark
	}
	return ThemeLight
}

func (t Theme) String() string {
	if t == ThemeDark {
		return "dark"
	}
	return "light"
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// ColorStop is one stop of a vertical gradient, Offset in [0, 1] from top.
type ColorStop struct {
	Offset float64
	Color  color.NRGBA
}

// Palette is the set of tones a theme paints with.
type Palette struct {
	Gradient    []ColorStop
	StrokeThick color.NRGBA
	StrokeThin  color.NRGBA
	Mote        color.NRGBA
	Backdrop    color.NRGBA
}

// PaletteFor builds a fresh palette for t. Callers own the returned slices.
func PaletteFor(t Theme) Palette {
	if t == ThemeDark {
		return Palette{
			Gradient: []ColorStop{
				{Offset: 0, Color: config.DarkGradientTop},
				{Offset: config.GradientMidOff, Color: config.DarkGradientMid},
				{Offset: 1, Color: config.Transparent},
			},
			StrokeThick: config.DarkStrokeThick,
			StrokeThin:  config.DarkStrokeThin,
			Mote:        config.DarkMote,
			Backdrop:    config.DarkBackdrop,
		}
	}
	return Palette{
		Gradient: []ColorStop{
			{Offset: 0, Color: config.LightGradientTop},
			{Offset: config.GradientMidOff, Color: config.LightGradientMid},
			{Offset: 1, Color: config.Transparent},
		},
		StrokeThick: config.LightStrokeThick,
		StrokeThin:  config.LightStrokeThin,
		Mote:        config.LightMote,
		Backdrop:    config.LightBackdrop,
	}
}

// GradientAt interpolates the stops at offset, clamping outside the first
// and last stop. Channels are interpolated premultiplied.
func GradientAt(stops []ColorStop, offset float64) color.NRGBA {
	if len(stops) == 0 {
		return color.NRGBA{}
	}
	if offset <= stops[0].Offset {
		return stops[0].Color
	}
	for i := 1; i < len(stops); i++ {
		lo, hi := stops[i-1], stops[i]
		if offset > hi.Offset {
			continue
		}
		span := hi.Offset - lo.Offset
		if span <= 0 {
			return hi.Color
		}
		return mixPremultiplied(lo.Color, hi.Color, (offset-lo.Offset)/span)
	}
	return stops[len(stops)-1].Color
}

func mixPremultiplied(a, b color.NRGBA, k float64) color.NRGBA {
	aa, ba := float64(a.A)/255, float64(b.A)/255
	alpha := aa + (ba-aa)*k
	if alpha <= 0 {
		return color.NRGBA{}
	}
	ch := func(x, y uint8) uint8 {
		v := (float64(x)*aa + (float64(y)*ba-float64(x)*aa)*k) / alpha
		return uint8(clamp(v, 0, 255) + 0.5)
	}
	return color.NRGBA{
		R: ch(a.R, b.R),
		G: ch(a.G, b.G),
		B: ch(a.B, b.B),
		A: uint8(clamp(alpha*255, 0, 255) + 0.5),
	}
}

// strokeFor picks the thick tone for blades above the thickness cutoff.
func (p Palette) strokeFor(thickness float64) color.NRGBA {
	if thickness > config.ThickBladeCutoff {
		return p.StrokeThick
	}
	return p.StrokeThin
}
