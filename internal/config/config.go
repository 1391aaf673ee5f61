package config

import (
	"image/color"
	"time"
)

const (
	WindowWidth  = 1280
	WindowHeight = 720
	WindowTitle  = "Garden - T: theme, S: sound, M: reduced motion, Esc/Q: quit"

	// Scene density
	MinBlades      = 70
	MaxBlades      = 240
	PixelsPerBlade = 10
	MaxDPR         = 2

	// Blade geometry
	BladeJitter       = 0.4
	BladeMaxHeight    = 220
	BladeMinHeightMul = 0.25
	BladeMinThickness = 0.6
	BladeThicknessVar = 1.2
	ThickBladeCutoff  = 1.15
	BaseLineRatio     = 0.86

	// Pointer field
	PointerReach = 0.45
	PointerPush  = 0.03

	// Motes
	MoteCount      = 16
	MoteRadius     = 1.2
	MoteBandRatio  = 0.6
	GradientMidOff = 0.6

	// Ambient audio graph
	SampleRate      = 44100
	NoiseSeconds    = 2.5
	NoiseAmplitude  = 0.25
	FilterCutoffHz  = 720
	FilterQ         = 0.6
	AudibleGain     = 0.06
	RampUp          = 350 * time.Millisecond
	RampDown        = 250 * time.Millisecond
	SuspendDelay    = 320 * time.Millisecond
	SpeakerBuffer   = time.Second / 20
	VisualRingSize  = 4096
	SmoothingFactor = 0.6

	// Host timings
	IntroFailSafe = 12 * time.Second

	// Sound indicator
	IndicatorSize   = 28
	IndicatorMargin = 16
)

// Theme color stops, exact values from the page stylesheet.
var (
	DarkGradientTop = color.NRGBA{R: 255, G: 255, B: 255, A: alpha(0.06)}
	DarkGradientMid = color.NRGBA{R: 255, G: 255, B: 255, A: alpha(0.02)}
	DarkStrokeThick = color.NRGBA{R: 255, G: 255, B: 255, A: alpha(0.18)}
	DarkStrokeThin  = color.NRGBA{R: 255, G: 255, B: 255, A: alpha(0.09)}
	DarkMote        = color.NRGBA{R: 255, G: 255, B: 255, A: alpha(0.12)}
	DarkBackdrop    = color.NRGBA{R: 3, G: 3, B: 3, A: 255}

	LightGradientTop = color.NRGBA{R: 3, G: 3, B: 3, A: alpha(0.06)}
	LightGradientMid = color.NRGBA{R: 3, G: 3, B: 3, A: alpha(0.03)}
	LightStrokeThick = color.NRGBA{R: 3, G: 3, B: 3, A: alpha(0.18)}
	LightStrokeThin  = color.NRGBA{R: 3, G: 3, B: 3, A: alpha(0.09)}
	LightMote        = color.NRGBA{R: 3, G: 3, B: 3, A: alpha(0.10)}
	LightBackdrop    = color.NRGBA{R: 232, G: 232, B: 232, A: 255}

	Transparent = color.NRGBA{}
)

func alpha(a float64) uint8 {
	return uint8(a*255 + 0.5)
}
