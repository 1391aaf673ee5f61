package garden

import (
	"math"
	"math/rand"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

// Blade is one swaying strand. Blades are immutable once generated.
type Blade struct {
	X         float64
	Height    float64
	Phase     float64
	Thickness float64
}

// Scene is the blade field plus the viewport metrics it was generated for.
// A resize replaces the whole Scene; it is never edited in place.
type Scene struct {
	Blades []Blade
	Width  int
	Height int
	DPR    float64
}

// BladeCount is the density for a viewport width: one blade per ten
// pixels, bounded so the per-frame cost stays flat on any display.
func BladeCount(width int) int {
	n := int(math.Round(float64(width) / config.PixelsPerBlade))
	return clampInt(n, config.MinBlades, config.MaxBlades)
}

// ClampDPR bounds the reported device pixel ratio to [1, 2]. Unknown or
// nonsensical ratios count as 1.
func ClampDPR(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio <= 0 {
		return 1
	}
	return clamp(ratio, 1, config.MaxDPR)
}

// GenerateBlades spreads count blades across width with a small random
// jitter so they never line up on a grid.
func GenerateBlades(rng *rand.Rand, width float64, count int) []Blade {
	if count <= 0 {
		return nil
	}

	step := width / float64(count)
	blades := make([]Blade, count)
	for i := range blades {
		blades[i] = Blade{
			X:         (float64(i) + rng.Float64()*config.BladeJitter) * step,
			Height:    (config.BladeMinHeightMul + rng.Float64()*(1-config.BladeMinHeightMul)) * config.BladeMaxHeight,
			Phase:     rng.Float64() * 2 * math.Pi,
			Thickness: config.BladeMinThickness + rng.Float64()*config.BladeThicknessVar,
		}
	}
	return blades
}

// NewScene generates a fresh scene for the given viewport.
func NewScene(rng *rand.Rand, width, height int, dpr float64) *Scene {
	return &Scene{
		Blades: GenerateBlades(rng, float64(width), BladeCount(width)),
		Width:  width,
		Height: height,
		DPR:    dpr,
	}
}
