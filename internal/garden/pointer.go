package garden

import (
	"math"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

// PointerState is the last known pointer position in surface coordinates.
type PointerState struct {
	X, Y   float64
	Active bool
}

// PointerField tracks the pointer and turns it into blade deformation.
// It keeps a single cell; the latest event wins.
type PointerField struct {
	state PointerState
}

// Move records a pointer position and marks the pointer active.
func (p *PointerField) Move(x, y float64) {
	p.state = PointerState{X: x, Y: y, Active: true}
}

// Leave deactivates the pointer. The last position is kept but ignored.
func (p *PointerField) Leave() {
	p.state.Active = false
}

func (p *PointerField) State() PointerState {
	return p.state
}

// Influence returns how strongly the pointer bends a blade at x.
func (p *PointerField) Influence(x, width float64) float64 {
	return p.state.Influence(x, width)
}

// Push returns the horizontal sway offset the pointer adds to a blade at x.
func (p *PointerField) Push(x, width float64) float64 {
	return p.state.Push(x, width)
}

// Influence is a quadratic falloff: 1 under the pointer, 0 at and beyond
// 45% of the viewport width, and 0 whenever the pointer is inactive.
func (s PointerState) Influence(x, width float64) float64 {
	if !s.Active {
		return 0
	}
	reach := width * config.PointerReach
	if reach <= 0 {
		return 0
	}
	n := clamp01(math.Abs(s.X-x) / reach)
	return (1 - n) * (1 - n)
}

// Push pulls blades toward the pointer, scaled by Influence.
func (s PointerState) Push(x, width float64) float64 {
	return (s.X - x) * config.PointerPush * s.Influence(x, width)
}
