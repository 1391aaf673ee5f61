package audio

import "github.com/faiface/beep"

// gainNode scales its input by a value that only moves along linear ramps.
// Callers must hold the device lock while touching it.
type gainNode struct {
	Streamer beep.Streamer

	value     float64
	target    float64
	step      float64
	remaining int
}

// rampTo starts a linear ramp from the current value to target over the
// given number of samples, replacing any ramp in progress.
func (g *gainNode) rampTo(target float64, samples int) {
	g.target = target
	if samples <= 0 {
		g.value = target
		g.remaining = 0
		return
	}
	g.step = (target - g.value) / float64(samples)
	g.remaining = samples
}

func (g *gainNode) ramping() bool {
	return g.remaining > 0
}

func (g *gainNode) Stream(samples [][2]float64) (int, bool) {
	n, ok := g.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if g.remaining > 0 {
			g.value += g.step
			g.remaining--
			if g.remaining == 0 {
				g.value = g.target
			}
		}
		samples[i][0] *= g.value
		samples[i][1] *= g.value
	}
	return n, ok
}

func (g *gainNode) Err() error { return g.Streamer.Err() }
