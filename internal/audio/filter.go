package audio

import (
	"math"

	"github.com/faiface/beep"
)

// lowPass is a second-order low-pass biquad. Q follows the Web Audio
// convention and is given in dB.
type lowPass struct {
	Streamer beep.Streamer

	b0, b1, b2, a1, a2 float64
	x1, x2, y1, y2     [2]float64
}

func newLowPass(s beep.Streamer, rate beep.SampleRate, cutoff, qdB float64) *lowPass {
	fs := float64(rate)
	cutoff = math.Min(cutoff, fs*0.49)

	w0 := 2 * math.Pi * cutoff / fs
	cos := math.Cos(w0)
	alpha := math.Sin(w0) / 2 * math.Pow(10, -qdB/20)

	a0 := 1 + alpha
	return &lowPass{
		Streamer: s,
		b0:       (1 - cos) / 2 / a0,
		b1:       (1 - cos) / a0,
		b2:       (1 - cos) / 2 / a0,
		a1:       -2 * cos / a0,
		a2:       (1 - alpha) / a0,
	}
}

func (f *lowPass) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.Streamer.Stream(samples)
	for i := 0; i < n; i++ {
		for ch := 0; ch < 2; ch++ {
			x := samples[i][ch]
			y := f.b0*x + f.b1*f.x1[ch] + f.b2*f.x2[ch] - f.a1*f.y1[ch] - f.a2*f.y2[ch]
			f.x2[ch], f.x1[ch] = f.x1[ch], x
			f.y2[ch], f.y1[ch] = f.y1[ch], y
			samples[i][ch] = y
		}
	}
	return n, ok
}

func (f *lowPass) Err() error { return f.Streamer.Err() }
