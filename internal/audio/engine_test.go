package audio

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

const testRate = beep.SampleRate(8000)

type fakeDevice struct {
	mu sync.Mutex

	opens, suspends, resumes int
	openErr, resumeErr       error
	graph                    beep.Streamer
}

func (d *fakeDevice) Open(beep.SampleRate, int) error {
	d.opens++
	return d.openErr
}

func (d *fakeDevice) Play(s beep.Streamer) { d.graph = s }
func (d *fakeDevice) Lock()                { d.mu.Lock() }
func (d *fakeDevice) Unlock()              { d.mu.Unlock() }

func (d *fakeDevice) Suspend() error {
	d.suspends++
	return nil
}

func (d *fakeDevice) Resume() error {
	d.resumes++
	return d.resumeErr
}

// pull streams n samples through the played graph the way the speaker would.
func (d *fakeDevice) pull(n int) [][2]float64 {
	buf := make([][2]float64, n)
	d.Lock()
	d.graph.Stream(buf)
	d.Unlock()
	return buf
}

type fakeTimer struct {
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	timers []*fakeTimer
	delays []time.Duration
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{fn: fn}
	c.timers = append(c.timers, t)
	c.delays = append(c.delays, d)
	return t
}

// fire runs the most recent timer unless it was stopped.
func (c *fakeClock) fire() {
	t := c.timers[len(c.timers)-1]
	if !t.stopped {
		t.fn()
	}
}

func constSource(v float64) SourceFunc {
	return func(beep.Format) (beep.Streamer, error) {
		return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
			for i := range samples {
				samples[i] = [2]float64{v, v}
			}
			return len(samples), true
		}), nil
	}
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *fakeDevice, *fakeClock) {
	t.Helper()
	dev := &fakeDevice{}
	clock := &fakeClock{}
	base := []Option{
		WithDevice(dev),
		WithSource(constSource(1)),
		WithSampleRate(testRate),
		WithAfterFunc(clock.AfterFunc),
	}
	return NewEngine(append(base, opts...)...), dev, clock
}

func TestEngineBuildsOnce(t *testing.T) {
	var builds int
	src := constSource(1)
	e, dev, _ := newTestEngine(t, WithSource(func(f beep.Format) (beep.Streamer, error) {
		builds++
		return src(f)
	}))

	if got := e.State(); got != StateUninitialized {
		t.Fatalf("state before first call = %v", got)
	}
	if dev.opens != 0 || builds != 0 {
		t.Fatalf("graph built before first SetEnabled")
	}

	e.SetEnabled(true)
	e.SetEnabled(false)
	e.SetEnabled(true)

	if builds != 1 || dev.opens != 1 {
		t.Fatalf("builds=%d opens=%d, want 1 and 1", builds, dev.opens)
	}
}

func TestEngineRampUpReachesAudibleGain(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.SetEnabled(true)

	if got := e.State(); got != StateRampingUp {
		t.Fatalf("state = %v, want ramping-up", got)
	}

	dev.pull(testRate.N(config.RampUp) / 2)
	mid := e.Gain()
	if mid <= 0 || mid >= config.AudibleGain {
		t.Fatalf("mid-ramp gain = %v, want strictly between 0 and %v", mid, config.AudibleGain)
	}

	dev.pull(testRate.N(config.RampUp))
	if got := e.Gain(); got != config.AudibleGain {
		t.Fatalf("gain = %v, want %v", got, config.AudibleGain)
	}
	if got := e.State(); got != StateAudible {
		t.Fatalf("state = %v, want audible", got)
	}
}

func TestEngineDisableRampsFromCurrentValue(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.SetEnabled(true)
	dev.pull(testRate.N(config.RampUp) / 2)
	before := e.Gain()

	e.SetEnabled(false)
	out := dev.pull(1)
	if math.Abs(out[0][0]) > before {
		t.Fatalf("gain jumped: first sample %v above %v", out[0][0], before)
	}
	if e.State() != StateRampingDown {
		t.Fatalf("state = %v, want ramping-down", e.State())
	}

	dev.pull(testRate.N(config.RampDown))
	if got := e.Gain(); got != 0 {
		t.Fatalf("gain after ramp down = %v, want 0", got)
	}
}

func TestEngineSuspendsAfterDelay(t *testing.T) {
	e, dev, clock := newTestEngine(t)
	e.SetEnabled(true)
	e.SetEnabled(false)

	if len(clock.delays) != 1 || clock.delays[0] != config.SuspendDelay {
		t.Fatalf("suspend timers = %v, want one at %v", clock.delays, config.SuspendDelay)
	}
	if dev.suspends != 0 {
		t.Fatalf("suspended before the delay")
	}

	clock.fire()
	if dev.suspends != 1 {
		t.Fatalf("suspends = %d, want 1", dev.suspends)
	}
	if got := e.State(); got != StateSuspended {
		t.Fatalf("state = %v, want suspended", got)
	}
	if got := e.Level(); got != 0 {
		t.Fatalf("level after suspend = %v, want 0", got)
	}

	e.SetEnabled(true)
	if dev.resumes != 1 {
		t.Fatalf("resumes = %d, want 1", dev.resumes)
	}
	if got := e.State(); got != StateRampingUp {
		t.Fatalf("state after resume = %v, want ramping-up", got)
	}
}

func TestEngineReenableCancelsSuspend(t *testing.T) {
	e, dev, clock := newTestEngine(t)
	e.SetEnabled(true)
	e.SetEnabled(false)
	e.SetEnabled(true)

	clock.fire()
	if dev.suspends != 0 {
		t.Fatalf("suspended after re-enable")
	}

	// A stale callback that slipped past Stop still sees the enabled flag.
	clock.timers[0].fn()
	if dev.suspends != 0 {
		t.Fatalf("stale timer suspended an enabled engine")
	}
}

func TestEngineStaleSuspendKeepsLaterFade(t *testing.T) {
	e, dev, clock := newTestEngine(t)

	e.SetEnabled(true)
	dev.pull(testRate.N(config.RampUp))
	e.SetEnabled(false)
	first := clock.timers[0]

	e.SetEnabled(true)
	dev.pull(testRate.N(config.RampUp))
	e.SetEnabled(false)
	if len(clock.timers) != 2 {
		t.Fatalf("timers = %d, want 2", len(clock.timers))
	}

	// the first timer fired before it could be stopped
	first.fn()
	if dev.suspends != 0 {
		t.Fatalf("stale timer suspended during the second fade-out")
	}
	if got := e.State(); got != StateRampingDown {
		t.Fatalf("state = %v, want ramping-down", got)
	}
	if got := e.Gain(); got != config.AudibleGain {
		t.Fatalf("gain = %v, want the fade to start from %v", got, config.AudibleGain)
	}

	clock.fire()
	if dev.suspends != 1 {
		t.Fatalf("suspends = %d, want 1 from the latest disable", dev.suspends)
	}
	if got := e.State(); got != StateSuspended {
		t.Fatalf("state = %v, want suspended", got)
	}
}

func TestEngineUnsupportedDeviceStaysSilent(t *testing.T) {
	var prefs []bool
	dev := &fakeDevice{openErr: errors.New("no output")}
	clock := &fakeClock{}
	e := NewEngine(
		WithDevice(dev),
		WithSource(constSource(1)),
		WithSampleRate(testRate),
		WithAfterFunc(clock.AfterFunc),
		WithPreference(func(on bool) { prefs = append(prefs, on) }),
	)

	e.SetEnabled(true)
	e.SetEnabled(true)

	if dev.opens != 1 {
		t.Fatalf("opens = %d, want a single attempt", dev.opens)
	}
	if got := e.State(); got != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", got)
	}
	if !e.Enabled() {
		t.Fatalf("requested state not recorded")
	}
	if len(prefs) != 2 || !prefs[0] || !prefs[1] {
		t.Fatalf("preferences = %v, want [true true]", prefs)
	}
	if e.Gain() != 0 || e.Level() != 0 {
		t.Fatalf("silent engine reports output")
	}
	if len(clock.timers) != 0 {
		t.Fatalf("timers scheduled without a graph")
	}
}

func TestEngineResumeFailureIsRetried(t *testing.T) {
	e, dev, clock := newTestEngine(t)
	e.SetEnabled(true)
	e.SetEnabled(false)
	clock.fire()

	dev.resumeErr = errors.New("busy")
	e.SetEnabled(true)
	if got := e.State(); got != StateSuspended {
		t.Fatalf("state = %v, want suspended after failed resume", got)
	}

	dev.resumeErr = nil
	e.SetEnabled(true)
	if dev.resumes != 2 {
		t.Fatalf("resumes = %d, want 2", dev.resumes)
	}
	if got := e.State(); got == StateSuspended {
		t.Fatalf("still suspended after successful resume")
	}
}

func TestEngineSourceErrorStaysSilent(t *testing.T) {
	e, dev, _ := newTestEngine(t, WithSource(func(beep.Format) (beep.Streamer, error) {
		return nil, errors.New("bad file")
	}))
	e.SetEnabled(true)
	if dev.opens != 0 {
		t.Fatalf("device opened without a source")
	}
	if got := e.State(); got != StateUninitialized {
		t.Fatalf("state = %v, want uninitialized", got)
	}
}

func TestEngineLevelFollowsOutput(t *testing.T) {
	e, dev, _ := newTestEngine(t)
	e.SetEnabled(true)
	dev.pull(testRate.N(time.Second))

	level := e.Level()
	if math.Abs(level-config.AudibleGain) > 0.01 {
		t.Fatalf("level = %v, want about %v", level, config.AudibleGain)
	}
}

func TestLowPass(t *testing.T) {
	tests := []struct {
		name   string
		sample func(i int) float64
		check  func(t *testing.T, out float64)
	}{
		{
			name:   "dc passes",
			sample: func(int) float64 { return 1 },
			check: func(t *testing.T, out float64) {
				if math.Abs(out-1) > 1e-3 {
					t.Fatalf("dc output = %v, want 1", out)
				}
			},
		},
		{
			name: "nyquist is cut",
			sample: func(i int) float64 {
				if i%2 == 0 {
					return 1
				}
				return -1
			},
			check: func(t *testing.T, out float64) {
				if math.Abs(out) > 0.05 {
					t.Fatalf("nyquist output = %v, want near 0", out)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := 0
			src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
				for k := range samples {
					v := tt.sample(i)
					samples[k] = [2]float64{v, v}
					i++
				}
				return len(samples), true
			})
			f := newLowPass(src, testRate, config.FilterCutoffHz, config.FilterQ)
			buf := make([][2]float64, 4000)
			f.Stream(buf)
			tt.check(t, buf[len(buf)-1][0])
			if buf[len(buf)-1][0] != buf[len(buf)-1][1] {
				t.Fatalf("channels diverged")
			}
		})
	}
}

func TestLowPassClampsCutoff(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{1, 1}
		}
		return len(samples), true
	})
	f := newLowPass(src, beep.SampleRate(1000), 5000, config.FilterQ)
	buf := make([][2]float64, 2000)
	f.Stream(buf)
	for _, s := range buf {
		if math.IsNaN(s[0]) || math.IsInf(s[0], 0) {
			t.Fatalf("unstable filter output %v", s[0])
		}
	}
}

func TestNoiseBuffer(t *testing.T) {
	format := beep.Format{SampleRate: testRate, NumChannels: 2, Precision: 2}
	buf := NoiseBuffer(rand.New(rand.NewSource(1)), format, config.NoiseSeconds, config.NoiseAmplitude)

	if want := int(float64(testRate) * config.NoiseSeconds); buf.Len() != want {
		t.Fatalf("len = %d, want %d", buf.Len(), want)
	}

	samples := make([][2]float64, buf.Len())
	n, _ := buf.Streamer(0, buf.Len()).Stream(samples)
	var nonZero bool
	for _, s := range samples[:n] {
		if math.Abs(s[0]) > config.NoiseAmplitude+1e-3 {
			t.Fatalf("sample %v outside amplitude", s[0])
		}
		if math.Abs(s[0]-s[1]) > 1e-3 {
			t.Fatalf("channels differ: %v", s)
		}
		if s[0] != 0 {
			nonZero = true
		}
	}
	if !nonZero {
		t.Fatalf("noise buffer is silent")
	}
}

func TestTap(t *testing.T) {
	var next float64
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			next++
			samples[i] = [2]float64{next, next}
		}
		return len(samples), true
	})
	tap := NewTap(src, 8)

	tap.Stream(make([][2]float64, 5))
	snap := tap.snapshot(3)
	if snap[0][0] != 3 || snap[2][0] != 5 {
		t.Fatalf("snapshot = %v, want 3..5", snap)
	}

	tap.Stream(make([][2]float64, 6))
	snap = tap.snapshot(100)
	if len(snap) != 8 || snap[0][0] != 4 || snap[7][0] != 11 {
		t.Fatalf("wrapped snapshot = %v, want 4..11", snap)
	}

	tap.Reset()
	if got := tap.Level(8); got != 0 {
		t.Fatalf("level after reset = %v", got)
	}
}
