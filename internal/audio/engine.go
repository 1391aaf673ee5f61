package audio

import (
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/ambient-garden/internal/config"
)

// State is where the engine is in its enable/disable cycle.
type State int

const (
	StateUninitialized State = iota
	StateRampingUp
	StateAudible
	StateRampingDown
	StateSuspended
)

func (s State) String() string {
	switch s {
	case StateRampingUp:
		return "ramping-up"
	case StateAudible:
		return "audible"
	case StateRampingDown:
		return "ramping-down"
	case StateSuspended:
		return "suspended"
	default:
		return "uninitialized"
	}
}

// Timer is a pending callback from AfterFunc.
type Timer interface {
	Stop() bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithDevice replaces the beep speaker output.
func WithDevice(d Device) Option { return func(e *Engine) { e.device = d } }

// WithSource replaces the noise loop.
func WithSource(src SourceFunc) Option { return func(e *Engine) { e.source = src } }

func WithSampleRate(rate beep.SampleRate) Option {
	return func(e *Engine) { e.format.SampleRate = rate }
}

// WithAfterFunc replaces time.AfterFunc for the delayed suspend.
func WithAfterFunc(fn func(d time.Duration, f func()) Timer) Option {
	return func(e *Engine) { e.afterFunc = fn }
}

// WithPreference is called with every requested state, even when the
// device is unavailable, so the choice can be persisted.
func WithPreference(fn func(enabled bool)) Option { return func(e *Engine) { e.onPreference = fn } }

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Engine plays one looped ambient source through a low-pass filter and a
// ramped gain. The graph is built on the first SetEnabled and then lives as
// long as the engine; enabling and disabling only move the gain and
// suspend or resume the device.
type Engine struct {
	mu sync.Mutex

	device       Device
	source       SourceFunc
	format       beep.Format
	afterFunc    func(d time.Duration, f func()) Timer
	onPreference func(bool)
	logger       *slog.Logger

	gain *gainNode
	tap  *Tap

	built     bool
	failed    bool
	suspended bool
	enabled   bool
	pending   Timer
	// gen counts SetEnabled calls; a suspend timer only acts for its own call
	gen uint64
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		device: &SpeakerDevice{},
		format: beep.Format{SampleRate: config.SampleRate, NumChannels: 2, Precision: 2},
		afterFunc: func(d time.Duration, f func()) Timer {
			return time.AfterFunc(d, f)
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.source == nil {
		e.source = NoiseSource(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	return e
}

// SetEnabled fades the ambience in or out. It returns once the ramp is
// scheduled; sound may start later, when the device catches up. Failures
// are logged, never returned: an unsupported device leaves the engine
// silent for good, a failed resume is retried on the next enable.
func (e *Engine) SetEnabled(next bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.enabled = next
	e.gen++
	if e.onPreference != nil {
		e.onPreference(next)
	}

	e.build()
	if !e.built {
		return
	}

	rate := e.format.SampleRate
	if next {
		if e.pending != nil {
			e.pending.Stop()
			e.pending = nil
		}
		if e.suspended {
			if err := e.device.Resume(); err != nil {
				e.logger.Warn("audio resume failed", "err", err)
			} else {
				e.suspended = false
			}
		}
		e.device.Lock()
		e.gain.rampTo(config.AudibleGain, rate.N(config.RampUp))
		e.device.Unlock()
		e.logger.Debug("audio enabled", "state", e.stateLocked())
		return
	}

	e.device.Lock()
	e.gain.rampTo(0, rate.N(config.RampDown))
	e.device.Unlock()

	if e.pending != nil {
		e.pending.Stop()
	}
	gen := e.gen
	e.pending = e.afterFunc(config.SuspendDelay, func() { e.suspendIfIdle(gen) })
	e.logger.Debug("audio disabled", "state", e.stateLocked())
}

// suspendIfIdle releases the device if no SetEnabled call came after the
// disable that scheduled it.
func (e *Engine) suspendIfIdle(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.gen {
		return
	}
	e.pending = nil
	if e.enabled || e.suspended || !e.built {
		return
	}
	if err := e.device.Suspend(); err != nil {
		e.logger.Warn("audio suspend failed", "err", err)
		return
	}
	e.suspended = true
	e.tap.Reset()
	e.logger.Debug("audio suspended")
}

func (e *Engine) build() {
	if e.built || e.failed {
		return
	}
	if e.device == nil {
		e.fail(errors.New("no audio device"))
		return
	}

	src, err := e.source(e.format)
	if err != nil {
		e.fail(err)
		return
	}

	rate := e.format.SampleRate
	e.gain = &gainNode{Streamer: newLowPass(src, rate, config.FilterCutoffHz, config.FilterQ)}
	e.tap = NewTap(e.gain, config.VisualRingSize)

	if err := e.device.Open(rate, rate.N(config.SpeakerBuffer)); err != nil {
		e.fail(err)
		return
	}
	e.device.Play(e.tap)
	e.built = true
	e.logger.Info("audio graph ready", "sample_rate", int(rate))
}

func (e *Engine) fail(err error) {
	e.failed = true
	e.gain = nil
	e.tap = nil
	e.logger.Warn("audio unavailable, staying silent", "err", err)
}

// Enabled is the last requested state.
func (e *Engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stateLocked()
}

func (e *Engine) stateLocked() State {
	switch {
	case !e.built:
		return StateUninitialized
	case e.suspended:
		return StateSuspended
	case e.enabled:
		e.device.Lock()
		ramping := e.gain.ramping()
		e.device.Unlock()
		if ramping {
			return StateRampingUp
		}
		return StateAudible
	default:
		return StateRampingDown
	}
}

// Gain is the current gain value, 0 before the graph exists.
func (e *Engine) Gain() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.built {
		return 0
	}
	e.device.Lock()
	defer e.device.Unlock()
	return e.gain.value
}

// Level is the RMS of recent output, 0 before the graph exists.
func (e *Engine) Level() float64 {
	e.mu.Lock()
	tap := e.tap
	e.mu.Unlock()
	if tap == nil {
		return 0
	}
	return tap.Level(config.VisualRingSize / 4)
}
