package garden

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

var (
	// ErrInvalidSurface is returned by Create for a nil surface.
	ErrInvalidSurface = errors.New("garden: invalid surface")
	// ErrNoContext is returned by Create when the surface has no 2D canvas.
	ErrNoContext = errors.New("garden: 2d context unavailable")
)

// Option configures a Controller.
type Option func(*options)

type options struct {
	theme      Theme
	sched      FrameScheduler
	clock      func() time.Duration
	rng        *rand.Rand
	motion     MotionQuery
	logger     *slog.Logger
	autoResume bool
}

func defaultOptions() options {
	start := time.Now()
	return options{
		theme:  ThemeLight,
		clock:  func() time.Duration { return time.Since(start) },
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func WithTheme(t Theme) Option { return func(o *options) { o.theme = t } }

// WithScheduler sets the frame source. Without one the controller makes
// its own FrameQueue, reachable through Frames.
func WithScheduler(s FrameScheduler) Option { return func(o *options) { o.sched = s } }

// WithClock sets the monotonic time used for synchronous redraws.
func WithClock(now func() time.Duration) Option { return func(o *options) { o.clock = now } }

func WithRand(rng *rand.Rand) Option { return func(o *options) { o.rng = rng } }

// WithMotion wires the reduced-motion preference. Without it motion is on.
func WithMotion(m MotionQuery) Option { return func(o *options) { o.motion = m } }

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithAutoResume restarts the animation when reduced motion is switched off.
func WithAutoResume() Option { return func(o *options) { o.autoResume = true } }

// Controller owns one animated garden on one surface.
type Controller struct {
	surface Surface
	canvas  Canvas
	opts    options
	loop    *Loop
	queue   *FrameQueue

	scene        *Scene
	pointer      PointerField
	theme        Theme
	palette      Palette
	reduceMotion bool

	subs      []Subscription
	destroyed bool
}

// Create wires a garden onto surface: it sizes the canvas, paints the first
// frame and starts animating unless reduced motion is preferred.
func Create(surface Surface, opts ...Option) (*Controller, error) {
	if surface == nil {
		return nil, ErrInvalidSurface
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	canvas, err := surface.Context2D()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoContext, err)
	}
	if canvas == nil {
		return nil, ErrNoContext
	}

	c := &Controller{
		surface: surface,
		canvas:  canvas,
		opts:    o,
		theme:   o.theme,
	}
	if o.sched == nil {
		c.queue = &FrameQueue{}
		o.sched = c.queue
	}
	c.loop = NewLoop(o.sched, c.draw)
	if o.motion != nil {
		c.reduceMotion = o.motion.ReducedMotion()
		c.subs = append(c.subs, o.motion.OnChange(c.setReduceMotion))
	}

	c.subs = append(c.subs,
		surface.OnResize(c.resize),
		surface.OnPointerMove(c.pointerMove),
		surface.OnPointerLeave(c.pointerLeave),
	)

	c.resize()
	if !c.reduceMotion {
		c.loop.Start()
	}

	o.logger.Debug("garden created", "theme", c.theme, "reduce_motion", c.reduceMotion)
	return c, nil
}

// Frames returns the internal frame queue, or nil when a scheduler was
// supplied with WithScheduler.
func (c *Controller) Frames() *FrameQueue { return c.queue }

func (c *Controller) Scene() *Scene { return c.scene }

func (c *Controller) Theme() Theme { return c.theme }

func (c *Controller) Palette() Palette { return c.palette }

func (c *Controller) Pointer() PointerState { return c.pointer.State() }

func (c *Controller) ReduceMotion() bool { return c.reduceMotion }

func (c *Controller) Animating() bool { return c.loop.Running() }

// SetTheme swaps the gradient and tones and repaints. Blade geometry is kept.
func (c *Controller) SetTheme(t Theme) {
	if c.destroyed {
		return
	}
	c.theme = t
	c.palette = PaletteFor(t)
	c.draw(c.opts.clock())
}

// Destroy stops the animation and drops every listener. Safe to call twice.
func (c *Controller) Destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.loop.Stop()
	for _, s := range c.subs {
		s.Unsubscribe()
	}
	c.subs = nil
	c.opts.logger.Debug("garden destroyed")
}

func (c *Controller) resize() {
	if c.destroyed {
		return
	}

	w, h := c.surface.Rect()
	width := floorMin1(w)
	height := floorMin1(h)
	dpr := ClampDPR(c.surface.DevicePixelRatio())

	c.canvas.Resize(width, height, dpr)
	c.scene = NewScene(c.opts.rng, width, height, dpr)
	c.palette = PaletteFor(c.theme)

	c.opts.logger.Debug("garden resized",
		"width", width, "height", height, "dpr", dpr, "blades", len(c.scene.Blades))

	c.draw(c.opts.clock())
}

func (c *Controller) draw(now time.Duration) {
	if c.destroyed {
		return
	}
	Draw(Frame{
		Canvas:       c.canvas,
		Scene:        c.scene,
		Pointer:      c.pointer.State(),
		Palette:      c.palette,
		ReduceMotion: c.reduceMotion,
		Now:          now,
	})
}

func (c *Controller) setReduceMotion(reduced bool) {
	if c.destroyed {
		return
	}
	c.reduceMotion = reduced
	if reduced {
		c.loop.Stop()
	} else if c.opts.autoResume {
		c.loop.Start()
	}
	c.draw(c.opts.clock())
}

func (c *Controller) pointerMove(x, y float64) {
	if c.destroyed {
		return
	}
	c.pointer.Move(x, y)
}

func (c *Controller) pointerLeave() {
	if c.destroyed {
		return
	}
	c.pointer.Leave()
}

func floorMin1(v float64) int {
	if math.IsNaN(v) {
		return 1
	}
	return max(int(math.Floor(v)), 1)
}
