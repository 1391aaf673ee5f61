package game

import (
	"io"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/ambient-garden/internal/backend"
	"github.com/iburimskiy/ambient-garden/internal/config"
	"github.com/iburimskiy/ambient-garden/internal/garden"
)

const statusDuration = 2 * time.Second

// Sound is the ambient audio the window controls.
type Sound interface {
	SetEnabled(next bool)
	Level() float64
}

// Options configures a Game.
type Options struct {
	Theme        garden.Theme
	ReduceMotion bool

	// Sound is nil when audio is disabled entirely.
	Sound Sound
	// SoundOn is the initial requested sound state.
	SoundOn bool
	// ArmSound starts the sound on the first key, click or touch.
	ArmSound bool

	Prefs  *config.Store
	Logger *slog.Logger

	// Canvas replaces the ebiten canvas; used by tests.
	Canvas garden.Canvas
	// DeviceScale replaces the monitor scale lookup; used by tests.
	DeviceScale func() float64
}

// Game hosts one garden in the ebiten window with the sound indicator on top.
type Game struct {
	canvas  garden.Canvas
	surface *windowSurface
	garden  *garden.Controller
	motion  *garden.MotionPreference
	prefs   *config.Store
	logger  *slog.Logger

	start       time.Time
	deviceScale func() float64

	// audio
	sound     Sound
	soundOn   bool
	armed     bool
	soundReqs chan bool
	soundDone sync.WaitGroup
	level     float64

	// indicator state
	indicatorHovered bool
	indicatorPressed bool

	status      string
	statusUntil time.Duration
}

func New(opts Options) (*Game, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	canvas := opts.Canvas
	if canvas == nil {
		canvas = backend.NewEbitenCanvas()
	}
	deviceScale := opts.DeviceScale
	if deviceScale == nil {
		deviceScale = monitorScale
	}

	g := &Game{
		canvas:      canvas,
		surface:     newWindowSurface(canvas, config.WindowWidth, config.WindowHeight),
		motion:      garden.NewMotionPreference(opts.ReduceMotion),
		prefs:       opts.Prefs,
		logger:      logger,
		start:       time.Now(),
		deviceScale: deviceScale,
		sound:       opts.Sound,
		soundOn:     opts.SoundOn,
		armed:       opts.ArmSound && opts.Sound != nil,
	}

	ctrl, err := garden.Create(g.surface,
		garden.WithTheme(opts.Theme),
		garden.WithMotion(g.motion),
		garden.WithClock(g.now),
		garden.WithLogger(logger),
		garden.WithAutoResume(),
	)
	if err != nil {
		return nil, err
	}
	g.garden = ctrl

	if g.sound != nil {
		g.soundReqs = make(chan bool, 16)
		g.soundDone.Add(1)
		go g.runSound()
	}
	return g, nil
}

// runSound applies sound requests in order, off the game goroutine, since
// opening the output device can block.
func (g *Game) runSound() {
	defer g.soundDone.Done()
	for next := range g.soundReqs {
		g.sound.SetEnabled(next)
	}
}

// SetSound requests the sound on or off.
func (g *Game) SetSound(next bool) {
	if g.soundReqs == nil {
		return
	}
	g.armed = false
	g.soundOn = next
	g.soundReqs <- next
}

// SoundOn is the last requested sound state.
func (g *Game) SoundOn() bool { return g.soundOn }

func (g *Game) Garden() *garden.Controller { return g.garden }

// Close tears down the garden and waits for pending sound requests.
func (g *Game) Close() {
	g.garden.Destroy()
	if g.soundReqs != nil {
		close(g.soundReqs)
		g.soundReqs = nil
		g.soundDone.Wait()
	}
}

func (g *Game) now() time.Duration { return time.Since(g.start) }

func (g *Game) Update() error {
	in := readInput(g.surface.ratio, g.indicatorHit)
	if err := g.apply(in); err != nil {
		return err
	}
	g.updateLevel()
	return nil
}

// apply turns one tick of input into garden and sound changes.
func (g *Game) apply(in input) error {
	if in.quit {
		return ebiten.Termination
	}

	switch {
	case in.pointer && in.focused:
		g.surface.pointerAt(in.x, in.y)
	default:
		g.surface.pointerGone()
	}

	g.indicatorHovered = g.sound != nil && in.overIndicator
	if g.indicatorHovered && in.pressed {
		g.indicatorPressed = true
	}
	clicked := false
	if in.released {
		clicked = g.indicatorPressed && g.indicatorHovered
		g.indicatorPressed = false
	}

	switch {
	case in.toggleSound || clicked:
		g.SetSound(!g.soundOn)
		g.flash(soundStatus(g.soundOn))
	case in.gesture && g.armed && !(in.pressed && g.indicatorHovered):
		// a press on the indicator is settled by its click on release
		g.SetSound(true)
	}

	if in.toggleTheme {
		next := g.garden.Theme().Toggle()
		g.garden.SetTheme(next)
		if g.prefs != nil {
			if err := g.prefs.SetTheme(next.String()); err != nil {
				g.logger.Warn("saving theme failed", "err", err)
			}
		}
		g.flash(next.String() + " theme")
	}

	if in.toggleMotion {
		reduced := !g.motion.ReducedMotion()
		g.motion.Set(reduced)
		if reduced {
			g.flash("motion reduced")
		} else {
			g.flash("motion on")
		}
	}
	return nil
}

func soundStatus(on bool) string {
	if on {
		return "sound on"
	}
	return "sound off"
}

func (g *Game) flash(msg string) {
	g.status = msg
	g.statusUntil = g.now() + statusDuration
}

// updateLevel smooths the tap level for the indicator meter.
func (g *Game) updateLevel() {
	if g.sound == nil {
		return
	}
	mag := math.Pow(g.sound.Level(), 0.3)
	g.level = config.SmoothingFactor*g.level + (1-config.SmoothingFactor)*mag
}

func (g *Game) Draw(screen *ebiten.Image) {
	now := g.now()
	g.garden.Frames().Flush(now)

	palette := g.garden.Palette()
	screen.Fill(palette.Backdrop)
	if img, ok := g.canvas.(interface{ Image() *ebiten.Image }); ok && img.Image() != nil {
		screen.DrawImage(img.Image(), nil)
	}

	scale := float32(g.surface.ratio)
	if g.sound != nil {
		g.drawIndicator(screen, palette, scale)
	}
	if g.status != "" && now < g.statusUntil {
		ebitenutil.DebugPrintAt(screen, g.status, int(config.IndicatorMargin*scale), int(config.IndicatorMargin*scale))
	}
}

// drawIndicator paints the sound toggle in the top-right corner: a disc
// with a ring that follows the ambience level, or a slash when muted.
func (g *Game) drawIndicator(screen *ebiten.Image, p garden.Palette, scale float32) {
	cx, cy, r := g.indicatorCircle()
	x, y, rad := float32(cx)*scale, float32(cy)*scale, float32(r)*scale

	fg := p.StrokeThick
	fg.A = 255
	bg := p.Mote
	if g.indicatorPressed {
		bg.A = uint8(min(255, int(bg.A)*3))
	} else if g.indicatorHovered {
		bg.A = uint8(min(255, int(bg.A)*2))
	}

	vector.DrawFilledCircle(screen, x, y, rad, bg, true)
	vector.StrokeCircle(screen, x, y, rad, scale, fg, true)

	if !g.soundOn {
		d := rad * 0.5
		vector.StrokeLine(screen, x-d, y+d, x+d, y-d, 2*scale, fg, true)
		return
	}

	inner := rad * float32(0.25+0.6*clamp01(g.level))
	vector.DrawFilledCircle(screen, x, y, inner, withAlpha(fg, 0.6), true)
}

// indicatorCircle is the indicator's center and radius in logical pixels.
func (g *Game) indicatorCircle() (cx, cy, r float64) {
	r = config.IndicatorSize / 2
	cx = g.surface.width - config.IndicatorMargin - r
	cy = config.IndicatorMargin + r
	return cx, cy, r
}

func (g *Game) indicatorHit(x, y float64) bool {
	cx, cy, r := g.indicatorCircle()
	return math.Hypot(x-cx, y-cy) <= r
}

// Layout sizes the screen to the backing buffer so the garden is drawn at
// native resolution on high-density displays.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.layout(outsideWidth, outsideHeight, g.deviceScale())
}

func (g *Game) layout(outsideWidth, outsideHeight int, scale float64) (int, int) {
	dpr := garden.ClampDPR(scale)
	if g.surface.setLayout(float64(outsideWidth), float64(outsideHeight), dpr) {
		g.logger.Debug("window resized", "width", outsideWidth, "height", outsideHeight, "dpr", dpr)
	}
	return garden.BackingSize(outsideWidth, outsideHeight, dpr)
}

func monitorScale() float64 {
	if m := ebiten.Monitor(); m != nil {
		return m.DeviceScaleFactor()
	}
	return 1
}

// input is one tick of window input in logical pixels.
type input struct {
	x, y          float64
	pointer       bool
	focused       bool
	overIndicator bool
	pressed       bool
	released      bool
	gesture       bool

	toggleTheme  bool
	toggleSound  bool
	toggleMotion bool
	quit         bool
}

func readInput(scale float64, overIndicator func(x, y float64) bool) input {
	in := input{focused: ebiten.IsFocused()}

	w, h := ebiten.WindowSize()
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx)/scale, float64(cy)/scale
	in.pointer = x >= 0 && y >= 0 && x < float64(w) && y < float64(h)

	touches := ebiten.AppendTouchIDs(nil)
	if len(touches) > 0 {
		tx, ty := ebiten.TouchPosition(touches[0])
		x, y = float64(tx)/scale, float64(ty)/scale
		in.pointer = true
	}
	in.x, in.y = x, y
	in.overIndicator = in.pointer && overIndicator(x, y)

	in.pressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	in.released = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	in.gesture = in.pressed ||
		len(inpututil.AppendJustPressedKeys(nil)) > 0 ||
		len(inpututil.AppendJustPressedTouchIDs(nil)) > 0

	in.toggleTheme = inpututil.IsKeyJustPressed(ebiten.KeyT)
	in.toggleSound = inpututil.IsKeyJustPressed(ebiten.KeyS)
	in.toggleMotion = inpututil.IsKeyJustPressed(ebiten.KeyM)
	in.quit = inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ)
	return in
}
