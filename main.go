package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/ambient-garden/internal/audio"
	"github.com/iburimskiy/ambient-garden/internal/backend"
	"github.com/iburimskiy/ambient-garden/internal/config"
	"github.com/iburimskiy/ambient-garden/internal/game"
	"github.com/iburimskiy/ambient-garden/internal/garden"
)

type flags struct {
	theme        string
	reduceMotion bool
	width        int
	height       int
	snapshot     string
	dpr          float64
	ambience     string
	pickAmbience bool
	noIntro      bool
	noSound      bool
	prefs        string
	verbose      bool
}

func parseFlags() flags {
	var f flags
	flag.StringVar(&f.theme, "theme", "", "light or dark (default: saved choice, then system scheme)")
	flag.BoolVar(&f.reduceMotion, "reduce-motion", false, "draw a single still frame instead of animating")
	flag.IntVar(&f.width, "width", config.WindowWidth, "window or snapshot width")
	flag.IntVar(&f.height, "height", config.WindowHeight, "window or snapshot height")
	flag.StringVar(&f.snapshot, "snapshot", "", "render one frame to this PNG file and exit")
	flag.Float64Var(&f.dpr, "dpr", 1, "device pixel ratio for -snapshot")
	flag.StringVar(&f.ambience, "ambience", "", "wav, mp3 or flac file to loop instead of noise")
	flag.BoolVar(&f.pickAmbience, "pick-ambience", false, "choose the ambience file in a dialog")
	flag.BoolVar(&f.noIntro, "no-intro", false, "skip the sound consent question")
	flag.BoolVar(&f.noSound, "no-sound", false, "disable audio entirely")
	flag.StringVar(&f.prefs, "prefs", "", "preferences file (default: user config dir)")
	flag.BoolVar(&f.verbose, "v", false, "debug logging")
	flag.Parse()
	return f
}

func main() {
	f := parseFlags()

	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store := openPrefs(f.prefs, logger)
	theme := resolveTheme(f.theme, store)

	if f.snapshot != "" {
		if err := snapshot(f, theme, logger); err != nil {
			logger.Error("snapshot failed", "err", err)
			os.Exit(1)
		}
		logger.Info("snapshot written", "path", f.snapshot)
		return
	}

	if err := run(f, theme, store, logger); err != nil {
		logger.Error("garden stopped", "err", err)
		os.Exit(1)
	}
}

func run(f flags, theme garden.Theme, store *config.Store, logger *slog.Logger) error {
	var engine *audio.Engine
	if !f.noSound {
		engine = newEngine(f, store, logger)
	}

	opts := game.Options{
		Theme:        theme,
		ReduceMotion: f.reduceMotion,
		Prefs:        store,
		Logger:       logger,
	}

	enableNow := false
	if engine != nil {
		opts.Sound = engine
		prefs := store.Get()
		switch {
		case !prefs.IntroDismissed && !f.noIntro:
			enableNow = askConsent(store, logger, askSoundQuestion)
		case prefs.Sound == config.SoundOn:
			opts.SoundOn = true
			opts.ArmSound = true
		}
	}

	g, err := game.New(opts)
	if err != nil {
		return err
	}
	defer g.Close()
	if enableNow {
		g.SetSound(true)
	}

	ebiten.SetWindowSize(f.width, f.height)
	ebiten.SetWindowTitle(config.WindowTitle)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func openPrefs(path string, logger *slog.Logger) *config.Store {
	if path == "" {
		p, err := config.DefaultPrefsPath()
		if err != nil {
			logger.Warn("preferences will not be saved", "err", err)
			return config.OpenStore("")
		}
		path = p
	}
	logger.Debug("preferences", "path", path)
	return config.OpenStore(path)
}

// resolveTheme picks the flag, then the saved choice, then the system scheme.
func resolveTheme(flagTheme string, store *config.Store) garden.Theme {
	if flagTheme != "" {
		return garden.ParseTheme(flagTheme)
	}
	if saved := store.Get().Theme; saved != "" {
		return garden.ParseTheme(saved)
	}
	return garden.ParseTheme(config.SystemTheme())
}

func newEngine(f flags, store *config.Store, logger *slog.Logger) *audio.Engine {
	opts := []audio.Option{
		audio.WithLogger(logger),
		audio.WithPreference(func(on bool) {
			if err := store.SetSound(on); err != nil {
				logger.Warn("saving sound preference failed", "err", err)
			}
		}),
	}

	path := f.ambience
	if f.pickAmbience {
		picked, err := pickAmbience()
		switch {
		case err == nil:
			path = picked
		case !errors.Is(err, zenity.ErrCanceled):
			logger.Warn("ambience dialog failed", "err", err)
		}
	}
	if path != "" {
		logger.Info("ambience", "file", path)
		opts = append(opts, audio.WithSource(audio.FileSource(path)))
	}
	return audio.NewEngine(opts...)
}

func pickAmbience() (string, error) {
	return zenity.SelectFile(
		zenity.Title("Choose Ambience"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
}

// askConsent shows the sound question once. Any outcome dismisses it for
// good, including no answer within the fail-safe, which leaves the garden
// muted.
func askConsent(store *config.Store, logger *slog.Logger, ask func(context.Context) error) bool {
	ctx, cancel := context.WithTimeout(context.Background(), config.IntroFailSafe)
	defer cancel()

	enable := consentAnswer(ask(ctx), store, logger)

	if err := store.DismissIntro(); err != nil {
		logger.Warn("saving intro state failed", "err", err)
	}
	return enable
}

func askSoundQuestion(ctx context.Context) error {
	return zenity.Question("Enable ambient sound?",
		zenity.Title(config.WindowTitle),
		zenity.OKLabel("Enable sound"),
		zenity.CancelLabel("Stay muted"),
		zenity.Context(ctx),
	)
}

// consentAnswer maps the question's result to the sound choice. An explicit
// "Stay muted" is stored; a timeout or a missing dialog only keeps it muted.
func consentAnswer(err error, store *config.Store, logger *slog.Logger) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, zenity.ErrCanceled):
		if serr := store.SetSound(false); serr != nil {
			logger.Warn("saving sound preference failed", "err", serr)
		}
	default:
		logger.Warn("sound question dismissed", "err", err)
	}
	return false
}

// snapshot renders a single still frame headlessly through gg.
func snapshot(f flags, theme garden.Theme, logger *slog.Logger) error {
	canvas := backend.NewImageCanvas()
	surface := &backend.StaticSurface{
		Canvas: canvas,
		Width:  float64(f.width),
		Height: float64(f.height),
		Ratio:  f.dpr,
	}

	ctrl, err := garden.Create(surface,
		garden.WithTheme(theme),
		garden.WithMotion(garden.NewMotionPreference(f.reduceMotion)),
		garden.WithClock(func() time.Duration { return 0 }),
		garden.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer ctrl.Destroy()

	return canvas.SavePNG(f.snapshot)
}
