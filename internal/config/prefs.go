package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	appDir    = "ambient-garden"
	prefsFile = "prefs.json"

	SoundOn  = "on"
	SoundOff = "off"
)

// Prefs is the persisted user state: the theme choice, the sound consent and
// whether the intro gate was already answered.
type Prefs struct {
	Theme          string `json:"theme,omitempty"`
	Sound          string `json:"sound,omitempty"`
	IntroDismissed bool   `json:"intro_dismissed,omitempty"`
}

// Store reads and writes Prefs to a single JSON file. Reads never fail: a
// missing or corrupt file yields zero Prefs.
type Store struct {
	path string

	mu    sync.Mutex
	prefs Prefs
}

// DefaultPrefsPath returns the prefs file location under the user config dir.
func DefaultPrefsPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, appDir, prefsFile), nil
}

// OpenStore loads prefs from path. An empty path gives a memory-only store.
func OpenStore(path string) *Store {
	s := &Store{path: path}
	if path == "" {
		return s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return s
	}
	s.prefs = p
	return s
}

// Path returns the backing file, empty for memory-only stores.
func (s *Store) Path() string { return s.path }

func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs
}

// SetTheme records the theme choice and flushes it.
func (s *Store) SetTheme(theme string) error {
	return s.update(func(p *Prefs) { p.Theme = theme })
}

// SetSound records the sound consent as "on" or "off".
func (s *Store) SetSound(enabled bool) error {
	return s.update(func(p *Prefs) {
		if enabled {
			p.Sound = SoundOn
		} else {
			p.Sound = SoundOff
		}
	})
}

// DismissIntro marks the consent gate as answered.
func (s *Store) DismissIntro() error {
	return s.update(func(p *Prefs) { p.IntroDismissed = true })
}

func (s *Store) update(fn func(*Prefs)) error {
	s.mu.Lock()
	fn(&s.prefs)
	p := s.prefs
	s.mu.Unlock()

	if s.path == "" {
		return nil
	}
	return writePrefs(s.path, p)
}

func writePrefs(path string, p Prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// SystemTheme reports "dark" when the desktop advertises a dark color scheme
// and "light" otherwise.
func SystemTheme() string {
	return systemThemeFrom(os.Getenv)
}

func systemThemeFrom(getenv func(string) string) string {
	if strings.HasSuffix(strings.ToLower(getenv("GTK_THEME")), ":dark") {
		return "dark"
	}
	// COLORFGBG is "fg;bg"; a background index below 7 is a dark terminal scheme.
	if v := getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		switch parts[len(parts)-1] {
		case "0", "1", "2", "3", "4", "5", "6", "8":
			return "dark"
		}
	}
	return "light"
}
