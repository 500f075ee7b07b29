package ui

import (
	"embed"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/tara-vision/nexus/internal/logger"
	"gopkg.in/yaml.v3"
)

// DefaultTheme is applied at startup unless configured otherwise.
const DefaultTheme = "nexus"

//go:embed themes/*.yaml
var themeFiles embed.FS

// Palette holds a theme's colors as hex strings. Empty means no color.
type Palette struct {
	Primary string `yaml:"primary"`
	Success string `yaml:"success"`
	Error   string `yaml:"error"`
	Warning string `yaml:"warning"`
	Muted   string `yaml:"muted"`
	Info    string `yaml:"info"`
}

// Theme is a named palette plus the glamour style used for replies.
type Theme struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Markdown    string  `yaml:"markdown"`
	Colors      Palette `yaml:"colors"`
}

var (
	themesOnce sync.Once
	themes     map[string]*Theme
	current    = DefaultTheme
	themeMu    sync.Mutex
)

func init() {
	if err := ApplyTheme(DefaultTheme); err != nil {
		applyPalette(Palette{})
		SetMarkdownStyle("auto")
	}
}

func loadThemes() map[string]*Theme {
	themesOnce.Do(func() {
		themes = make(map[string]*Theme)
		entries, err := themeFiles.ReadDir("themes")
		if err != nil {
			logger.Error("read embedded themes", "error", err)
			return
		}
		for _, e := range entries {
			data, err := themeFiles.ReadFile(path.Join("themes", e.Name()))
			if err != nil {
				logger.Error("read theme", "file", e.Name(), "error", err)
				continue
			}
			theme, err := ParseTheme(data)
			if err != nil {
				logger.Error("parse theme", "file", e.Name(), "error", err)
				continue
			}
			themes[theme.Name] = theme
		}
	})
	return themes
}

// ParseTheme decodes a YAML theme definition.
func ParseTheme(data []byte) (*Theme, error) {
	var t Theme
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse theme: %w", err)
	}
	t.Name = strings.ToLower(strings.TrimSpace(t.Name))
	if t.Name == "" {
		return nil, fmt.Errorf("theme has no name")
	}
	if t.Markdown == "" {
		t.Markdown = "auto"
	}
	return &t, nil
}

// ThemeNames lists the available themes in sorted order.
func ThemeNames() []string {
	all := loadThemes()
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (*Theme, bool) {
	t, ok := loadThemes()[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// ApplyTheme switches styles and markdown rendering to the named theme.
func ApplyTheme(name string) error {
	t, ok := LookupTheme(name)
	if !ok {
		return fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(ThemeNames(), ", "))
	}

	themeMu.Lock()
	defer themeMu.Unlock()
	applyPalette(t.Colors)
	SetMarkdownStyle(t.Markdown)
	current = t.Name
	logger.Debug("theme applied", "theme", t.Name)
	return nil
}

// CurrentTheme returns the name of the active theme.
func CurrentTheme() string {
	themeMu.Lock()
	defer themeMu.Unlock()
	return current
}
