package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/render"
)

// Config represents the application configuration
type Config struct {
	CardWidth     int    `toml:"card_width"`
	CardHeight    int    `toml:"card_height"`
	BackgroundDir string `toml:"background_dir"`
	OutputDir     string `toml:"output_dir"`
	Strategy      string `toml:"strategy"`
	KeepSVG       bool   `toml:"keep_svg"`

	Fonts      FontConfig                `toml:"fonts"`
	Style      StyleConfig               `toml:"style"`
	Rasterizer RasterizerConfig          `toml:"rasterizer"`
	Categories map[string]CategoryConfig `toml:"categories"`
}

type FontConfig struct {
	Title string `toml:"title"`
	Text  string `toml:"text"`
}

type StyleConfig struct {
	TextColor     string `toml:"text_color"`
	FallbackColor string `toml:"fallback_color"`
	StampQR       bool   `toml:"stamp_qr"`
}

type RasterizerConfig struct {
	Command []string `toml:"command"`
	DPI     int      `toml:"dpi"`
	Timeout string   `toml:"timeout"`
}

type CategoryConfig struct {
	Data     string `toml:"data"`
	Template string `toml:"template"`
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		CardWidth:     600,
		CardHeight:    800,
		BackgroundDir: filepath.Join("data", "backgrounds"),
		OutputDir:     "stock",
		Strategy:      string(render.DirectDraw),
		Fonts: FontConfig{
			Title: "Cinzel-Bold.ttf",
			Text:  "Cinzel-Regular.ttf",
		},
		Style: StyleConfig{
			TextColor:     "#ffffff",
			FallbackColor: "#00000080",
		},
		Rasterizer: RasterizerConfig{
			Command: append([]string(nil), render.DefaultCommand...),
			DPI:     render.DefaultDPI,
			Timeout: render.DefaultTimeout.String(),
		},
		Categories: map[string]CategoryConfig{
			string(card.Bonus):     {Data: filepath.Join("stock", "bonus.json")},
			string(card.Character): {Data: filepath.Join("stock", "personnages.json")},
		},
	}
}

// GetXDGConfigHome returns XDG_CONFIG_HOME or default path
func GetXDGConfigHome() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return xdgConfig
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".config")
}

// GetConfigFilePath returns the path to the config file
func GetConfigFilePath() string {
	return filepath.Join(GetXDGConfigHome(), "cardpress", "config.toml")
}

// Load loads the config file at path, or the XDG config file when path is empty.
// A missing file yields the defaults. Keys absent from the file keep their default value
// and category tables may use aliases such as [categories.personnage].
func Load(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	config := Default()
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config, nil
	}

	defaults := config.Categories
	config.Categories = nil
	if _, err := toml.DecodeFile(path, config); err != nil {
		return nil, fmt.Errorf("error decoding config file: %v", err)
	}
	categories, err := mergeCategories(defaults, config.Categories)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	config.Categories = categories

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// mergeCategories keys the file's category tables by canonical name over the defaults
func mergeCategories(defaults, file map[string]CategoryConfig) (map[string]CategoryConfig, error) {
	out := make(map[string]CategoryConfig, len(defaults))
	for name, cc := range defaults {
		out[name] = cc
	}
	for name, cc := range file {
		cat, err := card.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("categories.%s: %w", name, err)
		}
		merged := out[string(cat)]
		if cc.Data != "" {
			merged.Data = cc.Data
		}
		if cc.Template != "" {
			merged.Template = cc.Template
		}
		out[string(cat)] = merged
	}
	return out, nil
}

// CreateDefault writes the default config to path, creating its directory
func CreateDefault(path string) (*Config, error) {
	if path == "" {
		path = GetConfigFilePath()
	}

	// Ensure the config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %v", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("error creating config file: %v", err)
	}
	defer file.Close()

	config := Default()
	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(config); err != nil {
		return nil, fmt.Errorf("error encoding config: %v", err)
	}

	return config, nil
}

// Validate checks values that cannot be caught by decoding
func (c *Config) Validate() error {
	if c.CardWidth <= 0 || c.CardHeight <= 0 {
		return fmt.Errorf("card size must be positive, got %dx%d", c.CardWidth, c.CardHeight)
	}
	if _, err := render.ParseStrategy(c.Strategy); err != nil {
		return err
	}
	if _, err := ParseColor(c.Style.TextColor); err != nil {
		return fmt.Errorf("style.text_color: %w", err)
	}
	if _, err := ParseColor(c.Style.FallbackColor); err != nil {
		return fmt.Errorf("style.fallback_color: %w", err)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	for name := range c.Categories {
		if !card.Category(name).Valid() {
			return fmt.Errorf("categories.%s: unknown card category", name)
		}
	}
	return nil
}

// Timeout returns the external rasterizer timeout
func (c *Config) Timeout() (time.Duration, error) {
	if c.Rasterizer.Timeout == "" {
		return render.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Rasterizer.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("rasterizer.timeout: invalid duration %q", c.Rasterizer.Timeout)
	}
	return d, nil
}

// Category returns the settings of a category
func (c *Config) Category(cat card.Category) CategoryConfig {
	return c.Categories[string(cat)]
}

// FontPaths returns the configured font file per role
func (c *Config) FontPaths() map[layout.Role]string {
	return map[layout.Role]string{
		layout.RoleTitle: c.Fonts.Title,
		layout.RoleText:  c.Fonts.Text,
	}
}

// RenderStyle converts the style section
func (c *Config) RenderStyle() (render.Style, error) {
	text, err := ParseColor(c.Style.TextColor)
	if err != nil {
		return render.Style{}, err
	}
	fallback, err := ParseColor(c.Style.FallbackColor)
	if err != nil {
		return render.Style{}, err
	}
	return render.Style{TextColor: text, Fallback: fallback, StampQR: c.Style.StampQR}, nil
}

// RenderOptions builds rasterizer options from the config
func (c *Config) RenderOptions(fonts *layout.FontSet) (render.Options, error) {
	style, err := c.RenderStyle()
	if err != nil {
		return render.Options{}, err
	}
	timeout, err := c.Timeout()
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Fonts:     fonts,
		Style:     style,
		Width:     c.CardWidth,
		Height:    c.CardHeight,
		Command:   c.Rasterizer.Command,
		DPI:       c.Rasterizer.DPI,
		Timeout:   timeout,
		OutputDir: c.OutputDir,
	}, nil
}

// ParseColor parses "#rrggbb" or "#rrggbbaa"
func ParseColor(s string) (color.NRGBA, error) {
	s = strings.TrimSpace(s)
	alpha := uint8(255)
	if len(s) == 9 && s[0] == '#' {
		a, err := strconv.ParseUint(s[7:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
		}
		alpha = uint8(a)
		s = s[:7]
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}
