package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/template"
)

// Rasterizer turns a filled template into a card-sized image
type Rasterizer interface {
	Rasterize(ctx context.Context, f *template.Filled) (image.Image, error)
}

// Strategy selects a Rasterizer implementation
type Strategy string

const (
	DirectDraw      Strategy = "direct-draw"
	DelegatedVector Strategy = "delegated-vector"
)

// ParseStrategy validates a strategy name
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case DirectDraw, DelegatedVector:
		return Strategy(s), nil
	case "":
		return DirectDraw, nil
	}
	return "", fmt.Errorf("unknown rasterization strategy %q (expected %s or %s)", s, DirectDraw, DelegatedVector)
}

// Style holds the colours shared by both strategies
type Style struct {
	TextColor color.NRGBA
	Fallback  color.NRGBA
	StampQR   bool
}

// DefaultStyle is white text over a half transparent black fallback
var DefaultStyle = Style{
	TextColor: color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	Fallback:  color.NRGBA{A: 128},
}

// Options configures New
type Options struct {
	Fonts *layout.FontSet
	Style Style

	// output size in pixels; zero keeps the template size
	Width  int
	Height int

	// delegated-vector only
	Command   []string
	DPI       int
	Timeout   time.Duration
	OutputDir string
}

// New builds the rasterizer for a strategy
func New(strategy Strategy, opts Options) (Rasterizer, error) {
	if opts.Fonts == nil {
		opts.Fonts = layout.DefaultFontSet()
	}

	switch strategy {
	case DirectDraw, "":
		return &Direct{Fonts: opts.Fonts, Style: opts.Style, Width: opts.Width, Height: opts.Height}, nil
	case DelegatedVector:
		if len(opts.Command) == 0 {
			return nil, fmt.Errorf("%s strategy needs a rasterizer command", DelegatedVector)
		}
		return &Vector{
			Fonts:     opts.Fonts,
			Style:     opts.Style,
			Width:     opts.Width,
			Height:    opts.Height,
			Command:   opts.Command,
			DPI:       opts.DPI,
			Timeout:   opts.Timeout,
			OutputDir: opts.OutputDir,
		}, nil
	}
	return nil, fmt.Errorf("unknown rasterization strategy %q", strategy)
}

// outputSize is the configured card size, or the template size when none is set
func outputSize(t *template.Template, width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return t.Width, t.Height
	}
	return width, height
}
