package render

import (
	"context"
	"fmt"
	"image"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/template"
)

const (
	stampSize   = 96
	stampMargin = 16
)

// Direct draws cards straight onto a pixel canvas
type Direct struct {
	Fonts *layout.FontSet
	Style Style

	// output size; zero keeps the template size
	Width  int
	Height int
}

// Rasterize draws the background, then every text slot in document order
func (d *Direct) Rasterize(ctx context.Context, f *template.Filled) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t := f.Template
	canvas := imaging.New(t.Width, t.Height, d.Style.Fallback)

	if f.Background != "" {
		if err := drawBackground(canvas, f.Background, t.Background()); err != nil {
			// artwork is cosmetic: keep the fallback fill
			f.Warnings = append(f.Warnings, template.Warning{
				Kind:   template.AssetNotFound,
				Slot:   template.BackgroundSlot,
				Detail: err.Error(),
			})
		}
	}

	src := image.NewUniform(d.Style.TextColor)
	for _, s := range f.Slots() {
		var text string
		switch s.Kind {
		case template.TextSlot:
			text = f.Text(s.ID)
		case template.Label:
			text = s.Default
		default:
			continue
		}

		face, err := d.Fonts.Face(s.Font, s.FontSize)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", s.ID, err)
		}
		drawer := &font.Drawer{Dst: canvas, Src: src, Face: face}

		if s.Wrapped() {
			for _, line := range layout.Compose(text, face, s.Box()).Lines {
				drawer.Dot = fixed.P(line.X, line.Y)
				drawer.DrawString(line.Text)
			}
			continue
		}

		drawer.Dot = fixed.P(anchorX(s, layout.Measure(face, text)), s.Y)
		drawer.DrawString(text)
	}

	if d.Style.StampQR {
		stamp, err := qrStamp(string(f.Category()) + ":" + f.ID())
		if err != nil {
			return nil, fmt.Errorf("qr stamp: %w", err)
		}
		pt := image.Pt(t.Width-stampSize-stampMargin, t.Height-stampSize-stampMargin)
		canvas = imaging.Overlay(canvas, stamp, pt, 1.0)
	}

	if w, h := outputSize(t, d.Width, d.Height); w != t.Width || h != t.Height {
		canvas = imaging.Resize(canvas, w, h, imaging.Lanczos)
	}
	return canvas, nil
}

func drawBackground(canvas draw.Image, path string, box template.Slot) error {
	bg, err := imaging.Open(path)
	if err != nil {
		return err
	}
	scaled := resize.Resize(uint(box.Width), uint(box.Height), bg, resize.Lanczos3)
	r := image.Rect(box.X, box.Y, box.X+box.Width, box.Y+box.Height)
	draw.Draw(canvas, r, scaled, scaled.Bounds().Min, draw.Src)
	return nil
}

func anchorX(s template.Slot, width int) int {
	switch s.Anchor {
	case "middle":
		return s.X - width/2
	case "end":
		return s.X - width
	}
	return s.X
}

func qrStamp(content string) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, err
	}
	return q.Image(stampSize), nil
}
