package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/template"
	"github.com/arcanaland/cardpress/internal/util"
)

const (
	DefaultDPI     = 96
	DefaultTimeout = 30 * time.Second
)

// DefaultCommand invokes librsvg. Placeholders: {input} {output} {width} {height} {dpi}.
var DefaultCommand = []string{
	"rsvg-convert",
	"-w", "{width}", "-h", "{height}",
	"-d", "{dpi}", "-p", "{dpi}",
	"-o", "{output}", "{input}",
}

// RasterizationError reports a failed external rasterizer run
type RasterizationError struct {
	ID       string
	Command  string
	ExitCode int // -1 when the process did not exit normally
	Stderr   string
	Err      error
}

func (e *RasterizationError) Error() string {
	msg := fmt.Sprintf("rasterize %s: %s", e.ID, e.Command)
	if e.ExitCode > 0 {
		msg += fmt.Sprintf(" exited with status %d", e.ExitCode)
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *RasterizationError) Unwrap() error { return e.Err }

// Vector writes the filled template as SVG and delegates rasterization to an external command.
// Output determinism depends on that command.
type Vector struct {
	Fonts     *layout.FontSet
	Style     Style
	Width     int
	Height    int
	Command   []string
	DPI       int
	Timeout   time.Duration
	OutputDir string
}

// Rasterize writes svg_<category>/<id>.svg under OutputDir, runs the command and decodes its PNG
func (v *Vector) Rasterize(ctx context.Context, f *template.Filled) (image.Image, error) {
	svgPath := card.VectorPath(v.OutputDir, f.Category(), f.ID())
	if err := WriteSVG(svgPath, f, v.Fonts, v.Style); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(svgPath), "."+f.ID()+".*.png")
	if err != nil {
		return nil, err
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	width, height := outputSize(f.Template, v.Width, v.Height)
	dpi := v.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	args := expand(v.Command, map[string]string{
		"{input}":  svgPath,
		"{output}": outPath,
		"{width}":  strconv.Itoa(width),
		"{height}": strconv.Itoa(height),
		"{dpi}":    strconv.Itoa(dpi),
	})

	timeout := v.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, args[0], args[1:]...)
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		rerr := &RasterizationError{
			ID:       f.ID(),
			Command:  args[0],
			ExitCode: -1,
			Stderr:   strings.TrimSpace(stderr.String()),
			Err:      err,
		}
		var exitErr *exec.ExitError
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			rerr.Err = fmt.Errorf("timed out after %s", timeout)
		} else if errors.As(err, &exitErr) {
			rerr.ExitCode = exitErr.ExitCode()
		}
		return nil, rerr
	}

	img, err := imaging.Open(outPath)
	if err != nil {
		return nil, &RasterizationError{ID: f.ID(), Command: args[0], Err: fmt.Errorf("read output: %w", err)}
	}

	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		img = imaging.Resize(img, width, height, imaging.Lanczos)
	}
	return img, nil
}

// WriteSVG writes the vector form of a filled template atomically
func WriteSVG(path string, f *template.Filled, fonts *layout.FontSet, style Style) error {
	var buf bytes.Buffer
	if err := f.EncodeSVG(&buf, template.SVGOptions{Fonts: fonts, Fallback: style.Fallback}); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func expand(command []string, values map[string]string) []string {
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, k, v)
	}
	r := strings.NewReplacer(pairs...)

	args := make([]string, len(command))
	for i, a := range command {
		args[i] = r.Replace(a)
	}
	return args
}
