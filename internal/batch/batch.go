package batch

import (
	"bytes"
	"context"
	"fmt"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/render"
	"github.com/arcanaland/cardpress/internal/template"
	"github.com/arcanaland/cardpress/internal/util"
)

// Result is the outcome of one record
type Result struct {
	ID         string
	Category   card.Category
	OutputPath string
	Warnings   []template.Warning
	Err        error
}

// OK reports whether the card was written
func (r Result) OK() bool { return r.Err == nil }

// Report summarizes a batch run
type Report struct {
	Attempted int
	Succeeded int
	Failed    int
	Results   []Result
}

// Failures returns the failed results in source order
func (r *Report) Failures() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res)
		}
	}
	return out
}

// Warned returns the succeeded results that carry warnings
func (r *Report) Warned() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.OK() && len(res.Warnings) > 0 {
			out = append(out, res)
		}
	}
	return out
}

// Get returns the result of a record id
func (r *Report) Get(id string) (Result, bool) {
	for _, res := range r.Results {
		if res.ID == id {
			return res, true
		}
	}
	return Result{}, false
}

type options struct {
	assets   template.Assets
	vectors  bool
	fonts    *layout.FontSet
	style    render.Style
	progress func(Result)
}

// Option customizes Run
type Option func(*options)

// WithAssets sets the background resolver
func WithAssets(a template.Assets) Option {
	return func(o *options) { o.assets = a }
}

// WithVectorArtifacts also writes svg_<category>/<id>.svg for every card
func WithVectorArtifacts(fonts *layout.FontSet, style render.Style) Option {
	return func(o *options) {
		o.vectors = true
		o.fonts = fonts
		o.style = style
	}
}

// WithProgress calls fn after each record
func WithProgress(fn func(Result)) Option {
	return func(o *options) { o.progress = fn }
}

// Run renders every record in order into outputDir. A failing record is recorded in
// the report and never stops the batch; the returned error only covers setting up
// the output directories.
func Run(ctx context.Context, records []card.Record, tmpl *template.Template, r render.Rasterizer, outputDir string, opts ...Option) (*Report, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dirs := []string{card.ImageDir(outputDir, tmpl.Category)}
	if o.vectors {
		dirs = append(dirs, card.VectorDir(outputDir, tmpl.Category))
	}
	for _, d := range dirs {
		if err := util.EnsureDir(d); err != nil {
			return nil, fmt.Errorf("error creating output directory: %v", err)
		}
	}

	report := &Report{Results: make([]Result, 0, len(records))}
	for _, rec := range records {
		res := Result{ID: rec.ID(), Category: rec.Category()}

		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.OutputPath, res.Warnings, res.Err = process(ctx, rec, tmpl, r, outputDir, &o)
		}

		report.Attempted++
		if res.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
		report.Results = append(report.Results, res)

		if o.progress != nil {
			o.progress(res)
		}
	}

	return report, nil
}

func process(ctx context.Context, rec card.Record, tmpl *template.Template, r render.Rasterizer, outputDir string, o *options) (path string, warnings []template.Warning, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	filled, err := template.Fill(tmpl, rec, o.assets)
	if err != nil {
		return "", nil, err
	}

	img, err := r.Rasterize(ctx, filled)
	if err != nil {
		return "", filled.Warnings, err
	}

	if o.vectors {
		if _, isVector := r.(*render.Vector); !isVector {
			svgPath := card.VectorPath(outputDir, rec.Category(), rec.ID())
			if err := render.WriteSVG(svgPath, filled, o.fonts, o.style); err != nil {
				return "", filled.Warnings, err
			}
		}
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", filled.Warnings, fmt.Errorf("encode png: %w", err)
	}
	path = card.ImagePath(outputDir, rec.Category(), rec.ID())
	if err := util.WriteFileAtomic(path, buf.Bytes()); err != nil {
		return "", filled.Warnings, fmt.Errorf("write png: %w", err)
	}

	return path, filled.Warnings, nil
}
