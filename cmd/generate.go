package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/batch"
	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/render"
	"github.com/arcanaland/cardpress/internal/template"
)

var errBatchFailed = errors.New("some cards could not be generated")

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate [category...]",
	Short: "Generate card images from card data",
	Long: `Generate renders every record of the given categories (bonus, perso) into
<output>/<category>/<id>.png. Without arguments every configured category is generated.

A record that cannot be rendered is reported and skipped; the command exits with a
non-zero status when at least one record failed.

Examples:
  cardpress generate
  cardpress generate bonus --data stock/bonus.json
  cardpress generate perso --strategy delegated-vector --keep-svg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		dataFlag, _ := cmd.Flags().GetString("data")
		templateFlag, _ := cmd.Flags().GetString("template")
		if outFlag, _ := cmd.Flags().GetString("out"); outFlag != "" {
			cfg.OutputDir = outFlag
		}
		if strategyFlag, _ := cmd.Flags().GetString("strategy"); strategyFlag != "" {
			cfg.Strategy = strategyFlag
		}
		if cmd.Flags().Changed("keep-svg") {
			cfg.KeepSVG, _ = cmd.Flags().GetBool("keep-svg")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cats, err := categoriesFromArgs(cfg, args)
		if err != nil {
			return err
		}
		if (dataFlag != "" || templateFlag != "") && len(cats) != 1 {
			return fmt.Errorf("--data and --template need exactly one category")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		g, err := newGenerator(cfg)
		if err != nil {
			return err
		}

		var reports []*batch.Report
		for _, cat := range cats {
			cc := cfg.Category(cat)
			if dataFlag != "" {
				cc.Data = dataFlag
			}
			if templateFlag != "" {
				cc.Template = templateFlag
			}

			report, err := g.run(ctx, cat, cc)
			if err != nil {
				return err
			}
			reports = append(reports, report)
		}

		fmt.Println()
		fmt.Print(summary(cats, reports, cfg.OutputDir))

		for _, r := range reports {
			if r.Failed > 0 {
				return errBatchFailed
			}
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().StringP("data", "d", "", "card data file (overrides the configured file)")
	generateCmd.Flags().StringP("template", "t", "", "SVG template (overrides the configured or builtin template)")
	generateCmd.Flags().StringP("out", "o", "", "output directory")
	generateCmd.Flags().StringP("strategy", "s", "", "rasterization strategy: direct-draw or delegated-vector")
	generateCmd.Flags().Bool("keep-svg", false, "also write svg_<category>/<id>.svg for every card")
}

type generator struct {
	cfg        *config.Config
	rasterizer render.Rasterizer
	opts       []batch.Option
}

func newGenerator(cfg *config.Config) (*generator, error) {
	fonts := loadFonts(cfg)
	renderOpts, err := cfg.RenderOptions(fonts)
	if err != nil {
		return nil, err
	}
	strategy, err := render.ParseStrategy(cfg.Strategy)
	if err != nil {
		return nil, err
	}
	r, err := render.New(strategy, renderOpts)
	if err != nil {
		return nil, err
	}

	opts := []batch.Option{
		batch.WithAssets(template.DirAssets{Root: cfg.BackgroundDir}),
		batch.WithProgress(printResult),
	}
	if cfg.KeepSVG {
		opts = append(opts, batch.WithVectorArtifacts(fonts, renderOpts.Style))
	}

	return &generator{cfg: cfg, rasterizer: r, opts: opts}, nil
}

// run generates one category. Data and template errors abort before any card is rendered.
func (g *generator) run(ctx context.Context, cat card.Category, cc config.CategoryConfig) (*batch.Report, error) {
	d, err := deck.Load(cc.Data, cat)
	if err != nil {
		return nil, fmt.Errorf("error loading %s data: %v", cat, err)
	}
	tmpl, err := template.LoadOrBuiltin(cc.Template, cat)
	if err != nil {
		return nil, fmt.Errorf("error loading %s template: %v", cat, err)
	}
	if tmpl.Width != g.cfg.CardWidth || tmpl.Height != g.cfg.CardHeight {
		fmt.Println(colorize.YellowString("note: ") +
			fmt.Sprintf("template %s is %dx%d, cards are scaled to %dx%d",
				tmpl.Name, tmpl.Width, tmpl.Height, g.cfg.CardWidth, g.cfg.CardHeight))
	}

	fmt.Println(colorize.CyanString("Generating %s cards", cat) +
		colorize.HiWhiteString(" (%d records, template %s)", d.Len(), tmpl.Name))

	report, err := batch.Run(ctx, d.Records, tmpl, g.rasterizer, g.cfg.OutputDir, g.opts...)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// printResult prints one line per record as the batch progresses
func printResult(res batch.Result) {
	switch {
	case !res.OK():
		fmt.Printf("  %s %-8s %s\n", colorize.RedString("✗"), res.ID, colorize.RedString("%v", res.Err))
	case len(res.Warnings) > 0:
		warnings := make([]string, len(res.Warnings))
		for i, w := range res.Warnings {
			warnings[i] = w.String()
		}
		fmt.Printf("  %s %-8s %s %s\n", colorize.YellowString("!"), res.ID, res.OutputPath,
			colorize.YellowString("(%s)", strings.Join(warnings, "; ")))
	default:
		fmt.Printf("  %s %-8s %s\n", colorize.GreenString("✓"), res.ID, res.OutputPath)
	}
}

func summary(cats []card.Category, reports []*batch.Report, outputDir string) string {
	var lines []string
	var attempted, succeeded, failed, warned int
	for i, r := range reports {
		lines = append(lines, fmt.Sprintf("%-6s %3d attempted  %3d ok  %3d failed  %3d with warnings",
			cats[i], r.Attempted, r.Succeeded, r.Failed, len(r.Warned())))
		attempted += r.Attempted
		succeeded += r.Succeeded
		failed += r.Failed
		warned += len(r.Warned())
	}

	status := colorize.GreenString("✓ %d/%d cards written to %s", succeeded, attempted, outputDir)
	if failed > 0 {
		status = colorize.RedString("✗ %d of %d cards failed", failed, attempted)
	} else if warned > 0 {
		status = colorize.YellowString("! %d/%d cards written to %s, %d with warnings", succeeded, attempted, outputDir, warned)
	}
	lines = append(lines, "", status)

	for _, r := range reports {
		for _, res := range r.Failures() {
			lines = append(lines, colorize.RedString("  %s: %v", res.ID, res.Err))
		}
	}

	return frame("Summary", lines)
}
