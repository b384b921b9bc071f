package cmd

import (
	"context"
	"fmt"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/preview"
	"github.com/arcanaland/cardpress/internal/render"
	"github.com/arcanaland/cardpress/internal/template"
)

var showCmd = &cobra.Command{
	Use:   "show [card_id]",
	Short: "Display a card and its fields with ANSI art",
	Long: `Show renders a single card with the direct strategy and displays it as ANSI
terminal art next to the card's fields.

The category is inferred from the id prefix (B for bonus, P for perso) unless
--category is given. With --generated, the PNG already written by 'cardpress generate'
is shown instead of a fresh rendering.

Examples:
  cardpress show B1
  cardpress show P3 --width 48
  cardpress show --category bonus --data other.json X7`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cardID := args[0]

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		var cat card.Category
		if categoryFlag, _ := cmd.Flags().GetString("category"); categoryFlag != "" {
			if cat, err = card.ParseCategory(categoryFlag); err != nil {
				return err
			}
		} else if c, ok := card.CategoryForID(cardID); ok {
			cat = c
		} else {
			return fmt.Errorf("cannot infer the category of %q, use --category", cardID)
		}

		cc := cfg.Category(cat)
		if dataFlag, _ := cmd.Flags().GetString("data"); dataFlag != "" {
			cc.Data = dataFlag
		}

		d, err := deck.Load(cc.Data, cat)
		if err != nil {
			return fmt.Errorf("error loading deck: %v", err)
		}
		rec, err := d.Get(cardID)
		if err != nil {
			return fmt.Errorf("error getting card: %v", err)
		}

		width, _ := cmd.Flags().GetInt("width")
		basic, _ := cmd.Flags().GetBool("basic")
		generated, _ := cmd.Flags().GetBool("generated")

		var art string
		var warnings []template.Warning
		if generated {
			cache := preview.Cache{Dir: preview.GetCacheDir()}
			art, err = cache.Get(card.ImagePath(cfg.OutputDir, cat, cardID), width, !basic)
			if err != nil {
				return fmt.Errorf("error loading generated card: %v", err)
			}
		} else {
			art, warnings, err = renderAnsi(cfg, cc.Template, rec, width, !basic)
			if err != nil {
				return err
			}
		}

		displayCard(rec, art, width, warnings)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(showCmd)

	showCmd.Flags().String("category", "", "card category (bonus or perso)")
	showCmd.Flags().StringP("data", "d", "", "card data file (overrides the configured file)")
	showCmd.Flags().IntP("width", "w", 36, "width of the ANSI art in columns")
	showCmd.Flags().Bool("basic", false, "use the 16 standard terminal colours instead of true colour")
	showCmd.Flags().Bool("generated", false, "show the PNG written by generate instead of rendering the card")
}

// renderAnsi renders rec with the direct strategy and converts it to ANSI art
func renderAnsi(cfg *config.Config, templatePath string, rec card.Record, width int, trueColor bool) (string, []template.Warning, error) {
	tmpl, err := template.LoadOrBuiltin(templatePath, rec.Category())
	if err != nil {
		return "", nil, fmt.Errorf("error loading template: %v", err)
	}
	filled, err := template.Fill(tmpl, rec, template.DirAssets{Root: cfg.BackgroundDir})
	if err != nil {
		return "", nil, err
	}

	style, err := cfg.RenderStyle()
	if err != nil {
		return "", nil, err
	}
	r := &render.Direct{Fonts: loadFonts(cfg), Style: style, Width: cfg.CardWidth, Height: cfg.CardHeight}
	img, err := r.Rasterize(context.Background(), filled)
	if err != nil {
		return "", nil, fmt.Errorf("error rendering card: %v", err)
	}

	w, h := preview.Size(img.Bounds(), width)
	art, err := preview.ImageToAnsi(img, w, h, trueColor)
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert image to ANSI: %v", err)
	}
	return art, filled.Warnings, nil
}

// displayCard displays the card fields next to its ANSI art
func displayCard(rec card.Record, art string, artWidth int, warnings []template.Warning) {
	infoWidth := preview.InfoWidth(terminalWidth(), artWidth)
	label := func(s string) string { return colorize.CyanString("%-8s", s+":") }

	var infoLines []string
	infoLines = append(infoLines, label("Card")+colorize.HiWhiteString("%s", rec.Title()))
	infoLines = append(infoLines, label("ID")+colorize.HiWhiteString("%s", rec.ID()))
	infoLines = append(infoLines, label("Type")+colorize.HiWhiteString("%s", rec.Category()))

	for _, field := range rec.Category().Schema().NumericFields {
		value, ok := rec.Field(field)
		if !ok {
			value = "-"
		}
		infoLines = append(infoLines, colorize.CyanString("%s: ", field)+colorize.HiWhiteString("%s", value))
	}

	if power, ok := rec.Field(card.FieldPower); ok {
		infoLines = append(infoLines, "", colorize.CyanString("Power:"))
		infoLines = append(infoLines, preview.WrapText(power, infoWidth)...)
	}
	if desc, ok := rec.Field(card.FieldDescription); ok {
		infoLines = append(infoLines, "", colorize.CyanString("Description:"))
		infoLines = append(infoLines, preview.WrapText(desc, infoWidth)...)
	}

	if len(warnings) > 0 {
		infoLines = append(infoLines, "")
		for _, w := range warnings {
			infoLines = append(infoLines, colorize.YellowString("! %s", w))
		}
	}

	fmt.Println()
	fmt.Print(preview.SideBySide(art, infoLines))
	fmt.Println()
}
