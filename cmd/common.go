package cmd

import (
	"fmt"
	"os"
	"strings"

	colorize "github.com/fatih/color"
	"golang.org/x/term"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/layout"
	"github.com/arcanaland/cardpress/internal/preview"
)

// loadConfig loads the --config file, or the default XDG config
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %v", err)
	}
	return cfg, nil
}

// categoriesFromArgs returns the categories named on the command line, or every
// configured category in a stable order
func categoriesFromArgs(cfg *config.Config, args []string) ([]card.Category, error) {
	var cats []card.Category
	if len(args) == 0 {
		for _, c := range card.Categories {
			if _, ok := cfg.Categories[string(c)]; ok {
				cats = append(cats, c)
			}
		}
		if len(cats) == 0 {
			return nil, fmt.Errorf("no categories configured")
		}
		return cats, nil
	}

	seen := map[card.Category]bool{}
	for _, arg := range args {
		c, err := card.ParseCategory(arg)
		if err != nil {
			return nil, err
		}
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats, nil
}

// loadFonts loads the configured fonts and prints a warning for each fallback
func loadFonts(cfg *config.Config) *layout.FontSet {
	fonts, warnings := layout.LoadFontSet(cfg.FontPaths())
	for _, w := range warnings {
		fmt.Println(colorize.YellowString("warning: ") + w)
	}
	return fonts
}

// terminalWidth returns the width of stdout, 80 when it is not a terminal
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// frame draws title and lines inside a box as wide as the terminal, up to 80 columns
func frame(title string, lines []string) string {
	width := terminalWidth()
	if width > 80 {
		width = 80
	}
	if width < 40 {
		width = 40
	}
	inner := width - 4

	var b strings.Builder
	top := "┌─ " + title + " "
	b.WriteString(top + strings.Repeat("─", max(0, width-1-len([]rune(top)))) + "┐\n")
	for _, line := range lines {
		pad := inner - preview.VisibleWidth(line)
		if pad < 0 {
			pad = 0
		}
		b.WriteString("│ " + line + strings.Repeat(" ", pad) + " │\n")
	}
	b.WriteString("└" + strings.Repeat("─", width-2) + "┘\n")
	return b.String()
}
