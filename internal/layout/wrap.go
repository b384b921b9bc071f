package layout

import (
	"strings"

	"golang.org/x/image/font"
)

// Line is one laid out line of text.
// X is the left edge after centering, Y the baseline.
type Line struct {
	Text  string
	Width int
	X     int
	Y     int
}

// Layout is the ordered result of wrapping and placing a text
type Layout struct {
	Lines []Line
}

// Box describes where wrapped text goes: lines are centered on CenterX and
// stacked downward from the Top baseline by LineHeight.
type Box struct {
	CenterX    int
	Top        int
	MaxWidth   int
	LineHeight int
}

// Measure returns the rendered advance width of s in whole pixels
func Measure(face font.Face, s string) int {
	return font.MeasureString(face, s).Ceil()
}

// Wrap splits text into lines no wider than maxWidth using greedy word wrapping.
// A single word wider than maxWidth is kept alone on its own line; words are never split.
func Wrap(text string, maxWidth int, face font.Face) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if Measure(face, candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}

	return append(lines, current)
}

// Place centers each line horizontally on centerX and stacks the baselines from
// startY by lineHeight. Overflow past the card edge is not detected.
func Place(lines []string, face font.Face, centerX, startY, lineHeight int) Layout {
	out := Layout{Lines: make([]Line, 0, len(lines))}
	y := startY
	for _, text := range lines {
		w := Measure(face, text)
		out.Lines = append(out.Lines, Line{
			Text:  text,
			Width: w,
			X:     centerX - w/2,
			Y:     y,
		})
		y += lineHeight
	}
	return out
}

// Compose wraps text into the box and places the resulting lines
func Compose(text string, face font.Face, box Box) Layout {
	return Place(Wrap(text, box.MaxWidth, face), face, box.CenterX, box.Top, box.LineHeight)
}
