package preview

import (
	"strings"
)

// WrapText wraps text to a specified width in characters
func WrapText(text string, width int) []string {
	if width < 10 {
		width = 40
	}

	var result []string
	var currentLine string
	words := strings.Fields(text)

	if len(words) == 0 {
		return []string{""}
	}

	for _, word := range words {
		switch {
		case currentLine == "":
			currentLine = word
		case len([]rune(currentLine))+1+len([]rune(word)) <= width:
			currentLine += " " + word
		default:
			result = append(result, currentLine)
			currentLine = word
		}
	}

	if currentLine != "" {
		result = append(result, currentLine)
	}

	return result
}

// SideBySide lays the ANSI art out on the left and the info lines on the right,
// indented by two columns
func SideBySide(art string, info []string) string {
	artLines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	maxArtWidth := 0
	for _, line := range artLines {
		if w := VisibleWidth(line); w > maxArtWidth {
			maxArtWidth = w
		}
	}

	const spacing = 4
	infoStartCol := maxArtWidth + spacing

	var b strings.Builder
	for i := 0; i < max(len(artLines), len(info)); i++ {
		b.WriteString("  ")
		if i < len(artLines) {
			b.WriteString(artLines[i])
			b.WriteString(strings.Repeat(" ", infoStartCol-VisibleWidth(artLines[i])))
		} else {
			b.WriteString(strings.Repeat(" ", infoStartCol))
		}
		if i < len(info) {
			b.WriteString(info[i])
		}
		b.WriteString("\n")
	}
	return b.String()
}

// InfoWidth returns the columns left for info lines next to art of artWidth columns
// in a terminal of termWidth columns
func InfoWidth(termWidth, artWidth int) int {
	w := termWidth - (2 + artWidth + 4) - 2
	if w < 20 {
		w = 20
	}
	return w
}
