package preview

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/nfnt/resize"
)

// Size returns the character grid that shows bounds at the given column width,
// keeping the aspect ratio with one half-block cell per 1x2 square pixels
func Size(bounds image.Rectangle, width int) (int, int) {
	if width <= 0 || bounds.Dx() <= 0 {
		return 0, 0
	}
	rows := (width*bounds.Dy()/bounds.Dx() + 1) / 2
	if rows < 1 {
		rows = 1
	}
	return width, rows
}

// ImageToAnsi converts an image to ANSI art of width x height characters.
// With trueColor unset, colours are reduced to the 16 standard terminal colours.
func ImageToAnsi(img image.Image, width, height int, trueColor bool) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid preview size %dx%d", width, height)
	}

	// Resize image to desired dimensions (doubled for half-block characters)
	resized := resize.Resize(uint(width*2), uint(height*2), img, resize.Lanczos3)

	var buffer strings.Builder
	for y := 0; y < height*2; y += 2 {
		for x := 0; x < width*2; x += 2 {
			col1, _ := colorful.MakeColor(getColorAt(resized, x, y))
			col2, _ := colorful.MakeColor(getColorAt(resized, x+1, y))
			col3, _ := colorful.MakeColor(getColorAt(resized, x, y+1))
			col4, _ := colorful.MakeColor(getColorAt(resized, x+1, y+1))

			// Top pixels as foreground, bottom pixels as background
			fg := averageColor(col1, col2)
			bg := averageColor(col3, col4)

			buffer.WriteString(ansiColorString('▀', fg, bg, trueColor))
		}
		buffer.WriteString("\n")
	}

	return buffer.String(), nil
}

// getColorAt returns the color at a specific coordinate, black when out of bounds
func getColorAt(img image.Image, x, y int) color.Color {
	bounds := img.Bounds()
	if x >= bounds.Min.X && x < bounds.Max.X && y >= bounds.Min.Y && y < bounds.Max.Y {
		return img.At(x, y)
	}
	return color.RGBA{0, 0, 0, 255}
}

func averageColor(colors ...colorful.Color) colorful.Color {
	var r, g, b float64
	for _, c := range colors {
		r += c.R
		g += c.G
		b += c.B
	}
	count := float64(len(colors))
	return colorful.Color{R: r / count, G: g / count, B: b / count}
}

// basic holds the 16 standard terminal colours in SGR order
var basic = []colorful.Color{
	{R: 0, G: 0, B: 0}, {R: 0.5, G: 0, B: 0}, {R: 0, G: 0.5, B: 0}, {R: 0.5, G: 0.5, B: 0},
	{R: 0, G: 0, B: 0.5}, {R: 0.5, G: 0, B: 0.5}, {R: 0, G: 0.5, B: 0.5}, {R: 0.75, G: 0.75, B: 0.75},
	{R: 0.5, G: 0.5, B: 0.5}, {R: 1, G: 0, B: 0}, {R: 0, G: 1, B: 0}, {R: 1, G: 1, B: 0},
	{R: 0, G: 0, B: 1}, {R: 1, G: 0, B: 1}, {R: 0, G: 1, B: 1}, {R: 1, G: 1, B: 1},
}

// nearestBasic returns the index of the closest standard colour
func nearestBasic(c colorful.Color) int {
	best, dist := 0, -1.0
	for i, b := range basic {
		if d := c.DistanceLab(b); dist < 0 || d < dist {
			best, dist = i, d
		}
	}
	return best
}

// ansiColorString formats a character with ANSI color codes
func ansiColorString(char rune, fg, bg colorful.Color, trueColor bool) string {
	if trueColor {
		r1, g1, b1 := fg.Clamped().RGB255()
		r2, g2, b2 := bg.Clamped().RGB255()
		return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%c\x1b[0m",
			r1, g1, b1, r2, g2, b2, char)
	}

	return fmt.Sprintf("\x1b[%dm\x1b[%dm%c\x1b[0m", sgr(nearestBasic(fg), 30, 90), sgr(nearestBasic(bg), 40, 100), char)
}

func sgr(index, normal, bright int) int {
	if index < 8 {
		return normal + index
	}
	return bright + index - 8
}

// StripAnsi removes ANSI escape sequences from a string
func StripAnsi(s string) string {
	var result strings.Builder
	inEscape := false
	for _, c := range s {
		if inEscape {
			if c == 'm' {
				inEscape = false
			}
		} else if c == '\033' {
			inEscape = true
		} else {
			result.WriteRune(c)
		}
	}
	return result.String()
}

// VisibleWidth returns the number of runes of s once escape sequences are removed
func VisibleWidth(s string) int {
	return len([]rune(StripAnsi(s)))
}
