package preview

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
)

func solid(w, h int, c color.Color) image.Image {
	return imaging.New(w, h, c)
}

func TestSize(t *testing.T) {
	tests := []struct {
		w, h, width int
		cols, rows  int
	}{
		{600, 800, 36, 36, 24},
		{800, 600, 40, 40, 15},
		{100, 1, 10, 10, 1},
		{600, 800, 0, 0, 0},
	}
	for _, tt := range tests {
		cols, rows := Size(image.Rect(0, 0, tt.w, tt.h), tt.width)
		if cols != tt.cols || rows != tt.rows {
			t.Errorf("Size(%dx%d, %d) = %dx%d, want %dx%d", tt.w, tt.h, tt.width, cols, rows, tt.cols, tt.rows)
		}
	}
}

func TestImageToAnsiDimensions(t *testing.T) {
	art, err := ImageToAnsi(solid(60, 80, color.NRGBA{R: 255, A: 255}), 12, 8, true)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(art, "\n"), "\n")
	if len(lines) != 8 {
		t.Fatalf("lines = %d, want 8", len(lines))
	}
	for i, line := range lines {
		if w := VisibleWidth(line); w != 12 {
			t.Errorf("line %d width = %d, want 12", i, w)
		}
	}
	if !strings.HasPrefix(lines[0], "\x1b[38;2;25") {
		t.Errorf("first cell = %q, want true colour red", lines[0])
	}

	if _, err := ImageToAnsi(solid(1, 1, color.Black), 0, 4, true); err == nil {
		t.Error("expected error for zero width")
	}
}

func TestImageToAnsiBasicColours(t *testing.T) {
	art, err := ImageToAnsi(solid(10, 10, color.NRGBA{R: 250, G: 5, B: 5, A: 255}), 2, 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(art, "\x1b[91m\x1b[101m▀") {
		t.Errorf("art = %q, want bright red cells", art)
	}
}

func TestStripAnsi(t *testing.T) {
	if got := StripAnsi("\x1b[31mred\x1b[0m text"); got != "red text" {
		t.Errorf("StripAnsi = %q", got)
	}
	if got := VisibleWidth("\x1b[31m▀▀\x1b[0m"); got != 2 {
		t.Errorf("VisibleWidth = %d, want 2", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := WrapText("Augmente les dégâts du personnage pendant un tour", 20)
	for _, l := range lines {
		if len([]rune(l)) > 20 {
			t.Errorf("line %q longer than 20", l)
		}
	}
	if strings.Join(lines, " ") != "Augmente les dégâts du personnage pendant un tour" {
		t.Errorf("words changed: %q", lines)
	}
	if got := WrapText("   ", 20); len(got) != 1 || got[0] != "" {
		t.Errorf("WrapText(blank) = %q", got)
	}
}

func TestSideBySide(t *testing.T) {
	out := SideBySide("\x1b[31m▀▀\x1b[0m\n▀▀\n", []string{"Card: B1", "ID: B1", "extra"})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if got := StripAnsi(lines[0]); got != "  ▀▀    Card: B1" {
		t.Errorf("line 0 = %q", got)
	}
	if got := lines[2]; got != "        extra" {
		t.Errorf("line 2 = %q", got)
	}
}

func TestCacheReusesRendition(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "B1.png")
	if err := imaging.Save(solid(30, 40, color.White), img); err != nil {
		t.Fatal(err)
	}

	c := Cache{Dir: filepath.Join(dir, "cache")}
	first, err := c.Get(img, 10, true)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("cache entries = %v, %v", entries, err)
	}

	second, err := c.Get(img, 10, true)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("cached rendition differs")
	}

	if _, err := c.Get(filepath.Join(dir, "missing.png"), 10, true); err == nil {
		t.Error("expected error for missing image")
	}
}
