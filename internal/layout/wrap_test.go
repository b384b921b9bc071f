package layout

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func textFace(t *testing.T, size float64) *FontSet {
	t.Helper()
	fs := DefaultFontSet()
	if _, err := fs.Face(RoleText, size); err != nil {
		t.Fatalf("Face: %v", err)
	}
	return fs
}

func TestWrapPreservesWords(t *testing.T) {
	fs := textFace(t, 30)
	face, _ := fs.Face(RoleText, 30)

	vocabulary := strings.Fields("le la les du de personnage pouvoir augmente dégâts bouclier " +
		"attaque tour supplémentaire invocation anticonstitutionnellement a")
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		n := rng.Intn(40)
		words := make([]string, n)
		for j := range words {
			words[j] = vocabulary[rng.Intn(len(vocabulary))]
		}
		text := strings.Join(words, "  ")

		lines := Wrap(text, 200+rng.Intn(400), face)

		var got []string
		for _, l := range lines {
			got = append(got, strings.Fields(l)...)
		}
		if strings.Join(got, " ") != strings.Join(words, " ") {
			t.Fatalf("words changed:\n got  %q\n want %q", got, words)
		}
	}
}

func TestWrapWidthBound(t *testing.T) {
	fs := textFace(t, 30)
	face, _ := fs.Face(RoleText, 30)

	text := "Un guerrier venu des montagnes anticonstitutionnellement lointaines frappe deux fois par tour"
	const maxWidth = 300
	for _, line := range Wrap(text, maxWidth, face) {
		if Measure(face, line) <= maxWidth {
			continue
		}
		if len(strings.Fields(line)) != 1 {
			t.Errorf("line %q is %dpx wide (> %d) and has several words", line, Measure(face, line), maxWidth)
		}
	}
}

func TestWrapLongWordStaysAlone(t *testing.T) {
	fs := textFace(t, 30)
	face, _ := fs.Face(RoleText, 30)

	lines := Wrap("a anticonstitutionnellement b", 60, face)
	want := []string{"a", "anticonstitutionnellement", "b"}
	if len(lines) != len(want) {
		t.Fatalf("lines = %q, want %q", lines, want)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestWrapSingleLineAndEmpty(t *testing.T) {
	face, _ := DefaultFontSet().Face(RoleText, 30)

	if lines := Wrap("Court", 540, face); len(lines) != 1 || lines[0] != "Court" {
		t.Errorf("Wrap(short) = %q", lines)
	}
	if lines := Wrap("   \n\t ", 540, face); len(lines) != 0 {
		t.Errorf("Wrap(blank) = %q, want no lines", lines)
	}
}

func TestLongDescriptionOnStandardCard(t *testing.T) {
	face, _ := DefaultFontSet().Face(RoleText, 30)

	base := "Augmente les dégâts du personnage ciblé pendant deux tours et lui rend une partie de ses points de vie perdus. "
	desc := strings.Repeat(base, 2)
	desc = string([]rune(desc)[:200])
	if n := utf8.RuneCountInString(desc); n != 200 {
		t.Fatalf("description has %d characters", n)
	}

	const cardWidth = 600
	box := Box{CenterX: cardWidth / 2, Top: 650, MaxWidth: cardWidth - 60, LineHeight: 40}
	l := Compose(desc, face, box)

	if len(l.Lines) < 2 {
		t.Fatalf("expected several lines, got %d", len(l.Lines))
	}
	for i, line := range l.Lines {
		if line.Width > 540 {
			t.Errorf("line %d is %dpx wide", i, line.Width)
		}
		center := line.X + line.Width/2
		if d := center - cardWidth/2; d < -1 || d > 1 {
			t.Errorf("line %d centered at %d", i, center)
		}
		if want := 650 + 40*i; line.Y != want {
			t.Errorf("line %d baseline = %d, want %d", i, line.Y, want)
		}
	}
}

func TestFontSetFallback(t *testing.T) {
	dir := t.TempDir()
	bogus := filepath.Join(dir, "bogus.ttf")
	if err := os.WriteFile(bogus, []byte("not a font"), 0644); err != nil {
		t.Fatal(err)
	}

	fs, warnings := LoadFontSet(map[Role]string{
		RoleTitle: filepath.Join(dir, "missing.ttf"),
		RoleText:  bogus,
	})
	if len(warnings) != 2 {
		t.Fatalf("warnings = %q, want 2", warnings)
	}
	if _, err := fs.Face(RoleTitle, 40); err != nil {
		t.Errorf("title face: %v", err)
	}
	if _, err := fs.Face(Role("unknown"), 12); err != nil {
		t.Errorf("unknown role face: %v", err)
	}
	if _, err := fs.Face(RoleText, 0); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestFaceIsCached(t *testing.T) {
	fs := DefaultFontSet()
	a, _ := fs.Face(RoleText, 30)
	b, _ := fs.Face(RoleText, 30)
	if a != b {
		t.Error("expected the same face for the same role and size")
	}
}
