package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/config"
	"github.com/arcanaland/cardpress/internal/preview"
)

func TestCategoriesFromArgs(t *testing.T) {
	cfg := config.Default()

	cats, err := categoriesFromArgs(cfg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0] != card.Bonus || cats[1] != card.Character {
		t.Errorf("default categories = %v", cats)
	}

	cats, err = categoriesFromArgs(cfg, []string{"personnage", "perso", "b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(cats) != 2 || cats[0] != card.Character || cats[1] != card.Bonus {
		t.Errorf("categories = %v, want [perso bonus]", cats)
	}

	if _, err := categoriesFromArgs(cfg, []string{"monster"}); err == nil {
		t.Error("expected error for unknown category")
	}

	delete(cfg.Categories, string(card.Bonus))
	delete(cfg.Categories, string(card.Character))
	if _, err := categoriesFromArgs(cfg, nil); err == nil {
		t.Error("expected error without configured categories")
	}
}

func TestFrameLinesHaveEqualWidth(t *testing.T) {
	out := frame("Summary", []string{"bonus    2 attempted", "\x1b[32m✓ 2/2 cards\x1b[0m", ""})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5", len(lines))
	}
	want := preview.VisibleWidth(lines[0])
	for i, l := range lines {
		if w := preview.VisibleWidth(l); w != want {
			t.Errorf("line %d width = %d, want %d: %q", i, w, want, l)
		}
	}
}

func TestGenerateUsesConfiguredCardSize(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "bonus.json")
	if err := os.WriteFile(data, []byte(`[{"id": "B1", "nomcartebonus": "Banananiia"}]`), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.OutputDir = filepath.Join(dir, "stock")
	cfg.BackgroundDir = filepath.Join(dir, "backgrounds")
	cfg.CardWidth, cfg.CardHeight = 300, 400

	g, err := newGenerator(cfg)
	if err != nil {
		t.Fatal(err)
	}
	report, err := g.run(context.Background(), card.Bonus, config.CategoryConfig{Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if report.Failed != 0 {
		t.Fatalf("failures: %v", report.Failures())
	}

	img, err := imaging.Open(card.ImagePath(cfg.OutputDir, card.Bonus, "B1"))
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 400 {
		t.Errorf("card size = %v, want 300x400", b)
	}
}
