package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arcanaland/cardpress/internal/card"
)

const bonusJSON = `[
  {"id": "B1", "nomcartebonus": "Banananiia", "nomdupouvoir": "Augmentation de Puissance",
   "description": "Augmente les dégâts", "pourcentagebonus": 20, "tourbonus": "1"},
  {"id": "B2", "nomcartebonus": "Bouclier", "nomdupouvoir": "Protection",
   "pourcentagebonus": "beaucoup", "tourbonus": 2}
]`

func write(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
}

func contains(list []string, substr string) bool {
	for _, s := range list {
		if strings.Contains(s, substr) {
			return true
		}
	}
	return false
}

func TestValidateReportsWarnings(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "bonus.json")
	write(t, data, bonusJSON)
	backgrounds := filepath.Join(dir, "backgrounds")
	write(t, filepath.Join(backgrounds, "bonus", "B1.png"), "png")

	results, err := NewValidator(card.Bonus, data, "", backgrounds).Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !results.Valid() {
		t.Errorf("Errors = %v, want none", results.Errors)
	}

	for _, want := range []string{
		"B2: missing fields: description",
		"pourcentagebonus is not a number",
		"missing background artwork for: B2",
	} {
		if !contains(results.Warnings, want) {
			t.Errorf("Warnings = %v, want %q", results.Warnings, want)
		}
	}
	if contains(results.Warnings, "B1:") {
		t.Errorf("unexpected warning for B1: %v", results.Warnings)
	}
	if contains(results.Warnings, "slot") {
		t.Errorf("builtin template should match the schema: %v", results.Warnings)
	}
}

func TestValidateMissingDataFile(t *testing.T) {
	_, err := NewValidator(card.Bonus, filepath.Join(t.TempDir(), "none.json"), "", "").Validate()
	if err == nil {
		t.Fatal("expected error for missing data file")
	}
}

func TestValidateMalformedData(t *testing.T) {
	data := filepath.Join(t.TempDir(), "bonus.json")
	write(t, data, `[{"nomcartebonus": "no id"}]`)

	results, err := NewValidator(card.Bonus, data, "", "").Validate()
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if results.Valid() {
		t.Error("expected an error for a record without id")
	}
}

func TestValidateTemplate(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "perso.json")
	write(t, data, `[{"id": "B9", "nomcarteperso": "Oops"}]`)

	tmpl := filepath.Join(dir, "perso.svg")
	write(t, tmpl, `<svg xmlns="http://www.w3.org/2000/svg" width="600" height="800">
  <image id="fond" x="0" y="0" width="600" height="800"/>
  <text id="nomcarteperso" x="300" y="80">Nom</text>
  <text id="surnom" x="300" y="120">Surnom</text>
</svg>`)

	results, err := NewValidator(card.Character, data, tmpl, "").Validate()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`slot "surnom" matches no perso field`,
		`no slot for field "pointsdevie"`,
		"B9: id looks like a bonus card",
	} {
		if !contains(results.Warnings, want) {
			t.Errorf("Warnings = %v, want %q", results.Warnings, want)
		}
	}

	results, err = NewValidator(card.Character, data, filepath.Join(dir, "missing.svg"), "").Validate()
	if err != nil {
		t.Fatal(err)
	}
	if results.Valid() {
		t.Error("expected an error for a missing template")
	}
}
