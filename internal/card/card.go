package card

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Category identifies a family of cards sharing a field schema and a template
type Category string

const (
	Bonus     Category = "bonus"
	Character Category = "perso"
)

// Categories lists every known category in a stable order
var Categories = []Category{Bonus, Character}

// Field names shared by every category
const (
	FieldID          = "id"
	FieldPower       = "nomdupouvoir"
	FieldDescription = "description"
	FieldBackground  = "fond"
)

// Schema describes the fields a category's records are expected to carry
type Schema struct {
	TitleField    string
	NumericFields []string
}

var schemas = map[Category]Schema{
	Bonus: {
		TitleField:    "nomcartebonus",
		NumericFields: []string{"pourcentagebonus", "tourbonus"},
	},
	Character: {
		TitleField:    "nomcarteperso",
		NumericFields: []string{"pointsdevie", "forceattaque", "tourattaque"},
	},
}

// ParseCategory converts a user supplied name (e.g. "bonus", "personnage") to a Category
func ParseCategory(name string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bonus", "b":
		return Bonus, nil
	case "perso", "personnage", "personnages", "character", "p":
		return Character, nil
	}
	return "", fmt.Errorf("unknown card category: %q (expected bonus or perso)", name)
}

// CategoryForID infers the category from an identifier prefix (B1 -> bonus, P1 -> perso)
func CategoryForID(id string) (Category, bool) {
	switch {
	case strings.HasPrefix(id, "B"):
		return Bonus, true
	case strings.HasPrefix(id, "P"):
		return Character, true
	}
	return "", false
}

// Schema returns the field schema of the category
func (c Category) Schema() Schema {
	return schemas[c]
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	_, ok := schemas[c]
	return ok
}

// ExpectedFields returns every field a complete record of the category carries, id first
func (c Category) ExpectedFields() []string {
	s := c.Schema()
	fields := []string{FieldID, s.TitleField, FieldPower, FieldDescription}
	fields = append(fields, s.NumericFields...)
	return append(fields, FieldBackground)
}

// ImagePath returns the PNG path of a card: <dir>/<category>/<id>.png
func ImagePath(dir string, c Category, id string) string {
	return filepath.Join(ImageDir(dir, c), id+".png")
}

// ImageDir returns the directory holding the PNGs of a category
func ImageDir(dir string, c Category) string {
	return filepath.Join(dir, string(c))
}

// VectorPath returns the intermediate SVG path of a card: <dir>/svg_<category>/<id>.svg
func VectorPath(dir string, c Category, id string) string {
	return filepath.Join(VectorDir(dir, c), id+".svg")
}

// VectorDir returns the directory holding the intermediate SVGs of a category
func VectorDir(dir string, c Category) string {
	return filepath.Join(dir, "svg_"+string(c))
}
