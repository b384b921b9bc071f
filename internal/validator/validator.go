package validator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/deck"
	"github.com/arcanaland/cardpress/internal/template"
)

type ValidationResults struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no error was found
func (r ValidationResults) Valid() bool {
	return len(r.Errors) == 0
}

// Validator checks a category's data file, its template and its backgrounds
// without rendering anything
type Validator struct {
	Category      card.Category
	DataPath      string
	TemplatePath  string
	BackgroundDir string
	Results       ValidationResults

	deck     *deck.Deck
	template *template.Template
}

func NewValidator(category card.Category, dataPath, templatePath, backgroundDir string) *Validator {
	return &Validator{
		Category:      category,
		DataPath:      dataPath,
		TemplatePath:  templatePath,
		BackgroundDir: backgroundDir,
		Results:       ValidationResults{},
	}
}

// Validate runs every check. The error is only returned when the data file does not exist.
func (v *Validator) Validate() (ValidationResults, error) {
	if err := v.validateData(); err != nil {
		return v.Results, err
	}

	v.validateTemplate()
	v.validateRecords()
	v.validateBackgrounds()
	v.validateSlots()

	return v.Results, nil
}

func (v *Validator) validateData() error {
	d, err := deck.Load(v.DataPath, v.Category)
	if errors.Is(err, deck.ErrDataNotFound) {
		return fmt.Errorf("data file not found: %s", v.DataPath)
	}
	if err != nil {
		v.Results.Errors = append(v.Results.Errors, err.Error())
		return nil
	}

	if d.Len() == 0 {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("no records found in %s", v.DataPath))
	}
	v.deck = d
	return nil
}

func (v *Validator) validateTemplate() {
	t, err := template.LoadOrBuiltin(v.TemplatePath, v.Category)
	if err != nil {
		v.Results.Errors = append(v.Results.Errors, err.Error())
		return
	}
	v.template = t
}

// validateRecords checks every record against the category schema
func (v *Validator) validateRecords() {
	if v.deck == nil {
		return
	}

	schema := v.Category.Schema()
	for _, rec := range v.deck.Records {
		var missing []string
		for _, field := range v.Category.ExpectedFields() {
			if field == card.FieldBackground {
				continue
			}
			if _, ok := rec.Field(field); !ok {
				missing = append(missing, field)
			}
		}
		if len(missing) > 0 {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: missing fields: %s", rec.ID(), strings.Join(missing, ", ")))
		}

		for _, field := range schema.NumericFields {
			value, ok := rec.Field(field)
			if !ok {
				continue
			}
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				v.Results.Warnings = append(v.Results.Warnings,
					fmt.Sprintf("%s: %s is not a number: %q", rec.ID(), field, value))
			}
		}

		if c, ok := card.CategoryForID(rec.ID()); ok && c != v.Category {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("%s: id looks like a %s card", rec.ID(), c))
		}
	}
}

// validateBackgrounds checks that every record's background artwork can be found
func (v *Validator) validateBackgrounds() {
	if v.deck == nil {
		return
	}

	assets := template.DirAssets{Root: v.BackgroundDir}
	var missing []string
	for _, rec := range v.deck.Records {
		ref, ok := rec.Field(card.FieldBackground)
		if !ok {
			ref = rec.ID() + ".png"
		}
		if _, err := assets.Resolve(v.Category, ref); err != nil {
			missing = append(missing, rec.ID())
		}
	}

	if len(missing) > 0 {
		v.Results.Warnings = append(v.Results.Warnings,
			fmt.Sprintf("missing background artwork for: %s", strings.Join(missing, ", ")))
	}
}

// validateSlots cross-checks template slots and schema fields
func (v *Validator) validateSlots() {
	if v.template == nil {
		return
	}

	expected := map[string]bool{}
	for _, field := range v.Category.ExpectedFields() {
		expected[field] = true
	}

	for _, slot := range v.template.TextSlots() {
		if !expected[slot.ID] {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("template %s: slot %q matches no %s field", v.template.Name, slot.ID, v.Category))
		}
	}

	for _, field := range v.Category.ExpectedFields() {
		if field == card.FieldID || field == card.FieldBackground {
			continue
		}
		if _, ok := v.template.Slot(field); !ok {
			v.Results.Warnings = append(v.Results.Warnings,
				fmt.Sprintf("template %s: no slot for field %q", v.template.Name, field))
		}
	}
}
