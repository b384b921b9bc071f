package template

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/arcanaland/cardpress/internal/card"
)

// WarningKind classifies a recovered substitution problem
type WarningKind int

const (
	MissingField WarningKind = iota
	AssetNotFound
)

func (k WarningKind) String() string {
	switch k {
	case MissingField:
		return "missing field"
	case AssetNotFound:
		return "asset not found"
	}
	return fmt.Sprintf("WarningKind(%d)", int(k))
}

// Warning is a non-fatal problem met while filling a template
type Warning struct {
	Kind   WarningKind
	Slot   string
	Detail string
}

func (w Warning) String() string {
	if w.Detail == "" {
		return fmt.Sprintf("%s: %s", w.Kind, w.Slot)
	}
	return fmt.Sprintf("%s: %s (%s)", w.Kind, w.Slot, w.Detail)
}

// Filled is a template instance with every slot resolved for one record.
// It owns its document; the template it came from is left untouched.
type Filled struct {
	Template *Template
	Record   card.Record

	// Background is the absolute artwork path, empty when the fallback fill is used
	Background string
	Warnings   []Warning

	values map[string]string
	doc    *node
}

// Fill produces a filled copy of t for rec. Missing text fields keep the slot's
// default text and missing artwork falls back to a solid fill; both are recorded
// as warnings. A nil assets resolver treats every background as missing.
func Fill(t *Template, rec card.Record, assets Assets) (*Filled, error) {
	if rec.Category() != t.Category {
		return nil, fmt.Errorf("record %s is a %s card, template %s is for %s cards",
			rec.ID(), rec.Category(), t.Name, t.Category)
	}

	f := &Filled{
		Template: t,
		Record:   rec,
		values:   make(map[string]string),
		doc:      t.doc.clone(),
	}
	elements := f.doc.slotElements()

	for _, s := range t.slots {
		if s.Kind != TextSlot {
			continue
		}
		v, ok := rec.Field(s.ID)
		if !ok {
			f.values[s.ID] = s.Default
			f.Warnings = append(f.Warnings, Warning{Kind: MissingField, Slot: s.ID})
			continue
		}
		f.values[s.ID] = v
		elements[s.ID].setText(v)
	}

	ref, ok := rec.Field(card.FieldBackground)
	if !ok {
		ref = rec.ID() + ".png"
	}
	if assets == nil {
		f.Warnings = append(f.Warnings, Warning{Kind: AssetNotFound, Slot: BackgroundSlot, Detail: ref})
	} else if path, err := assets.Resolve(t.Category, ref); err != nil {
		f.Warnings = append(f.Warnings, Warning{Kind: AssetNotFound, Slot: BackgroundSlot, Detail: ref})
	} else {
		f.Background = path
		elements[BackgroundSlot].setAttr("href", fileURL(path))
	}

	return f, nil
}

// ID returns the record id
func (f *Filled) ID() string { return f.Record.ID() }

// Category returns the record category
func (f *Filled) Category() card.Category { return f.Record.Category() }

// Text returns the resolved text of a slot: the record value, or the slot
// default when the record lacked the field. Labels resolve to their fixed text.
func (f *Filled) Text(id string) string {
	if v, ok := f.values[id]; ok {
		return v
	}
	s, _ := f.Template.Slot(id)
	return s.Default
}

// Slots returns the template slots in drawing order
func (f *Filled) Slots() []Slot {
	return f.Template.Slots()
}

// HasWarning reports whether a warning of the given kind was raised
func (f *Filled) HasWarning(kind WarningKind) bool {
	for _, w := range f.Warnings {
		if w.Kind == kind {
			return true
		}
	}
	return false
}

func fileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}
