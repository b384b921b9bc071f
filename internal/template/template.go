package template

import (
	"embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
	"github.com/arcanaland/cardpress/internal/layout"
)

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateFormat   = errors.New("invalid template")
)

// BackgroundSlot is the id of the image placeholder receiving the card artwork
const BackgroundSlot = card.FieldBackground

const defaultFontSize = 30

//go:embed builtin/*.svg
var builtinFS embed.FS

// SlotKind tells how a slot is filled
type SlotKind int

const (
	// TextSlot receives the record field named by its id
	TextSlot SlotKind = iota
	// ImageSlot receives the background artwork
	ImageSlot
	// Label is fixed template text without an id; it is never substituted
	Label
)

func (k SlotKind) String() string {
	switch k {
	case TextSlot:
		return "text"
	case ImageSlot:
		return "image"
	case Label:
		return "label"
	}
	return fmt.Sprintf("SlotKind(%d)", int(k))
}

// Slot is a positioned placeholder of a template.
// For text, X is the anchor point and Y the baseline; for images, X/Y/Width/Height is the box.
type Slot struct {
	ID   string
	Kind SlotKind

	X, Y          int
	Width, Height int

	FontSize   float64
	Font       layout.Role
	Anchor     string // start, middle or end
	MaxWidth   int    // > 0 turns on word wrapping
	LineHeight int
	Default    string
}

// Wrapped reports whether the slot text is word wrapped
func (s Slot) Wrapped() bool {
	return s.Kind == TextSlot && s.MaxWidth > 0
}

// Box returns the wrapping box of a wrapped text slot
func (s Slot) Box() layout.Box {
	return layout.Box{CenterX: s.X, Top: s.Y, MaxWidth: s.MaxWidth, LineHeight: s.LineHeight}
}

// Template is a card template loaded from an SVG document. It is read-only once loaded.
type Template struct {
	Name     string
	Category card.Category
	Width    int
	Height   int

	slots []Slot
	index map[string]int
	doc   *node
}

// Load loads a template from an SVG file
func Load(path string, category card.Category) (*Template, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading template %s: %v", path, err)
	}
	return Parse(data, path, category)
}

// Builtin returns the embedded template of a category
func Builtin(category card.Category) (*Template, error) {
	data, err := builtinFS.ReadFile("builtin/" + string(category) + ".svg")
	if err != nil {
		return nil, fmt.Errorf("%w: no builtin template for %q", ErrTemplateNotFound, category)
	}
	return Parse(data, "builtin:"+string(category), category)
}

// LoadOrBuiltin loads path, or the builtin template of the category when path is empty
func LoadOrBuiltin(path string, category card.Category) (*Template, error) {
	if path == "" {
		return Builtin(category)
	}
	return Load(path, category)
}

// Parse reads a template from SVG bytes. name is used in messages only.
func Parse(data []byte, name string, category card.Category) (*Template, error) {
	doc, err := parseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateFormat, name, err)
	}

	root := doc.root()
	if root == nil || root.name.Local != "svg" {
		return nil, fmt.Errorf("%w: %s: root element is not <svg>", ErrTemplateFormat, name)
	}

	t := &Template{
		Name:     name,
		Category: category,
		index:    make(map[string]int),
		doc:      doc,
	}

	if t.Width, err = dimension(root, "width"); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateFormat, name, err)
	}
	if t.Height, err = dimension(root, "height"); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateFormat, name, err)
	}

	var slotErr error
	ids := make(map[string]bool)
	root.walk(func(n *node) {
		if slotErr != nil || n.kind != elementNode {
			return
		}
		if id, ok := n.attr("id"); ok && id != "" {
			if ids[id] {
				slotErr = fmt.Errorf("duplicate element id %q", id)
				return
			}
			ids[id] = true
		}
		s, ok, err := slotFor(n)
		if err != nil {
			slotErr = err
			return
		}
		if !ok {
			return
		}
		if s.ID != "" {
			t.index[s.ID] = len(t.slots)
		}
		t.slots = append(t.slots, s)
	})
	if slotErr != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTemplateFormat, name, slotErr)
	}

	if s, ok := t.Slot(BackgroundSlot); !ok || s.Kind != ImageSlot {
		return nil, fmt.Errorf("%w: %s: no <image id=%q> placeholder", ErrTemplateFormat, name, BackgroundSlot)
	}
	if len(t.TextSlots()) == 0 {
		return nil, fmt.Errorf("%w: %s: no <text id=...> placeholder", ErrTemplateFormat, name)
	}

	return t, nil
}

// slotFor extracts the slot described by an element, if any
func slotFor(n *node) (Slot, bool, error) {
	id, _ := n.attr("id")

	switch n.name.Local {
	case "image":
		if id != BackgroundSlot {
			return Slot{}, false, nil
		}
		s := Slot{ID: id, Kind: ImageSlot}
		var err error
		if s.X, err = number(n, "x", 0); err != nil {
			return s, false, err
		}
		if s.Y, err = number(n, "y", 0); err != nil {
			return s, false, err
		}
		if s.Width, err = dimension(n, "width"); err != nil {
			return s, false, fmt.Errorf("image %q: %v", id, err)
		}
		if s.Height, err = dimension(n, "height"); err != nil {
			return s, false, fmt.Errorf("image %q: %v", id, err)
		}
		return s, true, nil

	case "text":
		s := Slot{ID: id, Kind: TextSlot, Default: n.textContent()}
		if id == "" {
			s.Kind = Label
			s.Default = strings.TrimSpace(s.Default)
		}
		var err error
		if s.X, err = number(n, "x", 0); err != nil {
			return s, false, err
		}
		if s.Y, err = number(n, "y", 0); err != nil {
			return s, false, err
		}
		if s.MaxWidth, err = number(n, "data-max-width", 0); err != nil {
			return s, false, err
		}
		size, err := number(n, "font-size", defaultFontSize)
		if err != nil {
			return s, false, err
		}
		s.FontSize = float64(size)
		if s.LineHeight, err = number(n, "data-line-height", int(math.Round(s.FontSize*4/3))); err != nil {
			return s, false, err
		}
		s.Anchor, _ = n.attr("text-anchor")
		if s.Anchor == "" {
			s.Anchor = "start"
		}
		s.Font = fontRole(n)
		return s, true, nil
	}

	return Slot{}, false, nil
}

func fontRole(n *node) layout.Role {
	if role, ok := n.attr("data-font"); ok && role != "" {
		return layout.Role(role)
	}
	if weight, _ := n.attr("font-weight"); weight == "bold" || weight == "700" {
		return layout.RoleTitle
	}
	return layout.RoleText
}

// number parses a numeric attribute ("12", "12.5", "12px"), rounding to whole pixels
func number(n *node, attr string, def int) (int, error) {
	v, ok := n.attr(attr)
	if !ok || strings.TrimSpace(v) == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "px"), 64)
	if err != nil {
		return 0, fmt.Errorf("attribute %s=%q is not a number", attr, v)
	}
	return int(math.Round(f)), nil
}

func dimension(n *node, attr string) (int, error) {
	v, err := number(n, attr, 0)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("missing or non-positive %s on <%s>", attr, n.name.Local)
	}
	return v, nil
}

// Slots returns every slot in document order
func (t *Template) Slots() []Slot {
	return append([]Slot(nil), t.slots...)
}

// TextSlots returns the substitutable text slots in document order
func (t *Template) TextSlots() []Slot {
	var out []Slot
	for _, s := range t.slots {
		if s.Kind == TextSlot {
			out = append(out, s)
		}
	}
	return out
}

// Slot looks a slot up by id
func (t *Template) Slot(id string) (Slot, bool) {
	i, ok := t.index[id]
	if !ok {
		return Slot{}, false
	}
	return t.slots[i], true
}

// Background returns the image slot
func (t *Template) Background() Slot {
	s, _ := t.Slot(BackgroundSlot)
	return s
}
