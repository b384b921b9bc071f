package deck

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arcanaland/cardpress/internal/card"
)

var (
	ErrDataNotFound = errors.New("card data not found")
	ErrDataFormat   = errors.New("invalid card data")
)

// Deck represents the ordered card records of one category
type Deck struct {
	Category card.Category
	Path     string
	Records  []card.Record

	index map[string]int
}

// Load loads a deck from a JSON file holding an array of flat card objects
func Load(path string, category card.Category) (*Deck, error) {
	if !category.Valid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrDataNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %v", path, err)
	}

	d, err := Parse(data, category)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	d.Path = path
	return d, nil
}

// Parse decodes card records from raw JSON
func Parse(data []byte, category card.Category) (*Deck, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected an array of records", ErrDataFormat)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected content after the records", ErrDataFormat)
	}

	d := &Deck{
		Category: category,
		Records:  make([]card.Record, 0, len(raw)),
		index:    make(map[string]int, len(raw)),
	}

	for i, obj := range raw {
		fields, err := flatten(obj)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrDataFormat, i, err)
		}

		id := fields[card.FieldID]
		if id == "" {
			return nil, fmt.Errorf("%w: record %d has no %q", ErrDataFormat, i, card.FieldID)
		}
		if !safeID(id) {
			return nil, fmt.Errorf("%w: record %d: id %q cannot be used as a file name", ErrDataFormat, i, id)
		}
		if prev, dup := d.index[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q (records %d and %d)", ErrDataFormat, id, prev, i)
		}

		d.index[id] = len(d.Records)
		d.Records = append(d.Records, card.NewRecord(category, fields))
	}

	return d, nil
}

// safeID reports whether id names a single file inside the output directory
func safeID(id string) bool {
	if id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return false
	}
	return filepath.Base(id) == id
}

// flatten converts decoded JSON values to strings; only scalars are allowed
func flatten(obj map[string]any) (map[string]string, error) {
	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case nil:
			// null counts as absent
		case string:
			fields[k] = val
		case json.Number:
			fields[k] = val.String()
		default:
			return nil, fmt.Errorf("field %q: unsupported value type %T", k, v)
		}
	}
	return fields, nil
}

// Get gets a record by its id
func (d *Deck) Get(id string) (card.Record, error) {
	i, ok := d.index[id]
	if !ok {
		return card.Record{}, fmt.Errorf("card not found: %s", id)
	}
	return d.Records[i], nil
}

// IDs returns the record ids in source order
func (d *Deck) IDs() []string {
	ids := make([]string, len(d.Records))
	for i, r := range d.Records {
		ids[i] = r.ID()
	}
	return ids
}

// Len returns the number of records
func (d *Deck) Len() int { return len(d.Records) }
