package card

import "sort"

// Record represents one card's data as loaded from the data file
type Record struct {
	category Category
	id       string
	fields   map[string]string
}

// NewRecord builds a record; the field map is copied so the record stays immutable
func NewRecord(c Category, fields map[string]string) Record {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Record{category: c, id: copied[FieldID], fields: copied}
}

// ID returns the card identifier
func (r Record) ID() string { return r.id }

// Category returns the card category
func (r Record) Category() Category { return r.category }

// Field returns the value of a field and whether it is present and non-empty
func (r Record) Field(name string) (string, bool) {
	v, ok := r.fields[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Title returns the category title field, or the id when the title is missing
func (r Record) Title() string {
	if t, ok := r.Field(r.category.Schema().TitleField); ok {
		return t
	}
	return r.id
}

// Fields returns a copy of all fields
func (r Record) Fields() map[string]string {
	out := make(map[string]string, len(r.fields))
	for k, v := range r.fields {
		out[k] = v
	}
	return out
}

// Names returns the field names in sorted order
func (r Record) Names() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
