package template

import "sort"

// Content kinds. Every template belongs to exactly one.
const (
	KindCollection = "collection"
	KindGlobal     = "global"
	KindBlock      = "block"
)

// Data types controlling which core fields are auto-injected.
const (
	DataFlat       = "flat"
	DataRepeatable = "repeatable"
	DataRelational = "relational"
)

// Options carries per-template behavior that is not part of the field tree.
type Options struct {
	// Computed maps output field names to expressions evaluated against the
	// hydrated row. Evaluated last, after all physical fields resolve.
	Computed map[string]string `json:"computed,omitempty"`
}

// TemplateDefinition is one author-declared content type: a named tree of
// field definitions plus the structural data type.
type TemplateDefinition struct {
	Slug     string                      `json:"slug"`
	Name     string                      `json:"name"`
	Kind     string                      `json:"kind"`
	DataType string                      `json:"dataType"`
	Options  Options                     `json:"options,omitempty"`
	Fields   map[string]*FieldDefinition `json:"fields"`
}

// GetField returns the field definition with the given name, or nil.
func (t *TemplateDefinition) GetField(name string) *FieldDefinition {
	return t.Fields[name]
}

// HasField returns true if the template declares a field with the given name.
func (t *TemplateDefinition) HasField(name string) bool {
	return t.Fields[name] != nil
}

// FieldNames returns the declared field names in sorted order. Compilation
// iterates in this order so identical templates always compile identically.
func (t *TemplateDefinition) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SortedFieldNames returns property names of a field map in sorted order.
// Used for the recursive walk over array-item properties.
func SortedFieldNames(fields map[string]*FieldDefinition) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ValidKind reports whether s is a recognized content kind.
func ValidKind(s string) bool {
	return s == KindCollection || s == KindGlobal || s == KindBlock
}

// ValidDataType reports whether s is a recognized data type.
func ValidDataType(s string) bool {
	return s == DataFlat || s == DataRepeatable || s == DataRelational
}
