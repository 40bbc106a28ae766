package template

// Field type vocabulary. Unknown values are tolerated and degrade to a plain
// text column at compile time (see schema.GenerateTables).
const (
	TypeString   = "string"
	TypeText     = "text"
	TypeRichText = "richText"
	TypeNumber   = "number"
	TypeBoolean  = "boolean"
	TypeDate     = "date"
	TypeSelect   = "select"
	TypeTags     = "tags"
	TypeFile     = "file"
	TypeArray    = "array"
	TypeObject   = "object"
	TypeRelation = "relation"
	TypeBlocks   = "blocks"
)

// Relation kinds.
const (
	RelationOneToOne   = "one-to-one"
	RelationOneToMany  = "one-to-many"
	RelationManyToMany = "many-to-many"
)

// FieldDefinition is one node of an author-declared field tree. The same shape
// is consumed by the schema compiler and, serialized as the stored schema
// document, by the hydration engine at read time.
type FieldDefinition struct {
	Type       string                      `json:"type"`
	Required   bool                        `json:"required,omitempty"`
	Default    any                         `json:"default,omitempty"`
	Hidden     bool                        `json:"hidden,omitempty"`
	Items      *FieldDefinition            `json:"items,omitempty"`
	Properties map[string]*FieldDefinition `json:"properties,omitempty"`
	Relation   *RelationSpec               `json:"relation,omitempty"`
	File       *FileSpec                   `json:"file,omitempty"`
}

// RelationSpec describes a reference field. Exactly one of TargetCollection or
// TargetGlobal is set.
type RelationSpec struct {
	Kind             string `json:"kind"`
	TargetCollection string `json:"targetCollection,omitempty"`
	TargetGlobal     string `json:"targetGlobal,omitempty"`
}

// FileSpec configures a file field. Multiplicity is a hydration-time concern
// only; toggling it never requires a migration.
type FileSpec struct {
	Multiple bool `json:"multiple"`
}

// IsArrayOfObjects reports whether the field is an array whose items are
// objects, i.e. it spawns a child table.
func (f *FieldDefinition) IsArrayOfObjects() bool {
	return f.Type == TypeArray && f.Items != nil && f.Items.Type == TypeObject
}

// IsSimpleArray reports whether the field is an array of scalars, stored as a
// single serialized column.
func (f *FieldDefinition) IsSimpleArray() bool {
	return f.Type == TypeArray && !f.IsArrayOfObjects()
}

// IsManyToMany reports whether the field is a many-to-many relation.
func (f *FieldDefinition) IsManyToMany() bool {
	return f.Type == TypeRelation && f.Relation != nil && f.Relation.Kind == RelationManyToMany
}

// SpawnsTable reports whether the field produces a secondary physical table
// rather than a column on its owning table.
func (f *FieldDefinition) SpawnsTable() bool {
	return f.Type == TypeFile || f.IsArrayOfObjects() || f.IsManyToMany()
}

// RelationKind returns the relation kind, defaulting to one-to-one when the
// descriptor is present but unset.
func (f *FieldDefinition) RelationKind() string {
	if f.Relation == nil {
		return ""
	}
	if f.Relation.Kind == "" {
		return RelationOneToOne
	}
	return f.Relation.Kind
}

// TargetKind returns the content kind ("collection" or "global") a relation
// field points at, and the target slug.
func (r *RelationSpec) TargetKind() (kind, slug string) {
	if r.TargetGlobal != "" {
		return KindGlobal, r.TargetGlobal
	}
	return KindCollection, r.TargetCollection
}

// ColumnKind maps a field type to the abstract column kind the dialect adapter
// translates into a native type. Anything unrecognized stays text.
func (f *FieldDefinition) ColumnKind() string {
	switch f.Type {
	case TypeNumber:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeArray, TypeBlocks:
		return "json"
	default:
		return "text"
	}
}
