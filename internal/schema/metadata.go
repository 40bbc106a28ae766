package schema

import "sort"

// Owner types recorded per table.
const (
	OwnerCore       = "core"
	OwnerCollection = "collection"
	OwnerGlobal     = "global"
	OwnerBlock      = "block"
	OwnerRelation   = "relation"
	OwnerJunction   = "junction"
)

// Relation record kinds.
const (
	RelStandard   = "standard"
	RelFile       = "file"
	RelManyToMany = "many-to-many"
)

// TableMetadata is the bookkeeping record for one physical table produced
// during a compile pass.
type TableMetadata struct {
	TableName  string
	OwnerType  string
	FieldNames []string
}

// RelationRecord describes one relation between tables discovered during
// generation.
type RelationRecord struct {
	SourceTable      string
	FieldName        string
	Kind             string
	TargetTable      string
	ForeignKeyColumn string
}

// Metadata accumulates every table and relation produced during a single
// compile pass. It lives only for the duration of the pass and is not safe
// for concurrent compiles; compilation is single-writer.
type Metadata struct {
	tables    []TableMetadata
	byName    map[string]int
	relations []RelationRecord
}

func NewMetadata() *Metadata {
	return &Metadata{byName: make(map[string]int)}
}

// RecordTable registers a table. Returns false if a table with the same name
// was already recorded this pass.
func (m *Metadata) RecordTable(tm TableMetadata) bool {
	if _, ok := m.byName[tm.TableName]; ok {
		return false
	}
	m.byName[tm.TableName] = len(m.tables)
	m.tables = append(m.tables, tm)
	return true
}

// RecordRelation registers a relation between tables.
func (m *Metadata) RecordRelation(rr RelationRecord) {
	m.relations = append(m.relations, rr)
}

// Table returns the metadata for a table name recorded this pass.
func (m *Metadata) Table(name string) (TableMetadata, bool) {
	i, ok := m.byName[name]
	if !ok {
		return TableMetadata{}, false
	}
	return m.tables[i], true
}

// Tables returns all recorded tables sorted by name.
func (m *Metadata) Tables() []TableMetadata {
	out := make([]TableMetadata, len(m.tables))
	copy(out, m.tables)
	sort.Slice(out, func(i, j int) bool { return out[i].TableName < out[j].TableName })
	return out
}

// Relations returns all recorded relations in discovery order.
func (m *Metadata) Relations() []RelationRecord {
	out := make([]RelationRecord, len(m.relations))
	copy(out, m.relations)
	return out
}
