package schema

import "sync"

// TableRegistry maps table names to their typed specs, built from a compiled
// schema. Lookups return an explicit not-found result; the hydration engine
// consults this before querying so a missing relation table degrades to an
// empty field instead of a failed query. Load replaces the contents after a
// recompile; readers always see a consistent snapshot.
type TableRegistry struct {
	mu     sync.RWMutex
	byName map[string]*TableSpec
}

// NewTableRegistry indexes a compiled schema by table name.
func NewTableRegistry(sch *Schema) *TableRegistry {
	reg := &TableRegistry{}
	reg.Load(sch)
	return reg
}

// Load replaces the registry contents with the tables of a new compile pass.
func (r *TableRegistry) Load(sch *Schema) {
	byName := make(map[string]*TableSpec, len(sch.Tables))
	for i := range sch.Tables {
		byName[sch.Tables[i].Name] = &sch.Tables[i]
	}
	r.mu.Lock()
	r.byName = byName
	r.mu.Unlock()
}

// Lookup returns the table spec for name, with ok=false when the schema does
// not contain the table.
func (r *TableRegistry) Lookup(name string) (*TableSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// Has reports whether the schema contains the named table.
func (r *TableRegistry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Len returns the number of registered tables.
func (r *TableRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
