package hydrate

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

// Non-fatal hydration failures. Each degrades a single field to its empty
// default; sibling fields and the row itself always survive.
var (
	ErrMissingTable     = errors.New("relation table missing")
	ErrUnresolvedTarget = errors.New("relation target not found")
)

// DefaultMaxDepth bounds the recursive descent through relation graphs. The
// visited set catches direct cycles; the depth cap catches long mutual chains.
const DefaultMaxDepth = 8

// Options controls one hydration call.
type Options struct {
	// LoadFullObjects replaces file ids with full file records.
	LoadFullObjects bool

	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

func (o Options) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return DefaultMaxDepth
}

// Hydrator reassembles the nested object a template describes from the
// normalized rows the schema compiler produced. All dependencies are
// injected; it holds no ambient state and performs read-only queries.
type Hydrator struct {
	db      store.Querier
	dialect store.Dialect
	types   *template.Registry
	tables  *schema.TableRegistry
}

func New(db store.Querier, dialect store.Dialect, types *template.Registry, tables *schema.TableRegistry) *Hydrator {
	return &Hydrator{db: db, dialect: dialect, types: types, tables: tables}
}

// visitSet records every (table, id) pair entered during one hydration call,
// shared across the whole recursion so a self-referential relation
// short-circuits instead of recursing forever.
type visitSet struct {
	mu   sync.Mutex
	seen map[visitKey]bool
}

type visitKey struct {
	table string
	id    string
}

// enter marks the pair and reports whether it was already present.
func (v *visitSet) enter(table string, id any) bool {
	key := visitKey{table: table, id: stringID(id)}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seen[key] {
		return true
	}
	v.seen[key] = true
	return false
}

// visitState carries the depth and the shared visited set through recursion.
type visitState struct {
	depth   int
	visited *visitSet
}

func newVisitState() *visitState {
	return &visitState{visited: &visitSet{seen: make(map[visitKey]bool)}}
}

func (s *visitState) deeper() *visitState {
	return &visitState{depth: s.depth + 1, visited: s.visited}
}

// HydrateRow resolves every declared field of one entity row in place and
// returns the row. A single field's failure is logged and replaced by a
// type-appropriate empty value; the call itself never fails.
func (h *Hydrator) HydrateRow(ctx context.Context, row map[string]any, def *template.TemplateDefinition, opts Options) map[string]any {
	if row == nil || def == nil {
		return row
	}
	prefix := schema.BaseTable(def.Kind, def.Slug)
	st := newVisitState()
	st.visited.enter(prefix, row["id"])
	h.hydrate(ctx, row, def.Fields, prefix, def.Kind, opts, st)
	h.applyComputed(row, def.Options.Computed)
	return row
}

// loadTask is one deferred secondary-table field load.
type loadTask struct {
	col  string
	load func() (any, error)
	zero func() any
}

// hydrate runs the per-field dispatch over one field tree. Scalar fixups run
// inline; fields backed by secondary tables fan out concurrently and write
// back under a shared lock. Recursive calls re-enter here with the child
// table as the new prefix.
func (h *Hydrator) hydrate(ctx context.Context, row map[string]any, fields map[string]*template.FieldDefinition, tablePrefix, kind string, opts Options, st *visitState) {
	rowID := row["id"]
	var tasks []loadTask

	for _, name := range template.SortedFieldNames(fields) {
		f := fields[name]
		col := schema.Normalize(name)

		if f.Hidden {
			delete(row, col)
			continue
		}

		switch {
		case f.Type == template.TypeFile:
			f := f
			tasks = append(tasks, loadTask{
				col:  col,
				load: func() (any, error) { return h.loadFileField(ctx, col, tablePrefix, kind, rowID, f, opts) },
				zero: func() any { return emptyFileValue(f) },
			})

		case f.IsArrayOfObjects():
			f := f
			tasks = append(tasks, loadTask{
				col:  col,
				load: func() (any, error) { return h.loadArrayField(ctx, col, tablePrefix, kind, rowID, f, opts, st) },
				zero: func() any { return []any{} },
			})

		case f.IsManyToMany():
			f := f
			tasks = append(tasks, loadTask{
				col:  col,
				load: func() (any, error) { return h.loadManyToMany(ctx, col, tablePrefix, kind, rowID, f, opts, st) },
				zero: func() any { return []any{} },
			})

		case f.Type == template.TypeRelation:
			f := f
			value := row[col]
			tasks = append(tasks, loadTask{
				col:  col,
				load: func() (any, error) { return h.resolveRelation(ctx, value, f, opts, st) },
				zero: func() any { return nil },
			})

		case f.IsSimpleArray():
			values, err := h.dialect.ScanArray(row[col])
			if err != nil {
				log.Printf("WARN: hydrate %s.%s: %v", tablePrefix, col, err)
				values = []string{}
			}
			row[col] = values

		case f.Type == template.TypeBoolean && h.dialect.NeedsBoolFix():
			switch v := row[col].(type) {
			case int64:
				row[col] = v != 0
			case float64:
				row[col] = v != 0
			}
		}
	}

	if len(tasks) == 0 {
		return
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, task := range tasks {
		task := task
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := task.load()
			if err != nil {
				log.Printf("WARN: hydrate %s.%s: %v", tablePrefix, task.col, err)
				v = task.zero()
			}
			mu.Lock()
			row[task.col] = v
			mu.Unlock()
		}()
	}
	wg.Wait()
}

// stringID normalizes any id representation for visited-set keys.
func stringID(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
