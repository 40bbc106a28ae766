package template

import (
	"sort"
	"sync"
)

// Registry is the injected type registry: an in-memory index of every
// registered template keyed by (kind, slug). It is loaded once at startup and
// replaced wholesale after admin mutations; readers see a consistent snapshot.
type Registry struct {
	mu        sync.RWMutex
	templates map[string]map[string]*TemplateDefinition // kind -> slug -> def
}

func NewRegistry() *Registry {
	return &Registry{templates: make(map[string]map[string]*TemplateDefinition)}
}

// Get returns the template with the given kind and slug, or nil.
func (r *Registry) Get(kind, slug string) *TemplateDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templates[kind][slug]
}

// Collection returns the collection template with the given slug, or nil.
func (r *Registry) Collection(slug string) *TemplateDefinition {
	return r.Get(KindCollection, slug)
}

// Global returns the global template with the given slug, or nil.
func (r *Registry) Global(slug string) *TemplateDefinition {
	return r.Get(KindGlobal, slug)
}

// Block returns the block template with the given slug, or nil.
func (r *Registry) Block(slug string) *TemplateDefinition {
	return r.Get(KindBlock, slug)
}

// ByKind returns all templates of one kind, sorted by slug.
func (r *Registry) ByKind(kind string) []*TemplateDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]*TemplateDefinition, 0, len(r.templates[kind]))
	for _, def := range r.templates[kind] {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Slug < defs[j].Slug })
	return defs
}

// All returns every registered template sorted by kind then slug.
func (r *Registry) All() []*TemplateDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var defs []*TemplateDefinition
	for _, bySlug := range r.templates {
		for _, def := range bySlug {
			defs = append(defs, def)
		}
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].Kind != defs[j].Kind {
			return defs[i].Kind < defs[j].Kind
		}
		return defs[i].Slug < defs[j].Slug
	})
	return defs
}

// Load replaces all templates in the registry. Called during startup and
// after admin mutations.
func (r *Registry) Load(defs []*TemplateDefinition) {
	templates := make(map[string]map[string]*TemplateDefinition)
	for _, def := range defs {
		if templates[def.Kind] == nil {
			templates[def.Kind] = make(map[string]*TemplateDefinition)
		}
		templates[def.Kind][def.Slug] = def
	}

	r.mu.Lock()
	r.templates = templates
	r.mu.Unlock()
}
