// Package macro expands macro tags such as <date format=%d/%m/%y> or <cursor>
// embedded in phrase text.
package macro

import (
	"context"
	"sort"
	"sync"
)

// Macro is one expansion of a macro tag.
type Macro interface {
	Expand(ctx context.Context) (string, error)
}

// Factory builds a Macro for one tag occurrence. It validates args and
// returns *MissingArgumentError when a required argument is absent.
type Factory func(eng *Engine, args Args) (Macro, error)

// Definition describes a registered macro kind.
type Definition struct {
	Name        string
	Description string
	Required    []string
	Optional    []string
	Source      string // "builtin" or the .star file that defined it
	New         Factory
}

// Registry maps tag names to macro definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// DefaultRegistry returns a registry holding the built-in macros.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	mustRegisterAll(r, Builtins())
	return r
}

// mustRegisterAll registers definitions that are fixed at compile time.
func mustRegisterAll(r *Registry, defs []Definition) {
	if err := r.RegisterAll(defs); err != nil {
		panic("macro: invalid built-in macros: " + err.Error())
	}
}

// Builtins returns the definitions of the built-in macros.
func Builtins() []Definition {
	return []Definition{
		dateDefinition,
		cursorDefinition,
		fileDefinition,
		scriptDefinition,
		systemDefinition,
	}
}

// Register adds a definition. Names must be unique tag identifiers.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return &RegistryError{Name: def.Name, Message: "name cannot be empty"}
	}
	for i := 0; i < len(def.Name); i++ {
		if !isNameChar(def.Name[i]) {
			return &RegistryError{Name: def.Name, Message: "name contains invalid character"}
		}
	}
	if def.New == nil {
		return &RegistryError{Name: def.Name, Message: "missing factory"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.defs[def.Name]; ok {
		return &RegistryError{Name: def.Name, Message: "already registered by " + existing.Source}
	}
	r.defs[def.Name] = def
	return nil
}

// RegisterAll registers definitions in order, stopping at the first error.
func (r *Registry) RegisterAll(defs []Definition) error {
	for _, def := range defs {
		if err := r.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Len returns the number of registered macros.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}

// Definitions returns all definitions sorted by name.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]Definition, 0, len(r.defs))
	for _, def := range r.defs {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Dispatch builds and expands the macro for tag. A tag whose name is not
// registered expands to its own source text.
func (r *Registry) Dispatch(ctx context.Context, eng *Engine, tag *Tag) (string, error) {
	def, ok := r.Lookup(tag.Name)
	if !ok {
		return tag.Raw, nil
	}

	m, err := def.New(eng, tag.Args)
	if err != nil {
		return "", err
	}
	return m.Expand(ctx)
}
