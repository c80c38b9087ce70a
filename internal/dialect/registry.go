package dialect

import (
	"errors"
	"sync"

	"github.com/riokid4/science-os/internal/ir"
)

// ErrSealed is returned by registration after the registry's first lookup.
// Registration must happen during single-threaded initialization, before
// any module is parsed or verified.
var ErrSealed = errors.New("dialect registry is sealed: registration must precede first lookup")

// Registry maps operation kinds to schemas and entity type names to type
// descriptors. It seals on first lookup; a sealed registry is read-only and
// safe for concurrent lookups.
type Registry struct {
	mu     sync.RWMutex
	sealed bool
	ops    map[string]OpSchema
	types  map[string]TypeDescriptor
}

// NewRegistry creates an empty registry. Most callers want Default, which
// carries the builtin science vocabulary.
func NewRegistry() *Registry {
	return &Registry{
		ops:   make(map[string]OpSchema),
		types: make(map[string]TypeDescriptor),
	}
}

// defaultRegistry is the process-wide registry, populated with the builtin
// science vocabulary at package init.
var defaultRegistry = NewScienceRegistry()

// Default returns the process-wide registry carrying the science dialect.
// Extensions register into it before any parsing occurs.
func Default() *Registry { return defaultRegistry }

// RegisterOp registers an operation schema. Re-registering an identical
// schema is a no-op; a different schema under an existing name fails with
// DuplicateRegistrationError. Fails with ErrSealed after the first lookup.
func (r *Registry) RegisterOp(s OpSchema) error {
	if err := s.validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if existing, ok := r.ops[s.Name]; ok {
		if existing.Equal(s) {
			return nil
		}
		return &ir.DuplicateRegistrationError{Name: s.Name}
	}
	r.ops[s.Name] = s
	return nil
}

// RegisterType registers an entity type descriptor. Type descriptors carry
// a parse function and are not comparable, so re-registering an existing
// name always fails with DuplicateRegistrationError. Fails with ErrSealed
// after the first lookup.
func (r *Registry) RegisterType(d TypeDescriptor) error {
	if d.Name == "" || d.Parse == nil {
		return errors.New("type descriptor needs a name and a parse function")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if _, ok := r.types[d.Name]; ok {
		return &ir.DuplicateRegistrationError{Name: d.Name}
	}
	r.types[d.Name] = d
	return nil
}

// OpSchema looks up the schema for an operation kind, sealing the registry.
// Fails with UnknownOperationError for unregistered kinds - there is no
// default schema to fall back to.
func (r *Registry) OpSchema(kind string) (OpSchema, error) {
	r.seal()
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.ops[kind]
	if !ok {
		return OpSchema{}, &ir.UnknownOperationError{Name: kind}
	}
	return s, nil
}

// ParseType constructs an entity type from a registered type name and its
// parameter text, sealing the registry. Fails with UnknownTypeError for
// unregistered names.
func (r *Registry) ParseType(name, param string) (ir.EntityType, error) {
	r.seal()
	r.mu.RLock()
	d, ok := r.types[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &ir.UnknownTypeError{Name: name}
	}
	return d.Parse(param)
}

// Sealed reports whether the registry has served a lookup.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// OpKinds returns the registered operation kind names, for diagnostics.
func (r *Registry) OpKinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]string, 0, len(r.ops))
	for k := range r.ops {
		kinds = append(kinds, k)
	}
	return kinds
}

func (r *Registry) seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}
