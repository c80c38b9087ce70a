package ir

// Value is an SSA value in a module: either a constant entity declaration or
// the result of a mechanistic operation. Values are immutable after
// definition and owned exclusively by their module.
type Value struct {
	// Name is the symbol without the leading '%'.
	Name string

	// Type is the entity type of the value. For operation results this is
	// the declared result type, which verification checks against the
	// schema's computed result type.
	Type EntityType

	// Op is the defining operation, nil for constants.
	Op *Operation
}

// IsConstant reports whether the value is a module-level constant.
func (v *Value) IsConstant() bool { return v.Op == nil }

// Operation is one typed node in the IR graph: a mechanistic relation
// between earlier-defined entities. Operations are immutable once added to
// a module; verification never mutates them.
type Operation struct {
	// Kind is the registered vocabulary name, e.g. "phosphorylate".
	Kind string

	// Operands reference earlier-defined values, strictly backward.
	Operands []*Value

	// Site is the optional residue position (e.g. "S15"). Empty means
	// absent; whether it is required or forbidden is decided by the
	// schema registered for Kind.
	Site string

	// Context and Evidence are the two structured metadata blocks carried
	// by every operation.
	Context  ContextAttribute
	Evidence EvidenceAttribute

	// Result is set when the operation is added to a module.
	Result *Value

	// Line is the 1-based source line when parsed from text, 0 otherwise.
	Line int
}

// Module is the top-level ordered container of constant declarations and
// operations, forming a flat DAG of value definitions and uses.
//
// Modules are not safe for concurrent mutation; construct and verify a
// module on one goroutine. Independent modules share no state and may be
// built concurrently.
type Module struct {
	byName map[string]*Value
	defs   []*Value
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{byName: make(map[string]*Value)}
}

// DefineConstant defines a constant entity under a unique symbol name.
// Fails with DuplicateSymbolError on collision.
func (m *Module) DefineConstant(name string, t EntityType) (*Value, error) {
	if _, exists := m.byName[name]; exists {
		return nil, &DuplicateSymbolError{Symbol: name}
	}
	v := &Value{Name: name, Type: t}
	m.byName[name] = v
	m.defs = append(m.defs, v)
	return v, nil
}

// DefineOperation appends an operation and defines its result under a
// unique symbol name with the declared result type. Fails with
// DuplicateSymbolError on collision. Operand references must already have
// been resolved via Use, so definition order is enforced by construction.
func (m *Module) DefineOperation(name string, op *Operation, result EntityType) (*Value, error) {
	if _, exists := m.byName[name]; exists {
		return nil, &DuplicateSymbolError{Symbol: name}
	}
	v := &Value{Name: name, Type: result, Op: op}
	op.Result = v
	m.byName[name] = v
	m.defs = append(m.defs, v)
	return v, nil
}

// Use resolves a previously defined symbol. Fails with UndefinedSymbolError
// when the symbol has no definition at this point in the module - a
// definition appearing later does not satisfy an earlier use.
func (m *Module) Use(name string) (*Value, error) {
	v, ok := m.byName[name]
	if !ok {
		return nil, &UndefinedSymbolError{Symbol: name}
	}
	return v, nil
}

// Defs returns all values in definition order (constants and results).
func (m *Module) Defs() []*Value { return m.defs }

// Constants returns the constant declarations in definition order.
func (m *Module) Constants() []*Value {
	var out []*Value
	for _, v := range m.defs {
		if v.IsConstant() {
			out = append(out, v)
		}
	}
	return out
}

// Operations returns the operations in definition order.
func (m *Module) Operations() []*Operation {
	var out []*Operation
	for _, v := range m.defs {
		if v.Op != nil {
			out = append(out, v.Op)
		}
	}
	return out
}

// Len returns the number of definitions in the module.
func (m *Module) Len() int { return len(m.defs) }

// Equal reports structural equality: same definitions in the same order,
// with equal types, operands, sites, and attributes. Source line numbers
// are ignored, so a parsed module compares equal to its reprinted and
// reparsed form.
func (m *Module) Equal(o *Module) bool {
	if len(m.defs) != len(o.defs) {
		return false
	}
	for i, v := range m.defs {
		w := o.defs[i]
		if v.Name != w.Name || !v.Type.Equal(w.Type) {
			return false
		}
		if (v.Op == nil) != (w.Op == nil) {
			return false
		}
		if v.Op == nil {
			continue
		}
		if !operationEqual(v.Op, w.Op) {
			return false
		}
	}
	return true
}

func operationEqual(a, b *Operation) bool {
	if a.Kind != b.Kind || a.Site != b.Site {
		return false
	}
	if !a.Context.Equal(b.Context) || !a.Evidence.Equal(b.Evidence) {
		return false
	}
	if len(a.Operands) != len(b.Operands) {
		return false
	}
	for i, operand := range a.Operands {
		if operand.Name != b.Operands[i].Name || !operand.Type.Equal(b.Operands[i].Type) {
			return false
		}
	}
	return true
}
