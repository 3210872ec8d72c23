package atlas

import (
	"context"
	"sort"
)

// Capability is a build feature tag. A module carrying a capability is only
// available in builds that enable it; an empty capability means the module
// is always available.
type Capability string

// Module is one named schema namespace contributed to the registry.
type Module struct {
	// Name is the top-level path component rules use to address the module.
	// Unique across the registry.
	Name string

	// Root is the module's root schema type.
	Root *Type

	// Capability gates whether the module is available in a given build.
	Capability Capability

	// BindingKey is the opaque key producers use to attach concrete values
	// at scan time. The registry never interprets it.
	BindingKey string
}

// Registry is the immutable catalog of registered modules. It is built
// exactly once, single-threaded, at engine initialization; after a
// successful build it is shared without synchronization across arbitrarily
// many concurrent rule-compilation tasks. No mutation path exists
// post-build.
type Registry struct {
	modules     map[string]Module
	names       []string // sorted module names, for diagnostics
	fingerprint string
}

// New builds a registry from the given modules, validating the whole schema
// graph. It fails permanently on a duplicate module name, a duplicate field
// name within a message, a duplicate enum ordinal, an inline enumerator name
// colliding with a sibling symbol, or a dangling reference. An engine must
// treat a build failure as fatal.
func New(modules ...Module) (*Registry, error) {
	r := &Registry{
		modules: make(map[string]Module, len(modules)),
		names:   make([]string, 0, len(modules)),
	}

	for _, m := range modules {
		if _, dup := r.modules[m.Name]; dup {
			return nil, &LoadError{Err: ErrDuplicateModule, Module: m.Name}
		}
		if m.Root == nil {
			return nil, &LoadError{Err: ErrDanglingReference, Module: m.Name, Symbol: "root type"}
		}
		if err := buildType(m.Name, m.Root, make(map[*Type]bool)); err != nil {
			return nil, err
		}
		r.modules[m.Name] = m
		r.names = append(r.names, m.Name)
		emitModuleRegistered(context.Background(), m.Name, string(m.Capability))
	}
	sort.Strings(r.names)

	r.fingerprint = fingerprint(r)
	emitRegistryBuilt(context.Background(), len(r.names), r.fingerprint)
	return r, nil
}

// Lookup returns the module registered under name.
func (r *Registry) Lookup(name string) (Module, bool) {
	m, ok := r.modules[name]
	return m, ok
}

// RootType returns the root schema type of the named module.
func (r *Registry) RootType(name string) (*Type, bool) {
	m, ok := r.modules[name]
	if !ok {
		return nil, false
	}
	return m.Root, true
}

// Modules returns the registered module names, sorted.
func (r *Registry) Modules() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

// Enabled reports whether the named module is available in a build carrying
// the given capabilities. Modules without a capability tag are always
// available.
func (r *Registry) Enabled(name string, caps ...Capability) bool {
	m, ok := r.modules[name]
	if !ok {
		return false
	}
	if m.Capability == "" {
		return true
	}
	for _, c := range caps {
		if c == m.Capability {
			return true
		}
	}
	return false
}

// Fingerprint returns a stable digest of the frozen schema graph. Two
// registries built from identical declarations share a fingerprint, so a
// compiler can key memoized descriptors across runs.
func (r *Registry) Fingerprint() string {
	return r.fingerprint
}

// buildType validates one schema node and freezes its lookup table.
// The visited set keeps recursive message types from looping.
func buildType(module string, t *Type, visited map[*Type]bool) error {
	if t == nil {
		return &LoadError{Err: ErrDanglingReference, Module: module}
	}
	if visited[t] {
		return nil
	}
	visited[t] = true

	switch t.Kind {
	case KindBool, KindInt, KindFloat, KindString, KindBytes:
		return nil

	case KindMessage:
		return buildMessage(module, t, visited)

	case KindRepeated:
		if t.Elem == nil {
			return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: "repeated element"}
		}
		return buildType(module, t.Elem, visited)

	case KindMap:
		if t.Elem == nil {
			return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: "map element"}
		}
		if !t.MapKey.IsScalar() {
			return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: "map key kind " + t.MapKey.String()}
		}
		return buildType(module, t.Elem, visited)

	case KindEnum:
		if t.Enum == nil {
			return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: "enum"}
		}
		return t.Enum.validate(module)

	default:
		return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: "invalid kind"}
	}
}

// buildMessage enforces the per-message invariants: field names unique,
// inline enumerator names free of sibling collisions. It populates the
// symbol table used by resolution.
func buildMessage(module string, t *Type, visited map[*Type]bool) error {
	t.symbols = make(map[string]symbol, len(t.Fields))

	// Fields claim their names first so inline enumerators collide
	// deterministically regardless of declaration order.
	for i := range t.Fields {
		f := &t.Fields[i]
		if _, dup := t.symbols[f.Name]; dup {
			return &LoadError{Err: ErrDuplicateField, Module: module, Symbol: f.Name}
		}
		t.symbols[f.Name] = symbol{field: f}
	}

	for i := range t.Fields {
		f := &t.Fields[i]
		if f.Type == nil {
			return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: f.Name}
		}
		if err := validateAnnotation(module, f); err != nil {
			return err
		}
		if err := buildType(module, f.Type, visited); err != nil {
			return err
		}
		if f.Type.Kind == KindEnum && f.Type.Enum.Inline {
			e := f.Type.Enum
			for j := range e.Enumerators {
				en := &e.Enumerators[j]
				if existing, taken := t.symbols[en.Name]; taken && existing.enumr != en {
					return &LoadError{Err: ErrSymbolCollision, Module: module, Symbol: en.Name}
				}
				t.symbols[en.Name] = symbol{typ: f.Type, enumr: en}
			}
		}
	}
	return nil
}

// validateAnnotation checks a field's annotation at build time so that
// resolution and formatting never see a malformed one.
func validateAnnotation(module string, f *Field) error {
	ann := f.Annotation
	if ann == nil {
		return nil
	}
	if ann.Format != "" && !IsValidFormatHint(ann.Format) {
		return &LoadError{Err: ErrInvalidHint, Module: module, Symbol: f.Name}
	}
	if ann.Format == FormatFlags {
		if ann.Flags == nil {
			return &LoadError{Err: ErrDanglingReference, Module: module, Symbol: f.Name + " flags enum"}
		}
		if err := ann.Flags.validate(module); err != nil {
			return err
		}
	}
	return nil
}
