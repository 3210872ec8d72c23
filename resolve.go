package atlas

import (
	"context"
	"sort"
	"strings"
)

// Resolve resolves a dotted path against the registry under the given scan
// context, returning a typed field descriptor or a precise failure.
//
// The first path component names a module; the rest descend through the
// module's type graph. Repeated and map boundaries are typed elementwise:
// a named component steps straight into the element type, and a numeric
// component consumes one collection boundary (an index against anything
// else is a type error). If the terminal field carries access rules, every
// one of them must permit sc.
//
// Resolution is a pure function of (registry, path, sc); identical inputs
// always yield identical results.
func (r *Registry) Resolve(path string, sc ScanContext) (*FieldDescriptor, error) {
	fd, err := r.Descriptor(path)
	if err != nil {
		emitResolveUnknown(context.Background(), path, err)
		return nil, err
	}
	if err := CheckAccess(fd, sc); err != nil {
		emitResolveDenied(context.Background(), path, sc, err)
		return nil, err
	}
	return fd, nil
}

// Descriptor resolves a dotted path without evaluating access rules. It is
// a pure function of (registry, path), independent of any scan context, so
// callers may memoize its results per path across a whole compilation run
// and re-check access per context with CheckAccess.
func (r *Registry) Descriptor(path string) (*FieldDescriptor, error) {
	parts := strings.Split(path, ".")

	m, ok := r.modules[parts[0]]
	if !ok {
		return nil, newResolveError(ErrUnknownField, parts[0], r.Modules())
	}

	cur := m.Root
	walked := parts[0]
	var ann *Annotation
	var enr *Enumerator

	for _, comp := range parts[1:] {
		walked = walked + "." + comp

		// Nothing is addressable past an enum constant.
		if enr != nil {
			return nil, newResolveError(ErrUnknownField, walked, nil)
		}

		if isIndexToken(comp) {
			if cur.Kind != KindRepeated && cur.Kind != KindMap {
				return nil, newResolveError(ErrTypeMismatch, walked, nil)
			}
			cur = cur.Elem
			continue
		}

		// Named components step through collection boundaries elementwise:
		// resolution is against the type graph, not an instance.
		for cur.Kind == KindRepeated || cur.Kind == KindMap {
			cur = cur.Elem
		}

		switch cur.Kind {
		case KindMessage:
			sym, ok := cur.symbols[comp]
			if !ok {
				return nil, newResolveError(ErrUnknownField, walked, sortedSiblings(cur))
			}
			if sym.field != nil {
				cur = sym.field.Type
				ann = sym.field.Annotation
			} else {
				// Enum constants carry no annotation of their own; an
				// enclosing field's rules do not gate them.
				cur = sym.typ
				enr = sym.enumr
				ann = nil
			}

		case KindEnum:
			en, ok := cur.Enum.Lookup(comp)
			if !ok {
				return nil, newResolveError(ErrUnknownField, walked, sortedSiblings(cur))
			}
			enr = en
			ann = nil

		default:
			return nil, newResolveError(ErrUnknownField, walked, nil)
		}
	}

	return &FieldDescriptor{
		Path:       path,
		Module:     m.Name,
		Type:       cur,
		Annotation: ann,
		Enumerator: enr,
	}, nil
}

// isIndexToken reports whether a path component is an index into a
// collection rather than a name.
func isIndexToken(comp string) bool {
	if comp == "" {
		return false
	}
	for i := 0; i < len(comp); i++ {
		if comp[i] < '0' || comp[i] > '9' {
			return false
		}
	}
	return true
}

// sortedSiblings returns the valid names at a node, sorted for stable
// diagnostics.
func sortedSiblings(t *Type) []string {
	names := t.siblingNames()
	sort.Strings(names)
	return names
}
