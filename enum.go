package atlas

// Enum describes a named set of constants.
type Enum struct {
	// Name qualifies the enumerators when the enum is not inline.
	Name string

	// Inline surfaces the enumerator names unqualified in the symbol table
	// of the enclosing message. A name that collides with a sibling field
	// or another inline enumerator is a build error, not a resolution-time
	// ambiguity.
	Inline bool

	// Enumerators in declaration order.
	Enumerators []Enumerator
}

// Enumerator is a single named constant.
//
// Every enumerator carries two integers. The ordinal is its declared
// positional number: unique within the enum, used only for identity and
// stable listing order. The semantic value is what a rule expression
// actually observes; it defaults to the ordinal and may be overridden when
// a constant's matching value has to differ from its declared slot (for
// example, a flag bit that exceeds the range of the slot numbering, or a
// value that would collide with another constant's slot). Two enumerators
// may share a semantic value; they must not share an ordinal.
type Enumerator struct {
	Name    string
	Ordinal int64

	// Override, when non-nil, replaces the ordinal as the semantic value.
	Override *int64
}

// SemanticValue returns the number a rule expression observes for this
// enumerator: the override if present, else the ordinal.
func (e *Enumerator) SemanticValue() int64 {
	if e.Override != nil {
		return *e.Override
	}
	return e.Ordinal
}

// WithValue returns an enumerator whose semantic value is fixed to v,
// independent of its ordinal.
func WithValue(name string, ordinal, v int64) Enumerator {
	return Enumerator{Name: name, Ordinal: ordinal, Override: &v}
}

// Lookup returns the enumerator with the given name.
func (e *Enum) Lookup(name string) (*Enumerator, bool) {
	for i := range e.Enumerators {
		if e.Enumerators[i].Name == name {
			return &e.Enumerators[i], true
		}
	}
	return nil, false
}

// validate enforces the per-enum load-time invariant: ordinals unique.
// Semantic values may alias freely.
func (e *Enum) validate(module string) error {
	seen := make(map[int64]string, len(e.Enumerators))
	for i := range e.Enumerators {
		en := &e.Enumerators[i]
		if prev, ok := seen[en.Ordinal]; ok {
			return &LoadError{
				Err:    ErrDuplicateOrdinal,
				Module: module,
				Symbol: e.Name + "." + en.Name + " vs " + e.Name + "." + prev,
			}
		}
		seen[en.Ordinal] = en.Name
	}
	return nil
}
