package atlas

// Kind identifies the shape of a schema node.
type Kind uint8

const (
	// KindInvalid is the zero Kind. A built registry never contains it.
	KindInvalid Kind = iota

	// KindBool is a boolean scalar.
	KindBool

	// KindInt is a 64-bit signed integer scalar.
	KindInt

	// KindFloat is a 64-bit floating point scalar.
	KindFloat

	// KindString is a text scalar.
	KindString

	// KindBytes is a raw byte sequence scalar.
	KindBytes

	// KindMessage is a structured node with named fields.
	KindMessage

	// KindRepeated is an ordered collection of one element type.
	KindRepeated

	// KindMap is a keyed collection of one element type.
	KindMap

	// KindEnum is a named set of enumerators.
	KindEnum
)

// kindNames maps kinds to their display names.
var kindNames = map[Kind]string{
	KindInvalid:  "invalid",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindBytes:    "bytes",
	KindMessage:  "message",
	KindRepeated: "repeated",
	KindMap:      "map",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "invalid"
}

// IsScalar returns true for leaf kinds that carry a single value.
func (k Kind) IsScalar() bool {
	switch k {
	case KindBool, KindInt, KindFloat, KindString, KindBytes:
		return true
	default:
		return false
	}
}

// Type is one node of a module's schema tree. Types are built with the
// constructor functions below, handed to New as part of a Module, and owned
// by the Registry from then on. A built registry never mutates its types.
type Type struct {
	// Kind selects which of the remaining fields are meaningful.
	Kind Kind

	// Fields holds the named members of a KindMessage node, in declaration
	// order. Order is irrelevant for lookup but preserved for enumeration
	// and display.
	Fields []Field

	// Elem is the element type of a KindRepeated or KindMap node.
	Elem *Type

	// MapKey is the key kind of a KindMap node.
	MapKey Kind

	// Enum is the descriptor of a KindEnum node.
	Enum *Enum

	// symbols is the per-message lookup table, populated when the registry
	// is built. It covers fields and, for inline enums, their enumerators.
	symbols map[string]symbol
}

// Field is a named member of a message node.
type Field struct {
	// Name must be unique within the enclosing message.
	Name string

	// Type is the field's schema node. A nil Type is a dangling reference
	// and rejected at registry build.
	Type *Type

	// Annotation carries the field's format hint and access rules, if any.
	Annotation *Annotation
}

// symbol is one entry of a message's lookup table: either a field, or an
// enumerator surfaced by an inline enum.
type symbol struct {
	field *Field
	typ   *Type // enum node, for enumerator symbols
	enumr *Enumerator
}

// Scalar returns a scalar node of the given kind.
func Scalar(kind Kind) *Type {
	return &Type{Kind: kind}
}

// Message returns a structured node with the given fields.
func Message(fields ...Field) *Type {
	return &Type{Kind: KindMessage, Fields: fields}
}

// Repeated returns an ordered collection of elem.
func Repeated(elem *Type) *Type {
	return &Type{Kind: KindRepeated, Elem: elem}
}

// MapOf returns a keyed collection of elem.
func MapOf(key Kind, elem *Type) *Type {
	return &Type{Kind: KindMap, MapKey: key, Elem: elem}
}

// EnumOf returns an enum node for the given descriptor.
func EnumOf(e *Enum) *Type {
	return &Type{Kind: KindEnum, Enum: e}
}

// FieldNames returns the declared field names of a message node, in
// declaration order. Nil for non-message nodes.
func (t *Type) FieldNames() []string {
	if t.Kind != KindMessage {
		return nil
	}
	names := make([]string, len(t.Fields))
	for i := range t.Fields {
		names[i] = t.Fields[i].Name
	}
	return names
}

// siblingNames returns every name addressable at this node, for diagnostics.
// For messages this includes inline enumerators; for enums it is the
// enumerator names.
func (t *Type) siblingNames() []string {
	switch t.Kind {
	case KindMessage:
		names := make([]string, 0, len(t.symbols))
		for name := range t.symbols {
			names = append(names, name)
		}
		return names
	case KindEnum:
		if t.Enum == nil {
			return nil
		}
		names := make([]string, len(t.Enum.Enumerators))
		for i := range t.Enum.Enumerators {
			names[i] = t.Enum.Enumerators[i].Name
		}
		return names
	default:
		return nil
	}
}
