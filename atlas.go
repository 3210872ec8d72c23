// Package atlas provides a build-once module schema registry with symbol
// resolution, per-field access control, and value formatting for scanning
// engines.
//
// Scanning engines match rules against structured analysis data: parsed
// binary-format fields, threat-intelligence records. Rules refer to that
// data through dotted symbol paths like `macho.header.cputype` or
// `vt.metadata.submitter`. Atlas is the layer in between: it holds the
// declared shape of every module, resolves paths written in rules into typed
// field descriptors, and decides whether a given reference is legal for the
// object being scanned.
//
// # Modules
//
// A module is a named schema namespace. Each module contributes a root
// message type, an optional capability tag that gates whether the module is
// compiled into a given build, and a binding key used by the producer that
// populates concrete values at scan time. Modules are registered once, at
// engine startup:
//
//	reg, err := atlas.New(machoModule, vtModule)
//
// New validates the whole graph (duplicate names, duplicate enum ordinals,
// inline enumerator collisions, dangling references) and then freezes it.
// A built Registry is immutable and safe for unlimited concurrent lookups.
//
// # Resolution
//
// Rule compilers resolve dotted paths against the registry:
//
//	fd, err := reg.Resolve("vt.metadata.submitter", atlas.ScanContext{
//	    Target: atlas.TargetFile,
//	    Modes:  []atlas.ContextTag{atlas.ModeRetrohunt},
//	})
//
// Resolution walks the type graph elementwise: stepping through a repeated
// or map field addresses the element type, not a concrete index. Unknown
// components fail with the partial path and the valid sibling names so the
// compiler can surface a useful diagnostic. Resolution is a pure function of
// (registry, path, context); identical calls return identical results.
//
// # Access control
//
// Fields may carry ordered access rules tying their visibility to the scan
// context (target type plus mode flags). A reference is legal only if every
// rule permits it. The first failing rule stops evaluation and its authored
// title and label are passed through verbatim to the rule author.
//
// # Enumerators
//
// Every enumerator carries two integers: its ordinal (declared position,
// unique within the enum) and its semantic value (what a rule expression
// observes). The semantic value defaults to the ordinal and may be
// overridden, so a constant can be named and positioned independently of
// how it is valued. Enums marked inline surface their enumerator names
// unqualified alongside the sibling fields of the enclosing message.
//
// # Formatting
//
// At report time, leaf values render through the field's format hint:
// raw, lowercase, hex, or flags (bitmask decomposition against a referenced
// enum, uncovered bits preserved as a hex remainder).
//
// # Declaration surfaces
//
// Schemas can be built programmatically with the Type constructors, loaded
// from a YAML document (LoadModule), or derived from a Go struct via
// FromStruct using field tags.
package atlas

// FieldDescriptor is the result of resolving a dotted path against a built
// Registry. It is a pure function of (registry, path): descriptors are
// context-independent and safe to memoize across an entire compilation run.
type FieldDescriptor struct {
	// Path is the fully-qualified dotted path, starting with the module name.
	Path string

	// Module is the name of the module the path resolved inside.
	Module string

	// Type is the resolved schema node. Borrowed from the registry;
	// never mutated.
	Type *Type

	// Annotation is the terminal field's annotation, nil if it has none.
	Annotation *Annotation

	// Enumerator is set when the path resolved to an enum constant rather
	// than a data field. Its SemanticValue is what rule expressions observe.
	Enumerator *Enumerator
}
