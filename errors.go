package atlas

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrDuplicateModule indicates two modules registered the same name.
	ErrDuplicateModule = errors.New("duplicate module")

	// ErrDuplicateField indicates a message declared the same field twice.
	ErrDuplicateField = errors.New("duplicate field")

	// ErrDuplicateOrdinal indicates two enumerators share a declared ordinal.
	ErrDuplicateOrdinal = errors.New("duplicate enum ordinal")

	// ErrDanglingReference indicates a schema node refers to a type or enum
	// that was never supplied.
	ErrDanglingReference = errors.New("dangling schema reference")

	// ErrSymbolCollision indicates an inline enumerator name shadows an
	// existing sibling symbol.
	ErrSymbolCollision = errors.New("inline enumerator collision")

	// ErrInvalidHint indicates an annotation carries an unknown format hint.
	ErrInvalidHint = errors.New("invalid format hint")

	// ErrUnknownField indicates a path component that names nothing.
	ErrUnknownField = errors.New("unknown field")

	// ErrTypeMismatch indicates an operation applied to an incompatible
	// node or value kind (indexing a non-collection, lowercasing an int).
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrAccessDenied indicates an access rule rejected the reference.
	ErrAccessDenied = errors.New("access denied")

	// ErrBind indicates a producer payload could not be decoded or does not
	// match the module's declared shape.
	ErrBind = errors.New("bind failed")
)

// LoadError is a fatal schema construction failure. It aborts registry
// build; an engine must not start with a partially built registry.
type LoadError struct {
	Err    error  // Underlying sentinel error (ErrDuplicateModule, etc.)
	Module string // Module being built
	Symbol string // Offending symbol, when one exists
}

func (e *LoadError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("%s: %s in module %q", e.Err.Error(), e.Symbol, e.Module)
	}
	return fmt.Sprintf("%s: module %q", e.Err.Error(), e.Module)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// ResolveError is a recoverable resolution failure, surfaced to the rule
// author with enough context to fix the rule.
type ResolveError struct {
	Err      error    // Underlying sentinel error (ErrUnknownField, ErrTypeMismatch)
	Path     string   // Partial path up to and including the failing component
	Siblings []string // Valid names at the failing position, sorted
}

func (e *ResolveError) Error() string {
	if len(e.Siblings) > 0 {
		return fmt.Sprintf("%s: %s (expecting one of: %s)",
			e.Err.Error(), e.Path, strings.Join(e.Siblings, ", "))
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Path)
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// AccessError is produced when an access rule rejects a field reference.
// Title and Label carry the rule's authored diagnostic text verbatim.
type AccessError struct {
	Err   error  // Always ErrAccessDenied
	Path  string // Fully-qualified path of the rejected field
	Title string // Rule's authored error title, unmodified
	Label string // Rule's authored error label, unmodified
}

func (e *AccessError) Error() string {
	if e.Label != "" {
		return fmt.Sprintf("%s: %s: %s", e.Err.Error(), e.Path, e.Label)
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Path)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

// Diagnostic is the payload handed to whatever surfaces compiler
// diagnostics to the rule author. The source location belongs to the
// calling compiler; this package never invents one.
type Diagnostic struct {
	Title    string
	Label    string
	Path     string
	Location string
}

// Diagnostic builds the author-facing payload for an access rejection,
// preserving the rule's own title and label.
func (e *AccessError) Diagnostic(location string) Diagnostic {
	return Diagnostic{
		Title:    e.Title,
		Label:    e.Label,
		Path:     e.Path,
		Location: location,
	}
}

// Diagnostic builds the author-facing payload for a resolution failure.
func (e *ResolveError) Diagnostic(location string) Diagnostic {
	title := "unknown field"
	if errors.Is(e.Err, ErrTypeMismatch) {
		title = "type mismatch"
	}
	return Diagnostic{
		Title:    title,
		Label:    e.Error(),
		Path:     e.Path,
		Location: location,
	}
}

// newResolveError creates a ResolveError for a failed path component.
func newResolveError(sentinel error, path string, siblings []string) error {
	return &ResolveError{Err: sentinel, Path: path, Siblings: siblings}
}

// newAccessError creates an AccessError from the rejecting rule.
func newAccessError(path string, rule AccessRule) error {
	return &AccessError{
		Err:   ErrAccessDenied,
		Path:  path,
		Title: rule.ErrorTitle,
		Label: rule.ErrorLabel,
	}
}
