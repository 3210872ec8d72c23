package atlas

// FormatHint selects the canonical display representation of a leaf value.
// Use these constants in field annotations and struct tags: `format:"hex"`.
type FormatHint string

const (
	// FormatRaw renders the value in its natural string form.
	FormatRaw FormatHint = "raw"

	// FormatLowercase renders string and byte values ASCII-lowercased.
	FormatLowercase FormatHint = "lowercase"

	// FormatHex renders unsigned integer values as 0x-prefixed hexadecimal.
	FormatHex FormatHint = "hex"

	// FormatFlags treats an integer value as a bitmask and renders the
	// matching enumerator names of the referenced enum, declaration order,
	// with uncovered bits preserved as a trailing hex remainder.
	FormatFlags FormatHint = "flags"
)

// validFormatHints contains all valid hints for declaration-time validation.
var validFormatHints = map[FormatHint]bool{
	FormatRaw:       true,
	FormatLowercase: true,
	FormatHex:       true,
	FormatFlags:     true,
}

// IsValidFormatHint returns true if the hint is a known format hint.
func IsValidFormatHint(h FormatHint) bool {
	return validFormatHints[h]
}

// Annotation is the optional per-field metadata interpreted at resolution
// and report time. At most one annotation attaches to a field.
type Annotation struct {
	// Format selects the display representation. Empty means FormatRaw.
	Format FormatHint

	// Flags is the enum referenced by FormatFlags. Required when Format is
	// FormatFlags; a FormatFlags annotation without it is a dangling
	// reference and rejected at registry build.
	Flags *Enum

	// Rules are evaluated in declaration order against the scan context.
	// Every rule must permit the context for the field to be referenced.
	Rules []AccessRule
}

// AccessRule is a visibility constraint on a field. A rule permits a scan
// context iff the context carries at least one AcceptIf tag (or AcceptIf is
// empty), and carries no RejectIf tag.
//
// ErrorTitle and ErrorLabel are authored, rule-author-facing diagnostic
// text. When the rule rejects a reference they are passed through verbatim,
// never rewritten into a fixed message catalog.
type AccessRule struct {
	AcceptIf   []ContextTag
	RejectIf   []ContextTag
	ErrorTitle string
	ErrorLabel string
}

// Permits reports whether the rule allows a reference under sc.
func (r AccessRule) Permits(sc ScanContext) bool {
	if len(r.AcceptIf) > 0 && !hasAny(sc, r.AcceptIf) {
		return false
	}
	return !hasAny(sc, r.RejectIf)
}

func hasAny(sc ScanContext, tags []ContextTag) bool {
	for _, tag := range tags {
		if sc.Has(tag) {
			return true
		}
	}
	return false
}
