package atlas

// ContextTag labels one aspect of the object a ruleset is compiled against.
// The tag space is flat: target types and scan modes share it, and an access
// rule constrains whichever tags it lists.
type ContextTag string

const (
	// TargetFile marks scans of file content.
	TargetFile ContextTag = "file"

	// TargetURL marks scans of URL records.
	TargetURL ContextTag = "url"

	// TargetDomain marks scans of domain records.
	TargetDomain ContextTag = "domain"

	// TargetIPAddress marks scans of IP address records.
	TargetIPAddress ContextTag = "ip_address"

	// ModeRetrohunt marks retroactive scans over historical corpora.
	ModeRetrohunt ContextTag = "retrohunt"

	// ModeLivehunt marks scans of objects as they arrive.
	ModeLivehunt ContextTag = "livehunt"
)

// validContextTags contains all known tags for declaration-time validation.
var validContextTags = map[ContextTag]bool{
	TargetFile:      true,
	TargetURL:       true,
	TargetDomain:    true,
	TargetIPAddress: true,
	ModeRetrohunt:   true,
	ModeLivehunt:    true,
}

// IsValidContextTag returns true if the tag is a known context tag.
func IsValidContextTag(tag ContextTag) bool {
	return validContextTags[tag]
}

// ScanContext describes the object a rule-compilation unit is scanning:
// its target type plus any active mode flags. A ScanContext is supplied once
// per compilation unit and treated as immutable for that unit.
type ScanContext struct {
	Target ContextTag
	Modes  []ContextTag
}

// Has returns true if the context carries the given tag, either as its
// target type or as one of its mode flags.
func (sc ScanContext) Has(tag ContextTag) bool {
	if sc.Target == tag {
		return true
	}
	for _, m := range sc.Modes {
		if m == tag {
			return true
		}
	}
	return false
}
