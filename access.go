package atlas

// CheckAccess evaluates a resolved field's access rules against a scan
// context. The reference is legal iff every rule permits the context: a
// field may accumulate independent restrictions over time without weakening
// earlier ones. Rules are evaluated in declaration order and the first
// violated rule stops evaluation; its authored title and label are carried
// in the returned AccessError verbatim.
//
// Fields without an annotation, or with no rules, are always legal.
func CheckAccess(fd *FieldDescriptor, sc ScanContext) error {
	if fd.Annotation == nil {
		return nil
	}
	for _, rule := range fd.Annotation.Rules {
		if !rule.Permits(sc) {
			return newAccessError(fd.Path, rule)
		}
	}
	return nil
}

// AccessFailures evaluates every rule instead of stopping at the first
// violation, for callers that want to report all restrictions at once.
// Order follows rule declaration order. Nil means the reference is legal.
func AccessFailures(fd *FieldDescriptor, sc ScanContext) []*AccessError {
	if fd.Annotation == nil {
		return nil
	}
	var failures []*AccessError
	for _, rule := range fd.Annotation.Rules {
		if !rule.Permits(sc) {
			failures = append(failures, &AccessError{
				Err:   ErrAccessDenied,
				Path:  fd.Path,
				Title: rule.ErrorTitle,
				Label: rule.ErrorLabel,
			})
		}
	}
	return failures
}
