package atlas

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/zoobzio/sentinel"
)

func init() {
	// Register annotation tags with sentinel
	sentinel.Tag("atlas")
	sentinel.Tag("format")
	sentinel.Tag("accept")
	sentinel.Tag("reject")
	sentinel.Tag("title")
	sentinel.Tag("label")
}

// ModuleOption configures a module built by FromStruct.
type ModuleOption func(*Module)

// WithCapability gates the module behind a build capability.
func WithCapability(c Capability) ModuleOption {
	return func(m *Module) { m.Capability = c }
}

// WithBindingKey sets the key producers use to attach values to the module.
func WithBindingKey(key string) ModuleOption {
	return func(m *Module) { m.BindingKey = key }
}

// FromStruct derives a module schema from a Go struct type. Field shapes
// map directly: nested structs become messages, slices become repeated
// nodes ([]byte becomes a bytes scalar), maps become map nodes. Annotations
// are declared via struct tags:
//
//	type Metadata struct {
//	    Submitter string `reject:"retrohunt" title:"field not available" label:"this field is not supported in Retrohunt"`
//	    FileType  uint32 `format:"hex"`
//	}
//
// Supported tags:
//
//	atlas:"name"        - field name in the schema (default: snake_case of the Go name)
//	format:"hex"        - format hint (raw, lowercase, hex)
//	accept:"url,domain" - context tags that permit the reference
//	reject:"retrohunt"  - context tags that forbid the reference
//	title:"..."         - authored diagnostic title for the rule
//	label:"..."         - authored diagnostic label for the rule
//
// Enums cannot be expressed through struct tags; declare enum-bearing
// modules programmatically or through a YAML document instead. The flags
// format hint is likewise unavailable here because it references an enum.
//
// The derived module still goes through New, which enforces the usual
// build-time invariants.
func FromStruct[T any](name string, opts ...ModuleOption) (Module, error) {
	spec := sentinel.Scan[T]()

	root, err := structType(spec)
	if err != nil {
		return Module{}, fmt.Errorf("module %s: %w", name, err)
	}

	m := Module{Name: name, Root: root}
	for _, opt := range opts {
		opt(&m)
	}
	return m, nil
}

// structType builds a message node from scanned struct metadata.
func structType(spec sentinel.Metadata) (*Type, error) {
	fields := make([]Field, 0, len(spec.Fields))

	for _, fm := range spec.Fields {
		f, err := structField(fm)
		if err != nil {
			return nil, err
		}
		if f == nil {
			continue
		}
		fields = append(fields, *f)
	}

	return Message(fields...), nil
}

// structField maps one scanned struct field to a schema field. Unsupported
// shapes (interfaces, channels, funcs) are skipped rather than rejected so
// producer structs can carry runtime-only members.
func structField(fm sentinel.FieldMetadata) (*Field, error) {
	name := fm.Tags["atlas"]
	if name == "" {
		name = snakeCase(fm.Name)
	}

	t, err := typeFor(fm.ReflectType)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", fm.Name, err)
	}
	if t == nil {
		return nil, nil
	}

	ann, err := annotationFor(fm.Name, fm.Tags)
	if err != nil {
		return nil, err
	}

	return &Field{Name: name, Type: t, Annotation: ann}, nil
}

// typeFor maps a reflect type to a schema node. Nil means "skip this field".
func typeFor(rt reflect.Type) (*Type, error) {
	switch rt.Kind() {
	case reflect.Bool:
		return Scalar(KindBool), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Scalar(KindInt), nil
	case reflect.Float32, reflect.Float64:
		return Scalar(KindFloat), nil
	case reflect.String:
		return Scalar(KindString), nil
	case reflect.Pointer:
		return typeFor(rt.Elem())
	case reflect.Struct:
		return structType(scanNested(rt))
	case reflect.Slice, reflect.Array:
		if rt.Elem().Kind() == reflect.Uint8 {
			return Scalar(KindBytes), nil
		}
		elem, err := typeFor(rt.Elem())
		if err != nil || elem == nil {
			return nil, err
		}
		return Repeated(elem), nil
	case reflect.Map:
		key, err := typeFor(rt.Key())
		if err != nil {
			return nil, err
		}
		if key == nil || !key.Kind.IsScalar() {
			return nil, fmt.Errorf("%w: map key %s", ErrTypeMismatch, rt.Key())
		}
		elem, err := typeFor(rt.Elem())
		if err != nil || elem == nil {
			return nil, err
		}
		return MapOf(key.Kind, elem), nil
	default:
		return nil, nil
	}
}

// scanNested scans a nested struct type, preferring sentinel's cache.
func scanNested(rt reflect.Type) sentinel.Metadata {
	if spec, ok := sentinel.Lookup(rt.String()); ok {
		return spec
	}

	spec := sentinel.Metadata{
		TypeName:    rt.Name(),
		PackageName: rt.PkgPath(),
		Fields:      make([]sentinel.FieldMetadata, 0, rt.NumField()),
	}

	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		spec.Fields = append(spec.Fields, sentinel.FieldMetadata{
			Name:        sf.Name,
			Type:        sf.Type.String(),
			ReflectType: sf.Type,
			Index:       sf.Index,
			Tags:        parseAnnotationTags(sf.Tag),
		})
	}
	return spec
}

// parseAnnotationTags extracts atlas annotation tags from a struct tag.
func parseAnnotationTags(tag reflect.StructTag) map[string]string {
	tags := make(map[string]string)
	for _, key := range []string{"atlas", "format", "accept", "reject", "title", "label"} {
		if val, ok := tag.Lookup(key); ok {
			tags[key] = val
		}
	}
	return tags
}

// annotationFor builds a field annotation from struct tags.
func annotationFor(goName string, tags map[string]string) (*Annotation, error) {
	var ann Annotation

	if val, ok := tags["format"]; ok {
		hint := FormatHint(val)
		if !IsValidFormatHint(hint) {
			return nil, fmt.Errorf("%w: %q on field %s", ErrInvalidHint, val, goName)
		}
		if hint == FormatFlags {
			return nil, fmt.Errorf("%w: flags hint on field %s needs an enum and cannot be tag-declared", ErrDanglingReference, goName)
		}
		ann.Format = hint
	}

	accept, err := splitTags(goName, tags["accept"])
	if err != nil {
		return nil, err
	}
	reject, err := splitTags(goName, tags["reject"])
	if err != nil {
		return nil, err
	}
	if len(accept) > 0 || len(reject) > 0 {
		ann.Rules = []AccessRule{{
			AcceptIf:   accept,
			RejectIf:   reject,
			ErrorTitle: tags["title"],
			ErrorLabel: tags["label"],
		}}
	}

	if ann.Format == "" && len(ann.Rules) == 0 {
		return nil, nil
	}
	return &ann, nil
}

// splitTags parses a comma-separated tag list, validating each tag.
func splitTags(goName, val string) ([]ContextTag, error) {
	if val == "" {
		return nil, nil
	}
	parts := strings.Split(val, ",")
	tags := make([]ContextTag, 0, len(parts))
	for _, p := range parts {
		tag := ContextTag(strings.TrimSpace(p))
		if !IsValidContextTag(tag) {
			return nil, fmt.Errorf("invalid context tag %q on field %s", tag, goName)
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// snakeCase converts a Go field name to its schema spelling.
func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && name[i-1] >= 'a' && name[i-1] <= 'z' {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
