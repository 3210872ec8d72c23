package atlas

import (
	"bytes"
	"context"
	"fmt"

	"gopkg.in/yaml.v3"
)

// moduleDoc is the YAML shape of a module declaration.
type moduleDoc struct {
	Module     string     `yaml:"module"`
	Capability string     `yaml:"capability"`
	BindingKey string     `yaml:"binding_key"`
	Enums      []enumDoc  `yaml:"enums"`
	Root       []fieldDoc `yaml:"root"`
}

type enumDoc struct {
	Name        string          `yaml:"name"`
	Inline      bool            `yaml:"inline"`
	Enumerators []enumeratorDoc `yaml:"enumerators"`
}

type enumeratorDoc struct {
	Name    string `yaml:"name"`
	Ordinal int64  `yaml:"ordinal"`

	// Value overrides the ordinal as the enumerator's semantic value.
	Value *int64 `yaml:"value"`
}

type fieldDoc struct {
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`     // scalar kind name
	Message  []fieldDoc `yaml:"message"`  // nested message fields
	Repeated *fieldDoc  `yaml:"repeated"` // element declaration
	Map      *mapDoc    `yaml:"map"`
	Enum     string     `yaml:"enum"` // enum reference by name

	Format string    `yaml:"format"`
	Flags  string    `yaml:"flags"` // flags enum reference by name
	Accept []string  `yaml:"accept"`
	Reject []string  `yaml:"reject"`
	Title  string    `yaml:"title"`
	Label  string    `yaml:"label"`
	Rules  []ruleDoc `yaml:"rules"` // additional rules, evaluated after the inline one
}

type ruleDoc struct {
	Accept []string `yaml:"accept"`
	Reject []string `yaml:"reject"`
	Title  string   `yaml:"title"`
	Label  string   `yaml:"label"`
}

type mapDoc struct {
	Key   string    `yaml:"key"`
	Value *fieldDoc `yaml:"value"`
}

// scalarKinds maps YAML type names to schema kinds.
var scalarKinds = map[string]Kind{
	"bool":   KindBool,
	"int":    KindInt,
	"float":  KindFloat,
	"string": KindString,
	"bytes":  KindBytes,
}

// LoadModule parses a YAML module declaration into a Module. The document
// carries the module header (name, capability, binding key), named enum
// declarations, and the root field tree:
//
//	module: vt
//	binding_key: vt.metadata
//	root:
//	  - name: metadata
//	    message:
//	      - name: submitter
//	        type: string
//	        reject: [retrohunt]
//	        title: field not available
//	        label: this field is not supported in Retrohunt
//
// Enum references (enum:, flags:) resolve against the document's enums
// section; a reference to an undeclared enum is a dangling-reference load
// error. The returned module still goes through New, which enforces the
// registry-wide invariants.
func LoadModule(data []byte) (Module, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc moduleDoc
	if err := dec.Decode(&doc); err != nil {
		return Module{}, fmt.Errorf("decode module document: %w", err)
	}
	if doc.Module == "" {
		return Module{}, &LoadError{Err: ErrDanglingReference, Module: "", Symbol: "module name"}
	}

	enums := make(map[string]*Enum, len(doc.Enums))
	for _, ed := range doc.Enums {
		e := &Enum{Name: ed.Name, Inline: ed.Inline}
		for _, en := range ed.Enumerators {
			e.Enumerators = append(e.Enumerators, Enumerator{
				Name:     en.Name,
				Ordinal:  en.Ordinal,
				Override: en.Value,
			})
		}
		enums[ed.Name] = e
	}

	root, err := loadFields(doc.Module, doc.Root, enums)
	if err != nil {
		return Module{}, err
	}

	emitSchemaLoaded(context.Background(), doc.Module, len(doc.Root))
	return Module{
		Name:       doc.Module,
		Root:       root,
		Capability: Capability(doc.Capability),
		BindingKey: doc.BindingKey,
	}, nil
}

func loadFields(module string, docs []fieldDoc, enums map[string]*Enum) (*Type, error) {
	fields := make([]Field, 0, len(docs))
	for i := range docs {
		fd := &docs[i]
		t, err := loadType(module, fd, enums)
		if err != nil {
			return nil, err
		}
		ann, err := loadAnnotation(module, fd, enums)
		if err != nil {
			return nil, err
		}
		fields = append(fields, Field{Name: fd.Name, Type: t, Annotation: ann})
	}
	return Message(fields...), nil
}

func loadType(module string, fd *fieldDoc, enums map[string]*Enum) (*Type, error) {
	switch {
	case len(fd.Message) > 0:
		return loadFields(module, fd.Message, enums)

	case fd.Repeated != nil:
		elem, err := loadType(module, fd.Repeated, enums)
		if err != nil {
			return nil, err
		}
		return Repeated(elem), nil

	case fd.Map != nil:
		key, ok := scalarKinds[fd.Map.Key]
		if !ok {
			return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: fd.Name + " map key " + fd.Map.Key}
		}
		if fd.Map.Value == nil {
			return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: fd.Name + " map value"}
		}
		elem, err := loadType(module, fd.Map.Value, enums)
		if err != nil {
			return nil, err
		}
		return MapOf(key, elem), nil

	case fd.Enum != "":
		e, ok := enums[fd.Enum]
		if !ok {
			return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: fd.Name + " enum " + fd.Enum}
		}
		return EnumOf(e), nil

	case fd.Type != "":
		kind, ok := scalarKinds[fd.Type]
		if !ok {
			return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: fd.Name + " type " + fd.Type}
		}
		return Scalar(kind), nil

	default:
		return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: fd.Name}
	}
}

func loadAnnotation(module string, fd *fieldDoc, enums map[string]*Enum) (*Annotation, error) {
	var ann Annotation

	if fd.Format != "" {
		hint := FormatHint(fd.Format)
		if !IsValidFormatHint(hint) {
			return nil, &LoadError{Err: ErrInvalidHint, Module: module, Symbol: fd.Name}
		}
		ann.Format = hint
	}
	if fd.Flags != "" {
		e, ok := enums[fd.Flags]
		if !ok {
			return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: fd.Name + " flags " + fd.Flags}
		}
		ann.Flags = e
	}

	// The inline accept/reject form declares the field's first rule; the
	// rules list appends further restrictions in order.
	docs := fd.Rules
	if len(fd.Accept) > 0 || len(fd.Reject) > 0 {
		docs = append([]ruleDoc{{
			Accept: fd.Accept,
			Reject: fd.Reject,
			Title:  fd.Title,
			Label:  fd.Label,
		}}, docs...)
	}
	for _, rd := range docs {
		accept, err := loadTags(module, fd.Name, rd.Accept)
		if err != nil {
			return nil, err
		}
		reject, err := loadTags(module, fd.Name, rd.Reject)
		if err != nil {
			return nil, err
		}
		ann.Rules = append(ann.Rules, AccessRule{
			AcceptIf:   accept,
			RejectIf:   reject,
			ErrorTitle: rd.Title,
			ErrorLabel: rd.Label,
		})
	}

	if ann.Format == "" && ann.Flags == nil && len(ann.Rules) == 0 {
		return nil, nil
	}
	return &ann, nil
}

func loadTags(module, field string, names []string) ([]ContextTag, error) {
	if len(names) == 0 {
		return nil, nil
	}
	tags := make([]ContextTag, 0, len(names))
	for _, n := range names {
		tag := ContextTag(n)
		if !IsValidContextTag(tag) {
			return nil, &LoadError{Err: ErrDanglingReference, Module: module, Symbol: field + " context tag " + n}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}
