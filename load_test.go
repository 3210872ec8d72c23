package atlas

import (
	"errors"
	"testing"
)

const machoDoc = `
module: macho
capability: macho
binding_key: macho
enums:
  - name: FILE_TYPE
    inline: true
    enumerators:
      - name: MH_OBJECT
        ordinal: 0
        value: 1
      - name: MH_EXECUTE
        ordinal: 1
        value: 2
      - name: MH_DYLIB
        ordinal: 2
        value: 6
  - name: HEADER_FLAGS
    enumerators:
      - name: NOUNDEFS
        ordinal: 0
        value: 1
      - name: SPLIT_SEGS
        ordinal: 1
        value: 32
      - name: PIE
        ordinal: 2
        value: 2097152
root:
  - name: FILE_TYPE
    enum: FILE_TYPE
  - name: header
    message:
      - name: magic
        type: int
        format: hex
      - name: filetype
        type: int
      - name: flags
        type: int
        format: flags
        flags: HEADER_FLAGS
  - name: segments
    repeated:
      message:
        - name: segname
          type: string
          format: lowercase
        - name: vmaddr
          type: int
          format: hex
  - name: entitlements
    repeated:
      type: string
  - name: symbols
    map:
      key: string
      value:
        type: int
  - name: submitter
    type: string
    reject: [retrohunt]
    title: field not available
    label: this field is not supported in Retrohunt
`

func loadTestRegistry(t *testing.T) *Registry {
	t.Helper()
	m, err := LoadModule([]byte(machoDoc))
	if err != nil {
		t.Fatalf("LoadModule() error: %v", err)
	}
	reg, err := New(m)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return reg
}

func TestLoadModule_Header(t *testing.T) {
	m, err := LoadModule([]byte(machoDoc))
	if err != nil {
		t.Fatalf("LoadModule() error: %v", err)
	}
	if m.Name != "macho" {
		t.Errorf("Name = %q, want macho", m.Name)
	}
	if m.Capability != "macho" {
		t.Errorf("Capability = %q, want macho", m.Capability)
	}
	if m.BindingKey != "macho" {
		t.Errorf("BindingKey = %q, want macho", m.BindingKey)
	}
}

func TestLoadModule_Resolution(t *testing.T) {
	reg := loadTestRegistry(t)

	tests := []struct {
		path string
		kind Kind
	}{
		{"macho.header.magic", KindInt},
		{"macho.segments.segname", KindString},
		{"macho.segments.0.vmaddr", KindInt},
		{"macho.entitlements", KindRepeated},
		{"macho.symbols", KindMap},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fd, err := reg.Resolve(tt.path, ScanContext{Target: TargetFile})
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if fd.Type.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", fd.Type.Kind, tt.kind)
			}
		})
	}
}

func TestLoadModule_InlineEnum(t *testing.T) {
	reg := loadTestRegistry(t)

	fd, err := reg.Resolve("macho.MH_EXECUTE", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if fd.Enumerator == nil || fd.Enumerator.SemanticValue() != 2 {
		t.Error("inline enumerator should resolve bare with its override value")
	}
}

func TestLoadModule_FlagsReference(t *testing.T) {
	reg := loadTestRegistry(t)

	fd, err := reg.Resolve("macho.header.flags", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	got, err := Format(fd, uint64(0x200020))
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	if got != "SPLIT_SEGS|PIE" {
		t.Errorf("Format() = %q, want SPLIT_SEGS|PIE", got)
	}
}

func TestLoadModule_AccessRule(t *testing.T) {
	reg := loadTestRegistry(t)

	_, err := reg.Resolve("macho.submitter", ScanContext{
		Target: TargetFile,
		Modes:  []ContextTag{ModeRetrohunt},
	})
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("Resolve() error = %v, want *AccessError", err)
	}
	if ae.Label != "this field is not supported in Retrohunt" {
		t.Errorf("Label = %q, want the document's label verbatim", ae.Label)
	}
}

func TestLoadModule_DanglingEnum(t *testing.T) {
	doc := `
module: m
root:
  - name: f
    enum: MISSING
`
	_, err := LoadModule([]byte(doc))
	if !errors.Is(err, ErrDanglingReference) {
		t.Errorf("LoadModule() error = %v, want ErrDanglingReference", err)
	}
}

func TestLoadModule_DanglingFlags(t *testing.T) {
	doc := `
module: m
root:
  - name: f
    type: int
    format: flags
    flags: MISSING
`
	_, err := LoadModule([]byte(doc))
	if !errors.Is(err, ErrDanglingReference) {
		t.Errorf("LoadModule() error = %v, want ErrDanglingReference", err)
	}
}

func TestLoadModule_UnknownScalar(t *testing.T) {
	doc := `
module: m
root:
  - name: f
    type: decimal
`
	_, err := LoadModule([]byte(doc))
	if !errors.Is(err, ErrDanglingReference) {
		t.Errorf("LoadModule() error = %v, want ErrDanglingReference", err)
	}
}

func TestLoadModule_InvalidContextTag(t *testing.T) {
	doc := `
module: m
root:
  - name: f
    type: string
    reject: [lan]
`
	_, err := LoadModule([]byte(doc))
	if !errors.Is(err, ErrDanglingReference) {
		t.Errorf("LoadModule() error = %v, want ErrDanglingReference", err)
	}
}

func TestLoadModule_MissingName(t *testing.T) {
	doc := `
root:
  - name: f
    type: string
`
	if _, err := LoadModule([]byte(doc)); err == nil {
		t.Error("LoadModule() should reject a document without a module name")
	}
}

func TestLoadModule_UnknownKey(t *testing.T) {
	doc := `
module: m
rooot:
  - name: f
`
	if _, err := LoadModule([]byte(doc)); err == nil {
		t.Error("LoadModule() should reject unknown document keys")
	}
}

func TestLoadModule_MultipleRules(t *testing.T) {
	doc := `
module: m
root:
  - name: f
    type: string
    accept: [file]
    title: t1
    label: l1
    rules:
      - reject: [retrohunt]
        title: t2
        label: l2
`
	m, err := LoadModule([]byte(doc))
	if err != nil {
		t.Fatalf("LoadModule() error: %v", err)
	}
	reg, err := New(m)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// First rule passes, second rejects.
	_, err = reg.Resolve("m.f", ScanContext{Target: TargetFile, Modes: []ContextTag{ModeRetrohunt}})
	var ae *AccessError
	if !errors.As(err, &ae) {
		t.Fatalf("Resolve() error = %v, want *AccessError", err)
	}
	if ae.Label != "l2" {
		t.Errorf("Label = %q, want l2", ae.Label)
	}

	// First rule fails first: its diagnostic wins.
	_, err = reg.Resolve("m.f", ScanContext{Target: TargetURL, Modes: []ContextTag{ModeRetrohunt}})
	if !errors.As(err, &ae) {
		t.Fatalf("Resolve() error = %v, want *AccessError", err)
	}
	if ae.Label != "l1" {
		t.Errorf("Label = %q, want l1", ae.Label)
	}
}
