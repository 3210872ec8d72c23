package atlas

import (
	"errors"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
)

func testPayload(t *testing.T) []byte {
	t.Helper()
	data, err := msgpack.Marshal(map[string]any{
		"header": map[string]any{
			"magic":   uint32(0xfeedfacf),
			"cputype": int64(16777228),
			"flags":   uint64(0x200020),
		},
		"segments": []any{
			map[string]any{"segname": "__TEXT", "vmaddr": uint64(0x100000000)},
			map[string]any{"segname": "__DATA", "vmaddr": uint64(0x100008000)},
		},
		"entitlements": []any{"com.apple.security.network.client"},
	})
	if err != nil {
		t.Fatalf("msgpack.Marshal() error: %v", err)
	}
	return data
}

func TestBind(t *testing.T) {
	reg := testRegistry(t)

	b, err := reg.Bind("macho", testPayload(t))
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if b.Module() != "macho" {
		t.Errorf("Module() = %q, want macho", b.Module())
	}
}

func TestBind_UnknownModule(t *testing.T) {
	reg := testRegistry(t)

	if _, err := reg.Bind("pe", testPayload(t)); !errors.Is(err, ErrBind) {
		t.Errorf("Bind() error = %v, want ErrBind", err)
	}
}

func TestBind_Garbage(t *testing.T) {
	reg := testRegistry(t)

	if _, err := reg.Bind("macho", []byte{0xc1}); !errors.Is(err, ErrBind) {
		t.Errorf("Bind() error = %v, want ErrBind", err)
	}
}

func TestBound_Value(t *testing.T) {
	reg := testRegistry(t)
	b, err := reg.Bind("macho", testPayload(t))
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	v, ok := b.Value("segments.1.segname")
	if !ok {
		t.Fatal("Value(segments.1.segname) not found")
	}
	if v != "__DATA" {
		t.Errorf("Value() = %v, want __DATA", v)
	}

	if _, ok := b.Value("segments.9.segname"); ok {
		t.Error("Value() past the slice should not be found")
	}
	if _, ok := b.Value("header.nope"); ok {
		t.Error("Value() of a missing key should not be found")
	}
}

func TestBound_Render(t *testing.T) {
	reg := testRegistry(t)
	b, err := reg.Bind("macho", testPayload(t))
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	sc := ScanContext{Target: TargetFile}

	tests := []struct {
		path string
		want string
	}{
		{"macho.header.magic", "0xfeedfacf"},
		{"macho.header.flags", "SPLIT_SEGS|PIE"},
		{"macho.segments.0.segname", "__text"},
		{"macho.segments.1.vmaddr", "0x100008000"},
		{"macho.entitlements.0", "com.apple.security.network.client"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			fd, err := reg.Resolve(tt.path, sc)
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			got, err := b.Render(fd)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBound_RenderEnumerator(t *testing.T) {
	reg := testRegistry(t)
	b, err := reg.Bind("vt", mustMarshal(t, map[string]any{}))
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	fd, err := reg.Resolve("vt.metadata.PE", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	got, err := b.Render(fd)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if got != "PE" {
		t.Errorf("Render() = %q, want PE", got)
	}
}

func TestBound_RenderWrongModule(t *testing.T) {
	reg := testRegistry(t)
	b, err := reg.Bind("macho", testPayload(t))
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	fd, err := reg.Resolve("vt.tags", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if _, err := b.Render(fd); !errors.Is(err, ErrBind) {
		t.Errorf("Render() error = %v, want ErrBind", err)
	}
}

func TestBound_RenderMissingValue(t *testing.T) {
	reg := testRegistry(t)
	b, err := reg.Bind("macho", mustMarshal(t, map[string]any{}))
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}

	fd, err := reg.Resolve("macho.header.magic", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if _, err := b.Render(fd); !errors.Is(err, ErrBind) {
		t.Errorf("Render() error = %v, want ErrBind", err)
	}
}

func mustMarshal(t *testing.T, v any) []byte {
	t.Helper()
	data, err := msgpack.Marshal(v)
	if err != nil {
		t.Fatalf("msgpack.Marshal() error: %v", err)
	}
	return data
}
