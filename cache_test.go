package atlas

import (
	"errors"
	"sync"
	"testing"
)

func TestDescriptorCache_ReturnsCached(t *testing.T) {
	reg := testRegistry(t)
	cache := NewDescriptorCache(reg)

	fd1, err := cache.Resolve("macho.header.magic", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	fd2, err := cache.Resolve("macho.header.magic", ScanContext{Target: TargetFile})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if fd1 != fd2 {
		t.Error("Resolve() should return the memoized descriptor")
	}
	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}

// Descriptors are shared across contexts; access control is not.
func TestDescriptorCache_AccessPerContext(t *testing.T) {
	reg := testRegistry(t)
	cache := NewDescriptorCache(reg)

	if _, err := cache.Resolve("vt.metadata.submitter", ScanContext{Target: TargetFile}); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	_, err := cache.Resolve("vt.metadata.submitter", ScanContext{
		Target: TargetFile,
		Modes:  []ContextTag{ModeRetrohunt},
	})
	if !errors.Is(err, ErrAccessDenied) {
		t.Errorf("Resolve() error = %v, want ErrAccessDenied on the cached descriptor", err)
	}
}

func TestDescriptorCache_FailuresNotCached(t *testing.T) {
	reg := testRegistry(t)
	cache := NewDescriptorCache(reg)

	if _, err := cache.Resolve("vt.metadata.nope", ScanContext{Target: TargetFile}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("Resolve() error = %v, want ErrUnknownField", err)
	}
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after a failed resolution", cache.Len())
	}
}

func TestDescriptorCache_Reset(t *testing.T) {
	reg := testRegistry(t)
	cache := NewDescriptorCache(reg)

	if _, err := cache.Resolve("vt.tags", ScanContext{Target: TargetFile}); err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	cache.Reset()
	if cache.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Reset", cache.Len())
	}
}

func TestDescriptorCache_Concurrent(t *testing.T) {
	reg := testRegistry(t)
	cache := NewDescriptorCache(reg)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if _, err := cache.Resolve("macho.segments.vmaddr", ScanContext{Target: TargetFile}); err != nil {
					t.Errorf("Resolve() error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if cache.Len() != 1 {
		t.Errorf("Len() = %d, want 1", cache.Len())
	}
}
