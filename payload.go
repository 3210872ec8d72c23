package atlas

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Bound is a producer payload decoded for one module. Producers serialize
// the values they extracted (parsed binary-format fields, enrichment
// records) as a msgpack document and hand it over under the module's
// binding key; Bound lets report code look leaf values up by the same
// dotted paths rules use and render them through the schema's format hints.
type Bound struct {
	module Module
	values map[string]any
}

// Bind decodes a msgpack-encoded producer payload against the named module.
// The payload must be a map document mirroring the module's field tree.
// Decoding failures wrap ErrBind.
func (r *Registry) Bind(module string, data []byte) (*Bound, error) {
	m, ok := r.modules[module]
	if !ok {
		return nil, fmt.Errorf("%w: unknown module %q", ErrBind, module)
	}

	var values map[string]any
	if err := msgpack.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBind, err)
	}

	emitPayloadBound(context.Background(), module, len(values))
	return &Bound{module: m, values: values}, nil
}

// Module returns the name of the module the payload was bound to.
func (b *Bound) Module() string {
	return b.module.Name
}

// Value returns the raw value at a dotted path relative to the module root.
// Numeric components index repeated values; named components step into
// nested documents.
func (b *Bound) Value(path string) (any, bool) {
	var cur any = b.values
	for _, comp := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			v, ok := node[comp]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			i, err := strconv.Atoi(comp)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	return cur, true
}

// Render resolves a descriptor's value inside the payload and formats it
// with the field's format hint. The descriptor must belong to the module
// the payload was bound to.
func (b *Bound) Render(fd *FieldDescriptor) (string, error) {
	if fd.Module != b.module.Name {
		return "", fmt.Errorf("%w: descriptor %s is not from module %q", ErrBind, fd.Path, b.module.Name)
	}

	// Enum constants render from the schema alone.
	if fd.Enumerator != nil {
		return fd.Enumerator.Name, nil
	}

	rel := strings.TrimPrefix(fd.Path, b.module.Name+".")
	v, ok := b.Value(rel)
	if !ok {
		return "", fmt.Errorf("%w: no value at %s", ErrBind, fd.Path)
	}
	return Format(fd, v)
}
