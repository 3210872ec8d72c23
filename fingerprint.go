package atlas

import (
	"encoding/hex"
	"hash"
	"io"
	"strconv"

	"golang.org/x/crypto/blake2b"
)

// fingerprint digests the frozen schema graph. The walk is canonical:
// modules in sorted name order, fields and enumerators in declaration
// order, every token separated so that concatenations cannot collide.
// Registries built from identical declarations share a digest, which lets
// a compiler key memoized descriptors across runs.
func fingerprint(r *Registry) string {
	h, err := blake2b.New256(nil)
	if err != nil {
		// blake2b.New256 only fails on oversized keys; we pass none.
		panic(err)
	}
	for _, name := range r.names {
		m := r.modules[name]
		writeToken(h, "module", m.Name, string(m.Capability), m.BindingKey)
		writeType(h, m.Root, make(map[*Type]bool))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func writeToken(h hash.Hash, tokens ...string) {
	for _, tok := range tokens {
		io.WriteString(h, tok) //nolint:errcheck // hash writes never fail
		h.Write([]byte{0})     //nolint:errcheck
	}
}

func writeType(h hash.Hash, t *Type, visited map[*Type]bool) {
	if visited[t] {
		writeToken(h, "cycle")
		return
	}
	visited[t] = true

	writeToken(h, t.Kind.String())
	switch t.Kind {
	case KindMessage:
		for i := range t.Fields {
			f := &t.Fields[i]
			writeToken(h, "field", f.Name)
			writeAnnotation(h, f.Annotation)
			writeType(h, f.Type, visited)
		}
	case KindRepeated:
		writeType(h, t.Elem, visited)
	case KindMap:
		writeToken(h, t.MapKey.String())
		writeType(h, t.Elem, visited)
	case KindEnum:
		writeEnum(h, t.Enum)
	}
}

func writeEnum(h hash.Hash, e *Enum) {
	writeToken(h, "enum", e.Name, strconv.FormatBool(e.Inline))
	for i := range e.Enumerators {
		en := &e.Enumerators[i]
		writeToken(h, en.Name, strconv.FormatInt(en.Ordinal, 10))
		if en.Override != nil {
			writeToken(h, strconv.FormatInt(*en.Override, 10))
		}
	}
}

func writeAnnotation(h hash.Hash, ann *Annotation) {
	if ann == nil {
		return
	}
	writeToken(h, "annotation", string(ann.Format))
	if ann.Flags != nil {
		writeEnum(h, ann.Flags)
	}
	for _, rule := range ann.Rules {
		writeToken(h, "rule", rule.ErrorTitle, rule.ErrorLabel)
		for _, tag := range rule.AcceptIf {
			writeToken(h, "accept", string(tag))
		}
		for _, tag := range rule.RejectIf {
			writeToken(h, "reject", string(tag))
		}
	}
}
