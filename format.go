package atlas

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders a resolved field's runtime value in its canonical display
// form, following the field's format hint. Fields without a hint render raw.
// Pure function; safe for concurrent use at report time.
func Format(fd *FieldDescriptor, value any) (string, error) {
	hint := FormatRaw
	var flags *Enum
	if fd.Annotation != nil && fd.Annotation.Format != "" {
		hint = fd.Annotation.Format
		flags = fd.Annotation.Flags
	}
	return FormatValue(hint, flags, value)
}

// FormatValue renders a value under an explicit hint. The flags enum is
// consulted only for FormatFlags and may be nil otherwise.
func FormatValue(hint FormatHint, flags *Enum, value any) (string, error) {
	switch hint {
	case "", FormatRaw:
		return formatRaw(value), nil

	case FormatLowercase:
		switch v := value.(type) {
		case string:
			return asciiLower(v), nil
		case []byte:
			return asciiLower(string(v)), nil
		default:
			return "", fmt.Errorf("%w: lowercase needs a string or byte value, got %T", ErrTypeMismatch, value)
		}

	case FormatHex:
		u, ok := toUint64(value)
		if !ok {
			return "", fmt.Errorf("%w: hex needs an unsigned integer value, got %T", ErrTypeMismatch, value)
		}
		return "0x" + strconv.FormatUint(u, 16), nil

	case FormatFlags:
		if flags == nil {
			return "", fmt.Errorf("%w: flags hint without an enum", ErrDanglingReference)
		}
		u, ok := toUint64(value)
		if !ok {
			return "", fmt.Errorf("%w: flags needs an integer value, got %T", ErrTypeMismatch, value)
		}
		return formatFlags(flags, u), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidHint, hint)
	}
}

// formatRaw returns the language-natural string form of a value.
func formatRaw(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.FormatInt(int64(v), 10)
	case int32:
		return strconv.FormatInt(int64(v), 10)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint:
		return strconv.FormatUint(uint64(v), 10)
	case uint32:
		return strconv.FormatUint(uint64(v), 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	default:
		return fmt.Sprintf("%v", value)
	}
}

// formatFlags decomposes a bitmask into the enum's matching enumerator
// names, declaration order. A flag matches iff its semantic value is
// non-zero and fully contained in the value. Bits covered by no enumerator
// survive as a trailing hex remainder.
func formatFlags(e *Enum, v uint64) string {
	var parts []string
	rem := v
	for i := range e.Enumerators {
		en := &e.Enumerators[i]
		sv := uint64(en.SemanticValue())
		if sv != 0 && v&sv == sv {
			parts = append(parts, en.Name)
			rem &^= sv
		}
	}
	if rem != 0 || len(parts) == 0 {
		parts = append(parts, "0x"+strconv.FormatUint(rem, 16))
	}
	return strings.Join(parts, "|")
}

// asciiLower lowercases ASCII letters only, leaving other bytes alone.
func asciiLower(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// toUint64 widens any non-negative integer value to uint64.
func toUint64(value any) (uint64, bool) {
	switch v := value.(type) {
	case uint:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint32:
		return uint64(v), true
	case uint64:
		return v, true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int8:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int16:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int32:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
