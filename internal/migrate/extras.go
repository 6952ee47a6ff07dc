package migrate

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Extra is an unrecognized legacy key and the literal form of its value.
type Extra struct {
	Key     string
	Literal string
}

// String renders the extra as key=literal.
func (e Extra) String() string {
	return e.Key + "=" + e.Literal
}

// Extras returns the keys of o outside RecognizedLegacyKeys, in document
// order.
func Extras(o *types.Object) []Extra {
	var out []Extra
	for _, k := range o.Keys() {
		if RecognizedLegacyKeys[k] {
			continue
		}
		v, _ := o.Get(k)
		out = append(out, Extra{Key: k, Literal: Literal(v)})
	}
	return out
}

// Literal renders a raw JSON value in literal notation: strings in single
// quotes (double quotes when the text has a single quote and no double
// quote), true/false/null as True/False/None, containers recursively.
func Literal(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "None"
	}
	switch raw[0] {
	case '"':
		return quote(types.TextOf(raw))
	case 't':
		return "True"
	case 'f':
		return "False"
	case 'n':
		return "None"
	case '[':
		items, _ := arrayItems(raw)
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = Literal(it)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case '{':
		obj, err := types.ParseObject(raw)
		if err != nil {
			return string(raw)
		}
		parts := make([]string, 0, obj.Len())
		for _, k := range obj.Keys() {
			v, _ := obj.Get(k)
			parts = append(parts, quote(k)+": "+Literal(v))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return string(raw)
	}
}

// Display renders a raw JSON value for a note: strings as their text,
// everything else in literal notation.
func Display(raw json.RawMessage) string {
	if b := bytes.TrimSpace(raw); len(b) > 0 && b[0] == '"' {
		return types.TextOf(b)
	}
	return Literal(raw)
}

func quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var b strings.Builder
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			b.WriteString(`\x`)
			h := strconv.FormatInt(int64(r), 16)
			if len(h) < 2 {
				b.WriteByte('0')
			}
			b.WriteString(h)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}

// truthy reports whether a raw value counts as present: not null, false,
// zero, or an empty string, array or object.
func truthy(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return false
	}
	switch raw[0] {
	case 'n', 'f':
		return false
	case '"':
		return types.TextOf(raw) != ""
	case '[':
		items, _ := arrayItems(raw)
		return len(items) > 0
	case '{':
		obj, err := types.ParseObject(raw)
		return err == nil && obj.Len() > 0
	case 't':
		return true
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		return err != nil || f != 0
	}
}

// arrayItems splits a raw JSON array into its elements.
func arrayItems(raw json.RawMessage) ([]json.RawMessage, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
