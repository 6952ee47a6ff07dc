package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned by ParseObject when the input is valid JSON but
// not a JSON object.
var ErrNotObject = errors.New("value is not a JSON object")

// Object is an untyped JSON object that remembers the order of its keys.
// Duplicate keys keep the last value at the position of the first.
type Object struct {
	keys   []string
	values map[string]json.RawMessage
}

// ParseObject decodes a single JSON object, preserving key order.
func ParseObject(data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, ErrNotObject
	}

	obj := &Object{values: make(map[string]json.RawMessage)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key %v is not a string", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("decoding value of %q: %w", key, err)
		}
		obj.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

// Keys returns the object keys in document order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// Len returns the number of keys.
func (o *Object) Len() int { return len(o.keys) }

// Get returns the raw value stored under key.
func (o *Object) Get(key string) (json.RawMessage, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores a raw value under key, appending the key when it is new.
func (o *Object) Set(key string, val json.RawMessage) {
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = val
}

// Text returns the value under key as text. See TextOf.
func (o *Object) Text(key string) string {
	v, _ := o.Get(key)
	return TextOf(v)
}

// IsObject reports whether the value under key is itself a JSON object.
func (o *Object) IsObject(key string) bool {
	v, ok := o.Get(key)
	return ok && kindOf(v) == '{'
}

// fieldsExcept returns the members whose key is not in skip, in document
// order, or nil when there are none.
func (o *Object) fieldsExcept(skip ...string) []Field {
	var out []Field
next:
	for _, k := range o.keys {
		for _, s := range skip {
			if k == s {
				continue next
			}
		}
		out = append(out, Field{Key: k, Value: o.values[k]})
	}
	return out
}

// MarshalJSON writes the object with its original key order.
func (o *Object) MarshalJSON() ([]byte, error) {
	var w objectWriter
	for _, k := range o.keys {
		w.raw(k, o.values[k])
	}
	return w.bytes()
}

// TextOf converts a raw JSON value to text: strings are unquoted, null and
// missing values are empty, anything else is its compact JSON form.
func TextOf(raw json.RawMessage) string {
	switch kindOf(raw) {
	case 0, 'n':
		return ""
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	default:
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(bytes.TrimSpace(raw))
		}
		return buf.String()
	}
}

// kindOf returns the first significant byte of a raw value, 0 when empty.
func kindOf(raw json.RawMessage) byte {
	b := bytes.TrimSpace(raw)
	if len(b) == 0 {
		return 0
	}
	return b[0]
}
