package types

import (
	"bytes"
	"encoding/json"
)

// MarshalText encodes v as compact JSON without escaping HTML characters or
// non-ASCII text.
func MarshalText(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// objectWriter builds a JSON object field by field in a fixed order.
type objectWriter struct {
	buf bytes.Buffer
	n   int
	err error
}

func (w *objectWriter) field(key string, v any) {
	if w.err != nil {
		return
	}
	b, err := MarshalText(v)
	if err != nil {
		w.err = err
		return
	}
	w.raw(key, b)
}

func (w *objectWriter) raw(key string, val json.RawMessage) {
	if w.err != nil {
		return
	}
	if w.n == 0 {
		w.buf.WriteByte('{')
	} else {
		w.buf.WriteByte(',')
	}
	k, err := MarshalText(key)
	if err != nil {
		w.err = err
		return
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	if len(val) == 0 {
		val = json.RawMessage("null")
	}
	w.buf.Write(val)
	w.n++
}

// extra writes fields in order, skipping keys already written as owned.
func (w *objectWriter) extra(fields []Field, owned ...string) {
next:
	for _, f := range fields {
		for _, k := range owned {
			if f.Key == k {
				continue next
			}
		}
		w.raw(f.Key, f.Value)
	}
}

func (w *objectWriter) bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.n == 0 {
		return []byte("{}"), nil
	}
	w.buf.WriteByte('}')
	return w.buf.Bytes(), nil
}
