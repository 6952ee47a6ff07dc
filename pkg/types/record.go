package types

import (
	"encoding/json"
	"sort"
)

// Language tags used by the flat row.
const (
	LangEN = "en"
	LangDE = "de"
)

// Summary parts.
const (
	PartProphecy    = "prophecy"
	PartFulfillment = "fulfillment"
)

// Record is one canonical prophecy entry.
type Record struct {
	ID          string
	ProphecyRef string
	Summary     Summary
	Category    Localized
	Status      string
	Fulfillment Fulfillment
	Notes       Localized

	// Extra holds top-level keys this schema does not know, in document
	// order, so they survive a load/write cycle.
	Extra []Field
}

// Field is one raw key/value pair of a JSON object.
type Field struct {
	Key   string
	Value json.RawMessage
}

// Key returns the unique key of the record: ProphecyRef, else ID.
func (r Record) Key() string {
	if r.ProphecyRef != "" {
		return r.ProphecyRef
	}
	return r.ID
}

// Summary holds the prophecy/fulfillment text. Prophecy and Fulfillment are
// the flat convenience fields mirroring English; Langs holds the nested
// per-language blocks and Suffixed any legacy "<part>_<lang>" keys.
type Summary struct {
	Prophecy    string
	Fulfillment string
	Langs       map[string]Passage
	Suffixed    map[string]string
}

// Passage is the text pair of one language block.
type Passage struct {
	Prophecy    string
	Fulfillment string

	// Extra holds members of the block other than the text pair, in
	// document order.
	Extra []Field
}

// MarshalJSON implements json.Marshaler.
func (p Passage) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field(PartProphecy, p.Prophecy)
	w.field(PartFulfillment, p.Fulfillment)
	w.extra(p.Extra, PartProphecy, PartFulfillment)
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Passage) UnmarshalJSON(data []byte) error {
	obj, err := ParseObject(data)
	if err != nil {
		return err
	}
	*p = passageOf(obj)
	return nil
}

func passageOf(obj *Object) Passage {
	p := Passage{
		Prophecy:    obj.Text(PartProphecy),
		Fulfillment: obj.Text(PartFulfillment),
	}
	p.Extra = obj.fieldsExcept(PartProphecy, PartFulfillment)
	return p
}

// Part returns the named part of p.
func (p Passage) Part(part string) string {
	if part == PartFulfillment {
		return p.Fulfillment
	}
	return p.Prophecy
}

// Fulfillment holds the references where the prophecy is fulfilled.
type Fulfillment struct {
	BiblicalRef string
	ExternalRef Localized

	// Extra holds members other than the two references, in document order.
	Extra []Field
}

// Localized maps a language tag to text. It encodes English first, then
// the remaining tags in lexical order.
type Localized map[string]string

// MarshalJSON implements json.Marshaler.
func (l Localized) MarshalJSON() ([]byte, error) {
	var w objectWriter
	for _, k := range langOrder(l) {
		w.field(k, l[k])
	}
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler. A bare string is taken as the
// English value; non-string members are kept as text.
func (l *Localized) UnmarshalJSON(data []byte) error {
	*l = localizedOf(data)
	return nil
}

func localizedOf(raw json.RawMessage) Localized {
	switch kindOf(raw) {
	case '{':
		obj, err := ParseObject(raw)
		if err != nil {
			return nil
		}
		out := make(Localized, obj.Len())
		for _, k := range obj.Keys() {
			out[k] = obj.Text(k)
		}
		return out
	case '"':
		if s := TextOf(raw); s != "" {
			return Localized{LangEN: s}
		}
	}
	return nil
}

// langOrder returns the keys of m with English first and the rest sorted.
func langOrder[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == LangEN || keys[j] == LangEN {
			return keys[i] == LangEN && keys[j] != LangEN
		}
		return keys[i] < keys[j]
	})
	return keys
}

// MarshalJSON implements json.Marshaler.
func (s Summary) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field(PartProphecy, s.Prophecy)
	w.field(PartFulfillment, s.Fulfillment)
	for _, lang := range langOrder(s.Langs) {
		w.field(lang, s.Langs[lang])
	}
	suffixed := make([]string, 0, len(s.Suffixed))
	for k := range s.Suffixed {
		suffixed = append(suffixed, k)
	}
	sort.Strings(suffixed)
	for _, k := range suffixed {
		w.field(k, s.Suffixed[k])
	}
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler. Object members become
// language blocks; other members besides the flat parts are kept as
// suffixed text.
func (s *Summary) UnmarshalJSON(data []byte) error {
	obj, err := ParseObject(data)
	if err != nil {
		return err
	}
	*s = Summary{}
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		switch {
		case k == PartProphecy:
			s.Prophecy = TextOf(v)
		case k == PartFulfillment:
			s.Fulfillment = TextOf(v)
		case kindOf(v) == '{':
			sub, err := ParseObject(v)
			if err != nil {
				return err
			}
			if s.Langs == nil {
				s.Langs = make(map[string]Passage)
			}
			s.Langs[k] = passageOf(sub)
		default:
			if s.Suffixed == nil {
				s.Suffixed = make(map[string]string)
			}
			s.Suffixed[k] = TextOf(v)
		}
	}
	return nil
}

// Text returns one language part, preferring the nested block, then the
// suffixed legacy key, then (English only) the flat field. The first
// non-empty value wins.
func (s Summary) Text(lang, part string) string {
	if p, ok := s.Langs[lang]; ok {
		if v := p.Part(part); v != "" {
			return v
		}
	}
	if v := s.Suffixed[part+"_"+lang]; v != "" {
		return v
	}
	if lang == LangEN {
		if part == PartFulfillment {
			return s.Fulfillment
		}
		return s.Prophecy
	}
	return ""
}

// MarshalJSON implements json.Marshaler.
func (f Fulfillment) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("biblicalRef", f.BiblicalRef)
	w.field("externalRef", f.ExternalRef)
	w.extra(f.Extra, "biblicalRef", "externalRef")
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Fulfillment) UnmarshalJSON(data []byte) error {
	*f = Fulfillment{}
	if kindOf(data) != '{' {
		return nil
	}
	obj, err := ParseObject(data)
	if err != nil {
		return err
	}
	f.BiblicalRef = obj.Text("biblicalRef")
	ext, _ := obj.Get("externalRef")
	f.ExternalRef = localizedOf(ext)
	f.Extra = obj.fieldsExcept("biblicalRef", "externalRef")
	return nil
}

// recordKeys are the top-level keys owned by Record.
var recordKeys = map[string]bool{
	"id": true, "prophecyRef": true, "summary": true, "category": true,
	"status": true, "fulfillment": true, "notes": true,
}

// MarshalJSON implements json.Marshaler. Fields are written in schema order
// followed by Extra.
func (r Record) MarshalJSON() ([]byte, error) {
	var w objectWriter
	w.field("id", r.ID)
	w.field("prophecyRef", r.ProphecyRef)
	w.field("summary", r.Summary)
	w.field("category", r.Category)
	w.field("status", r.Status)
	w.field("fulfillment", r.Fulfillment)
	w.field("notes", r.Notes)
	for _, f := range r.Extra {
		if recordKeys[f.Key] {
			continue
		}
		w.raw(f.Key, f.Value)
	}
	return w.bytes()
}

// UnmarshalJSON implements json.Unmarshaler for canonical records. Values
// of unexpected JSON types are coerced to text rather than rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	obj, err := ParseObject(data)
	if err != nil {
		return err
	}
	return r.fromObject(obj)
}

// RecordFromObject decodes a canonical record from an already parsed object.
func RecordFromObject(obj *Object) (Record, error) {
	var r Record
	err := r.fromObject(obj)
	return r, err
}

func (r *Record) fromObject(obj *Object) error {
	*r = Record{}
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		switch k {
		case "id":
			r.ID = TextOf(v)
		case "prophecyRef":
			r.ProphecyRef = TextOf(v)
		case "summary":
			if kindOf(v) == '{' {
				if err := json.Unmarshal(v, &r.Summary); err != nil {
					return err
				}
			}
		case "category":
			r.Category = localizedOf(v)
		case "status":
			r.Status = TextOf(v)
		case "fulfillment":
			if err := json.Unmarshal(v, &r.Fulfillment); err != nil {
				return err
			}
		case "notes":
			r.Notes = localizedOf(v)
		default:
			r.Extra = append(r.Extra, Field{Key: k, Value: v})
		}
	}
	return nil
}
