// Package migrate upgrades legacy flat prophecy objects to the canonical
// hierarchical Record.
//
// Each document element is classified once by shape: an element whose
// "summary" member is an object is a CanonicalRecord, anything else is a
// LegacyRecord. Only the legacy case is rewritten. Legacy keys outside the
// recognized set are preserved verbatim in notes.en so no information is
// lost.
package migrate

import (
	"regexp"
	"strings"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Legacy object keys.
const (
	keyID             = "id"
	keyCategory       = "category"
	keyCategoryDE     = "category_de"
	keyProphecyRef    = "prophecyRef"
	keyFulfillmentRef = "fulfillmentRef"
	keyProphecyText   = "prophecyText"
	keyStatus         = "status"
	keyDate           = "date"
	keySources        = "sources"
	keyNotes          = "notes"
	keyNotesEN        = "notes_en"
	keyNotesDE        = "notes_de"
	keyExternalRefDE  = "externalFulfillmentRef_de"
)

// RecognizedLegacyKeys is the allow-list of legacy keys with a structured
// home. Every other key is reported as an extra in notes.en, including
// category_de and externalFulfillmentRef_de which are mapped and echoed.
var RecognizedLegacyKeys = map[string]bool{
	keyID:             true,
	keyCategory:       true,
	keyProphecyRef:    true,
	keyFulfillmentRef: true,
	keyProphecyText:   true,
	keyStatus:         true,
	keyDate:           true,
	keySources:        true,
	keyNotes:          true,
	keyNotesEN:        true,
	keyNotesDE:        true,
}

// noteSeparator joins appended segments of notes.en.
const noteSeparator = " | "

// splitPattern matches the first whitespace-padded dash separating the
// prophecy from its fulfillment.
var splitPattern = regexp.MustCompile(`[\s\p{Zs}]+[—–-][\s\p{Zs}]+`)

// Entry is one document element, classified by shape.
type Entry interface {
	// Canonical returns the element as a canonical Record.
	Canonical() (types.Record, error)
}

// CanonicalRecord is an element already in the hierarchical schema.
type CanonicalRecord struct {
	Object *types.Object
}

// LegacyRecord is an element in the old flat schema.
type LegacyRecord struct {
	Object *types.Object
}

// Classify decides the variant of obj: a "summary" member that is itself an
// object marks a canonical record.
func Classify(obj *types.Object) Entry {
	if obj.IsObject("summary") {
		return CanonicalRecord{Object: obj}
	}
	return LegacyRecord{Object: obj}
}

// Migrate classifies obj and returns its canonical form.
func Migrate(obj *types.Object) (types.Record, error) {
	return Classify(obj).Canonical()
}

// Canonical decodes the record unchanged, backfilling an empty id from
// prophecyRef.
func (c CanonicalRecord) Canonical() (types.Record, error) {
	r, err := types.RecordFromObject(c.Object)
	if err != nil {
		return types.Record{}, err
	}
	if r.ID == "" && r.ProphecyRef != "" {
		r.ID = r.ProphecyRef
	}
	return r, nil
}

// Canonical maps the legacy fields onto the hierarchical schema. The
// summary carries only the flat prophecy/fulfillment pair; per-language
// blocks are added by the row decoder.
func (l LegacyRecord) Canonical() (types.Record, error) {
	o := l.Object

	ref := o.Text(keyProphecyRef)
	if ref == "" {
		ref = o.Text(keyID)
	}

	prophecy, fulfillment := SplitProphecyText(o.Text(keyProphecyText))

	notesEN := o.Text(keyNotes)
	if alt := o.Text(keyNotesEN); alt != "" && alt != notesEN {
		notesEN = appendNote(notesEN, alt)
	}
	if raw, ok := o.Get(keyDate); ok && truthy(raw) {
		notesEN = appendNote(notesEN, "Date: "+Display(raw))
	}
	if extras := Extras(o); len(extras) > 0 {
		parts := make([]string, len(extras))
		for i, e := range extras {
			parts[i] = e.String()
		}
		notesEN = appendNote(notesEN, "Extras: "+strings.Join(parts, "; "))
	}

	return types.Record{
		ID:          ref,
		ProphecyRef: ref,
		Summary:     types.Summary{Prophecy: prophecy, Fulfillment: fulfillment},
		Category: types.Localized{
			types.LangEN: strings.TrimSpace(o.Text(keyCategory)),
			types.LangDE: o.Text(keyCategoryDE),
		},
		Status: strings.TrimSpace(o.Text(keyStatus)),
		Fulfillment: types.Fulfillment{
			BiblicalRef: strings.TrimSpace(o.Text(keyFulfillmentRef)),
			ExternalRef: types.Localized{
				types.LangEN: joinSources(o),
				types.LangDE: o.Text(keyExternalRefDE),
			},
		},
		Notes: types.Localized{
			types.LangEN: notesEN,
			types.LangDE: o.Text(keyNotesDE),
		},
	}, nil
}

// SplitProphecyText splits combined legacy text on the first
// whitespace-padded dash. Text without a delimiter is all prophecy.
func SplitProphecyText(text string) (prophecy, fulfillment string) {
	text = strings.TrimSpace(text)
	loc := splitPattern.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	return strings.TrimSpace(text[:loc[0]]), strings.TrimSpace(text[loc[1]:])
}

// joinSources joins the truthy entries of the legacy sources array. A
// scalar sources value is kept as its text.
func joinSources(o *types.Object) string {
	raw, ok := o.Get(keySources)
	if !ok || !truthy(raw) {
		return ""
	}
	items, ok := arrayItems(raw)
	if !ok {
		return Display(raw)
	}
	var out []string
	for _, it := range items {
		if truthy(it) {
			out = append(out, Display(it))
		}
	}
	return strings.Join(out, "; ")
}

func appendNote(notes, segment string) string {
	if notes == "" {
		return segment
	}
	return notes + noteSeparator + segment
}
