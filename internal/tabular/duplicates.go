package tabular

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Duplicate is one key shared by more than one sheet row.
type Duplicate struct {
	Key  string
	Rows []int // 1-based sheet rows
}

// DuplicateKeyError aborts an export. It lists every duplicated key in the
// order the key was first seen.
type DuplicateKeyError struct {
	Duplicates []Duplicate
}

func (e *DuplicateKeyError) Error() string {
	var b strings.Builder
	b.WriteString("Duplicate prophecy_ref detected - export aborted:")
	for _, d := range e.Duplicates {
		key := d.Key
		if key == "" {
			key = "(empty)"
		}
		rows := make([]string, len(d.Rows))
		for i, r := range d.Rows {
			rows[i] = fmt.Sprint(r)
		}
		fmt.Fprintf(&b, "\n  %s (rows %s)", key, strings.Join(rows, ", "))
	}
	return b.String()
}

// Is matches types.ErrDuplicateKeys.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == types.ErrDuplicateKeys
}

// keyIndex groups row numbers by key, remembering first-seen order.
type keyIndex struct {
	order []string
	rows  map[string][]int
}

func (k *keyIndex) add(key string, row int) {
	if k.rows == nil {
		k.rows = make(map[string][]int)
	}
	if _, ok := k.rows[key]; !ok {
		k.order = append(k.order, key)
	}
	k.rows[key] = append(k.rows[key], row)
}

// duplicates returns the error for every key seen more than once, or nil.
func (k *keyIndex) duplicates() error {
	var dups []Duplicate
	for _, key := range k.order {
		if rows := k.rows[key]; len(rows) > 1 {
			dups = append(dups, Duplicate{Key: key, Rows: rows})
		}
	}
	if len(dups) == 0 {
		return nil
	}
	return &DuplicateKeyError{Duplicates: dups}
}
