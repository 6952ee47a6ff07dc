package types

import (
	"strings"

	"golang.org/x/text/cases"
)

// Status values that show up in the identifier column when a user shifts
// columns by one. A row whose identifier matches one of these is treated
// as having no identifier.
var MisalignedStatuses = map[string]bool{
	"fulfilled":               true,
	"partial":                 true,
	"partial / ongoing":       true,
	"fulfilled / partial":     true,
	"fulfilled / ongoing":     true,
	"fulfilled (typological)": true,
}

// NormalizeLabel folds a header or status label for comparison: trimmed and
// case-folded.
func NormalizeLabel(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// IsMisalignedStatus reports whether an identifier cell holds a status value.
func IsMisalignedStatus(id string) bool {
	return MisalignedStatuses[NormalizeLabel(id)]
}
