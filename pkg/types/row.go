package types

// Column names of the flat row, in serialization order. The order is part of
// the tabular format; changing it requires a new header signature.
const (
	ColID                    = "id"
	ColSummaryProphecyEN     = "summary_prophecy_en"
	ColSummaryFulfillmentEN  = "summary_fulfillment_en"
	ColSummaryProphecyDE     = "summary_prophecy_de"
	ColSummaryFulfillmentDE  = "summary_fulfillment_de"
	ColCategoryEN            = "category_en"
	ColStatus                = "status"
	ColCategoryDE            = "category_de"
	ColProphecyRef           = "prophecy_ref"
	ColBiblicalRef           = "biblical_ref"
	ColExternalRefEN         = "external_ref_en"
	ColExternalRefDE         = "external_ref_de"
	ColNotesEN               = "notes_en"
	ColNotesDE               = "notes_de"
	ColLegacySummaryProphecy = "summary_prophecy"
)

// Columns lists the header labels of a Row in order.
var Columns = []string{
	ColID,
	ColSummaryProphecyEN, ColSummaryFulfillmentEN, ColSummaryProphecyDE, ColSummaryFulfillmentDE,
	ColCategoryEN, ColStatus, ColCategoryDE,
	ColProphecyRef, ColBiblicalRef, ColExternalRefEN, ColExternalRefDE,
	ColNotesEN, ColNotesDE,
}

// ColumnCount is the fixed width of a Row.
const ColumnCount = 14

// Zero-based cell positions within a Row.
const (
	IdxID = iota
	IdxSummaryProphecyEN
	IdxSummaryFulfillmentEN
	IdxSummaryProphecyDE
	IdxSummaryFulfillmentDE
	IdxCategoryEN
	IdxStatus
	IdxCategoryDE
	IdxProphecyRef
	IdxBiblicalRef
	IdxExternalRefEN
	IdxExternalRefDE
	IdxNotesEN
	IdxNotesDE
)

// Row is the flat serialization of a Record: ColumnCount text cells.
type Row []string

// Padded returns a copy of r right-padded with empty cells to ColumnCount.
// Cells beyond ColumnCount are dropped.
func (r Row) Padded() Row {
	out := make(Row, ColumnCount)
	copy(out, r)
	return out
}

// Blank reports whether every fixed cell of r is empty.
func (r Row) Blank() bool {
	for i, v := range r {
		if i >= ColumnCount {
			break
		}
		if v != "" {
			return false
		}
	}
	return true
}
