// Package codec converts between canonical Records and fixed-width Rows.
// Both directions are pure projections; validation happens in the tabular
// adapter on the read-back path.
package codec

import (
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Encode projects r onto a Row of types.ColumnCount cells. Missing values
// encode as empty cells.
func Encode(r types.Record) types.Row {
	row := make(types.Row, types.ColumnCount)
	row[types.IdxID] = r.ID
	row[types.IdxSummaryProphecyEN] = r.Summary.Text(types.LangEN, types.PartProphecy)
	row[types.IdxSummaryFulfillmentEN] = r.Summary.Text(types.LangEN, types.PartFulfillment)
	row[types.IdxSummaryProphecyDE] = r.Summary.Text(types.LangDE, types.PartProphecy)
	row[types.IdxSummaryFulfillmentDE] = r.Summary.Text(types.LangDE, types.PartFulfillment)
	row[types.IdxCategoryEN] = r.Category[types.LangEN]
	row[types.IdxStatus] = r.Status
	row[types.IdxCategoryDE] = r.Category[types.LangDE]
	row[types.IdxProphecyRef] = r.ProphecyRef
	row[types.IdxBiblicalRef] = r.Fulfillment.BiblicalRef
	row[types.IdxExternalRefEN] = r.Fulfillment.ExternalRef[types.LangEN]
	row[types.IdxExternalRefDE] = r.Fulfillment.ExternalRef[types.LangDE]
	row[types.IdxNotesEN] = r.Notes[types.LangEN]
	row[types.IdxNotesDE] = r.Notes[types.LangDE]
	return row
}

// Decode builds a canonical Record from a Row. Short rows are padded with
// empty cells.
//
// An identifier cell holding a status value is treated as empty so the row
// surfaces in duplicate detection instead of being trusted. The record key
// comes from the prophecy_ref cell, falling back to the identifier cell.
// A German summary block is emitted only when a German summary cell has
// text.
func Decode(row types.Row) types.Record {
	c := row.Padded()

	id := c[types.IdxID]
	if types.IsMisalignedStatus(id) {
		id = ""
	}
	ref := c[types.IdxProphecyRef]
	if ref == "" {
		ref = id
	}

	en := types.Passage{
		Prophecy:    c[types.IdxSummaryProphecyEN],
		Fulfillment: c[types.IdxSummaryFulfillmentEN],
	}
	summary := types.Summary{
		Prophecy:    en.Prophecy,
		Fulfillment: en.Fulfillment,
		Langs:       map[string]types.Passage{types.LangEN: en},
	}
	if c[types.IdxSummaryProphecyDE] != "" || c[types.IdxSummaryFulfillmentDE] != "" {
		summary.Langs[types.LangDE] = types.Passage{
			Prophecy:    c[types.IdxSummaryProphecyDE],
			Fulfillment: c[types.IdxSummaryFulfillmentDE],
		}
	}

	return types.Record{
		ID:          ref,
		ProphecyRef: ref,
		Summary:     summary,
		Category: types.Localized{
			types.LangEN: c[types.IdxCategoryEN],
			types.LangDE: c[types.IdxCategoryDE],
		},
		Status: c[types.IdxStatus],
		Fulfillment: types.Fulfillment{
			BiblicalRef: c[types.IdxBiblicalRef],
			ExternalRef: types.Localized{
				types.LangEN: c[types.IdxExternalRefEN],
				types.LangDE: c[types.IdxExternalRefDE],
			},
		},
		Notes: types.Localized{
			types.LangEN: c[types.IdxNotesEN],
			types.LangDE: c[types.IdxNotesDE],
		},
	}
}
