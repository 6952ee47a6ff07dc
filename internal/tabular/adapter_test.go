package tabular_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/internal/workbook/memory"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

func newAdapter() *tabular.Adapter {
	return tabular.New(types.DefaultConfig(), nil)
}

func headerRow(t *testing.T, s *memory.Sheet) {
	t.Helper()
	require.NoError(t, s.SetRow(1, types.Columns...))
}

func dataRow(id, ref, status string) []string {
	row := make([]string, types.ColumnCount)
	row[types.IdxID] = id
	row[types.IdxSummaryProphecyEN] = "prophecy " + id
	row[types.IdxStatus] = status
	row[types.IdxProphecyRef] = ref
	return row
}

func TestResolve(t *testing.T) {
	t.Run("primary name wins over legacy", func(t *testing.T) {
		wb := memory.New()
		_, err := wb.Add("bible_prophecies")
		require.NoError(t, err)
		_, err = wb.Add("prophecies")
		require.NoError(t, err)

		s, err := newAdapter().Resolve(wb, false)
		require.NoError(t, err)
		assert.Equal(t, "prophecies", s.Name())
	})

	t.Run("legacy name", func(t *testing.T) {
		wb := memory.New()
		_, err := wb.Add("bible_prophecies")
		require.NoError(t, err)

		s, err := newAdapter().Resolve(wb, false)
		require.NoError(t, err)
		assert.Equal(t, "bible_prophecies", s.Name())
	})

	t.Run("header signature, case-insensitive", func(t *testing.T) {
		wb := memory.New()
		_, err := wb.Add("Sheet1")
		require.NoError(t, err)
		data, err := wb.Add("Data")
		require.NoError(t, err)
		require.NoError(t, data.SetRow(1, " ID ", "Summary_Prophecy_EN"))

		s, err := newAdapter().Resolve(wb, false)
		require.NoError(t, err)
		assert.Equal(t, "Data", s.Name())
	})

	t.Run("legacy header signature", func(t *testing.T) {
		wb := memory.New()
		old, err := wb.Add("Old")
		require.NoError(t, err)
		require.NoError(t, old.SetRow(1, "id", "summary_prophecy"))

		s, err := newAdapter().Resolve(wb, false)
		require.NoError(t, err)
		assert.Equal(t, "Old", s.Name())
	})

	t.Run("not found without create", func(t *testing.T) {
		wb := memory.New()
		_, err := wb.Add("Sheet1")
		require.NoError(t, err)

		_, err = newAdapter().Resolve(wb, false)
		assert.ErrorIs(t, err, types.ErrSheetNotFound)
	})

	t.Run("created under primary name", func(t *testing.T) {
		wb := memory.New()

		s, err := newAdapter().Resolve(wb, true)
		require.NoError(t, err)
		assert.Equal(t, "prophecies", s.Name())
		_, err = wb.Lookup("prophecies")
		assert.NoError(t, err)
	})
}

func TestReconcileHeader(t *testing.T) {
	t.Run("canonical header is left alone and emphasized", func(t *testing.T) {
		s, err := memory.New().Add("prophecies")
		require.NoError(t, err)
		headerRow(t, s)
		require.NoError(t, s.SetCell(1, 1, "ID"))

		rewritten, err := newAdapter().ReconcileHeader(s)
		require.NoError(t, err)
		assert.False(t, rewritten)
		v, _ := s.Cell(1, 1)
		assert.Equal(t, "ID", v)
		assert.True(t, s.Bold(1))
	})

	t.Run("legacy signature is rewritten", func(t *testing.T) {
		s, err := memory.New().Add("prophecies")
		require.NoError(t, err)
		require.NoError(t, s.SetRow(1, "id", "summary_prophecy", "summary_fulfillment"))

		rewritten, err := newAdapter().ReconcileHeader(s)
		require.NoError(t, err)
		assert.True(t, rewritten)
		for i, want := range types.Columns {
			got, _ := s.Cell(1, i+1)
			assert.Equal(t, want, got)
		}
		assert.True(t, s.Bold(1))
	})

	t.Run("missing last column is rewritten", func(t *testing.T) {
		s, err := memory.New().Add("prophecies")
		require.NoError(t, err)
		require.NoError(t, s.SetRow(1, types.Columns[:types.ColumnCount-1]...))

		rewritten, err := newAdapter().ReconcileHeader(s)
		require.NoError(t, err)
		assert.True(t, rewritten)
		got, _ := s.Cell(1, types.ColumnCount)
		assert.Equal(t, types.ColNotesDE, got)
	})

	t.Run("empty sheet gets a header", func(t *testing.T) {
		s, err := memory.New().Add("prophecies")
		require.NoError(t, err)

		rewritten, err := newAdapter().ReconcileHeader(s)
		require.NoError(t, err)
		assert.True(t, rewritten)
	})
}

func TestWriteRecordsReplacesDataRows(t *testing.T) {
	s, err := memory.New().Add("prophecies")
	require.NoError(t, err)
	headerRow(t, s)
	for r := 2; r <= 6; r++ {
		require.NoError(t, s.SetRow(r, dataRow("OLD", "OLD", "stale")...))
	}
	require.NoError(t, s.SetCell(9, 15, "outside"))

	recs := []types.Record{
		{ID: "P-1", ProphecyRef: "P-1", Summary: types.Summary{Prophecy: "a"}, Status: "fulfilled"},
		{ID: "P-2", ProphecyRef: "P-2", Notes: types.Localized{types.LangDE: "Notiz"}},
	}
	require.NoError(t, newAdapter().WriteRecords(s, recs))

	v, _ := s.Cell(2, types.IdxID+1)
	assert.Equal(t, "P-1", v)
	v, _ = s.Cell(2, types.IdxStatus+1)
	assert.Equal(t, "fulfilled", v)
	v, _ = s.Cell(3, types.IdxNotesDE+1)
	assert.Equal(t, "Notiz", v)
	for r := 4; r <= 6; r++ {
		v, _ = s.Cell(r, 1)
		assert.Empty(t, v, "row %d", r)
	}
	v, _ = s.Cell(9, 15)
	assert.Equal(t, "outside", v, "cells beyond the fixed columns are not cleared")
	h, _ := s.Cell(1, 1)
	assert.Equal(t, types.ColID, h)
}

func TestReadRecords(t *testing.T) {
	s, err := memory.New().Add("prophecies")
	require.NoError(t, err)
	headerRow(t, s)
	require.NoError(t, s.SetRow(2, dataRow(" P-1 ", "", "fulfilled")...))
	// row 3 blank
	require.NoError(t, s.SetRow(4, dataRow("P-2", "P-2", "partial")...))
	require.NoError(t, s.SetRow(5, "   ", "", "\t"))
	require.NoError(t, s.SetRow(6, dataRow("X", "P-3", "")...))
	s.SetRowHidden(6, true)

	recs, err := newAdapter().ReadRecords(s)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "P-1", recs[0].ProphecyRef)
	assert.Equal(t, "P-1", recs[0].ID)
	assert.Equal(t, "P-2", recs[1].Key())
	assert.Equal(t, "P-3", recs[2].Key(), "hidden rows are read")
}

func TestReadRecordsEmptySheet(t *testing.T) {
	s, err := memory.New().Add("prophecies")
	require.NoError(t, err)
	headerRow(t, s)

	recs, err := newAdapter().ReadRecords(s)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestReadRecordsDuplicates(t *testing.T) {
	s, err := memory.New().Add("prophecies")
	require.NoError(t, err)
	headerRow(t, s)
	require.NoError(t, s.SetRow(2, dataRow("P-001", "P-001", "")...))
	require.NoError(t, s.SetRow(3, dataRow("P-002", "P-002", "")...))
	require.NoError(t, s.SetRow(4, dataRow("x", "P-001", "")...))
	require.NoError(t, s.SetRow(5, dataRow("P-002", "", "")...))
	require.NoError(t, s.SetRow(7, dataRow("P-001", "", "")...))

	recs, err := newAdapter().ReadRecords(s)
	assert.Nil(t, recs)
	require.ErrorIs(t, err, types.ErrDuplicateKeys)

	var dup *tabular.DuplicateKeyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, []tabular.Duplicate{
		{Key: "P-001", Rows: []int{2, 4, 7}},
		{Key: "P-002", Rows: []int{3, 5}},
	}, dup.Duplicates)
	assert.Contains(t, err.Error(), "P-001 (rows 2, 4, 7)")
}

func TestReadRecordsMisalignedRowsCollide(t *testing.T) {
	s, err := memory.New().Add("prophecies")
	require.NoError(t, err)
	headerRow(t, s)
	require.NoError(t, s.SetRow(2, dataRow("partial", "", "")...))
	require.NoError(t, s.SetRow(3, dataRow("Fulfilled", "", "")...))

	core, logs := observer.New(zapcore.WarnLevel)
	a := tabular.New(types.DefaultConfig(), zap.New(core))

	_, err = a.ReadRecords(s)
	var dup *tabular.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, []tabular.Duplicate{{Key: "", Rows: []int{2, 3}}}, dup.Duplicates)
	assert.Contains(t, err.Error(), "(empty) (rows 2, 3)")
	assert.Equal(t, 2, logs.Len())
}

func TestAutoFit(t *testing.T) {
	s, err := memory.New().Add("prophecies")
	require.NoError(t, err)
	headerRow(t, s)

	long := make([]rune, 300)
	for i := range long {
		long[i] = 'x'
	}
	row := dataRow("P-1", "P-1", "fulfilled")
	row[types.IdxSummaryProphecyEN] = string(long)
	row[types.IdxBiblicalRef] = string(long)
	row[types.IdxNotesEN] = "short\nlines"
	require.NoError(t, s.SetRow(2, row...))

	require.NoError(t, newAdapter().AutoFit(s))
	assert.Equal(t, float64(types.DefaultWidthCap), s.ColumnWidth(types.IdxSummaryProphecyEN+1))
	assert.Equal(t, float64(302), s.ColumnWidth(types.IdxBiblicalRef+1), "uncapped column")
	assert.Equal(t, float64(len(types.ColNotesEN)+2), s.ColumnWidth(types.IdxNotesEN+1))
	assert.Equal(t, float64(len("fulfilled")+2), s.ColumnWidth(types.IdxStatus+1))
}

func TestNotify(t *testing.T) {
	wb := memory.New()
	tabular.Notify(wb, nil, "Prophecies Import", "Import complete: 2 rows")
	assert.Equal(t, []memory.Notification{{Title: "Prophecies Import", Message: "Import complete: 2 rows"}}, wb.Notifications())

	require.NoError(t, wb.Close())
	tabular.Notify(wb, zap.NewNop(), "x", "y")
}
