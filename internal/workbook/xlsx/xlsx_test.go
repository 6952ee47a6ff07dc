package xlsx

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

func newBook(t *testing.T) (*Workbook, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prophecies.xlsx")
	created, err := Create(path)
	require.NoError(t, err)
	require.True(t, created)

	wb, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb, path
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, types.ErrWorkbookUnavailable)

	_, err = Open("")
	assert.ErrorIs(t, err, types.ErrWorkbookUnavailable)
}

func TestCreateIsIdempotent(t *testing.T) {
	_, path := newBook(t)
	created, err := Create(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSheets(t *testing.T) {
	wb, _ := newBook(t)

	_, err := wb.Sheet("prophecies")
	assert.ErrorIs(t, err, types.ErrSheetNotFound)

	_, err = wb.AddSheet("prophecies")
	require.NoError(t, err)
	_, err = wb.AddSheet("prophecies")
	assert.ErrorIs(t, err, types.ErrSheetExists)

	sheets, err := wb.Sheets()
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "prophecies", sheets[1].Name())
}

func TestCellsPersistAcrossSave(t *testing.T) {
	wb, path := newBook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)

	require.NoError(t, s.SetCell(1, 1, "id"))
	require.NoError(t, s.SetCell(1, 2, "summary_prophecy_en"))
	require.NoError(t, s.SetCell(2, 1, "P-1"))
	require.NoError(t, s.SetCell(2, 2, "Sohn Davids — Matthäus 1"))
	require.NoError(t, s.SetCell(4, 3, "0042"))
	require.NoError(t, s.SetRowBold(1))
	require.NoError(t, s.SetColumnWidth(2, 40))
	require.NoError(t, s.(*Sheet).SetRowHidden(4, true))
	require.NoError(t, wb.Save())
	require.NoError(t, wb.Close())

	re, err := Open(path)
	require.NoError(t, err)
	defer re.Close()

	rs, err := re.Sheet("prophecies")
	require.NoError(t, err)
	v, err := rs.Cell(2, 2)
	require.NoError(t, err)
	assert.Equal(t, "Sohn Davids — Matthäus 1", v)
	v, err = rs.Cell(4, 3)
	require.NoError(t, err)
	assert.Equal(t, "0042", v, "text cells keep leading zeros")

	rows, cols, err := rs.Extent()
	require.NoError(t, err)
	assert.Equal(t, 4, rows, "hidden rows stay within the extent")
	assert.Equal(t, 3, cols)

	w, err := rs.(*Sheet).ColumnWidth(2)
	require.NoError(t, err)
	assert.InDelta(t, 40, w, 0.01)
}

func TestClearRangeShrinksExtent(t *testing.T) {
	wb, _ := newBook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)

	require.NoError(t, s.SetCell(1, 1, "id"))
	require.NoError(t, s.SetCell(2, 1, "P-1"))
	require.NoError(t, s.SetCell(3, 2, "x"))
	require.NoError(t, s.ClearRange(2, 1, 3, 14))

	rows, _, err := s.Extent()
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	v, err := s.Cell(2, 1)
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestOutOfRangeAndClosed(t *testing.T) {
	wb, _ := newBook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)

	_, err = s.Cell(0, 1)
	assert.ErrorIs(t, err, types.ErrCellOutOfRange)

	require.NoError(t, wb.Close())
	_, err = s.Cell(1, 1)
	assert.ErrorIs(t, err, types.ErrWorkbookClosed)
	_, err = wb.Sheets()
	assert.ErrorIs(t, err, types.ErrWorkbookClosed)
}
