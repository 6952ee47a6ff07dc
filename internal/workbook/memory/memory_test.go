package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

func TestSheetOrderAndLookup(t *testing.T) {
	wb := New()
	_, err := wb.AddSheet("b")
	require.NoError(t, err)
	_, err = wb.AddSheet("a")
	require.NoError(t, err)
	_, err = wb.AddSheet("a")
	assert.ErrorIs(t, err, types.ErrSheetExists)

	sheets, err := wb.Sheets()
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "b", sheets[0].Name())

	_, err = wb.Sheet("A")
	assert.ErrorIs(t, err, types.ErrSheetNotFound, "names match exactly")
}

func TestExtentIgnoresClearedCells(t *testing.T) {
	s, err := New().Add("s")
	require.NoError(t, err)

	rows, cols, err := s.Extent()
	require.NoError(t, err)
	assert.Zero(t, rows)
	assert.Zero(t, cols)

	require.NoError(t, s.SetRow(3, "a", "", "c"))
	s.SetRowHidden(3, true)
	rows, cols, err = s.Extent()
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 3, cols)
	assert.True(t, s.RowHidden(3))

	require.NoError(t, s.ClearRange(3, 3, 3, 3))
	_, cols, err = s.Extent()
	require.NoError(t, err)
	assert.Equal(t, 1, cols)
}

func TestClosed(t *testing.T) {
	wb := New()
	s, err := wb.Add("s")
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	assert.ErrorIs(t, s.SetCell(1, 1, "x"), types.ErrWorkbookClosed)
	assert.ErrorIs(t, wb.Notify("t", "m"), types.ErrWorkbookClosed)
	assert.ErrorIs(t, wb.Save(), types.ErrWorkbookClosed)
	_, err = wb.Sheets()
	assert.ErrorIs(t, err, types.ErrWorkbookClosed)
}
