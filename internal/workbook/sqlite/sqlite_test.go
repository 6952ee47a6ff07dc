package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/prophecies/pkg/types"
)

func setupWorkbook(t *testing.T) (*Workbook, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prophecies.db")
	created, err := Create(path)
	require.NoError(t, err)
	require.True(t, created)

	wb, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { wb.Close() })
	return wb, path
}

func TestOpenMissing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.db"))
	assert.ErrorIs(t, err, types.ErrWorkbookUnavailable)
}

func TestCreateExisting(t *testing.T) {
	_, path := setupWorkbook(t)
	created, err := Create(path)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestSheetLifecycle(t *testing.T) {
	wb, _ := setupWorkbook(t)

	_, err := wb.Sheet("prophecies")
	assert.ErrorIs(t, err, types.ErrSheetNotFound)

	_, err = wb.AddSheet("Logs")
	require.NoError(t, err)
	_, err = wb.AddSheet("prophecies")
	require.NoError(t, err)
	_, err = wb.AddSheet("prophecies")
	assert.ErrorIs(t, err, types.ErrSheetExists)
	_, err = wb.AddSheet("")
	assert.ErrorIs(t, err, types.ErrSheetNameInvalid)

	sheets, err := wb.Sheets()
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, "Logs", sheets[0].Name())
	assert.Equal(t, "prophecies", sheets[1].Name())
}

func TestCells(t *testing.T) {
	wb, _ := setupWorkbook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)

	v, err := s.Cell(3, 3)
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, s.SetCell(1, 1, "id"))
	require.NoError(t, s.SetCell(2, 1, "P-1"))
	require.NoError(t, s.SetCell(2, 1, "P-2"))
	require.NoError(t, s.SetCell(5, 14, "Grüße"))

	v, err = s.Cell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, "P-2", v)

	rows, cols, err := s.Extent()
	require.NoError(t, err)
	assert.Equal(t, 5, rows)
	assert.Equal(t, 14, cols)

	require.NoError(t, s.ClearRange(2, 1, 5, 14))
	rows, cols, err = s.Extent()
	require.NoError(t, err)
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, cols)

	require.NoError(t, s.SetCell(1, 1, ""))
	rows, _, err = s.Extent()
	require.NoError(t, err)
	assert.Zero(t, rows)

	_, err = s.Cell(0, 1)
	assert.ErrorIs(t, err, types.ErrCellOutOfRange)
}

func TestStyles(t *testing.T) {
	wb, _ := setupWorkbook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)
	sheet := s.(*Sheet)

	require.NoError(t, sheet.SetRowHidden(4, true))
	require.NoError(t, sheet.SetRowBold(4))
	require.NoError(t, sheet.SetRowBold(1))
	require.NoError(t, sheet.SetColumnWidth(2, 120))
	require.NoError(t, sheet.SetColumnWidth(2, 60.5))

	bold, hidden, err := sheet.RowStyle(4)
	require.NoError(t, err)
	assert.True(t, bold)
	assert.True(t, hidden)

	bold, hidden, err = sheet.RowStyle(1)
	require.NoError(t, err)
	assert.True(t, bold)
	assert.False(t, hidden)

	w, err := sheet.ColumnWidth(2)
	require.NoError(t, err)
	assert.Equal(t, 60.5, w)
	w, err = sheet.ColumnWidth(3)
	require.NoError(t, err)
	assert.Zero(t, w)
}

func TestSaveCommitsAndCloseDiscards(t *testing.T) {
	wb, path := setupWorkbook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)
	require.NoError(t, s.SetCell(1, 1, "saved"))
	require.NoError(t, wb.Notify("Prophecies Import", "Import complete: 1 rows"))
	require.NoError(t, wb.Save())

	require.NoError(t, s.SetCell(1, 1, "discarded"))
	require.NoError(t, wb.Close())
	require.NoError(t, wb.Close())

	re, err := Open(path)
	require.NoError(t, err)
	defer re.Close()

	rs, err := re.Sheet("prophecies")
	require.NoError(t, err)
	v, err := rs.Cell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, "saved", v)

	notes, err := re.Notifications()
	require.NoError(t, err)
	assert.Equal(t, [][2]string{{"Prophecies Import", "Import complete: 1 rows"}}, notes)
}

func TestClosedWorkbook(t *testing.T) {
	wb, _ := setupWorkbook(t)
	s, err := wb.AddSheet("prophecies")
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	_, err = wb.Sheets()
	assert.ErrorIs(t, err, types.ErrWorkbookClosed)
	assert.ErrorIs(t, s.SetCell(1, 1, "x"), types.ErrWorkbookClosed)
	assert.ErrorIs(t, wb.Save(), types.ErrWorkbookClosed)
}
