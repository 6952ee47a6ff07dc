package logsink

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prophecies/internal/workbook/memory"
)

func TestSinkTeesAndBuffers(t *testing.T) {
	var out, errOut bytes.Buffer
	s := New(&out, &errOut)

	fmt.Fprint(s.Stdout(), "Imported 3 rows\n\n   \nsecond line  \n")
	fmt.Fprintln(s.Stderr(), "ERROR: Sheet not found.")

	assert.Equal(t, "Imported 3 rows\n\n   \nsecond line  \n", out.String())
	assert.Equal(t, "ERROR: Sheet not found.\n", errOut.String())
	assert.Equal(t, []string{
		"OUT Imported 3 rows",
		"OUT second line",
		"ERR ERROR: Sheet not found.",
	}, s.Lines())
}

func TestSinkWithoutConsole(t *testing.T) {
	s := New(nil, nil)
	n, err := s.Stdout().Write([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"OUT x"}, s.Lines())
}

func TestNewLoggerRoutesByLevel(t *testing.T) {
	s := New(nil, nil)
	log, err := NewLogger(s, "info")
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("imported", zap.Int("rows", 2))
	log.Warn("reload count mismatch")
	log.Error("write failed")

	lines := s.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "OUT INFO\timported\t{\"rows\": 2}", lines[0])
	assert.Equal(t, "ERR WARN\treload count mismatch", lines[1])
	assert.Equal(t, "ERR ERROR\twrite failed", lines[2])
}

func TestNewLoggerLevels(t *testing.T) {
	s := New(nil, nil)
	log, err := NewLogger(s, "debug")
	require.NoError(t, err)
	log.Debug("shown")
	assert.Equal(t, []string{"OUT DEBUG\tshown"}, s.Lines())

	_, err = NewLogger(s, "loud")
	assert.Error(t, err)

	log, err = NewLogger(New(nil, nil), "")
	require.NoError(t, err)
	assert.NotNil(t, log)
}

func TestFlushRewritesLogSheet(t *testing.T) {
	wb := memory.New()
	old, err := wb.Add("Logs")
	require.NoError(t, err)
	for r := 1; r <= 10; r++ {
		require.NoError(t, old.SetRow(r, "stale", "stale"))
	}

	s := New(nil, nil)
	fmt.Fprintln(s.Stdout(), "Exported 2 rows")
	fmt.Fprintln(s.Stderr(), "boom")

	at := time.Date(2026, 3, 1, 14, 5, 9, 0, time.UTC)
	require.NoError(t, s.Flush(wb, "Logs", at, "run-1"))

	v, _ := old.Cell(1, 1)
	assert.Equal(t, "Bridge Logs - 2026-03-01 14:05:09 (run run-1)", v)
	assert.True(t, old.Bold(1))
	v, _ = old.Cell(2, 1)
	assert.Empty(t, v)
	v, _ = old.Cell(3, 1)
	assert.Equal(t, "OUT Exported 2 rows", v)
	v, _ = old.Cell(4, 1)
	assert.Equal(t, "ERR boom", v)

	rows, cols, err := old.Extent()
	require.NoError(t, err)
	assert.Equal(t, 4, rows)
	assert.Equal(t, 1, cols)
}

func TestFlushCreatesLogSheet(t *testing.T) {
	wb := memory.New()
	s := New(nil, nil)
	require.NoError(t, s.Flush(wb, "Logs", time.Now(), ""))

	ws, err := wb.Lookup("Logs")
	require.NoError(t, err)
	v, _ := ws.Cell(1, 1)
	assert.Contains(t, v, "Bridge Logs - ")
	assert.NotContains(t, v, "run")
}

func TestFlushClosedWorkbook(t *testing.T) {
	wb := memory.New()
	require.NoError(t, wb.Close())
	assert.Error(t, New(nil, nil).Flush(wb, "Logs", time.Now(), ""))
}
