// Package logsink captures console output of a run and mirrors it to a log
// sheet in the workbook.
//
// A Sink is created by the entry point and handed to everything that writes
// diagnostics. Each non-blank line written through Stdout or Stderr is
// passed on to the console and buffered with an "OUT " or "ERR " prefix.
// Flush rewrites the log sheet from the buffer.
package logsink

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Line prefixes in the buffer.
const (
	PrefixOut = "OUT "
	PrefixErr = "ERR "
)

// firstLogRow leaves a blank row under the title.
const firstLogRow = 3

// Sink buffers console lines for the log sheet.
type Sink struct {
	mu     sync.Mutex
	lines  []string
	stdout io.Writer
	stderr io.Writer
}

// New returns a Sink passing output through to stdout and stderr. Either
// may be nil to buffer only.
func New(stdout, stderr io.Writer) *Sink {
	return &Sink{stdout: stdout, stderr: stderr}
}

// Stdout returns the writer for regular output.
func (s *Sink) Stdout() io.Writer {
	return &stream{sink: s, prefix: PrefixOut, console: s.stdout}
}

// Stderr returns the writer for warnings and errors.
func (s *Sink) Stderr() io.Writer {
	return &stream{sink: s, prefix: PrefixErr, console: s.stderr}
}

// Lines returns the buffered lines in order.
func (s *Sink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.lines...)
}

func (s *Sink) record(prefix string, p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, line := range strings.Split(string(p), "\n") {
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		s.lines = append(s.lines, prefix+line)
	}
}

type stream struct {
	sink    *Sink
	prefix  string
	console io.Writer
}

func (w *stream) Write(p []byte) (int, error) {
	if w.console != nil {
		// Console failures do not stop the capture.
		_, _ = w.console.Write(p)
	}
	w.sink.record(w.prefix, p)
	return len(p), nil
}

// Title returns the heading of the log sheet.
func Title(at time.Time, runID string) string {
	title := "Bridge Logs - " + at.Format("2006-01-02 15:04:05")
	if runID != "" {
		title += " (run " + runID + ")"
	}
	return title
}

// Flush rewrites the sheet named sheet in wb: everything is cleared, the
// title goes to row 1 in bold, and buffered lines follow from row 3. The
// sheet is created when missing.
func (s *Sink) Flush(wb tabular.Workbook, sheet string, at time.Time, runID string) error {
	ws, err := wb.Sheet(sheet)
	if errors.Is(err, types.ErrSheetNotFound) {
		ws, err = wb.AddSheet(sheet)
	}
	if err != nil {
		return fmt.Errorf("log sheet %q: %w", sheet, err)
	}

	rows, cols, err := ws.Extent()
	if err != nil {
		return err
	}
	if rows > 0 && cols > 0 {
		if err := ws.ClearRange(1, 1, rows, cols); err != nil {
			return fmt.Errorf("clearing log sheet: %w", err)
		}
	}

	if err := ws.SetCell(1, 1, Title(at, runID)); err != nil {
		return err
	}
	if err := ws.SetRowBold(1); err != nil {
		return err
	}
	for i, line := range s.Lines() {
		if err := ws.SetCell(firstLogRow+i, 1, line); err != nil {
			return fmt.Errorf("writing log line %d: %w", i+1, err)
		}
	}
	return nil
}
