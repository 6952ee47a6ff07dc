// Package memory is an in-process workbook. Nothing is persisted; it backs
// dry runs and tests, and records notifications instead of showing them.
package memory

import (
	"sync"

	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

var (
	_ tabular.Workbook = (*Workbook)(nil)
	_ tabular.Notifier = (*Workbook)(nil)
	_ tabular.Sheet    = (*Sheet)(nil)
)

// Notification is a message shown through Notify.
type Notification struct {
	Title   string
	Message string
}

// Workbook holds sheets in creation order.
type Workbook struct {
	mu      sync.Mutex
	sheets  []*Sheet
	notices []Notification
	closed  bool
}

// New returns an empty workbook.
func New() *Workbook {
	return &Workbook{}
}

// Sheets returns every sheet in creation order.
func (w *Workbook) Sheets() ([]tabular.Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	out := make([]tabular.Sheet, len(w.sheets))
	for i, s := range w.sheets {
		out[i] = s
	}
	return out, nil
}

// Sheet returns the sheet with exactly this name.
func (w *Workbook) Sheet(name string) (tabular.Sheet, error) {
	s, err := w.Lookup(name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup is Sheet returning the concrete type.
func (w *Workbook) Lookup(name string) (*Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	for _, s := range w.sheets {
		if s.name == name {
			return s, nil
		}
	}
	return nil, types.ErrSheetNotFound
}

// AddSheet creates an empty sheet.
func (w *Workbook) AddSheet(name string) (tabular.Sheet, error) {
	s, err := w.Add(name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Add is AddSheet returning the concrete type.
func (w *Workbook) Add(name string) (*Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	if name == "" {
		return nil, types.ErrSheetNameInvalid
	}
	for _, s := range w.sheets {
		if s.name == name {
			return nil, types.ErrSheetExists
		}
	}
	s := newSheet(w, name)
	w.sheets = append(w.sheets, s)
	return s, nil
}

// Notify records a notification.
func (w *Workbook) Notify(title, message string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return types.ErrWorkbookClosed
	}
	w.notices = append(w.notices, Notification{Title: title, Message: message})
	return nil
}

// Notifications returns the recorded notifications in order.
func (w *Workbook) Notifications() []Notification {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]Notification(nil), w.notices...)
}

// Save is a no-op.
func (w *Workbook) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return types.ErrWorkbookClosed
	}
	return nil
}

// Close marks the workbook closed. Close is idempotent.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *Workbook) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

type cellPos struct{ row, col int }

// Sheet is a sparse grid of text cells.
type Sheet struct {
	wb   *Workbook
	name string

	mu     sync.Mutex
	cells  map[cellPos]string
	bold   map[int]bool
	hidden map[int]bool
	widths map[int]float64
}

func newSheet(wb *Workbook, name string) *Sheet {
	return &Sheet{
		wb:     wb,
		name:   name,
		cells:  make(map[cellPos]string),
		bold:   make(map[int]bool),
		hidden: make(map[int]bool),
		widths: make(map[int]float64),
	}
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

func (s *Sheet) check(row, col int) error {
	if s.wb.isClosed() {
		return types.ErrWorkbookClosed
	}
	if row < 1 || col < 1 {
		return types.ErrCellOutOfRange
	}
	return nil
}

// Cell returns the text at row, col.
func (s *Sheet) Cell(row, col int) (string, error) {
	if err := s.check(row, col); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cells[cellPos{row, col}], nil
}

// SetCell writes the text at row, col.
func (s *Sheet) SetCell(row, col int, value string) error {
	if err := s.check(row, col); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.cells, cellPos{row, col})
		return nil
	}
	s.cells[cellPos{row, col}] = value
	return nil
}

// ClearRange empties the inclusive rectangle.
func (s *Sheet) ClearRange(row1, col1, row2, col2 int) error {
	if err := s.check(row1, col1); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for p := range s.cells {
		if p.row >= row1 && p.row <= row2 && p.col >= col1 && p.col <= col2 {
			delete(s.cells, p)
		}
	}
	return nil
}

// Extent returns the last non-empty row and column.
func (s *Sheet) Extent() (int, int, error) {
	if s.wb.isClosed() {
		return 0, 0, types.ErrWorkbookClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, cols := 0, 0
	for p := range s.cells {
		rows = max(rows, p.row)
		cols = max(cols, p.col)
	}
	return rows, cols, nil
}

// SetRowBold emphasizes row.
func (s *Sheet) SetRowBold(row int) error {
	if err := s.check(row, 1); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bold[row] = true
	return nil
}

// Bold reports whether row is emphasized.
func (s *Sheet) Bold(row int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bold[row]
}

// SetColumnWidth records the width of col.
func (s *Sheet) SetColumnWidth(col int, width float64) error {
	if err := s.check(1, col); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.widths[col] = width
	return nil
}

// ColumnWidth returns the recorded width of col, 0 when never set.
func (s *Sheet) ColumnWidth(col int) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.widths[col]
}

// SetRowHidden hides or shows row, as a filter would. Hidden rows keep their
// cells and stay within the extent.
func (s *Sheet) SetRowHidden(row int, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hidden[row] = hidden
}

// RowHidden reports whether row is hidden.
func (s *Sheet) RowHidden(row int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden[row]
}

// SetRow writes values across row starting at column 1.
func (s *Sheet) SetRow(row int, values ...string) error {
	for i, v := range values {
		if err := s.SetCell(row, i+1, v); err != nil {
			return err
		}
	}
	return nil
}
