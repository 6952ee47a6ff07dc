// Package xlsx is a workbook backed by an Office Open XML spreadsheet file.
// Changes are held in memory until Save.
package xlsx

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

var (
	_ tabular.Workbook = (*Workbook)(nil)
	_ tabular.Sheet    = (*Sheet)(nil)
)

// maxColumnWidth is the widest column the file format allows.
const maxColumnWidth = 255

// Workbook is an open spreadsheet file.
type Workbook struct {
	path   string
	f      *excelize.File
	bold   int
	closed bool
}

// Open opens an existing spreadsheet file. A missing file is reported as
// types.ErrWorkbookUnavailable.
func Open(path string) (*Workbook, error) {
	if path == "" {
		return nil, fmt.Errorf("no workbook path configured: %w", types.ErrWorkbookUnavailable)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, types.ErrWorkbookUnavailable)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %v", path, types.ErrWorkbookUnavailable, err)
	}
	return &Workbook{path: path, f: f}, nil
}

// Create writes an empty spreadsheet file at path unless one exists. It
// reports whether a file was created.
func Create(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return false, fmt.Errorf("creating workbook %s: %w", path, err)
	}
	return true, nil
}

// Path returns the file path.
func (w *Workbook) Path() string { return w.path }

// Sheets returns every sheet in workbook order.
func (w *Workbook) Sheets() ([]tabular.Sheet, error) {
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	names := w.f.GetSheetList()
	out := make([]tabular.Sheet, len(names))
	for i, n := range names {
		out[i] = &Sheet{wb: w, name: n}
	}
	return out, nil
}

// Sheet returns the sheet with exactly this name.
func (w *Workbook) Sheet(name string) (tabular.Sheet, error) {
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	for _, n := range w.f.GetSheetList() {
		if n == name {
			return &Sheet{wb: w, name: n}, nil
		}
	}
	return nil, types.ErrSheetNotFound
}

// AddSheet appends an empty sheet.
func (w *Workbook) AddSheet(name string) (tabular.Sheet, error) {
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	if _, err := w.Sheet(name); err == nil {
		return nil, types.ErrSheetExists
	}
	if _, err := w.f.NewSheet(name); err != nil {
		return nil, fmt.Errorf("adding sheet %q: %w", name, err)
	}
	return &Sheet{wb: w, name: name}, nil
}

// Save writes the workbook back to its file.
func (w *Workbook) Save() error {
	if w.closed {
		return types.ErrWorkbookClosed
	}
	if err := w.f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	return nil
}

// Close releases the file. Unsaved changes are discarded.
func (w *Workbook) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.f.Close()
}

// boldStyle returns the style id of emphasized text, registering it once.
func (w *Workbook) boldStyle() (int, error) {
	if w.bold != 0 {
		return w.bold, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, err
	}
	w.bold = id
	return id, nil
}

// Sheet is one worksheet of a Workbook.
type Sheet struct {
	wb   *Workbook
	name string
}

// Name returns the worksheet name.
func (s *Sheet) Name() string { return s.name }

func (s *Sheet) cellName(row, col int) (string, error) {
	if s.wb.closed {
		return "", types.ErrWorkbookClosed
	}
	if row < 1 || col < 1 {
		return "", types.ErrCellOutOfRange
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", fmt.Errorf("%w: %v", types.ErrCellOutOfRange, err)
	}
	return name, nil
}

// Cell returns the formatted text of a cell.
func (s *Sheet) Cell(row, col int) (string, error) {
	cell, err := s.cellName(row, col)
	if err != nil {
		return "", err
	}
	return s.wb.f.GetCellValue(s.name, cell)
}

// SetCell stores value as text. An empty value clears the cell.
func (s *Sheet) SetCell(row, col int, value string) error {
	cell, err := s.cellName(row, col)
	if err != nil {
		return err
	}
	if value == "" {
		return s.wb.f.SetCellValue(s.name, cell, nil)
	}
	return s.wb.f.SetCellStr(s.name, cell, value)
}

// ClearRange empties the inclusive rectangle.
func (s *Sheet) ClearRange(row1, col1, row2, col2 int) error {
	for r := row1; r <= row2; r++ {
		for c := col1; c <= col2; c++ {
			if err := s.SetCell(r, c, ""); err != nil {
				return err
			}
		}
	}
	return nil
}

// Extent returns the last row and column holding a value. Rows hidden by a
// filter are included.
func (s *Sheet) Extent() (int, int, error) {
	if s.wb.closed {
		return 0, 0, types.ErrWorkbookClosed
	}
	rows, err := s.wb.f.GetRows(s.name)
	if err != nil {
		return 0, 0, fmt.Errorf("reading rows of %q: %w", s.name, err)
	}
	cols := 0
	for _, r := range rows {
		cols = max(cols, len(r))
	}
	return len(rows), cols, nil
}

// SetRowBold applies the bold font to row.
func (s *Sheet) SetRowBold(row int) error {
	if _, err := s.cellName(row, 1); err != nil {
		return err
	}
	style, err := s.wb.boldStyle()
	if err != nil {
		return fmt.Errorf("creating bold style: %w", err)
	}
	return s.wb.f.SetRowStyle(s.name, row, row, style)
}

// SetColumnWidth sets the width of col, clamped to the format maximum.
func (s *Sheet) SetColumnWidth(col int, width float64) error {
	if _, err := s.cellName(1, col); err != nil {
		return err
	}
	letter, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return err
	}
	return s.wb.f.SetColWidth(s.name, letter, letter, min(width, maxColumnWidth))
}

// ColumnWidth returns the width of col.
func (s *Sheet) ColumnWidth(col int) (float64, error) {
	letter, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return 0, err
	}
	return s.wb.f.GetColWidth(s.name, letter)
}

// SetRowHidden hides or shows row.
func (s *Sheet) SetRowHidden(row int, hidden bool) error {
	return s.wb.f.SetRowVisible(s.name, row, !hidden)
}
