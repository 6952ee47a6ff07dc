// Package sqlite is a workbook stored in a SQLite database: one row per
// non-empty cell, plus row emphasis, row visibility and column widths.
//
// All changes made through an open Workbook run in one transaction that
// Save commits. Close without Save discards them.
package sqlite

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

//go:embed schema.sql
var schemaSQL string

var (
	_ tabular.Workbook = (*Workbook)(nil)
	_ tabular.Notifier = (*Workbook)(nil)
	_ tabular.Sheet    = (*Sheet)(nil)
)

// Workbook is an open grid database.
type Workbook struct {
	mu     sync.Mutex
	path   string
	db     *sql.DB
	tx     *sql.Tx
	closed bool
}

// Open opens an existing grid database. A missing file is reported as
// types.ErrWorkbookUnavailable.
func Open(path string) (*Workbook, error) {
	if path == "" {
		return nil, fmt.Errorf("no workbook path configured: %w", types.ErrWorkbookUnavailable)
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, types.ErrWorkbookUnavailable)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w: %v", path, types.ErrWorkbookUnavailable, err)
	}
	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &Workbook{path: path, db: db, tx: tx}, nil
}

// Create initializes an empty grid database at path unless one exists. It
// reports whether a file was created.
func Create(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	db, err := openDB(path)
	if err != nil {
		return false, fmt.Errorf("creating workbook %s: %w", path, err)
	}
	if err := db.Close(); err != nil {
		return false, err
	}
	return true, nil
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

// generateUUID generates a UUID v7 for sheet and notification ids.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

// Sheets returns every sheet in creation order.
func (w *Workbook) Sheets() ([]tabular.Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	rows, err := w.tx.Query("SELECT sheet_id, name FROM sheets ORDER BY ordinal")
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	defer rows.Close()

	var out []tabular.Sheet
	for rows.Next() {
		s := &Sheet{wb: w}
		if err := rows.Scan(&s.id, &s.name); err != nil {
			return nil, fmt.Errorf("scanning sheet: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Sheet returns the sheet with exactly this name.
func (w *Workbook) Sheet(name string) (tabular.Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	return w.lookupLocked(name)
}

func (w *Workbook) lookupLocked(name string) (*Sheet, error) {
	s := &Sheet{wb: w, name: name}
	err := w.tx.QueryRow("SELECT sheet_id FROM sheets WHERE name = ?", name).Scan(&s.id)
	if err == sql.ErrNoRows {
		return nil, types.ErrSheetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting sheet %q: %w", name, err)
	}
	return s, nil
}

// AddSheet appends an empty sheet.
func (w *Workbook) AddSheet(name string) (tabular.Sheet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	if name == "" {
		return nil, types.ErrSheetNameInvalid
	}
	if _, err := w.lookupLocked(name); err == nil {
		return nil, types.ErrSheetExists
	}

	var ordinal int
	if err := w.tx.QueryRow("SELECT COALESCE(MAX(ordinal), 0) + 1 FROM sheets").Scan(&ordinal); err != nil {
		return nil, fmt.Errorf("ordering sheet: %w", err)
	}
	s := &Sheet{wb: w, id: generateUUID(), name: name}
	if _, err := w.tx.Exec(
		"INSERT INTO sheets (sheet_id, name, ordinal, created_at) VALUES (?, ?, ?, ?)",
		s.id, name, ordinal, now(),
	); err != nil {
		return nil, fmt.Errorf("inserting sheet %q: %w", name, err)
	}
	return s, nil
}

// Notify stores a notification for whatever front end reads the database.
func (w *Workbook) Notify(title, message string) error {
	return w.exec(
		"INSERT INTO notifications (notification_id, title, message, created_at) VALUES (?, ?, ?, ?)",
		generateUUID(), title, message, now(),
	)
}

// Notifications returns stored notifications as title/message pairs, oldest
// first.
func (w *Workbook) Notifications() ([][2]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, types.ErrWorkbookClosed
	}
	rows, err := w.tx.Query("SELECT title, message FROM notifications ORDER BY created_at, notification_id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out [][2]string
	for rows.Next() {
		var n [2]string
		if err := rows.Scan(&n[0], &n[1]); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// Save commits every change since Open or the previous Save.
func (w *Workbook) Save() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return types.ErrWorkbookClosed
	}
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("saving %s: %w", w.path, err)
	}
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	w.tx = tx
	return nil
}

// Close discards unsaved changes and closes the database. Close is
// idempotent.
func (w *Workbook) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.tx.Rollback()
	return w.db.Close()
}

func (w *Workbook) exec(query string, args ...any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return types.ErrWorkbookClosed
	}
	_, err := w.tx.Exec(query, args...)
	return err
}

// Sheet is one grid of a Workbook.
type Sheet struct {
	wb   *Workbook
	id   string
	name string
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

func checkPos(row, col int) error {
	if row < 1 || col < 1 {
		return types.ErrCellOutOfRange
	}
	return nil
}

// Cell returns the text at row, col.
func (s *Sheet) Cell(row, col int) (string, error) {
	if err := checkPos(row, col); err != nil {
		return "", err
	}
	w := s.wb
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return "", types.ErrWorkbookClosed
	}
	var v string
	err := w.tx.QueryRow(
		"SELECT value FROM cells WHERE sheet_id = ? AND row_num = ? AND col_num = ?",
		s.id, row, col,
	).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cell %d,%d: %w", row, col, err)
	}
	return v, nil
}

// SetCell writes the text at row, col. An empty value deletes the cell.
func (s *Sheet) SetCell(row, col int, value string) error {
	if err := checkPos(row, col); err != nil {
		return err
	}
	if value == "" {
		return s.wb.exec(
			"DELETE FROM cells WHERE sheet_id = ? AND row_num = ? AND col_num = ?",
			s.id, row, col,
		)
	}
	return s.wb.exec(
		`INSERT INTO cells (sheet_id, row_num, col_num, value) VALUES (?, ?, ?, ?)
		 ON CONFLICT (sheet_id, row_num, col_num) DO UPDATE SET value = excluded.value`,
		s.id, row, col, value,
	)
}

// ClearRange deletes every cell in the inclusive rectangle.
func (s *Sheet) ClearRange(row1, col1, row2, col2 int) error {
	if err := checkPos(row1, col1); err != nil {
		return err
	}
	return s.wb.exec(
		`DELETE FROM cells WHERE sheet_id = ?
		 AND row_num BETWEEN ? AND ? AND col_num BETWEEN ? AND ?`,
		s.id, row1, row2, col1, col2,
	)
}

// Extent returns the last row and column holding a value.
func (s *Sheet) Extent() (int, int, error) {
	w := s.wb
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, 0, types.ErrWorkbookClosed
	}
	var rows, cols int
	err := w.tx.QueryRow(
		"SELECT COALESCE(MAX(row_num), 0), COALESCE(MAX(col_num), 0) FROM cells WHERE sheet_id = ?",
		s.id,
	).Scan(&rows, &cols)
	if err != nil {
		return 0, 0, fmt.Errorf("measuring sheet %q: %w", s.name, err)
	}
	return rows, cols, nil
}

// SetRowBold emphasizes row.
func (s *Sheet) SetRowBold(row int) error {
	if err := checkPos(row, 1); err != nil {
		return err
	}
	return s.wb.exec(
		`INSERT INTO row_styles (sheet_id, row_num, bold) VALUES (?, ?, 1)
		 ON CONFLICT (sheet_id, row_num) DO UPDATE SET bold = 1`,
		s.id, row,
	)
}

// SetRowHidden hides or shows row. Hidden rows keep their cells.
func (s *Sheet) SetRowHidden(row int, hidden bool) error {
	if err := checkPos(row, 1); err != nil {
		return err
	}
	return s.wb.exec(
		`INSERT INTO row_styles (sheet_id, row_num, hidden) VALUES (?, ?, ?)
		 ON CONFLICT (sheet_id, row_num) DO UPDATE SET hidden = excluded.hidden`,
		s.id, row, hidden,
	)
}

// RowStyle reports the emphasis and visibility of row.
func (s *Sheet) RowStyle(row int) (bold, hidden bool, err error) {
	w := s.wb
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false, false, types.ErrWorkbookClosed
	}
	err = w.tx.QueryRow(
		"SELECT bold, hidden FROM row_styles WHERE sheet_id = ? AND row_num = ?",
		s.id, row,
	).Scan(&bold, &hidden)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	return bold, hidden, err
}

// SetColumnWidth records the width of col.
func (s *Sheet) SetColumnWidth(col int, width float64) error {
	if err := checkPos(1, col); err != nil {
		return err
	}
	return s.wb.exec(
		`INSERT INTO col_widths (sheet_id, col_num, width) VALUES (?, ?, ?)
		 ON CONFLICT (sheet_id, col_num) DO UPDATE SET width = excluded.width`,
		s.id, col, width,
	)
}

// ColumnWidth returns the recorded width of col, 0 when never set.
func (s *Sheet) ColumnWidth(col int) (float64, error) {
	w := s.wb
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, types.ErrWorkbookClosed
	}
	var width float64
	err := w.tx.QueryRow(
		"SELECT width FROM col_widths WHERE sheet_id = ? AND col_num = ?",
		s.id, col,
	).Scan(&width)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return width, err
}
