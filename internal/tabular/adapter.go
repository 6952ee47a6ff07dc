package tabular

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/prophecies/internal/codec"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// firstDataRow is the row below the header.
const firstDataRow = 2

// Header signatures accepted when scanning sheets by content.
var headerSignatures = [][2]string{
	{types.ColID, types.ColSummaryProphecyEN},
	{types.ColID, types.ColLegacySummaryProphecy},
}

// cappedColumns hold long free text and are limited to the width cap after
// autofit.
var cappedColumns = []int{2, 3, 4, 5, 13, 14}

// Adapter reads and writes records on one workbook sheet.
type Adapter struct {
	Primary  string
	Legacy   string
	WidthCap float64
	log      *zap.Logger
}

// New returns an Adapter using the sheet names and width cap of cfg.
func New(cfg types.Config, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		Primary:  cfg.Sheet,
		Legacy:   cfg.LegacySheet,
		WidthCap: cfg.WidthCap,
		log:      log,
	}
}

// Resolve finds the record sheet: by primary name, by legacy name, then by
// header signature. When nothing matches and create is set, a sheet with the
// primary name is added; otherwise types.ErrSheetNotFound is returned.
func (a *Adapter) Resolve(wb Workbook, create bool) (Sheet, error) {
	for _, name := range []string{a.Primary, a.Legacy} {
		if name == "" {
			continue
		}
		s, err := wb.Sheet(name)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, types.ErrSheetNotFound) {
			return nil, fmt.Errorf("looking up sheet %q: %w", name, err)
		}
	}

	sheets, err := wb.Sheets()
	if err != nil {
		return nil, fmt.Errorf("listing sheets: %w", err)
	}
	for _, s := range sheets {
		ok, err := hasSignature(s)
		if err != nil {
			a.log.Warn("skipping unreadable sheet", zap.String("sheet", s.Name()), zap.Error(err))
			continue
		}
		if ok {
			a.log.Debug("sheet matched by header", zap.String("sheet", s.Name()))
			return s, nil
		}
	}

	if !create {
		return nil, fmt.Errorf("expected a sheet named %q or %q, or one with headers %s/%s: %w",
			a.Primary, a.Legacy, types.ColID, types.ColSummaryProphecyEN, types.ErrSheetNotFound)
	}
	s, err := wb.AddSheet(a.Primary)
	if err != nil {
		return nil, fmt.Errorf("creating sheet %q: %w", a.Primary, err)
	}
	a.log.Info("created sheet", zap.String("sheet", a.Primary))
	return s, nil
}

func hasSignature(s Sheet) (bool, error) {
	h1, err := s.Cell(1, 1)
	if err != nil {
		return false, err
	}
	h2, err := s.Cell(1, 2)
	if err != nil {
		return false, err
	}
	h1, h2 = types.NormalizeLabel(h1), types.NormalizeLabel(h2)
	for _, sig := range headerSignatures {
		if h1 == sig[0] && h2 == sig[1] {
			return true, nil
		}
	}
	return false, nil
}

// ReconcileHeader rewrites the header row with the canonical column names
// when it carries the legacy signature or any column label is missing or
// different. The header row is emphasized either way. It reports whether
// the labels were rewritten.
func (a *Adapter) ReconcileHeader(s Sheet) (bool, error) {
	rewrite := false
	h2, err := s.Cell(1, 2)
	if err != nil {
		return false, err
	}
	if types.NormalizeLabel(h2) == types.ColLegacySummaryProphecy {
		rewrite = true
	}
	for i, want := range types.Columns {
		if rewrite {
			break
		}
		got, err := s.Cell(1, i+1)
		if err != nil {
			return false, err
		}
		if types.NormalizeLabel(got) != want {
			rewrite = true
		}
	}

	if rewrite {
		for i, label := range types.Columns {
			if err := s.SetCell(1, i+1, label); err != nil {
				return false, fmt.Errorf("writing header: %w", err)
			}
		}
		a.log.Info("header rewritten", zap.String("sheet", s.Name()))
	}
	if err := s.SetRowBold(1); err != nil {
		return rewrite, fmt.Errorf("emphasizing header: %w", err)
	}
	return rewrite, nil
}

// WriteRecords clears every data row below the header, then writes one row
// per record in order.
func (a *Adapter) WriteRecords(s Sheet, recs []types.Record) error {
	rows, _, err := s.Extent()
	if err != nil {
		return fmt.Errorf("measuring sheet: %w", err)
	}
	if rows >= firstDataRow {
		if err := s.ClearRange(firstDataRow, 1, rows, types.ColumnCount); err != nil {
			return fmt.Errorf("clearing data rows: %w", err)
		}
	}
	for i, r := range recs {
		row := codec.Encode(r)
		for c, v := range row {
			if v == "" {
				continue
			}
			if err := s.SetCell(firstDataRow+i, c+1, v); err != nil {
				return fmt.Errorf("writing row %d: %w", firstDataRow+i, err)
			}
		}
	}
	return nil
}

// ReadRecords decodes every non-blank data row within the used extent,
// hidden rows included. Cells are trimmed. When two or more rows resolve to
// the same key, including the empty key, no records are returned and the
// error is a *DuplicateKeyError.
func (a *Adapter) ReadRecords(s Sheet) ([]types.Record, error) {
	rows, _, err := s.Extent()
	if err != nil {
		return nil, fmt.Errorf("measuring sheet: %w", err)
	}

	var (
		recs []types.Record
		keys keyIndex
	)
	for r := firstDataRow; r <= rows; r++ {
		row := make(types.Row, types.ColumnCount)
		for c := range row {
			v, err := s.Cell(r, c+1)
			if err != nil {
				return nil, fmt.Errorf("reading row %d: %w", r, err)
			}
			row[c] = strings.TrimSpace(v)
		}
		if row.Blank() {
			continue
		}
		rec := codec.Decode(row)
		if rec.Key() == "" {
			a.log.Warn("row has no prophecy_ref or id", zap.Int("row", r))
		}
		keys.add(rec.Key(), r)
		recs = append(recs, rec)
	}

	if err := keys.duplicates(); err != nil {
		return nil, err
	}
	return recs, nil
}

// AutoFit sizes every fixed column to its longest line of text and limits
// the long text columns to the width cap.
func (a *Adapter) AutoFit(s Sheet) error {
	rows, _, err := s.Extent()
	if err != nil {
		return fmt.Errorf("measuring sheet: %w", err)
	}
	widths := make([]int, types.ColumnCount+1)
	for r := 1; r <= rows; r++ {
		for c := 1; c <= types.ColumnCount; c++ {
			v, err := s.Cell(r, c)
			if err != nil {
				return err
			}
			if n := longestLine(v); n > widths[c] {
				widths[c] = n
			}
		}
	}

	capped := make(map[int]bool, len(cappedColumns))
	for _, c := range cappedColumns {
		capped[c] = true
	}
	for c := 1; c <= types.ColumnCount; c++ {
		if widths[c] == 0 {
			continue
		}
		w := float64(widths[c]) + 2
		if capped[c] && a.WidthCap > 0 && w > a.WidthCap {
			w = a.WidthCap
		}
		if err := s.SetColumnWidth(c, w); err != nil {
			return fmt.Errorf("sizing column %d: %w", c, err)
		}
	}
	return nil
}

func longestLine(s string) int {
	longest := 0
	for _, line := range strings.Split(s, "\n") {
		if n := utf8.RuneCountInString(line); n > longest {
			longest = n
		}
	}
	return longest
}

// Notify shows message on wb when it can display one. Failures are logged
// and otherwise ignored.
func Notify(wb Workbook, log *zap.Logger, title, message string) {
	n, ok := wb.(Notifier)
	if !ok {
		return
	}
	if err := n.Notify(title, message); err != nil && log != nil {
		log.Debug("notification failed", zap.Error(err))
	}
}
