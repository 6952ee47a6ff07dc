// Package bridge runs the three operating modes: transform migrates the
// document in place, import writes the document into the workbook, and
// export reads the workbook back into the document.
package bridge

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/prophecies/internal/document"
	"github.com/mesh-intelligence/prophecies/internal/paths"
	"github.com/mesh-intelligence/prophecies/internal/tabular"
	"github.com/mesh-intelligence/prophecies/pkg/types"
)

// Operating modes.
const (
	ModeTransform = "transform"
	ModeImport    = "import"
	ModeExport    = "export"
)

// Notification titles.
const (
	titleImport      = "Prophecies Import"
	titleExport      = "Prophecies Export"
	titleExportError = "Prophecies Export Error"
)

// Result describes a completed mode.
type Result struct {
	Mode     string
	Records  int
	Sheet    string
	Document string
	Warnings []string
}

// Bridge ties the document store to the tabular adapter.
type Bridge struct {
	store   *document.Store
	adapter *tabular.Adapter
	log     *zap.Logger

	// count reloads the written document for export verification.
	count func() (int, error)
}

// New returns a Bridge for cfg. The document path is normalized first. A nil
// logger discards diagnostics.
func New(cfg types.Config, log *zap.Logger) *Bridge {
	if log == nil {
		log = zap.NewNop()
	}
	store := document.NewStore(paths.NormalizePath(cfg.Document), log)
	return &Bridge{
		store:   store,
		adapter: tabular.New(cfg, log),
		log:     log,
		count:   store.Count,
	}
}

// Store returns the document store.
func (b *Bridge) Store() *document.Store { return b.store }

// Transform migrates every record of the document and writes it back.
func (b *Bridge) Transform() (Result, error) {
	recs, err := b.store.Load()
	if err != nil {
		return Result{}, err
	}
	if err := b.store.Write(recs); err != nil {
		return Result{}, err
	}
	b.log.Info("transformed document", zap.Int("entries", len(recs)), zap.String("path", b.store.Path()))
	return Result{Mode: ModeTransform, Records: len(recs), Document: b.store.Path()}, nil
}

// Import migrates the document, persists the upgraded form, and replaces
// the data rows of the record sheet with it. The sheet is created when no
// sheet can be resolved.
func (b *Bridge) Import(wb tabular.Workbook) (Result, error) {
	recs, err := b.store.Load()
	if err != nil {
		return Result{}, err
	}
	if err := b.store.Write(recs); err != nil {
		return Result{}, err
	}

	sheet, err := b.adapter.Resolve(wb, true)
	if err != nil {
		return Result{}, fmt.Errorf("unable to create or access worksheet: %w", err)
	}
	if _, err := b.adapter.ReconcileHeader(sheet); err != nil {
		return Result{}, fmt.Errorf("writing header of %q: %w", sheet.Name(), err)
	}
	if err := b.adapter.WriteRecords(sheet, recs); err != nil {
		return Result{}, fmt.Errorf("writing rows of %q: %w", sheet.Name(), err)
	}
	if err := b.adapter.AutoFit(sheet); err != nil {
		b.log.Warn("autofit failed", zap.Error(err))
	}

	b.log.Info("imported rows", zap.Int("rows", len(recs)), zap.String("sheet", sheet.Name()))
	tabular.Notify(wb, b.log, titleImport, fmt.Sprintf("Import complete: %d rows", len(recs)))
	return Result{Mode: ModeImport, Records: len(recs), Sheet: sheet.Name(), Document: b.store.Path()}, nil
}

// Export reads the record sheet, rejects duplicate keys, and overwrites the
// document. The document is not touched when the sheet cannot be found or
// holds duplicate keys. After writing, the document is reloaded and counted;
// a mismatch is reported as a warning.
func (b *Bridge) Export(wb tabular.Workbook) (Result, error) {
	sheet, err := b.adapter.Resolve(wb, false)
	if err != nil {
		return Result{}, err
	}

	recs, err := b.adapter.ReadRecords(sheet)
	if err != nil {
		var dup *tabular.DuplicateKeyError
		if errors.As(err, &dup) {
			tabular.Notify(wb, b.log, titleExportError, dup.Error())
		}
		return Result{}, err
	}

	if err := b.store.Write(recs); err != nil {
		msg := fmt.Sprintf("Failed writing JSON (%v). Path: %s", err, b.store.Path())
		tabular.Notify(wb, b.log, titleExportError, msg)
		return Result{}, err
	}

	res := Result{Mode: ModeExport, Records: len(recs), Sheet: sheet.Name(), Document: b.store.Path()}
	n, err := b.count()
	switch {
	case err != nil:
		res.Warnings = append(res.Warnings, fmt.Sprintf("Reload failed: %v", err))
	case n != len(recs):
		res.Warnings = append(res.Warnings, fmt.Sprintf("Reload count mismatch (expected %d, got %d)", len(recs), n))
	}
	for _, w := range res.Warnings {
		b.log.Warn("export verification", zap.String("detail", w))
	}

	b.log.Info("exported rows",
		zap.Int("rows", len(recs)), zap.String("sheet", sheet.Name()), zap.String("path", b.store.Path()))
	msg := fmt.Sprintf("Export complete: %d rows written.", len(recs))
	if len(res.Warnings) > 0 {
		msg += "\n" + strings.Join(res.Warnings, "\n")
	}
	tabular.Notify(wb, b.log, titleExport, msg)
	return res, nil
}
