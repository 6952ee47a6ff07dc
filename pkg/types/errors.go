package types

import "errors"

// Tabular surface errors.
var (
	ErrWorkbookUnavailable = errors.New("workbook unavailable")
	ErrSheetNotFound       = errors.New("sheet not found")
	ErrSheetExists         = errors.New("sheet already exists")
	ErrCellOutOfRange      = errors.New("cell position out of range")
	ErrWorkbookClosed      = errors.New("workbook is closed")
)

// Export validation errors.
var (
	ErrDuplicateKeys = errors.New("duplicate prophecy_ref")
)
