// Package tabular moves records between the prophecy document and a
// spreadsheet-like surface. The surface is reached only through the narrow
// Workbook and Sheet interfaces below; backends live in internal/workbook.
//
// Rows and columns are 1-based as in a spreadsheet. Row 1 is the header.
package tabular

// Sheet is one named rectangular grid of text cells.
type Sheet interface {
	Name() string

	// Cell returns the text of one cell, empty when unset.
	Cell(row, col int) (string, error)

	// SetCell writes the text of one cell. An empty value clears it.
	SetCell(row, col int, value string) error

	// ClearRange empties every cell in the inclusive rectangle.
	ClearRange(row1, col1, row2, col2 int) error

	// Extent reports the last used row and column. Hidden rows count.
	Extent() (rows, cols int, err error)

	// SetRowBold marks every cell of row as emphasized.
	SetRowBold(row int) error

	// SetColumnWidth sets the display width of col in character units.
	SetColumnWidth(col int, width float64) error
}

// Workbook enumerates and creates sheets.
type Workbook interface {
	// Sheets returns every sheet in workbook order.
	Sheets() ([]Sheet, error)

	// Sheet returns the sheet with exactly this name, or
	// types.ErrSheetNotFound.
	Sheet(name string) (Sheet, error)

	// AddSheet creates an empty sheet, or fails with types.ErrSheetExists.
	AddSheet(name string) (Sheet, error)
}

// Notifier is implemented by workbooks that can show a message to the user.
type Notifier interface {
	Notify(title, message string) error
}
