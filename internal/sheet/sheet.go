// Package sheet defines the tabular store the library lives in.
//
// A store holds named tables. Every table is a grid of string cells with
// columns addressed A..Z and rows addressed from 1. There is no header row
// and no schema: a row is "present" when its first cell is non-empty.
//
// # Providers
//
//	sheet/
//	├── sheet.go            # Store interface, cell addressing
//	├── memory.go           # In-memory store (tests, scratch sessions)
//	└── providers/
//	    ├── gsheets/        # Google Sheets v4 values API
//	    └── sqlite/         # Local SQLite cell table (gorm)
package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInvalidRange is returned for addresses outside A1:Z.
	ErrInvalidRange = errors.New("invalid range")
)

// Column is a zero-based column index: 0 is A, 25 is Z.
type Column int

const (
	ColumnA Column = 0
	ColumnB Column = 1
	ColumnC Column = 2
	ColumnD Column = 3

	// LastColumn is the rightmost column a row may use.
	LastColumn Column = 25
)

// Letter returns the A1 letter of the column.
func (c Column) Letter() string {
	return string(rune('A' + int(c)))
}

// Valid reports whether the column is within A..Z.
func (c Column) Valid() bool {
	return c >= ColumnA && c <= LastColumn
}

// ColumnFromLetter parses a single column letter, case-insensitively.
func ColumnFromLetter(letter string) (Column, error) {
	letter = strings.ToUpper(strings.TrimSpace(letter))
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return 0, fmt.Errorf("%w: column %q", ErrInvalidRange, letter)
	}
	return Column(letter[0] - 'A'), nil
}

// Cell addresses one cell. Rows start at 1.
type Cell struct {
	Col Column
	Row int
}

// A1 returns the cell in A1 notation. A zero row yields only the letter,
// which is how an open-ended range bound is written.
func (c Cell) A1() string {
	if c.Row <= 0 {
		return c.Col.Letter()
	}
	return fmt.Sprintf("%s%d", c.Col.Letter(), c.Row)
}

// Range is a rectangular block of cells. A To.Row of zero means the range
// runs to the bottom of the table.
type Range struct {
	From Cell
	To   Cell
}

// A1 returns the range in A1 notation, e.g. "A3:Z3" or "A1:Z".
func (r Range) A1() string {
	return r.From.A1() + ":" + r.To.A1()
}

// Validate checks the range is well formed.
func (r Range) Validate() error {
	if !r.From.Col.Valid() || !r.To.Col.Valid() || r.From.Col > r.To.Col {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r.A1())
	}
	if r.From.Row < 1 || (r.To.Row != 0 && r.To.Row < r.From.Row) {
		return fmt.Errorf("%w: %s", ErrInvalidRange, r.A1())
	}
	return nil
}

// Contains reports whether the cell at (row, col) falls inside the range.
func (r Range) Contains(row int, col Column) bool {
	if col < r.From.Col || col > r.To.Col || row < r.From.Row {
		return false
	}
	return r.To.Row == 0 || row <= r.To.Row
}

// RowRange returns the range covering columns first..last of a single row.
func RowRange(row int, first, last Column) Range {
	return Range{
		From: Cell{Col: first, Row: row},
		To:   Cell{Col: last, Row: row},
	}
}

// WholeTable returns the open-ended range A1:Z.
func WholeTable() Range {
	return Range{
		From: Cell{Col: ColumnA, Row: 1},
		To:   Cell{Col: LastColumn},
	}
}

// TableRange qualifies a range with its table name, e.g. 'loaned'!A1:D1.
func TableRange(table string, r Range) string {
	return QuoteTable(table) + "!" + r.A1()
}

// QuoteTable quotes a table name for use in A1 notation.
func QuoteTable(table string) string {
	return "'" + strings.ReplaceAll(table, "'", "''") + "'"
}

// Store is the tabular store the row-management logic runs against.
type Store interface {
	// ReadColumn returns a column top-to-bottom from row 1 through its last
	// non-empty cell. Empty cells above that point are returned as "".
	ReadColumn(ctx context.Context, table string, col Column) ([]string, error)

	// ReadRow returns a row from A through its last non-empty cell.
	ReadRow(ctx context.Context, table string, row int) ([]string, error)

	// WriteRange writes rows starting at topLeft. Cells not covered by a
	// row's values are left as they are.
	WriteRange(ctx context.Context, table string, topLeft Cell, rows [][]string) error

	// ClearRange sets every cell in the range to "".
	ClearRange(ctx context.Context, table string, r Range) error

	// AppendAfterLast writes rows starting at the first row after the last
	// non-empty cell of col.
	AppendAfterLast(ctx context.Context, table string, col Column, rows [][]string) error
}

// TrimTrailing drops trailing empty cells.
func TrimTrailing(cells []string) []string {
	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

// Fit pads or truncates cells so it covers exactly columns A..last.
func Fit(cells []string, last Column) []string {
	width := int(last) + 1
	out := make([]string, width)
	copy(out, cells)
	return out
}
