package rows

import (
	"context"
	"fmt"

	"github.com/mrlokans/librarian/internal/sheet"
)

// Compact rewrites a table without its blank rows, keeping the order of
// the rows that survive. A row survives when its keyCol cell is non-empty.
//
// Kept rows are read up front, the whole table is cleared, and the rows are
// written back from A1. An already gapless table is rewritten unchanged.
func Compact(ctx context.Context, store sheet.Store, table string, keyCol sheet.Column) error {
	column, err := store.ReadColumn(ctx, table, keyCol)
	if err != nil {
		return fmt.Errorf("compact %s: %w", table, err)
	}

	kept := make([][]string, 0, len(column))
	for i, v := range column {
		if v == "" {
			continue
		}
		cells, err := store.ReadRow(ctx, table, i+1)
		if err != nil {
			return fmt.Errorf("compact %s: read row %d: %w", table, i+1, err)
		}
		kept = append(kept, cells)
	}

	if err := store.ClearRange(ctx, table, sheet.WholeTable()); err != nil {
		return fmt.Errorf("compact %s: %w", table, err)
	}
	if len(kept) == 0 {
		return nil
	}
	if err := store.WriteRange(ctx, table, sheet.Cell{Col: sheet.ColumnA, Row: 1}, kept); err != nil {
		return fmt.Errorf("compact %s: rewrite: %w", table, err)
	}
	return nil
}
