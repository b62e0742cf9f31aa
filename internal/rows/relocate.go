package rows

import (
	"context"
	"fmt"

	"github.com/mrlokans/librarian/internal/sheet"
)

// Move describes a relocation of rows from one table to another.
type Move struct {
	From string
	To   string

	// Rows are 1-based indices in From, processed in the given order.
	// Repeated indices are moved once.
	Rows []int

	// Keep is the last source column carried over. Cells right of it are
	// dropped, and shorter rows are padded to it.
	Keep sheet.Column

	// Extra holds cells appended after Keep for a given source row.
	Extra map[int][]string

	// KeyCol is the destination column used to find where to append.
	KeyCol sheet.Column
}

// Relocate moves rows between tables.
//
// The move is staged: every source row is read first, then the batch is
// appended to the destination in one write, and only then are the source
// rows cleared. A failure before the append leaves the source untouched;
// a failure while clearing can leave a record in both tables but never
// loses one. Cleared source rows are left blank; call Compact afterwards.
func Relocate(ctx context.Context, store sheet.Store, m Move) error {
	if !m.Keep.Valid() {
		return fmt.Errorf("%w: keep column %d", sheet.ErrInvalidRange, m.Keep)
	}

	seen := make(map[int]bool, len(m.Rows))
	order := make([]int, 0, len(m.Rows))
	for _, r := range m.Rows {
		if r < 1 {
			return fmt.Errorf("%w: row %d", sheet.ErrInvalidRange, r)
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		order = append(order, r)
	}
	if len(order) == 0 {
		return nil
	}

	buffer := make([][]string, 0, len(order))
	for _, r := range order {
		cells, err := store.ReadRow(ctx, m.From, r)
		if err != nil {
			return fmt.Errorf("read row %d of %s: %w", r, m.From, err)
		}
		record := append(sheet.Fit(cells, m.Keep), m.Extra[r]...)
		if len(record) > int(sheet.LastColumn)+1 {
			return fmt.Errorf("%w: row %d of %s would span %d columns", sheet.ErrInvalidRange, r, m.From, len(record))
		}
		buffer = append(buffer, record)
	}

	if err := store.AppendAfterLast(ctx, m.To, m.KeyCol, buffer); err != nil {
		return fmt.Errorf("append %d rows to %s: %w", len(buffer), m.To, err)
	}

	for _, r := range order {
		if err := store.ClearRange(ctx, m.From, sheet.RowRange(r, sheet.ColumnA, sheet.LastColumn)); err != nil {
			return fmt.Errorf("clear row %d of %s: %w", r, m.From, err)
		}
	}
	return nil
}
