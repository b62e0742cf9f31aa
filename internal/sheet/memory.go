package sheet

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a Store kept entirely in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	tables map[string][][]string
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store with the given tables.
func NewMemoryStore(tables ...string) *MemoryStore {
	s := &MemoryStore{tables: make(map[string][][]string)}
	for _, t := range tables {
		s.tables[t] = nil
	}
	return s
}

// Seed replaces a table's content. Rows are copied.
func (s *MemoryStore) Seed(table string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grid := make([][]string, len(rows))
	for i, r := range rows {
		grid[i] = append([]string(nil), r...)
	}
	s.tables[table] = grid
}

// Rows returns a copy of a table's rows with trailing empty cells and
// trailing empty rows removed.
func (s *MemoryStore) Rows(table string) [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	grid := s.tables[table]
	out := make([][]string, 0, len(grid))
	for _, r := range grid {
		out = append(out, append([]string(nil), TrimTrailing(r)...))
	}
	end := len(out)
	for end > 0 && len(out[end-1]) == 0 {
		end--
	}
	return out[:end]
}

func (s *MemoryStore) table(name string) ([][]string, error) {
	grid, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("table %q not found", name)
	}
	return grid, nil
}

func (s *MemoryStore) ReadColumn(ctx context.Context, table string, col Column) ([]string, error) {
	if !col.Valid() {
		return nil, fmt.Errorf("%w: column %d", ErrInvalidRange, col)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	grid, err := s.table(table)
	if err != nil {
		return nil, err
	}

	values := make([]string, len(grid))
	for i, r := range grid {
		if int(col) < len(r) {
			values[i] = r[col]
		}
	}
	return TrimTrailing(values), nil
}

func (s *MemoryStore) ReadRow(ctx context.Context, table string, row int) ([]string, error) {
	if row < 1 {
		return nil, fmt.Errorf("%w: row %d", ErrInvalidRange, row)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	grid, err := s.table(table)
	if err != nil {
		return nil, err
	}
	if row > len(grid) {
		return []string{}, nil
	}
	return append([]string{}, TrimTrailing(grid[row-1])...), nil
}

func (s *MemoryStore) WriteRange(ctx context.Context, table string, topLeft Cell, rows [][]string) error {
	if topLeft.Row < 1 || !topLeft.Col.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidRange, topLeft.A1())
	}
	for _, r := range rows {
		if int(topLeft.Col)+len(r)-1 > int(LastColumn) {
			return fmt.Errorf("%w: row of %d cells at %s", ErrInvalidRange, len(r), topLeft.A1())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grid, err := s.table(table)
	if err != nil {
		return err
	}

	for i, values := range rows {
		idx := topLeft.Row - 1 + i
		for len(grid) <= idx {
			grid = append(grid, nil)
		}
		r := grid[idx]
		need := int(topLeft.Col) + len(values)
		for len(r) < need {
			r = append(r, "")
		}
		copy(r[topLeft.Col:], values)
		grid[idx] = r
	}
	s.tables[table] = grid
	return nil
}

func (s *MemoryStore) ClearRange(ctx context.Context, table string, rng Range) error {
	if err := rng.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	grid, err := s.table(table)
	if err != nil {
		return err
	}

	for i, r := range grid {
		for c := range r {
			if rng.Contains(i+1, Column(c)) {
				r[c] = ""
			}
		}
	}
	return nil
}

func (s *MemoryStore) AppendAfterLast(ctx context.Context, table string, col Column, rows [][]string) error {
	column, err := s.ReadColumn(ctx, table, col)
	if err != nil {
		return err
	}
	return s.WriteRange(ctx, table, Cell{Col: ColumnA, Row: len(column) + 1}, rows)
}
