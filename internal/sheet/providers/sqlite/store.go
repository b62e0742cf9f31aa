// Package sqlite keeps library tables in a local SQLite database.
//
// Cells are stored one per record in the sheet_cells table. Only non-empty
// cells exist, so clearing a range is a delete and a table's extent is the
// highest row that still has a cell.
//
// # Usage
//
//	db, err := database.NewDatabase("./librarian.db", logger)
//	store := sqlite.New(db.DB)
//	col, err := store.ReadColumn(ctx, "available", sheet.ColumnA)
package sqlite

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/sheet"
)

// Store implements sheet.Store over gorm.
type Store struct {
	db *gorm.DB
}

var _ sheet.Store = (*Store)(nil)

// New creates a store on an already migrated database.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) ReadColumn(ctx context.Context, table string, col sheet.Column) ([]string, error) {
	if !col.Valid() {
		return nil, fmt.Errorf("%w: column %d", sheet.ErrInvalidRange, col)
	}

	var cells []entities.SheetCell
	err := s.db.WithContext(ctx).
		Where("sheet_name = ? AND col_num = ?", table, int(col)).
		Order("row_num").
		Find(&cells).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read column %s of %s: %w", col.Letter(), table, err)
	}
	if len(cells) == 0 {
		return []string{}, nil
	}

	values := make([]string, cells[len(cells)-1].Row)
	for _, c := range cells {
		values[c.Row-1] = c.Value
	}
	return values, nil
}

func (s *Store) ReadRow(ctx context.Context, table string, row int) ([]string, error) {
	if row < 1 {
		return nil, fmt.Errorf("%w: row %d", sheet.ErrInvalidRange, row)
	}

	var cells []entities.SheetCell
	err := s.db.WithContext(ctx).
		Where("sheet_name = ? AND row_num = ?", table, row).
		Order("col_num").
		Find(&cells).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read row %d of %s: %w", row, table, err)
	}
	if len(cells) == 0 {
		return []string{}, nil
	}

	values := make([]string, cells[len(cells)-1].Col+1)
	for _, c := range cells {
		values[c.Col] = c.Value
	}
	return values, nil
}

func (s *Store) WriteRange(ctx context.Context, table string, topLeft sheet.Cell, rows [][]string) error {
	if topLeft.Row < 1 || !topLeft.Col.Valid() {
		return fmt.Errorf("%w: %s", sheet.ErrInvalidRange, topLeft.A1())
	}
	for _, r := range rows {
		if int(topLeft.Col)+len(r)-1 > int(sheet.LastColumn) {
			return fmt.Errorf("%w: row of %d cells at %s", sheet.ErrInvalidRange, len(r), topLeft.A1())
		}
	}

	now := time.Now()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, values := range rows {
			rowNum := topLeft.Row + i
			for j, v := range values {
				colNum := int(topLeft.Col) + j
				if v == "" {
					err := tx.Where("sheet_name = ? AND row_num = ? AND col_num = ?", table, rowNum, colNum).
						Delete(&entities.SheetCell{}).Error
					if err != nil {
						return fmt.Errorf("failed to clear %s%d of %s: %w", sheet.Column(colNum).Letter(), rowNum, table, err)
					}
					continue
				}

				cell := entities.SheetCell{
					Sheet:     table,
					Row:       rowNum,
					Col:       colNum,
					Value:     v,
					UpdatedAt: now,
				}
				err := tx.Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "sheet_name"}, {Name: "row_num"}, {Name: "col_num"}},
					DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
				}).Create(&cell).Error
				if err != nil {
					return fmt.Errorf("failed to write %s%d of %s: %w", sheet.Column(colNum).Letter(), rowNum, table, err)
				}
			}
		}
		return nil
	})
}

func (s *Store) ClearRange(ctx context.Context, table string, rng sheet.Range) error {
	if err := rng.Validate(); err != nil {
		return err
	}

	query := s.db.WithContext(ctx).
		Where("sheet_name = ?", table).
		Where("col_num BETWEEN ? AND ?", int(rng.From.Col), int(rng.To.Col)).
		Where("row_num >= ?", rng.From.Row)
	if rng.To.Row != 0 {
		query = query.Where("row_num <= ?", rng.To.Row)
	}

	if err := query.Delete(&entities.SheetCell{}).Error; err != nil {
		return fmt.Errorf("failed to clear %s of %s: %w", rng.A1(), table, err)
	}
	return nil
}

func (s *Store) AppendAfterLast(ctx context.Context, table string, col sheet.Column, rows [][]string) error {
	column, err := s.ReadColumn(ctx, table, col)
	if err != nil {
		return err
	}
	return s.WriteRange(ctx, table, sheet.Cell{Col: sheet.ColumnA, Row: len(column) + 1}, rows)
}
