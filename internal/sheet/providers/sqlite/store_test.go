package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/sheet"
)

func setupTestStore(t *testing.T) *Store {
	dbPath := filepath.Join(t.TempDir(), "cells.db")

	db, err := gorm.Open(gormsqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.SheetCell{}))

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})

	return New(db)
}

func TestStore_WriteThenRead(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	err := s.WriteRange(ctx, "available", sheet.Cell{Col: sheet.ColumnA, Row: 1},
		[][]string{{"dune", "fiction"}, {"emma", "fiction"}})
	require.NoError(t, err)

	col, err := s.ReadColumn(ctx, "available", sheet.ColumnA)
	require.NoError(t, err)
	assert.Equal(t, []string{"dune", "emma"}, col)

	row, err := s.ReadRow(ctx, "available", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"emma", "fiction"}, row)
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.WriteRange(ctx, "loaned", sheet.Cell{Col: sheet.ColumnA, Row: 1}, [][]string{{"dune", "fiction"}}))
	require.NoError(t, s.WriteRange(ctx, "loaned", sheet.Cell{Col: sheet.ColumnB, Row: 1}, [][]string{{"non fiction"}}))

	row, err := s.ReadRow(ctx, "loaned", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"dune", "non fiction"}, row)
}

func TestStore_EmptyValueClearsCell(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.WriteRange(ctx, "available", sheet.Cell{Col: sheet.ColumnA, Row: 1}, [][]string{{"dune", "fiction"}}))
	require.NoError(t, s.WriteRange(ctx, "available", sheet.Cell{Col: sheet.ColumnA, Row: 1}, [][]string{{"", ""}}))

	col, err := s.ReadColumn(ctx, "available", sheet.ColumnA)
	require.NoError(t, err)
	assert.Empty(t, col)
}

func TestStore_ReadColumnKeepsGaps(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.WriteRange(ctx, "available", sheet.Cell{Col: sheet.ColumnA, Row: 1},
		[][]string{{"a"}, {"b"}, {"c"}}))
	require.NoError(t, s.ClearRange(ctx, "available", sheet.RowRange(2, sheet.ColumnA, sheet.LastColumn)))

	col, err := s.ReadColumn(ctx, "available", sheet.ColumnA)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "c"}, col)
}

func TestStore_ClearWholeTable(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.WriteRange(ctx, "available", sheet.Cell{Col: sheet.ColumnA, Row: 1}, [][]string{{"a", "f"}, {"b", "nf"}}))
	require.NoError(t, s.WriteRange(ctx, "loaned", sheet.Cell{Col: sheet.ColumnA, Row: 1}, [][]string{{"c", "f"}}))

	require.NoError(t, s.ClearRange(ctx, "available", sheet.WholeTable()))

	col, err := s.ReadColumn(ctx, "available", sheet.ColumnA)
	require.NoError(t, err)
	assert.Empty(t, col)

	// Other tables are untouched
	col, err = s.ReadColumn(ctx, "loaned", sheet.ColumnA)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, col)
}

func TestStore_AppendAfterLast(t *testing.T) {
	ctx := context.Background()
	s := setupTestStore(t)

	require.NoError(t, s.AppendAfterLast(ctx, "available", sheet.ColumnA, [][]string{{"a", "fiction"}}))
	require.NoError(t, s.AppendAfterLast(ctx, "available", sheet.ColumnA, [][]string{{"b", "fiction"}}))

	col, err := s.ReadColumn(ctx, "available", sheet.ColumnA)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, col)
}

func TestStore_InvalidRange(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.ReadRow(context.Background(), "available", 0)
	assert.ErrorIs(t, err, sheet.ErrInvalidRange)

	err = s.ClearRange(context.Background(), "available", sheet.RowRange(1, sheet.ColumnD, sheet.ColumnA))
	assert.ErrorIs(t, err, sheet.ErrInvalidRange)
}
