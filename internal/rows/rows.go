// Package rows treats store tables as makeshift record tables.
//
// Records have no identity beyond their 1-based row position. A row index is
// only valid until a row above it is removed, which is why every relocation
// is followed by a Compact of the table it was taken from.
package rows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrlokans/librarian/internal/sheet"
)

// ErrNotFound is returned when no row carries the requested key.
var ErrNotFound = errors.New("record not found")

// NormalizeKey folds a key the way lookups compare it.
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// Locate returns the first 1-based row whose keyCol cell matches key,
// ignoring case and surrounding whitespace.
func Locate(ctx context.Context, store sheet.Store, table, key string, keyCol sheet.Column) (int, error) {
	column, err := store.ReadColumn(ctx, table, keyCol)
	if err != nil {
		return 0, fmt.Errorf("locate %q in %s: %w", key, table, err)
	}

	want := NormalizeKey(key)
	if want == "" {
		return 0, ErrNotFound
	}
	for i, v := range column {
		if NormalizeKey(v) == want {
			return i + 1, nil
		}
	}
	return 0, ErrNotFound
}

// NextRow returns the row just after the last non-empty keyCol cell.
func NextRow(ctx context.Context, store sheet.Store, table string, keyCol sheet.Column) (int, error) {
	column, err := store.ReadColumn(ctx, table, keyCol)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", table, err)
	}
	return len(column) + 1, nil
}

// Size returns the number of present rows in a table.
func Size(ctx context.Context, store sheet.Store, table string, keyCol sheet.Column) (int, error) {
	column, err := store.ReadColumn(ctx, table, keyCol)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", table, err)
	}
	n := 0
	for _, v := range column {
		if v != "" {
			n++
		}
	}
	return n, nil
}
