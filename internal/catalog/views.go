package catalog

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/sheet"
)

// Available lists the books in the available table, top to bottom.
func (m *Manager) Available(ctx context.Context) ([]Book, error) {
	columns, err := m.readColumns(ctx, m.available, titleCol, categoryCol)
	if err != nil {
		return nil, err
	}

	var books []Book
	for i, title := range columns[0] {
		if title == "" {
			continue
		}
		books = append(books, m.bookFromCells([]string{title, cellAt(columns[1], i)}))
	}
	return books, nil
}

// Loaned lists the loans in the loaned table, top to bottom. A loan whose
// due cell cannot be parsed has a zero DueAt.
func (m *Manager) Loaned(ctx context.Context) ([]Loan, error) {
	columns, err := m.readColumns(ctx, m.loaned, titleCol, categoryCol, borrowerCol, dueCol)
	if err != nil {
		return nil, err
	}

	var loans []Loan
	for i, title := range columns[0] {
		if title == "" {
			continue
		}
		loan := Loan{
			Book:     m.bookFromCells([]string{title, cellAt(columns[1], i)}),
			Borrower: cellAt(columns[2], i),
		}
		due, err := parseDue(cellAt(columns[3], i))
		if err != nil {
			m.logger.Warn("unreadable due time",
				zap.String("table", m.loaned),
				zap.Int("row", i+1),
				zap.Error(err))
		} else {
			loan.DueAt = due
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

// DueSoon lists loans due within the due window from now, overdue loans
// included. Loans without a readable due time are skipped.
func (m *Manager) DueSoon(ctx context.Context) ([]DueLoan, error) {
	loans, err := m.Loaned(ctx)
	if err != nil {
		return nil, err
	}

	now := m.now().Unix()
	window := int64(m.dueWindow / time.Second)

	var due []DueLoan
	for _, loan := range loans {
		if loan.DueAt.IsZero() {
			continue
		}
		left := loan.DueAt.Unix() - now
		if left > window {
			continue
		}
		days := math.Round(float64(left)/86400*10) / 10
		if days == 0 {
			days = 0 // drop the sign of -0
		}
		due = append(due, DueLoan{Loan: loan, DaysLeft: days})
	}
	return due, nil
}

// Snapshot reads both tables.
func (m *Manager) Snapshot(ctx context.Context) (Snapshot, error) {
	available, err := m.Available(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	loaned, err := m.Loaned(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{TakenAt: m.now(), Available: available, Loaned: loaned}, nil
}

func (m *Manager) readColumns(ctx context.Context, table string, cols ...sheet.Column) ([][]string, error) {
	out := make([][]string, len(cols))
	for i, c := range cols {
		values, err := m.store.ReadColumn(ctx, table, c)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", table, err)
		}
		out[i] = values
	}
	return out, nil
}

func (m *Manager) bookFromCells(cells []string) Book {
	book := Book{Title: cellAt(cells, int(titleCol))}
	category, err := ParseCategory(cellAt(cells, int(categoryCol)))
	if err != nil {
		m.logger.Warn("unknown category", zap.String("title", book.Title), zap.Error(err))
	}
	book.Category = category
	return book
}

func parseDue(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, fmt.Errorf("empty due time")
	}
	secs, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("due time %q: %w", cell, err)
	}
	return time.Unix(int64(secs), 0), nil
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
