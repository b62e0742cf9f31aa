package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/rows"
)

// CheckCapacity returns ErrCapacityExceeded when n more rows would push the
// available table past its ceiling.
func (m *Manager) CheckCapacity(ctx context.Context, n int) error {
	next, err := rows.NextRow(ctx, m.store, m.available, titleCol)
	if err != nil {
		return err
	}
	used := next - 1
	if n+used > m.capacity {
		return fmt.Errorf("%w: %d books requested, %d of %d rows used", ErrCapacityExceeded, n, used, m.capacity)
	}
	return nil
}

// Add appends new books to the available table in a single write.
//
// The whole batch is rejected with ErrCapacityExceeded before anything is
// written if it would not fit. Titles already in either table, repeated
// within the batch, or blank are skipped and reported in the result.
func (m *Manager) Add(ctx context.Context, books []Book) (AddResult, error) {
	var result AddResult

	if err := m.CheckCapacity(ctx, len(books)); err != nil {
		m.auditor.LogAdd(nil, len(books), err)
		return result, err
	}

	batch := make(map[string]bool, len(books))
	var cells [][]string
	for _, b := range books {
		title := NormalizeTitle(b.Title)
		if title == "" {
			result.Skipped = append(result.Skipped, SkippedBook{Title: b.Title, Reason: fmt.Errorf("%w: empty title", ErrInvalidInput)})
			continue
		}
		if b.Category != Fiction && b.Category != NonFiction {
			result.Skipped = append(result.Skipped, SkippedBook{Title: title, Reason: fmt.Errorf("%w: no category", ErrInvalidInput)})
			continue
		}

		exists, err := m.Exists(ctx, title)
		if err != nil {
			return result, err
		}
		if exists || batch[title] {
			result.Skipped = append(result.Skipped, SkippedBook{Title: title, Reason: ErrDuplicateKey})
			continue
		}
		batch[title] = true

		book := Book{Title: title, Category: b.Category}
		result.Added = append(result.Added, book)
		cells = append(cells, book.cells())
	}

	if len(cells) == 0 {
		return result, nil
	}

	if err := m.store.AppendAfterLast(ctx, m.available, titleCol, cells); err != nil {
		m.auditor.LogAdd(nil, len(books), err)
		return AddResult{Skipped: result.Skipped}, fmt.Errorf("add books: %w", err)
	}

	m.logger.Info("books added",
		zap.Int("added", len(result.Added)),
		zap.Int("skipped", len(result.Skipped)))
	m.auditor.LogAdd(result.Added, len(result.Skipped), nil)
	return result, nil
}

// Loan moves the requested titles from the available table to the loaned
// table, stamping each with its borrower and a due time one loan period
// from now, then compacts the available table.
func (m *Manager) Loan(ctx context.Context, requests []LoanRequest) (LoanResult, error) {
	var result LoanResult

	now := m.now()
	due := time.Unix(now.Add(m.loanPeriod).Unix(), 0)
	dueCell := strconv.FormatInt(due.Unix(), 10)

	picked := make(map[int]bool, len(requests))
	var found []int
	extra := make(map[int][]string, len(requests))
	for _, req := range requests {
		borrower := strings.TrimSpace(req.Borrower)
		if borrower == "" {
			return LoanResult{}, fmt.Errorf("%w: no borrower for %q", ErrInvalidInput, req.Title)
		}

		row, err := m.Locate(ctx, m.available, req.Title)
		if errors.Is(err, ErrNotFound) {
			result.NotFound = append(result.NotFound, NormalizeTitle(req.Title))
			continue
		}
		if err != nil {
			return LoanResult{}, err
		}
		if picked[row] {
			m.logger.Debug("title requested twice in one loan batch", zap.String("title", req.Title))
			continue
		}
		picked[row] = true

		cells, err := m.store.ReadRow(ctx, m.available, row)
		if err != nil {
			return LoanResult{}, fmt.Errorf("read %s row %d: %w", m.available, row, err)
		}
		found = append(found, row)
		extra[row] = []string{borrower, dueCell}
		result.Loaned = append(result.Loaned, Loan{
			Book:     m.bookFromCells(cells),
			Borrower: borrower,
			DueAt:    due,
		})
	}

	if len(found) == 0 {
		return result, nil
	}

	err := rows.Relocate(ctx, m.store, rows.Move{
		From:   m.available,
		To:     m.loaned,
		Rows:   found,
		Keep:   categoryCol,
		Extra:  extra,
		KeyCol: titleCol,
	})
	if err == nil {
		err = rows.Compact(ctx, m.store, m.available, titleCol)
	}
	if err != nil {
		m.auditor.LogLoan(result.Loaned, err)
		return LoanResult{NotFound: result.NotFound}, fmt.Errorf("loan books: %w", err)
	}

	m.logger.Info("books loaned", zap.Int("count", len(result.Loaned)), zap.Time("due_at", due))
	m.auditor.LogLoan(result.Loaned, nil)
	return result, nil
}

// Return moves the given titles from the loaned table back to the available
// table, dropping borrower and due time, then compacts the loaned table.
func (m *Manager) Return(ctx context.Context, titles []string) (ReturnResult, error) {
	var result ReturnResult

	picked := make(map[int]bool, len(titles))
	var found []int
	for _, title := range titles {
		row, err := m.Locate(ctx, m.loaned, title)
		if errors.Is(err, ErrNotFound) {
			result.NotFound = append(result.NotFound, NormalizeTitle(title))
			continue
		}
		if err != nil {
			return ReturnResult{}, err
		}
		if picked[row] {
			continue
		}
		picked[row] = true

		cells, err := m.store.ReadRow(ctx, m.loaned, row)
		if err != nil {
			return ReturnResult{}, fmt.Errorf("read %s row %d: %w", m.loaned, row, err)
		}
		found = append(found, row)
		result.Returned = append(result.Returned, m.bookFromCells(cells))
	}

	if len(found) == 0 {
		return result, nil
	}

	err := rows.Relocate(ctx, m.store, rows.Move{
		From:   m.loaned,
		To:     m.available,
		Rows:   found,
		Keep:   categoryCol,
		KeyCol: titleCol,
	})
	if err == nil {
		err = rows.Compact(ctx, m.store, m.loaned, titleCol)
	}
	if err != nil {
		m.auditor.LogReturn(result.Returned, err)
		return ReturnResult{NotFound: result.NotFound}, fmt.Errorf("return books: %w", err)
	}

	m.logger.Info("books returned", zap.Int("count", len(result.Returned)))
	m.auditor.LogReturn(result.Returned, nil)
	return result, nil
}
