// Package catalog runs the library workflows over two store tables:
// "available" holds [title, category] rows and "loaned" holds
// [title, category, borrower, due_at] rows.
//
// A book moves Available → Loaned on Loan and back on Return. A title found
// in neither table does not exist.
package catalog

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/rows"
	"github.com/mrlokans/librarian/internal/sheet"
)

const (
	DefaultAvailableTable = "available"
	DefaultLoanedTable    = "loaned"

	// DefaultLoanPeriod is 21 days (1,814,400 seconds).
	DefaultLoanPeriod = 21 * 24 * time.Hour
	// DefaultDueWindow is 20 days (1,728,000 seconds).
	DefaultDueWindow = 20 * 24 * time.Hour
	// DefaultCapacity is the maximum number of rows in the available table.
	DefaultCapacity = 1000
)

// Record column layout.
const (
	titleCol    = sheet.ColumnA
	categoryCol = sheet.ColumnB
	borrowerCol = sheet.ColumnC
	dueCol      = sheet.ColumnD
)

var (
	// ErrNotFound is returned when a title is in neither table it was looked up in.
	ErrNotFound = rows.ErrNotFound
	// ErrDuplicateKey marks a title that already exists.
	ErrDuplicateKey = errors.New("book already in the library")
	// ErrCapacityExceeded is returned when an add batch would not fit.
	ErrCapacityExceeded = errors.New("not enough space in the library")
	// ErrInvalidInput marks malformed operator input.
	ErrInvalidInput = errors.New("invalid input")
)

// Auditor records completed workflows.
type Auditor interface {
	LogAdd(added []Book, skipped int, err error)
	LogLoan(loans []Loan, err error)
	LogReturn(returned []Book, err error)
}

type nopAuditor struct{}

func (nopAuditor) LogAdd([]Book, int, error) {}
func (nopAuditor) LogLoan([]Loan, error)     {}
func (nopAuditor) LogReturn([]Book, error)   {}

// Manager runs the catalog workflows against a store.
type Manager struct {
	store     sheet.Store
	available string
	loaned    string

	loanPeriod time.Duration
	dueWindow  time.Duration
	capacity   int

	now     func() time.Time
	logger  *zap.Logger
	auditor Auditor
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithAuditor sets where completed workflows are recorded.
func WithAuditor(a Auditor) Option {
	return func(m *Manager) {
		if a != nil {
			m.auditor = a
		}
	}
}

// WithTables overrides the table names.
func WithTables(available, loaned string) Option {
	return func(m *Manager) {
		m.available = available
		m.loaned = loaned
	}
}

// WithLoanPeriod sets how long a loan runs.
func WithLoanPeriod(d time.Duration) Option {
	return func(m *Manager) { m.loanPeriod = d }
}

// WithDueWindow sets how far ahead DueSoon looks.
func WithDueWindow(d time.Duration) Option {
	return func(m *Manager) { m.dueWindow = d }
}

// WithCapacity sets the available table's row ceiling.
func WithCapacity(n int) Option {
	return func(m *Manager) { m.capacity = n }
}

// New creates a Manager.
func New(store sheet.Store, opts ...Option) *Manager {
	m := &Manager{
		store:      store,
		available:  DefaultAvailableTable,
		loaned:     DefaultLoanedTable,
		loanPeriod: DefaultLoanPeriod,
		dueWindow:  DefaultDueWindow,
		capacity:   DefaultCapacity,
		now:        time.Now,
		logger:     zap.NewNop(),
		auditor:    nopAuditor{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// AvailableTable returns the name of the available table.
func (m *Manager) AvailableTable() string { return m.available }

// LoanedTable returns the name of the loaned table.
func (m *Manager) LoanedTable() string { return m.loaned }

// Locate returns the row of title in table, or ErrNotFound.
func (m *Manager) Locate(ctx context.Context, table, title string) (int, error) {
	return rows.Locate(ctx, m.store, table, title, titleCol)
}

// Exists reports whether title is in either table.
func (m *Manager) Exists(ctx context.Context, title string) (bool, error) {
	for _, table := range []string{m.available, m.loaned} {
		_, err := m.Locate(ctx, table, title)
		if err == nil {
			return true, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return false, err
		}
	}
	return false, nil
}
