package catalog

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies a book. The zero value is an unrecognised category.
type Category int

const (
	Fiction Category = iota + 1
	NonFiction
)

// CategoryOptions are the inputs ParseCategory accepts.
var CategoryOptions = []string{"f", "nf", "fiction", "non fiction"}

// String returns the form stored in the table.
func (c Category) String() string {
	switch c {
	case Fiction:
		return "fiction"
	case NonFiction:
		return "non fiction"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stored form.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts any ParseCategory input.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory normalizes an input alias: f → fiction, nf → non fiction.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "f", "fiction":
		return Fiction, nil
	case "nf", "non fiction":
		return NonFiction, nil
	default:
		return 0, fmt.Errorf("%w: category %q (expected F or NF)", ErrInvalidInput, s)
	}
}

// Book is a record of the available table: [title, category].
type Book struct {
	Title    string   `json:"title"`
	Category Category `json:"category"`
}

func (b Book) cells() []string {
	return []string{b.Title, b.Category.String()}
}

// Loan is a record of the loaned table: [title, category, borrower, due_at].
type Loan struct {
	Book
	Borrower string    `json:"borrower"`
	DueAt    time.Time `json:"due_at"`
}

// DueLoan is a loan inside the due window.
type DueLoan struct {
	Loan

	// DaysLeft is the time until DueAt in days, rounded to one decimal.
	// Negative for overdue loans.
	DaysLeft float64 `json:"days_left"`
}

// LoanRequest asks to lend one title to one borrower.
type LoanRequest struct {
	Title    string
	Borrower string
}

// SkippedBook is a title Add did not write, with the reason.
type SkippedBook struct {
	Title  string
	Reason error
}

// AddResult reports the outcome of Add.
type AddResult struct {
	Added   []Book
	Skipped []SkippedBook
}

// LoanResult reports the outcome of Loan.
type LoanResult struct {
	Loaned   []Loan
	NotFound []string
}

// ReturnResult reports the outcome of Return.
type ReturnResult struct {
	Returned []Book
	NotFound []string
}

// Snapshot is the full content of both tables at one moment.
type Snapshot struct {
	TakenAt   time.Time `json:"taken_at"`
	Available []Book    `json:"available"`
	Loaned    []Loan    `json:"loaned"`
}

// NormalizeTitle returns the stored form of a title.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
