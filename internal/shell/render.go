package shell

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/mrlokans/librarian/internal/catalog"
)

const dueDateLayout = "2006-01-02 15:04"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

// RenderAvailable renders the available books as a table.
func RenderAvailable(books []catalog.Book) string {
	if len(books) == 0 {
		return "There are no books available."
	}
	rows := make([][]string, len(books))
	for i, b := range books {
		rows[i] = []string{b.Title, b.Category.String()}
	}
	return renderTable([]string{"Title", "Category"}, rows)
}

// RenderLoaned renders the loaned books as a table.
func RenderLoaned(loans []catalog.Loan) string {
	if len(loans) == 0 {
		return "There are no books on loan."
	}
	rows := make([][]string, len(loans))
	for i, l := range loans {
		rows[i] = []string{l.Title, l.Category.String(), l.Borrower, formatDue(l.DueAt)}
	}
	return renderTable([]string{"Title", "Category", "Borrower", "Due"}, rows)
}

// RenderDue renders loans inside the due window with the days left.
func RenderDue(due []catalog.DueLoan) string {
	if len(due) == 0 {
		return "No books are due soon."
	}
	rows := make([][]string, len(due))
	for i, d := range due {
		rows[i] = []string{d.Title, d.Borrower, fmt.Sprintf("%.1f", d.DaysLeft)}
	}
	return renderTable([]string{"Title", "Borrower", "Days left"}, rows)
}

func formatDue(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	return t.Format(dueDateLayout)
}
