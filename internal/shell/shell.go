// Package shell is the interactive console for the library: an enumerated
// menu, re-prompting input loops and the add/loan/return/view workflows
// wired to the catalog.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/librarian/internal/catalog"
)

const (
	spacer       = "\n_______________________________________________"
	exitSentinel = "#"
)

// Library is the catalog the shell drives.
type Library interface {
	AvailableTable() string
	LoanedTable() string
	Locate(ctx context.Context, table, title string) (int, error)
	Exists(ctx context.Context, title string) (bool, error)
	CheckCapacity(ctx context.Context, n int) error
	Add(ctx context.Context, books []catalog.Book) (catalog.AddResult, error)
	Loan(ctx context.Context, requests []catalog.LoanRequest) (catalog.LoanResult, error)
	Return(ctx context.Context, titles []string) (catalog.ReturnResult, error)
	Available(ctx context.Context) ([]catalog.Book, error)
	Loaned(ctx context.Context) ([]catalog.Loan, error)
	DueSoon(ctx context.Context) ([]catalog.DueLoan, error)
}

var _ Library = (*catalog.Manager)(nil)

// Config holds the shell's pacing and limits.
type Config struct {
	// MaxBatch is the largest number of books one Add may ask for.
	MaxBatch int
	// StartDelay is the pause after the greeting.
	StartDelay time.Duration
	// MenuDelay is the pause after each printed menu entry.
	MenuDelay time.Duration
}

// DefaultConfig returns the pacing used on a real console.
func DefaultConfig() Config {
	return Config{
		MaxBatch:   100,
		StartDelay: time.Second,
		MenuDelay:  200 * time.Millisecond,
	}
}

type option struct {
	name string
	run  func(ctx context.Context) error
}

// Shell runs the menu loop.
type Shell struct {
	lib    Library
	prompt *Prompter
	out    io.Writer
	cfg    Config
	logger *zap.Logger
	sleep  func(time.Duration)

	options []option
}

// New creates a shell reading operator input from in and writing to out.
func New(lib Library, in io.Reader, out io.Writer, cfg Config, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxBatch <= 0 {
		cfg.MaxBatch = DefaultConfig().MaxBatch
	}
	s := &Shell{
		lib:    lib,
		prompt: NewPrompter(in, out),
		out:    out,
		cfg:    cfg,
		logger: logger,
		sleep:  time.Sleep,
	}
	s.options = []option{
		{"Add Book", s.addBooks},
		{"Loan Book", s.loanBooks},
		{"Return Book", s.returnBooks},
		{"View Available Books", s.viewAvailable},
		{"View Loaned Books", s.viewLoaned},
		{"View Books Due Soon", s.viewDue},
	}
	return s
}

// Run shows the menu until the operator picks exit, the input closes or ctx
// is cancelled. Workflow failures are reported and the menu continues.
func (s *Shell) Run(ctx context.Context) error {
	fmt.Fprintln(s.out, "This is a library manager!")
	fmt.Fprintln(s.out)
	s.sleep(s.cfg.StartDelay)

	exit := len(s.options) + 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintln(s.out, "These are your options:")
		for i, opt := range s.options {
			fmt.Fprintf(s.out, "[%d] %s\n", i+1, opt.name)
			s.sleep(s.cfg.MenuDelay)
		}

		choice, err := s.prompt.Int(fmt.Sprintf("Pick an option (%d to exit): ", exit), "Please enter a valid option!\n", 1, exit)
		if err != nil {
			return s.finish(err)
		}
		s.rule()
		if choice == exit {
			break
		}

		opt := s.options[choice-1]
		if err := opt.run(ctx); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return s.finish(err)
			}
			s.logger.Error("workflow failed", zap.String("workflow", opt.name), zap.Error(err))
			fmt.Fprintf(s.out, "Sorry, something went wrong: %v\n", err)
			s.rule()
		}
	}

	fmt.Fprintln(s.out, "Thanks for using this program!")
	return nil
}

func (s *Shell) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(s.out)
		fmt.Fprintln(s.out, "Thanks for using this program!")
		return nil
	}
	return err
}

func (s *Shell) addBooks(ctx context.Context) error {
	count, err := s.prompt.Int(
		fmt.Sprintf("How many books are you adding (1 - %d): ", s.cfg.MaxBatch),
		fmt.Sprintf("Please enter a positive integer between (1 - %d)!\n", s.cfg.MaxBatch),
		1, s.cfg.MaxBatch)
	if err != nil {
		return err
	}

	if err := s.lib.CheckCapacity(ctx, count); err != nil {
		if errors.Is(err, catalog.ErrCapacityExceeded) {
			fmt.Fprintln(s.out, "Sorry, the library does not have enough space for that amount of books.")
			return nil
		}
		return err
	}
	fmt.Fprintln(s.out)

	seen := make(map[string]bool, count)
	var batch []catalog.Book
	for i := 0; i < count; i++ {
		line, err := s.prompt.Line("What is the name of the book: ")
		if err != nil {
			return err
		}
		title := catalog.NormalizeTitle(line)
		if title == "" {
			fmt.Fprintln(s.out, "A book needs a name.")
			fmt.Fprintln(s.out)
			continue
		}

		exists, err := s.lib.Exists(ctx, title)
		if err != nil {
			return err
		}
		if exists || seen[title] {
			fmt.Fprintln(s.out, "This book has already been added to the library.")
			fmt.Fprintln(s.out)
			continue
		}

		answer, err := s.prompt.Choice("Is the book fiction or non fiction (F / NF): ",
			"Please enter F or NF (fiction or non fiction)!\n", catalog.CategoryOptions)
		if err != nil {
			return err
		}
		category, err := catalog.ParseCategory(answer)
		if err != nil {
			return err
		}

		seen[title] = true
		batch = append(batch, catalog.Book{Title: title, Category: category})
		s.rule()
	}

	if len(batch) == 0 {
		return nil
	}

	result, err := s.lib.Add(ctx, batch)
	if err != nil {
		if errors.Is(err, catalog.ErrCapacityExceeded) {
			fmt.Fprintln(s.out, "Sorry, the library does not have enough space for that amount of books.")
			return nil
		}
		return err
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(s.out, "Skipped %q: %v\n", skipped.Title, skipped.Reason)
	}
	fmt.Fprintf(s.out, "Added %d %s.\n", len(result.Added), plural(len(result.Added), "book", "books"))
	return nil
}

func (s *Shell) loanBooks(ctx context.Context) error {
	picked := make(map[string]bool)
	var requests []catalog.LoanRequest

	for {
		title, err := s.readTitle()
		if err != nil {
			return err
		}
		if title == exitSentinel {
			break
		}
		if picked[title] {
			fmt.Fprintln(s.out, "You have already picked that book.")
			continue
		}

		if _, err := s.lib.Locate(ctx, s.lib.AvailableTable(), title); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				fmt.Fprintln(s.out, "Sorry, could not find your book.")
				continue
			}
			return err
		}
		fmt.Fprintln(s.out, "Found book!")

		borrower, err := s.prompt.NonEmpty("Who is borrowing the book: ", "Please enter the name of the student!")
		if err != nil {
			return err
		}
		picked[title] = true
		requests = append(requests, catalog.LoanRequest{Title: title, Borrower: borrower})
	}

	if len(requests) > 0 {
		result, err := s.lib.Loan(ctx, requests)
		if err != nil {
			return err
		}
		for _, title := range result.NotFound {
			fmt.Fprintf(s.out, "Could not find %q any more.\n", title)
		}
		for _, l := range result.Loaned {
			fmt.Fprintf(s.out, "Loaned %q to %s, due %s.\n", l.Title, l.Borrower, formatDue(l.DueAt))
		}
		fmt.Fprintln(s.out, "Loaned out books.")
	}

	s.rule()
	return nil
}

func (s *Shell) returnBooks(ctx context.Context) error {
	picked := make(map[string]bool)
	var titles []string

	for {
		title, err := s.readTitle()
		if err != nil {
			return err
		}
		if title == exitSentinel {
			break
		}
		if picked[title] {
			fmt.Fprintln(s.out, "You have already picked that book.")
			continue
		}

		if _, err := s.lib.Locate(ctx, s.lib.LoanedTable(), title); err != nil {
			if errors.Is(err, catalog.ErrNotFound) {
				fmt.Fprintln(s.out, "Sorry, could not find the book.")
				continue
			}
			return err
		}
		fmt.Fprintln(s.out, "Found book!")
		picked[title] = true
		titles = append(titles, title)
	}

	if len(titles) > 0 {
		result, err := s.lib.Return(ctx, titles)
		if err != nil {
			return err
		}
		for _, title := range result.NotFound {
			fmt.Fprintf(s.out, "Could not find %q any more.\n", title)
		}
		fmt.Fprintln(s.out, "Returned books.")
	}

	s.rule()
	return nil
}

func (s *Shell) readTitle() (string, error) {
	line, err := s.prompt.Line(fmt.Sprintf("Please enter the name of the book (%s to exit): ", exitSentinel))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

func (s *Shell) viewAvailable(ctx context.Context) error {
	books, err := s.lib.Available(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, RenderAvailable(books))
	s.rule()
	return nil
}

func (s *Shell) viewLoaned(ctx context.Context) error {
	loans, err := s.lib.Loaned(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, RenderLoaned(loans))
	s.rule()
	return nil
}

func (s *Shell) viewDue(ctx context.Context) error {
	due, err := s.lib.DueSoon(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(s.out, RenderDue(due))
	s.rule()
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// rule prints the separator between menu rounds, followed by a blank line.
func (s *Shell) rule() {
	fmt.Fprintln(s.out, spacer)
	fmt.Fprintln(s.out)
}
