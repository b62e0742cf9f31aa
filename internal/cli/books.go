package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/catalog"
	"github.com/mrlokans/librarian/internal/shell"
)

func (r *runner) shellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE:  r.runShell,
	}
}

func (r *runner) runShell(cmd *cobra.Command, args []string) error {
	app, err := r.open(cmd.Context())
	if err != nil {
		return err
	}
	defer app.Close()

	sh := shell.New(app.Catalog, cmd.InOrStdin(), cmd.OutOrStdout(), shell.Config{
		MaxBatch:   r.cfg.Console.MaxBatch,
		StartDelay: r.cfg.Console.StartupDelay,
		MenuDelay:  r.cfg.Console.MenuDelay,
	}, r.log().Named("shell"))
	return sh.Run(cmd.Context())
}

func (r *runner) addCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <category>",
		Short: "Add a book to the available table",
		Long: `Adds one book. The category is F or NF (fiction or non fiction).

Example:
  librarian add "Dune" f`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := catalog.ParseCategory(args[1])
			if err != nil {
				return err
			}

			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Catalog.Add(cmd.Context(), []catalog.Book{{Title: args[0], Category: category}})
			if err != nil {
				return err
			}
			if len(result.Skipped) > 0 {
				skipped := result.Skipped[0]
				return fmt.Errorf("%s: %w", skipped.Title, skipped.Reason)
			}
			for _, book := range result.Added {
				fmt.Fprintf(cmd.OutOrStdout(), "Added %q (%s).\n", book.Title, book.Category)
			}
			return nil
		},
	}
}

func (r *runner) loanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "loan <title> <borrower>",
		Short: "Loan an available book",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Catalog.Loan(cmd.Context(), []catalog.LoanRequest{{Title: args[0], Borrower: args[1]}})
			if err != nil {
				return err
			}
			if len(result.NotFound) > 0 {
				return fmt.Errorf("%s: %w", strings.Join(result.NotFound, ", "), catalog.ErrNotFound)
			}
			for _, loan := range result.Loaned {
				fmt.Fprintf(cmd.OutOrStdout(), "Loaned %q to %s, due %s.\n",
					loan.Title, loan.Borrower, loan.DueAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func (r *runner) returnCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "return <title>...",
		Short: "Return loaned books",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			result, err := app.Catalog.Return(cmd.Context(), args)
			if err != nil {
				return err
			}
			for _, book := range result.Returned {
				fmt.Fprintf(cmd.OutOrStdout(), "Returned %q.\n", book.Title)
			}
			if len(result.NotFound) > 0 {
				return fmt.Errorf("%s: %w", strings.Join(result.NotFound, ", "), catalog.ErrNotFound)
			}
			return nil
		},
	}
}
