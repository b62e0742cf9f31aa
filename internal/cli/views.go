package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/shell"
)

func (r *runner) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "view available|loaned",
		Short:     "List the books in one table",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"available", "loaned"},
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			out := cmd.OutOrStdout()
			if args[0] == "available" {
				books, err := app.Catalog.Available(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(out, shell.RenderAvailable(books))
				return nil
			}

			loans, err := app.Catalog.Loaned(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, shell.RenderLoaned(loans))
			return nil
		},
	}
}

func (r *runner) dueCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "due",
		Short: "List loans inside the due window, overdue included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			due, err := app.Catalog.DueSoon(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), shell.RenderDue(due))
			return nil
		},
	}
}
