package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/audit"
)

func (r *runner) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [dir]",
		Short: "Write a JSON snapshot of both tables",
		Long: `Reads the available and loaned tables and writes them to a new
<uuid>.json file in dir (default ./exports).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "./exports"
			if len(args) == 1 {
				dir = args[0]
			}

			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			snap, err := app.Catalog.Snapshot(cmd.Context())
			if err != nil {
				return err
			}
			filename, err := audit.NewArchiver(dir).SaveJSON(snap)
			if app.Audit != nil {
				app.Audit.LogExport(filename, err)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d available and %d loaned books to %s\n",
				len(snap.Available), len(snap.Loaned), filepath.Join(dir, filename))
			return nil
		},
	}
}
