package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mrlokans/librarian/internal/entities"
)

var errAuditDisabled = errors.New("the audit trail is disabled (AUDIT_ENABLED=false)")

func (r *runner) historyCommand() *cobra.Command {
	var (
		title     string
		eventType string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent catalog changes from the audit trail",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !r.cfg.Audit.Enabled {
				return errAuditDisabled
			}
			app, err := r.open(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			var (
				events []entities.AuditEvent
				total  int64
			)
			switch {
			case title != "":
				events, total, err = app.Audit.GetEventsForTitle(title, limit, 0)
			case eventType != "":
				events, total, err = app.Audit.GetEventsByType(entities.AuditEventType(eventType), limit, 0)
			default:
				events, total, err = app.Audit.GetEvents(limit, 0)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No recorded changes.")
				return nil
			}
			fmt.Fprintln(out, renderEvents(events))
			fmt.Fprintf(out, "Showing %d of %d events.\n", len(events), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "Only show events for this book")
	cmd.Flags().StringVar(&eventType, "type", "", "Only show events of this type (add, loan, return, reminder, export)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to show")
	return cmd
}

func renderEvents(events []entities.AuditEvent) string {
	rows := make([][]string, len(events))
	for i, e := range events {
		rows[i] = []string{
			e.CreatedAt.Format("2006-01-02 15:04"),
			string(e.EventType),
			e.Title,
			e.Borrower,
			string(e.Status),
			e.Description,
		}
	}
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1)
		}).
		Headers("When", "Type", "Title", "Borrower", "Status", "Description").
		Rows(rows...).
		String()
}
