package cli

import (
	"os"

	"github.com/spf13/cobra"

	"schedcal/internal/view"
)

// ShowCmd returns the show command
func ShowCmd() *cobra.Command {
	var weekday string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the schedule, sorted for display",
		Long: `Fetch the latest schedule from the remote CSV and print it sorted by
weekday order then time. Use --weekday to filter a single day.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := setup()
			if err != nil {
				return err
			}

			table, err := svc.Load(cmd.Context())
			if err != nil {
				return err
			}

			table = view.FilterWeekday(table, weekday)
			table = view.SortForDisplay(table)
			view.RenderTable(os.Stdout, table)
			return nil
		},
	}

	cmd.Flags().StringVar(&weekday, "weekday", "", "Filter by weekday name (e.g. Monday)")
	return cmd
}

// CalendarCmd returns the calendar command
func CalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar",
		Short: "Show the weekly calendar grid",
		Long:  `Print the schedule pivoted into a weekday-by-time grid; activities sharing a slot are joined with ", ".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := setup()
			if err != nil {
				return err
			}

			table, err := svc.Load(cmd.Context())
			if err != nil {
				return err
			}

			view.RenderCalendar(os.Stdout, view.Pivot(table))
			return nil
		},
	}
}
