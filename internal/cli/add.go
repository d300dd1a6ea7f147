package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"schedcal/internal/model"
	"schedcal/internal/recur"
	"schedcal/internal/sched"
	"schedcal/internal/view"
)

// AddCmd returns the add command
func AddCmd() *cobra.Command {
	var (
		name     string
		activity string
		timeStr  string
		dateStr  string
		repeat   string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an event to the schedule",
		Long: `Stage one event (optionally expanded Daily or Weekly), refetch the
latest remote schedule, append, and write back.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := setup()
			if err != nil {
				return err
			}

			mode, err := recur.ParseMode(repeat)
			if err != nil {
				return err
			}

			start := time.Now()
			if dateStr != "" {
				d := model.ParseDate(dateStr)
				if d == nil {
					return fmt.Errorf("invalid --date %q, want YYYY-MM-DD", dateStr)
				}
				start = *d
			}

			recs, err := recur.Expand(start, name, activity, timeStr, mode, count)
			if err != nil {
				return err
			}

			result, err := svc.AddRecords(cmd.Context(), recs, "Add event(s) via CLI")
			return report(result, err, fmt.Sprintf("Added %d event(s).", len(recs)))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Person the event is for")
	cmd.Flags().StringVar(&activity, "activity", "", "Activity description")
	cmd.Flags().StringVar(&timeStr, "time", "", "Free-text time label (e.g. 7pm)")
	cmd.Flags().StringVar(&dateStr, "date", "", "Event date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&repeat, "repeat", "None", "Recurrence: None, Daily or Weekly")
	cmd.Flags().IntVar(&count, "count", 1, "How many occurrences to add")
	_ = cmd.MarkFlagRequired("activity")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// report prints the merged table preview and the write outcome shared by
// all mutating commands.
func report(result sched.Result, err error, okMsg string) error {
	if err != nil {
		// A rejected write still carries diagnostics worth showing raw.
		if result.Write.StatusCode != 0 {
			fmt.Fprintf(os.Stderr, "remote response: status %d\n%s\n", result.Write.StatusCode, result.Write.Body)
		}
		return err
	}

	fmt.Println("Updated schedule:")
	view.RenderTable(os.Stdout, view.SortForDisplay(result.Table))
	fmt.Println(okMsg)
	return nil
}
