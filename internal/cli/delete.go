package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"schedcal/internal/view"
)

// DeleteCmd returns the delete command
func DeleteCmd() *cobra.Command {
	var (
		id    int
		label string
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an event by id or label",
		Long: `Delete a row from the schedule. --id removes exactly one row; --label
removes every row rendering that label (duplicate rows share labels).
Without flags, the current rows and their labels are listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := setup()
			if err != nil {
				return err
			}

			switch {
			case cmd.Flags().Changed("id"):
				result, err := svc.DeleteByID(cmd.Context(), id)
				return report(result, err, fmt.Sprintf("Deleted %d event(s).", result.Removed))
			case label != "":
				result, err := svc.DeleteByLabel(cmd.Context(), label)
				return report(result, err, fmt.Sprintf("Deleted %d event(s).", result.Removed))
			default:
				// No selector: list candidates.
				table, err := svc.Load(cmd.Context())
				if err != nil {
					return err
				}
				if len(table.Rows) == 0 {
					fmt.Println("(no events)")
					return nil
				}
				view.RenderTable(cmd.OutOrStdout(), table)
				fmt.Println("\nRe-run with --id <ID> or --label \"<label>\".")
				for _, l := range table.Labels() {
					fmt.Printf("  %s\n", l)
				}
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&id, "id", 0, "Row id to delete (precise)")
	cmd.Flags().StringVar(&label, "label", "", "Row label to delete (removes all matches)")
	return cmd
}
