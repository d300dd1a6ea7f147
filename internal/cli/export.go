package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	icsexport "schedcal/internal/ics"
)

// ExportCmd returns the export command
func ExportCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schedule as an iCalendar feed",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := setup()
			if err != nil {
				return err
			}

			table, err := svc.Load(cmd.Context())
			if err != nil {
				return err
			}

			payload := icsexport.Export(table)
			if out == "" {
				fmt.Print(payload)
				return nil
			}
			if err := os.WriteFile(out, []byte(payload), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Printf("Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}
