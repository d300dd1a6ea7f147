package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"schedcal/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "schedcal",
		Short: "schedcal - personal schedule stored as a CSV in a GitHub repo",
		Long: `schedcal keeps a personal schedule in a CSV file versioned by the GitHub
contents API. Every mutation refetches the latest remote copy before
merging and writing back with the freshest content sha.`,
	}

	rootCmd.PersistentFlags().StringVar(cli.ConfigPathFlag(), "config", "", "Path to config file (default ~/.config/schedcal/config.yaml)")

	rootCmd.AddCommand(cli.ShowCmd())
	rootCmd.AddCommand(cli.CalendarCmd())
	rootCmd.AddCommand(cli.AddCmd())
	rootCmd.AddCommand(cli.SayCmd())
	rootCmd.AddCommand(cli.DeleteCmd())
	rootCmd.AddCommand(cli.ExportCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
