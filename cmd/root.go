// Package cmd defines and implements the CLI commands for the clipcrawl
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clipcrawl",
		Short: "A concurrent page-clipping web crawler.",
		Long: `clipcrawl fetches a list of web pages, extracts a title/body/image
triple from each using per-host selector rules with generic fallbacks, and
persists the results as flat text and image artifacts alongside per-day
success/failure logs.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the config file")
	cmd.AddCommand(newCrawlCmd())
	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
