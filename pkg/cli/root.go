// Package cli implements the lake command-line client. Every command talks
// to a running server over HTTP; nothing here touches storage directly.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var host string

	rootCmd := &cobra.Command{
		Use:           "lake",
		Short:         "Personal data lake CLI",
		Long:          "Command-line interface for the personal data lake server.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			// Precedence: flag > env > default.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("LAKE_HOST"); v != "" {
					host = v
				}
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "server base URL")

	client := func() *Client { return NewClient(host) }
	rootCmd.AddCommand(
		newUploadCmd(client),
		newQueryCmd(client),
		newExportCmd(client),
		newDatasetsCmd(client),
		newReconcileCmd(client),
		newSearchCmd(client),
	)
	return rootCmd
}
