package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// VersionOptions holds options for the version command.
type VersionOptions struct {
	Short bool
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display Helios version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			if opts.Short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), version)
				return
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Helios v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  commit: %s\n", commit)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  built:  %s\n", date)
		},
	}

	cmd.Flags().BoolVar(&opts.Short, "short", false, "Print only the version number")

	return cmd
}
