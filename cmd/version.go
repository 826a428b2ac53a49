package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/output"
	"github.com/sandlbn/crate-checker/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := outputFormat()
		if err != nil {
			return err
		}
		if format == output.FormatTable {
			fmt.Printf("crate-checker %s (commit %s, %s)\n",
				version.Version, version.Commit, runtime.Version())
			return nil
		}
		return output.Render(cmd.OutOrStdout(), map[string]string{
			"version": version.Version,
			"commit":  version.Commit,
			"go":      runtime.Version(),
		}, format)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
