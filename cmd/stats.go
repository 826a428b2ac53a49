package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/output"
)

var statsVersionsFlag bool

var statsCmd = &cobra.Command{
	Use:   "stats <crate>",
	Short: "Show download statistics for a crate",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVarP(&statsVersionsFlag, "versions", "v", false, "include per-version download counts")
}

func runStats(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	name := args[0]

	stats, err := deps.client.GetDownloadStats(cmd.Context(), name)
	if err != nil {
		return err
	}

	if deps.format == output.FormatTable {
		fmt.Printf("Crate: %s\n", name)
		fmt.Printf("Total downloads: %s\n", output.FormatDownloadCount(stats.Total))
		if statsVersionsFlag && len(stats.Versions) > 0 {
			fmt.Println()
			table := output.NewTable("Version", "Downloads")
			for _, v := range stats.Versions {
				table.AddRow(v.Version, output.FormatDownloadCount(v.Downloads))
			}
			return table.Write(os.Stdout)
		}
		return nil
	}

	if !statsVersionsFlag {
		stats.Versions = nil
	}
	return deps.render(map[string]any{
		"crate": name,
		"stats": stats,
	})
}
