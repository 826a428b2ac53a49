package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/output"
)

var (
	infoDepsFlag  bool
	infoStatsFlag bool
)

var infoCmd = &cobra.Command{
	Use:   "info <crate>",
	Short: "Get detailed information about a crate",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVarP(&infoDepsFlag, "deps", "d", false, "include dependency information")
	infoCmd.Flags().BoolVarP(&infoStatsFlag, "stats", "s", false, "include download statistics")
}

func runInfo(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	crateName := args[0]
	ctx := cmd.Context()

	info, err := deps.client.GetCrateInfo(ctx, crateName)
	if err != nil {
		return err
	}

	if deps.format == output.FormatTable {
		table := output.NewTable("Name", "Version", "Downloads", "Description")
		desc := info.Description
		if desc == "" {
			desc = "N/A"
		}
		table.AddRow(info.Name, info.NewestVersion,
			output.FormatDownloadCount(info.Downloads), output.TruncateText(desc, 50))
		if err := table.Write(os.Stdout); err != nil {
			return err
		}

		if len(info.Keywords) > 0 {
			fmt.Printf("\nKeywords: %s\n", strings.Join(info.Keywords, ", "))
		}
		if len(info.Categories) > 0 {
			fmt.Printf("Categories: %s\n", strings.Join(info.Categories, ", "))
		}
		if info.Repository != "" {
			fmt.Printf("Repository: %s\n", info.Repository)
		}
		if info.Homepage != "" {
			fmt.Printf("Homepage: %s\n", info.Homepage)
		}
		return nil
	}

	payload := map[string]any{"crate": info}
	if infoDepsFlag {
		if dependencies, err := deps.client.GetDependencies(ctx, crateName, info.NewestVersion); err == nil {
			payload["dependencies"] = dependencies
		}
	}
	if infoStatsFlag {
		if stats, err := deps.client.GetDownloadStats(ctx, crateName); err == nil {
			payload["download_stats"] = stats
		}
	}
	if !infoDepsFlag && !infoStatsFlag {
		return deps.render(info)
	}
	return deps.render(payload)
}
