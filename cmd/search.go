package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/output"
)

var (
	searchLimitFlag int
	searchExactFlag bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search for crates by name or keywords",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "l", 10, "maximum number of results")
	searchCmd.Flags().BoolVarP(&searchExactFlag, "exact", "e", false, "show only exact matches")
}

func runSearch(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}

	results, err := deps.client.SearchCrates(cmd.Context(), args[0], searchLimitFlag)
	if err != nil {
		return err
	}

	if searchExactFlag {
		kept := results[:0]
		for _, r := range results {
			if r.ExactMatch {
				kept = append(kept, r)
			}
		}
		results = kept
	}

	if deps.format == output.FormatTable {
		table := output.NewTable("Name", "Version", "Downloads", "Description")
		for _, r := range results {
			desc := r.Description
			if desc == "" {
				desc = "N/A"
			}
			table.AddRow(r.Name, r.NewestVersion,
				output.FormatDownloadCount(r.Downloads), output.TruncateText(desc, 50))
		}
		return table.Write(os.Stdout)
	}
	return deps.render(results)
}
