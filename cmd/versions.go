package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/output"
)

var (
	noYankedFlag      bool
	versionsLimitFlag int
)

var versionsCmd = &cobra.Command{
	Use:   "versions <crate>",
	Short: "List all versions of a crate",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().BoolVar(&noYankedFlag, "no-yanked", false, "show only non-yanked versions")
	versionsCmd.Flags().IntVarP(&versionsLimitFlag, "limit", "l", 0, "limit number of versions shown")
}

func runVersions(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}

	versions, err := deps.client.ListVersions(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if noYankedFlag {
		kept := versions[:0]
		for _, v := range versions {
			if !v.Yanked {
				kept = append(kept, v)
			}
		}
		versions = kept
	}
	if versionsLimitFlag > 0 && len(versions) > versionsLimitFlag {
		versions = versions[:versionsLimitFlag]
	}

	if deps.format == output.FormatTable {
		table := output.NewTable("Version", "Downloads", "Published", "Yanked")
		for _, v := range versions {
			table.AddRow(v.Num, output.FormatDownloadCount(v.Downloads),
				v.CreatedAt.Format("2006-01-02"), yesNo(v.Yanked))
		}
		return table.Write(os.Stdout)
	}
	return deps.render(versions)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
