package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/output"
)

var checkVersionFlag string

var checkCmd = &cobra.Command{
	Use:   "check <crate>",
	Short: "Check if a crate exists",
	Long: `Check if a crate exists on crates.io, optionally at a specific
version. Exits with code 1 when the crate (or version) is missing.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkVersionFlag, "version", "v", "", "specific version to check")
}

func runCheck(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	crateName := args[0]
	ctx := cmd.Context()

	if checkVersionFlag != "" {
		versions, err := deps.client.ListVersions(ctx, crateName)
		if err != nil {
			return err
		}
		exists := false
		for _, v := range versions {
			if v.Num == checkVersionFlag {
				exists = true
				break
			}
		}
		if err := deps.render(map[string]any{
			"crate":   crateName,
			"version": checkVersionFlag,
			"exists":  exists,
		}); err != nil {
			return err
		}
		if !exists {
			return errSilentExit
		}
		return nil
	}

	exists, err := deps.client.CrateExists(ctx, crateName)
	if err != nil {
		return err
	}
	if err := deps.render(map[string]any{
		"crate":  crateName,
		"exists": exists,
	}); err != nil {
		return err
	}
	if !exists {
		return errSilentExit
	}
	return nil
}

var (
	summaryOnlyFlag   bool
	failOnMissingFlag bool
)

var checkMultipleCmd = &cobra.Command{
	Use:   "check-multiple <crate>...",
	Short: "Check multiple crates at once with merged output",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheckMultiple,
}

func init() {
	rootCmd.AddCommand(checkMultipleCmd)
	checkMultipleCmd.Flags().BoolVarP(&summaryOnlyFlag, "summary-only", "s", false,
		"show only the summary, not individual results")
	checkMultipleCmd.Flags().BoolVar(&failOnMissingFlag, "fail-on-missing", false,
		"exit with code 1 if any crate is missing")
}

type multiCheckRow struct {
	Crate   string `json:"crate"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

type multiCheckSummary struct {
	TotalChecked   int      `json:"total_checked"`
	Existing       int      `json:"existing"`
	Missing        int      `json:"missing"`
	ExistingCrates []string `json:"existing_crates"`
	MissingCrates  []string `json:"missing_crates"`
}

func runCheckMultiple(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	service := newService(deps.cfg, deps.client, deps.logger)
	ctx := cmd.Context()

	rows := make([]multiCheckRow, 0, len(args))
	summary := multiCheckSummary{TotalChecked: len(args)}

	for _, crateName := range args {
		result := service.ResolveOne(ctx, crateName, "")
		row := multiCheckRow{Crate: crateName, Version: "N/A"}
		switch {
		case result.Error != "":
			row.Status = "ERROR"
			summary.Missing++
			summary.MissingCrates = append(summary.MissingCrates, crateName)
		case result.Exists:
			row.Status = "EXISTS"
			if result.LatestVersion != "" {
				row.Version = result.LatestVersion
			} else {
				row.Version = "unknown"
			}
			summary.Existing++
			summary.ExistingCrates = append(summary.ExistingCrates, crateName)
		default:
			row.Status = "MISSING"
			summary.Missing++
			summary.MissingCrates = append(summary.MissingCrates, crateName)
		}
		rows = append(rows, row)
	}

	if deps.format == output.FormatTable {
		if !summaryOnlyFlag {
			table := output.NewTable("Crate", "Status", "Latest Version")
			for _, row := range rows {
				table.AddRow(row.Crate, row.Status, row.Version)
			}
			if err := table.Write(os.Stdout); err != nil {
				return err
			}
			fmt.Println()
		}
		printMultiCheckSummary(summary)
	} else {
		var payload any = summary
		if !summaryOnlyFlag {
			payload = map[string]any{"results": rows, "summary": summary}
		}
		if err := deps.render(payload); err != nil {
			return err
		}
	}

	if failOnMissingFlag && summary.Missing > 0 {
		return errSilentExit
	}
	return nil
}

func printMultiCheckSummary(summary multiCheckSummary) {
	fmt.Println("=== SUMMARY ===")
	fmt.Printf("Total checked: %d\n", summary.TotalChecked)
	pct := func(n int) float64 {
		if summary.TotalChecked == 0 {
			return 0
		}
		return float64(n) / float64(summary.TotalChecked) * 100
	}
	fmt.Printf("Existing: %d (%.0f%%)\n", summary.Existing, pct(summary.Existing))
	fmt.Printf("Missing: %d (%.0f%%)\n", summary.Missing, pct(summary.Missing))

	if len(summary.ExistingCrates) > 0 {
		fmt.Println("\nExisting crates:")
		for _, name := range summary.ExistingCrates {
			fmt.Printf("  + %s\n", name)
		}
	}
	if len(summary.MissingCrates) > 0 {
		fmt.Println("\nMissing crates:")
		for _, name := range summary.MissingCrates {
			fmt.Printf("  - %s\n", name)
		}
	}
}
