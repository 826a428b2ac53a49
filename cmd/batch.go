package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/checker"
	checkererrors "github.com/sandlbn/crate-checker/internal/errors"
	"github.com/sandlbn/crate-checker/internal/output"
)

var (
	batchJSONFlag          string
	batchFileFlag          string
	batchParallelFlag      bool
	batchMaxConcurrentFlag int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Check many crates in one request",
	Long: `Check many crates at once from a JSON batch input. Three input
shapes are accepted:

  Version map:    {"serde": "1.0.0", "tokio": "latest"}
  Crate list:     {"crates": ["serde", "tokio", "clap"]}
  Operation list: {"operations": [{"crate": "serde", "version": "1.0.0", "operation": "check_version"},
                                  {"crates": ["a", "b"], "operation": "check_multiple"}]}

The input comes from --json or --file (exactly one). Results keep the
input order even with --parallel.`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().StringVarP(&batchJSONFlag, "json", "j", "", "batch input as a JSON string")
	batchCmd.Flags().StringVar(&batchFileFlag, "file", "", "path to a JSON batch input file")
	batchCmd.Flags().BoolVarP(&batchParallelFlag, "parallel", "p", false, "check crates concurrently")
	batchCmd.Flags().IntVar(&batchMaxConcurrentFlag, "max-concurrent", 0,
		"maximum concurrent checks with --parallel (default from config)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}

	input, err := loadBatchInput()
	if err != nil {
		return err
	}

	service := newService(deps.cfg, deps.client, deps.logger)
	opts := checker.Options{
		Parallel:      batchParallelFlag,
		MaxConcurrent: batchMaxConcurrentFlag,
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = deps.cfg.CratesIO.MaxConcurrent
	}

	summary, err := service.ResolveBatch(cmd.Context(), input, opts)
	if err != nil {
		return err
	}

	if deps.format == output.FormatTable {
		return printBatchTable(summary)
	}
	return deps.render(summary)
}

// loadBatchInput reads the batch from --json or --file, requiring exactly
// one of the two.
func loadBatchInput() (*checker.BatchInput, error) {
	switch {
	case batchJSONFlag != "" && batchFileFlag != "":
		return nil, checkererrors.NewValidationError("batch_input_conflict",
			"--json and --file are mutually exclusive")
	case batchJSONFlag != "":
		return checker.ParseBatchInput([]byte(batchJSONFlag))
	case batchFileFlag != "":
		return checker.ParseBatchFile(batchFileFlag)
	default:
		return nil, checkererrors.NewValidationError("batch_input_missing",
			"either --json or --file is required")
	}
}

func printBatchTable(summary checker.BatchResult) error {
	table := output.NewTable("Crate", "Status", "Latest", "Requested", "Error")
	for _, r := range summary.Results {
		status := "MISSING"
		if r.Error != "" {
			status = "ERROR"
		} else if r.Exists {
			status = "EXISTS"
			if r.VersionExists != nil && !*r.VersionExists {
				status = "VERSION MISSING"
			}
		}
		requested := r.RequestedVersion
		if requested == "" {
			requested = "-"
		}
		latest := r.LatestVersion
		if latest == "" {
			latest = "-"
		}
		table.AddRow(r.CrateName, status, latest, requested,
			output.TruncateText(r.Error, 40))
	}
	if err := table.Write(os.Stdout); err != nil {
		return err
	}

	fmt.Printf("\nProcessed %d crate(s) in %dms: %d successful, %d failed\n",
		summary.TotalProcessed, summary.ProcessingTimeMS,
		summary.Successful, summary.Failed)
	return nil
}
