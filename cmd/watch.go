package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/checker"
	"github.com/sandlbn/crate-checker/internal/output"
	"github.com/sandlbn/crate-checker/internal/watcher"
)

var (
	watchParallelFlag bool
	watchDebounceFlag time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch <batch-file>",
	Short: "Re-run a batch check whenever the input file changes",
	Long: `Watch a JSON batch file and re-run the checks each time it is
saved. The file uses the same shapes as the batch command. Interrupt
with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().BoolVarP(&watchParallelFlag, "parallel", "p", false, "check crates concurrently")
	watchCmd.Flags().DurationVar(&watchDebounceFlag, "debounce", 300*time.Millisecond,
		"delay before re-running after a change")
}

func runWatch(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	path := args[0]

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	service := newService(deps.cfg, deps.client, deps.logger)
	opts := checker.Options{
		Parallel:      watchParallelFlag,
		MaxConcurrent: deps.cfg.CratesIO.MaxConcurrent,
	}

	run := func() {
		input, err := checker.ParseBatchFile(path)
		if err != nil {
			deps.logger.Error("batch input unreadable", "path", path, "error", err)
			return
		}
		summary, err := service.ResolveBatch(ctx, input, opts)
		if err != nil {
			deps.logger.Error("batch run failed", "path", path, "error", err)
			return
		}
		if deps.format == output.FormatTable {
			fmt.Printf("--- %s ---\n", time.Now().Format(time.TimeOnly))
			if err := printBatchTable(summary); err != nil {
				deps.logger.Error("render failed", "error", err)
			}
		} else if err := deps.render(summary); err != nil {
			deps.logger.Error("render failed", "error", err)
		}
	}

	fw, err := watcher.New(path, watchDebounceFlag)
	if err != nil {
		return err
	}
	defer fw.Close()
	fw.OnChange(func(string) { run() })

	deps.logger.Info("watching batch file", "path", path)
	run()

	if err := fw.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
