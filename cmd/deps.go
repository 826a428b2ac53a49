package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/checker"
	"github.com/sandlbn/crate-checker/internal/output"
)

var (
	depsVersionFlag     string
	depsRuntimeOnlyFlag bool
)

var depsCmd = &cobra.Command{
	Use:   "deps <crate>",
	Short: "List the dependencies of a crate version",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().StringVarP(&depsVersionFlag, "version", "v", checker.LatestSentinel, "crate version to inspect")
	depsCmd.Flags().BoolVar(&depsRuntimeOnlyFlag, "runtime-only", false, "show only normal (runtime) dependencies")
}

func runDeps(cmd *cobra.Command, args []string) error {
	deps, err := setup()
	if err != nil {
		return err
	}
	name := args[0]

	version := depsVersionFlag
	if version == checker.LatestSentinel {
		version, err = deps.client.GetLatestVersion(cmd.Context(), name)
		if err != nil {
			return err
		}
	}

	list, err := deps.client.GetDependencies(cmd.Context(), name, version)
	if err != nil {
		return err
	}

	if depsRuntimeOnlyFlag {
		kept := list[:0]
		for _, d := range list {
			if d.Kind == "normal" {
				kept = append(kept, d)
			}
		}
		list = kept
	}

	if deps.format == output.FormatTable {
		table := output.NewTable("Name", "Requirement", "Kind", "Optional")
		for _, d := range list {
			table.AddRow(d.Name, d.Req, d.Kind, yesNo(d.Optional))
		}
		return table.Write(os.Stdout)
	}
	return deps.render(map[string]any{
		"crate":        name,
		"version":      version,
		"dependencies": list,
	})
}
