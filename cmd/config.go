package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sandlbn/crate-checker/internal/config"
)

var configOutputFlag string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate a sample configuration file",
	Long: `Print a commented sample configuration with the built-in
defaults. Use --output to write it to a file instead of stdout:

  crate-checker config --output .crate-checker.yml`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().StringVarP(&configOutputFlag, "output", "o", "", "write the sample config to a file")
}

func runConfig(cmd *cobra.Command, args []string) error {
	sample := config.SampleYAML()

	if configOutputFlag == "" {
		fmt.Print(sample)
		return nil
	}

	if _, err := os.Stat(configOutputFlag); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", configOutputFlag)
	}
	if err := os.WriteFile(configOutputFlag, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	fmt.Println("Wrote sample config to", configOutputFlag)
	return nil
}
