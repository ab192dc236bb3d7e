package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	runDryRun  bool
	runForce   bool
	runOptions []string

	runCmd = &cobra.Command{
		Use:   "run TARGET...",
		Short: "Run targets declared in the targets file",
		Long: `Run one or more targets by name, including targets declared in the
targets file at the project root. Dependencies run first, and targets
whose outputs are newer than their inputs are skipped.

Examples:
  ctbuild run docs tests     # Run two built-in targets in order
  ctbuild run release -o channel=beta
  ctbuild run dist --dry-run # Show what would run without running it`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options, err := parseOptions(runOptions)
			if err != nil {
				return err
			}
			return runTargets(cmd.Context(), args, options, runDryRun, runForce)
		},
	}
)

func init() {
	runCmd.Flags().BoolVarP(&runDryRun, "dry-run", "n", false, "Print the commands without running them")
	runCmd.Flags().BoolVarP(&runForce, "force", "f", false, "Run even when the outputs are up to date")
	runCmd.Flags().StringArrayVarP(&runOptions, "option", "o", nil, "Set a targets file option as name=value")
	rootCmd.AddCommand(runCmd)
}

func parseOptions(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	options := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid option %q, expected name=value", pair)
		}
		options[name] = value
	}
	return options, nil
}
