package cli

import (
	"github.com/spf13/cobra"
)

// The pipeline subcommands all resolve to built-in targets and share the
// same runner, so dependencies declared between targets apply no matter
// how a target is invoked.
var (
	docsCmd = &cobra.Command{
		Use:   "docs",
		Short: "Generate the API reference and CLI documentation",
		Long: `Generate the markdown API reference, the plain go doc rendering, and
the CLI reference (markdown and man pages) into the documentation
directory. The directory is recreated from scratch on every run.`,
		Args: cobra.NoArgs,
		RunE: runBuiltin("docs"),
	}

	doctestsCmd = &cobra.Command{
		Use:   "doctests",
		Short: "Run the testable examples embedded in the documentation",
		Args:  cobra.NoArgs,
		RunE:  runBuiltin("doctests"),
	}

	lintCmd = &cobra.Command{
		Use:   "lint",
		Short: "Check formatting and run the configured linters",
		Long: `Check that every file matches the canonical formatting and run
golangci-lint when it is installed. Formatting problems list the
offending files; run ctbuild fmt to fix them.`,
		Args: cobra.NoArgs,
		RunE: runBuiltin("lint"),
	}

	fmtCmd = &cobra.Command{
		Use:   "fmt",
		Short: "Rewrite source files to the canonical formatting",
		Args:  cobra.NoArgs,
		RunE:  runBuiltin("fmt"),
	}

	typecheckCmd = &cobra.Command{
		Use:   "typecheck",
		Short: "Type check the module with go vet",
		Args:  cobra.NoArgs,
		RunE:  runBuiltin("typecheck"),
	}

	testsCmd = &cobra.Command{
		Use:   "tests",
		Short: "Run the test suite and enforce the coverage gate",
		Long: `Run the full test suite with coverage collection and fail when the
statement coverage drops below the configured threshold. The least
covered files are listed when the gate fails.`,
		Args: cobra.NoArgs,
		RunE: runBuiltin("tests"),
	}

	distCmd = &cobra.Command{
		Use:   "dist",
		Short: "Build and validate the distribution archives",
		Long: `Compile the module, pack the sources into versioned archives together
with a checksum file and a manifest, and validate the result. The
version comes from the latest git tag.`,
		Args: cobra.NoArgs,
		RunE: runBuiltin("dist"),
	}

	depsCmd = &cobra.Command{
		Use:   "deps",
		Short: "Install the pinned developer tools and verify the module cache",
		Args:  cobra.NoArgs,
		RunE:  runBuiltin("deps"),
	}

	cleanCmd = &cobra.Command{
		Use:   "clean",
		Short: "Remove generated documentation, archives, and coverage data",
		Args:  cobra.NoArgs,
		RunE:  runBuiltin("clean"),
	}

	allCmd = &cobra.Command{
		Use:   "all",
		Short: "Run the full pipeline",
		Long:  `Run lint, typecheck, tests, doctests, docs, and dist in order.`,
		Args:  cobra.NoArgs,
		RunE:  runBuiltin("all"),
	}
)

func init() {
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(doctestsCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(typecheckCmd)
	rootCmd.AddCommand(testsCmd)
	rootCmd.AddCommand(distCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(allCmd)
}
