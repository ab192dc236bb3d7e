package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tillahoffmann/collectiontools/internal/target"
	"github.com/tillahoffmann/collectiontools/internal/ui"
)

// coverProfileName is where the tests target writes its coverage
// profile, relative to the project root. coverReportName is the
// conventional location of an HTML rendering of that profile.
const (
	coverProfileName = "coverage.out"
	coverReportName  = "coverage.html"
)

// builtinTargets assembles the built-in pipeline targets. Extra targets
// come from the targets file and may depend on these but not shadow
// them.
func builtinTargets(app *appEnv) target.List {
	return target.List{
		"docs": {
			Name:   "docs",
			Desc:   "Generate the API reference and CLI documentation",
			Action: app.runDocs,
		},
		"doctests": {
			Name:   "doctests",
			Desc:   "Run the testable examples embedded in the documentation",
			Action: app.runDoctests,
		},
		"lint": {
			Name:   "lint",
			Desc:   "Check formatting and run the configured linters",
			Action: app.runLint,
		},
		"fmt": {
			Name:   "fmt",
			Desc:   "Rewrite source files to the canonical formatting",
			Action: app.runFmt,
		},
		"typecheck": {
			Name:   "typecheck",
			Desc:   "Type check the module with go vet",
			Action: app.runTypecheck,
		},
		"tests": {
			Name:   "tests",
			Desc:   "Run the test suite and enforce the coverage gate",
			Action: app.runTests,
		},
		"dist": {
			Name:   "dist",
			Desc:   "Build and validate the distribution archives",
			Action: app.runDist,
		},
		"deps": {
			Name:   "deps",
			Desc:   "Install the pinned developer tools and verify the module cache",
			Action: app.runDeps,
		},
		"clean": {
			Name:   "clean",
			Desc:   "Remove generated documentation, archives, and coverage data",
			Action: app.runClean,
		},
		"all": {
			Name: "all",
			Desc: "Run the full pipeline",
			Deps: []string{"lint", "typecheck", "tests", "doctests", "docs", "dist"},
		},
	}
}

// loadTargets merges the targets file, when present, into the built-in
// set.
func (a *appEnv) loadTargets(ctx context.Context, options map[string]string) (target.List, error) {
	targets := builtinTargets(a)

	taskFile := a.path(a.cfg.TaskFile)
	if _, err := os.Stat(taskFile); err != nil {
		if os.IsNotExist(err) {
			return targets, nil
		}
		return nil, err
	}

	ctx = target.WithLogger(ctx, &a.logger)
	fileTargets, _, err := target.RunScript(ctx, taskFile, a.root, options, true)
	if err != nil {
		return nil, err
	}

	mergeDotenv(fileTargets, a.dotenv)
	if err := fileTargets.MergeInto(targets); err != nil {
		return nil, err
	}
	return targets, nil
}

// mergeDotenv layers the .env entries below each target's own
// environment so the targets file can still override them. Inline
// target references are followed so anonymous targets are covered too.
func mergeDotenv(targets target.List, dotenv []string) {
	for _, t := range targets {
		applyDotenv(t, dotenv)
	}
}

func applyDotenv(t *target.Target, dotenv []string) {
	for _, pair := range dotenv {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if t.Env == nil {
			t.Env = make(map[string]string)
		}
		if _, exists := t.Env[key]; !exists {
			t.Env[key] = value
		}
	}

	for _, cmd := range t.Cmds {
		if ref, ok := cmd.(target.CmdTargetRef); ok {
			applyDotenv(ref.Target, dotenv)
		}
	}
}

// runTargets resolves the requested targets and runs them in order.
func runTargets(ctx context.Context, names []string, options map[string]string, dryRun, force bool) error {
	app, err := newAppEnv()
	if err != nil {
		return err
	}

	ctx = target.WithLogger(ctx, &app.logger)
	targets, err := app.loadTargets(ctx, options)
	if err != nil {
		return err
	}

	for _, name := range names {
		ui.PrintTarget(name)
		if err := target.Run(ctx, app.root, name, targets, dryRun, force); err != nil {
			ui.PrintFailure(fmt.Sprintf("Target %s failed", name))
			return err
		}
	}
	return nil
}

// runBuiltin is the RunE body shared by the pipeline subcommands.
func runBuiltin(name string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		return runTargets(cmd.Context(), []string{name}, nil, false, false)
	}
}
