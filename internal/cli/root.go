// Package cli wires the ctbuild commands together. Each built-in target
// is exposed as its own subcommand, and targets declared in the targets
// file run through the run subcommand.
package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tillahoffmann/collectiontools/internal/buildcfg"
	"github.com/tillahoffmann/collectiontools/internal/gotool"
	"github.com/tillahoffmann/collectiontools/internal/toolcmd"
	"github.com/tillahoffmann/collectiontools/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	configErr error

	rootCmd = &cobra.Command{
		Use:   "ctbuild",
		Short: "ctbuild - build pipeline for the collectiontools module",
		Long: `ctbuild runs the build pipeline for collectiontools: API documentation,
doctests, formatting and lint checks, type checking, tests with a
coverage gate, and distribution archives. Extra targets can be declared
in a targets.star file at the project root.`,
		Version:       fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"Configuration file path (default is .ctbuild.yaml at the project root)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "V", false,
		"Show the commands run by each target")
}

func initConfig() {
	configErr = buildcfg.InitConfig(cfgFile)
}

// appEnv bundles what every target needs: the resolved project root, the
// configuration, a logger, and the toolchain wrapper.
type appEnv struct {
	cfg    *buildcfg.Config
	root   string
	logger zerolog.Logger
	tools  *gotool.Tools
	dotenv []string
}

func newAppEnv() (*appEnv, error) {
	if configErr != nil {
		return nil, fmt.Errorf("configuration error: %w", configErr)
	}

	root, err := buildcfg.FindRoot(".")
	if err != nil {
		return nil, err
	}

	cfg := buildcfg.GetConfig()
	if cfg.Verbose {
		verbose = true
	}

	dotenv, err := buildcfg.LoadDotEnv(root)
	if err != nil {
		return nil, err
	}

	runner := toolcmd.Runner{Verbose: verbose, Dir: root, Env: dotenv}
	return &appEnv{
		cfg:    cfg,
		root:   root,
		logger: ui.NewLogger(verbose),
		tools:  gotool.New(runner, resolvePath(root, cfg.Tools.Dir)),
		dotenv: dotenv,
	}, nil
}

// path resolves a configured file or directory against the project root.
func (a *appEnv) path(rel string) string {
	return resolvePath(a.root, rel)
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
