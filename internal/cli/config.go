package cli

import (
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tillahoffmann/collectiontools/internal/buildcfg"
)

// configKeys lists the keys that config set accepts. List-valued
// settings such as dist.formats can only be edited in the file itself.
var configKeys = []string{
	"package",
	"task_file",
	"docs.dir",
	"tests.coverage_threshold",
	"tests.use_gotestsum",
	"lint.use_golangci",
	"dist.dir",
	"tools.dir",
	"llm.model",
	"llm.api_key",
	"llm.api_base",
}

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage ctbuild configuration",
		Long:  `Manage ctbuild configuration, including the LLM model and API credentials used by the tag command.`,
	}

	configSetCmd = &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			return runConfigSet(args[0], args[1])
		},
	}

	configGetCmd = &cobra.Command{
		Use:   "get [KEY]",
		Short: "Show the current configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runConfigGet(key)
		},
	}
)

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(key, value string) error {
	if configErr != nil {
		return fmt.Errorf("configuration error: %w", configErr)
	}
	if !slices.Contains(configKeys, key) {
		return fmt.Errorf("unknown configuration key %q, valid keys are: %s", key, strings.Join(configKeys, ", "))
	}

	buildcfg.SetConfigValue(key, value)

	root, err := buildcfg.FindRoot(".")
	if err != nil {
		return err
	}
	fallback := filepath.Join(root, buildcfg.DefaultConfigName+".yaml")
	if err := buildcfg.SaveConfig(fallback); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(outWriter(), "Set %s\n", key)
	return nil
}

func runConfigGet(key string) error {
	if configErr != nil {
		return fmt.Errorf("configuration error: %w", configErr)
	}

	values := configValues(buildcfg.GetConfig())
	if key != "" {
		value, ok := values[key]
		if !ok {
			return fmt.Errorf("unknown configuration key %q, valid keys are: %s", key, strings.Join(configKeys, ", "))
		}
		fmt.Fprintln(outWriter(), value)
		return nil
	}

	for _, k := range configKeys {
		fmt.Fprintf(outWriter(), "%s: %s\n", k, values[k])
	}
	return nil
}

// configValues renders the settable configuration as strings, masking
// the API key.
func configValues(cfg *buildcfg.Config) map[string]string {
	apiKey := "<not set>"
	if cfg.LLM.APIKey != "" {
		apiKey = "********"
	}
	apiBase := cfg.LLM.APIBase
	if apiBase == "" {
		apiBase = "<not set>"
	}

	return map[string]string{
		"package":                  cfg.Package,
		"task_file":                cfg.TaskFile,
		"docs.dir":                 cfg.Docs.Dir,
		"tests.coverage_threshold": strconv.FormatFloat(cfg.Tests.CoverageThreshold, 'f', -1, 64),
		"tests.use_gotestsum":      strconv.FormatBool(cfg.Tests.UseGotestsum),
		"lint.use_golangci":        strconv.FormatBool(cfg.Lint.UseGolangci),
		"dist.dir":                 cfg.Dist.Dir,
		"tools.dir":                cfg.Tools.Dir,
		"llm.model":                cfg.LLM.Model,
		"llm.api_key":              apiKey,
		"llm.api_base":             apiBase,
	}
}
