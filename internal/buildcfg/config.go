// Package buildcfg loads the project-local build configuration.
//
// Configuration is resolved from three layers, later layers winning:
// built-in defaults, the optional .ctbuild.yaml at the project root, and
// CTBUILD_* environment variables.
package buildcfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full build configuration.
type Config struct {
	Verbose  bool        `mapstructure:"verbose"`
	Package  string      `mapstructure:"package"`
	TaskFile string      `mapstructure:"task_file"`
	Docs     DocsConfig  `mapstructure:"docs"`
	Tests    TestsConfig `mapstructure:"tests"`
	Lint     LintConfig  `mapstructure:"lint"`
	Dist     DistConfig  `mapstructure:"dist"`
	Tools    ToolsConfig `mapstructure:"tools"`
	LLM      LLMConfig   `mapstructure:"llm"`
}

// DocsConfig controls the docs target.
type DocsConfig struct {
	Dir string `mapstructure:"dir"`
}

// TestsConfig controls the tests target and its coverage gate.
type TestsConfig struct {
	CoverageThreshold float64  `mapstructure:"coverage_threshold"`
	UseGotestsum      bool     `mapstructure:"use_gotestsum"`
	Args              []string `mapstructure:"args"`
}

// LintConfig controls the lint target.
type LintConfig struct {
	UseGolangci bool `mapstructure:"use_golangci"`
}

// DistConfig controls the dist target.
type DistConfig struct {
	Dir     string   `mapstructure:"dir"`
	Formats []string `mapstructure:"formats"`
}

// ToolsConfig controls where the deps target installs pinned tools.
type ToolsConfig struct {
	Dir string `mapstructure:"dir"`
}

// LLMConfig configures the optional tag-suggestion client.
type LLMConfig struct {
	Model   string `mapstructure:"model"`
	APIKey  string `mapstructure:"api_key"`
	APIBase string `mapstructure:"api_base"`
}

// Default configuration values.
const (
	DefaultConfigName        = ".ctbuild"
	EnvPrefix                = "CTBUILD"
	DefaultTaskFile          = "targets.star"
	DefaultDocsDir           = "docs"
	DefaultDistDir           = "dist"
	DefaultToolsDir          = ".tools"
	DefaultCoverageThreshold = 100.0
	DefaultModel             = "gpt-4o-mini"
)

// DefaultDistFormats lists the archive formats the dist target produces.
var DefaultDistFormats = []string{"gz", "xz"}

// InitConfig initializes the configuration. When cfgFile is empty the
// project root and the working directory are searched for .ctbuild.yaml;
// a missing file means defaults apply. When cfgFile names an explicit
// path, a missing file is created with the defaults.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if root, err := FindRoot("."); err == nil {
			viper.AddConfigPath(root)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(DefaultConfigName)
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("verbose", false)
	viper.SetDefault("package", "")
	viper.SetDefault("task_file", DefaultTaskFile)
	viper.SetDefault("docs.dir", DefaultDocsDir)
	viper.SetDefault("tests.coverage_threshold", DefaultCoverageThreshold)
	viper.SetDefault("tests.use_gotestsum", true)
	viper.SetDefault("tests.args", []string{})
	viper.SetDefault("lint.use_golangci", true)
	viper.SetDefault("dist.dir", DefaultDistDir)
	viper.SetDefault("dist.formats", DefaultDistFormats)
	viper.SetDefault("tools.dir", DefaultToolsDir)
	viper.SetDefault("llm.model", DefaultModel)
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.api_base", "")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		if cfgFile != "" && os.IsNotExist(err) {
			return writeDefaultConfig(cfgFile)
		}
		return fmt.Errorf("failed to read configuration file: %w", err)
	}

	return nil
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create configuration directory: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration.
func GetConfig() *Config {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return &Config{
			TaskFile: DefaultTaskFile,
			Docs:     DocsConfig{Dir: DefaultDocsDir},
			Tests:    TestsConfig{CoverageThreshold: DefaultCoverageThreshold, UseGotestsum: true},
			Lint:     LintConfig{UseGolangci: true},
			Dist:     DistConfig{Dir: DefaultDistDir, Formats: DefaultDistFormats},
			Tools:    ToolsConfig{Dir: DefaultToolsDir},
			LLM:      LLMConfig{Model: DefaultModel},
		}
	}
	return cfg
}

// SetConfigValue sets a configuration value in the active session.
func SetConfigValue(key string, value any) {
	viper.Set(key, value)
}

// SaveConfig persists the current configuration to the loaded file, or
// to fallback when no configuration file has been read yet.
func SaveConfig(fallback string) error {
	if viper.ConfigFileUsed() == "" {
		return viper.WriteConfigAs(fallback)
	}
	return viper.WriteConfig()
}
