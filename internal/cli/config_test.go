package cli

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillahoffmann/collectiontools/internal/buildcfg"
)

func TestConfigCommandStructure(t *testing.T) {
	assert.NotNil(t, configCmd)
	assert.Equal(t, "config", configCmd.Use)
	assert.Equal(t, "Manage ctbuild configuration", configCmd.Short)

	assert.NotNil(t, configSetCmd)
	assert.Equal(t, "set KEY VALUE", configSetCmd.Use)

	assert.NotNil(t, configGetCmd)
	assert.Equal(t, "get [KEY]", configGetCmd.Use)
}

func TestConfigValuesCoversAllKeys(t *testing.T) {
	values := configValues(&buildcfg.Config{})
	for _, key := range configKeys {
		assert.Contains(t, values, key)
	}
}

func TestConfigValuesMasksAPIKey(t *testing.T) {
	values := configValues(&buildcfg.Config{
		LLM: buildcfg.LLMConfig{APIKey: "sk-secret"},
	})
	assert.Equal(t, "********", values["llm.api_key"])

	values = configValues(&buildcfg.Config{})
	assert.Equal(t, "<not set>", values["llm.api_key"])
	assert.Equal(t, "<not set>", values["llm.api_base"])
}

func TestRunConfigSetUnknownKey(t *testing.T) {
	originalConfigErr := configErr
	defer func() { configErr = originalConfigErr }()
	configErr = nil

	err := runConfigSet("bogus.key", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown configuration key "bogus.key"`)
}

func TestRunConfigGetUnknownKey(t *testing.T) {
	originalConfigErr := configErr
	defer func() { configErr = originalConfigErr }()
	configErr = nil
	viper.Reset()

	err := runConfigGet("bogus.key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown configuration key "bogus.key"`)
}
