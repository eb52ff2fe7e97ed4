package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	environmentKeySeparatorOldConstant          = "."
	environmentKeySeparatorNewConstant          = "_"
	listValueSeparatorConstant                  = ","
	configurationReadErrorTemplateConstant      = "failed to read configuration %s: %w"
	configurationUnmarshalErrorTemplateConstant = "failed to parse configuration: %w"
	configurationMissingErrorTemplateConstant   = "configuration file %s: %w"
)

// ConfigurationLoader wraps Viper to load one configuration file layer together
// with defaults and, when an environment prefix is set, environment overrides.
type ConfigurationLoader struct {
	configurationType      string
	environmentPrefix      string
	environmentKeyReplacer *strings.Replacer
}

// LoadedConfiguration surfaces metadata about the resolved configuration.
type LoadedConfiguration struct {
	ConfigFileUsed string
}

// NewConfigurationLoader creates a loader for files of configurationType. An
// empty environmentPrefix disables environment overrides.
func NewConfigurationLoader(configurationType string, environmentPrefix string) *ConfigurationLoader {
	return &ConfigurationLoader{
		configurationType:      strings.TrimSpace(configurationType),
		environmentPrefix:      strings.TrimSpace(environmentPrefix),
		environmentKeyReplacer: strings.NewReplacer(environmentKeySeparatorOldConstant, environmentKeySeparatorNewConstant),
	}
}

// FileExists reports whether a regular configuration file exists at path.
func FileExists(path string) bool {
	if len(strings.TrimSpace(path)) == 0 {
		return false
	}
	fileInfo, statError := os.Stat(path)
	return statError == nil && fileInfo.Mode().IsRegular()
}

// LoadConfiguration populates targetConfiguration from defaults, the file at
// configurationFilePath when non-empty, and environment variables. A named
// file that does not exist is an error wrapping fs.ErrNotExist.
func (loader *ConfigurationLoader) LoadConfiguration(configurationFilePath string, defaultValues map[string]any, targetConfiguration any) (LoadedConfiguration, error) {
	viperInstance := viper.New()
	viperInstance.SetConfigType(loader.configurationType)

	if len(loader.environmentPrefix) > 0 {
		viperInstance.SetEnvPrefix(loader.environmentPrefix)
		viperInstance.SetEnvKeyReplacer(loader.environmentKeyReplacer)
		viperInstance.AutomaticEnv()
	}

	for defaultKey, defaultValue := range defaultValues {
		viperInstance.SetDefault(defaultKey, defaultValue)
	}

	loadedConfiguration := LoadedConfiguration{}
	if len(configurationFilePath) > 0 {
		if !FileExists(configurationFilePath) {
			return LoadedConfiguration{}, fmt.Errorf(configurationMissingErrorTemplateConstant, configurationFilePath, fs.ErrNotExist)
		}
		viperInstance.SetConfigFile(configurationFilePath)
		if readError := viperInstance.ReadInConfig(); readError != nil {
			var notFoundError viper.ConfigFileNotFoundError
			if errors.As(readError, &notFoundError) {
				return LoadedConfiguration{}, fmt.Errorf(configurationMissingErrorTemplateConstant, configurationFilePath, fs.ErrNotExist)
			}
			return LoadedConfiguration{}, fmt.Errorf(configurationReadErrorTemplateConstant, configurationFilePath, readError)
		}
		loadedConfiguration.ConfigFileUsed = viperInstance.ConfigFileUsed()
	}

	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToSliceHookFunc(listValueSeparatorConstant),
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if unmarshalError := viperInstance.Unmarshal(targetConfiguration, decodeHook); unmarshalError != nil {
		return LoadedConfiguration{}, fmt.Errorf(configurationUnmarshalErrorTemplateConstant, unmarshalError)
	}

	return loadedConfiguration, nil
}
