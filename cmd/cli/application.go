package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/archive"
	"github.com/temirov/release-scholar/internal/audit"
	"github.com/temirov/release-scholar/internal/deposit"
	"github.com/temirov/release-scholar/internal/mirror"
	"github.com/temirov/release-scholar/internal/scaffold"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/utils"
	"github.com/temirov/release-scholar/internal/utils/flags"
	pathutils "github.com/temirov/release-scholar/internal/utils/path"
)

const (
	applicationNameConstant                 = "release-scholar"
	applicationShortDescriptionConstant     = "Validate, audit, and package scholarly software releases"
	applicationLongDescriptionConstant      = "release-scholar checks that a tagged project is ready for a citable release, builds a reproducible archive bundle with metadata, deposits it on Zenodo, and configures forge mirrors."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Path to the project configuration file (defaults to <project-dir>/.release-scholar.toml)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format."
	projectDirectoryFlagNameConstant        = "project-dir"
	projectDirectoryFlagUsageConstant       = "Path to the project directory."
	defaultProjectDirectoryConstant         = "."
	developmentVersionConstant              = "dev"
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationGlobalFileFieldConstant    = "global_config_file"
	configurationProjectFileFieldConstant   = "project_config_file"
	projectDirectoryFieldConstant           = "project_dir"
	projectDirectoryErrorTemplateConstant   = "unable to resolve project directory: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
)

// Application wires the Cobra root command, layered settings, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	settingsLoader         *settings.Loader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          settings.Settings
	configurationSources   settings.Sources
	configurationFilePath  string
	projectDirectory       string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	homeExpander           *pathutils.HomeExpander
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	return newApplication(settings.NewLoader())
}

func newApplication(settingsLoader *settings.Loader) *Application {
	application := &Application{
		settingsLoader:         settingsLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		configuration:          settings.Defaults(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		homeExpander:           pathutils.NewHomeExpander(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationNameConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Version:       resolveVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
	}

	cobraCommand.SetContext(context.Background())
	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	flags.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logLevelFlagValue, logLevelFlagNameConstant, "",
		[]string{string(utils.LogLevelInfo), string(utils.LogLevelDebug), string(utils.LogLevelWarn), string(utils.LogLevelError)}, logLevelFlagUsageConstant)
	flags.AddChoiceFlag(cobraCommand.PersistentFlags(), &application.logFormatFlagValue, logFormatFlagNameConstant, "",
		[]string{string(utils.LogFormatConsole), string(utils.LogFormatStructured)}, logFormatFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.projectDirectory, projectDirectoryFlagNameConstant, defaultProjectDirectoryConstant, projectDirectoryFlagUsageConstant)

	loggerProvider := func() *zap.Logger {
		return application.logger
	}
	configurationProvider := func() settings.Settings {
		return application.configuration
	}

	commandBuilders := []interface {
		Build() (*cobra.Command, error)
	}{
		&scaffold.CommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&audit.CommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&archive.CommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&deposit.CommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
		&mirror.CommandBuilder{LoggerProvider: loggerProvider, ConfigurationProvider: configurationProvider},
	}
	for _, commandBuilder := range commandBuilders {
		subcommand, buildError := commandBuilder.Build()
		if buildError == nil {
			cobraCommand.AddCommand(subcommand)
		}
	}

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command hierarchy and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command hierarchy.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	projectDirectory, absoluteError := filepath.Abs(application.homeExpander.Expand(application.projectDirectory))
	if absoluteError != nil {
		return fmt.Errorf(projectDirectoryErrorTemplateConstant, absoluteError)
	}

	loadedSettings, sources, loadError := application.settingsLoader.Load(projectDirectory, application.homeExpander.Expand(application.configurationFilePath))
	if loadError != nil {
		return loadError
	}
	application.configuration = loadedSettings
	application.configurationSources = sources

	if application.persistentFlagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.persistentFlagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}
	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(projectDirectoryFieldConstant, projectDirectory),
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationGlobalFileFieldConstant, sources.GlobalFile),
		zap.String(configurationProjectFileFieldConstant, sources.ProjectFile),
	)

	if command != nil {
		updatedContext := application.commandContextAccessor.WithProjectDirectory(command.Context(), projectDirectory)
		updatedContext = application.commandContextAccessor.WithConfigurationFilePath(updatedContext, sources.ProjectFile)
		command.SetContext(updatedContext)
		if rootCommand := command.Root(); rootCommand != nil {
			rootCommand.SetContext(updatedContext)
		}
	}

	return nil
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	case errors.Is(syncError, syscall.ENOTTY):
		return nil
	default:
		return syncError
	}
}

func (application *Application) persistentFlagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	rootCommand := command.Root()
	if rootCommand != nil {
		flagSetsToInspect = append(flagSetsToInspect, rootCommand.PersistentFlags())
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}

		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}

func resolveVersion() string {
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	mainVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(mainVersion) == 0 || mainVersion == "(devel)" {
		return developmentVersionConstant
	}
	return mainVersion
}
