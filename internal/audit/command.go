package audit

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/utils"
)

const (
	commandUseConstant              = "check"
	commandShortDescriptionConstant = "Audit release readiness"
	commandLongDescriptionConstant  = "check audits the Git state, required files, citation metadata, secrets across full history, .gitignore coverage, and tracked sizes of the project, and exits non-zero when any check fails."
	defaultProjectDirectoryConstant = "."
	releaseNotReadyMessageConstant  = "release is not ready"
)

// ErrReleaseNotReady is returned by the check command when any finding failed.
var ErrReleaseNotReady = errors.New(releaseNotReadyMessageConstant)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies resolved settings for command execution.
type ConfigurationProvider func() settings.Settings

// CommandBuilder assembles the check cobra command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryOpener      RepositoryOpener
}

// Build constructs the cobra command for release readiness audits.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE:  builder.run,
	}
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()
	configuration := builder.resolveConfiguration()
	projectDirectory := ResolveProjectDirectory(command)

	service := NewService(builder.RepositoryOpener, NewEngine(configuration, logger), logger)
	report, auditError := service.Audit(command.Context(), projectDirectory)
	if auditError != nil {
		return auditError
	}

	if renderError := RenderReport(command.OutOrStdout(), report); renderError != nil {
		return renderError
	}
	if report.HasFailures() {
		return ErrReleaseNotReady
	}
	return nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveConfiguration() settings.Settings {
	if builder.ConfigurationProvider == nil {
		return settings.Defaults()
	}
	return builder.ConfigurationProvider()
}

// ResolveProjectDirectory reads the project directory the root command stored
// in the command context, defaulting to the working directory.
func ResolveProjectDirectory(command *cobra.Command) string {
	if command == nil {
		return defaultProjectDirectoryConstant
	}
	projectDirectory, found := utils.NewCommandContextAccessor().ProjectDirectory(command.Context())
	if !found {
		return defaultProjectDirectoryConstant
	}
	return projectDirectory
}
