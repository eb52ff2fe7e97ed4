package archive

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/utils"
)

const (
	commandUseConstant              = "build"
	commandShortDescriptionConstant = "Build the deterministic release bundle"
	commandLongDescriptionConstant  = "build writes a reproducible tar.gz of the files tracked at the release tag on HEAD, a SHA-256 checksum manifest, metadata.json derived from CITATION.cff, and copies of the citation files into <archive_dir>/<tag>/."
	defaultProjectDirectoryConstant = "."
	bundleSummaryTemplateConstant   = "Release bundle: %s\n  Archive: %s\n  SHA256:  %s\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies resolved settings for command execution.
type ConfigurationProvider func() settings.Settings

// CommandBuilder assembles the build cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryOpener      RepositoryOpener
}

// Build constructs the cobra command for release bundle builds.
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
	configuration := settings.Defaults()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	projectDirectory, found := utils.NewCommandContextAccessor().ProjectDirectory(command.Context())
	if !found {
		projectDirectory = defaultProjectDirectoryConstant
	}

	service := NewService(builder.RepositoryOpener, NewBuilder(logger), configuration, logger)
	bundle, buildError := service.Build(projectDirectory)
	if buildError != nil {
		return buildError
	}

	_, writeError := fmt.Fprintf(command.OutOrStdout(), bundleSummaryTemplateConstant, bundle.Directory, bundle.ArchiveName, bundle.Checksum)
	return writeError
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
