package scaffold

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/utils"
)

const (
	commandUseConstant              = "init"
	commandShortDescriptionConstant = "Create starter citation, changelog, license, and configuration files"
	commandLongDescriptionConstant  = "init writes CITATION.cff, CHANGELOG.md, LICENSE, and .release-scholar.toml into the project when they are missing. Author details come from the [author] configuration; existing files are left untouched."
	defaultProjectDirectoryConstant = "."
	resolveProjectOperation         = "resolve project directory"

	createdTemplateConstant = "  created  %s\n"
	existsTemplateConstant  = "  exists   %s (left unchanged)\n"
	nextStepsMessage        = "Review CITATION.cff, then run check.\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies resolved settings for command execution.
type ConfigurationProvider func() settings.Settings

// OriginReader returns the origin remote URL of the repository at a path.
type OriginReader func(projectDirectory string) (string, error)

// CommandBuilder assembles the init cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	OriginReader          OriginReader
	Clock                 func() time.Time
}

// Build constructs the cobra command for project initialization.
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
	configuration := settings.Defaults()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	projectDirectory, found := utils.NewCommandContextAccessor().ProjectDirectory(command.Context())
	if !found {
		projectDirectory = defaultProjectDirectoryConstant
	}
	absoluteDirectory, absoluteError := filepath.Abs(projectDirectory)
	if absoluteError != nil {
		return releaseerrors.New(releaseerrors.KindIO, resolveProjectOperation, absoluteError)
	}
	originReader := builder.OriginReader
	if originReader == nil {
		originReader = ReadOriginURL
	}
	originURL, _ := originReader(absoluteDirectory)
	projectName := gitrepo.ResolveProjectName(configuration.ProjectName, originURL, absoluteDirectory)

	logger := zap.NewNop()
	if builder.LoggerProvider != nil {
		if providedLogger := builder.LoggerProvider(); providedLogger != nil {
			logger = providedLogger
		}
	}
	results, generateError := NewScaffolder(logger, builder.Clock).Generate(Request{
		ProjectDirectory: absoluteDirectory,
		ProjectName:      projectName,
		RepositoryURL:    RepositoryURL(originURL, projectName, configuration),
		Configuration:    configuration,
	})
	output := command.OutOrStdout()
	for _, result := range results {
		if result.Created {
			fmt.Fprintf(output, createdTemplateConstant, result.Name)
		} else {
			fmt.Fprintf(output, existsTemplateConstant, result.Name)
		}
	}
	if generateError != nil {
		return generateError
	}
	_, writeError := io.WriteString(output, nextStepsMessage)
	return writeError
}

// ReadOriginURL opens the repository at projectDirectory and returns its
// origin URL.
func ReadOriginURL(projectDirectory string) (string, error) {
	repository, openError := gitrepo.Open(projectDirectory)
	if openError != nil {
		return "", openError
	}
	return repository.OriginURL()
}
