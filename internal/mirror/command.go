package mirror

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/utils"
)

const (
	commandUseConstant              = "mirror"
	commandShortDescriptionConstant = "Configure GitHub and GitLab push mirrors on Codeberg"
	commandLongDescriptionConstant  = "mirror adds push mirrors to the Codeberg repository named after the project directory. Targets that are already mirrored or lack credentials are skipped."
	defaultProjectDirectoryConstant = "."
	resolveProjectOperation         = "resolve project directory"

	headerTemplateConstant       = "Setting up push mirrors for %s/%s\n"
	addedTemplateConstant        = "  %s mirror added\n    -> %s\n"
	existsTemplateConstant       = "  %s mirror already exists, skipping\n"
	unconfiguredTemplateConstant = "  %s: skipped (%s_user/%s_token not configured)\n"
	footerMessageConstant        = "Mirrors sync every 8 hours and on push.\n"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies resolved settings for command execution.
type ConfigurationProvider func() settings.Settings

// CommandBuilder assembles the mirror cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ClientFactory         ClientFactory
}

// Build constructs the cobra command for mirror configuration.
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
	if validationError := ValidateCredentials(configuration.Mirrors); validationError != nil {
		return validationError
	}

	projectDirectory, found := utils.NewCommandContextAccessor().ProjectDirectory(command.Context())
	if !found {
		projectDirectory = defaultProjectDirectoryConstant
	}
	absoluteDirectory, absoluteError := filepath.Abs(projectDirectory)
	if absoluteError != nil {
		return releaseerrors.New(releaseerrors.KindIO, resolveProjectOperation, absoluteError)
	}
	repositoryName := gitrepo.ResolveProjectName(configuration.ProjectName, readOriginURL(absoluteDirectory), absoluteDirectory)

	forgeURL := strings.TrimSpace(configuration.ForgeURL)
	if len(forgeURL) == 0 {
		forgeURL = DefaultForgeURL
	}
	clientFactory := builder.ClientFactory
	if clientFactory == nil {
		clientFactory = NewGiteaClient
	}
	client, clientError := clientFactory(command.Context(), forgeURL, configuration.Mirrors.CodebergToken)
	if clientError != nil {
		return clientError
	}

	output := command.OutOrStdout()
	fmt.Fprintf(output, headerTemplateConstant, configuration.Mirrors.CodebergUser, repositoryName)
	outcomes, configureError := NewService(client, builder.resolveLogger()).Configure(Request{
		RepositoryName: repositoryName,
		Credentials:    configuration.Mirrors,
	})
	renderOutcomes(output, outcomes)
	if configureError != nil {
		return configureError
	}
	_, writeError := io.WriteString(output, footerMessageConstant)
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

func readOriginURL(projectDirectory string) string {
	repository, openError := gitrepo.Open(projectDirectory)
	if openError != nil {
		return ""
	}
	originURL, _ := repository.OriginURL()
	return originURL
}

func renderOutcomes(output io.Writer, outcomes []Outcome) {
	for _, outcome := range outcomes {
		switch outcome.Status {
		case StatusAdded:
			fmt.Fprintf(output, addedTemplateConstant, outcome.Label, outcome.RemoteAddress)
		case StatusExists:
			fmt.Fprintf(output, existsTemplateConstant, outcome.Label)
		case StatusUnconfigured:
			credentialPrefix := strings.ToLower(outcome.Label)
			fmt.Fprintf(output, unconfiguredTemplateConstant, outcome.Label, credentialPrefix, credentialPrefix)
		}
	}
}
