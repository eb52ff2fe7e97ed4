package deposit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/archive"
	"github.com/temirov/release-scholar/internal/metadata"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/utils"
)

const (
	commandUseConstant              = "publish"
	commandShortDescriptionConstant = "Deposit the release bundle on Zenodo"
	commandLongDescriptionConstant  = "publish uploads the built release archive and its metadata to Zenodo as a draft deposition. With --confirm the draft is published and a DOI is minted; production publication is permanent."
	sandboxFlagNameConstant         = "sandbox"
	sandboxFlagUsageConstant        = "Use the Zenodo sandbox instead of production"
	confirmFlagNameConstant         = "confirm"
	confirmFlagUsageConstant        = "Publish the deposition instead of leaving a draft"
	defaultProjectDirectoryConstant = "."
	readmeFileNameConstant          = "README.md"
	publishPhraseConstant           = "publish"
	readmePermissionConstant        = 0o644

	draftPromptConstant         = "You are about to create a draft on PRODUCTION Zenodo, reserving a real DOI.\nContinue? [y/N] "
	publishPromptConstant       = "You are about to PERMANENTLY PUBLISH on PRODUCTION Zenodo and mint a real DOI.\nType 'publish' to confirm: "
	abortedMessageConstant      = "Aborted.\n"
	depositingTemplateConstant  = "Depositing %s on Zenodo [%s]\n"
	draftCreatedTemplate        = "Draft deposition %d created (not yet published).\n  Review at: %s\n"
	publishedTemplateConstant   = "Deposition %d published.\n  DOI:     %s\n  URL:     %s\n  View at: %s\n"
	badgeAddedMessageConstant   = "Added DOI badge to README.md\n"
	environmentSandboxConstant  = "sandbox"
	environmentProductionLabel  = "production"
	bundleNotFoundTemplate      = "release bundle not found at %s; run build first"
	readBundleOperationConstant = "read release bundle"
	updateReadmeOperation       = "update README badge"
)

// ClientFactory creates a deposit client for baseURL and token.
type ClientFactory func(executionContext context.Context, baseURL string, token string) DepositClient

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider supplies resolved settings for command execution.
type ConfigurationProvider func() settings.Settings

// CommandBuilder assembles the publish cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	RepositoryOpener      archive.RepositoryOpener
	ClientFactory         ClientFactory
	EnvironmentLookup     EnvironmentLookup
	TokenDirectory        string
}

type commandOptions struct {
	sandbox bool
	confirm bool
}

// Build constructs the cobra command for deposit publication.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	options := &commandOptions{}
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return builder.run(command, *options)
		},
	}
	command.Flags().BoolVar(&options.sandbox, sandboxFlagNameConstant, false, sandboxFlagUsageConstant)
	command.Flags().BoolVar(&options.confirm, confirmFlagNameConstant, false, confirmFlagUsageConstant)
	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, options commandOptions) error {
	output := command.OutOrStdout()
	logger := builder.resolveLogger()
	configuration := settings.Defaults()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}

	proceed, promptError := confirmProduction(NewIOConfirmationPrompter(command.InOrStdin(), output), options)
	if promptError != nil {
		return promptError
	}
	if !proceed {
		_, writeError := io.WriteString(output, abortedMessageConstant)
		return writeError
	}

	projectDirectory, found := utils.NewCommandContextAccessor().ProjectDirectory(command.Context())
	if !found {
		projectDirectory = defaultProjectDirectoryConstant
	}
	projectDirectory, absoluteError := filepath.Abs(projectDirectory)
	if absoluteError != nil {
		return releaseerrors.New(releaseerrors.KindIO, readBundleOperationConstant, absoluteError)
	}

	submission, tagName, submissionError := builder.loadSubmission(projectDirectory, configuration, options.confirm)
	if submissionError != nil {
		return submissionError
	}

	tokenDirectory := builder.TokenDirectory
	if len(tokenDirectory) == 0 {
		tokenDirectory = settings.DefaultGlobalDirectory()
	}
	token, tokenError := TokenResolver{Lookup: builder.EnvironmentLookup, Configuration: configuration.Deposit, TokenDirectory: tokenDirectory}.Resolve(options.sandbox)
	if tokenError != nil {
		return tokenError
	}

	baseURL := ProductionBaseURL
	environmentLabel := environmentProductionLabel
	if options.sandbox {
		baseURL = SandboxBaseURL
		environmentLabel = environmentSandboxConstant
	}
	client := builder.resolveClientFactory()(command.Context(), baseURL, token)

	fmt.Fprintf(output, depositingTemplateConstant, tagName, environmentLabel)
	result, submitError := NewPublisher(client, logger).Submit(command.Context(), submission)
	if submitError != nil {
		return submitError
	}

	if !result.Published {
		_, writeError := fmt.Fprintf(output, draftCreatedTemplate, result.DepositionID, result.WebURL)
		return writeError
	}
	fmt.Fprintf(output, publishedTemplateConstant, result.DepositionID, result.DOI, result.DOIURL, result.WebURL)

	badgeAdded, badgeError := addReadmeBadge(projectDirectory, result)
	if badgeError != nil {
		return badgeError
	}
	if badgeAdded {
		_, writeError := io.WriteString(output, badgeAddedMessageConstant)
		return writeError
	}
	return nil
}

func (builder *CommandBuilder) loadSubmission(projectDirectory string, configuration settings.Settings, publish bool) (Submission, string, error) {
	opener := builder.RepositoryOpener
	if opener == nil {
		opener = archive.OpenGitRepository
	}
	releaseReader, openError := opener(projectDirectory)
	if openError != nil {
		return Submission{}, "", openError
	}
	releaseTag, _, snapshotError := releaseReader.ReleaseSnapshot()
	if snapshotError != nil {
		return Submission{}, "", snapshotError
	}

	bundleDirectory := filepath.Join(projectDirectory, configuration.ArchiveDir, releaseTag.Name)
	archivePath := filepath.Join(bundleDirectory, archive.ArchiveName(releaseReader.ProjectName(configuration.ProjectName), releaseTag.Name))
	if _, statError := os.Stat(archivePath); statError != nil {
		if errors.Is(statError, fs.ErrNotExist) {
			return Submission{}, "", releaseerrors.Newf(releaseerrors.KindIO, readBundleOperationConstant, bundleNotFoundTemplate, bundleDirectory)
		}
		return Submission{}, "", releaseerrors.New(releaseerrors.KindIO, readBundleOperationConstant, statError)
	}

	metadataContent, readError := os.ReadFile(filepath.Join(bundleDirectory, metadata.FileName))
	if readError != nil {
		return Submission{}, "", releaseerrors.New(releaseerrors.KindIO, readBundleOperationConstant, readError)
	}
	releaseMetadata, decodeError := metadata.Decode(metadataContent)
	if decodeError != nil {
		return Submission{}, "", decodeError
	}
	return Submission{ArchivePath: archivePath, Metadata: releaseMetadata, Publish: publish}, releaseTag.Name, nil
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

func (builder *CommandBuilder) resolveClientFactory() ClientFactory {
	if builder.ClientFactory != nil {
		return builder.ClientFactory
	}
	return func(executionContext context.Context, baseURL string, token string) DepositClient {
		return NewClient(executionContext, baseURL, token)
	}
}

// confirmProduction asks before any production action. Sandbox runs never prompt.
func confirmProduction(prompter *IOConfirmationPrompter, options commandOptions) (bool, error) {
	if options.sandbox {
		return true, nil
	}
	if options.confirm {
		return prompter.ConfirmPhrase(publishPromptConstant, publishPhraseConstant)
	}
	return prompter.Confirm(draftPromptConstant)
}

func addReadmeBadge(projectDirectory string, result Result) (bool, error) {
	readmePath := filepath.Join(projectDirectory, readmeFileNameConstant)
	readmeContent, readError := os.ReadFile(readmePath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return false, nil
		}
		return false, releaseerrors.New(releaseerrors.KindIO, updateReadmeOperation, readError)
	}

	updated, changed := InsertDOIBadge(string(readmeContent), result.DOI, result.DOIURL)
	if !changed {
		return false, nil
	}
	if writeError := os.WriteFile(readmePath, []byte(updated), readmePermissionConstant); writeError != nil {
		return false, releaseerrors.New(releaseerrors.KindIO, updateReadmeOperation, writeError)
	}
	return true, nil
}
