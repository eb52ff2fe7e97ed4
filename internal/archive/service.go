package archive

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/snapshot"
)

const (
	resolveProjectOperationConstant = "resolve project directory"
	buildStartedMessageConstant     = "build started"
	logFieldProjectConstant         = "project_directory"
	logFieldProjectNameConstant     = "project_name"
	logFieldTagConstant             = "tag"
)

// ReleaseReader resolves the release tag at HEAD, the files tracked at it,
// and the project name stamped on the archive.
type ReleaseReader interface {
	ReleaseSnapshot() (gitrepo.ReleaseTag, snapshot.ProjectSnapshot, error)
	ProjectName(declaredName string) string
}

// RepositoryOpener opens the project at projectDirectory.
type RepositoryOpener func(projectDirectory string) (ReleaseReader, error)

// OpenGitRepository is the default RepositoryOpener backed by go-git.
func OpenGitRepository(projectDirectory string) (ReleaseReader, error) {
	repository, openError := gitrepo.Open(projectDirectory)
	if openError != nil {
		return nil, openError
	}
	return repository, nil
}

// Service builds the release bundle for the tag at HEAD of a project.
type Service struct {
	opener        RepositoryOpener
	builder       *Builder
	configuration settings.Settings
	logger        *zap.Logger
}

// NewService constructs a Service. A nil opener uses OpenGitRepository.
func NewService(opener RepositoryOpener, builder *Builder, configuration settings.Settings, logger *zap.Logger) *Service {
	if opener == nil {
		opener = OpenGitRepository
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if builder == nil {
		builder = NewBuilder(logger)
	}
	return &Service{opener: opener, builder: builder, configuration: configuration, logger: logger}
}

// Build writes <project>/<archive_dir>/<tag>/ for the release tag at HEAD.
// The archive is named after project_name, else the origin repository name,
// so the checkout directory name does not reach the archive bytes.
func (service *Service) Build(projectDirectory string) (Bundle, error) {
	absoluteDirectory, absoluteError := filepath.Abs(projectDirectory)
	if absoluteError != nil {
		return Bundle{}, releaseerrors.New(releaseerrors.KindIO, resolveProjectOperationConstant, absoluteError)
	}

	releaseReader, openError := service.opener(absoluteDirectory)
	if openError != nil {
		return Bundle{}, openError
	}
	releaseTag, releaseSnapshot, snapshotError := releaseReader.ReleaseSnapshot()
	if snapshotError != nil {
		return Bundle{}, snapshotError
	}

	projectName := releaseReader.ProjectName(service.configuration.ProjectName)

	service.logger.Info(
		buildStartedMessageConstant,
		zap.String(logFieldProjectConstant, absoluteDirectory),
		zap.String(logFieldProjectNameConstant, projectName),
		zap.String(logFieldTagConstant, releaseTag.Name),
	)

	return service.builder.Build(Request{
		Snapshot:        releaseSnapshot,
		ProjectName:     projectName,
		Tag:             releaseTag.Name,
		Language:        service.configuration.Language,
		OutputDirectory: filepath.Join(absoluteDirectory, service.configuration.ArchiveDir),
	})
}
