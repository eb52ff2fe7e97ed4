package audit

import (
	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/history"
)

// HeadStateReader exposes the repository state an audit inspects.
type HeadStateReader interface {
	ReadHeadState() (gitrepo.HeadState, error)
}

// RepositoryOpener opens the project at projectDirectory and returns its HEAD
// state reader together with its history source.
type RepositoryOpener func(projectDirectory string) (HeadStateReader, history.Source, error)

// OpenGitRepository is the default RepositoryOpener backed by go-git.
func OpenGitRepository(projectDirectory string) (HeadStateReader, history.Source, error) {
	repository, openError := gitrepo.Open(projectDirectory)
	if openError != nil {
		return nil, nil, openError
	}
	return repository, history.NewWalker(repository), nil
}

// ResolveRepositoryOpener returns opener or the default when opener is nil.
func ResolveRepositoryOpener(opener RepositoryOpener) RepositoryOpener {
	if opener == nil {
		return OpenGitRepository
	}
	return opener
}
