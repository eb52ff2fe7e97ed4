package gitrepo

import (
	"errors"
	"fmt"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/snapshot"
)

const (
	openRepositoryOperationConstant  = "open repository"
	resolveHeadOperationConstant     = "resolve HEAD"
	listTagsOperationConstant        = "list tags"
	resolveTagOperationConstant      = "resolve tag"
	readTreeOperationConstant        = "read tree"
	readBlobOperationConstant        = "read blob"
	worktreeStatusOperationConstant  = "read worktree status"
	readRemoteOperationConstant      = "read remote"
	originRemoteNameConstant         = "origin"
	remoteHasNoURLTemplateConstant   = "remote %s has no URL"
	readBlobFailureTemplateConstant  = "%s: %w"
	tagNotFoundTemplateConstant      = "tag %s not found"
	emptyRepositoryMessageConstant   = "repository has no commits"
	unsupportedTagTargetTemplate     = "tag %s does not point at a commit"
	notGitRepositoryTemplateConstant = "%s is not a Git repository"
	selectReleaseOperationConstant   = "select release tag"
	untaggedHeadMessageConstant      = "HEAD has no semver tag (vX.Y.Z)"
)

// ErrEmptyRepository indicates HEAD does not yet reference a commit.
var ErrEmptyRepository = errors.New(emptyRepositoryMessageConstant)

// ErrUntaggedHead indicates no vMAJOR.MINOR.PATCH tag points at HEAD.
var ErrUntaggedHead = errors.New(untaggedHeadMessageConstant)

// Repository exposes the read-only Git operations used by audits and builds.
type Repository struct {
	path       string
	repository *git.Repository
}

// Open opens the Git repository rooted at path.
func Open(path string) (*Repository, error) {
	repository, openError := git.PlainOpen(path)
	if openError != nil {
		if errors.Is(openError, git.ErrRepositoryNotExists) {
			return nil, releaseerrors.Newf(releaseerrors.KindRepository, openRepositoryOperationConstant, notGitRepositoryTemplateConstant, path)
		}
		return nil, releaseerrors.New(releaseerrors.KindRepository, openRepositoryOperationConstant, openError)
	}
	return &Repository{path: path, repository: repository}, nil
}

// Path returns the directory the repository was opened from.
func (repository *Repository) Path() string {
	return repository.path
}

// Git exposes the underlying go-git handle for history traversal.
func (repository *Repository) Git() *git.Repository {
	return repository.repository
}

// HeadCommit resolves the commit HEAD points at.
func (repository *Repository) HeadCommit() (*object.Commit, error) {
	headReference, headError := repository.repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return nil, releaseerrors.New(releaseerrors.KindRepository, resolveHeadOperationConstant, ErrEmptyRepository)
		}
		return nil, releaseerrors.New(releaseerrors.KindRepository, resolveHeadOperationConstant, headError)
	}

	commit, commitError := repository.repository.CommitObject(headReference.Hash())
	if commitError != nil {
		return nil, releaseerrors.New(releaseerrors.KindRepository, resolveHeadOperationConstant, commitError)
	}
	return commit, nil
}

// IsClean reports whether the working tree matches HEAD, ignoring files excluded by .gitignore.
func (repository *Repository) IsClean() (bool, error) {
	worktree, worktreeError := repository.repository.Worktree()
	if worktreeError != nil {
		return false, releaseerrors.New(releaseerrors.KindRepository, worktreeStatusOperationConstant, worktreeError)
	}

	status, statusError := worktree.Status()
	if statusError != nil {
		return false, releaseerrors.New(releaseerrors.KindRepository, worktreeStatusOperationConstant, statusError)
	}
	return status.IsClean(), nil
}

// TagsAt lists the short names of every tag whose target peels to commitHash.
func (repository *Repository) TagsAt(commitHash plumbing.Hash) ([]string, error) {
	tagReferences, tagsError := repository.repository.Tags()
	if tagsError != nil {
		return nil, releaseerrors.New(releaseerrors.KindRepository, listTagsOperationConstant, tagsError)
	}
	defer tagReferences.Close()

	var tagNames []string
	iterationError := tagReferences.ForEach(func(reference *plumbing.Reference) error {
		targetCommitHash, resolved := repository.peelTagReference(reference)
		if resolved && targetCommitHash == commitHash {
			tagNames = append(tagNames, reference.Name().Short())
		}
		return nil
	})
	if iterationError != nil {
		return nil, releaseerrors.New(releaseerrors.KindRepository, listTagsOperationConstant, iterationError)
	}
	return tagNames, nil
}

// TagCommit resolves the commit a named tag points at.
func (repository *Repository) TagCommit(tagName string) (*object.Commit, error) {
	reference, referenceError := repository.repository.Tag(tagName)
	if referenceError != nil {
		return nil, releaseerrors.Newf(releaseerrors.KindRepository, resolveTagOperationConstant, tagNotFoundTemplateConstant, tagName)
	}

	commitHash, resolved := repository.peelTagReference(reference)
	if !resolved {
		return nil, releaseerrors.Newf(releaseerrors.KindRepository, resolveTagOperationConstant, unsupportedTagTargetTemplate, tagName)
	}

	commit, commitError := repository.repository.CommitObject(commitHash)
	if commitError != nil {
		return nil, releaseerrors.New(releaseerrors.KindRepository, resolveTagOperationConstant, commitError)
	}
	return commit, nil
}

func (repository *Repository) peelTagReference(reference *plumbing.Reference) (plumbing.Hash, bool) {
	tagObject, tagObjectError := repository.repository.TagObject(reference.Hash())
	switch {
	case tagObjectError == nil:
		commit, commitError := tagObject.Commit()
		if commitError != nil {
			return plumbing.ZeroHash, false
		}
		return commit.Hash, true
	case errors.Is(tagObjectError, plumbing.ErrObjectNotFound):
		commit, commitError := repository.repository.CommitObject(reference.Hash())
		if commitError != nil {
			return plumbing.ZeroHash, false
		}
		return commit.Hash, true
	default:
		return plumbing.ZeroHash, false
	}
}

// Snapshot materializes the tracked files of commit into a ProjectSnapshot.
func (repository *Repository) Snapshot(commit *object.Commit, clean bool) (snapshot.ProjectSnapshot, error) {
	tree, treeError := commit.Tree()
	if treeError != nil {
		return snapshot.ProjectSnapshot{}, releaseerrors.New(releaseerrors.KindRepository, readTreeOperationConstant, treeError)
	}

	var trackedFiles []snapshot.TrackedFile
	iterationError := tree.Files().ForEach(func(file *object.File) error {
		content, readError := readFileContent(file)
		if readError != nil {
			return readError
		}
		trackedFiles = append(trackedFiles, snapshot.TrackedFile{
			Path:       file.Name,
			Content:    content,
			Executable: file.Mode == filemode.Executable,
			Symlink:    file.Mode == filemode.Symlink,
		})
		return nil
	})
	if iterationError != nil {
		return snapshot.ProjectSnapshot{}, releaseerrors.New(releaseerrors.KindRepository, readBlobOperationConstant, iterationError)
	}

	return snapshot.New(commit.Hash.String(), trackedFiles, clean), nil
}

// HeadState bundles the HEAD snapshot with the tags pointing at it.
type HeadState struct {
	Snapshot    snapshot.ProjectSnapshot
	Tags        []string
	StatusError error
}

// ReadHeadState builds the snapshot for HEAD, its tags, and the worktree
// cleanliness. A worktree status failure is recorded in StatusError and the
// snapshot is marked not clean.
func (repository *Repository) ReadHeadState() (HeadState, error) {
	headCommit, headError := repository.HeadCommit()
	if headError != nil {
		return HeadState{}, headError
	}

	clean, statusError := repository.IsClean()
	if statusError != nil {
		clean = false
	}

	tags, tagsError := repository.TagsAt(headCommit.Hash)
	if tagsError != nil {
		return HeadState{}, tagsError
	}

	headSnapshot, snapshotError := repository.Snapshot(headCommit, clean)
	if snapshotError != nil {
		return HeadState{}, snapshotError
	}

	return HeadState{Snapshot: headSnapshot, Tags: tags, StatusError: statusError}, nil
}

// ReleaseSnapshot resolves the greatest release tag at HEAD and materializes
// the files tracked at that tag's commit.
func (repository *Repository) ReleaseSnapshot() (ReleaseTag, snapshot.ProjectSnapshot, error) {
	headCommit, headError := repository.HeadCommit()
	if headError != nil {
		return ReleaseTag{}, snapshot.ProjectSnapshot{}, headError
	}

	tags, tagsError := repository.TagsAt(headCommit.Hash)
	if tagsError != nil {
		return ReleaseTag{}, snapshot.ProjectSnapshot{}, tagsError
	}
	releaseTag, tagged := SelectReleaseTag(tags)
	if !tagged {
		return ReleaseTag{}, snapshot.ProjectSnapshot{}, releaseerrors.New(releaseerrors.KindRepository, selectReleaseOperationConstant, ErrUntaggedHead)
	}

	tagCommit, tagCommitError := repository.TagCommit(releaseTag.Name)
	if tagCommitError != nil {
		return ReleaseTag{}, snapshot.ProjectSnapshot{}, tagCommitError
	}
	releaseSnapshot, snapshotError := repository.Snapshot(tagCommit, true)
	if snapshotError != nil {
		return ReleaseTag{}, snapshot.ProjectSnapshot{}, snapshotError
	}
	return releaseTag, releaseSnapshot, nil
}

// OriginURL returns the first configured URL of the origin remote.
func (repository *Repository) OriginURL() (string, error) {
	remote, remoteError := repository.repository.Remote(originRemoteNameConstant)
	if remoteError != nil {
		return "", releaseerrors.New(releaseerrors.KindRepository, readRemoteOperationConstant, remoteError)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", releaseerrors.Newf(releaseerrors.KindRepository, readRemoteOperationConstant, remoteHasNoURLTemplateConstant, originRemoteNameConstant)
	}
	return urls[0], nil
}

func readFileContent(file *object.File) ([]byte, error) {
	reader, readerError := file.Reader()
	if readerError != nil {
		return nil, fmtBlobError(file.Name, readerError)
	}
	defer reader.Close()

	content, readError := io.ReadAll(reader)
	if readError != nil {
		return nil, fmtBlobError(file.Name, readError)
	}
	return content, nil
}

func fmtBlobError(path string, cause error) error {
	return fmt.Errorf(readBlobFailureTemplateConstant, path, cause)
}
