// Package gitfixture builds throwaway Git repositories for tests using go-git.
package gitfixture

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"
)

const (
	fixtureAuthorNameConstant  = "Release Scholar"
	fixtureAuthorEmailConstant = "scholar@example.org"
	fixtureDirectoryPermission = 0o755
	fixtureFilePermission      = 0o644
	fixtureOriginRemoteName    = "origin"
)

// Repository is a Git repository rooted in a test temporary directory.
type Repository struct {
	testInstance *testing.T
	Path         string
	Git          *git.Repository
	worktree     *git.Worktree
	clock        time.Time
}

// New initializes an empty non-bare repository.
func New(testInstance *testing.T) *Repository {
	testInstance.Helper()
	return NewAt(testInstance, testInstance.TempDir())
}

// NewAt initializes an empty non-bare repository at path.
func NewAt(testInstance *testing.T, path string) *Repository {
	testInstance.Helper()
	repository, initError := git.PlainInit(path, false)
	require.NoError(testInstance, initError)

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	return &Repository{
		testInstance: testInstance,
		Path:         path,
		Git:          repository,
		worktree:     worktree,
		clock:        time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC),
	}
}

// WriteFile writes content to relativePath and stages it.
func (repository *Repository) WriteFile(relativePath string, content string) {
	repository.writeFile(relativePath, []byte(content), fixtureFilePermission)
}

// WriteBytes writes raw content to relativePath and stages it.
func (repository *Repository) WriteBytes(relativePath string, content []byte) {
	repository.writeFile(relativePath, content, fixtureFilePermission)
}

// WriteExecutable writes content with the executable bit set and stages it.
func (repository *Repository) WriteExecutable(relativePath string, content string) {
	repository.writeFile(relativePath, []byte(content), 0o755)
}

// WriteUntracked writes a file without staging it.
func (repository *Repository) WriteUntracked(relativePath string, content string) {
	repository.testInstance.Helper()
	absolutePath := filepath.Join(repository.Path, filepath.FromSlash(relativePath))
	require.NoError(repository.testInstance, os.MkdirAll(filepath.Dir(absolutePath), fixtureDirectoryPermission))
	require.NoError(repository.testInstance, os.WriteFile(absolutePath, []byte(content), fixtureFilePermission))
}

func (repository *Repository) writeFile(relativePath string, content []byte, permissions os.FileMode) {
	repository.testInstance.Helper()
	absolutePath := filepath.Join(repository.Path, filepath.FromSlash(relativePath))
	require.NoError(repository.testInstance, os.MkdirAll(filepath.Dir(absolutePath), fixtureDirectoryPermission))
	require.NoError(repository.testInstance, os.WriteFile(absolutePath, content, permissions))
	require.NoError(repository.testInstance, os.Chmod(absolutePath, permissions))
	_, addError := repository.worktree.Add(relativePath)
	require.NoError(repository.testInstance, addError)
}

// RemoveFile deletes relativePath from the worktree and the index.
func (repository *Repository) RemoveFile(relativePath string) {
	repository.testInstance.Helper()
	_, removeError := repository.worktree.Remove(relativePath)
	require.NoError(repository.testInstance, removeError)
}

// Commit records the staged changes and returns the new commit hash.
func (repository *Repository) Commit(message string) plumbing.Hash {
	repository.testInstance.Helper()
	repository.clock = repository.clock.Add(time.Hour)
	commitHash, commitError := repository.worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: fixtureAuthorNameConstant, Email: fixtureAuthorEmailConstant, When: repository.clock},
	})
	require.NoError(repository.testInstance, commitError)
	return commitHash
}

// Tag creates a lightweight tag at commitHash.
func (repository *Repository) Tag(tagName string, commitHash plumbing.Hash) {
	repository.testInstance.Helper()
	_, tagError := repository.Git.CreateTag(tagName, commitHash, nil)
	require.NoError(repository.testInstance, tagError)
}

// AnnotatedTag creates an annotated tag at commitHash.
func (repository *Repository) AnnotatedTag(tagName string, commitHash plumbing.Hash) {
	repository.testInstance.Helper()
	_, tagError := repository.Git.CreateTag(tagName, commitHash, &git.CreateTagOptions{
		Tagger:  &object.Signature{Name: fixtureAuthorNameConstant, Email: fixtureAuthorEmailConstant, When: repository.clock},
		Message: "Release " + tagName,
	})
	require.NoError(repository.testInstance, tagError)
}

// SetOrigin configures the origin remote URL.
func (repository *Repository) SetOrigin(remoteURL string) {
	repository.testInstance.Helper()
	_, remoteError := repository.Git.CreateRemote(&config.RemoteConfig{Name: fixtureOriginRemoteName, URLs: []string{remoteURL}})
	require.NoError(repository.testInstance, remoteError)
}
