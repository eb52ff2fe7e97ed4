// Package history enumerates every blob reachable from the history of HEAD.
//
// Secrets committed and later deleted stay readable in history, so audits
// walk all commits instead of the current tree only. Each distinct blob is
// read and visited once no matter how many commits reference it.
package history

import (
	"context"
	"errors"
	"io"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/releaseerrors"
)

const (
	walkHistoryOperationConstant = "walk history"
	readBlobOperationConstant    = "read historical blob"
)

// Blob is one distinct file version found in history together with the
// first path it was observed under.
type Blob struct {
	Hash    string
	Path    string
	Commit  string
	Content []byte
}

// Statistics summarises a completed walk.
type Statistics struct {
	Commits int
	Blobs   int
}

// Visitor receives each distinct blob. Returning an error stops the walk.
type Visitor func(blob Blob) error

// Source is the contract audits depend on to enumerate historical content.
type Source interface {
	Walk(executionContext context.Context, visit Visitor) (Statistics, error)
}

// Walker traverses the commit graph reachable from HEAD.
type Walker struct {
	repository *git.Repository
}

// NewWalker builds a walker for an opened repository.
func NewWalker(repository *gitrepo.Repository) *Walker {
	return &Walker{repository: repository.Git()}
}

// Walk visits each distinct blob reachable from HEAD, newest commits first.
// A repository without commits yields no blobs and no error. Every call
// starts a fresh traversal.
func (walker *Walker) Walk(executionContext context.Context, visit Visitor) (Statistics, error) {
	statistics := Statistics{}

	headReference, headError := walker.repository.Head()
	if headError != nil {
		if errors.Is(headError, plumbing.ErrReferenceNotFound) {
			return statistics, nil
		}
		return statistics, releaseerrors.New(releaseerrors.KindRepository, walkHistoryOperationConstant, headError)
	}

	commitIterator, logError := walker.repository.Log(&git.LogOptions{From: headReference.Hash(), Order: git.LogOrderCommitterTime})
	if logError != nil {
		return statistics, releaseerrors.New(releaseerrors.KindRepository, walkHistoryOperationConstant, logError)
	}
	defer commitIterator.Close()

	visitedBlobs := make(map[plumbing.Hash]struct{})
	var visitorError error

	iterationError := commitIterator.ForEach(func(commit *object.Commit) error {
		if contextError := executionContext.Err(); contextError != nil {
			return contextError
		}
		statistics.Commits++

		tree, treeError := commit.Tree()
		if treeError != nil {
			return releaseerrors.New(releaseerrors.KindRepository, walkHistoryOperationConstant, treeError)
		}

		filesError := tree.Files().ForEach(func(file *object.File) error {
			if _, alreadyVisited := visitedBlobs[file.Hash]; alreadyVisited {
				return nil
			}
			visitedBlobs[file.Hash] = struct{}{}

			content, readError := readContent(file)
			if readError != nil {
				return readError
			}
			statistics.Blobs++

			if visitError := visit(Blob{Hash: file.Hash.String(), Path: file.Name, Commit: commit.Hash.String(), Content: content}); visitError != nil {
				visitorError = visitError
				return storer.ErrStop
			}
			return nil
		})
		if filesError != nil {
			return filesError
		}
		if visitorError != nil {
			return storer.ErrStop
		}
		return nil
	})
	if visitorError != nil {
		return statistics, visitorError
	}
	if iterationError != nil {
		if _, classified := releaseerrors.KindOf(iterationError); classified || errors.Is(iterationError, context.Canceled) || errors.Is(iterationError, context.DeadlineExceeded) {
			return statistics, iterationError
		}
		return statistics, releaseerrors.New(releaseerrors.KindRepository, walkHistoryOperationConstant, iterationError)
	}
	return statistics, nil
}

func readContent(file *object.File) ([]byte, error) {
	reader, readerError := file.Reader()
	if readerError != nil {
		return nil, releaseerrors.New(releaseerrors.KindRepository, readBlobOperationConstant, readerError)
	}
	defer reader.Close()

	content, readError := io.ReadAll(reader)
	if readError != nil {
		return nil, releaseerrors.New(releaseerrors.KindRepository, readBlobOperationConstant, readError)
	}
	return content, nil
}
