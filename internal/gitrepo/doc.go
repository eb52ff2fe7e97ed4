// Package gitrepo reads release state out of Git repositories.
//
// It wraps go-git to open a project, resolve HEAD and semantic-version tags,
// report working tree cleanliness, and materialize ProjectSnapshot values for
// a commit. It also parses remote URLs for the mirror workflow.
package gitrepo
