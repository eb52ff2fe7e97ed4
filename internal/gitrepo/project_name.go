package gitrepo

import (
	"path/filepath"
	"strings"
)

// ResolveProjectName picks the name used for release artifacts. A declared
// name wins, then the repository name of originURL, then the base name of
// projectDirectory.
func ResolveProjectName(declaredName string, originURL string, projectDirectory string) string {
	if trimmedName := strings.TrimSpace(declaredName); len(trimmedName) > 0 {
		return trimmedName
	}
	if remote, parseError := ParseRemoteURL(originURL); parseError == nil {
		return remote.Repository
	}
	return filepath.Base(filepath.Clean(projectDirectory))
}

// ProjectName resolves the project name of this repository. A missing or
// unparsable origin remote falls back to the repository directory name.
func (repository *Repository) ProjectName(declaredName string) string {
	originURL, _ := repository.OriginURL()
	return ResolveProjectName(declaredName, originURL, repository.path)
}
