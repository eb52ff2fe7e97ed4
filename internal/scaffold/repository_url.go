package scaffold

import (
	"strings"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/settings"
)

const (
	codebergBaseURLConstant = "https://codeberg.org"
	gitHubBaseURLConstant   = "https://github.com"
	gitLabBaseURLConstant   = "https://gitlab.com"
	gitSuffixConstant       = ".git"
	urlSeparatorConstant    = "/"
)

// RepositoryURL returns the web address of the project repository. The
// origin remote wins; otherwise the configured forge and its user are used.
// An empty string means no address could be derived.
func RepositoryURL(originURL string, projectName string, configuration settings.Settings) string {
	if remote, parseError := gitrepo.ParseRemoteURL(originURL); parseError == nil {
		remote.Protocol = gitrepo.RemoteProtocolHTTPS
		if formatted, formatError := gitrepo.FormatRemoteURL(remote); formatError == nil {
			return strings.TrimSuffix(formatted, gitSuffixConstant)
		}
	}

	baseURL, owner := forgeLocation(configuration)
	if len(owner) == 0 || len(projectName) == 0 {
		return ""
	}
	return strings.Join([]string{strings.TrimRight(baseURL, urlSeparatorConstant), owner, projectName}, urlSeparatorConstant)
}

func forgeLocation(configuration settings.Settings) (string, string) {
	baseURL := codebergBaseURLConstant
	owner := configuration.Mirrors.CodebergUser
	switch configuration.Forge {
	case settings.ForgeGitHub:
		baseURL = gitHubBaseURLConstant
		owner = configuration.Mirrors.GitHubUser
	case settings.ForgeGitLab:
		baseURL = gitLabBaseURLConstant
		owner = configuration.Mirrors.GitLabUser
	}
	if forgeURL := strings.TrimSpace(configuration.ForgeURL); len(forgeURL) > 0 {
		baseURL = forgeURL
	}
	return baseURL, strings.TrimSpace(owner)
}
