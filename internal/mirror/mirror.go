// Package mirror configures push mirrors on a Gitea-compatible forge so that
// a Codeberg repository is replicated to GitHub and GitLab.
package mirror

import (
	"context"
	"fmt"
	"strings"

	"code.gitea.io/sdk/gitea"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
)

// DefaultForgeURL is the source forge used when forge_url is not configured.
const DefaultForgeURL = "https://codeberg.org"

// SyncInterval is the periodic push interval of created mirrors.
const SyncInterval = "8h0m0s"

const (
	gitHubTargetTemplateConstant = "https://github.com/%s/%s.git"
	gitLabTargetTemplateConstant = "https://gitlab.com/%s/%s.git"
	gitHubHostConstant           = "github.com"
	gitLabHostConstant           = "gitlab.com"
	gitHubLabelConstant          = "GitHub"
	gitLabLabelConstant          = "GitLab"
	listPageSizeConstant         = 50

	configureOperationConstant   = "configure mirrors"
	listMirrorsOperationConstant = "list push mirrors"
	addMirrorOperationConstant   = "add push mirror"
	missingCredentialTemplate    = "%s not set in [mirrors] configuration"
	codebergUserKeyConstant      = "codeberg_user"
	codebergTokenKeyConstant     = "codeberg_token"
	emptyRepositoryNameMessage   = "repository name must not be empty"
	mirrorConfiguredMessage      = "push mirror target processed"
	logFieldTargetConstant       = "target"
	logFieldStatusConstant       = "status"
)

// Status describes what happened to one mirror target.
type Status string

// Mirror target statuses.
const (
	StatusAdded        Status = "added"
	StatusExists       Status = "exists"
	StatusUnconfigured Status = "unconfigured"
)

// Client is the subset of the Gitea API used to manage push mirrors.
type Client interface {
	ListPushMirrors(owner string, repository string, options gitea.ListOptions) ([]*gitea.PushMirrorResponse, *gitea.Response, error)
	PushMirrors(owner string, repository string, options gitea.CreatePushMirrorOption) (*gitea.PushMirrorResponse, *gitea.Response, error)
}

// ClientFactory creates a Client for the forge at baseURL.
type ClientFactory func(executionContext context.Context, baseURL string, token string) (Client, error)

// NewGiteaClient returns a Gitea SDK client authenticated with token.
func NewGiteaClient(executionContext context.Context, baseURL string, token string) (Client, error) {
	client, clientError := gitea.NewClient(baseURL, gitea.SetToken(token), gitea.SetGiteaVersion(""), gitea.SetContext(executionContext))
	if clientError != nil {
		return nil, releaseerrors.New(releaseerrors.KindConfig, configureOperationConstant, clientError)
	}
	return client, nil
}

// Target is a downstream forge repository that should receive pushes.
type Target struct {
	Label         string
	Host          string
	RemoteAddress string
	Username      string
	Token         string
}

// Outcome reports the status of a single target.
type Outcome struct {
	Label         string
	RemoteAddress string
	Status        Status
}

// Request selects the source repository and the credentials to use.
type Request struct {
	RepositoryName string
	Credentials    settings.Mirrors
}

// Service adds the missing push mirrors of a repository.
type Service struct {
	client Client
	logger *zap.Logger
}

// NewService constructs a Service. A nil logger disables logging.
func NewService(client Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: client, logger: logger}
}

// ValidateCredentials ensures the source forge credentials are present.
func ValidateCredentials(credentials settings.Mirrors) error {
	if len(strings.TrimSpace(credentials.CodebergUser)) == 0 {
		return releaseerrors.Newf(releaseerrors.KindConfig, configureOperationConstant, missingCredentialTemplate, codebergUserKeyConstant)
	}
	if len(strings.TrimSpace(credentials.CodebergToken)) == 0 {
		return releaseerrors.Newf(releaseerrors.KindConfig, configureOperationConstant, missingCredentialTemplate, codebergTokenKeyConstant)
	}
	return nil
}

// Targets lists the GitHub and GitLab targets in that order. A target whose
// user or token is missing has an empty RemoteAddress.
func Targets(repositoryName string, credentials settings.Mirrors) []Target {
	targets := []Target{
		{Label: gitHubLabelConstant, Host: gitHubHostConstant, Username: credentials.GitHubUser, Token: credentials.GitHubToken},
		{Label: gitLabLabelConstant, Host: gitLabHostConstant, Username: credentials.GitLabUser, Token: credentials.GitLabToken},
	}
	templates := []string{gitHubTargetTemplateConstant, gitLabTargetTemplateConstant}
	for targetIndex := range targets {
		if len(targets[targetIndex].Username) == 0 || len(targets[targetIndex].Token) == 0 {
			continue
		}
		targets[targetIndex].RemoteAddress = fmt.Sprintf(templates[targetIndex], targets[targetIndex].Username, repositoryName)
	}
	return targets
}

// Configure lists the existing push mirrors and adds each configured target
// whose host is not mirrored yet.
func (service *Service) Configure(request Request) ([]Outcome, error) {
	if validationError := ValidateCredentials(request.Credentials); validationError != nil {
		return nil, validationError
	}
	if len(strings.TrimSpace(request.RepositoryName)) == 0 {
		return nil, releaseerrors.Newf(releaseerrors.KindConfig, configureOperationConstant, emptyRepositoryNameMessage)
	}
	owner := request.Credentials.CodebergUser

	existingAddresses, listError := service.existingAddresses(owner, request.RepositoryName)
	if listError != nil {
		return nil, listError
	}

	outcomes := []Outcome{}
	for _, target := range Targets(request.RepositoryName, request.Credentials) {
		outcome := Outcome{Label: target.Label, RemoteAddress: target.RemoteAddress}
		switch {
		case len(target.RemoteAddress) == 0:
			outcome.Status = StatusUnconfigured
		case containsHost(existingAddresses, target.Host):
			outcome.Status = StatusExists
		default:
			if addError := service.add(owner, request.RepositoryName, target); addError != nil {
				return outcomes, addError
			}
			outcome.Status = StatusAdded
		}
		service.logger.Info(mirrorConfiguredMessage, zap.String(logFieldTargetConstant, target.Label), zap.String(logFieldStatusConstant, string(outcome.Status)))
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func (service *Service) add(owner string, repositoryName string, target Target) error {
	_, _, addError := service.client.PushMirrors(owner, repositoryName, gitea.CreatePushMirrorOption{
		Interval:       SyncInterval,
		RemoteAddress:  target.RemoteAddress,
		RemoteUsername: target.Username,
		RemotePassword: target.Token,
		SyncONCommit:   true,
	})
	if addError != nil {
		return releaseerrors.New(releaseerrors.KindIO, addMirrorOperationConstant, addError)
	}
	return nil
}

func (service *Service) existingAddresses(owner string, repositoryName string) ([]string, error) {
	addresses := []string{}
	for page := 1; ; page++ {
		mirrors, _, listError := service.client.ListPushMirrors(owner, repositoryName, gitea.ListOptions{Page: page, PageSize: listPageSizeConstant})
		if listError != nil {
			return nil, releaseerrors.New(releaseerrors.KindIO, listMirrorsOperationConstant, listError)
		}
		for _, pushMirror := range mirrors {
			if pushMirror != nil {
				addresses = append(addresses, pushMirror.RemoteAddress)
			}
		}
		if len(mirrors) < listPageSizeConstant {
			return addresses, nil
		}
	}
}

func containsHost(addresses []string, host string) bool {
	for _, address := range addresses {
		if strings.Contains(address, host) {
			return true
		}
	}
	return false
}
