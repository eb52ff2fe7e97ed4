package deposit

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
)

// Environment variables consulted for deposit tokens.
const (
	ProductionTokenEnvironmentVariable = "ZENODO_TOKEN"
	SandboxTokenEnvironmentVariable    = "ZENODO_SANDBOX_TOKEN"
)

const (
	productionTokenFileNameConstant = "token"
	sandboxTokenFileNameConstant    = "sandbox-token"
	resolveTokenOperationConstant   = "resolve deposit token"
	missingTokenTemplateConstant    = "no deposit token found; set %s, deposit.%s in the configuration, or save it to %s"
	productionTokenKeyConstant      = "token"
	sandboxTokenKeyConstant         = "sandbox_token"
)

// EnvironmentLookup reads one environment variable.
type EnvironmentLookup func(name string) (string, bool)

// TokenResolver finds the deposit token for the production or sandbox
// service. The environment wins over configuration, which wins over a token
// file in the configuration directory.
type TokenResolver struct {
	Lookup         EnvironmentLookup
	Configuration  settings.Deposit
	TokenDirectory string
}

// Resolve returns the token for the selected service.
func (resolver TokenResolver) Resolve(sandbox bool) (string, error) {
	environmentVariable := ProductionTokenEnvironmentVariable
	configuredToken := resolver.Configuration.Token
	configurationKey := productionTokenKeyConstant
	tokenFileName := productionTokenFileNameConstant
	if sandbox {
		environmentVariable = SandboxTokenEnvironmentVariable
		configuredToken = resolver.Configuration.SandboxToken
		configurationKey = sandboxTokenKeyConstant
		tokenFileName = sandboxTokenFileNameConstant
	}

	lookup := resolver.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if environmentToken, found := lookup(environmentVariable); found && len(strings.TrimSpace(environmentToken)) > 0 {
		return strings.TrimSpace(environmentToken), nil
	}
	if trimmed := strings.TrimSpace(configuredToken); len(trimmed) > 0 {
		return trimmed, nil
	}

	tokenPath := filepath.Join(resolver.TokenDirectory, tokenFileName)
	if len(resolver.TokenDirectory) > 0 {
		fileContent, readError := os.ReadFile(tokenPath)
		switch {
		case readError == nil:
			if trimmed := strings.TrimSpace(string(fileContent)); len(trimmed) > 0 {
				return trimmed, nil
			}
		case !errors.Is(readError, fs.ErrNotExist):
			return "", releaseerrors.New(releaseerrors.KindIO, resolveTokenOperationConstant, readError)
		}
	}
	return "", releaseerrors.Newf(releaseerrors.KindConfig, resolveTokenOperationConstant, missingTokenTemplateConstant, environmentVariable, configurationKey, tokenPath)
}
