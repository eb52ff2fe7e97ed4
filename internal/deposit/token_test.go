package deposit_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/deposit"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
)

func TestTokenResolverPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name          string
		sandbox       bool
		environment   map[string]string
		configuration settings.Deposit
		tokenFiles    map[string]string
		expectedToken string
		expectedError error
	}{
		{
			name:          "environment_wins",
			environment:   map[string]string{"ZENODO_TOKEN": "from-env"},
			configuration: settings.Deposit{Token: "from-config"},
			tokenFiles:    map[string]string{"token": "from-file"},
			expectedToken: "from-env",
		},
		{
			name:          "configuration_before_file",
			configuration: settings.Deposit{Token: " from-config "},
			tokenFiles:    map[string]string{"token": "from-file"},
			expectedToken: "from-config",
		},
		{
			name:          "file_fallback",
			tokenFiles:    map[string]string{"token": "from-file\n"},
			expectedToken: "from-file",
		},
		{
			name:          "sandbox_uses_separate_sources",
			sandbox:       true,
			environment:   map[string]string{"ZENODO_TOKEN": "production"},
			configuration: settings.Deposit{Token: "production", SandboxToken: "sandbox-config"},
			expectedToken: "sandbox-config",
		},
		{
			name:          "sandbox_file",
			sandbox:       true,
			tokenFiles:    map[string]string{"token": "production", "sandbox-token": "sandbox-file"},
			expectedToken: "sandbox-file",
		},
		{
			name:          "blank_values_skipped",
			environment:   map[string]string{"ZENODO_TOKEN": "  "},
			tokenFiles:    map[string]string{"token": "from-file"},
			expectedToken: "from-file",
		},
		{
			name:          "missing",
			expectedError: releaseerrors.ErrConfig,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			tokenDirectory := subtest.TempDir()
			for fileName, content := range testCase.tokenFiles {
				require.NoError(subtest, os.WriteFile(filepath.Join(tokenDirectory, fileName), []byte(content), 0o600))
			}
			resolver := deposit.TokenResolver{
				Lookup: func(name string) (string, bool) {
					value, found := testCase.environment[name]
					return value, found
				},
				Configuration:  testCase.configuration,
				TokenDirectory: tokenDirectory,
			}

			token, resolveError := resolver.Resolve(testCase.sandbox)
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, resolveError, testCase.expectedError)
				return
			}
			require.NoError(subtest, resolveError)
			require.Equal(subtest, testCase.expectedToken, token)
		})
	}
}
