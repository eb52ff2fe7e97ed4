package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
)

func newTestApplication(testInstance *testing.T) (*Application, *bytes.Buffer) {
	testInstance.Helper()
	globalPath := filepath.Join(testInstance.TempDir(), "config.toml")
	application := newApplication(settings.NewLoaderWithGlobalPath(globalPath))
	output := &bytes.Buffer{}
	application.rootCommand.SetOut(output)
	application.rootCommand.SetErr(output)
	return application, output
}

func TestApplicationRegistersSubcommands(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)
	names := []string{}
	for _, subcommand := range application.rootCommand.Commands() {
		names = append(names, subcommand.Name())
	}
	for _, expectedName := range []string{"init", "check", "build", "publish", "mirror"} {
		require.Contains(testInstance, names, expectedName)
	}
}

func TestApplicationPassesProjectDirectoryToSubcommands(testInstance *testing.T) {
	projectDirectory := testInstance.TempDir()
	application, output := newTestApplication(testInstance)
	application.rootCommand.SetArgs([]string{"init", "--project-dir", projectDirectory, "--log-level", "error"})

	require.NoError(testInstance, application.Execute())
	require.Contains(testInstance, output.String(), "created  CITATION.cff")
	for _, fileName := range []string{"CITATION.cff", "CHANGELOG.md", "LICENSE", settings.ProjectFileName} {
		_, statError := os.Stat(filepath.Join(projectDirectory, fileName))
		require.NoError(testInstance, statError, fileName)
	}
	require.Equal(testInstance, "error", application.configuration.Common.LogLevel)
}

func TestApplicationConfigurationErrors(testInstance *testing.T) {
	testCases := []struct {
		name          string
		projectConfig string
		arguments     []string
		expectedKind  error
	}{
		{
			name:          "unknown_forge",
			projectConfig: "forge = \"sourceforge\"\n",
			expectedKind:  releaseerrors.ErrConfig,
		},
		{
			name:          "missing_explicit_file",
			arguments:     []string{"--config", "/nonexistent/release-scholar.toml"},
			expectedKind:  releaseerrors.ErrConfig,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			projectDirectory := subtest.TempDir()
			if len(testCase.projectConfig) > 0 {
				require.NoError(subtest, os.WriteFile(filepath.Join(projectDirectory, settings.ProjectFileName), []byte(testCase.projectConfig), 0o644))
			}
			application, _ := newTestApplication(subtest)
			arguments := append([]string{"init", "--project-dir", projectDirectory}, testCase.arguments...)
			application.rootCommand.SetArgs(arguments)

			require.ErrorIs(subtest, application.Execute(), testCase.expectedKind)
			_, statError := os.Stat(filepath.Join(projectDirectory, "CITATION.cff"))
			require.True(subtest, os.IsNotExist(statError))
		})
	}
}

func TestApplicationRejectsUnknownLogLevel(testInstance *testing.T) {
	application, _ := newTestApplication(testInstance)
	application.rootCommand.SetArgs([]string{"init", "--project-dir", testInstance.TempDir(), "--log-level", "chatty"})

	executionError := application.Execute()
	require.Error(testInstance, executionError)
	require.Contains(testInstance, executionError.Error(), `"chatty" is not one of info, debug, warn, error`)
}

func TestApplicationVersionFlag(testInstance *testing.T) {
	application, output := newTestApplication(testInstance)
	application.rootCommand.SetArgs([]string{"--version"})

	require.NoError(testInstance, application.Execute())
	require.Equal(testInstance, "release-scholar version dev\n", output.String())
}
