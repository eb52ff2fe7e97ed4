package audit_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/audit"
	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/history"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/snapshot"
	"github.com/temirov/release-scholar/internal/utils"
)

const commandProjectDirectoryConstant = "/projects/scholar"

type stubHeadStateReader struct {
	state gitrepo.HeadState
}

func (reader stubHeadStateReader) ReadHeadState() (gitrepo.HeadState, error) {
	return reader.state, nil
}

func TestCommandBuilderRunsAudit(testInstance *testing.T) {
	testCases := []struct {
		name            string
		tags            []string
		expectedError   error
		expectedVerdict string
	}{
		{
			name:            "ready",
			tags:            []string{"v0.1.0"},
			expectedVerdict: "Release is ready.",
		},
		{
			name:            "not_ready",
			expectedError:   audit.ErrReleaseNotReady,
			expectedVerdict: "Release is NOT ready.",
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			openedDirectories := []string{}
			builder := audit.CommandBuilder{
				LoggerProvider:        func() *zap.Logger { return zap.NewNop() },
				ConfigurationProvider: settings.Defaults,
				RepositoryOpener: func(projectDirectory string) (audit.HeadStateReader, history.Source, error) {
					openedDirectories = append(openedDirectories, projectDirectory)
					state := gitrepo.HeadState{
						Snapshot: snapshot.New(testCommitConstant, readyFiles("0.1.0"), true),
						Tags:     testCase.tags,
					}
					return stubHeadStateReader{state: state}, stubHistorySource{}, nil
				},
			}

			command, buildError := builder.Build()
			require.NoError(subtest, buildError)

			var output bytes.Buffer
			command.SetOut(&output)
			command.SetErr(&output)
			command.SetArgs([]string{})

			executionContext := utils.NewCommandContextAccessor().WithProjectDirectory(context.Background(), commandProjectDirectoryConstant)
			executionError := command.ExecuteContext(executionContext)
			if testCase.expectedError != nil {
				require.ErrorIs(subtest, executionError, testCase.expectedError)
			} else {
				require.NoError(subtest, executionError)
			}

			require.Equal(subtest, []string{commandProjectDirectoryConstant}, openedDirectories)
			require.True(subtest, strings.HasPrefix(output.String(), "Release Scholar Report"))
			require.Contains(subtest, output.String(), testCase.expectedVerdict)
		})
	}
}

func TestCommandBuilderPropagatesOpenErrors(testInstance *testing.T) {
	openError := errors.New("not a git repository")
	builder := audit.CommandBuilder{
		RepositoryOpener: func(projectDirectory string) (audit.HeadStateReader, history.Source, error) {
			require.Equal(testInstance, ".", projectDirectory)
			return nil, nil, openError
		},
	}

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)
	command.SetArgs([]string{})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})

	require.ErrorIs(testInstance, command.Execute(), openError)
}
