package gitrepo_test

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/testsupport/gitfixture"
)

func TestResolveProjectName(testInstance *testing.T) {
	testCases := []struct {
		name             string
		declaredName     string
		originURL        string
		projectDirectory string
		expectedName     string
	}{
		{name: "declared_wins", declaredName: " scholar ", originURL: "git@codeberg.org:alice/other.git", projectDirectory: "/work/checkout", expectedName: "scholar"},
		{name: "ssh_origin", originURL: "git@codeberg.org:alice/scholar.git", projectDirectory: "/work/checkout", expectedName: "scholar"},
		{name: "https_origin", originURL: "https://github.com/alice/scholar", projectDirectory: "/work/checkout", expectedName: "scholar"},
		{name: "directory_fallback", projectDirectory: "/work/checkout/", expectedName: "checkout"},
		{name: "unparsable_origin", originURL: "file:///srv/scholar", projectDirectory: "/work/checkout", expectedName: "checkout"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			require.Equal(subtest, testCase.expectedName, gitrepo.ResolveProjectName(testCase.declaredName, testCase.originURL, testCase.projectDirectory))
		})
	}
}

func TestRepositoryProjectNameIgnoresCheckoutDirectory(testInstance *testing.T) {
	fixture := gitfixture.NewAt(testInstance, filepath.Join(testInstance.TempDir(), "scholar-clone"))
	fixture.WriteFile("README.md", "# scholar\n")
	fixture.Commit("initial")

	repository, openError := gitrepo.Open(fixture.Path)
	require.NoError(testInstance, openError)
	require.Equal(testInstance, "scholar-clone", repository.ProjectName(""))

	fixture.SetOrigin("https://codeberg.org/alice/scholar.git")
	reopened, reopenError := gitrepo.Open(fixture.Path)
	require.NoError(testInstance, reopenError)
	require.Equal(testInstance, "scholar", reopened.ProjectName(""))
	require.Equal(testInstance, "declared", reopened.ProjectName("declared"))
}
