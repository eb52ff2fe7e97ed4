package archive_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/archive"
	"github.com/temirov/release-scholar/internal/gitrepo"
	"github.com/temirov/release-scholar/internal/settings"
	"github.com/temirov/release-scholar/internal/testsupport/gitfixture"
)

func TestServiceBuildsBundleForTaggedHead(testInstance *testing.T) {
	repository := gitfixture.New(testInstance)
	repository.WriteFile("README.md", "# Demo\n")
	repository.WriteFile("CITATION.cff", bundleCitationDocument)
	repository.WriteExecutable("bin/run", "#!/bin/sh\n")
	releaseCommit := repository.Commit("Release 0.1.0")
	repository.AnnotatedTag("v0.1.0", releaseCommit)
	repository.WriteUntracked("scratch.txt", "not released\n")

	service := archive.NewService(nil, nil, settings.Defaults(), nil)
	bundle, buildError := service.Build(repository.Path)
	require.NoError(testInstance, buildError)

	projectName := filepath.Base(repository.Path)
	require.Equal(testInstance, filepath.Join(repository.Path, "release", "v0.1.0"), bundle.Directory)
	require.Equal(testInstance, archive.ArchiveName(projectName, "v0.1.0"), bundle.ArchiveName)

	archiveBytes, readError := os.ReadFile(bundle.ArchivePath)
	require.NoError(testInstance, readError)
	_, entries := readArchive(testInstance, archiveBytes)
	entryNames := []string{}
	for _, entry := range entries {
		entryNames = append(entryNames, entry.header.Name)
	}
	prefix := projectName + "-v0.1.0/"
	require.Equal(testInstance, []string{prefix + "CITATION.cff", prefix + "README.md", prefix + "bin/run"}, entryNames)
	require.Equal(testInstance, int64(0o755), entries[2].header.Mode)
}

func TestServiceRequiresReleaseTag(testInstance *testing.T) {
	repository := gitfixture.New(testInstance)
	repository.WriteFile("README.md", "# Demo\n")
	repository.Commit("Work in progress")

	service := archive.NewService(nil, nil, settings.Defaults(), nil)
	_, buildError := service.Build(repository.Path)
	require.ErrorIs(testInstance, buildError, gitrepo.ErrUntaggedHead)

	_, statError := os.Stat(filepath.Join(repository.Path, "release"))
	require.True(testInstance, os.IsNotExist(statError))
}

func TestServiceArchiveDoesNotDependOnCheckoutDirectory(testInstance *testing.T) {
	testCases := []struct {
		name         string
		originURL    string
		declaredName string
		expectedName string
	}{
		{name: "origin_repository_name", originURL: "https://codeberg.org/alice/demo.git", expectedName: "demo-v0.1.0.tar.gz"},
		{name: "declared_project_name", originURL: "", declaredName: "scholar", expectedName: "scholar-v0.1.0.tar.gz"},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf("%d_%s", testCaseIndex, testCase.name), func(subtest *testing.T) {
			configuration := settings.Defaults()
			configuration.ProjectName = testCase.declaredName

			checksums := []string{}
			for _, checkoutName := range []string{"demo", "demo-clone"} {
				repository := gitfixture.NewAt(subtest, filepath.Join(subtest.TempDir(), checkoutName))
				repository.WriteFile("README.md", "# Demo\n")
				repository.WriteFile("CITATION.cff", bundleCitationDocument)
				releaseCommit := repository.Commit("Release 0.1.0")
				repository.Tag("v0.1.0", releaseCommit)
				if len(testCase.originURL) > 0 {
					repository.SetOrigin(testCase.originURL)
				}

				bundle, buildError := archive.NewService(nil, nil, configuration, nil).Build(repository.Path)
				require.NoError(subtest, buildError)
				require.Equal(subtest, testCase.expectedName, bundle.ArchiveName)
				checksums = append(checksums, bundle.Checksum)
			}
			require.Equal(subtest, checksums[0], checksums[1])
		})
	}
}
