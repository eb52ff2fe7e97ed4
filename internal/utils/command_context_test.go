package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/utils"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithProjectDirectory(context.Background(), "/work/project")
	executionContext = accessor.WithConfigurationFilePath(executionContext, "/work/project/.release-scholar.toml")

	projectDirectory, found := accessor.ProjectDirectory(executionContext)
	require.True(testInstance, found)
	require.Equal(testInstance, "/work/project", projectDirectory)

	configurationFilePath, found := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, found)
	require.Equal(testInstance, "/work/project/.release-scholar.toml", configurationFilePath)
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, found := accessor.ProjectDirectory(context.Background())
	require.False(testInstance, found)

	_, found = accessor.ConfigurationFilePath(accessor.WithConfigurationFilePath(context.Background(), ""))
	require.False(testInstance, found)
}
