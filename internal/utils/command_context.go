package utils

import "context"

const (
	projectDirectoryContextKeyConstant      = commandContextKey("projectDirectory")
	configurationFilePathContextKeyConstant = commandContextKey("configurationFilePath")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithProjectDirectory attaches the resolved project directory to the context.
func (accessor CommandContextAccessor) WithProjectDirectory(parentContext context.Context, projectDirectory string) context.Context {
	return accessor.withValue(parentContext, projectDirectoryContextKeyConstant, projectDirectory)
}

// ProjectDirectory extracts the project directory from the context.
func (accessor CommandContextAccessor) ProjectDirectory(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, projectDirectoryContextKeyConstant)
}

// WithConfigurationFilePath attaches the project configuration file path to the context.
func (accessor CommandContextAccessor) WithConfigurationFilePath(parentContext context.Context, configurationFilePath string) context.Context {
	return accessor.withValue(parentContext, configurationFilePathContextKeyConstant, configurationFilePath)
}

// ConfigurationFilePath extracts the project configuration file path from the context.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	return accessor.stringValue(executionContext, configurationFilePathContextKeyConstant)
}

func (accessor CommandContextAccessor) withValue(parentContext context.Context, key commandContextKey, value string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, key, value)
}

func (accessor CommandContextAccessor) stringValue(executionContext context.Context, key commandContextKey) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	value, available := executionContext.Value(key).(string)
	if !available || len(value) == 0 {
		return "", false
	}
	return value, true
}
