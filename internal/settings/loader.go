package settings

import (
	"os"
	"path/filepath"

	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/utils"
)

// ProjectFileName is the project-level configuration file at the repository root.
const ProjectFileName = ".release-scholar.toml"

// EnvironmentPrefix prefixes environment overrides, e.g. RELEASE_SCHOLAR_ARCHIVE_DIR.
const EnvironmentPrefix = "RELEASE_SCHOLAR"

const (
	globalDirectoryNameConstant  = "release-scholar"
	globalFileNameConstant       = "config.toml"
	configurationTypeConstant    = "toml"
	loadGlobalOperationConstant  = "load global configuration"
	loadProjectOperationConstant = "load project configuration"
)

// Sources records which configuration files contributed to the result.
type Sources struct {
	GlobalFile  string
	ProjectFile string
}

// Loader reads the global and project layers and resolves them.
type Loader struct {
	globalConfigurationPath string
	environmentPrefix       string
}

// DefaultGlobalDirectory returns the machine-wide configuration directory, or
// an empty string when no user configuration directory is available.
func DefaultGlobalDirectory() string {
	userConfigurationDirectory, directoryError := os.UserConfigDir()
	if directoryError != nil {
		return ""
	}
	return filepath.Join(userConfigurationDirectory, globalDirectoryNameConstant)
}

// DefaultGlobalPath returns the machine-wide configuration file location, or
// an empty string when no user configuration directory is available.
func DefaultGlobalPath() string {
	globalDirectory := DefaultGlobalDirectory()
	if len(globalDirectory) == 0 {
		return ""
	}
	return filepath.Join(globalDirectory, globalFileNameConstant)
}

// NewLoader builds a loader for the default global path and environment prefix.
func NewLoader() *Loader {
	return NewLoaderWithGlobalPath(DefaultGlobalPath())
}

// NewLoaderWithGlobalPath builds a loader reading the global layer from globalConfigurationPath.
func NewLoaderWithGlobalPath(globalConfigurationPath string) *Loader {
	return &Loader{globalConfigurationPath: globalConfigurationPath, environmentPrefix: EnvironmentPrefix}
}

// Load resolves and validates settings for projectDirectory. An explicit
// project file must exist; the default project file and the global file are
// optional.
func (loader *Loader) Load(projectDirectory string, explicitProjectFile string) (Settings, Sources, error) {
	sources := Sources{}

	global := Settings{}
	if utils.FileExists(loader.globalConfigurationPath) {
		globalLoader := utils.NewConfigurationLoader(configurationTypeConstant, "")
		loaded, loadError := globalLoader.LoadConfiguration(loader.globalConfigurationPath, nil, &global)
		if loadError != nil {
			return Settings{}, sources, releaseerrors.New(releaseerrors.KindConfig, loadGlobalOperationConstant, loadError)
		}
		sources.GlobalFile = loaded.ConfigFileUsed
	}

	projectFile := explicitProjectFile
	if len(projectFile) == 0 {
		projectFile = filepath.Join(projectDirectory, ProjectFileName)
		if !utils.FileExists(projectFile) {
			projectFile = ""
		}
	}

	project := Settings{}
	projectLoader := utils.NewConfigurationLoader(configurationTypeConstant, loader.environmentPrefix)
	loaded, loadError := projectLoader.LoadConfiguration(projectFile, unsetValues(), &project)
	if loadError != nil {
		return Settings{}, sources, releaseerrors.New(releaseerrors.KindConfig, loadProjectOperationConstant, loadError)
	}
	sources.ProjectFile = loaded.ConfigFileUsed

	resolved := Resolve(project, global)
	if validationError := resolved.Validate(); validationError != nil {
		return Settings{}, sources, validationError
	}
	return resolved, sources, nil
}

// unsetValues registers every key with its zero value so environment
// overrides are visible to the decoder without masking lower layers.
func unsetValues() map[string]any {
	return map[string]any{
		"project_name":           "",
		"forge":                  "",
		"forge_url":              "",
		"required_files":         []string{},
		"archive_dir":            "",
		"language":               "",
		"author.name":            "",
		"author.orcid":           "",
		"author.email":           "",
		"mirrors.codeberg_user":  "",
		"mirrors.codeberg_token": "",
		"mirrors.github_user":    "",
		"mirrors.github_token":   "",
		"mirrors.gitlab_user":    "",
		"mirrors.gitlab_token":   "",
		"size.warn_total_bytes":  int64(0),
		"size.fail_total_bytes":  int64(0),
		"size.warn_file_bytes":   int64(0),
		"size.fail_file_bytes":   int64(0),
		"deposit.token":          "",
		"deposit.sandbox_token":  "",
		"common.log_level":       "",
		"common.log_format":      "",
	}
}
