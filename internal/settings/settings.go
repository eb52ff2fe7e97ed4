// Package settings resolves release-scholar configuration from defaults, the
// machine-wide file, the project file, and the environment.
package settings

import (
	"regexp"
	"strings"

	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/utils"
)

// Forge identifiers understood by the mirror and metadata collaborators.
const (
	ForgeCodeberg = "codeberg"
	ForgeGitHub   = "github"
	ForgeGitLab   = "gitlab"
)

const (
	defaultForgeConstant          = ForgeCodeberg
	defaultArchiveDirConstant     = "release"
	defaultLanguageConstant       = "eng"
	defaultWarnTotalBytesConstant = 50_000_000
	defaultFailTotalBytesConstant = 200_000_000
	defaultWarnFileBytesConstant  = 1_000_000
	defaultFailFileBytesConstant  = 10_000_000

	validateOperationConstant         = "validate configuration"
	unknownForgeTemplateConstant      = "unknown forge %q (expected codeberg, github, or gitlab)"
	invalidLanguageTemplateConstant   = "language %q must be a three-letter ISO 639-2 code"
	negativeThresholdTemplateConstant = "size.%s must not be negative"
	invertedThresholdTemplateConstant = "size.%s (%d) must be lower than size.%s (%d)"
	emptyArchiveDirMessageConstant    = "archive_dir must not be empty"
	absoluteArchiveDirTemplate        = "archive_dir %q must be relative to the project"
)

var languageCodePattern = regexp.MustCompile(`^[a-z]{3}$`)

// Author holds default author details used when scaffolding citation files.
type Author struct {
	Name  string `mapstructure:"name"`
	ORCID string `mapstructure:"orcid"`
	Email string `mapstructure:"email"`
}

// Mirrors holds forge credentials for push mirror configuration.
type Mirrors struct {
	CodebergUser  string `mapstructure:"codeberg_user"`
	CodebergToken string `mapstructure:"codeberg_token"`
	GitHubUser    string `mapstructure:"github_user"`
	GitHubToken   string `mapstructure:"github_token"`
	GitLabUser    string `mapstructure:"gitlab_user"`
	GitLabToken   string `mapstructure:"gitlab_token"`
}

// SizeThresholds bounds tracked content sizes in bytes.
type SizeThresholds struct {
	WarnTotalBytes int64 `mapstructure:"warn_total_bytes"`
	FailTotalBytes int64 `mapstructure:"fail_total_bytes"`
	WarnFileBytes  int64 `mapstructure:"warn_file_bytes"`
	FailFileBytes  int64 `mapstructure:"fail_file_bytes"`
}

// Deposit holds deposit service access tokens.
type Deposit struct {
	Token        string `mapstructure:"token"`
	SandboxToken string `mapstructure:"sandbox_token"`
}

// Common holds logging preferences shared by every command.
type Common struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Settings is the validated configuration consumed by every command.
type Settings struct {
	ProjectName   string         `mapstructure:"project_name"`
	Forge         string         `mapstructure:"forge"`
	ForgeURL      string         `mapstructure:"forge_url"`
	RequiredFiles []string       `mapstructure:"required_files"`
	ArchiveDir    string         `mapstructure:"archive_dir"`
	Language      string         `mapstructure:"language"`
	Author        Author         `mapstructure:"author"`
	Mirrors       Mirrors        `mapstructure:"mirrors"`
	Size          SizeThresholds `mapstructure:"size"`
	Deposit       Deposit        `mapstructure:"deposit"`
	Common        Common         `mapstructure:"common"`
}

// Defaults returns the built-in configuration.
func Defaults() Settings {
	return Settings{
		Forge:         defaultForgeConstant,
		RequiredFiles: []string{"LICENSE", "README.md", "CHANGELOG.md", "CITATION.cff"},
		ArchiveDir:    defaultArchiveDirConstant,
		Language:      defaultLanguageConstant,
		Size: SizeThresholds{
			WarnTotalBytes: defaultWarnTotalBytesConstant,
			FailTotalBytes: defaultFailTotalBytesConstant,
			WarnFileBytes:  defaultWarnFileBytesConstant,
			FailFileBytes:  defaultFailFileBytesConstant,
		},
		Common: Common{
			LogLevel:  string(utils.LogLevelInfo),
			LogFormat: string(utils.LogFormatConsole),
		},
	}
}

// Resolve merges the project layer over the global layer field by field and
// fills the remaining gaps from Defaults. Empty strings, empty lists, and
// zero thresholds count as unset.
func Resolve(project Settings, global Settings) Settings {
	return merge(merge(project, global), Defaults())
}

func merge(primary Settings, fallback Settings) Settings {
	return Settings{
		ProjectName:   firstString(primary.ProjectName, fallback.ProjectName),
		Forge:         firstString(primary.Forge, fallback.Forge),
		ForgeURL:      firstString(primary.ForgeURL, fallback.ForgeURL),
		RequiredFiles: firstList(primary.RequiredFiles, fallback.RequiredFiles),
		ArchiveDir:    firstString(primary.ArchiveDir, fallback.ArchiveDir),
		Language:      firstString(primary.Language, fallback.Language),
		Author: Author{
			Name:  firstString(primary.Author.Name, fallback.Author.Name),
			ORCID: firstString(primary.Author.ORCID, fallback.Author.ORCID),
			Email: firstString(primary.Author.Email, fallback.Author.Email),
		},
		Mirrors: Mirrors{
			CodebergUser:  firstString(primary.Mirrors.CodebergUser, fallback.Mirrors.CodebergUser),
			CodebergToken: firstString(primary.Mirrors.CodebergToken, fallback.Mirrors.CodebergToken),
			GitHubUser:    firstString(primary.Mirrors.GitHubUser, fallback.Mirrors.GitHubUser),
			GitHubToken:   firstString(primary.Mirrors.GitHubToken, fallback.Mirrors.GitHubToken),
			GitLabUser:    firstString(primary.Mirrors.GitLabUser, fallback.Mirrors.GitLabUser),
			GitLabToken:   firstString(primary.Mirrors.GitLabToken, fallback.Mirrors.GitLabToken),
		},
		Size: SizeThresholds{
			WarnTotalBytes: firstNonZero(primary.Size.WarnTotalBytes, fallback.Size.WarnTotalBytes),
			FailTotalBytes: firstNonZero(primary.Size.FailTotalBytes, fallback.Size.FailTotalBytes),
			WarnFileBytes:  firstNonZero(primary.Size.WarnFileBytes, fallback.Size.WarnFileBytes),
			FailFileBytes:  firstNonZero(primary.Size.FailFileBytes, fallback.Size.FailFileBytes),
		},
		Deposit: Deposit{
			Token:        firstString(primary.Deposit.Token, fallback.Deposit.Token),
			SandboxToken: firstString(primary.Deposit.SandboxToken, fallback.Deposit.SandboxToken),
		},
		Common: Common{
			LogLevel:  firstString(primary.Common.LogLevel, fallback.Common.LogLevel),
			LogFormat: firstString(primary.Common.LogFormat, fallback.Common.LogFormat),
		},
	}
}

// Validate reports the first invalid value as a ConfigError.
func (configuration Settings) Validate() error {
	switch strings.ToLower(configuration.Forge) {
	case ForgeCodeberg, ForgeGitHub, ForgeGitLab:
	default:
		return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, unknownForgeTemplateConstant, configuration.Forge)
	}

	if !languageCodePattern.MatchString(configuration.Language) {
		return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, invalidLanguageTemplateConstant, configuration.Language)
	}

	archiveDir := strings.TrimSpace(configuration.ArchiveDir)
	if len(archiveDir) == 0 {
		return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, emptyArchiveDirMessageConstant)
	}
	if strings.HasPrefix(archiveDir, "/") {
		return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, absoluteArchiveDirTemplate, archiveDir)
	}

	thresholds := []struct {
		name  string
		value int64
	}{
		{name: "warn_total_bytes", value: configuration.Size.WarnTotalBytes},
		{name: "fail_total_bytes", value: configuration.Size.FailTotalBytes},
		{name: "warn_file_bytes", value: configuration.Size.WarnFileBytes},
		{name: "fail_file_bytes", value: configuration.Size.FailFileBytes},
	}
	for _, threshold := range thresholds {
		if threshold.value < 0 {
			return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, negativeThresholdTemplateConstant, threshold.name)
		}
	}
	if configuration.Size.WarnTotalBytes >= configuration.Size.FailTotalBytes {
		return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, invertedThresholdTemplateConstant, "warn_total_bytes", configuration.Size.WarnTotalBytes, "fail_total_bytes", configuration.Size.FailTotalBytes)
	}
	if configuration.Size.WarnFileBytes >= configuration.Size.FailFileBytes {
		return releaseerrors.Newf(releaseerrors.KindConfig, validateOperationConstant, invertedThresholdTemplateConstant, "warn_file_bytes", configuration.Size.WarnFileBytes, "fail_file_bytes", configuration.Size.FailFileBytes)
	}

	if logLevelError := utils.ValidateLogLevel(configuration.Common.LogLevel); logLevelError != nil {
		return releaseerrors.New(releaseerrors.KindConfig, validateOperationConstant, logLevelError)
	}
	if logFormatError := utils.ValidateLogFormat(configuration.Common.LogFormat); logFormatError != nil {
		return releaseerrors.New(releaseerrors.KindConfig, validateOperationConstant, logFormatError)
	}
	return nil
}

func firstString(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}

func firstList(values ...[]string) []string {
	for _, value := range values {
		cleaned := make([]string, 0, len(value))
		for _, entry := range value {
			if trimmed := strings.TrimSpace(entry); len(trimmed) > 0 {
				cleaned = append(cleaned, trimmed)
			}
		}
		if len(cleaned) > 0 {
			return cleaned
		}
	}
	return nil
}

func firstNonZero(values ...int64) int64 {
	for _, value := range values {
		if value != 0 {
			return value
		}
	}
	return 0
}
