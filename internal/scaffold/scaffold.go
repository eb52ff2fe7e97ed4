// Package scaffold writes the starter release files of a project: a citation
// record, a changelog, a license, and the project configuration file.
package scaffold

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/release-scholar/internal/citation"
	"github.com/temirov/release-scholar/internal/releaseerrors"
	"github.com/temirov/release-scholar/internal/settings"
)

// Scaffolded file names, in the order they are written.
const (
	CitationFileName      = "CITATION.cff"
	ChangelogFileName     = "CHANGELOG.md"
	LicenseFileName       = "LICENSE"
	ConfigurationFileName = settings.ProjectFileName
)

// InitialVersion is the version seeded into new citation and changelog files.
const InitialVersion = "0.1.0"

const (
	licenseIdentifierConstant  = "MIT"
	dateLayoutConstant         = "2006-01-02"
	familyNamePlaceholder      = "Family"
	givenNamePlaceholder       = "Given"
	holderFallbackTemplate     = "The %s authors"
	templatePatternConstant    = "templates/*.tmpl"
	templateSetNameConstant    = "scaffold"
	templateSuffixConstant     = ".tmpl"
	filePermissionConstant     = 0o644
	scaffoldOperationConstant  = "scaffold release files"
	renderOperationConstant    = "render template"
	fileCreatedMessageConstant = "scaffold file created"
	fileSkippedMessageConstant = "scaffold file exists"
	logFieldPathConstant       = "path"
)

//go:embed templates/*.tmpl
var templateFiles embed.FS

var fileTemplates = template.Must(template.New(templateSetNameConstant).Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).ParseFS(templateFiles, templatePatternConstant))

// Author is the citation author seeded from configuration.
type Author struct {
	FamilyName string
	GivenName  string
	ORCID      string
	Email      string
}

// TemplateData is the value every scaffold template is rendered with.
type TemplateData struct {
	Title         string
	Version       string
	Date          string
	Year          int
	License       string
	Holder        string
	RepositoryURL string
	Author        Author
	Forge         string
	ForgeURL      string
	ArchiveDir    string
	Language      string
	RequiredFiles []string
}

// Request describes the project being initialized.
type Request struct {
	ProjectDirectory string
	ProjectName      string
	RepositoryURL    string
	Configuration    settings.Settings
}

// FileResult reports what happened to one scaffolded file.
type FileResult struct {
	Name    string
	Path    string
	Created bool
}

// Scaffolder renders and writes the starter files.
type Scaffolder struct {
	logger *zap.Logger
	clock  func() time.Time
}

// NewScaffolder constructs a Scaffolder. A nil clock uses time.Now.
func NewScaffolder(logger *zap.Logger, clock func() time.Time) *Scaffolder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &Scaffolder{logger: logger, clock: clock}
}

// Generate writes every starter file that does not exist yet. Existing files
// are never modified.
func (scaffolder *Scaffolder) Generate(request Request) ([]FileResult, error) {
	data := NewTemplateData(request, scaffolder.clock())
	results := []FileResult{}
	for _, fileName := range []string{CitationFileName, ChangelogFileName, LicenseFileName, ConfigurationFileName} {
		content, renderError := Render(fileName, data)
		if renderError != nil {
			return results, renderError
		}
		targetPath := filepath.Join(request.ProjectDirectory, fileName)
		created, writeError := writeIfAbsent(targetPath, content)
		if writeError != nil {
			return results, writeError
		}
		if created {
			scaffolder.logger.Info(fileCreatedMessageConstant, zap.String(logFieldPathConstant, targetPath))
		} else {
			scaffolder.logger.Debug(fileSkippedMessageConstant, zap.String(logFieldPathConstant, targetPath))
		}
		results = append(results, FileResult{Name: fileName, Path: targetPath, Created: created})
	}
	return results, nil
}

// NewTemplateData derives template values from the request at instant now.
func NewTemplateData(request Request, now time.Time) TemplateData {
	configuration := request.Configuration
	author := splitAuthorName(configuration.Author.Name)
	author.ORCID = citation.NormalizeORCID(configuration.Author.ORCID)
	author.Email = strings.TrimSpace(configuration.Author.Email)

	holder := strings.TrimSpace(configuration.Author.Name)
	if len(holder) == 0 {
		holder = fmt.Sprintf(holderFallbackTemplate, request.ProjectName)
	}

	utcNow := now.UTC()
	return TemplateData{
		Title:         request.ProjectName,
		Version:       InitialVersion,
		Date:          utcNow.Format(dateLayoutConstant),
		Year:          utcNow.Year(),
		License:       licenseIdentifierConstant,
		Holder:        holder,
		RepositoryURL: request.RepositoryURL,
		Author:        author,
		Forge:         configuration.Forge,
		ForgeURL:      configuration.ForgeURL,
		ArchiveDir:    configuration.ArchiveDir,
		Language:      configuration.Language,
		RequiredFiles: configuration.RequiredFiles,
	}
}

// Render produces the content of fileName.
func Render(fileName string, data TemplateData) ([]byte, error) {
	templateName := strings.TrimPrefix(fileName, ".") + templateSuffixConstant
	var buffer bytes.Buffer
	if executeError := fileTemplates.ExecuteTemplate(&buffer, templateName, data); executeError != nil {
		return nil, releaseerrors.New(releaseerrors.KindConfig, renderOperationConstant, executeError)
	}
	content := buffer.Bytes()
	if !bytes.HasSuffix(content, []byte("\n")) {
		content = append(content, '\n')
	}
	return content, nil
}

// splitAuthorName treats the last word as the family name.
func splitAuthorName(name string) Author {
	fields := strings.Fields(name)
	switch len(fields) {
	case 0:
		return Author{FamilyName: familyNamePlaceholder, GivenName: givenNamePlaceholder}
	case 1:
		return Author{FamilyName: fields[0]}
	default:
		return Author{FamilyName: fields[len(fields)-1], GivenName: strings.Join(fields[:len(fields)-1], " ")}
	}
}

func writeIfAbsent(targetPath string, content []byte) (bool, error) {
	file, openError := os.OpenFile(targetPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePermissionConstant)
	if openError != nil {
		if errors.Is(openError, fs.ErrExist) {
			return false, nil
		}
		return false, releaseerrors.New(releaseerrors.KindIO, scaffoldOperationConstant, openError)
	}
	_, writeError := file.Write(content)
	closeError := file.Close()
	if writeError != nil {
		return false, releaseerrors.New(releaseerrors.KindIO, scaffoldOperationConstant, writeError)
	}
	if closeError != nil {
		return false, releaseerrors.New(releaseerrors.KindIO, scaffoldOperationConstant, closeError)
	}
	return true, nil
}
