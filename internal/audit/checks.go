package audit

import (
	"fmt"
	"path"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-enry/go-enry/v2"

	"github.com/temirov/release-scholar/internal/citation"
	"github.com/temirov/release-scholar/internal/ecosystem"
)

const (
	gitignoreFileNameConstant = ".gitignore"

	noCommitsMessageConstant            = "Repository has no commits"
	cleanTreeMessageConstant            = "Working tree is clean"
	dirtyTreeMessageConstant            = "Working tree has uncommitted changes"
	treeStatusUnreadableTemplate        = "Working tree status could not be read: %v"
	taggedHeadTemplateConstant          = "HEAD is tagged: %s (version %s)"
	untaggedHeadMessageConstant         = "HEAD has no semver tag (expected vX.Y.Z)"
	untaggedHeadWithTagsTemplate        = "HEAD has no semver tag (expected vX.Y.Z); found: %s"
	requiredFilePresentTemplateConstant = "%s exists"
	requiredFileMissingTemplateConstant = "%s is missing"

	citationMissingMessageConstant    = citation.FileName + " not found"
	citationInvalidTemplateConstant   = citation.FileName + " is not valid: %v"
	citationFieldPresentTemplate      = "%s present"
	citationFieldMissingTemplate      = "%s missing"
	citationFieldOptionalMissing      = "%s missing (recommended)"
	citationAuthorsFoundTemplate      = "%d author(s) found"
	citationNoAuthorsMessageConstant  = "No authors listed"
	citationAuthorUnnamedTemplate     = "Author %d has no name"
	citationORCIDValidTemplate        = "Author %d ORCID valid"
	citationORCIDInvalidTemplate      = "Author %d ORCID invalid: %v"
	citationVersionMatchesTemplate    = "version matches git tag (%s)"
	citationVersionMismatchTemplate   = "version '%s' does not match git tag '%s'"
	citationVersionUncheckedMessage   = "version not compared: HEAD has no release tag"
	citationFieldCFFVersionConstant   = "cff-version"
	citationFieldDateReleasedConstant = "date-released"

	noEcosystemMessageConstant         = "No language ecosystem detected"
	detectedEcosystemsTemplateConstant = "Detected ecosystems: %s"
	gitignoreMissingMessageConstant    = gitignoreFileNameConstant + " not found"
	artifactPatternMissingTemplate     = "Missing build artifact pattern: %s (%s)"
	artifactPatternsCoveredMessage     = "Covers build artifact patterns for detected ecosystems"

	totalSizeFailTemplateConstant    = "Tracked files total %s, above the %s limit"
	totalSizeWarnTemplateConstant    = "Tracked files total %s, consider reducing below %s"
	totalSizePassTemplateConstant    = "Tracked files total %s (%d files)"
	fileSizeFailTemplateConstant     = "File is %s; remove it or use Git LFS"
	fileSizeWarnTemplateConstant     = "File is %s"
	historyBlobWarnTemplateConstant  = "File of %s remains in git history after removal"
	noLargeFilesTemplateConstant     = "No large files detected (over %s)"
	binaryFileTemplateConstant       = "Binary file tracked (%s)"
	vendoredDirectoryMessageConstant = "Vendored dependency directory tracked"
	noUnexpectedFilesMessageConstant = "No unexpected binary or vendored files"
)

var allowedBinaryExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {}, ".bmp": {}, ".ico": {}, ".webp": {}, ".tif": {}, ".tiff": {},
	".pdf": {}, ".woff": {}, ".woff2": {}, ".ttf": {}, ".otf": {}, ".eot": {},
}

var vendoredDirectoryNames = map[string]struct{}{
	"node_modules":     {},
	"vendor":           {},
	"third_party":      {},
	"bower_components": {},
	".venv":            {},
	"venv":             {},
	"site-packages":    {},
}

func (engine *Engine) checkGit(state runState) []Finding {
	collector := newFindingCollector(CategoryGit)
	if len(state.inputs.Snapshot.Commit()) == 0 {
		collector.fail(noCommitsMessageConstant)
		return collector.findings
	}

	switch {
	case state.inputs.StatusError != nil:
		collector.fail(fmt.Sprintf(treeStatusUnreadableTemplate, state.inputs.StatusError))
	case state.inputs.Snapshot.Clean():
		collector.pass(cleanTreeMessageConstant)
	default:
		collector.fail(dirtyTreeMessageConstant)
	}

	switch {
	case state.tagged:
		collector.pass(fmt.Sprintf(taggedHeadTemplateConstant, state.releaseTag.Name, state.releaseTag.Version))
	case len(state.inputs.Tags) > 0:
		collector.fail(fmt.Sprintf(untaggedHeadWithTagsTemplate, strings.Join(state.inputs.Tags, ", ")))
	default:
		collector.fail(untaggedHeadMessageConstant)
	}
	return collector.findings
}

func (engine *Engine) checkFiles(state runState) []Finding {
	collector := newFindingCollector(CategoryFiles)
	for _, requiredFile := range engine.configuration.RequiredFiles {
		if state.inputs.Snapshot.Contains(requiredFile) {
			collector.pass(fmt.Sprintf(requiredFilePresentTemplateConstant, requiredFile))
			continue
		}
		collector.failPath(fmt.Sprintf(requiredFileMissingTemplateConstant, requiredFile), requiredFile)
	}
	return collector.findings
}

func (engine *Engine) checkCitation(state runState) []Finding {
	collector := newFindingCollector(CategoryCitation)
	if !state.hasCitation {
		collector.fail(citationMissingMessageConstant)
		return collector.findings
	}

	record, parseError := citation.Parse(state.citationRaw)
	if parseError != nil {
		collector.failPath(fmt.Sprintf(citationInvalidTemplateConstant, parseError), citation.FileName)
		return collector.findings
	}

	missingFields := make(map[string]struct{})
	for _, fieldName := range record.MissingRequiredFields() {
		missingFields[fieldName] = struct{}{}
	}

	reportOptionalField(collector, citationFieldCFFVersionConstant, record.CFFVersion)
	reportRequiredField(collector, citation.FieldTitle, missingFields)

	if _, authorsMissing := missingFields[citation.FieldAuthors]; authorsMissing {
		collector.fail(citationNoAuthorsMessageConstant)
	} else {
		collector.pass(fmt.Sprintf(citationAuthorsFoundTemplate, len(record.Authors)))
	}
	for authorIndex, author := range record.Authors {
		authorNumber := authorIndex + 1
		if !author.HasName() {
			collector.fail(fmt.Sprintf(citationAuthorUnnamedTemplate, authorNumber))
		}
		if len(strings.TrimSpace(author.ORCID)) == 0 {
			continue
		}
		if orcidError := citation.ValidateORCID(author.ORCID); orcidError != nil {
			collector.fail(fmt.Sprintf(citationORCIDInvalidTemplate, authorNumber, orcidError))
			continue
		}
		collector.pass(fmt.Sprintf(citationORCIDValidTemplate, authorNumber))
	}

	reportRequiredField(collector, citation.FieldVersion, missingFields)
	if _, versionMissing := missingFields[citation.FieldVersion]; !versionMissing {
		version := strings.TrimSpace(record.Version)
		switch {
		case !state.tagged:
			collector.warn(citationVersionUncheckedMessage)
		case version == state.releaseTag.Version:
			collector.pass(fmt.Sprintf(citationVersionMatchesTemplate, version))
		default:
			collector.fail(fmt.Sprintf(citationVersionMismatchTemplate, version, state.releaseTag.Name))
		}
	}

	reportRequiredField(collector, citation.FieldLicense, missingFields)
	reportOptionalField(collector, citationFieldDateReleasedConstant, record.DateReleased)
	return collector.findings
}

func reportRequiredField(collector *findingCollector, fieldName string, missingFields map[string]struct{}) {
	if _, missing := missingFields[fieldName]; missing {
		collector.fail(fmt.Sprintf(citationFieldMissingTemplate, fieldName))
		return
	}
	collector.pass(fmt.Sprintf(citationFieldPresentTemplate, fieldName))
}

func reportOptionalField(collector *findingCollector, fieldName string, value string) {
	if len(strings.TrimSpace(value)) == 0 {
		collector.warn(fmt.Sprintf(citationFieldOptionalMissing, fieldName))
		return
	}
	collector.pass(fmt.Sprintf(citationFieldPresentTemplate, fieldName))
}

func (engine *Engine) checkGitignore(state runState) []Finding {
	collector := newFindingCollector(CategoryGitignore)
	if len(state.ecosystems) == 0 {
		collector.pass(noEcosystemMessageConstant)
		return collector.findings
	}
	collector.pass(fmt.Sprintf(detectedEcosystemsTemplateConstant, strings.Join(state.ecosystems.Strings(), ", ")))

	if !state.hasIgnore {
		collector.warn(gitignoreMissingMessageConstant)
	}

	missingAny := false
	for _, artifact := range ecosystem.ArtifactPatterns(state.ecosystems) {
		if gitignoreCovers(state.gitignore, artifact.Pattern) {
			continue
		}
		missingAny = true
		collector.warnPath(fmt.Sprintf(artifactPatternMissingTemplate, artifact.Pattern, artifact.Description), gitignoreFileNameConstant)
	}
	if !missingAny {
		collector.pass(artifactPatternsCoveredMessage)
	}
	return collector.findings
}

func (engine *Engine) checkSize(state runState) []Finding {
	collector := newFindingCollector(CategorySize)
	thresholds := engine.configuration.Size
	projectSnapshot := state.inputs.Snapshot

	totalSize := projectSnapshot.TotalSize()
	switch {
	case totalSize > thresholds.FailTotalBytes:
		collector.fail(fmt.Sprintf(totalSizeFailTemplateConstant, humanBytes(totalSize), humanBytes(thresholds.FailTotalBytes)))
	case totalSize > thresholds.WarnTotalBytes:
		collector.warn(fmt.Sprintf(totalSizeWarnTemplateConstant, humanBytes(totalSize), humanBytes(thresholds.WarnTotalBytes)))
	default:
		collector.pass(fmt.Sprintf(totalSizePassTemplateConstant, humanBytes(totalSize), projectSnapshot.Len()))
	}

	largeFileFound := false
	unexpectedFileFound := false
	reportedVendorDirectories := make(map[string]struct{})
	for _, trackedFile := range projectSnapshot.Files() {
		fileSize := trackedFile.Size()
		switch {
		case fileSize > thresholds.FailFileBytes:
			largeFileFound = true
			collector.failPath(fmt.Sprintf(fileSizeFailTemplateConstant, humanBytes(fileSize)), trackedFile.Path)
		case fileSize > thresholds.WarnFileBytes:
			largeFileFound = true
			collector.warnPath(fmt.Sprintf(fileSizeWarnTemplateConstant, humanBytes(fileSize)), trackedFile.Path)
		}

		if vendorDirectory, vendored := vendoredDirectory(trackedFile.Path); vendored {
			unexpectedFileFound = true
			if _, reported := reportedVendorDirectories[vendorDirectory]; !reported {
				reportedVendorDirectories[vendorDirectory] = struct{}{}
				collector.warnPath(vendoredDirectoryMessageConstant, vendorDirectory)
			}
			continue
		}

		if !trackedFile.Symlink && isUnexpectedBinary(trackedFile.Path, trackedFile.Content) {
			unexpectedFileFound = true
			collector.warnPath(fmt.Sprintf(binaryFileTemplateConstant, humanBytes(fileSize)), trackedFile.Path)
		}
	}

	if state.history != nil {
		for _, blob := range state.history.largeBlobs {
			largeFileFound = true
			collector.warnPath(fmt.Sprintf(historyBlobWarnTemplateConstant, humanBytes(blob.size)), blob.path)
		}
	}

	if !largeFileFound {
		collector.pass(fmt.Sprintf(noLargeFilesTemplateConstant, humanBytes(thresholds.WarnFileBytes)))
	}
	if !unexpectedFileFound {
		collector.pass(noUnexpectedFilesMessageConstant)
	}
	return collector.findings
}

func humanBytes(size int64) string {
	if size < 0 {
		size = 0
	}
	return humanize.Bytes(uint64(size))
}

func isUnexpectedBinary(filePath string, content []byte) bool {
	if len(content) == 0 || !enry.IsBinary(content) {
		return false
	}
	_, allowed := allowedBinaryExtensions[strings.ToLower(path.Ext(filePath))]
	return !allowed
}

// vendoredDirectory returns the directory prefix, with trailing slash, of the
// first vendored directory segment in filePath.
func vendoredDirectory(filePath string) (string, bool) {
	segments := strings.Split(filePath, "/")
	for segmentIndex := 0; segmentIndex < len(segments)-1; segmentIndex++ {
		if _, vendored := vendoredDirectoryNames[segments[segmentIndex]]; vendored {
			return strings.Join(segments[:segmentIndex+1], "/") + "/", true
		}
	}
	return "", false
}

func gitignoreEntries(content []byte) []string {
	entries := []string{}
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) == 0 || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		entries = append(entries, trimmed)
	}
	return entries
}

// gitignoreCovers accepts the pattern itself, its form without a trailing
// slash, and root-anchored or any-depth variants of either.
func gitignoreCovers(entries []string, pattern string) bool {
	bare := strings.TrimSuffix(pattern, "/")
	accepted := map[string]struct{}{
		pattern:         {},
		bare:            {},
		"/" + pattern:   {},
		"/" + bare:      {},
		"**/" + pattern: {},
		"**/" + bare:    {},
	}
	for _, entry := range entries {
		if _, matched := accepted[entry]; matched {
			return true
		}
	}
	return false
}
