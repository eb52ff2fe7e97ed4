package gitrepo

import (
	"regexp"

	"github.com/Masterminds/semver/v3"
)

const releaseTagPatternConstant = `^v(\d+\.\d+\.\d+)$`

var releaseTagPattern = regexp.MustCompile(releaseTagPatternConstant)

// ReleaseTag is a tag of the form vMAJOR.MINOR.PATCH.
type ReleaseTag struct {
	Name    string
	Version string
	parsed  *semver.Version
}

// ParseReleaseTag validates tagName against the vMAJOR.MINOR.PATCH form.
func ParseReleaseTag(tagName string) (ReleaseTag, bool) {
	matches := releaseTagPattern.FindStringSubmatch(tagName)
	if matches == nil {
		return ReleaseTag{}, false
	}
	parsedVersion, parseError := semver.StrictNewVersion(matches[1])
	if parseError != nil {
		return ReleaseTag{}, false
	}
	return ReleaseTag{Name: tagName, Version: matches[1], parsed: parsedVersion}, true
}

// SelectReleaseTag picks the greatest release tag by semantic-version order.
// Tags not matching vMAJOR.MINOR.PATCH are ignored.
func SelectReleaseTag(tagNames []string) (ReleaseTag, bool) {
	var selected ReleaseTag
	found := false
	for _, tagName := range tagNames {
		candidate, valid := ParseReleaseTag(tagName)
		if !valid {
			continue
		}
		if !found || candidate.parsed.GreaterThan(selected.parsed) {
			selected = candidate
			found = true
		}
	}
	return selected, found
}
