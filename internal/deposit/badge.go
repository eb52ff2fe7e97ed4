package deposit

import (
	"fmt"
	"strings"
)

const (
	badgeTemplateConstant     = "[![DOI](https://zenodo.org/badge/DOI/%s.svg)](%s)"
	doiResolverTemplate       = "https://doi.org/%s"
	existingBadgeHostConstant = "doi.org"
	existingBadgeIssuerMarker = "zenodo"
	markdownHeadingPrefix     = "#"
)

// DOIURL returns doiURL, or the doi.org resolver URL of doi when empty.
func DOIURL(doi string, doiURL string) string {
	if len(strings.TrimSpace(doiURL)) > 0 {
		return doiURL
	}
	return fmt.Sprintf(doiResolverTemplate, doi)
}

// InsertDOIBadge places a DOI badge below the first heading of readme, or at
// the top when the first line is not a heading. It reports false and leaves
// readme untouched when a DOI badge is already present.
func InsertDOIBadge(readme string, doi string, doiURL string) (string, bool) {
	if strings.Contains(readme, existingBadgeHostConstant) && strings.Contains(readme, existingBadgeIssuerMarker) {
		return readme, false
	}
	badge := fmt.Sprintf(badgeTemplateConstant, doi, DOIURL(doi, doiURL))

	firstLine, remainder, hasNewline := strings.Cut(readme, "\n")
	if hasNewline && strings.HasPrefix(firstLine, markdownHeadingPrefix) {
		return firstLine + "\n\n" + badge + "\n" + remainder, true
	}
	return badge + "\n\n" + readme, true
}
