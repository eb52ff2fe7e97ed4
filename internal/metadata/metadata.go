// Package metadata maps citation records onto the deposit metadata document
// written next to every release archive.
package metadata

import (
	"strings"

	"github.com/goccy/go-json"

	"github.com/temirov/release-scholar/internal/citation"
	"github.com/temirov/release-scholar/internal/releaseerrors"
)

// FileName is the bundle file that holds the encoded metadata.
const FileName = "metadata.json"

const (
	uploadTypeSoftwareConstant      = "software"
	relationSupplementConstant      = "isSupplementTo"
	relatedResourceTypeConstant     = "software"
	relatedSchemeURLConstant        = "url"
	encodeMetadataOperationConstant = "encode release metadata"
	decodeMetadataOperationConstant = "decode release metadata"
	jsonIndentConstant              = "  "
	trailingNewlineConstant         = '\n'
)

// Creator is one author entry in deposit metadata.
type Creator struct {
	Name        string `json:"name"`
	ORCID       string `json:"orcid,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
}

// RelatedIdentifier links the deposit to an external resource.
type RelatedIdentifier struct {
	Identifier   string `json:"identifier"`
	Relation     string `json:"relation"`
	ResourceType string `json:"resource_type,omitempty"`
	Scheme       string `json:"scheme"`
}

// ReleaseMetadata is the deposit description of one release.
type ReleaseMetadata struct {
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	Creators           []Creator           `json:"creators"`
	Keywords           []string            `json:"keywords,omitempty"`
	License            string              `json:"license,omitempty"`
	Version            string              `json:"version,omitempty"`
	PublicationDate    string              `json:"publication_date,omitempty"`
	UploadType         string              `json:"upload_type"`
	Language           string              `json:"language,omitempty"`
	RelatedIdentifiers []RelatedIdentifier `json:"related_identifiers,omitempty"`
}

// Document wraps ReleaseMetadata the way deposit services expect it.
type Document struct {
	Metadata ReleaseMetadata `json:"metadata"`
}

// FromCitation derives release metadata from record. language is the
// configured ISO 639-3 code.
func FromCitation(record citation.Record, language string) ReleaseMetadata {
	creators := make([]Creator, 0, len(record.Authors))
	for _, author := range record.Authors {
		creator := Creator{Name: author.CreatorName(), Affiliation: strings.TrimSpace(author.Affiliation)}
		if orcid := strings.TrimSpace(author.ORCID); len(orcid) > 0 {
			creator.ORCID = citation.NormalizeORCID(orcid)
		}
		creators = append(creators, creator)
	}

	releaseMetadata := ReleaseMetadata{
		Title:           strings.TrimSpace(record.Title),
		Description:     strings.TrimSpace(record.Abstract),
		Creators:        creators,
		Keywords:        append([]string(nil), record.Keywords...),
		License:         strings.TrimSpace(record.License),
		Version:         strings.TrimSpace(record.Version),
		PublicationDate: strings.TrimSpace(record.DateReleased),
		UploadType:      uploadTypeSoftwareConstant,
		Language:        strings.TrimSpace(language),
	}
	if repositoryCode := strings.TrimSpace(record.RepositoryCode); len(repositoryCode) > 0 {
		releaseMetadata.RelatedIdentifiers = []RelatedIdentifier{{
			Identifier:   repositoryCode,
			Relation:     relationSupplementConstant,
			ResourceType: relatedResourceTypeConstant,
			Scheme:       relatedSchemeURLConstant,
		}}
	}
	return releaseMetadata
}

// Encode renders releaseMetadata wrapped in a Document as indented JSON with
// a trailing newline.
func Encode(releaseMetadata ReleaseMetadata) ([]byte, error) {
	encoded, encodeError := json.MarshalIndent(Document{Metadata: releaseMetadata}, "", jsonIndentConstant)
	if encodeError != nil {
		return nil, releaseerrors.New(releaseerrors.KindIO, encodeMetadataOperationConstant, encodeError)
	}
	return append(encoded, trailingNewlineConstant), nil
}

// Decode reads a Document produced by Encode.
func Decode(content []byte) (ReleaseMetadata, error) {
	var document Document
	if decodeError := json.Unmarshal(content, &document); decodeError != nil {
		return ReleaseMetadata{}, releaseerrors.New(releaseerrors.KindParse, decodeMetadataOperationConstant, decodeError)
	}
	return document.Metadata, nil
}
