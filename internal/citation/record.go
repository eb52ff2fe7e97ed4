// Package citation parses CITATION.cff documents into citation records.
package citation

import (
	"errors"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/release-scholar/internal/releaseerrors"
)

// FileName is the conventional citation document name at the project root.
const FileName = "CITATION.cff"

const (
	parseCitationOperationConstant = "parse " + FileName
	emptyDocumentMessageConstant   = "document is empty"
	notMappingMessageConstant      = "document root must be a mapping"
	authorNameSeparatorConstant    = " "
	creatorNameSeparatorConstant   = ", "
)

// Author is one entry of the authors list. Persons carry family and given
// names; entities carry a single name.
type Author struct {
	FamilyNames string `yaml:"family-names"`
	GivenNames  string `yaml:"given-names"`
	Name        string `yaml:"name"`
	ORCID       string `yaml:"orcid"`
	Email       string `yaml:"email"`
	Affiliation string `yaml:"affiliation"`
}

// DisplayName renders the author as "Given Family" or the entity name.
func (author Author) DisplayName() string {
	if author.FamilyNames == "" && author.GivenNames == "" {
		return strings.TrimSpace(author.Name)
	}
	return strings.TrimSpace(strings.Join(nonEmpty(author.GivenNames, author.FamilyNames), authorNameSeparatorConstant))
}

// CreatorName renders the author as "Family, Given" for bibliographic use.
func (author Author) CreatorName() string {
	if author.FamilyNames == "" && author.GivenNames == "" {
		return strings.TrimSpace(author.Name)
	}
	return strings.Join(nonEmpty(strings.TrimSpace(author.FamilyNames), strings.TrimSpace(author.GivenNames)), creatorNameSeparatorConstant)
}

// HasName reports whether any name field is populated.
func (author Author) HasName() bool {
	return author.DisplayName() != ""
}

// Record is the parsed citation document.
type Record struct {
	CFFVersion     string   `yaml:"cff-version"`
	Type           string   `yaml:"type"`
	Message        string   `yaml:"message"`
	Title          string   `yaml:"title"`
	Abstract       string   `yaml:"abstract"`
	Version        string   `yaml:"version"`
	License        string   `yaml:"license"`
	Authors        []Author `yaml:"authors"`
	RepositoryCode string   `yaml:"repository-code"`
	DateReleased   string   `yaml:"date-released"`
	Keywords       []string `yaml:"keywords"`
}

// Parse decodes a CITATION.cff document. Malformed YAML or a non-mapping
// root yields a ParseError.
func Parse(content []byte) (Record, error) {
	var document yaml.Node
	if decodeError := yaml.Unmarshal(content, &document); decodeError != nil {
		return Record{}, releaseerrors.New(releaseerrors.KindParse, parseCitationOperationConstant, decodeError)
	}
	if len(document.Content) == 0 {
		return Record{}, releaseerrors.New(releaseerrors.KindParse, parseCitationOperationConstant, errors.New(emptyDocumentMessageConstant))
	}
	if document.Content[0].Kind != yaml.MappingNode {
		return Record{}, releaseerrors.New(releaseerrors.KindParse, parseCitationOperationConstant, errors.New(notMappingMessageConstant))
	}

	var record Record
	if decodeError := document.Content[0].Decode(&record); decodeError != nil {
		return Record{}, releaseerrors.New(releaseerrors.KindParse, parseCitationOperationConstant, decodeError)
	}
	return record, nil
}

// Required citation fields as named in CITATION.cff.
const (
	FieldTitle   = "title"
	FieldVersion = "version"
	FieldLicense = "license"
	FieldAuthors = "authors"
)

// MissingRequiredFields lists the required fields that are absent, in a
// fixed order: title, version, license, authors.
func (record Record) MissingRequiredFields() []string {
	missing := []string{}
	if strings.TrimSpace(record.Title) == "" {
		missing = append(missing, FieldTitle)
	}
	if strings.TrimSpace(record.Version) == "" {
		missing = append(missing, FieldVersion)
	}
	if strings.TrimSpace(record.License) == "" {
		missing = append(missing, FieldLicense)
	}
	if len(record.Authors) == 0 {
		missing = append(missing, FieldAuthors)
	}
	return missing
}

func nonEmpty(values ...string) []string {
	kept := make([]string, 0, len(values))
	for _, value := range values {
		if value != "" {
			kept = append(kept, value)
		}
	}
	return kept
}
