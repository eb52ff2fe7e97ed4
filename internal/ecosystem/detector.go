// Package ecosystem infers which language ecosystems a project tree belongs to.
package ecosystem

import (
	"path"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Ecosystem names one supported language ecosystem.
type Ecosystem string

// Supported ecosystems in reporting order.
const (
	Rust   Ecosystem = "Rust"
	Python Ecosystem = "Python"
	Node   Ecosystem = "Node.js"
	Java   Ecosystem = "Java"
	Go     Ecosystem = "Go"
)

// SourceFileThreshold is the number of source files of one language that
// marks an ecosystem as present when no marker file exists.
const SourceFileThreshold = 3

// ArtifactPattern is a .gitignore entry conventionally used for build output.
type ArtifactPattern struct {
	Pattern     string
	Description string
}

type definition struct {
	ecosystem Ecosystem
	markers   []string
	languages []string
	artifacts []ArtifactPattern
}

var definitions = []definition{
	{
		ecosystem: Rust,
		markers:   []string{"Cargo.toml"},
		languages: []string{"Rust"},
		artifacts: []ArtifactPattern{{Pattern: "target/", Description: "Cargo build output"}},
	},
	{
		ecosystem: Python,
		markers:   []string{"pyproject.toml", "setup.py", "setup.cfg", "requirements.txt", "Pipfile"},
		languages: []string{"Python"},
		artifacts: []ArtifactPattern{
			{Pattern: "__pycache__/", Description: "Python bytecode cache"},
			{Pattern: "*.pyc", Description: "Python compiled files"},
			{Pattern: "*.egg-info", Description: "Python package metadata"},
			{Pattern: "dist/", Description: "Python distribution output"},
		},
	},
	{
		ecosystem: Node,
		markers:   []string{"package.json"},
		languages: []string{"JavaScript", "TypeScript"},
		artifacts: []ArtifactPattern{{Pattern: "node_modules/", Description: "Node.js dependencies"}},
	},
	{
		ecosystem: Java,
		markers:   []string{"pom.xml", "build.gradle", "build.gradle.kts"},
		languages: []string{"Java"},
		artifacts: []ArtifactPattern{
			{Pattern: "target/", Description: "Maven build output"},
			{Pattern: "build/", Description: "Gradle build output"},
			{Pattern: "*.class", Description: "Java compiled classes"},
		},
	},
	{
		ecosystem: Go,
		markers:   []string{"go.mod"},
		languages: []string{"Go"},
		artifacts: []ArtifactPattern{{Pattern: "*.test", Description: "Go test binaries"}},
	},
}

// Set is an ordered, duplicate-free collection of ecosystems.
type Set []Ecosystem

// Contains reports whether ecosystem is a member.
func (set Set) Contains(ecosystem Ecosystem) bool {
	for _, member := range set {
		if member == ecosystem {
			return true
		}
	}
	return false
}

// Strings renders the members as display names.
func (set Set) Strings() []string {
	names := make([]string, 0, len(set))
	for _, member := range set {
		names = append(names, string(member))
	}
	return names
}

// Detect returns the ecosystems present in the given slash-separated paths.
// An ecosystem is present when a marker file sits at the project root or at
// least SourceFileThreshold files carry one of its languages' extensions.
func Detect(paths []string) Set {
	rootFiles := make(map[string]struct{})
	languageCounts := make(map[string]int)
	for _, filePath := range paths {
		if !strings.Contains(filePath, "/") {
			rootFiles[filePath] = struct{}{}
		}
		for _, language := range enry.GetLanguagesByExtension(path.Base(filePath), nil, nil) {
			languageCounts[language]++
		}
	}

	detected := Set{}
	for _, candidate := range definitions {
		if hasMarker(rootFiles, candidate.markers) || meetsThreshold(languageCounts, candidate.languages) {
			detected = append(detected, candidate.ecosystem)
		}
	}
	return detected
}

// ArtifactPatterns returns the conventional build-artifact patterns of the
// given ecosystems, deduplicated by pattern in first-seen order.
func ArtifactPatterns(set Set) []ArtifactPattern {
	seenPatterns := make(map[string]struct{})
	patterns := []ArtifactPattern{}
	for _, candidate := range definitions {
		if !set.Contains(candidate.ecosystem) {
			continue
		}
		for _, artifact := range candidate.artifacts {
			if _, seen := seenPatterns[artifact.Pattern]; seen {
				continue
			}
			seenPatterns[artifact.Pattern] = struct{}{}
			patterns = append(patterns, artifact)
		}
	}
	return patterns
}

func hasMarker(rootFiles map[string]struct{}, markers []string) bool {
	for _, marker := range markers {
		if _, present := rootFiles[marker]; present {
			return true
		}
	}
	return false
}

func meetsThreshold(languageCounts map[string]int, languages []string) bool {
	total := 0
	for _, language := range languages {
		total += languageCounts[language]
	}
	return total >= SourceFileThreshold
}
