package secrets

import (
	"bytes"

	"github.com/go-enry/go-enry/v2"
)

// Match is one rule hit inside a blob.
type Match struct {
	Rule Rule
	Path string
	// Line is the 1-based line of the first hit, zero when unknown.
	Line int
}

// Scanner applies a rule set to blobs.
type Scanner struct {
	rules []Rule
}

// NewScanner builds a scanner for rules.
func NewScanner(rules []Rule) *Scanner {
	return &Scanner{rules: append([]Rule(nil), rules...)}
}

// ScanFile scans a working-tree file and reports the first matching line per rule.
func (scanner *Scanner) ScanFile(filePath string, content []byte) []Match {
	return scanner.scan(filePath, content, true)
}

// ScanBlob scans historical content where only the path is meaningful.
func (scanner *Scanner) ScanBlob(filePath string, content []byte) []Match {
	return scanner.scan(filePath, content, false)
}

func (scanner *Scanner) scan(filePath string, content []byte, withLines bool) []Match {
	if len(content) == 0 || enry.IsBinary(content) {
		return nil
	}

	matches := []Match{}
	for _, rule := range scanner.rules {
		location := rule.pattern.FindIndex(content)
		if location == nil {
			continue
		}
		match := Match{Rule: rule, Path: filePath}
		if withLines {
			match.Line = bytes.Count(content[:location[0]], []byte{'\n'}) + 1
		}
		matches = append(matches, match)
	}
	return matches
}

type matchKey struct {
	ruleName string
	path     string
}

// Deduplicator keeps the first match per (rule, path) pair.
type Deduplicator struct {
	seen map[matchKey]struct{}
}

// NewDeduplicator returns an empty deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[matchKey]struct{})}
}

// Admit reports whether match is the first occurrence of its (rule, path) pair.
func (deduplicator *Deduplicator) Admit(match Match) bool {
	key := matchKey{ruleName: match.Rule.Name, path: match.Path}
	if _, duplicate := deduplicator.seen[key]; duplicate {
		return false
	}
	deduplicator.seen[key] = struct{}{}
	return true
}
