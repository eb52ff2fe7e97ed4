// Package secrets matches file content against a fixed set of credential
// shapes and flags tracked files whose names suggest sensitive material.
package secrets

import (
	"path"
	"regexp"
	"strings"
)

// Confidence separates rules that almost always indicate a real secret from
// heuristics that are frequently false positives.
type Confidence int

// Rule confidence levels.
const (
	ConfidenceLow Confidence = iota
	ConfidenceHigh
)

// Rule is a named credential pattern.
type Rule struct {
	Name       string
	Confidence Confidence
	pattern    *regexp.Regexp
}

// Matches reports whether content contains the rule's pattern.
func (rule Rule) Matches(content []byte) bool {
	return rule.pattern.Match(content)
}

var defaultRules = []Rule{
	{Name: "Private key", Confidence: ConfidenceHigh, pattern: regexp.MustCompile(`-----BEGIN\s+(RSA |DSA |EC |OPENSSH )?PRIVATE KEY-----`)},
	{Name: "API key/token", Confidence: ConfidenceHigh, pattern: regexp.MustCompile(`(?i)(api[_-]?key|api[_-]?secret|access[_-]?token)\s*[:=]\s*['"]?\w{16,}`)},
	{Name: "Password assignment", Confidence: ConfidenceLow, pattern: regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[:=]\s*['"]?[^\s'"]+`)},
	{Name: "AWS access key", Confidence: ConfidenceHigh, pattern: regexp.MustCompile(`AKIA[0-9A-Z]{16}`)},
	{Name: "GitHub personal access token", Confidence: ConfidenceHigh, pattern: regexp.MustCompile(`ghp_[A-Za-z0-9_]{36}`)},
	{Name: "GitLab personal access token", Confidence: ConfidenceHigh, pattern: regexp.MustCompile(`glpat-[A-Za-z0-9_\-]{20}`)},
}

// DefaultRules returns the fixed rule set in declaration order.
func DefaultRules() []Rule {
	return append([]Rule(nil), defaultRules...)
}

// HighConfidenceRules returns only the rules trusted enough for history scans.
func HighConfidenceRules() []Rule {
	selected := []Rule{}
	for _, rule := range defaultRules {
		if rule.Confidence == ConfidenceHigh {
			selected = append(selected, rule)
		}
	}
	return selected
}

var sensitiveFilePatterns = []string{
	".env",
	".pem",
	".key",
	"id_rsa",
	"id_dsa",
	"id_ed25519",
	"credentials.json",
	".sqlite",
	".DS_Store",
	".p12",
	".pfx",
}

// IsSensitiveFileName reports whether the base name of filePath equals or
// ends with one of the sensitive filename patterns.
func IsSensitiveFileName(filePath string) bool {
	baseName := path.Base(filePath)
	for _, pattern := range sensitiveFilePatterns {
		if baseName == pattern || strings.HasSuffix(baseName, pattern) {
			return true
		}
	}
	return false
}

// RecommendedGitignorePatterns lists entries every release .gitignore should carry.
func RecommendedGitignorePatterns() []string {
	return []string{".env", ".DS_Store", "*.pem", "*.key", "id_rsa"}
}
