package audit

// Category names one audit category.
type Category string

// Audit categories in report order.
const (
	CategoryGit       Category = "Git"
	CategoryFiles     Category = "Files"
	CategoryCitation  Category = "Citation"
	CategorySecurity  Category = "Security"
	CategoryGitignore Category = "Gitignore"
	CategorySize      Category = "Size"
)

var categoryOrder = []Category{
	CategoryGit,
	CategoryFiles,
	CategoryCitation,
	CategorySecurity,
	CategoryGitignore,
	CategorySize,
}

// Categories returns every category in report order.
func Categories() []Category {
	return append([]Category(nil), categoryOrder...)
}

func categoryRank(category Category) int {
	for rank, candidate := range categoryOrder {
		if candidate == category {
			return rank
		}
	}
	return len(categoryOrder)
}

// Severity grades a finding.
type Severity string

// Finding severities from least to most severe.
const (
	SeverityPass Severity = "pass"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

func (severity Severity) weight() int {
	switch severity {
	case SeverityFail:
		return 2
	case SeverityWarn:
		return 1
	default:
		return 0
	}
}

// Finding is one audit result. Path and Line are optional file references;
// Line is zero when unknown.
type Finding struct {
	Category Category
	Severity Severity
	Message  string
	Path     string
	Line     int
}

// Summary counts findings per severity.
type Summary struct {
	Passed   int
	Warnings int
	Failed   int
}

// Report is the ordered result of one audit run.
type Report struct {
	Findings []Finding
}

// Overall is fail when any finding failed, warn when any warned, else pass.
func (report Report) Overall() Severity {
	overall := SeverityPass
	for _, finding := range report.Findings {
		if finding.Severity.weight() > overall.weight() {
			overall = finding.Severity
		}
	}
	return overall
}

// HasFailures reports whether any finding failed.
func (report Report) HasFailures() bool {
	return report.Overall() == SeverityFail
}

// Summary counts findings by severity.
func (report Report) Summary() Summary {
	summary := Summary{}
	for _, finding := range report.Findings {
		switch finding.Severity {
		case SeverityFail:
			summary.Failed++
		case SeverityWarn:
			summary.Warnings++
		default:
			summary.Passed++
		}
	}
	return summary
}

// InCategory returns the findings of one category in report order.
func (report Report) InCategory(category Category) []Finding {
	selected := []Finding{}
	for _, finding := range report.Findings {
		if finding.Category == category {
			selected = append(selected, finding)
		}
	}
	return selected
}

// CategorySeverity is the most severe finding of category, pass when none.
func (report Report) CategorySeverity(category Category) Severity {
	return Report{Findings: report.InCategory(category)}.Overall()
}

type findingCollector struct {
	category Category
	findings []Finding
}

func newFindingCollector(category Category) *findingCollector {
	return &findingCollector{category: category, findings: []Finding{}}
}

func (collector *findingCollector) add(severity Severity, message string, path string, line int) {
	collector.findings = append(collector.findings, Finding{
		Category: collector.category,
		Severity: severity,
		Message:  message,
		Path:     path,
		Line:     line,
	})
}

func (collector *findingCollector) pass(message string) {
	collector.add(SeverityPass, message, "", 0)
}

func (collector *findingCollector) warn(message string) {
	collector.add(SeverityWarn, message, "", 0)
}

func (collector *findingCollector) fail(message string) {
	collector.add(SeverityFail, message, "", 0)
}

func (collector *findingCollector) warnPath(message string, path string) {
	collector.add(SeverityWarn, message, path, 0)
}

func (collector *findingCollector) failPath(message string, path string) {
	collector.add(SeverityFail, message, path, 0)
}
