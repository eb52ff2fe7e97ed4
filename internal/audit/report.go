package audit

import (
	"fmt"
	"io"
	"strings"
)

const (
	reportHeaderConstant          = "Release Scholar Report"
	reportCategoryTemplate        = "%s\n"
	reportFindingTemplate         = "  %s %s%s\n"
	reportPathTemplate            = " (%s)"
	reportPathLineTemplate        = " (%s:%d)"
	reportSummaryTemplate         = "%d passed, %d failed, %d warnings\n"
	reportVerdictReadyConstant    = "Release is ready."
	reportVerdictWarningsConstant = "Release is ready (with warnings)."
	reportVerdictFailedConstant   = "Release is NOT ready."
)

var severityMarkers = map[Severity]string{
	SeverityPass: "[PASS]",
	SeverityWarn: "[WARN]",
	SeverityFail: "[FAIL]",
}

// Verdict is the one-line readiness statement for report.
func Verdict(report Report) string {
	switch report.Overall() {
	case SeverityFail:
		return reportVerdictFailedConstant
	case SeverityWarn:
		return reportVerdictWarningsConstant
	default:
		return reportVerdictReadyConstant
	}
}

// RenderReport writes report as plain text grouped by category.
func RenderReport(writer io.Writer, report Report) error {
	var builder strings.Builder
	builder.WriteString(reportHeaderConstant)
	builder.WriteString("\n\n")

	for _, category := range categoryOrder {
		categoryFindings := report.InCategory(category)
		if len(categoryFindings) == 0 {
			continue
		}
		fmt.Fprintf(&builder, reportCategoryTemplate, category)
		for _, finding := range categoryFindings {
			fmt.Fprintf(&builder, reportFindingTemplate, severityMarkers[finding.Severity], finding.Message, findingLocation(finding))
		}
		builder.WriteString("\n")
	}

	summary := report.Summary()
	fmt.Fprintf(&builder, reportSummaryTemplate, summary.Passed, summary.Failed, summary.Warnings)
	builder.WriteString(Verdict(report))
	builder.WriteString("\n")

	_, writeError := io.WriteString(writer, builder.String())
	return writeError
}

func findingLocation(finding Finding) string {
	switch {
	case len(finding.Path) == 0:
		return ""
	case finding.Line > 0:
		return fmt.Sprintf(reportPathLineTemplate, finding.Path, finding.Line)
	default:
		return fmt.Sprintf(reportPathTemplate, finding.Path)
	}
}
