package audit_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/release-scholar/internal/audit"
)

const expectedRenderedReport = `Release Scholar Report

Git
  [PASS] Working tree is clean

Security
  [FAIL] Possible Private key found in tracked file (keys/deploy.txt:3)
  [WARN] Sensitive file tracked (.env)

1 passed, 1 failed, 1 warnings
Release is NOT ready.
`

func TestRenderReport(testInstance *testing.T) {
	report := audit.Report{Findings: []audit.Finding{
		{Category: audit.CategoryGit, Severity: audit.SeverityPass, Message: "Working tree is clean"},
		{Category: audit.CategorySecurity, Severity: audit.SeverityFail, Message: "Possible Private key found in tracked file", Path: "keys/deploy.txt", Line: 3},
		{Category: audit.CategorySecurity, Severity: audit.SeverityWarn, Message: "Sensitive file tracked", Path: ".env"},
	}}

	var output bytes.Buffer
	require.NoError(testInstance, audit.RenderReport(&output, report))
	require.Equal(testInstance, expectedRenderedReport, output.String())
}
