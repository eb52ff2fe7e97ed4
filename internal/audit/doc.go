// Package audit implements the release readiness audit.
//
// Engine runs six ordered categories (Git, Files, Citation, Security,
// Gitignore, Size) against one project snapshot and its history and collects
// their findings into a Report. Service opens a repository and feeds the
// engine; CommandBuilder wires the check Cobra command.
package audit
