// Package cli constructs the release-scholar command-line interface, wiring
// the Cobra command hierarchy, layered settings, and structured logging. The
// init, check, build, publish, and mirror subcommands read the project
// directory from the command context populated by the root command.
package cli
