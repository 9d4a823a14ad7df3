// Package cli wires together the Cobra command tree for the
// show-changed-tests binary.
//
// The root command diffs the repository, resolves the affected test cases
// and either prints a report or splices a trailer into a commit message
// file, which makes it usable directly as a prepare-commit-msg hook. The
// hook, config and version subcommands manage the installation. Handlers
// set a deterministic exit code instead of returning errors to Cobra.
package cli
