// Package output formats changed-test reports for display or machine
// consumption.
//
// Three formats are supported:
//   - text:     the commit message trailer, ready to paste (default)
//   - json:     the structured report
//   - markdown: a bullet list for pull request descriptions
//
// Use [GetWriter] to obtain a [Writer] for a given format string, then call
// [Writer.Write] with an [io.Writer] and a [*Report]. [WriteReport] handles
// destination selection.
package output
