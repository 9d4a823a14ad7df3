package output

import (
	"fmt"
	"io"
)

// MarkdownWriter outputs a bullet list suitable for a pull request body.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, report *Report) error {
	ew := &errWriter{w: w}

	ew.printf("## Changed tests\n\n")
	if report.Range != "" {
		ew.printf("Range: `%s`\n\n", report.Range)
	}

	if len(report.Tests) == 0 {
		ew.printf("No test cases affected.\n")
		return ew.err
	}

	for _, id := range report.Tests {
		ew.printf("- #%d\n", id)
	}
	return ew.err
}

// errWriter wraps an io.Writer and captures the first error.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
