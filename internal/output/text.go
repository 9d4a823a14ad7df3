package output

import (
	"fmt"
	"io"
)

// TextWriter prints the trailer alone so it can be pasted into a message.
type TextWriter struct{}

func (t *TextWriter) Write(w io.Writer, report *Report) error {
	_, err := fmt.Fprintln(w, report.Trailer)
	return err
}
