package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/term"
)

var (
	errorColor  = color.New(color.FgRed, color.Bold)
	noticeColor = color.New(color.FgYellow)
	addColor    = color.New(color.FgGreen)
	delColor    = color.New(color.FgRed)
	hunkColor   = color.New(color.FgCyan)
	headerColor = color.New(color.Bold)
)

// applyColor enables or disables colored output. In auto mode color is used
// only when f is a terminal and NO_COLOR is unset.
func applyColor(mode string, f *os.File) {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	default: // "auto"
		color.NoColor = !term.IsTerminal(int(f.Fd())) || os.Getenv("NO_COLOR") != ""
	}
}

func printError(format string, args ...any) {
	errorColor.Fprint(os.Stderr, "Error: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}

func printNotice(format string, args ...any) {
	noticeColor.Fprintf(os.Stderr, format+"\n", args...)
}

type colorWriter struct {
	w io.Writer
	c *color.Color
}

func (cw colorWriter) Write(p []byte) (int, error) {
	if _, err := cw.c.Fprint(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// noticeWriter returns w wrapped so that everything written to it uses the
// notice color.
func noticeWriter(w io.Writer) io.Writer {
	return colorWriter{w: w, c: noticeColor}
}

// printMessageDiff writes a unified diff of the message change to w.
func printMessageDiff(w io.Writer, path, before, after string) error {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return fmt.Errorf("diffing message: %w", err)
	}

	sc := bufio.NewScanner(strings.NewReader(diff))
	for sc.Scan() {
		line := sc.Text()
		var c *color.Color
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			c = headerColor
		case strings.HasPrefix(line, "@@"):
			c = hunkColor
		case strings.HasPrefix(line, "+"):
			c = addColor
		case strings.HasPrefix(line, "-"):
			c = delColor
		}
		var werr error
		if c == nil {
			_, werr = fmt.Fprintln(w, line)
		} else {
			_, werr = c.Fprintln(w, line)
		}
		if werr != nil {
			return werr
		}
	}
	return sc.Err()
}
