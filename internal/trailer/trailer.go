package trailer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultWidth is the maximum trailer line width in bytes.
	DefaultWidth = 72
	// DefaultLabel names the trailer key.
	DefaultLabel = "Tests"

	delimiter = ", "
)

// ErrPrefixTooWide is returned when the line prefix leaves no room for a
// reference.
var ErrPrefixTooWide = errors.New("trailer prefix is not narrower than the line width")

// Prefix returns the line prefix for a trailer key, e.g. "Tests: ".
func Prefix(label string) string {
	return label + ": "
}

// Validate checks that prefix fits strictly inside width.
func Validate(width int, prefix string) error {
	if len(prefix) >= width {
		return fmt.Errorf("%w: %q is %d bytes, width is %d", ErrPrefixTooWide, prefix, len(prefix), width)
	}
	return nil
}

// Format renders ids as "#<n>" references separated by ", ", starting every
// line with prefix. A reference that would push a line past width bytes
// starts a new line; a single reference wider than the remaining room is
// still emitted on its own line. Lines are joined by "\n" without a trailing
// newline. With no ids the result is the bare prefix.
func Format(ids []uint64, width int, prefix string) (string, error) {
	if err := Validate(width, prefix); err != nil {
		return "", err
	}

	var (
		lines []string
		cur   strings.Builder
		first = true
	)
	cur.WriteString(prefix)

	for _, id := range ids {
		ref := "#" + strconv.FormatUint(id, 10)

		extra := len(ref)
		if !first {
			extra += len(delimiter)
		}
		if cur.Len()+extra > width {
			lines = append(lines, cur.String())
			cur.Reset()
			cur.WriteString(prefix)
			first = true
		}

		if !first {
			cur.WriteString(delimiter)
		}
		cur.WriteString(ref)
		first = false
	}
	lines = append(lines, cur.String())

	return strings.Join(lines, "\n"), nil
}

// Insert places a blank line followed by text before the last blank line of
// message, or at its end when it has none. Every line of the result,
// including the last, ends with "\n".
func Insert(message, text string) string {
	lines := splitLines(message)

	at := len(lines)
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.TrimSpace(lines[i]) == "" {
			at = i
			break
		}
	}

	out := make([]string, 0, len(lines)+2)
	out = append(out, lines[:at]...)
	out = append(out, "", text)
	out = append(out, lines[at:]...)

	var b strings.Builder
	for _, line := range out {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

// ShouldRewrite reports whether a message produced by the given
// prepare-commit-msg source should receive a trailer. Merges, squashes and
// amended commits are left alone.
func ShouldRewrite(source string) bool {
	switch source {
	case "", "template", "message":
		return true
	default:
		return false
	}
}

// splitLines splits on "\n", dropping one trailing "\r" per line. A final
// terminator does not start another line.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
