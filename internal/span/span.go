package span

import (
	"errors"
	"fmt"
	"strings"
)

// ErrOutOfRange is returned when a line number does not exist in a Table.
var ErrOutOfRange = errors.New("line number out of range")

// Range is a half-open byte range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether p lies inside [Start, End).
func (r Range) Contains(p int) bool {
	return r.Start <= p && p < r.End
}

// Intersects reports whether r contains the start or the end of changed.
//
// Only the two endpoints are checked. A changed range that engulfs r without
// sharing an endpoint is not detected; changed ranges are single lines, which
// never engulf a multi-line element.
func (r Range) Intersects(changed Range) bool {
	return r.Contains(changed.Start) || r.Contains(changed.End)
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}

// Table holds the byte range of every physical line of a text. Index 0 is
// line 1.
type Table []Range

// Lines splits text after each '\n' and records the cumulative byte range of
// every segment. A trailing segment without a terminator is one more line
// ending at len(text).
func Lines(text string) Table {
	table := make(Table, 0, strings.Count(text, "\n")+1)
	start := 0
	for start < len(text) {
		end := len(text)
		if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
			end = start + i + 1
		}
		table = append(table, Range{Start: start, End: end})
		start = end
	}
	return table
}

// Line returns the range of the 1-based line n.
func (t Table) Line(n int) (Range, error) {
	if n < 1 || n > len(t) {
		return Range{}, fmt.Errorf("line %d of %d: %w", n, len(t), ErrOutOfRange)
	}
	return t[n-1], nil
}

// Text returns the content of the 1-based line n of text, without its
// terminator.
func (t Table) Text(text string, n int) (string, error) {
	r, err := t.Line(n)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(text[r.Start:r.End], "\r\n"), nil
}
