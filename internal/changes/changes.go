// Package changes reduces line-level diff records to change events on
// watched documents.
package changes

import (
	"fmt"
	"path"
	"strings"

	"github.com/dev-threads/show-changed-tests/internal/gitctx"
)

// Side selects the document revision a change must be read from.
type Side int

const (
	// After is the changed revision: added lines and lines present on both
	// sides.
	After Side = iota
	// Before is the base revision: lines that only exist before the change.
	Before
)

func (s Side) String() string {
	switch s {
	case After:
		return "after"
	case Before:
		return "before"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// Event is one changed line of a watched document.
type Event struct {
	Path string
	Line int
	Side Side
	// Text is the raw line content, kept for diagnostics.
	Text string
}

func (e Event) String() string {
	return fmt.Sprintf("%s:%d (%s)", e.Path, e.Line, e.Side)
}

// Classify turns diff line records into events, in diff order. Records of
// deleted files, of files whose extension is not ext, and blank lines are
// skipped. Duplicates are kept.
func Classify(lines []gitctx.Line, ext string) []Event {
	ext = strings.TrimPrefix(ext, ".")
	var events []Event
	for _, l := range lines {
		if l.NewPath == "" || strings.TrimPrefix(path.Ext(l.NewPath), ".") != ext {
			continue
		}
		if strings.TrimSpace(l.Content) == "" {
			continue
		}
		ev, ok := classifyLine(l)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events
}

func classifyLine(l gitctx.Line) (Event, bool) {
	ev := Event{Path: l.NewPath, Text: l.Content}
	switch {
	case l.NewLine > 0:
		ev.Line, ev.Side = l.NewLine, After
	case l.OldLine > 0:
		ev.Line, ev.Side = l.OldLine, Before
	default:
		return Event{}, false
	}
	return ev, true
}
