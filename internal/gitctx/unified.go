package gitctx

import (
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Line is one added, removed or context line of a unified diff. A zero line
// number means the line has no number on that side; an empty path means
// /dev/null.
type Line struct {
	OldPath string
	NewPath string
	OldLine int
	NewLine int
	Content string
}

// ParseUnified reduces git's unified diff output to line records in diff
// order. File headers, hunk headers and "\ No newline" markers produce no
// records.
func ParseUnified(diff string) ([]Line, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	var lines []Line
	for _, f := range files {
		for _, frag := range f.TextFragments {
			oldNo, err := safecast.Conv[int](frag.OldPosition)
			if err != nil {
				return nil, fmt.Errorf("%s: old position %d: %w", f.OldName, frag.OldPosition, err)
			}
			newNo, err := safecast.Conv[int](frag.NewPosition)
			if err != nil {
				return nil, fmt.Errorf("%s: new position %d: %w", f.NewName, frag.NewPosition, err)
			}

			for _, l := range frag.Lines {
				rec := Line{
					OldPath: f.OldName,
					NewPath: f.NewName,
					Content: strings.TrimSuffix(l.Line, "\n"),
				}
				switch l.Op {
				case gitdiff.OpAdd:
					rec.NewLine = newNo
					newNo++
				case gitdiff.OpDelete:
					rec.OldLine = oldNo
					oldNo++
				case gitdiff.OpContext:
					rec.OldLine, rec.NewLine = oldNo, newNo
					oldNo++
					newNo++
				}
				lines = append(lines, rec)
			}
		}
	}
	return lines, nil
}
