package feature

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
	gherkin "github.com/cucumber/gherkin/go/v26"
	messages "github.com/cucumber/messages/go/v21"

	"github.com/dev-threads/show-changed-tests/internal/span"
)

// ErrParse is wrapped by every error returned for malformed Gherkin.
var ErrParse = errors.New("invalid gherkin")

// Element is a scenario or background block.
type Element struct {
	Keyword string
	Name    string
	// Tags in document order, without the leading '@'.
	Tags []string
	// Line is the 1-based line of the keyword.
	Line int
	Span span.Range

	anchor int
}

// Scenario is a scenario or scenario outline. Rule indexes Document.Rules,
// or is -1 for scenarios outside any rule.
type Scenario struct {
	Element
	Rule int
}

// Rule groups scenarios that share an optional rule-level background.
type Rule struct {
	Name       string
	Background *Element
}

// Document is a parsed feature file.
type Document struct {
	Name       string
	Background *Element
	Scenarios  []Scenario
	Rules      []Rule
}

// InRule returns the scenarios belonging to rule i.
func (d *Document) InRule(i int) []Scenario {
	var out []Scenario
	for _, s := range d.Scenarios {
		if s.Rule == i {
			out = append(out, s)
		}
	}
	return out
}

// Parse parses text as a Gherkin document. Text without a Feature yields an
// empty Document.
func Parse(text string) (*Document, error) {
	gd, err := gherkin.ParseGherkinDocument(strings.NewReader(text), (&messages.Incrementing{}).NewId)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	doc := &Document{}
	if gd.Feature == nil {
		return doc, nil
	}
	doc.Name = gd.Feature.Name
	loc := &locator{}

	// Lines that start a structural block; every block ends before the next.
	var anchors []int

	for _, child := range gd.Feature.Children {
		switch {
		case child.Background != nil:
			doc.Background = loc.background(child.Background)
			anchors = append(anchors, doc.Background.anchor)
		case child.Scenario != nil:
			s := Scenario{Element: loc.scenario(child.Scenario), Rule: -1}
			doc.Scenarios = append(doc.Scenarios, s)
			anchors = append(anchors, s.anchor)
		case child.Rule != nil:
			anchors = append(anchors, loc.anchor(child.Rule.Location, child.Rule.Tags))
			idx := len(doc.Rules)
			rule := Rule{Name: child.Rule.Name}
			for _, rc := range child.Rule.Children {
				switch {
				case rc.Background != nil:
					rule.Background = loc.background(rc.Background)
					anchors = append(anchors, rule.Background.anchor)
				case rc.Scenario != nil:
					s := Scenario{Element: loc.scenario(rc.Scenario), Rule: idx}
					doc.Scenarios = append(doc.Scenarios, s)
					anchors = append(anchors, s.anchor)
				}
			}
			doc.Rules = append(doc.Rules, rule)
		}
	}

	if loc.err != nil {
		return nil, loc.err
	}

	sort.Ints(anchors)
	spans := spanner{text: text, table: span.Lines(text), anchors: anchors}
	elems := make([]*Element, 0, len(doc.Scenarios)+len(doc.Rules)+1)
	if doc.Background != nil {
		elems = append(elems, doc.Background)
	}
	for i := range doc.Scenarios {
		elems = append(elems, &doc.Scenarios[i].Element)
	}
	for i := range doc.Rules {
		if doc.Rules[i].Background != nil {
			elems = append(elems, doc.Rules[i].Background)
		}
	}
	for _, e := range elems {
		if err := spans.assign(e); err != nil {
			return nil, fmt.Errorf("%w: %s at line %d: %v", ErrParse, e.Keyword, e.Line, err)
		}
	}
	return doc, nil
}

// locator converts parser locations to line numbers and keeps the first
// conversion error.
type locator struct {
	err error
}

func (l *locator) line(loc *messages.Location) int {
	n, err := safecast.Conv[int](loc.Line)
	if err != nil && l.err == nil {
		l.err = fmt.Errorf("%w: line %d: %v", ErrParse, loc.Line, err)
	}
	return n
}

func (l *locator) background(b *messages.Background) *Element {
	line := l.line(b.Location)
	return &Element{
		Keyword: b.Keyword,
		Name:    b.Name,
		Line:    line,
		anchor:  line,
	}
}

func (l *locator) scenario(s *messages.Scenario) Element {
	tags := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		tags = append(tags, strings.TrimPrefix(t.Name, "@"))
	}
	return Element{
		Keyword: s.Keyword,
		Name:    s.Name,
		Tags:    tags,
		Line:    l.line(s.Location),
		anchor:  l.anchor(s.Location, s.Tags),
	}
}

// anchor is the first line of a block: its earliest tag line, or the keyword
// line when it has no tags.
func (l *locator) anchor(loc *messages.Location, tags []*messages.Tag) int {
	line := l.line(loc)
	for _, t := range tags {
		if n := l.line(t.Location); n < line {
			line = n
		}
	}
	return line
}

type spanner struct {
	text    string
	table   span.Table
	anchors []int
}

// assign sets the span of e. The span starts one byte past the first
// non-blank byte of the anchor line, so the end offset of the preceding line
// never falls inside it, even when the anchor line starts at column 0.
func (s spanner) assign(e *Element) error {
	last := len(s.table)
	if i := sort.SearchInts(s.anchors, e.anchor+1); i < len(s.anchors) {
		last = s.anchors[i] - 1
	}
	for last > e.Line {
		filler, err := s.isFiller(last)
		if err != nil {
			return err
		}
		if !filler {
			break
		}
		last--
	}

	first, err := s.table.Line(e.anchor)
	if err != nil {
		return err
	}
	end, err := s.table.Line(last)
	if err != nil {
		return err
	}
	line := s.text[first.Start:first.End]
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	e.Span = span.Range{Start: first.Start + indent + 1, End: end.End}
	return nil
}

// isFiller reports whether line n is blank or a comment.
func (s spanner) isFiller(n int) (bool, error) {
	text, err := s.table.Text(s.text, n)
	if err != nil {
		return false, err
	}
	trimmed := strings.TrimSpace(text)
	return trimmed == "" || strings.HasPrefix(trimmed, "#"), nil
}
