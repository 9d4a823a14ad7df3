package testcase

import (
	"fmt"
	"io"
	"strings"

	"github.com/dev-threads/show-changed-tests/internal/changes"
	"github.com/dev-threads/show-changed-tests/internal/feature"
	"github.com/dev-threads/show-changed-tests/internal/span"
)

// Resolver maps a changed line to the test-case numbers it affects.
type Resolver struct {
	Prefix string
	// Warn receives parse notices and, when Verbose is set, one line per
	// resolved event. Nil discards them.
	Warn    io.Writer
	Verbose bool

	docs map[string]parsed
}

type parsed struct {
	doc *feature.Document
	err error
}

// Resolve returns the numbers of the scenarios affected by ev, where text is
// the document revision ev must be read from.
//
// A line inside a scenario yields at most that scenario's number. A line
// inside a background yields the number of every scenario the background
// applies to. A document that fails to parse is reported to Warn and yields
// nothing.
func (r *Resolver) Resolve(ev changes.Event, text string) ([]uint64, error) {
	doc, err := r.parse(ev, text)
	if err != nil {
		return nil, nil
	}

	changed, err := span.Lines(text).Line(ev.Line)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ev, err)
	}

	ids := r.match(doc, changed)
	if r.Verbose {
		r.warnf("%s %q -> %v\n", ev, strings.TrimSpace(ev.Text), ids)
	}
	return ids, nil
}

func (r *Resolver) parse(ev changes.Event, text string) (*feature.Document, error) {
	if p, ok := r.docs[text]; ok {
		return p.doc, p.err
	}
	doc, err := feature.Parse(text)
	if err != nil {
		r.warnf("warning: failed to parse %s (%s): %v\n", ev.Path, ev.Side, err)
	}
	if r.docs == nil {
		r.docs = make(map[string]parsed)
	}
	r.docs[text] = parsed{doc: doc, err: err}
	return doc, err
}

func (r *Resolver) match(doc *feature.Document, changed span.Range) []uint64 {
	for _, s := range doc.Scenarios {
		if !s.Span.Intersects(changed) {
			continue
		}
		if id, ok := Extract(s.Tags, r.Prefix); ok {
			return []uint64{id}
		}
		return nil
	}

	if doc.Background != nil && doc.Background.Span.Intersects(changed) {
		return r.all(doc.Scenarios)
	}

	for i, rule := range doc.Rules {
		if rule.Background != nil && rule.Background.Span.Intersects(changed) {
			return r.all(doc.InRule(i))
		}
	}
	return nil
}

func (r *Resolver) all(scenarios []feature.Scenario) []uint64 {
	var ids []uint64
	for _, s := range scenarios {
		if id, ok := Extract(s.Tags, r.Prefix); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *Resolver) warnf(format string, args ...any) {
	if r.Warn == nil {
		return
	}
	fmt.Fprintf(r.Warn, format, args...)
}
