// Package feature parses Gherkin feature files into scenarios and
// backgrounds annotated with the byte span each element covers.
//
// Parsing is delegated to the cucumber Gherkin parser. Its line locations
// are turned into spans over the raw text: an element starts at its first
// tag line (or its keyword line when untagged) and runs up to the next
// element, minus trailing blank and comment lines. Tag lines are part of the
// span, so editing only a scenario's tags is attributed to that scenario.
package feature
