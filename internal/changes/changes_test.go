package changes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dev-threads/show-changed-tests/internal/gitctx"
)

func TestClassify_Sides(t *testing.T) {
	lines := []gitctx.Line{
		{OldPath: "a.feature", NewPath: "a.feature", NewLine: 4, Content: "+added"},
		{OldPath: "a.feature", NewPath: "a.feature", OldLine: 3, NewLine: 5, Content: "context"},
		{OldPath: "a.feature", NewPath: "a.feature", OldLine: 7, Content: "removed"},
		{OldPath: "a.feature", NewPath: "a.feature", Content: "no numbers"},
	}

	got := Classify(lines, "feature")

	assert.Equal(t, []Event{
		{Path: "a.feature", Line: 4, Side: After, Text: "+added"},
		{Path: "a.feature", Line: 5, Side: After, Text: "context"},
		{Path: "a.feature", Line: 7, Side: Before, Text: "removed"},
	}, got)
}

func TestClassify_Filters(t *testing.T) {
	lines := []gitctx.Line{
		{OldPath: "main.go", NewPath: "main.go", NewLine: 1, Content: "package main"},
		{OldPath: "gone.feature", NewPath: "", OldLine: 1, Content: "Feature: gone"},
		{OldPath: "a.feature", NewPath: "a.feature", NewLine: 2, Content: "   \t"},
		{OldPath: "a.feature", NewPath: "a.feature", OldLine: 2, Content: ""},
		{OldPath: "noext", NewPath: "noext", NewLine: 1, Content: "Feature: x"},
		{OldPath: "b.feature", NewPath: "b.feature", NewLine: 9, Content: "  Given x"},
	}

	got := Classify(lines, ".feature")

	assert.Equal(t, []Event{{Path: "b.feature", Line: 9, Side: After, Text: "  Given x"}}, got)
}

func TestClassify_KeepsOrderAndDuplicates(t *testing.T) {
	lines := []gitctx.Line{
		{NewPath: "b.feature", NewLine: 3, Content: "x"},
		{NewPath: "a.feature", NewLine: 1, Content: "y"},
		{NewPath: "b.feature", NewLine: 3, Content: "x"},
	}

	got := Classify(lines, "feature")

	if assert.Len(t, got, 3) {
		assert.Equal(t, "b.feature", got[0].Path)
		assert.Equal(t, "a.feature", got[1].Path)
		assert.Equal(t, got[0], got[2])
	}
}

func TestClassify_Empty(t *testing.T) {
	assert.Empty(t, Classify(nil, "feature"))
}

func TestSide_String(t *testing.T) {
	assert.Equal(t, "after", After.String())
	assert.Equal(t, "before", Before.String())
	assert.Equal(t, "Side(7)", Side(7).String())
}

func TestEvent_String(t *testing.T) {
	ev := Event{Path: "a.feature", Line: 3, Side: Before}
	assert.Equal(t, "a.feature:3 (before)", ev.String())
}
