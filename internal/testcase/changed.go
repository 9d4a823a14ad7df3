package testcase

import (
	"context"
	"fmt"
	"io"

	"github.com/dev-threads/show-changed-tests/internal/changes"
	"github.com/dev-threads/show-changed-tests/internal/gitctx"
)

// DefaultExtension is the file extension of watched documents.
const DefaultExtension = "feature"

// Differ computes the diff to analyse.
type Differ interface {
	Staged(ctx context.Context) (gitctx.DiffResult, error)
	Commit(ctx context.Context, rev string) (gitctx.DiffResult, error)
}

// Options controls which changes are analysed.
type Options struct {
	// Commit selects a committed revision; empty analyses the staged changes.
	Commit    string
	Extension string
	Prefix    string
	Exclude   []string
	Warn      io.Writer
	Verbose   bool
}

// Result is the outcome of one analysis.
type Result struct {
	Tests  []uint64
	Events int
	Diff   gitctx.DiffResult
}

// Changed diffs the repository and returns the sorted, distinct test-case
// numbers of the affected scenarios.
func Changed(ctx context.Context, repo Differ, opts Options) (Result, error) {
	var (
		diff gitctx.DiffResult
		err  error
	)
	if opts.Commit != "" {
		diff, err = repo.Commit(ctx, opts.Commit)
	} else {
		diff, err = repo.Staged(ctx)
	}
	if err != nil {
		return Result{}, err
	}
	return FromDiff(diff, opts)
}

type revision struct {
	path string
	side changes.Side
}

// FromDiff resolves an already computed diff.
func FromDiff(diff gitctx.DiffResult, opts Options) (Result, error) {
	ext := opts.Extension
	if ext == "" {
		ext = DefaultExtension
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	events := changes.Classify(gitctx.FilterExcluded(diff.Lines, opts.Exclude), ext)
	resolver := &Resolver{Prefix: prefix, Warn: opts.Warn, Verbose: opts.Verbose}
	texts := make(map[revision]string)

	var ids []uint64
	for _, ev := range events {
		key := revision{path: ev.Path, side: ev.Side}
		text, ok := texts[key]
		if !ok {
			var err error
			text, err = read(diff, key)
			if err != nil {
				return Result{}, err
			}
			texts[key] = text
		}

		found, err := resolver.Resolve(ev, text)
		if err != nil {
			return Result{}, err
		}
		ids = append(ids, found...)
	}

	return Result{
		Tests:  Aggregate(ids),
		Events: len(events),
		Diff:   diff,
	}, nil
}

func read(diff gitctx.DiffResult, rev revision) (string, error) {
	snap := diff.After
	if rev.side == changes.Before {
		snap = diff.Before
	}
	if snap == nil {
		return "", fmt.Errorf("no %s revision for %s", rev.side, rev.path)
	}
	return snap.Read(rev.path)
}
