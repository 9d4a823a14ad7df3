package gitctx

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	gitignore "github.com/sabhiram/go-gitignore"
)

// emptyTree is the well-known id of the empty tree, used as the base of a
// root commit.
const emptyTree = "4b825dc642cb6eb9a060e54bf8d69288fbee4904"

// Repo is an opened git working copy.
type Repo struct {
	Root string
	repo *git.Repository
	fs   billy.Filesystem
}

// RepoMeta contains git repository metadata.
type RepoMeta struct {
	Root   string
	Head   string
	Branch string
}

// DiffResult holds the parsed diff and the two revisions it was computed
// between.
type DiffResult struct {
	Lines  []Line
	Files  []string
	Mode   string
	Range  string
	Repo   RepoMeta
	Before Snapshot
	After  Snapshot
}

// Snapshot reads file contents at one revision.
type Snapshot interface {
	Read(path string) (string, error)
}

// Open opens the repository containing path, searching parent directories
// for the .git directory.
func Open(path string) (*Repo, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("opening git repository at %s: %w", path, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("opening worktree: %w", err)
	}
	return &Repo{
		Root: wt.Filesystem.Root(),
		repo: repo,
		fs:   wt.Filesystem,
	}, nil
}

// Meta collects repository metadata. A repository without commits has an
// empty Head and Branch.
func (r *Repo) Meta() RepoMeta {
	meta := RepoMeta{Root: r.Root}
	ref, err := r.repo.Head()
	if err != nil {
		return meta
	}
	meta.Head = ref.Hash().String()
	if ref.Name().IsBranch() {
		meta.Branch = ref.Name().Short()
	}
	return meta
}

// GitDir returns the path of the repository's .git directory.
func (r *Repo) GitDir(ctx context.Context) (string, error) {
	out, err := r.gitOutput(ctx, "rev-parse", "--git-dir")
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-dir failed): %w", err)
	}
	dir := strings.TrimSpace(out)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(r.Root, dir)
	}
	return dir, nil
}

// Staged returns the diff of the index against HEAD. The changed side is
// read from the working tree.
func (r *Repo) Staged(ctx context.Context) (DiffResult, error) {
	head, err := r.resolveCommit("HEAD")
	if err != nil {
		return DiffResult{}, err
	}
	base, err := newTreeSnapshot(head)
	if err != nil {
		return DiffResult{}, err
	}

	diff, err := r.gitOutput(ctx, diffArgs("--cached", head.Hash.String())...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff --cached: %w", err)
	}
	return r.buildResult(diff, "staged", "", base, worktreeSnapshot{fs: r.fs})
}

// Commit returns the diff introduced by rev against its first parent. A root
// commit is compared with the empty tree.
func (r *Repo) Commit(ctx context.Context, rev string) (DiffResult, error) {
	commit, err := r.resolveCommit(rev)
	if err != nil {
		return DiffResult{}, err
	}
	after, err := newTreeSnapshot(commit)
	if err != nil {
		return DiffResult{}, err
	}

	var before Snapshot = emptySnapshot{}
	baseRev := emptyTree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return DiffResult{}, fmt.Errorf("reading parent of %s: %w", rev, err)
		}
		snap, err := newTreeSnapshot(parent)
		if err != nil {
			return DiffResult{}, err
		}
		before = snap
		baseRev = parent.Hash.String()
	}

	diff, err := r.gitOutput(ctx, diffArgs(baseRev, commit.Hash.String())...)
	if err != nil {
		return DiffResult{}, fmt.Errorf("git diff %s %s: %w", baseRev, rev, err)
	}
	return r.buildResult(diff, "commit", rev, before, after)
}

func (r *Repo) resolveCommit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("reading commit %s: %w", rev, err)
	}
	return commit, nil
}

func (r *Repo) buildResult(diff, mode, rangeStr string, before, after Snapshot) (DiffResult, error) {
	lines, err := ParseUnified(diff)
	if err != nil {
		return DiffResult{}, err
	}
	return DiffResult{
		Lines:  lines,
		Files:  extractFiles(lines),
		Mode:   mode,
		Range:  rangeStr,
		Repo:   r.Meta(),
		Before: before,
		After:  after,
	}, nil
}

// diffArgs builds a git diff invocation that produces one hunk line per
// changed line, independent of the user's diff configuration.
func diffArgs(revs ...string) []string {
	args := []string{
		"-c", "core.quotepath=off",
		"diff",
		"--patience",
		"--unified=0",
		"--no-color",
		"--no-ext-diff",
		"--no-textconv",
		"--no-renames",
		"--src-prefix=a/",
		"--dst-prefix=b/",
	}
	args = append(args, revs...)
	return append(args, "--")
}

func extractFiles(lines []Line) []string {
	var files []string
	seen := make(map[string]bool)
	for _, l := range lines {
		f := l.NewPath
		if f == "" {
			f = l.OldPath
		}
		if !seen[f] {
			seen[f] = true
			files = append(files, f)
		}
	}
	return files
}

// FilterExcluded drops the records whose path matches any of the
// gitignore-style patterns.
func FilterExcluded(lines []Line, excludes []string) []Line {
	if len(excludes) == 0 {
		return lines
	}
	ignore := gitignore.CompileIgnoreLines(excludes...)
	var kept []Line
	for _, l := range lines {
		path := l.NewPath
		if path == "" {
			path = l.OldPath
		}
		if !ignore.MatchesPath(path) {
			kept = append(kept, l)
		}
	}
	return kept
}

type treeSnapshot struct {
	rev  string
	tree *object.Tree
}

func newTreeSnapshot(commit *object.Commit) (treeSnapshot, error) {
	tree, err := commit.Tree()
	if err != nil {
		return treeSnapshot{}, fmt.Errorf("reading tree of %s: %w", commit.Hash, err)
	}
	return treeSnapshot{rev: commit.Hash.String(), tree: tree}, nil
}

func (s treeSnapshot) Read(path string) (string, error) {
	f, err := s.tree.File(path)
	if err != nil {
		return "", fmt.Errorf("reading %s at %s: %w", path, shortHash(s.rev), err)
	}
	content, err := f.Contents()
	if err != nil {
		return "", fmt.Errorf("reading blob of %s at %s: %w", path, shortHash(s.rev), err)
	}
	return content, nil
}

type worktreeSnapshot struct {
	fs billy.Filesystem
}

func (s worktreeSnapshot) Read(path string) (string, error) {
	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		return "", fmt.Errorf("reading %s from working tree: %w", path, err)
	}
	return string(data), nil
}

// emptySnapshot is the base side of a root commit.
type emptySnapshot struct{}

func (emptySnapshot) Read(path string) (string, error) {
	return "", fmt.Errorf("reading %s: %w", path, errNoBase)
}

var errNoBase = errors.New("revision has no parent")

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func (r *Repo) gitOutput(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Root
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return string(out), fmt.Errorf("%s: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
