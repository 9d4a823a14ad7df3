// Package gitctx collects line-level diffs and file revisions from a git
// repository.
//
// Diffs are produced by the git binary with the patience algorithm and zero
// context lines, either for staged changes ([Repo.Staged], HEAD vs index) or
// for a single commit ([Repo.Commit], first parent vs commit). The unified
// output is parsed with go-gitdiff and reduced to one [Line] record per
// added or removed line by [ParseUnified].
//
// File contents are read through go-git: a [Snapshot] for the base side of
// the diff reads from the base commit tree, and the changed side reads from
// the working tree (staged mode) or the commit tree (commit mode).
package gitctx
