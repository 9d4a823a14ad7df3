// Package testcase finds the test-case numbers of the scenarios touched by a
// diff.
//
// [Changed] runs the whole pipeline: it diffs the repository, classifies the
// changed lines of feature files, resolves every change to the scenarios it
// affects with a [Resolver], extracts their numeric tags with [Extract] and
// reduces the result with [Aggregate]. A changed background line affects
// every scenario that depends on it.
package testcase
