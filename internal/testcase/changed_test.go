package testcase

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-threads/show-changed-tests/internal/gitctx"
)

type mapSnapshot map[string]string

func (m mapSnapshot) Read(path string) (string, error) {
	text, ok := m[path]
	if !ok {
		return "", os.ErrNotExist
	}
	return text, nil
}

type fakeDiffer struct {
	diff    gitctx.DiffResult
	err     error
	lastRev string
	staged  bool
}

func (f *fakeDiffer) Staged(context.Context) (gitctx.DiffResult, error) {
	f.staged = true
	return f.diff, f.err
}

func (f *fakeDiffer) Commit(_ context.Context, rev string) (gitctx.DiffResult, error) {
	f.lastRev = rev
	return f.diff, f.err
}

func fixtureDiff() gitctx.DiffResult {
	return gitctx.DiffResult{
		Lines: []gitctx.Line{
			{OldPath: "x.feature", NewPath: "x.feature", NewLine: 13, Content: "    Given a simple test scenario with number 222"},
			{OldPath: "x.feature", NewPath: "x.feature", OldLine: 9, Content: "    Given a simple test scenario with number 111"},
			{OldPath: "notes.txt", NewPath: "notes.txt", NewLine: 1, Content: "@tc:999"},
		},
		Before: mapSnapshot{"x.feature": threeScenarios},
		After:  mapSnapshot{"x.feature": threeScenarios},
	}
}

func TestFromDiff(t *testing.T) {
	res, err := FromDiff(fixtureDiff(), Options{})
	require.NoError(t, err)
	assert.Equal(t, []uint64{111, 222}, res.Tests)
	assert.Equal(t, 2, res.Events)
}

func TestFromDiff_Extension(t *testing.T) {
	diff := fixtureDiff()
	diff.After = mapSnapshot{"notes.txt": "Feature: notes\n"}

	res, err := FromDiff(diff, Options{Extension: ".txt"})
	require.NoError(t, err)
	assert.Empty(t, res.Tests)
	assert.Equal(t, 1, res.Events)
}

func TestFromDiff_Exclude(t *testing.T) {
	res, err := FromDiff(fixtureDiff(), Options{Exclude: []string{"*.feature"}})
	require.NoError(t, err)
	assert.Empty(t, res.Tests)
	assert.NotNil(t, res.Tests)
}

func TestFromDiff_ReadFailure(t *testing.T) {
	diff := fixtureDiff()
	diff.After = mapSnapshot{}

	_, err := FromDiff(diff, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestChanged_SelectsMode(t *testing.T) {
	ctx := context.Background()

	f := &fakeDiffer{diff: fixtureDiff()}
	_, err := Changed(ctx, f, Options{})
	require.NoError(t, err)
	assert.True(t, f.staged)
	assert.Empty(t, f.lastRev)

	f = &fakeDiffer{diff: fixtureDiff()}
	_, err = Changed(ctx, f, Options{Commit: "HEAD~1"})
	require.NoError(t, err)
	assert.False(t, f.staged)
	assert.Equal(t, "HEAD~1", f.lastRev)

	boom := errors.New("boom")
	f = &fakeDiffer{err: boom}
	_, err = Changed(ctx, f, Options{})
	assert.ErrorIs(t, err, boom)
}

// testRepo is a scratch repository whose fixtures are written with diff
// markers: a line whose first non-blank character is '-' exists only in the
// committed revision, one starting with '+' only in the staged revision.
type testRepo struct {
	t   *testing.T
	dir string
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	r := &testRepo{t: t, dir: t.TempDir()}
	r.git("init", "-q")
	r.git("config", "user.email", "test@example.com")
	r.git("config", "user.name", "Test")
	r.git("config", "commit.gpgsign", "false")
	return r
}

func (r *testRepo) git(args ...string) {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	cmd.Env = append(os.Environ(), "GIT_CONFIG_NOSYSTEM=1", "HOME="+r.dir)
	out, err := cmd.CombinedOutput()
	require.NoError(r.t, err, "git %v: %s", args, out)
}

func (r *testRepo) write(name, contents string) {
	r.t.Helper()
	path := filepath.Join(r.dir, name)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(r.t, os.WriteFile(path, []byte(contents), 0o644))
}

// addFile commits the '-' revision of contents and stages the '+' revision.
func (r *testRepo) addFile(name, contents string) {
	r.t.Helper()
	r.write(name, revisionOf(contents, '-', '+'))
	r.git("add", name)
	r.git("commit", "-q", "--no-verify", "-m", "Create "+name, "--", name)
	r.write(name, revisionOf(contents, '+', '-'))
	r.git("add", name)
}

func (r *testRepo) changed(opts Options) []uint64 {
	r.t.Helper()
	repo, err := gitctx.Open(r.dir)
	require.NoError(r.t, err)
	res, err := Changed(context.Background(), repo, opts)
	require.NoError(r.t, err)
	return res.Tests
}

func revisionOf(contents string, keep, drop byte) string {
	lines := strings.Split(contents, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		switch {
		case trimmed != "" && trimmed[0] == drop:
			continue
		case trimmed != "" && trimmed[0] == keep:
			line = strings.Replace(line, string(keep), "", 1)
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func TestEndToEnd_SingleChangeInScenario(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Single.feature", `
        Feature: Detect single change in scenario

        @tc:12345
        Scenario: Line in scenario is changed
          Given a simple test scenario with number 12345
          -When a line is changed
          +When this line is changed
          Then 12345 is in the output
        `)

	assert.Equal(t, []uint64{12345}, r.changed(Options{}))
}

func TestEndToEnd_ChangeInLastLine(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Last.feature", `
        Feature: Detect change in last line

        @tc:12345
        Scenario: Last line is changed
          Given a simple test scenario with number 12345
          When the last line is changed
          -Then nothing explodes
          +And nothing explodes`)

	assert.Equal(t, []uint64{12345}, r.changed(Options{}))
}

func TestEndToEnd_AddedAndRemovedSteps(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Steps.feature", `
        Feature: Added and removed steps

        @tc:1
        Scenario: A step is added
          Given a simple test scenario with number 1
          +And an added step
          Then 1 is in the output

        @tc:2
        Scenario: A step is removed
          Given a simple test scenario with number 2
          -And a removed step
          Then 2 is in the output

        @tc:3
        Scenario: Nothing changes
          Given a simple test scenario with number 3
        `)

	assert.Equal(t, []uint64{1, 2}, r.changed(Options{}))
}

func TestEndToEnd_BackgroundChange(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Background.feature", `
        Feature: Background change affects all scenarios

        Background:
            - Given a line in the background changed
            + Given this line in the background changed

        @tc:111
        Scenario: First
          Given a simple test scenario with number 111

        @tc:222
        Scenario: Second
          Given a simple test scenario with number 222

        @tc:333
        Scenario: Third
          Given a simple test scenario with number 333
        `)

	assert.Equal(t, []uint64{111, 222, 333}, r.changed(Options{}))
}

func TestEndToEnd_TaggedAndUntagged(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Mixed.feature", `
        Feature: Only tagged scenarios are reported

        @tc:42
        Scenario: Tagged
          -Given an old step
          +Given a new step

        Scenario: Untagged
          -Given an old step
          +Given a new step
        `)

	assert.Equal(t, []uint64{42}, r.changed(Options{}))
}

func TestEndToEnd_ScenarioNumberChanged(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Renumber.feature", `
        Feature: Scenario number changes

        +@tc:56789
        -@tc:12345
        Scenario: The tag is replaced
          Given a simple test scenario
        `)

	assert.Equal(t, []uint64{12345, 56789}, r.changed(Options{}))
}

func TestEndToEnd_MultipleFiles(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("First.feature", `
        Feature: First file

        @tc:10
        Scenario: Changed
          -Given an old step
          +Given a new step
        `)
	r.addFile("nested/Second.feature", `
        Feature: Second file

        @tc:20
        Scenario: Changed
          -Given an old step
          +Given a new step

        @tc:30
        Scenario: Unchanged
          Given a step
        `)

	assert.Equal(t, []uint64{10, 20}, r.changed(Options{}))
}

func TestEndToEnd_UnstagedChangesIgnored(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Staged.feature", `
        Feature: Staged

        @tc:111
        Scenario: Staged change
          -Given an old step
          +Given a new step
        `)
	r.addFile("Unstaged.feature", `
        Feature: Unstaged

        @tc:222
        Scenario: Unstaged change
          -Given an old step
          +Given a new step
        `)
	r.git("reset", "-q", "--", "Unstaged.feature")

	assert.Equal(t, []uint64{111}, r.changed(Options{}))
}

func TestEndToEnd_OtherExtensionsIgnored(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("notes.txt", `
        Feature: Not a feature file

        @tc:7
        Scenario: Changed
          -Given an old step
          +Given a new step
        `)

	assert.Empty(t, r.changed(Options{}))
	assert.Equal(t, []uint64{7}, r.changed(Options{Extension: "txt"}))
}

func TestEndToEnd_DeletedFileIgnored(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Gone.feature", `
        Feature: Deleted

        @tc:5
        Scenario: Removed with the file
          Given a step
        `)
	r.git("rm", "-q", "Gone.feature")

	assert.Empty(t, r.changed(Options{}))
}

func TestEndToEnd_ParseErrorSkipped(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Broken.feature", `
        Feature: Gracefully handle parse errors

        @tc:12345
        -Given a step without a scenario
        +Scenario: The parse error is fixed
          Given the parse error is fixed
          Then 12345 is in the output
        `)

	var warn bytes.Buffer
	assert.Equal(t, []uint64{12345}, r.changed(Options{Warn: &warn}))
	assert.Contains(t, warn.String(), "failed to parse Broken.feature (before)")
}

func TestEndToEnd_CustomPrefix(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Prefix.feature", `
        Feature: Custom prefix

        @WI-77 @tc:1
        Scenario: Changed
          -Given an old step
          +Given a new step
        `)

	assert.Equal(t, []uint64{77}, r.changed(Options{Prefix: "WI-"}))
}

func TestEndToEnd_Commit(t *testing.T) {
	r := newTestRepo(t)
	r.addFile("Commit.feature", `
        Feature: Committed changes

        @tc:900
        Scenario: Changed in the last commit
          -Given an old step
          +Given a new step
        `)
	r.git("commit", "-q", "--no-verify", "-m", "Change step")

	assert.Empty(t, r.changed(Options{}))
	assert.Equal(t, []uint64{900}, r.changed(Options{Commit: "HEAD"}))
}

func TestEndToEnd_RootCommit(t *testing.T) {
	r := newTestRepo(t)
	r.write("Root.feature", "Feature: Root\n\n  @tc:1\n  Scenario: Added\n    Given a step\n")
	r.git("add", "Root.feature")
	r.git("commit", "-q", "--no-verify", "-m", "Initial")

	assert.Equal(t, []uint64{1}, r.changed(Options{Commit: "HEAD"}))
}
