package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dev-threads/show-changed-tests/internal/config"
	"github.com/dev-threads/show-changed-tests/internal/gitctx"
	"github.com/dev-threads/show-changed-tests/internal/output"
	"github.com/dev-threads/show-changed-tests/internal/testcase"
	"github.com/dev-threads/show-changed-tests/internal/trailer"
)

var (
	flagPrefix    string
	flagLabel     string
	flagExtension string
	flagExclude   string
	flagFormat    string
	flagOut       string
	flagCommit    string
	flagColor     string
	flagDryRun    bool
	flagSkipEmpty bool
	flagVerbose   bool
)

func addChangedFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&flagPrefix, "prefix", "", "Tag prefix carrying the test-case number (default \"tc:\")")
	f.StringVar(&flagLabel, "label", "", "Trailer label (default \"Tests\")")
	f.StringVar(&flagExtension, "extension", "", "Extension of watched files (default \"feature\")")
	f.StringVar(&flagExclude, "exclude", "", "Exclude file path globs (comma-separated)")
	f.StringVar(&flagFormat, "format", "", "Output format without MESSAGE_FILE (text, json, markdown)")
	f.StringVar(&flagOut, "out", "", "Output file path (default: stdout)")
	f.StringVar(&flagCommit, "commit", "", "Analyse a commit instead of the staged changes")
	f.StringVar(&flagColor, "color", "", "Colorize diagnostics (auto, always, never)")
	f.BoolVar(&flagDryRun, "dry-run", false, "Print the message change instead of writing MESSAGE_FILE")
	f.BoolVar(&flagSkipEmpty, "skip-empty", false, "Leave MESSAGE_FILE untouched when no test cases are affected")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Print each resolved change to stderr")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagPrefix != "" {
		m["prefix"] = flagPrefix
	}
	if flagLabel != "" {
		m["label"] = flagLabel
	}
	if flagExtension != "" {
		m["extension"] = flagExtension
	}
	if flagExclude != "" {
		m["exclude"] = flagExclude
	}
	if flagFormat != "" {
		m["format"] = flagFormat
	}
	if flagColor != "" {
		m["color"] = flagColor
	}
	return m
}

func runChanged(cmd *cobra.Command, args []string) error {
	var messageFile, source string
	if len(args) > 0 {
		messageFile = args[0]
	}
	if len(args) > 1 {
		source = args[1]
	}

	// Configuration errors win over repository errors; without a repository
	// only the user file, environment and flags are checked.
	repo, repoErr := gitctx.Open(".")
	var root string
	if repoErr == nil {
		root = repo.Root
	}

	cfg, err := config.Load(root, buildOverrides())
	if err == nil {
		err = config.Validate(cfg)
	}
	if err != nil {
		printError("invalid configuration: %v", err)
		exitCode = ExitUsageError
		return nil
	}
	if repoErr != nil {
		printError("%v", repoErr)
		exitCode = ExitRuntimeError
		return nil
	}

	out := os.Stderr
	if flagDryRun {
		out = os.Stdout
	}
	applyColor(cfg.Color, out)

	if messageFile != "" && !trailer.ShouldRewrite(source) {
		if flagVerbose {
			printNotice("leaving %s message untouched", source)
		}
		return nil
	}

	res, err := testcase.Changed(cmd.Context(), repo, testcase.Options{
		Commit:    flagCommit,
		Extension: cfg.Extension,
		Prefix:    cfg.Prefix,
		Exclude:   cfg.Exclude,
		Warn:      noticeWriter(os.Stderr),
		Verbose:   flagVerbose,
	})
	if err != nil {
		printError("%v", err)
		exitCode = ExitRuntimeError
		return nil
	}

	text, err := trailer.Format(res.Tests, trailer.DefaultWidth, trailer.Prefix(cfg.Label))
	if err != nil {
		printError("%v", err)
		exitCode = ExitUsageError
		return nil
	}

	if flagVerbose {
		printNotice("%d changed lines, %d test cases", res.Events, len(res.Tests))
	}

	if messageFile == "" {
		if err := output.WriteReport(buildReport(res, text), cfg.Format, flagOut); err != nil {
			printError("writing output: %v", err)
			exitCode = ExitRuntimeError
		}
		return nil
	}

	if flagSkipEmpty && len(res.Tests) == 0 {
		return nil
	}
	if err := updateMessage(os.Stdout, messageFile, text, flagDryRun); err != nil {
		printError("%v", err)
		exitCode = ExitRuntimeError
	}
	return nil
}

func buildReport(res testcase.Result, text string) *output.Report {
	return &output.Report{
		Tool:    appName,
		Version: version,
		Mode:    res.Diff.Mode,
		Range:   res.Diff.Range,
		Repo: output.RepoInfo{
			Root:   res.Diff.Repo.Root,
			Head:   res.Diff.Repo.Head,
			Branch: res.Diff.Repo.Branch,
		},
		Files:   res.Diff.Files,
		Tests:   res.Tests,
		Trailer: text,
	}
}

// updateMessage splices text into the message file at path. With dryRun the
// change is printed to w as a unified diff and the file is left alone.
func updateMessage(w io.Writer, path, text string, dryRun bool) error {
	var (
		before string
		perm   os.FileMode = 0o644
	)
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		before = string(data)
		if info, statErr := os.Stat(path); statErr == nil {
			perm = info.Mode().Perm()
		}
	case errors.Is(err, os.ErrNotExist) && dryRun:
	default:
		return fmt.Errorf("reading message file: %w", err)
	}

	after := trailer.Insert(before, text)

	if dryRun {
		return printMessageDiff(w, path, before, after)
	}
	if err := os.WriteFile(path, []byte(after), perm); err != nil {
		return fmt.Errorf("writing message file: %w", err)
	}
	return nil
}
