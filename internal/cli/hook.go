package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dev-threads/show-changed-tests/internal/gitctx"
)

const (
	hookName        = "prepare-commit-msg"
	hookMarkerStart = "# >>> show-changed-tests prepare-commit-msg hook >>>"
	hookMarkerEnd   = "# <<< show-changed-tests prepare-commit-msg hook <<<"
)

var (
	hookPrefix string
	hookLabel  string
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage the git prepare-commit-msg hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install show-changed-tests as a git prepare-commit-msg hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd.Context())
		if err != nil {
			printError("%v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		section := generateHookScript(hookPrefix, hookLabel)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			printError("reading hook file: %v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		var content string
		if len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			printError("creating hooks directory: %v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			printError("writing hook file: %v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Installed %s hook at %s\n", hookName, hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the show-changed-tests prepare-commit-msg hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		hookPath, err := getHookPath(cmd.Context())
		if err != nil {
			printError("%v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(cmd.OutOrStdout(), "No %s hook found.\n", hookName)
				return nil
			}
			printError("reading hook file: %v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeHookSection(string(existing))

		// If only shebang (and whitespace) remains, delete the file entirely
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				printError("removing hook file: %v", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s hook at %s\n", hookName, hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			printError("writing hook file: %v", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Removed show-changed-tests section from %s\n", hookPath)
		return nil
	},
}

func getHookPath(ctx context.Context) (string, error) {
	repo, err := gitctx.Open(".")
	if err != nil {
		return "", err
	}
	gitDir, err := repo.GitDir(ctx)
	if err != nil {
		return "", err
	}
	return filepath.Join(gitDir, "hooks", hookName), nil
}

// generateHookScript renders the hook section. Empty prefix or label leave
// the value to the configuration files.
func generateHookScript(prefix, label string) string {
	args := []string{appName}
	if prefix != "" {
		args = append(args, "--prefix", shellQuote(prefix))
	}
	if label != "" {
		args = append(args, "--label", shellQuote(label))
	}
	args = append(args, `"$1"`, `"$2"`)

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString(strings.Join(args, " ") + "\n")
	b.WriteString("SCT_EXIT=$?\n")
	b.WriteString("if [ $SCT_EXIT -ne 0 ]; then\n")
	b.WriteString("  echo \"show-changed-tests: failed (exit $SCT_EXIT), message left unchanged\" >&2\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookPrefix, "prefix", "", "Tag prefix passed to the hook command")
	hookInstallCmd.Flags().StringVar(&hookLabel, "label", "", "Trailer label passed to the hook command")
}
