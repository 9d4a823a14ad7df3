package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "show-changed-tests"
	version = "0.3.0"
)

// Exit codes
const (
	ExitSuccess      = 0
	ExitUsageError   = 2
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   appName + " [MESSAGE_FILE [SOURCE [SHA]]]",
	Short: "List test cases affected by staged feature file changes",
	Long: `show-changed-tests maps the changed lines of Gherkin feature files to the
test-case numbers tagged on the affected scenarios, e.g. @tc:1234.

Without arguments the result is printed. With a commit message file, as
passed to a prepare-commit-msg hook, a trailer such as "Tests: #1234" is
inserted above git's instructions.`,
	Args:          cobra.MaximumNArgs(3),
	SilenceUsage:  true,
	RunE:          runChanged,
}

// Run executes the root command and returns an exit code.
func Run() int {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print show-changed-tests version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "%s version %s\n", appName, version)
	},
}

func init() {
	rootCmd.AddCommand(hookCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	addChangedFlags(rootCmd)
}
