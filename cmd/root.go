package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	outDir string
	quiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "pipelang",
	Short: "pipelang compiles pipe-centric programs to JavaScript",
	Long: `pipelang compiles .pipe programs into JavaScript modules.

Commands:
  init   Scaffold a new pipelang project
  build  Compile a (.pipe) source file into a (.mjs) module
  run    Compile and execute a source file with node
  repl   Interactively compile snippets
`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return err
	}
	return nil
}

// status prints a progress line unless --quiet is set.
func status(cmd *cobra.Command, format string, args ...any) {
	if quiet {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "out", "output directory for build artifacts")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress progress messages")

	rootCmd.AddCommand(InitCmd, BuildCmd, RunCmd, ReplCmd)
}
