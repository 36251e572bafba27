package cmd

import (
	"os"
	"time"

	"github.com/arnavsurve/pipelang/internal/compiler"
	"github.com/spf13/cobra"
)

var (
	nodeBin    string
	runTimeout time.Duration
)

// run: compile into a temp dir and execute with node
var RunCmd = &cobra.Command{
	Use:   "run <source.pipe> [-- args...]",
	Short: "Compile and execute a pipelang program",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	code, err := compiler.Run(cmd.Context(), args[0], compiler.RunOptions{
		Node:    nodeBin,
		Args:    args[1:],
		Timeout: runTimeout,
		Stdin:   cmd.InOrStdin(),
		Stdout:  cmd.OutOrStdout(),
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	if code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

func defaultNode() string {
	if node := os.Getenv("PIPELANG_NODE"); node != "" {
		return node
	}
	return compiler.DefaultNode
}

func init() {
	RunCmd.Flags().StringVar(&nodeBin, "node", defaultNode(), "JavaScript runtime used to execute the program (env PIPELANG_NODE)")
	RunCmd.Flags().DurationVar(&runTimeout, "timeout", 0, "kill the program after this long (0 disables)")
}
