package cmd

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arnavsurve/pipelang/internal/compiler"
	"github.com/arnavsurve/pipelang/internal/compiler/emitter"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// build: compile .pipe -> .mjs
var BuildCmd = &cobra.Command{
	Use:   "build <source.pipe>...",
	Short: "Compile pipelang source files into JavaScript modules",
	Args:  cobra.MinimumNArgs(1),
	RunE:  buildRun,
}

func buildRun(cmd *cobra.Command, args []string) error {
	if err := checkOutputNames(args); err != nil {
		return err
	}

	status(cmd, "↪ building %s → %q ...", strings.Join(args, ", "), outDir+"/")

	// Sources compile in parallel; outputs are written in argument order.
	results := make([]*compiler.Result, len(args))
	errs := make([]error, len(args))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, src := range args {
		i, src := i, src
		g.Go(func() error {
			results[i], errs[i] = compiler.CompileFile(src)
			return errs[i]
		})
	}
	if g.Wait() != nil {
		// Report the first failure in argument order, not completion order.
		for _, err := range errs {
			if err != nil {
				return err
			}
		}
	}

	for i, src := range args {
		outFile, err := compiler.WriteOutput(results[i], src, outDir)
		if err != nil {
			return err
		}
		if used := emitter.Builtins(results[i].Program); len(used) > 0 {
			status(cmd, "  runtime: %s", strings.Join(used, ", "))
		}
		status(cmd, "✔︎ wrote JavaScript to %s", outFile)
	}
	return nil
}

// checkOutputNames rejects sources that would overwrite each other's module.
func checkOutputNames(srcs []string) error {
	seen := make(map[string]string, len(srcs))
	for _, src := range srcs {
		name := strings.TrimSuffix(filepath.Base(src), compiler.SourceExt)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s would both write %s%s", prev, src, name, compiler.OutputExt)
		}
		seen[name] = src
	}
	return nil
}
