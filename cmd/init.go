package cmd

import (
	"embed"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/spf13/cobra"
)

//go:embed templates/*
var tplFS embed.FS

// init: scaffold a new project
var InitCmd = &cobra.Command{
	Use:   "init [project-dir]",
	Short: "Scaffold a new pipelang project",
	Args:  cobra.MaximumNArgs(1),
	RunE:  initRun,
}

func initRun(cmd *cobra.Command, args []string) error {
	var (
		targetDir string
		name      string
	)

	// targetDir is where files go, name is for templating
	if len(args) == 1 {
		targetDir = args[0]
		name = filepath.Base(args[0])
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		targetDir = "."
		name = filepath.Base(cwd)
	}

	if targetDir != "." {
		if _, err := os.Stat(targetDir); err == nil {
			return fmt.Errorf("directory %q already exists", targetDir)
		}
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return err
		}
	}

	status(cmd, "↪ scaffolding new project %q ...", name)

	data := map[string]string{"Name": name}
	files := map[string]string{
		"templates/main.pipe.tpl": "main.pipe",
		"templates/gitignore.tpl": ".gitignore",
	}
	for tplPath, outName := range files {
		outPath := filepath.Join(targetDir, outName)
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("%s already exists", outPath)
		}
		if err := writeTpl(tplPath, outPath, data); err != nil {
			return err
		}
	}

	status(cmd, "✓ project %q initialized!", name)
	return nil
}

var pipeEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)

// tplFuncs keep template data from breaking out of the pipelang syntax it is
// spliced into.
var tplFuncs = template.FuncMap{
	"quote":   func(s string) string { return `"` + pipeEscaper.Replace(s) + `"` },
	"oneLine": func(s string) string { return strings.Join(strings.Fields(s), " ") },
}

// writeTpl loads tplName from tplFS, executes it with data, and writes to outPath
func writeTpl(tplName, outPath string, data any) error {
	t, err := template.New(path.Base(tplName)).Funcs(tplFuncs).ParseFS(tplFS, tplName)
	if err != nil {
		return err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return t.Execute(f, data)
}
