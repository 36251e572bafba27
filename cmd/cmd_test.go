package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/arnavsurve/pipelang/internal/compiler"
	"github.com/arnavsurve/pipelang/internal/compiler/diagnostic"
)

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// Flag variables outlive a single Execute.
	outDir, quiet, nodeBin, runTimeout = "out", false, compiler.DefaultNode, 0

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestBuild(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "main.pipe"), "print(range(0, 3) |> sum)")
	out := filepath.Join(dir, "dist")

	output, err := execute(t, "build", "-o", out, src)
	if err != nil {
		t.Fatalf("build returned error: %v", err)
	}

	if !strings.Contains(output, "runtime: print, range, sum") {
		t.Errorf("build should list the runtime functions used, got:\n%s", output)
	}
	if !strings.Contains(output, "wrote JavaScript to "+filepath.Join(out, "main.mjs")) {
		t.Errorf("build should report the output file, got:\n%s", output)
	}
	for _, name := range []string{"main.mjs", "runtime.mjs"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("%s was not written: %v", name, err)
		}
	}
}

func TestBuildQuiet(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "main.pipe"), "print(1)")

	output, err := execute(t, "build", "--quiet", "-o", filepath.Join(dir, "out"), src)
	if err != nil {
		t.Fatalf("build returned error: %v", err)
	}
	if output != "" {
		t.Errorf("--quiet build printed %q", output)
	}
}

func TestBuildSyntaxError(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, filepath.Join(dir, "bad.pipe"), "print(1 |> 2)")

	_, err := execute(t, "build", "-o", filepath.Join(dir, "out"), src)
	var diag *diagnostic.Error
	if !errors.As(err, &diag) {
		t.Fatalf("expected *diagnostic.Error, got %T (%v)", err, err)
	}
	if diag.File != src || diag.Line != 1 || diag.Column != 12 {
		t.Errorf("diagnostic expected at %s:1:12, got %s:%d:%d", src, diag.File, diag.Line, diag.Column)
	}
}

func TestBuildMultipleSources(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, filepath.Join(dir, "a.pipe"), "print(1)")
	b := writeFile(t, filepath.Join(dir, "b.pipe"), "fn f(x) = x")
	out := filepath.Join(dir, "out")

	output, err := execute(t, "build", "-o", out, a, b)
	if err != nil {
		t.Fatalf("build returned error: %v", err)
	}
	ia := strings.Index(output, filepath.Join(out, "a.mjs"))
	ib := strings.Index(output, filepath.Join(out, "b.mjs"))
	if ia < 0 || ib < 0 || ia > ib {
		t.Errorf("outputs should be reported in argument order, got:\n%s", output)
	}
}

func TestBuildReportsFirstFailingSource(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, filepath.Join(dir, "good.pipe"), "print(1)")
	bad1 := writeFile(t, filepath.Join(dir, "bad1.pipe"), ")")
	bad2 := writeFile(t, filepath.Join(dir, "bad2.pipe"), "let a = 1 @ 2")
	out := filepath.Join(dir, "out")

	_, err := execute(t, "build", "-o", out, good, bad1, bad2)
	var diag *diagnostic.Error
	if !errors.As(err, &diag) || diag.File != bad1 {
		t.Fatalf("expected the diagnostic for %s, got %v", bad1, err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("nothing should be written when a source fails, stat err=%v", err)
	}
}

func TestBuildRejectsCollidingOutputs(t *testing.T) {
	dir := t.TempDir()
	for _, sub := range []string{"x", "y"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
		writeFile(t, filepath.Join(dir, sub, "main.pipe"), "print(1)")
	}

	_, err := execute(t, "build", filepath.Join(dir, "x", "main.pipe"), filepath.Join(dir, "y", "main.pipe"))
	if err == nil || !strings.Contains(err.Error(), "would both write main.mjs") {
		t.Fatalf("expected a collision error, got %v", err)
	}
}

func TestBuildRequiresOneArg(t *testing.T) {
	if _, err := execute(t, "build"); err == nil {
		t.Fatal("build without a source should fail")
	}
}

func TestInitScaffoldsCompilableProject(t *testing.T) {
	target := filepath.Join(t.TempDir(), "demo")

	output, err := execute(t, "init", target)
	if err != nil {
		t.Fatalf("init returned error: %v", err)
	}
	if !strings.Contains(output, `project "demo" initialized`) {
		t.Errorf("unexpected init output:\n%s", output)
	}

	main := filepath.Join(target, "main.pipe")
	content, err := os.ReadFile(main)
	if err != nil {
		t.Fatalf("main.pipe not written: %v", err)
	}
	if !strings.Contains(string(content), "demo: sum of odd squares is") {
		t.Errorf("template name not substituted:\n%s", content)
	}
	if _, err := compiler.CompileFile(main); err != nil {
		t.Errorf("scaffolded program does not compile: %v", err)
	}

	gitignore, err := os.ReadFile(filepath.Join(target, ".gitignore"))
	if err != nil || !strings.Contains(string(gitignore), "out/") {
		t.Errorf(".gitignore missing or wrong: %q, %v", gitignore, err)
	}
}

func TestInitQuotesProjectName(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("quotes and backslashes are not valid in windows file names")
	}
	target := filepath.Join(t.TempDir(), `say "hi" \ bye`)

	if _, err := execute(t, "init", target); err != nil {
		t.Fatalf("init returned error: %v", err)
	}

	res, err := compiler.CompileFile(filepath.Join(target, "main.pipe"))
	if err != nil {
		t.Fatalf("scaffolded program does not compile: %v", err)
	}
	want := `runtime.print("say \"hi\" \\ bye: sum of odd squares is", total);`
	if !strings.Contains(res.Code, want) {
		t.Errorf("generated code missing %s:\n%s", want, res.Code)
	}
}

func TestInitRefusesExistingDir(t *testing.T) {
	target := t.TempDir()
	_, err := execute(t, "init", target)
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected an already-exists error, got %v", err)
	}
}

func fakeNode(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake runtime is a shell script")
	}
	path := filepath.Join(t.TempDir(), "node")
	return writeExecutable(t, path, "#!/bin/sh\n"+script)
}

func writeExecutable(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestRunPassesArgsAndExitCode(t *testing.T) {
	node := fakeNode(t, `echo "args: $2 $3"
exit 4
`)
	src := writeFile(t, filepath.Join(t.TempDir(), "main.pipe"), "print(1)")

	output, err := execute(t, "run", "--node", node, src, "--", "a", "b")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 4 {
		t.Fatalf("expected ExitError{4}, got %v", err)
	}
	if !strings.Contains(output, "args: a b") {
		t.Errorf("program output missing, got %q", output)
	}
}

func TestRunSuccess(t *testing.T) {
	node := fakeNode(t, "echo ok\n")
	src := writeFile(t, filepath.Join(t.TempDir(), "main.pipe"), "print(1)")

	output, err := execute(t, "run", "--node", node, src)
	if err != nil {
		t.Fatalf("run returned error: %v", err)
	}
	if output != "ok\n" {
		t.Errorf("expected only program output, got %q", output)
	}
}

func TestDefaultNodeFromEnv(t *testing.T) {
	t.Setenv("PIPELANG_NODE", "/opt/node/bin/node")
	if got := defaultNode(); got != "/opt/node/bin/node" {
		t.Errorf("defaultNode expected env value, got %q", got)
	}
	t.Setenv("PIPELANG_NODE", "")
	if got := defaultNode(); got != compiler.DefaultNode {
		t.Errorf("defaultNode expected %q, got %q", compiler.DefaultNode, got)
	}
}

func TestEvalEntry(t *testing.T) {
	tests := []struct {
		name string
		src  string
		mode replMode
		want string
	}{
		{"js", "print(1 |> double)", modeJS, "runtime.print(double(1));\n"},
		{"ast", "1 + 2 * 3", modeAST, "(1 + (2 * 3))\n"},
		{"tokens", "x |> f", modeTokens, "  1:1\tIDENT      \"x\"\n  1:3\tPIPE       \"|>\"\n  1:6\tIDENT      \"f\"\n  1:7\tEOF        \"\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := evalEntry(&buf, tt.src, tt.mode); err != nil {
				t.Fatalf("evalEntry returned error: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("expected=%q, got=%q", tt.want, buf.String())
			}
		})
	}
}

func TestEvalEntryError(t *testing.T) {
	var buf bytes.Buffer
	err := evalEntry(&buf, ")", modeJS)
	var diag *diagnostic.Error
	if !errors.As(err, &diag) || diag.Message != "Unexpected token ')'" {
		t.Fatalf("expected unexpected-token diagnostic, got %v", err)
	}
}

func TestNeedsMoreInput(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"fn f(x) {", true},
		{"let x =", true},
		{`print("abc`, true},
		{"xs |> map(|x, i|", true},
		{"let x = 1", false},
		{")", false},
		{"let a = 1 @ 2", false},
		{"fn f(x) {\n  x * 2\n}", false},
	}
	for _, tt := range tests {
		if got := needsMoreInput(tt.src); got != tt.want {
			t.Errorf("needsMoreInput(%q) expected=%t, got=%t", tt.src, tt.want, got)
		}
	}
}
