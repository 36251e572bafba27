// Command run executes the end-to-end corpus: every tests/good/*.pipe program
// must compile, run under node and print exactly its .out file; every
// tests/bad/*.pipe program must be rejected with a diagnostic.
//
//	go run ./test
package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

const (
	pipelangCmd = "./cmd/pipelang"
	runTimeout  = 30 * time.Second // go run compiles the CLI first
)

type testResult struct {
	fileName string
	passed   bool
	output   string // failure details
	isGood   bool
}

func main() {
	goodFiles, _ := filepath.Glob(filepath.Join("tests/good", "*.pipe"))
	badFiles, _ := filepath.Glob(filepath.Join("tests/bad", "*.pipe"))

	var results []testResult

	fmt.Println("🔍 Running good tests:")
	for _, file := range goodFiles {
		res := runGoodTest(file)
		report(res)
		results = append(results, res)
	}

	fmt.Println("\n💥 Running bad tests:")
	for _, file := range badFiles {
		res := runBadTest(file)
		report(res)
		results = append(results, res)
	}

	failed := 0
	for _, res := range results {
		if res.passed {
			continue
		}
		failed++
		kind := map[bool]string{true: "Good Test", false: "Bad Test"}[res.isGood]
		fmt.Printf("\n❌ Test: %s (%s)\nReason:\n%s\n---\n", res.fileName, kind, res.output)
	}

	fmt.Println("\n--------------------")
	fmt.Printf("Passed: %d | Failed: %d\n", len(results)-failed, failed)
	fmt.Println("--------------------")

	if failed > 0 {
		fmt.Println("\n🚨 Some tests failed!")
		os.Exit(1)
	}
	fmt.Println("\n🎉 All tests passed!")
}

func report(res testResult) {
	if res.passed {
		fmt.Printf("  ✅ %s\n", res.fileName)
	} else {
		fmt.Printf("  ❌ %s\n", res.fileName)
	}
}

func runGoodTest(file string) testResult {
	res := testResult{fileName: filepath.Base(file), isGood: true}

	expectedPath := strings.TrimSuffix(file, ".pipe") + ".out"
	expected, err := os.ReadFile(expectedPath)
	if err != nil {
		res.output = fmt.Sprintf("Missing expected output: %s", expectedPath)
		return res
	}

	stdout, stderr, err := runPipelang(file)
	if err != nil {
		res.output = fmt.Sprintf("Run failed: %v\nStderr:\n%s", err, stderr)
		return res
	}

	want := bytes.ReplaceAll(expected, []byte("\r\n"), []byte("\n"))
	if !bytes.Equal(want, stdout) {
		res.output = fmt.Sprintf("Output mismatch\nExpected:\n%s\nActual:\n%s", want, stdout)
		return res
	}

	res.passed = true
	return res
}

func runBadTest(file string) testResult {
	res := testResult{fileName: filepath.Base(file)}

	_, stderr, err := runPipelang(file)
	switch {
	case err == nil:
		res.output = "Expected failure but got success."
	case !strings.Contains(string(stderr), "error: ") || !strings.Contains(string(stderr), "-->"):
		res.output = fmt.Sprintf("Failed, but without a diagnostic.\nExit Err: %v\nStderr:\n%s", err, stderr)
	default:
		res.passed = true
	}
	return res
}

func runPipelang(file string) (stdout, stderr []byte, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, "go", "run", pipelangCmd, "run", "--quiet", file)
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	if ctx.Err() != nil {
		err = fmt.Errorf("timed out after %v", runTimeout)
	}
	return outBuf.Bytes(), errBuf.Bytes(), err
}
