package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arnavsurve/pipelang/cmd"
	"github.com/arnavsurve/pipelang/internal/compiler/diagnostic"
)

func main() {
	err := cmd.Execute()
	if err == nil {
		return
	}

	var exitErr *cmd.ExitError
	if errors.As(err, &exitErr) {
		os.Exit(exitErr.Code)
	}

	var diag *diagnostic.Error
	if errors.As(err, &diag) {
		fmt.Fprint(os.Stderr, diag.Render())
	} else {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(1)
}
