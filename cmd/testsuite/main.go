// Command testsuite runs conformance test suites against an external
// document-validation engine.
package main

import (
	"fmt"
	"os"

	"github.com/altova/sec-edgar-tools/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
