// Command changeprob authors, checks and publishes scene tables for the
// change-probability experiment.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/changeprob/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands write their coded report to stdout; stderr gets the summary.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
