// Command daleel runs the Daleel election data service.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/daleel/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
