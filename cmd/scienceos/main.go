// Command scienceos is the entry point for the science IR tooling.
package main

import (
	"os"

	"github.com/riokid4/science-os/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
