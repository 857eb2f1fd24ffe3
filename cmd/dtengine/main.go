// Command dtengine resolves type descriptors and coerces columns of values
// to canonical data types.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/dtengine/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
