// Command typica compiles filter payloads into backend queries and
// resolves connection strings into connection targets.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/typica/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
