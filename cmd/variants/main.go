// Command variants generates and maintains product variant combinations.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/variants/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
