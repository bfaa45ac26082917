// Command holdjudge judges hold notes from scripted or recorded input.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/holdjudge/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
