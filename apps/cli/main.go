// Command gradebook edits class gradebooks on the remote service.
package main

import (
	"fmt"
	"os"

	"github.com/bobur6/professor-ai-helper/core"
)

func main() {
	cli := commandLine{
		conf:   core.NewConfig(),
		in:     os.Stdin,
		out:    os.Stdout,
		errOut: os.Stderr,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp && err != errReported {
			msg := core.UserMessage(err)
			if msg == core.MsgGeneric {
				msg = err.Error()
			}
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
		os.Exit(1)
	}
}
