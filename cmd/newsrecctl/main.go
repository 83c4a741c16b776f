// Command newsrecctl queries a news corpus from the terminal.
package main

import (
	"os"

	"github.com/kailas-cloud/newsrec/cmd/newsrecctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
