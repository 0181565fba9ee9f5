// Command aggsig-helper generates keys, signs and verifies aggregated
// Schnorr signatures from the command line. It is a thin JSON-in/JSON-out
// wrapper meant for scripting and interoperability tests.
package main

import (
	"fmt"
	"os"

	"github.com/f3rmion/aggsig/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
