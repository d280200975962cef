// Command granite runs the animated album browser headlessly and reports
// what the scheduler did.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/granite/cmd/granite/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
