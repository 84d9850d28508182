// Command climate runs the temperature prediction pipeline, the CSV to SQL
// exporters, and the loader and report that use the exported tables.
package main

import (
	"os"

	"climate/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
