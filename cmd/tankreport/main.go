// Command tankreport serves, prints and exports the Sri Lanka small tanks
// report.
//
//	tankreport serve  [--port N]
//	tankreport render [--section S] [--district D]...
//	tankreport export [--out DIR] [--format csv,xlsx,png]
//
// Every command reads the same configuration: TANKS_* environment
// variables, optionally merged with a YAML file given by --config.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
