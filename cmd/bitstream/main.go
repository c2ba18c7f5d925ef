// Command bitstream resolves bitstreams of repository items and manages the registry
// of running applications.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
