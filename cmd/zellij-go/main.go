// Command zellij-go is the CLI entrypoint: attach to, list, and tear
// down sessions over the Unix-socket transport in internal/ipc.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
