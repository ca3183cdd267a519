// splitwrap splits a set of declaration files into a fixed number of binding
// modules, generates them and compiles them in parallel.
package main

import (
	"fmt"
	"os"
)

// Version is set at link time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
