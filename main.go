// The main package for the clipcrawl executable.
package main

import (
	"github.com/fedrs/clipcrawl/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
