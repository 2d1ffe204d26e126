// Command minilang is the driver for the minilang toolchain: lexer, parser,
// semantic analyzer, bytecode compiler, and stack-machine VM behind one CLI.
package main

import (
	"fmt"
	"os"

	"github.com/minilang/minilang/cmd/minilang/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
