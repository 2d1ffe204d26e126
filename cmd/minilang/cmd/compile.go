package cmd

import (
	"fmt"
	"os"

	"github.com/minilang/minilang/internal/bytecode"
	"github.com/spf13/cobra"
)

var (
	compileEvalExpr string
	disasm          bool
	skipTypeCheck   bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a minilang program to bytecode",
	Long: `Run the lexer, parser, semantic analyzer, and bytecode compiler,
and print the emitted textual bytecode.

Examples:
  minilang compile script.ml
  minilang compile --disasm script.ml`,
	Args: cobra.MaximumNArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileEvalExpr, "eval", "e", "", "compile inline code instead of reading from file")
	compileCmd.Flags().BoolVar(&disasm, "disasm", false, "print a disassembly instead of raw bytecode lines")
	compileCmd.Flags().BoolVar(&skipTypeCheck, "skip-type-check", false, "skip semantic analysis before compiling")
}

func compileScript(_ *cobra.Command, args []string) error {
	input, _, err := readInput(compileEvalExpr, args)
	if err != nil {
		return err
	}

	prog, ferr := frontend(input, skipTypeCheck)
	if ferr != nil {
		return ferr
	}

	compiled, cerr := bytecode.New().Compile(prog)
	if cerr != nil {
		cerr.Source = input
		fmt.Fprintln(os.Stderr, cerr.Format(true))
		return fmt.Errorf("compilation failed")
	}

	if disasm {
		bytecode.NewDisassembler(compiled, os.Stdout).Disassemble()
		return nil
	}

	for _, line := range compiled.Lines {
		fmt.Println(line)
	}
	return nil
}
