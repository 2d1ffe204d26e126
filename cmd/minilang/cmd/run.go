package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/minilang/minilang/internal/bytecode"
	"github.com/minilang/minilang/internal/vm"
	"github.com/spf13/cobra"
)

var (
	runEvalExpr string
	dumpAST     bool
	trace       bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a minilang file or expression",
	Long: `Execute a minilang program from a file or inline expression, printing
the final variable dump on success.

Examples:
  minilang run script.ml
  minilang run -e "x = 2 + 3 * 4;"
  minilang run --trace script.ml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runEvalExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	runCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "dump the parsed AST before running")
	runCmd.Flags().BoolVar(&trace, "trace", false, "trace each executed instruction to stderr")
}

func runScript(_ *cobra.Command, args []string) error {
	input, filename, err := readInput(runEvalExpr, args)
	if err != nil {
		return err
	}

	program, ferr := frontend(input, false)
	if ferr != nil {
		return ferr
	}

	if dumpAST {
		fmt.Println("AST:")
		fmt.Println(program.String())
		fmt.Println()
	}

	compiled, cerr := bytecode.New().Compile(program)
	if cerr != nil {
		cerr.Source = input
		fmt.Fprintln(os.Stderr, cerr.Format(true))
		return fmt.Errorf("compilation failed")
	}

	machine := vm.New(compiled)
	if trace {
		fmt.Fprintf(os.Stderr, "[trace] running %s\n", filename)
		machine.SetTrace(os.Stderr)
	}

	vars, rerr := machine.Run()
	if rerr != nil {
		rerr.Source = input
		fmt.Fprintln(os.Stderr, rerr.Format(true))
		return fmt.Errorf("execution failed")
	}

	printVars(vars)
	return nil
}

func printVars(vars map[string]vm.Value) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s = %s\n", name, vars[name].String())
	}
}
