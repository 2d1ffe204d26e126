package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkEvalExpr string

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Run semantic analysis without compiling or executing",
	Long: `Parse and semantically analyze a minilang program, reporting the
first error encountered, without generating bytecode or running it.

Examples:
  minilang check script.ml
  minilang check -e "x = 1 % 1.5;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: checkScript,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkEvalExpr, "eval", "e", "", "check inline code instead of reading from file")
}

func checkScript(_ *cobra.Command, args []string) error {
	input, _, err := readInput(checkEvalExpr, args)
	if err != nil {
		return err
	}

	if _, ferr := frontend(input, false); ferr != nil {
		return ferr
	}

	fmt.Println("OK")
	return nil
}
