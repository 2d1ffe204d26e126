package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var parseEvalExpr string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a minilang file and print its AST",
	Long: `Parse a minilang program and print the resulting abstract syntax tree.

Examples:
  minilang parse script.ml
  minilang parse -e "x = 1 + 2;"`,
	Args: cobra.MaximumNArgs(1),
	RunE: parseScript,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEvalExpr, "eval", "e", "", "parse inline code instead of reading from file")
}

func parseScript(_ *cobra.Command, args []string) error {
	input, _, err := readInput(parseEvalExpr, args)
	if err != nil {
		return err
	}

	program, ferr := frontend(input, true)
	if ferr != nil {
		return ferr
	}

	fmt.Println(program.String())
	return nil
}
