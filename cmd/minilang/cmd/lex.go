package cmd

import (
	"fmt"
	"os"

	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/token"
	"github.com/spf13/cobra"
)

var (
	lexEvalExpr string
	showType    bool
	onlyErrors  bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a minilang file or expression",
	Long: `Tokenize (lex) a minilang program and print the resulting tokens.

Examples:
  minilang lex script.ml
  minilang lex -e "x = 1 + 2;"
  minilang lex --show-type --only-errors script.ml`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)

	lexCmd.Flags().StringVarP(&lexEvalExpr, "eval", "e", "", "tokenize inline code instead of reading from file")
	lexCmd.Flags().BoolVar(&showType, "show-type", false, "show token type names")
	lexCmd.Flags().BoolVar(&onlyErrors, "only-errors", false, "show only illegal tokens")
}

func lexScript(cmd *cobra.Command, args []string) error {
	input, filename, err := readInput(lexEvalExpr, args)
	if err != nil {
		return err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		fmt.Printf("Tokenizing: %s\n", filename)
	}

	l := lexer.New(input)

	tokenCount := 0
	for {
		tok := l.NextToken()
		if onlyErrors && tok.Type != token.ILLEGAL {
			if tok.Type == token.EOF {
				break
			}
			continue
		}
		tokenCount++
		printToken(tok)
		if tok.Type == token.EOF {
			break
		}
	}

	if errs := l.Errors(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "lex error: %s (line %d)\n", e.Message, e.Line)
		}
		return fmt.Errorf("found %d illegal token(s)", len(errs))
	}

	if verbose {
		fmt.Printf("Total tokens: %d\n", tokenCount)
	}
	return nil
}

func printToken(tok token.Token) {
	var output string
	if showType {
		output = fmt.Sprintf("[%-10s]", tok.Type)
	}
	switch tok.Type {
	case token.EOF:
		output += " EOF"
	case token.ILLEGAL:
		output += fmt.Sprintf(" ILLEGAL: %q", tok.Literal)
	default:
		output += fmt.Sprintf(" %q", tok.Literal)
	}
	output += fmt.Sprintf(" @%d", tok.Line)
	fmt.Println(output)
}
