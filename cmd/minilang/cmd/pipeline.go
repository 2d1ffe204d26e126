package cmd

import (
	"fmt"
	"os"

	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/diagnostics"
	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/parser"
	"github.com/minilang/minilang/internal/semantic"
)

// frontend lexes and parses input, optionally running semantic analysis,
// and reports any error (batched through diagnostics.FormatAll for parse
// errors, since there can be more than one) before returning it. It is the
// shared front half of parse/check/compile/run.
func frontend(input string, skipCheck bool) (*ast.Program, error) {
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		errs := make([]*diagnostics.CompilerError, len(p.Errors()))
		for i, e := range p.Errors() {
			errs[i] = diagnostics.New(diagnostics.SyntaxError, 0, "%s", e)
		}
		diagnostics.WithSource(errs, input)
		fmt.Fprintln(os.Stderr, diagnostics.FormatAll(errs, true))
		return nil, fmt.Errorf("parsing failed with %d error(s)", len(p.Errors()))
	}

	if !skipCheck {
		if serr := semantic.New().Analyze(program); serr != nil {
			serr.Source = input
			fmt.Fprintln(os.Stderr, serr.Format(true))
			return nil, fmt.Errorf("semantic analysis failed")
		}
	}

	return program, nil
}
