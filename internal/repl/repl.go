// Package repl implements an interactive read-eval-print loop over the
// minilang pipeline, reusing the same lexer/parser/semantic/bytecode/vm
// stages the batch CLI drives.
//
// Grounded on akashmaji946-go-mix/repl/repl.go's use of
// github.com/chzyer/readline for line editing/history and
// github.com/fatih/color for colored output, adapted so each line is
// compiled and run on a fresh VM seeded with the variables left by the
// previous lines.
package repl

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/minilang/minilang/internal/bytecode"
	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/parser"
	"github.com/minilang/minilang/internal/semantic"
	"github.com/minilang/minilang/internal/vm"
)

var (
	promptColor = color.New(color.FgCyan)
	errorColor  = color.New(color.FgRed)
	resultColor = color.New(color.FgYellow)
	bannerColor = color.New(color.FgGreen)
)

// Repl is an interactive session. Each accepted line is lexed, parsed,
// semantically analyzed, compiled, and executed against a VM whose
// variable map persists across lines, so a REPL session behaves like one
// long-running program typed incrementally.
type Repl struct {
	Prompt string
}

// New returns a Repl with the given prompt string.
func New(prompt string) *Repl {
	return &Repl{Prompt: prompt}
}

// Start runs the loop until EOF (Ctrl+D) or the `.exit` command.
func (r *Repl) Start(writer io.Writer) error {
	bannerColor.Fprintln(writer, "minilang repl — type `.exit` or Ctrl+D to quit")

	rl, err := readline.New(promptColor.Sprint(r.Prompt))
	if err != nil {
		return err
	}
	defer rl.Close()

	vars := map[string]vm.Value{}

	for {
		line, err := rl.Readline()
		if err != nil {
			fmt.Fprintln(writer, "")
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == ".exit" {
			return nil
		}

		rl.SaveHistory(line)
		vars = r.evalLine(writer, line, vars)
	}
}

// evalLine runs one line through the full pipeline, seeding the VM's
// variable map with vars so prior assignments stay visible, and returns
// the updated map.
func (r *Repl) evalLine(writer io.Writer, line string, vars map[string]vm.Value) map[string]vm.Value {
	l := lexer.New(line)
	p := parser.New(l)
	program := p.ParseProgram()

	if len(p.Errors()) > 0 {
		for _, e := range p.Errors() {
			errorColor.Fprintf(writer, "%s\n", e)
		}
		return vars
	}

	analyzer := semantic.New()
	for name, v := range vars {
		analyzer.Seed(name, v.Type())
	}
	if serr := analyzer.Analyze(program); serr != nil {
		errorColor.Fprintf(writer, "%s\n", serr.Format(false))
		return vars
	}

	compiled, cerr := bytecode.New().Compile(program)
	if cerr != nil {
		errorColor.Fprintf(writer, "%s\n", cerr.Format(false))
		return vars
	}

	machine := vm.New(compiled)
	machine.SeedVars(vars)

	next, rerr := machine.Run()
	if rerr != nil {
		errorColor.Fprintf(writer, "%s\n", rerr.Format(false))
		return vars
	}

	for name, v := range next {
		if prior, ok := vars[name]; !ok || prior != v {
			resultColor.Fprintf(writer, "%s = %s\n", name, v.String())
		}
	}

	return next
}
