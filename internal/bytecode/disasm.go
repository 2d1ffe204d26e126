package bytecode

import (
	"fmt"
	"io"
	"strings"
)

// Disassembler renders a compiled Program for debugging, numbering each
// instruction line and leaving labels unindented.
//
// Grounded on CWBudde-go-dws/internal/bytecode/disasm.go's writer-based
// Disassembler, scaled down from its chunk/constant-pool view to
// minilang's already-textual instruction format.
type Disassembler struct {
	writer io.Writer
	prog   *Program
}

// NewDisassembler creates a Disassembler writing to w.
func NewDisassembler(prog *Program, w io.Writer) *Disassembler {
	return &Disassembler{writer: w, prog: prog}
}

// Disassemble prints every line of the program, prefixing instruction lines
// with their index; label lines are printed as they are.
func (d *Disassembler) Disassemble() {
	fmt.Fprintf(d.writer, "; %d instructions\n", len(d.prog.Lines))
	for i, text := range d.prog.Lines {
		if strings.HasSuffix(text, ":") {
			fmt.Fprintf(d.writer, "%s\n", text)
			continue
		}
		fmt.Fprintf(d.writer, "%4d  %s\n", i, text)
	}
}
