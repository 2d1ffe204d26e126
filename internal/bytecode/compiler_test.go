package bytecode

import (
	"strings"
	"testing"

	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/parser"
)

func compileSource(t *testing.T, input string) *Program {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	out, err := New().Compile(program)
	if err != nil {
		t.Fatalf("compile error: %s", err.Message)
	}
	return out
}

func TestHaltSeparatesMainFromFunctions(t *testing.T) {
	prog := compileSource(t, `func f() { return 1; } x = f();`)

	halted := false
	for _, l := range prog.Lines {
		if l == "HALT" {
			halted = true
			continue
		}
		if !halted && strings.HasPrefix(l, "FUNC_") {
			t.Fatalf("function label appeared before HALT: %v", prog.Lines)
		}
	}
	if !halted {
		t.Fatalf("expected a HALT instruction, got %v", prog.Lines)
	}
}

func TestAssignmentEmitsLoadStoreShape(t *testing.T) {
	prog := compileSource(t, `x = 2 + 3 * 4;`)
	want := []string{"PUSH 2", "PUSH 3", "PUSH 4", "MUL", "ADD", "STORE x", "HALT"}
	if len(prog.Lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, prog.Lines)
	}
	for i := range want {
		if prog.Lines[i] != want[i] {
			t.Fatalf("line %d: expected %q, got %q (full: %v)", i, want[i], prog.Lines[i], prog.Lines)
		}
	}
}

func TestIfElseEmitsLabelsInOrder(t *testing.T) {
	prog := compileSource(t, `if (x > 5) { y = 1; } else { y = 0; }`)
	joined := strings.Join(prog.Lines, "\n")
	for _, want := range []string{"JZ ELSE1", "JMP ENDIF2", "ELSE1:", "ENDIF2:"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected to find %q in:\n%s", want, joined)
		}
	}
}

func TestWhileLoopLabelShape(t *testing.T) {
	prog := compileSource(t, `while (i <= 5) { i = i + 1; }`)
	joined := strings.Join(prog.Lines, "\n")
	for _, want := range []string{"WHILE_START1:", "JMP_IF_FALSE WHILE_END2", "JMP WHILE_START1", "WHILE_END2:"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected to find %q in:\n%s", want, joined)
		}
	}
}

func TestForLoopUpdateClauseIsAssignment(t *testing.T) {
	prog := compileSource(t, `for (i = 0; i < 10; i = i + 1) { }`)
	joined := strings.Join(prog.Lines, "\n")
	if !strings.Contains(joined, "FOR_UPDATE3:\n") && !strings.Contains(joined, "FOR_UPDATE3:") {
		t.Fatalf("expected a FOR_UPDATE label, got:\n%s", joined)
	}
	if !strings.Contains(joined, "STORE i") {
		t.Fatalf("expected update clause to STORE i, got:\n%s", joined)
	}
}

func TestBreakJumpsToLoopEnd(t *testing.T) {
	prog := compileSource(t, `for (i = 0; i < 10; i = i + 1) { if (i == 3) { break; } }`)
	found := false
	for i, l := range prog.Lines {
		if l == "JZ ELSE1" {
			continue
		}
		if strings.HasPrefix(l, "JMP FOR_END") {
			found = true
			_ = i
		}
	}
	if !found {
		t.Fatalf("expected a break to JMP FOR_END, got %v", prog.Lines)
	}
}

func TestFunctionParamsStoredInReverse(t *testing.T) {
	prog := compileSource(t, `func sub(a, b) { return a - b; }`)
	joined := strings.Join(prog.Lines, "\n")
	bIdx := strings.Index(joined, "STORE b")
	aIdx := strings.Index(joined, "STORE a")
	if bIdx == -1 || aIdx == -1 || bIdx > aIdx {
		t.Fatalf("expected STORE b before STORE a (reverse param order), got:\n%s", joined)
	}
}

func TestControlFlowOutsideLoopIsCodegenError(t *testing.T) {
	l := lexer.New(`break;`)
	p := parser.New(l)
	program := p.ParseProgram()
	if _, err := New().Compile(program); err == nil {
		t.Fatal("expected a codegen error for break outside loop")
	}
}
