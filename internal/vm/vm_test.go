package vm

import (
	"testing"

	"github.com/minilang/minilang/internal/bytecode"
	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/parser"
	"github.com/minilang/minilang/internal/semantic"
)

// run lexes, parses, analyzes, compiles, and executes src end-to-end,
// mirroring the pipeline the CLI driver wires together.
func run(t *testing.T, src string) map[string]Value {
	t.Helper()
	l := lexer.New(src)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if err := semantic.New().Analyze(program); err != nil {
		t.Fatalf("semantic error: %s", err.Message)
	}
	compiled, err := bytecode.New().Compile(program)
	if err != nil {
		t.Fatalf("codegen error: %s", err.Message)
	}
	vars, rerr := New(compiled).Run()
	if rerr != nil {
		t.Fatalf("runtime error: %s", rerr.Message)
	}
	return vars
}

// TestArithmeticAndAssignment is spec.md §8 scenario 1.
func TestArithmeticAndAssignment(t *testing.T) {
	vars := run(t, `x = 2 + 3 * 4;`)
	if vars["x"] != IntValue(14) {
		t.Fatalf("expected x=14, got %v", vars["x"])
	}
}

// TestConditionalBranch is spec.md §8 scenario 2.
func TestConditionalBranch(t *testing.T) {
	vars := run(t, `x = 10; if (x > 5) { y = 1; } else { y = 0; }`)
	if vars["x"] != IntValue(10) || vars["y"] != IntValue(1) {
		t.Fatalf("expected x=10 y=1, got %v", vars)
	}
}

// TestWhileLoopSum is spec.md §8 scenario 3.
func TestWhileLoopSum(t *testing.T) {
	vars := run(t, `s = 0; i = 1; while (i <= 5) { s = s + i; i = i + 1; }`)
	if vars["s"] != IntValue(15) || vars["i"] != IntValue(6) {
		t.Fatalf("expected s=15 i=6, got %v", vars)
	}
}

// TestForLoopWithBreak is spec.md §8 scenario 4.
func TestForLoopWithBreak(t *testing.T) {
	vars := run(t, `for (i = 0; i < 10; i = i + 1) { if (i == 3) { break; } } r = i;`)
	if vars["r"] != IntValue(3) {
		t.Fatalf("expected r=3, got %v", vars)
	}
}

// TestFunctionWithParameters is spec.md §8 scenario 5.
func TestFunctionWithParameters(t *testing.T) {
	l := lexer.New(`func add(a, b) { return a + b; } z = add(7, 35);`)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if err := semantic.New().Analyze(program); err != nil {
		t.Fatalf("semantic error: %s", err.Message)
	}
	compiled, err := bytecode.New().Compile(program)
	if err != nil {
		t.Fatalf("codegen error: %s", err.Message)
	}
	theVM := New(compiled)
	vars, rerr := theVM.Run()
	if rerr != nil {
		t.Fatalf("runtime error: %s", rerr.Message)
	}
	if vars["z"] != IntValue(42) {
		t.Fatalf("expected z=42, got %v", vars["z"])
	}
	if len(theVM.stack) != 0 {
		t.Fatalf("expected empty operand stack at termination, got %v", theVM.stack)
	}
}

func TestSemanticRejectionOfModuloOnString(t *testing.T) {
	l := lexer.New(`x = "foo"; y = x % 2;`)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	err := semantic.New().Analyze(program)
	if err == nil {
		t.Fatal("expected a semantic error")
	}
	if !contains(err.Message, "Modulo") && !contains(err.Message, "modulo") {
		t.Fatalf("expected a modulo error, got: %s", err.Message)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

func TestStringConcatenationWithNumber(t *testing.T) {
	vars := run(t, `x = "n=" + 1;`)
	if vars["x"] != StringValue("n=1") {
		t.Fatalf("expected x=%q, got %v", "n=1", vars["x"])
	}
}

func TestFalsyValues(t *testing.T) {
	vars := run(t, `
		a = 0;
		b = "";
		c = (1 > 2);
		x = 1;
		if (a) { x = 0; }
		if (b) { x = 0; }
		if (c) { x = 0; }
	`)
	if vars["x"] != IntValue(1) {
		t.Fatalf("expected falsy values to skip their branches, got x=%v", vars["x"])
	}
}

func TestLogicalOperatorsReturnOperand(t *testing.T) {
	vars := run(t, `
		x = (1 < 2) && (3 < 4);
		y = (1 > 2) || (3 < 4);
	`)
	if vars["x"] != BoolValue(true) || vars["y"] != BoolValue(true) {
		t.Fatalf("expected x=true y=true, got %v %v", vars["x"], vars["y"])
	}
}

func TestRecursiveFunctionCall(t *testing.T) {
	vars := run(t, `
		func fact(n) {
			if (n <= 1) { return 1; }
			return n * fact(n - 1);
		}
		r = fact(5);
	`)
	if vars["r"] != IntValue(120) {
		t.Fatalf("expected r=120, got %v", vars["r"])
	}
}

func TestDivisionByZeroIsRuntimeError(t *testing.T) {
	l := lexer.New(`x = 1 / 0;`)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if err := semantic.New().Analyze(program); err != nil {
		t.Fatalf("unexpected semantic error: %s", err.Message)
	}
	compiled, err := bytecode.New().Compile(program)
	if err != nil {
		t.Fatalf("unexpected codegen error: %s", err.Message)
	}
	if _, rerr := New(compiled).Run(); rerr == nil {
		t.Fatal("expected a runtime error for division by zero")
	}
}
