package semantic

import (
	"strings"
	"testing"

	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/parser"
)

func expectNoErrors(t *testing.T, input string) {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	if err := New().Analyze(program); err != nil {
		t.Errorf("expected no errors, got: %s", err.Message)
	}
}

func expectError(t *testing.T, input string, wantSubstr string) {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	if len(p.Errors()) > 0 {
		t.Fatalf("parser errors: %v", p.Errors())
	}
	err := New().Analyze(program)
	if err == nil {
		t.Fatalf("expected error containing %q, got none", wantSubstr)
	}
	if !strings.Contains(err.Message, wantSubstr) {
		t.Errorf("expected error containing %q, got: %s", wantSubstr, err.Message)
	}
}

func TestAssignmentDeclaresNewSymbol(t *testing.T) {
	expectNoErrors(t, `x = 2 + 3 * 4;`)
}

func TestUndefinedVariableUse(t *testing.T) {
	expectError(t, `x = y + 1;`, "undefined variable 'y'")
}

func TestDynamicRetyping(t *testing.T) {
	expectNoErrors(t, `x = 1; x = "now a string"; x = 2.5;`)
}

// minilang has no `null` keyword, so the null tests build the AST directly.
func TestNullAssignmentKeepsPriorType(t *testing.T) {
	a := New()
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Assignment{Target: &ast.Identifier{Name: "x"}, Value: &ast.Literal{Value: int64(1)}},
		&ast.Assignment{Target: &ast.Identifier{Name: "x"}, Value: &ast.Literal{Value: nil}},
	}}
	if err := a.Analyze(prog); err != nil {
		t.Fatalf("expected no errors, got: %s", err.Message)
	}
	if sym, ok := a.symbols.Resolve("x"); !ok || sym.Type != "int" {
		t.Fatalf("expected x to keep type int, got %+v", sym)
	}
}

func TestStringConcatenationWithAnything(t *testing.T) {
	expectNoErrors(t, `x = "n=" + 1;`)
}

func TestModuloRequiresInt(t *testing.T) {
	expectError(t, `x = 1.5 % 2;`, "modulo")
}

func TestEqualityAcrossMismatchedTypesFails(t *testing.T) {
	expectError(t, `x = 1; y = "a"; z = x == y;`, "cannot compare")
}

func TestEqualityWithNullAlwaysOK(t *testing.T) {
	prog := &ast.Program{Statements: []ast.Statement{
		&ast.Assignment{Target: &ast.Identifier{Name: "x"}, Value: &ast.Literal{Value: int64(1)}},
		&ast.Assignment{Target: &ast.Identifier{Name: "y"}, Value: &ast.BinOp{
			Op: "==", Left: &ast.Identifier{Name: "x"}, Right: &ast.Literal{Value: nil},
		}},
	}}
	if err := New().Analyze(prog); err != nil {
		t.Errorf("expected no errors, got: %s", err.Message)
	}
}

func TestRelationalOnStrings(t *testing.T) {
	expectNoErrors(t, `x = ("a" < "b");`)
}

func TestLogicalRequiresBool(t *testing.T) {
	expectError(t, `x = 1 && 2;`, "requires bool")
}

func TestUnknownParameterInferredFromUse(t *testing.T) {
	expectNoErrors(t, `
		func double(n) {
			return n * 2;
		}
		x = double(21);
	`)
}

func TestBreakOutsideLoopFails(t *testing.T) {
	expectError(t, `break;`, "outside loop")
}

func TestContinueInsideWhileOK(t *testing.T) {
	expectNoErrors(t, `i = 0; while (i < 3) { i = i + 1; continue; }`)
}

func TestReturnOutsideFunctionFails(t *testing.T) {
	expectError(t, `return 1;`, "outside function")
}

func TestFunctionCallArityMismatch(t *testing.T) {
	expectError(t, `
		func add(a, b) { return a + b; }
		x = add(1);
	`, "argument count mismatch")
}

func TestCallingNonFunctionFails(t *testing.T) {
	expectError(t, `x = 1; y = x(1);`, "is not a function")
}

func TestForLoopCounterVisibleAfterLoop(t *testing.T) {
	expectNoErrors(t, `
		for (i = 0; i < 10; i = i + 1) {
			if (i == 3) { break; }
		}
		r = i;
	`)
}

func TestAssignmentToOuterVariableInBlockIsPermitted(t *testing.T) {
	expectNoErrors(t, `
		x = 1;
		if (x == 1) {
			x = 2;
		}
	`)
}

func TestSymbolTablePushPopAndShadow(t *testing.T) {
	st := NewSymbolTable()
	st.Declare(&Symbol{Name: "x", Type: "int"})
	st.PushScope()
	st.Declare(&Symbol{Name: "x", Type: "string"})

	sym, ok := st.Resolve("x")
	if !ok || sym.Type != "string" {
		t.Fatalf("expected innermost x to be string, got %+v", sym)
	}

	st.PopScope()
	sym, ok = st.Resolve("x")
	if !ok || sym.Type != "int" {
		t.Fatalf("expected outer x to be int after pop, got %+v", sym)
	}
}

func TestIdentifierTypeUnknownForBareParam(t *testing.T) {
	a := New()
	a.symbols.Declare(&Symbol{Name: "p"})
	typ, err := a.analyzeExpr(&ast.Identifier{Name: "p"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err.Message)
	}
	if typ != "unknown" {
		t.Fatalf("expected unknown, got %s", typ)
	}
}
