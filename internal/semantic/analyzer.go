// Package semantic walks the parsed AST, resolving names against a
// lexically-scoped symbol table and performing minilang's implicit typing
// rules (spec.md §4.3).
//
// Grounded on CWBudde-go-dws/internal/semantic's analyzer.go dispatch
// shape, scaled down to the monotonic/dynamic typing model of
// original_source/compiler/semantic_analyzer.py instead of the teacher's
// static structural type system.
package semantic

import (
	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/diagnostics"
)

// Analyzer performs a single fail-fast pass over a Program.
type Analyzer struct {
	symbols         *SymbolTable
	currentFunction string
	loopDepth       int
}

// New returns an Analyzer with a fresh global scope.
func New() *Analyzer {
	return &Analyzer{symbols: NewSymbolTable()}
}

// Seed declares name as an existing global symbol of the given type before
// analysis starts, letting a REPL session carry prior lines' bindings into
// each new line's Analyze call.
func (a *Analyzer) Seed(name, typ string) {
	a.symbols.Declare(&Symbol{Name: name, Type: typ})
}

// Analyze type-checks and resolves prog, returning the first error
// encountered or nil on success.
func (a *Analyzer) Analyze(prog *ast.Program) *diagnostics.CompilerError {
	for _, stmt := range prog.Statements {
		if _, err := a.analyzeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// analyzeStatement dispatches on concrete statement type. The returned
// string is only meaningful for ExprStatement's wrapped expression; most
// statements yield "".
func (a *Analyzer) analyzeStatement(stmt ast.Statement) (string, *diagnostics.CompilerError) {
	switch n := stmt.(type) {
	case *ast.Block:
		return "", a.analyzeBlock(n)
	case *ast.Assignment:
		return a.analyzeAssignment(n)
	case *ast.ExprStatement:
		return a.analyzeExpr(n.Expr)
	case *ast.IfStatement:
		return "", a.analyzeIf(n)
	case *ast.WhileStatement:
		return "", a.analyzeWhile(n)
	case *ast.ForStatement:
		return "", a.analyzeFor(n)
	case *ast.FunctionDef:
		return "", a.analyzeFunctionDef(n)
	case *ast.ReturnStatement:
		return "", a.analyzeReturn(n)
	case *ast.ControlFlow:
		return "", a.analyzeControlFlow(n)
	default:
		return "", diagnostics.New(diagnostics.SemanticError, stmt.Line(), "no analyzer rule for %T", stmt)
	}
}

func (a *Analyzer) analyzeBlock(b *ast.Block) *diagnostics.CompilerError {
	a.symbols.PushScope()
	defer a.symbols.PopScope()
	for _, stmt := range b.Statements {
		if _, err := a.analyzeStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

// analyzeExpr dispatches on concrete expression type, returning its
// inferred type tag.
func (a *Analyzer) analyzeExpr(expr ast.Expression) (string, *diagnostics.CompilerError) {
	switch n := expr.(type) {
	case *ast.Literal:
		return literalType(n), nil
	case *ast.Identifier:
		return a.analyzeIdentifier(n)
	case *ast.Assignment:
		return a.analyzeAssignment(n)
	case *ast.BinOp:
		return a.analyzeBinOp(n)
	case *ast.UnaryOp:
		return a.analyzeUnaryOp(n)
	case *ast.FunCall:
		return a.analyzeFunCall(n)
	default:
		return "", diagnostics.New(diagnostics.SemanticError, expr.Line(), "no analyzer rule for %T", expr)
	}
}

func literalType(lit *ast.Literal) string {
	switch lit.Value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "string"
	default:
		return "unknown"
	}
}

func (a *Analyzer) analyzeIdentifier(id *ast.Identifier) (string, *diagnostics.CompilerError) {
	sym, ok := a.symbols.Resolve(id.Name)
	if !ok {
		return "", diagnostics.New(diagnostics.SemanticError, id.Line(), "use of undefined variable '%s'", id.Name)
	}
	if sym.Type == "" {
		return "unknown", nil
	}
	return sym.Type, nil
}

// analyzeAssignment implements spec.md §4.3's implicit typing: a fresh
// target is declared with the value's type; an existing target's type is
// overwritten unless the new value is null, which leaves a concrete type
// in place.
func (a *Analyzer) analyzeAssignment(asg *ast.Assignment) (string, *diagnostics.CompilerError) {
	valueType, err := a.analyzeExpr(asg.Value)
	if err != nil {
		return "", err
	}

	sym, exists := a.symbols.Resolve(asg.Target.Name)
	if !exists {
		sym = &Symbol{Name: asg.Target.Name, Type: valueType, Line: asg.Line()}
		a.symbols.Declare(sym)
		return valueType, nil
	}

	if valueType == "null" {
		if sym.Type == "" {
			sym.Type = "null"
		}
		return valueType, nil
	}

	if sym.Type == "" || sym.Type == "null" {
		sym.Type = valueType
		return valueType, nil
	}

	sym.Type = valueType
	return valueType, nil
}

// analyzeBinOp implements the unknown-propagation rules and operator
// typing table of spec.md §4.3.
func (a *Analyzer) analyzeBinOp(b *ast.BinOp) (string, *diagnostics.CompilerError) {
	lt, err := a.analyzeExpr(b.Left)
	if err != nil {
		return "", err
	}
	rt, err := a.analyzeExpr(b.Right)
	if err != nil {
		return "", err
	}

	isArith := b.Op == "+" || b.Op == "-" || b.Op == "*" || b.Op == "/" || b.Op == "%"

	if lt == "unknown" && rt != "unknown" {
		lt = rt
		a.retype(b.Left, lt)
	}
	if rt == "unknown" && lt != "unknown" {
		rt = lt
		a.retype(b.Right, rt)
	}
	if lt == "unknown" && rt == "unknown" && isArith {
		lt, rt = "int", "int"
		a.retype(b.Left, "int")
		a.retype(b.Right, "int")
	}

	switch {
	case b.Op == "+" && (lt == "string" || rt == "string"):
		return "string", nil

	case b.Op == "%":
		if lt != "int" || rt != "int" {
			return "", diagnostics.New(diagnostics.SemanticError, b.Line(),
				"modulo '%%' requires integer operands, got %s and %s", lt, rt)
		}
		return "int", nil

	case isArith && isNumeric(lt) && isNumeric(rt):
		if lt == "float" || rt == "float" {
			return "float", nil
		}
		return "int", nil

	case b.Op == "==" || b.Op == "!=":
		if lt == "null" || rt == "null" {
			return "bool", nil
		}
		if lt != rt {
			return "", diagnostics.New(diagnostics.SemanticError, b.Line(),
				"cannot compare '%s' with '%s' using '%s'", lt, rt, b.Op)
		}
		return "bool", nil

	case b.Op == "<" || b.Op == "<=" || b.Op == ">" || b.Op == ">=":
		if isNumeric(lt) && isNumeric(rt) {
			return "bool", nil
		}
		if lt == "string" && rt == "string" {
			return "bool", nil
		}
		return "", diagnostics.New(diagnostics.SemanticError, b.Line(),
			"operator '%s' not supported between '%s' and '%s'", b.Op, lt, rt)

	case b.Op == "&&" || b.Op == "||":
		if lt == "bool" && rt == "bool" {
			return "bool", nil
		}
		return "", diagnostics.New(diagnostics.SemanticError, b.Line(),
			"logical operator '%s' requires bool operands, got %s and %s", b.Op, lt, rt)
	}

	return lt, nil
}

func isNumeric(t string) bool { return t == "int" || t == "float" }

// retype writes t back into the Symbol an Identifier operand resolves to,
// so later uses observe the inferred type (spec.md §4.3).
func (a *Analyzer) retype(expr ast.Expression, t string) {
	id, ok := expr.(*ast.Identifier)
	if !ok {
		return
	}
	if sym, found := a.symbols.Resolve(id.Name); found {
		sym.Type = t
	}
}

func (a *Analyzer) analyzeUnaryOp(u *ast.UnaryOp) (string, *diagnostics.CompilerError) {
	return a.analyzeExpr(u.Expr)
}

func (a *Analyzer) analyzeIf(stmt *ast.IfStatement) *diagnostics.CompilerError {
	if _, err := a.analyzeExpr(stmt.Condition); err != nil {
		return err
	}
	if err := a.analyzeBlock(stmt.Then); err != nil {
		return err
	}
	if stmt.Else != nil {
		if _, err := a.analyzeStatement(stmt.Else); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeWhile(stmt *ast.WhileStatement) *diagnostics.CompilerError {
	if _, err := a.analyzeExpr(stmt.Condition); err != nil {
		return err
	}
	a.loopDepth++
	err := a.analyzeBlock(stmt.Body)
	a.loopDepth--
	return err
}

// analyzeFor deliberately does NOT push a scope around init/condition/update:
// the VM's variable map is flat and global at runtime (spec.md §3.5), and a
// loop counter declared by init must stay resolvable after the loop ends
// (spec.md §8 scenario 4 reads the counter right after the loop). Only the
// body gets its own scope, via analyzeBlock.
func (a *Analyzer) analyzeFor(stmt *ast.ForStatement) *diagnostics.CompilerError {
	if stmt.Init != nil {
		if _, err := a.analyzeAssignment(stmt.Init); err != nil {
			return err
		}
	}
	if stmt.Condition != nil {
		if _, err := a.analyzeExpr(stmt.Condition); err != nil {
			return err
		}
	}
	if stmt.Update != nil {
		if _, err := a.analyzeExpr(stmt.Update); err != nil {
			return err
		}
	}

	a.loopDepth++
	err := a.analyzeBlock(stmt.Body)
	a.loopDepth--
	return err
}

func (a *Analyzer) analyzeFunctionDef(fn *ast.FunctionDef) *diagnostics.CompilerError {
	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = p.Name
	}
	a.symbols.Declare(&Symbol{Name: fn.Name, Type: "function", Line: fn.Line(), Params: params})

	a.symbols.PushScope()
	prevFunction := a.currentFunction
	a.currentFunction = fn.Name

	for _, p := range fn.Params {
		a.symbols.Declare(&Symbol{Name: p.Name, Line: fn.Line()})
	}

	err := a.analyzeBlock(fn.Body)

	a.currentFunction = prevFunction
	a.symbols.PopScope()
	return err
}

func (a *Analyzer) analyzeFunCall(call *ast.FunCall) (string, *diagnostics.CompilerError) {
	sym, ok := a.symbols.Resolve(call.Callee.Name)
	if !ok {
		return "", diagnostics.New(diagnostics.SemanticError, call.Line(), "use of undefined variable '%s'", call.Callee.Name)
	}
	if sym.Type != "function" {
		return "", diagnostics.New(diagnostics.SemanticError, call.Line(), "'%s' is not a function", call.Callee.Name)
	}
	if len(call.Args) != len(sym.Params) {
		return "", diagnostics.New(diagnostics.SemanticError, call.Line(), "argument count mismatch calling %s", call.Callee.Name)
	}
	for _, arg := range call.Args {
		if _, err := a.analyzeExpr(arg); err != nil {
			return "", err
		}
	}
	return "unknown", nil
}

func (a *Analyzer) analyzeReturn(stmt *ast.ReturnStatement) *diagnostics.CompilerError {
	if a.currentFunction == "" {
		return diagnostics.New(diagnostics.SemanticError, stmt.Line(), "'return' outside function")
	}
	if stmt.Value != nil {
		if _, err := a.analyzeExpr(stmt.Value); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) analyzeControlFlow(stmt *ast.ControlFlow) *diagnostics.CompilerError {
	if a.loopDepth == 0 {
		return diagnostics.New(diagnostics.SemanticError, stmt.Line(), "'%s' used outside loop", stmt.Keyword)
	}
	return nil
}
