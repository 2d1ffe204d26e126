// Package bytecode compiles a validated AST into minilang's textual
// stack-machine bytecode (spec.md §3.4, §4.4): an ordered sequence of
// label lines ("L3:") and instruction lines ("OP operand...").
//
// Grounded on CWBudde-go-dws/internal/bytecode's Compiler/loopContext
// split (a loop stack of break/continue targets, a monotonic label
// counter), adapted from the teacher's binary Chunk/opcode format to the
// line-based textual instruction set original_source/compiler/stack_codegen.py
// emits — this port keeps no constant pool or slot allocator because
// minilang variables are referenced by name at runtime (spec.md §3.5).
package bytecode

import (
	"fmt"
	"strconv"

	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/diagnostics"
)

// Program is the compiled output: the main sequence followed by function
// bodies, per spec.md §4.4's program emission order.
type Program struct {
	Lines []string
}

type loopContext struct {
	breakLabel    string
	continueLabel string
}

// Compiler performs a single forward walk over a Program AST.
type Compiler struct {
	code         []string
	functionCode []string
	labelCount   int
	loopStack    []loopContext
}

// New returns a ready-to-use Compiler.
func New() *Compiler {
	return &Compiler{}
}

// newLabel returns a fresh label name; the counter is shared across all
// prefixes (spec.md §4.4).
func (c *Compiler) newLabel(prefix string) string {
	c.labelCount++
	return fmt.Sprintf("%s%d", prefix, c.labelCount)
}

func (c *Compiler) emit(format string, args ...any) {
	c.code = append(c.code, fmt.Sprintf(format, args...))
}

func (c *Compiler) emitLabel(label string) {
	c.code = append(c.code, label+":")
}

// Compile walks prog and returns the finished bytecode Program.
func (c *Compiler) Compile(prog *ast.Program) (*Program, *diagnostics.CompilerError) {
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.FunctionDef); ok {
			continue
		}
		if err := c.genStatement(stmt); err != nil {
			return nil, err
		}
	}
	c.emit("HALT")

	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FunctionDef); ok {
			if err := c.genFunctionDef(fn); err != nil {
				return nil, err
			}
		}
	}

	return &Program{Lines: append(c.code, c.functionCode...)}, nil
}

func (c *Compiler) genStatement(stmt ast.Statement) *diagnostics.CompilerError {
	switch n := stmt.(type) {
	case *ast.Block:
		return c.genBlock(n)
	case *ast.Assignment:
		return c.genAssignment(n)
	case *ast.ExprStatement:
		if err := c.genExpr(n.Expr); err != nil {
			return err
		}
		c.emit("POP")
		return nil
	case *ast.IfStatement:
		return c.genIf(n)
	case *ast.WhileStatement:
		return c.genWhile(n)
	case *ast.ForStatement:
		return c.genFor(n)
	case *ast.FunctionDef:
		return c.genFunctionDef(n)
	case *ast.ReturnStatement:
		return c.genReturn(n)
	case *ast.ControlFlow:
		return c.genControlFlow(n)
	default:
		return diagnostics.New(diagnostics.CodegenError, stmt.Line(), "no codegen rule for %T", stmt)
	}
}

func (c *Compiler) genBlock(b *ast.Block) *diagnostics.CompilerError {
	for _, stmt := range b.Statements {
		if err := c.genStatement(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (c *Compiler) genExpr(expr ast.Expression) *diagnostics.CompilerError {
	switch n := expr.(type) {
	case *ast.Literal:
		return c.genLiteral(n)
	case *ast.Identifier:
		c.emit("LOAD %s", n.Name)
		return nil
	case *ast.Assignment:
		return c.genAssignment(n)
	case *ast.BinOp:
		return c.genBinOp(n)
	case *ast.UnaryOp:
		return c.genUnaryOp(n)
	case *ast.FunCall:
		return c.genFunCall(n)
	default:
		return diagnostics.New(diagnostics.CodegenError, expr.Line(), "no codegen rule for %T", expr)
	}
}

func (c *Compiler) genLiteral(lit *ast.Literal) *diagnostics.CompilerError {
	switch v := lit.Value.(type) {
	case nil:
		c.emit("PUSH null")
	case bool:
		c.emit("PUSH %v", v)
	case int64:
		c.emit("PUSH %s", strconv.FormatInt(v, 10))
	case float64:
		c.emit("PUSH %s", strconv.FormatFloat(v, 'g', -1, 64))
	case string:
		c.emit("PUSH %q", v)
	default:
		return diagnostics.New(diagnostics.CodegenError, lit.Line(), "unsupported literal value %v", v)
	}
	return nil
}

func (c *Compiler) genAssignment(asg *ast.Assignment) *diagnostics.CompilerError {
	if err := c.genExpr(asg.Value); err != nil {
		return err
	}
	c.emit("STORE %s", asg.Target.Name)
	return nil
}

var opcodeByOperator = map[string]string{
	"+": "ADD", "-": "SUB", "*": "MUL", "/": "DIV", "%": "MOD",
	"<": "LT", ">": "GT", "<=": "LE", ">=": "GE",
	"==": "EQ", "!=": "NEQ", "&&": "AND", "||": "OR",
}

func (c *Compiler) genBinOp(b *ast.BinOp) *diagnostics.CompilerError {
	if err := c.genExpr(b.Left); err != nil {
		return err
	}
	if err := c.genExpr(b.Right); err != nil {
		return err
	}
	op, ok := opcodeByOperator[b.Op]
	if !ok {
		return diagnostics.New(diagnostics.CodegenError, b.Line(), "unknown operator '%s'", b.Op)
	}
	c.emit(op)
	return nil
}

func (c *Compiler) genUnaryOp(u *ast.UnaryOp) *diagnostics.CompilerError {
	if err := c.genExpr(u.Expr); err != nil {
		return err
	}
	if u.Op == "-" {
		c.emit("NEG")
	}
	return nil
}

func (c *Compiler) genIf(stmt *ast.IfStatement) *diagnostics.CompilerError {
	elseLabel := c.newLabel("ELSE")
	endLabel := c.newLabel("ENDIF")

	if err := c.genExpr(stmt.Condition); err != nil {
		return err
	}
	c.emit("JZ %s", elseLabel)

	if err := c.genBlock(stmt.Then); err != nil {
		return err
	}
	c.emit("JMP %s", endLabel)

	c.emitLabel(elseLabel)
	if stmt.Else != nil {
		if err := c.genStatement(stmt.Else); err != nil {
			return err
		}
	}
	c.emitLabel(endLabel)
	return nil
}

func (c *Compiler) genWhile(stmt *ast.WhileStatement) *diagnostics.CompilerError {
	startLabel := c.newLabel("WHILE_START")
	endLabel := c.newLabel("WHILE_END")

	c.loopStack = append(c.loopStack, loopContext{breakLabel: endLabel, continueLabel: startLabel})
	defer c.popLoop()

	c.emitLabel(startLabel)
	if err := c.genExpr(stmt.Condition); err != nil {
		return err
	}
	c.emit("JMP_IF_FALSE %s", endLabel)

	if err := c.genBlock(stmt.Body); err != nil {
		return err
	}
	c.emit("JMP %s", startLabel)
	c.emitLabel(endLabel)
	return nil
}

func (c *Compiler) genFor(stmt *ast.ForStatement) *diagnostics.CompilerError {
	if stmt.Init != nil {
		if err := c.genAssignment(stmt.Init); err != nil {
			return err
		}
	}

	startLabel := c.newLabel("FOR_START")
	endLabel := c.newLabel("FOR_END")
	updateLabel := c.newLabel("FOR_UPDATE")

	c.loopStack = append(c.loopStack, loopContext{breakLabel: endLabel, continueLabel: updateLabel})
	defer c.popLoop()

	c.emitLabel(startLabel)
	if stmt.Condition != nil {
		if err := c.genExpr(stmt.Condition); err != nil {
			return err
		}
		c.emit("JMP_IF_FALSE %s", endLabel)
	}

	if err := c.genBlock(stmt.Body); err != nil {
		return err
	}

	c.emitLabel(updateLabel)
	if stmt.Update != nil {
		// The update clause is conventionally an assignment (STORE consumes
		// its value); a bare expression here would leak a stack slot per
		// iteration, matching original_source/compiler/stack_codegen.py.
		if err := c.genExpr(stmt.Update); err != nil {
			return err
		}
	}

	c.emit("JMP %s", startLabel)
	c.emitLabel(endLabel)
	return nil
}

func (c *Compiler) popLoop() {
	c.loopStack = c.loopStack[:len(c.loopStack)-1]
}

// genFunctionDef compiles fn into a separate buffer, appended after the
// main sequence once Compile finishes (spec.md §4.4 program emission
// order).
func (c *Compiler) genFunctionDef(fn *ast.FunctionDef) *diagnostics.CompilerError {
	savedCode := c.code
	c.code = nil

	c.emitLabel("FUNC_" + fn.Name)
	for i := len(fn.Params) - 1; i >= 0; i-- {
		c.emit("STORE %s", fn.Params[i].Name)
	}
	if err := c.genBlock(fn.Body); err != nil {
		c.code = savedCode
		return err
	}
	c.emit("PUSH 0")
	c.emit("RET")

	c.functionCode = append(c.functionCode, c.code...)
	c.code = savedCode
	return nil
}

func (c *Compiler) genFunCall(call *ast.FunCall) *diagnostics.CompilerError {
	for _, arg := range call.Args {
		if err := c.genExpr(arg); err != nil {
			return err
		}
	}
	c.emit("CALL FUNC_%s %d", call.Callee.Name, len(call.Args))
	return nil
}

func (c *Compiler) genReturn(stmt *ast.ReturnStatement) *diagnostics.CompilerError {
	if stmt.Value != nil {
		if err := c.genExpr(stmt.Value); err != nil {
			return err
		}
	} else {
		c.emit("PUSH 0")
	}
	c.emit("RET")
	return nil
}

func (c *Compiler) genControlFlow(stmt *ast.ControlFlow) *diagnostics.CompilerError {
	if len(c.loopStack) == 0 {
		return diagnostics.New(diagnostics.CodegenError, stmt.Line(), "%s used outside loop", stmt.Keyword)
	}
	top := c.loopStack[len(c.loopStack)-1]
	if stmt.Keyword == "BREAK" {
		c.emit("JMP %s", top.breakLabel)
	} else {
		c.emit("JMP %s", top.continueLabel)
	}
	return nil
}
