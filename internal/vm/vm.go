package vm

import (
	"fmt"
	"io"
	"strings"

	"github.com/minilang/minilang/internal/bytecode"
	"github.com/minilang/minilang/internal/diagnostics"
)

// maxCallDepth guards against runaway recursion overflowing the host stack.
const maxCallDepth = 1024

// VM executes a compiled Program (spec.md §4.5).
type VM struct {
	stack     []Value
	vars      map[string]Value
	callStack []int
	labels    map[string]int
	lines     []line
	trace     io.Writer
}

type line struct {
	op   string
	rest string   // raw text after the opcode, unsplit (PUSH operands may contain spaces)
	args []string // rest, whitespace-split; valid for opcodes whose operands cannot contain spaces
}

// New builds a VM from prog, pre-resolving every label to its index.
func New(prog *bytecode.Program) *VM {
	vm := &VM{
		vars:   make(map[string]Value),
		labels: make(map[string]int),
		lines:  make([]line, len(prog.Lines)),
	}

	for i, text := range prog.Lines {
		if strings.HasSuffix(text, ":") {
			vm.labels[strings.TrimSuffix(text, ":")] = i
			vm.lines[i] = line{op: ""}
			continue
		}
		op, rest, _ := strings.Cut(text, " ")
		vm.lines[i] = line{op: op, rest: rest, args: strings.Fields(rest)}
	}

	return vm
}

// SeedVars pre-populates the variable map before Run, letting a REPL carry
// prior lines' bindings into the next line's VM instance.
func (vm *VM) SeedVars(vars map[string]Value) {
	for name, v := range vars {
		vm.vars[name] = v
	}
}

// SetTrace makes Run log every dispatched instruction to w, in execution
// order, before it runs — including instructions reached through a taken
// branch or CALL, as opposed to the compiler's static listing.
func (vm *VM) SetTrace(w io.Writer) {
	vm.trace = w
}

// Run executes the program from instruction 0 and returns the final
// variable map (spec.md §3.5, §4.5 termination rules).
func (vm *VM) Run() (map[string]Value, *diagnostics.CompilerError) {
	ip := 0
	for ip < len(vm.lines) {
		ln := vm.lines[ip]
		curIP := ip
		ip++

		if ln.op == "" {
			continue // label line
		}

		if vm.trace != nil {
			fmt.Fprintf(vm.trace, "[trace] %4d | %s %s\n", curIP, ln.op, ln.rest)
		}

		nextIP, halt, err := vm.step(ln, ip)
		if err != nil {
			return nil, err
		}
		if halt {
			break
		}
		ip = nextIP
	}
	return vm.vars, nil
}

func (vm *VM) step(ln line, ip int) (nextIP int, halt bool, err *diagnostics.CompilerError) {
	switch ln.op {
	case "HALT":
		return ip, true, nil

	case "PUSH":
		vm.push(parsePushOperand(ln.rest))

	case "LOAD":
		if v, ok := vm.vars[ln.args[0]]; ok {
			vm.push(v)
		} else {
			vm.push(IntValue(0))
		}

	case "STORE":
		vm.vars[ln.args[0]] = vm.pop()

	case "ADD":
		b, a := vm.pop(), vm.pop()
		v, e := add(a, b)
		if e != nil {
			return 0, false, e
		}
		vm.push(v)

	case "SUB":
		b, a := vm.pop(), vm.pop()
		if !isNumeric(a) || !isNumeric(b) {
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "cannot subtract %T and %T", a, b)
		}
		vm.push(arith(a, b, func(x, y IntValue) IntValue { return x - y }, func(x, y FloatValue) FloatValue { return x - y }))

	case "MUL":
		b, a := vm.pop(), vm.pop()
		vm.push(arith(a, b, func(x, y IntValue) IntValue { return x * y }, func(x, y FloatValue) FloatValue { return x * y }))

	case "DIV":
		b, a := vm.pop(), vm.pop()
		v, e := divide(a, b)
		if e != nil {
			return 0, false, e
		}
		vm.push(v)

	case "MOD":
		b, a := vm.pop(), vm.pop()
		ai, aok := a.(IntValue)
		bi, bok := b.(IntValue)
		if !aok || !bok {
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "modulo requires integer operands, got %T and %T", a, b)
		}
		if bi == 0 {
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "modulo by zero")
		}
		vm.push(ai % bi)

	case "LT":
		b, a := vm.pop(), vm.pop()
		vm.push(BoolValue(compare(a, b) < 0))
	case "LE":
		b, a := vm.pop(), vm.pop()
		vm.push(BoolValue(compare(a, b) <= 0))
	case "GT":
		b, a := vm.pop(), vm.pop()
		vm.push(BoolValue(compare(a, b) > 0))
	case "GE":
		b, a := vm.pop(), vm.pop()
		vm.push(BoolValue(compare(a, b) >= 0))
	case "EQ":
		b, a := vm.pop(), vm.pop()
		vm.push(BoolValue(valuesEqual(a, b)))
	case "NEQ":
		b, a := vm.pop(), vm.pop()
		vm.push(BoolValue(!valuesEqual(a, b)))

	case "AND":
		b, a := vm.pop(), vm.pop()
		if isTruthy(a) {
			vm.push(b)
		} else {
			vm.push(a)
		}
	case "OR":
		b, a := vm.pop(), vm.pop()
		if isTruthy(a) {
			vm.push(a)
		} else {
			vm.push(b)
		}

	case "NEG":
		a := vm.pop()
		switch x := a.(type) {
		case IntValue:
			vm.push(-x)
		case FloatValue:
			vm.push(-x)
		default:
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "cannot negate %T", a)
		}

	case "POP":
		vm.pop()

	case "JZ", "JMP_IF_FALSE":
		v := vm.pop()
		if !isTruthy(v) {
			target, ok := vm.label(ln.args[0])
			if !ok {
				return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "missing label '%s'", ln.args[0])
			}
			ip = target
		}

	case "JMP":
		target, ok := vm.label(ln.args[0])
		if !ok {
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "missing label '%s'", ln.args[0])
		}
		ip = target

	case "CALL":
		if len(vm.callStack) >= maxCallDepth {
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "call stack overflow (depth > %d)", maxCallDepth)
		}
		target, ok := vm.label(ln.args[0])
		if !ok {
			return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "missing label '%s'", ln.args[0])
		}
		vm.callStack = append(vm.callStack, ip)
		ip = target

	case "RET":
		if len(vm.callStack) == 0 {
			return ip, true, nil
		}
		ip = vm.callStack[len(vm.callStack)-1]
		vm.callStack = vm.callStack[:len(vm.callStack)-1]

	default:
		return 0, false, diagnostics.New(diagnostics.RuntimeError, 0, "unknown opcode '%s'", ln.op)
	}

	return ip, false, nil
}

// label resolves a label name to its instruction index. A miss is a
// RuntimeError (spec.md §7), reported the same way as an unknown opcode
// rather than crashing the host process.
func (vm *VM) label(name string) (int, bool) {
	idx, ok := vm.labels[name]
	return idx, ok
}

func (vm *VM) push(v Value) { vm.stack = append(vm.stack, v) }

func (vm *VM) pop() Value {
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v
}

func add(a, b Value) (Value, *diagnostics.CompilerError) {
	if as, ok := a.(StringValue); ok {
		return as + StringValue(stringify(b)), nil
	}
	if bs, ok := b.(StringValue); ok {
		return StringValue(stringify(a)) + bs, nil
	}
	if !isNumeric(a) || !isNumeric(b) {
		return nil, diagnostics.New(diagnostics.RuntimeError, 0, "cannot add %T and %T", a, b)
	}
	return arith(a, b, func(x, y IntValue) IntValue { return x + y }, func(x, y FloatValue) FloatValue { return x + y }), nil
}

func divide(a, b Value) (Value, *diagnostics.CompilerError) {
	if !isNumeric(a) || !isNumeric(b) {
		return nil, diagnostics.New(diagnostics.RuntimeError, 0, "cannot divide %T and %T", a, b)
	}
	ai, aIsInt := a.(IntValue)
	bi, bIsInt := b.(IntValue)
	if aIsInt && bIsInt {
		if bi == 0 {
			return nil, diagnostics.New(diagnostics.RuntimeError, 0, "division by zero")
		}
		return ai / bi, nil
	}
	return FloatValue(asFloat(a) / asFloat(b)), nil
}

// arith applies intOp when both operands are IntValue, otherwise floatOp
// after widening both to float64 (spec.md §4.3's "float if either operand
// is float, else int" rule, enforced here at runtime too).
func arith(a, b Value, intOp func(IntValue, IntValue) IntValue, floatOp func(FloatValue, FloatValue) FloatValue) Value {
	ai, aIsInt := a.(IntValue)
	bi, bIsInt := b.(IntValue)
	if aIsInt && bIsInt {
		return intOp(ai, bi)
	}
	return floatOp(FloatValue(asFloat(a)), FloatValue(asFloat(b)))
}

func compare(a, b Value) int {
	if as, ok := a.(StringValue); ok {
		bs, _ := b.(StringValue)
		return strings.Compare(string(as), string(bs))
	}
	af, bf := asFloat(a), asFloat(b)
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

func valuesEqual(a, b Value) bool {
	if isNumeric(a) && isNumeric(b) {
		return asFloat(a) == asFloat(b)
	}
	return a == b
}
