// Package vm implements the minilang stack machine (spec.md §3.5, §4.5).
//
// Grounded on CWBudde-go-dws/internal/bytecode's VM struct shape (stack,
// label-resolved-once-at-load design) and its internal/interp/runtime
// Value interface, adapted from original_source's stack_interpreter.py
// for exact instruction semantics.
package vm

import (
	"strconv"
)

// Value is anything the operand stack or variable map can hold (spec.md
// §3.5): int, float, string, bool, or null. Grounded on
// CWBudde-go-dws/internal/interp/runtime.Value, scaled down from its
// NumericValue/ComparableValue/OrderableValue interface family since
// minilang has no user-defined types to dispatch polymorphically over —
// the VM's own arithmetic helpers type-switch directly instead.
type Value interface {
	Type() string
	String() string
}

// IntValue is a 64-bit signed integer.
type IntValue int64

func (v IntValue) Type() string   { return "int" }
func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }

// FloatValue is a 64-bit floating point number.
type FloatValue float64

func (v FloatValue) Type() string   { return "float" }
func (v FloatValue) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }

// StringValue is a string.
type StringValue string

func (v StringValue) Type() string   { return "string" }
func (v StringValue) String() string { return string(v) }

// BoolValue is a boolean.
type BoolValue bool

func (v BoolValue) Type() string   { return "bool" }
func (v BoolValue) String() string { return strconv.FormatBool(bool(v)) }

// NullValue is what `PUSH null` yields: the compiled form of an ast.Literal
// with a nil value. The source language has no `null` keyword.
type NullValue struct{}

func (NullValue) Type() string   { return "null" }
func (NullValue) String() string { return "null" }

// isTruthy implements spec.md §4.5's falsy rule: zero numeric, empty
// string, false, and absent are falsy; everything else is truthy.
func isTruthy(v Value) bool {
	switch x := v.(type) {
	case nil:
		return false
	case NullValue:
		return false
	case IntValue:
		return x != 0
	case FloatValue:
		return x != 0
	case StringValue:
		return x != ""
	case BoolValue:
		return bool(x)
	default:
		return true
	}
}

func isNumeric(v Value) bool {
	switch v.(type) {
	case IntValue, FloatValue:
		return true
	default:
		return false
	}
}

func asFloat(v Value) float64 {
	switch x := v.(type) {
	case IntValue:
		return float64(x)
	case FloatValue:
		return float64(x)
	default:
		return 0
	}
}

// stringify renders v for '+' string concatenation against a non-string
// operand.
func stringify(v Value) string {
	if v == nil {
		return "null"
	}
	return v.String()
}

// parsePushOperand decodes a PUSH instruction's operand text back into a
// Value (spec.md §4.5's PUSH semantics). String operands are emitted with
// Go's %q verb (compiler.go's genLiteral), so they are decoded with
// strconv.Unquote rather than by stripping the outer quotes, which would
// leave embedded `\"`, `\\`, and `\t` escapes un-inverted.
func parsePushOperand(text string) Value {
	if text == "null" {
		return NullValue{}
	}
	if text == "true" || text == "false" {
		return BoolValue(text == "true")
	}
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		if s, err := strconv.Unquote(text); err == nil {
			return StringValue(s)
		}
	}
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return IntValue(i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return FloatValue(f)
	}
	return StringValue(text)
}
