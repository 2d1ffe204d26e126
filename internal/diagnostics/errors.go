// Package diagnostics formats compiler errors with source context and a
// caret pointing at the offending line (spec.md §7).
//
// Grounded on CWBudde-go-dws/internal/errors, trimmed to minilang's
// line-only position model (no column tracking in the token stream).
package diagnostics

import (
	"fmt"
	"strings"
)

// Kind classifies a CompilerError by the pipeline stage that raised it.
type Kind string

const (
	LexError      Kind = "lex error"
	SyntaxError   Kind = "syntax error"
	SemanticError Kind = "semantic error"
	CodegenError  Kind = "codegen error"
	RuntimeError  Kind = "runtime error"
)

// CompilerError is a single diagnostic carrying its kind, message, and the
// source line it was raised against.
type CompilerError struct {
	Kind    Kind
	Message string
	Line    int
	Source  string // full program source, for caret rendering; may be empty
}

// New builds a CompilerError.
func New(kind Kind, line int, format string, args ...any) *CompilerError {
	return &CompilerError{Kind: kind, Line: line, Message: fmt.Sprintf(format, args...)}
}

// Error implements the error interface.
func (e *CompilerError) Error() string {
	return e.Format(false)
}

// Format renders the error with its source line and a caret, optionally
// with ANSI color for terminal display.
func (e *CompilerError) Format(color bool) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s: %s", e.Kind, e.Message))
	if e.Line > 0 {
		sb.WriteString(fmt.Sprintf(" (line %d)", e.Line))
	}

	if line := e.sourceLine(e.Line); line != "" {
		lineNumStr := fmt.Sprintf("\n%4d | ", e.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
	}

	return sb.String()
}

func (e *CompilerError) sourceLine(n int) string {
	if e.Source == "" || n < 1 {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if n > len(lines) {
		return ""
	}
	return lines[n-1]
}

// FormatAll renders a batch of errors, numbering them when there's more
// than one.
func FormatAll(errs []*CompilerError, color bool) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return errs[0].Format(color)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors:\n\n", len(errs)))
	for i, e := range errs {
		sb.WriteString(fmt.Sprintf("[%d/%d] ", i+1, len(errs)))
		sb.WriteString(e.Format(color))
		sb.WriteString("\n")
	}
	return sb.String()
}

// WithSource attaches source text to every error in errs, for caret
// rendering, and returns errs for chaining.
func WithSource(errs []*CompilerError, source string) []*CompilerError {
	for _, e := range errs {
		e.Source = source
	}
	return errs
}
