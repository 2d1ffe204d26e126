package lexer

import (
	"testing"

	"github.com/minilang/minilang/internal/token"
)

func TestNextTokenBasic(t *testing.T) {
	input := `x = 2 + 3 * 4;`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.IDENTIFIER, "x"},
		{token.EQUALS, "="},
		{token.NUMBER, "2"},
		{token.PLUS, "+"},
		{token.NUMBER, "3"},
		{token.TIMES, "*"},
		{token.NUMBER, "4"},
		{token.SEMI, ";"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - type wrong. expected=%s, got=%s", i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q", i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestKeywordsAndMultiCharOperators(t *testing.T) {
	input := `if else while for func return break continue == != <= >= && ||`

	expected := []token.Type{
		token.IF, token.ELSE, token.WHILE, token.FOR, token.FUNC, token.RETURN, token.BREAK, token.CONTINUE,
		token.EQ, token.NE, token.LE, token.GE, token.AND, token.OR, token.EOF,
	}

	l := New(input)
	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - expected=%s, got=%s (literal=%q)", i, want, tok.Type, tok.Literal)
		}
	}
}

func TestGreedyOperatorMatching(t *testing.T) {
	// "<=" must not lex as LT followed by EQUALS.
	l := New(`a <= b < c`)
	types := []token.Type{token.IDENTIFIER, token.LE, token.IDENTIFIER, token.LT, token.IDENTIFIER, token.EOF}
	for i, want := range types {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d]: expected %s got %s", i, want, tok.Type)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		src     string
		isFloat bool
	}{
		{"123", false},
		{"123.45", true},
		{"1e10", true},
		{"1.5e-3", true},
		{"42", false},
	}

	for _, tt := range tests {
		l := New(tt.src)
		tok := l.NextToken()
		if tok.Type != token.NUMBER {
			t.Fatalf("%q: expected NUMBER, got %s", tt.src, tok.Type)
		}
		if tok.IsFloat != tt.isFloat {
			t.Fatalf("%q: expected IsFloat=%v, got %v", tt.src, tt.isFloat, tok.IsFloat)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	l := New(`"hello" 'world'`)

	tok := l.NextToken()
	if tok.Type != token.STRING || tok.StrValue != "hello" {
		t.Fatalf("expected STRING hello, got %s %q", tok.Type, tok.StrValue)
	}

	tok = l.NextToken()
	if tok.Type != token.STRING || tok.StrValue != "world" {
		t.Fatalf("expected STRING world, got %s %q", tok.Type, tok.StrValue)
	}
}

func TestCommentsAreSkippedButAdvanceLine(t *testing.T) {
	input := "x = 1; // comment\ny = 2;\n/* block\ncomment */\nz = 3;"
	l := New(input)

	var lines []int
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Type == token.IDENTIFIER {
			lines = append(lines, tok.Line)
		}
	}

	want := []int{1, 2, 5}
	if len(lines) != len(want) {
		t.Fatalf("expected %d identifiers, got %d (%v)", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("identifier %d: expected line %d, got %d", i, want[i], lines[i])
		}
	}
}

func TestIllegalCharacterRecoversAndContinues(t *testing.T) {
	l := New("x = 1 @ y;")
	var kinds []token.Type
	for {
		tok := l.NextToken()
		kinds = append(kinds, tok.Type)
		if tok.Type == token.EOF {
			break
		}
	}

	errs := l.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 lex error, got %d", len(errs))
	}
	if errs[0].Line != 1 {
		t.Fatalf("expected error on line 1, got %d", errs[0].Line)
	}

	// lexing continued past the illegal char
	found := false
	for _, k := range kinds {
		if k == token.IDENTIFIER {
			found = true
		}
	}
	if !found {
		t.Fatal("expected lexer to recover and keep producing tokens")
	}
}

func TestLineNumbersMonotonic(t *testing.T) {
	l := New("a\nb\nc")
	prev := 0
	for {
		tok := l.NextToken()
		if tok.Type == token.EOF {
			break
		}
		if tok.Line < prev {
			t.Fatalf("line numbers went backwards: %d after %d", tok.Line, prev)
		}
		prev = tok.Line
	}
}
