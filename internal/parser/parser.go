// Package parser implements a Pratt parser for minilang (spec.md §4.2).
//
// Grounded on CWBudde-go-dws/internal/parser/parser.go's prefix/infix
// function-table design, scaled to the seven precedence levels spec.md §4.2
// names instead of the teacher's fifteen (this language has no member
// access, indexing, or type casts).
package parser

import (
	"fmt"

	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/lexer"
	"github.com/minilang/minilang/internal/token"
)

// Precedence levels, lowest to highest (spec.md §4.2).
const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	EQUALITY
	RELATIONAL
	SUM
	PRODUCT
	PREFIX
)

var precedences = map[token.Type]int{
	token.OR:     OR_PREC,
	token.AND:    AND_PREC,
	token.EQ:     EQUALITY,
	token.NE:     EQUALITY,
	token.LT:     RELATIONAL,
	token.LE:     RELATIONAL,
	token.GT:     RELATIONAL,
	token.GE:     RELATIONAL,
	token.PLUS:   SUM,
	token.MINUS:  SUM,
	token.TIMES:  PRODUCT,
	token.DIVIDE: PRODUCT,
	token.MOD:    PRODUCT,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

// Parser consumes a token stream and produces a Program AST.
type Parser struct {
	l *lexer.Lexer

	curToken  token.Token
	peekToken token.Token

	errors []string

	prefixParseFns map[token.Type]prefixParseFn
	infixParseFns  map[token.Type]infixParseFn
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}

	p.prefixParseFns = map[token.Type]prefixParseFn{
		token.NUMBER:     p.parseNumberLiteral,
		token.STRING:     p.parseStringLiteral,
		token.IDENTIFIER: p.parseIdentifierOrCall,
		token.MINUS:      p.parseUnaryExpression,
		token.NOT:        p.parseUnaryExpression,
		token.LPAREN:     p.parseGroupedExpression,
	}

	p.infixParseFns = map[token.Type]infixParseFn{
		token.OR:     p.parseBinaryExpression,
		token.AND:    p.parseBinaryExpression,
		token.EQ:     p.parseBinaryExpression,
		token.NE:     p.parseBinaryExpression,
		token.LT:     p.parseBinaryExpression,
		token.LE:     p.parseBinaryExpression,
		token.GT:     p.parseBinaryExpression,
		token.GE:     p.parseBinaryExpression,
		token.PLUS:   p.parseBinaryExpression,
		token.MINUS:  p.parseBinaryExpression,
		token.TIMES:  p.parseBinaryExpression,
		token.DIVIDE: p.parseBinaryExpression,
		token.MOD:    p.parseBinaryExpression,
	}

	p.nextToken()
	p.nextToken()
	return p
}

// Errors returns every SyntaxError recorded while parsing.
func (p *Parser) Errors() []string {
	return p.errors
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curTokenIs(t token.Type) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.Type) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.Type) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.Type) {
	p.errors = append(p.errors, fmt.Sprintf(
		"Syntax error: expected %s but got %s ('%s') at line %d",
		t, p.peekToken.Type, p.peekToken.Literal, p.peekToken.Line))
}

func (p *Parser) curError(msg string) {
	lit := p.curToken.Literal
	if p.curTokenIs(token.EOF) {
		lit = "EOF"
	}
	p.errors = append(p.errors, fmt.Sprintf("Syntax error: %s, got '%s' at line %d", msg, lit, p.curToken.Line))
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peekToken.Type]; ok {
		return pr
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if pr, ok := precedences[p.curToken.Type]; ok {
		return pr
	}
	return LOWEST
}

// ParseProgram parses the entire token stream into a Program node. On
// syntax error it records a diagnostic, synchronizes at the next statement
// boundary, and keeps going so multiple errors can be reported in one pass;
// the caller must check Errors() before trusting the returned tree.
//
// Convention: every parseX helper leaves curToken on the LAST token it
// consumed; callers advance with nextToken() before parsing what follows.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		errCountBefore := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if stmt == nil && len(p.errors) == errCountBefore {
			// defensive: a nil statement with no new error would stall the loop
			p.curError("unexpected token")
		}
		if len(p.errors) > errCountBefore {
			p.synchronize()
			continue
		}
		p.nextToken()
	}

	return program
}

// synchronize discards tokens until a plausible statement boundary, so a
// single malformed statement doesn't cascade into spurious further errors.
func (p *Parser) synchronize() {
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMI) {
			p.nextToken()
			return
		}
		if p.curTokenIs(token.RBRACE) {
			p.nextToken()
			return
		}
		p.nextToken()
	}
}
