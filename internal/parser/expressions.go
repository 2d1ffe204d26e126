package parser

import (
	"fmt"

	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/token"
)

// parseExpression is the Pratt-parser core: parse a prefix expression, then
// keep folding in infix operators while they bind tighter than precedence.
// On return curToken is the last token of the expression.
func (p *Parser) parseExpression(precedence int) ast.Expression {
	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError()
		return nil
	}
	left := prefix()

	for !p.peekTokenIs(token.SEMI) && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return left
		}
		p.nextToken()
		left = infix(left)
	}

	return left
}

func (p *Parser) noPrefixParseFnError() {
	lit := p.curToken.Literal
	if p.curTokenIs(token.EOF) {
		lit = "EOF"
	}
	p.errors = append(p.errors, fmt.Sprintf("Syntax error: unexpected token '%s' at line %d", lit, p.curToken.Line))
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.curToken
	if tok.IsFloat {
		return &ast.Literal{LineNo: tok.Line, Value: tok.FloatValue}
	}
	return &ast.Literal{LineNo: tok.Line, Value: tok.IntValue}
}

func (p *Parser) parseStringLiteral() ast.Expression {
	return &ast.Literal{LineNo: p.curToken.Line, Value: p.curToken.StrValue}
}

// parseIdentifierOrCall disambiguates a FunCall from a plain Identifier by
// whether '(' immediately follows (spec.md §4.2 parser policy notes).
func (p *Parser) parseIdentifierOrCall() ast.Expression {
	line := p.curToken.Line
	name := p.curToken.Literal

	if !p.peekTokenIs(token.LPAREN) {
		return &ast.Identifier{LineNo: line, Name: name}
	}

	p.nextToken() // curToken = '('
	call := &ast.FunCall{LineNo: line, Callee: &ast.Identifier{LineNo: line, Name: name}}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken() // curToken = ')'
		return call
	}

	p.nextToken()
	call.Args = append(call.Args, p.parseExpression(LOWEST))
	for p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		call.Args = append(call.Args, p.parseExpression(LOWEST))
	}

	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return call
}

func (p *Parser) parseUnaryExpression() ast.Expression {
	line := p.curToken.Line
	op := p.curToken.Literal
	p.nextToken()
	operand := p.parseExpression(PREFIX)
	return &ast.UnaryOp{LineNo: line, Op: op, Expr: operand}
}

func (p *Parser) parseGroupedExpression() ast.Expression {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseBinaryExpression(left ast.Expression) ast.Expression {
	line := p.curToken.Line
	op := p.curToken.Literal
	precedence := p.curPrecedence()
	p.nextToken()
	right := p.parseExpression(precedence)
	return &ast.BinOp{LineNo: line, Op: op, Left: left, Right: right}
}
