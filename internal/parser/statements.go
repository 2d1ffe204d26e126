package parser

import (
	"github.com/minilang/minilang/internal/ast"
	"github.com/minilang/minilang/internal/token"
)

// parseStatement dispatches on the current token to the matching statement
// grammar rule (spec.md §4.2). On return curToken is the last token of the
// statement. Returns nil (with a recorded error) on a malformed statement.
func (p *Parser) parseStatement() ast.Statement {
	switch p.curToken.Type {
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.FUNC:
		return p.parseFunctionDef()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.BREAK:
		return p.parseControlFlow("BREAK")
	case token.CONTINUE:
		return p.parseControlFlow("CONTINUE")
	case token.LBRACE:
		return p.parseBlock()
	case token.IDENTIFIER:
		if p.peekTokenIs(token.EQUALS) {
			return p.parseAssignmentStatement()
		}
		return p.parseExprStatement()
	default:
		return p.parseExprStatement()
	}
}

func (p *Parser) parseAssignmentStatement() *ast.Assignment {
	line := p.curToken.Line
	target := &ast.Identifier{LineNo: line, Name: p.curToken.Literal}

	if !p.expectPeek(token.EQUALS) {
		return nil
	}
	p.nextToken()

	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}

	if !p.expectPeek(token.SEMI) {
		return nil
	}
	return &ast.Assignment{LineNo: line, Target: target, Value: value}
}

// parseAssignmentNoSemi parses `IDENT = expr` without a trailing `;`, used
// for the for-loop init clause (spec.md §4.2 grammar: `assign?`). On return
// curToken is the last token of the value expression.
func (p *Parser) parseAssignmentNoSemi() *ast.Assignment {
	line := p.curToken.Line
	target := &ast.Identifier{LineNo: line, Name: p.curToken.Literal}

	if !p.expectPeek(token.EQUALS) {
		return nil
	}
	p.nextToken()

	value := p.parseExpression(LOWEST)
	if value == nil {
		return nil
	}
	return &ast.Assignment{LineNo: line, Target: target, Value: value}
}

func (p *Parser) parseExprStatement() *ast.ExprStatement {
	line := p.curToken.Line
	expr := p.parseExpression(LOWEST)
	if expr == nil {
		return nil
	}
	if !p.expectPeek(token.SEMI) {
		return nil
	}
	return &ast.ExprStatement{LineNo: line, Expr: expr}
}

// parseBlock parses `{ statement* }`. On return curToken is the closing `}`.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{LineNo: p.curToken.Line}
	p.nextToken() // move past '{'

	for !p.curTokenIs(token.RBRACE) && !p.curTokenIs(token.EOF) {
		errCountBefore := len(p.errors)
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if len(p.errors) > errCountBefore {
			p.synchronize()
			continue
		}
		p.nextToken()
	}

	if !p.curTokenIs(token.RBRACE) {
		p.curError("expected '}' to close block")
	}
	return block
}

// wrapAsBlock wraps a bare (non-brace) statement body in a Block so
// if/while/for bodies are uniformly *ast.Block, matching spec.md §3.2's
// IfStatement/WhileStatement/ForStatement shape.
func wrapAsBlock(stmt ast.Statement) *ast.Block {
	if b, ok := stmt.(*ast.Block); ok {
		return b
	}
	if stmt == nil {
		return &ast.Block{}
	}
	return &ast.Block{LineNo: stmt.Line(), Statements: []ast.Statement{stmt}}
}

func (p *Parser) parseIfStatement() *ast.IfStatement {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	thenStmt := p.parseStatement()

	stmt := &ast.IfStatement{LineNo: line, Condition: cond, Then: wrapAsBlock(thenStmt)}

	if p.peekTokenIs(token.ELSE) {
		p.nextToken() // curToken = ELSE
		p.nextToken() // curToken = first token of else-branch
		if p.curTokenIs(token.IF) {
			// `else if` nests directly, binding to the nearest enclosing if
			// (spec.md §4.2 parser notes: dangling-else resolution).
			stmt.Else = p.parseIfStatement()
		} else {
			stmt.Else = wrapAsBlock(p.parseStatement())
		}
	}

	return stmt
}

func (p *Parser) parseWhileStatement() *ast.WhileStatement {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	p.nextToken()
	body := p.parseStatement()
	return &ast.WhileStatement{LineNo: line, Condition: cond, Body: wrapAsBlock(body)}
}

func (p *Parser) parseForStatement() *ast.ForStatement {
	line := p.curToken.Line
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	p.nextToken()

	stmt := &ast.ForStatement{LineNo: line}

	if !p.curTokenIs(token.SEMI) {
		stmt.Init = p.parseAssignmentNoSemi()
		p.nextToken()
	}
	if !p.curTokenIs(token.SEMI) {
		p.curError("expected ';' after for-loop init clause")
		return nil
	}
	p.nextToken()

	if !p.curTokenIs(token.SEMI) {
		stmt.Condition = p.parseExpression(LOWEST)
		p.nextToken()
	}
	if !p.curTokenIs(token.SEMI) {
		p.curError("expected ';' after for-loop condition")
		return nil
	}
	p.nextToken()

	if !p.curTokenIs(token.RPAREN) {
		stmt.Update = p.parseForUpdateClause()
		p.nextToken()
	}
	if !p.curTokenIs(token.RPAREN) {
		p.curError("expected ')' to close for-loop header")
		return nil
	}
	p.nextToken()

	body := p.parseStatement()
	stmt.Body = wrapAsBlock(body)
	return stmt
}

// parseForUpdateClause parses a for-loop's update clause as an assignment
// (`i = i + 1`) when it starts with `IDENT =`, and as a plain expression
// otherwise.
func (p *Parser) parseForUpdateClause() ast.Expression {
	if p.curTokenIs(token.IDENTIFIER) && p.peekTokenIs(token.EQUALS) {
		return p.parseAssignmentNoSemi()
	}
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseFunctionDef() *ast.FunctionDef {
	line := p.curToken.Line
	if !p.expectPeek(token.IDENTIFIER) {
		return nil
	}
	name := p.curToken.Literal

	if !p.expectPeek(token.LPAREN) {
		return nil
	}

	var params []*ast.Identifier
	if !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		params = append(params, &ast.Identifier{LineNo: p.curToken.Line, Name: p.curToken.Literal})
		for p.peekTokenIs(token.COMMA) {
			p.nextToken()
			p.nextToken()
			params = append(params, &ast.Identifier{LineNo: p.curToken.Line, Name: p.curToken.Literal})
		}
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	body := p.parseBlock()
	return &ast.FunctionDef{LineNo: line, Name: name, Params: params, Body: body}
}

func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	line := p.curToken.Line
	stmt := &ast.ReturnStatement{LineNo: line}

	if p.peekTokenIs(token.SEMI) {
		p.nextToken()
		return stmt
	}

	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if !p.expectPeek(token.SEMI) {
		return nil
	}
	return stmt
}

func (p *Parser) parseControlFlow(keyword string) *ast.ControlFlow {
	line := p.curToken.Line
	if !p.expectPeek(token.SEMI) {
		return nil
	}
	return &ast.ControlFlow{LineNo: line, Keyword: keyword}
}
