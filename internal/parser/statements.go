package parser

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
)

func (p *Parser) block() ([]ast.Statement, *diag.Diagnostic) {
	var statements []ast.Statement
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	return statements, nil
}

func (p *Parser) statement() (ast.Statement, *diag.Diagnostic) {
	switch p.peek().Type {
	case token.LET:
		stmt, err := p.letStatement()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.SEMICOLON); err != nil {
			return nil, err
		}
		return stmt, nil
	case token.CONST:
		stmt, err := p.constStatement()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.SEMICOLON); err != nil {
			return nil, err
		}
		return stmt, nil
	case token.RETURN:
		stmt, err := p.returnStatement()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.SEMICOLON); err != nil {
			return nil, err
		}
		return stmt, nil
	case token.BREAK:
		tok := p.advance()
		if err := p.consume(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.BreakStatement{Token: tok}, nil
	case token.CONTINUE:
		tok := p.advance()
		if err := p.consume(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.ContinueStatement{Token: tok}, nil
	case token.IF:
		return p.ifStatement()
	case token.WHILE:
		return p.whileStatement()
	case token.FOR:
		return p.forStatement()
	}

	// Expression statement or assignment.
	tok := p.peek()
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if p.match(token.ASSIGN) {
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.SEMICOLON); err != nil {
			return nil, err
		}
		return &ast.AssignStatement{Token: tok, Target: expr, Value: value}, nil
	}
	if err := p.consume(token.SEMICOLON); err != nil {
		return nil, err
	}
	return &ast.ExpressionStatement{Token: tok, Expression: expr}, nil
}

func (p *Parser) letStatement() (ast.Statement, *diag.Diagnostic) {
	letTok := p.advance() // 'let'
	mutable := p.match(token.MUT)
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}

	stmt := &ast.LetStatement{Token: letTok, Name: name, Mutable: mutable}
	if p.match(token.COLON) {
		stmt.Type, err = p.typeAnnotation()
		if err != nil {
			return nil, err
		}
	}
	if p.match(token.ASSIGN) {
		stmt.Initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) constStatement() (ast.Statement, *diag.Diagnostic) {
	constTok := p.advance() // 'const'
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.COLON); err != nil {
		return nil, err
	}
	constType, err := p.typeAnnotation()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.ASSIGN); err != nil {
		return nil, err
	}
	init, err := p.expression()
	if err != nil {
		return nil, err
	}
	return &ast.ConstStatement{Token: constTok, Name: name, Type: constType, Initializer: init}, nil
}

func (p *Parser) returnStatement() (ast.Statement, *diag.Diagnostic) {
	retTok := p.advance() // 'return'
	stmt := &ast.ReturnStatement{Token: retTok}
	// Bare return when the statement or block ends immediately.
	if !p.check(token.SEMICOLON) && !p.check(token.RBRACE) {
		var err *diag.Diagnostic
		stmt.Value, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	return stmt, nil
}

func (p *Parser) ifStatement() (ast.Statement, *diag.Diagnostic) {
	ifTok := p.advance() // 'if'
	condition, err := p.headerExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}
	thenBranch, err := p.block()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}

	stmt := &ast.IfStatement{Token: ifTok, Condition: condition, Then: thenBranch}
	if p.match(token.ELSE) {
		if p.check(token.IF) {
			elseIf, err := p.ifStatement()
			if err != nil {
				return nil, err
			}
			stmt.Else = []ast.Statement{elseIf}
		} else {
			if err := p.consume(token.LBRACE); err != nil {
				return nil, err
			}
			stmt.Else, err = p.block()
			if err != nil {
				return nil, err
			}
			if err := p.consume(token.RBRACE); err != nil {
				return nil, err
			}
			if stmt.Else == nil {
				stmt.Else = []ast.Statement{}
			}
		}
	}
	return stmt, nil
}

func (p *Parser) whileStatement() (ast.Statement, *diag.Diagnostic) {
	whileTok := p.advance() // 'while'
	condition, err := p.headerExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.WhileStatement{Token: whileTok, Condition: condition, Body: body}, nil
}

func (p *Parser) forStatement() (ast.Statement, *diag.Diagnostic) {
	forTok := p.advance() // 'for'
	variable, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.COLON); err != nil {
		return nil, err
	}
	iterable, err := p.headerExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}
	body, err := p.block()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.ForStatement{Token: forTok, Variable: variable, Iterable: iterable, Body: body}, nil
}
