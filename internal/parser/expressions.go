package parser

import (
	"unicode"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
)

// Precedence ladder, loosest first:
// ternary, range, ||, &&, equality, comparison, term, factor, unary, postfix.

func (p *Parser) expression() (ast.Expression, *diag.Diagnostic) {
	return p.ternary()
}

// headerExpression parses the condition or scrutinee of a brace-delimited
// statement. An uppercase identifier followed by `{` ends the header there
// rather than starting a struct literal.
func (p *Parser) headerExpression() (ast.Expression, *diag.Diagnostic) {
	outer := p.noStructLit
	p.noStructLit = true
	expr, err := p.expression()
	p.noStructLit = outer
	return expr, err
}

// groupedExpression parses inside parentheses or brackets, where a struct
// literal is unambiguous again.
func (p *Parser) groupedExpression() (ast.Expression, *diag.Diagnostic) {
	outer := p.noStructLit
	p.noStructLit = false
	expr, err := p.expression()
	p.noStructLit = outer
	return expr, err
}

func (p *Parser) ternary() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.rangeExpr()
	if err != nil {
		return nil, err
	}
	if p.match(token.QUESTION) {
		qTok := p.previous()
		trueExpr, err := p.rangeExpr()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.COLON); err != nil {
			return nil, err
		}
		falseExpr, err := p.ternary() // right-associative for chaining
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpr{Token: qTok, Condition: expr, TrueExpr: trueExpr, FalseExpr: falseExpr}, nil
	}
	return expr, nil
}

func (p *Parser) rangeExpr() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.logicalOr()
	if err != nil {
		return nil, err
	}
	if p.match(token.DOT_DOT) {
		dotsTok := p.previous()
		end, err := p.logicalOr()
		if err != nil {
			return nil, err
		}
		return &ast.RangeExpr{Token: dotsTok, Start: expr, End: end}, nil
	}
	return expr, nil
}

func (p *Parser) logicalOr() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.logicalAnd()
	if err != nil {
		return nil, err
	}
	for p.match(token.OR) {
		opTok := p.previous()
		right, err := p.logicalAnd()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Token: opTok, Left: expr, Operator: ast.OpOr, Right: right}
	}
	return expr, nil
}

func (p *Parser) logicalAnd() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.equality()
	if err != nil {
		return nil, err
	}
	for p.match(token.AND) {
		opTok := p.previous()
		right, err := p.equality()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Token: opTok, Left: expr, Operator: ast.OpAnd, Right: right}
	}
	return expr, nil
}

func (p *Parser) equality() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.EQ, token.NOT_EQ) {
		opTok := p.previous()
		op := ast.OpEqual
		if opTok.Type == token.NOT_EQ {
			op = ast.OpNotEqual
		}
		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Token: opTok, Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) comparison() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.LT, token.LTE, token.GT, token.GTE) {
		opTok := p.previous()
		var op ast.BinaryOp
		switch opTok.Type {
		case token.LT:
			op = ast.OpLess
		case token.LTE:
			op = ast.OpLessEqual
		case token.GT:
			op = ast.OpGreater
		case token.GTE:
			op = ast.OpGreaterEqual
		}
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Token: opTok, Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) term() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.PLUS, token.MINUS) {
		opTok := p.previous()
		op := ast.OpAdd
		if opTok.Type == token.MINUS {
			op = ast.OpSubtract
		}
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Token: opTok, Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) factor() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.matchAny(token.STAR, token.SLASH, token.PERCENT) {
		opTok := p.previous()
		var op ast.BinaryOp
		switch opTok.Type {
		case token.STAR:
			op = ast.OpMultiply
		case token.SLASH:
			op = ast.OpDivide
		case token.PERCENT:
			op = ast.OpModulo
		}
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		expr = &ast.BinaryExpr{Token: opTok, Left: expr, Operator: op, Right: right}
	}
	return expr, nil
}

func (p *Parser) unary() (ast.Expression, *diag.Diagnostic) {
	if p.match(token.NEW) {
		newTok := p.previous()
		if p.match(token.LBRACKET) {
			// new [type]() builds an empty dynamic array.
			elemType, err := p.typeAnnotation()
			if err != nil {
				return nil, err
			}
			if err := p.consume(token.RBRACKET); err != nil {
				return nil, err
			}
			if err := p.consume(token.LPAREN); err != nil {
				return nil, err
			}
			if err := p.consume(token.RPAREN); err != nil {
				return nil, err
			}
			return &ast.DynamicArrayLiteral{Token: newTok, ElemType: elemType}, nil
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.NewExpr{Token: newTok, Operand: operand}, nil
	}
	if p.match(token.DELETE) {
		delTok := p.previous()
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.DeleteExpr{Token: delTok, Operand: operand}, nil
	}
	if p.matchAny(token.MINUS, token.BANG, token.STAR, token.AMPERSAND) {
		opTok := p.previous()
		var op ast.UnaryOp
		switch opTok.Type {
		case token.MINUS:
			op = ast.OpNegate
		case token.BANG:
			op = ast.OpNot
		case token.STAR:
			op = ast.OpDereference
		case token.AMPERSAND:
			op = ast.OpAddressOf
		}
		operand, err := p.unary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Token: opTok, Operator: op, Operand: operand}, nil
	}
	return p.postfix()
}

// postfix handles calls, field access, ->, indexing, casts and the ? operator.
func (p *Parser) postfix() (ast.Expression, *diag.Diagnostic) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.match(token.LPAREN):
			expr, err = p.finishCall(expr)
			if err != nil {
				return nil, err
			}
		case p.match(token.DOT):
			dotTok := p.previous()
			field, err := p.identifier()
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccess{Token: dotTok, Object: expr, Field: field}
		case p.match(token.ARROW):
			// ptr->field is sugar for (*ptr).field.
			arrowTok := p.previous()
			field, err := p.identifier()
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldAccess{
				Token:  arrowTok,
				Object: &ast.UnaryExpr{Token: arrowTok, Operator: ast.OpDereference, Operand: expr},
				Field:  field,
			}
		case p.match(token.LBRACKET):
			brTok := p.previous()
			index, err := p.groupedExpression()
			if err != nil {
				return nil, err
			}
			if err := p.consume(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpr{Token: brTok, Array: expr, Index: index}
		case p.match(token.AS):
			asTok := p.previous()
			targetType, err := p.typeAnnotation()
			if err != nil {
				return nil, err
			}
			expr = &ast.CastExpr{Token: asTok, Expression: expr, TargetType: targetType}
		case p.check(token.QUESTION) && p.isTryOperator():
			expr = &ast.TryExpr{Token: p.advance(), Expression: expr}
		default:
			return expr, nil
		}
	}
}

// isTryOperator distinguishes `expr?` from the ternary `cond ? a : b` while
// the cursor still sits on the question mark. After a try operator the
// expression is done, so the token following `?` cannot start an operand.
func (p *Parser) isTryOperator() bool {
	switch p.peekNext().Type {
	case token.IDENT, token.INT, token.FLOAT, token.STRING, token.CHAR,
		token.TRUE, token.FALSE, token.LPAREN, token.LBRACKET,
		token.NEW, token.MATCH:
		return false
	}
	return true
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, *diag.Diagnostic) {
	call := &ast.CallExpr{Token: p.previous(), Callee: callee}
	if !p.check(token.RPAREN) {
		for {
			arg, err := p.groupedExpression()
			if err != nil {
				return nil, err
			}
			call.Arguments = append(call.Arguments, arg)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}
	return call, nil
}

func (p *Parser) primary() (ast.Expression, *diag.Diagnostic) {
	tok := p.peek()
	switch tok.Type {
	case token.INT:
		p.advance()
		return &ast.IntLiteral{Token: tok, Value: tok.Literal.(int64)}, nil
	case token.FLOAT:
		p.advance()
		return &ast.FloatLiteral{Token: tok, Value: tok.Literal.(float64)}, nil
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}, nil
	case token.CHAR:
		p.advance()
		return &ast.CharLiteral{Token: tok, Value: rune(tok.Literal.(int64))}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal.(string)}, nil
	case token.IDENT:
		p.advance()
		name := tok.Lexeme

		// Enum access: EnumName::Variant.
		if p.match(token.COLON_COLON) {
			variant, err := p.identifier()
			if err != nil {
				return nil, err
			}
			return &ast.EnumAccess{Token: tok, EnumName: name, Variant: variant}, nil
		}

		// Struct literal: Name { field: expr, ... }. Uppercase heuristic
		// keeps `if cond { ... }` unambiguous.
		if p.check(token.LBRACE) && !p.noStructLit && startsUpper(name) {
			return p.structLiteral(tok, name)
		}
		return &ast.Identifier{Token: tok, Name: name}, nil
	case token.LPAREN:
		p.advance()
		expr, err := p.groupedExpression()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.RPAREN); err != nil {
			return nil, err
		}
		return expr, nil
	case token.LBRACKET:
		p.advance()
		lit := &ast.ArrayLiteral{Token: tok}
		if !p.check(token.RBRACKET) {
			for {
				elem, err := p.expression()
				if err != nil {
					return nil, err
				}
				lit.Elements = append(lit.Elements, elem)
				if !p.match(token.COMMA) {
					break
				}
			}
		}
		if err := p.consume(token.RBRACKET); err != nil {
			return nil, err
		}
		return lit, nil
	case token.MATCH:
		return p.matchExpr()
	}

	return nil, p.errorHere(diag.InvalidSyntax, "expected expression, found `%s`", token.Describe(tok.Type)).
		WithExample("valid expressions include", `42, "hello", true, [1, 2, 3], my_variable, func_call()`)
}

func (p *Parser) structLiteral(tok token.Token, name string) (ast.Expression, *diag.Diagnostic) {
	p.advance() // '{'
	lit := &ast.StructLiteral{Token: tok, Name: name}
	if !p.check(token.RBRACE) {
		for {
			fieldName, err := p.identifier()
			if err != nil {
				return nil, err
			}
			if err := p.consume(token.COLON); err != nil {
				return nil, err
			}
			value, err := p.expression()
			if err != nil {
				return nil, err
			}
			lit.Fields = append(lit.Fields, ast.StructLiteralField{Name: fieldName, Value: value})
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return lit, nil
}

func (p *Parser) matchExpr() (ast.Expression, *diag.Diagnostic) {
	matchTok := p.advance() // 'match'
	scrutinee, err := p.headerExpression()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	expr := &ast.MatchExpr{Token: matchTok, Scrutinee: scrutinee}
	for !p.check(token.RBRACE) {
		pattern, err := p.pattern()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.FAT_ARROW); err != nil {
			return nil, err
		}
		armExpr, err := p.expression()
		if err != nil {
			return nil, err
		}
		expr.Arms = append(expr.Arms, &ast.MatchArm{Pattern: pattern, Expression: armExpr})

		// Comma is optional after the last arm.
		if !p.check(token.RBRACE) {
			if err := p.consume(token.COMMA); err != nil {
				return nil, err
			}
		}
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return expr, nil
}

func startsUpper(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
