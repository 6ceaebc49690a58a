package parser

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
)

func (p *Parser) pattern() (ast.Pattern, *diag.Diagnostic) {
	tok := p.peek()
	switch tok.Type {
	case token.IDENT:
		p.advance()
		if tok.Lexeme == "_" {
			return &ast.WildcardPattern{Token: tok}, nil
		}
		if p.match(token.COLON_COLON) {
			variant, err := p.identifier()
			if err != nil {
				return nil, err
			}
			binding := ""
			if p.match(token.LPAREN) {
				binding, err = p.identifier()
				if err != nil {
					return nil, err
				}
				if err := p.consume(token.RPAREN); err != nil {
					return nil, err
				}
			}
			return &ast.EnumVariantPattern{Token: tok, EnumName: tok.Lexeme, Variant: variant, Binding: binding}, nil
		}
		return nil, p.errorHere(diag.InvalidSyntax, "unexpected identifier in pattern: `%s`", tok.Lexeme).
			WithSuggestion("patterns must be enum variants (EnumName::Variant), literals, or wildcards (_)")
	case token.INT:
		p.advance()
		return &ast.LiteralPattern{Token: tok, Literal: &ast.IntLiteral{Token: tok, Value: tok.Literal.(int64)}}, nil
	case token.CHAR:
		p.advance()
		return &ast.LiteralPattern{Token: tok, Literal: &ast.CharLiteral{Token: tok, Value: rune(tok.Literal.(int64))}}, nil
	case token.STRING:
		p.advance()
		return &ast.LiteralPattern{Token: tok, Literal: &ast.StringLiteral{Token: tok, Value: tok.Literal.(string)}}, nil
	case token.TRUE, token.FALSE:
		p.advance()
		return &ast.LiteralPattern{Token: tok, Literal: &ast.BoolLiteral{Token: tok, Value: tok.Type == token.TRUE}}, nil
	}
	return nil, p.errorHere(diag.InvalidSyntax, "expected pattern, found `%s`", token.Describe(tok.Type)).
		WithSuggestion("patterns must be enum variants (EnumName::Variant), literals, or wildcards (_)")
}
