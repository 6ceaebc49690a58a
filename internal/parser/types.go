package parser

import (
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// typeAnnotation parses a type. Named types parse as Struct; the checker
// reclassifies enum names later. Trailing `*` wraps the type in pointers.
func (p *Parser) typeAnnotation() (typesystem.Type, *diag.Diagnostic) {
	ty, err := p.baseType()
	if err != nil {
		return nil, err
	}
	for p.match(token.STAR) {
		ty = typesystem.Pointer{Elem: ty}
	}
	return ty, nil
}

func (p *Parser) baseType() (typesystem.Type, *diag.Diagnostic) {
	switch p.peek().Type {
	case token.TYPE_INT:
		p.advance()
		return typesystem.Int, nil
	case token.TYPE_FLOAT:
		p.advance()
		return typesystem.Float, nil
	case token.TYPE_BOOL:
		p.advance()
		return typesystem.Bool, nil
	case token.TYPE_CHAR:
		p.advance()
		return typesystem.Char, nil
	case token.TYPE_STRING:
		p.advance()
		return typesystem.String, nil
	case token.LBRACKET:
		// [T] or [T; N]; sizes are erased after parsing.
		p.advance()
		elem, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}
		if p.match(token.SEMICOLON) {
			if p.check(token.INT) {
				p.advance()
			}
		}
		if err := p.consume(token.RBRACKET); err != nil {
			return nil, err
		}
		return typesystem.Array{Elem: elem}, nil
	case token.AMPERSAND, token.STAR:
		p.advance()
		pointee, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}
		return typesystem.Pointer{Elem: pointee}, nil
	case token.IDENT:
		name := p.advance().Lexeme

		// Module-qualified types: module.Type or module::Type.
		if p.check(token.DOT) || p.check(token.COLON_COLON) {
			p.advance()
			typeName, err := p.identifier()
			if err != nil {
				return nil, err
			}
			name = name + "." + typeName
		}

		// Generic instantiation: Option<T>, Result<T, E>.
		if p.match(token.LT) {
			args := []typesystem.Type{}
			arg, err := p.typeAnnotation()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			for p.match(token.COMMA) {
				arg, err := p.typeAnnotation()
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
			if err := p.consume(token.GT); err != nil {
				return nil, err
			}
			return typesystem.Generic{Name: name, Args: args}, nil
		}

		// DynamicArray[T].
		if name == "DynamicArray" && p.match(token.LBRACKET) {
			elem, err := p.typeAnnotation()
			if err != nil {
				return nil, err
			}
			if err := p.consume(token.RBRACKET); err != nil {
				return nil, err
			}
			return typesystem.DynamicArray{Elem: elem}, nil
		}

		return typesystem.Struct{Name: name}, nil
	}

	return nil, p.errorHere(diag.InvalidSyntax, "expected type, found `%s`", token.Describe(p.peek().Type)).
		WithExample("valid types include", "int, float, bool, char, string, [int], *int, MyStruct")
}
