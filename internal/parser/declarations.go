package parser

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
)

// ParseProgram parses the whole token stream into a Program.
func (p *Parser) ParseProgram() (*ast.Program, *diag.Diagnostic) {
	program := &ast.Program{File: p.file}

	for !p.isAtEnd() {
		switch p.peek().Type {
		case token.LET:
			global, err := p.globalVariable()
			if err != nil {
				return nil, err
			}
			program.Globals = append(program.Globals, global)
		case token.FN:
			fn, err := p.function()
			if err != nil {
				return nil, err
			}
			program.Functions = append(program.Functions, fn)
		case token.EXTERN:
			ext, err := p.externFunction()
			if err != nil {
				return nil, err
			}
			program.Externs = append(program.Externs, ext)
		case token.STRUCT:
			st, err := p.structDef()
			if err != nil {
				return nil, err
			}
			program.Structs = append(program.Structs, st)
		case token.ENUM:
			en, err := p.enumDef()
			if err != nil {
				return nil, err
			}
			program.Enums = append(program.Enums, en)
		case token.IMPORT:
			imp, err := p.importDecl()
			if err != nil {
				return nil, err
			}
			program.Imports = append(program.Imports, imp)
		case token.EXPORT:
			if err := p.exportDecl(program); err != nil {
				return nil, err
			}
		default:
			return nil, p.errorHere(diag.UnexpectedToken, "unexpected token `%s`", token.Describe(p.peek().Type)).
				WithSuggestion("expected a top-level declaration like `fn`, `struct`, `import`, or `export`")
		}
	}

	return program, nil
}

func (p *Parser) exportDecl(program *ast.Program) *diag.Diagnostic {
	exportTok := p.advance() // 'export'
	switch p.peek().Type {
	case token.FN:
		fn, err := p.function()
		if err != nil {
			return err
		}
		program.Functions = append(program.Functions, fn)
		program.Exports = append(program.Exports, &ast.Export{Token: exportTok, Kind: ast.ExportFunction, Name: fn.Name})
	case token.STRUCT:
		st, err := p.structDef()
		if err != nil {
			return err
		}
		program.Structs = append(program.Structs, st)
		program.Exports = append(program.Exports, &ast.Export{Token: exportTok, Kind: ast.ExportStruct, Name: st.Name})
	case token.ENUM:
		en, err := p.enumDef()
		if err != nil {
			return err
		}
		program.Enums = append(program.Enums, en)
		program.Exports = append(program.Exports, &ast.Export{Token: exportTok, Kind: ast.ExportEnum, Name: en.Name})
	default:
		return p.errorHere(diag.ExpectedToken, "expected `fn`, `struct`, or `enum` after `export`, found `%s`", token.Describe(p.peek().Type)).
			WithExample("try exporting a function, struct, or enum",
				"export fn my_function() {\n    // ...\n}\n\nexport struct MyStruct {\n    // ...\n}")
	}
	return nil
}

func (p *Parser) globalVariable() (*ast.GlobalVariable, *diag.Diagnostic) {
	letTok := p.advance() // 'let'
	mutable := p.match(token.MUT)
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}

	global := &ast.GlobalVariable{Token: letTok, Name: name, Mutable: mutable}
	if p.match(token.COLON) {
		global.Type, err = p.typeAnnotation()
		if err != nil {
			return nil, err
		}
	}
	if p.match(token.ASSIGN) {
		global.Initializer, err = p.expression()
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(token.SEMICOLON); err != nil {
		return nil, err
	}
	return global, nil
}

func (p *Parser) function() (*ast.Function, *diag.Diagnostic) {
	fnTok := p.advance() // 'fn'
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	params, _, err := p.parameters(false)
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}

	fn := &ast.Function{Token: fnTok, Name: name, Parameters: params}
	if p.match(token.ARROW) {
		fn.ReturnType, err = p.typeAnnotation()
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}
	fn.Body, err = p.block()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) externFunction() (*ast.ExternFunction, *diag.Diagnostic) {
	externTok := p.advance() // 'extern'
	if err := p.consume(token.FN); err != nil {
		return nil, err
	}
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LPAREN); err != nil {
		return nil, err
	}
	params, variadic, err := p.parameters(true)
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.RPAREN); err != nil {
		return nil, err
	}

	ext := &ast.ExternFunction{Token: externTok, Name: name, Parameters: params, Variadic: variadic}
	if p.match(token.ARROW) {
		ext.ReturnType, err = p.typeAnnotation()
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(token.SEMICOLON); err != nil {
		return nil, err
	}
	return ext, nil
}

// parameters parses a comma-separated parameter list. allowVariadic permits a
// trailing `...` for extern declarations.
func (p *Parser) parameters(allowVariadic bool) ([]*ast.Parameter, bool, *diag.Diagnostic) {
	var params []*ast.Parameter
	variadic := false

	if p.check(token.RPAREN) {
		return params, false, nil
	}
	for {
		if allowVariadic && p.match(token.ELLIPSIS) {
			variadic = true
			break
		}
		name, err := p.identifier()
		if err != nil {
			return nil, false, err
		}
		if err := p.consume(token.COLON); err != nil {
			return nil, false, err
		}
		paramType, err := p.typeAnnotation()
		if err != nil {
			return nil, false, err
		}
		params = append(params, &ast.Parameter{Name: name, Type: paramType})
		if !p.match(token.COMMA) {
			break
		}
	}
	return params, variadic, nil
}

func (p *Parser) structDef() (*ast.StructDef, *diag.Diagnostic) {
	structTok := p.advance() // 'struct'
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	var fields []*ast.Field
	for !p.check(token.RBRACE) {
		fieldName, err := p.identifier()
		if err != nil {
			return nil, err
		}
		if err := p.consume(token.COLON); err != nil {
			return nil, err
		}
		fieldType, err := p.typeAnnotation()
		if err != nil {
			return nil, err
		}
		fields = append(fields, &ast.Field{Name: fieldName, Type: fieldType})
		if !p.match(token.COMMA) {
			break
		}
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.StructDef{Token: structTok, Name: name, Fields: fields}, nil
}

func (p *Parser) enumDef() (*ast.EnumDef, *diag.Diagnostic) {
	enumTok := p.advance() // 'enum'
	name, err := p.identifier()
	if err != nil {
		return nil, err
	}
	if err := p.consume(token.LBRACE); err != nil {
		return nil, err
	}

	var variants []*ast.EnumVariantDef
	var nextValue int64
	for !p.check(token.RBRACE) {
		variantName, err := p.identifier()
		if err != nil {
			return nil, err
		}
		value := nextValue
		if p.match(token.ASSIGN) {
			lit := p.advance()
			iv, ok := lit.Literal.(int64)
			if lit.Type != token.INT || !ok {
				return nil, diag.New(diag.ExpectedToken, p.span(lit),
					"expected integer literal after `=` in enum variant")
			}
			value = iv
		}
		nextValue = value + 1
		variants = append(variants, &ast.EnumVariantDef{Name: variantName, Value: value})
		if !p.match(token.COMMA) {
			break
		}
	}
	if err := p.consume(token.RBRACE); err != nil {
		return nil, err
	}
	return &ast.EnumDef{Token: enumTok, Name: name, Variants: variants}, nil
}

func (p *Parser) importDecl() (*ast.Import, *diag.Diagnostic) {
	importTok := p.advance() // 'import'
	module, err := p.moduleSegment()
	if err != nil {
		return nil, err
	}
	for p.match(token.DOT) {
		seg, err := p.moduleSegment()
		if err != nil {
			return nil, err
		}
		module += "." + seg
	}

	imp := &ast.Import{Token: importTok, Module: module}
	if p.match(token.AS) {
		imp.Alias, err = p.identifier()
		if err != nil {
			return nil, err
		}
	}
	if err := p.consume(token.SEMICOLON); err != nil {
		return nil, err
	}
	return imp, nil
}

// moduleSegment accepts path segments that coincide with type keywords, so
// `import std.string` works.
func (p *Parser) moduleSegment() (string, *diag.Diagnostic) {
	switch p.peek().Type {
	case token.IDENT, token.TYPE_INT, token.TYPE_FLOAT, token.TYPE_BOOL, token.TYPE_CHAR, token.TYPE_STRING:
		return p.advance().Lexeme, nil
	}
	return "", p.errorHere(diag.ExpectedToken, "expected module path segment, found `%s`", token.Describe(p.peek().Type))
}
