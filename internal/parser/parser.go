package parser

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
)

// Parser is a recursive-descent parser over a pre-lexed token stream. It is
// fail-fast: the first syntax error aborts the parse.
type Parser struct {
	tokens  []token.Token
	current int
	file    string

	// noStructLit suppresses the `Name { ... }` struct-literal form while
	// parsing the header of a brace-delimited statement, where the `{`
	// opens the block instead.
	noStructLit bool
}

func New(tokens []token.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse builds the AST for one source file.
func Parse(tokens []token.Token, file string) (*ast.Program, *diag.Diagnostic) {
	return New(tokens, file).ParseProgram()
}

// ParseExpression parses a single expression spanning the whole token
// stream. The REPL uses it for inputs that are not declarations.
func ParseExpression(tokens []token.Token, file string) (ast.Expression, *diag.Diagnostic) {
	p := New(tokens, file)
	expr, err := p.expression()
	if err != nil {
		return nil, err
	}
	if !p.isAtEnd() {
		return nil, p.unexpected("end of input")
	}
	return expr, nil
}

func (p *Parser) peek() token.Token {
	if p.current >= len(p.tokens) {
		return token.Token{Type: token.EOF, Line: p.lastLine(), Column: 0}
	}
	return p.tokens[p.current]
}

func (p *Parser) peekNext() token.Token {
	if p.current+1 >= len(p.tokens) {
		return token.Token{Type: token.EOF, Line: p.lastLine(), Column: 0}
	}
	return p.tokens[p.current+1]
}

func (p *Parser) previous() token.Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) lastLine() int {
	if len(p.tokens) == 0 {
		return 1
	}
	return p.tokens[len(p.tokens)-1].Line
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.peek().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	return !p.isAtEnd() && p.peek().Type == t
}

func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchAny(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.TokenType) *diag.Diagnostic {
	if p.check(t) {
		p.advance()
		return nil
	}
	return p.unexpected(token.Describe(t))
}

func (p *Parser) span(tok token.Token) diag.Span {
	return diag.Span{File: p.file, Line: tok.Line, Column: tok.Column}
}

func (p *Parser) errorHere(code diag.Code, format string, args ...interface{}) *diag.Diagnostic {
	return diag.New(code, p.span(p.peek()), format, args...)
}

func (p *Parser) unexpected(expected string) *diag.Diagnostic {
	found := token.Describe(p.peek().Type)
	return diag.UnexpectedTokenAt(expected, found, p.span(p.peek()))
}

// identifier consumes an IDENT token and returns its name.
func (p *Parser) identifier() (string, *diag.Diagnostic) {
	if p.check(token.IDENT) {
		return p.advance().Lexeme, nil
	}
	return "", p.errorHere(diag.ExpectedToken, "expected identifier, found `%s`", token.Describe(p.peek().Type)).
		WithSuggestion("identifiers must start with a letter and can contain letters, numbers, and underscores")
}
