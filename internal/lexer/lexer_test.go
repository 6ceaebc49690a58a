package lexer

import (
	"testing"

	"github.com/rapterlang/rapter/internal/token"
)

func TestNextTokenBasics(t *testing.T) {
	input := `fn add(a: int, b: int) -> int {
    return a + b;
}`

	expected := []struct {
		typ    token.TokenType
		lexeme string
	}{
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.TYPE_INT, "int"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.TYPE_INT, "int"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.TYPE_INT, "int"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, exp := range expected {
		tok := l.NextToken()
		if tok.Type != exp.typ {
			t.Fatalf("token %d: type = %q, want %q (lexeme %q)", i, tok.Type, exp.typ, tok.Lexeme)
		}
		if tok.Lexeme != exp.lexeme {
			t.Fatalf("token %d: lexeme = %q, want %q", i, tok.Lexeme, exp.lexeme)
		}
	}
}

func TestNextTokenOperators(t *testing.T) {
	input := `:: .. ... => ? == != <= >= && || -> < >`

	want := []token.TokenType{
		token.COLON_COLON, token.DOT_DOT, token.ELLIPSIS, token.FAT_ARROW,
		token.QUESTION, token.EQ, token.NOT_EQ, token.LTE, token.GTE,
		token.AND, token.OR, token.ARROW, token.LT, token.GT, token.EOF,
	}

	l := New(input)
	for i, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("token %d: type = %q, want %q", i, tok.Type, w)
		}
	}
}

func TestRangeDoesNotLexAsFloat(t *testing.T) {
	l := New("0..10")
	want := []token.TokenType{token.INT, token.DOT_DOT, token.INT, token.EOF}
	for i, w := range want {
		if tok := l.NextToken(); tok.Type != w {
			t.Fatalf("token %d: type = %q, want %q", i, tok.Type, w)
		}
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal interface{}
	}{
		{"42", token.INT, int64(42)},
		{"3.14", token.FLOAT, 3.14},
		{`"hi\n"`, token.STRING, "hi\n"},
		{"'a'", token.CHAR, int64('a')},
		{"'\\n'", token.CHAR, int64('\n')},
		{"true", token.TRUE, true},
		{"false", token.FALSE, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := New(tt.input).NextToken()
			if tok.Type != tt.typ {
				t.Fatalf("type = %q, want %q", tok.Type, tt.typ)
			}
			if tok.Literal != tt.literal {
				t.Errorf("literal = %v (%T), want %v (%T)", tok.Literal, tok.Literal, tt.literal, tt.literal)
			}
		})
	}
}

func TestCommentsAreSkippedByTokenize(t *testing.T) {
	input := `// leading
let x = 1; /* inline */ let y = 2;`
	tokens, err := Tokenize(input, "test.rapt")
	if err != nil {
		t.Fatalf("Tokenize() error: %v", err)
	}
	for _, tok := range tokens {
		if tok.Type == token.COMMENT {
			t.Fatalf("comment token leaked into stream: %q", tok.Lexeme)
		}
	}
	if tokens[0].Type != token.LET || tokens[0].Line != 2 {
		t.Errorf("first token = %v at line %d, want let at line 2", tokens[0].Type, tokens[0].Line)
	}
}

func TestTokenizeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"unexpected character", "let x = @;", "E001"},
		{"unterminated string", `let s = "abc`, "E002"},
		{"unterminated char", "let c = 'a", "E002"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, d := Tokenize(tt.input, "test.rapt")
			if d == nil {
				t.Fatal("expected a diagnostic")
			}
			if string(d.Code) != tt.code {
				t.Errorf("code = %s, want %s", d.Code, tt.code)
			}
		})
	}
}
