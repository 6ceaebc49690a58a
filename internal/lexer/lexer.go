package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// Tokenize scans the whole input and returns the token stream ending with
// EOF. The first illegal token aborts the scan with a diagnostic.
func Tokenize(input, file string) ([]token.Token, *diag.Diagnostic) {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		if tok.Type == token.ILLEGAL {
			return nil, illegalToDiagnostic(tok, file)
		}
		if tok.Type == token.COMMENT {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens, nil
		}
	}
}

func illegalToDiagnostic(tok token.Token, file string) *diag.Diagnostic {
	span := diag.Span{File: file, Line: tok.Line, Column: tok.Column}
	msg, _ := tok.Literal.(string)
	if msg == "" {
		msg = fmt.Sprintf("unexpected character `%s`", tok.Lexeme)
	}
	code := diag.UnexpectedCharacter
	switch {
	case strings.Contains(msg, "unterminated"):
		code = diag.UnterminatedString
	case strings.Contains(msg, "invalid integer"), strings.Contains(msg, "invalid float"):
		code = diag.InvalidNumber
	case strings.Contains(msg, "escape"):
		code = diag.InvalidEscapeSequence
	}
	d := diag.New(code, span, "%s", msg)
	if code == diag.UnexpectedCharacter {
		d.WithSuggestion("remove or replace the unexpected character")
	}
	return d
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.ch = r
		l.position = l.readPosition
		l.readPosition += w
		l.column++
		return
	}

	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) NextToken() token.Token {
	var tok token.Token

	l.skipWhitespace()

	switch l.ch {
	case '+':
		tok = newToken(token.PLUS, l.ch, l.line, l.column)
	case '-':
		if l.peekChar() == '>' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.ARROW, Lexeme: "->", Literal: "->", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.MINUS, l.ch, l.line, l.column)
		}
	case '*':
		tok = newToken(token.STAR, l.ch, l.line, l.column)
	case '/':
		if l.peekChar() == '/' {
			return l.readLineComment()
		} else if l.peekChar() == '*' {
			return l.readBlockComment()
		}
		tok = newToken(token.SLASH, l.ch, l.line, l.column)
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.line, l.column)
	case '=':
		if l.peekChar() == '=' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.EQ, Lexeme: "==", Literal: "==", Line: l.line, Column: startCol}
		} else if l.peekChar() == '>' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.FAT_ARROW, Lexeme: "=>", Literal: "=>", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '!':
		if l.peekChar() == '=' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.NOT_EQ, Lexeme: "!=", Literal: "!=", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.BANG, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.LTE, Lexeme: "<=", Literal: "<=", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.LT, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.GTE, Lexeme: ">=", Literal: ">=", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.GT, l.ch, l.line, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.AND, Lexeme: "&&", Literal: "&&", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.AMPERSAND, l.ch, l.line, l.column)
		}
	case '|':
		if l.peekChar() == '|' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.OR, Lexeme: "||", Literal: "||", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.PIPE, l.ch, l.line, l.column)
		}
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case ':':
		if l.peekChar() == ':' {
			startCol := l.column
			l.readChar()
			tok = token.Token{Type: token.COLON_COLON, Lexeme: "::", Literal: "::", Line: l.line, Column: startCol}
		} else {
			tok = newToken(token.COLON, l.ch, l.line, l.column)
		}
	case '?':
		tok = newToken(token.QUESTION, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case '.':
		if l.peekChar() == '.' {
			startCol := l.column
			l.readChar()
			if l.peekChar() == '.' {
				l.readChar()
				tok = token.Token{Type: token.ELLIPSIS, Lexeme: "...", Literal: "...", Line: l.line, Column: startCol}
			} else {
				tok = token.Token{Type: token.DOT_DOT, Lexeme: "..", Literal: "..", Line: l.line, Column: startCol}
			}
		} else {
			tok = newToken(token.DOT, l.ch, l.line, l.column)
		}
	case '"':
		return l.readString()
	case '\'':
		return l.readCharLiteral()
	case 0:
		tok.Lexeme = ""
		tok.Type = token.EOF
		tok.Line = l.line
		tok.Column = l.column
	default:
		if isLetter(l.ch) {
			startLine, startCol := l.line, l.column
			lexeme := l.readIdentifier()
			tok.Type = token.LookupIdent(lexeme)
			tok.Lexeme = lexeme
			tok.Literal = lexeme
			if tok.Type == token.TRUE {
				tok.Literal = true
			} else if tok.Type == token.FALSE {
				tok.Literal = false
			}
			tok.Line = startLine
			tok.Column = startCol
			return tok
		} else if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = token.Token{
			Type:    token.ILLEGAL,
			Lexeme:  string(l.ch),
			Literal: fmt.Sprintf("unexpected character `%c`", l.ch),
			Line:    l.line,
			Column:  l.column,
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) readLineComment() token.Token {
	startLine, startCol := l.line, l.column
	l.readChar() // second /
	position := l.readPosition
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
	text := l.input[position:l.position]
	return token.Token{Type: token.COMMENT, Lexeme: text, Literal: text, Line: startLine, Column: startCol}
}

func (l *Lexer) readBlockComment() token.Token {
	startLine, startCol := l.line, l.column
	l.readChar() // *
	position := l.readPosition
	end := position
	for {
		l.readChar()
		if l.ch == 0 {
			end = l.position
			break
		}
		if l.ch == '*' && l.peekChar() == '/' {
			end = l.position
			l.readChar() // *
			l.readChar() // /
			break
		}
	}
	text := l.input[position:end]
	return token.Token{Type: token.COMMENT, Lexeme: text, Literal: text, Line: startLine, Column: startCol}
}

func (l *Lexer) readString() token.Token {
	startLine, startCol := l.line, l.column
	var out []byte
	buf := make([]byte, 4)
	for {
		l.readChar()
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{
				Type:    token.ILLEGAL,
				Lexeme:  l.input[l.position:l.position],
				Literal: "unterminated string literal",
				Line:    startLine,
				Column:  startCol,
			}
		}
		if l.ch == '"' {
			break
		}
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '0':
				out = append(out, 0)
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				n := utf8.EncodeRune(buf, l.ch)
				out = append(out, buf[:n]...)
			}
			continue
		}
		n := utf8.EncodeRune(buf, l.ch)
		out = append(out, buf[:n]...)
	}
	l.readChar() // closing "
	s := string(out)
	return token.Token{Type: token.STRING, Lexeme: fmt.Sprintf("%q", s), Literal: s, Line: startLine, Column: startCol}
}

func (l *Lexer) readCharLiteral() token.Token {
	startLine, startCol := l.line, l.column
	l.readChar() // skip opening '
	if l.ch == '\'' || l.ch == 0 {
		return token.Token{
			Type:    token.ILLEGAL,
			Literal: "unterminated char literal",
			Line:    startLine,
			Column:  startCol,
		}
	}

	var char rune
	if l.ch == '\\' {
		l.readChar()
		switch l.ch {
		case 'n':
			char = '\n'
		case 't':
			char = '\t'
		case 'r':
			char = '\r'
		case '0':
			char = 0
		case '\\':
			char = '\\'
		case '\'':
			char = '\''
		default:
			char = l.ch
		}
	} else {
		char = l.ch
	}
	l.readChar() // consume the char

	if l.ch != '\'' {
		return token.Token{
			Type:    token.ILLEGAL,
			Literal: "unterminated char literal",
			Line:    startLine,
			Column:  startCol,
		}
	}
	l.readChar() // closing '
	return token.Token{Type: token.CHAR, Lexeme: fmt.Sprintf("'%c'", char), Literal: int64(char), Line: startLine, Column: startCol}
}

func (l *Lexer) readNumber() token.Token {
	startLine, startCol := l.line, l.column
	position := l.position
	isFloat := false

	for isDigit(l.ch) {
		l.readChar()
	}

	// A dot starts a fraction only when followed by a digit; `0..10` must
	// lex as INT DOT_DOT INT.
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	lexeme := l.input[position:l.position]
	if isFloat {
		val, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: fmt.Sprintf("invalid float literal `%s`", lexeme), Line: startLine, Column: startCol}
		}
		return token.Token{Type: token.FLOAT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
	}
	val, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: fmt.Sprintf("invalid integer literal `%s`", lexeme), Line: startLine, Column: startCol}
	}
	return token.Token{Type: token.INT, Lexeme: lexeme, Literal: val, Line: startLine, Column: startCol}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
		l.readChar()
	}
}
