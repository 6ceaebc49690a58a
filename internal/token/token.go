package token

type TokenType string

// Token is a single lexical unit of a .rapt source file. Literal carries the
// decoded value for literals (int64, float64, bool, int64 for chars, string),
// and the raw lexeme otherwise.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
}

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"
	COMMENT TokenType = "COMMENT"

	// Identifiers and literals
	IDENT  TokenType = "IDENT"
	INT    TokenType = "INT"
	FLOAT  TokenType = "FLOAT"
	STRING TokenType = "STRING"
	CHAR   TokenType = "CHAR"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"

	// Operators
	PLUS      TokenType = "+"
	MINUS     TokenType = "-"
	STAR      TokenType = "*"
	SLASH     TokenType = "/"
	PERCENT   TokenType = "%"
	ASSIGN    TokenType = "="
	EQ        TokenType = "=="
	NOT_EQ    TokenType = "!="
	LT        TokenType = "<"
	LTE       TokenType = "<="
	GT        TokenType = ">"
	GTE       TokenType = ">="
	AND       TokenType = "&&"
	OR        TokenType = "||"
	BANG      TokenType = "!"
	AMPERSAND TokenType = "&"
	PIPE      TokenType = "|"

	// Punctuation
	LPAREN      TokenType = "("
	RPAREN      TokenType = ")"
	LBRACE      TokenType = "{"
	RBRACE      TokenType = "}"
	LBRACKET    TokenType = "["
	RBRACKET    TokenType = "]"
	SEMICOLON   TokenType = ";"
	COLON       TokenType = ":"
	COLON_COLON TokenType = "::"
	COMMA       TokenType = ","
	DOT         TokenType = "."
	DOT_DOT     TokenType = ".."
	ELLIPSIS    TokenType = "..."
	ARROW       TokenType = "->"
	FAT_ARROW   TokenType = "=>"
	QUESTION    TokenType = "?"

	// Keywords
	FN       TokenType = "FN"
	LET      TokenType = "LET"
	CONST    TokenType = "CONST"
	MUT      TokenType = "MUT"
	IF       TokenType = "IF"
	ELSE     TokenType = "ELSE"
	WHILE    TokenType = "WHILE"
	FOR      TokenType = "FOR"
	RETURN   TokenType = "RETURN"
	BREAK    TokenType = "BREAK"
	CONTINUE TokenType = "CONTINUE"
	MATCH    TokenType = "MATCH"
	STRUCT   TokenType = "STRUCT"
	ENUM     TokenType = "ENUM"
	NEW      TokenType = "NEW"
	DELETE   TokenType = "DELETE"
	IMPORT   TokenType = "IMPORT"
	AS       TokenType = "AS"
	EXPORT   TokenType = "EXPORT"
	EXTERN   TokenType = "EXTERN"

	// Primitive type keywords
	TYPE_INT    TokenType = "TYPE_INT"
	TYPE_FLOAT  TokenType = "TYPE_FLOAT"
	TYPE_BOOL   TokenType = "TYPE_BOOL"
	TYPE_CHAR   TokenType = "TYPE_CHAR"
	TYPE_STRING TokenType = "TYPE_STRING"
)

var keywords = map[string]TokenType{
	"fn":       FN,
	"let":      LET,
	"const":    CONST,
	"mut":      MUT,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"return":   RETURN,
	"break":    BREAK,
	"continue": CONTINUE,
	"match":    MATCH,
	"struct":   STRUCT,
	"enum":     ENUM,
	"new":      NEW,
	"delete":   DELETE,
	"import":   IMPORT,
	"as":       AS,
	"export":   EXPORT,
	"extern":   EXTERN,
	"int":      TYPE_INT,
	"float":    TYPE_FLOAT,
	"bool":     TYPE_BOOL,
	"char":     TYPE_CHAR,
	"string":   TYPE_STRING,
	"true":     TRUE,
	"false":    FALSE,
}

// LookupIdent maps an identifier to its keyword token type, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// Describe returns a human-readable name for a token type, used in
// "expected X, found Y" diagnostics.
func Describe(t TokenType) string {
	switch t {
	case IDENT:
		return "identifier"
	case INT:
		return "integer literal"
	case FLOAT:
		return "float literal"
	case STRING:
		return "string literal"
	case CHAR:
		return "char literal"
	case EOF:
		return "end of file"
	case COMMENT:
		return "comment"
	}
	for kw, tt := range keywords {
		if tt == t {
			return kw
		}
	}
	return string(t)
}
