package diag

import "fmt"

// Code identifies a diagnostic category. Codes are stable across releases so
// they can be referenced from editor tooling and test expectations.
type Code string

const (
	// Lexical
	UnexpectedCharacter   Code = "E001"
	UnterminatedString    Code = "E002"
	InvalidNumber         Code = "E003"
	InvalidEscapeSequence Code = "E004"

	// Parse
	UnexpectedToken  Code = "E101"
	ExpectedToken    Code = "E102"
	MissingSemicolon Code = "E103"
	UnclosedDelim    Code = "E104"
	InvalidSyntax    Code = "E105"

	// Semantic
	UndefinedVariable   Code = "E201"
	UndefinedFunction   Code = "E202"
	UndefinedType       Code = "E203"
	UndefinedModule     Code = "E204"
	DuplicateDefinition Code = "E205"
	TypeMismatch        Code = "E206"
	InvalidOperation    Code = "E207"
	WrongArgumentCount  Code = "E208"
	ImmutableAssignment Code = "E209"
	MissingReturn       Code = "E210"

	// Modules
	ModuleNotFound    Code = "E301"
	ModuleLoadError   Code = "E302"
	ModuleExportError Code = "E303"
	CircularImport    Code = "E304"
	ExportNotFound    Code = "E305"
	ImportConflict    Code = "E306"

	// Code generation
	UnsupportedFeature Code = "E401"
	InternalError      Code = "E500"
)

var titles = map[Code]string{
	UnexpectedCharacter:   "unexpected character",
	UnterminatedString:    "unterminated string literal",
	InvalidNumber:         "invalid number literal",
	InvalidEscapeSequence: "invalid escape sequence",
	UnexpectedToken:       "unexpected token",
	ExpectedToken:         "expected token",
	MissingSemicolon:      "missing semicolon",
	UnclosedDelim:         "unclosed delimiter",
	InvalidSyntax:         "invalid syntax",
	UndefinedVariable:     "undefined variable",
	UndefinedFunction:     "undefined function",
	UndefinedType:         "undefined type",
	UndefinedModule:       "undefined module",
	DuplicateDefinition:   "duplicate definition",
	TypeMismatch:          "type mismatch",
	InvalidOperation:      "invalid operation",
	WrongArgumentCount:    "wrong number of arguments",
	ImmutableAssignment:   "cannot assign to immutable variable",
	MissingReturn:         "missing return",
	ModuleNotFound:        "module not found",
	ModuleLoadError:       "module load error",
	ModuleExportError:     "module export error",
	CircularImport:        "circular import detected",
	ExportNotFound:        "export not found",
	ImportConflict:        "import conflict",
	UnsupportedFeature:    "unsupported feature",
	InternalError:         "internal compiler error",
}

// Title returns the short human name of a code.
func (c Code) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return "error"
}

// Span points at a region of source. Length is in runes on a single line;
// zero means "one character".
type Span struct {
	File   string
	Line   int
	Column int
	Length int
}

func (s Span) String() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// Suggestion is an actionable fix attached to a diagnostic.
type Suggestion struct {
	Message     string
	CodeExample string
	HelpLink    string
}

// Diagnostic is a single compiler error with enough structure for both
// terminal rendering and machine consumption.
type Diagnostic struct {
	Code        Code
	Message     string
	Span        Span
	Context     string
	Suggestions []Suggestion
	Related     []*Diagnostic
}

func New(code Code, span Span, format string, args ...interface{}) *Diagnostic {
	return &Diagnostic{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Span:    span,
	}
}

func (d *Diagnostic) WithContext(context string) *Diagnostic {
	d.Context = context
	return d
}

func (d *Diagnostic) WithSuggestion(message string) *Diagnostic {
	d.Suggestions = append(d.Suggestions, Suggestion{Message: message})
	return d
}

func (d *Diagnostic) WithExample(message, example string) *Diagnostic {
	d.Suggestions = append(d.Suggestions, Suggestion{Message: message, CodeExample: example})
	return d
}

func (d *Diagnostic) WithHelpLink(message, link string) *Diagnostic {
	d.Suggestions = append(d.Suggestions, Suggestion{Message: message, HelpLink: link})
	return d
}

func (d *Diagnostic) WithRelated(related *Diagnostic) *Diagnostic {
	d.Related = append(d.Related, related)
	return d
}

// Error implements the error interface with a compact single-line form.
// Full rendering with source snippets is the Formatter's job.
func (d *Diagnostic) Error() string {
	if d.Span.File == "" && d.Span.Line == 0 {
		return fmt.Sprintf("error[%s]: %s", d.Code, d.Message)
	}
	return fmt.Sprintf("%s: error[%s]: %s", d.Span, d.Code, d.Message)
}

// Helpers for the most common diagnostics. Each bakes in the suggestion the
// message deserves so call sites stay short.

func UndefinedVariableAt(name string, span Span) *Diagnostic {
	return New(UndefinedVariable, span, "cannot find variable `%s` in this scope", name).
		WithSuggestion("consider declaring the variable with `let` or check if it's spelled correctly")
}

func TypeMismatchAt(expected, found string, span Span) *Diagnostic {
	return New(TypeMismatch, span, "expected `%s`, found `%s`", expected, found).
		WithSuggestion("consider converting the value to the expected type or changing the expected type")
}

func UnexpectedTokenAt(expected, found string, span Span) *Diagnostic {
	return New(UnexpectedToken, span, "expected `%s`, found `%s`", expected, found).
		WithSuggestion("check for missing or extra punctuation")
}

func DuplicateDefinitionAt(name string, span, previous Span) *Diagnostic {
	return New(DuplicateDefinition, span, "the name `%s` is already defined", name).
		WithRelated(New(DuplicateDefinition, previous, "previous definition of `%s`", name)).
		WithSuggestion("consider renaming one of the definitions or using different scopes")
}
