package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/rapterlang/rapter/internal/analyzer"
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/parser"
	"github.com/rapterlang/rapter/internal/token"
	"github.com/rapterlang/rapter/internal/typesystem"
)

const (
	replFile    = "repl.rapt"
	replHistory = ".rapter_history"
	promptMain  = "rapter> "
	promptCont  = "   ...> "
)

// session accumulates the declarations entered so far. Each new input is
// checked against a re-analysis of the whole session, so a rejected line
// never poisons later ones.
type session struct {
	declarations []string
}

func (s *session) source(extra string) string {
	parts := append(append([]string(nil), s.declarations...), extra)
	return strings.Join(parts, "\n")
}

// runRepl starts the interactive type-checking loop. Inputs are lexed,
// parsed, and analyzed; expressions print their type, declarations join the
// session. Nothing is executed.
func runRepl() int {
	fmt.Println("rapter repl — type-checking session, :help for commands")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, replHistory)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sess := &session{}
	for {
		input, ok := readInput(ln)
		if !ok {
			fmt.Println()
			return 0
		}
		trimmed := strings.TrimSpace(input)
		if trimmed == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(trimmed, ":") {
			switch trimmed {
			case ":quit", ":q":
				return 0
			case ":reset":
				sess.declarations = nil
				fmt.Println("session cleared")
			case ":list":
				for _, decl := range sess.declarations {
					fmt.Println(decl)
				}
			case ":help":
				fmt.Println(":quit exit, :reset clear the session, :list show session declarations")
			default:
				fmt.Println("unknown command, :help lists them")
			}
			continue
		}

		sess.eval(input)
	}
}

// readInput collects lines until the delimiters balance, so multi-line
// functions and struct bodies can be typed naturally.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			return "", false
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !needsMoreInput(b.String()) {
			return b.String(), true
		}
	}
}

// needsMoreInput reports whether the input so far has unclosed delimiters.
func needsMoreInput(input string) bool {
	tokens, err := lexer.Tokenize(input, replFile)
	if err != nil {
		// A lexical error ends the read, eval will report it.
		return false
	}
	depth := 0
	for _, tok := range tokens {
		switch tok.Type {
		case token.LPAREN, token.LBRACE, token.LBRACKET:
			depth++
		case token.RPAREN, token.RBRACE, token.RBRACKET:
			depth--
		}
	}
	return depth > 0
}

func (s *session) eval(input string) {
	tokens, err := lexer.Tokenize(input, replFile)
	if err != nil {
		printDiag(err)
		return
	}
	if len(tokens) == 0 || tokens[0].Type == token.EOF {
		return
	}

	switch tokens[0].Type {
	case token.FN, token.LET, token.CONST, token.STRUCT, token.ENUM,
		token.EXTERN, token.IMPORT, token.EXPORT:
		s.evalDeclaration(input)
	default:
		s.evalExpression(input, tokens)
	}
}

// evalDeclaration re-checks the whole session with the new declaration
// appended and commits it only when analysis passes.
func (s *session) evalDeclaration(input string) {
	candidate := s.source(input)
	program, err := s.analyzeSource(candidate)
	if err != nil {
		printDiag(err)
		return
	}
	s.declarations = append(s.declarations, input)

	// Name the most recently added declaration in the confirmation.
	switch {
	case len(program.Functions) > 0 && strings.HasPrefix(strings.TrimSpace(input), "fn"):
		fn := program.Functions[len(program.Functions)-1]
		fmt.Printf("fn %s: %s\n", fn.Name, typesystem.Describe(fn.ReturnType))
	case len(program.Globals) > 0 && strings.HasPrefix(strings.TrimSpace(input), "let"):
		fmt.Printf("let %s\n", program.Globals[len(program.Globals)-1].Name)
	default:
		fmt.Println("ok")
	}
}

// evalExpression types the expression against the session's declarations.
func (s *session) evalExpression(input string, tokens []token.Token) {
	sessionSource := s.source("")
	sessTokens, lexErr := lexer.Tokenize(sessionSource, replFile)
	if lexErr != nil {
		printDiag(lexErr)
		return
	}
	program, parseErr := parser.Parse(sessTokens, replFile)
	if parseErr != nil {
		printDiag(parseErr)
		return
	}

	expr, parseErr := parser.ParseExpression(tokens, replFile)
	if parseErr != nil {
		printDiag(parseErr)
		return
	}

	a := analyzer.New(replFile)
	if err := a.Analyze(program, nil); err != nil {
		printDiag(err)
		return
	}
	ty, err := a.CheckExpression(expr)
	if err != nil {
		printDiag(err)
		return
	}
	fmt.Printf("%s : %s\n", strings.TrimSpace(input), typesystem.Describe(ty))
}

func (s *session) analyzeSource(source string) (*ast.Program, *diag.Diagnostic) {
	tokens, err := lexer.Tokenize(source, replFile)
	if err != nil {
		return nil, err
	}
	parsed, err := parser.Parse(tokens, replFile)
	if err != nil {
		return nil, err
	}
	a := analyzer.New(replFile)
	if err := a.Analyze(parsed, nil); err != nil {
		return nil, err
	}
	return parsed, nil
}

func printDiag(d *diag.Diagnostic) {
	diag.NewFormatter(os.Stderr).Print(d)
}
