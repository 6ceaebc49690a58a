package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rapterlang/rapter/internal/analyzer"
	"github.com/rapterlang/rapter/internal/codegen"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/parser"
	"github.com/rapterlang/rapter/internal/pipeline"
	"github.com/rapterlang/rapter/internal/project"
)

func usage() {
	fmt.Fprintf(os.Stderr, `rapter — ahead-of-time compiler for .rapt sources

Usage:
  rapter build <file%s> [-o out.c] [--tokens] [--verbose]
  rapter check <file%s> [--tokens] [--verbose]
  rapter repl
  rapter help

build compiles the file and its imports to a single C translation unit.
check stops after semantic analysis and writes nothing.
repl starts an interactive type-checking session.

An optional rapter.yaml next to the source (or in a parent directory)
supplies the output path, extra module directories, and emit options;
command-line flags override it.
`, config.SourceFileExt, config.SourceFileExt)
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "this is a bug, please report it")
			os.Exit(1)
		}
	}()

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "build":
		os.Exit(runBuild(os.Args[2:], true))
	case "check":
		os.Exit(runBuild(os.Args[2:], false))
	case "repl":
		os.Exit(runRepl())
	case "help", "-h", "--help":
		usage()
	default:
		// A bare source path compiles it, so `rapter main.rapt` works.
		if strings.HasSuffix(os.Args[1], config.SourceFileExt) {
			os.Exit(runBuild(os.Args[1:], true))
		}
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

// buildOptions holds the flags of one build/check invocation.
type buildOptions struct {
	input   string
	output  string
	tokens  bool
	verbose bool
}

func parseBuildArgs(args []string) (buildOptions, error) {
	var opts buildOptions
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; arg {
		case "-o", "--output":
			if i+1 >= len(args) {
				return opts, fmt.Errorf("%s requires a path", arg)
			}
			i++
			opts.output = args[i]
		case "--tokens":
			opts.tokens = true
		case "--verbose", "-v":
			opts.verbose = true
		default:
			if strings.HasPrefix(arg, "-") {
				return opts, fmt.Errorf("unknown flag %q", arg)
			}
			if opts.input != "" {
				return opts, fmt.Errorf("multiple input files: %q and %q", opts.input, arg)
			}
			opts.input = arg
		}
	}
	if opts.input == "" {
		return opts, fmt.Errorf("no input file")
	}
	if !strings.HasSuffix(opts.input, config.SourceFileExt) {
		return opts, fmt.Errorf("input %q is not a %s file", opts.input, config.SourceFileExt)
	}
	return opts, nil
}

func runBuild(args []string, emit bool) int {
	opts, err := parseBuildArgs(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 2
	}

	input, err := filepath.Abs(opts.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}
	source, err := os.ReadFile(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", opts.input, err)
		return 1
	}

	manifest, err := loadManifest(filepath.Dir(input), opts.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return 1
	}

	buildID := uuid.NewString()
	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[rapter] build %s\n", buildID)
		fmt.Fprintf(os.Stderr, "[rapter] input %s\n", input)
	}

	var searchPaths, includes []string
	if manifest != nil {
		searchPaths = manifest.SearchPaths()
		includes = manifest.Emit.Includes
	}

	stages := []pipeline.Processor{
		stage("lex", &lexer.LexerProcessor{}, opts.verbose),
	}
	if opts.tokens {
		stages = append(stages, tokenDump{})
	}
	stages = append(stages,
		stage("parse", &parser.ParserProcessor{}, opts.verbose),
		stage("analyze", &analyzer.AnalyzerProcessor{SearchPaths: searchPaths}, opts.verbose),
	)
	if emit {
		stages = append(stages, stage("generate", &codegen.CodegenProcessor{Includes: includes}, opts.verbose))
	}

	ctx := pipeline.New(stages...).Run(&pipeline.Context{
		FilePath: input,
		Source:   string(source),
		BuildID:  buildID,
	})
	if ctx.Failed() {
		diag.NewFormatter(os.Stderr).PrintAll(ctx.Diagnostics)
		return 1
	}

	if !emit {
		fmt.Printf("checked %s: no errors\n", opts.input)
		return 0
	}

	output := opts.output
	if output == "" {
		output = manifest.OutputFor(input)
	}
	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating %s: %s\n", dir, err)
			return 1
		}
	}
	if err := os.WriteFile(output, []byte(ctx.Output), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "error: writing %s: %s\n", output, err)
		return 1
	}
	fmt.Printf("compiled %s -> %s\n", opts.input, output)
	return 0
}

// loadManifest finds and parses rapter.yaml. A missing manifest is not an
// error, a broken one is.
func loadManifest(dir string, verbose bool) (*project.Manifest, error) {
	path, err := project.Find(dir)
	if err != nil || path == "" {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[rapter] manifest %s\n", path)
	}
	return project.Load(path)
}

// timedStage wraps a processor with duration logging for --verbose.
type timedStage struct {
	name  string
	inner pipeline.Processor
}

func (s timedStage) Process(ctx *pipeline.Context) *pipeline.Context {
	start := time.Now()
	ctx = s.inner.Process(ctx)
	fmt.Fprintf(os.Stderr, "[rapter] %-8s %s\n", s.name, time.Since(start).Round(time.Microsecond))
	return ctx
}

func stage(name string, inner pipeline.Processor, verbose bool) pipeline.Processor {
	if !verbose {
		return inner
	}
	return timedStage{name: name, inner: inner}
}

// tokenDump prints the token stream between lexing and parsing, for
// --tokens.
type tokenDump struct{}

func (tokenDump) Process(ctx *pipeline.Context) *pipeline.Context {
	for _, tok := range ctx.Tokens {
		fmt.Printf("%4d:%-4d %-12s %s\n", tok.Line, tok.Column, tok.Type, tok.Lexeme)
	}
	return ctx
}
