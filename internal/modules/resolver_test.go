package modules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/modules"
	"github.com/rapterlang/rapter/internal/parser"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func parseProgram(t *testing.T, source string) *ast.Program {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(source, "main.rapt")
	if lexErr != nil {
		t.Fatalf("lexer error: %s", lexErr.Error())
	}
	program, parseErr := parser.Parse(tokens, "main.rapt")
	if parseErr != nil {
		t.Fatalf("parser error: %s", parseErr.Error())
	}
	return program
}

func writeModule(t *testing.T, base, relPath, source string) {
	t.Helper()
	fullPath := filepath.Join(base, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(fullPath, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCollectsExports(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "std/io.rapt", `
export fn read_line() -> string {
    return "";
}

export struct File {
    fd: int,
    path: string,
}

export enum Mode {
    Read,
    Write,
}

fn helper() {}
`)

	resolver := modules.NewResolver(base)
	module, err := resolver.Load("std.io", diag.Span{})
	if err != nil {
		t.Fatalf("load: %s", err.Error())
	}

	if len(module.Exports) != 3 {
		t.Fatalf("exports: got %d, want 3", len(module.Exports))
	}
	if _, ok := module.Exports["helper"]; ok {
		t.Error("unexported function leaked into exports")
	}

	fn := module.Exports["read_line"]
	if fn.Kind != symbols.FunctionSymbol || !typesystem.Equal(fn.Type, typesystem.String) {
		t.Errorf("read_line: %+v", fn)
	}

	file := module.Exports["File"]
	if file.Kind != symbols.StructSymbol {
		t.Fatalf("File kind: %v", file.Kind)
	}
	if len(file.FieldNames) != 2 || file.FieldNames[0] != "fd" || file.FieldNames[1] != "path" {
		t.Errorf("field order: %v", file.FieldNames)
	}

	mode := module.Exports["Mode"]
	if mode.Kind != symbols.EnumSymbol || len(mode.Variants) != 2 {
		t.Errorf("Mode: %+v", mode)
	}
	if mode.VariantValues[1] != 1 {
		t.Errorf("Write discriminant: got %d, want 1", mode.VariantValues[1])
	}
}

func TestLoadCachesModules(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "math.rapt", "export fn sq(x: int) -> int { return x * x; }\n")

	resolver := modules.NewResolver(base)
	first, err := resolver.Load("math", diag.Span{})
	if err != nil {
		t.Fatalf("load: %s", err.Error())
	}
	second, err := resolver.Load("math", diag.Span{})
	if err != nil {
		t.Fatalf("reload: %s", err.Error())
	}
	if first != second {
		t.Error("expected the cached module on the second load")
	}
}

func TestLoadErrors(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "broken.rapt", "fn {\n")
	writeModule(t, base, "a.rapt", "import b;\n")
	writeModule(t, base, "b.rapt", "import a;\n")

	testCases := []struct {
		name   string
		module string
		code   diag.Code
	}{
		{"not_found", "no.such.module", diag.ModuleNotFound},
		{"parse_failure", "broken", diag.ModuleLoadError},
		{"circular", "a", diag.CircularImport},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resolver := modules.NewResolver(base)
			_, err := resolver.Load(tc.module, diag.Span{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if err.Code != tc.code {
				t.Errorf("code: got %s, want %s (%s)", err.Code, tc.code, err.Message)
			}
		})
	}
}

func TestResolveImportsQualifiedAndUnqualified(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "std/strings.rapt", "export fn repeat(s: string, n: int) -> string { return s; }\n")

	source := `
import std.strings;

fn main() {}
`
	program := parseProgram(t, source)

	resolver := modules.NewResolver(base)
	imported, err := resolver.ResolveImports(program)
	if err != nil {
		t.Fatalf("resolve: %s", err.Error())
	}
	if _, ok := imported["repeat"]; !ok {
		t.Error("missing unqualified symbol")
	}
	sym, ok := imported["strings.repeat"]
	if !ok {
		t.Fatal("missing qualified symbol")
	}
	if len(sym.Params) != 2 || !typesystem.Equal(sym.Params[1], typesystem.Int) {
		t.Errorf("params: %v", sym.Params)
	}
}

func TestResolveImportsHonorsAlias(t *testing.T) {
	base := t.TempDir()
	writeModule(t, base, "std/strings.rapt", "export fn repeat(s: string, n: int) -> string { return s; }\n")

	program := parseProgram(t, "import std.strings as su;\nfn main() {}\n")

	resolver := modules.NewResolver(base)
	imported, err := resolver.ResolveImports(program)
	if err != nil {
		t.Fatalf("resolve: %s", err.Error())
	}
	if _, ok := imported["su.repeat"]; !ok {
		t.Error("missing aliased qualified symbol")
	}
	if _, ok := imported["strings.repeat"]; ok {
		t.Error("alias should replace the default qualifier")
	}
}
