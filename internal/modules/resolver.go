package modules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/parser"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// Resolver loads modules by dotted name, caching each one so that a module
// shared by several importers is lexed and parsed once.
type Resolver struct {
	// searchPaths are tried in order; the importing file's directory comes
	// first, manifest module_path entries after it.
	searchPaths []string
	modules     map[string]*Module
	loading     map[string]bool
}

func NewResolver(basePath string, extraPaths ...string) *Resolver {
	return &Resolver{
		searchPaths: append([]string{basePath}, extraPaths...),
		modules:     make(map[string]*Module),
		loading:     make(map[string]bool),
	}
}

// locate resolves a dotted module name to the first matching file on the
// search path.
func (r *Resolver) locate(name string) (string, bool) {
	relPath := strings.ReplaceAll(name, ".", string(filepath.Separator)) + config.SourceFileExt
	for _, dir := range r.searchPaths {
		candidate := filepath.Join(dir, relPath)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return filepath.Join(r.searchPaths[0], relPath), false
}

// Load resolves a dotted module name like "std.io" to a source file under the
// base path, parses it and collects its exports. Imports of the loaded module
// are resolved transitively.
func (r *Resolver) Load(name string, span diag.Span) (*Module, *diag.Diagnostic) {
	if module, ok := r.modules[name]; ok {
		return module, nil
	}
	if r.loading[name] {
		return nil, diag.New(diag.CircularImport, span, "circular import of module `%s`", name).
			WithSuggestion("break the cycle by moving shared definitions into a third module")
	}

	fullPath, found := r.locate(name)
	if !found {
		return nil, diag.New(diag.ModuleNotFound, span, "module `%s` not found", name).
			WithSuggestion(fmt.Sprintf("check if the module file exists at %s", fullPath))
	}
	source, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, diag.New(diag.ModuleLoadError, span, "failed to read module `%s`: %v", name, err).
			WithSuggestion("check file permissions and ensure the file is not corrupted")
	}

	tokens, lexErr := lexer.Tokenize(string(source), fullPath)
	if lexErr != nil {
		return nil, diag.New(diag.ModuleLoadError, span, "failed to tokenize module `%s`: %s", name, lexErr.Message).
			WithRelated(lexErr)
	}
	program, parseErr := parser.Parse(tokens, fullPath)
	if parseErr != nil {
		return nil, diag.New(diag.ModuleLoadError, span, "failed to parse module `%s`: %s", name, parseErr.Message).
			WithRelated(parseErr)
	}

	r.loading[name] = true
	defer delete(r.loading, name)

	for _, imp := range program.Imports {
		if _, err := r.Load(imp.Module, diag.Span{File: fullPath, Line: imp.Token.Line, Column: imp.Token.Column}); err != nil {
			return nil, err
		}
	}

	module := &Module{Name: name, Path: fullPath, Program: program}
	if err := collectExports(module); err != nil {
		return nil, err
	}

	r.modules[name] = module
	return module, nil
}

// Loaded returns a cached module, or nil when it has not been loaded.
func (r *Resolver) Loaded(name string) *Module {
	return r.modules[name]
}

// All returns every module loaded so far, keyed by dotted name.
func (r *Resolver) All() map[string]*Module {
	return r.modules
}

func collectExports(module *Module) *diag.Diagnostic {
	module.Exports = make(map[string]Symbol)
	program := module.Program

	record := func(name string, sym Symbol) {
		module.Exports[name] = sym
		module.ExportOrder = append(module.ExportOrder, name)
	}

	for _, export := range program.Exports {
		span := diag.Span{File: module.Path, Line: export.Token.Line, Column: export.Token.Column}
		switch export.Kind {
		case ast.ExportFunction:
			fn := findFunction(program, export.Name)
			if fn == nil {
				return diag.New(diag.ExportNotFound, span, "exported function `%s` not found in module `%s`", export.Name, module.Name).
					WithSuggestion(fmt.Sprintf("ensure function `%s` is defined in the module", export.Name))
			}
			sym := Symbol{Name: export.Name, Kind: symbols.FunctionSymbol, Type: fn.ReturnType}
			for _, param := range fn.Parameters {
				sym.Params = append(sym.Params, param.Type)
			}
			record(export.Name, sym)
		case ast.ExportStruct:
			st := findStruct(program, export.Name)
			if st == nil {
				return diag.New(diag.ExportNotFound, span, "exported struct `%s` not found in module `%s`", export.Name, module.Name).
					WithSuggestion(fmt.Sprintf("ensure struct `%s` is defined in the module", export.Name))
			}
			sym := Symbol{Name: export.Name, Kind: symbols.StructSymbol, Type: typesystem.Struct{Name: export.Name}}
			for _, field := range st.Fields {
				sym.FieldNames = append(sym.FieldNames, field.Name)
				sym.FieldTypes = append(sym.FieldTypes, field.Type)
			}
			record(export.Name, sym)
		case ast.ExportEnum:
			en := findEnum(program, export.Name)
			if en == nil {
				return diag.New(diag.ExportNotFound, span, "exported enum `%s` not found in module `%s`", export.Name, module.Name).
					WithSuggestion(fmt.Sprintf("ensure enum `%s` is defined in the module", export.Name))
			}
			sym := Symbol{Name: export.Name, Kind: symbols.EnumSymbol, Type: typesystem.Enum{Name: export.Name}}
			for _, variant := range en.Variants {
				sym.Variants = append(sym.Variants, variant.Name)
				sym.VariantValues = append(sym.VariantValues, variant.Value)
			}
			record(export.Name, sym)
		}
	}
	return nil
}

// ResolveImports loads every module the program imports and returns the
// visible symbols, each in two forms: the unqualified export name and the
// qualified `prefix.name` form, where the prefix is the import alias or the
// last segment of the module path.
func (r *Resolver) ResolveImports(program *ast.Program) (map[string]Symbol, *diag.Diagnostic) {
	imported := make(map[string]Symbol)

	for _, imp := range program.Imports {
		span := diag.Span{File: program.File, Line: imp.Token.Line, Column: imp.Token.Column}
		module, err := r.Load(imp.Module, span)
		if err != nil {
			return nil, err
		}

		prefix := imp.Qualifier()
		for _, name := range module.ExportOrder {
			sym := module.Exports[name]
			if existing, ok := imported[name]; ok && existing.Kind != sym.Kind {
				return nil, diag.New(diag.ImportConflict, span,
					"import of `%s` from `%s` conflicts with an earlier import", name, imp.Module).
					WithSuggestion("use an import alias to disambiguate")
			}
			imported[name] = sym

			qualified := sym
			qualified.Name = prefix + "." + name
			imported[qualified.Name] = qualified
		}
	}
	return imported, nil
}

func findFunction(program *ast.Program, name string) *ast.Function {
	for _, fn := range program.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

func findStruct(program *ast.Program, name string) *ast.StructDef {
	for _, st := range program.Structs {
		if st.Name == name {
			return st
		}
	}
	return nil
}

func findEnum(program *ast.Program, name string) *ast.EnumDef {
	for _, en := range program.Enums {
		if en.Name == name {
			return en
		}
	}
	return nil
}
