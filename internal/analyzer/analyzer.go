package analyzer

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/builtins"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/modules"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/token"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// Analyzer type-checks one program. Checking is fail-fast: the first
// diagnostic aborts the analysis.
type Analyzer struct {
	table    *symbols.Table
	registry *builtins.Registry
	file     string
}

func New(file string) *Analyzer {
	return &Analyzer{
		table:    symbols.NewTable(),
		registry: builtins.NewRegistry(),
		file:     file,
	}
}

// Table exposes the populated symbol table for later stages.
func (a *Analyzer) Table() *symbols.Table {
	return a.table
}

func (a *Analyzer) span(tok token.Token) diag.Span {
	return diag.Span{File: a.file, Line: tok.Line, Column: tok.Column}
}

func (a *Analyzer) errorAt(tok token.Token, code diag.Code, format string, args ...interface{}) *diag.Diagnostic {
	return diag.New(code, a.span(tok), format, args...)
}

func (a *Analyzer) insert(sym symbols.Symbol, tok token.Token) *diag.Diagnostic {
	if !a.table.Insert(sym) {
		return diag.DuplicateDefinitionAt(sym.Name, a.span(tok), diag.Span{File: a.file})
	}
	return nil
}

// Analyze checks a whole program. Imported symbols come pre-resolved from the
// module resolver, in both qualified and unqualified form.
func (a *Analyzer) Analyze(program *ast.Program, imported map[string]modules.Symbol) *diag.Diagnostic {
	for name, sym := range imported {
		local := symbols.Symbol{Name: name, Kind: sym.Kind, Type: sym.Type, Params: sym.Params, Mutable: false}
		if err := a.insert(local, token.Token{}); err != nil {
			return err
		}
		switch sym.Kind {
		case symbols.StructSymbol:
			if st, ok := sym.Type.(typesystem.Struct); ok {
				a.table.DefineStruct(st.Name, sym.FieldNames, sym.FieldTypes)
			}
		case symbols.EnumSymbol:
			if en, ok := sym.Type.(typesystem.Enum); ok {
				a.table.DefineEnum(en.Name, sym.Variants, sym.VariantValues)
			}
		}
	}

	// First pass: collect unit-level declarations so bodies can refer to
	// anything regardless of order.
	for _, ext := range program.Externs {
		sym := symbols.Symbol{Name: ext.Name, Kind: symbols.FunctionSymbol, Type: ext.ReturnType}
		for _, p := range ext.Parameters {
			sym.Params = append(sym.Params, p.Type)
		}
		if err := a.insert(sym, ext.Token); err != nil {
			return err
		}
	}
	for _, fn := range program.Functions {
		sym := symbols.Symbol{Name: fn.Name, Kind: symbols.FunctionSymbol, Type: fn.ReturnType}
		for _, p := range fn.Parameters {
			sym.Params = append(sym.Params, p.Type)
		}
		if err := a.insert(sym, fn.Token); err != nil {
			return err
		}
	}
	for _, st := range program.Structs {
		sym := symbols.Symbol{Name: st.Name, Kind: symbols.StructSymbol, Type: typesystem.Struct{Name: st.Name}}
		if err := a.insert(sym, st.Token); err != nil {
			return err
		}
		names := make([]string, len(st.Fields))
		types := make([]typesystem.Type, len(st.Fields))
		for i, f := range st.Fields {
			names[i] = f.Name
			types[i] = f.Type
		}
		a.table.DefineStruct(st.Name, names, types)
	}
	for _, en := range program.Enums {
		sym := symbols.Symbol{Name: en.Name, Kind: symbols.EnumSymbol, Type: typesystem.Enum{Name: en.Name}}
		if err := a.insert(sym, en.Token); err != nil {
			return err
		}
		names := make([]string, len(en.Variants))
		values := make([]int64, len(en.Variants))
		for i, v := range en.Variants {
			names[i] = v.Name
			values[i] = v.Value
		}
		a.table.DefineEnum(en.Name, names, values)
	}
	for _, global := range program.Globals {
		if err := a.checkGlobal(global); err != nil {
			return err
		}
	}

	// Second pass: function bodies.
	for _, fn := range program.Functions {
		if err := a.checkFunction(fn); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) checkGlobal(global *ast.GlobalVariable) *diag.Diagnostic {
	ty := global.Type
	if ty == nil {
		if global.Initializer == nil {
			return a.errorAt(global.Token, diag.InvalidSyntax,
				"global variable `%s` must have a type annotation or initializer", global.Name).
				WithSuggestion("add a type annotation like `: int` or provide an initializer expression")
		}
		var err *diag.Diagnostic
		ty, err = a.inferType(global.Initializer)
		if err != nil {
			return err
		}
	} else if global.Initializer != nil {
		initTy, err := a.inferTypeWithHint(global.Initializer, ty)
		if err != nil {
			return err
		}
		if !typesystem.Compatible(ty, initTy) {
			return diag.TypeMismatchAt(typesystem.Describe(ty), typesystem.Describe(initTy), a.span(global.Token)).
				WithContext("in the initializer of global `" + global.Name + "`")
		}
	}
	return a.insert(symbols.Symbol{Name: global.Name, Kind: symbols.VariableSymbol, Type: ty, Mutable: true}, global.Token)
}

func (a *Analyzer) checkFunction(fn *ast.Function) *diag.Diagnostic {
	a.table.EnterScope()
	defer a.table.ExitScope()

	a.table.CurrentReturnType = fn.ReturnType
	a.table.InFunction = true
	defer func() {
		a.table.CurrentReturnType = nil
		a.table.InFunction = false
	}()

	for _, param := range fn.Parameters {
		sym := symbols.Symbol{Name: param.Name, Kind: symbols.ParameterSymbol, Type: param.Type, Mutable: true}
		if err := a.insert(sym, fn.Token); err != nil {
			return err
		}
	}

	for _, stmt := range fn.Body {
		if err := a.checkStatement(stmt, fn.ReturnType); err != nil {
			return err
		}
	}

	if fn.ReturnType != nil {
		returns, err := a.blockReturns(fn.Body)
		if err != nil {
			return err
		}
		if !returns {
			return a.errorAt(fn.Token, diag.MissingReturn,
				"function `%s` is declared to return `%s` but not all paths return a value",
				fn.Name, typesystem.Describe(fn.ReturnType)).
				WithSuggestion("ensure every execution path returns a value of the declared type")
		}
	}
	return nil
}

// blockReturns reports whether a block guarantees a return on every path. A
// block counts when it contains a direct return, or an if statement whose
// branches both guarantee one. Loop bodies never count, even `while true`.
func (a *Analyzer) blockReturns(stmts []ast.Statement) (bool, *diag.Diagnostic) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.ReturnStatement:
			return true, nil
		case *ast.IfStatement:
			if s.Else == nil {
				continue
			}
			thenReturns, err := a.blockReturns(s.Then)
			if err != nil {
				return false, err
			}
			elseReturns, err := a.blockReturns(s.Else)
			if err != nil {
				return false, err
			}
			if thenReturns && elseReturns {
				return true, nil
			}
		}
	}
	return false, nil
}
