package symbols

import (
	"github.com/rapterlang/rapter/internal/typesystem"
)

type SymbolKind int

const (
	VariableSymbol SymbolKind = iota
	ParameterSymbol
	FunctionSymbol
	StructSymbol
	EnumSymbol
)

// Symbol is one named entity visible to the checker. For functions Type is the
// return type (nil for void) and Params carries the parameter types in order.
type Symbol struct {
	Name    string
	Kind    SymbolKind
	Type    typesystem.Type
	Params  []typesystem.Type
	Mutable bool
}

// Table is the scope-stack symbol table built fresh for every compilation.
// Scopes nest innermost-last; lookups walk innermost to outermost. The layout
// side tables (struct fields, enum variants) are flat because type names are
// global.
type Table struct {
	scopes []map[string]Symbol

	structFields map[string]map[string]typesystem.Type
	fieldOrder   map[string][]string
	enumVariants map[string]map[string]int64
	variantOrder map[string][]string

	// Return type of the function currently being checked; nil for void.
	CurrentReturnType typesystem.Type
	// Whether the current function declares a return type at all.
	InFunction bool
}

func NewTable() *Table {
	return &Table{
		scopes:       []map[string]Symbol{make(map[string]Symbol)},
		structFields: make(map[string]map[string]typesystem.Type),
		fieldOrder:   make(map[string][]string),
		enumVariants: make(map[string]map[string]int64),
		variantOrder: make(map[string][]string),
	}
}

// EnterScope pushes a fresh innermost scope.
func (t *Table) EnterScope() {
	t.scopes = append(t.scopes, make(map[string]Symbol))
}

// ExitScope pops the innermost scope. The global scope is never popped.
func (t *Table) ExitScope() {
	if len(t.scopes) > 1 {
		t.scopes = t.scopes[:len(t.scopes)-1]
	}
}

// Insert adds a symbol to the innermost scope. It fails when the name already
// exists in that same scope; shadowing an outer scope is allowed.
func (t *Table) Insert(sym Symbol) bool {
	scope := t.scopes[len(t.scopes)-1]
	if _, exists := scope[sym.Name]; exists {
		return false
	}
	scope[sym.Name] = sym
	return true
}

// Lookup finds a symbol, innermost scope first.
func (t *Table) Lookup(name string) (Symbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i][name]; ok {
			return sym, true
		}
	}
	return Symbol{}, false
}

// LookupCurrent finds a symbol in the innermost scope only.
func (t *Table) LookupCurrent(name string) (Symbol, bool) {
	sym, ok := t.scopes[len(t.scopes)-1][name]
	return sym, ok
}

// DefineStruct records a struct layout. Field order is preserved for code
// generation.
func (t *Table) DefineStruct(name string, fields []string, types []typesystem.Type) {
	layout := make(map[string]typesystem.Type, len(fields))
	for i, f := range fields {
		layout[f] = types[i]
	}
	t.structFields[name] = layout
	t.fieldOrder[name] = fields
}

// StructField resolves one field of a struct.
func (t *Table) StructField(structName, field string) (typesystem.Type, bool) {
	layout, ok := t.structFields[structName]
	if !ok {
		return nil, false
	}
	ft, ok := layout[field]
	return ft, ok
}

// StructFields returns the field names of a struct in declaration order.
func (t *Table) StructFields(structName string) ([]string, bool) {
	order, ok := t.fieldOrder[structName]
	return order, ok
}

// HasStruct reports whether a struct layout is recorded under name.
func (t *Table) HasStruct(name string) bool {
	_, ok := t.structFields[name]
	return ok
}

// DefineEnum records an enum's variants with their discriminants.
func (t *Table) DefineEnum(name string, variants []string, values []int64) {
	vs := make(map[string]int64, len(variants))
	for i, v := range variants {
		vs[v] = values[i]
	}
	t.enumVariants[name] = vs
	t.variantOrder[name] = variants
}

// EnumVariant resolves a variant's discriminant.
func (t *Table) EnumVariant(enumName, variant string) (int64, bool) {
	vs, ok := t.enumVariants[enumName]
	if !ok {
		return 0, false
	}
	v, ok := vs[variant]
	return v, ok
}

// EnumVariants returns the variant names of an enum in declaration order.
func (t *Table) EnumVariants(enumName string) ([]string, bool) {
	order, ok := t.variantOrder[enumName]
	return order, ok
}

// HasEnum reports whether an enum is recorded under name.
func (t *Table) HasEnum(name string) bool {
	_, ok := t.enumVariants[name]
	return ok
}
