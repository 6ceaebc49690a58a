package modules

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// Symbol is an exported item of a module, carrying enough layout
// information for checking and code generation in the importer.
type Symbol struct {
	Name   string
	Kind   symbols.SymbolKind
	Type   typesystem.Type   // function return type, or the struct/enum type itself
	Params []typesystem.Type // function parameter types

	// Struct layout, in declaration order.
	FieldNames []string
	FieldTypes []typesystem.Type

	// Enum layout, in declaration order.
	Variants      []string
	VariantValues []int64
}

// Module is a loaded and parsed source module.
type Module struct {
	Name    string
	Path    string
	Program *ast.Program
	Exports map[string]Symbol

	// ExportOrder preserves declaration order for deterministic output.
	ExportOrder []string
}
