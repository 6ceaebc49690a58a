package ast

import (
	"github.com/rapterlang/rapter/internal/token"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// Node is the base interface for all AST nodes.
type Node interface {
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// Program is the root node of every parsed .rapt file.
type Program struct {
	File      string
	Imports   []*Import
	Exports   []*Export
	Externs   []*ExternFunction
	Functions []*Function
	Structs   []*StructDef
	Enums     []*EnumDef
	Globals   []*GlobalVariable
}

// Import brings a module into scope, optionally under an alias.
// import std.io as io
type Import struct {
	Token  token.Token // the 'import' token
	Module string      // dotted path, e.g. "std.io"
	Alias  string      // empty when no alias
}

func (i *Import) GetToken() token.Token { return i.Token }

// Qualifier is the prefix imported symbols are reachable under.
func (i *Import) Qualifier() string {
	if i.Alias != "" {
		return i.Alias
	}
	return i.Module
}

// ExportKind says what sort of declaration an export names.
type ExportKind int

const (
	ExportFunction ExportKind = iota
	ExportStruct
	ExportEnum
)

// Export marks a top-level declaration as visible to importers.
type Export struct {
	Token token.Token
	Kind  ExportKind
	Name  string
}

func (e *Export) GetToken() token.Token { return e.Token }

// Parameter is a named, typed function parameter.
type Parameter struct {
	Name string
	Type typesystem.Type
}

// Function is a rapter function definition. ReturnType is nil for void
// functions.
type Function struct {
	Token      token.Token // the 'fn' token
	Name       string
	Parameters []*Parameter
	ReturnType typesystem.Type
	Body       []Statement
}

func (f *Function) GetToken() token.Token { return f.Token }

// ExternFunction declares a C function made callable without a body.
// extern fn write(fd: int, buf: *char, count: int) -> int;
type ExternFunction struct {
	Token      token.Token
	Name       string
	Parameters []*Parameter
	ReturnType typesystem.Type
	Variadic   bool
}

func (e *ExternFunction) GetToken() token.Token { return e.Token }

// Field is a single struct field.
type Field struct {
	Name string
	Type typesystem.Type
}

// StructDef is a struct declaration.
type StructDef struct {
	Token  token.Token
	Name   string
	Fields []*Field
}

func (s *StructDef) GetToken() token.Token { return s.Token }

// EnumVariantDef is one variant of a C-style enum with its discriminant.
// Discriminants are resolved during parsing: explicit values restart the
// auto-increment sequence.
type EnumVariantDef struct {
	Name  string
	Value int64
}

// EnumDef is an enum declaration.
type EnumDef struct {
	Token    token.Token
	Name     string
	Variants []*EnumVariantDef
}

func (e *EnumDef) GetToken() token.Token { return e.Token }

// GlobalVariable is a top-level let binding.
type GlobalVariable struct {
	Token       token.Token
	Name        string
	Type        typesystem.Type // nil when inferred
	Mutable     bool
	Initializer Expression // nil when only declared
}

func (g *GlobalVariable) GetToken() token.Token { return g.Token }
