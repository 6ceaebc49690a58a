package typesystem

import (
	"fmt"
	"strings"
)

// Type is the closed set of rapter types. There is no inference beyond local
// expression typing, so types are plain values with no substitution machinery.
type Type interface {
	String() string
	typ()
}

// Primitive is one of the built-in scalar types plus void.
type Primitive struct {
	Name string
}

func (p Primitive) String() string { return p.Name }
func (p Primitive) typ()           {}

var (
	Int    = Primitive{Name: "int"}
	Float  = Primitive{Name: "float"}
	Bool   = Primitive{Name: "bool"}
	Char   = Primitive{Name: "char"}
	String = Primitive{Name: "string"}
	Void   = Primitive{Name: "void"}
)

// Pointer is a raw pointer to Elem.
type Pointer struct {
	Elem Type
}

func (p Pointer) String() string { return "*" + p.Elem.String() }
func (p Pointer) typ()           {}

// Array is a fixed-size array of Elem. Sizes are erased after parsing; the
// generated C tracks them separately.
type Array struct {
	Elem Type
}

func (a Array) String() string { return "[" + a.Elem.String() + "]" }
func (a Array) typ()           {}

// DynamicArray is a growable array of Elem, lowered to a size/capacity/data
// struct in C.
type DynamicArray struct {
	Elem Type
}

func (d DynamicArray) String() string { return "DynamicArray[" + d.Elem.String() + "]" }
func (d DynamicArray) typ()           {}

// Struct is a named struct type. The name may be module-qualified
// ("geometry.Point"). Field layout lives in the symbol table, not here.
type Struct struct {
	Name string
}

func (s Struct) String() string { return s.Name }
func (s Struct) typ()           {}

// Enum is a named C-style enum type. Variant values live in the symbol table.
type Enum struct {
	Name string
}

func (e Enum) String() string { return e.Name }
func (e Enum) typ()           {}

// Generic is a concrete instantiation of a builtin generic family,
// e.g. Option<int> or Result<int, string>.
type Generic struct {
	Name string
	Args []Type
}

func (g Generic) String() string {
	parts := make([]string, len(g.Args))
	for i, a := range g.Args {
		parts[i] = a.String()
	}
	return g.Name + "<" + strings.Join(parts, ", ") + ">"
}
func (g Generic) typ() {}

// TypeParam is an unresolved type parameter (T, E). It only exists inside the
// builtin registry's variant descriptions; a TypeParam escaping into checked
// code or lowering is a compiler bug.
type TypeParam struct {
	Name string
}

func (t TypeParam) String() string { return t.Name }
func (t TypeParam) typ()           {}

// Equal reports structural identity. Compatible is the looser relation used
// for checking; Equal is what instantiation collapsing and tests rely on.
func Equal(a, b Type) bool {
	switch at := a.(type) {
	case Primitive:
		bt, ok := b.(Primitive)
		return ok && at.Name == bt.Name
	case Pointer:
		bt, ok := b.(Pointer)
		return ok && Equal(at.Elem, bt.Elem)
	case Array:
		bt, ok := b.(Array)
		return ok && Equal(at.Elem, bt.Elem)
	case DynamicArray:
		bt, ok := b.(DynamicArray)
		return ok && Equal(at.Elem, bt.Elem)
	case Struct:
		bt, ok := b.(Struct)
		return ok && at.Name == bt.Name
	case Enum:
		bt, ok := b.(Enum)
		return ok && at.Name == bt.Name
	case Generic:
		bt, ok := b.(Generic)
		if !ok || at.Name != bt.Name || len(at.Args) != len(bt.Args) {
			return false
		}
		for i := range at.Args {
			if !Equal(at.Args[i], bt.Args[i]) {
				return false
			}
		}
		return true
	case TypeParam:
		bt, ok := b.(TypeParam)
		return ok && at.Name == bt.Name
	}
	return false
}

// IsNumeric reports whether t is int or float.
func IsNumeric(t Type) bool {
	return Equal(t, Int) || Equal(t, Float)
}

// Describe is used in diagnostics where a nil type can occur (e.g. a function
// with no declared return type).
func Describe(t Type) string {
	if t == nil {
		return "void"
	}
	return t.String()
}

var _ = fmt.Stringer(Primitive{})
