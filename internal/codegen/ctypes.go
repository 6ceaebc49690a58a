package codegen

import (
	"strings"

	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// cType maps a rapter type to its C spelling. bool lowers to int, string to
// char*, enums to int. Generic instantiations use their mangled names.
func (g *Generator) cType(ty typesystem.Type) string {
	switch t := ty.(type) {
	case typesystem.Primitive:
		switch t.Name {
		case "int":
			return "int"
		case "float":
			return "double"
		case "bool":
			return "int"
		case "char":
			return "char"
		case "string":
			return "char*"
		case "void":
			return "void"
		}
	case typesystem.Pointer:
		return g.cType(t.Elem) + "*"
	case typesystem.Array:
		return g.cType(t.Elem) + "*"
	case typesystem.DynamicArray:
		switch elem := t.Elem.(type) {
		case typesystem.Primitive:
			switch elem.Name {
			case "int":
				return "DynamicArray_int"
			case "float":
				return "DynamicArray_double"
			case "char":
				return "DynamicArray_char"
			case "string":
				return "DynamicArray_charptr"
			}
		case typesystem.Struct:
			if elem.Name == "str" {
				return "DynamicArray_charptr"
			}
			return "DynamicArray_" + localName(elem.Name)
		}
		return "struct { " + g.cType(t.Elem) + "* data; size_t size; size_t capacity; }"
	case typesystem.Struct:
		if t.Name == "str" {
			return "char*"
		}
		return localName(t.Name)
	case typesystem.Enum:
		return "int"
	case typesystem.Generic:
		return g.mangled(t)
	case typesystem.TypeParam:
		g.record(g.fail(diag.InternalError,
			"type parameter `%s` reached code generation without substitution", t.Name))
		return "int"
	}
	return "int"
}

// mangled builds the deterministic, context-free name fragment for a type.
// Option<int> becomes Option_int, Result<[int], *char> becomes
// Result_arr_int_ptr_char.
func (g *Generator) mangled(ty typesystem.Type) string {
	switch t := ty.(type) {
	case typesystem.Primitive:
		switch t.Name {
		case "float":
			return "float"
		default:
			return t.Name
		}
	case typesystem.Pointer:
		return "ptr_" + g.mangled(t.Elem)
	case typesystem.Array:
		return "arr_" + g.mangled(t.Elem)
	case typesystem.DynamicArray:
		return "vec_" + g.mangled(t.Elem)
	case typesystem.Struct:
		if t.Name == "str" {
			return "string"
		}
		return localName(t.Name)
	case typesystem.Enum:
		return localName(t.Name)
	case typesystem.Generic:
		parts := make([]string, 0, len(t.Args)+1)
		parts = append(parts, t.Name)
		for _, arg := range t.Args {
			parts = append(parts, g.mangled(arg))
		}
		return strings.Join(parts, "_")
	case typesystem.TypeParam:
		return t.Name
	}
	return "int"
}

// localName strips a module qualifier, so `geometry.Point` emits as the C
// type `Point` that the imported module's definition declared.
func localName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
