// Package builtins describes the two generic families the compiler knows
// about, Option<T> and Result<T, E>. User-defined generics do not exist; the
// registry is the complete catalog and is immutable after construction.
package builtins

import (
	"fmt"
	"strings"

	"github.com/rapterlang/rapter/internal/typesystem"
)

// Variant is one constructor of a generic family. ValueParam indexes into the
// family's type parameters for value-carrying variants.
type Variant struct {
	Name       string
	HasValue   bool
	ValueParam int
}

// GenericType is a builtin generic family definition: its name, ordered type
// parameters, and variants.
type GenericType struct {
	Name     string
	Params   []string
	Variants []Variant
}

func option() *GenericType {
	return &GenericType{
		Name:   "Option",
		Params: []string{"T"},
		Variants: []Variant{
			{Name: "Some", HasValue: true, ValueParam: 0},
			{Name: "None"},
		},
	}
}

func result() *GenericType {
	return &GenericType{
		Name:   "Result",
		Params: []string{"T", "E"},
		Variants: []Variant{
			{Name: "Ok", HasValue: true, ValueParam: 0},
			{Name: "Err", HasValue: true, ValueParam: 1},
		},
	}
}

// Substitute instantiates the family with concrete arguments. Arity mismatch
// is a checked error, never a panic.
func (g *GenericType) Substitute(args []typesystem.Type) (typesystem.Type, error) {
	if len(args) != len(g.Params) {
		return nil, fmt.Errorf("%s expects %d type argument(s), got %d", g.Name, len(g.Params), len(args))
	}
	return typesystem.Generic{Name: g.Name, Args: args}, nil
}

// Variant looks up a variant by name.
func (g *GenericType) Variant(name string) (Variant, bool) {
	for _, v := range g.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// VariantNames lists the variant names for diagnostics.
func (g *GenericType) VariantNames() string {
	names := make([]string, len(g.Variants))
	for i, v := range g.Variants {
		names[i] = v.Name
	}
	return strings.Join(names, ", ")
}

// VariantValueType resolves the payload type a variant carries under the
// given instantiation arguments. Value-less variants report false.
func (g *GenericType) VariantValueType(variant string, args []typesystem.Type) (typesystem.Type, bool) {
	v, ok := g.Variant(variant)
	if !ok || !v.HasValue {
		return nil, false
	}
	if v.ValueParam < 0 || v.ValueParam >= len(args) {
		return nil, false
	}
	return args[v.ValueParam], true
}

// Registry holds the builtin generic families keyed by name.
type Registry struct {
	types map[string]*GenericType
}

// NewRegistry builds the registry with Option and Result.
func NewRegistry() *Registry {
	return &Registry{
		types: map[string]*GenericType{
			"Option": option(),
			"Result": result(),
		},
	}
}

// IsBuiltin reports whether name is a builtin generic family.
func (r *Registry) IsBuiltin(name string) bool {
	_, ok := r.types[name]
	return ok
}

// Lookup returns the family definition for name.
func (r *Registry) Lookup(name string) (*GenericType, bool) {
	g, ok := r.types[name]
	return g, ok
}
