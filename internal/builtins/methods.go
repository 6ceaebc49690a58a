package builtins

import (
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// Capability identifies the receiver family a built-in method belongs to.
// The checker resolves a method call to a capability once and code
// generation keys its lowering on the same tag.
type Capability int

const (
	StringCapability Capability = iota
	DynamicArrayCapability
)

// Method describes one built-in method: its receiver capability, arity and
// result type as a function of the receiver.
type Method struct {
	Name       string
	Capability Capability
	Arity      int
	Result     func(receiver typesystem.Type) typesystem.Type
}

var stringMethods = map[string]Method{
	config.StrLengthMethod: {
		Name:       config.StrLengthMethod,
		Capability: StringCapability,
		Arity:      0,
		Result:     func(typesystem.Type) typesystem.Type { return typesystem.Int },
	},
	config.StrSubstringMethod: {
		Name:       config.StrSubstringMethod,
		Capability: StringCapability,
		Arity:      2,
		Result:     func(typesystem.Type) typesystem.Type { return typesystem.String },
	},
	config.StrContainsMethod: {
		Name:       config.StrContainsMethod,
		Capability: StringCapability,
		Arity:      1,
		Result:     func(typesystem.Type) typesystem.Type { return typesystem.Bool },
	},
	config.StrTrimMethod: {
		Name:       config.StrTrimMethod,
		Capability: StringCapability,
		Arity:      0,
		Result:     func(typesystem.Type) typesystem.Type { return typesystem.String },
	},
	config.StrSplitMethod: {
		Name:       config.StrSplitMethod,
		Capability: StringCapability,
		Arity:      1,
		Result: func(typesystem.Type) typesystem.Type {
			return typesystem.DynamicArray{Elem: typesystem.String}
		},
	},
}

var dynamicArrayMethods = map[string]Method{
	config.ArrPushMethod: {
		Name:       config.ArrPushMethod,
		Capability: DynamicArrayCapability,
		Arity:      1,
		Result:     func(receiver typesystem.Type) typesystem.Type { return receiver },
	},
	config.ArrPopMethod: {
		Name:       config.ArrPopMethod,
		Capability: DynamicArrayCapability,
		Arity:      0,
		Result: func(receiver typesystem.Type) typesystem.Type {
			return receiver.(typesystem.DynamicArray).Elem
		},
	},
	config.ArrLengthMethod: {
		Name:       config.ArrLengthMethod,
		Capability: DynamicArrayCapability,
		Arity:      0,
		Result:     func(typesystem.Type) typesystem.Type { return typesystem.Int },
	},
}

// LookupMethod resolves a built-in method for the given receiver type.
func LookupMethod(receiver typesystem.Type, name string) (Method, bool) {
	switch receiver.(type) {
	case typesystem.Primitive:
		if typesystem.Equal(receiver, typesystem.String) {
			m, ok := stringMethods[name]
			return m, ok
		}
	case typesystem.DynamicArray:
		m, ok := dynamicArrayMethods[name]
		return m, ok
	}
	return Method{}, false
}
