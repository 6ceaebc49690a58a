package analyzer

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/builtins"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func (a *Analyzer) inferCall(e *ast.CallExpr) (typesystem.Type, *diag.Diagnostic) {
	switch callee := e.Callee.(type) {
	case *ast.Identifier:
		return a.inferNamedCall(e, callee)
	case *ast.FieldAccess:
		return a.inferQualifiedCall(e, callee)
	case *ast.EnumAccess:
		return a.inferVariantConstruction(e, callee)
	}
	return nil, a.errorAt(e.Token, diag.InvalidOperation, "invalid call expression").
		WithSuggestion("only function names or method calls can be used as callees")
}

func (a *Analyzer) inferNamedCall(e *ast.CallExpr, callee *ast.Identifier) (typesystem.Type, *diag.Diagnostic) {
	name := callee.Name

	if name == config.PrintFuncName || name == config.PrintlnFuncName {
		// One argument of any printable type; the generator picks the
		// format specifier. A bare println() prints a newline.
		if name == config.PrintlnFuncName && len(e.Arguments) == 0 {
			return typesystem.Void, nil
		}
		if len(e.Arguments) != 1 {
			return nil, a.errorAt(e.Token, diag.WrongArgumentCount,
				"%s() expects exactly 1 argument, got %d", name, len(e.Arguments))
		}
		if _, err := a.inferType(e.Arguments[0]); err != nil {
			return nil, err
		}
		return typesystem.Void, nil
	}
	if name == config.LenFuncName {
		if len(e.Arguments) != 1 {
			return nil, a.errorAt(e.Token, diag.WrongArgumentCount,
				"len() expects exactly 1 argument, got %d", len(e.Arguments))
		}
		argTy, err := a.inferType(e.Arguments[0])
		if err != nil {
			return nil, err
		}
		if !typesystem.Equal(argTy, typesystem.String) {
			return nil, a.errorAt(e.Token, diag.TypeMismatch,
				"len() expects a string argument, got `%s`", typesystem.Describe(argTy)).
				WithSuggestion("pass a string to len() to get its length")
		}
		return typesystem.Int, nil
	}

	if sym, ok := a.table.Lookup(name); ok {
		if sym.Kind != symbols.FunctionSymbol {
			return nil, a.errorAt(e.Token, diag.InvalidOperation, "`%s` is not a function", name).
				WithSuggestion("only functions can be called with parentheses")
		}
		if err := a.checkArguments(e, name, sym.Params); err != nil {
			return nil, err
		}
		return returnTypeOf(sym), nil
	}

	if config.IsCIntrinsic(name) {
		// Intrinsics are declared by the C toolchain; without their real
		// prototypes int is the assumed result.
		for _, arg := range e.Arguments {
			if _, err := a.inferType(arg); err != nil {
				return nil, err
			}
		}
		return typesystem.Int, nil
	}

	return nil, a.errorAt(e.Token, diag.UndefinedFunction,
		"cannot find function `%s` in this scope", name).
		WithSuggestion("check the function name for typos or ensure it's defined/imported")
}

// checkArguments validates arity and argument types against a function
// signature from the symbol table.
func (a *Analyzer) checkArguments(e *ast.CallExpr, name string, params []typesystem.Type) *diag.Diagnostic {
	if len(e.Arguments) != len(params) {
		return a.errorAt(e.Token, diag.WrongArgumentCount,
			"`%s` expects %d argument(s), got %d", name, len(params), len(e.Arguments))
	}
	for i, arg := range e.Arguments {
		argTy, err := a.inferTypeWithHint(arg, params[i])
		if err != nil {
			return err
		}
		if !typesystem.Compatible(params[i], argTy) {
			return a.errorAt(arg.GetToken(), diag.TypeMismatch,
				"argument %d of `%s` expects `%s`, got `%s`",
				i+1, name, typesystem.Describe(params[i]), typesystem.Describe(argTy))
		}
	}
	return nil
}

func returnTypeOf(sym symbols.Symbol) typesystem.Type {
	if sym.Type == nil {
		return typesystem.Void
	}
	return normalizeStr(sym.Type)
}

// inferQualifiedCall handles `obj.member(args)`: either a module-qualified
// function call or a built-in method on a string or dynamic array receiver.
func (a *Analyzer) inferQualifiedCall(e *ast.CallExpr, callee *ast.FieldAccess) (typesystem.Type, *diag.Diagnostic) {
	if ident, ok := callee.Object.(*ast.Identifier); ok {
		qualified := ident.Name + "." + callee.Field
		if sym, found := a.table.Lookup(qualified); found {
			if sym.Kind != symbols.FunctionSymbol {
				return nil, a.errorAt(e.Token, diag.InvalidOperation,
					"`%s` is not a function", qualified).
					WithSuggestion("only functions can be called with parentheses")
			}
			if err := a.checkArguments(e, qualified, sym.Params); err != nil {
				return nil, err
			}
			return returnTypeOf(sym), nil
		}
		if _, found := a.table.Lookup(ident.Name); !found {
			return nil, a.errorAt(e.Token, diag.UndefinedFunction,
				"function `%s` not found", qualified).
				WithSuggestion("ensure `" + callee.Field + "` is exported from module `" + ident.Name + "`")
		}
	}

	receiverTy, err := a.inferType(callee.Object)
	if err != nil {
		return nil, err
	}
	receiverTy = normalizeStr(receiverTy)

	method, ok := builtins.LookupMethod(receiverTy, callee.Field)
	if !ok {
		if _, isStruct := receiverTy.(typesystem.Struct); isStruct {
			return nil, a.errorAt(e.Token, diag.InvalidOperation, "cannot call struct field as function").
				WithSuggestion("struct fields cannot be called like functions")
		}
		return nil, a.errorAt(e.Token, diag.UndefinedFunction,
			"unknown method `%s` on type `%s`", callee.Field, typesystem.Describe(receiverTy)).
			WithSuggestion("check the method name or ensure the type supports this operation")
	}
	if len(e.Arguments) != method.Arity {
		return nil, a.errorAt(e.Token, diag.WrongArgumentCount,
			"%s() expects %d argument(s), got %d", method.Name, method.Arity, len(e.Arguments))
	}
	if err := a.checkMethodArguments(e, receiverTy, method); err != nil {
		return nil, err
	}
	return method.Result(receiverTy), nil
}

func (a *Analyzer) checkMethodArguments(e *ast.CallExpr, receiverTy typesystem.Type, method builtins.Method) *diag.Diagnostic {
	switch method.Capability {
	case builtins.StringCapability:
		switch method.Name {
		case config.StrSubstringMethod:
			for i, arg := range e.Arguments {
				argTy, err := a.inferType(arg)
				if err != nil {
					return err
				}
				if !typesystem.Equal(argTy, typesystem.Int) {
					return a.errorAt(arg.GetToken(), diag.TypeMismatch,
						"substring() argument %d must be int, got `%s`", i+1, typesystem.Describe(argTy))
				}
			}
		case config.StrContainsMethod:
			argTy, err := a.inferType(e.Arguments[0])
			if err != nil {
				return err
			}
			if !typesystem.Equal(argTy, typesystem.String) {
				return a.errorAt(e.Arguments[0].GetToken(), diag.TypeMismatch,
					"contains() expects a string argument, got `%s`", typesystem.Describe(argTy))
			}
		case config.StrSplitMethod:
			argTy, err := a.inferType(e.Arguments[0])
			if err != nil {
				return err
			}
			if !typesystem.Equal(argTy, typesystem.String) && !typesystem.Equal(argTy, typesystem.Char) {
				return a.errorAt(e.Arguments[0].GetToken(), diag.TypeMismatch,
					"split() expects a string or char delimiter, got `%s`", typesystem.Describe(argTy))
			}
		}
	case builtins.DynamicArrayCapability:
		if method.Name == config.ArrPushMethod {
			elemTy := receiverTy.(typesystem.DynamicArray).Elem
			argTy, err := a.inferTypeWithHint(e.Arguments[0], elemTy)
			if err != nil {
				return err
			}
			if !typesystem.Compatible(elemTy, argTy) {
				return a.errorAt(e.Arguments[0].GetToken(), diag.TypeMismatch,
					"push() expects element of type `%s`, got `%s`",
					typesystem.Describe(elemTy), typesystem.Describe(argTy)).
					WithSuggestion("ensure the pushed element matches the array's element type")
			}
		}
	}
	return nil
}

// inferVariantConstruction types `Enum::Variant(args)` without a contextual
// hint; the instantiation is synthesized from the argument type.
func (a *Analyzer) inferVariantConstruction(e *ast.CallExpr, callee *ast.EnumAccess) (typesystem.Type, *diag.Diagnostic) {
	if !a.registry.IsBuiltin(callee.EnumName) {
		return nil, a.errorAt(e.Token, diag.InvalidOperation,
			"enum variant construction with values is not supported for user-defined enums").
			WithSuggestion("only the built-in Option and Result types support variant construction with values")
	}
	builtin, _ := a.registry.Lookup(callee.EnumName)
	variant, ok := builtin.Variant(callee.Variant)
	if !ok {
		return nil, a.errorAt(e.Token, diag.UndefinedType,
			"type `%s` has no variant `%s`", callee.EnumName, callee.Variant)
	}
	if !variant.HasValue {
		return nil, a.errorAt(e.Token, diag.InvalidOperation,
			"variant `%s::%s` does not take a value", callee.EnumName, callee.Variant).
			WithSuggestion("use `" + callee.EnumName + "::" + callee.Variant + "` without parentheses")
	}
	if len(e.Arguments) != 1 {
		return nil, a.errorAt(e.Token, diag.WrongArgumentCount,
			"%s::%s expects 1 argument, got %d", callee.EnumName, callee.Variant, len(e.Arguments))
	}
	argTy, err := a.inferType(e.Arguments[0])
	if err != nil {
		return nil, err
	}
	return typesystem.Generic{Name: callee.EnumName, Args: []typesystem.Type{argTy}}, nil
}
