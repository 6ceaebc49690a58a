package analyzer

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/symbols"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// CheckExpression types one expression against the declarations already
// analyzed. The REPL calls it after re-analyzing the session's declarations,
// so identifiers resolve against the surviving global scope.
func (a *Analyzer) CheckExpression(expr ast.Expression) (typesystem.Type, *diag.Diagnostic) {
	return a.inferType(expr)
}

// inferTypeWithHint infers the type of expr knowing the type the context
// expects. The hint only matters for builtin generic variants: a bare
// `Option::None` or a construction `Result::Ok(v)` cannot name its type
// parameters, so the expected instantiation supplies them.
func (a *Analyzer) inferTypeWithHint(expr ast.Expression, expected typesystem.Type) (typesystem.Type, *diag.Diagnostic) {
	gen, ok := expected.(typesystem.Generic)
	if !ok {
		return a.inferType(expr)
	}

	if access, ok := expr.(*ast.EnumAccess); ok && access.EnumName == gen.Name && a.registry.IsBuiltin(access.EnumName) {
		builtin, _ := a.registry.Lookup(access.EnumName)
		if _, ok := builtin.Variant(access.Variant); !ok {
			return nil, a.errorAt(access.Token, diag.UndefinedType,
				"type `%s` has no variant `%s`", access.EnumName, access.Variant)
		}
		return expected, nil
	}

	if call, ok := expr.(*ast.CallExpr); ok {
		if access, ok := call.Callee.(*ast.EnumAccess); ok && access.EnumName == gen.Name && a.registry.IsBuiltin(access.EnumName) {
			builtin, _ := a.registry.Lookup(access.EnumName)
			variant, ok := builtin.Variant(access.Variant)
			if !ok {
				return nil, a.errorAt(access.Token, diag.UndefinedType,
					"type `%s` has no variant `%s`", access.EnumName, access.Variant)
			}
			if !variant.HasValue {
				return nil, a.errorAt(access.Token, diag.InvalidOperation,
					"variant `%s::%s` does not take a value", access.EnumName, access.Variant).
					WithSuggestion("use `" + access.EnumName + "::" + access.Variant + "` without parentheses")
			}
			if len(call.Arguments) != 1 {
				return nil, a.errorAt(call.Token, diag.WrongArgumentCount,
					"%s::%s expects 1 argument, got %d", access.EnumName, access.Variant, len(call.Arguments))
			}
			if payloadTy, ok := builtin.VariantValueType(access.Variant, gen.Args); ok {
				argTy, err := a.inferType(call.Arguments[0])
				if err != nil {
					return nil, err
				}
				if !typesystem.Compatible(payloadTy, argTy) {
					return nil, a.errorAt(call.Token, diag.TypeMismatch,
						"%s::%s expects argument of type `%s`, got `%s`",
						access.EnumName, access.Variant, typesystem.Describe(payloadTy), typesystem.Describe(argTy))
				}
			}
			return expected, nil
		}
	}

	return a.inferType(expr)
}

func (a *Analyzer) inferType(expr ast.Expression) (typesystem.Type, *diag.Diagnostic) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return typesystem.Int, nil
	case *ast.FloatLiteral:
		return typesystem.Float, nil
	case *ast.BoolLiteral:
		return typesystem.Bool, nil
	case *ast.CharLiteral:
		return typesystem.Char, nil
	case *ast.StringLiteral:
		return typesystem.String, nil
	case *ast.Identifier:
		sym, ok := a.table.Lookup(e.Name)
		if !ok {
			return nil, diag.UndefinedVariableAt(e.Name, a.span(e.Token))
		}
		return normalizeStr(sym.Type), nil
	case *ast.BinaryExpr:
		return a.inferBinary(e)
	case *ast.UnaryExpr:
		return a.inferUnary(e)
	case *ast.CallExpr:
		return a.inferCall(e)
	case *ast.ArrayLiteral:
		return a.inferArrayLiteral(e)
	case *ast.DynamicArrayLiteral:
		return a.inferDynamicArrayLiteral(e)
	case *ast.StructLiteral:
		return a.inferStructLiteral(e)
	case *ast.IndexExpr:
		return a.inferIndex(e)
	case *ast.FieldAccess:
		return a.inferFieldAccess(e)
	case *ast.NewExpr:
		inner, err := a.inferType(e.Operand)
		if err != nil {
			return nil, err
		}
		return typesystem.Pointer{Elem: inner}, nil
	case *ast.DeleteExpr:
		if _, err := a.inferType(e.Operand); err != nil {
			return nil, err
		}
		return typesystem.Void, nil
	case *ast.RangeExpr:
		if _, err := a.inferType(e.Start); err != nil {
			return nil, err
		}
		if _, err := a.inferType(e.End); err != nil {
			return nil, err
		}
		// Ranges only exist as for-loop iterables.
		return typesystem.Void, nil
	case *ast.CastExpr:
		return a.inferCast(e)
	case *ast.TernaryExpr:
		return a.inferTernary(e)
	case *ast.EnumAccess:
		return a.inferEnumAccess(e)
	case *ast.MatchExpr:
		return a.inferMatch(e)
	case *ast.TryExpr:
		return a.inferTry(e)
	}
	return nil, a.errorAt(expr.GetToken(), diag.InternalError, "unhandled expression %T", expr)
}

// normalizeStr folds the C-facing `str` struct alias into the string type.
func normalizeStr(ty typesystem.Type) typesystem.Type {
	if st, ok := ty.(typesystem.Struct); ok && st.Name == "str" {
		return typesystem.String
	}
	return ty
}

func isNumeric(ty typesystem.Type) bool {
	return typesystem.Equal(ty, typesystem.Int) || typesystem.Equal(ty, typesystem.Float)
}

func (a *Analyzer) inferBinary(e *ast.BinaryExpr) (typesystem.Type, *diag.Diagnostic) {
	leftTy, err := a.inferType(e.Left)
	if err != nil {
		return nil, err
	}
	rightTy, err := a.inferType(e.Right)
	if err != nil {
		return nil, err
	}

	if e.Operator == ast.OpDivide || e.Operator == ast.OpModulo {
		if lit, ok := e.Right.(*ast.IntLiteral); ok && lit.Value == 0 {
			opName := "division"
			if e.Operator == ast.OpModulo {
				opName = "modulo"
			}
			return nil, a.errorAt(e.Token, diag.InvalidOperation, "%s by zero", opName).
				WithSuggestion("division and modulo by zero will cause a runtime error")
		}
	}

	switch {
	case e.Operator.IsArithmetic():
		if typesystem.Equal(leftTy, typesystem.Int) && typesystem.Equal(rightTy, typesystem.Int) {
			return typesystem.Int, nil
		}
		if isNumeric(leftTy) && isNumeric(rightTy) {
			return typesystem.Float, nil
		}
		return nil, a.errorAt(e.Token, diag.InvalidOperation,
			"cannot apply arithmetic operator to types `%s` and `%s`",
			typesystem.Describe(leftTy), typesystem.Describe(rightTy)).
			WithSuggestion("arithmetic operators require numeric operands (int or float)")
	case e.Operator.IsComparison():
		if !typesystem.Compatible(leftTy, rightTy) {
			return nil, a.errorAt(e.Token, diag.InvalidOperation,
				"cannot compare `%s` with `%s`", typesystem.Describe(leftTy), typesystem.Describe(rightTy)).
				WithSuggestion("comparison operators require operands of compatible types")
		}
		return typesystem.Bool, nil
	default: // && and ||
		if !typesystem.Equal(leftTy, typesystem.Bool) || !typesystem.Equal(rightTy, typesystem.Bool) {
			return nil, a.errorAt(e.Token, diag.InvalidOperation,
				"logical operators require boolean operands, got `%s` and `%s`",
				typesystem.Describe(leftTy), typesystem.Describe(rightTy)).
				WithSuggestion("use boolean expressions or variables with logical operators")
		}
		return typesystem.Bool, nil
	}
}

func (a *Analyzer) inferUnary(e *ast.UnaryExpr) (typesystem.Type, *diag.Diagnostic) {
	opTy, err := a.inferType(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Operator {
	case ast.OpNegate:
		if !isNumeric(opTy) {
			return nil, a.errorAt(e.Token, diag.InvalidOperation,
				"cannot negate type `%s`", typesystem.Describe(opTy)).
				WithSuggestion("negation operator requires a numeric type (int or float)")
		}
		return opTy, nil
	case ast.OpNot:
		if !typesystem.Equal(opTy, typesystem.Bool) {
			return nil, a.errorAt(e.Token, diag.InvalidOperation,
				"cannot apply logical not to type `%s`", typesystem.Describe(opTy)).
				WithSuggestion("logical not operator requires a boolean operand")
		}
		return typesystem.Bool, nil
	case ast.OpDereference:
		ptr, ok := opTy.(typesystem.Pointer)
		if !ok {
			return nil, a.errorAt(e.Token, diag.InvalidOperation,
				"cannot dereference type `%s`", typesystem.Describe(opTy)).
				WithSuggestion("dereference operator (*) requires a pointer type")
		}
		return ptr.Elem, nil
	default: // address-of
		return typesystem.Pointer{Elem: opTy}, nil
	}
}

func (a *Analyzer) inferArrayLiteral(e *ast.ArrayLiteral) (typesystem.Type, *diag.Diagnostic) {
	if len(e.Elements) == 0 {
		return nil, a.errorAt(e.Token, diag.InvalidSyntax,
			"empty array literals need an explicit type annotation").
			WithSuggestion("annotate the variable with an array type or provide array elements")
	}
	firstTy, err := a.inferType(e.Elements[0])
	if err != nil {
		return nil, err
	}
	for _, elem := range e.Elements[1:] {
		elemTy, err := a.inferType(elem)
		if err != nil {
			return nil, err
		}
		if !typesystem.Compatible(firstTy, elemTy) {
			return nil, a.errorAt(elem.GetToken(), diag.TypeMismatch,
				"array elements must have compatible types: `%s` vs `%s`",
				typesystem.Describe(firstTy), typesystem.Describe(elemTy)).
				WithSuggestion("ensure all array elements have the same type")
		}
	}
	return typesystem.Array{Elem: firstTy}, nil
}

func (a *Analyzer) inferDynamicArrayLiteral(e *ast.DynamicArrayLiteral) (typesystem.Type, *diag.Diagnostic) {
	for _, elem := range e.Elements {
		elemTy, err := a.inferType(elem)
		if err != nil {
			return nil, err
		}
		if !typesystem.Compatible(e.ElemType, elemTy) {
			return nil, a.errorAt(elem.GetToken(), diag.TypeMismatch,
				"dynamic array elements must match the declared type: `%s` vs `%s`",
				typesystem.Describe(e.ElemType), typesystem.Describe(elemTy)).
				WithSuggestion("ensure all elements match the declared element type of the dynamic array")
		}
	}
	return typesystem.DynamicArray{Elem: e.ElemType}, nil
}

func (a *Analyzer) inferStructLiteral(e *ast.StructLiteral) (typesystem.Type, *diag.Diagnostic) {
	sym, ok := a.table.Lookup(e.Name)
	if !ok {
		return nil, a.errorAt(e.Token, diag.UndefinedType, "unknown struct type `%s`", e.Name)
	}
	if sym.Kind != symbols.StructSymbol {
		return nil, a.errorAt(e.Token, diag.UndefinedType, "`%s` is not a struct type", e.Name)
	}

	for _, field := range e.Fields {
		exprTy, err := a.inferType(field.Value)
		if err != nil {
			return nil, err
		}
		expected, ok := a.table.StructField(e.Name, field.Name)
		if !ok {
			return nil, a.errorAt(e.Token, diag.UndefinedVariable,
				"unknown field `%s` on struct `%s`", field.Name, e.Name)
		}
		if !typesystem.Compatible(expected, exprTy) {
			return nil, a.errorAt(e.Token, diag.TypeMismatch,
				"field `%s` type mismatch: expected `%s`, found `%s`",
				field.Name, typesystem.Describe(expected), typesystem.Describe(exprTy))
		}
	}
	return typesystem.Struct{Name: e.Name}, nil
}

func (a *Analyzer) inferIndex(e *ast.IndexExpr) (typesystem.Type, *diag.Diagnostic) {
	arrayTy, err := a.inferType(e.Array)
	if err != nil {
		return nil, err
	}
	indexTy, err := a.inferType(e.Index)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equal(indexTy, typesystem.Int) {
		return nil, diag.TypeMismatchAt("int", typesystem.Describe(indexTy), a.span(e.Token)).
			WithSuggestion("array indices must be integers")
	}
	if lit, ok := e.Index.(*ast.IntLiteral); ok && lit.Value < 0 {
		return nil, a.errorAt(e.Token, diag.InvalidOperation,
			"array index cannot be negative (got %d)", lit.Value).
			WithSuggestion("array indices must be non-negative integers")
	}
	switch at := arrayTy.(type) {
	case typesystem.Array:
		return at.Elem, nil
	case typesystem.DynamicArray:
		return at.Elem, nil
	case typesystem.Pointer:
		return at.Elem, nil
	}
	if typesystem.Equal(arrayTy, typesystem.String) {
		return typesystem.Char, nil
	}
	return nil, a.errorAt(e.Token, diag.InvalidOperation,
		"cannot index type `%s`", typesystem.Describe(arrayTy)).
		WithSuggestion("only arrays, dynamic arrays, pointers, and strings can be indexed with `[]`")
}

func (a *Analyzer) inferFieldAccess(e *ast.FieldAccess) (typesystem.Type, *diag.Diagnostic) {
	objTy, err := a.inferType(e.Object)
	if err != nil {
		return nil, err
	}
	st, ok := objTy.(typesystem.Struct)
	if !ok {
		return nil, a.errorAt(e.Token, diag.InvalidOperation,
			"cannot access field of non-struct type `%s`", typesystem.Describe(objTy)).
			WithSuggestion("field access (.) is only valid on struct types")
	}
	fieldTy, ok := a.table.StructField(st.Name, e.Field)
	if !ok {
		return nil, a.errorAt(e.Token, diag.UndefinedVariable,
			"unknown field `%s.%s`", st.Name, e.Field).
			WithSuggestion("check the field name or struct definition")
	}
	return fieldTy, nil
}

func (a *Analyzer) inferCast(e *ast.CastExpr) (typesystem.Type, *diag.Diagnostic) {
	exprTy, err := a.inferType(e.Expression)
	if err != nil {
		return nil, err
	}
	if !castAllowed(exprTy, e.TargetType) {
		return nil, a.errorAt(e.Token, diag.InvalidOperation,
			"cannot cast from type `%s` to `%s`", typesystem.Describe(exprTy), typesystem.Describe(e.TargetType)).
			WithSuggestion("type casts are only valid between numeric types, pointers, and int-pointer conversions")
	}
	return e.TargetType, nil
}

func castAllowed(from, to typesystem.Type) bool {
	_, fromPtr := from.(typesystem.Pointer)
	toPtr, toIsPtr := to.(typesystem.Pointer)

	switch {
	case fromPtr && toIsPtr:
		return true
	case typesystem.Equal(from, typesystem.Int) && toIsPtr:
		return true
	case fromPtr && typesystem.Equal(to, typesystem.Int):
		return true
	case typesystem.Equal(from, typesystem.String) && toIsPtr:
		return typesystem.Equal(toPtr.Elem, typesystem.Char)
	}

	scalar := func(t typesystem.Type) bool {
		return typesystem.Equal(t, typesystem.Int) ||
			typesystem.Equal(t, typesystem.Float) ||
			typesystem.Equal(t, typesystem.Char)
	}
	if scalar(from) && scalar(to) {
		// Everything except float<->char round trips.
		if typesystem.Equal(from, typesystem.Float) && typesystem.Equal(to, typesystem.Char) {
			return false
		}
		if typesystem.Equal(from, typesystem.Char) && typesystem.Equal(to, typesystem.Float) {
			return false
		}
		return true
	}
	return false
}

func (a *Analyzer) inferTernary(e *ast.TernaryExpr) (typesystem.Type, *diag.Diagnostic) {
	condTy, err := a.inferType(e.Condition)
	if err != nil {
		return nil, err
	}
	if !typesystem.Equal(condTy, typesystem.Bool) {
		return nil, a.errorAt(e.Token, diag.TypeMismatch,
			"ternary condition must be boolean, got `%s`", typesystem.Describe(condTy)).
			WithSuggestion("use a boolean expression for the ternary condition")
	}
	trueTy, err := a.inferType(e.TrueExpr)
	if err != nil {
		return nil, err
	}
	falseTy, err := a.inferType(e.FalseExpr)
	if err != nil {
		return nil, err
	}
	if !typesystem.Compatible(trueTy, falseTy) {
		return nil, a.errorAt(e.Token, diag.TypeMismatch,
			"ternary branches must have compatible types: `%s` vs `%s`",
			typesystem.Describe(trueTy), typesystem.Describe(falseTy)).
			WithSuggestion("ensure both branches of the ternary operator return the same type")
	}
	return trueTy, nil
}

func (a *Analyzer) inferEnumAccess(e *ast.EnumAccess) (typesystem.Type, *diag.Diagnostic) {
	if a.registry.IsBuiltin(e.EnumName) {
		builtin, _ := a.registry.Lookup(e.EnumName)
		if _, ok := builtin.Variant(e.Variant); !ok {
			return nil, a.errorAt(e.Token, diag.UndefinedType,
				"type `%s` has no variant `%s`", e.EnumName, e.Variant).
				WithSuggestion("valid variants for " + e.EnumName + " are: " + builtin.VariantNames())
		}
		// Without a hint there is no way to name the type parameters.
		return nil, a.errorAt(e.Token, diag.TypeMismatch,
			"cannot use `%s::%s` without type parameters, use an explicit type annotation", e.EnumName, e.Variant).
			WithExample("specify the type explicitly",
				"let x: "+e.EnumName+"<SomeType> = "+e.EnumName+"::"+e.Variant+";")
	}

	sym, ok := a.table.Lookup(e.EnumName)
	if !ok {
		return nil, a.errorAt(e.Token, diag.UndefinedType, "enum `%s` not found", e.EnumName).
			WithSuggestion("ensure the enum is defined before using it")
	}
	if sym.Kind != symbols.EnumSymbol {
		return nil, a.errorAt(e.Token, diag.TypeMismatch, "`%s` is not an enum", e.EnumName)
	}
	enumName := e.EnumName
	if en, ok := sym.Type.(typesystem.Enum); ok {
		enumName = en.Name
	}
	if _, ok := a.table.EnumVariant(enumName, e.Variant); !ok {
		return nil, a.errorAt(e.Token, diag.UndefinedType,
			"enum `%s` has no variant `%s`", e.EnumName, e.Variant).
			WithSuggestion("check the enum definition for valid variant names")
	}
	return typesystem.Enum{Name: enumName}, nil
}
