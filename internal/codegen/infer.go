package codegen

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/builtins"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// exprType is the generator's light type pass. It answers "what C shape does
// this expression have" from literals, tracked variables, and signatures; nil
// means unknown and callers fall back to int. The analyzer has already
// accepted the program, so unknowns cannot be errors here.
func (g *Generator) exprType(expr ast.Expression) typesystem.Type {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		return typesystem.Int
	case *ast.FloatLiteral:
		return typesystem.Float
	case *ast.BoolLiteral:
		return typesystem.Bool
	case *ast.CharLiteral:
		return typesystem.Char
	case *ast.StringLiteral:
		return typesystem.String
	case *ast.Identifier:
		if ty, ok := g.varType(e.Name); ok {
			return normalizeStr(ty)
		}
		return nil
	case *ast.UnaryExpr:
		switch e.Operator {
		case ast.OpDereference:
			if ptr, ok := g.exprType(e.Operand).(typesystem.Pointer); ok {
				return ptr.Elem
			}
			return nil
		case ast.OpAddressOf:
			if inner := g.exprType(e.Operand); inner != nil {
				return typesystem.Pointer{Elem: inner}
			}
			return nil
		}
		return g.exprType(e.Operand)
	case *ast.IndexExpr:
		switch arr := g.exprType(e.Array).(type) {
		case typesystem.Array:
			return arr.Elem
		case typesystem.DynamicArray:
			return arr.Elem
		case typesystem.Pointer:
			return arr.Elem
		}
		if typesystem.Equal(g.exprType(e.Array), typesystem.String) {
			return typesystem.Char
		}
		return nil
	case *ast.DynamicArrayLiteral:
		return typesystem.DynamicArray{Elem: e.ElemType}
	case *ast.StructLiteral:
		return typesystem.Struct{Name: e.Name}
	case *ast.FieldAccess:
		if st, ok := normalizeToStruct(g.exprType(e.Object)); ok {
			if fieldTy, ok := g.structFields[localName(st.Name)][e.Field]; ok {
				return fieldTy
			}
		}
		return nil
	case *ast.BinaryExpr:
		if e.Operator.IsComparison() || e.Operator == ast.OpAnd || e.Operator == ast.OpOr {
			return typesystem.Bool
		}
		if e.Operator == ast.OpAdd && (containsStringLiteral(e.Left) || containsStringLiteral(e.Right)) {
			return typesystem.String
		}
		leftTy, rightTy := g.exprType(e.Left), g.exprType(e.Right)
		if typesystem.Equal(leftTy, typesystem.Float) || typesystem.Equal(rightTy, typesystem.Float) {
			return typesystem.Float
		}
		if leftTy != nil {
			return leftTy
		}
		return rightTy
	case *ast.CallExpr:
		return g.callType(e)
	case *ast.NewExpr:
		if inner := g.exprType(e.Operand); inner != nil {
			return typesystem.Pointer{Elem: inner}
		}
		return nil
	case *ast.DeleteExpr:
		return typesystem.Void
	case *ast.CastExpr:
		return e.TargetType
	case *ast.TernaryExpr:
		return g.exprType(e.TrueExpr)
	case *ast.EnumAccess:
		if g.registry.IsBuiltin(e.EnumName) {
			if inst, ok := g.variantInstantiation(e.EnumName); ok {
				return inst
			}
			return nil
		}
		return typesystem.Enum{Name: e.EnumName}
	case *ast.MatchExpr:
		for _, arm := range e.Arms {
			if ty := g.exprType(arm.Expression); ty != nil {
				return ty
			}
		}
		return nil
	case *ast.TryExpr:
		if gen, ok := g.exprType(e.Expression).(typesystem.Generic); ok && len(gen.Args) > 0 {
			return gen.Args[0]
		}
		return nil
	case *ast.RangeExpr:
		return typesystem.Void
	}
	return nil
}

func (g *Generator) callType(e *ast.CallExpr) typesystem.Type {
	switch callee := e.Callee.(type) {
	case *ast.Identifier:
		if ret, ok := g.funcTypes[callee.Name]; ok {
			return normalizeStr(voidWhenNil(ret))
		}
	case *ast.FieldAccess:
		if recv := g.exprType(callee.Object); recv != nil {
			recv = normalizeStr(recv)
			if method, ok := builtins.LookupMethod(recv, callee.Field); ok {
				return method.Result(recv)
			}
		}
		if ret, ok := g.funcTypes[callee.Field]; ok {
			return normalizeStr(voidWhenNil(ret))
		}
	case *ast.EnumAccess:
		if g.registry.IsBuiltin(callee.EnumName) {
			if ret, ok := g.currentReturn.(typesystem.Generic); ok && ret.Name == callee.EnumName {
				return ret
			}
			if len(e.Arguments) == 1 {
				argTy := g.exprType(e.Arguments[0])
				if argTy == nil {
					argTy = typesystem.Int
				}
				return typesystem.Generic{Name: callee.EnumName, Args: []typesystem.Type{argTy}}
			}
		}
	}
	return nil
}

// variantInstantiation picks the concrete instantiation for a bare variant
// reference like Option::None: the contextual expected type wins, then the
// enclosing function's return type, then a unique tracked instantiation.
func (g *Generator) variantInstantiation(family string) (typesystem.Generic, bool) {
	if gen, ok := g.expected.(typesystem.Generic); ok && gen.Name == family {
		return gen, true
	}
	if gen, ok := g.currentReturn.(typesystem.Generic); ok && gen.Name == family {
		return gen, true
	}
	var found typesystem.Generic
	count := 0
	for _, inst := range g.instantiations {
		if inst.Name == family {
			found = inst
			count++
		}
	}
	if count == 1 {
		return found, true
	}
	return typesystem.Generic{}, false
}

// initType picks a declaration type for an inferred let/const. Array
// literals get their element type from the first element.
func (g *Generator) initType(expr ast.Expression) typesystem.Type {
	if lit, ok := expr.(*ast.ArrayLiteral); ok {
		elem := typesystem.Type(typesystem.Int)
		if len(lit.Elements) > 0 {
			if ty := g.exprType(lit.Elements[0]); ty != nil {
				elem = ty
			}
		}
		return typesystem.Array{Elem: elem}
	}
	if ty := g.exprType(expr); ty != nil {
		return ty
	}
	return typesystem.Int
}

func normalizeToStruct(ty typesystem.Type) (typesystem.Struct, bool) {
	switch t := ty.(type) {
	case typesystem.Struct:
		return t, true
	case typesystem.Pointer:
		if st, ok := t.Elem.(typesystem.Struct); ok {
			return st, true
		}
	}
	return typesystem.Struct{}, false
}

func normalizeStr(ty typesystem.Type) typesystem.Type {
	if st, ok := ty.(typesystem.Struct); ok && st.Name == "str" {
		return typesystem.String
	}
	return ty
}
