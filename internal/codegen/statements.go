package codegen

import (
	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func (g *Generator) generateStatement(stmt ast.Statement) {
	g.indent()
	switch s := stmt.(type) {
	case *ast.LetStatement:
		g.generateLet(s)
	case *ast.ConstStatement:
		g.generateConst(s)
	case *ast.ReturnStatement:
		g.emit("return")
		if s.Value != nil {
			g.emit(" ")
			prev := g.expected
			g.expected = g.currentReturn
			g.generateExpression(s.Value)
			g.expected = prev
		}
		g.emit(";\n")
	case *ast.ExpressionStatement:
		g.generateExpression(s.Expression)
		g.emit(";\n")
	case *ast.IfStatement:
		g.emit("if (")
		g.generateExpression(s.Condition)
		g.emit(") {\n")
		g.indentLevel++
		g.enterScope()
		for _, inner := range s.Then {
			g.generateStatement(inner)
		}
		g.exitScope()
		g.indentLevel--
		g.indent()
		g.emit("}")
		if s.Else != nil {
			g.emit(" else {\n")
			g.indentLevel++
			g.enterScope()
			for _, inner := range s.Else {
				g.generateStatement(inner)
			}
			g.exitScope()
			g.indentLevel--
			g.indent()
			g.emit("}")
		}
		g.emit("\n")
	case *ast.WhileStatement:
		g.emit("while (")
		g.generateExpression(s.Condition)
		g.emit(") {\n")
		g.indentLevel++
		g.enterScope()
		for _, inner := range s.Body {
			g.generateStatement(inner)
		}
		g.exitScope()
		g.indentLevel--
		g.indent()
		g.emit("}\n")
	case *ast.AssignStatement:
		targetTy, _ := g.assignTargetType(s.Target)
		g.generateExpression(s.Target)
		g.emit(" = ")
		prev := g.expected
		g.expected = targetTy
		g.generateExpression(s.Value)
		g.expected = prev
		g.emit(";\n")
	case *ast.ForStatement:
		g.generateFor(s)
	case *ast.BreakStatement:
		g.emit("break;\n")
	case *ast.ContinueStatement:
		g.emit("continue;\n")
	}
}

func (g *Generator) generateLet(s *ast.LetStatement) {
	var declared typesystem.Type
	if s.Type != nil {
		declared = s.Type
		g.emit(g.cType(s.Type))
		g.setVarType(s.Name, s.Type)
	} else if s.Initializer != nil {
		inferred := g.initType(s.Initializer)
		declared = inferred
		g.emit(g.cType(inferred))
		g.setVarType(s.Name, inferred)
	} else {
		g.record(g.fail(diag.UnsupportedFeature,
			"variable `%s` must have a type or an initializer", s.Name))
		return
	}
	g.emit(" ")
	g.emit(s.Name)
	if s.Initializer != nil {
		g.emit(" = ")
		prev := g.expected
		g.expected = declared
		g.generateExpression(s.Initializer)
		g.expected = prev
	}
	g.emit(";\n")
}

func (g *Generator) generateConst(s *ast.ConstStatement) {
	var declared typesystem.Type
	if s.Type != nil {
		declared = s.Type
		g.emit(g.cType(s.Type))
		g.setVarType(s.Name, s.Type)
	} else {
		inferred := g.initType(s.Initializer)
		declared = inferred
		g.emit(g.cType(inferred))
		g.setVarType(s.Name, inferred)
	}
	g.emit(" ")
	g.emit(s.Name)
	g.emit(" = ")
	prev := g.expected
	g.expected = declared
	g.generateExpression(s.Initializer)
	g.expected = prev
	g.emit(";\n")
}

// assignTargetType resolves the type of an lvalue when it is knowable.
func (g *Generator) assignTargetType(target ast.Expression) (typesystem.Type, bool) {
	ty := g.exprType(target)
	return ty, ty != nil
}

func (g *Generator) generateFor(s *ast.ForStatement) {
	if rng, ok := s.Iterable.(*ast.RangeExpr); ok {
		g.emitf("for (int %s = ", s.Variable)
		g.generateExpression(rng.Start)
		g.emitf("; %s < ", s.Variable)
		g.generateExpression(rng.End)
		g.emitf("; %s++) {\n", s.Variable)
		g.indentLevel++
		g.enterScope()
		g.setVarType(s.Variable, typesystem.Int)
		for _, inner := range s.Body {
			g.generateStatement(inner)
		}
		g.exitScope()
		g.indentLevel--
		g.indent()
		g.emit("}\n")
		return
	}

	iterTy := g.exprType(s.Iterable)
	switch it := iterTy.(type) {
	case typesystem.DynamicArray:
		idx := g.nextTemp("for_i")
		g.emitf("for (size_t %s = 0; %s < (", idx, idx)
		g.generateExpression(s.Iterable)
		g.emitf(").size; %s++) {\n", idx)
		g.indentLevel++
		g.enterScope()
		g.setVarType(s.Variable, it.Elem)
		g.indent()
		g.emitf("%s %s = (", g.cType(it.Elem), s.Variable)
		g.generateExpression(s.Iterable)
		g.emitf(").data[%s];\n", idx)
		for _, inner := range s.Body {
			g.generateStatement(inner)
		}
		g.exitScope()
		g.indentLevel--
		g.indent()
		g.emit("}\n")
	case typesystem.Array:
		// Fixed-array sizes are erased after parsing; only a literal
		// iterated in place still knows its length.
		lit, ok := s.Iterable.(*ast.ArrayLiteral)
		if !ok {
			g.record(g.fail(diag.UnsupportedFeature,
				"cannot iterate a fixed array whose length is not known here; use a range or a dynamic array"))
			return
		}
		idx := g.nextTemp("for_i")
		g.emitf("for (int %s = 0; %s < %d; %s++) {\n", idx, idx, len(lit.Elements), idx)
		g.indentLevel++
		g.enterScope()
		g.setVarType(s.Variable, it.Elem)
		g.indent()
		g.emitf("%s %s = ", g.cType(it.Elem), s.Variable)
		g.generateExpression(s.Iterable)
		g.emitf("[%s];\n", idx)
		for _, inner := range s.Body {
			g.generateStatement(inner)
		}
		g.exitScope()
		g.indentLevel--
		g.indent()
		g.emit("}\n")
	default:
		g.record(g.fail(diag.UnsupportedFeature,
			"for loops iterate ranges, arrays, or dynamic arrays"))
	}
}
