package codegen

import (
	"strings"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// generateMatch lowers a match expression to a GNU statement-expression: the
// scrutinee lands in a temp, each arm assigns one shared result temp, and the
// expression yields the result. Int, char, enum, and tagged-union scrutinees
// compile to switch; string and float scrutinees to an if-chain with strcmp.
func (g *Generator) generateMatch(e *ast.MatchExpr) {
	scrutineeTy := g.exprType(e.Scrutinee)
	if scrutineeTy == nil {
		scrutineeTy = typesystem.Int
	}
	resultTy := typesystem.Type(typesystem.Int)
	for _, arm := range e.Arms {
		if ty := g.exprType(arm.Expression); ty != nil {
			resultTy = ty
			break
		}
	}

	tmp := g.nextTemp("match_temp")
	result := g.nextTemp("match_result")

	g.emit("({\n")
	g.indentLevel++
	g.indent()
	g.emitf("%s %s = ", g.cType(scrutineeTy), tmp)
	g.generateExpression(e.Scrutinee)
	g.emit(";\n")
	g.indent()
	g.emitf("%s %s;\n", g.cType(resultTy), result)

	if switchable(scrutineeTy) {
		g.generateMatchSwitch(e, scrutineeTy, tmp, result)
	} else {
		g.generateMatchChain(e, tmp, result)
	}

	g.indent()
	g.emitf("%s;\n", result)
	g.indentLevel--
	g.indent()
	g.emit("})")
}

func switchable(ty typesystem.Type) bool {
	switch t := ty.(type) {
	case typesystem.Primitive:
		return t.Name == "int" || t.Name == "char"
	case typesystem.Enum, typesystem.Struct, typesystem.Generic:
		return true
	}
	return false
}

func (g *Generator) generateMatchSwitch(e *ast.MatchExpr, scrutineeTy typesystem.Type, tmp, result string) {
	gen, isGeneric := scrutineeTy.(typesystem.Generic)

	g.indent()
	if isGeneric {
		g.emitf("switch (%s.tag) {\n", tmp)
	} else {
		g.emitf("switch (%s) {\n", tmp)
	}
	g.indentLevel++

	for _, arm := range e.Arms {
		switch pat := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			g.indent()
			g.emit("default:\n")
			g.indentLevel++
			g.indent()
			g.emitf("%s = ", result)
			g.generateExpression(arm.Expression)
			g.emit(";\n")
			g.indent()
			g.emit("break;\n")
			g.indentLevel--
		case *ast.LiteralPattern:
			g.indent()
			g.emit("case ")
			g.generateExpression(pat.Literal)
			g.emit(":\n")
			g.indentLevel++
			g.indent()
			g.emitf("%s = ", result)
			g.generateExpression(arm.Expression)
			g.emit(";\n")
			g.indent()
			g.emit("break;\n")
			g.indentLevel--
		case *ast.EnumVariantPattern:
			g.indent()
			g.emit("case ")
			if isGeneric && gen.Name == pat.EnumName {
				g.emitf("%s_%s", g.mangled(scrutineeTy), pat.Variant)
			} else {
				g.emitf("%s_%s", strings.ToUpper(localName(pat.EnumName)), strings.ToUpper(pat.Variant))
			}
			g.emit(": {\n")
			g.indentLevel++
			g.enterScope()
			if pat.Binding != "" && pat.Binding != "_" && isGeneric && len(gen.Args) > 0 {
				payload := gen.Args[0]
				g.setVarType(pat.Binding, payload)
				g.indent()
				g.emitf("%s %s = %s.data.%s_value;\n",
					g.cType(payload), pat.Binding, tmp, strings.ToLower(pat.Variant))
			}
			g.indent()
			g.emitf("%s = ", result)
			g.generateExpression(arm.Expression)
			g.emit(";\n")
			g.indent()
			g.emit("break;\n")
			g.exitScope()
			g.indentLevel--
			g.indent()
			g.emit("}\n")
		}
	}

	g.indentLevel--
	g.indent()
	g.emit("}\n")
}

// generateMatchChain handles scrutinees a C switch cannot express. String
// patterns compare with strcmp; floats and bools with ==.
func (g *Generator) generateMatchChain(e *ast.MatchExpr, tmp, result string) {
	first := true
	for _, arm := range e.Arms {
		switch pat := arm.Pattern.(type) {
		case *ast.WildcardPattern:
			g.indent()
			if !first {
				g.emit("else ")
			}
			g.emit("{\n")
			g.indentLevel++
			g.indent()
			g.emitf("%s = ", result)
			g.generateExpression(arm.Expression)
			g.emit(";\n")
			g.indentLevel--
			g.indent()
			g.emit("}\n")
			first = false
		case *ast.LiteralPattern:
			g.indent()
			if !first {
				g.emit("else ")
			}
			if _, isString := pat.Literal.(*ast.StringLiteral); isString {
				g.emitf("if (strcmp(%s, ", tmp)
				g.generateExpression(pat.Literal)
				g.emit(") == 0) {\n")
			} else {
				g.emitf("if (%s == ", tmp)
				g.generateExpression(pat.Literal)
				g.emit(") {\n")
			}
			g.indentLevel++
			g.indent()
			g.emitf("%s = ", result)
			g.generateExpression(arm.Expression)
			g.emit(";\n")
			g.indentLevel--
			g.indent()
			g.emit("}\n")
			first = false
		case *ast.EnumVariantPattern:
			g.record(g.fail(diag.UnsupportedFeature,
				"variant patterns require an enum or generic scrutinee"))
		}
	}
}

// generateTry lowers expr? into a tag switch in a statement-expression. The
// failure arm returns a value of the enclosing function's instantiation, so
// the Err payload propagates even when the Ok types differ.
func (g *Generator) generateTry(e *ast.TryExpr) {
	gen, ok := g.exprType(e.Expression).(typesystem.Generic)
	if !ok {
		g.record(g.fail(diag.UnsupportedFeature,
			"? operator requires a Result or Option operand"))
		return
	}

	valueTy := typesystem.Type(typesystem.Int)
	if len(gen.Args) > 0 {
		valueTy = gen.Args[0]
	}
	mangled := g.mangled(gen)
	returnMangled := mangled
	if ret, isGen := g.currentReturn.(typesystem.Generic); isGen {
		returnMangled = g.mangled(ret)
	}

	tmp := g.nextTemp("try_temp")
	result := g.nextTemp("try_result")

	g.emit("({\n")
	g.indentLevel++
	g.indent()
	g.emitf("%s %s = ", mangled, tmp)
	g.generateExpression(e.Expression)
	g.emit(";\n")
	g.indent()
	g.emitf("%s %s;\n", g.cType(valueTy), result)
	g.indent()
	g.emitf("switch (%s.tag) {\n", tmp)
	g.indentLevel++

	switch gen.Name {
	case config.ResultTypeName:
		g.indent()
		g.emitf("case %s_Ok: {\n", mangled)
		g.indentLevel++
		g.indent()
		g.emitf("%s = %s.data.ok_value;\n", result, tmp)
		g.indent()
		g.emit("break;\n")
		g.indentLevel--
		g.indent()
		g.emit("}\n")
		g.indent()
		g.emitf("case %s_Err: {\n", mangled)
		g.indentLevel++
		g.indent()
		g.emitf("return ((%s) { .tag = %s_Err, .data = { .err_value = %s.data.err_value } });\n",
			returnMangled, returnMangled, tmp)
		g.indentLevel--
		g.indent()
		g.emit("}\n")
	case config.OptionTypeName:
		g.indent()
		g.emitf("case %s_Some: {\n", mangled)
		g.indentLevel++
		g.indent()
		g.emitf("%s = %s.data.some_value;\n", result, tmp)
		g.indent()
		g.emit("break;\n")
		g.indentLevel--
		g.indent()
		g.emit("}\n")
		g.indent()
		g.emitf("case %s_None: {\n", mangled)
		g.indentLevel++
		g.indent()
		g.emitf("return ((%s) { .tag = %s_None });\n", returnMangled, returnMangled)
		g.indentLevel--
		g.indent()
		g.emit("}\n")
	}

	g.indentLevel--
	g.indent()
	g.emit("}\n")
	g.indent()
	g.emitf("%s;\n", result)
	g.indentLevel--
	g.indent()
	g.emit("})")
}
