package codegen

import (
	"strconv"
	"strings"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/builtins"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func (g *Generator) generateExpression(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntLiteral:
		g.emit(strconv.FormatInt(e.Value, 10))
	case *ast.FloatLiteral:
		g.emit(strconv.FormatFloat(e.Value, 'g', -1, 64))
	case *ast.BoolLiteral:
		if e.Value {
			g.emit("1")
		} else {
			g.emit("0")
		}
	case *ast.CharLiteral:
		g.emit("'")
		g.emit(escapeChar(e.Value))
		g.emit("'")
	case *ast.StringLiteral:
		g.emit("\"")
		g.emit(escapeString(e.Value))
		g.emit("\"")
	case *ast.Identifier:
		g.emit(e.Name)
	case *ast.BinaryExpr:
		if e.Operator == ast.OpAdd && (containsStringLiteral(e.Left) || containsStringLiteral(e.Right)) {
			g.generateStringConcat(e.Left, e.Right)
			return
		}
		g.emit("(")
		g.generateExpression(e.Left)
		g.emit(" ")
		g.emit(string(e.Operator))
		g.emit(" ")
		g.generateExpression(e.Right)
		g.emit(")")
	case *ast.UnaryExpr:
		g.emit(string(e.Operator))
		g.generateExpression(e.Operand)
	case *ast.CallExpr:
		g.generateCall(e)
	case *ast.ArrayLiteral:
		elemTy := typesystem.Type(typesystem.Int)
		if len(e.Elements) > 0 {
			if ty := g.exprType(e.Elements[0]); ty != nil {
				elemTy = ty
			}
		}
		g.emitf("(%s[]){", g.cType(elemTy))
		for i, elem := range e.Elements {
			if i > 0 {
				g.emit(", ")
			}
			g.generateExpression(elem)
		}
		g.emit("}")
	case *ast.DynamicArrayLiteral:
		g.generateDynamicArrayLiteral(e)
	case *ast.NewExpr:
		innerTy := g.exprType(e.Operand)
		if innerTy == nil {
			innerTy = typesystem.Int
		}
		cty := g.cType(innerTy)
		g.emitf("({ %s* p = malloc(sizeof(%s)); *p = ", cty, cty)
		g.generateExpression(e.Operand)
		g.emit("; p; })")
	case *ast.DeleteExpr:
		g.emit("free(")
		g.generateExpression(e.Operand)
		g.emit(")")
	case *ast.IndexExpr:
		if _, isDyn := g.exprType(e.Array).(typesystem.DynamicArray); isDyn {
			g.emit("(")
			g.generateExpression(e.Array)
			g.emit(").data[")
			g.generateExpression(e.Index)
			g.emit("]")
			return
		}
		g.generateExpression(e.Array)
		g.emit("[")
		g.generateExpression(e.Index)
		g.emit("]")
	case *ast.FieldAccess:
		_, needsParens := e.Object.(*ast.UnaryExpr)
		if needsParens {
			g.emit("(")
		}
		g.generateExpression(e.Object)
		if needsParens {
			g.emit(")")
		}
		g.emit(".")
		g.emit(e.Field)
	case *ast.StructLiteral:
		g.emitf("(%s){ ", localName(e.Name))
		for i, field := range e.Fields {
			if i > 0 {
				g.emit(", ")
			}
			g.emitf(".%s = ", field.Name)
			g.generateExpression(field.Value)
		}
		g.emit(" }")
	case *ast.CastExpr:
		g.emitf("(%s)", g.cType(e.TargetType))
		g.generateExpression(e.Expression)
	case *ast.TernaryExpr:
		g.emit("(")
		g.generateExpression(e.Condition)
		g.emit(" ? ")
		g.generateExpression(e.TrueExpr)
		g.emit(" : ")
		g.generateExpression(e.FalseExpr)
		g.emit(")")
	case *ast.EnumAccess:
		g.generateEnumAccess(e)
	case *ast.MatchExpr:
		g.generateMatch(e)
	case *ast.TryExpr:
		g.generateTry(e)
	case *ast.RangeExpr:
		g.record(g.fail(diag.UnsupportedFeature,
			"ranges are only usable as for-loop iterables"))
	}
}

func (g *Generator) generateEnumAccess(e *ast.EnumAccess) {
	if !g.registry.IsBuiltin(e.EnumName) {
		g.emitf("%s_%s", strings.ToUpper(localName(e.EnumName)), strings.ToUpper(e.Variant))
		return
	}
	inst, ok := g.variantInstantiation(e.EnumName)
	if !ok {
		g.record(g.fail(diag.UnsupportedFeature,
			"cannot determine the concrete type of `%s::%s` here", e.EnumName, e.Variant))
		return
	}
	mangled := g.mangled(inst)
	g.emitf("%s_%s_INIT", strings.ToUpper(mangled), strings.ToUpper(e.Variant))
}

func (g *Generator) generateCall(e *ast.CallExpr) {
	switch callee := e.Callee.(type) {
	case *ast.Identifier:
		g.generateNamedCall(e, callee.Name)
	case *ast.FieldAccess:
		g.generateQualifiedCall(e, callee)
	case *ast.EnumAccess:
		g.generateVariantConstruction(e, callee)
	default:
		g.record(g.fail(diag.UnsupportedFeature,
			"function calls must be direct or method calls"))
	}
}

func (g *Generator) generateNamedCall(e *ast.CallExpr, name string) {
	switch name {
	case config.PrintFuncName, config.PrintlnFuncName:
		newline := name == config.PrintlnFuncName
		if len(e.Arguments) == 1 && g.isArrayExpression(e.Arguments[0]) {
			g.generateArrayPrint(e.Arguments[0], newline)
			return
		}
		g.emit("printf(")
		if len(e.Arguments) == 1 {
			g.emit("\"")
			g.emit(g.printfFormat(e.Arguments[0]))
			if newline {
				g.emit("\\n")
			}
			g.emit("\", ")
			g.generateExpression(e.Arguments[0])
		} else {
			g.emit("\"\\n\"")
		}
		g.emit(")")
	case config.LenFuncName:
		g.emit("strlen(")
		if len(e.Arguments) == 1 {
			g.generateExpression(e.Arguments[0])
		}
		g.emit(")")
	default:
		g.emit(name)
		g.emit("(")
		for i, arg := range e.Arguments {
			if i > 0 {
				g.emit(", ")
			}
			g.generateExpression(arg)
		}
		g.emit(")")
	}
}

func (g *Generator) generateQualifiedCall(e *ast.CallExpr, callee *ast.FieldAccess) {
	recvTy := g.exprType(callee.Object)
	if recvTy != nil {
		recvTy = normalizeStr(recvTy)
		if method, ok := builtins.LookupMethod(recvTy, callee.Field); ok {
			g.generateBuiltinMethod(e, callee, recvTy, method)
			return
		}
	}
	// Module-qualified call: the module prefix erases, imported functions
	// live in the same translation unit under their unqualified names.
	g.emit(callee.Field)
	g.emit("(")
	for i, arg := range e.Arguments {
		if i > 0 {
			g.emit(", ")
		}
		g.generateExpression(arg)
	}
	g.emit(")")
}

func (g *Generator) generateBuiltinMethod(e *ast.CallExpr, callee *ast.FieldAccess, recvTy typesystem.Type, method builtins.Method) {
	switch method.Capability {
	case builtins.StringCapability:
		switch method.Name {
		case config.StrLengthMethod:
			g.emit("strlen(")
			g.generateExpression(callee.Object)
			g.emit(")")
		case config.StrSubstringMethod:
			g.emit("rapter_substring(")
			g.generateExpression(callee.Object)
			g.emit(", ")
			g.generateExpression(e.Arguments[0])
			g.emit(", ")
			g.generateExpression(e.Arguments[1])
			g.emit(")")
		case config.StrContainsMethod:
			g.emit("(strstr(")
			g.generateExpression(callee.Object)
			g.emit(", ")
			g.generateExpression(e.Arguments[0])
			g.emit(") != NULL ? 1 : 0)")
		case config.StrTrimMethod:
			g.emit("rapter_trim(")
			g.generateExpression(callee.Object)
			g.emit(")")
		case config.StrSplitMethod:
			g.emit("rapter_split(")
			g.generateExpression(callee.Object)
			g.emit(", ")
			g.generateExpression(e.Arguments[0])
			g.emit(")")
		}
	case builtins.DynamicArrayCapability:
		obj, ok := callee.Object.(*ast.Identifier)
		if !ok {
			g.record(g.fail(diag.UnsupportedFeature,
				"dynamic array methods require a named receiver"))
			return
		}
		name := obj.Name
		switch method.Name {
		case config.ArrPushMethod:
			g.emitf("({ if (%s.size == %s.capacity) { size_t new_cap = %s.capacity ? %s.capacity * 2 : 4; %s.data = realloc(%s.data, new_cap * sizeof(%s.data[0])); %s.capacity = new_cap; } %s.data[%s.size++] = ",
				name, name, name, name, name, name, name, name, name, name)
			g.generateExpression(e.Arguments[0])
			g.emitf("; %s; })", name)
		case config.ArrPopMethod:
			g.emitf("(%s.size > 0 ? %s.data[--%s.size] : 0)", name, name, name)
		case config.ArrLengthMethod:
			g.emitf("(%s.size)", name)
		}
	}
}

// generateVariantConstruction lowers Option::Some(x) style calls into a
// compound literal of the concrete instantiation.
func (g *Generator) generateVariantConstruction(e *ast.CallExpr, callee *ast.EnumAccess) {
	if !g.registry.IsBuiltin(callee.EnumName) || len(e.Arguments) != 1 {
		g.record(g.fail(diag.UnsupportedFeature,
			"variant construction is only available for the builtin generic types"))
		return
	}
	inst, ok := g.variantInstantiation(callee.EnumName)
	if !ok {
		argTy := g.exprType(e.Arguments[0])
		if argTy == nil {
			argTy = typesystem.Int
		}
		inst = typesystem.Generic{Name: callee.EnumName, Args: []typesystem.Type{argTy}}
	}
	mangled := g.mangled(inst)
	g.emitf("((%s){ .tag = %s_%s, .data = { .%s_value = ", mangled, mangled, callee.Variant, strings.ToLower(callee.Variant))
	g.generateExpression(e.Arguments[0])
	g.emit(" } })")
}

func (g *Generator) generateDynamicArrayLiteral(e *ast.DynamicArrayLiteral) {
	elemC := g.cType(e.ElemType)
	arrC := g.cType(typesystem.DynamicArray{Elem: e.ElemType})
	tmp := g.nextTemp("arr")
	capacity := len(e.Elements)
	if capacity == 0 {
		capacity = 4
	}
	g.emitf("({ %s %s; %s.size = %d; %s.capacity = %d; %s.data = malloc(sizeof(%s) * %s.capacity); ",
		arrC, tmp, tmp, len(e.Elements), tmp, capacity, tmp, elemC, tmp)
	for i, elem := range e.Elements {
		g.emitf("%s.data[%d] = ", tmp, i)
		g.generateExpression(elem)
		g.emit("; ")
	}
	g.emitf("%s; })", tmp)
}

// generateStringConcat lowers + over strings into an allocating
// statement-expression. The operands are each emitted twice, once for the
// length and once for the copy.
func (g *Generator) generateStringConcat(left, right ast.Expression) {
	g.emit("({char* result = malloc(strlen(")
	g.generateExpression(left)
	g.emit(") + strlen(")
	g.generateExpression(right)
	g.emit(") + 1); strcpy(result, ")
	g.generateExpression(left)
	g.emit("); strcat(result, ")
	g.generateExpression(right)
	g.emit("); result;})")
}

func containsStringLiteral(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		return true
	case *ast.BinaryExpr:
		return containsStringLiteral(e.Left) || containsStringLiteral(e.Right)
	}
	return false
}

func (g *Generator) isArrayExpression(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.ArrayLiteral, *ast.DynamicArrayLiteral:
		return true
	case *ast.Identifier:
		if ty, ok := g.varType(e.Name); ok {
			switch ty.(type) {
			case typesystem.Array, typesystem.DynamicArray:
				return true
			}
		}
	}
	return false
}

// printfFormat picks the format specifier for a print argument from its
// statically known type, defaulting to %d.
func (g *Generator) printfFormat(expr ast.Expression) string {
	ty := g.exprType(expr)
	if ty == nil {
		return "%d"
	}
	switch t := normalizeStr(ty).(type) {
	case typesystem.Primitive:
		switch t.Name {
		case "float":
			return "%f"
		case "char":
			return "%c"
		case "string":
			return "%s"
		}
	}
	return "%d"
}

func (g *Generator) generateArrayPrint(expr ast.Expression, newline bool) {
	switch e := expr.(type) {
	case *ast.ArrayLiteral:
		g.emit("printf(\"[\");\n")
		g.indent()
		for i, elem := range e.Elements {
			if i > 0 {
				g.emit("printf(\", \");\n")
				g.indent()
			}
			g.emitf("printf(\"%s\", ", g.printfFormat(elem))
			g.generateExpression(elem)
			g.emit(");\n")
			g.indent()
		}
		g.emit("printf(\"]")
		if newline {
			g.emit("\\n")
		}
		g.emit("\")")
	case *ast.Identifier:
		dyn, ok := g.varType(e.Name)
		if arr, isDyn := dyn.(typesystem.DynamicArray); ok && isDyn {
			idx := g.nextTemp("print_i")
			g.emit("printf(\"[\");\n")
			g.indent()
			g.emitf("for (size_t %s = 0; %s < %s.size; %s++) {\n", idx, idx, e.Name, idx)
			g.indentLevel++
			g.indent()
			g.emitf("if (%s > 0) printf(\", \");\n", idx)
			g.indent()
			g.emitf("printf(\"%s\", %s.data[%s]);\n", g.elemFormat(arr.Elem), e.Name, idx)
			g.indentLevel--
			g.indent()
			g.emit("}\n")
			g.indent()
			g.emit("printf(\"]")
			if newline {
				g.emit("\\n")
			}
			g.emit("\")")
			return
		}
		g.record(g.fail(diag.UnsupportedFeature,
			"cannot print a fixed array whose length is not known here"))
	case *ast.DynamicArrayLiteral:
		tmp := g.nextTemp("print_arr")
		idx := g.nextTemp("print_i")
		g.emit("{\n")
		g.indentLevel++
		g.indent()
		g.emitf("%s %s = ", g.cType(typesystem.DynamicArray{Elem: e.ElemType}), tmp)
		g.generateExpression(e)
		g.emit(";\n")
		g.indent()
		g.emit("printf(\"[\");\n")
		g.indent()
		g.emitf("for (size_t %s = 0; %s < %s.size; %s++) {\n", idx, idx, tmp, idx)
		g.indentLevel++
		g.indent()
		g.emitf("if (%s > 0) printf(\", \");\n", idx)
		g.indent()
		g.emitf("printf(\"%s\", %s.data[%s]);\n", g.elemFormat(e.ElemType), tmp, idx)
		g.indentLevel--
		g.indent()
		g.emit("}\n")
		g.indent()
		g.emit("printf(\"]")
		if newline {
			g.emit("\\n")
		}
		g.emit("\");\n")
		g.indentLevel--
		g.indent()
		g.emit("}")
	}
}

func (g *Generator) elemFormat(elem typesystem.Type) string {
	switch t := normalizeStr(elem).(type) {
	case typesystem.Primitive:
		switch t.Name {
		case "float":
			return "%f"
		case "char":
			return "%c"
		case "string":
			return "%s"
		}
	}
	return "%d"
}

func escapeChar(r rune) string {
	switch r {
	case '\\':
		return "\\\\"
	case '\'':
		return "\\'"
	case '\n':
		return "\\n"
	case '\t':
		return "\\t"
	case '\r':
		return "\\r"
	case 0:
		return "\\0"
	}
	return string(r)
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteString("\\n")
		case '\r':
			b.WriteString("\\r")
		case '\t':
			b.WriteString("\\t")
		case '\\':
			b.WriteString("\\\\")
		case '"':
			b.WriteString("\\\"")
		case 0:
			b.WriteString("\\0")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
