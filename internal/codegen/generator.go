// Package codegen lowers a checked program to a single C translation unit.
// Builtin generics are monomorphized into tagged unions, match compiles to
// switch or if-chains, and the ? operator desugars to an early return.
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/builtins"
	"github.com/rapterlang/rapter/internal/config"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/typesystem"
)

// Generator holds all lowering state. A Generator is single-use: build one
// with New, call Generate once. No state lives in package globals.
type Generator struct {
	out         strings.Builder
	indentLevel int

	// Scope stack of variable types for type-directed lowering.
	scopes []map[string]typesystem.Type
	// Function return types by unqualified name, nil entries mean void.
	funcTypes map[string]typesystem.Type
	// Struct field layouts for typing field accesses during lowering.
	structFields map[string]map[string]typesystem.Type
	// Return type of the function currently being generated.
	currentReturn typesystem.Type
	// Contextual type for initializers and return values, used to pick the
	// instantiation of bare variant references like Option::None.
	expected typesystem.Type

	tempCounter    int
	instantiations map[string]typesystem.Generic
	registry       *builtins.Registry
	file           string
	// Extra C headers requested by the project manifest.
	extraIncludes []string

	// First unrecoverable error seen while emitting. Checked by Generate.
	sticky *diag.Diagnostic
}

func New(file string) *Generator {
	return &Generator{
		funcTypes:      make(map[string]typesystem.Type),
		structFields:   make(map[string]map[string]typesystem.Type),
		instantiations: make(map[string]typesystem.Generic),
		registry:       builtins.NewRegistry(),
		file:           file,
	}
}

func (g *Generator) fail(code diag.Code, format string, args ...interface{}) *diag.Diagnostic {
	return diag.New(code, diag.Span{File: g.file}, "%s", fmt.Sprintf(format, args...))
}

// record keeps the first emission error; later ones are dropped.
func (g *Generator) record(d *diag.Diagnostic) {
	if g.sticky == nil {
		g.sticky = d
	}
}

func (g *Generator) enterScope() {
	g.scopes = append(g.scopes, make(map[string]typesystem.Type))
}

func (g *Generator) exitScope() {
	g.scopes = g.scopes[:len(g.scopes)-1]
}

func (g *Generator) setVarType(name string, ty typesystem.Type) {
	if len(g.scopes) > 0 {
		g.scopes[len(g.scopes)-1][name] = ty
	}
}

func (g *Generator) varType(name string) (typesystem.Type, bool) {
	for i := len(g.scopes) - 1; i >= 0; i-- {
		if ty, ok := g.scopes[i][name]; ok {
			return ty, true
		}
	}
	return nil, false
}

func (g *Generator) nextTemp(prefix string) string {
	name := fmt.Sprintf("__%s_%d", prefix, g.tempCounter)
	g.tempCounter++
	return name
}

func (g *Generator) indent() {
	for i := 0; i < g.indentLevel; i++ {
		g.out.WriteString("    ")
	}
}

func (g *Generator) emit(s string) {
	g.out.WriteString(s)
}

func (g *Generator) emitf(format string, args ...interface{}) {
	fmt.Fprintf(&g.out, format, args...)
}

// trackGeneric records a generic instantiation, including instantiations
// nested under pointers and arrays. Tracking is idempotent: the set is keyed
// by the mangled name, so Option<int> seen twice yields one definition.
func (g *Generator) trackGeneric(ty typesystem.Type) {
	switch t := ty.(type) {
	case typesystem.Generic:
		g.instantiations[g.mangled(ty)] = t
		for _, arg := range t.Args {
			g.trackGeneric(arg)
		}
	case typesystem.Pointer:
		g.trackGeneric(t.Elem)
	case typesystem.Array:
		g.trackGeneric(t.Elem)
	case typesystem.DynamicArray:
		g.trackGeneric(t.Elem)
	}
}

// registerProgramTypes fills the struct layout and function return tables
// before collection, so expression typing works during the collection walk.
func (g *Generator) registerProgramTypes(program *ast.Program) {
	for _, st := range program.Structs {
		layout := make(map[string]typesystem.Type, len(st.Fields))
		for _, field := range st.Fields {
			layout[field.Name] = field.Type
		}
		g.structFields[st.Name] = layout
	}
	for _, fn := range program.Functions {
		g.funcTypes[fn.Name] = fn.ReturnType
	}
	for _, ext := range program.Externs {
		g.funcTypes[ext.Name] = ext.ReturnType
	}
}

// collectGenerics walks declared types and expressions. Variant
// constructions like Option::Some(5) instantiate a generic without any type
// annotation naming it, so the walk mirrors the scope and inference the body
// generator will use, ensuring every instantiation has a typedef before the
// first use.
func (g *Generator) collectGenerics(program *ast.Program) {
	for _, global := range program.Globals {
		if global.Type != nil {
			g.trackGeneric(global.Type)
			g.setVarType(global.Name, global.Type)
		} else if global.Initializer != nil {
			g.collectGenericsFromExpr(global.Initializer)
			if ty := g.exprType(global.Initializer); ty != nil {
				g.setVarType(global.Name, ty)
			}
		}
	}
	for _, fn := range program.Functions {
		if fn.ReturnType != nil {
			g.trackGeneric(fn.ReturnType)
		}
		g.currentReturn = fn.ReturnType
		g.enterScope()
		for _, param := range fn.Parameters {
			g.trackGeneric(param.Type)
			g.setVarType(param.Name, param.Type)
		}
		for _, stmt := range fn.Body {
			g.collectGenericsFromStmt(stmt)
		}
		g.exitScope()
		g.currentReturn = nil
	}
	for _, ext := range program.Externs {
		if ext.ReturnType != nil {
			g.trackGeneric(ext.ReturnType)
		}
		for _, param := range ext.Parameters {
			g.trackGeneric(param.Type)
		}
	}
}

func (g *Generator) collectGenericsFromStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.LetStatement:
		var declared typesystem.Type
		if s.Type != nil {
			declared = s.Type
		} else if s.Initializer != nil {
			declared = g.initType(s.Initializer)
		}
		if s.Initializer != nil {
			prev := g.expected
			g.expected = declared
			g.collectGenericsFromExpr(s.Initializer)
			g.expected = prev
		}
		if declared != nil {
			g.trackGeneric(declared)
			g.setVarType(s.Name, declared)
		}
	case *ast.ConstStatement:
		declared := s.Type
		if declared == nil {
			declared = g.initType(s.Initializer)
		}
		prev := g.expected
		g.expected = declared
		g.collectGenericsFromExpr(s.Initializer)
		g.expected = prev
		g.trackGeneric(declared)
		g.setVarType(s.Name, declared)
	case *ast.AssignStatement:
		g.collectGenericsFromExpr(s.Value)
	case *ast.ReturnStatement:
		if s.Value != nil {
			prev := g.expected
			g.expected = g.currentReturn
			g.collectGenericsFromExpr(s.Value)
			g.expected = prev
		}
	case *ast.ExpressionStatement:
		g.collectGenericsFromExpr(s.Expression)
	case *ast.IfStatement:
		g.collectGenericsFromExpr(s.Condition)
		g.enterScope()
		for _, inner := range s.Then {
			g.collectGenericsFromStmt(inner)
		}
		g.exitScope()
		g.enterScope()
		for _, inner := range s.Else {
			g.collectGenericsFromStmt(inner)
		}
		g.exitScope()
	case *ast.WhileStatement:
		g.collectGenericsFromExpr(s.Condition)
		g.enterScope()
		for _, inner := range s.Body {
			g.collectGenericsFromStmt(inner)
		}
		g.exitScope()
	case *ast.ForStatement:
		g.collectGenericsFromExpr(s.Iterable)
		g.enterScope()
		if _, ok := s.Iterable.(*ast.RangeExpr); ok {
			g.setVarType(s.Variable, typesystem.Int)
		} else {
			switch it := g.exprType(s.Iterable).(type) {
			case typesystem.DynamicArray:
				g.setVarType(s.Variable, it.Elem)
			case typesystem.Array:
				g.setVarType(s.Variable, it.Elem)
			}
		}
		for _, inner := range s.Body {
			g.collectGenericsFromStmt(inner)
		}
		g.exitScope()
	}
}

func (g *Generator) collectGenericsFromExpr(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.CallExpr:
		if callee, ok := e.Callee.(*ast.EnumAccess); ok && g.registry.IsBuiltin(callee.EnumName) && len(e.Arguments) == 1 {
			// Same contextual priority the construction site will use:
			// expected type, enclosing return type, then the argument.
			if gen, ok := g.expected.(typesystem.Generic); ok && gen.Name == callee.EnumName {
				g.trackGeneric(gen)
			} else if gen, ok := g.currentReturn.(typesystem.Generic); ok && gen.Name == callee.EnumName {
				g.trackGeneric(gen)
			} else {
				argTy := g.exprType(e.Arguments[0])
				if argTy == nil {
					argTy = typesystem.Int
				}
				g.trackGeneric(typesystem.Generic{Name: callee.EnumName, Args: []typesystem.Type{argTy}})
			}
		}
		for _, arg := range e.Arguments {
			g.collectGenericsFromExpr(arg)
		}
	case *ast.BinaryExpr:
		g.collectGenericsFromExpr(e.Left)
		g.collectGenericsFromExpr(e.Right)
	case *ast.UnaryExpr:
		g.collectGenericsFromExpr(e.Operand)
	case *ast.IndexExpr:
		g.collectGenericsFromExpr(e.Array)
		g.collectGenericsFromExpr(e.Index)
	case *ast.FieldAccess:
		g.collectGenericsFromExpr(e.Object)
	case *ast.ArrayLiteral:
		for _, elem := range e.Elements {
			g.collectGenericsFromExpr(elem)
		}
	case *ast.DynamicArrayLiteral:
		g.trackGeneric(typesystem.DynamicArray{Elem: e.ElemType})
	case *ast.StructLiteral:
		for _, field := range e.Fields {
			g.collectGenericsFromExpr(field.Value)
		}
	case *ast.NewExpr:
		g.collectGenericsFromExpr(e.Operand)
	case *ast.DeleteExpr:
		g.collectGenericsFromExpr(e.Operand)
	case *ast.CastExpr:
		g.trackGeneric(e.TargetType)
		g.collectGenericsFromExpr(e.Expression)
	case *ast.TernaryExpr:
		g.collectGenericsFromExpr(e.Condition)
		g.collectGenericsFromExpr(e.TrueExpr)
		g.collectGenericsFromExpr(e.FalseExpr)
	case *ast.RangeExpr:
		g.collectGenericsFromExpr(e.Start)
		g.collectGenericsFromExpr(e.End)
	case *ast.MatchExpr:
		g.collectGenericsFromExpr(e.Scrutinee)
		for _, arm := range e.Arms {
			g.collectGenericsFromExpr(arm.Expression)
		}
	case *ast.TryExpr:
		g.collectGenericsFromExpr(e.Expression)
	}
}

// sortedImports returns the imported module programs in a stable order.
func sortedImports(imports map[string]*ast.Program) []*ast.Program {
	names := make([]string, 0, len(imports))
	for name := range imports {
		names = append(names, name)
	}
	sort.Strings(names)
	programs := make([]*ast.Program, 0, len(names))
	for _, name := range names {
		programs = append(programs, imports[name])
	}
	return programs
}

// Generate lowers program plus its loaded imports to C source text. The
// returned string is a complete translation unit.
func (g *Generator) Generate(program *ast.Program, imports map[string]*ast.Program) (string, *diag.Diagnostic) {
	imported := sortedImports(imports)

	g.registerProgramTypes(program)
	for _, mod := range imported {
		g.registerProgramTypes(mod)
	}
	g.enterScope()
	g.collectGenerics(program)
	for _, mod := range imported {
		g.collectGenerics(mod)
	}
	g.exitScope()

	g.emit("#include <stdio.h>\n")
	g.emit("#include <stdlib.h>\n")
	g.emit("#include <string.h>\n")
	g.emit("#include <stddef.h>\n")
	g.emit("#include <ctype.h>\n")
	for _, header := range g.extraIncludes {
		g.emitf("#include <%s>\n", header)
	}
	g.emit("\n")

	hasMain := false
	for _, fn := range program.Functions {
		if fn.Name == "main" {
			hasMain = true
		}
	}
	if hasMain {
		g.emit("static int __rapter_argc = 0;\n")
		g.emit("static char** __rapter_argv = NULL;\n")
		g.emit("int rapter_get_argc() { return __rapter_argc; }\n")
		g.emit("char* rapter_get_argv(int i) { return (i >= 0 && i < __rapter_argc) ? __rapter_argv[i] : \"\"; }\n\n")
	}

	g.emit("typedef struct { int* data; size_t size; size_t capacity; } DynamicArray_int;\n")
	g.emit("typedef struct { double* data; size_t size; size_t capacity; } DynamicArray_double;\n")
	g.emit("typedef struct { char* data; size_t size; size_t capacity; } DynamicArray_char;\n")
	g.emit("typedef struct { char** data; size_t size; size_t capacity; } DynamicArray_charptr;\n\n")

	// Enums first: structs and signatures may reference them.
	for _, mod := range imported {
		for _, enum := range mod.Enums {
			g.generateEnum(enum)
			g.emit("\n")
		}
	}
	for _, enum := range program.Enums {
		g.generateEnum(enum)
		g.emit("\n")
	}

	for _, mod := range imported {
		for _, st := range mod.Structs {
			g.generateStruct(st)
			g.emit("\n")
		}
	}
	for _, st := range program.Structs {
		g.generateStruct(st)
		g.emit("\n")
	}

	for _, st := range program.Structs {
		g.emitf("typedef struct { struct %s* data; size_t size; size_t capacity; } DynamicArray_%s;\n", st.Name, st.Name)
	}
	for _, mod := range imported {
		for _, st := range mod.Structs {
			g.emitf("typedef struct { struct %s* data; size_t size; size_t capacity; } DynamicArray_%s;\n", st.Name, st.Name)
		}
	}
	g.emit("\n")

	g.generateGenericDefs()

	for _, ext := range program.Externs {
		if config.IsCIntrinsic(ext.Name) {
			continue
		}
		g.funcTypes[ext.Name] = ext.ReturnType
		g.declareExtern(ext)
		g.emit(";\n")
	}

	if hasMain {
		g.emitRuntimeHelpers()
	}

	for _, fn := range program.Functions {
		g.funcTypes[fn.Name] = fn.ReturnType
		g.declareFunction(fn)
		g.emit(";\n")
	}
	for _, mod := range imported {
		for _, fn := range mod.Functions {
			g.funcTypes[fn.Name] = fn.ReturnType
			g.declareFunction(fn)
			g.emit(";\n")
		}
	}
	g.emit("\n")

	g.enterScope()
	for _, global := range program.Globals {
		g.generateGlobal(global)
	}
	if len(program.Globals) > 0 {
		g.emit("\n")
	}

	for _, fn := range program.Functions {
		g.generateFunction(fn)
		g.emit("\n")
	}
	// Imported functions are compiled into the same unit. Separate
	// compilation with linking would replace this.
	for _, mod := range imported {
		for _, fn := range mod.Functions {
			g.generateFunction(fn)
			g.emit("\n")
		}
	}

	if hasMain {
		g.generateMainWrapper()
	}

	if g.sticky != nil {
		return "", g.sticky
	}
	return g.out.String(), nil
}

// emitRuntimeHelpers writes the string and file helpers once, in the unit
// that owns main.
func (g *Generator) emitRuntimeHelpers() {
	g.emit("int rapter_write_all(char* path, char* data) { FILE* f = fopen(path, \"wb\"); if (!f) return -1; size_t n = strlen(data); size_t w = fwrite(data, 1, n, f); fclose(f); return w == n ? 0 : -1; }\n")
	g.emit("char* rapter_read_all(char* path) { FILE* f = fopen(path, \"rb\"); if (!f) { char* s = (char*)malloc(1); if (s) s[0] = 0; return s; } if (fseek(f, 0, SEEK_END) != 0) { fclose(f); char* s = (char*)malloc(1); if (s) s[0]=0; return s; } long sz = ftell(f); if (sz < 0) { fclose(f); char* s = (char*)malloc(1); if (s) s[0]=0; return s; } fseek(f, 0, SEEK_SET); char* buf = (char*)malloc((size_t)sz + 1); if (!buf) { fclose(f); return NULL; } size_t n = fread(buf, 1, (size_t)sz, f); fclose(f); buf[n] = 0; return buf; }\n")
	g.emit("char* rapter_substring(char* str, int start, int end) { if (!str) return NULL; int len = strlen(str); if (start < 0) start = 0; if (end > len) end = len; if (start >= end) return strdup(\"\"); int sublen = end - start; char* result = (char*)malloc(sublen + 1); if (!result) return NULL; strncpy(result, str + start, sublen); result[sublen] = 0; return result; }\n")
	g.emit("char* rapter_trim(char* str) { if (!str) return NULL; while (*str && isspace((unsigned char)*str)) str++; if (!*str) return strdup(\"\"); char* end = str + strlen(str) - 1; while (end > str && isspace((unsigned char)*end)) end--; size_t len = end - str + 1; char* result = (char*)malloc(len + 1); if (!result) return NULL; memcpy(result, str, len); result[len] = 0; return result; }\n")
	g.emit("DynamicArray_charptr rapter_split(char* str, char* delim) { DynamicArray_charptr arr; arr.size = 0; arr.capacity = 4; arr.data = (char**)malloc(arr.capacity * sizeof(char*)); if (!arr.data) return arr; char* copy = strdup(str); char* token = strtok(copy, delim); while (token) { if (arr.size >= arr.capacity) { arr.capacity *= 2; arr.data = (char**)realloc(arr.data, arr.capacity * sizeof(char*)); } arr.data[arr.size++] = strdup(token); token = strtok(NULL, delim); } free(copy); return arr; }\n\n")
}

// generateGenericDefs emits tagged-union definitions for every tracked
// instantiation, in mangled-name order so output is deterministic.
func (g *Generator) generateGenericDefs() {
	names := make([]string, 0, len(g.instantiations))
	for name := range g.instantiations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		inst := g.instantiations[name]
		family, ok := g.registry.Lookup(inst.Name)
		if !ok {
			continue
		}
		g.generateGenericDef(family, inst, name)
	}
}

func (g *Generator) generateGenericDef(family *builtins.GenericType, inst typesystem.Generic, mangled string) {
	g.emitf("// %s\n", inst.String())
	g.emit("typedef enum {\n")
	for _, variant := range family.Variants {
		g.emitf("    %s_%s,\n", mangled, variant.Name)
	}
	g.emitf("} %s_Tag;\n\n", mangled)

	g.emit("typedef struct {\n")
	g.emitf("    %s_Tag tag;\n", mangled)
	hasValues := false
	for _, variant := range family.Variants {
		if variant.HasValue {
			hasValues = true
		}
	}
	if hasValues {
		g.emit("    union {\n")
		for _, variant := range family.Variants {
			if !variant.HasValue {
				continue
			}
			payload, ok := family.VariantValueType(variant.Name, inst.Args)
			if !ok {
				continue
			}
			g.emitf("        %s %s_value;\n", g.cType(payload), strings.ToLower(variant.Name))
		}
		g.emit("    } data;\n")
	}
	g.emitf("} %s;\n\n", mangled)

	// Constructor macros for value-less variants; value-carrying variants
	// are built inline at construction sites.
	for _, variant := range family.Variants {
		if variant.HasValue {
			continue
		}
		g.emitf("#define %s_%s_INIT ((%s){ .tag = %s_%s })\n",
			strings.ToUpper(mangled), strings.ToUpper(variant.Name), mangled, mangled, variant.Name)
	}
	g.emit("\n")
}

func (g *Generator) declareExtern(ext *ast.ExternFunction) {
	g.emit(g.cType(voidWhenNil(ext.ReturnType)))
	g.emit(" ")
	g.emit(ext.Name)
	g.emit("(")
	for i, param := range ext.Parameters {
		if i > 0 {
			g.emit(", ")
		}
		g.emit(g.cType(param.Type))
		g.emit(" ")
		g.emit(param.Name)
	}
	if ext.Variadic {
		if len(ext.Parameters) > 0 {
			g.emit(", ")
		}
		g.emit("...")
	}
	g.emit(")")
}

func (g *Generator) declareFunction(fn *ast.Function) {
	g.emit(g.cType(voidWhenNil(fn.ReturnType)))
	g.emit(" ")
	name := fn.Name
	if name == "main" {
		name = "rapter_main"
	}
	g.emit(name)
	g.emit("(")
	for i, param := range fn.Parameters {
		if i > 0 {
			g.emit(", ")
		}
		g.emit(g.cType(param.Type))
		g.emit(" ")
		g.emit(param.Name)
	}
	g.emit(")")
}

func (g *Generator) generateStruct(st *ast.StructDef) {
	layout := make(map[string]typesystem.Type, len(st.Fields))
	g.emitf("typedef struct %s {\n", st.Name)
	for _, field := range st.Fields {
		layout[field.Name] = field.Type
		g.emitf("    %s %s;\n", g.cType(field.Type), field.Name)
	}
	g.emitf("} %s;\n", st.Name)
	g.structFields[st.Name] = layout
}

func (g *Generator) generateEnum(enum *ast.EnumDef) {
	g.emit("typedef enum {\n")
	for i, variant := range enum.Variants {
		g.emitf("    %s_%s = %d", strings.ToUpper(enum.Name), strings.ToUpper(variant.Name), variant.Value)
		if i < len(enum.Variants)-1 {
			g.emit(",")
		}
		g.emit("\n")
	}
	g.emitf("} %s;\n", enum.Name)
}

func (g *Generator) generateGlobal(global *ast.GlobalVariable) {
	ty := global.Type
	if ty == nil && global.Initializer != nil {
		ty = g.exprType(global.Initializer)
	}
	if ty == nil {
		ty = typesystem.Int
	}
	g.emitf("static %s %s", g.cType(ty), global.Name)
	if global.Initializer != nil {
		g.emit(" = ")
		g.generateExpression(global.Initializer)
	}
	g.emit(";\n")
	g.setVarType(global.Name, ty)
}

func (g *Generator) generateFunction(fn *ast.Function) {
	g.currentReturn = fn.ReturnType
	g.declareFunction(fn)
	g.emit(" {\n")
	g.indentLevel++
	g.enterScope()
	for _, param := range fn.Parameters {
		g.setVarType(param.Name, param.Type)
	}
	for _, stmt := range fn.Body {
		g.generateStatement(stmt)
	}
	g.exitScope()
	g.currentReturn = nil
	g.indentLevel--
	g.emit("}\n")
}

func (g *Generator) generateMainWrapper() {
	g.emit("int main(int argc, char* argv[]) {\n")
	g.emit("    __rapter_argc = argc; __rapter_argv = argv;\n")
	if ret, ok := g.funcTypes["main"]; ok && ret != nil && !typesystem.Equal(ret, typesystem.Void) {
		g.emit("    return rapter_main();\n")
	} else {
		g.emit("    rapter_main();\n")
		g.emit("    return 0;\n")
	}
	g.emit("}\n")
}

func voidWhenNil(ty typesystem.Type) typesystem.Type {
	if ty == nil {
		return typesystem.Void
	}
	return ty
}
