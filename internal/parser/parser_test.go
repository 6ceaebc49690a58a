package parser_test

import (
	"testing"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/parser"
	"github.com/rapterlang/rapter/internal/typesystem"
)

func parseSource(t *testing.T, input string) *ast.Program {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(input, "test.rapt")
	if lexErr != nil {
		t.Fatalf("lexer error: %s", lexErr.Error())
	}
	program, parseErr := parser.Parse(tokens, "test.rapt")
	if parseErr != nil {
		t.Fatalf("parser error: %s", parseErr.Error())
	}
	return program
}

func parseFunctionBody(t *testing.T, body string) []ast.Statement {
	t.Helper()
	program := parseSource(t, "fn test() {\n"+body+"\n}")
	if len(program.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(program.Functions))
	}
	return program.Functions[0].Body
}

func parseExpression(t *testing.T, expr string) ast.Expression {
	t.Helper()
	body := parseFunctionBody(t, expr+";")
	if len(body) != 1 {
		t.Fatalf("expected 1 statement, got %d", len(body))
	}
	stmt, ok := body[0].(*ast.ExpressionStatement)
	if !ok {
		t.Fatalf("expected expression statement, got %T", body[0])
	}
	return stmt.Expression
}

func TestParseFunction(t *testing.T) {
	program := parseSource(t, `
fn add(a: int, b: int) -> int {
    return a + b;
}
`)
	if len(program.Functions) != 1 {
		t.Fatalf("expected 1 function, got %d", len(program.Functions))
	}
	fn := program.Functions[0]
	if fn.Name != "add" {
		t.Errorf("name: got %q, want %q", fn.Name, "add")
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(fn.Parameters))
	}
	if fn.Parameters[0].Name != "a" || !typesystem.Equal(fn.Parameters[0].Type, typesystem.Int) {
		t.Errorf("unexpected first parameter: %s %s", fn.Parameters[0].Name, typesystem.Describe(fn.Parameters[0].Type))
	}
	if !typesystem.Equal(fn.ReturnType, typesystem.Int) {
		t.Errorf("return type: got %s, want int", typesystem.Describe(fn.ReturnType))
	}
	ret, ok := fn.Body[0].(*ast.ReturnStatement)
	if !ok {
		t.Fatalf("expected return statement, got %T", fn.Body[0])
	}
	if _, ok := ret.Value.(*ast.BinaryExpr); !ok {
		t.Errorf("expected binary expression, got %T", ret.Value)
	}
}

func TestParsePrecedence(t *testing.T) {
	expr := parseExpression(t, "1 + 2 * 3")
	add, ok := expr.(*ast.BinaryExpr)
	if !ok || add.Operator != ast.OpAdd {
		t.Fatalf("expected +, got %T", expr)
	}
	mul, ok := add.Right.(*ast.BinaryExpr)
	if !ok || mul.Operator != ast.OpMultiply {
		t.Fatalf("expected * on the right, got %T", add.Right)
	}
}

func TestParseExpressionShapes(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		check func(t *testing.T, expr ast.Expression)
	}{
		{"call", "add(1, 2)", func(t *testing.T, expr ast.Expression) {
			call, ok := expr.(*ast.CallExpr)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			if len(call.Arguments) != 2 {
				t.Errorf("arguments: got %d, want 2", len(call.Arguments))
			}
		}},
		{"field_access", "p.x", func(t *testing.T, expr ast.Expression) {
			if _, ok := expr.(*ast.FieldAccess); !ok {
				t.Fatalf("got %T", expr)
			}
		}},
		{"arrow_is_deref_sugar", "p->x", func(t *testing.T, expr ast.Expression) {
			fa, ok := expr.(*ast.FieldAccess)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			un, ok := fa.Object.(*ast.UnaryExpr)
			if !ok || un.Operator != ast.OpDereference {
				t.Fatalf("expected dereference under field access, got %T", fa.Object)
			}
		}},
		{"index", "xs[0]", func(t *testing.T, expr ast.Expression) {
			if _, ok := expr.(*ast.IndexExpr); !ok {
				t.Fatalf("got %T", expr)
			}
		}},
		{"cast", "x as float", func(t *testing.T, expr ast.Expression) {
			cast, ok := expr.(*ast.CastExpr)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			if !typesystem.Equal(cast.TargetType, typesystem.Float) {
				t.Errorf("target: got %s", typesystem.Describe(cast.TargetType))
			}
		}},
		{"range", "0..10", func(t *testing.T, expr ast.Expression) {
			if _, ok := expr.(*ast.RangeExpr); !ok {
				t.Fatalf("got %T", expr)
			}
		}},
		{"enum_access", "Color::Red", func(t *testing.T, expr ast.Expression) {
			ea, ok := expr.(*ast.EnumAccess)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			if ea.EnumName != "Color" || ea.Variant != "Red" {
				t.Errorf("got %s::%s", ea.EnumName, ea.Variant)
			}
		}},
		{"struct_literal", "Point { x: 1, y: 2 }", func(t *testing.T, expr ast.Expression) {
			lit, ok := expr.(*ast.StructLiteral)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			if len(lit.Fields) != 2 || lit.Fields[0].Name != "x" {
				t.Errorf("unexpected fields: %+v", lit.Fields)
			}
		}},
		{"new_dynamic_array", "new [int]()", func(t *testing.T, expr ast.Expression) {
			lit, ok := expr.(*ast.DynamicArrayLiteral)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			if !typesystem.Equal(lit.ElemType, typesystem.Int) {
				t.Errorf("elem type: got %s", typesystem.Describe(lit.ElemType))
			}
		}},
		{"try_operator", "may_fail()?", func(t *testing.T, expr ast.Expression) {
			try, ok := expr.(*ast.TryExpr)
			if !ok {
				t.Fatalf("got %T", expr)
			}
			if _, ok := try.Expression.(*ast.CallExpr); !ok {
				t.Errorf("expected call under try, got %T", try.Expression)
			}
		}},
		{"ternary", "x > 0 ? 1 : 2", func(t *testing.T, expr ast.Expression) {
			if _, ok := expr.(*ast.TernaryExpr); !ok {
				t.Fatalf("got %T", expr)
			}
		}},
		{"address_of", "&x", func(t *testing.T, expr ast.Expression) {
			un, ok := expr.(*ast.UnaryExpr)
			if !ok || un.Operator != ast.OpAddressOf {
				t.Fatalf("got %T", expr)
			}
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, parseExpression(t, tc.input))
		})
	}
}

func TestParseMatch(t *testing.T) {
	expr := parseExpression(t, `match opt {
        Option::Some(v) => v,
        Option::None => 0
    }`)
	m, ok := expr.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(m.Arms) != 2 {
		t.Fatalf("arms: got %d, want 2", len(m.Arms))
	}
	some, ok := m.Arms[0].Pattern.(*ast.EnumVariantPattern)
	if !ok {
		t.Fatalf("got %T", m.Arms[0].Pattern)
	}
	if some.EnumName != "Option" || some.Variant != "Some" || some.Binding != "v" {
		t.Errorf("unexpected pattern: %+v", some)
	}
	none, ok := m.Arms[1].Pattern.(*ast.EnumVariantPattern)
	if !ok || none.Binding != "" {
		t.Errorf("expected bindingless pattern, got %T", m.Arms[1].Pattern)
	}
}

func TestParseMatchWildcardAndLiterals(t *testing.T) {
	expr := parseExpression(t, `match n {
        0 => "zero",
        1 => "one",
        _ => "many",
    }`)
	m, ok := expr.(*ast.MatchExpr)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(m.Arms) != 3 {
		t.Fatalf("arms: got %d, want 3", len(m.Arms))
	}
	if _, ok := m.Arms[0].Pattern.(*ast.LiteralPattern); !ok {
		t.Errorf("expected literal pattern, got %T", m.Arms[0].Pattern)
	}
	if _, ok := m.Arms[2].Pattern.(*ast.WildcardPattern); !ok {
		t.Errorf("expected wildcard pattern, got %T", m.Arms[2].Pattern)
	}
}

func TestParseStatements(t *testing.T) {
	body := parseFunctionBody(t, `
    let mut x: int = 1;
    const LIMIT: int = 10;
    x = x + 1;
    if x > LIMIT {
        return;
    } else {
        x = 0;
    }
    while x < 5 {
        x = x + 1;
    }
    for i : 0..10 {
        break;
    }
`)
	if len(body) != 6 {
		t.Fatalf("statements: got %d, want 6", len(body))
	}
	let, ok := body[0].(*ast.LetStatement)
	if !ok || !let.Mutable || let.Name != "x" {
		t.Fatalf("unexpected let statement: %+v", body[0])
	}
	if _, ok := body[1].(*ast.ConstStatement); !ok {
		t.Errorf("expected const, got %T", body[1])
	}
	if _, ok := body[2].(*ast.AssignStatement); !ok {
		t.Errorf("expected assignment, got %T", body[2])
	}
	ifStmt, ok := body[3].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected if, got %T", body[3])
	}
	if ifStmt.Else == nil {
		t.Errorf("expected else branch")
	}
	forStmt, ok := body[5].(*ast.ForStatement)
	if !ok {
		t.Fatalf("expected for, got %T", body[5])
	}
	if forStmt.Variable != "i" {
		t.Errorf("loop variable: got %q", forStmt.Variable)
	}
	if _, ok := forStmt.Iterable.(*ast.RangeExpr); !ok {
		t.Errorf("expected range iterable, got %T", forStmt.Iterable)
	}
}

func TestParseUppercaseConditionIsNotStructLiteral(t *testing.T) {
	body := parseFunctionBody(t, `
    if total > MAX {
        return;
    }
    while MAX > total {
        total = total - 1;
    }
    if inside(Box { w: 2, h: 3 }) {
        return;
    }
`)
	if len(body) != 3 {
		t.Fatalf("statements: got %d, want 3", len(body))
	}
	ifStmt, ok := body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected if, got %T", body[0])
	}
	if _, ok := ifStmt.Condition.(*ast.BinaryExpr); !ok {
		t.Errorf("condition: got %T, want comparison", ifStmt.Condition)
	}
	if _, ok := body[1].(*ast.WhileStatement); !ok {
		t.Errorf("expected while, got %T", body[1])
	}
	callIf, ok := body[2].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected if, got %T", body[2])
	}
	call, ok := callIf.Condition.(*ast.CallExpr)
	if !ok {
		t.Fatalf("condition: got %T, want call", callIf.Condition)
	}
	if _, ok := call.Arguments[0].(*ast.StructLiteral); !ok {
		t.Errorf("call argument: got %T, want struct literal", call.Arguments[0])
	}
}

func TestParseDeclarations(t *testing.T) {
	program := parseSource(t, `
import std.io;
import std.math as m;

export struct Point {
    x: int,
    y: int,
}

enum Status {
    Active,
    Disabled = 10,
    Retired,
}

extern fn printf(fmt: *char, ...) -> int;

let mut counter: int = 0;
`)
	if len(program.Imports) != 2 {
		t.Fatalf("imports: got %d, want 2", len(program.Imports))
	}
	if program.Imports[0].Module != "std.io" || program.Imports[0].Qualifier() != "io" {
		t.Errorf("unexpected import: %+v", program.Imports[0])
	}
	if program.Imports[1].Alias != "m" || program.Imports[1].Qualifier() != "m" {
		t.Errorf("unexpected aliased import: %+v", program.Imports[1])
	}

	if len(program.Structs) != 1 || program.Structs[0].Name != "Point" {
		t.Fatalf("unexpected structs: %+v", program.Structs)
	}
	if len(program.Exports) != 1 || program.Exports[0].Kind != ast.ExportStruct {
		t.Errorf("unexpected exports: %+v", program.Exports)
	}

	if len(program.Enums) != 1 {
		t.Fatalf("enums: got %d, want 1", len(program.Enums))
	}
	variants := program.Enums[0].Variants
	wantValues := []int64{0, 10, 11}
	for i, want := range wantValues {
		if variants[i].Value != want {
			t.Errorf("variant %s: got %d, want %d", variants[i].Name, variants[i].Value, want)
		}
	}

	if len(program.Externs) != 1 || !program.Externs[0].Variadic {
		t.Fatalf("unexpected externs: %+v", program.Externs)
	}
	if len(program.Globals) != 1 || !program.Globals[0].Mutable {
		t.Fatalf("unexpected globals: %+v", program.Globals)
	}
}

func TestParseGenericTypes(t *testing.T) {
	program := parseSource(t, `
fn find(xs: [int], want: int) -> Option<int> {
    return Option::None;
}
`)
	ret := program.Functions[0].ReturnType
	gen, ok := ret.(typesystem.Generic)
	if !ok {
		t.Fatalf("expected generic return type, got %s", typesystem.Describe(ret))
	}
	if gen.Name != "Option" || len(gen.Args) != 1 || !typesystem.Equal(gen.Args[0], typesystem.Int) {
		t.Errorf("got %s", gen.String())
	}
	arr, ok := program.Functions[0].Parameters[0].Type.(typesystem.Array)
	if !ok || !typesystem.Equal(arr.Elem, typesystem.Int) {
		t.Errorf("parameter type: got %s", typesystem.Describe(program.Functions[0].Parameters[0].Type))
	}
}

func TestParseErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		code  diag.Code
	}{
		{"stray_token_at_top_level", "42;", diag.UnexpectedToken},
		{"missing_semicolon", "fn f() { let x = 1 }", diag.UnexpectedToken},
		{"bad_export", "export let x = 1;", diag.ExpectedToken},
		{"bad_type", "fn f(x: 123) {}", diag.InvalidSyntax},
		{"variable_pattern", "fn f() { match x { y => 1 }; }", diag.InvalidSyntax},
		{"unclosed_call", "fn f() { g(1, 2; }", diag.UnexpectedToken},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tokens, lexErr := lexer.Tokenize(tc.input, "test.rapt")
			if lexErr != nil {
				t.Fatalf("lexer error: %s", lexErr.Error())
			}
			_, err := parser.Parse(tokens, "test.rapt")
			if err == nil {
				t.Fatal("expected a parse error")
			}
			if err.Code != tc.code {
				t.Errorf("code: got %s, want %s (%s)", err.Code, tc.code, err.Message)
			}
		})
	}
}
