package analyzer_test

import (
	"strings"
	"testing"

	"github.com/rapterlang/rapter/internal/analyzer"
	"github.com/rapterlang/rapter/internal/diag"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/parser"
)

func analyze(t *testing.T, input string) *diag.Diagnostic {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(input, "test.rapt")
	if lexErr != nil {
		t.Fatalf("lexer error: %s", lexErr.Error())
	}
	program, parseErr := parser.Parse(tokens, "test.rapt")
	if parseErr != nil {
		t.Fatalf("parser error: %s", parseErr.Error())
	}
	return analyzer.New("test.rapt").Analyze(program, nil)
}

func TestAnalyzeAccepts(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name: "arithmetic_and_variables",
			source: `
fn main() {
    let x = 1 + 2 * 3;
    let mut y = x;
    y = y + 1;
    let f = 1.5 + 2.0;
    let ok = x < 10 && y > 0;
}
`,
		},
		{
			name: "function_calls",
			source: `
fn add(a: int, b: int) -> int {
    return a + b;
}
fn main() {
    let sum = add(1, 2);
    println(sum);
    print("done");
}
`,
		},
		{
			name: "structs_and_fields",
			source: `
struct Point {
    x: int,
    y: int,
}
fn main() {
    let p = Point { x: 1, y: 2 };
    let x = p.x;
}
`,
		},
		{
			name: "arrays_and_indexing",
			source: `
fn main() {
    let xs = [1, 2, 3];
    let first = xs[0];
    for x : xs {
        println(x);
    }
    for i : 0..10 {
        println(i);
    }
}
`,
		},
		{
			name: "dynamic_array_methods",
			source: `
fn main() {
    let mut items: DynamicArray[int] = new [int]();
    items.push(1);
    items.push(2);
    let n = items.length();
    let last = items.pop();
}
`,
		},
		{
			name: "string_methods",
			source: `
fn main() {
    let s = "hello world";
    let n = s.length();
    let sub = s.substring(0, 5);
    let has = s.contains("world");
    let parts = s.split(" ");
    let total = len(s);
}
`,
		},
		{
			name: "option_with_annotation_hint",
			source: `
fn main() {
    let some: Option<int> = Option::Some(42);
    let none: Option<int> = Option::None;
}
`,
		},
		{
			name: "result_construction",
			source: `
fn parse(raw: string) -> Result<int, string> {
    if raw.length() > 0 {
        return Result::Ok(1);
    }
    return Result::Err("empty input");
}
`,
		},
		{
			name: "try_operator_propagation",
			source: `
fn step() -> Option<int> {
    return Option::Some(1);
}
fn chain() -> Option<int> {
    let v = step()?;
    return Option::Some(v + 1);
}
`,
		},
		{
			name: "match_on_option",
			source: `
fn unwrap_or_zero(o: Option<int>) -> int {
    return match o {
        Option::Some(v) => v,
        Option::None => 0,
    };
}
`,
		},
		{
			name: "match_on_enum_exhaustive",
			source: `
enum Color {
    Red,
    Green,
    Blue,
}
fn name_of(c: Color) -> string {
    return match c {
        Color::Red => "red",
        Color::Green => "green",
        Color::Blue => "blue",
    };
}
`,
		},
		{
			name: "match_with_wildcard",
			source: `
enum Color {
    Red,
    Green,
    Blue,
}
fn is_red(c: Color) -> bool {
    return match c {
        Color::Red => true,
        _ => false,
    };
}
`,
		},
		{
			name: "pointers_and_casts",
			source: `
fn main() {
    let p = new 5;
    let v = *p;
    delete p;
    let f = 3 as float;
    let c = 65 as char;
}
`,
		},
		{
			name: "ternary_expression",
			source: `
fn main() {
    let x = 5;
    let label = x > 0 ? "positive" : "non-positive";
}
`,
		},
		{
			name: "c_intrinsic_fallback",
			source: `
fn main() {
    let r = abs(0 - 5);
}
`,
		},
		{
			name: "bare_println",
			source: `
fn main() {
    println("before the gap");
    println();
}
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := analyze(t, tt.source); err != nil {
				t.Fatalf("unexpected diagnostic: %s", err.Error())
			}
		})
	}
}

func TestAnalyzeRejects(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantCode diag.Code
		contains string
	}{
		{
			name: "undefined_variable",
			source: `
fn main() {
    let x = missing;
}
`,
			wantCode: diag.UndefinedVariable,
		},
		{
			name: "undefined_function",
			source: `
fn main() {
    frobnicate();
}
`,
			wantCode: diag.UndefinedFunction,
		},
		{
			name: "type_mismatch_in_let",
			source: `
fn main() {
    let x: int = "hello";
}
`,
			wantCode: diag.TypeMismatch,
		},
		{
			name: "wrong_argument_count",
			source: `
fn add(a: int, b: int) -> int {
    return a + b;
}
fn main() {
    add(1);
}
`,
			wantCode: diag.WrongArgumentCount,
		},
		{
			name: "wrong_argument_type",
			source: `
fn add(a: int, b: int) -> int {
    return a + b;
}
fn main() {
    add(1, "two");
}
`,
			wantCode: diag.TypeMismatch,
		},
		{
			name: "duplicate_definition",
			source: `
fn main() {
    let x = 1;
    let x = 2;
}
`,
			wantCode: diag.DuplicateDefinition,
		},
		{
			name: "assign_to_const",
			source: `
fn main() {
    const LIMIT: int = 10;
    LIMIT = 20;
}
`,
			wantCode: diag.ImmutableAssignment,
		},
		{
			name: "assign_to_immutable_let",
			source: `
fn main() {
    let count = 1;
    count = 2;
}
`,
			wantCode: diag.ImmutableAssignment,
		},
		{
			name: "division_by_literal_zero",
			source: `
fn main() {
    let x = 1 / 0;
}
`,
			wantCode: diag.InvalidOperation,
			contains: "division by zero",
		},
		{
			name: "missing_return",
			source: `
fn answer() -> int {
    let x = 42;
}
`,
			wantCode: diag.MissingReturn,
		},
		{
			name: "loop_does_not_guarantee_return",
			source: `
fn spin() -> int {
    while true {
        return 1;
    }
}
`,
			wantCode: diag.MissingReturn,
		},
		{
			name: "unknown_struct_field",
			source: `
struct Point {
    x: int,
    y: int,
}
fn main() {
    let p = Point { x: 1, y: 2 };
    let z = p.z;
}
`,
			wantCode: diag.UndefinedVariable,
			contains: "unknown field",
		},
		{
			name: "non_exhaustive_enum_match",
			source: `
enum Color {
    Red,
    Green,
    Blue,
}
fn name_of(c: Color) -> string {
    return match c {
        Color::Red => "red",
        Color::Green => "green",
    };
}
`,
			wantCode: diag.InvalidSyntax,
			contains: "Blue",
		},
		{
			name: "non_exhaustive_match_on_let_binding",
			source: `
enum Signal {
    Go,
    Stop,
}
fn main() {
    let s: Signal = Signal::Go;
    let label = match s {
        Signal::Go => "go",
    };
}
`,
			wantCode: diag.InvalidSyntax,
			contains: "Stop",
		},
		{
			name: "incompatible_match_arms",
			source: `
fn pick(o: Option<int>) -> int {
    return match o {
        Option::Some(v) => v,
        Option::None => "nothing",
    };
}
`,
			wantCode: diag.TypeMismatch,
			contains: "match arms",
		},
		{
			name: "binding_on_valueless_variant",
			source: `
fn pick(o: Option<int>) -> int {
    return match o {
        Option::Some(v) => v,
        Option::None(x) => 0,
    };
}
`,
			wantCode: diag.InvalidSyntax,
			contains: "does not have a value",
		},
		{
			name: "try_outside_option_function",
			source: `
fn step() -> Option<int> {
    return Option::Some(1);
}
fn chain() -> int {
    let v = step()?;
    return v;
}
`,
			wantCode: diag.TypeMismatch,
		},
		{
			name: "try_error_type_mismatch",
			source: `
fn step() -> Result<int, string> {
    return Result::Ok(1);
}
fn chain() -> Result<int, int> {
    let v = step()?;
    return Result::Ok(v);
}
`,
			wantCode: diag.TypeMismatch,
			contains: "error type",
		},
		{
			name: "bare_variant_without_annotation",
			source: `
fn main() {
    let x = Option::None;
}
`,
			wantCode: diag.TypeMismatch,
			contains: "type parameters",
		},
		{
			name: "unknown_builtin_variant",
			source: `
fn main() {
    let x: Option<int> = Option::Just(1);
}
`,
			wantCode: diag.UndefinedType,
		},
		{
			name: "push_element_type_mismatch",
			source: `
fn main() {
    let mut items: DynamicArray[int] = new [int]();
    items.push("nope");
}
`,
			wantCode: diag.TypeMismatch,
		},
		{
			name: "len_requires_string",
			source: `
fn main() {
    let n = len(42);
}
`,
			wantCode: diag.TypeMismatch,
		},
		{
			name: "calling_non_function",
			source: `
fn main() {
    let x = 1;
    x();
}
`,
			wantCode: diag.InvalidOperation,
		},
		{
			name: "return_value_from_void_function",
			source: `
fn log_it() {
    return 42;
}
`,
			wantCode: diag.TypeMismatch,
		},
		{
			name: "iterate_non_iterable",
			source: `
fn main() {
    for x : 42 {
        println(x);
    }
}
`,
			wantCode: diag.InvalidOperation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := analyze(t, tt.source)
			if err == nil {
				t.Fatal("expected a diagnostic, got none")
			}
			if err.Code != tt.wantCode {
				t.Errorf("code: got %s, want %s (message: %s)", err.Code, tt.wantCode, err.Message)
			}
			if tt.contains != "" && !strings.Contains(err.Message, tt.contains) {
				t.Errorf("message %q does not contain %q", err.Message, tt.contains)
			}
		})
	}
}
