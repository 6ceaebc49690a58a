package codegen_test

import (
	"strings"
	"testing"

	"github.com/rapterlang/rapter/internal/ast"
	"github.com/rapterlang/rapter/internal/codegen"
	"github.com/rapterlang/rapter/internal/lexer"
	"github.com/rapterlang/rapter/internal/parser"
)

func generate(t *testing.T, source string) string {
	t.Helper()
	program := parseProgram(t, source)
	output, err := codegen.New("test.rapt").Generate(program, nil)
	if err != nil {
		t.Fatalf("codegen error: %s", err.Error())
	}
	return output
}

func parseProgram(t *testing.T, source string) *ast.Program {
	t.Helper()
	tokens, lexErr := lexer.Tokenize(source, "test.rapt")
	if lexErr != nil {
		t.Fatalf("lexer error: %s", lexErr.Error())
	}
	program, parseErr := parser.Parse(tokens, "test.rapt")
	if parseErr != nil {
		t.Fatalf("parser error: %s", parseErr.Error())
	}
	return program
}

func TestGenerateHeadersAndMain(t *testing.T) {
	output := generate(t, `
fn main() {
    println("hello");
}
`)
	for _, want := range []string{
		"#include <stdio.h>",
		"#include <stdlib.h>",
		"void rapter_main()",
		"int main(int argc, char* argv[])",
		"__rapter_argc = argc",
		`printf("%s\n", "hello")`,
		"rapter_main();",
		"return 0;",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateIntMainReturnsValue(t *testing.T) {
	output := generate(t, `
fn main() -> int {
    return 0;
}
`)
	if !strings.Contains(output, "return rapter_main();") {
		t.Error("int main should propagate rapter_main's return value")
	}
}

func TestGenerateResultFunction(t *testing.T) {
	output := generate(t, `
fn safe_div(a: int, b: int) -> Result<int, string> {
    if b == 0 {
        return Result::Err("div by zero");
    }
    return Result::Ok(a / b);
}
`)
	for _, want := range []string{
		"typedef enum {\n    Result_int_string_Ok,\n    Result_int_string_Err,\n} Result_int_string_Tag;",
		"Result_int_string_Tag tag;",
		"int ok_value;",
		"char* err_value;",
		`((Result_int_string){ .tag = Result_int_string_Err, .data = { .err_value = "div by zero" } })`,
		"((Result_int_string){ .tag = Result_int_string_Ok, .data = { .ok_value = (a / b) } })",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateMatchOnOption(t *testing.T) {
	output := generate(t, `
fn unwrap_or_zero(opt: Option<int>) -> int {
    return match opt {
        Option::Some(v) => v,
        Option::None => 0,
    };
}
`)
	for _, want := range []string{
		"switch (__match_temp_0.tag)",
		"case Option_int_Some: {",
		"int v = __match_temp_0.data.some_value;",
		"case Option_int_None: {",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateSingleInstantiation(t *testing.T) {
	output := generate(t, `
fn first() -> Option<int> {
    return Option::Some(1);
}
fn second() {
    let x: Option<int> = Option::None;
}
`)
	if got := strings.Count(output, "} Option_int_Tag;"); got != 1 {
		t.Errorf("Option_int tag enum emitted %d times, want 1", got)
	}
	if got := strings.Count(output, "} Option_int;"); got != 1 {
		t.Errorf("Option_int struct emitted %d times, want 1", got)
	}
	if !strings.Contains(output, "OPTION_INT_NONE_INIT") {
		t.Error("value-less variant macro not referenced for Option::None")
	}
}

func TestGenerateAmbiguousVariantDiagnostic(t *testing.T) {
	program := parseProgram(t, `
fn main() {
    let a: Option<int> = Option::None;
    let b: Option<string> = Option::None;
    Option::None;
}
`)
	_, err := codegen.New("test.rapt").Generate(program, nil)
	if err == nil {
		t.Fatal("expected a diagnostic, got none")
	}
	if !strings.Contains(err.Message, "Option::None") {
		t.Errorf("message %q does not name the ambiguous variant", err.Message)
	}
}

func TestGenerateInstantiationFromInitializer(t *testing.T) {
	output := generate(t, `
fn main() {
    let x = Option::Some(5);
    let s = Option::Some("hi");
}
`)
	if got := strings.Count(output, "} Option_int;"); got != 1 {
		t.Errorf("Option_int typedef emitted %d times, want 1", got)
	}
	if got := strings.Count(output, "} Option_string;"); got != 1 {
		t.Errorf("Option_string typedef emitted %d times, want 1", got)
	}
	if !strings.Contains(output, "Option_int x = ((Option_int){ .tag = Option_int_Some, .data = { .some_value = 5 } });") {
		t.Error("initializer does not construct the tracked instantiation")
	}
}

func TestGenerateTryOperator(t *testing.T) {
	output := generate(t, `
fn step() -> Result<int, string> {
    return Result::Ok(1);
}
fn chain() -> Result<int, string> {
    let v = step()?;
    return Result::Ok(v + 1);
}
`)
	for _, want := range []string{
		"Result_int_string __try_temp_0 = step();",
		"case Result_int_string_Ok:",
		"__try_result_1 = __try_temp_0.data.ok_value;",
		"case Result_int_string_Err:",
		"return ((Result_int_string) { .tag = Result_int_string_Err, .data = { .err_value = __try_temp_0.data.err_value } });",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateEnumAndStruct(t *testing.T) {
	output := generate(t, `
enum Status {
    Active = 1,
    Disabled = 2,
}
struct Point {
    x: int,
    y: int,
}
fn main() {
    let p = Point { x: 1, y: 2 };
    let s = Status::Active;
    println(p.x);
}
`)
	for _, want := range []string{
		"STATUS_ACTIVE = 1",
		"STATUS_DISABLED = 2",
		"typedef struct Point {",
		"    int x;",
		"(Point){ .x = 1, .y = 2 }",
		"STATUS_ACTIVE;",
		`printf("%d\n", p.x)`,
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateDynamicArrayOps(t *testing.T) {
	output := generate(t, `
fn main() {
    let mut items: DynamicArray[int] = new [int]();
    items.push(7);
    let n = items.length();
    let last = items.pop();
}
`)
	for _, want := range []string{
		"DynamicArray_int",
		"items.data[items.size++] = 7",
		"realloc(items.data",
		"(items.size)",
		"(items.size > 0 ? items.data[--items.size] : 0)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateStringHelpers(t *testing.T) {
	output := generate(t, `
fn main() {
    let s = "  hello  ";
    let trimmed = s.trim();
    let sub = s.substring(0, 4);
    let has = s.contains("ell");
    let joined = "a" + "b";
    let n = len(s);
}
`)
	for _, want := range []string{
		"char* rapter_trim(char* str)",
		"rapter_trim(s)",
		"rapter_substring(s, 0, 4)",
		`strstr(s, "ell")`,
		`strcpy(result, "a")`,
		`strcat(result, "b")`,
		"strlen(s)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateLoops(t *testing.T) {
	output := generate(t, `
fn main() {
    for i : 0..10 {
        println(i);
    }
    let mut total = 0;
    while total < 5 {
        total = total + 1;
    }
}
`)
	for _, want := range []string{
		"for (int i = 0; i < 10; i++) {",
		"while ((total < 5)) {",
		"total = (total + 1);",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestGenerateExternSkipsIntrinsics(t *testing.T) {
	output := generate(t, `
extern fn abs(x: int) -> int;
extern fn custom_hook(code: int) -> int;
fn main() {
    let r = custom_hook(1);
}
`)
	if strings.Contains(output, "int abs(int x);") {
		t.Error("intrinsic extern should not be redeclared")
	}
	if !strings.Contains(output, "int custom_hook(int code);") {
		t.Error("non-intrinsic extern missing")
	}
}

func TestGenerateHelpersOnlyInMainUnit(t *testing.T) {
	output := generate(t, `
fn helper(s: string) -> int {
    return s.length();
}
`)
	if strings.Contains(output, "char* rapter_substring") {
		t.Error("runtime helpers belong to the unit that owns main")
	}
	if !strings.Contains(output, "strlen(s)") {
		t.Error("length method should lower to strlen regardless")
	}
}
