package project

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMinimal(t *testing.T) {
	yaml := `
name: calculator
output: build/calc.c
`
	m, err := Parse([]byte(yaml), "/proj/rapter.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "calculator" {
		t.Errorf("name = %q, want calculator", m.Name)
	}
	if got := m.OutputFor("/proj/main.rapt"); got != filepath.Join("/proj", "build/calc.c") {
		t.Errorf("OutputFor = %q", got)
	}
}

func TestOutputDefaultsToInputName(t *testing.T) {
	m, err := Parse([]byte("name: x\n"), "/proj/rapter.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := m.OutputFor("/proj/main.rapt"); got != "/proj/main.c" {
		t.Errorf("OutputFor = %q, want /proj/main.c", got)
	}
}

func TestParseModulePath(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "vendor"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := `
module_path:
  - vendor
`
	m, err := Parse([]byte(yaml), filepath.Join(dir, "rapter.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	paths := m.SearchPaths()
	if len(paths) != 1 || paths[0] != filepath.Join(dir, "vendor") {
		t.Errorf("SearchPaths = %v", paths)
	}
}

func TestParseRejectsMissingModuleDir(t *testing.T) {
	dir := t.TempDir()
	yaml := `
module_path:
  - does-not-exist
`
	if _, err := Parse([]byte(yaml), filepath.Join(dir, "rapter.yaml")); err == nil {
		t.Fatal("expected error for missing module_path directory")
	}
}

func TestParseRejectsQuotedInclude(t *testing.T) {
	yaml := `
emit:
  includes:
    - "<math.h>"
`
	if _, err := Parse([]byte(yaml), "rapter.yaml"); err == nil {
		t.Fatal("expected error for angle brackets in include")
	}
}

func TestParseRejectsInvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("output: [unclosed"), "rapter.yaml"); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFindWalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	manifest := filepath.Join(root, "rapter.yaml")
	if err := os.WriteFile(manifest, []byte("name: up\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := Find(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != manifest {
		t.Errorf("Find = %q, want %q", found, manifest)
	}
}

func TestFindReturnsEmptyWithoutManifest(t *testing.T) {
	found, err := Find(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != "" {
		t.Errorf("Find = %q, want empty", found)
	}
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rapter.yaml")
	if err := os.WriteFile(path, []byte("name: disk\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Name != "disk" {
		t.Errorf("name = %q, want disk", m.Name)
	}
}
