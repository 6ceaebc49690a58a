// Package project loads the optional per-project build manifest.
//
// A rapter.yaml next to (or above) the compiled file configures the build
// without repeating flags on every invocation:
//
//	name: calculator
//	output: build/calculator.c
//	module_path:
//	  - vendor/rapt
//	emit:
//	  includes:
//	    - math.h
//
// Command-line flags override manifest values.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rapterlang/rapter/internal/config"
)

// Manifest represents the top-level rapter.yaml configuration.
type Manifest struct {
	// Name labels the project in verbose output. Optional.
	Name string `yaml:"name,omitempty"`

	// Output is the path of the generated C file, relative to the manifest
	// directory unless absolute. Defaults to the input file with a .c
	// extension.
	Output string `yaml:"output,omitempty"`

	// ModulePath lists extra directories searched for imported modules,
	// after the compiled file's own directory. Relative entries are
	// resolved against the manifest directory.
	ModulePath []string `yaml:"module_path,omitempty"`

	// Emit holds code generation options.
	Emit EmitOptions `yaml:"emit,omitempty"`

	// dir is the directory holding the manifest, for resolving relative
	// paths. Not part of the YAML surface.
	dir string
}

// EmitOptions configures the generated translation unit.
type EmitOptions struct {
	// Includes lists extra C headers emitted after the standard ones, for
	// extern functions whose prototypes live outside libc's defaults.
	Includes []string `yaml:"includes,omitempty"`
}

// Load reads and parses a rapter.yaml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses rapter.yaml content from bytes. The path argument locates
// relative entries and labels error messages.
func Parse(data []byte, path string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	m.dir = filepath.Dir(path)
	if err := m.validate(path); err != nil {
		return nil, err
	}
	return &m, nil
}

// Find searches for rapter.yaml starting from dir and walking up to parent
// directories. It returns the manifest path, or empty string when no
// manifest exists on the way to the filesystem root.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, config.ManifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// SearchPaths returns the module_path entries resolved to absolute paths.
func (m *Manifest) SearchPaths() []string {
	paths := make([]string, 0, len(m.ModulePath))
	for _, entry := range m.ModulePath {
		paths = append(paths, m.resolve(entry))
	}
	return paths
}

// OutputFor returns the output path for the given input file: the manifest's
// output entry when set, otherwise the input with its extension swapped
// for .c.
func (m *Manifest) OutputFor(input string) string {
	if m != nil && m.Output != "" {
		return m.resolve(m.Output)
	}
	return strings.TrimSuffix(input, config.SourceFileExt) + ".c"
}

func (m *Manifest) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.dir, path)
}

// validate checks the manifest for semantic errors.
func (m *Manifest) validate(path string) error {
	for i, entry := range m.ModulePath {
		if entry == "" {
			return fmt.Errorf("%s: module_path[%d] is empty", path, i)
		}
		resolved := m.resolve(entry)
		info, err := os.Stat(resolved)
		if err != nil {
			return fmt.Errorf("%s: module_path[%d]: %q not found", path, i, entry)
		}
		if !info.IsDir() {
			return fmt.Errorf("%s: module_path[%d]: %q is not a directory", path, i, entry)
		}
	}
	for i, header := range m.Emit.Includes {
		if strings.ContainsAny(header, "<>\"\n") {
			return fmt.Errorf("%s: emit.includes[%d]: %q must be a bare header name", path, i, header)
		}
	}
	return nil
}
