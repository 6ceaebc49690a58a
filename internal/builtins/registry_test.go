package builtins

import (
	"testing"

	"github.com/rapterlang/rapter/internal/typesystem"
)

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"Option", "Result"} {
		if !r.IsBuiltin(name) {
			t.Errorf("IsBuiltin(%q) = false, want true", name)
		}
		if _, ok := r.Lookup(name); !ok {
			t.Errorf("Lookup(%q) failed", name)
		}
	}

	if r.IsBuiltin("List") {
		t.Error("IsBuiltin(\"List\") = true, want false")
	}
}

func TestSubstituteArity(t *testing.T) {
	r := NewRegistry()
	option, _ := r.Lookup("Option")
	result, _ := r.Lookup("Result")

	tests := []struct {
		name    string
		generic *GenericType
		args    []typesystem.Type
		wantErr bool
	}{
		{"option one arg", option, []typesystem.Type{typesystem.Int}, false},
		{"option no args", option, nil, true},
		{"option two args", option, []typesystem.Type{typesystem.Int, typesystem.Int}, true},
		{"result two args", result, []typesystem.Type{typesystem.Int, typesystem.String}, false},
		{"result one arg", result, []typesystem.Type{typesystem.Int}, true},
		{"result three args", result, []typesystem.Type{typesystem.Int, typesystem.Int, typesystem.Int}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.generic.Substitute(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Substitute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			g, ok := got.(typesystem.Generic)
			if !ok {
				t.Fatalf("Substitute() = %T, want Generic", got)
			}
			if g.Name != tt.generic.Name || len(g.Args) != len(tt.args) {
				t.Errorf("Substitute() = %s, args mismatch", g)
			}
		})
	}
}

func TestVariantValueType(t *testing.T) {
	r := NewRegistry()
	result, _ := r.Lookup("Result")
	args := []typesystem.Type{typesystem.Int, typesystem.String}

	okType, ok := result.VariantValueType("Ok", args)
	if !ok || !typesystem.Equal(okType, typesystem.Int) {
		t.Errorf("Ok payload = %v, want int", okType)
	}

	errType, ok := result.VariantValueType("Err", args)
	if !ok || !typesystem.Equal(errType, typesystem.String) {
		t.Errorf("Err payload = %v, want string", errType)
	}

	option, _ := r.Lookup("Option")
	if _, ok := option.VariantValueType("None", []typesystem.Type{typesystem.Int}); ok {
		t.Error("None should carry no value")
	}
	if _, ok := option.VariantValueType("Nope", []typesystem.Type{typesystem.Int}); ok {
		t.Error("unknown variant should report false")
	}
}
