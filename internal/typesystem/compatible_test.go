package typesystem

import "testing"

func TestCompatibleSymmetric(t *testing.T) {
	pairs := []struct {
		name string
		a, b Type
		want bool
	}{
		{"identical primitives", Int, Int, true},
		{"int vs float", Int, Float, false},
		{"struct vs enum same name", Struct{Name: "Color"}, Enum{Name: "Color"}, true},
		{"struct vs enum different name", Struct{Name: "Color"}, Enum{Name: "Shape"}, false},
		{"str alias", Struct{Name: "str"}, String, true},
		{"non-str struct vs string", Struct{Name: "Name"}, String, false},
		{"qualified suffix", Struct{Name: "geo.Point"}, Struct{Name: "Point"}, true},
		{"qualified wrong suffix", Struct{Name: "geo.Point"}, Struct{Name: "Pt"}, false},
		{"both qualified", Struct{Name: "a.Point"}, Struct{Name: "b.Point"}, false},
		{"pointer descent", Pointer{Elem: Struct{Name: "m.T"}}, Pointer{Elem: Struct{Name: "T"}}, true},
		{"dynamic array descent", DynamicArray{Elem: Struct{Name: "str"}}, DynamicArray{Elem: String}, true},
		{"array descent", Array{Elem: Int}, Array{Elem: Int}, true},
		{"array elem mismatch", Array{Elem: Int}, Array{Elem: Float}, false},
		{
			"generic same family",
			Generic{Name: "Option", Args: []Type{Int}},
			Generic{Name: "Option", Args: []Type{Int}},
			true,
		},
		{
			"generic different family",
			Generic{Name: "Option", Args: []Type{Int}},
			Generic{Name: "Result", Args: []Type{Int}},
			false,
		},
		{
			"generic arg via alias",
			Generic{Name: "Result", Args: []Type{Int, Struct{Name: "str"}}},
			Generic{Name: "Result", Args: []Type{Int, String}},
			true,
		},
	}

	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compatible(tt.a, tt.b); got != tt.want {
				t.Errorf("Compatible(%s, %s) = %v, want %v", Describe(tt.a), Describe(tt.b), got, tt.want)
			}
			if got := Compatible(tt.b, tt.a); got != tt.want {
				t.Errorf("Compatible(%s, %s) = %v, want %v (symmetry)", Describe(tt.b), Describe(tt.a), got, tt.want)
			}
		})
	}
}

// Suffix matching keeps Compatible non-transitive on purpose: two
// differently-qualified names both match the bare name but not each other.
func TestCompatibleNotTransitive(t *testing.T) {
	a := Struct{Name: "geometry.Point"}
	b := Struct{Name: "Point"}
	c := Struct{Name: "physics.Point"}

	if !Compatible(a, b) || !Compatible(b, c) {
		t.Fatal("expected both qualified names to match the bare name")
	}
	if Compatible(a, c) {
		t.Error("differently-qualified names must not be compatible with each other")
	}
}

func TestEqualDistinguishesKinds(t *testing.T) {
	if Equal(Struct{Name: "X"}, Enum{Name: "X"}) {
		t.Error("Equal must not alias struct and enum")
	}
	if !Equal(
		Generic{Name: "Result", Args: []Type{Int, String}},
		Generic{Name: "Result", Args: []Type{Int, String}},
	) {
		t.Error("identical instantiations must be Equal")
	}
}
