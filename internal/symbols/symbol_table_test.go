package symbols

import (
	"testing"

	"github.com/rapterlang/rapter/internal/typesystem"
)

func TestInsertRejectsSameScopeDuplicates(t *testing.T) {
	table := NewTable()

	if !table.Insert(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Int}) {
		t.Fatal("first insert failed")
	}
	if table.Insert(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Float}) {
		t.Error("duplicate insert in the same scope should fail")
	}

	sym, ok := table.Lookup("x")
	if !ok || !typesystem.Equal(sym.Type, typesystem.Int) {
		t.Errorf("lookup after failed duplicate = %v, want original int symbol", sym.Type)
	}
}

func TestShadowingAcrossScopes(t *testing.T) {
	table := NewTable()
	table.Insert(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.Int})

	table.EnterScope()
	if !table.Insert(Symbol{Name: "x", Kind: VariableSymbol, Type: typesystem.String}) {
		t.Fatal("shadowing in an inner scope should succeed")
	}
	sym, _ := table.Lookup("x")
	if !typesystem.Equal(sym.Type, typesystem.String) {
		t.Errorf("inner lookup = %v, want string", sym.Type)
	}

	table.ExitScope()
	sym, _ = table.Lookup("x")
	if !typesystem.Equal(sym.Type, typesystem.Int) {
		t.Errorf("outer lookup after exit = %v, want int", sym.Type)
	}
}

func TestExitNeverPopsGlobalScope(t *testing.T) {
	table := NewTable()
	table.Insert(Symbol{Name: "g", Kind: FunctionSymbol, Type: typesystem.Int})
	table.ExitScope()
	table.ExitScope()
	if _, ok := table.Lookup("g"); !ok {
		t.Error("global symbol lost after extra ExitScope calls")
	}
}

func TestStructAndEnumLayouts(t *testing.T) {
	table := NewTable()
	table.DefineStruct("Point",
		[]string{"x", "y"},
		[]typesystem.Type{typesystem.Int, typesystem.Int})
	table.DefineEnum("Color", []string{"Red", "Green", "Blue"}, []int64{0, 5, 6})

	if ft, ok := table.StructField("Point", "x"); !ok || !typesystem.Equal(ft, typesystem.Int) {
		t.Errorf("StructField(Point, x) = %v, %v", ft, ok)
	}
	if _, ok := table.StructField("Point", "z"); ok {
		t.Error("unknown field should not resolve")
	}

	if v, ok := table.EnumVariant("Color", "Green"); !ok || v != 5 {
		t.Errorf("EnumVariant(Color, Green) = %d, %v, want 5", v, ok)
	}
	order, _ := table.EnumVariants("Color")
	if len(order) != 3 || order[0] != "Red" || order[2] != "Blue" {
		t.Errorf("variant order = %v", order)
	}
}
