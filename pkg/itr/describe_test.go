package itr

import "testing"

func TestDescribeTypePrimitive(t *testing.T) {
	got := DescribeType(PrimitiveType(U16))
	if got != "U16" {
		t.Errorf("expected %q, got %q", "U16", got)
	}
}

func TestDescribeTypeOptional(t *testing.T) {
	got := DescribeType(Optional(Rust(NewRawIdent("Thing"))))
	if got != "Optional(Thing)" {
		t.Errorf("expected %q, got %q", "Optional(Thing)", got)
	}
}

func TestDescribeTypeTagged(t *testing.T) {
	got := DescribeType(Tagged(24, CBORBytes(Rust(NewRawIdent("Foo")))))
	if got != "Tagged(24, CBORBytes(Foo))" {
		t.Errorf("expected %q, got %q", "Tagged(24, CBORBytes(Foo))", got)
	}
}

func TestDescribeStructTable(t *testing.T) {
	s := RustStruct{Kind: STable, Name: "kv", TableKey: PrimitiveType(Str), TableValue: PrimitiveType(Str)}
	got := DescribeStruct(s)
	want := "table kv { Str => Str }"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestDescribeStructRecord(t *testing.T) {
	s := RustStruct{
		Kind: SRecord,
		Name: "point",
		Record: RustRecord{
			Representation: RepArray,
			Fields: []RustField{
				{Name: "x", Type: PrimitiveType(I64)},
				{Name: "y", Type: PrimitiveType(I64), Optional: true},
			},
		},
	}
	got := DescribeStruct(s)
	want := "record point array { x: I64, y?: I64 }"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestCatalogDescribeDispatchesByKind(t *testing.T) {
	cat := NewCatalog()
	_ = cat.RegisterTypeAlias("foo", PrimitiveType(U8), true, true)
	_ = cat.RegisterRustStruct(RustStruct{Kind: STable, Name: "kv", TableKey: PrimitiveType(Str), TableValue: PrimitiveType(Str)})

	if desc, ok := cat.Describe("foo"); !ok || desc != "alias foo = U8" {
		t.Errorf("expected alias description, got %q (ok=%v)", desc, ok)
	}
	if desc, ok := cat.Describe("kv"); !ok || desc != "table kv { Str => Str }" {
		t.Errorf("expected table description, got %q (ok=%v)", desc, ok)
	}
	if _, ok := cat.Describe("missing"); ok {
		t.Error("expected lookup of unregistered name to fail")
	}
}
