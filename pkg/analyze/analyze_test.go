package analyze

import (
	"testing"

	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/itr"
)

func mustAnalyze(t *testing.T, src string) *itr.Catalog {
	t.Helper()
	file, errs := cddl.ParseFile("test.cddl", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	cat := itr.NewCatalog()
	if err := Run(file, cat); err != nil {
		t.Fatalf("unexpected analyze error: %v", err)
	}
	return cat
}

func analyzeExpectError(t *testing.T, src string) *Error {
	t.Helper()
	file, errs := cddl.ParseFile("test.cddl", src)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	cat := itr.NewCatalog()
	err := Run(file, cat)
	if err == nil {
		t.Fatal("expected an analyze error, got none")
	}
	return err
}

func TestExactWidthRangePromotesToPrimitive(t *testing.T) {
	cat := mustAnalyze(t, `foo = uint .size 2`)
	ty, ok := cat.Alias("foo")
	if !ok {
		t.Fatal("expected foo to be registered as an alias")
	}
	if ty.Kind != itr.TPrimitive || ty.Primitive != itr.U16 {
		t.Errorf("expected Primitive(U16), got %s", itr.DescribeType(ty))
	}
}

func TestNonExactWidthRangeIsRejected(t *testing.T) {
	err := analyzeExpectError(t, `foo = uint .size 3`)
	if err.Kind != SyntaxUnsupported {
		t.Errorf("expected SyntaxUnsupported, got %v", err.Kind)
	}
}

func TestBytesSizeRangeProducesWrapperWithBounds(t *testing.T) {
	cat := mustAnalyze(t, `bar = bytes .size (0..32)`)
	s, ok := cat.Struct("bar")
	if !ok {
		t.Fatal("expected bar to be registered as a struct")
	}
	if s.Kind != itr.SWrapper {
		t.Fatalf("expected SWrapper, got %v", s.Kind)
	}
	if s.WrapperBounds == nil || !s.WrapperBounds.HasLow || s.WrapperBounds.Low != 0 || !s.WrapperBounds.HasHigh || s.WrapperBounds.High != 32 {
		t.Errorf("expected bounds [0, 32], got %+v", s.WrapperBounds)
	}
}

func TestOptionalCanonicalizationBothOrders(t *testing.T) {
	catA := mustAnalyze(t, `maybe = int / null`)
	catB := mustAnalyze(t, `maybe = null / int`)

	tyA, _ := catA.Alias("maybe")
	tyB, _ := catB.Alias("maybe")

	if itr.DescribeType(tyA) != itr.DescribeType(tyB) {
		t.Errorf("expected both orderings to produce the same shape, got %s vs %s", itr.DescribeType(tyA), itr.DescribeType(tyB))
	}
	if tyA.Kind != itr.TOptional {
		t.Fatalf("expected Optional, got %v", tyA.Kind)
	}
}

func TestNullNullIsConsistentOptional(t *testing.T) {
	cat := mustAnalyze(t, `weird = null / null`)
	ty, ok := cat.Alias("weird")
	if !ok {
		t.Fatal("expected weird to be registered")
	}
	if ty.Kind != itr.TOptional {
		t.Fatalf("expected Optional, got %v", ty.Kind)
	}
}

func TestMapWithType1KeyedEntryIsTable(t *testing.T) {
	cat := mustAnalyze(t, `kv = { * uint => tstr }`)
	s, ok := cat.Struct("kv")
	if !ok {
		t.Fatal("expected kv to be registered as a struct")
	}
	if s.Kind != itr.STable {
		t.Fatalf("expected STable, got %v", s.Kind)
	}
	if s.TableKey.Kind != itr.TPrimitive || s.TableKey.Primitive != itr.U64 {
		t.Errorf("expected table key Primitive(U64), got %s", itr.DescribeType(s.TableKey))
	}
}

func TestArrayBecomesRecord(t *testing.T) {
	cat := mustAnalyze(t, `point = [x: int, y: int]`)
	s, ok := cat.Struct("point")
	if !ok {
		t.Fatal("expected point to be registered as a struct")
	}
	if s.Kind != itr.SRecord {
		t.Fatalf("expected SRecord, got %v", s.Kind)
	}
	if s.Record.Representation != itr.RepArray {
		t.Errorf("expected array representation, got %v", s.Record.Representation)
	}
	if len(s.Record.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(s.Record.Fields))
	}
	if s.Record.Fields[0].Name != "x" || s.Record.Fields[1].Name != "y" {
		t.Errorf("expected fields x, y, got %+v", s.Record.Fields)
	}
}

func TestTaggedCBORAlias(t *testing.T) {
	cat := mustAnalyze(t, `foo = uint
tagged = #6.24(bytes .cbor foo)`)
	ty, ok := cat.Alias("tagged")
	if !ok {
		t.Fatal("expected tagged to be registered as an alias")
	}
	if ty.Kind != itr.TTagged || ty.Tag != 24 {
		t.Fatalf("expected Tagged(24, ...), got %s", itr.DescribeType(ty))
	}
	if ty.Inner.Kind != itr.TCBORBytes {
		t.Fatalf("expected inner CBORBytes, got %s", itr.DescribeType(*ty.Inner))
	}
	if ty.Inner.Inner.Kind != itr.TPrimitive || ty.Inner.Inner.Primitive != itr.U64 {
		t.Errorf("expected .cbor operand resolved to Primitive(U64), got %s", itr.DescribeType(*ty.Inner.Inner))
	}
}

func TestCBORForwardReferenceFails(t *testing.T) {
	err := analyzeExpectError(t, `tagged = #6.24(bytes .cbor foo)
foo = uint`)
	if err.Kind != UnresolvedReference {
		t.Errorf("expected UnresolvedReference, got %v", err.Kind)
	}
}

func TestUnionRegistersTypeChoiceWithAllVariants(t *testing.T) {
	cat := mustAnalyze(t, `u = int / tstr / bool`)
	names := cat.Names()
	if len(names) != 1 {
		t.Fatalf("expected 1 registered name, got %v", names)
	}
	s, ok := cat.Struct(names[0])
	if !ok || s.Kind != itr.STypeChoice {
		t.Fatalf("expected a registered type choice, got %v", s)
	}
	if len(s.Variants) != 3 {
		t.Fatalf("expected 3 variants, got %d", len(s.Variants))
	}
}

func TestFieldNameDeduplicationWithinRecord(t *testing.T) {
	cat := mustAnalyze(t, `dup = {a: int, a: int}`)
	s, ok := cat.Struct("dup")
	if !ok {
		t.Fatal("expected dup to be registered")
	}
	if len(s.Record.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(s.Record.Fields))
	}
	if s.Record.Fields[0].Name != "a" {
		t.Errorf("expected first field named 'a', got %q", s.Record.Fields[0].Name)
	}
	if s.Record.Fields[1].Name != "a2" {
		t.Errorf("expected second field named 'a2', got %q", s.Record.Fields[1].Name)
	}
}

func TestNestedTaggingIsRejected(t *testing.T) {
	err := analyzeExpectError(t, `bad = { f: #6.1(#6.2(int)) }`)
	if err.Kind != InvalidSchema {
		t.Errorf("expected InvalidSchema, got %v", err.Kind)
	}
}

func TestNestedTaggingAtRulePositionIsRejected(t *testing.T) {
	err := analyzeExpectError(t, `bad = #6.1(#6.2(int))`)
	if err.Kind != InvalidSchema {
		t.Errorf("expected InvalidSchema, got %v", err.Kind)
	}
}

func TestUnresolvedForwardReferenceInTaggedTypenameFails(t *testing.T) {
	err := analyzeExpectError(t, `tagged = #6.24(foo)
foo = int`)
	if err.Kind != UnresolvedReference {
		t.Errorf("expected UnresolvedReference, got %v", err.Kind)
	}
}

func TestGenericDefinitionAndInstantiation(t *testing.T) {
	cat := mustAnalyze(t, `wrapper<T> = { value: T }
concrete = wrapper<int>`)
	def, ok := cat.GenericDefByName("wrapper")
	if !ok {
		t.Fatal("expected wrapper to be registered as a generic def")
	}
	if len(def.Params) != 1 || def.Params[0].Raw != "T" {
		t.Errorf("expected one param 'T', got %+v", def.Params)
	}

	inst, ok := cat.GenericInstanceByName("concrete")
	if !ok {
		t.Fatal("expected concrete to be registered as a generic instance")
	}
	if inst.BaseName != "wrapper" {
		t.Errorf("expected base name 'wrapper', got %q", inst.BaseName)
	}
}

func TestAliasIdempotence(t *testing.T) {
	cat := mustAnalyze(t, `a = uint
c = a`)
	chasedA, okA := cat.ApplyTypeAliases("a")
	chasedC, okC := cat.ApplyTypeAliases("c")
	if !okA || !okC {
		t.Fatal("expected both aliases to resolve")
	}
	if itr.DescribeType(chasedA) != itr.DescribeType(chasedC) {
		t.Errorf("expected identical chased forms, got %s vs %s", itr.DescribeType(chasedA), itr.DescribeType(chasedC))
	}
}

func TestSingleEntryBarewordMapIsRecord(t *testing.T) {
	cat := mustAnalyze(t, `one = { a: int }`)
	s, ok := cat.Struct("one")
	if !ok {
		t.Fatal("expected one to be registered as a struct")
	}
	if s.Kind != itr.SRecord {
		t.Fatalf("expected SRecord (bareword key is not a table), got %v", s.Kind)
	}
	if len(s.Record.Fields) != 1 || s.Record.Fields[0].Name != "a" {
		t.Errorf("expected a single field 'a', got %+v", s.Record.Fields)
	}
}

func TestTaggedBuiltinTypename(t *testing.T) {
	cat := mustAnalyze(t, `tagged = #6.24(uint)`)
	ty, ok := cat.Alias("tagged")
	if !ok {
		t.Fatal("expected tagged to be registered as an alias")
	}
	if ty.Kind != itr.TTagged || ty.Tag != 24 {
		t.Fatalf("expected Tagged(24, ...), got %s", itr.DescribeType(ty))
	}
	if ty.Inner.Kind != itr.TPrimitive || ty.Inner.Primitive != itr.U64 {
		t.Errorf("expected inner Primitive(U64), got %s", itr.DescribeType(*ty.Inner))
	}
}

func TestBytesSizeInFieldPositionDropsBounds(t *testing.T) {
	cat := mustAnalyze(t, `msg = { payload: bytes .size (0..64) }`)
	s, ok := cat.Struct("msg")
	if !ok {
		t.Fatal("expected msg to be registered")
	}
	f := s.Record.Fields[0]
	if f.Type.Kind != itr.TPrimitive || f.Type.Primitive != itr.Bytes {
		t.Errorf("expected field type Primitive(Bytes), got %s", itr.DescribeType(f.Type))
	}
}

func TestFullWidthSizePromotesToU64(t *testing.T) {
	cat := mustAnalyze(t, `big = uint .size 8`)
	ty, ok := cat.Alias("big")
	if !ok {
		t.Fatal("expected big to be registered as an alias")
	}
	if ty.Kind != itr.TPrimitive || ty.Primitive != itr.U64 {
		t.Errorf("expected Primitive(U64), got %s", itr.DescribeType(ty))
	}
}

func TestNewtypeCommentProducesWrapper(t *testing.T) {
	cat := mustAnalyze(t, `amount = uint ; @newtype`)
	s, ok := cat.Struct("amount")
	if !ok {
		t.Fatal("expected amount to be registered as a struct")
	}
	if s.Kind != itr.SWrapper {
		t.Fatalf("expected SWrapper, got %v", s.Kind)
	}
	if s.WrapperInner.Kind != itr.TPrimitive || s.WrapperInner.Primitive != itr.U64 {
		t.Errorf("expected inner Primitive(U64), got %s", itr.DescribeType(s.WrapperInner))
	}
	if s.WrapperBounds != nil {
		t.Errorf("expected no bounds, got %+v", s.WrapperBounds)
	}
}

func TestTopLevelGroupRuleDefaultsToMapWhenUnreferenced(t *testing.T) {
	cat := mustAnalyze(t, `shared = (a: int, b: int)`)
	s, ok := cat.Struct("shared")
	if !ok {
		t.Fatal("expected shared to be registered")
	}
	if s.Record.Representation != itr.RepMap {
		t.Errorf("expected default Map representation, got %v", s.Record.Representation)
	}
}

func TestGroupChoiceSumTypeNamedFromComment(t *testing.T) {
	cat := mustAnalyze(t, `thing = {
	; @name: VariantOne
	a: int, b: int
	//
	; @name: VariantTwo
	c: tstr, d: tstr
}`)
	s, ok := cat.Struct("thing")
	if !ok {
		t.Fatal("expected thing to be registered")
	}
	if s.Kind != itr.SGroupChoice {
		t.Fatalf("expected SGroupChoice, got %v", s.Kind)
	}
	if len(s.Variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(s.Variants))
	}
	if s.Variants[0].Name != "VariantOne" || s.Variants[1].Name != "VariantTwo" {
		t.Errorf("expected names from @name comments, got %+v", s.Variants)
	}
}
