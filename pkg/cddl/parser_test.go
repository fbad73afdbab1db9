package cddl

import "testing"

func TestParseSimpleAlias(t *testing.T) {
	input := `foo = uint`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(file.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(file.Rules))
	}

	rule := file.Rules[0]
	if rule.Kind != RuleType {
		t.Fatalf("expected RuleType, got %v", rule.Kind)
	}
	if rule.Name != "foo" {
		t.Errorf("expected name %q, got %q", "foo", rule.Name)
	}
	if len(rule.TypeValue.Choices) != 1 {
		t.Fatalf("expected 1 choice, got %d", len(rule.TypeValue.Choices))
	}
	t2 := rule.TypeValue.Choices[0].Type2
	if t2.Kind != Type2Typename || t2.Ident != "uint" {
		t.Errorf("expected typename 'uint', got %+v", t2)
	}
}

func TestParseControlOperator(t *testing.T) {
	input := `foo = uint .size 2`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	op := file.Rules[0].TypeValue.Choices[0].Operator
	if op == nil {
		t.Fatal("expected a control operator")
	}
	if op.Kind != OpControl || op.Ctrl != "size" {
		t.Errorf("expected control op 'size', got %+v", op)
	}
}

func TestParseRange(t *testing.T) {
	input := `foo = 0..32`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	op := file.Rules[0].TypeValue.Choices[0].Operator
	if op == nil || op.Kind != OpRange || !op.IsInclusive {
		t.Fatalf("expected inclusive range operator, got %+v", op)
	}
}

func TestParseTypeChoice(t *testing.T) {
	input := `foo = int / tstr / bool`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(file.Rules[0].TypeValue.Choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(file.Rules[0].TypeValue.Choices))
	}
}

func TestParseRecord(t *testing.T) {
	input := `point = { x: int, y: int }`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	t2 := file.Rules[0].TypeValue.Choices[0].Type2
	if t2.Kind != Type2Map {
		t.Fatalf("expected Type2Map, got %v", t2.Kind)
	}
	group := t2.Group
	if len(group.Choices) != 1 {
		t.Fatalf("expected 1 group choice, got %d", len(group.Choices))
	}
	entries := group.Choices[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Key == nil || entries[0].Key.Kind != KeyBareword || entries[0].Key.Bareword != "x" {
		t.Errorf("expected bareword key 'x', got %+v", entries[0].Key)
	}
}

func TestParseTable(t *testing.T) {
	input := `kv = { * uint => tstr }`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	entries := file.Rules[0].TypeValue.Choices[0].Type2.Group.Choices[0].Entries
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Occur == nil || entry.Occur.Kind != OccurZeroOrMore {
		t.Fatalf("expected '*' occurrence, got %+v", entry.Occur)
	}
	if entry.Key == nil || entry.Key.Kind != KeyType1 {
		t.Fatalf("expected Type1 member key, got %+v", entry.Key)
	}
}

func TestParseArray(t *testing.T) {
	input := `list = [ int, int ]`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	t2 := file.Rules[0].TypeValue.Choices[0].Type2
	if t2.Kind != Type2Array {
		t.Fatalf("expected Type2Array, got %v", t2.Kind)
	}
}

func TestParseTagged(t *testing.T) {
	input := `tagged = #6.24(bytes)`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	t2 := file.Rules[0].TypeValue.Choices[0].Type2
	if t2.Kind != Type2Tagged || t2.Tag != 24 {
		t.Fatalf("expected tag 24, got %+v", t2)
	}
}

func TestParseGenericRule(t *testing.T) {
	input := `wrapper<T> = { value: T }`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	rule := file.Rules[0]
	if len(rule.GenericParams) != 1 || rule.GenericParams[0] != "T" {
		t.Fatalf("expected generic param 'T', got %+v", rule.GenericParams)
	}
}

func TestParseGroupRule(t *testing.T) {
	input := `common = ( a: int, b: int )`

	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	rule := file.Rules[0]
	if rule.Kind != RuleGroup {
		t.Fatalf("expected RuleGroup, got %v", rule.Kind)
	}
	if len(rule.GroupValue.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rule.GroupValue.Entries))
	}
}

func TestParseCommentMetadataOnGroupChoice(t *testing.T) {
	input := `
thing = {
	; @name: VariantOne
	a: int, b: int
	//
	; @name: VariantTwo
	c: tstr
}
`
	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	group := file.Rules[0].TypeValue.Choices[0].Type2.Group
	if len(group.Choices) != 2 {
		t.Fatalf("expected 2 group choices, got %d", len(group.Choices))
	}
	if len(group.Choices[0].Comments) == 0 {
		t.Fatal("expected comments on first group choice")
	}
	if group.Choices[0].Comments[0].Text != "@name: VariantOne" {
		t.Errorf("expected %q, got %q", "@name: VariantOne", group.Choices[0].Comments[0].Text)
	}
}

func TestParseTrailingCommentAttachesToRule(t *testing.T) {
	input := `foo = uint ; @newtype
bar = int
`
	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(file.Rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(file.Rules))
	}
	foo := file.Rules[0]
	if len(foo.Comments) != 1 || foo.Comments[0].Text != "@newtype" {
		t.Errorf("expected @newtype comment on foo, got %+v", foo.Comments)
	}
	if len(file.Rules[1].Comments) != 0 {
		t.Errorf("expected no comments on bar, got %+v", file.Rules[1].Comments)
	}
}

func TestParseCommentBeforeClosingBrace(t *testing.T) {
	input := `point = {
	x: int, ; the x coordinate
	y: int  ; the y coordinate
}
`
	file, errs := ParseFile("test.cddl", input)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	entries := file.Rules[0].TypeValue.Choices[0].Type2.Group.Choices[0].Entries
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
}

func TestParseErrorRecovery(t *testing.T) {
	input := `
foo = %
bar = int
`
	file, errs := ParseFile("test.cddl", input)
	if len(errs) == 0 {
		t.Fatal("expected at least one parse error")
	}
	found := false
	for _, r := range file.Rules {
		if r.Name == "bar" {
			found = true
		}
	}
	if !found {
		t.Error("expected parser to recover and still parse 'bar'")
	}
}
