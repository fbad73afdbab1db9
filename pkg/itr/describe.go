package itr

import (
	"fmt"
	"strings"
)

// DescribeType renders a RustType as a compact, human-readable
// expression, used by cmd/cddlc's "translate" dump and by tests that
// want to assert on shape without a deep reflect.DeepEqual.
func DescribeType(t RustType) string {
	switch t.Kind {
	case TFixed:
		return describeFixed(t.Fixed)
	case TPrimitive:
		return t.Primitive.String()
	case TRust:
		return t.Rust.Raw
	case TAlias:
		return fmt.Sprintf("Alias(%s -> %s)", t.Rust.Raw, DescribeType(*t.Inner))
	case TTagged:
		return fmt.Sprintf("Tagged(%d, %s)", t.Tag, DescribeType(*t.Inner))
	case TOptional:
		return fmt.Sprintf("Optional(%s)", DescribeType(*t.Inner))
	case TArray:
		return fmt.Sprintf("Array(%s)", DescribeType(*t.Elem))
	case TMap:
		return fmt.Sprintf("Map(%s, %s)", DescribeType(*t.Key), DescribeType(*t.Value))
	case TCBORBytes:
		return fmt.Sprintf("CBORBytes(%s)", DescribeType(*t.Inner))
	default:
		return "?"
	}
}

func describeFixed(f FixedValue) string {
	switch f.Kind {
	case FixedUint:
		return fmt.Sprintf("Fixed(%d)", f.Uint)
	case FixedInt:
		return fmt.Sprintf("Fixed(%d)", f.Int)
	case FixedText:
		return fmt.Sprintf("Fixed(%q)", f.Text)
	default:
		return "Fixed(?)"
	}
}

func describeBounds(b *Bounds) string {
	if b == nil {
		return "(-inf, +inf)"
	}
	low := "-inf"
	if b.HasLow {
		low = fmt.Sprintf("%d", b.Low)
	}
	high := "+inf"
	if b.HasHigh {
		high = fmt.Sprintf("%d", b.High)
	}
	return fmt.Sprintf("[%s, %s]", low, high)
}

func describeTag(tag *uint64) string {
	if tag == nil {
		return ""
	}
	return fmt.Sprintf("#6.%d ", *tag)
}

// DescribeStruct renders a RustStruct the same way DescribeType renders
// a RustType: compact and stable, suitable for a CLI dump or an
// assertion in a table-driven test.
func DescribeStruct(s RustStruct) string {
	tag := describeTag(s.Tag)
	switch s.Kind {
	case SRecord:
		return fmt.Sprintf("%srecord %s %s", tag, s.Name, describeRecord(s.Record))
	case STable:
		return fmt.Sprintf("%stable %s { %s => %s }", tag, s.Name, DescribeType(s.TableKey), DescribeType(s.TableValue))
	case SWrapper:
		return fmt.Sprintf("%swrapper %s(%s) %s", tag, s.Name, DescribeType(s.WrapperInner), describeBounds(s.WrapperBounds))
	case STypeChoice:
		return fmt.Sprintf("%stype-choice %s %s", tag, s.Name, describeVariants(s.Variants))
	case SGroupChoice:
		return fmt.Sprintf("%sgroup-choice %s (%s) %s", tag, s.Name, repString(s.Representation), describeVariants(s.Variants))
	default:
		return fmt.Sprintf("?struct %s", s.Name)
	}
}

func repString(r Representation) string {
	if r == RepArray {
		return "array"
	}
	return "map"
}

func describeRecord(r RustRecord) string {
	var sb strings.Builder
	sb.WriteString(repString(r.Representation))
	sb.WriteString(" { ")
	for i, f := range r.Fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.Name)
		if f.Optional {
			sb.WriteString("?")
		}
		if f.Key != nil {
			sb.WriteString(fmt.Sprintf("[%s]", describeFixed(*f.Key)))
		}
		sb.WriteString(": ")
		sb.WriteString(DescribeType(f.Type))
	}
	sb.WriteString(" }")
	return sb.String()
}

func describeVariants(variants []EnumVariant) string {
	var sb strings.Builder
	sb.WriteString("{ ")
	for i, v := range variants {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(v.Name)
		sb.WriteString(": ")
		sb.WriteString(DescribeType(v.Type))
		if v.SerializeAsEmbeddedGroup {
			sb.WriteString(" (embedded)")
		}
	}
	sb.WriteString(" }")
	return sb.String()
}

// Describe renders whatever was registered under name — an alias, a
// struct, a generic definition, or a generic instance — or reports
// false if name was never registered.
func (c *Catalog) Describe(name string) (string, bool) {
	if ty, ok := c.Alias(name); ok {
		return fmt.Sprintf("alias %s = %s", name, DescribeType(ty)), true
	}
	if s, ok := c.Struct(name); ok {
		return DescribeStruct(*s), true
	}
	if def, ok := c.GenericDefByName(name); ok {
		params := make([]string, len(def.Params))
		for i, p := range def.Params {
			params[i] = p.Raw
		}
		return fmt.Sprintf("generic %s<%s> %s", name, strings.Join(params, ", "), DescribeStruct(def.Body)), true
	}
	if inst, ok := c.GenericInstanceByName(name); ok {
		args := make([]string, len(inst.Args))
		for i, a := range inst.Args {
			args[i] = DescribeType(a)
		}
		return fmt.Sprintf("generic-instance %s = %s<%s>", name, inst.BaseName, strings.Join(args, ", ")), true
	}
	return "", false
}
