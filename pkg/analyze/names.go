package analyze

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/cddl/meta"
	"github.com/blockberries/cddlc/pkg/itr"
)

// nameCounts tracks how many times a synthesized name has been used
// within one scope (one record's fields, or one union's variants), so
// repeats can be deduplicated with a numeric suffix.
type nameCounts map[string]int

// dedupe returns name unchanged on its first use within counts; on
// subsequent uses it appends an incrementing numeric suffix.
func dedupe(name string, counts nameCounts) string {
	counts[name]++
	n := counts[name]
	if n == 1 {
		return name
	}
	return fmt.Sprintf("%s%d", name, n)
}

// fieldName resolves a group entry's field name — explicit member key
// first, then the field's type, then comment metadata, then a positional
// fallback — and deduplicates it against the record's running counts.
func (a *analyzer) fieldName(entry *cddl.GroupEntry, fieldType itr.RustType, counts nameCounts, position int) (string, *Error) {
	raw, err := a.rawFieldName(entry, fieldType, position)
	if err != nil {
		return "", err
	}
	return dedupe(raw, counts), nil
}

func (a *analyzer) rawFieldName(entry *cddl.GroupEntry, fieldType itr.RustType, position int) (string, *Error) {
	if entry.Key != nil {
		switch entry.Key.Kind {
		case cddl.KeyBareword:
			return itr.ToSnakeCase(entry.Key.Bareword), nil

		case cddl.KeyValue:
			md := meta.Parse(entry.Comments)
			if md.Name != nil {
				return *md.Name, nil
			}
			return "key_" + valueLabel(entry.Key), nil

		case cddl.KeyType1:
			if n, ok := entry.Key.Type1.Type2.NumberLiteral(); ok {
				return "key_" + strconv.FormatInt(n, 10), nil
			}
			md := meta.Parse(entry.Comments)
			if md.Name != nil {
				return *md.Name, nil
			}
			return fmt.Sprintf("index_%d", position), nil
		}
	}

	if name, ok := deriveFieldNameFromType(fieldType); ok {
		return name, nil
	}

	md := meta.Parse(entry.Comments)
	if md.Name != nil {
		return *md.Name, nil
	}
	return fmt.Sprintf("index_%d", position), nil
}

// valueLabel renders a literal MemberKey value for use in "key_<v>" names.
func valueLabel(k *cddl.MemberKey) string {
	switch {
	case k.IsText:
		return k.TextValue
	case k.IsNegative:
		return strconv.FormatInt(k.IntValue, 10)
	default:
		return strconv.FormatUint(k.UintValue, 10)
	}
}

// deriveFieldNameFromType derives a field name from the field's lowered
// type when no member key is present.
func deriveFieldNameFromType(t itr.RustType) (string, bool) {
	switch t.Kind {
	case itr.TRust, itr.TAlias:
		return itr.ToSnakeCase(t.Rust.Raw), true
	case itr.TFixed:
		if t.Fixed.Kind == itr.FixedText {
			return t.Fixed.Text, true
		}
		return "", false
	case itr.TArray:
		if inner, ok := deriveFieldNameFromType(*t.Elem); ok {
			return inner + "s", true
		}
		return "", false
	case itr.TOptional:
		return deriveFieldNameFromType(*t.Inner)
	default:
		return "", false
	}
}

// variantLabel derives the name fragment a type contributes to a
// synthesized union name or a type-choice variant.
func variantLabel(t itr.RustType) string {
	switch t.Kind {
	case itr.TFixed:
		switch t.Fixed.Kind {
		case itr.FixedText:
			return "Text"
		default:
			return "Int"
		}
	case itr.TPrimitive:
		switch t.Primitive {
		case itr.Str:
			return "Text"
		case itr.Bytes:
			return "Bytes"
		default:
			return "Int"
		}
	case itr.TRust, itr.TAlias:
		return itr.ToPascalCase(t.Rust.Raw)
	case itr.TTagged:
		return variantLabel(*t.Inner)
	case itr.TOptional:
		return variantLabel(*t.Inner)
	case itr.TArray:
		return variantLabel(*t.Elem) + "s"
	case itr.TMap:
		return "Map"
	case itr.TCBORBytes:
		return "CBORBytes"
	default:
		return "Value"
	}
}

// unionName concatenates each variant's label with "Or", e.g. IntOrText.
// Both left- and right-associative nestings of a type-choice list
// normalize to the same flat concatenation; the collision is accepted.
func unionName(labels []string) string {
	return strings.Join(labels, "Or")
}

// genericInstanceName synthesizes "<BaseName>_<arg1>_<arg2>_..." for an
// anonymous generic instantiation.
func genericInstanceName(base string, args []itr.RustType) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, base)
	for _, arg := range args {
		parts = append(parts, variantLabel(arg))
	}
	return strings.Join(parts, "_")
}
