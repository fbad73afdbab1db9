package analyze

import (
	"fmt"

	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/cddl/meta"
	"github.com/blockberries/cddlc/pkg/itr"
)

// registerGroup classifies a full Group (one or more '//'-separated
// GroupChoices) backing a map or array rule: a single choice becomes a
// Table or Record directly; multiple choices synthesize an outer
// GroupChoice sum type, one variant per choice.
func (a *analyzer) registerGroup(group *cddl.Group, name string, rep itr.Representation, tag *uint64, generics []string, pos cddl.Position) *Error {
	if len(group.Choices) == 1 {
		s, err := a.buildGroupChoiceStruct(group.Choices[0], name, rep, tag)
		if err != nil {
			return err
		}
		if len(generics) > 0 {
			return a.registerGenericDef(pos, name, itr.GenericDef{Params: toIdents(generics), Body: s})
		}
		return a.registerStruct(pos, s)
	}

	if len(generics) > 0 {
		return errAt(SyntaxUnsupported, group.Pos(), "generics combined with group choices are not supported")
	}

	counts := make(nameCounts)
	variants := make([]itr.EnumVariant, 0, len(group.Choices))
	for i, choice := range group.Choices {
		variant, err := a.buildGroupChoiceVariant(choice, name, i, rep, counts)
		if err != nil {
			return err
		}
		variants = append(variants, variant)
	}
	return a.registerStruct(pos, itr.RustStruct{Kind: itr.SGroupChoice, Name: name, Tag: tag, Variants: variants, Representation: rep})
}

// buildGroupChoiceStruct classifies a single GroupChoice as a Table or
// a Record, building whichever shape applies.
func (a *analyzer) buildGroupChoiceStruct(choice *cddl.GroupChoice, name string, rep itr.Representation, tag *uint64) (itr.RustStruct, *Error) {
	if rep == itr.RepMap && isTableShape(choice) {
		entry := choice.Entries[0]
		key, err := a.lowerType1(entry.Key.Type1)
		if err != nil {
			return itr.RustStruct{}, err
		}
		value, err := a.lowerType1(entry.Value)
		if err != nil {
			return itr.RustStruct{}, err
		}
		return itr.RustStruct{Kind: itr.STable, Name: name, Tag: tag, TableKey: key, TableValue: value}, nil
	}
	record, err := a.buildRecord(choice, rep)
	if err != nil {
		return itr.RustStruct{}, err
	}
	return itr.RustStruct{Kind: itr.SRecord, Name: name, Tag: tag, Record: record}, nil
}

// buildGroupChoiceVariant builds one arm of an outer GroupChoice sum
// type. A single-entry choice wraps that entry's type directly
// (flagged serialize-as-embedded when the wrapped type is a plain
// group); a multi-entry choice is named (from "@name:" metadata, else
// "<Outer><N>") and recursively parsed as its own record.
func (a *analyzer) buildGroupChoiceVariant(choice *cddl.GroupChoice, outerName string, index int, rep itr.Representation, counts nameCounts) (itr.EnumVariant, *Error) {
	if len(choice.Entries) == 1 {
		entry := choice.Entries[0]
		ty, err := a.lowerType1WithComments(entry.Value, entry.Comments)
		if err != nil {
			return itr.EnumVariant{}, err
		}
		embedded := false
		if ty.Kind == itr.TRust {
			a.cat.SetRepIfPlainGroup(ty.Rust.Raw, rep)
			embedded = a.cat.IsPlainGroup(ty.Rust.Raw)
		}
		label := singleEntryVariantLabel(entry, ty)
		return itr.EnumVariant{Name: dedupe(label, counts), Type: ty, SerializeAsEmbeddedGroup: embedded}, nil
	}

	md := meta.Parse(choice.Comments)
	variantName := fmt.Sprintf("%s%d", outerName, index+1)
	if md.Name != nil {
		variantName = *md.Name
	}
	a.cat.MarkPlainGroup(variantName)
	record, err := a.buildRecord(choice, rep)
	if err != nil {
		return itr.EnumVariant{}, err
	}
	if err := a.cat.RegisterRustStruct(itr.RustStruct{Kind: itr.SRecord, Name: variantName, Record: record}); err != nil {
		return itr.EnumVariant{}, errAt(Unreachable, choice.Pos(), "%v", err)
	}
	return itr.EnumVariant{
		Name:                     dedupe(variantName, counts),
		Type:                     itr.Rust(itr.NewRawIdent(variantName)),
		SerializeAsEmbeddedGroup: true,
	}, nil
}

// singleEntryVariantLabel prefers an explicit bareword or named-type
// identifier for a single-entry group-choice variant, falling back to
// the type's own variant label.
func singleEntryVariantLabel(entry *cddl.GroupEntry, ty itr.RustType) string {
	if entry.Key != nil && entry.Key.Kind == cddl.KeyBareword {
		return itr.ToPascalCase(entry.Key.Bareword)
	}
	if entry.Key == nil && entry.Value.Operator == nil && entry.Value.Type2.Kind == cddl.Type2Typename && len(entry.Value.Type2.GenericArgs) == 0 {
		return itr.ToPascalCase(entry.Value.Type2.Ident)
	}
	return variantLabel(ty)
}

// buildRecord builds a record from a group choice: an ordered list of
// fields with names, types, optionality, and (map-only) keys.
func (a *analyzer) buildRecord(choice *cddl.GroupChoice, rep itr.Representation) (itr.RustRecord, *Error) {
	counts := make(nameCounts)
	fields := make([]itr.RustField, 0, len(choice.Entries))
	for i, entry := range choice.Entries {
		fieldType, err := a.lowerType1WithComments(entry.Value, entry.Comments)
		if err != nil {
			return itr.RustRecord{}, err
		}
		if fieldType.Kind == itr.TRust {
			a.cat.SetRepIfPlainGroup(fieldType.Rust.Raw, rep)
		}

		name, err := a.fieldName(entry, fieldType, counts, i)
		if err != nil {
			return itr.RustRecord{}, err
		}

		optional := entry.Occur != nil && entry.Occur.Kind == cddl.OccurOptional

		var key *itr.FixedValue
		if rep == itr.RepMap {
			k, err := memberKeyToFixedValue(entry)
			if err != nil {
				return itr.RustRecord{}, err
			}
			key = &k
		}

		fields = append(fields, itr.RustField{Name: name, Type: fieldType, Optional: optional, Key: key})
	}
	return itr.RustRecord{Representation: rep, Fields: fields}, nil
}

// memberKeyToFixedValue extracts a map field's key: bareword
// keys become Text(ident), literal keys become the matching
// FixedValue, and a Type1 wrapping a literal passes the literal
// through. A map entry with no member key at all is a fatal error.
func memberKeyToFixedValue(entry *cddl.GroupEntry) (itr.FixedValue, *Error) {
	if entry.Key == nil {
		return itr.FixedValue{}, errAt(InvalidSchema, entry.Pos(), "map fields need a member key")
	}
	switch entry.Key.Kind {
	case cddl.KeyBareword:
		return itr.NewFixedText(entry.Key.Bareword), nil

	case cddl.KeyValue:
		switch {
		case entry.Key.IsText:
			return itr.NewFixedText(entry.Key.TextValue), nil
		case entry.Key.IsNegative:
			return itr.NewFixedInt(entry.Key.IntValue), nil
		default:
			return itr.NewFixedUint(entry.Key.UintValue), nil
		}

	case cddl.KeyType1:
		t2 := entry.Key.Type1.Type2
		switch t2.Kind {
		case cddl.Type2Uint:
			return itr.NewFixedUint(t2.UintValue), nil
		case cddl.Type2Int:
			return itr.NewFixedInt(t2.IntValue), nil
		case cddl.Type2Text:
			return itr.NewFixedText(t2.TextValue), nil
		default:
			return itr.FixedValue{}, errAt(InvalidSchema, entry.Key.Pos(), "unsupported map key expression; expected an integer or text literal")
		}

	default:
		return itr.FixedValue{}, errAt(Unreachable, entry.Key.Pos(), "unknown member key kind")
	}
}
