package analyze

import (
	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/cddl/meta"
	"github.com/blockberries/cddlc/pkg/itr"
)

// lowerType1 is the entry point used by callers with no nearby
// comment metadata (e.g. recursing into tagged-data inner types).
func (a *analyzer) lowerType1(t1 *cddl.Type1) (itr.RustType, *Error) {
	return a.lowerType1WithComments(t1, nil)
}

// lowerType1WithComments maps a Type1 AST node to a RustType
// expression. comments carries whatever metadata block is nearest to t1 (a
// rule's or a group entry's), consulted only when an anonymous
// multi-field array needs an explicit @name.
func (a *analyzer) lowerType1WithComments(t1 *cddl.Type1, comments []*cddl.Comment) (itr.RustType, *Error) {
	if t1.Operator != nil {
		ctrlOp, err := a.evaluateOperator(t1.Type2, t1.Operator)
		if err != nil {
			return itr.RustType{}, err
		}
		switch ctrlOp.Kind {
		case CtrlCbor:
			return itr.CBORBytes(ctrlOp.Cbor), nil
		case CtrlRange:
			if name, ok := parentTypeName(t1.Type2); ok && (name == "uint" || name == "int") {
				prim, fits := RangeToPrimitive(ctrlOp.Low, ctrlOp.High)
				if !fits {
					return itr.RustType{}, errAt(SyntaxUnsupported, t1.Pos(),
						"range on %q does not coincide with a primitive width; a non-primitive range is only supported as a named rule's wrapper bounds", name)
				}
				return itr.PrimitiveType(prim), nil
			}
			// Ranges on anything else (bytes/text lengths, literal
			// parents) carry no expression-level meaning here; the
			// underlying type is used as-is.
			return a.lowerType2(t1.Type2, comments)
		}
	}

	return a.lowerType2(t1.Type2, comments)
}

func (a *analyzer) lowerType2(t2 *cddl.Type2, comments []*cddl.Comment) (itr.RustType, *Error) {
	switch t2.Kind {
	case cddl.Type2Uint:
		return itr.Fixed(itr.NewFixedUint(t2.UintValue)), nil
	case cddl.Type2Int:
		return itr.Fixed(itr.NewFixedInt(t2.IntValue)), nil
	case cddl.Type2Text:
		return itr.Fixed(itr.NewFixedText(t2.TextValue)), nil

	case cddl.Type2Typename:
		if len(t2.GenericArgs) == 0 {
			return a.cat.NewType(t2.Ident), nil
		}
		args := make([]itr.RustType, 0, len(t2.GenericArgs))
		for _, arg := range t2.GenericArgs {
			lowered, err := a.lowerType1(arg)
			if err != nil {
				return itr.RustType{}, err
			}
			args = append(args, lowered)
		}
		instanceName := genericInstanceName(t2.Ident, args)
		if _, already := a.cat.GenericInstanceByName(instanceName); !already {
			if err := a.cat.RegisterGenericInstance(itr.GenericInstance{
				NewName: instanceName,
				BaseName: t2.Ident,
				Args:     args,
			}); err != nil {
				return itr.RustType{}, errAt(Unreachable, t2.Pos(), "%v", err)
			}
		}
		return itr.Rust(itr.NewRawIdent(instanceName)), nil

	case cddl.Type2Array:
		return a.lowerAnonymousArray(t2, comments)

	case cddl.Type2Map:
		return a.lowerAnonymousMap(t2, comments)

	case cddl.Type2Tagged:
		inner, err := a.lowerType1(t2.TagInner)
		if err != nil {
			return itr.RustType{}, err
		}
		if inner.IsTagged() {
			return itr.RustType{}, errAt(InvalidSchema, t2.Pos(), "nested tagging is not supported: only one tag level is allowed")
		}
		return itr.Tagged(t2.Tag, inner), nil

	case cddl.Type2Paren:
		return a.lowerType(t2.Paren, comments)

	default:
		return itr.RustType{}, errAt(SyntaxUnsupported, t2.Pos(), "unsupported type expression")
	}
}

// lowerAnonymousArray handles a Type2Array appearing as a nested
// expression (not the sole body of a rule, which instead goes through
// the Group Classifier directly).
func (a *analyzer) lowerAnonymousArray(t2 *cddl.Type2, comments []*cddl.Comment) (itr.RustType, *Error) {
	if len(t2.Group.Choices) != 1 {
		return itr.RustType{}, errAt(SyntaxUnsupported, t2.Pos(), "multiple group choices inside an anonymous array are not supported")
	}
	choice := t2.Group.Choices[0]
	if len(choice.Entries) == 1 && choice.Entries[0].Key == nil {
		elem, err := a.lowerType1(choice.Entries[0].Value)
		if err != nil {
			return itr.RustType{}, err
		}
		return itr.Array(elem), nil
	}

	md := meta.Parse(comments)
	if md.Name == nil {
		return itr.RustType{}, errAt(SyntaxUnsupported, t2.Pos(), "anonymous multi-field array requires an @name: comment")
	}
	record, err := a.buildRecord(choice, itr.RepArray)
	if err != nil {
		return itr.RustType{}, err
	}
	if err := a.cat.RegisterRustStruct(itr.RustStruct{Kind: itr.SRecord, Name: *md.Name, Record: record}); err != nil {
		return itr.RustType{}, errAt(Unreachable, t2.Pos(), "%v", err)
	}
	return itr.Rust(itr.NewRawIdent(*md.Name)), nil
}

// lowerAnonymousMap handles a Type2Map appearing as a nested expression.
// Only the homogeneous table shape is supported anonymously; a
// heterogeneous record shape requires a named rule (handled by the
// Group Classifier from the Rule Dispatcher instead).
func (a *analyzer) lowerAnonymousMap(t2 *cddl.Type2, comments []*cddl.Comment) (itr.RustType, *Error) {
	if len(t2.Group.Choices) != 1 {
		return itr.RustType{}, errAt(SyntaxUnsupported, t2.Pos(), "multiple group choices inside an anonymous map are not supported")
	}
	choice := t2.Group.Choices[0]
	if isTableShape(choice) {
		entry := choice.Entries[0]
		key, err := a.lowerType1(entry.Key.Type1)
		if err != nil {
			return itr.RustType{}, err
		}
		value, err := a.lowerType1(entry.Value)
		if err != nil {
			return itr.RustType{}, err
		}
		return itr.Map(key, value), nil
	}
	return itr.RustType{}, errAt(SyntaxUnsupported, t2.Pos(), "anonymous heterogeneous map expressions are not supported; give the rule a name")
}

// lowerType lowers a full Type (choice list): a single alternative
// lowers directly, a two-way choice against null collapses to Optional,
// and anything else synthesizes a named type-choice union.
func (a *analyzer) lowerType(t *cddl.Type, comments []*cddl.Comment) (itr.RustType, *Error) {
	if len(t.Choices) == 1 {
		return a.lowerType1WithComments(t.Choices[0], comments)
	}

	if len(t.Choices) == 2 {
		for i, choice := range t.Choices {
			if choice.Operator == nil && choice.Type2.IsNull() {
				other := t.Choices[1-i]
				lowered, err := a.lowerType1WithComments(other, comments)
				if err != nil {
					return itr.RustType{}, err
				}
				return itr.Optional(lowered), nil
			}
		}
	}

	lowered := make([]itr.RustType, 0, len(t.Choices))
	for _, choice := range t.Choices {
		l, err := a.lowerType1WithComments(choice, comments)
		if err != nil {
			return itr.RustType{}, err
		}
		lowered = append(lowered, l)
	}

	labels := make([]string, 0, len(lowered))
	for _, l := range lowered {
		labels = append(labels, variantLabel(l))
	}
	name := unionName(labels)

	if existing, ok := a.cat.Struct(name); ok && existing.Kind == itr.STypeChoice {
		return itr.Rust(itr.NewRawIdent(name)), nil
	}

	counts := make(nameCounts)
	variants := make([]itr.EnumVariant, 0, len(lowered))
	for i, l := range lowered {
		variants = append(variants, itr.EnumVariant{
			Name: dedupe(labels[i], counts),
			Type: l,
		})
	}
	if err := a.cat.RegisterRustStruct(itr.RustStruct{Kind: itr.STypeChoice, Name: name, Variants: variants}); err != nil {
		return itr.RustType{}, errAt(Unreachable, t.Pos(), "%v", err)
	}
	return itr.Rust(itr.NewRawIdent(name)), nil
}

// isTableShape reports whether a group choice is the single-entry,
// Type1-keyed shape that classifies as a homogeneous table.
func isTableShape(choice *cddl.GroupChoice) bool {
	if len(choice.Entries) != 1 {
		return false
	}
	key := choice.Entries[0].Key
	return key != nil && key.Kind == cddl.KeyType1
}
