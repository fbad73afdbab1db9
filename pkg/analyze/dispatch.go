package analyze

import (
	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/cddl/meta"
	"github.com/blockberries/cddlc/pkg/itr"
)

// dispatchRule decides, for one top-level rule, which of the
// alias/wrapper/optional/tagged-union/record/table/group-choice/
// generic-def shapes it registers as.
func (a *analyzer) dispatchRule(rule *cddl.Rule) *Error {
	a.currentRule = rule.Name
	switch rule.Kind {
	case cddl.RuleGroup:
		return a.dispatchGroupRule(rule)
	case cddl.RuleType:
		return a.dispatchTypeRule(rule)
	default:
		return errAt(Unreachable, rule.Pos(), "unknown rule kind")
	}
}

// dispatchGroupRule handles a top-level "name = ( grpent, ... )" rule.
// Only inline-group bodies are legal here (the parser guarantees this:
// GroupValue is only set for that shape), and generics on group rules
// are rejected. The group's own Record/Table shape is registered later,
// once every other rule has had a chance to reveal its representation.
func (a *analyzer) dispatchGroupRule(rule *cddl.Rule) *Error {
	if len(rule.GenericParams) > 0 {
		return errAt(SyntaxUnsupported, rule.Pos(), "generic parameters on group rule %q are not supported", rule.Name)
	}
	a.cat.MarkPlainGroup(rule.Name)
	a.pending = append(a.pending, pendingGroup{name: rule.Name, choice: rule.GroupValue, pos: rule.Position})
	return nil
}

// dispatchTypeRule handles a top-level "name [<params>] = Type" rule.
func (a *analyzer) dispatchTypeRule(rule *cddl.Rule) *Error {
	t := unwrapRuleType(rule.TypeValue)
	if len(t.Choices) > 1 {
		return a.dispatchTypeChoices(rule, t.Choices)
	}
	return a.dispatchSingleType(rule, t.Choices[0])
}

// unwrapRuleType strips redundant parenthesization around a rule's
// entire type value, e.g. "foo = (int / text)" means the same thing as
// "foo = int / text".
func unwrapRuleType(t *cddl.Type) *cddl.Type {
	for len(t.Choices) == 1 && t.Choices[0].Operator == nil && t.Choices[0].Type2.Kind == cddl.Type2Paren {
		t = t.Choices[0].Type2.Paren
	}
	return t
}

// dispatchTypeChoices handles a rule whose type value has more than one
// '/'-separated alternative: either the "T / null" optional shape, or a
// synthesized type-choice union.
func (a *analyzer) dispatchTypeChoices(rule *cddl.Rule, choices []*cddl.Type1) *Error {
	if len(choices) == 2 {
		for i, c := range choices {
			if c.Operator == nil && c.Type2.IsNull() {
				if len(rule.GenericParams) > 0 {
					return errAt(SyntaxUnsupported, rule.Pos(), "generics combined with a \"T / null\" optional alias are not supported")
				}
				other := choices[1-i]
				inner, err := a.lowerType1WithComments(other, rule.Comments)
				if err != nil {
					return err
				}
				return a.registerAlias(rule.Position, rule.Name, itr.Optional(inner))
			}
		}
	}
	return a.registerTypeChoiceStruct(rule.Position, rule.Name, choices, nil, rule.GenericParams, rule.Comments)
}

// registerTypeChoiceStruct synthesizes a TypeChoice sum type from a
// list of type alternatives, wrapping it in a GenericDef when params is
// non-empty.
func (a *analyzer) registerTypeChoiceStruct(pos cddl.Position, name string, choices []*cddl.Type1, tag *uint64, params []string, comments []*cddl.Comment) *Error {
	lowered := make([]itr.RustType, 0, len(choices))
	for _, c := range choices {
		l, err := a.lowerType1WithComments(c, comments)
		if err != nil {
			return err
		}
		lowered = append(lowered, l)
	}
	counts := make(nameCounts)
	variants := make([]itr.EnumVariant, 0, len(lowered))
	for _, l := range lowered {
		variants = append(variants, itr.EnumVariant{Name: dedupe(variantLabel(l), counts), Type: l})
	}
	s := itr.RustStruct{Kind: itr.STypeChoice, Name: name, Tag: tag, Variants: variants}
	if len(params) > 0 {
		return a.registerGenericDef(pos, name, itr.GenericDef{Params: toIdents(params), Body: s})
	}
	return a.registerStruct(pos, s)
}

// dispatchSingleType handles a rule with exactly one type alternative.
func (a *analyzer) dispatchSingleType(rule *cddl.Rule, t1 *cddl.Type1) *Error {
	switch t1.Type2.Kind {
	case cddl.Type2Typename:
		return a.dispatchNamedType(rule, t1, nil)

	case cddl.Type2Map:
		return a.dispatchGroupBody(rule, t1.Type2.Group, itr.RepMap, nil)

	case cddl.Type2Array:
		return a.dispatchGroupBody(rule, t1.Type2.Group, itr.RepArray, nil)

	case cddl.Type2Tagged:
		if len(rule.GenericParams) > 0 {
			return errAt(SyntaxUnsupported, rule.Pos(), "generics on a tagged-data rule are not supported")
		}
		return a.dispatchTaggedData(rule, t1.Type2)

	case cddl.Type2Uint:
		return a.dispatchLiteralRule(rule, t1, itr.NewFixedUint(t1.Type2.UintValue))

	case cddl.Type2Int:
		return a.dispatchLiteralRule(rule, t1, itr.NewFixedInt(t1.Type2.IntValue))

	case cddl.Type2Text:
		return a.registerAlias(rule.Position, rule.Name, itr.Fixed(itr.NewFixedText(t1.Type2.TextValue)))

	default:
		return errAt(Unreachable, t1.Pos(), "unsupported type expression at rule position")
	}
}

// dispatchNamedType handles a rule whose single alternative is a bare
// typename, with or without a control operator or generic arguments.
// outerTag, when non-nil, wraps the registered alias or wrapper in that
// tag; the only caller, dispatchSingleType, passes nil, since a tagged
// typename rule is handled by dispatchTaggedTypename instead.
func (a *analyzer) dispatchNamedType(rule *cddl.Rule, t1 *cddl.Type1, outerTag *uint64) *Error {
	parentName := t1.Type2.Ident

	if t1.Operator != nil {
		if len(rule.GenericParams) > 0 {
			return errAt(SyntaxUnsupported, rule.Pos(), "generics combined with a control operator are not supported")
		}
		return a.dispatchControlledNamedType(rule.Position, rule.Name, parentName, t1, outerTag)
	}

	if len(t1.Type2.GenericArgs) > 0 {
		if len(rule.GenericParams) > 0 {
			return errAt(SyntaxUnsupported, rule.Pos(), "a generic definition cannot itself be a generic instantiation")
		}
		args := make([]itr.RustType, 0, len(t1.Type2.GenericArgs))
		for _, arg := range t1.Type2.GenericArgs {
			l, err := a.lowerType1(arg)
			if err != nil {
				return err
			}
			args = append(args, l)
		}
		return a.registerGenericInstance(rule.Position, rule.Name, t1.Type2.Ident, args)
	}

	if len(rule.GenericParams) > 0 {
		return errAt(SyntaxUnsupported, rule.Pos(), "%s<...> = %s: a generic definition over a bare named type is not supported; back it with a map or array body instead", rule.Name, parentName)
	}

	concrete := a.cat.NewType(parentName)
	if concrete.Kind == itr.TRust {
		// Resolve one alias level so a chain of aliases stays flat: the
		// registered target is already the previous alias's resolution.
		if target, ok := a.cat.Alias(concrete.Rust.Raw); ok {
			concrete = target
		}
	}
	md := meta.Parse(rule.Comments)
	if md.IsNewtype {
		return a.registerStruct(rule.Position, itr.RustStruct{Kind: itr.SWrapper, Name: rule.Name, Tag: outerTag, WrapperInner: concrete})
	}
	return a.registerAliasTagged(rule.Position, rule.Name, concrete, outerTag)
}

// dispatchControlledNamedType handles a named-type rule carrying a
// ".cbor" or range/size operator.
func (a *analyzer) dispatchControlledNamedType(pos cddl.Position, name, parentName string, t1 *cddl.Type1, outerTag *uint64) *Error {
	ctrlOp, err := a.evaluateOperator(t1.Type2, t1.Operator)
	if err != nil {
		return err
	}
	switch ctrlOp.Kind {
	case CtrlCbor:
		if parentName != "bytes" && parentName != "bstr" {
			return errAt(InvalidSchema, t1.Pos(), ".cbor is only valid on a bytes/bstr type")
		}
		return a.registerAliasTagged(pos, name, itr.CBORBytes(ctrlOp.Cbor), outerTag)

	case CtrlRange:
		switch parentName {
		case "int", "uint":
			prim, ok := RangeToPrimitive(ctrlOp.Low, ctrlOp.High)
			if !ok {
				return errAt(SyntaxUnsupported, t1.Pos(), "range does not coincide with a standard integer width; only exact-width ranges are supported here")
			}
			return a.registerAliasTagged(pos, name, itr.PrimitiveType(prim), outerTag)

		case "bytes", "bstr", "text", "tstr":
			inner := itr.PrimitiveType(itr.Bytes)
			if parentName == "text" || parentName == "tstr" {
				inner = itr.PrimitiveType(itr.Str)
			}
			return a.registerStruct(pos, itr.RustStruct{
				Kind:          itr.SWrapper,
				Name:          name,
				Tag:           outerTag,
				WrapperInner:  inner,
				WrapperBounds: boundsFromRange(ctrlOp.Low, ctrlOp.High),
			})

		default:
			return errAt(InvalidSchema, t1.Pos(), "control operators are not supported on %q at rule position", parentName)
		}

	default:
		return errAt(Unreachable, t1.Pos(), "unknown control operator result")
	}
}

// dispatchGroupBody handles a rule whose single alternative is a map or
// array body, invoking the Group Classifier.
func (a *analyzer) dispatchGroupBody(rule *cddl.Rule, group *cddl.Group, rep itr.Representation, tag *uint64) *Error {
	return a.registerGroup(group, rule.Name, rep, tag, rule.GenericParams, rule.Position)
}

// dispatchTaggedData handles "#6.n(inner)" at rule position: one level
// of tag, dispatched recursively with outer tag n. A named inner type
// forces alias-chain resolution eagerly; if the referenced name is not
// yet registered the build fails rather than deferring to a second pass.
func (a *analyzer) dispatchTaggedData(rule *cddl.Rule, t2 *cddl.Type2) *Error {
	tag := t2.Tag
	inner := t2.TagInner

	switch inner.Type2.Kind {
	case cddl.Type2Map:
		return a.dispatchGroupBody(rule, inner.Type2.Group, itr.RepMap, &tag)
	case cddl.Type2Array:
		return a.dispatchGroupBody(rule, inner.Type2.Group, itr.RepArray, &tag)
	case cddl.Type2Typename:
		return a.dispatchTaggedTypename(rule, inner, tag)
	case cddl.Type2Tagged:
		return errAt(InvalidSchema, inner.Pos(), "nested tagging is not supported: only one tag level is allowed")
	default:
		return errAt(SyntaxUnsupported, t2.Pos(), "tagged data only supports maps, arrays, and typenames here")
	}
}

func (a *analyzer) dispatchTaggedTypename(rule *cddl.Rule, inner *cddl.Type1, tag uint64) *Error {
	parentName := inner.Type2.Ident

	if inner.Operator != nil {
		ctrlOp, err := a.evaluateOperator(inner.Type2, inner.Operator)
		if err != nil {
			return err
		}
		switch ctrlOp.Kind {
		case CtrlCbor:
			if parentName != "bytes" && parentName != "bstr" {
				return errAt(InvalidSchema, inner.Pos(), ".cbor is only valid on a bytes/bstr type")
			}
			return a.registerAlias(rule.Position, rule.Name, itr.Tagged(tag, itr.CBORBytes(ctrlOp.Cbor)))

		case CtrlRange:
			switch parentName {
			case "int", "uint":
				prim, ok := RangeToPrimitive(ctrlOp.Low, ctrlOp.High)
				if !ok {
					return errAt(SyntaxUnsupported, inner.Pos(), "range does not coincide with a standard integer width")
				}
				return a.registerAliasTagged(rule.Position, rule.Name, itr.PrimitiveType(prim), &tag)
			default:
				return a.registerStruct(rule.Position, itr.RustStruct{
					Kind:          itr.SWrapper,
					Name:          rule.Name,
					Tag:           &tag,
					WrapperInner:  a.cat.NewType(parentName),
					WrapperBounds: boundsFromRange(ctrlOp.Low, ctrlOp.High),
				})
			}
		}
	}

	base, ok := a.cat.ApplyTypeAliases(parentName)
	if !ok {
		return errAt(UnresolvedReference, inner.Pos(), "please move definition for %s above %s", parentName, rule.Name)
	}
	return a.registerAlias(rule.Position, rule.Name, itr.Tagged(tag, base))
}

// dispatchLiteralRule handles an integer-literal rule: a bare literal
// aliases to Fixed(...), promoted to a primitive when a control
// operator's range happens to coincide with a standard width.
func (a *analyzer) dispatchLiteralRule(rule *cddl.Rule, t1 *cddl.Type1, fallback itr.FixedValue) *Error {
	base := itr.Fixed(fallback)
	if t1.Operator != nil {
		ctrlOp, err := a.evaluateOperator(t1.Type2, t1.Operator)
		if err != nil {
			return err
		}
		if ctrlOp.Kind == CtrlRange {
			if prim, ok := RangeToPrimitive(ctrlOp.Low, ctrlOp.High); ok {
				base = itr.PrimitiveType(prim)
			}
		}
	}
	return a.registerAlias(rule.Position, rule.Name, base)
}
