package analyze

import (
	"github.com/blockberries/cddlc/pkg/cddl"
	"github.com/blockberries/cddlc/pkg/itr"
)

// ControlOpKind distinguishes the two shapes a control/range operator
// can normalize to. The set is closed: every supported operator reduces
// to a numeric range or a .cbor wrapping.
type ControlOpKind int

const (
	CtrlRange ControlOpKind = iota
	CtrlCbor
)

// ControlOperator is the normalized result of evaluating a range or
// control-operator suffix.
type ControlOperator struct {
	Kind ControlOpKind

	// CtrlRange: either bound may be unset (open).
	Low  *int64
	High *int64

	// CtrlCbor
	Cbor itr.RustType
}

func rangeOperator(low, high *int64) ControlOperator {
	return ControlOperator{Kind: CtrlRange, Low: low, High: high}
}

func i64p(v int64) *int64 { return &v }

const (
	maxInt64 = int64(^uint64(0) >> 1)
	minInt64 = -maxInt64 - 1
)

// unsignedSizeMax computes 2^(8*n)-1 for a .size byte count on uint.
// Eight bytes and beyond saturate at the largest value the pass's signed
// arithmetic can carry, which is also the upper bound the U64 promotion
// window uses.
func unsignedSizeMax(n int64) int64 {
	if n >= 8 {
		return maxInt64
	}
	return (int64(1) << uint(8*n)) - 1
}

// unwrapParen strips a single layer of parenthesization around a
// control operand, e.g. ".size (0..32)" presents its operand as a
// Type2Paren wrapping the "0..32" Type1; the grammar also tolerates
// ".size 0..32" without parens, which parses the range directly.
func unwrapParen(t1 *cddl.Type1) *cddl.Type1 {
	for t1.Operator == nil && t1.Type2.Kind == cddl.Type2Paren && len(t1.Type2.Paren.Choices) == 1 {
		t1 = t1.Type2.Paren.Choices[0]
	}
	return t1
}

// literalOrRange reads a control operand that is either a bare integer
// literal, or a literal range "l..h"/"l...h". isRange distinguishes the two.
func literalOrRange(t1 *cddl.Type1) (low, high int64, isRange bool, err *Error) {
	t1 = unwrapParen(t1)

	if t1.Operator != nil {
		if t1.Operator.Kind != cddl.OpRange {
			return 0, 0, false, errAt(InvalidSchema, t1.Operator.Pos(), "control operand must be an integer literal or range")
		}
		l, ok := t1.Type2.NumberLiteral()
		if !ok {
			return 0, 0, false, errAt(InvalidSchema, t1.Type2.Pos(), "range lower bound must be an integer literal")
		}
		if len(t1.Operator.RHS.Choices) != 1 {
			return 0, 0, false, errAt(Unreachable, t1.Operator.Pos(), "range operator RHS must be a single type")
		}
		hiT2 := t1.Operator.RHS.Choices[0].Type2
		h, ok := hiT2.NumberLiteral()
		if !ok {
			return 0, 0, false, errAt(InvalidSchema, hiT2.Pos(), "range upper bound must be an integer literal")
		}
		if !t1.Operator.IsInclusive {
			h--
		}
		return l, h, true, nil
	}

	v, ok := t1.Type2.NumberLiteral()
	if !ok {
		return 0, 0, false, errAt(InvalidSchema, t1.Type2.Pos(), "control operand must be an integer literal")
	}
	return v, v, false, nil
}

// parentTypeName returns the CDDL typename to the left of an operator,
// used to choose .size/.le/.lt semantics. Only Typename parents carry a
// meaningful name; anything else reports ok=false.
func parentTypeName(parent *cddl.Type2) (string, bool) {
	if parent.Kind != cddl.Type2Typename || len(parent.GenericArgs) != 0 {
		return "", false
	}
	return parent.Ident, true
}

// lowerDefault returns the implicit lower bound .le/.lt impose when the
// parent type is "uint": 0. Every other parent type leaves the lower
// bound open.
func lowerDefault(parentName string) *int64 {
	if parentName == "uint" {
		return i64p(0)
	}
	return nil
}

// evaluateOperator interprets the range or control-operator suffix op
// attached to a Type1 whose left-hand Type2 is parent.
func (a *analyzer) evaluateOperator(parent *cddl.Type2, op *cddl.Operator) (ControlOperator, *Error) {
	switch op.Kind {
	case cddl.OpRange:
		low, ok := parent.NumberLiteral()
		if !ok {
			return ControlOperator{}, errAt(InvalidSchema, parent.Pos(), "range lower bound must be an integer literal")
		}
		if len(op.RHS.Choices) != 1 {
			return ControlOperator{}, errAt(Unreachable, op.Pos(), "range operator RHS must be a single type")
		}
		hiT2 := op.RHS.Choices[0].Type2
		high, ok := hiT2.NumberLiteral()
		if !ok {
			return ControlOperator{}, errAt(InvalidSchema, hiT2.Pos(), "range upper bound must be an integer literal")
		}
		if !op.IsInclusive {
			high--
		}
		return rangeOperator(i64p(low), i64p(high)), nil

	case cddl.OpControl:
		return a.evaluateControlOp(parent, op)

	default:
		return ControlOperator{}, errAt(Unreachable, op.Pos(), "unknown operator kind")
	}
}

func (a *analyzer) evaluateControlOp(parent *cddl.Type2, op *cddl.Operator) (ControlOperator, *Error) {
	if len(op.RHS.Choices) != 1 {
		return ControlOperator{}, errAt(Unreachable, op.Pos(), "control operator RHS must be a single type")
	}
	operand := op.RHS.Choices[0]
	parentName, _ := parentTypeName(parent)

	switch op.Ctrl {
	case "eq":
		n, _, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".eq operand must be a single integer literal")
		}
		return rangeOperator(i64p(n), i64p(n)), nil

	case "ne":
		n, _, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".ne operand must be a single integer literal")
		}
		// Inverted on purpose: Range(N+1, N-1) encodes "not equal to N";
		// downstream consumers must recognize the inverted bounds.
		return rangeOperator(i64p(n+1), i64p(n-1)), nil

	case "le":
		n, _, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".le operand must be a single integer literal")
		}
		return rangeOperator(lowerDefault(parentName), i64p(n)), nil

	case "lt":
		n, _, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".lt operand must be a single integer literal")
		}
		return rangeOperator(lowerDefault(parentName), i64p(n-1)), nil

	case "ge":
		n, _, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".ge operand must be a single integer literal")
		}
		return rangeOperator(i64p(n), nil), nil

	case "gt":
		n, _, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".gt operand must be a single integer literal")
		}
		return rangeOperator(i64p(n+1), nil), nil

	case "size":
		return a.evaluateSize(parentName, operand)

	case "cbor":
		if parentName != "bytes" && parentName != "bstr" {
			return ControlOperator{}, errAt(InvalidSchema, parent.Pos(), ".cbor is only valid on a bytes/bstr type")
		}
		inner, err := a.lowerType1(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if inner.Kind == itr.TRust {
			// The wrapped type's codec is needed up front, so the name
			// must already be registered; a later definition cannot be
			// picked up in this single forward pass.
			resolved, ok := a.cat.ApplyTypeAliases(inner.Rust.Raw)
			if !ok {
				return ControlOperator{}, errAt(UnresolvedReference, operand.Pos(),
					"please move definition for %s above %s", inner.Rust.Raw, a.currentRule)
			}
			inner = resolved
		}
		return ControlOperator{Kind: CtrlCbor, Cbor: inner}, nil

	case "default", "cborseq", "within", "and":
		return ControlOperator{}, errAt(SyntaxUnsupported, op.Pos(), "control operator .%s is not supported", op.Ctrl)

	default:
		return ControlOperator{}, errAt(SyntaxUnsupported, op.Pos(), "unknown control operator .%s", op.Ctrl)
	}
}

// evaluateSize interprets .size relative to its parent type: a bit
// width for uint/int, an exact or bounded byte length for bytes/text.
func (a *analyzer) evaluateSize(parentName string, operand *cddl.Type1) (ControlOperator, *Error) {
	switch parentName {
	case "uint":
		l, h, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if l < 0 || h < 0 {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".size operand must be non-negative")
		}
		high := unsignedSizeMax(h)
		if !isRange {
			// .size n means any value representable in 8*n bits.
			return rangeOperator(i64p(0), i64p(high)), nil
		}
		// .size (l..h): values needing at least l bytes, at most h.
		if 8*l >= 63 {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".size lower bound %d overflows the supported integer width", l)
		}
		low := int64(1) << uint(8*l)
		return rangeOperator(i64p(low), i64p(high)), nil

	case "int":
		_, h, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if isRange {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".size ranges are not supported on signed int")
		}
		if h < 1 || h > 8 {
			return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".size %d is outside the supported signed integer widths", h)
		}
		if h == 8 {
			return rangeOperator(i64p(minInt64), i64p(maxInt64)), nil
		}
		bound := int64(1) << uint(8*h-1)
		return rangeOperator(i64p(-bound), i64p(bound-1)), nil

	case "bytes", "bstr", "text", "tstr":
		l, h, isRange, err := literalOrRange(operand)
		if err != nil {
			return ControlOperator{}, err
		}
		if !isRange {
			return rangeOperator(i64p(l), i64p(l)), nil
		}
		return rangeOperator(i64p(l), i64p(h)), nil

	default:
		return ControlOperator{}, errAt(InvalidSchema, operand.Pos(), ".size is not supported on %q", parentName)
	}
}

// RangeToPrimitive recognizes when an inclusive (low, high) range
// coincides exactly with one of the standard fixed-width integer
// bounds, promoting it to a Primitive. Both bounds must be present.
func RangeToPrimitive(low, high *int64) (itr.Primitive, bool) {
	if low == nil || high == nil {
		return 0, false
	}
	l, h := *low, *high
	switch {
	case l == 0 && h == 255:
		return itr.U8, true
	case l == -128 && h == 127:
		return itr.I8, true
	case l == 0 && h == 65535:
		return itr.U16, true
	case l == -32768 && h == 32767:
		return itr.I16, true
	case l == 0 && h == 4294967295:
		return itr.U32, true
	case l == -2147483648 && h == 2147483647:
		return itr.I32, true
	case l == 0 && h == 9223372036854775807:
		// U64's true upper bound (2^64-1) does not fit in the signed
		// 64-bit arithmetic this pass uses throughout; math.MaxInt64 is
		// the closest representable boundary.
		return itr.U64, true
	case l == -9223372036854775808 && h == 9223372036854775807:
		return itr.I64, true
	default:
		return 0, false
	}
}
