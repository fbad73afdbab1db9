// Package cddl provides types and parsing for CDDL (RFC 8610) schema
// source, producing the AST consumed by the semantic analyzer in
// pkg/analyze.
package cddl

// Position represents a position in source code.
type Position struct {
	Filename string
	Line     int
	Column   int
	Offset   int
}

// Node is the interface implemented by all AST nodes.
type Node interface {
	Pos() Position
	End() Position
}

// File represents a complete parsed CDDL source file: an ordered list
// of rules in source order. Comments are carried on the rules, groups
// and entries they attach to, not on the File.
type File struct {
	Position Position
	Rules    []*Rule
}

func (f *File) Pos() Position { return f.Position }
func (f *File) End() Position {
	if len(f.Rules) > 0 {
		return f.Rules[len(f.Rules)-1].End()
	}
	return f.Position
}

// RuleKind distinguishes a type rule from a group rule.
type RuleKind int

const (
	RuleType RuleKind = iota
	RuleGroup
)

// Rule represents a single top-level CDDL assignment:
//
//	name [<params>] = Type          (RuleType)
//	name = ( GroupEntry, ... )      (RuleGroup, inline-group body only)
type Rule struct {
	Position       Position
	EndPos         Position
	Kind           RuleKind
	Name           string
	GenericParams  []string
	TypeValue      *Type       // set when Kind == RuleType
	GroupValue     *GroupChoice // set when Kind == RuleGroup
	Comments       []*Comment  // comments attached to this rule (leading + trailing on the same line)
}

func (r *Rule) Pos() Position { return r.Position }
func (r *Rule) End() Position { return r.EndPos }

// Type is a type choice list: one or more Type1 alternatives separated by '/'.
type Type struct {
	Position Position
	EndPos   Position
	Choices  []*Type1
}

func (t *Type) Pos() Position { return t.Position }
func (t *Type) End() Position { return t.EndPos }

// Type1 carries a Type2 plus an optional range or control operator.
type Type1 struct {
	Position Position
	EndPos   Position
	Type2    *Type2
	Operator *Operator // nil if no operator present
}

func (t *Type1) Pos() Position { return t.Position }
func (t *Type1) End() Position { return t.EndPos }

// OperatorKind distinguishes a range operator from a control operator.
type OperatorKind int

const (
	OpRange OperatorKind = iota
	OpControl
)

// Operator represents the right-hand side of a Type1's control/range
// expression: either a range ('..'/'...') or a '.ctrl' control operator.
type Operator struct {
	Position Position
	EndPos   Position
	Kind     OperatorKind

	// OpRange fields.
	IsInclusive bool

	// OpControl fields.
	Ctrl string // e.g. "size", "eq", "ne", "le", "lt", "ge", "gt", "cbor", "default", "cborseq", "within", "and"

	// RHS is the operand: for a range, a single-choice Type wrapping
	// the upper endpoint (read via Type2.NumberLiteral); for '.ctrl', the
	// parsed operand (a control operand may itself be a range, e.g.
	// `.size (0..32)`, or a type name, e.g. `.cbor foo`).
	RHS *Type
}

func (o *Operator) Pos() Position { return o.Position }
func (o *Operator) End() Position { return o.EndPos }

// Type2Kind identifies which alternative of the Type2 union is populated.
type Type2Kind int

const (
	Type2Uint Type2Kind = iota
	Type2Int
	Type2Text
	Type2Typename
	Type2Array
	Type2Map
	Type2Tagged
	Type2Paren
)

// Type2 is the innermost type expression node.
type Type2 struct {
	Position Position
	EndPos   Position
	Kind     Type2Kind

	// Type2Uint / Type2Int
	UintValue uint64
	IntValue  int64

	// Type2Text
	TextValue string

	// Type2Typename
	Ident       string
	GenericArgs []*Type1 // generic instantiation args, e.g. foo<uint, text>

	// Type2Array / Type2Map
	Group *Group

	// Type2Tagged
	Tag       uint64
	TagInner  *Type1

	// Type2Paren
	Paren *Type
}

func (t *Type2) Pos() Position { return t.Position }
func (t *Type2) End() Position { return t.EndPos }

// Group is a sequence of one or more group choices separated by '//'.
type Group struct {
	Position Position
	EndPos   Position
	Choices  []*GroupChoice
}

func (g *Group) Pos() Position { return g.Position }
func (g *Group) End() Position { return g.EndPos }

// GroupChoice is an ordered list of group entries.
type GroupChoice struct {
	Position Position
	EndPos   Position
	Entries  []*GroupEntry

	// Comments holds whatever comments were pending immediately before
	// this choice began (after a preceding '//', or right after the
	// opening '{'/'['). A multi-entry choice inside a group-choice union
	// uses these for its "@name:" metadata; single-entry choices
	// ignore them.
	Comments []*Comment
}

func (g *GroupChoice) Pos() Position { return g.Position }
func (g *GroupChoice) End() Position { return g.EndPos }

// GroupEntry is one member of a group (map or array body).
//
// A bare identifier with no Key is ambiguous at parse time between an
// unkeyed array element of a named type and a splice of a previously
// defined plain group (RFC 8610 groupname entry): CDDL disambiguates
// these by symbol-table lookup, not syntax, so the parser always
// produces the uniform Value shape and the Group Classifier (pkg/analyze)
// resolves the ambiguity against the ITR catalog's registered plain
// groups.
type GroupEntry struct {
	Position Position
	EndPos   Position
	Occur    *Occur // nil means exactly-once

	Key   *MemberKey // nil if no member key (bareword-less array element or plain-group splice)
	Value *Type1

	Comments []*Comment
}

func (g *GroupEntry) Pos() Position { return g.Position }
func (g *GroupEntry) End() Position { return g.EndPos }

// MemberKeyKind identifies which alternative of the member-key union is populated.
type MemberKeyKind int

const (
	KeyBareword MemberKeyKind = iota
	KeyValue
	KeyType1
)

// MemberKey is the left-hand side of a "key => value" / "key: value" group entry.
type MemberKey struct {
	Position Position
	EndPos   Position
	Kind     MemberKeyKind

	// KeyBareword
	Bareword string

	// KeyValue
	UintValue  uint64
	IntValue   int64
	TextValue  string
	IsText     bool // true if KeyValue holds TextValue, false for Uint/IntValue
	IsNegative bool

	// KeyType1
	Type1 *Type1
}

func (m *MemberKey) Pos() Position { return m.Position }
func (m *MemberKey) End() Position { return m.EndPos }

// OccurKind enumerates the three occurrence indicators CDDL supports.
type OccurKind int

const (
	OccurOptional OccurKind = iota // '?'
	OccurZeroOrMore                // '*'
	OccurOneOrMore                 // '+'
)

// Occur represents an occurrence annotation on a group entry.
type Occur struct {
	Position Position
	EndPos   Position
	Kind     OccurKind
}

func (o *Occur) Pos() Position { return o.Position }
func (o *Occur) End() Position { return o.EndPos }

// Comment is a ';'-delimited CDDL comment, possibly carrying
// "@name: ..." / "@newtype" metadata (see pkg/cddl/meta).
type Comment struct {
	Position Position
	EndPos   Position
	Text     string
}

func (c *Comment) Pos() Position { return c.Position }
func (c *Comment) End() Position { return c.EndPos }

// IsNull reports whether a Type2 is the bare "null"/"nil" typename,
// used to detect the "T / null" optional-canonicalization shape.
func (t *Type2) IsNull() bool {
	return t.Kind == Type2Typename && (t.Ident == "null" || t.Ident == "nil") && len(t.GenericArgs) == 0
}

// NumberLiteral returns the integer value of a Uint/Int Type2, for use
// as a range endpoint. ok is false if t is not a number literal.
func (t *Type2) NumberLiteral() (value int64, ok bool) {
	switch t.Kind {
	case Type2Uint:
		return int64(t.UintValue), true
	case Type2Int:
		return t.IntValue, true
	default:
		return 0, false
	}
}
