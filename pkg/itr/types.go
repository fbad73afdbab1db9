// Package itr defines the Intermediate Type Representation: the
// language-neutral type model the analyzer registers into, and which a
// downstream code generator would read back out.
package itr

// IdentFlavor distinguishes how an Ident's text was derived.
type IdentFlavor int

const (
	// IdentRaw preserves the CDDL source spelling verbatim (underscores,
	// dashes, digits).
	IdentRaw IdentFlavor = iota
	// IdentTarget holds a casing-converted identifier suitable for a
	// target language (PascalCase type names, snake_case fields).
	IdentTarget
)

// Ident is an identifier carried through the IR in one of two flavors.
type Ident struct {
	Raw    string
	Target string
}

// NewRawIdent builds an Ident whose Target equals its Raw spelling,
// useful before a name has been run through the synthesizer.
func NewRawIdent(raw string) Ident {
	return Ident{Raw: raw, Target: raw}
}

// String returns the target-flavored spelling.
func (i Ident) String() string {
	return i.Target
}

// Primitive enumerates the fixed-width scalar types the IR recognizes.
type Primitive int

const (
	U8 Primitive = iota
	I8
	U16
	I16
	U32
	I32
	U64
	I64
	Str
	Bytes
)

func (p Primitive) String() string {
	switch p {
	case U8:
		return "U8"
	case I8:
		return "I8"
	case U16:
		return "U16"
	case I16:
		return "I16"
	case U32:
		return "U32"
	case I32:
		return "I32"
	case U64:
		return "U64"
	case I64:
		return "I64"
	case Str:
		return "Str"
	case Bytes:
		return "Bytes"
	default:
		return "Primitive(?)"
	}
}

// FixedValueKind identifies which alternative of FixedValue is populated.
type FixedValueKind int

const (
	FixedUint FixedValueKind = iota
	FixedInt
	FixedText
)

// FixedValue is a literal constant value carried in the IR.
type FixedValue struct {
	Kind  FixedValueKind
	Uint  uint64
	Int   int64
	Text  string
}

func NewFixedUint(v uint64) FixedValue { return FixedValue{Kind: FixedUint, Uint: v} }
func NewFixedInt(v int64) FixedValue   { return FixedValue{Kind: FixedInt, Int: v} }
func NewFixedText(v string) FixedValue { return FixedValue{Kind: FixedText, Text: v} }

// Equal reports whether two FixedValues denote the same literal.
func (f FixedValue) Equal(other FixedValue) bool {
	if f.Kind != other.Kind {
		return false
	}
	switch f.Kind {
	case FixedUint:
		return f.Uint == other.Uint
	case FixedInt:
		return f.Int == other.Int
	case FixedText:
		return f.Text == other.Text
	default:
		return false
	}
}

// RustTypeKind identifies which alternative of the RustType union is populated.
type RustTypeKind int

const (
	TFixed RustTypeKind = iota
	TPrimitive
	TRust
	TAlias
	TTagged
	TOptional
	TArray
	TMap
	TCBORBytes
)

// RustType is the tagged union of IR type expressions. Only the field(s)
// relevant to Kind are meaningful.
type RustType struct {
	Kind RustTypeKind

	Fixed     FixedValue // TFixed
	Primitive Primitive  // TPrimitive
	Rust      Ident      // TRust, TAlias (name)
	Inner     *RustType  // TAlias, TTagged, TOptional, TCBORBytes (aliased/wrapped type)
	Tag       uint64     // TTagged
	Elem      *RustType  // TArray
	Key       *RustType  // TMap
	Value     *RustType  // TMap
}

func Fixed(v FixedValue) RustType    { return RustType{Kind: TFixed, Fixed: v} }
func PrimitiveType(p Primitive) RustType { return RustType{Kind: TPrimitive, Primitive: p} }
func Rust(name Ident) RustType        { return RustType{Kind: TRust, Rust: name} }
func Alias(name Ident, inner RustType) RustType {
	return RustType{Kind: TAlias, Rust: name, Inner: &inner}
}
func Tagged(tag uint64, inner RustType) RustType {
	return RustType{Kind: TTagged, Tag: tag, Inner: &inner}
}
func Optional(inner RustType) RustType { return RustType{Kind: TOptional, Inner: &inner} }
func Array(elem RustType) RustType     { return RustType{Kind: TArray, Elem: &elem} }
func Map(key, value RustType) RustType { return RustType{Kind: TMap, Key: &key, Value: &value} }
func CBORBytes(inner RustType) RustType { return RustType{Kind: TCBORBytes, Inner: &inner} }

// IsTagged reports whether t is already a Tagged node, used to enforce
// the one-level tag-nesting invariant before wrapping another tag around it.
func (t RustType) IsTagged() bool {
	return t.Kind == TTagged
}

// RustField is a single field of a record.
type RustField struct {
	Name     string
	Type     RustType
	Optional bool
	Key      *FixedValue // set only for map-representation records
}

// RustRecord is an ordered list of fields plus their wire representation.
type RustRecord struct {
	Representation Representation
	Fields         []RustField
}

// EnumVariant is one arm of a TypeChoice or GroupChoice sum type.
type EnumVariant struct {
	Name                    string
	Type                    RustType
	SerializeAsEmbeddedGroup bool
}

// Representation distinguishes how a group is framed on the wire.
type Representation int

const (
	RepMap Representation = iota
	RepArray
)

// RustStructKind identifies which alternative of the RustStruct union is populated.
type RustStructKind int

const (
	SRecord RustStructKind = iota
	STable
	SWrapper
	STypeChoice
	SGroupChoice
)

// Bounds is an optional inclusive numeric range; either side may be unset.
type Bounds struct {
	HasLow  bool
	Low     int64
	HasHigh bool
	High    int64
}

// RustStruct is the tagged union of top-level registrable shapes.
type RustStruct struct {
	Kind RustStructKind
	Name string
	Tag  *uint64

	// SRecord
	Record RustRecord

	// STable
	TableKey   RustType
	TableValue RustType

	// SWrapper
	WrapperInner  RustType
	WrapperBounds *Bounds

	// STypeChoice / SGroupChoice
	Variants       []EnumVariant
	Representation Representation // SGroupChoice only
}

// GenericDef is a generic schema: a parameterized RustStruct body.
type GenericDef struct {
	Params []Ident
	Body   RustStruct
}

// GenericInstance is a request to monomorphize a GenericDef under a
// synthesized name with concrete type arguments.
type GenericInstance struct {
	NewName  string
	BaseName string
	Args     []RustType
}
