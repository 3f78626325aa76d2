// Package model defines the closed, immutable schema types that an XTCE
// document is loaded into: parameter/argument types, data encodings,
// calibrators, containers, and the entries and comparisons that drive
// container layout and selection.
//
// Every union in this package (DataEncoding, ParameterType, ArgumentType,
// Entry) is expressed as a struct with a Kind discriminant and kind-specific
// fields rather than an interface, so that callers get exhaustive switch
// coverage instead of open-ended dynamic dispatch.
package model

// BitOrder and ByteOrder are fixed at most-significant-bit-first /
// most-significant-byte-first; the schema carries no field for them since
// spec scope excludes any other ordering.

// Signedness distinguishes unsigned from two's-complement integer storage.
type Signedness int

const (
	Unsigned Signedness = iota
	TwosComplement
)

// CharSet enumerates the string charsets XTCE StringDataEncoding supports.
type CharSet int

const (
	CharSetUTF8 CharSet = iota
	CharSetUTF16
	CharSetASCII
	CharSetISO88591
	CharSetWindows1252
)

// StringSizeKind discriminates how a StringEncoding's length is determined.
type StringSizeKind int

const (
	StringSizeFixed StringSizeKind = iota
	StringSizeDynamic
	StringSizeTerminated
)

// SizeIsOf discriminates the meaning of a dynamic string's size parameter.
type SizeIsOf int

const (
	SizeOfStringData SizeIsOf = iota
	SizeOfStringLengthInCharacters
)

// BinarySizeKind discriminates how a BinaryEncoding's length is determined.
type BinarySizeKind int

const (
	BinarySizeFixed BinarySizeKind = iota
	BinarySizeDynamic
)

// EncodingKind discriminates the DataEncoding union.
type EncodingKind int

const (
	EncodingInteger EncodingKind = iota
	EncodingFloat
	EncodingString
	EncodingBinary
)

// DataEncoding is the tagged union of §3's IntegerEncoding, FloatEncoding,
// StringEncoding, and BinaryEncoding. Only the fields relevant to Kind are
// populated.
type DataEncoding struct {
	Kind EncodingKind

	// Integer
	SizeInBits int
	Signed     Signedness

	// Float uses SizeInBits too (32 or 64).

	// String
	CharSet        CharSet
	StringSizeKind StringSizeKind
	// StringSizeInBits is used when StringSizeKind == StringSizeFixed.
	StringSizeInBits int
	// SizeParamRef is used when StringSizeKind == StringSizeDynamic, or
	// for Binary with BinarySizeKind == BinarySizeDynamic.
	SizeParamRef string
	SizeIsOf     SizeIsOf
	// Terminator is used when StringSizeKind == StringSizeTerminated.
	Terminator byte

	// Binary
	BinarySizeKind BinarySizeKind
	// BinarySizeInBits is used when BinarySizeKind == BinarySizeFixed.
	BinarySizeInBits int
}

// CalibratorKind discriminates the Calibrator union. Polynomial is the only
// supported variant; the field exists so future variants fail closed.
type CalibratorKind int

const (
	CalibratorPolynomial CalibratorKind = iota
)

// PolyTerm is one coefficient/exponent pair of a polynomial calibrator.
type PolyTerm struct {
	Coefficient float64
	Exponent    int
}

// Calibrator is §3/§4.3's PolynomialCalibrator.
type Calibrator struct {
	Kind  CalibratorKind
	Terms []PolyTerm
}

// ValidRange is an inclusive [Min, Max] constraint. Unset means
// unconstrained on that bound; HasMin/HasMax say which bounds apply.
type ValidRange struct {
	HasMin bool
	Min    float64
	HasMax bool
	Max    float64
}

// ParameterTypeKind discriminates the ParameterType union.
type ParameterTypeKind int

const (
	PTInteger ParameterTypeKind = iota
	PTFloat
	PTEnumerated
	PTBoolean
	PTString
	PTBinary
	PTAbsoluteTime
	PTArray
)

// EnumLabel is one integer/label pair of an EnumeratedParameterType.
type EnumLabel struct {
	Value int64
	Label string
}

// NamedType carries the attributes every parameter/argument type shares.
type NamedType struct {
	Name       string
	Units      []string
	ValidRange *ValidRange // nil if unconstrained
	Encoding   DataEncoding
	Calibrator *Calibrator // nil if uncalibrated
}

// ParameterType is §3's ParameterType union, keyed by Kind.
type ParameterType struct {
	NamedType

	Kind ParameterTypeKind

	// Enumerated
	EnumLabels []EnumLabel

	// Boolean
	ZeroString string
	OneString  string

	// AbsoluteTime
	EpochOffsetSeconds float64 // seconds from the Unix epoch to the declared epoch
	Scale              float64 // raw-seconds-to-engineering-seconds multiplier

	// Array
	ElementTypeRef  string
	ArrayFixedLen   int    // used when ArrayLenParamRef == ""
	ArrayLenParamRef string // reference to an already-decoded integer parameter
}

// ArgumentTypeKind mirrors ParameterTypeKind restricted to the XTCE-argument-
// supported subset per spec §3.
type ArgumentTypeKind int

const (
	ATInteger ArgumentTypeKind = iota
	ATFloat
	ATEnumerated
	ATBoolean
	ATAbsoluteTime
	ATArray
)

// ArgumentType is §3's ArgumentType union.
type ArgumentType struct {
	NamedType

	Kind ArgumentTypeKind

	ValidRangeAppliesToCalibrated bool

	EnumLabels []EnumLabel

	ZeroString string
	OneString  string

	EpochOffsetSeconds float64
	Scale              float64

	ElementTypeRef   string
	ArrayFixedLen    int
	ArrayLenParamRef string
}

// Parameter binds a qualified name to a ParameterType by name.
type Parameter struct {
	QualifiedName string
	TypeRef       string
}

// Argument binds a name (scoped to its MetaCommand) to an ArgumentType by
// name.
type Argument struct {
	Name    string
	TypeRef string
}

// CompareOp enumerates Comparison operators.
type CompareOp int

const (
	OpEQ CompareOp = iota
	OpNE
	OpLT
	OpLE
	OpGT
	OpGE
)

// Comparison is one predicate of a restriction or include-condition.
type Comparison struct {
	ParameterRef      string
	Op                CompareOp
	Value             string // parsed per the referenced parameter's type at evaluation time
	UseCalibratedValue bool
}

// ComparisonList is an AND of Comparisons. A nil/empty list is vacuously
// true.
type ComparisonList []Comparison

// LocationReference discriminates how a ParameterRefEntry's explicit bit
// position is anchored.
type LocationReference int

const (
	LocationStartOfContainer LocationReference = iota
	LocationPreviousEntry
)

// EntryKind discriminates the Entry union.
type EntryKind int

const (
	EntryParameterRef EntryKind = iota
	EntryArgumentRef
	EntryContainerRef
	EntryFixedValue
)

// Entry is §3's Entry union: one element of a container's entry list.
type Entry struct {
	Kind EntryKind

	// ParameterRef / ArgumentRef
	ParameterRef string
	ArgumentRef  string

	// location-in-container-in-bits, valid only for ParameterRef entries.
	HasLocation       bool
	LocationReference LocationReference
	OffsetBits        int64

	// ContainerRef
	ContainerRef     string
	IncludeCondition ComparisonList // empty means unconditional

	// FixedValue
	SizeInBits int
	HexValue   []byte
}

// Container is §3's Container: a named, ordered, optionally-inherited
// layout.
type Container struct {
	Name            string
	BaseContainerRef string // empty if this is a root container
	Restriction     ComparisonList
	Entries         []Entry
}

// SpaceSystem is the namespace node defined in §3. A document may nest
// SpaceSystems arbitrarily deep; qualified names are always rooted at the
// top-level SpaceSystem that was loaded.
type SpaceSystem struct {
	QualifiedName string
	Header        string
	Children      []*SpaceSystem

	ParameterTypes map[string]*ParameterType
	ArgumentTypes  map[string]*ArgumentType
	Parameters     map[string]*Parameter
	Arguments      map[string]*Argument // keyed by "<MetaCommandQName>/<ArgName>"
	Containers     map[string]*Container
	MetaCommands   map[string]*MetaCommand
}

// MetaCommand is the command analogue of a Container: an ordered argument
// list, optionally inheriting from a base command. Encoding a command walks
// its arguments exactly as encoding a container walks its entries (see
// internal/xtce/container).
type MetaCommand struct {
	QualifiedName    string
	BaseCommandRef   string
	ArgumentAssignments []Comparison // argument values fixed by inheritance, if any
	Arguments        []Argument
	Entries          []Entry // ArgumentRefEntry/FixedValueEntry list, declaration order
}
