package qcbor

// Kind identifies the type of a decoded Item, or the type a caller
// expects from a lookup.
type Kind uint8

const (
	KindNone Kind = 0

	// KindAny matches every kind in lookups that take an expected
	// kind. It is never returned by the decoder.
	KindAny Kind = 1

	KindInt64      Kind = 2
	KindUInt64     Kind = 3
	KindArray      Kind = 4
	KindMap        Kind = 5
	KindByteString Kind = 6
	KindTextString Kind = 7

	KindDaysEpoch Kind = 8

	KindPosBignum     Kind = 9
	KindNegBignum     Kind = 10
	KindDateString    Kind = 11
	KindDateEpoch     Kind = 12
	KindUnknownSimple Kind = 13

	KindDecimalFraction          Kind = 14
	KindDecimalFractionPosBignum Kind = 15
	KindDecimalFractionNegBignum Kind = 16
	KindBigFloat                 Kind = 17
	KindBigFloatPosBignum        Kind = 18
	KindBigFloatNegBignum        Kind = 19

	KindFalse Kind = 20
	KindTrue  Kind = 21
	KindNull  Kind = 22
	KindUndef Kind = 23

	KindFloat32 Kind = 26
	KindFloat64 Kind = 27

	KindDaysString Kind = 28

	// KindMapAsArray is reported for maps under ModeMapAsArray; the
	// count is twice the entry count and entries come back as
	// alternating unlabelled items.
	KindMapAsArray Kind = 32

	// used internally; never returned
	kindBreak  Kind = 31
	kindOptTag Kind = 254
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindAny:
		return "any"
	case KindInt64:
		return "int64"
	case KindUInt64:
		return "uint64"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindByteString:
		return "bytes"
	case KindTextString:
		return "text"
	case KindDaysEpoch:
		return "days-epoch"
	case KindPosBignum:
		return "bignum"
	case KindNegBignum:
		return "negative-bignum"
	case KindDateString:
		return "date-string"
	case KindDateEpoch:
		return "date-epoch"
	case KindUnknownSimple:
		return "simple"
	case KindDecimalFraction, KindDecimalFractionPosBignum, KindDecimalFractionNegBignum:
		return "decimal-fraction"
	case KindBigFloat, KindBigFloatPosBignum, KindBigFloatNegBignum:
		return "bigfloat"
	case KindFalse:
		return "false"
	case KindTrue:
		return "true"
	case KindNull:
		return "null"
	case KindUndef:
		return "undefined"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindDaysString:
		return "days-string"
	case KindMapAsArray:
		return "map-as-array"
	default:
		return "<invalid>"
	}
}

// EpochDate is the value of a KindDateEpoch item: whole seconds since
// the Unix epoch plus a fractional part when the input was a float.
type EpochDate struct {
	Seconds  int64
	Fraction float64
}

// Mantissa carries the exponent and mantissa of a decimal fraction or
// bigfloat. Int holds the mantissa for the base kinds; Big holds the
// big-endian magnitude for the bignum variants.
type Mantissa struct {
	Exponent int64
	Int      int64
	Big      []byte
}

// Label is the map label attached to an Item decoded inside a map.
// Kind selects the active field and is KindNone for unlabelled items.
type Label struct {
	Kind   Kind
	Int64  int64
	UInt64 uint64
	Bytes  []byte // KindByteString and KindTextString
}

// Text returns a text string label as a string.
func (l Label) Text() string { return string(l.Bytes) }

// Item is one decoded CBOR data item. Kind selects which value field
// is active. For arrays and maps only the head is consumed; the
// children follow from subsequent GetNext calls.
type Item struct {
	Kind Kind

	// NestLevel is the depth the item occurred at, 0 being the top.
	// NextNestLevel is the depth the decode cursor is at after the
	// item; a drop means one or more containers just closed.
	NestLevel     uint8
	NextNestLevel uint8

	// TagBitmap has one bit set per recognised tag number that
	// appeared on the item's tag chain; see TagBit and SetCustomTags.
	TagBitmap uint64

	// DataAllocated and LabelAllocated report whether Bytes and
	// Label.Bytes live in string-allocator memory rather than the
	// input buffer.
	DataAllocated  bool
	LabelAllocated bool

	Int64    int64     // KindInt64
	UInt64   uint64    // KindUInt64
	Bytes    []byte    // strings, bignums, date strings
	Count    uint16    // KindArray, KindMap, KindMapAsArray; CountIndefinite while open
	Float64  float64   // KindFloat64 and KindFloat32 (widened)
	Epoch    EpochDate // KindDateEpoch
	Days     int64     // KindDaysEpoch
	Mantissa Mantissa  // decimal fractions and bigfloats
	Simple   uint8     // KindUnknownSimple

	Label Label
}

// Text returns the payload of a text-carrying item as a string.
func (it *Item) Text() string { return string(it.Bytes) }

// Bool returns the value of a KindTrue or KindFalse item.
func (it *Item) Bool() bool { return it.Kind == KindTrue }

// IsContainer reports whether the item is an array or map head whose
// children follow.
func (it *Item) IsContainer() bool {
	return it.Kind == KindArray || it.Kind == KindMap || it.Kind == KindMapAsArray
}
