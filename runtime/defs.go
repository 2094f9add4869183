// Package qcbor implements an RFC 8949 CBOR encoder and decoder built
// around two context state machines.
//
// The Encoder streams well-formed CBOR into a caller-supplied buffer
// with no allocation of its own, tracking open arrays and maps in a
// fixed-depth nesting stack and backpatching definite-length heads on
// close. The Decoder performs a pre-order traversal of an in-memory
// CBOR byte sequence, returning one typed Item per GetNext call, with
// optional map-cursor navigation (EnterMap, GetInt64InMapSZ, ...) that
// carries a sticky error so sequences of calls can be written without
// per-call error checks and the first failure is reported by Finish.
package qcbor

// CBOR major types (3 bits)
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // float, simple values, break
)

// Additional info values (5 bits)
const (
	// 0-23: literal value
	addInfoDirect     = 23 // max direct value
	addInfoUint8      = 24 // 1-byte uint8 follows
	addInfoUint16     = 25 // 2-byte uint16 follows
	addInfoUint32     = 26 // 4-byte uint32 follows
	addInfoUint64     = 27 // 8-byte uint64 follows
	addInfoIndefinite = 31 // indefinite length (for bytes, text, array, map)
)

// Simple values in major type 7
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// CBOR semantic tags recognised by the decoder
const (
	tagDateTimeString = 0    // RFC3339 date/time string
	tagEpochDateTime  = 1    // Unix timestamp (int or float)
	tagPosBignum      = 2    // positive bignum
	tagNegBignum      = 3    // negative bignum
	tagDecimalFrac    = 4    // decimal fraction [exponent, mantissa]
	tagBigfloat       = 5    // bigfloat [exponent, mantissa]
	tagDaysEpoch      = 100  // days since the epoch (int)
	tagDaysString     = 1004 // RFC 3339 full-date string

	tagBase64URL        = 21    // expected base64url encoding
	tagBase64           = 22    // expected base64 encoding
	tagBase16           = 23    // expected base16 encoding
	tagCBOR             = 24    // embedded CBOR data item
	tagURI              = 32    // URI
	tagBase64URLString  = 33    // base64url text
	tagBase64String     = 34    // base64 text
	tagRegexp           = 35    // regular expression
	tagMIME             = 36    // MIME message
	tagSelfDescribeCBOR = 55799 // self-describe CBOR (0xd9d9f7)
)

// Implementation limits
const (
	// MaxArrayNesting is the deepest arrays and maps may be nested on
	// both encode and decode. Exceeding it fails with
	// ErrArrayNestingTooDeep or ErrNestingTooDeep.
	MaxArrayNesting = 15

	// MaxItemsInArray is the most items one array or map may hold.
	MaxItemsInArray = 65534 // uint16 max - 1; max reserved for indefinite

	// MaxDecodeInputSize caps the size of the input handed to a
	// Decoder. Larger inputs fail with ErrInputTooLarge.
	MaxDecodeInputSize = 1 << 30

	// MaxCustomTags is the most caller-registered tag numbers a
	// Decoder will track in the Item tag bitmap.
	MaxCustomTags = 16

	// MaxTagsPerItem is the most stacked tag numbers one data item
	// may carry before decoding fails with ErrTooManyTags.
	MaxTagsPerItem = 64
)

// CountIndefinite is reported in Item.Count for an array or map whose
// length is indefinite and still in progress.
const CountIndefinite = 0xffff

// DecodeMode selects the map label policy for a Decoder.
type DecodeMode uint8

const (
	// ModeNormal decodes maps as label/value pairs; labels may be
	// integers, text strings or byte strings.
	ModeNormal DecodeMode = 0

	// ModeMapStringsOnly requires every map label to be a text
	// string; anything else fails with ErrMapLabelType.
	ModeMapStringsOnly DecodeMode = 1

	// ModeMapAsArray reports maps as KindMapAsArray with twice the
	// entry count; labels and values come back as alternating
	// unlabelled items.
	ModeMapAsArray DecodeMode = 2
)

// Config holds the feature switches that a constrained build of the
// library would compile out. Each disabled feature surfaces a
// dedicated error code when the corresponding input is encountered.
type Config struct {
	DisableIndefLenStrings bool // indefinite-length strings -> ErrIndefLenStringsDisabled
	DisableIndefLenArrays  bool // indefinite arrays and maps -> ErrIndefLenArraysDisabled
	DisableExpAndMantissa  bool // tags 4 and 5 -> ErrExpMantissaDisabled
	DisablePreferredFloat  bool // half-precision -> ErrHalfPrecisionDisabled
	DisableFloatHwUse      bool // float conversions -> ErrHwFloatDisabled
	DisableAllFloat        bool // any float input -> ErrAllFloatDisabled
}

// makeByte creates a CBOR initial byte from major type and additional info
func makeByte(majorType, addInfo uint8) byte {
	return byte((majorType << 5) | addInfo)
}

// getMajorType extracts the major type from a CBOR initial byte
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}
