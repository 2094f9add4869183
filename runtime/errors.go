package qcbor

import "strconv"

// Code is the error type for every failure this package reports. The
// numeric value is stable and partitioned into bands so callers can
// classify a failure with a range comparison instead of enumerating
// codes:
//
//	 1..19  encode errors
//	20..29  input not well-formed
//	30..39  input not well-formed and decoding cannot continue
//	40..59  content errors and implementation limits; unrecoverable
//	60..    recoverable content errors
//
// The zero value means success and is never returned as an error.
type Code uint8

const (
	codeSuccess Code = 0

	// Encode errors (1..19)

	// ErrBufferTooSmall means the output buffer could not hold the
	// encoded result.
	ErrBufferTooSmall Code = 1

	// ErrEncodeUnsupported means an Add call was made with a value
	// CBOR cannot represent, such as a simple value in 24..31.
	ErrEncodeUnsupported Code = 2

	// ErrBufferTooLarge means the output buffer exceeds the size the
	// nesting tracker can backpatch offsets into.
	ErrBufferTooLarge Code = 3

	// ErrArrayNestingTooDeep means arrays and maps were opened more
	// than MaxArrayNesting levels deep while encoding.
	ErrArrayNestingTooDeep Code = 4

	// ErrCloseMismatch means a Close call did not match the kind of
	// the innermost open container, or a map was closed with an odd
	// number of items.
	ErrCloseMismatch Code = 5

	// ErrArrayTooLong means more than MaxItemsInArray items were
	// added to one array or map.
	ErrArrayTooLong Code = 6

	// ErrTooManyCloses means more Close calls were made than Opens.
	ErrTooManyCloses Code = 7

	// ErrArrayOrMapStillOpen means Finish was called with at least
	// one container still open.
	ErrArrayOrMapStillOpen Code = 8

	// ErrOpenByteString means an operation is not possible while a
	// byte string wrap is open.
	ErrOpenByteString Code = 9

	// ErrCannotCancel means CancelByteStringWrap was called after
	// items had already been added inside the wrap.
	ErrCannotCancel Code = 10

	// Not well-formed (20..29)

	// ErrBadType7 means a major type 7 item is malformed, such as a
	// two-byte simple value below 32.
	ErrBadType7 Code = 20

	// ErrExtraBytes means input remained after the top-level item
	// when Finish was called.
	ErrExtraBytes Code = 21

	// ErrUnsupported means the input uses a reserved additional info
	// value (28..30).
	ErrUnsupported Code = 22

	// ErrArrayOrMapUnconsumed means Finish was called before every
	// item of an open array or map was consumed.
	ErrArrayOrMapUnconsumed Code = 23

	// ErrBadInt means an integer argument is malformed, for example a
	// non-minimal length encoding under strict decoding.
	ErrBadInt Code = 24

	// Not well-formed, unrecoverable (30..39)

	// ErrIndefiniteStringChunk means a chunk of an indefinite-length
	// string is not a definite-length string of the same major type.
	ErrIndefiniteStringChunk Code = 30

	// ErrHitEnd means the input ended in the middle of a data item.
	ErrHitEnd Code = 31

	// ErrBadBreak means a break (0xff) occurred where the enclosing
	// container is not indefinite-length, or outside any container.
	ErrBadBreak Code = 32

	// Unrecoverable content and limit errors (40..59)

	// ErrInputTooLarge means the input slice exceeds
	// MaxDecodeInputSize.
	ErrInputTooLarge Code = 40

	// ErrNestingTooDeep means arrays and maps in the input nest
	// deeper than MaxArrayNesting.
	ErrNestingTooDeep Code = 41

	// ErrArrayDecodeTooLong means a decoded array or map head claims
	// more than MaxItemsInArray items.
	ErrArrayDecodeTooLong Code = 42

	// ErrStringTooLong means a decoded string is longer than the
	// input could possibly hold.
	ErrStringTooLong Code = 43

	// ErrBadExpAndMantissa means the content of a decimal fraction or
	// bigfloat tag is not a two-element array of exponent and
	// mantissa.
	ErrBadExpAndMantissa Code = 44

	// ErrNoStringAllocator means an indefinite-length string was
	// encountered but no string allocator is configured.
	ErrNoStringAllocator Code = 45

	// ErrStringAllocate means the string allocator failed to provide
	// memory.
	ErrStringAllocate Code = 46

	// ErrMapLabelType means a map label has a type the decode mode
	// does not permit.
	ErrMapLabelType Code = 47

	// ErrUnrecoverableTagContent means the content of a recognised
	// tag does not satisfy the tag's content contract and the decoder
	// could not traverse past it.
	ErrUnrecoverableTagContent Code = 48

	// ErrIndefLenStringsDisabled means an indefinite-length string
	// was encountered with DisableIndefLenStrings set.
	ErrIndefLenStringsDisabled Code = 49

	// ErrIndefLenArraysDisabled means an indefinite-length array or
	// map was encountered with DisableIndefLenArrays set.
	ErrIndefLenArraysDisabled Code = 50

	// ErrExpMantissaDisabled means a decimal fraction or bigfloat tag
	// was encountered with DisableExpAndMantissa set.
	ErrExpMantissaDisabled Code = 51

	// Recoverable errors (60..)

	// ErrTooManyTags means an item carries more tag numbers than the
	// caller-supplied array in GetNextWithTags can hold, or more than
	// MaxTagsPerItem.
	ErrTooManyTags Code = 60

	// ErrUnexpectedType means the decoded item is not of the type the
	// call requested.
	ErrUnexpectedType Code = 61

	// ErrDuplicateLabel means the same label occurred more than once
	// in one map.
	ErrDuplicateLabel Code = 62

	// ErrMemPoolSize means the buffer given to SetMemPool is smaller
	// than MemPoolMinSize.
	ErrMemPoolSize Code = 63

	// ErrIntOverflow means a negative integer in the input has a
	// magnitude too large for int64.
	ErrIntOverflow Code = 64

	// ErrDateOverflow means an epoch date is outside the range this
	// implementation can represent.
	ErrDateOverflow Code = 65

	// ErrExitMismatch means an Exit call did not match the kind of
	// the container entered.
	ErrExitMismatch Code = 66

	// ErrNoMoreItems means the end of the input, or of the entered
	// container, was reached.
	ErrNoMoreItems Code = 67

	// ErrLabelNotFound means no entry with the requested label exists
	// in the entered map.
	ErrLabelNotFound Code = 68

	// ErrNumberSignConversion means a negative number could not be
	// converted to the unsigned type requested.
	ErrNumberSignConversion Code = 69

	// ErrConversionUnderOverFlow means a number could not be
	// converted because it does not fit the destination range.
	ErrConversionUnderOverFlow Code = 70

	// ErrMapNotEntered means a map operation was attempted without a
	// map (or array) having been entered.
	ErrMapNotEntered Code = 71

	// ErrCallbackFail means a caller-supplied callback returned
	// failure.
	ErrCallbackFail Code = 72

	// ErrFloatDateDisabled means a floating-point epoch date was
	// encountered with float support disabled.
	ErrFloatDateDisabled Code = 73

	// ErrHalfPrecisionDisabled means a half-precision float was
	// encountered with DisablePreferredFloat set.
	ErrHalfPrecisionDisabled Code = 74

	// ErrHwFloatDisabled means a conversion requiring floating-point
	// arithmetic was requested with DisableFloatHwUse set.
	ErrHwFloatDisabled Code = 75

	// ErrFloatException means a floating-point conversion produced a
	// NaN or other unusable result.
	ErrFloatException Code = 76

	// ErrAllFloatDisabled means a float item was encountered with
	// DisableAllFloat set.
	ErrAllFloatDisabled Code = 77

	// ErrRecoverableBadTagContent means the content of a recognised
	// tag does not satisfy the tag's content contract, but the
	// decoder consumed it and decoding may continue.
	ErrRecoverableBadTagContent Code = 78

	// ErrInvalidUTF8 means a text string is not valid UTF-8. Only
	// Validate and ValidateSequence check this.
	ErrInvalidUTF8 Code = 79
)

// Error implements the error interface.
func (c Code) Error() string {
	if s, ok := codeStrings[c]; ok {
		return "qcbor: " + s
	}
	return "qcbor: error " + strconv.Itoa(int(c))
}

// String returns the short name of the code.
func (c Code) String() string {
	if s, ok := codeStrings[c]; ok {
		return s
	}
	return "error " + strconv.Itoa(int(c))
}

// IsNotWellFormed reports whether c indicates syntactically invalid
// CBOR input.
func (c Code) IsNotWellFormed() bool { return c >= 20 && c <= 39 }

// IsUnrecoverable reports whether decoding cannot continue past the
// failure. Recoverable codes may be cleared with GetAndResetError and
// decoding resumed.
func (c Code) IsUnrecoverable() bool { return c >= 30 && c <= 59 }

// IsRecoverable reports whether the error leaves the decode context
// usable.
func (c Code) IsRecoverable() bool { return c >= 60 }

// Resumable reports whether the stream can still be decoded after the
// error, matching the classification interface used by the rest of
// the module's error values.
func (c Code) Resumable() bool { return !c.IsUnrecoverable() && !c.IsNotWellFormed() }

// errOrNil converts the internal success sentinel to a nil error.
func (c Code) errOrNil() error {
	if c == codeSuccess {
		return nil
	}
	return c
}

// asCode maps an error back to its Code, or ErrCallbackFail when the
// error did not originate here.
func asCode(err error) Code {
	if err == nil {
		return codeSuccess
	}
	if c, ok := err.(Code); ok {
		return c
	}
	return ErrCallbackFail
}

var codeStrings = map[Code]string{
	ErrBufferTooSmall:           "output buffer too small",
	ErrEncodeUnsupported:        "attempt to encode an unsupported value",
	ErrBufferTooLarge:           "output buffer too large",
	ErrArrayNestingTooDeep:      "arrays and maps nested too deep to encode",
	ErrCloseMismatch:            "close does not match open",
	ErrArrayTooLong:             "too many items in array or map",
	ErrTooManyCloses:            "more closes than opens",
	ErrArrayOrMapStillOpen:      "an array or map is still open",
	ErrOpenByteString:           "a byte string wrap is open",
	ErrCannotCancel:             "byte string wrap has items and cannot be cancelled",
	ErrBadType7:                 "malformed major type 7 item",
	ErrExtraBytes:               "extra bytes after top-level item",
	ErrUnsupported:              "reserved additional info value",
	ErrArrayOrMapUnconsumed:     "array or map not fully consumed",
	ErrBadInt:                   "malformed integer encoding",
	ErrIndefiniteStringChunk:    "bad chunk in indefinite-length string",
	ErrHitEnd:                   "input ended in the middle of a data item",
	ErrBadBreak:                 "break occurred outside an indefinite-length container",
	ErrInputTooLarge:            "input too large",
	ErrNestingTooDeep:           "arrays and maps nested too deep to decode",
	ErrArrayDecodeTooLong:       "array or map in input too long",
	ErrStringTooLong:            "string in input too long",
	ErrBadExpAndMantissa:        "malformed decimal fraction or bigfloat",
	ErrNoStringAllocator:        "no string allocator configured",
	ErrStringAllocate:           "string allocation failed",
	ErrMapLabelType:             "map label type not permitted by decode mode",
	ErrUnrecoverableTagContent:  "tag content does not match tag",
	ErrIndefLenStringsDisabled:  "indefinite-length strings disabled",
	ErrIndefLenArraysDisabled:   "indefinite-length arrays disabled",
	ErrExpMantissaDisabled:      "decimal fractions and bigfloats disabled",
	ErrTooManyTags:              "too many tags on one item",
	ErrUnexpectedType:           "item type does not match request",
	ErrDuplicateLabel:           "duplicate label in map",
	ErrMemPoolSize:              "memory pool too small",
	ErrIntOverflow:              "integer overflows int64",
	ErrDateOverflow:             "date out of range",
	ErrExitMismatch:             "exit does not match enter",
	ErrNoMoreItems:              "no more items",
	ErrLabelNotFound:            "label not found in map",
	ErrNumberSignConversion:     "sign does not permit conversion",
	ErrConversionUnderOverFlow:  "number does not fit conversion target",
	ErrMapNotEntered:            "no map or array entered",
	ErrCallbackFail:             "callback failed",
	ErrFloatDateDisabled:        "floating-point dates disabled",
	ErrHalfPrecisionDisabled:    "half-precision floats disabled",
	ErrHwFloatDisabled:          "floating-point hardware use disabled",
	ErrFloatException:           "floating-point conversion failed",
	ErrAllFloatDisabled:         "floating-point input disabled",
	ErrRecoverableBadTagContent: "tag content does not match tag (recoverable)",
	ErrInvalidUTF8:              "text string is not valid UTF-8",
}
