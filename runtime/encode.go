package qcbor

// encodeFrame is one open array, map or wrapped byte string on the
// encoder's nesting stack.
type encodeFrame struct {
	major      uint8
	indefinite bool
	count      uint32 // wire items added; a map pair counts twice
	headOffset int    // offset of the placeholder head (definite only)
}

// Encoder streams CBOR into a caller-supplied buffer. All Add and
// Open/Close methods are void; the first failure latches and is
// reported by Finish. An Encoder performs no allocation of its own.
//
// Definite-length containers are opened with a one-byte placeholder
// head. Close backpatches the real argument, shifting the enclosed
// payload right when the final count needs a longer head.
type Encoder struct {
	out   writeBuffer
	stack [MaxArrayNesting + 1]encodeFrame
	depth int

	noPreferredFloat bool

	err Code
}

// NewEncoder returns an Encoder writing into buf. The encoding fails
// with ErrBufferTooSmall if it does not fit.
func NewEncoder(buf []byte) *Encoder {
	e := &Encoder{}
	e.Init(buf)
	return e
}

// NewSizeEncoder returns an Encoder that computes the encoded size
// without storing any bytes. Finish returns a nil slice; FinishLen
// returns the length the encoding would need.
func NewSizeEncoder() *Encoder {
	e := &Encoder{}
	e.InitSizeOnly()
	return e
}

// Init resets the Encoder to write into buf. Any prior state is
// discarded.
func (e *Encoder) Init(buf []byte) {
	e.out.init(buf)
	e.reset()
}

// InitSizeOnly resets the Encoder into size-calculation mode.
func (e *Encoder) InitSizeOnly() {
	e.out.initSizeOnly(int(^uint(0) >> 1))
	e.reset()
}

func (e *Encoder) reset() {
	e.depth = 0
	e.noPreferredFloat = false
	e.err = codeSuccess
}

// SetNoPreferredFloat makes AddDouble and AddFloat emit the given
// width instead of narrowing to the smallest exact representation.
func (e *Encoder) SetNoPreferredFloat() { e.noPreferredFloat = true }

// Err returns the first error recorded so far, or nil.
func (e *Encoder) Err() error { return e.err.errOrNil() }

func (e *Encoder) fail(c Code) {
	if e.err == codeSuccess {
		e.err = c
	}
}

// countItem records one wire item added to the innermost open frame.
// Top-level items are not counted.
func (e *Encoder) countItem() {
	if e.depth == 0 {
		return
	}
	f := &e.stack[e.depth-1]
	f.count++
	if f.count > MaxItemsInArray {
		e.fail(ErrArrayTooLong)
	}
}

func (e *Encoder) open(major uint8, indefinite bool) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	if e.depth > MaxArrayNesting-1 {
		e.fail(ErrArrayNestingTooDeep)
		return
	}
	f := &e.stack[e.depth]
	f.major = major
	f.indefinite = indefinite
	f.count = 0
	f.headOffset = e.out.len()
	e.depth++
	if indefinite {
		e.out.appendByte(makeByte(major, addInfoIndefinite))
	} else {
		// placeholder; Close rewrites it with the real argument
		e.out.appendByte(makeByte(major, 0))
	}
}

func (e *Encoder) close(major uint8) {
	if e.err != codeSuccess {
		return
	}
	if e.depth == 0 {
		e.fail(ErrTooManyCloses)
		return
	}
	f := &e.stack[e.depth-1]
	if f.major != major {
		e.fail(ErrCloseMismatch)
		return
	}
	e.depth--
	if f.indefinite {
		e.out.appendByte(makeByte(majorTypeSimple, simpleBreak))
		return
	}
	arg := uint64(f.count)
	if major == majorTypeMap {
		if f.count%2 != 0 {
			e.fail(ErrCloseMismatch)
			return
		}
		arg = uint64(f.count / 2)
	}
	n := headLen(arg)
	if n > 1 {
		e.out.insertZeros(f.headOffset+1, n-1)
	}
	e.out.writeHeadAt(f.headOffset, major, arg, n)
}

// OpenArray starts a definite-length array. The element count is
// filled in by CloseArray.
func (e *Encoder) OpenArray() { e.open(majorTypeArray, false) }

// OpenArrayIndefinite starts an indefinite-length array terminated by
// CloseArray with a break.
func (e *Encoder) OpenArrayIndefinite() { e.open(majorTypeArray, true) }

// CloseArray closes the innermost open array.
func (e *Encoder) CloseArray() { e.close(majorTypeArray) }

// OpenMap starts a definite-length map. Entries are added as
// alternating label and value items; an odd item count at CloseMap is
// an error.
func (e *Encoder) OpenMap() { e.open(majorTypeMap, false) }

// OpenMapIndefinite starts an indefinite-length map.
func (e *Encoder) OpenMapIndefinite() { e.open(majorTypeMap, true) }

// CloseMap closes the innermost open map.
func (e *Encoder) CloseMap() { e.close(majorTypeMap) }

// OpenByteStringWrap starts a byte string whose content is the CBOR
// encoded between here and CloseByteStringWrap.
func (e *Encoder) OpenByteStringWrap() { e.open(majorTypeBytes, false) }

// CloseByteStringWrap closes a wrapped byte string. The head argument
// is the byte length of the enclosed encoding.
func (e *Encoder) CloseByteStringWrap() {
	if e.err != codeSuccess {
		return
	}
	if e.depth == 0 {
		e.fail(ErrTooManyCloses)
		return
	}
	f := &e.stack[e.depth-1]
	if f.major != majorTypeBytes {
		e.fail(ErrCloseMismatch)
		return
	}
	e.depth--
	arg := uint64(e.out.len() - f.headOffset - 1)
	n := headLen(arg)
	if n > 1 {
		// the shift grows the payload, not the argument
		e.out.insertZeros(f.headOffset+1, n-1)
	}
	e.out.writeHeadAt(f.headOffset, majorTypeBytes, arg, n)
}

// CancelByteStringWrap abandons an open byte string wrap. Valid only
// while nothing has been added inside it.
func (e *Encoder) CancelByteStringWrap() {
	if e.err != codeSuccess {
		return
	}
	if e.depth == 0 {
		e.fail(ErrTooManyCloses)
		return
	}
	f := &e.stack[e.depth-1]
	if f.major != majorTypeBytes {
		e.fail(ErrCloseMismatch)
		return
	}
	if e.out.len() != f.headOffset+1 || f.count != 0 {
		e.fail(ErrCannotCancel)
		return
	}
	e.depth--
	e.out.off = f.headOffset
	// undo the count the open charged to the parent
	if e.depth > 0 {
		e.stack[e.depth-1].count--
	}
}

// AddInt64 adds a signed integer using preferred encoding. Negative
// values become major type 1 with argument -1-v.
func (e *Encoder) AddInt64(v int64) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	if v >= 0 {
		e.out.appendHead(majorTypeUint, uint64(v))
	} else {
		e.out.appendHead(majorTypeNegInt, uint64(-(v + 1)))
	}
}

// AddUInt64 adds an unsigned integer.
func (e *Encoder) AddUInt64(v uint64) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	e.out.appendHead(majorTypeUint, v)
}

// AddNegativeUInt64 adds the negative integer -1-v, reaching the low
// range -2^64 .. -2^63-1 that AddInt64 cannot express.
func (e *Encoder) AddNegativeUInt64(v uint64) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	e.out.appendHead(majorTypeNegInt, v)
}

// AddBytes adds a definite-length byte string.
func (e *Encoder) AddBytes(b []byte) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	e.out.appendHead(majorTypeBytes, uint64(len(b)))
	e.out.appendBytes(b)
}

// AddText adds a definite-length text string. The caller is
// responsible for the payload being valid UTF-8.
func (e *Encoder) AddText(s string) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	e.out.appendHead(majorTypeText, uint64(len(s)))
	e.out.appendString(s)
}

// AddTextBytes adds a definite-length text string from a byte slice.
func (e *Encoder) AddTextBytes(b []byte) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	e.out.appendHead(majorTypeText, uint64(len(b)))
	e.out.appendBytes(b)
}

// AddDouble adds a float using preferred encoding: the narrowest of
// half, single and double precision representing v exactly. With
// SetNoPreferredFloat the value is always emitted as a double.
func (e *Encoder) AddDouble(v float64) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	if e.noPreferredFloat {
		e.out.appendFloat64(v)
		return
	}
	e.out.appendPreferredDouble(v)
}

// AddFloat adds a single-precision float, narrowed to half precision
// when exact unless SetNoPreferredFloat was called.
func (e *Encoder) AddFloat(v float32) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	if e.noPreferredFloat {
		e.out.appendFloat32(v)
		return
	}
	e.out.appendPreferredDouble(float64(v))
}

// AddTag adds a tag number. It applies to the next item added and
// does not count as an item itself. Tags stack.
func (e *Encoder) AddTag(n uint64) {
	if e.err != codeSuccess {
		return
	}
	e.out.appendHead(majorTypeTag, n)
}

// AddSimple adds a simple value. Values 24..31 are reserved on the
// wire and fail with ErrEncodeUnsupported.
func (e *Encoder) AddSimple(n uint8) {
	if e.err != codeSuccess {
		return
	}
	if n >= 24 && n <= 31 {
		e.fail(ErrEncodeUnsupported)
		return
	}
	e.countItem()
	e.out.appendHead(majorTypeSimple, uint64(n))
}

// AddBool adds true or false.
func (e *Encoder) AddBool(v bool) {
	if v {
		e.AddSimple(simpleTrue)
	} else {
		e.AddSimple(simpleFalse)
	}
}

// AddNull adds the null simple value.
func (e *Encoder) AddNull() { e.AddSimple(simpleNull) }

// AddUndef adds the undefined simple value.
func (e *Encoder) AddUndef() { e.AddSimple(simpleUndefined) }

// AddDateEpoch adds tag 1 with an integer seconds value.
func (e *Encoder) AddDateEpoch(seconds int64) {
	e.AddTag(tagEpochDateTime)
	e.AddInt64(seconds)
}

// AddDateString adds tag 0 with an RFC 3339 date/time string.
func (e *Encoder) AddDateString(s string) {
	e.AddTag(tagDateTimeString)
	e.AddText(s)
}

// AddDaysEpoch adds tag 100 with a count of days since the epoch.
func (e *Encoder) AddDaysEpoch(days int64) {
	e.AddTag(tagDaysEpoch)
	e.AddInt64(days)
}

// AddDaysString adds tag 1004 with an RFC 3339 full-date string.
func (e *Encoder) AddDaysString(s string) {
	e.AddTag(tagDaysString)
	e.AddText(s)
}

// AddPosBignum adds tag 2 with a big-endian magnitude.
func (e *Encoder) AddPosBignum(mag []byte) {
	e.AddTag(tagPosBignum)
	e.AddBytes(mag)
}

// AddNegBignum adds tag 3 with a big-endian magnitude. The value is
// -1-mag.
func (e *Encoder) AddNegBignum(mag []byte) {
	e.AddTag(tagNegBignum)
	e.AddBytes(mag)
}

// AddDecimalFraction adds tag 4 with [exponent, mantissa].
func (e *Encoder) AddDecimalFraction(mantissa int64, exponent int64) {
	e.AddTag(tagDecimalFrac)
	e.OpenArray()
	e.AddInt64(exponent)
	e.AddInt64(mantissa)
	e.CloseArray()
}

// AddDecimalFractionBignum adds tag 4 with a bignum mantissa.
func (e *Encoder) AddDecimalFractionBignum(mantissa []byte, negative bool, exponent int64) {
	e.AddTag(tagDecimalFrac)
	e.OpenArray()
	e.AddInt64(exponent)
	if negative {
		e.AddNegBignum(mantissa)
	} else {
		e.AddPosBignum(mantissa)
	}
	e.CloseArray()
}

// AddBigFloat adds tag 5 with [exponent, mantissa].
func (e *Encoder) AddBigFloat(mantissa int64, exponent int64) {
	e.AddTag(tagBigfloat)
	e.OpenArray()
	e.AddInt64(exponent)
	e.AddInt64(mantissa)
	e.CloseArray()
}

// AddBigFloatBignum adds tag 5 with a bignum mantissa.
func (e *Encoder) AddBigFloatBignum(mantissa []byte, negative bool, exponent int64) {
	e.AddTag(tagBigfloat)
	e.OpenArray()
	e.AddInt64(exponent)
	if negative {
		e.AddNegBignum(mantissa)
	} else {
		e.AddPosBignum(mantissa)
	}
	e.CloseArray()
}

// AddEncoded adds bytes that are already a complete encoded item. No
// validation is performed.
func (e *Encoder) AddEncoded(b []byte) {
	if e.err != codeSuccess {
		return
	}
	e.countItem()
	e.out.appendBytes(b)
}

// FinishLen completes the encoding and returns its length. Works in
// both real and size-only mode.
func (e *Encoder) FinishLen() (int, error) {
	if err := e.finishCheck(); err != codeSuccess {
		return 0, err
	}
	return e.out.len(), nil
}

// Finish completes the encoding and returns the written prefix of the
// buffer. In size-only mode the slice is nil; use FinishLen.
func (e *Encoder) Finish() ([]byte, error) {
	if err := e.finishCheck(); err != codeSuccess {
		return nil, err
	}
	return e.out.bytes(), nil
}

func (e *Encoder) finishCheck() Code {
	if e.err != codeSuccess {
		return e.err
	}
	if e.depth != 0 {
		if e.stack[e.depth-1].major == majorTypeBytes {
			return ErrOpenByteString
		}
		return ErrArrayOrMapStillOpen
	}
	if e.out.overflow {
		return ErrBufferTooSmall
	}
	return codeSuccess
}
