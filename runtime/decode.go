package qcbor

import "math"

// nestFrame is one open array or map on the decode side. remaining
// counts wire items still to come for definite lengths; a map entry
// counts twice. Bounded frames are the ones entered with EnterMap or
// EnterArray; traversal stops at their edge instead of ascending
// through it.
type nestFrame struct {
	major      uint8
	indefinite bool
	bounded    bool
	remaining  uint16
	count      uint16 // wire item count at open, for RewindMap
	start      int    // offset of the first child, for bounded frames
}

// decodeNesting is the decoder's frame stack. It is value-copyable so
// the map cursor can snapshot and restore it around scans.
type decodeNesting struct {
	frames [MaxArrayNesting]nestFrame
	depth  int
}

func (n *decodeNesting) atTop() bool { return n.depth == 0 }

func (n *decodeNesting) current() *nestFrame { return &n.frames[n.depth-1] }

func (n *decodeNesting) push(f nestFrame) Code {
	if n.depth >= MaxArrayNesting {
		return ErrNestingTooDeep
	}
	n.frames[n.depth] = f
	n.depth++
	return codeSuccess
}

func (n *decodeNesting) pop() { n.depth-- }

// boundedIndex returns the index of the innermost entered frame, or -1
// when nothing has been entered.
func (n *decodeNesting) boundedIndex() int {
	for i := n.depth - 1; i >= 0; i-- {
		if n.frames[i].bounded {
			return i
		}
	}
	return -1
}

// decrement charges one wire item to the innermost definite frame.
func (n *decodeNesting) decrement() {
	if n.depth == 0 {
		return
	}
	f := &n.frames[n.depth-1]
	if !f.indefinite && f.remaining > 0 {
		f.remaining--
	}
}

// cursorState is a snapshot of the decode position, taken and
// restored around map scans.
type cursorState struct {
	off     int
	nesting decodeNesting
}

// Decoder performs a pre-order traversal of one in-memory CBOR byte
// sequence. GetNext returns one typed Item per call; for arrays and
// maps the head alone, with children from later calls. The map-cursor
// methods (EnterMap, GetInt64InMapSZ, ...) layer a sticky error on
// top so call sequences need a single check at Finish.
type Decoder struct {
	in      readBuffer
	mode    DecodeMode
	cfg     Config
	nesting decodeNesting

	alloc      StringAllocator
	allStrings bool

	customTags    [MaxCustomTags]uint64
	numCustomTags int

	strictMinimal bool

	initErr Code
	lastErr Code
}

// NewDecoder returns a Decoder over input in the given mode.
func NewDecoder(input []byte, mode DecodeMode) *Decoder {
	d := &Decoder{}
	d.Init(input, mode)
	return d
}

// Init resets the Decoder over input. It never fails; an oversized
// input is reported by the first GetNext.
func (d *Decoder) Init(input []byte, mode DecodeMode) {
	*d = Decoder{mode: mode}
	d.in.init(input)
	if len(input) > MaxDecodeInputSize {
		d.initErr = ErrInputTooLarge
	}
}

// SetConfig applies feature switches. Call before decoding.
func (d *Decoder) SetConfig(cfg Config) { d.cfg = cfg }

// SetStrictMinimalEncoding makes integer heads that are longer than
// necessary fail with ErrBadInt.
func (d *Decoder) SetStrictMinimalEncoding() { d.strictMinimal = true }

// SetStringAllocator installs a string allocator. With allStrings
// every decoded string is copied into allocator memory, so the input
// buffer may be released once decoding ends.
func (d *Decoder) SetStringAllocator(a StringAllocator, allStrings bool) {
	d.alloc = a
	d.allStrings = allStrings
}

// SetMemPool installs the built-in fixed-pool allocator over pool.
// The pool needs MemPoolMinSize bytes of bookkeeping plus room for
// the live strings.
func (d *Decoder) SetMemPool(pool []byte, allStrings bool) error {
	a, c := newMemPool(pool)
	if c != codeSuccess {
		return c
	}
	d.SetStringAllocator(a, allStrings)
	return nil
}

// SetCustomTags registers up to MaxCustomTags tag numbers to be
// reported through Item.TagBitmap. Bit i of the bitmap corresponds to
// tags[i].
func (d *Decoder) SetCustomTags(tags []uint64) error {
	if len(tags) > MaxCustomTags {
		return ErrTooManyTags
	}
	d.numCustomTags = copy(d.customTags[:], tags)
	return nil
}

// TagBit returns the TagBitmap mask for a tag number: a caller bit
// for tags registered with SetCustomTags, a built-in bit for the
// recognised unpromoted tags, or 0 for anything else.
func (d *Decoder) TagBit(tag uint64) uint64 {
	for i := 0; i < d.numCustomTags; i++ {
		if d.customTags[i] == tag {
			return 1 << uint(i)
		}
	}
	return builtinTagBit(tag)
}

func (d *Decoder) save() cursorState {
	return cursorState{off: d.in.position(), nesting: d.nesting}
}

func (d *Decoder) restore(s cursorState) {
	d.in.setPosition(s.off)
	d.nesting = s.nesting
}

// GetNext decodes one item and advances. At the end of the input, or
// at the edge of an entered container, it returns ErrNoMoreItems.
func (d *Decoder) GetNext(it *Item) error {
	_, c := d.nextFull(it, nil)
	return c.errOrNil()
}

// GetNextWithTags is GetNext plus the item's full tag chain, filled
// into tags innermost first. Tags consumed by a built-in promotion
// are not reported. Returns the number of tags, or ErrTooManyTags if
// they do not fit.
func (d *Decoder) GetNextWithTags(it *Item, tags []uint64) (int, error) {
	n, c := d.nextFull(it, tags)
	return n, c.errOrNil()
}

// PeekNext decodes one item without advancing.
func (d *Decoder) PeekNext(it *Item) error {
	s := d.save()
	_, c := d.nextFull(it, nil)
	d.restore(s)
	return c.errOrNil()
}

// Finish ends the decode. It reports the sticky map-cursor error if
// one is pending, then ErrArrayOrMapUnconsumed for unclosed
// containers or ErrExtraBytes for trailing input, and tears down the
// string allocator.
func (d *Decoder) Finish() error {
	c := d.finishCode()
	if d.alloc != nil {
		d.alloc.Destruct()
		d.alloc = nil
	}
	return c.errOrNil()
}

func (d *Decoder) finishCode() Code {
	if d.lastErr != codeSuccess {
		return d.lastErr
	}
	if d.initErr != codeSuccess {
		return d.initErr
	}
	if !d.nesting.atTop() {
		return ErrArrayOrMapUnconsumed
	}
	if d.in.bytesLeft() != 0 {
		return ErrExtraBytes
	}
	return codeSuccess
}

// nextFull decodes a map label when one is due, then the value item,
// then ascends out of any containers the item completed.
func (d *Decoder) nextFull(it *Item, tags []uint64) (int, Code) {
	n, c := d.nextEntry(it, tags)
	if c != codeSuccess {
		return n, c
	}
	d.ascend()
	it.NextNestLevel = uint8(d.nesting.depth)
	return n, codeSuccess
}

// nextEntry decodes the label, when one is due, and the value of one
// map or array entry. It does not ascend, so a container head decoded
// here leaves its frame on top of the stack; EnterMap relies on that.
func (d *Decoder) nextEntry(it *Item, tags []uint64) (int, Code) {
	*it = Item{}
	if d.initErr != codeSuccess {
		return 0, d.initErr
	}

	if d.nesting.atTop() {
		if d.in.bytesLeft() == 0 {
			return 0, ErrNoMoreItems
		}
	} else if f := d.nesting.current(); f.bounded {
		if !f.indefinite && f.remaining == 0 {
			return 0, ErrNoMoreItems
		}
		if f.indefinite {
			b, c := d.in.peekByte()
			if c != codeSuccess {
				return 0, ErrHitEnd
			}
			if b == makeByte(majorTypeSimple, addInfoIndefinite) {
				return 0, ErrNoMoreItems
			}
		}
	}

	inMap := !d.nesting.atTop() &&
		d.nesting.current().major == majorTypeMap &&
		d.mode != ModeMapAsArray

	var label Label
	var labelAlloc bool
	if inMap {
		var li Item
		if _, c := d.nextValue(&li, nil); c != codeSuccess {
			return 0, c
		}
		switch li.Kind {
		case KindInt64:
			label = Label{Kind: KindInt64, Int64: li.Int64}
		case KindUInt64:
			label = Label{Kind: KindUInt64, UInt64: li.UInt64}
		case KindTextString:
			label = Label{Kind: KindTextString, Bytes: li.Bytes}
			labelAlloc = li.DataAllocated
		case KindByteString:
			if d.mode == ModeMapStringsOnly {
				return 0, ErrMapLabelType
			}
			label = Label{Kind: KindByteString, Bytes: li.Bytes}
			labelAlloc = li.DataAllocated
		default:
			return 0, ErrMapLabelType
		}
		if d.mode == ModeMapStringsOnly && li.Kind != KindTextString {
			return 0, ErrMapLabelType
		}
	}

	n, c := d.nextValue(it, tags)
	if c != codeSuccess {
		return n, c
	}
	it.Label = label
	it.LabelAllocated = labelAlloc
	return n, codeSuccess
}

// nextValue decodes one wire item with its tag chain and any built-in
// tag promotion. It charges the item to the enclosing frame and
// pushes a frame for a nonempty container, but does not ascend.
func (d *Decoder) nextValue(it *Item, tags []uint64) (int, Code) {
	it.NestLevel = uint8(d.nesting.depth)
	d.nesting.decrement()

	var tagNums [MaxTagsPerItem]uint64
	numTags := 0

	h, c := decodeHead(&d.in, d.strictMinimal)
	if c != codeSuccess {
		return 0, c
	}
	for h.major == majorTypeTag {
		if numTags >= MaxTagsPerItem {
			return 0, ErrTooManyTags
		}
		tagNums[numTags] = h.arg
		numTags++
		h, c = decodeHead(&d.in, d.strictMinimal)
		if c != codeSuccess {
			return 0, c
		}
	}

	if c := d.decodeBase(it, h); c != codeSuccess {
		return 0, c
	}
	if it.Kind == kindBreak {
		return 0, ErrBadBreak
	}

	if numTags > 0 {
		consumed, c := d.promote(it, tagNums[numTags-1])
		if c != codeSuccess {
			return 0, c
		}
		if consumed {
			numTags--
		}
	}

	n := 0
	for i := numTags - 1; i >= 0; i-- {
		it.TagBitmap |= d.TagBit(tagNums[i])
		if tags != nil {
			if n >= len(tags) {
				return n, ErrTooManyTags
			}
			tags[n] = tagNums[i]
			n++
		}
	}
	return n, codeSuccess
}

// ascend pops every frame the cursor has stepped out of: definite
// frames with nothing remaining, and indefinite frames whose break is
// next. Bounded frames stop the walk.
func (d *Decoder) ascend() {
	for !d.nesting.atTop() {
		f := d.nesting.current()
		if f.bounded {
			return
		}
		if f.indefinite {
			b, c := d.in.peekByte()
			if c != codeSuccess || b != makeByte(majorTypeSimple, addInfoIndefinite) {
				return
			}
			d.in.getByte()
			d.nesting.pop()
			continue
		}
		if f.remaining > 0 {
			return
		}
		d.nesting.pop()
	}
}

// decodeBase fills the Item for one untagged head, consuming string
// payloads and pushing a frame for a nonempty container head.
func (d *Decoder) decodeBase(it *Item, h head) Code {
	switch h.major {
	case majorTypeUint:
		if h.arg <= math.MaxInt64 {
			it.Kind = KindInt64
			it.Int64 = int64(h.arg)
		} else {
			it.Kind = KindUInt64
			it.UInt64 = h.arg
		}
		return codeSuccess

	case majorTypeNegInt:
		if h.arg <= math.MaxInt64 {
			it.Kind = KindInt64
			it.Int64 = -1 - int64(h.arg)
		} else {
			// magnitude past int64; the raw argument is surfaced and
			// the caller must treat it as -1-n
			it.Kind = KindUInt64
			it.UInt64 = h.arg
		}
		return codeSuccess

	case majorTypeBytes, majorTypeText:
		b, allocated, c := d.decodeString(h)
		if c != codeSuccess {
			return c
		}
		if h.major == majorTypeBytes {
			it.Kind = KindByteString
		} else {
			it.Kind = KindTextString
		}
		it.Bytes = b
		it.DataAllocated = allocated
		return codeSuccess

	case majorTypeArray:
		return d.openContainer(it, h, KindArray, 1)

	case majorTypeMap:
		kind := KindMap
		if d.mode == ModeMapAsArray {
			kind = KindMapAsArray
		}
		return d.openContainer(it, h, kind, 2)

	case majorTypeSimple:
		return d.decodeType7(it, h)
	}
	return ErrUnsupported
}

// openContainer handles an array or map head. itemsPerEntry is 2 for
// maps, where the head argument counts label/value pairs.
func (d *Decoder) openContainer(it *Item, h head, kind Kind, itemsPerEntry uint64) Code {
	it.Kind = kind
	if h.indefinite {
		if d.cfg.DisableIndefLenArrays {
			return ErrIndefLenArraysDisabled
		}
		it.Count = CountIndefinite
		return d.nesting.push(nestFrame{
			major:      h.major,
			indefinite: true,
			start:      d.in.position(),
		})
	}
	wire := h.arg * itemsPerEntry
	if wire > MaxItemsInArray {
		return ErrArrayDecodeTooLong
	}
	if kind == KindMapAsArray {
		it.Count = uint16(wire)
	} else {
		it.Count = uint16(h.arg)
	}
	if wire == 0 {
		return codeSuccess
	}
	return d.nesting.push(nestFrame{
		major:     h.major,
		remaining: uint16(wire),
		count:     uint16(wire),
		start:     d.in.position(),
	})
}

// decodeType7 handles major type 7: simple values, floats and breaks.
func (d *Decoder) decodeType7(it *Item, h head) Code {
	if h.isBreak {
		it.Kind = kindBreak
		return codeSuccess
	}
	switch h.addInfo {
	case simpleFloat16:
		if d.cfg.DisableAllFloat {
			return ErrAllFloatDisabled
		}
		if d.cfg.DisablePreferredFloat {
			return ErrHalfPrecisionDisabled
		}
		it.Kind = KindFloat64
		it.Float64 = halfToDouble(uint16(h.arg))
		return codeSuccess
	case simpleFloat32:
		if d.cfg.DisableAllFloat {
			return ErrAllFloatDisabled
		}
		it.Kind = KindFloat32
		it.Float64 = float64(math.Float32frombits(uint32(h.arg)))
		return codeSuccess
	case simpleFloat64:
		if d.cfg.DisableAllFloat {
			return ErrAllFloatDisabled
		}
		it.Kind = KindFloat64
		it.Float64 = math.Float64frombits(h.arg)
		return codeSuccess
	}

	// simple values
	if h.addInfo == addInfoUint8 && h.arg < 32 {
		// two-byte form of a value that fits the initial byte
		return ErrBadType7
	}
	switch h.arg {
	case simpleFalse:
		it.Kind = KindFalse
	case simpleTrue:
		it.Kind = KindTrue
	case simpleNull:
		it.Kind = KindNull
	case simpleUndefined:
		it.Kind = KindUndef
	default:
		it.Kind = KindUnknownSimple
		it.Simple = uint8(h.arg)
	}
	return codeSuccess
}

// decodeString consumes the payload of a string head. Definite
// strings alias the input unless all-strings copying is on.
// Indefinite strings are concatenated chunk by chunk into allocator
// memory.
func (d *Decoder) decodeString(h head) ([]byte, bool, Code) {
	if !h.indefinite {
		if h.arg > MaxDecodeInputSize {
			return nil, false, ErrStringTooLong
		}
		b, c := d.in.getBytes(h.arg)
		if c != codeSuccess {
			return nil, false, c
		}
		if d.allStrings && d.alloc != nil {
			dst := d.alloc.Allocate(len(b))
			if dst == nil {
				return nil, false, ErrStringAllocate
			}
			copy(dst, b)
			return dst, true, codeSuccess
		}
		return b, false, codeSuccess
	}

	if d.cfg.DisableIndefLenStrings {
		return nil, false, ErrIndefLenStringsDisabled
	}
	if d.alloc == nil {
		return nil, false, ErrNoStringAllocator
	}

	var full []byte
	for {
		ch, c := decodeHead(&d.in, d.strictMinimal)
		if c != codeSuccess {
			d.alloc.Free(full)
			return nil, false, c
		}
		if ch.isBreak {
			break
		}
		if ch.major != h.major || ch.indefinite {
			d.alloc.Free(full)
			return nil, false, ErrIndefiniteStringChunk
		}
		chunk, c := d.in.getBytes(ch.arg)
		if c != codeSuccess {
			d.alloc.Free(full)
			return nil, false, c
		}
		grown := d.alloc.Reallocate(full, len(full)+len(chunk))
		if grown == nil {
			d.alloc.Free(full)
			return nil, false, ErrStringAllocate
		}
		copy(grown[len(full):], chunk)
		full = grown
	}
	if full == nil {
		full = []byte{}
	}
	return full, true, codeSuccess
}
