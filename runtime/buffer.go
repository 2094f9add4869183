package qcbor

import "encoding/binary"

var be = binary.BigEndian

// writeBuffer is a bounded write cursor over a caller-supplied byte
// slice. When sizeOnly is set no bytes are stored and only the length
// is tracked, which lets an Encoder compute the size an encoding
// would need before a real buffer is committed.
//
// Overflow is latched rather than returned: once a write does not
// fit, the buffer stops accepting bytes and the condition is reported
// when the encoding is finished.
type writeBuffer struct {
	buf      []byte
	limit    int
	off      int
	sizeOnly bool
	overflow bool
}

func (w *writeBuffer) init(buf []byte) {
	w.buf = buf
	w.limit = len(buf)
	w.off = 0
	w.sizeOnly = false
	w.overflow = false
}

func (w *writeBuffer) initSizeOnly(limit int) {
	w.buf = nil
	w.limit = limit
	w.off = 0
	w.sizeOnly = true
	w.overflow = false
}

func (w *writeBuffer) appendByte(b byte) {
	if w.overflow || w.off+1 > w.limit {
		w.overflow = true
		return
	}
	if !w.sizeOnly {
		w.buf[w.off] = b
	}
	w.off++
}

func (w *writeBuffer) appendBytes(b []byte) {
	if w.overflow || w.off+len(b) > w.limit {
		w.overflow = true
		return
	}
	if !w.sizeOnly {
		copy(w.buf[w.off:], b)
	}
	w.off += len(b)
}

func (w *writeBuffer) appendString(s string) {
	if w.overflow || w.off+len(s) > w.limit {
		w.overflow = true
		return
	}
	if !w.sizeOnly {
		copy(w.buf[w.off:], s)
	}
	w.off += len(s)
}

// insertZeros opens n bytes of room at position pos, shifting the
// bytes written since pos to the right. Used when a definite-length
// head turns out to need a longer argument than the byte reserved at
// open time.
func (w *writeBuffer) insertZeros(pos, n int) {
	if w.overflow || w.off+n > w.limit {
		w.overflow = true
		return
	}
	if !w.sizeOnly {
		copy(w.buf[pos+n:w.off+n], w.buf[pos:w.off])
	}
	w.off += n
}

// writeHeadAt writes an already-sized head directly at pos. The room
// must have been reserved beforehand.
func (w *writeBuffer) writeHeadAt(pos int, major uint8, arg uint64, headLen int) {
	if w.sizeOnly || w.overflow {
		return
	}
	switch headLen {
	case 1:
		w.buf[pos] = makeByte(major, uint8(arg))
	case 2:
		w.buf[pos] = makeByte(major, addInfoUint8)
		w.buf[pos+1] = uint8(arg)
	case 3:
		w.buf[pos] = makeByte(major, addInfoUint16)
		be.PutUint16(w.buf[pos+1:], uint16(arg))
	case 5:
		w.buf[pos] = makeByte(major, addInfoUint32)
		be.PutUint32(w.buf[pos+1:], uint32(arg))
	case 9:
		w.buf[pos] = makeByte(major, addInfoUint64)
		be.PutUint64(w.buf[pos+1:], arg)
	}
}

func (w *writeBuffer) len() int { return w.off }

func (w *writeBuffer) bytes() []byte {
	if w.sizeOnly {
		return nil
	}
	return w.buf[:w.off]
}

// readBuffer is a bounded read cursor over the decode input. All
// multi-byte reads are big-endian per the CBOR wire format.
type readBuffer struct {
	buf []byte
	off int
}

func (r *readBuffer) init(buf []byte) {
	r.buf = buf
	r.off = 0
}

func (r *readBuffer) bytesLeft() int { return len(r.buf) - r.off }

func (r *readBuffer) position() int { return r.off }

func (r *readBuffer) setPosition(off int) { r.off = off }

func (r *readBuffer) peekByte() (byte, Code) {
	if r.off >= len(r.buf) {
		return 0, ErrHitEnd
	}
	return r.buf[r.off], codeSuccess
}

func (r *readBuffer) getByte() (byte, Code) {
	if r.off >= len(r.buf) {
		return 0, ErrHitEnd
	}
	b := r.buf[r.off]
	r.off++
	return b, codeSuccess
}

// getBytes returns n bytes of the input without copying them. The
// returned slice aliases the input buffer.
func (r *readBuffer) getBytes(n uint64) ([]byte, Code) {
	if n > uint64(r.bytesLeft()) {
		return nil, ErrHitEnd
	}
	b := r.buf[r.off : r.off+int(n)]
	r.off += int(n)
	return b, codeSuccess
}

func (r *readBuffer) getUint8() (uint64, Code) {
	if r.bytesLeft() < 1 {
		return 0, ErrHitEnd
	}
	v := uint64(r.buf[r.off])
	r.off++
	return v, codeSuccess
}

func (r *readBuffer) getUint16() (uint64, Code) {
	if r.bytesLeft() < 2 {
		return 0, ErrHitEnd
	}
	v := uint64(be.Uint16(r.buf[r.off:]))
	r.off += 2
	return v, codeSuccess
}

func (r *readBuffer) getUint32() (uint64, Code) {
	if r.bytesLeft() < 4 {
		return 0, ErrHitEnd
	}
	v := uint64(be.Uint32(r.buf[r.off:]))
	r.off += 4
	return v, codeSuccess
}

func (r *readBuffer) getUint64() (uint64, Code) {
	if r.bytesLeft() < 8 {
		return 0, ErrHitEnd
	}
	v := be.Uint64(r.buf[r.off:])
	r.off += 8
	return v, codeSuccess
}
