package qcbor

// headLen returns the number of bytes the head for the given argument
// occupies under preferred (minimal-length) encoding.
func headLen(arg uint64) int {
	switch {
	case arg <= addInfoDirect:
		return 1
	case arg <= 0xff:
		return 2
	case arg <= 0xffff:
		return 3
	case arg <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// appendHead emits the one-byte major/additional-info head followed
// by the minimal big-endian argument.
func (w *writeBuffer) appendHead(major uint8, arg uint64) {
	switch {
	case arg <= addInfoDirect:
		w.appendByte(makeByte(major, uint8(arg)))
	case arg <= 0xff:
		w.appendByte(makeByte(major, addInfoUint8))
		w.appendByte(uint8(arg))
	case arg <= 0xffff:
		w.appendByte(makeByte(major, addInfoUint16))
		w.appendByte(byte(arg >> 8))
		w.appendByte(byte(arg))
	case arg <= 0xffffffff:
		w.appendByte(makeByte(major, addInfoUint32))
		w.appendByte(byte(arg >> 24))
		w.appendByte(byte(arg >> 16))
		w.appendByte(byte(arg >> 8))
		w.appendByte(byte(arg))
	default:
		w.appendByte(makeByte(major, addInfoUint64))
		for shift := 56; shift >= 0; shift -= 8 {
			w.appendByte(byte(arg >> shift))
		}
	}
}

// head is the decoded form of one CBOR initial byte plus argument.
type head struct {
	major      uint8
	addInfo    uint8
	arg        uint64
	indefinite bool // ai 31 on bytes/text/array/map
	isBreak    bool // ai 31 on major type 7
}

// decodeHead reads one head from the cursor. Reserved additional info
// values 28..30 fail with ErrUnsupported. When strictMinimal is set,
// integer arguments of major types 0 and 1 must use the shortest
// encoding that fits; non-minimal forms fail with ErrBadInt.
func decodeHead(r *readBuffer, strictMinimal bool) (head, Code) {
	var h head
	lead, err := r.getByte()
	if err != codeSuccess {
		return h, err
	}
	h.major = getMajorType(lead)
	h.addInfo = getAddInfo(lead)

	switch {
	case h.addInfo <= addInfoDirect:
		h.arg = uint64(h.addInfo)
		return h, codeSuccess
	case h.addInfo == addInfoUint8:
		v, err := r.getUint8()
		if err != codeSuccess {
			return h, err
		}
		h.arg = v
	case h.addInfo == addInfoUint16:
		v, err := r.getUint16()
		if err != codeSuccess {
			return h, err
		}
		h.arg = v
	case h.addInfo == addInfoUint32:
		v, err := r.getUint32()
		if err != codeSuccess {
			return h, err
		}
		h.arg = v
	case h.addInfo == addInfoUint64:
		v, err := r.getUint64()
		if err != codeSuccess {
			return h, err
		}
		h.arg = v
	case h.addInfo == addInfoIndefinite:
		switch h.major {
		case majorTypeBytes, majorTypeText, majorTypeArray, majorTypeMap:
			h.indefinite = true
			return h, codeSuccess
		case majorTypeSimple:
			h.isBreak = true
			return h, codeSuccess
		default:
			return h, ErrUnsupported
		}
	default:
		// 28..30 reserved
		return h, ErrUnsupported
	}

	if strictMinimal && (h.major == majorTypeUint || h.major == majorTypeNegInt) {
		if headLen(h.arg) < headArgLen(h.addInfo)+1 {
			return h, ErrBadInt
		}
	}
	return h, codeSuccess
}

// headArgLen returns the byte length of the argument selected by the
// additional info value (24..27).
func headArgLen(addInfo uint8) int {
	switch addInfo {
	case addInfoUint8:
		return 1
	case addInfoUint16:
		return 2
	case addInfoUint32:
		return 4
	default:
		return 8
	}
}
