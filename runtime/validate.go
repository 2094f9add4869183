package qcbor

// Validate checks that b holds exactly one well-formed CBOR data item
// with no trailing bytes. Text strings, including date strings, are
// additionally required to be valid UTF-8.
func Validate(b []byte) error {
	d := newValidationDecoder(b)
	for {
		var it Item
		if err := d.GetNext(&it); err != nil {
			return err
		}
		if c := checkItemText(&it); c != codeSuccess {
			return c
		}
		if it.NextNestLevel == 0 {
			break
		}
	}
	return d.Finish()
}

// ValidateSequence checks that b is a well-formed sequence of zero or
// more CBOR data items, as in an RFC 8742 CBOR sequence.
func ValidateSequence(b []byte) error {
	d := newValidationDecoder(b)
	for {
		var it Item
		err := d.GetNext(&it)
		if err == ErrNoMoreItems {
			return nil
		}
		if err != nil {
			return err
		}
		if c := checkItemText(&it); c != codeSuccess {
			return c
		}
	}
}

// Validation traverses in map-as-array mode so that label types a
// decode mode would reject do not fail structurally sound input.
func newValidationDecoder(b []byte) *Decoder {
	d := NewDecoder(b, ModeMapAsArray)
	d.SetStringAllocator(HeapAllocator{}, false)
	return d
}

func checkItemText(it *Item) Code {
	switch it.Kind {
	case KindTextString, KindDateString, KindDaysString:
		if !isUTF8Valid(it.Bytes) {
			return ErrInvalidUTF8
		}
	}
	return codeSuccess
}
