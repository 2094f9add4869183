package qcbor

import "math"

// builtinBitmapTags maps recognised-but-unpromoted tag numbers to the
// upper bits of Item.TagBitmap. The table is immutable and shared by
// every Decoder; bits 0..MaxCustomTags-1 are reserved for tags
// registered with SetCustomTags.
var builtinBitmapTags = [...]uint64{
	tagBase64URL,
	tagBase64,
	tagBase16,
	tagCBOR,
	tagURI,
	tagBase64URLString,
	tagBase64String,
	tagRegexp,
	tagMIME,
	tagSelfDescribeCBOR,
}

func builtinTagBit(tag uint64) uint64 {
	for i, t := range builtinBitmapTags {
		if t == tag {
			return 1 << uint(MaxCustomTags+i)
		}
	}
	return 0
}

// promote applies the built-in promotion for the tag closest to the
// item. The bool reports whether the tag was consumed; unconsumed
// tags flow to the bitmap or the caller's tag list.
func (d *Decoder) promote(it *Item, tag uint64) (bool, Code) {
	switch tag {
	case tagDateTimeString:
		if it.Kind != KindTextString {
			return false, ErrUnrecoverableTagContent
		}
		it.Kind = KindDateString
		return true, codeSuccess

	case tagEpochDateTime:
		return true, d.promoteEpochDate(it)

	case tagPosBignum:
		if it.Kind != KindByteString {
			return false, ErrUnrecoverableTagContent
		}
		it.Kind = KindPosBignum
		return true, codeSuccess

	case tagNegBignum:
		if it.Kind != KindByteString {
			return false, ErrUnrecoverableTagContent
		}
		it.Kind = KindNegBignum
		return true, codeSuccess

	case tagDecimalFrac:
		return true, d.promoteExpMantissa(it, KindDecimalFraction)

	case tagBigfloat:
		return true, d.promoteExpMantissa(it, KindBigFloat)

	case tagDaysEpoch:
		switch it.Kind {
		case KindInt64:
			it.Days = it.Int64
		case KindUInt64:
			return false, ErrDateOverflow
		default:
			return false, ErrUnrecoverableTagContent
		}
		it.Kind = KindDaysEpoch
		return true, codeSuccess

	case tagDaysString:
		if it.Kind != KindTextString {
			return false, ErrUnrecoverableTagContent
		}
		it.Kind = KindDaysString
		return true, codeSuccess
	}
	return false, codeSuccess
}

// epochBound is the largest float64 magnitude that still converts to
// an int64 without overflow.
const epochBound = 9.223372036854775e18

func (d *Decoder) promoteEpochDate(it *Item) Code {
	var e EpochDate
	switch it.Kind {
	case KindInt64:
		e.Seconds = it.Int64
	case KindUInt64:
		return ErrDateOverflow
	case KindFloat32, KindFloat64:
		if d.cfg.DisableFloatHwUse || d.cfg.DisableAllFloat {
			return ErrFloatDateDisabled
		}
		f := it.Float64
		if math.IsNaN(f) || f >= epochBound || f <= -epochBound {
			return ErrDateOverflow
		}
		e.Seconds = int64(f)
		e.Fraction = f - float64(e.Seconds)
	default:
		return ErrUnrecoverableTagContent
	}
	*it = Item{
		Kind:          KindDateEpoch,
		NestLevel:     it.NestLevel,
		NextNestLevel: it.NextNestLevel,
		TagBitmap:     it.TagBitmap,
		Epoch:         e,
	}
	return codeSuccess
}

// promoteExpMantissa consumes the [exponent, mantissa] array content
// of tag 4 or 5. base is KindDecimalFraction or KindBigFloat; bignum
// mantissas shift it to the matching variant.
func (d *Decoder) promoteExpMantissa(it *Item, base Kind) Code {
	if d.cfg.DisableExpAndMantissa {
		return ErrExpMantissaDisabled
	}
	if it.Kind != KindArray {
		return ErrBadExpAndMantissa
	}
	if it.Count != CountIndefinite && it.Count != 2 {
		return ErrBadExpAndMantissa
	}
	arrayLevel := it.NestLevel

	var m Mantissa

	var exp Item
	if _, c := d.nextValue(&exp, nil); c != codeSuccess {
		return c
	}
	switch exp.Kind {
	case KindInt64:
		m.Exponent = exp.Int64
	default:
		return ErrBadExpAndMantissa
	}

	var mant Item
	if _, c := d.nextValue(&mant, nil); c != codeSuccess {
		return c
	}
	kind := base
	switch mant.Kind {
	case KindInt64:
		m.Int = mant.Int64
	case KindPosBignum:
		m.Big = mant.Bytes
		kind++ // positive-bignum variant
	case KindNegBignum:
		m.Big = mant.Bytes
		kind += 2 // negative-bignum variant
	default:
		return ErrBadExpAndMantissa
	}

	d.ascend()
	if uint8(d.nesting.depth) > arrayLevel {
		// the two-element array did not close; extra items
		return ErrBadExpAndMantissa
	}

	*it = Item{
		Kind:      kind,
		NestLevel: arrayLevel,
		TagBitmap: it.TagBitmap,
		Mantissa:  m,
	}
	return codeSuccess
}
