package qcbor

import "math"

const maxInt64 = 1<<63 - 1

// Convert is the bitmask of number representations a typed accessor is
// willing to convert from. The accessor's own base representation is
// always accepted.
type Convert uint32

const (
	ConvertNone            Convert = 0
	ConvertXInt64          Convert = 1 << 0 // int64 and uint64 items
	ConvertFloat           Convert = 1 << 1 // float items
	ConvertBigNum          Convert = 1 << 2 // tag 2 and 3 bignums
	ConvertDecimalFraction Convert = 1 << 3 // tag 4
	ConvertBigFloat        Convert = 1 << 4 // tag 5

	ConvertAll = ConvertXInt64 | ConvertFloat | ConvertBigNum |
		ConvertDecimalFraction | ConvertBigFloat
)

// bignumToUint64 interprets big-endian magnitude bytes. Magnitudes
// past 64 bits fail with ErrConversionUnderOverFlow.
func bignumToUint64(b []byte) (uint64, Code) {
	for len(b) > 0 && b[0] == 0 {
		b = b[1:]
	}
	if len(b) > 8 {
		return 0, ErrConversionUnderOverFlow
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, codeSuccess
}

// bignumToDouble folds big-endian magnitude bytes into a float64,
// overflowing naturally to +Inf.
func bignumToDouble(b []byte) float64 {
	var f float64
	for _, c := range b {
		f = f*256 + float64(c)
	}
	return f
}

// exponentiate10 computes mantissa * 10^exponent as an int64,
// failing with ErrConversionUnderOverFlow when the result does not
// fit or a negative exponent does not divide evenly.
func exponentiate10(mantissa int64, exponent int64) (int64, Code) {
	v := mantissa
	for ; exponent > 0; exponent-- {
		next := v * 10
		if v != 0 && next/10 != v {
			return 0, ErrConversionUnderOverFlow
		}
		v = next
	}
	for ; exponent < 0; exponent++ {
		if v%10 != 0 {
			return 0, ErrConversionUnderOverFlow
		}
		v /= 10
	}
	return v, codeSuccess
}

// exponentiate2 computes mantissa * 2^exponent as an int64 under the
// same rules as exponentiate10.
func exponentiate2(mantissa int64, exponent int64) (int64, Code) {
	v := mantissa
	for ; exponent > 0; exponent-- {
		next := v * 2
		if v != 0 && next/2 != v {
			return 0, ErrConversionUnderOverFlow
		}
		v = next
	}
	for ; exponent < 0; exponent++ {
		if v%2 != 0 {
			return 0, ErrConversionUnderOverFlow
		}
		v /= 2
	}
	return v, codeSuccess
}

// mantissaInt64 resolves the mantissa of a decimal fraction or
// bigfloat item, folding bignum variants into an int64.
func mantissaInt64(it *Item, negVariant bool) (int64, Code) {
	if it.Mantissa.Big == nil {
		return it.Mantissa.Int, codeSuccess
	}
	u, c := bignumToUint64(it.Mantissa.Big)
	if c != codeSuccess {
		return 0, c
	}
	if negVariant {
		if u > maxInt64 {
			return 0, ErrConversionUnderOverFlow
		}
		return -1 - int64(u), codeSuccess
	}
	if u > maxInt64 {
		return 0, ErrConversionUnderOverFlow
	}
	return int64(u), codeSuccess
}

func (d *Decoder) floatToInt64(f float64) (int64, Code) {
	if d.cfg.DisableFloatHwUse || d.cfg.DisableAllFloat {
		return 0, ErrHwFloatDisabled
	}
	if math.IsNaN(f) {
		return 0, ErrFloatException
	}
	r := math.RoundToEven(f)
	if r >= 9.223372036854775808e18 || r < -9.223372036854775808e18 {
		return 0, ErrConversionUnderOverFlow
	}
	return int64(r), codeSuccess
}

func (d *Decoder) floatToUint64(f float64) (uint64, Code) {
	if d.cfg.DisableFloatHwUse || d.cfg.DisableAllFloat {
		return 0, ErrHwFloatDisabled
	}
	if math.IsNaN(f) {
		return 0, ErrFloatException
	}
	r := math.RoundToEven(f)
	if r < 0 {
		return 0, ErrNumberSignConversion
	}
	if r >= 1.8446744073709552e19 {
		return 0, ErrConversionUnderOverFlow
	}
	return uint64(r), codeSuccess
}

// itemToInt64 converts a decoded number to int64 under the conversion
// options.
func (d *Decoder) itemToInt64(it *Item, opts Convert) (int64, Code) {
	switch it.Kind {
	case KindInt64:
		return it.Int64, codeSuccess

	case KindUInt64:
		if opts&ConvertXInt64 == 0 {
			return 0, ErrUnexpectedType
		}
		// only produced for arguments past int64 range
		return 0, ErrConversionUnderOverFlow

	case KindFloat32, KindFloat64:
		if opts&ConvertFloat == 0 {
			return 0, ErrUnexpectedType
		}
		return d.floatToInt64(it.Float64)

	case KindPosBignum:
		if opts&ConvertBigNum == 0 {
			return 0, ErrUnexpectedType
		}
		u, c := bignumToUint64(it.Bytes)
		if c != codeSuccess {
			return 0, c
		}
		if u > maxInt64 {
			return 0, ErrConversionUnderOverFlow
		}
		return int64(u), codeSuccess

	case KindNegBignum:
		if opts&ConvertBigNum == 0 {
			return 0, ErrUnexpectedType
		}
		u, c := bignumToUint64(it.Bytes)
		if c != codeSuccess {
			return 0, c
		}
		if u > maxInt64 {
			return 0, ErrConversionUnderOverFlow
		}
		return -1 - int64(u), codeSuccess

	case KindDecimalFraction, KindDecimalFractionPosBignum, KindDecimalFractionNegBignum:
		if opts&ConvertDecimalFraction == 0 {
			return 0, ErrUnexpectedType
		}
		m, c := mantissaInt64(it, it.Kind == KindDecimalFractionNegBignum)
		if c != codeSuccess {
			return 0, c
		}
		return exponentiate10(m, it.Mantissa.Exponent)

	case KindBigFloat, KindBigFloatPosBignum, KindBigFloatNegBignum:
		if opts&ConvertBigFloat == 0 {
			return 0, ErrUnexpectedType
		}
		m, c := mantissaInt64(it, it.Kind == KindBigFloatNegBignum)
		if c != codeSuccess {
			return 0, c
		}
		return exponentiate2(m, it.Mantissa.Exponent)
	}
	return 0, ErrUnexpectedType
}

// itemToUint64 converts a decoded number to uint64 under the
// conversion options. Negative values fail with
// ErrNumberSignConversion.
func (d *Decoder) itemToUint64(it *Item, opts Convert) (uint64, Code) {
	switch it.Kind {
	case KindUInt64:
		return it.UInt64, codeSuccess

	case KindInt64:
		if it.Int64 < 0 {
			return 0, ErrNumberSignConversion
		}
		return uint64(it.Int64), codeSuccess

	case KindFloat32, KindFloat64:
		if opts&ConvertFloat == 0 {
			return 0, ErrUnexpectedType
		}
		return d.floatToUint64(it.Float64)

	case KindPosBignum:
		if opts&ConvertBigNum == 0 {
			return 0, ErrUnexpectedType
		}
		return bignumToUint64(it.Bytes)

	case KindNegBignum:
		if opts&ConvertBigNum == 0 {
			return 0, ErrUnexpectedType
		}
		return 0, ErrNumberSignConversion

	case KindDecimalFraction, KindDecimalFractionPosBignum, KindDecimalFractionNegBignum,
		KindBigFloat, KindBigFloatPosBignum, KindBigFloatNegBignum:
		v, c := d.itemToInt64(it, opts)
		if c != codeSuccess {
			return 0, c
		}
		if v < 0 {
			return 0, ErrNumberSignConversion
		}
		return uint64(v), codeSuccess
	}
	return 0, ErrUnexpectedType
}

// itemToDouble converts a decoded number to float64. Integer inputs
// tolerate precision loss silently; bignums, decimal fractions and
// bigfloats clamp to the infinities on overflow and to zero on
// underflow.
func (d *Decoder) itemToDouble(it *Item, opts Convert) (float64, Code) {
	needHw := func() Code {
		if d.cfg.DisableFloatHwUse || d.cfg.DisableAllFloat {
			return ErrHwFloatDisabled
		}
		return codeSuccess
	}
	switch it.Kind {
	case KindFloat32, KindFloat64:
		return it.Float64, codeSuccess

	case KindInt64:
		if opts&ConvertXInt64 == 0 {
			return 0, ErrUnexpectedType
		}
		if c := needHw(); c != codeSuccess {
			return 0, c
		}
		return float64(it.Int64), codeSuccess

	case KindUInt64:
		if opts&ConvertXInt64 == 0 {
			return 0, ErrUnexpectedType
		}
		if c := needHw(); c != codeSuccess {
			return 0, c
		}
		return float64(it.UInt64), codeSuccess

	case KindPosBignum, KindNegBignum:
		if opts&ConvertBigNum == 0 {
			return 0, ErrUnexpectedType
		}
		if c := needHw(); c != codeSuccess {
			return 0, c
		}
		f := bignumToDouble(it.Bytes)
		if it.Kind == KindNegBignum {
			f = -1 - f
		}
		return f, codeSuccess

	case KindDecimalFraction, KindDecimalFractionPosBignum, KindDecimalFractionNegBignum:
		if opts&ConvertDecimalFraction == 0 {
			return 0, ErrUnexpectedType
		}
		if c := needHw(); c != codeSuccess {
			return 0, c
		}
		m := d.mantissaDouble(it, it.Kind == KindDecimalFractionNegBignum)
		return m * math.Pow(10, float64(it.Mantissa.Exponent)), codeSuccess

	case KindBigFloat, KindBigFloatPosBignum, KindBigFloatNegBignum:
		if opts&ConvertBigFloat == 0 {
			return 0, ErrUnexpectedType
		}
		if c := needHw(); c != codeSuccess {
			return 0, c
		}
		m := d.mantissaDouble(it, it.Kind == KindBigFloatNegBignum)
		if it.Mantissa.Exponent > math.MaxInt32 {
			return math.Inf(sign(m)), codeSuccess
		}
		if it.Mantissa.Exponent < math.MinInt32 {
			return 0, codeSuccess
		}
		return math.Ldexp(m, int(it.Mantissa.Exponent)), codeSuccess
	}
	return 0, ErrUnexpectedType
}

func (d *Decoder) mantissaDouble(it *Item, negVariant bool) float64 {
	if it.Mantissa.Big == nil {
		return float64(it.Mantissa.Int)
	}
	f := bignumToDouble(it.Mantissa.Big)
	if negVariant {
		return -1 - f
	}
	return f
}

func sign(f float64) int {
	if f < 0 {
		return -1
	}
	return 1
}

// getOne fetches the next item through the sticky-error gate.
func (d *Decoder) getOne(it *Item) bool {
	if d.lastErr != codeSuccess {
		return false
	}
	if _, c := d.nextFull(it, nil); c != codeSuccess {
		d.setError(c)
		return false
	}
	return true
}

// getOneInMapN fetches the value with integer label n from the entered
// map.
func (d *Decoder) getOneInMapN(n int64, it *Item) bool {
	if d.lastErr != codeSuccess {
		return false
	}
	matched, _, c := d.mapSearch(func(l Label) bool { return labelMatchesN(l, n) })
	if c != codeSuccess {
		d.setError(c)
		return false
	}
	*it = matched
	return true
}

// getOneInMapSZ fetches the value with text label s from the entered
// map.
func (d *Decoder) getOneInMapSZ(s string, it *Item) bool {
	if d.lastErr != codeSuccess {
		return false
	}
	matched, _, c := d.mapSearch(func(l Label) bool { return labelMatchesSZ(l, s) })
	if c != codeSuccess {
		d.setError(c)
		return false
	}
	*it = matched
	return true
}

// GetInt64Convert decodes the next item into v, converting from the
// representations selected by opts.
func (d *Decoder) GetInt64Convert(opts Convert, v *int64) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	d.convInt64(&it, opts, v)
}

// GetInt64 decodes the next item as a signed integer.
func (d *Decoder) GetInt64(v *int64) { d.GetInt64Convert(ConvertXInt64, v) }

// GetInt64ConvertInMapN is GetInt64Convert on the entry with integer
// label n of the entered map.
func (d *Decoder) GetInt64ConvertInMapN(n int64, opts Convert, v *int64) {
	var it Item
	if !d.getOneInMapN(n, &it) {
		return
	}
	d.convInt64(&it, opts, v)
}

// GetInt64ConvertInMapSZ is GetInt64Convert on the entry with text
// label s of the entered map.
func (d *Decoder) GetInt64ConvertInMapSZ(s string, opts Convert, v *int64) {
	var it Item
	if !d.getOneInMapSZ(s, &it) {
		return
	}
	d.convInt64(&it, opts, v)
}

// GetInt64InMapN decodes the entry with integer label n as a signed
// integer.
func (d *Decoder) GetInt64InMapN(n int64, v *int64) {
	d.GetInt64ConvertInMapN(n, ConvertXInt64, v)
}

// GetInt64InMapSZ decodes the entry with text label s as a signed
// integer.
func (d *Decoder) GetInt64InMapSZ(s string, v *int64) {
	d.GetInt64ConvertInMapSZ(s, ConvertXInt64, v)
}

func (d *Decoder) convInt64(it *Item, opts Convert, v *int64) {
	n, c := d.itemToInt64(it, opts)
	if c != codeSuccess {
		d.setError(c)
		return
	}
	*v = n
}

// GetUInt64Convert decodes the next item into v, converting from the
// representations selected by opts.
func (d *Decoder) GetUInt64Convert(opts Convert, v *uint64) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	d.convUint64(&it, opts, v)
}

// GetUInt64 decodes the next item as an unsigned integer.
func (d *Decoder) GetUInt64(v *uint64) { d.GetUInt64Convert(ConvertXInt64, v) }

// GetUInt64ConvertInMapN is GetUInt64Convert on the entry with integer
// label n of the entered map.
func (d *Decoder) GetUInt64ConvertInMapN(n int64, opts Convert, v *uint64) {
	var it Item
	if !d.getOneInMapN(n, &it) {
		return
	}
	d.convUint64(&it, opts, v)
}

// GetUInt64ConvertInMapSZ is GetUInt64Convert on the entry with text
// label s of the entered map.
func (d *Decoder) GetUInt64ConvertInMapSZ(s string, opts Convert, v *uint64) {
	var it Item
	if !d.getOneInMapSZ(s, &it) {
		return
	}
	d.convUint64(&it, opts, v)
}

// GetUInt64InMapN decodes the entry with integer label n as an
// unsigned integer.
func (d *Decoder) GetUInt64InMapN(n int64, v *uint64) {
	d.GetUInt64ConvertInMapN(n, ConvertXInt64, v)
}

// GetUInt64InMapSZ decodes the entry with text label s as an unsigned
// integer.
func (d *Decoder) GetUInt64InMapSZ(s string, v *uint64) {
	d.GetUInt64ConvertInMapSZ(s, ConvertXInt64, v)
}

func (d *Decoder) convUint64(it *Item, opts Convert, v *uint64) {
	n, c := d.itemToUint64(it, opts)
	if c != codeSuccess {
		d.setError(c)
		return
	}
	*v = n
}

// GetDoubleConvert decodes the next item into v, converting from the
// representations selected by opts.
func (d *Decoder) GetDoubleConvert(opts Convert, v *float64) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	d.convDouble(&it, opts, v)
}

// GetDouble decodes the next item as a float.
func (d *Decoder) GetDouble(v *float64) { d.GetDoubleConvert(ConvertXInt64, v) }

// GetDoubleConvertInMapN is GetDoubleConvert on the entry with integer
// label n of the entered map.
func (d *Decoder) GetDoubleConvertInMapN(n int64, opts Convert, v *float64) {
	var it Item
	if !d.getOneInMapN(n, &it) {
		return
	}
	d.convDouble(&it, opts, v)
}

// GetDoubleConvertInMapSZ is GetDoubleConvert on the entry with text
// label s of the entered map.
func (d *Decoder) GetDoubleConvertInMapSZ(s string, opts Convert, v *float64) {
	var it Item
	if !d.getOneInMapSZ(s, &it) {
		return
	}
	d.convDouble(&it, opts, v)
}

// GetDoubleInMapN decodes the entry with integer label n as a float.
func (d *Decoder) GetDoubleInMapN(n int64, v *float64) {
	d.GetDoubleConvertInMapN(n, ConvertXInt64, v)
}

// GetDoubleInMapSZ decodes the entry with text label s as a float.
func (d *Decoder) GetDoubleInMapSZ(s string, v *float64) {
	d.GetDoubleConvertInMapSZ(s, ConvertXInt64, v)
}

func (d *Decoder) convDouble(it *Item, opts Convert, v *float64) {
	f, c := d.itemToDouble(it, opts)
	if c != codeSuccess {
		d.setError(c)
		return
	}
	*v = f
}

// expectKind narrows a fetched item to one kind.
func (d *Decoder) expectKind(it *Item, kind Kind) bool {
	if it.Kind != kind {
		d.setError(ErrUnexpectedType)
		return false
	}
	return true
}

// GetBytes decodes the next item as a byte string.
func (d *Decoder) GetBytes(v *[]byte) {
	var it Item
	if d.getOne(&it) && d.expectKind(&it, KindByteString) {
		*v = it.Bytes
	}
}

// GetBytesInMapN decodes the entry with integer label n as a byte
// string.
func (d *Decoder) GetBytesInMapN(n int64, v *[]byte) {
	var it Item
	if d.getOneInMapN(n, &it) && d.expectKind(&it, KindByteString) {
		*v = it.Bytes
	}
}

// GetBytesInMapSZ decodes the entry with text label s as a byte
// string.
func (d *Decoder) GetBytesInMapSZ(s string, v *[]byte) {
	var it Item
	if d.getOneInMapSZ(s, &it) && d.expectKind(&it, KindByteString) {
		*v = it.Bytes
	}
}

// GetText decodes the next item as a text string.
func (d *Decoder) GetText(v *string) {
	var it Item
	if d.getOne(&it) && d.expectKind(&it, KindTextString) {
		*v = it.Text()
	}
}

// GetTextInMapN decodes the entry with integer label n as a text
// string.
func (d *Decoder) GetTextInMapN(n int64, v *string) {
	var it Item
	if d.getOneInMapN(n, &it) && d.expectKind(&it, KindTextString) {
		*v = it.Text()
	}
}

// GetTextInMapSZ decodes the entry with text label s as a text string.
func (d *Decoder) GetTextInMapSZ(s string, v *string) {
	var it Item
	if d.getOneInMapSZ(s, &it) && d.expectKind(&it, KindTextString) {
		*v = it.Text()
	}
}

// GetBool decodes the next item as true or false.
func (d *Decoder) GetBool(v *bool) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	d.convBool(&it, v)
}

// GetBoolInMapN decodes the entry with integer label n as a bool.
func (d *Decoder) GetBoolInMapN(n int64, v *bool) {
	var it Item
	if !d.getOneInMapN(n, &it) {
		return
	}
	d.convBool(&it, v)
}

// GetBoolInMapSZ decodes the entry with text label s as a bool.
func (d *Decoder) GetBoolInMapSZ(s string, v *bool) {
	var it Item
	if !d.getOneInMapSZ(s, &it) {
		return
	}
	d.convBool(&it, v)
}

func (d *Decoder) convBool(it *Item, v *bool) {
	switch it.Kind {
	case KindTrue:
		*v = true
	case KindFalse:
		*v = false
	default:
		d.setError(ErrUnexpectedType)
	}
}

// GetNull decodes the next item, requiring it to be null.
func (d *Decoder) GetNull() {
	var it Item
	if d.getOne(&it) {
		d.expectKind(&it, KindNull)
	}
}

// GetUndefined decodes the next item, requiring it to be undefined.
func (d *Decoder) GetUndefined() {
	var it Item
	if d.getOne(&it) {
		d.expectKind(&it, KindUndef)
	}
}

// GetSimple decodes the next item as a simple value.
func (d *Decoder) GetSimple(v *uint8) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	switch it.Kind {
	case KindFalse:
		*v = simpleFalse
	case KindTrue:
		*v = simpleTrue
	case KindNull:
		*v = simpleNull
	case KindUndef:
		*v = simpleUndefined
	case KindUnknownSimple:
		*v = it.Simple
	default:
		d.setError(ErrUnexpectedType)
	}
}

// GetDateEpoch decodes the next item as a tag 1 epoch date.
func (d *Decoder) GetDateEpoch(v *EpochDate) {
	var it Item
	if d.getOne(&it) && d.expectKind(&it, KindDateEpoch) {
		*v = it.Epoch
	}
}

// GetDateEpochInMapN decodes the entry with integer label n as an
// epoch date.
func (d *Decoder) GetDateEpochInMapN(n int64, v *EpochDate) {
	var it Item
	if d.getOneInMapN(n, &it) && d.expectKind(&it, KindDateEpoch) {
		*v = it.Epoch
	}
}

// GetDateEpochInMapSZ decodes the entry with text label s as an epoch
// date.
func (d *Decoder) GetDateEpochInMapSZ(s string, v *EpochDate) {
	var it Item
	if d.getOneInMapSZ(s, &it) && d.expectKind(&it, KindDateEpoch) {
		*v = it.Epoch
	}
}

// GetDaysEpoch decodes the next item as a tag 100 epoch day count.
func (d *Decoder) GetDaysEpoch(v *int64) {
	var it Item
	if d.getOne(&it) && d.expectKind(&it, KindDaysEpoch) {
		*v = it.Days
	}
}

// GetPosBignum decodes the next item as a tag 2 positive bignum.
func (d *Decoder) GetPosBignum(v *[]byte) {
	var it Item
	if d.getOne(&it) && d.expectKind(&it, KindPosBignum) {
		*v = it.Bytes
	}
}

// GetPosBignumInMapN decodes the entry with integer label n as a
// positive bignum.
func (d *Decoder) GetPosBignumInMapN(n int64, v *[]byte) {
	var it Item
	if d.getOneInMapN(n, &it) && d.expectKind(&it, KindPosBignum) {
		*v = it.Bytes
	}
}

// GetPosBignumInMapSZ decodes the entry with text label s as a
// positive bignum.
func (d *Decoder) GetPosBignumInMapSZ(s string, v *[]byte) {
	var it Item
	if d.getOneInMapSZ(s, &it) && d.expectKind(&it, KindPosBignum) {
		*v = it.Bytes
	}
}

// GetNegBignum decodes the next item as a tag 3 negative bignum.
func (d *Decoder) GetNegBignum(v *[]byte) {
	var it Item
	if d.getOne(&it) && d.expectKind(&it, KindNegBignum) {
		*v = it.Bytes
	}
}

// GetNegBignumInMapN decodes the entry with integer label n as a
// negative bignum.
func (d *Decoder) GetNegBignumInMapN(n int64, v *[]byte) {
	var it Item
	if d.getOneInMapN(n, &it) && d.expectKind(&it, KindNegBignum) {
		*v = it.Bytes
	}
}

// GetNegBignumInMapSZ decodes the entry with text label s as a
// negative bignum.
func (d *Decoder) GetNegBignumInMapSZ(s string, v *[]byte) {
	var it Item
	if d.getOneInMapSZ(s, &it) && d.expectKind(&it, KindNegBignum) {
		*v = it.Bytes
	}
}

// GetDecimalFraction decodes the next item as a tag 4 decimal
// fraction, any mantissa variant.
func (d *Decoder) GetDecimalFraction(v *Mantissa) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	switch it.Kind {
	case KindDecimalFraction, KindDecimalFractionPosBignum, KindDecimalFractionNegBignum:
		*v = it.Mantissa
	default:
		d.setError(ErrUnexpectedType)
	}
}

// GetBigFloat decodes the next item as a tag 5 bigfloat, any mantissa
// variant.
func (d *Decoder) GetBigFloat(v *Mantissa) {
	var it Item
	if !d.getOne(&it) {
		return
	}
	switch it.Kind {
	case KindBigFloat, KindBigFloatPosBignum, KindBigFloatNegBignum:
		*v = it.Mantissa
	default:
		d.setError(ErrUnexpectedType)
	}
}
