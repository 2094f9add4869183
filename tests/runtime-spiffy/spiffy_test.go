package tests

import (
	"encoding/hex"
	"errors"
	"math"
	"testing"

	qcbor "github.com/plietar/qcbor.go/runtime"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func TestNestedEnterExit(t *testing.T) {
	// {"a": 1, "b": {"c": [1, 2], "d": true}}
	d := qcbor.NewDecoder(mustHex(t, "a26161016162a261638201026164f5"), qcbor.ModeNormal)
	d.EnterMap()

	var a int64
	d.GetInt64InMapSZ("a", &a)

	d.EnterMapFromMapSZ("b")
	d.EnterArrayFromMapSZ("c")
	var first, second int64
	d.GetInt64(&first)
	d.GetInt64(&second)
	d.ExitArray()
	var dv bool
	d.GetBoolInMapSZ("d", &dv)
	d.ExitMap()

	d.ExitMap()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if a != 1 || first != 1 || second != 2 || !dv {
		t.Fatalf("decoded %d [%d %d] %v", a, first, second, dv)
	}
}

func TestRewindBoundedArray(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "83010203"), qcbor.ModeNormal)
	d.EnterArray()
	var v int64
	d.GetInt64(&v)
	d.GetInt64(&v)
	d.GetInt64(&v)
	if v != 3 {
		t.Fatalf("third element = %d", v)
	}
	d.GetInt64(&v)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrNoMoreItems) {
		t.Fatalf("past the end = %v, want ErrNoMoreItems", err)
	}
	d.RewindMap()
	d.GetInt64(&v)
	if err := d.GetError(); err != nil {
		t.Fatalf("after rewind: %v", err)
	}
	if v != 1 {
		t.Fatalf("after rewind = %d, want 1", v)
	}
	d.ExitArray()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestDuplicateLabel(t *testing.T) {
	// {1: 2, 1: 3}
	d := qcbor.NewDecoder(mustHex(t, "a201020103"), qcbor.ModeNormal)
	d.EnterMap()
	var v int64
	d.GetInt64InMapN(1, &v)
	if err := d.GetError(); !errors.Is(err, qcbor.ErrDuplicateLabel) {
		t.Fatalf("lookup = %v, want ErrDuplicateLabel", err)
	}
}

func TestLabelNotFoundAndResume(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "a1616101"), qcbor.ModeNormal)
	d.EnterMap()
	var v int64
	d.GetInt64InMapSZ("b", &v)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrLabelNotFound) {
		t.Fatalf("missing label = %v, want ErrLabelNotFound", err)
	}
	d.GetInt64InMapSZ("a", &v)
	d.ExitMap()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish after resume: %v", err)
	}
	if v != 1 {
		t.Fatalf("resumed value = %d", v)
	}
}

func TestStickyErrorShortCircuits(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "0102"), qcbor.ModeNormal)
	var s string
	var v int64 = -7
	d.GetText(&s)
	d.GetInt64(&v)
	if v != -7 {
		t.Fatalf("call after error wrote %d", v)
	}
	if err := d.Finish(); !errors.Is(err, qcbor.ErrUnexpectedType) {
		t.Fatalf("Finish = %v, want ErrUnexpectedType", err)
	}
}

func TestExitWithoutEnter(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "a0"), qcbor.ModeNormal)
	d.ExitMap()
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrMapNotEntered) {
		t.Fatalf("exit without enter = %v, want ErrMapNotEntered", err)
	}

	d = qcbor.NewDecoder(mustHex(t, "80"), qcbor.ModeNormal)
	d.EnterArray()
	d.ExitMap()
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrExitMismatch) {
		t.Fatalf("ExitMap on array = %v, want ErrExitMismatch", err)
	}
}

func TestEnterWrongKind(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "01"), qcbor.ModeNormal)
	d.EnterMap()
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrUnexpectedType) {
		t.Fatalf("EnterMap on int = %v, want ErrUnexpectedType", err)
	}
}

func TestEmptyMap(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "a0"), qcbor.ModeNormal)
	d.EnterMap()
	var v int64
	d.GetInt64InMapSZ("x", &v)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrLabelNotFound) {
		t.Fatalf("lookup in empty map = %v", err)
	}
	d.ExitMap()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestExitConsumesUnread(t *testing.T) {
	// {"a": [1, 2, 3], "b": 4} read nothing, exit, done.
	d := qcbor.NewDecoder(mustHex(t, "a2616183010203616204"), qcbor.ModeNormal)
	d.EnterMap()
	d.ExitMap()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestGetItemsInMapSinglePass(t *testing.T) {
	// {"a": 1, "b": "x", 3: h'ff'}
	d := qcbor.NewDecoder(mustHex(t, "a3616101616261780341ff"), qcbor.ModeNormal)
	d.EnterMap()
	lookups := []qcbor.MapLookup{
		qcbor.MapLookupSZ("a", qcbor.KindInt64),
		qcbor.MapLookupSZ("b", qcbor.KindTextString),
		qcbor.MapLookupN(3, qcbor.KindByteString),
	}
	d.GetItemsInMap(lookups)
	if err := d.GetError(); err != nil {
		t.Fatalf("GetItemsInMap: %v", err)
	}
	if lookups[0].Item.Int64 != 1 {
		t.Fatalf("a = %+v", lookups[0].Item)
	}
	if lookups[1].Item.Text() != "x" {
		t.Fatalf("b = %+v", lookups[1].Item)
	}
	if len(lookups[2].Item.Bytes) != 1 || lookups[2].Item.Bytes[0] != 0xff {
		t.Fatalf("3 = %+v", lookups[2].Item)
	}

	d.RewindMap()
	missing := []qcbor.MapLookup{qcbor.MapLookupSZ("nope", qcbor.KindAny)}
	d.GetItemsInMap(missing)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrLabelNotFound) {
		t.Fatalf("missing lookup = %v", err)
	}

	d.RewindMap()
	wrongKind := []qcbor.MapLookup{qcbor.MapLookupSZ("a", qcbor.KindTextString)}
	d.GetItemsInMap(wrongKind)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrUnexpectedType) {
		t.Fatalf("kind mismatch = %v", err)
	}
}

func TestConvertToInt64(t *testing.T) {
	cases := []struct {
		name string
		hex  string
		opts qcbor.Convert
		want int64
		err  qcbor.Code
	}{
		{name: "plain", hex: "0a", opts: qcbor.ConvertNone, want: 10},
		{name: "negative", hex: "29", opts: qcbor.ConvertNone, want: -10},
		{name: "float-round-to-even", hex: "fb4004000000000000", opts: qcbor.ConvertAll, want: 2},
		{name: "float-whole", hex: "fbc059000000000000", opts: qcbor.ConvertAll, want: -100},
		{name: "float-refused", hex: "fb4004000000000000", opts: qcbor.ConvertXInt64, err: qcbor.ErrUnexpectedType},
		{name: "float-nan", hex: "f97e00", opts: qcbor.ConvertAll, err: qcbor.ErrFloatException},
		{name: "bignum", hex: "c243010000", opts: qcbor.ConvertAll, want: 65536},
		{name: "neg-bignum", hex: "c343010000", opts: qcbor.ConvertAll, want: -65537},
		{name: "bignum-too-wide", hex: "c249010000000000000000", opts: qcbor.ConvertAll, err: qcbor.ErrConversionUnderOverFlow},
		{name: "decimal-fraction", hex: "c4820203", opts: qcbor.ConvertAll, want: 300},
		{name: "decimal-fraction-inexact", hex: "c48221196ab3", opts: qcbor.ConvertAll, err: qcbor.ErrConversionUnderOverFlow},
		{name: "bigfloat", hex: "c5820203", opts: qcbor.ConvertAll, want: 12},
		{name: "bigfloat-inexact", hex: "c5822003", opts: qcbor.ConvertAll, err: qcbor.ErrConversionUnderOverFlow},
		{name: "uint64-overflow", hex: "1bffffffffffffffff", opts: qcbor.ConvertAll, err: qcbor.ErrConversionUnderOverFlow},
		{name: "text", hex: "6161", opts: qcbor.ConvertAll, err: qcbor.ErrUnexpectedType},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := qcbor.NewDecoder(mustHex(t, tc.hex), qcbor.ModeNormal)
			var v int64
			d.GetInt64Convert(tc.opts, &v)
			err := d.GetAndResetError()
			if tc.err != 0 {
				if !errors.Is(err, tc.err) {
					t.Fatalf("err = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if v != tc.want {
				t.Fatalf("v = %d, want %d", v, tc.want)
			}
		})
	}
}

func TestConvertToUint64(t *testing.T) {
	cases := []struct {
		name string
		hex  string
		opts qcbor.Convert
		want uint64
		err  qcbor.Code
	}{
		{name: "plain", hex: "183c", opts: qcbor.ConvertNone, want: 60},
		{name: "max", hex: "1bffffffffffffffff", opts: qcbor.ConvertNone, want: math.MaxUint64},
		{name: "negative-int", hex: "20", opts: qcbor.ConvertAll, err: qcbor.ErrNumberSignConversion},
		{name: "negative-float", hex: "fbbff0000000000000", opts: qcbor.ConvertAll, err: qcbor.ErrNumberSignConversion},
		{name: "neg-bignum", hex: "c3420100", opts: qcbor.ConvertAll, err: qcbor.ErrNumberSignConversion},
		{name: "bignum", hex: "c243010000", opts: qcbor.ConvertAll, want: 65536},
		{name: "decimal-fraction", hex: "c4820203", opts: qcbor.ConvertAll, want: 300},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := qcbor.NewDecoder(mustHex(t, tc.hex), qcbor.ModeNormal)
			var v uint64
			d.GetUInt64Convert(tc.opts, &v)
			err := d.GetAndResetError()
			if tc.err != 0 {
				if !errors.Is(err, tc.err) {
					t.Fatalf("err = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if v != tc.want {
				t.Fatalf("v = %d, want %d", v, tc.want)
			}
		})
	}
}

func TestConvertToDouble(t *testing.T) {
	cases := []struct {
		name   string
		hex    string
		opts   qcbor.Convert
		want   float64
		approx bool
		err    qcbor.Code
	}{
		{name: "double", hex: "fb3ff199999999999a", opts: qcbor.ConvertNone, want: 1.1},
		{name: "int", hex: "0a", opts: qcbor.ConvertXInt64, want: 10},
		{name: "negative-int", hex: "29", opts: qcbor.ConvertXInt64, want: -10},
		{name: "bignum", hex: "c243010000", opts: qcbor.ConvertAll, want: 65536},
		{name: "neg-bignum", hex: "c3420100", opts: qcbor.ConvertAll, want: -257},
		{name: "decimal-fraction", hex: "c48221196ab3", opts: qcbor.ConvertAll, want: 273.15, approx: true},
		{name: "bigfloat", hex: "c5822003", opts: qcbor.ConvertAll, want: 1.5},
		{name: "int-refused", hex: "0a", opts: qcbor.ConvertNone, err: qcbor.ErrUnexpectedType},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			d := qcbor.NewDecoder(mustHex(t, tc.hex), qcbor.ModeNormal)
			var v float64
			d.GetDoubleConvert(tc.opts, &v)
			err := d.GetAndResetError()
			if tc.err != 0 {
				if !errors.Is(err, tc.err) {
					t.Fatalf("err = %v, want %v", err, tc.err)
				}
				return
			}
			if err != nil {
				t.Fatalf("err = %v", err)
			}
			if tc.approx {
				if math.Abs(v-tc.want) > 1e-9 {
					t.Fatalf("v = %v, want about %v", v, tc.want)
				}
			} else if v != tc.want {
				t.Fatalf("v = %v, want %v", v, tc.want)
			}
		})
	}
}

func TestConvertHwFloatDisabled(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "0a"), qcbor.ModeNormal)
	d.SetConfig(qcbor.Config{DisableFloatHwUse: true})
	var f float64
	d.GetDoubleConvert(qcbor.ConvertAll, &f)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrHwFloatDisabled) {
		t.Fatalf("int to double without hw float = %v", err)
	}
}

func TestSimpleGetters(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "85f6f7f4f5f0"), qcbor.ModeNormal)
	d.EnterArray()
	d.GetNull()
	d.GetUndefined()
	var b bool
	d.GetBool(&b)
	if err := d.GetError(); err != nil || b {
		t.Fatalf("false = %v %v", b, err)
	}
	d.GetBool(&b)
	if err := d.GetError(); err != nil || !b {
		t.Fatalf("true = %v %v", b, err)
	}
	var s uint8
	d.GetSimple(&s)
	if err := d.GetError(); err != nil || s != 16 {
		t.Fatalf("simple = %d %v", s, err)
	}
	d.ExitArray()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestTaggedGetters(t *testing.T) {
	// {"when": 1(1363896240.5), "big": 2(h'0100'), "frac": 4([-2, 27315])}
	in := mustHex(t, "a3647768656ec1fb41d452d9ec20000063626967c24201006466726163c48221196ab3")
	d := qcbor.NewDecoder(in, qcbor.ModeNormal)
	d.EnterMap()

	var when qcbor.EpochDate
	d.GetDateEpochInMapSZ("when", &when)
	if when.Seconds != 1363896240 || when.Fraction != 0.5 {
		t.Fatalf("epoch = %d + %v", when.Seconds, when.Fraction)
	}

	var big []byte
	d.GetPosBignumInMapSZ("big", &big)
	if len(big) != 2 || big[0] != 0x01 || big[1] != 0x00 {
		t.Fatalf("bignum = % x", big)
	}

	var frac float64
	d.GetDoubleConvertInMapSZ("frac", qcbor.ConvertAll, &frac)
	if math.Abs(frac-273.15) > 1e-9 {
		t.Fatalf("fraction = %v", frac)
	}

	d.ExitMap()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestDecimalFractionAndBigFloatGetters(t *testing.T) {
	d := qcbor.NewDecoder(mustHex(t, "c48221196ab3"), qcbor.ModeNormal)
	var m qcbor.Mantissa
	d.GetDecimalFraction(&m)
	if err := d.GetError(); err != nil {
		t.Fatalf("GetDecimalFraction: %v", err)
	}
	if m.Exponent != -2 || m.Int != 27315 || m.Big != nil {
		t.Fatalf("mantissa = %+v", m)
	}

	d = qcbor.NewDecoder(mustHex(t, "c5822003"), qcbor.ModeNormal)
	d.GetBigFloat(&m)
	if err := d.GetError(); err != nil {
		t.Fatalf("GetBigFloat: %v", err)
	}
	if m.Exponent != -1 || m.Int != 3 {
		t.Fatalf("mantissa = %+v", m)
	}

	d = qcbor.NewDecoder(mustHex(t, "01"), qcbor.ModeNormal)
	d.GetDecimalFraction(&m)
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrUnexpectedType) {
		t.Fatalf("int as fraction = %v", err)
	}
}

func TestIndefiniteMapCursor(t *testing.T) {
	// {_ "a": 1, "b": [_ 2, 3]}
	d := qcbor.NewDecoder(mustHex(t, "bf61610161629f0203ffff"), qcbor.ModeNormal)
	d.EnterMap()
	var a int64
	d.GetInt64InMapSZ("a", &a)
	d.EnterArrayFromMapSZ("b")
	var x, y int64
	d.GetInt64(&x)
	d.GetInt64(&y)
	d.ExitArray()
	d.ExitMap()
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if a != 1 || x != 2 || y != 3 {
		t.Fatalf("decoded %d %d %d", a, x, y)
	}
}

func TestGetItemsInMapWithCallback(t *testing.T) {
	// {"a": 1, "b": 2, "c": [3]}
	d := qcbor.NewDecoder(mustHex(t, "a361610161620261638103"), qcbor.ModeNormal)
	d.EnterMap()
	lookups := []qcbor.MapLookup{qcbor.MapLookupSZ("b", qcbor.KindInt64)}
	var others []string
	d.GetItemsInMapWithCallback(lookups, func(it *qcbor.Item) error {
		others = append(others, it.Label.Text())
		return nil
	})
	if err := d.GetError(); err != nil {
		t.Fatalf("GetItemsInMapWithCallback: %v", err)
	}
	if lookups[0].Item.Int64 != 2 {
		t.Fatalf("b = %+v", lookups[0].Item)
	}
	if len(others) != 2 || others[0] != "a" || others[1] != "c" {
		t.Fatalf("callback saw %v", others)
	}

	d.RewindMap()
	boom := errors.New("not interested")
	d.GetItemsInMapWithCallback(nil, func(it *qcbor.Item) error { return boom })
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrCallbackFail) {
		t.Fatalf("callback error = %v, want ErrCallbackFail", err)
	}

	d.RewindMap()
	d.GetItemsInMapWithCallback(nil, func(it *qcbor.Item) error { return qcbor.ErrNoMoreItems })
	if err := d.GetAndResetError(); !errors.Is(err, qcbor.ErrNoMoreItems) {
		t.Fatalf("code passthrough = %v, want ErrNoMoreItems", err)
	}
}
