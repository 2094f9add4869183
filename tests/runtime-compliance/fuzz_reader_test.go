package tests

import (
	"testing"

	qcbor "github.com/plietar/qcbor.go/runtime"
)

// FuzzDecoderBasic drives the Decoder and the validation entrypoints
// over arbitrary inputs under every decode mode and several
// feature-switch mixes,
// checking that nothing panics and that errors stay within the
// documented classification.
func FuzzDecoderBasic(f *testing.F) {
	f.Add([]byte{0xa1, 0x61, 0x61, 0x01})                   // {"a": 1}
	f.Add([]byte{0x83, 0x01, 0x02, 0x03})                   // [1, 2, 3]
	f.Add([]byte{0x9f, 0x01, 0x02, 0xff})                   // [_ 1, 2]
	f.Add([]byte{0xc1, 0xfb, 0x41, 0xd4, 0x52, 0xd9, 0xec, 0x20, 0x00, 0x00}) // 1(1363896240.5)
	f.Add([]byte{0xc4, 0x82, 0x21, 0x19, 0x6a, 0xb3})       // 4([-2, 27315])
	f.Add([]byte{0x7f, 0x61, 0x61, 0x61, 0x62, 0xff})       // "ab" chunked
	f.Add([]byte{0xff, 0x00, 0x01, 0x02, 0x03})             // stray break

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in decoder fuzz: %v", r)
			}
		}()

		configs := []struct {
			mode   qcbor.DecodeMode
			cfg    qcbor.Config
			strict bool
			pool   bool
		}{
			{mode: qcbor.ModeNormal},
			{mode: qcbor.ModeMapStringsOnly},
			{mode: qcbor.ModeMapAsArray},
			{mode: qcbor.ModeNormal, strict: true},
			{mode: qcbor.ModeNormal, cfg: qcbor.Config{DisableIndefLenStrings: true, DisableIndefLenArrays: true}},
			{mode: qcbor.ModeNormal, cfg: qcbor.Config{DisableAllFloat: true, DisableExpAndMantissa: true}},
			{mode: qcbor.ModeNormal, pool: true},
		}

		for _, c := range configs {
			d := qcbor.NewDecoder(data, c.mode)
			d.SetConfig(c.cfg)
			if c.strict {
				d.SetStrictMinimalEncoding()
			}
			if c.pool {
				if err := d.SetMemPool(make([]byte, 256), true); err != nil {
					t.Fatalf("SetMemPool: %v", err)
				}
			} else {
				d.SetStringAllocator(qcbor.HeapAllocator{}, false)
			}

			var tags [qcbor.MaxTagsPerItem]uint64
			for i := 0; i < 1<<16; i++ {
				var it qcbor.Item
				_, err := d.GetNextWithTags(&it, tags[:])
				if err == nil {
					continue
				}
				code, ok := err.(qcbor.Code)
				if !ok {
					t.Fatalf("error %v is not a Code", err)
				}
				if code != qcbor.ErrNoMoreItems && !code.IsNotWellFormed() &&
					!code.IsUnrecoverable() && !code.IsRecoverable() {
					t.Fatalf("error %v outside every classification band", code)
				}
				break
			}
			_ = d.Finish()
		}

		_ = qcbor.Validate(data)
		_ = qcbor.ValidateSequence(data)
		_, _ = qcbor.Diag(data)
	})
}

// FuzzDecoderMapCursor exercises the map-cursor layer on arbitrary
// input; the sticky error must absorb any failure without a panic.
func FuzzDecoderMapCursor(f *testing.F) {
	f.Add([]byte{0xa2, 0x61, 0x61, 0x01, 0x61, 0x62, 0x82, 0x02, 0x03})
	f.Add([]byte{0xbf, 0x01, 0x02, 0xff})
	f.Add([]byte{0xa0})

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("panic in map cursor fuzz: %v", r)
			}
		}()

		d := qcbor.NewDecoder(data, qcbor.ModeNormal)
		d.SetStringAllocator(qcbor.HeapAllocator{}, false)
		d.EnterMap()
		var i64 int64
		var u64 uint64
		var f64 float64
		var s string
		var b []byte
		var ok bool
		d.GetInt64InMapSZ("a", &i64)
		d.GetUInt64InMapN(1, &u64)
		d.GetDoubleConvertInMapSZ("b", qcbor.ConvertAll, &f64)
		d.GetTextInMapSZ("a", &s)
		d.GetBytesInMapN(2, &b)
		d.GetBoolInMapSZ("c", &ok)
		d.RewindMap()
		d.EnterArrayFromMapSZ("b")
		d.GetInt64(&i64)
		d.ExitArray()
		d.ExitMap()
		_ = d.GetAndResetError()
		_ = d.Finish()
	})
}
