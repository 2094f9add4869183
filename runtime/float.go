package qcbor

import (
	"math"

	"github.com/x448/float16"
)

// halfToDouble expands IEEE 754 binary16 bits to a float64, covering
// subnormals, infinities and NaN.
func halfToDouble(bits uint16) float64 {
	return float64(float16.Frombits(bits).Float32())
}

// doubleFitsHalf reports whether f survives a round trip through
// binary16 unchanged, along with the binary16 bits.
func doubleFitsHalf(f float64) (uint16, bool) {
	f32 := float32(f)
	if float64(f32) != f {
		return 0, false
	}
	h := float16.Fromfloat32(f32)
	return h.Bits(), h.Float32() == f32
}

// appendPreferredDouble emits the narrowest of half, single and
// double precision that represents f exactly. NaN and the infinities
// always collapse to half precision.
func (w *writeBuffer) appendPreferredDouble(f float64) {
	if math.IsNaN(f) {
		w.appendByte(makeByte(majorTypeSimple, simpleFloat16))
		w.appendByte(0x7e)
		w.appendByte(0x00)
		return
	}
	if bits, ok := doubleFitsHalf(f); ok {
		w.appendByte(makeByte(majorTypeSimple, simpleFloat16))
		w.appendByte(byte(bits >> 8))
		w.appendByte(byte(bits))
		return
	}
	if f32 := float32(f); float64(f32) == f {
		w.appendFloat32(f32)
		return
	}
	w.appendFloat64(f)
}

func (w *writeBuffer) appendFloat32(f float32) {
	bits := math.Float32bits(f)
	w.appendByte(makeByte(majorTypeSimple, simpleFloat32))
	w.appendByte(byte(bits >> 24))
	w.appendByte(byte(bits >> 16))
	w.appendByte(byte(bits >> 8))
	w.appendByte(byte(bits))
}

func (w *writeBuffer) appendFloat64(f float64) {
	bits := math.Float64bits(f)
	w.appendByte(makeByte(majorTypeSimple, simpleFloat64))
	for shift := 56; shift >= 0; shift -= 8 {
		w.appendByte(byte(bits >> shift))
	}
}
