package tests

import (
	"encoding/hex"
	"errors"
	"testing"

	qcbor "github.com/plietar/qcbor.go/runtime"
)

type rfcExample struct {
	name string
	diag string
	hex  string
}

// Vectors from RFC 8949 Appendix A, rendered the way Diag renders
// them: whole floats print without a trailing ".0" and empty
// indefinite containers close immediately after the underscore.
var rfcExamples = []rfcExample{
	{name: "zero", diag: "0", hex: "00"},
	{name: "one", diag: "1", hex: "01"},
	{name: "ten", diag: "10", hex: "0a"},
	{name: "direct-max", diag: "23", hex: "17"},
	{name: "uint8-min", diag: "24", hex: "1818"},
	{name: "thousand", diag: "1000", hex: "1903e8"},
	{name: "trillion", diag: "1000000000000", hex: "1b000000e8d4a51000"},
	{name: "minus-one", diag: "-1", hex: "20"},
	{name: "minus-hundred", diag: "-100", hex: "3863"},
	{name: "false", diag: "false", hex: "f4"},
	{name: "true", diag: "true", hex: "f5"},
	{name: "null", diag: "null", hex: "f6"},
	{name: "undefined", diag: "undefined", hex: "f7"},
	{name: "simple-16", diag: "simple(16)", hex: "f0"},
	{name: "simple-255", diag: "simple(255)", hex: "f8ff"},
	{name: "bytes-empty", diag: "h''", hex: "40"},
	{name: "bytes-01020304", diag: "h'01020304'", hex: "4401020304"},
	{name: "text-a", diag: "\"a\"", hex: "6161"},
	{name: "text-ietf", diag: "\"IETF\"", hex: "6449455446"},
	{name: "text-escapes", diag: "\"\\\"\\\\\"", hex: "62225c"},
	{name: "array-empty", diag: "[]", hex: "80"},
	{name: "array-1-2-3", diag: "[1, 2, 3]", hex: "83010203"},
	{name: "array-nested", diag: "[1, [2, 3], [4, 5]]", hex: "8301820203820405"},
	{name: "map-empty", diag: "{}", hex: "a0"},
	{name: "map-int-labels", diag: "{1: 2, 3: 4}", hex: "a201020304"},
	{name: "map-mixed", diag: "{\"a\": 1, \"b\": [2, 3]}", hex: "a26161016162820203"},
	{name: "indef-array-1-2", diag: "[_ 1, 2]", hex: "9f0102ff"},
	{name: "indef-map-nested", diag: "{_ \"a\": 1, \"b\": [_ 2, 3]}", hex: "bf61610161629f0203ffff"},
	{name: "indef-bytes", diag: "h'0102030405'", hex: "5f42010243030405ff"},
	{name: "indef-text", diag: "\"streaming\"", hex: "7f657374726561646d696e67ff"},
	{name: "tag-date-string", diag: "0(\"2013-03-21T20:04:00Z\")", hex: "c074323031332d30332d32315432303a30343a30305a"},
	{name: "tag-epoch-datetime", diag: "1(1363896240)", hex: "c11a514b67b0"},
	{name: "tag-epoch-datetime-float", diag: "1(1363896240.5)", hex: "c1fb41d452d9ec200000"},
	{name: "tag-pos-bignum", diag: "2(h'010000000000000000')", hex: "c249010000000000000000"},
	{name: "tag-neg-bignum", diag: "3(h'010000000000000000')", hex: "c349010000000000000000"},
	{name: "tag-decimal-fraction", diag: "4([-2, 27315])", hex: "c48221196ab3"},
	{name: "tag-bigfloat", diag: "5([-1, 3])", hex: "c5822003"},
	{name: "tag-base16", diag: "23(h'01020304')", hex: "d74401020304"},
	{name: "tag-self-describe", diag: "55799(0)", hex: "d9d9f700"},
	{name: "half-zero", diag: "0", hex: "f90000"},
	{name: "half-1.5", diag: "1.5", hex: "f93e00"},
	{name: "half-minus-4", diag: "-4", hex: "f9c400"},
	{name: "half-infinity", diag: "Infinity", hex: "f97c00"},
	{name: "half-neg-infinity", diag: "-Infinity", hex: "f9fc00"},
	{name: "half-nan", diag: "NaN", hex: "f97e00"},
	{name: "single-100000", diag: "100000", hex: "fa47c35000"},
	{name: "double-1.1", diag: "1.1", hex: "fb3ff199999999999a"},
	{name: "double-1e300", diag: "1e+300", hex: "fb7e37e43c8800759c"},
}

func TestRFCExamplesDiagAndWellFormed(t *testing.T) {
	for _, ex := range rfcExamples {
		ex := ex
		t.Run(ex.name, func(t *testing.T) {
			msg, err := hex.DecodeString(ex.hex)
			if err != nil {
				t.Fatalf("bad hex %q: %v", ex.hex, err)
			}

			got, err := qcbor.Diag(msg)
			if err != nil {
				t.Fatalf("Diag error: %v", err)
			}
			if got != ex.diag {
				t.Fatalf("diag mismatch: got %q want %q (hex %s)", got, ex.diag, ex.hex)
			}

			if err := qcbor.Validate(msg); err != nil {
				t.Fatalf("Validate error: %v", err)
			}
		})
	}
}

var malformedExamples = []struct {
	name string
	hex  string
	want qcbor.Code
}{
	{name: "reserved-addinfo-28", hex: "1c", want: qcbor.ErrUnsupported},
	{name: "reserved-addinfo-29", hex: "1d", want: qcbor.ErrUnsupported},
	{name: "reserved-addinfo-30", hex: "1e", want: qcbor.ErrUnsupported},
	{name: "lone-break", hex: "ff", want: qcbor.ErrBadBreak},
	{name: "break-in-definite-array", hex: "81ff", want: qcbor.ErrBadBreak},
	{name: "truncated-uint8-arg", hex: "18", want: qcbor.ErrHitEnd},
	{name: "truncated-text", hex: "6261", want: qcbor.ErrHitEnd},
	{name: "truncated-array", hex: "81", want: qcbor.ErrHitEnd},
	{name: "unterminated-indef-array", hex: "9f01", want: qcbor.ErrHitEnd},
	{name: "two-byte-simple-below-32", hex: "f801", want: qcbor.ErrBadType7},
	{name: "indef-bytes-text-chunk", hex: "5f6161ff", want: qcbor.ErrIndefiniteStringChunk},
	{name: "trailing-bytes", hex: "0000", want: qcbor.ErrExtraBytes},
	{name: "invalid-utf8-text", hex: "61ff", want: qcbor.ErrInvalidUTF8},
}

func TestRFCMalformedRejected(t *testing.T) {
	for _, ex := range malformedExamples {
		ex := ex
		t.Run(ex.name, func(t *testing.T) {
			msg, err := hex.DecodeString(ex.hex)
			if err != nil {
				t.Fatalf("bad hex %q: %v", ex.hex, err)
			}
			if err := qcbor.Validate(msg); !errors.Is(err, ex.want) {
				t.Fatalf("Validate = %v, want %v", err, ex.want)
			}
		})
	}
}

func TestDiagSequence(t *testing.T) {
	msg := []byte{0x00, 0x62, 0x68, 0x69}
	got, err := qcbor.Diag(msg)
	if err != nil {
		t.Fatalf("Diag error: %v", err)
	}
	if got != "0, \"hi\"" {
		t.Fatalf("sequence diag mismatch: got %q", got)
	}

	if err := qcbor.ValidateSequence(msg); err != nil {
		t.Fatalf("ValidateSequence error: %v", err)
	}
	if err := qcbor.Validate(msg); !errors.Is(err, qcbor.ErrExtraBytes) {
		t.Fatalf("Validate on sequence = %v, want ErrExtraBytes", err)
	}
	if err := qcbor.ValidateSequence(nil); err != nil {
		t.Fatalf("ValidateSequence on empty input = %v", err)
	}
}
