package qcbor

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// Diag renders every top-level item in b in RFC 8949 diagnostic
// notation, separated by ", ". Maps are traversed label by label so
// any well-formed label type can be shown.
func Diag(b []byte) (string, error) {
	d := NewDecoder(b, ModeMapAsArray)
	d.SetStringAllocator(HeapAllocator{}, false)

	var sb strings.Builder
	var p diagPrinter
	firstTop := true
	for {
		var it Item
		var tags [MaxTagsPerItem]uint64
		n, err := d.GetNextWithTags(&it, tags[:])
		if err == ErrNoMoreItems {
			break
		}
		if err != nil {
			return "", err
		}
		if len(p.stack) == 0 {
			if !firstTop {
				sb.WriteString(", ")
			}
			firstTop = false
		}
		p.item(&sb, &it, tags[:n])
	}
	return sb.String(), d.Finish()
}

type diagFrame struct {
	closer byte
	isMap  bool
	indef  bool
	first  bool
	value  bool // in a map, the next child is a value
	parens int  // tag parentheses closed with the container
}

type diagPrinter struct {
	stack []diagFrame
}

func (p *diagPrinter) item(sb *strings.Builder, it *Item, tags []uint64) {
	if len(p.stack) > 0 {
		f := &p.stack[len(p.stack)-1]
		if f.isMap && f.value {
			sb.WriteString(": ")
			f.value = false
		} else {
			if !f.first {
				sb.WriteString(", ")
			} else if f.indef {
				sb.WriteString(" ")
			}
			f.first = false
			if f.isMap {
				f.value = true
			}
		}
	}

	// tags come innermost first; print outermost first
	for i := len(tags) - 1; i >= 0; i-- {
		sb.WriteString(strconv.FormatUint(tags[i], 10))
		sb.WriteByte('(')
	}

	if it.IsContainer() {
		opener, closer := byte('['), byte(']')
		isMap := false
		if it.Kind == KindMapAsArray || it.Kind == KindMap {
			opener, closer = '{', '}'
			isMap = true
		}
		sb.WriteByte(opener)
		indef := it.Count == CountIndefinite
		if indef {
			sb.WriteByte('_')
		}
		p.stack = append(p.stack, diagFrame{
			closer: closer,
			isMap:  isMap,
			indef:  indef,
			first:  true,
			parens: len(tags),
		})
	} else {
		p.value(sb, it)
		sb.WriteString(strings.Repeat(")", len(tags)))
	}

	for len(p.stack) > int(it.NextNestLevel) {
		f := p.stack[len(p.stack)-1]
		p.stack = p.stack[:len(p.stack)-1]
		sb.WriteByte(f.closer)
		sb.WriteString(strings.Repeat(")", f.parens))
	}
}

func (p *diagPrinter) value(sb *strings.Builder, it *Item) {
	switch it.Kind {
	case KindInt64:
		sb.WriteString(strconv.FormatInt(it.Int64, 10))
	case KindUInt64:
		sb.WriteString(strconv.FormatUint(it.UInt64, 10))
	case KindByteString:
		writeHexString(sb, it.Bytes)
	case KindTextString:
		sb.WriteString(strconv.Quote(it.Text()))
	case KindFalse:
		sb.WriteString("false")
	case KindTrue:
		sb.WriteString("true")
	case KindNull:
		sb.WriteString("null")
	case KindUndef:
		sb.WriteString("undefined")
	case KindFloat32, KindFloat64:
		sb.WriteString(formatFloatDiag(it.Float64))
	case KindUnknownSimple:
		sb.WriteString("simple(")
		sb.WriteString(strconv.FormatUint(uint64(it.Simple), 10))
		sb.WriteByte(')')

	case KindDateString:
		sb.WriteString("0(")
		sb.WriteString(strconv.Quote(it.Text()))
		sb.WriteByte(')')
	case KindDateEpoch:
		sb.WriteString("1(")
		if it.Epoch.Fraction == 0 {
			sb.WriteString(strconv.FormatInt(it.Epoch.Seconds, 10))
		} else {
			sb.WriteString(formatFloatDiag(float64(it.Epoch.Seconds) + it.Epoch.Fraction))
		}
		sb.WriteByte(')')
	case KindDaysEpoch:
		sb.WriteString("100(")
		sb.WriteString(strconv.FormatInt(it.Days, 10))
		sb.WriteByte(')')
	case KindDaysString:
		sb.WriteString("1004(")
		sb.WriteString(strconv.Quote(it.Text()))
		sb.WriteByte(')')
	case KindPosBignum:
		sb.WriteString("2(")
		writeHexString(sb, it.Bytes)
		sb.WriteByte(')')
	case KindNegBignum:
		sb.WriteString("3(")
		writeHexString(sb, it.Bytes)
		sb.WriteByte(')')

	case KindDecimalFraction, KindDecimalFractionPosBignum, KindDecimalFractionNegBignum:
		p.expMantissa(sb, it, '4', it.Kind == KindDecimalFractionNegBignum)
	case KindBigFloat, KindBigFloatPosBignum, KindBigFloatNegBignum:
		p.expMantissa(sb, it, '5', it.Kind == KindBigFloatNegBignum)
	}
}

func (p *diagPrinter) expMantissa(sb *strings.Builder, it *Item, tag byte, neg bool) {
	sb.WriteByte(tag)
	sb.WriteString("([")
	sb.WriteString(strconv.FormatInt(it.Mantissa.Exponent, 10))
	sb.WriteString(", ")
	if it.Mantissa.Big != nil {
		if neg {
			sb.WriteString("3(")
		} else {
			sb.WriteString("2(")
		}
		writeHexString(sb, it.Mantissa.Big)
		sb.WriteByte(')')
	} else {
		sb.WriteString(strconv.FormatInt(it.Mantissa.Int, 10))
	}
	sb.WriteString("])")
}

func writeHexString(sb *strings.Builder, b []byte) {
	sb.WriteString("h'")
	sb.WriteString(hex.EncodeToString(b))
	sb.WriteByte('\'')
}

// formatFloatDiag returns a diagnostic string matching the RFC
// examples.
func formatFloatDiag(f float64) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	af := math.Abs(f)
	if af == 0 || af < 1e15 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		return trimTrailingZerosDot(s)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func trimTrailingZerosDot(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
