package qcbor

import "bytes"

// This file is the map-cursor layer of the Decoder. EnterMap and
// EnterArray restrict traversal to one container; lookups by label
// scan the whole entered map so duplicates are always caught. Every
// operation here checks the context's sticky error on entry and is a
// no-op once it is set, so a run of calls needs a single check at
// Finish or GetError.

// GetError returns the sticky error, or nil.
func (d *Decoder) GetError() error { return d.lastErr.errOrNil() }

// GetAndResetError returns the sticky error and clears it. Decoding
// may be resumed afterwards if the error was recoverable.
func (d *Decoder) GetAndResetError() error {
	c := d.lastErr
	d.lastErr = codeSuccess
	return c.errOrNil()
}

func (d *Decoder) setError(c Code) {
	if d.lastErr == codeSuccess {
		d.lastErr = c
	}
}

// EnterMap consumes the map head the cursor is at and restricts
// traversal to its entries. GetNext and the lookup functions stop at
// the map's edge with ErrNoMoreItems instead of ascending out of it.
func (d *Decoder) EnterMap() { d.enterContainer(KindMap, majorTypeMap) }

// EnterArray consumes the array head the cursor is at and restricts
// traversal to its elements.
func (d *Decoder) EnterArray() { d.enterContainer(KindArray, majorTypeArray) }

func (d *Decoder) enterContainer(kind Kind, major uint8) {
	if d.lastErr != codeSuccess {
		return
	}
	s := d.save()
	depthBefore := d.nesting.depth
	var it Item
	if _, c := d.nextEntry(&it, nil); c != codeSuccess {
		d.restore(s)
		d.setError(c)
		return
	}
	if it.Kind != kind {
		d.restore(s)
		d.setError(ErrUnexpectedType)
		return
	}
	if d.nesting.depth > depthBefore {
		d.nesting.current().bounded = true
		return
	}
	// empty definite container; no frame was pushed for it
	if c := d.nesting.push(nestFrame{
		major:   major,
		bounded: true,
		start:   d.in.position(),
	}); c != codeSuccess {
		d.setError(c)
	}
}

// ExitMap consumes whatever remains of the entered map, including
// entries never looked at, and resumes traversal in the parent.
func (d *Decoder) ExitMap() { d.exitContainer(majorTypeMap) }

// ExitArray consumes whatever remains of the entered array and
// resumes traversal in the parent.
func (d *Decoder) ExitArray() { d.exitContainer(majorTypeArray) }

func (d *Decoder) exitContainer(major uint8) {
	if d.lastErr != codeSuccess {
		return
	}
	i := d.nesting.boundedIndex()
	if i < 0 {
		d.setError(ErrMapNotEntered)
		return
	}
	if d.nesting.frames[i].major != major {
		d.setError(ErrExitMismatch)
		return
	}
	for {
		var it Item
		_, c := d.nextFull(&it, nil)
		if c == ErrNoMoreItems {
			break
		}
		if c != codeSuccess {
			d.setError(c)
			return
		}
	}
	if d.nesting.frames[i].indefinite {
		d.in.getByte() // the break
	}
	d.nesting.pop()
	d.ascend()
}

// RewindMap puts the cursor back on the first entry of the entered map
// or array, so its content can be traversed again.
func (d *Decoder) RewindMap() {
	if d.lastErr != codeSuccess {
		return
	}
	i := d.nesting.boundedIndex()
	if i < 0 {
		d.setError(ErrMapNotEntered)
		return
	}
	d.rewindBounded(i)
}

func (d *Decoder) rewindBounded(i int) {
	d.nesting.depth = i + 1
	f := &d.nesting.frames[i]
	f.remaining = f.count
	d.in.setPosition(f.start)
}

// labelMatchesN reports whether l is an integer label equal to n.
func labelMatchesN(l Label, n int64) bool {
	switch l.Kind {
	case KindInt64:
		return l.Int64 == n
	case KindUInt64:
		return n >= 0 && l.UInt64 == uint64(n)
	}
	return false
}

// labelMatchesSZ reports whether l is a text label equal to s.
func labelMatchesSZ(l Label, s string) bool {
	return l.Kind == KindTextString && string(l.Bytes) == s
}

func labelsEqual(a, b Label) bool {
	switch a.Kind {
	case KindInt64:
		return labelMatchesN(b, a.Int64)
	case KindUInt64:
		if a.UInt64 <= maxInt64 {
			return labelMatchesN(b, int64(a.UInt64))
		}
		return b.Kind == KindUInt64 && b.UInt64 == a.UInt64
	case KindTextString, KindByteString:
		return a.Kind == b.Kind && bytes.Equal(a.Bytes, b.Bytes)
	}
	return false
}

// skipChildren consumes items until the cursor is back at the child
// level of the bounded frame at index i.
func (d *Decoder) skipChildren(i int) Code {
	for d.nesting.depth > i+1 {
		var it Item
		if _, c := d.nextFull(&it, nil); c != codeSuccess {
			return c
		}
	}
	return codeSuccess
}

// mapSearch scans every entry of the entered map for a label accepted
// by match. The whole map is always walked so a second occurrence of
// the label is caught as ErrDuplicateLabel. On success the cursor is
// left just after the matched entry (after the head for containers,
// children next) and the pre-entry cursor state is returned so the
// entry can be re-traversed.
func (d *Decoder) mapSearch(match func(Label) bool) (Item, cursorState, Code) {
	var none cursorState
	i := d.nesting.boundedIndex()
	if i < 0 || d.nesting.frames[i].major != majorTypeMap {
		return Item{}, none, ErrMapNotEntered
	}
	d.rewindBounded(i)

	var matched Item
	var pre, after cursorState
	found := false
	for {
		entryStart := d.save()
		var cur Item
		_, c := d.nextFull(&cur, nil)
		if c == ErrNoMoreItems {
			break
		}
		if c != codeSuccess {
			return Item{}, none, c
		}
		if match(cur.Label) {
			if found {
				return Item{}, none, ErrDuplicateLabel
			}
			found = true
			matched = cur
			pre = entryStart
			after = d.save()
		}
		if c := d.skipChildren(i); c != codeSuccess {
			return Item{}, none, c
		}
	}
	if !found {
		return Item{}, none, ErrLabelNotFound
	}
	d.restore(after)
	return matched, pre, codeSuccess
}

// GetItemInMapN looks up the entry with integer label n in the entered
// map. expected is checked against the value's kind unless it is
// KindAny.
func (d *Decoder) GetItemInMapN(n int64, expected Kind, it *Item) {
	d.getItemInMap(func(l Label) bool { return labelMatchesN(l, n) }, expected, it)
}

// GetItemInMapSZ looks up the entry with text label s in the entered
// map.
func (d *Decoder) GetItemInMapSZ(s string, expected Kind, it *Item) {
	d.getItemInMap(func(l Label) bool { return labelMatchesSZ(l, s) }, expected, it)
}

func (d *Decoder) getItemInMap(match func(Label) bool, expected Kind, it *Item) {
	if d.lastErr != codeSuccess {
		return
	}
	matched, _, c := d.mapSearch(match)
	if c != codeSuccess {
		d.setError(c)
		return
	}
	if expected != KindAny && matched.Kind != expected {
		d.setError(ErrUnexpectedType)
		return
	}
	*it = matched
}

// EnterMapFromMapN looks up the map with integer label n in the
// entered map and enters it.
func (d *Decoder) EnterMapFromMapN(n int64) {
	d.enterFromMap(func(l Label) bool { return labelMatchesN(l, n) }, KindMap, majorTypeMap)
}

// EnterMapFromMapSZ looks up the map with text label s in the entered
// map and enters it.
func (d *Decoder) EnterMapFromMapSZ(s string) {
	d.enterFromMap(func(l Label) bool { return labelMatchesSZ(l, s) }, KindMap, majorTypeMap)
}

// EnterArrayFromMapN looks up the array with integer label n in the
// entered map and enters it.
func (d *Decoder) EnterArrayFromMapN(n int64) {
	d.enterFromMap(func(l Label) bool { return labelMatchesN(l, n) }, KindArray, majorTypeArray)
}

// EnterArrayFromMapSZ looks up the array with text label s in the
// entered map and enters it.
func (d *Decoder) EnterArrayFromMapSZ(s string) {
	d.enterFromMap(func(l Label) bool { return labelMatchesSZ(l, s) }, KindArray, majorTypeArray)
}

func (d *Decoder) enterFromMap(match func(Label) bool, kind Kind, major uint8) {
	if d.lastErr != codeSuccess {
		return
	}
	matched, pre, c := d.mapSearch(match)
	if c != codeSuccess {
		d.setError(c)
		return
	}
	if matched.Kind != kind {
		d.setError(ErrUnexpectedType)
		return
	}
	d.restore(pre)
	d.enterContainer(kind, major)
}

// MapLookup is one requested entry for GetItemsInMap. Label selects
// the entry, Kind the expected value type (KindAny for any); Item is
// filled with the value on success.
type MapLookup struct {
	Label Label
	Kind  Kind
	Item  Item

	seen bool
}

// MapLookupN builds a lookup for an integer label.
func MapLookupN(n int64, kind Kind) MapLookup {
	return MapLookup{Label: Label{Kind: KindInt64, Int64: n}, Kind: kind}
}

// MapLookupSZ builds a lookup for a text label.
func MapLookupSZ(s string, kind Kind) MapLookup {
	return MapLookup{Label: Label{Kind: KindTextString, Bytes: []byte(s)}, Kind: kind}
}

// GetItemsInMap resolves all lookups in one pass over the entered map.
// Each requested label must occur exactly once: a second occurrence
// fails with ErrDuplicateLabel, a missing one with ErrLabelNotFound.
func (d *Decoder) GetItemsInMap(lookups []MapLookup) {
	d.GetItemsInMapWithCallback(lookups, nil)
}

// GetItemsInMapWithCallback is GetItemsInMap with every entry that
// matches no lookup handed to cb. An error from cb stops the
// iteration; errors that are not Codes surface as ErrCallbackFail.
func (d *Decoder) GetItemsInMapWithCallback(lookups []MapLookup, cb func(*Item) error) {
	if d.lastErr != codeSuccess {
		return
	}
	i := d.nesting.boundedIndex()
	if i < 0 || d.nesting.frames[i].major != majorTypeMap {
		d.setError(ErrMapNotEntered)
		return
	}
	for j := range lookups {
		lookups[j].seen = false
	}
	d.rewindBounded(i)
	for {
		var cur Item
		_, c := d.nextFull(&cur, nil)
		if c == ErrNoMoreItems {
			break
		}
		if c != codeSuccess {
			d.setError(c)
			return
		}
		matched := false
		for j := range lookups {
			if !labelsEqual(lookups[j].Label, cur.Label) {
				continue
			}
			if lookups[j].seen {
				d.setError(ErrDuplicateLabel)
				return
			}
			if lookups[j].Kind != KindAny && cur.Kind != lookups[j].Kind {
				d.setError(ErrUnexpectedType)
				return
			}
			lookups[j].seen = true
			lookups[j].Item = cur
			matched = true
		}
		if !matched && cb != nil {
			if err := cb(&cur); err != nil {
				d.setError(asCode(err))
				return
			}
		}
		if c := d.skipChildren(i); c != codeSuccess {
			d.setError(c)
			return
		}
	}
	for j := range lookups {
		if !lookups[j].seen {
			d.setError(ErrLabelNotFound)
			return
		}
	}
}
