package qcbor

// MemPoolMinSize is the bookkeeping overhead SetMemPool needs before
// any string bytes fit.
const MemPoolMinSize = 8

// StringAllocator provides the memory decoded strings land in when
// the input cannot be aliased. Reallocate and Free are only ever
// applied to the most recent live allocation, which lets simple
// bump-style pools serve. Allocate and Reallocate return nil when the
// request cannot be met. Destruct is called exactly once, by Finish.
type StringAllocator interface {
	Allocate(size int) []byte
	Reallocate(old []byte, size int) []byte
	Free(old []byte)
	Destruct()
}

// AllocFunc adapts a single function to StringAllocator using the
// classic (old, size) mode convention: old nil allocates, size zero
// frees, both zero destructs.
type AllocFunc func(old []byte, size int) []byte

func (f AllocFunc) Allocate(size int) []byte { return f(nil, size) }

func (f AllocFunc) Reallocate(old []byte, size int) []byte { return f(old, size) }

func (f AllocFunc) Free(old []byte) {
	if old != nil {
		f(old, 0)
	}
}

func (f AllocFunc) Destruct() { f(nil, 0) }

// HeapAllocator is a StringAllocator backed by the Go heap, for hosts
// that do not need the fixed-pool discipline.
type HeapAllocator struct{}

func (HeapAllocator) Allocate(size int) []byte { return make([]byte, size) }

func (HeapAllocator) Reallocate(old []byte, size int) []byte {
	if size <= cap(old) {
		return old[:size]
	}
	nb := make([]byte, size, size*2)
	copy(nb, old)
	return nb
}

func (HeapAllocator) Free(old []byte) {}

func (HeapAllocator) Destruct() {}

// memPool is the built-in fixed-pool allocator: a bump allocator over
// a caller-supplied slice. Because only the latest allocation is ever
// grown or freed, growth extends in place and free rewinds the
// high-water mark.
type memPool struct {
	pool []byte
	used int
	last int // start of the most recent allocation
}

func newMemPool(pool []byte) (*memPool, Code) {
	if len(pool) < MemPoolMinSize {
		return nil, ErrMemPoolSize
	}
	return &memPool{pool: pool[MemPoolMinSize:]}, codeSuccess
}

func (p *memPool) Allocate(size int) []byte {
	if p.used+size > len(p.pool) {
		return nil
	}
	p.last = p.used
	p.used += size
	return p.pool[p.last:p.used:p.used]
}

func (p *memPool) Reallocate(old []byte, size int) []byte {
	if old == nil {
		return p.Allocate(size)
	}
	if p.last+size > len(p.pool) {
		return nil
	}
	p.used = p.last + size
	return p.pool[p.last:p.used:p.used]
}

func (p *memPool) Free(old []byte) {
	if old != nil {
		p.used = p.last
	}
}

func (p *memPool) Destruct() {
	p.pool = nil
	p.used = 0
	p.last = 0
}
