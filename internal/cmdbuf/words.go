// Package cmdbuf holds the flat instruction-stream primitives shared by the
// gfx passes: a growable word buffer, the opcode tables, a bounds-checked
// reader, and a LIFO pool for recycling pass objects.
package cmdbuf

import "math"

// InitialWords is the word capacity a fresh Words starts with.
const InitialWords = 0x400

// Words is a growable buffer of 32-bit words.
//
// Growth doubles the capacity and copies the words already written, so a
// Words never loses data on resize. Reset keeps the allocation.
type Words struct {
	buf []uint32
}

// Len returns the number of words written since the last Reset.
func (w *Words) Len() int { return len(w.buf) }

// Cap returns the current capacity in words.
func (w *Words) Cap() int { return cap(w.buf) }

// At returns word i. It panics if i is out of range.
func (w *Words) At(i int) uint32 { return w.buf[i] }

// Slice returns the written words. The slice aliases the buffer and is
// valid until the next Push or Reset.
func (w *Words) Slice() []uint32 { return w.buf }

// Reset empties the buffer, keeping its capacity.
func (w *Words) Reset() { w.buf = w.buf[:0] }

// Push appends one word.
func (w *Words) Push(v uint32) {
	w.growFor(1)
	w.buf = append(w.buf, v)
}

// PushF32 appends the IEEE-754 bits of f.
func (w *Words) PushF32(f float32) { w.Push(math.Float32bits(f)) }

// PushInt appends a non-negative int that fits in 32 bits.
// Operand sizes are checked at record time so replay never sees a
// truncated value.
func (w *Words) PushInt(v int) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		panic("cmdbuf: operand out of 32-bit range")
	}
	w.Push(uint32(v))
}

// growFor ensures that at least n more words fit without reallocating.
func (w *Words) growFor(n int) {
	if len(w.buf)+n <= cap(w.buf) {
		return
	}
	sz := 2 * cap(w.buf)
	if sz < InitialWords {
		sz = InitialWords
	}
	if sz < len(w.buf)+n {
		sz = 2 * (len(w.buf) + n)
	}
	b := make([]uint32, len(w.buf), sz)
	copy(b, w.buf)
	w.buf = b
}
