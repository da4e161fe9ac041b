package cmdbuf

import (
	"errors"
	"fmt"
	"math"
)

// ErrTruncated is the panic value wrapped when a stream is read past its end.
var ErrTruncated = errors.New("cmdbuf: instruction stream truncated")

// Reader is a forward cursor over a recorded word stream and its parallel
// reference list. Every read is bounds checked; reading past either end
// panics with an error wrapping ErrTruncated, since it means the encoder and
// decoder disagree.
type Reader struct {
	words []uint32
	refs  []any
	iw    int
	ir    int
}

// NewReader starts a cursor at the beginning of words and refs.
func NewReader(words []uint32, refs []any) Reader {
	return Reader{words: words, refs: refs}
}

// Op reads the next opcode.
func (r *Reader) Op() Opcode { return Opcode(r.U32()) }

// U32 reads the next word.
func (r *Reader) U32() uint32 {
	if r.iw >= len(r.words) {
		panic(fmt.Errorf("%w: word %d of %d", ErrTruncated, r.iw, len(r.words)))
	}
	v := r.words[r.iw]
	r.iw++
	return v
}

// Int reads the next word as an int.
func (r *Reader) Int() int { return int(r.U32()) }

// F32 reads the next word as float32 bits.
func (r *Reader) F32() float32 { return math.Float32frombits(r.U32()) }

// Ref reads the next object reference.
func (r *Reader) Ref() any {
	if r.ir >= len(r.refs) {
		panic(fmt.Errorf("%w: ref %d of %d", ErrTruncated, r.ir, len(r.refs)))
	}
	v := r.refs[r.ir]
	r.ir++
	return v
}

// Words returns the next n words without copying.
func (r *Reader) Words(n int) []uint32 {
	if n < 0 || r.iw+n > len(r.words) {
		panic(fmt.Errorf("%w: %d words at %d of %d", ErrTruncated, n, r.iw, len(r.words)))
	}
	s := r.words[r.iw : r.iw+n]
	r.iw += n
	return s
}

// Done reports whether every word and reference has been consumed.
func (r *Reader) Done() bool { return r.iw == len(r.words) && r.ir == len(r.refs) }
