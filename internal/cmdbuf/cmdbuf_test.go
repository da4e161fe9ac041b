package cmdbuf

import (
	"errors"
	"testing"
)

func TestWordsGrowPreservesContents(t *testing.T) {
	tests := []struct {
		name string
		n    int
	}{
		{"below initial capacity", 10},
		{"exactly initial capacity", InitialWords},
		{"one past initial capacity", InitialWords + 1},
		{"several resizes", InitialWords*5 + 17},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w Words
			for i := 0; i < tt.n; i++ {
				w.Push(uint32(i)*2654435761 ^ 0x5bd1e995)
			}
			if w.Len() != tt.n {
				t.Fatalf("Len = %d, want %d", w.Len(), tt.n)
			}
			for i := 0; i < tt.n; i++ {
				want := uint32(i)*2654435761 ^ 0x5bd1e995
				if got := w.At(i); got != want {
					t.Fatalf("word %d = %#x, want %#x", i, got, want)
				}
			}
		})
	}
}

func TestWordsGrowthIsGeometric(t *testing.T) {
	var w Words
	caps := map[int]bool{}
	for i := 0; i < InitialWords*8; i++ {
		w.Push(1)
		caps[w.Cap()] = true
	}
	for _, c := range []int{InitialWords, InitialWords * 2, InitialWords * 4, InitialWords * 8} {
		if !caps[c] {
			t.Errorf("capacity %d never observed, saw %v", c, caps)
		}
	}
}

func TestWordsResetKeepsCapacity(t *testing.T) {
	var w Words
	for i := 0; i < InitialWords+1; i++ {
		w.Push(uint32(i))
	}
	c := w.Cap()
	w.Reset()
	if w.Len() != 0 || w.Cap() != c {
		t.Errorf("after Reset Len=%d Cap=%d, want 0 and %d", w.Len(), w.Cap(), c)
	}
}

func TestReaderRoundTrip(t *testing.T) {
	var w Words
	w.Push(uint32(OpDraw))
	w.PushInt(6)
	w.PushF32(1.5)
	refs := []any{"bindings"}

	r := NewReader(w.Slice(), refs)
	if op := r.Op(); op != OpDraw {
		t.Fatalf("Op = %v, want Draw", op)
	}
	if v := r.Int(); v != 6 {
		t.Errorf("Int = %d, want 6", v)
	}
	if f := r.F32(); f != 1.5 {
		t.Errorf("F32 = %v, want 1.5", f)
	}
	if ref := r.Ref(); ref != "bindings" {
		t.Errorf("Ref = %v", ref)
	}
	if !r.Done() {
		t.Error("reader should be exhausted")
	}
}

func TestReaderTruncatedPanics(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader)
	}{
		{"word", func(r *Reader) { r.U32() }},
		{"ref", func(r *Reader) { r.Ref() }},
		{"words", func(r *Reader) { r.Words(3) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				err, ok := recover().(error)
				if !ok || !errors.Is(err, ErrTruncated) {
					t.Errorf("recovered %v, want ErrTruncated", err)
				}
			}()
			r := NewReader(nil, nil)
			tt.read(&r)
		})
	}
}

func TestPushIntRejectsNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PushInt(-1) should panic")
		}
	}()
	var w Words
	w.PushInt(-1)
}

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{OpSetRenderPassParameters, "SetRenderPassParameters"},
		{OpDrawIndexed, "DrawIndexed"},
		{OpRenderEnd, "End"},
		{OpUploadTextureData, "UploadTextureData"},
		{Opcode(7), "Opcode(7)"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(%d).String() = %q, want %q", uint32(tt.op), got, tt.want)
		}
	}
}

func TestPoolReusesLastReturned(t *testing.T) {
	type obj struct{ id int }
	n := 0
	p := NewPool(func() *obj { n++; return &obj{id: n} })

	a := p.Get()
	b := p.Get()
	p.Put(a)
	p.Put(b)
	if got := p.Get(); got != b {
		t.Errorf("Get returned %d, want most recently returned %d", got.id, b.id)
	}
	if got := p.Get(); got != a {
		t.Errorf("Get returned %d, want %d", got.id, a.id)
	}
	if p.Allocated() != 2 {
		t.Errorf("Allocated = %d, want 2", p.Allocated())
	}

	p.Warm(3)
	if p.Len() != 3 || p.Allocated() != 5 {
		t.Errorf("after Warm: Len=%d Allocated=%d", p.Len(), p.Allocated())
	}
}

func BenchmarkWordsPush(b *testing.B) {
	var w Words
	for i := 0; i < b.N; i++ {
		if w.Len() == 4*InitialWords {
			w.Reset()
		}
		w.Push(uint32(i))
	}
}
