package gltrace

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gfx/gl"
)

func TestRecordsCallsInOrder(t *testing.T) {
	c := New()
	b := c.CreateBuffer()
	c.BindBuffer(gl.ARRAY_BUFFER, b)
	c.DrawArrays(gl.TRIANGLES, 0, 3)

	calls := c.Calls()
	want := []string{"CreateBuffer(1)", "BindBuffer(0x8892, 1)", "DrawArrays(0x4, 0, 3)"}
	if len(calls) != len(want) {
		t.Fatalf("got %d calls, want %d", len(calls), len(want))
	}
	for i, w := range want {
		if got := calls[i].String(); got != w {
			t.Errorf("call %d = %s, want %s", i, got, w)
		}
	}
	if c.Count("BindBuffer") != 1 {
		t.Errorf("Count(BindBuffer) = %d, want 1", c.Count("BindBuffer"))
	}
	counts := c.Counts()
	if len(counts) != 3 || counts["DrawArrays"] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
	counts["DrawArrays"] = 7
	if c.Count("DrawArrays") != 1 {
		t.Error("Counts() must return a copy")
	}

	c.Reset()
	if c.Total() != 0 || c.Count("BindBuffer") != 0 {
		t.Error("Reset should clear calls and counters")
	}
	if next := c.CreateBuffer(); next != 2 {
		t.Errorf("object names should survive Reset, got %d", next)
	}
}

func TestBufferStorageRoundTrip(t *testing.T) {
	c := New()
	b := c.CreateBuffer()
	c.BindBuffer(gl.UNIFORM_BUFFER, b)
	c.BufferData(gl.UNIFORM_BUFFER, 8, gl.DYNAMIC_DRAW)
	c.BufferSubData(gl.UNIFORM_BUFFER, 4, []byte{1, 2, 3, 4})

	dst := make([]byte, 8)
	c.GetBufferSubData(gl.UNIFORM_BUFFER, 0, dst)
	want := []byte{0, 0, 0, 0, 1, 2, 3, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("read back %v, want %v", dst, want)
		}
	}
}

func TestProgramReflectionHooks(t *testing.T) {
	c := New()
	p, err := c.CreateProgram("vs", "fs")
	if err != nil {
		t.Fatalf("CreateProgram: %v", err)
	}
	if c.GetUniformBlockIndex(p, "ub_Scene") != 0 || c.GetUniformBlockIndex(p, "ub_Draw") != 1 {
		t.Error("block indices should be allocated in query order")
	}
	if c.GetUniformBlockIndex(p, "ub_Scene") != 0 {
		t.Error("repeated query should return the same index")
	}
	if c.GetUniformBlockIndex(999, "x") != gl.INVALID_INDEX {
		t.Error("unknown program should return INVALID_INDEX")
	}

	c.FailCompile(true)
	if _, err := c.CreateProgram("vs", "fs"); !errors.Is(err, ErrCompile) {
		t.Errorf("CreateProgram error = %v, want ErrCompile", err)
	}
}

func TestOptions(t *testing.T) {
	c := New(WithInteger(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT, 64), WithExtensions(gl.ExtCompressedTextureS3TC))
	if got := c.GetInteger(gl.UNIFORM_BUFFER_OFFSET_ALIGNMENT); got != 64 {
		t.Errorf("alignment = %d, want 64", got)
	}
	if !c.SupportsExtension(gl.ExtCompressedTextureS3TC) || c.SupportsExtension(gl.ExtCompressedTextureS3TCSRGB) {
		t.Error("extension set mismatch")
	}
}

func TestDumpAndRegistry(t *testing.T) {
	ctx, err := gl.Open("trace")
	if err != nil {
		t.Fatalf("gl.Open(trace): %v", err)
	}
	c := ctx.(*Context)
	c.ObjectLabel(gl.BUFFER, 7, "verts")
	if c.Label(7) != "verts" {
		t.Errorf("Label = %q", c.Label(7))
	}
	var sb strings.Builder
	c.Dump(&sb)
	if !strings.Contains(sb.String(), `ObjectLabel(0x82e0, 7, "verts")`) {
		t.Errorf("dump missing label call:\n%s", sb.String())
	}
}
