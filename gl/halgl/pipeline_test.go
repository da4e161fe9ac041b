package halgl

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl"
)

func TestVertexLayout(t *testing.T) {
	tests := []struct {
		name    string
		attribs map[uint32]*vertexAttrib
		strides []uint64
		offsets []int
		formats [][]gputypes.VertexFormat
	}{
		{
			name: "interleaved",
			attribs: map[uint32]*vertexAttrib{
				0: {enabled: true, buffer: 1, size: 3, typ: gl.FLOAT, stride: 20, offset: 0},
				1: {enabled: true, buffer: 1, size: 2, typ: gl.FLOAT, stride: 20, offset: 12},
			},
			strides: []uint64{20},
			offsets: []int{0},
			formats: [][]gputypes.VertexFormat{{gputypes.VertexFormatFloat32x3, gputypes.VertexFormatFloat32x2}},
		},
		{
			name: "rebased to the first attribute",
			attribs: map[uint32]*vertexAttrib{
				0: {enabled: true, buffer: 1, size: 4, typ: gl.UNSIGNED_BYTE, normalized: true, stride: 8, offset: 64},
				1: {enabled: true, buffer: 1, size: 2, typ: gl.SHORT, normalized: true, stride: 8, offset: 68},
			},
			strides: []uint64{8},
			offsets: []int{64},
			formats: [][]gputypes.VertexFormat{{gputypes.VertexFormatUnorm8x4, gputypes.VertexFormatSnorm16x2}},
		},
		{
			name: "separate buffers and disabled attributes",
			attribs: map[uint32]*vertexAttrib{
				0: {enabled: true, buffer: 1, size: 3, typ: gl.FLOAT},
				1: {enabled: true, buffer: 2, size: 1, typ: gl.UNSIGNED_INT, integer: true, divisor: 1},
				2: {enabled: false, buffer: 3, size: 4, typ: gl.FLOAT},
			},
			strides: []uint64{12, 4},
			offsets: []int{0, 0},
			formats: [][]gputypes.VertexFormat{{gputypes.VertexFormatFloat32x3}, {gputypes.VertexFormatUint32}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layouts, slots, sig, err := vertexLayout(&vertexArray{attribs: tt.attribs})
			if err != nil {
				t.Fatalf("vertexLayout() = %v", err)
			}
			if len(layouts) != len(tt.strides) {
				t.Fatalf("got %d buffers, want %d", len(layouts), len(tt.strides))
			}
			for i, l := range layouts {
				if l.ArrayStride != tt.strides[i] {
					t.Errorf("buffer %d stride = %d, want %d", i, l.ArrayStride, tt.strides[i])
				}
				if slots[i].offset != tt.offsets[i] {
					t.Errorf("buffer %d offset = %d, want %d", i, slots[i].offset, tt.offsets[i])
				}
				if len(l.Attributes) != len(tt.formats[i]) {
					t.Fatalf("buffer %d has %d attributes, want %d", i, len(l.Attributes), len(tt.formats[i]))
				}
				for j, a := range l.Attributes {
					if a.Format != tt.formats[i][j] {
						t.Errorf("buffer %d attribute %d format = %v, want %v", i, j, a.Format, tt.formats[i][j])
					}
				}
			}
			if sig == "" {
				t.Error("empty signature")
			}
		})
	}
}

func TestVertexLayoutSignatureIgnoresBaseOffset(t *testing.T) {
	at := func(base int) *vertexArray {
		return &vertexArray{attribs: map[uint32]*vertexAttrib{
			0: {enabled: true, buffer: 1, size: 3, typ: gl.FLOAT, stride: 12, offset: base},
		}}
	}
	_, _, a, _ := vertexLayout(at(0))
	_, _, b, _ := vertexLayout(at(1200))
	if a != b {
		t.Errorf("signatures differ: %q vs %q", a, b)
	}
}

func TestVertexFormatUnsupported(t *testing.T) {
	if _, _, err := vertexFormat(&vertexAttrib{size: 3, typ: gl.UNSIGNED_BYTE, normalized: true}); err == nil {
		t.Error("3-component byte attributes have no hal format")
	}
}

func TestPipelineKeyHash(t *testing.T) {
	a := pipelineKey{program: 1, vertex: "12/0:0@0=1,;", colorMask: [4]bool{true, true, true, true}}
	b := a
	if a.hash() != b.hash() {
		t.Fatal("equal keys hash differently")
	}
	b.blend = true
	if a.hash() == b.hash() {
		t.Error("blend flag does not change the hash")
	}
}

func drawQuad(c *Context) {
	c.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	c.DrawElements(gl.TRIANGLES, 6, gl.UNSIGNED_SHORT, 0)
}

func TestPipelineCaching(t *testing.T) {
	c := newTestContext(t)
	newQuad(t, c)

	drawQuad(c)
	drawQuad(c)
	expectNoErr(t, c)
	if n := c.NumPipelines(); n != 1 {
		t.Fatalf("pipelines after identical draws = %d, want 1", n)
	}

	// Disabled state does not split the cache.
	c.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	drawQuad(c)
	if n := c.NumPipelines(); n != 1 {
		t.Fatalf("pipelines after blend func with blending off = %d, want 1", n)
	}

	c.Enable(gl.BLEND)
	drawQuad(c)
	if n := c.NumPipelines(); n != 2 {
		t.Fatalf("pipelines after enabling blend = %d, want 2", n)
	}
	c.Flush()
	expectNoErr(t, c)

	st := c.PipelineStats()
	if st.Hits != 2 || st.Misses != 2 {
		t.Errorf("hits/misses = %d/%d, want 2/2", st.Hits, st.Misses)
	}
}

func TestPipelineCacheLimit(t *testing.T) {
	c := newTestContext(t, WithPipelineCacheLimit(2))
	newQuad(t, c)

	drawQuad(c)
	c.Enable(gl.BLEND)
	drawQuad(c)
	c.Enable(gl.CULL_FACE)
	drawQuad(c)
	c.Flush()
	expectNoErr(t, c)

	st := c.PipelineStats()
	if st.Len != 1 || st.Evictions != 2 {
		t.Errorf("len/evictions = %d/%d, want 1/2", st.Len, st.Evictions)
	}
}

func TestDeleteProgramPurgesPipelines(t *testing.T) {
	c := newTestContext(t)
	q := newQuad(t, c)
	drawQuad(c)
	if c.NumPipelines() != 1 {
		t.Fatalf("pipelines = %d, want 1", c.NumPipelines())
	}
	c.DeleteProgram(q.prog)
	c.Flush()
	if n := c.NumPipelines(); n != 0 {
		t.Errorf("pipelines after DeleteProgram = %d, want 0", n)
	}
	expectNoErr(t, c)
}

func TestPipelineDescriptor(t *testing.T) {
	c := newTestContext(t)
	q := newQuad(t, c)
	p := c.programs[q.prog]

	k := pipelineKey{
		program:      q.prog,
		topology:     gputypes.PrimitiveTopologyTriangleList,
		hasColor:     true,
		colorFormat:  gputypes.TextureFormatRGBA8Unorm,
		hasDepth:     true,
		depthFormat:  gputypes.TextureFormatDepth24PlusStencil8,
		sampleCount:  1,
		colorMask:    [4]bool{true, false, true, false},
		depthFunc:    gl.LEQUAL,
		depthMask:    true,
		stencilTest:  true,
		stencilFunc:  gl.EQUAL,
		stencilRead:  0xFF,
		stencilWrite: 0x0F,
		stencilFail:  gl.KEEP,
		stencilZFail: gl.KEEP,
		stencilPass:  gl.REPLACE,
		cull:         true,
		cullFace:     gl.BACK,
		frontFace:    gl.CW,
	}
	d := c.pipelineDescriptor(&k, p, nil)

	if d.Primitive.CullMode != gputypes.CullModeBack || d.Primitive.FrontFace != gputypes.FrontFaceCW {
		t.Errorf("primitive = %+v", d.Primitive)
	}
	if got := d.Fragment.Targets[0].WriteMask; got != gputypes.ColorWriteMaskRed|gputypes.ColorWriteMaskBlue {
		t.Errorf("write mask = %v", got)
	}
	ds := d.DepthStencil
	if ds == nil {
		t.Fatal("no depth stencil state")
	}
	// The depth test is off, so GL writes no depth either.
	if ds.DepthCompare != gputypes.CompareFunctionAlways || ds.DepthWriteEnabled {
		t.Errorf("depth = %v/%v, want Always/false", ds.DepthCompare, ds.DepthWriteEnabled)
	}
	if ds.StencilFront.Compare != gputypes.CompareFunctionEqual || ds.StencilFront.PassOp != stencilOperations[gl.REPLACE] {
		t.Errorf("stencil front = %+v", ds.StencilFront)
	}
	if ds.StencilWriteMask != 0x0F {
		t.Errorf("stencil write mask = %#x, want 0x0f", ds.StencilWriteMask)
	}
	expectNoErr(t, c)
}
