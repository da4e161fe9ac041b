package gfx

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl/gltrace"
)

const sceneVS = `#version 300 es
layout(std140) uniform ub_SceneParams {
    mat4 u_Projection;
};
layout(location = 0) in vec3 a_Position;
void main() {
    gl_Position = u_Projection * vec4(a_Position, 1.0);
}
`

const sceneFS = `#version 300 es
precision mediump float;
uniform sampler2D u_Texture;
out vec4 o_Color;
void main() {
    o_Color = texture(u_Texture, vec2(0.5));
}
`

// expectPanic runs fn and fails unless it panics with an error wrapping
// target.
func expectPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected a panic wrapping %v", target)
		}
		err, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v (%T) is not an error", r, r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("panic %v does not wrap %v", err, target)
		}
	}()
	fn()
}

// callNames returns the names of the recorded calls in order.
func callNames(ctx *gltrace.Context) []string {
	calls := ctx.Calls()
	names := make([]string, len(calls))
	for i, c := range calls {
		names[i] = c.Name
	}
	return names
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// scene is a minimal indexed, textured draw.
type scene struct {
	d   *Device
	ctx *gltrace.Context

	ubo, vbo, ibo *Buffer
	tex           *Texture
	samp          *Sampler
	prog          *Program
	layout        *InputLayout
	input         *InputState
	pipeline      *RenderPipeline
	bindings      *Bindings
}

var sceneBindingLayout = BindingLayoutDescriptor{NumUniformBuffers: 1, NumSamplers: 1}

func newScene(t *testing.T, opts ...Option) *scene {
	t.Helper()
	ctx := gltrace.New()
	d := NewDevice(ctx, opts...)

	s := &scene{d: d, ctx: ctx}
	s.ubo = d.CreateBuffer(64, BufferUsageUniform, FrequencyHintDynamic)
	s.vbo = d.CreateBuffer(36, BufferUsageVertex, FrequencyHintStatic)
	s.ibo = d.CreateBuffer(8, BufferUsageIndex, FrequencyHintStatic)
	s.tex = d.CreateTexture2D(FormatU8RGBANorm, 4, 4, 1)
	s.samp = d.CreateSampler(SamplerDescriptor{
		MinFilter: TexFilterModeBilinear,
		MagFilter: TexFilterModeBilinear,
		MaxLOD:    100,
	})

	prog, err := d.CreateProgram(ProgramSource{Name: "scene", Vertex: sceneVS, Fragment: sceneFS})
	if err != nil {
		t.Fatalf("CreateProgram() = %v", err)
	}
	s.prog = prog

	s.layout = d.CreateInputLayout(InputLayoutDescriptor{
		VertexAttributeDescriptors: []VertexAttributeDescriptor{
			{Location: 0, Format: FormatF32RGB, BufferIndex: 0},
		},
		IndexBufferFormat: FormatU16R,
	})
	s.input = d.CreateInputState(s.layout,
		[]VertexBufferDescriptor{{Buffer: s.vbo, ByteStride: 12}},
		&IndexBufferDescriptor{Buffer: s.ibo, ByteOffset: 12})
	s.pipeline = d.CreateRenderPipeline(RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []BindingLayoutDescriptor{sceneBindingLayout},
		InputLayout:    s.layout,
		Program:        prog,
		MegaState:      DefaultMegaState(),
	})
	s.bindings = d.CreateBindings(BindingsDescriptor{
		BindingLayout:         sceneBindingLayout,
		UniformBufferBindings: []BufferBinding{{Buffer: s.ubo, WordCount: 16}},
		SamplerBindings:       []SamplerBinding{{Sampler: s.samp, Texture: s.tex}},
	})

	ctx.Reset()
	return s
}

var clearPass = RenderPassDescriptor{
	ColorLoadOp:     gputypes.LoadOpClear,
	ColorClearColor: gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
	DepthLoadOp:     gputypes.LoadOpLoad,
	StencilLoadOp:   gputypes.LoadOpLoad,
}

var loadPass = RenderPassDescriptor{
	ColorLoadOp:   gputypes.LoadOpLoad,
	DepthLoadOp:   gputypes.LoadOpLoad,
	StencilLoadOp: gputypes.LoadOpLoad,
}

// frame records and submits one indexed draw to the default framebuffer.
func (s *scene) frame() {
	p := s.d.CreateRenderPass(nil, clearPass)
	p.SetViewport(640, 480)
	p.SetPipeline(s.pipeline)
	p.SetBindings(0, s.bindings, []int{0})
	p.SetInputState(s.input)
	p.DrawIndexed(3, 0)
	p.EndPass(nil)
	s.d.SubmitPass(p)
}
