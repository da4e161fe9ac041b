package main

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/render"
	"github.com/gogpu/gfx/texutil"
)

const quadWGSL = `
struct QuadParams {
    transform: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> quad: QuadParams;
@group(0) @binding(1) var t_label: texture_2d<f32>;
@group(0) @binding(2) var s_label: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = quad.transform * vec4<f32>(position, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_label, s_label, v.uv);
}
`

// Interleaved position and uv.
var quadVertices = []float32{
	-1, -1, 0, 0, 1,
	1, -1, 0, 1, 1,
	-1, 1, 0, 0, 0,
	1, 1, 0, 1, 0,
}

var quadIndices = []uint16{0, 1, 2, 2, 1, 3}

var quadBindingLayout = gfx.BindingLayoutDescriptor{NumUniformBuffers: 1, NumSamplers: 1}

type sceneConfig struct {
	width, height int
	samples       int
	label         string
}

type scene struct {
	d     *gfx.Device
	cache *render.RenderCache
	cfg   sceneConfig

	prog          *gfx.Program
	ubo, vbo, ibo *gfx.Buffer
	tex           *gfx.Texture
	samp          *gfx.Sampler
	layout        *gfx.InputLayout
	input         *gfx.InputState
	pipeline      *gfx.RenderPipeline
	bindings      *gfx.Bindings

	// Offscreen multisampled target, nil when drawing to the default
	// framebuffer.
	color  *gfx.ColorAttachment
	depth  *gfx.DepthStencilAttachment
	target *gfx.RenderTarget
}

func newScene(d *gfx.Device, cfg sceneConfig) (*scene, error) {
	cfg.samples = max(cfg.samples, 1)
	s := &scene{d: d, cache: render.NewRenderCache(d), cfg: cfg}

	prog, err := d.CreateProgram(gfx.ProgramSource{Name: "quad", Vertex: quadWGSL, Fragment: quadWGSL})
	if err != nil {
		return nil, err
	}
	s.prog = prog

	img, err := texutil.Label(cfg.label, 32, color.White, color.NRGBA{R: 32, G: 64, B: 128, A: 200})
	if err != nil {
		return nil, fmt.Errorf("label texture: %w", err)
	}

	s.ubo = d.CreateBuffer(16, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)
	s.vbo = d.CreateBuffer(len(quadVertices), gfx.BufferUsageVertex, gfx.FrequencyHintStatic)
	s.ibo = d.CreateBuffer((len(quadIndices)+1)/2, gfx.BufferUsageIndex, gfx.FrequencyHintStatic)
	d.SetResourceName(s.ubo, "quad uniforms")
	d.SetResourceName(s.vbo, "quad vertices")
	d.SetResourceName(s.ibo, "quad indices")

	up := d.CreateHostAccessPass()
	up.UploadBufferData(s.vbo, 0, float32Bytes(quadVertices))
	up.UploadBufferData(s.ibo, 0, uint16Bytes(quadIndices))
	s.tex = texutil.Upload(d, up, img)
	d.SubmitPass(up)
	d.SetResourceName(s.tex, "label")

	s.samp = d.CreateSampler(gfx.SamplerDescriptor{
		WrapS:     gfx.WrapModeClamp,
		WrapT:     gfx.WrapModeClamp,
		MinFilter: gfx.TexFilterModeBilinear,
		MagFilter: gfx.TexFilterModeBilinear,
		MipFilter: gfx.MipFilterModeLinear,
		MaxLOD:    100,
	})

	s.layout = s.cache.CreateInputLayout(gfx.InputLayoutDescriptor{
		VertexAttributeDescriptors: []gfx.VertexAttributeDescriptor{
			{Location: 0, Format: gfx.FormatF32RGB, BufferIndex: 0},
			{Location: 1, Format: gfx.FormatF32RG, BufferIndex: 0, BufferByteOffset: 12},
		},
		IndexBufferFormat: gfx.FormatU16R,
	})
	s.input = d.CreateInputState(s.layout,
		[]gfx.VertexBufferDescriptor{{Buffer: s.vbo, ByteStride: 20}},
		&gfx.IndexBufferDescriptor{Buffer: s.ibo})
	s.pipeline = s.cache.CreateRenderPipeline(gfx.RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []gfx.BindingLayoutDescriptor{quadBindingLayout},
		InputLayout:    s.layout,
		Program:        prog,
		MegaState:      render.Translucent(),
	})
	s.bindings = s.cache.CreateBindings(gfx.BindingsDescriptor{
		BindingLayout:         quadBindingLayout,
		UniformBufferBindings: []gfx.BufferBinding{{Buffer: s.ubo, WordCount: 16}},
		SamplerBindings:       []gfx.SamplerBinding{{Sampler: s.samp, Texture: s.tex}},
	})

	if cfg.samples > 1 {
		d.ConfigureSwapChain(cfg.width, cfg.height)
		s.color = d.CreateColorAttachment(cfg.width, cfg.height, cfg.samples)
		s.depth = d.CreateDepthStencilAttachment(cfg.width, cfg.height, cfg.samples)
		s.target = d.CreateRenderTarget(gfx.RenderTargetDescriptor{
			ColorAttachment:        s.color,
			DepthStencilAttachment: s.depth,
		})
		d.SetResourceName(s.target, "offscreen")
	}
	return s, nil
}

// frame uploads the transform for frame i and draws the quad.
func (s *scene) frame(i int) {
	up := s.d.CreateHostAccessPass()
	up.UploadBufferData(s.ubo, 0, float32Bytes(s.transform(i)))
	s.d.SubmitPass(up)

	p := s.d.CreateRenderPass(s.target, gfx.RenderPassDescriptor{
		ColorLoadOp:     gputypes.LoadOpClear,
		ColorClearColor: gputypes.Color{R: 0.05, G: 0.05, B: 0.08, A: 1},
		DepthLoadOp:     gputypes.LoadOpClear,
		DepthClearValue: 1,
		StencilLoadOp:   gputypes.LoadOpClear,
	})
	p.SetViewport(s.cfg.width, s.cfg.height)
	p.SetPipeline(s.pipeline)
	p.SetBindings(0, s.bindings, []int{0})
	p.SetInputState(s.input)
	p.DrawIndexed(len(quadIndices), 0)
	if s.target != nil {
		p.EndPass(s.d.OnscreenTexture())
	} else {
		p.EndPass(nil)
	}
	s.d.SubmitPass(p)
	if s.target != nil {
		s.d.Present()
	}
}

// transform is a column-major rotation about z by 15 degrees per frame,
// scaled to keep the quad's aspect on screen.
func (s *scene) transform(i int) []float32 {
	a := float64(i) * math.Pi / 12
	sin, cos := float32(math.Sin(a)), float32(math.Cos(a))
	sx := float32(0.5)
	sy := sx * float32(s.cfg.width) / float32(s.cfg.height) * float32(s.tex.Height()) / float32(s.tex.Width())
	return []float32{
		cos * sx, sin * sy, 0, 0,
		-sin * sx, cos * sy, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

func (s *scene) destroy() {
	d := s.d
	s.cache.Destroy()
	d.DestroyInputState(s.input)
	d.DestroyInputLayout(s.layout)
	if s.target != nil {
		d.DestroyRenderTarget(s.target)
		d.DestroyColorAttachment(s.color)
		d.DestroyDepthStencilAttachment(s.depth)
	}
	d.DestroySampler(s.samp)
	d.DestroyTexture(s.tex)
	d.DestroyBuffer(s.ibo)
	d.DestroyBuffer(s.vbo)
	d.DestroyBuffer(s.ubo)
	d.DestroyProgram(s.prog)
}

func float32Bytes(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

// uint16Bytes pads to a whole word.
func uint16Bytes(v []uint16) []byte {
	b := make([]byte, (2*len(v)+3)&^3)
	for i, u := range v {
		binary.LittleEndian.PutUint16(b[2*i:], u)
	}
	return b
}
