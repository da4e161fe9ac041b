package halgl_test

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/gl/halgl"
)

const meshWGSL = `
struct SceneParams {
    mvp: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> scene: SceneParams;
@group(0) @binding(1) var t_diffuse: texture_2d<f32>;
@group(0) @binding(2) var s_diffuse: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = scene.mvp * vec4<f32>(position, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_diffuse, s_diffuse, v.uv);
}
`

// TestDeviceOnHal runs a gfx frame through the hal backend: uploads, an
// indexed draw into a multisampled target, a resolve and a present.
func TestDeviceOnHal(t *testing.T) {
	c, err := halgl.NewNoop()
	if err != nil {
		t.Fatalf("NewNoop() = %v", err)
	}
	t.Cleanup(c.Close)

	d := gfx.NewDevice(c)
	defer d.Destroy()

	if got := d.QueryLimits().UniformBufferWordAlignment; got != 64 {
		t.Errorf("UniformBufferWordAlignment = %d, want 64", got)
	}

	prog, err := d.CreateProgram(gfx.ProgramSource{Name: "mesh", Vertex: meshWGSL, Fragment: meshWGSL})
	if err != nil {
		t.Fatalf("CreateProgram() = %v", err)
	}
	ubo := d.CreateBuffer(16, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)
	vbo := d.CreateBuffer(20, gfx.BufferUsageVertex, gfx.FrequencyHintStatic)
	ibo := d.CreateBuffer(2, gfx.BufferUsageIndex, gfx.FrequencyHintStatic)
	tex := d.CreateTexture2D(gfx.FormatU8RGBANorm, 4, 4, 1)
	samp := d.CreateSampler(gfx.SamplerDescriptor{
		MinFilter: gfx.TexFilterModeBilinear,
		MagFilter: gfx.TexFilterModeBilinear,
		MaxLOD:    100,
	})

	layout := d.CreateInputLayout(gfx.InputLayoutDescriptor{
		VertexAttributeDescriptors: []gfx.VertexAttributeDescriptor{
			{Location: 0, Format: gfx.FormatF32RGB, BufferIndex: 0},
			{Location: 1, Format: gfx.FormatF32RG, BufferIndex: 0, BufferByteOffset: 12},
		},
		IndexBufferFormat: gfx.FormatU16R,
	})
	input := d.CreateInputState(layout,
		[]gfx.VertexBufferDescriptor{{Buffer: vbo, ByteStride: 20}},
		&gfx.IndexBufferDescriptor{Buffer: ibo})
	bindingLayout := gfx.BindingLayoutDescriptor{NumUniformBuffers: 1, NumSamplers: 1}
	pipeline := d.CreateRenderPipeline(gfx.RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []gfx.BindingLayoutDescriptor{bindingLayout},
		InputLayout:    layout,
		Program:        prog,
		MegaState:      gfx.DefaultMegaState(),
	})
	bindings := d.CreateBindings(gfx.BindingsDescriptor{
		BindingLayout:         bindingLayout,
		UniformBufferBindings: []gfx.BufferBinding{{Buffer: ubo, WordCount: 16}},
		SamplerBindings:       []gfx.SamplerBinding{{Sampler: samp, Texture: tex}},
	})

	up := d.CreateHostAccessPass()
	up.UploadBufferData(ubo, 0, make([]byte, 64))
	up.UploadBufferData(vbo, 0, make([]byte, 80))
	up.UploadBufferData(ibo, 0, []byte{0, 0, 1, 0, 2, 0, 0, 0})
	up.UploadTextureData(tex, 0, [][]byte{make([]byte, 64)})
	d.SubmitPass(up)

	d.ConfigureSwapChain(halgl.DefaultSurfaceWidth, halgl.DefaultSurfaceHeight)
	color := d.CreateColorAttachment(halgl.DefaultSurfaceWidth, halgl.DefaultSurfaceHeight, 4)
	depth := d.CreateDepthStencilAttachment(halgl.DefaultSurfaceWidth, halgl.DefaultSurfaceHeight, 4)
	rt := d.CreateRenderTarget(gfx.RenderTargetDescriptor{ColorAttachment: color, DepthStencilAttachment: depth})

	for range 2 {
		p := d.CreateRenderPass(rt, gfx.RenderPassDescriptor{
			ColorLoadOp:     gputypes.LoadOpClear,
			ColorClearColor: gputypes.Color{R: 0.1, G: 0.2, B: 0.3, A: 1},
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthClearValue: 1,
			StencilLoadOp:   gputypes.LoadOpClear,
		})
		p.SetViewport(halgl.DefaultSurfaceWidth, halgl.DefaultSurfaceHeight)
		p.SetPipeline(pipeline)
		p.SetBindings(0, bindings, []int{0})
		p.SetInputState(input)
		p.DrawIndexed(3, 0)
		p.EndPass(d.OnscreenTexture())
		d.SubmitPass(p)
		d.Present()
	}

	if err := c.Err(); err != nil {
		t.Fatalf("backend error: %v", err)
	}
	if n := c.NumPipelines(); n != 1 {
		t.Errorf("pipelines = %d, want 1", n)
	}
	pixels, w, h, err := c.ReadPixels(0)
	if err != nil {
		t.Fatalf("ReadPixels() = %v", err)
	}
	if w != halgl.DefaultSurfaceWidth || h != halgl.DefaultSurfaceHeight || len(pixels) != w*h*4 {
		t.Errorf("ReadPixels() = %d bytes, %dx%d", len(pixels), w, h)
	}
}
