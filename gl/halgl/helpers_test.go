package halgl

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gfx/gl"
)

const texturedWGSL = `
struct Params {
    mvp: mat4x4<f32>,
};

@group(0) @binding(0) var<uniform> params: Params;
@group(0) @binding(1) var t_color: texture_2d<f32>;
@group(0) @binding(2) var s_color: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@location(0) position: vec3<f32>, @location(1) uv: vec2<f32>) -> VertexOutput {
    var out: VertexOutput;
    out.position = params.mvp * vec4<f32>(position, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(v: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(t_color, s_color, v.uv);
}
`

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

func newTestContext(t *testing.T, opts ...Option) *Context {
	t.Helper()
	c, err := NewNoop(opts...)
	if err != nil {
		t.Fatalf("NewNoop() = %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func expectErr(t *testing.T, c *Context, target error) {
	t.Helper()
	if err := c.Err(); !errors.Is(err, target) {
		t.Fatalf("Err() = %v, want %v", err, target)
	}
}

func expectNoErr(t *testing.T, c *Context) {
	t.Helper()
	if err := c.Err(); err != nil {
		t.Fatalf("Err() = %v", err)
	}
}

// quad is a textured triangle pair recorded directly through GL calls.
type quad struct {
	prog, vbo, ibo, ubo, vao, tex, samp gl.Object
}

func newQuad(t *testing.T, c *Context) *quad {
	t.Helper()
	q := &quad{}
	prog, err := c.CreateProgram(texturedWGSL, texturedWGSL)
	if err != nil {
		t.Fatalf("CreateProgram() = %v", err)
	}
	q.prog = prog
	c.UniformBlockBinding(prog, c.GetUniformBlockIndex(prog, "params"), 0)
	c.UseProgram(prog)
	c.Uniform1i(c.GetUniformLocation(prog, "t_color"), 0)

	q.ubo = c.CreateBuffer()
	c.BindBuffer(gl.UNIFORM_BUFFER, q.ubo)
	c.BufferData(gl.UNIFORM_BUFFER, 256, gl.DYNAMIC_DRAW)
	c.BufferSubData(gl.UNIFORM_BUFFER, 0, make([]byte, 64))

	q.vao = c.CreateVertexArray()
	c.BindVertexArray(q.vao)
	q.vbo = c.CreateBuffer()
	c.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	c.BufferData(gl.ARRAY_BUFFER, 4*20, gl.STATIC_DRAW)
	c.BufferSubData(gl.ARRAY_BUFFER, 0, make([]byte, 4*20))
	c.VertexAttribPointer(0, 3, gl.FLOAT, false, 20, 0)
	c.EnableVertexAttribArray(0)
	c.VertexAttribPointer(1, 2, gl.FLOAT, false, 20, 12)
	c.EnableVertexAttribArray(1)
	q.ibo = c.CreateBuffer()
	c.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, q.ibo)
	c.BufferData(gl.ELEMENT_ARRAY_BUFFER, 12, gl.STATIC_DRAW)
	c.BufferSubData(gl.ELEMENT_ARRAY_BUFFER, 0, []byte{0, 0, 1, 0, 2, 0, 2, 0, 1, 0, 3, 0})

	q.tex = c.CreateTexture()
	c.ActiveTexture(gl.TEXTURE0)
	c.BindTexture(gl.TEXTURE_2D, q.tex)
	c.TexStorage2D(gl.TEXTURE_2D, 1, gl.RGBA8, 2, 2)
	c.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, 2, 2, gl.RGBA, gl.UNSIGNED_BYTE, make([]byte, 16))
	q.samp = c.CreateSampler()
	c.SamplerParameteri(q.samp, gl.TEXTURE_MIN_FILTER, int32(gl.LINEAR))
	c.BindSampler(0, q.samp)

	c.BindBufferRange(gl.UNIFORM_BUFFER, 0, q.ubo, 0, 64)
	expectNoErr(t, c)
	return q
}
