package render

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/gl/gltrace"
)

const testVS = `#version 300 es
layout(std140) uniform ub_Params {
    mat4 u_Projection;
};
layout(location = 0) in vec3 a_Position;
void main() {
    gl_Position = u_Projection * vec4(a_Position, 1.0);
}
`

const testFS = `#version 300 es
precision mediump float;
uniform sampler2D u_Texture;
out vec4 o_Color;
void main() {
    o_Color = texture(u_Texture, vec2(0.5));
}
`

var testLayout = gfx.BindingLayoutDescriptor{NumUniformBuffers: 1, NumSamplers: 1}

func newTestCache(t *testing.T) (*RenderCache, *gfx.Device) {
	t.Helper()
	d := gfx.NewDevice(gltrace.New())
	return NewRenderCache(d), d
}

func newTestProgram(t *testing.T, d *gfx.Device) *gfx.Program {
	t.Helper()
	p, err := d.CreateProgram(gfx.ProgramSource{Name: "test", Vertex: testVS, Fragment: testFS})
	if err != nil {
		t.Fatalf("CreateProgram() = %v", err)
	}
	return p
}

func TestCreateBindingsDeduplicates(t *testing.T) {
	rc, d := newTestCache(t)
	ubo := d.CreateBuffer(64, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)
	other := d.CreateBuffer(64, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)
	tex := d.CreateTexture2D(gfx.FormatU8RGBANorm, 2, 2, 1)
	samp := d.CreateSampler(gfx.SamplerDescriptor{MaxLOD: 100})

	desc := func(buf *gfx.Buffer, wordOffset int, s gfx.SamplerBinding) gfx.BindingsDescriptor {
		return gfx.BindingsDescriptor{
			BindingLayout:         testLayout,
			UniformBufferBindings: []gfx.BufferBinding{{Buffer: buf, WordOffset: wordOffset, WordCount: 16}},
			SamplerBindings:       []gfx.SamplerBinding{s},
		}
	}
	full := gfx.SamplerBinding{Sampler: samp, Texture: tex}

	first := rc.CreateBindings(desc(ubo, 0, full))

	tests := []struct {
		name string
		desc gfx.BindingsDescriptor
		same bool
	}{
		{"equal descriptor", desc(ubo, 0, full), true},
		{"other buffer", desc(other, 0, full), false},
		{"other offset", desc(ubo, 16, full), false},
		{"nil texture", desc(ubo, 0, gfx.SamplerBinding{Sampler: samp}), false},
		{"empty sampler slot", desc(ubo, 0, gfx.SamplerBinding{}), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rc.CreateBindings(tt.desc)
			if (got == first) != tt.same {
				t.Errorf("same handle = %v, want %v", got == first, tt.same)
			}
		})
	}

	if n := rc.NumBindings(); n != 5 {
		t.Errorf("NumBindings() = %d, want 5", n)
	}
	empty := rc.CreateBindings(desc(ubo, 0, gfx.SamplerBinding{}))
	if rc.CreateBindings(desc(ubo, 0, gfx.SamplerBinding{})) != empty {
		t.Error("two empty sampler slots should compare equal")
	}
	if st := rc.Stats().Bindings; st.Hits != 3 || st.Misses != 5 {
		t.Errorf("stats = %d hits / %d misses, want 3/5", st.Hits, st.Misses)
	}
}

func TestCreateBindingsCopiesDescriptor(t *testing.T) {
	rc, d := newTestCache(t)
	ubo := d.CreateBuffer(64, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)

	ubs := []gfx.BufferBinding{{Buffer: ubo, WordCount: 16}}
	desc := gfx.BindingsDescriptor{
		BindingLayout:         gfx.BindingLayoutDescriptor{NumUniformBuffers: 1},
		UniformBufferBindings: ubs,
	}
	first := rc.CreateBindings(desc)

	ubs[0].WordOffset = 32
	second := rc.CreateBindings(desc)
	if second == first {
		t.Fatal("mutating the caller's slice changed the cached key")
	}

	ubs[0].WordOffset = 0
	if rc.CreateBindings(desc) != first {
		t.Error("original descriptor no longer hits")
	}
}

func TestCreateRenderPipelineDeduplicates(t *testing.T) {
	rc, d := newTestCache(t)
	prog := newTestProgram(t, d)
	// Same source compiles once, so the second handle shares the unique key.
	twin := newTestProgram(t, d)
	layout := rc.CreateInputLayout(gfx.InputLayoutDescriptor{
		VertexAttributeDescriptors: []gfx.VertexAttributeDescriptor{{Format: gfx.FormatF32RGB}},
	})

	base := gfx.RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []gfx.BindingLayoutDescriptor{testLayout},
		InputLayout:    layout,
		Program:        prog,
		MegaState:      Opaque(gputypes.CullModeBack),
	}
	first := rc.CreateRenderPipeline(base)

	tests := []struct {
		name   string
		modify func(*gfx.RenderPipelineDescriptor)
		same   bool
	}{
		{"equal descriptor", func(*gfx.RenderPipelineDescriptor) {}, true},
		{"program with the same key", func(p *gfx.RenderPipelineDescriptor) { p.Program = twin }, true},
		{"no input layout", func(p *gfx.RenderPipelineDescriptor) { p.InputLayout = nil }, false},
		{"cull mode", func(p *gfx.RenderPipelineDescriptor) { p.MegaState.CullMode = gputypes.CullModeNone }, false},
		{"blending", func(p *gfx.RenderPipelineDescriptor) { p.MegaState = Translucent() }, false},
		{
			"split binding layouts",
			func(p *gfx.RenderPipelineDescriptor) {
				p.BindingLayouts = []gfx.BindingLayoutDescriptor{{NumUniformBuffers: 1}, {NumSamplers: 1}}
			},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := base
			desc.BindingLayouts = append([]gfx.BindingLayoutDescriptor(nil), base.BindingLayouts...)
			tt.modify(&desc)
			got := rc.CreateRenderPipeline(desc)
			if (got == first) != tt.same {
				t.Errorf("same handle = %v, want %v", got == first, tt.same)
			}
		})
	}
	if n := rc.NumRenderPipelines(); n != 5 {
		t.Errorf("NumRenderPipelines() = %d, want 5", n)
	}
	if st := rc.Stats().Pipelines; st.Hits != 2 || st.Misses != 5 {
		t.Errorf("stats = %d hits / %d misses, want 2/5", st.Hits, st.Misses)
	}

	// Only triangle lists can be created, so topology is checked on the key.
	lines := base
	lines.Topology = gputypes.PrimitiveTopologyLineList
	if hashRenderPipeline(lines) == hashRenderPipeline(base) || renderPipelineEqual(lines, base) {
		t.Error("topology ignored by the pipeline key")
	}
}

// createWithin runs fn and fails the test if it does not return in time.
func createWithin[T any](t *testing.T, d time.Duration, fn func() T) T {
	t.Helper()
	done := make(chan T, 1)
	go func() { done <- fn() }()
	select {
	case v := <-done:
		return v
	case <-time.After(d):
		t.Fatalf("did not return within %v", d)
		panic("unreachable")
	}
}

func TestCreateRenderPipelineMissReturns(t *testing.T) {
	rc, d := newTestCache(t)
	desc := gfx.RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []gfx.BindingLayoutDescriptor{testLayout},
		Program:        newTestProgram(t, d),
		MegaState:      Opaque(gputypes.CullModeBack),
	}

	orig := gfx.Logger()
	t.Cleanup(func() { gfx.SetLogger(orig) })
	var buf bytes.Buffer
	gfx.SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	p := createWithin(t, 2*time.Second, func() *gfx.RenderPipeline { return rc.CreateRenderPipeline(desc) })
	if p == nil {
		t.Fatal("CreateRenderPipeline() = nil")
	}
	if !strings.Contains(buf.String(), "pipeline cache miss") {
		t.Errorf("miss not logged: %s", buf.String())
	}
	if again := createWithin(t, 2*time.Second, func() *gfx.RenderPipeline { return rc.CreateRenderPipeline(desc) }); again != p {
		t.Error("second lookup created a new pipeline")
	}
}

func TestCreateRenderPipelineConcurrent(t *testing.T) {
	rc, d := newTestCache(t)
	prog := newTestProgram(t, d)
	states := []gfx.MegaState{Opaque(gputypes.CullModeBack), Opaque(gputypes.CullModeNone), Translucent(), Additive()}

	const workers = 16
	got := make([][]*gfx.RenderPipeline, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Go(func() {
			for _, m := range states {
				got[w] = append(got[w], rc.CreateRenderPipeline(gfx.RenderPipelineDescriptor{
					Topology:       gputypes.PrimitiveTopologyTriangleList,
					BindingLayouts: []gfx.BindingLayoutDescriptor{testLayout},
					Program:        prog,
					MegaState:      m,
				}))
			}
		})
	}
	createWithin(t, 5*time.Second, func() struct{} { wg.Wait(); return struct{}{} })

	for w := 1; w < workers; w++ {
		for i := range states {
			if got[w][i] != got[0][i] {
				t.Fatalf("worker %d state %d got a different pipeline", w, i)
			}
		}
	}
	if n := rc.NumRenderPipelines(); n != len(states) {
		t.Errorf("NumRenderPipelines() = %d, want %d", n, len(states))
	}
	if st := rc.Stats().Pipelines; st.Misses != uint64(len(states)) {
		t.Errorf("misses = %d, want %d", st.Misses, len(states))
	}
}

func TestCreateInputLayoutDeduplicates(t *testing.T) {
	rc, _ := newTestCache(t)
	attrs := func(offset int, integer bool) gfx.InputLayoutDescriptor {
		return gfx.InputLayoutDescriptor{
			VertexAttributeDescriptors: []gfx.VertexAttributeDescriptor{
				{Location: 0, Format: gfx.FormatF32RGB},
				{Location: 1, Format: gfx.FormatU8RGBANorm, BufferByteOffset: offset, UsesIntInShader: integer},
			},
			IndexBufferFormat: gfx.FormatU16R,
		}
	}
	first := rc.CreateInputLayout(attrs(12, false))

	if rc.CreateInputLayout(attrs(12, false)) != first {
		t.Error("equal descriptor created a new layout")
	}
	if rc.CreateInputLayout(attrs(16, false)) == first {
		t.Error("byte offset ignored")
	}
	if rc.CreateInputLayout(attrs(12, true)) == first {
		t.Error("integer flag ignored")
	}
	noIndex := attrs(12, false)
	noIndex.IndexBufferFormat = 0
	if rc.CreateInputLayout(noIndex) == first {
		t.Error("index format ignored")
	}
	if n := rc.NumInputLayouts(); n != 4 {
		t.Errorf("NumInputLayouts() = %d, want 4", n)
	}
}

func TestRenderCacheDestroy(t *testing.T) {
	rc, d := newTestCache(t)
	prog := newTestProgram(t, d)
	ubo := d.CreateBuffer(64, gfx.BufferUsageUniform, gfx.FrequencyHintDynamic)

	b := rc.CreateBindings(gfx.BindingsDescriptor{
		BindingLayout:         testLayout,
		UniformBufferBindings: []gfx.BufferBinding{{Buffer: ubo, WordCount: 16}},
		SamplerBindings:       []gfx.SamplerBinding{{}},
	})
	l := rc.CreateInputLayout(gfx.InputLayoutDescriptor{})
	p := rc.CreateRenderPipeline(gfx.RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []gfx.BindingLayoutDescriptor{testLayout},
		InputLayout:    l,
		Program:        prog,
		MegaState:      Fullscreen(),
	})

	rc.Destroy()

	if !b.Destroyed() || !p.Destroyed() {
		t.Error("cached bindings and pipelines should be destroyed")
	}
	if l.Destroyed() {
		t.Error("input layouts are not destroyed by the cache")
	}
	if rc.NumBindings() != 0 || rc.NumRenderPipelines() != 0 || rc.NumInputLayouts() != 0 {
		t.Error("cache not empty after Destroy")
	}
	if prog.Destroyed() {
		t.Error("programs belong to the caller")
	}
}

func BenchmarkCreateRenderPipelineHit(b *testing.B) {
	d := gfx.NewDevice(gltrace.New())
	rc := NewRenderCache(d)
	prog, err := d.CreateProgram(gfx.ProgramSource{Vertex: testVS, Fragment: testFS})
	if err != nil {
		b.Fatal(err)
	}
	desc := gfx.RenderPipelineDescriptor{
		Topology:       gputypes.PrimitiveTopologyTriangleList,
		BindingLayouts: []gfx.BindingLayoutDescriptor{testLayout},
		Program:        prog,
		MegaState:      Opaque(gputypes.CullModeBack),
	}
	rc.CreateRenderPipeline(desc)

	b.ResetTimer()
	for b.Loop() {
		rc.CreateRenderPipeline(desc)
	}
}
