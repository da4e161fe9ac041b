package render

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"log/slog"

	"github.com/gogpu/gfx"
	"github.com/gogpu/gfx/internal/cache"
)

// RenderCache deduplicates Bindings, RenderPipelines and InputLayouts
// created on one device.
type RenderCache struct {
	device *gfx.Device

	bindings     *cache.Store[gfx.BindingsDescriptor, *gfx.Bindings]
	pipelines    *cache.Store[gfx.RenderPipelineDescriptor, *gfx.RenderPipeline]
	inputLayouts *cache.Store[gfx.InputLayoutDescriptor, *gfx.InputLayout]
}

// NewRenderCache creates an empty cache that creates objects on d.
func NewRenderCache(d *gfx.Device) *RenderCache {
	return &RenderCache{
		device:       d,
		bindings:     cache.New[gfx.BindingsDescriptor, *gfx.Bindings](hashBindings, bindingsEqual, 0),
		pipelines:    cache.New[gfx.RenderPipelineDescriptor, *gfx.RenderPipeline](hashRenderPipeline, renderPipelineEqual, 0),
		inputLayouts: cache.New[gfx.InputLayoutDescriptor, *gfx.InputLayout](hashInputLayout, inputLayoutEqual, 0),
	}
}

// Device returns the device the cache creates objects on.
func (rc *RenderCache) Device() *gfx.Device { return rc.device }

// CreateBindings returns the cached bind group equal to desc, creating it on
// first use.
func (rc *RenderCache) CreateBindings(desc gfx.BindingsDescriptor) *gfx.Bindings {
	desc.UniformBufferBindings = cloneSlice(desc.UniformBufferBindings)
	desc.SamplerBindings = cloneSlice(desc.SamplerBindings)
	b, _ := rc.bindings.GetOrCreate(desc, func() (*gfx.Bindings, error) {
		return rc.device.CreateBindings(desc), nil
	})
	return b
}

// CreateRenderPipeline returns the cached pipeline equal to desc, creating it
// on first use.
func (rc *RenderCache) CreateRenderPipeline(desc gfx.RenderPipelineDescriptor) *gfx.RenderPipeline {
	desc.BindingLayouts = cloneSlice(desc.BindingLayouts)
	p, _ := rc.pipelines.GetOrCreate(desc, func() (*gfx.RenderPipeline, error) {
		gfx.Logger().Debug("render: pipeline cache miss",
			slog.Uint64("program", programKey(desc.Program)),
			slog.Int("bindingLayouts", len(desc.BindingLayouts)))
		return rc.device.CreateRenderPipeline(desc), nil
	})
	return p
}

// CreateInputLayout returns the cached input layout equal to desc, creating
// it on first use.
func (rc *RenderCache) CreateInputLayout(desc gfx.InputLayoutDescriptor) *gfx.InputLayout {
	desc.VertexAttributeDescriptors = cloneSlice(desc.VertexAttributeDescriptors)
	l, _ := rc.inputLayouts.GetOrCreate(desc, func() (*gfx.InputLayout, error) {
		return rc.device.CreateInputLayout(desc), nil
	})
	return l
}

// NumBindings returns the number of cached bind groups.
func (rc *RenderCache) NumBindings() int { return rc.bindings.Len() }

// NumRenderPipelines returns the number of cached pipelines.
func (rc *RenderCache) NumRenderPipelines() int { return rc.pipelines.Len() }

// NumInputLayouts returns the number of cached input layouts.
func (rc *RenderCache) NumInputLayouts() int { return rc.inputLayouts.Len() }

// Stats reports lookup statistics per cached kind.
type Stats struct {
	Bindings     cache.Stats
	Pipelines    cache.Stats
	InputLayouts cache.Stats
}

// Stats returns the current lookup statistics.
func (rc *RenderCache) Stats() Stats {
	return Stats{
		Bindings:     rc.bindings.Stats(),
		Pipelines:    rc.pipelines.Stats(),
		InputLayouts: rc.inputLayouts.Stats(),
	}
}

// Destroy destroys every cached bind group and pipeline through the device
// and empties the cache. Input layouts are forgotten but left alive; they
// are shared with input states the caller still owns.
func (rc *RenderCache) Destroy() {
	var nb, np int
	rc.bindings.Range(func(_ gfx.BindingsDescriptor, b *gfx.Bindings) bool {
		rc.device.DestroyBindings(b)
		nb++
		return true
	})
	rc.pipelines.Range(func(_ gfx.RenderPipelineDescriptor, p *gfx.RenderPipeline) bool {
		rc.device.DestroyRenderPipeline(p)
		np++
		return true
	})
	rc.bindings.Clear()
	rc.pipelines.Clear()
	rc.inputLayouts.Clear()

	gfx.Logger().Debug("render: cache destroyed",
		slog.Int("bindings", nb),
		slog.Int("pipelines", np))
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func programKey(p *gfx.Program) uint64 {
	if p == nil {
		return 0
	}
	return p.UniqueKey()
}

// Descriptor hashes cover the value fields only. Handles are compared by
// identity in the equality functions.

func hashBindings(d gfx.BindingsDescriptor) uint64 {
	h := fnv.New64a()
	hashWriteInt(h, d.BindingLayout.NumUniformBuffers)
	hashWriteInt(h, d.BindingLayout.NumSamplers)
	hashWriteInt(h, len(d.UniformBufferBindings))
	for _, ub := range d.UniformBufferBindings {
		hashWriteInt(h, ub.WordOffset)
		hashWriteInt(h, ub.WordCount)
	}
	hashWriteInt(h, len(d.SamplerBindings))
	return h.Sum64()
}

func hashRenderPipeline(d gfx.RenderPipelineDescriptor) uint64 {
	h := fnv.New64a()
	hashWriteUint32(h, uint32(d.Topology))
	hashWriteUint64(h, programKey(d.Program))
	hashWriteInt(h, len(d.BindingLayouts))
	for _, l := range d.BindingLayouts {
		hashWriteInt(h, l.NumUniformBuffers)
		hashWriteInt(h, l.NumSamplers)
	}
	m := &d.MegaState
	hashWriteUint32(h, uint32(m.ColorWrite))
	hashWriteBool(h, m.BlendEnabled)
	hashWriteUint32(h, uint32(m.BlendOperation))
	hashWriteUint32(h, uint32(m.BlendSrcFactor))
	hashWriteUint32(h, uint32(m.BlendDstFactor))
	hashWriteUint32(h, uint32(m.DepthCompare))
	hashWriteBool(h, m.DepthWrite)
	hashWriteUint32(h, uint32(m.StencilCompare))
	hashWriteBool(h, m.StencilWrite)
	hashWriteUint32(h, uint32(m.StencilPassOp))
	hashWriteUint32(h, uint32(m.CullMode))
	hashWriteUint32(h, uint32(m.FrontFace))
	hashWriteBool(h, m.PolygonOffset)
	return h.Sum64()
}

func hashInputLayout(d gfx.InputLayoutDescriptor) uint64 {
	h := fnv.New64a()
	hashWriteUint32(h, uint32(d.IndexBufferFormat))
	hashWriteInt(h, len(d.VertexAttributeDescriptors))
	for _, a := range d.VertexAttributeDescriptors {
		hashWriteUint32(h, a.Location)
		hashWriteUint32(h, uint32(a.Format))
		hashWriteInt(h, a.BufferIndex)
		hashWriteInt(h, a.BufferByteOffset)
		hashWriteUint32(h, uint32(a.Frequency))
		hashWriteBool(h, a.UsesIntInShader)
	}
	return h.Sum64()
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:]) // fnv.Write never returns an error
}

func hashWriteUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}

func hashWriteInt(h hash.Hash64, v int) {
	hashWriteUint64(h, uint64(v)) //nolint:gosec // G115: only mixed into a hash
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

func sliceEqual[T any](a, b []T, eq func(x, y T) bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := len(a) - 1; i >= 0; i-- {
		if !eq(a[i], b[i]) {
			return false
		}
	}
	return true
}

func bufferBindingEqual(a, b gfx.BufferBinding) bool { return a == b }

func samplerBindingEqual(a, b gfx.SamplerBinding) bool { return a == b }

func bindingLayoutEqual(a, b gfx.BindingLayoutDescriptor) bool { return a == b }

func vertexAttributeEqual(a, b gfx.VertexAttributeDescriptor) bool { return a == b }

func bindingsEqual(a, b gfx.BindingsDescriptor) bool {
	return a.BindingLayout == b.BindingLayout &&
		sliceEqual(a.UniformBufferBindings, b.UniformBufferBindings, bufferBindingEqual) &&
		sliceEqual(a.SamplerBindings, b.SamplerBindings, samplerBindingEqual)
}

func renderPipelineEqual(a, b gfx.RenderPipelineDescriptor) bool {
	if a.Topology != b.Topology || a.InputLayout != b.InputLayout || a.MegaState != b.MegaState {
		return false
	}
	if programKey(a.Program) != programKey(b.Program) {
		return false
	}
	return sliceEqual(a.BindingLayouts, b.BindingLayouts, bindingLayoutEqual)
}

func inputLayoutEqual(a, b gfx.InputLayoutDescriptor) bool {
	return a.IndexBufferFormat == b.IndexBufferFormat &&
		sliceEqual(a.VertexAttributeDescriptors, b.VertexAttributeDescriptors, vertexAttributeEqual)
}
