package gfx

import "github.com/gogpu/gputypes"

// TextureDescriptor describes a texture to create.
type TextureDescriptor struct {
	Dimension TextureDimension
	Format    Format
	Width     int
	Height    int
	// Depth is the number of array layers for 2D-array textures and is
	// ignored for 2D textures.
	Depth     int
	NumLevels int
}

// TextureDescriptor2D returns a descriptor for a plain 2D texture.
func TextureDescriptor2D(format Format, width, height, numLevels int) TextureDescriptor {
	return TextureDescriptor{
		Dimension: TextureDimension2D,
		Format:    format,
		Width:     width,
		Height:    height,
		Depth:     1,
		NumLevels: numLevels,
	}
}

// SamplerDescriptor describes texture sampling.
type SamplerDescriptor struct {
	WrapS     WrapMode
	WrapT     WrapMode
	MinFilter TexFilterMode
	MagFilter TexFilterMode
	MipFilter MipFilterMode
	MinLOD    float32
	MaxLOD    float32
}

// RenderTargetDescriptor lists the attachments of an offscreen render
// target. Either attachment may be nil.
type RenderTargetDescriptor struct {
	ColorAttachment        *ColorAttachment
	DepthStencilAttachment *DepthStencilAttachment
}

// RenderPassDescriptor holds the load operations and clear values of a
// render pass. An attachment whose load op is LoadOpClear is cleared when
// the pass starts; any other load op keeps its contents.
type RenderPassDescriptor struct {
	ColorLoadOp       gputypes.LoadOp
	ColorClearColor   gputypes.Color
	DepthLoadOp       gputypes.LoadOp
	DepthClearValue   float32
	StencilLoadOp     gputypes.LoadOp
	StencilClearValue uint8
}

// BindingLayoutDescriptor declares the slot counts of one bind group.
type BindingLayoutDescriptor struct {
	NumUniformBuffers int
	NumSamplers       int
}

// BufferBinding selects a word range of a uniform buffer.
type BufferBinding struct {
	Buffer     *Buffer
	WordOffset int
	WordCount  int
}

// SamplerBinding pairs a sampler with a texture for one texture unit.
// Either may be nil to leave the unit empty.
type SamplerBinding struct {
	Sampler *Sampler
	Texture *Texture
}

// BindingsDescriptor describes one bind group.
type BindingsDescriptor struct {
	BindingLayout         BindingLayoutDescriptor
	UniformBufferBindings []BufferBinding
	SamplerBindings       []SamplerBinding
}

// VertexAttributeDescriptor describes one vertex shader input.
type VertexAttributeDescriptor struct {
	Location         uint32
	Format           Format
	BufferIndex      int
	BufferByteOffset int
	Frequency        gputypes.VertexStepMode
	// UsesIntInShader selects the integer attribute path: components reach
	// the shader unconverted.
	UsesIntInShader bool
}

// InputLayoutDescriptor describes the vertex attributes and index format
// of a pipeline. An IndexBufferFormat of zero means non-indexed drawing.
type InputLayoutDescriptor struct {
	VertexAttributeDescriptors []VertexAttributeDescriptor
	IndexBufferFormat          Format
}

// VertexBufferDescriptor places a buffer in an input state.
type VertexBufferDescriptor struct {
	Buffer     *Buffer
	ByteOffset int
	ByteStride int
}

// IndexBufferDescriptor places an index buffer in an input state.
type IndexBufferDescriptor struct {
	Buffer     *Buffer
	ByteOffset int
}

// RenderPipelineDescriptor describes a render pipeline.
type RenderPipelineDescriptor struct {
	Topology       gputypes.PrimitiveTopology
	BindingLayouts []BindingLayoutDescriptor
	InputLayout    *InputLayout
	Program        *Program
	MegaState      MegaState
}

// ProgramSource is the shader source of a program. Both stages are
// compiled and linked by the backend.
type ProgramSource struct {
	Name     string
	Vertex   string
	Fragment string
}

// UniformBufferLayout names one uniform block of a program and the slot it
// is bound to.
type UniformBufferLayout struct {
	Name    string
	Binding int
}

// ProgramReflection describes the resources a program consumes.
type ProgramReflection struct {
	Name                 string
	UniformBufferLayouts []UniformBufferLayout
	// SamplerNames lists sampler uniforms in texture-unit order.
	SamplerNames []string
	// UniqueKey identifies the compiled backend program. Programs built
	// from identical source share a key while the compiled program lives;
	// a recompiled program gets a fresh key.
	UniqueKey uint64
}

// InputStateReflection describes an input state.
type InputStateReflection struct {
	InputLayout *InputLayout
}

// Limits reports device limits relevant to uniform buffer packing.
type Limits struct {
	// UniformBufferWordAlignment is the required alignment, in words, of
	// a uniform buffer binding offset.
	UniformBufferWordAlignment int
	// UniformBufferMaxPageWordSize is the largest word range one binding
	// may cover.
	UniformBufferMaxPageWordSize int
}
