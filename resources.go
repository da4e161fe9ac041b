package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/gl"
)

// Resource is implemented by every handle the device creates.
type Resource interface {
	// ResourceName returns the debug name set with SetResourceName.
	ResourceName() string
	// Destroyed reports whether the handle has been destroyed.
	Destroyed() bool

	header() *resource
}

// resource is the header embedded in every handle.
type resource struct {
	name      string
	destroyed bool
}

func (r *resource) ResourceName() string { return r.name }
func (r *resource) Destroyed() bool      { return r.destroyed }
func (r *resource) header() *resource    { return r }

// Buffer is a device buffer. Uniform buffers are split into fixed-size
// pages so that every binding range fits one backend allocation; other
// usages occupy a single page.
type Buffer struct {
	resource
	usage        BufferUsage
	target       gl.Enum
	byteSize     int
	pageByteSize int
	pages        []gl.Object
}

// Usage returns the usage class the buffer was created with.
func (b *Buffer) Usage() BufferUsage { return b.usage }

// ByteSize returns the buffer size in bytes.
func (b *Buffer) ByteSize() int { return b.byteSize }

// NumPages returns the number of backend allocations backing the buffer.
func (b *Buffer) NumPages() int { return len(b.pages) }

// PageByteSize returns the byte size of every page but the last.
func (b *Buffer) PageByteSize() int { return b.pageByteSize }

// Page returns the backend object holding byteOffset.
func (b *Buffer) Page(byteOffset int) gl.Object {
	return b.pages[byteOffset/b.pageByteSize]
}

// Locate maps a byte range of the buffer onto its page. It returns the page
// index and the offset inside that page, or an error wrapping
// ErrPageStraddle when the range crosses a page boundary and ErrBufferRange
// when it leaves the buffer.
func (b *Buffer) Locate(byteOffset, byteSize int) (page, pageOffset int, err error) {
	if byteOffset < 0 || byteSize < 0 || byteOffset+byteSize > b.byteSize {
		return 0, 0, fmt.Errorf("%w: [%d, %d) of %d bytes", ErrBufferRange, byteOffset, byteOffset+byteSize, b.byteSize)
	}
	page = byteOffset / b.pageByteSize
	pageOffset = byteOffset % b.pageByteSize
	if pageOffset+byteSize > b.pageByteSize {
		return 0, 0, fmt.Errorf("%w: [%d, %d) with %d-byte pages", ErrPageStraddle, byteOffset, byteOffset+byteSize, b.pageByteSize)
	}
	return page, pageOffset, nil
}

// Texture is a 2D or 2D-array texture.
type Texture struct {
	resource
	obj       gl.Object
	target    gl.Enum
	format    Format
	width     int
	height    int
	depth     int
	numLevels int
}

// Format returns the texel format.
func (t *Texture) Format() Format { return t.format }

// Width returns the width of level 0.
func (t *Texture) Width() int { return t.width }

// Height returns the height of level 0.
func (t *Texture) Height() int { return t.height }

// Depth returns the number of array layers.
func (t *Texture) Depth() int { return t.depth }

// NumLevels returns the number of mip levels.
func (t *Texture) NumLevels() int { return t.numLevels }

// Sampler is a sampler object.
type Sampler struct {
	resource
	obj gl.Object
}

// ColorAttachment is a color render buffer, possibly multisampled.
type ColorAttachment struct {
	resource
	obj        gl.Object
	width      int
	height     int
	numSamples int
}

// Width returns the attachment width.
func (a *ColorAttachment) Width() int { return a.width }

// Height returns the attachment height.
func (a *ColorAttachment) Height() int { return a.height }

// NumSamples returns the sample count.
func (a *ColorAttachment) NumSamples() int { return a.numSamples }

// DepthStencilAttachment is a depth-stencil render buffer.
type DepthStencilAttachment struct {
	resource
	obj        gl.Object
	width      int
	height     int
	numSamples int
}

// RenderTarget is an offscreen framebuffer. A nil *RenderTarget names the
// default framebuffer wherever one is accepted.
type RenderTarget struct {
	resource
	obj   gl.Object
	color *ColorAttachment
	depth *DepthStencilAttachment
}

// compiledProgram is a backend program shared by every Program built from
// the same source.
type compiledProgram struct {
	obj        gl.Object
	key        programKey
	refs       int
	reflection ProgramReflection
}

// Program is a linked vertex and fragment shader pair.
type Program struct {
	resource
	compiled *compiledProgram
}

// UniqueKey identifies the compiled backend program.
func (p *Program) UniqueKey() uint64 { return p.compiled.reflection.UniqueKey }

// Bindings is a bind group: uniform-buffer ranges and sampler/texture pairs
// for the slots of one binding layout.
type Bindings struct {
	resource
	layout         BindingLayoutDescriptor
	uniformBuffers []BufferBinding
	samplers       []SamplerBinding
}

// InputLayout is a validated vertex attribute layout.
type InputLayout struct {
	resource
	attributes  []VertexAttributeDescriptor
	indexFormat Format
}

// IndexFormat returns the index format, or zero for non-indexed layouts.
func (l *InputLayout) IndexFormat() Format { return l.indexFormat }

// InputState binds vertex and index buffers to an input layout.
type InputState struct {
	resource
	vao             gl.Object
	layout          *InputLayout
	indexType       gl.Enum
	indexByteOffset int
	indexCompSize   int
}

// bindingTable is the resolved slot range of one binding layout inside a
// pipeline.
type bindingTable struct {
	firstUniformBuffer int
	numUniformBuffers  int
	firstSampler       int
	numSamplers        int
}

// RenderPipeline is a program together with its fixed-function state,
// binding tables and input layout.
type RenderPipeline struct {
	resource
	tables      []bindingTable
	drawMode    gl.Enum
	program     *Program
	megaState   MegaState
	inputLayout *InputLayout
}

// MegaState returns the pipeline's fixed-function state.
func (p *RenderPipeline) MegaState() MegaState { return p.megaState }

// Handle type assertions.
var (
	_ Resource = (*Buffer)(nil)
	_ Resource = (*Texture)(nil)
	_ Resource = (*Sampler)(nil)
	_ Resource = (*ColorAttachment)(nil)
	_ Resource = (*DepthStencilAttachment)(nil)
	_ Resource = (*RenderTarget)(nil)
	_ Resource = (*Program)(nil)
	_ Resource = (*Bindings)(nil)
	_ Resource = (*InputLayout)(nil)
	_ Resource = (*InputState)(nil)
	_ Resource = (*RenderPipeline)(nil)
)
