package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl"
	"github.com/gogpu/gfx/internal/cmdbuf"
)

// Pass is a recorded RenderPass or UploadPass awaiting SubmitPass.
type Pass interface {
	// NumWords returns the number of instruction words recorded.
	NumWords() int
	// NumRefs returns the number of object references recorded.
	NumRefs() int

	reset()
}

// RenderPass records draw commands against one render target.
//
// Recording only appends to the pass; nothing reaches the backend until the
// pass is submitted. A pass must end with EndPass before submission.
type RenderPass struct {
	words cmdbuf.Words
	refs  []any
	ended bool
}

func (p *RenderPass) NumWords() int { return p.words.Len() }
func (p *RenderPass) NumRefs() int  { return len(p.refs) }

func (p *RenderPass) reset() {
	p.words.Reset()
	clear(p.refs)
	p.refs = p.refs[:0]
	p.ended = false
}

func (p *RenderPass) op(op cmdbuf.Opcode) {
	if p.ended {
		panic(fmt.Errorf("%w: %v after EndPass", ErrPassState, op))
	}
	p.words.Push(uint32(op))
}

func (p *RenderPass) ref(v any) { p.refs = append(p.refs, v) }

func (p *RenderPass) setRenderPassParameters(target *RenderTarget, clearBits gl.Enum, desc *RenderPassDescriptor) {
	p.op(cmdbuf.OpSetRenderPassParameters)
	p.ref(target)
	p.words.Push(uint32(clearBits))
	p.words.PushF32(float32(desc.ColorClearColor.R))
	p.words.PushF32(float32(desc.ColorClearColor.G))
	p.words.PushF32(float32(desc.ColorClearColor.B))
	p.words.PushF32(float32(desc.ColorClearColor.A))
	p.words.PushF32(desc.DepthClearValue)
	p.words.Push(uint32(desc.StencilClearValue))
}

// SetViewport sets the viewport to (0, 0, width, height).
func (p *RenderPass) SetViewport(width, height int) {
	p.op(cmdbuf.OpSetViewport)
	p.words.PushInt(width)
	p.words.PushInt(height)
}

// SetPipeline binds pipeline for the following draws.
func (p *RenderPass) SetPipeline(pipeline *RenderPipeline) {
	if pipeline == nil {
		panic(fmt.Errorf("%w: SetPipeline", ErrNilResource))
	}
	p.op(cmdbuf.OpSetPipeline)
	p.ref(pipeline)
}

// SetBindings binds b to binding layout group of the current pipeline.
// dynamicWordOffsets holds one extra word offset per uniform buffer
// binding.
func (p *RenderPass) SetBindings(group int, b *Bindings, dynamicWordOffsets []int) {
	if b == nil {
		panic(fmt.Errorf("%w: SetBindings", ErrNilResource))
	}
	p.op(cmdbuf.OpSetBindings)
	p.words.PushInt(group)
	p.ref(b)
	p.words.PushInt(len(dynamicWordOffsets))
	for _, o := range dynamicWordOffsets {
		p.words.PushInt(o)
	}
}

// SetInputState binds s; nil selects no vertex input, which requires a
// pipeline without an input layout.
func (p *RenderPass) SetInputState(s *InputState) {
	p.op(cmdbuf.OpSetInputState)
	p.ref(s)
}

// SetStencilRef sets the stencil reference value.
func (p *RenderPass) SetStencilRef(ref uint8) {
	p.op(cmdbuf.OpSetStencilRef)
	p.words.Push(uint32(ref))
}

// Draw draws count vertices starting at firstVertex.
func (p *RenderPass) Draw(count, firstVertex int) {
	p.op(cmdbuf.OpDraw)
	p.words.PushInt(count)
	p.words.PushInt(firstVertex)
}

// DrawIndexed draws count indices starting at firstIndex.
func (p *RenderPass) DrawIndexed(count, firstIndex int) {
	p.op(cmdbuf.OpDrawIndexed)
	p.words.PushInt(count)
	p.words.PushInt(firstIndex)
}

// EndPass ends the pass. If resolveTo is not nil the render target's color
// attachment is resolved into it; sizes must match.
func (p *RenderPass) EndPass(resolveTo *Texture) {
	p.op(cmdbuf.OpEndPass)
	p.ref(resolveTo)
	p.ended = true
}

// UploadPass records host-to-device copies.
type UploadPass struct {
	words cmdbuf.Words
	refs  []any
}

func (p *UploadPass) NumWords() int { return p.words.Len() }
func (p *UploadPass) NumRefs() int  { return len(p.refs) }

func (p *UploadPass) reset() {
	p.words.Reset()
	clear(p.refs)
	p.refs = p.refs[:0]
}

// UploadBufferData copies all of data into b starting at dstWordOffset.
func (p *UploadPass) UploadBufferData(b *Buffer, dstWordOffset int, data []byte) {
	p.uploadBufferData(b, dstWordOffset*4, data, 0, len(data))
}

// UploadBufferDataRange copies wordCount words of data, starting at
// srcWordOffset, into b starting at dstWordOffset.
func (p *UploadPass) UploadBufferDataRange(b *Buffer, dstWordOffset int, data []byte, srcWordOffset, wordCount int) {
	p.uploadBufferData(b, dstWordOffset*4, data, srcWordOffset*4, wordCount*4)
}

func (p *UploadPass) uploadBufferData(b *Buffer, dstByteOffset int, data []byte, srcByteOffset, byteCount int) {
	if b == nil {
		panic(fmt.Errorf("%w: UploadBufferData", ErrNilResource))
	}
	p.words.Push(uint32(cmdbuf.OpUploadBufferData))
	p.refs = append(p.refs, b)
	p.words.PushInt(dstByteOffset)
	p.refs = append(p.refs, data)
	p.words.PushInt(srcByteOffset)
	p.words.PushInt(byteCount)
}

// UploadTextureData writes one slice of data per mip level into t,
// starting at level firstLevel.
func (p *UploadPass) UploadTextureData(t *Texture, firstLevel int, levels [][]byte) {
	if t == nil {
		panic(fmt.Errorf("%w: UploadTextureData", ErrNilResource))
	}
	p.words.Push(uint32(cmdbuf.OpUploadTextureData))
	p.refs = append(p.refs, t)
	p.words.PushInt(firstLevel)
	p.words.PushInt(len(levels))
	for _, l := range levels {
		p.refs = append(p.refs, l)
	}
}

// CreateRenderPass takes a render pass from the pool and records its
// parameters. A nil target renders to the default framebuffer.
func (d *Device) CreateRenderPass(target *RenderTarget, desc RenderPassDescriptor) *RenderPass {
	var clearBits gl.Enum
	if desc.ColorLoadOp == gputypes.LoadOpClear {
		clearBits |= gl.COLOR_BUFFER_BIT
	}
	if desc.DepthLoadOp == gputypes.LoadOpClear {
		clearBits |= gl.DEPTH_BUFFER_BIT
	}
	if desc.StencilLoadOp == gputypes.LoadOpClear {
		clearBits |= gl.STENCIL_BUFFER_BIT
	}
	p := d.renderPasses.Get()
	p.setRenderPassParameters(target, clearBits, &desc)
	return p
}

// CreateHostAccessPass takes an upload pass from the pool.
func (d *Device) CreateHostAccessPass() *UploadPass {
	return d.uploadPasses.Get()
}

// SubmitPass terminates p, replays it against the backend, resets it and
// returns it to its pool. p must not be used afterwards.
func (d *Device) SubmitPass(p Pass) {
	switch p := p.(type) {
	case *RenderPass:
		if !p.ended {
			panic(fmt.Errorf("%w: render pass submitted without EndPass", ErrPassState))
		}
		p.words.Push(uint32(cmdbuf.OpRenderEnd))
		executeRenderPass(d, p.words.Slice(), p.refs)
		d.gl.Flush()
		p.reset()
		d.renderPasses.Put(p)
	case *UploadPass:
		p.words.Push(uint32(cmdbuf.OpUploadEnd))
		executeUploadPass(d, p.words.Slice(), p.refs)
		p.reset()
		d.uploadPasses.Put(p)
	default:
		panic(fmt.Errorf("%w: pass type %T", ErrUnsupported, p))
	}
}
