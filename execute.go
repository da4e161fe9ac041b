package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfx/gl"
	"github.com/gogpu/gfx/internal/cmdbuf"
)

// renderExecutor receives decoded render pass commands.
type renderExecutor interface {
	setRenderPassParameters(target *RenderTarget, clearBits gl.Enum, r, g, b, a, depth float32, stencil uint32)
	setViewport(width, height int)
	setBindings(group int, b *Bindings, dynamicWordOffsets []uint32)
	setPipeline(p *RenderPipeline)
	setInputState(s *InputState)
	setStencilRef(ref uint32)
	draw(count, firstVertex int)
	drawIndexed(count, firstIndex int)
	endPass(resolveTo *Texture)
}

// uploadExecutor receives decoded upload pass commands.
type uploadExecutor interface {
	uploadBufferData(b *Buffer, dstByteOffset int, data []byte, srcByteOffset, byteCount int)
	uploadTextureData(t *Texture, firstLevel int, levels [][]byte)
}

// refAs reads the next reference as a T.
func refAs[T any](r *cmdbuf.Reader) T {
	v := r.Ref()
	t, ok := v.(T)
	if !ok {
		panic(fmt.Errorf("%w: reference of type %T", ErrInvalidOpcode, v))
	}
	return t
}

// executeRenderPass decodes words and refs in order and dispatches each
// command to ex, returning at the terminal opcode.
func executeRenderPass(ex renderExecutor, words []uint32, refs []any) {
	r := cmdbuf.NewReader(words, refs)
	for {
		switch op := r.Op(); op {
		case cmdbuf.OpSetRenderPassParameters:
			target := refAs[*RenderTarget](&r)
			clearBits := gl.Enum(r.U32())
			cr, cg, cb, ca := r.F32(), r.F32(), r.F32(), r.F32()
			depth := r.F32()
			stencil := r.U32()
			ex.setRenderPassParameters(target, clearBits, cr, cg, cb, ca, depth, stencil)
		case cmdbuf.OpSetViewport:
			w := r.Int()
			h := r.Int()
			ex.setViewport(w, h)
		case cmdbuf.OpSetBindings:
			group := r.Int()
			b := refAs[*Bindings](&r)
			n := r.Int()
			ex.setBindings(group, b, r.Words(n))
		case cmdbuf.OpSetPipeline:
			ex.setPipeline(refAs[*RenderPipeline](&r))
		case cmdbuf.OpSetInputState:
			ex.setInputState(refAs[*InputState](&r))
		case cmdbuf.OpSetStencilRef:
			ex.setStencilRef(r.U32())
		case cmdbuf.OpDraw:
			count := r.Int()
			first := r.Int()
			ex.draw(count, first)
		case cmdbuf.OpDrawIndexed:
			count := r.Int()
			first := r.Int()
			ex.drawIndexed(count, first)
		case cmdbuf.OpEndPass:
			ex.endPass(refAs[*Texture](&r))
		case cmdbuf.OpRenderEnd:
			return
		default:
			panic(fmt.Errorf("%w: %v in render pass", ErrInvalidOpcode, op))
		}
	}
}

// executeUploadPass decodes an upload pass and dispatches it to ex.
func executeUploadPass(ex uploadExecutor, words []uint32, refs []any) {
	r := cmdbuf.NewReader(words, refs)
	for {
		switch op := r.Op(); op {
		case cmdbuf.OpUploadBufferData:
			b := refAs[*Buffer](&r)
			dst := r.Int()
			data := refAs[[]byte](&r)
			src := r.Int()
			n := r.Int()
			ex.uploadBufferData(b, dst, data, src, n)
		case cmdbuf.OpUploadTextureData:
			t := refAs[*Texture](&r)
			first := r.Int()
			n := r.Int()
			levels := make([][]byte, n)
			for i := range levels {
				levels[i] = refAs[[]byte](&r)
			}
			ex.uploadTextureData(t, first, levels)
		case cmdbuf.OpUploadEnd:
			return
		default:
			panic(fmt.Errorf("%w: %v in upload pass", ErrInvalidOpcode, op))
		}
	}
}

func (d *Device) setRenderPassParameters(target *RenderTarget, clearBits gl.Enum, r, g, b, a, depth float32, stencil uint32) {
	var fb gl.Object
	if target != nil {
		d.checkLive(target)
		fb = target.obj
	}
	d.renderTarget = target
	d.gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, fb)

	// Clears obey the write masks, so open the masks the clear needs.
	if clearBits&gl.COLOR_BUFFER_BIT != 0 {
		if d.megaState.ColorWrite != gputypes.ColorWriteMaskAll {
			setColorMask(d.gl, gputypes.ColorWriteMaskAll)
			d.megaState.ColorWrite = gputypes.ColorWriteMaskAll
		}
		d.gl.ClearColor(r, g, b, a)
	}
	if clearBits&gl.DEPTH_BUFFER_BIT != 0 {
		if !d.megaState.DepthWrite {
			d.gl.DepthMask(true)
			d.megaState.DepthWrite = true
		}
		d.gl.ClearDepthf(depth)
	}
	if clearBits&gl.STENCIL_BUFFER_BIT != 0 {
		if !d.megaState.StencilWrite {
			d.gl.StencilMask(0xFF)
			d.megaState.StencilWrite = true
		}
		d.gl.ClearStencil(int32(stencil))
	}
	if clearBits != 0 {
		d.gl.Clear(clearBits)
	}
}

func (d *Device) setViewport(width, height int) {
	if d.viewportW != width || d.viewportH != height {
		d.gl.Viewport(0, 0, width, height)
		d.viewportW, d.viewportH = width, height
	}
}

func (d *Device) setBindings(group int, b *Bindings, dynamicWordOffsets []uint32) {
	p := d.pipeline
	if p == nil {
		panic(fmt.Errorf("%w: SetBindings", ErrNoPipeline))
	}
	d.checkLive(b)
	if group < 0 || group >= len(p.tables) {
		panic(fmt.Errorf("%w: group %d of %d", ErrBindingCountMismatch, group, len(p.tables)))
	}
	table := p.tables[group]
	if len(b.uniformBuffers) != table.numUniformBuffers || len(b.samplers) != table.numSamplers {
		panic(fmt.Errorf("%w: group %d wants %d uniform buffers and %d samplers, got %d and %d",
			ErrBindingCountMismatch, group, table.numUniformBuffers, table.numSamplers,
			len(b.uniformBuffers), len(b.samplers)))
	}
	if len(dynamicWordOffsets) != len(b.uniformBuffers) {
		panic(fmt.Errorf("%w: %d offsets for %d uniform buffers",
			ErrDynamicOffsetCount, len(dynamicWordOffsets), len(b.uniformBuffers)))
	}

	for i, ub := range b.uniformBuffers {
		buf := ub.Buffer
		d.checkLive(buf)
		if buf.usage != BufferUsageUniform {
			panic(fmt.Errorf("%w: uniform binding %d has usage %v", ErrBufferUsage, i, buf.usage))
		}
		byteOffset := (ub.WordOffset + int(dynamicWordOffsets[i])) * 4
		byteSize := ub.WordCount * 4
		page, pageOffset, err := buf.Locate(byteOffset, byteSize)
		if err != nil {
			panic(err)
		}
		index := d.uniformSlot(table.firstUniformBuffer + i)
		if d.uniformBuffers[index] != buf || d.uniformOffsets[index] != byteOffset {
			obj := buf.pages[page]
			d.gl.BindBufferRange(gl.UNIFORM_BUFFER, uint32(index), obj, pageOffset, byteSize)
			d.uniformBuffers[index] = buf
			d.uniformOffsets[index] = byteOffset
			d.boundBuffers[gl.UNIFORM_BUFFER] = obj
		}
	}

	for i, sb := range b.samplers {
		unit := d.textureUnit(table.firstSampler + i)
		var samp, tex gl.Object
		if sb.Sampler != nil {
			d.checkLive(sb.Sampler)
			samp = sb.Sampler.obj
		}
		if sb.Texture != nil {
			d.checkLive(sb.Texture)
			tex = sb.Texture.obj
		}
		if d.samplers[unit] != samp {
			d.gl.BindSampler(uint32(unit), samp)
			d.samplers[unit] = samp
		}
		if d.textures[unit] != tex {
			d.setActiveTexture(gl.TEXTURE0 + gl.Enum(unit))
			if sb.Texture != nil {
				d.gl.BindTexture(sb.Texture.target, tex)
				d.countTextureBind()
			}
			d.textures[unit] = tex
		}
	}
}

func (d *Device) setPipeline(p *RenderPipeline) {
	d.checkLive(p)
	d.checkLive(p.program)
	d.pipeline = p
	d.applyMegaState(&p.megaState)
	d.useProgram(p.program.compiled.obj)
}

func (d *Device) setInputState(s *InputState) {
	p := d.pipeline
	if p == nil {
		panic(fmt.Errorf("%w: SetInputState", ErrNoPipeline))
	}
	d.inputState = s
	if s == nil {
		if p.inputLayout != nil {
			panic(fmt.Errorf("%w: nil input state for a pipeline with an input layout", ErrInputLayoutMismatch))
		}
		d.bindVAO(0)
		return
	}
	d.checkLive(s)
	if p.inputLayout != s.layout {
		panic(fmt.Errorf("%w: input state built for another layout", ErrInputLayoutMismatch))
	}
	d.bindVAO(s.vao)
}

func (d *Device) setStencilRef(ref uint32) {
	d.stencilRef = ref
	d.gl.StencilFunc(translateCompareFunction(d.megaState.StencilCompare), int32(ref), 0xFF)
}

func (d *Device) draw(count, firstVertex int) {
	p := d.pipeline
	if p == nil {
		panic(fmt.Errorf("%w: Draw", ErrNoPipeline))
	}
	d.gl.DrawArrays(p.drawMode, firstVertex, count)
	d.countDrawCall()
}

func (d *Device) drawIndexed(count, firstIndex int) {
	p := d.pipeline
	if p == nil {
		panic(fmt.Errorf("%w: DrawIndexed", ErrNoPipeline))
	}
	s := d.inputState
	if s == nil || s.indexType == 0 {
		panic(fmt.Errorf("%w: DrawIndexed", ErrNoIndexBuffer))
	}
	byteOffset := s.indexByteOffset + firstIndex*s.indexCompSize
	d.gl.DrawElements(p.drawMode, count, s.indexType, byteOffset)
	d.countDrawCall()
}

func (d *Device) endPass(resolveTo *Texture) {
	if resolveTo == nil {
		return
	}
	d.checkLive(resolveTo)
	rt := d.renderTarget
	if rt == nil || rt.color == nil {
		panic(fmt.Errorf("%w: render target has no color attachment", ErrResolveMismatch))
	}
	from := rt.color
	if from.width != resolveTo.width || from.height != resolveTo.height {
		panic(fmt.Errorf("%w: %dx%d into %dx%d",
			ErrResolveMismatch, from.width, from.height, resolveTo.width, resolveTo.height))
	}
	if d.resolveReadFB == 0 {
		d.resolveReadFB = d.gl.CreateFramebuffer()
		d.resolveDrawFB = d.gl.CreateFramebuffer()
	}

	d.gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.resolveReadFB)
	d.gl.FramebufferRenderbuffer(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, from.obj)
	d.gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, d.resolveDrawFB)
	d.gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, resolveTo.obj, 0)
	d.gl.BlitFramebuffer(0, 0, from.width, from.height, 0, 0, resolveTo.width, resolveTo.height,
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	d.gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	d.gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
}
