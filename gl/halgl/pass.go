package halgl

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/gl"
)

// WebGPU requires texture-to-buffer copies to pad rows to 256 bytes.
const copyPitchAlignment = 256

func (c *Context) ensureEncoder() error {
	if c.encoder != nil {
		return nil
	}
	enc, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "halgl_encoder"})
	if err != nil {
		return fmt.Errorf("halgl: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("halgl_frame"); err != nil {
		return fmt.Errorf("halgl: begin encoding: %w", err)
	}
	c.encoder = enc
	return nil
}

// drawTargets resolves the attachments of the draw framebuffer.
func (c *Context) drawTargets() (color, depth *target, err error) {
	fb := c.framebufferAt(gl.DRAW_FRAMEBUFFER)
	if fb == nil {
		return nil, nil, fmt.Errorf("%w: framebuffer %d", ErrInvalidObject, c.drawFB)
	}
	ct, ok, err := c.resolveAttachment(fb.color)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		color = &ct
	}
	dt, ok, err := c.resolveAttachment(fb.depthStencil)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		depth = &dt
	}
	if color == nil && depth == nil {
		return nil, nil, fmt.Errorf("%w: framebuffer %d has no attachments", ErrInvalidObject, c.drawFB)
	}
	return color, depth, nil
}

// beginPass opens a render pass on the draw framebuffer, clearing the
// aspects in mask and loading the rest.
func (c *Context) beginPass(mask gl.Enum) error {
	color, depth, err := c.drawTargets()
	if err != nil {
		return err
	}
	if err := c.ensureEncoder(); err != nil {
		return err
	}

	desc := &hal.RenderPassDescriptor{Label: "halgl_pass"}
	if color != nil {
		ca := hal.RenderPassColorAttachment{
			View:    color.view,
			LoadOp:  gputypes.LoadOpLoad,
			StoreOp: gputypes.StoreOpStore,
		}
		if mask&gl.COLOR_BUFFER_BIT != 0 {
			cc := c.state.clearColor
			ca.LoadOp = gputypes.LoadOpClear
			ca.ClearValue = gputypes.Color{R: float64(cc[0]), G: float64(cc[1]), B: float64(cc[2]), A: float64(cc[3])}
		}
		desc.ColorAttachments = []hal.RenderPassColorAttachment{ca}
	}
	if depth != nil {
		ds := &hal.RenderPassDepthStencilAttachment{
			View:           depth.view,
			DepthLoadOp:    gputypes.LoadOpLoad,
			DepthStoreOp:   gputypes.StoreOpStore,
			StencilLoadOp:  gputypes.LoadOpLoad,
			StencilStoreOp: gputypes.StoreOpStore,
		}
		if mask&gl.DEPTH_BUFFER_BIT != 0 {
			ds.DepthLoadOp = gputypes.LoadOpClear
			ds.DepthClearValue = c.state.clearDepth
		}
		if mask&gl.STENCIL_BUFFER_BIT != 0 {
			ds.StencilLoadOp = gputypes.LoadOpClear
			ds.StencilClearValue = uint32(c.state.clearStencil) & 0xFF
		}
		desc.DepthStencilAttachment = ds
	}

	c.pass = c.encoder.BeginRenderPass(desc)
	c.passFB = c.drawFB
	c.passPipe = nil
	return nil
}

func (c *Context) endPass() {
	if c.pass == nil {
		return
	}
	c.pass.End()
	c.pass = nil
	c.passPipe = nil
}

func (c *Context) ensurePass() error {
	if c.pass != nil && c.passFB == c.drawFB {
		return nil
	}
	c.endPass()
	return c.beginPass(0)
}

// Clear starts a new render pass whose load operations perform the clear.
func (c *Context) Clear(mask gl.Enum) {
	if mask&gl.COLOR_BUFFER_BIT != 0 && c.state.colorMask != [4]bool{true, true, true, true} {
		c.warnOnce("masked-clear", "halgl: color clear ignores the color write mask")
	}
	c.endPass()
	if err := c.beginPass(mask); err != nil {
		c.fail(err)
	}
}

func (c *Context) DrawArrays(mode gl.Enum, first, count int) {
	if rp := c.prepareDraw(mode); rp != nil {
		rp.Draw(uint32(count), 1, uint32(first), 0)
	}
}

func (c *Context) DrawElements(mode gl.Enum, count int, typ gl.Enum, offset int) {
	var (
		format gputypes.IndexFormat
		size   int
	)
	switch typ {
	case gl.UNSIGNED_SHORT:
		format, size = gputypes.IndexFormatUint16, 2
	case gl.UNSIGNED_INT:
		format, size = gputypes.IndexFormatUint32, 4
	default:
		c.failf("%w: index type %#x", ErrUnsupported, uint32(typ))
		return
	}
	ib := c.buffers[c.vaos[c.vao].element]
	if ib == nil || ib.hal == nil {
		c.failf("%w: DrawElements with no index buffer", ErrInvalidObject)
		return
	}
	if offset%size != 0 {
		c.failf("%w: index offset %d is not a multiple of %d", ErrUnsupported, offset, size)
		return
	}
	if rp := c.prepareDraw(mode); rp != nil {
		rp.SetIndexBuffer(ib.hal, format, 0)
		rp.DrawIndexed(uint32(count), 1, uint32(offset/size), 0, 0)
	}
}

// prepareDraw binds the pipeline, resources and dynamic state for a draw
// and returns the pass to draw in, or nil after recording an error.
func (c *Context) prepareDraw(mode gl.Enum) hal.RenderPassEncoder {
	p := c.programs[c.current]
	if p == nil {
		c.failf("%w: draw with no program", ErrInvalidObject)
		return nil
	}
	color, depth, err := c.drawTargets()
	if err != nil {
		c.fail(err)
		return nil
	}
	buffers, slots, sig, err := vertexLayout(c.vaos[c.vao])
	if err != nil {
		c.fail(err)
		return nil
	}
	pipe, err := c.pipelineFor(mode, p, color, depth, buffers, sig)
	if err != nil {
		c.fail(err)
		return nil
	}
	groups, err := c.createBindGroups(p)
	if err != nil {
		c.fail(err)
		return nil
	}
	if err := c.ensurePass(); err != nil {
		c.fail(err)
		return nil
	}

	rp := c.pass
	if pipe != c.passPipe {
		rp.SetPipeline(pipe)
		c.passPipe = pipe
	}
	for i, g := range groups {
		rp.SetBindGroup(uint32(i), g, nil)
	}
	for i, s := range slots {
		b := c.buffers[s.buffer]
		if b == nil || b.hal == nil {
			c.failf("%w: vertex buffer %d has no storage", ErrInvalidObject, s.buffer)
			return nil
		}
		rp.SetVertexBuffer(uint32(i), b.hal, uint64(s.offset))
	}

	// GL viewports grow up from the bottom left.
	height := 0
	if color != nil {
		height = color.height
	} else {
		height = depth.height
	}
	x, y, w, h := c.viewport[0], c.viewport[1], c.viewport[2], c.viewport[3]
	rp.SetViewport(float32(x), float32(height-y-h), float32(w), float32(h), 0, 1)

	if depth != nil && c.state.stencilTest {
		rp.SetStencilReference(uint32(c.state.stencilRef) & 0xFF)
	}
	return rp
}

// createBindGroups builds one bind group per group of p from the current
// indexed uniform bindings and texture units. Bind groups live until the
// next submission completes.
func (c *Context) createBindGroups(p *program) ([]hal.BindGroup, error) {
	entries := make([][]gputypes.BindGroupEntry, p.layout.numGroups)
	var nBlock, nTexture, nSampler int
	for _, r := range p.layout.resources {
		e := gputypes.BindGroupEntry{Binding: r.binding}
		switch r.kind {
		case resourceUniform:
			slot := p.slots[nBlock]
			nBlock++
			if int(slot) >= len(c.uniformSlots) {
				return nil, fmt.Errorf("%w: no buffer at uniform binding %d for %s", ErrInvalidObject, slot, r.name)
			}
			rng := c.uniformSlots[slot]
			b := c.buffers[rng.buffer]
			if b == nil || b.hal == nil {
				return nil, fmt.Errorf("%w: uniform buffer %d for %s", ErrInvalidObject, rng.buffer, r.name)
			}
			e.Resource = gputypes.BufferBinding{Buffer: b.hal.NativeHandle(), Offset: uint64(rng.offset), Size: uint64(rng.size)}
		case resourceTexture, resourceTextureArray:
			t, err := c.unitTexture(p, nTexture)
			nTexture++
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.name, err)
			}
			e.Resource = gputypes.TextureViewBinding{TextureView: t.view.NativeHandle()}
		case resourceSampler:
			samp, err := c.unitSampler(p, nSampler)
			nSampler++
			if err != nil {
				return nil, fmt.Errorf("%s: %w", r.name, err)
			}
			e.Resource = gputypes.SamplerBinding{Sampler: samp.NativeHandle()}
		}
		entries[r.group] = append(entries[r.group], e)
	}

	groups := make([]hal.BindGroup, 0, len(entries))
	for g, groupEntries := range entries {
		bg, err := c.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("halgl_group%d", g),
			Layout:  p.groups[g],
			Entries: groupEntries,
		})
		if err != nil {
			return nil, fmt.Errorf("halgl: create bind group %d: %w", g, err)
		}
		c.retire(func() { c.device.DestroyBindGroup(bg) })
		groups = append(groups, bg)
	}
	return groups, nil
}

// unitTexture returns the texture bound to the unit of the i-th texture of p.
func (c *Context) unitTexture(p *program, i int) (*texture, error) {
	unit := p.units[i]
	if unit < 0 || unit >= len(c.units) {
		return nil, fmt.Errorf("%w: texture unit %d", ErrInvalidObject, unit)
	}
	t := c.textures[c.units[unit].texture]
	if t == nil || t.view == nil {
		return nil, fmt.Errorf("%w: no texture with storage on unit %d", ErrInvalidObject, unit)
	}
	return t, nil
}

// unitSampler returns the hal sampler for the i-th sampler of p: the sampler
// object on the paired texture's unit, or the texture's own parameters.
func (c *Context) unitSampler(p *program, i int) (hal.Sampler, error) {
	t, err := c.unitTexture(p, i)
	if err != nil {
		return nil, err
	}
	if s := c.samplers[c.units[p.units[i]].sampler]; s != nil {
		return c.resolveSampler(&s.state, s.label)
	}
	return c.resolveSampler(&t.sampling, t.label)
}

// BlitFramebuffer copies the whole color attachment of the read framebuffer
// to the draw framebuffer. A multisampled source is resolved by a render
// pass. Scaled and partial blits are not supported.
func (c *Context) BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int, mask, _ gl.Enum) {
	if mask != gl.COLOR_BUFFER_BIT {
		c.failf("%w: blit mask %#x", ErrUnsupported, uint32(mask))
		return
	}
	src, dst := c.framebufferAt(gl.READ_FRAMEBUFFER), c.framebufferAt(gl.DRAW_FRAMEBUFFER)
	if src == nil || dst == nil {
		c.failf("%w: blit framebuffers %d -> %d", ErrInvalidObject, c.readFB, c.drawFB)
		return
	}
	st, ok1, err := c.resolveAttachment(src.color)
	if err != nil {
		c.fail(err)
		return
	}
	dt, ok2, err := c.resolveAttachment(dst.color)
	if err != nil {
		c.fail(err)
		return
	}
	if !ok1 || !ok2 {
		c.failf("%w: blit needs color attachments on both framebuffers", ErrInvalidObject)
		return
	}
	full := srcX0 == 0 && srcY0 == 0 && srcX1 == st.width && srcY1 == st.height &&
		dstX0 == 0 && dstY0 == 0 && dstX1 == dt.width && dstY1 == dt.height &&
		st.width == dt.width && st.height == dt.height
	if !full {
		c.failf("%w: partial or scaled blit %dx%d -> %dx%d",
			ErrUnsupported, srcX1-srcX0, srcY1-srcY0, dstX1-dstX0, dstY1-dstY0)
		return
	}

	c.endPass()
	switch {
	case st.samples > 1 && dt.samples == 1:
		if err := c.ensureEncoder(); err != nil {
			c.fail(err)
			return
		}
		rp := c.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
			Label: "halgl_resolve",
			ColorAttachments: []hal.RenderPassColorAttachment{{
				View:          st.view,
				ResolveTarget: dt.view,
				LoadOp:        gputypes.LoadOpLoad,
				StoreOp:       gputypes.StoreOpStore,
			}},
		})
		rp.End()
	case st.samples == 1 && dt.samples == 1:
		pixels, err := c.readTarget(&st)
		if err != nil {
			c.fail(err)
			return
		}
		c.queue.WriteTexture(
			&hal.ImageCopyTexture{Texture: dt.tex, Aspect: gputypes.TextureAspectAll},
			pixels,
			&hal.ImageDataLayout{BytesPerRow: uint32(dt.width * dt.pixelBytes), RowsPerImage: uint32(dt.height)},
			&hal.Extent3D{Width: uint32(dt.width), Height: uint32(dt.height), DepthOrArrayLayers: 1},
		)
	default:
		c.failf("%w: blit from %d to %d samples", ErrUnsupported, st.samples, dt.samples)
	}
}

// readTarget submits outstanding work and copies t back to the CPU as
// tightly packed rows.
func (c *Context) readTarget(t *target) ([]byte, error) {
	c.endPass()
	if err := c.ensureEncoder(); err != nil {
		return nil, err
	}
	bytesPerRow := t.width * t.pixelBytes
	aligned := alignUp(bytesPerRow, copyPitchAlignment)
	staging, err := c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "halgl_readback",
		Size:  uint64(aligned * t.height),
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("halgl: create readback buffer: %w", err)
	}
	defer c.device.DestroyBuffer(staging)

	c.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	c.encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{BytesPerRow: uint32(aligned), RowsPerImage: uint32(t.height)},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1},
	}})
	c.encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: t.tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})
	if err := c.submit(); err != nil {
		return nil, err
	}

	readback := make([]byte, aligned*t.height)
	if err := c.queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("halgl: read back: %w", err)
	}
	if aligned == bytesPerRow {
		return readback, nil
	}
	tight := make([]byte, bytesPerRow*t.height)
	for row := range t.height {
		copy(tight[row*bytesPerRow:(row+1)*bytesPerRow], readback[row*aligned:])
	}
	return tight, nil
}

// ReadPixels submits outstanding work and returns the color attachment of
// framebuffer fb, where zero is the default framebuffer. Rows are tightly
// packed, top row first.
func (c *Context) ReadPixels(fb gl.Object) (pixels []byte, width, height int, err error) {
	f := c.surface
	if fb != 0 {
		f = c.fbs[fb]
	}
	if f == nil {
		return nil, 0, 0, fmt.Errorf("%w: framebuffer %d", ErrInvalidObject, fb)
	}
	t, ok, err := c.resolveAttachment(f.color)
	if err != nil {
		return nil, 0, 0, err
	}
	if !ok || t.samples != 1 {
		return nil, 0, 0, fmt.Errorf("%w: framebuffer %d has no single-sampled color attachment", ErrUnsupported, fb)
	}
	pixels, err = c.readTarget(&t)
	if err != nil {
		return nil, 0, 0, err
	}
	c.releaseRetired()
	return pixels, t.width, t.height, nil
}

// Flush submits the recorded commands, waits for the GPU and releases
// objects retired since the last submission.
func (c *Context) Flush() {
	c.endPass()
	if c.encoder != nil {
		if err := c.submit(); err != nil {
			c.fail(err)
		}
	}
	c.releaseRetired()
}

// flushRecorded submits recorded draws so a following queue write cannot
// overtake them.
func (c *Context) flushRecorded() {
	if c.encoder != nil {
		c.Flush()
	}
}

// submit ends the open encoder, submits it and waits on a fence.
func (c *Context) submit() error {
	enc := c.encoder
	c.encoder = nil
	cmd, err := enc.EndEncoding()
	if err != nil {
		return fmt.Errorf("halgl: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmd)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("halgl: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)

	if err := c.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		return fmt.Errorf("halgl: submit: %w", err)
	}
	ok, err := c.device.Wait(fence, 1, c.waitTimeout())
	if err != nil {
		return fmt.Errorf("halgl: wait: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w after %v", ErrWaitTimeout, c.waitTimeout())
	}
	return nil
}

func (c *Context) releaseRetired() {
	retired := c.retired
	c.retired = nil
	for _, fn := range retired {
		fn()
	}
}
