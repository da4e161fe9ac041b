package halgl

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/gl"
)

type renderbuffer struct {
	format  textureFormat
	samples int

	width, height int

	hal   hal.Texture
	view  hal.TextureView
	label string
}

// attachment is a framebuffer attachment point. At most one of
// renderbuffer and texture is set.
type attachment struct {
	renderbuffer gl.Object
	texture      gl.Object
	level        int
}

func (a attachment) empty() bool { return a.renderbuffer == 0 && a.texture == 0 }

type framebuffer struct {
	color        attachment
	depthStencil attachment
	label        string
}

// target is a resolved attachment: the view to render into and its shape.
type target struct {
	tex        hal.Texture
	view       hal.TextureView
	format     gputypes.TextureFormat
	pixelBytes int
	samples    int

	width, height int
}

func (c *Context) CreateRenderbuffer() gl.Object {
	obj := c.alloc()
	c.rbs[obj] = &renderbuffer{}
	return obj
}

func (c *Context) DeleteRenderbuffer(obj gl.Object) {
	rb := c.rbs[obj]
	if rb == nil {
		return
	}
	delete(c.rbs, obj)
	for _, fb := range c.fbs {
		if fb.color.renderbuffer == obj {
			fb.color = attachment{}
		}
		if fb.depthStencil.renderbuffer == obj {
			fb.depthStencil = attachment{}
		}
	}
	c.releaseRenderbuffer(rb)
}

func (c *Context) releaseRenderbuffer(rb *renderbuffer) {
	tex, view := rb.hal, rb.view
	c.retire(func() {
		if view != nil {
			c.device.DestroyTextureView(view)
		}
		if tex != nil {
			c.device.DestroyTexture(tex)
		}
	})
}

func (c *Context) BindRenderbuffer(_ gl.Enum, obj gl.Object) {
	c.renderbuffer = obj
}

func (c *Context) RenderbufferStorageMultisample(_ gl.Enum, samples int, internalFormat gl.Enum, width, height int) {
	rb := c.rbs[c.renderbuffer]
	if rb == nil {
		c.failf("%w: RenderbufferStorageMultisample with no renderbuffer bound", ErrInvalidObject)
		return
	}
	f, err := lookupFormat(internalFormat)
	if err != nil {
		c.fail(err)
		return
	}
	if rb.hal != nil {
		c.releaseRenderbuffer(rb)
		rb.hal, rb.view = nil, nil
	}
	label := rb.label
	if label == "" {
		label = fmt.Sprintf("halgl_renderbuffer_%d", c.renderbuffer)
	}
	if err := c.allocRenderbuffer(rb, f, samples, width, height, label); err != nil {
		c.fail(err)
	}
}

func (c *Context) allocRenderbuffer(rb *renderbuffer, f textureFormat, samples, width, height int, label string) error {
	samples = max(samples, 1)
	usage := gputypes.TextureUsageRenderAttachment
	if samples == 1 {
		usage |= gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst
	}
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   uint32(samples),
		Dimension:     gputypes.TextureDimension2D,
		Format:        f.format,
		Usage:         usage,
	})
	if err != nil {
		return fmt.Errorf("halgl: create renderbuffer %q: %w", label, err)
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		c.device.DestroyTexture(tex)
		return fmt.Errorf("halgl: create renderbuffer view %q: %w", label, err)
	}
	rb.format, rb.samples = f, samples
	rb.width, rb.height = width, height
	rb.hal, rb.view = tex, view
	Logger().Debug("halgl: renderbuffer created",
		"label", label, "width", width, "height", height, "samples", samples)
	return nil
}

func (c *Context) CreateFramebuffer() gl.Object {
	obj := c.alloc()
	c.fbs[obj] = &framebuffer{}
	return obj
}

func (c *Context) DeleteFramebuffer(obj gl.Object) {
	if c.fbs[obj] == nil {
		return
	}
	if c.passFB == obj {
		c.endPass()
	}
	delete(c.fbs, obj)
	if c.readFB == obj {
		c.readFB = 0
	}
	if c.drawFB == obj {
		c.drawFB = 0
	}
}

func (c *Context) BindFramebuffer(target gl.Enum, obj gl.Object) {
	switch target {
	case gl.READ_FRAMEBUFFER:
		c.readFB = obj
	case gl.DRAW_FRAMEBUFFER:
		c.drawFB = obj
	case gl.FRAMEBUFFER:
		c.readFB, c.drawFB = obj, obj
	}
}

// framebufferAt returns the framebuffer bound to target. Zero is the
// default framebuffer.
func (c *Context) framebufferAt(target gl.Enum) *framebuffer {
	obj := c.drawFB
	if target == gl.READ_FRAMEBUFFER {
		obj = c.readFB
	}
	if obj == 0 {
		return c.surface
	}
	return c.fbs[obj]
}

func (c *Context) attach(target, point gl.Enum, a attachment) {
	fb := c.framebufferAt(target)
	if fb == nil || fb == c.surface {
		c.failf("%w: attaching to the default framebuffer", ErrInvalidObject)
		return
	}
	// The open pass may render into the attachment being replaced.
	c.endPass()
	switch point {
	case gl.COLOR_ATTACHMENT0:
		fb.color = a
	case gl.DEPTH_STENCIL_ATTACHMENT:
		fb.depthStencil = a
	default:
		c.failf("%w: attachment point %#x", ErrUnsupported, uint32(point))
	}
}

func (c *Context) FramebufferRenderbuffer(target, attachmentPoint, _ gl.Enum, obj gl.Object) {
	c.attach(target, attachmentPoint, attachment{renderbuffer: obj})
}

func (c *Context) FramebufferTexture2D(target, attachmentPoint, _ gl.Enum, obj gl.Object, level int) {
	c.attach(target, attachmentPoint, attachment{texture: obj, level: level})
}

// resolveAttachment returns the render target behind a. ok is false for an
// empty attachment.
func (c *Context) resolveAttachment(a attachment) (target, bool, error) {
	switch {
	case a.renderbuffer != 0:
		rb := c.rbs[a.renderbuffer]
		if rb == nil || rb.hal == nil {
			return target{}, false, fmt.Errorf("%w: renderbuffer %d has no storage", ErrInvalidObject, a.renderbuffer)
		}
		return target{tex: rb.hal, view: rb.view, format: rb.format.format,
			pixelBytes: rb.format.pixelBytes, samples: rb.samples,
			width: rb.width, height: rb.height}, true, nil
	case a.texture != 0:
		t := c.textures[a.texture]
		if t == nil || t.hal == nil {
			return target{}, false, fmt.Errorf("%w: texture %d has no storage", ErrInvalidObject, a.texture)
		}
		view, err := c.attachmentView(t, a.level)
		if err != nil {
			return target{}, false, err
		}
		return target{tex: t.hal, view: view, format: t.format.format,
			pixelBytes: t.format.pixelBytes, samples: 1,
			width: max(t.width>>a.level, 1), height: max(t.height>>a.level, 1)}, true, nil
	}
	return target{}, false, nil
}

// attachmentView returns a single-level view of t for rendering.
func (c *Context) attachmentView(t *texture, level int) (hal.TextureView, error) {
	if t.levels == 1 && t.layers == 1 {
		return t.view, nil
	}
	if v, ok := t.attachViews[level]; ok {
		return v, nil
	}
	v, err := c.device.CreateTextureView(t.hal, &hal.TextureViewDescriptor{
		Label:           fmt.Sprintf("%s_level%d", t.label, level),
		Format:          t.format.format,
		Dimension:       gputypes.TextureViewDimension2D,
		Aspect:          gputypes.TextureAspectAll,
		BaseMipLevel:    uint32(level),
		MipLevelCount:   1,
		ArrayLayerCount: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("halgl: create attachment view: %w", err)
	}
	if t.attachViews == nil {
		t.attachViews = make(map[int]hal.TextureView)
	}
	t.attachViews[level] = v
	return v, nil
}

// createSurface allocates the default framebuffer: RGBA8 color with a
// packed depth and stencil buffer.
func (c *Context) createSurface(width, height int) (*framebuffer, error) {
	color, depth := &renderbuffer{}, &renderbuffer{}
	if err := c.allocRenderbuffer(color, textureFormats[gl.RGBA8], 1, width, height, "halgl_surface_color"); err != nil {
		return nil, err
	}
	if err := c.allocRenderbuffer(depth, textureFormats[gl.DEPTH24_STENCIL8], 1, width, height, "halgl_surface_depth"); err != nil {
		c.releaseRenderbuffer(color)
		c.releaseRetired()
		return nil, err
	}
	// The surface storage gets object names like any renderbuffer so draws
	// resolve it through the same attachment path.
	fb := &framebuffer{label: "surface"}
	colorObj, depthObj := c.alloc(), c.alloc()
	c.rbs[colorObj], c.rbs[depthObj] = color, depth
	fb.color = attachment{renderbuffer: colorObj}
	fb.depthStencil = attachment{renderbuffer: depthObj}
	return fb, nil
}

func (c *Context) destroySurface() {
	if c.surface == nil {
		return
	}
	for _, a := range []attachment{c.surface.color, c.surface.depthStencil} {
		c.DeleteRenderbuffer(a.renderbuffer)
	}
	c.surface = nil
}

// Surface returns the color texture of the default framebuffer.
func (c *Context) Surface() hal.Texture {
	return c.rbs[c.surface.color.renderbuffer].hal
}

// SurfaceSize returns the default framebuffer size.
func (c *Context) SurfaceSize() (width, height int) {
	rb := c.rbs[c.surface.color.renderbuffer]
	return rb.width, rb.height
}
