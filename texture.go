package gfx

import (
	"fmt"

	"github.com/gogpu/gfx/gl"
)

// CreateTexture creates a texture with immutable storage for every level.
func (d *Device) CreateTexture(desc TextureDescriptor) *Texture {
	if desc.Width <= 0 || desc.Height <= 0 || desc.NumLevels <= 0 {
		panic(fmt.Errorf("%w: texture %dx%d with %d levels", ErrUnsupported, desc.Width, desc.Height, desc.NumLevels))
	}
	ifmt := d.translateTextureInternalFormat(desc.Format)
	obj := d.gl.CreateTexture()

	// Creation binds to unit 0 behind the binding cache's back.
	d.setActiveTexture(gl.TEXTURE0)
	d.textures[0] = 0

	t := &Texture{
		obj:       obj,
		format:    desc.Format,
		width:     desc.Width,
		height:    desc.Height,
		depth:     max(desc.Depth, 1),
		numLevels: desc.NumLevels,
	}
	switch desc.Dimension {
	case TextureDimension2D:
		if desc.Depth > 1 {
			panic(fmt.Errorf("%w: 2D texture with depth %d", ErrUnsupported, desc.Depth))
		}
		t.target = gl.TEXTURE_2D
		d.gl.BindTexture(t.target, obj)
		d.gl.TexStorage2D(t.target, desc.NumLevels, ifmt, desc.Width, desc.Height)
	case TextureDimension2DArray:
		t.target = gl.TEXTURE_2D_ARRAY
		d.gl.BindTexture(t.target, obj)
		d.gl.TexStorage3D(t.target, desc.NumLevels, ifmt, desc.Width, desc.Height, t.depth)
	default:
		panic(unsupported("texture dimension", desc.Dimension))
	}

	Logger().Debug("gfx: texture created",
		"format", desc.Format, "width", desc.Width, "height", desc.Height,
		"depth", t.depth, "levels", desc.NumLevels)
	return t
}

// CreateTexture2D is shorthand for CreateTexture(TextureDescriptor2D(...)).
func (d *Device) CreateTexture2D(format Format, width, height, numLevels int) *Texture {
	return d.CreateTexture(TextureDescriptor2D(format, width, height, numLevels))
}

// DestroyTexture deletes t.
func (d *Device) DestroyTexture(t *Texture) {
	if t.destroyed {
		return
	}
	t.destroyed = true
	for i, bound := range d.textures {
		if bound == t.obj {
			d.textures[i] = 0
		}
	}
	d.gl.DeleteTexture(t.obj)
}

// CreateSampler creates a sampler object.
func (d *Device) CreateSampler(desc SamplerDescriptor) *Sampler {
	obj := d.gl.CreateSampler()
	d.gl.SamplerParameteri(obj, gl.TEXTURE_WRAP_S, int32(translateWrapMode(desc.WrapS)))
	d.gl.SamplerParameteri(obj, gl.TEXTURE_WRAP_T, int32(translateWrapMode(desc.WrapT)))
	d.gl.SamplerParameteri(obj, gl.TEXTURE_MIN_FILTER, int32(translateFilterMode(desc.MinFilter, desc.MipFilter)))
	d.gl.SamplerParameteri(obj, gl.TEXTURE_MAG_FILTER, int32(translateFilterMode(desc.MagFilter, MipFilterModeNoMip)))
	d.gl.SamplerParameterf(obj, gl.TEXTURE_MIN_LOD, desc.MinLOD)
	d.gl.SamplerParameterf(obj, gl.TEXTURE_MAX_LOD, desc.MaxLOD)
	return &Sampler{obj: obj}
}

// DestroySampler deletes s.
func (d *Device) DestroySampler(s *Sampler) {
	if s.destroyed {
		return
	}
	s.destroyed = true
	for i, bound := range d.samplers {
		if bound == s.obj {
			d.samplers[i] = 0
		}
	}
	d.gl.DeleteSampler(s.obj)
}

func (d *Device) createRenderbuffer(width, height, numSamples int, ifmt gl.Enum) gl.Object {
	obj := d.gl.CreateRenderbuffer()
	d.gl.BindRenderbuffer(gl.RENDERBUFFER, obj)
	d.gl.RenderbufferStorageMultisample(gl.RENDERBUFFER, numSamples, ifmt, width, height)
	return obj
}

// CreateColorAttachment creates an RGBA8 color render buffer with
// numSamples samples per pixel.
func (d *Device) CreateColorAttachment(width, height, numSamples int) *ColorAttachment {
	return &ColorAttachment{
		obj:        d.createRenderbuffer(width, height, numSamples, gl.RGBA8),
		width:      width,
		height:     height,
		numSamples: numSamples,
	}
}

// DestroyColorAttachment deletes a.
func (d *Device) DestroyColorAttachment(a *ColorAttachment) {
	if a.destroyed {
		return
	}
	a.destroyed = true
	d.gl.DeleteRenderbuffer(a.obj)
}

// CreateDepthStencilAttachment creates a 24-bit depth, 8-bit stencil render
// buffer.
func (d *Device) CreateDepthStencilAttachment(width, height, numSamples int) *DepthStencilAttachment {
	return &DepthStencilAttachment{
		obj:        d.createRenderbuffer(width, height, numSamples, gl.DEPTH24_STENCIL8),
		width:      width,
		height:     height,
		numSamples: numSamples,
	}
}

// DestroyDepthStencilAttachment deletes a.
func (d *Device) DestroyDepthStencilAttachment(a *DepthStencilAttachment) {
	if a.destroyed {
		return
	}
	a.destroyed = true
	d.gl.DeleteRenderbuffer(a.obj)
}

// CreateRenderTarget creates a framebuffer over the given attachments.
func (d *Device) CreateRenderTarget(desc RenderTargetDescriptor) *RenderTarget {
	obj := d.gl.CreateFramebuffer()
	d.gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, obj)
	if desc.ColorAttachment != nil {
		d.gl.FramebufferRenderbuffer(gl.DRAW_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.RENDERBUFFER, desc.ColorAttachment.obj)
	}
	if desc.DepthStencilAttachment != nil {
		d.gl.FramebufferRenderbuffer(gl.DRAW_FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, desc.DepthStencilAttachment.obj)
	}
	return &RenderTarget{
		obj:   obj,
		color: desc.ColorAttachment,
		depth: desc.DepthStencilAttachment,
	}
}

// DestroyRenderTarget deletes the framebuffer of rt. Its attachments are
// not destroyed.
func (d *Device) DestroyRenderTarget(rt *RenderTarget) {
	if rt.destroyed {
		return
	}
	rt.destroyed = true
	if d.renderTarget == rt {
		d.renderTarget = nil
	}
	d.gl.DeleteFramebuffer(rt.obj)
}

// uploadTextureData writes levels into t starting at mip level firstLevel.
// Level sizes halve from the base size, clamped to 1.
func (d *Device) uploadTextureData(t *Texture, firstLevel int, levels [][]byte) {
	d.checkLive(t)
	d.setActiveTexture(gl.TEXTURE0)
	d.textures[0] = 0
	d.gl.BindTexture(t.target, t.obj)

	compressed := t.format.IsCompressed()
	is3D := t.target == gl.TEXTURE_2D_ARRAY || t.target == gl.TEXTURE_3D
	format := translateTextureFormat(t.format)
	var typ gl.Enum
	if !compressed {
		typ = translateTextureType(t.format)
	}

	w, h, depth := t.width, t.height, t.depth
	last := firstLevel + len(levels)
	for i := 0; i < last; i++ {
		if i >= firstLevel {
			data := levels[i-firstLevel]
			switch {
			case is3D && compressed:
				d.gl.CompressedTexSubImage3D(t.target, i, 0, 0, 0, w, h, depth, format, data)
			case is3D:
				d.gl.TexSubImage3D(t.target, i, 0, 0, 0, w, h, depth, format, typ, data)
			case compressed:
				d.gl.CompressedTexSubImage2D(t.target, i, 0, 0, w, h, format, data)
			default:
				d.gl.TexSubImage2D(t.target, i, 0, 0, w, h, format, typ, data)
			}
		}
		w = max(w/2, 1)
		h = max(h/2, 1)
	}
}
