package halgl

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfx/gl"
)

// textureFormat describes how a GL internal format is stored in hal.
type textureFormat struct {
	format     gputypes.TextureFormat
	pixelBytes int
	// expandRGB marks three-channel formats stored with an opaque alpha.
	expandRGB  bool
	renderable bool
}

var textureFormats = map[gl.Enum]textureFormat{
	gl.R8:               {gputypes.TextureFormatR8Unorm, 1, false, true},
	gl.RG8:              {gputypes.TextureFormatRG8Unorm, 2, false, true},
	gl.RGB8:             {gputypes.TextureFormatRGBA8Unorm, 4, true, true},
	gl.RGBA8:            {gputypes.TextureFormatRGBA8Unorm, 4, false, true},
	gl.SRGB8_ALPHA8:     {gputypes.TextureFormatRGBA8UnormSrgb, 4, false, true},
	gl.RGBA8_SNORM:      {gputypes.TextureFormatRGBA8Snorm, 4, false, false},
	gl.R16UI:            {gputypes.TextureFormatR16Uint, 2, false, true},
	gl.R32F:             {gputypes.TextureFormatR32Float, 4, false, true},
	gl.RG32F:            {gputypes.TextureFormatRG32Float, 8, false, true},
	gl.RGBA32F:          {gputypes.TextureFormatRGBA32Float, 16, false, true},
	gl.DEPTH24_STENCIL8: {gputypes.TextureFormatDepth24PlusStencil8, 4, false, true},
}

func lookupFormat(internalFormat gl.Enum) (textureFormat, error) {
	f, ok := textureFormats[internalFormat]
	if !ok {
		return textureFormat{}, fmt.Errorf("%w: internal format %#x", ErrUnsupported, uint32(internalFormat))
	}
	return f, nil
}

// samplerState is GL sampling state. Textures carry one too and use it
// when no sampler object is bound to their unit.
type samplerState struct {
	minFilter, magFilter gl.Enum
	wrapS, wrapT         gl.Enum

	hal   hal.Sampler
	dirty bool
}

func defaultSamplerState() samplerState {
	return samplerState{
		minFilter: gl.NEAREST_MIPMAP_LINEAR,
		magFilter: gl.LINEAR,
		wrapS:     gl.REPEAT,
		wrapT:     gl.REPEAT,
		dirty:     true,
	}
}

func (s *samplerState) set(pname gl.Enum, v gl.Enum) bool {
	switch pname {
	case gl.TEXTURE_MIN_FILTER:
		s.minFilter = v
	case gl.TEXTURE_MAG_FILTER:
		s.magFilter = v
	case gl.TEXTURE_WRAP_S:
		s.wrapS = v
	case gl.TEXTURE_WRAP_T:
		s.wrapT = v
	default:
		return false
	}
	s.dirty = true
	return true
}

func addressMode(wrap gl.Enum) gputypes.AddressMode {
	switch wrap {
	case gl.CLAMP_TO_EDGE:
		return gputypes.AddressModeClampToEdge
	case gl.MIRRORED_REPEAT:
		return gputypes.AddressModeMirrorRepeat
	}
	return gputypes.AddressModeRepeat
}

// filterModes splits a GL filter into the texel filter and mip filter.
func filterModes(f gl.Enum) (texel, mip gputypes.FilterMode) {
	switch f {
	case gl.NEAREST, gl.NEAREST_MIPMAP_NEAREST:
		return gputypes.FilterModeNearest, gputypes.FilterModeNearest
	case gl.LINEAR, gl.LINEAR_MIPMAP_NEAREST:
		return gputypes.FilterModeLinear, gputypes.FilterModeNearest
	case gl.NEAREST_MIPMAP_LINEAR:
		return gputypes.FilterModeNearest, gputypes.FilterModeLinear
	}
	return gputypes.FilterModeLinear, gputypes.FilterModeLinear
}

// resolve returns the hal sampler for s, recreating it after a parameter
// change.
func (c *Context) resolveSampler(s *samplerState, label string) (hal.Sampler, error) {
	if !s.dirty && s.hal != nil {
		return s.hal, nil
	}
	if s.hal != nil {
		old := s.hal
		c.retire(func() { c.device.DestroySampler(old) })
		s.hal = nil
	}
	minTexel, mip := filterModes(s.minFilter)
	magTexel, _ := filterModes(s.magFilter)
	h, err := c.device.CreateSampler(&hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: addressMode(s.wrapS),
		AddressModeV: addressMode(s.wrapT),
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    magTexel,
		MinFilter:    minTexel,
		MipmapFilter: mip,
	})
	if err != nil {
		return nil, fmt.Errorf("halgl: create sampler %q: %w", label, err)
	}
	s.hal = h
	s.dirty = false
	return h, nil
}

type texture struct {
	target gl.Enum
	format textureFormat

	width, height, layers, levels int

	hal  hal.Texture
	view hal.TextureView
	// Single-level views used as color attachments, by mip level.
	attachViews map[int]hal.TextureView

	sampling samplerState
	label    string
}

type sampler struct {
	state samplerState
	label string
}

// textureUnit is what ActiveTexture selects.
type textureUnit struct {
	texture gl.Object
	sampler gl.Object
}

func (c *Context) CreateTexture() gl.Object {
	obj := c.alloc()
	c.textures[obj] = &texture{sampling: defaultSamplerState()}
	return obj
}

func (c *Context) DeleteTexture(obj gl.Object) {
	t := c.textures[obj]
	if t == nil {
		return
	}
	delete(c.textures, obj)
	for i := range c.units {
		if c.units[i].texture == obj {
			c.units[i].texture = 0
		}
	}
	for _, fb := range c.fbs {
		if fb.color.texture == obj {
			fb.color = attachment{}
		}
	}
	c.releaseTexture(t)
}

func (c *Context) releaseTexture(t *texture) {
	views := make([]hal.TextureView, 0, len(t.attachViews)+1)
	if t.view != nil {
		views = append(views, t.view)
	}
	for _, v := range t.attachViews {
		views = append(views, v)
	}
	tex, samp := t.hal, t.sampling.hal
	c.retire(func() {
		for _, v := range views {
			c.device.DestroyTextureView(v)
		}
		if tex != nil {
			c.device.DestroyTexture(tex)
		}
		if samp != nil {
			c.device.DestroySampler(samp)
		}
	})
}

func (c *Context) ActiveTexture(unit gl.Enum) {
	i := int(unit - gl.TEXTURE0)
	if i < 0 || i >= len(c.units) {
		c.failf("%w: texture unit %d of %d", ErrUnsupported, i, len(c.units))
		return
	}
	c.activeUnit = i
}

func (c *Context) BindTexture(_ gl.Enum, obj gl.Object) {
	c.units[c.activeUnit].texture = obj
}

func (c *Context) boundTexture() *texture {
	return c.textures[c.units[c.activeUnit].texture]
}

func (c *Context) TexParameteri(_ gl.Enum, pname gl.Enum, param int32) {
	t := c.boundTexture()
	if t == nil {
		c.failf("%w: TexParameteri with no texture bound", ErrInvalidObject)
		return
	}
	if !t.sampling.set(pname, gl.Enum(param)) {
		c.warnOnce(fmt.Sprintf("tex-param-%#x", uint32(pname)),
			"halgl: texture parameter ignored", "pname", uint32(pname))
	}
}

func (c *Context) TexStorage2D(target gl.Enum, levels int, internalFormat gl.Enum, width, height int) {
	c.texStorage(target, levels, internalFormat, width, height, 1)
}

func (c *Context) TexStorage3D(target gl.Enum, levels int, internalFormat gl.Enum, width, height, depth int) {
	c.texStorage(target, levels, internalFormat, width, height, depth)
}

func (c *Context) texStorage(target gl.Enum, levels int, internalFormat gl.Enum, width, height, layers int) {
	t := c.boundTexture()
	if t == nil {
		c.failf("%w: TexStorage with no texture bound", ErrInvalidObject)
		return
	}
	if target == gl.TEXTURE_3D {
		c.failf("%w: 3D textures", ErrUnsupported)
		return
	}
	f, err := lookupFormat(internalFormat)
	if err != nil {
		c.fail(err)
		return
	}
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst | gputypes.TextureUsageCopySrc
	if f.renderable {
		usage |= gputypes.TextureUsageRenderAttachment
	}
	label := t.label
	if label == "" {
		label = "halgl_texture"
	}
	tex, err := c.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: uint32(layers)},
		MipLevelCount: uint32(levels),
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        f.format,
		Usage:         usage,
	})
	if err != nil {
		c.failf("halgl: create texture %q: %w", label, err)
		return
	}
	viewDim := gputypes.TextureViewDimension2D
	if target == gl.TEXTURE_2D_ARRAY {
		viewDim = gputypes.TextureViewDimension2DArray
	}
	view, err := c.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:           label + "_view",
		Format:          f.format,
		Dimension:       viewDim,
		Aspect:          gputypes.TextureAspectAll,
		MipLevelCount:   uint32(levels),
		ArrayLayerCount: uint32(layers),
	})
	if err != nil {
		c.device.DestroyTexture(tex)
		c.failf("halgl: create texture view %q: %w", label, err)
		return
	}
	t.target = target
	t.format = f
	t.width, t.height, t.layers, t.levels = width, height, layers, levels
	t.hal, t.view = tex, view
	Logger().Debug("halgl: texture created",
		"label", label, "width", width, "height", height, "layers", layers, "levels", levels)
}

func (c *Context) TexSubImage2D(target gl.Enum, level, x, y, width, height int, _, _ gl.Enum, data []byte) {
	c.texSubImage(level, x, y, 0, width, height, 1, data)
}

func (c *Context) TexSubImage3D(target gl.Enum, level, x, y, z, width, height, depth int, _, _ gl.Enum, data []byte) {
	c.texSubImage(level, x, y, z, width, height, depth, data)
}

func (c *Context) texSubImage(level, x, y, z, width, height, depth int, data []byte) {
	t := c.boundTexture()
	if t == nil || t.hal == nil {
		c.failf("%w: TexSubImage on a texture without storage", ErrInvalidObject)
		return
	}
	if t.format.expandRGB {
		data = rgbToRGBA(data, width*height*depth)
	}
	if want := width * height * depth * t.format.pixelBytes; len(data) < want {
		c.failf("%w: %d bytes for a %dx%dx%d upload, want %d",
			ErrInvalidObject, len(data), width, height, depth, want)
		return
	}
	c.flushRecorded()
	c.queue.WriteTexture(
		&hal.ImageCopyTexture{
			Texture:  t.hal,
			MipLevel: uint32(level),
			Origin:   hal.Origin3D{X: uint32(x), Y: uint32(y), Z: uint32(z)},
			Aspect:   gputypes.TextureAspectAll,
		},
		data,
		&hal.ImageDataLayout{
			BytesPerRow:  uint32(width * t.format.pixelBytes),
			RowsPerImage: uint32(height),
		},
		&hal.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: uint32(depth)},
	)
}

// rgbToRGBA expands tightly packed RGB texels with an opaque alpha.
func rgbToRGBA(rgb []byte, pixels int) []byte {
	rgba := make([]byte, pixels*4)
	for i := 0; i < pixels && i*3+2 < len(rgb); i++ {
		rgba[i*4+0] = rgb[i*3+0]
		rgba[i*4+1] = rgb[i*3+1]
		rgba[i*4+2] = rgb[i*3+2]
		rgba[i*4+3] = 0xFF
	}
	return rgba
}

func (c *Context) CompressedTexSubImage2D(gl.Enum, int, int, int, int, int, gl.Enum, []byte) {
	c.failf("%w: compressed texture upload", ErrUnsupported)
}

func (c *Context) CompressedTexSubImage3D(gl.Enum, int, int, int, int, int, int, int, gl.Enum, []byte) {
	c.failf("%w: compressed texture upload", ErrUnsupported)
}

func (c *Context) CreateSampler() gl.Object {
	obj := c.alloc()
	c.samplers[obj] = &sampler{state: defaultSamplerState()}
	return obj
}

func (c *Context) DeleteSampler(obj gl.Object) {
	s := c.samplers[obj]
	if s == nil {
		return
	}
	delete(c.samplers, obj)
	for i := range c.units {
		if c.units[i].sampler == obj {
			c.units[i].sampler = 0
		}
	}
	if h := s.state.hal; h != nil {
		c.retire(func() { c.device.DestroySampler(h) })
	}
}

func (c *Context) SamplerParameteri(obj gl.Object, pname gl.Enum, param int32) {
	s := c.samplers[obj]
	if s == nil {
		c.failf("%w: sampler %d", ErrInvalidObject, obj)
		return
	}
	if !s.state.set(pname, gl.Enum(param)) {
		c.warnOnce(fmt.Sprintf("sampler-param-%#x", uint32(pname)),
			"halgl: sampler parameter ignored", "pname", uint32(pname))
	}
}

// SamplerParameterf accepts the LOD clamps, which hal samplers take from
// the texture view instead.
func (c *Context) SamplerParameterf(obj gl.Object, pname gl.Enum, _ float32) {
	if c.samplers[obj] == nil {
		c.failf("%w: sampler %d", ErrInvalidObject, obj)
		return
	}
	if pname != gl.TEXTURE_MIN_LOD && pname != gl.TEXTURE_MAX_LOD {
		c.warnOnce(fmt.Sprintf("sampler-paramf-%#x", uint32(pname)),
			"halgl: sampler parameter ignored", "pname", uint32(pname))
	}
}

func (c *Context) BindSampler(unit uint32, obj gl.Object) {
	if int(unit) >= len(c.units) {
		c.failf("%w: texture unit %d of %d", ErrUnsupported, unit, len(c.units))
		return
	}
	c.units[unit].sampler = obj
}
