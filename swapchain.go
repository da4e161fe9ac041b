package gfx

import "github.com/gogpu/gfx/gl"

// swapChain is an offscreen color texture that Present copies to the
// default framebuffer.
type swapChain struct {
	width       int
	height      int
	texture     *Texture
	framebuffer gl.Object
}

// ConfigureSwapChain (re)creates the onscreen texture at width x height.
// Calling it again with the same size does nothing.
func (d *Device) ConfigureSwapChain(width, height int) {
	sc := &d.swapChain
	if sc.texture != nil && sc.width == width && sc.height == height {
		return
	}
	d.destroySwapChain()

	sc.width, sc.height = width, height
	sc.texture = d.CreateTexture2D(FormatU8RGBANorm, width, height, 1)
	d.gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, int32(gl.LINEAR))
	d.gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, int32(gl.LINEAR))
	d.gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, int32(gl.CLAMP_TO_EDGE))
	d.gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, int32(gl.CLAMP_TO_EDGE))

	sc.framebuffer = d.gl.CreateFramebuffer()
	d.gl.BindFramebuffer(gl.READ_FRAMEBUFFER, sc.framebuffer)
	d.gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, sc.texture.obj, 0)
	d.gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)

	Logger().Info("gfx: swap chain configured", "width", width, "height", height)
}

// OnscreenTexture returns the texture Present shows, or nil before
// ConfigureSwapChain.
func (d *Device) OnscreenTexture() *Texture {
	return d.swapChain.texture
}

// Present copies the onscreen texture to the default framebuffer.
func (d *Device) Present() {
	sc := &d.swapChain
	if sc.texture == nil {
		return
	}
	d.gl.BindFramebuffer(gl.READ_FRAMEBUFFER, sc.framebuffer)
	d.gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	d.gl.BlitFramebuffer(0, 0, sc.width, sc.height, 0, 0, sc.width, sc.height,
		gl.COLOR_BUFFER_BIT, gl.LINEAR)
	d.gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	d.gl.Flush()
}

func (d *Device) destroySwapChain() {
	sc := &d.swapChain
	if sc.texture == nil {
		return
	}
	d.gl.DeleteFramebuffer(sc.framebuffer)
	d.DestroyTexture(sc.texture)
	*sc = swapChain{}
}
